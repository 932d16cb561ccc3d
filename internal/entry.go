// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/inkwell/internal/api"
	"github.com/starford/inkwell/internal/catalog"
	"github.com/starford/inkwell/internal/knowledge"
	"github.com/starford/inkwell/internal/llm"
	"github.com/starford/inkwell/internal/mcpserver"
	"github.com/starford/inkwell/internal/observability"
	"github.com/starford/inkwell/internal/review"
	"github.com/starford/inkwell/internal/sse"
	"github.com/starford/inkwell/internal/store"
	"github.com/starford/inkwell/internal/vault"
	"github.com/starford/inkwell/internal/workshop"
	"github.com/starford/inkwell/internal/writer"
)

const defaultVersion = "dev"

// components is the wired object graph shared by every run mode.
type components struct {
	cfg      *Config
	version  string
	logger   *slog.Logger
	db       *store.DB
	broker   *sse.Broker
	records  *catalog.Service
	workshop *workshop.Service
	layout   writer.Layout
	syncer   *vault.Syncer

	closers []func(context.Context) error
}

func (c *components) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			c.logger.Warn("shutdown step failed", slog.String("error", err.Error()))
		}
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: defaultVersion, logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// build wires storage, knowledge, generation and review. The caller must
// call close on the result.
func build(ctx context.Context, app *application) (_ *components, err error) {
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("sqlite_driver", cfg.SQLite.Driver),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("provider", cfg.Generation.Provider),
		slog.String("layout", cfg.Writer.Layout),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c := &components{cfg: cfg, version: app.version, logger: logger}
	defer func() {
		if err != nil {
			c.close()
		}
	}()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Tracing.observability(app.version), logger)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	c.closers = append(c.closers, shutdownTracing)

	c.db, err = store.Open(cfg.SQLite.Driver, cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	c.closers = append(c.closers, func(context.Context) error { return c.db.Close() })

	c.broker = sse.NewBroker(2 * time.Second)
	c.closers = append(c.closers, func(context.Context) error { c.broker.Close(); return nil })

	c.records = catalog.NewService(c.db, c.broker)

	c.layout, err = writer.LayoutByName(cfg.Writer.Layout)
	if err != nil {
		return nil, err
	}
	msgs, err := review.MessagesFor(c.layout.Name)
	if err != nil {
		return nil, err
	}

	provider, err := llm.New(ctx, cfg.Generation.Provider, cfg.Generation.LLM())
	if err != nil {
		return nil, fmt.Errorf("init provider: %w", err)
	}

	aggregator := knowledge.NewAggregator(c.db,
		knowledge.WithSelector(cfg.Writer.Selector()),
		knowledge.WithRecentChapters(cfg.Writer.RecentChapters),
		knowledge.WithRefreshListener(c.broker),
		knowledge.WithLogger(logger))
	generator := writer.New(provider,
		writer.WithLayout(c.layout),
		writer.WithMaxTokens(cfg.Generation.MaxTokens),
		writer.WithTimeout(cfg.Generation.Timeout),
		writer.WithLogger(logger))
	reviewer := review.New(c.db,
		review.WithMessages(msgs),
		review.WithThreshold(cfg.Writer.ApprovalThreshold),
		review.WithLogger(logger))
	c.workshop = workshop.New(aggregator, generator, reviewer,
		workshop.WithMaxIterations(cfg.Writer.MaxIterations),
		workshop.WithObserver(c.broker),
		workshop.WithLogger(logger))

	if cfg.Vault.Enabled() {
		fs, err := vault.NewFS(cfg.Vault.Path)
		if err != nil {
			return nil, fmt.Errorf("init vault: %w", err)
		}
		c.syncer = vault.NewSyncer(fs, c.records, c.db, logger)
	}

	logger.Info("Components ready", slog.String("provider", provider.Name()))
	return c, nil
}

func (c *components) initialSync(ctx context.Context) {
	if c.syncer == nil {
		return
	}
	rep, err := c.syncer.Sync(ctx)
	if err != nil {
		c.logger.Warn("initial vault sync failed", slog.String("error", err.Error()))
		return
	}
	logReport(c.logger, "initial vault sync", rep)
}

func logReport(logger *slog.Logger, msg string, rep vault.Report) {
	logger.Info(msg,
		slog.Int("created", rep.Created),
		slog.Int("updated", rep.Updated),
		slog.Int("deleted", rep.Deleted),
		slog.Int("skipped", rep.Skipped),
		slog.Int("failed", rep.Failed))
}

func (c *components) handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := c.records.ListNovels(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(c.records, c.workshop, c.cfg.Auth.AuthEnabled(), c.cfg.Auth.Token, c.broker))
	return r
}

// Run starts the HTTP server, and the vault watcher when a vault is
// configured, until ctx is cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := build(ctx, app)
	if err != nil {
		return err
	}
	defer c.close()

	c.initialSync(ctx)

	cfg := c.cfg
	logger := c.logger
	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           c.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if c.syncer != nil && cfg.Vault.Watch {
		g.Go(func() error {
			return c.syncer.Watch(gCtx, cfg.Vault.Debounce, func(rep vault.Report) {
				logReport(logger, "vault resynced", rep)
			})
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		timeout := cfg.App.HTTP.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		// Ends open SSE streams so Shutdown does not wait on them.
		c.broker.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group's context so the watcher stops with the
// server.
var errShutdown = errors.New("shutdown requested")

// RunMCP serves the MCP tools over stdin/stdout. Logs go to app.logOutput,
// which must not be stdout.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	c, err := build(ctx, app)
	if err != nil {
		return err
	}
	defer c.close()

	c.initialSync(ctx)

	srv := mcpserver.New(c.records, c.workshop, c.layout, c.version)
	c.logger.Info("Serving MCP over stdio")
	return srv.ServeStdio()
}

// RunSync imports the configured vault once and reports what changed.
func RunSync(ctx context.Context, opts ...Option) (vault.Report, error) {
	app, err := newApplication(opts)
	if err != nil {
		return vault.Report{}, err
	}
	c, err := build(ctx, app)
	if err != nil {
		return vault.Report{}, err
	}
	defer c.close()

	if c.syncer == nil {
		return vault.Report{}, errors.New("vault path is not configured")
	}
	rep, err := c.syncer.Sync(ctx)
	if err != nil {
		return rep, err
	}
	logReport(c.logger, "vault synced", rep)
	return rep, nil
}

// RunExport writes one novel into the configured vault and returns the number
// of files written.
func RunExport(ctx context.Context, novelID int64, opts ...Option) (int, error) {
	app, err := newApplication(opts)
	if err != nil {
		return 0, err
	}
	c, err := build(ctx, app)
	if err != nil {
		return 0, err
	}
	defer c.close()

	if c.syncer == nil {
		return 0, errors.New("vault path is not configured")
	}
	n, err := c.syncer.Export(ctx, novelID)
	if err != nil {
		return 0, err
	}
	c.logger.Info("novel exported", slog.Int64("novel_id", novelID), slog.Int("files", n))
	return n, nil
}
