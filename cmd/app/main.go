package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/inkwell/internal"
	pkgconfig "github.com/starford/inkwell/pkg/config"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if v := cmd.String("vault"); v != "" {
		cfg.Vault.Path = v
	}
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, opts...)
}

func syncVault(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	rep, err := internal.RunSync(ctx, opts...)
	if err != nil {
		return fmt.Errorf("vault sync: %w", err)
	}
	fmt.Fprintf(os.Stderr, "created %d, updated %d, deleted %d, skipped %d, failed %d\n",
		rep.Created, rep.Updated, rep.Deleted, rep.Skipped, rep.Failed)
	return nil
}

func exportNovel(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.Args().First()
	novelID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || novelID <= 0 {
		return fmt.Errorf("export: expected a novel id, got %q", arg)
	}
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	n, err := internal.RunExport(ctx, novelID, opts...)
	if err != nil {
		return fmt.Errorf("export novel %d: %w", novelID, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %d files\n", n)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "inkwell",
		Usage:   "Collaborative novel-writing backend with knowledge-aware chapter drafting",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "vault",
				Usage:   "Markdown vault directory (overrides vault.path)",
				Sources: cli.EnvVars("INKWELL_VAULT"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API and event stream",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the writing tools over MCP stdio",
				Action: serveMCP,
			},
			{
				Name:   "sync",
				Usage:  "Import the Markdown vault once",
				Action: syncVault,
			},
			{
				Name:      "export",
				Usage:     "Write a novel to the Markdown vault",
				ArgsUsage: "<novel-id>",
				Action:    exportNovel,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
