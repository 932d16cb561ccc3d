package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/inkwell/internal/catalog"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(records *catalog.Service, assist Assistant, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(records, assist)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/novels", h.ListNovels)
	r.Post("/novels", h.CreateNovel)
	r.Get("/novels/{novelID}", h.GetNovel)
	r.Put("/novels/{novelID}", h.UpdateNovel)
	r.Delete("/novels/{novelID}", h.DeleteNovel)

	r.Get("/novels/{novelID}/chapters", h.ListChapters)
	r.Post("/novels/{novelID}/chapters", h.CreateChapter)
	r.Get("/novels/{novelID}/chapters/search", h.SearchChapters)
	r.Get("/chapters/{id}", h.GetChapter)
	r.Put("/chapters/{id}", h.UpdateChapter)
	r.Delete("/chapters/{id}", h.DeleteChapter)

	r.Get("/novels/{novelID}/characters", h.ListCharacters)
	r.Post("/novels/{novelID}/characters", h.CreateCharacter)
	r.Get("/characters/{id}", h.GetCharacter)
	r.Put("/characters/{id}", h.UpdateCharacter)
	r.Delete("/characters/{id}", h.DeleteCharacter)

	r.Get("/novels/{novelID}/settings", h.ListSettings)
	r.Post("/novels/{novelID}/settings", h.CreateSetting)
	r.Get("/settings/{id}", h.GetSetting)
	r.Put("/settings/{id}", h.UpdateSetting)
	r.Delete("/settings/{id}", h.DeleteSetting)

	r.Get("/novels/{novelID}/outlines", h.ListOutlines)
	r.Post("/novels/{novelID}/outlines", h.CreateOutline)
	r.Get("/outlines/{id}", h.GetOutline)
	r.Put("/outlines/{id}", h.UpdateOutline)
	r.Delete("/outlines/{id}", h.DeleteOutline)

	r.Route("/assist", func(r chi.Router) {
		r.Post("/generate-chapter", h.GenerateChapter)
		r.Post("/analyze-consistency", h.AnalyzeConsistency)
		r.Post("/update-knowledge", h.UpdateKnowledge)
		r.Get("/knowledge-summary", h.KnowledgeSummary)
		r.Post("/suggest-next-plot", h.SuggestNextPlot)
	})

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
