package api

import (
	"context"
	"net/http"

	"github.com/starford/inkwell/internal/catalog"
	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/workshop"
)

// Assistant is the assisted-writing surface behind /assist.
type Assistant interface {
	GenerateChapter(ctx context.Context, novelID int64, writingContext, requirements string) (*workshop.Result, error)
	AnalyzeConsistency(ctx context.Context, novelID int64) (*models.ConsistencyReport, error)
	RefreshKnowledge(ctx context.Context, novelID int64) error
	KnowledgeSummary(ctx context.Context, novelID int64) (*models.KnowledgeSummary, error)
	SuggestNextPlot(ctx context.Context, novelID int64, currentContext string) ([]string, error)
}

// Handler holds API route handlers.
type Handler struct {
	records *catalog.Service
	assist  Assistant
}

// NewHandler creates a new Handler.
func NewHandler(records *catalog.Service, assist Assistant) *Handler {
	return &Handler{records: records, assist: assist}
}

// listByNovel writes every record a novel owns under key.
func listByNovel[T any](w http.ResponseWriter, r *http.Request, key string, list func(context.Context, int64) ([]T, error)) {
	novelID, err := idParam(r, "novelID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := list(r.Context(), novelID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, map[string]any{key: items, "total": len(items)})
}

// getByID writes the record named by the {id} parameter.
func getByID[T any](w http.ResponseWriter, r *http.Request, param string, get func(context.Context, int64) (*T, error)) {
	id, err := idParam(r, param)
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// deleteByID removes the record named by param and answers 204.
func deleteByID(w http.ResponseWriter, r *http.Request, param string, del func(context.Context, int64) error) {
	id, err := idParam(r, param)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := del(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// save decodes body into req, lets build turn it into a record and stores it.
func save[Req any, T any](w http.ResponseWriter, r *http.Request, status int, build func(Req) (*T, error), store func(context.Context, *T) error) {
	var req Req
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := build(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := store(r.Context(), rec); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, rec)
}

// update overlays the request body on the stored record named by param, so
// fields missing from the body keep their current values.
func update[Req any, T any](w http.ResponseWriter, r *http.Request, param string,
	get func(context.Context, int64) (*T, error),
	current func(*T) Req,
	build func(Req, *T) *T,
	store func(context.Context, *T) error,
) {
	id, err := idParam(r, param)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cur, err := get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req := current(cur)
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rec := build(req, cur)
	if err := store(r.Context(), rec); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
