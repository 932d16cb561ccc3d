package api

import (
	"fmt"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/inkwell/internal/apperr"
)

// decodeValid decodes the body into req and runs its validation rules.
func decodeValid(w http.ResponseWriter, r *http.Request, req validation.Validatable) error {
	if err := decodeJSON(w, r, req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
	}
	return nil
}

// GenerateChapter handles POST /api/assist/generate-chapter.
//
//	@Summary		Draft, review and revise a new chapter
//	@Description	Runs up to three generate/review rounds and returns the last draft with its review.
//	@Tags			assist
//	@Accept			json
//	@Produce		json
//	@Param			body	body		GenerateChapterRequest	true	"Writing context"
//	@Success		200		{object}	GenerateChapterResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/assist/generate-chapter [post]
func (h *Handler) GenerateChapter(w http.ResponseWriter, r *http.Request) {
	var req GenerateChapterRequest
	if err := decodeValid(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.assist.GenerateChapter(r.Context(), req.NovelID, req.Context, req.Requirements)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, GenerateChapterResponse{Success: true, Result: res})
}

// AnalyzeConsistency handles POST /api/assist/analyze-consistency.
//
//	@Summary		Check a whole novel for consistency
//	@Tags			assist
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NovelIDRequest	true	"Novel"
//	@Success		200		{object}	ConsistencyResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/assist/analyze-consistency [post]
func (h *Handler) AnalyzeConsistency(w http.ResponseWriter, r *http.Request) {
	var req NovelIDRequest
	if err := decodeValid(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	report, err := h.assist.AnalyzeConsistency(r.Context(), req.NovelID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ConsistencyResponse{Success: true, Report: report})
}

// UpdateKnowledge handles POST /api/assist/update-knowledge.
//
//	@Summary		Signal that a novel's knowledge changed
//	@Tags			assist
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NovelIDRequest	true	"Novel"
//	@Success		200		{object}	MessageResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/assist/update-knowledge [post]
func (h *Handler) UpdateKnowledge(w http.ResponseWriter, r *http.Request) {
	var req NovelIDRequest
	if err := decodeValid(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.assist.RefreshKnowledge(r.Context(), req.NovelID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "knowledge refreshed"})
}

// KnowledgeSummary handles GET /api/assist/knowledge-summary.
//
//	@Summary		Record counts and latest chapter of a novel
//	@Tags			assist
//	@Produce		json
//	@Param			novel_id	query		int	true	"Novel ID"
//	@Success		200			{object}	SummaryResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/assist/knowledge-summary [get]
func (h *Handler) KnowledgeSummary(w http.ResponseWriter, r *http.Request) {
	novelID, err := strconv.ParseInt(r.URL.Query().Get("novel_id"), 10, 64)
	if err != nil || novelID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("novel_id query parameter is required"))
		return
	}
	summary, err := h.assist.KnowledgeSummary(r.Context(), novelID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SummaryResponse{Success: true, Summary: summary})
}

// SuggestNextPlot handles POST /api/assist/suggest-next-plot.
//
//	@Summary		Propose up to three plot developments
//	@Tags			assist
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SuggestPlotRequest	true	"Current context"
//	@Success		200		{object}	SuggestionsResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/assist/suggest-next-plot [post]
func (h *Handler) SuggestNextPlot(w http.ResponseWriter, r *http.Request) {
	var req SuggestPlotRequest
	if err := decodeValid(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	suggestions, err := h.assist.SuggestNextPlot(r.Context(), req.NovelID, req.CurrentContext)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, SuggestionsResponse{Success: true, Suggestions: suggestions})
}
