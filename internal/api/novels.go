package api

import (
	"net/http"
	"strconv"

	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/store"
)

// ListNovels handles GET /api/novels.
//
//	@Summary		List novels
//	@Tags			novels
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/novels [get]
func (h *Handler) ListNovels(w http.ResponseWriter, r *http.Request) {
	novels, err := h.records.ListNovels(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if novels == nil {
		novels = []models.Novel{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"novels": novels, "total": len(novels)})
}

// CreateNovel handles POST /api/novels.
//
//	@Summary		Create a novel
//	@Tags			novels
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NovelRequest	true	"Novel to create"
//	@Success		201		{object}	models.Novel
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels [post]
func (h *Handler) CreateNovel(w http.ResponseWriter, r *http.Request) {
	save(w, r, http.StatusCreated,
		func(req NovelRequest) (*models.Novel, error) { return req.model(0), nil },
		h.records.CreateNovel)
}

// GetNovel handles GET /api/novels/{novelID}.
//
//	@Summary		Get a novel
//	@Tags			novels
//	@Produce		json
//	@Param			novelID	path		int	true	"Novel ID"
//	@Success		200		{object}	models.Novel
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{novelID} [get]
func (h *Handler) GetNovel(w http.ResponseWriter, r *http.Request) {
	getByID(w, r, "novelID", h.records.GetNovel)
}

// UpdateNovel handles PUT /api/novels/{novelID}.
//
//	@Summary		Update a novel
//	@Tags			novels
//	@Accept			json
//	@Produce		json
//	@Param			novelID	path		int				true	"Novel ID"
//	@Param			body	body		NovelRequest	true	"New values"
//	@Success		200		{object}	models.Novel
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{novelID} [put]
func (h *Handler) UpdateNovel(w http.ResponseWriter, r *http.Request) {
	update(w, r, "novelID", h.records.GetNovel, novelRequestFrom,
		func(req NovelRequest, cur *models.Novel) *models.Novel { return req.model(cur.ID) },
		h.records.UpdateNovel)
}

// DeleteNovel handles DELETE /api/novels/{novelID}. Everything the novel
// owns is deleted with it.
//
//	@Summary		Delete a novel
//	@Tags			novels
//	@Param			novelID	path	int	true	"Novel ID"
//	@Success		204		"Novel deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{novelID} [delete]
func (h *Handler) DeleteNovel(w http.ResponseWriter, r *http.Request) {
	deleteByID(w, r, "novelID", h.records.DeleteNovel)
}

// ListChapters handles GET /api/novels/{novelID}/chapters.
//
//	@Summary		List a novel's chapters in chapter order
//	@Tags			chapters
//	@Produce		json
//	@Param			novelID	path		int	true	"Novel ID"
//	@Success		200		{object}	map[string]any
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{novelID}/chapters [get]
func (h *Handler) ListChapters(w http.ResponseWriter, r *http.Request) {
	listByNovel(w, r, "chapters", h.records.ListChapters)
}

// CreateChapter handles POST /api/novels/{novelID}/chapters.
//
//	@Summary		Add a chapter
//	@Tags			chapters
//	@Accept			json
//	@Produce		json
//	@Param			novelID	path		int				true	"Novel ID"
//	@Param			body	body		ChapterRequest	true	"Chapter to create"
//	@Success		201		{object}	models.Chapter
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{novelID}/chapters [post]
func (h *Handler) CreateChapter(w http.ResponseWriter, r *http.Request) {
	save(w, r, http.StatusCreated,
		func(req ChapterRequest) (*models.Chapter, error) {
			novelID, err := idParam(r, "novelID")
			if err != nil {
				return nil, err
			}
			return req.model(0, novelID), nil
		},
		h.records.CreateChapter)
}

// SearchChapters handles GET /api/novels/{novelID}/chapters/search.
//
//	@Summary		Full-text search over a novel's chapters
//	@Tags			chapters
//	@Produce		json
//	@Param			novelID	path		int		true	"Novel ID"
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{novelID}/chapters/search [get]
func (h *Handler) SearchChapters(w http.ResponseWriter, r *http.Request) {
	novelID, err := idParam(r, "novelID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.records.SearchChapters(r.Context(), novelID, r.URL.Query().Get("q"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if results == nil {
		results = []store.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// GetChapter handles GET /api/chapters/{id}.
//
//	@Summary		Get a chapter
//	@Tags			chapters
//	@Produce		json
//	@Param			id	path		int	true	"Chapter ID"
//	@Success		200	{object}	models.Chapter
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/chapters/{id} [get]
func (h *Handler) GetChapter(w http.ResponseWriter, r *http.Request) {
	getByID(w, r, "id", h.records.GetChapter)
}

// UpdateChapter handles PUT /api/chapters/{id}.
//
//	@Summary		Update a chapter
//	@Tags			chapters
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Chapter ID"
//	@Param			body	body		ChapterRequest	true	"New values"
//	@Success		200		{object}	models.Chapter
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/chapters/{id} [put]
func (h *Handler) UpdateChapter(w http.ResponseWriter, r *http.Request) {
	update(w, r, "id", h.records.GetChapter, chapterRequestFrom,
		func(req ChapterRequest, cur *models.Chapter) *models.Chapter { return req.model(cur.ID, cur.NovelID) },
		h.records.UpdateChapter)
}

// DeleteChapter handles DELETE /api/chapters/{id}.
//
//	@Summary		Delete a chapter
//	@Tags			chapters
//	@Param			id	path	int	true	"Chapter ID"
//	@Success		204	"Chapter deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/chapters/{id} [delete]
func (h *Handler) DeleteChapter(w http.ResponseWriter, r *http.Request) {
	deleteByID(w, r, "id", h.records.DeleteChapter)
}
