package api

import (
	"net/http"

	"github.com/starford/inkwell/internal/models"
)

// ListCharacters handles GET /api/novels/{novelID}/characters.
//
//	@Summary		List a novel's cast
//	@Tags			characters
//	@Produce		json
//	@Param			novelID	path		int	true	"Novel ID"
//	@Success		200		{object}	map[string]any
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{novelID}/characters [get]
func (h *Handler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	listByNovel(w, r, "characters", h.records.ListCharacters)
}

// CreateCharacter handles POST /api/novels/{novelID}/characters.
//
//	@Summary		Add a character
//	@Tags			characters
//	@Accept			json
//	@Produce		json
//	@Param			novelID	path		int	true	"Novel ID"
//	@Param			body	body		CharacterRequest	true	"Record to create"
//	@Success		201		{object}	models.Character
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{novelID}/characters [post]
func (h *Handler) CreateCharacter(w http.ResponseWriter, r *http.Request) {
	save(w, r, http.StatusCreated,
		func(req CharacterRequest) (*models.Character, error) {
			novelID, err := idParam(r, "novelID")
			if err != nil {
				return nil, err
			}
			return req.model(0, novelID), nil
		},
		h.records.CreateCharacter)
}

// GetCharacter handles GET /api/characters/{id}.
//
//	@Summary		Get a character
//	@Tags			characters
//	@Produce		json
//	@Param			id	path		int	true	"Record ID"
//	@Success		200	{object}	models.Character
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/characters/{id} [get]
func (h *Handler) GetCharacter(w http.ResponseWriter, r *http.Request) {
	getByID(w, r, "id", h.records.GetCharacter)
}

// UpdateCharacter handles PUT /api/characters/{id}.
//
//	@Summary		Update a character
//	@Tags			characters
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int	true	"Record ID"
//	@Param			body	body		CharacterRequest	true	"New values"
//	@Success		200		{object}	models.Character
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/characters/{id} [put]
func (h *Handler) UpdateCharacter(w http.ResponseWriter, r *http.Request) {
	update(w, r, "id", h.records.GetCharacter, characterRequestFrom,
		func(req CharacterRequest, cur *models.Character) *models.Character {
			return req.model(cur.ID, cur.NovelID)
		},
		h.records.UpdateCharacter)
}

// DeleteCharacter handles DELETE /api/characters/{id}.
//
//	@Summary		Delete a character
//	@Tags			characters
//	@Param			id	path	int	true	"Record ID"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/characters/{id} [delete]
func (h *Handler) DeleteCharacter(w http.ResponseWriter, r *http.Request) {
	deleteByID(w, r, "id", h.records.DeleteCharacter)
}

// ListSettings handles GET /api/novels/{novelID}/settings.
//
//	@Summary		List a novel's world-building settings
//	@Tags			settings
//	@Produce		json
//	@Param			novelID	path		int	true	"Novel ID"
//	@Success		200		{object}	map[string]any
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{novelID}/settings [get]
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	listByNovel(w, r, "settings", h.records.ListSettings)
}

// CreateSetting handles POST /api/novels/{novelID}/settings.
//
//	@Summary		Add a setting
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			novelID	path		int	true	"Novel ID"
//	@Param			body	body		SettingRequest	true	"Record to create"
//	@Success		201		{object}	models.Setting
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{novelID}/settings [post]
func (h *Handler) CreateSetting(w http.ResponseWriter, r *http.Request) {
	save(w, r, http.StatusCreated,
		func(req SettingRequest) (*models.Setting, error) {
			novelID, err := idParam(r, "novelID")
			if err != nil {
				return nil, err
			}
			return req.model(0, novelID), nil
		},
		h.records.CreateSetting)
}

// GetSetting handles GET /api/settings/{id}.
//
//	@Summary		Get a setting
//	@Tags			settings
//	@Produce		json
//	@Param			id	path		int	true	"Record ID"
//	@Success		200	{object}	models.Setting
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings/{id} [get]
func (h *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	getByID(w, r, "id", h.records.GetSetting)
}

// UpdateSetting handles PUT /api/settings/{id}.
//
//	@Summary		Update a setting
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int	true	"Record ID"
//	@Param			body	body		SettingRequest	true	"New values"
//	@Success		200		{object}	models.Setting
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings/{id} [put]
func (h *Handler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	update(w, r, "id", h.records.GetSetting, settingRequestFrom,
		func(req SettingRequest, cur *models.Setting) *models.Setting { return req.model(cur.ID, cur.NovelID) },
		h.records.UpdateSetting)
}

// DeleteSetting handles DELETE /api/settings/{id}.
//
//	@Summary		Delete a setting
//	@Tags			settings
//	@Param			id	path	int	true	"Record ID"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings/{id} [delete]
func (h *Handler) DeleteSetting(w http.ResponseWriter, r *http.Request) {
	deleteByID(w, r, "id", h.records.DeleteSetting)
}

// ListOutlines handles GET /api/novels/{novelID}/outlines.
//
//	@Summary		List a novel's outline in section order
//	@Tags			outlines
//	@Produce		json
//	@Param			novelID	path		int	true	"Novel ID"
//	@Success		200		{object}	map[string]any
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{novelID}/outlines [get]
func (h *Handler) ListOutlines(w http.ResponseWriter, r *http.Request) {
	listByNovel(w, r, "outlines", h.records.ListOutlines)
}

// CreateOutline handles POST /api/novels/{novelID}/outlines.
//
//	@Summary		Add an outline section
//	@Tags			outlines
//	@Accept			json
//	@Produce		json
//	@Param			novelID	path		int	true	"Novel ID"
//	@Param			body	body		OutlineRequest	true	"Record to create"
//	@Success		201		{object}	models.Outline
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/novels/{novelID}/outlines [post]
func (h *Handler) CreateOutline(w http.ResponseWriter, r *http.Request) {
	save(w, r, http.StatusCreated,
		func(req OutlineRequest) (*models.Outline, error) {
			novelID, err := idParam(r, "novelID")
			if err != nil {
				return nil, err
			}
			return req.model(0, novelID), nil
		},
		h.records.CreateOutline)
}

// GetOutline handles GET /api/outlines/{id}.
//
//	@Summary		Get an outline section
//	@Tags			outlines
//	@Produce		json
//	@Param			id	path		int	true	"Record ID"
//	@Success		200	{object}	models.Outline
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/outlines/{id} [get]
func (h *Handler) GetOutline(w http.ResponseWriter, r *http.Request) {
	getByID(w, r, "id", h.records.GetOutline)
}

// UpdateOutline handles PUT /api/outlines/{id}.
//
//	@Summary		Update an outline section
//	@Tags			outlines
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int	true	"Record ID"
//	@Param			body	body		OutlineRequest	true	"New values"
//	@Success		200		{object}	models.Outline
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/outlines/{id} [put]
func (h *Handler) UpdateOutline(w http.ResponseWriter, r *http.Request) {
	update(w, r, "id", h.records.GetOutline, outlineRequestFrom,
		func(req OutlineRequest, cur *models.Outline) *models.Outline { return req.model(cur.ID, cur.NovelID) },
		h.records.UpdateOutline)
}

// DeleteOutline handles DELETE /api/outlines/{id}.
//
//	@Summary		Delete an outline section
//	@Tags			outlines
//	@Param			id	path	int	true	"Record ID"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/outlines/{id} [delete]
func (h *Handler) DeleteOutline(w http.ResponseWriter, r *http.Request) {
	deleteByID(w, r, "id", h.records.DeleteOutline)
}
