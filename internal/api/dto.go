package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/store"
	"github.com/starford/inkwell/internal/workshop"
)

// NovelRequest is the request body for creating or updating a novel. On
// update, fields left out of the body keep their stored values.
type NovelRequest struct {
	Title       string `json:"title" example:"Fog Harbor" validate:"required"`
	Description string `json:"description" example:"A lighthouse keeper and a smuggler."`
}

func novelRequestFrom(n *models.Novel) NovelRequest {
	return NovelRequest{Title: n.Title, Description: n.Description}
}

func (req NovelRequest) model(id int64) *models.Novel {
	return &models.Novel{ID: id, Title: req.Title, Description: req.Description}
}

// ChapterRequest is the request body for creating or updating a chapter.
type ChapterRequest struct {
	ChapterNumber int    `json:"chapter_number" example:"1" validate:"required"`
	Title         string `json:"title" example:"Fog" validate:"required"`
	Content       string `json:"content" example:"The fog came in early that night." validate:"required"`
	Summary       string `json:"summary"`
}

func chapterRequestFrom(c *models.Chapter) ChapterRequest {
	return ChapterRequest{ChapterNumber: c.Number, Title: c.Title, Content: c.Content, Summary: c.Summary}
}

func (req ChapterRequest) model(id, novelID int64) *models.Chapter {
	return &models.Chapter{
		ID:      id,
		NovelID: novelID,
		Number:  req.ChapterNumber,
		Title:   req.Title,
		Content: req.Content,
		Summary: req.Summary,
	}
}

// CharacterRequest is the request body for creating or updating a character.
type CharacterRequest struct {
	Name          string `json:"name" example:"Mira" validate:"required"`
	Description   string `json:"description"`
	Personality   string `json:"personality"`
	Background    string `json:"background"`
	Relationships string `json:"relationships"`
}

func characterRequestFrom(c *models.Character) CharacterRequest {
	return CharacterRequest{
		Name:          c.Name,
		Description:   c.Description,
		Personality:   c.Personality,
		Background:    c.Background,
		Relationships: c.Relationships,
	}
}

func (req CharacterRequest) model(id, novelID int64) *models.Character {
	return &models.Character{
		ID:            id,
		NovelID:       novelID,
		Name:          req.Name,
		Description:   req.Description,
		Personality:   req.Personality,
		Background:    req.Background,
		Relationships: req.Relationships,
	}
}

// SettingRequest is the request body for creating or updating a setting.
type SettingRequest struct {
	Name        string `json:"name" example:"The Lighthouse" validate:"required"`
	Type        string `json:"type" example:"place"`
	Description string `json:"description"`
}

func settingRequestFrom(st *models.Setting) SettingRequest {
	return SettingRequest{Name: st.Name, Type: st.Type, Description: st.Description}
}

func (req SettingRequest) model(id, novelID int64) *models.Setting {
	return &models.Setting{ID: id, NovelID: novelID, Name: req.Name, Type: req.Type, Description: req.Description}
}

// OutlineRequest is the request body for creating or updating an outline section.
type OutlineRequest struct {
	SectionNumber int    `json:"section_number" example:"1" validate:"required"`
	Title         string `json:"title" example:"Arrival" validate:"required"`
	Content       string `json:"content" validate:"required"`
	Status        string `json:"status" example:"planned" enums:"planned,writing,completed"`
}

func outlineRequestFrom(o *models.Outline) OutlineRequest {
	return OutlineRequest{SectionNumber: o.Section, Title: o.Title, Content: o.Content, Status: string(o.Status)}
}

func (req OutlineRequest) model(id, novelID int64) *models.Outline {
	return &models.Outline{
		ID:      id,
		NovelID: novelID,
		Section: req.SectionNumber,
		Title:   req.Title,
		Content: req.Content,
		Status:  models.OutlineStatus(req.Status),
	}
}

// GenerateChapterRequest is the body of POST /assist/generate-chapter.
type GenerateChapterRequest struct {
	NovelID      int64  `json:"novel_id" example:"1" validate:"required"`
	Context      string `json:"context" example:"Mira sees a light out at sea." validate:"required"`
	Requirements string `json:"requirements"`
}

// Validate implements validation.Validatable.
func (req GenerateChapterRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.NovelID, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.Context, validation.Required),
	)
}

// NovelIDRequest is the body of assist calls that only name a novel.
type NovelIDRequest struct {
	NovelID int64 `json:"novel_id" example:"1" validate:"required"`
}

// Validate implements validation.Validatable.
func (req NovelIDRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.NovelID, validation.Required, validation.Min(int64(1))),
	)
}

// SuggestPlotRequest is the body of POST /assist/suggest-next-plot.
type SuggestPlotRequest struct {
	NovelID        int64  `json:"novel_id" example:"1" validate:"required"`
	CurrentContext string `json:"current_context" validate:"required"`
}

// Validate implements validation.Validatable.
func (req SuggestPlotRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.NovelID, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.CurrentContext, validation.Required),
	)
}

// GenerateChapterResponse wraps a finished generation run.
type GenerateChapterResponse struct {
	Success bool `json:"success" example:"true"`
	*workshop.Result
}

// ConsistencyResponse wraps a consistency report.
type ConsistencyResponse struct {
	Success bool                      `json:"success" example:"true"`
	Report  *models.ConsistencyReport `json:"consistency_report"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"knowledge refreshed"`
}

// SummaryResponse wraps a knowledge summary.
type SummaryResponse struct {
	Success bool                     `json:"success" example:"true"`
	Summary *models.KnowledgeSummary `json:"summary"`
}

// SuggestionsResponse wraps plot suggestions.
type SuggestionsResponse struct {
	Success     bool     `json:"success" example:"true"`
	Suggestions []string `json:"suggestions"`
}

// SearchResponse wraps chapter search hits.
type SearchResponse struct {
	Results []store.SearchResult `json:"results" validate:"required"`
}
