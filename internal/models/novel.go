// Package models defines the domain types for Inkwell.
package models

import "time"

// Novel is the root record; every other record belongs to exactly one novel.
type Novel struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Chapter is a written chapter. Number is 1-based and not required to be unique.
type Chapter struct {
	ID        int64     `json:"id"`
	NovelID   int64     `json:"novel_id"`
	Number    int       `json:"chapter_number"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Character describes a member of the cast.
type Character struct {
	ID            int64     `json:"id"`
	NovelID       int64     `json:"novel_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Personality   string    `json:"personality"`
	Background    string    `json:"background"`
	Relationships string    `json:"relationships"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Setting is a piece of world building: a place, an item, a rule.
type Setting struct {
	ID          int64     `json:"id"`
	NovelID     int64     `json:"novel_id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OutlineStatus tracks how far an outline section has been written.
type OutlineStatus string

const (
	OutlinePlanned   OutlineStatus = "planned"
	OutlineWriting   OutlineStatus = "writing"
	OutlineCompleted OutlineStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s OutlineStatus) Valid() bool {
	switch s {
	case OutlinePlanned, OutlineWriting, OutlineCompleted:
		return true
	}
	return false
}

// Outline is one numbered section of the story plan.
type Outline struct {
	ID        int64         `json:"id"`
	NovelID   int64         `json:"novel_id"`
	Section   int           `json:"section_number"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Status    OutlineStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
