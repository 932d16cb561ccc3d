package models

import "time"

// KnowledgeSnapshot is the story context assembled for a single generation run.
// It is never persisted.
type KnowledgeSnapshot struct {
	Novel          Novel       `json:"novel"`
	Characters     []Character `json:"characters"`
	Settings       []Setting   `json:"settings"`
	Outlines       []Outline   `json:"outlines"`
	RecentChapters []Chapter   `json:"recent_chapters"`
}

// KnowledgeStatistics holds record counts for a novel.
type KnowledgeStatistics struct {
	Chapters        int `json:"chapter_count"`
	Characters      int `json:"character_count"`
	Settings        int `json:"setting_count"`
	Outlines        int `json:"outline_count"`
	TotalCharacters int `json:"total_words"`
}

// KnowledgeSummary is a compact overview of everything stored for a novel.
type KnowledgeSummary struct {
	NovelTitle       string              `json:"novel_title"`
	NovelDescription string              `json:"novel_description"`
	Statistics       KnowledgeStatistics `json:"statistics"`
	LatestChapter    *Chapter            `json:"latest_chapter"`
	LastUpdated      time.Time           `json:"last_updated"`
}
