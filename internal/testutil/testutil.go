// Package testutil provides shared test helpers for setting up databases and
// seed data.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "inkwell-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() {
		os.Remove(dbFile.Name())
		os.Remove(dbFile.Name() + "-wal")
		os.Remove(dbFile.Name() + "-shm")
	})

	db, err := store.Open(store.DriverCGO, dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Story is the seed data created by SeedStory.
type Story struct {
	Novel      *models.Novel
	Characters []*models.Character
	Settings   []*models.Setting
	Outlines   []*models.Outline
	Chapters   []*models.Chapter
}

// SeedStory fills db with a small novel: two characters, one setting, two
// outline sections and two chapters.
func SeedStory(t *testing.T, db *store.DB) *Story {
	t.Helper()
	ctx := context.Background()
	s := &Story{Novel: &models.Novel{Title: "Fog Harbor", Description: "A lighthouse keeper and a smuggler."}}
	if err := db.CreateNovel(ctx, s.Novel); err != nil {
		t.Fatal(err)
	}
	id := s.Novel.ID

	s.Characters = []*models.Character{
		{NovelID: id, Name: "Mira", Description: "lighthouse keeper, stubborn and loyal"},
		{NovelID: id, Name: "Tovan", Description: "smuggler with a debt"},
	}
	for _, c := range s.Characters {
		if err := db.CreateCharacter(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	s.Settings = []*models.Setting{{NovelID: id, Name: "The Lighthouse", Type: "place", Description: "a tower on the cliffs"}}
	for _, st := range s.Settings {
		if err := db.CreateSetting(ctx, st); err != nil {
			t.Fatal(err)
		}
	}
	s.Outlines = []*models.Outline{
		{NovelID: id, Section: 1, Title: "Arrival", Content: "Tovan arrives at the harbor in the fog"},
		{NovelID: id, Section: 2, Title: "Storm", Content: "a storm forces Mira to choose"},
	}
	for _, o := range s.Outlines {
		if err := db.CreateOutline(ctx, o); err != nil {
			t.Fatal(err)
		}
	}
	s.Chapters = []*models.Chapter{
		{NovelID: id, Number: 1, Title: "Fog", Content: "The fog came in early that night."},
		{NovelID: id, Number: 2, Title: "Lantern", Content: "Mira lit the lantern and waited."},
	}
	for _, c := range s.Chapters {
		if err := db.CreateChapter(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	return s
}
