package vault

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

// startWatch runs Watch in the background and stops it at cleanup.
func startWatch(t *testing.T, e *syncEnv) (*sync.Mutex, *[]Report) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	var reports []Report
	done := make(chan error, 1)
	go func() {
		done <- e.syncer.Watch(ctx, 50*time.Millisecond, func(r Report) {
			mu.Lock()
			reports = append(reports, r)
			mu.Unlock()
		})
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Watch: %v", err)
		}
	})
	time.Sleep(100 * time.Millisecond)
	return &mu, &reports
}

func TestWatchImportsNewNovelDirectory(t *testing.T) {
	e := newSyncEnv(t)
	mu, reports := startWatch(t, e)
	ctx := context.Background()

	dir := filepath.Join(e.fs.Root(), "harbor", "chapters")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	_ = os.WriteFile(filepath.Join(e.fs.Root(), "harbor", "novel.md"), []byte("---\ntitle: Fog Harbor\n---\n"), 0o644)
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(dir, "001-fog.md"), []byte("# Fog\n\nThe fog rolled in.\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		novels, _ := e.records.ListNovels(ctx)
		if len(novels) != 1 {
			return false
		}
		chapters, _ := e.records.ListChapters(ctx, novels[0].ID)
		return len(chapters) == 1
	}, "novel and chapter not imported by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(*reports) > 0
	}, "onSync not called")
}

func TestWatchRemovesDeletedFile(t *testing.T) {
	e := newSyncEnv(t)
	e.seedHarbor(t)
	e.sync(t)
	startWatch(t, e)
	ctx := context.Background()

	if err := os.Remove(filepath.Join(e.fs.Root(), "harbor", "settings", "lighthouse.md")); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		novels, _ := e.records.ListNovels(ctx)
		if len(novels) != 1 {
			return false
		}
		settings, _ := e.records.ListSettings(ctx, novels[0].ID)
		return len(settings) == 0
	}, "deleted file still imported")
}

func TestWatchStopsOnCancel(t *testing.T) {
	e := newSyncEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.syncer.Watch(ctx, 0, nil) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
