package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/avolkov/voxscribe/internal/logger"
)

type ingestRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *ingestRecorder) handle(ctx context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return nil
}

func (r *ingestRecorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func waitForIngest(t *testing.T, r *ingestRecorder, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if len(r.seen()) >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d ingested files, got %v", n, r.seen())
}

func TestNewCreatesInboxDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")
	rec := &ingestRecorder{}

	w, err := New(dir, rec.handle, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Stop()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("inbox dir was not created: %v", err)
	}
}

func TestIngestsExistingFilesOnStart(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"old.mp3", "skip.txt", "clip.mp4"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	rec := &ingestRecorder{}
	w, err := New(dir, rec.handle, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	waitForIngest(t, rec, 2)
	cancel()
	<-done

	seen := rec.seen()
	if len(seen) != 2 {
		t.Fatalf("ingested %d files %v, want 2 (unsupported skipped)", len(seen), seen)
	}
	for _, p := range seen {
		if filepath.Ext(p) == ".txt" {
			t.Errorf("unsupported file %s was ingested", p)
		}
	}
}

func TestIngestsDroppedFile(t *testing.T) {
	dir := t.TempDir()
	rec := &ingestRecorder{}

	w, err := New(dir, rec.handle, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// Give the event loop a moment to come up before dropping the file.
	time.Sleep(50 * time.Millisecond)
	dropped := filepath.Join(dir, "dropped.ogg")
	if err := os.WriteFile(dropped, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	waitForIngest(t, rec, 1)
	if rec.seen()[0] != dropped {
		t.Errorf("ingested %q, want %q", rec.seen()[0], dropped)
	}
}
