package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/avolkov/voxscribe/internal/logger"
	"github.com/avolkov/voxscribe/internal/segmenter"
)

// settleDelay is how long a freshly created file is left alone before
// ingestion, so a copy in progress is not picked up half-written.
const settleDelay = 2 * time.Second

type implWatcher struct {
	inboxDir string
	handler  IngestHandler
	logger   logger.Logger
	watcher  *fsnotify.Watcher
	wg       sync.WaitGroup
}

// Start ingests files already sitting in the inbox, then monitors for
// new ones until ctx is cancelled.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Inbox watcher started. Monitoring: %s", w.inboxDir)

	if err := w.ingestExisting(ctx); err != nil {
		w.logger.Error(ctx, "Failed to scan inbox: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for inbox ingestion to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "Inbox watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !segmenter.IsSupported(event.Name) {
				w.logger.Debug(ctx, "Ignoring unsupported file: %s", event.Name)
				continue
			}
			w.logger.Info(ctx, "New inbox file detected: %s", event.Name)
			w.ingest(ctx, event.Name, settleDelay)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the underlying file system watcher.
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

// ingestExisting picks up files dropped while the process was down.
func (w *implWatcher) ingestExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.inboxDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.inboxDir, entry.Name())
		if !segmenter.IsSupported(path) {
			continue
		}
		w.logger.Info(ctx, "Found existing inbox file: %s", path)
		w.ingest(ctx, path, 0)
	}
	return nil
}

func (w *implWatcher) ingest(ctx context.Context, path string, delay time.Duration) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
		}

		if err := w.handler(ctx, path); err != nil {
			w.logger.Error(ctx, "Failed to ingest %s: %v", path, err)
		}
	}()
}
