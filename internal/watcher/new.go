package watcher

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"

	"github.com/avolkov/voxscribe/internal/logger"
)

// New creates a Watcher over the inbox directory, creating the
// directory if it does not exist yet.
func New(inboxDir string, handler IngestHandler, log logger.Logger) (Watcher, error) {
	if err := os.MkdirAll(inboxDir, 0755); err != nil {
		return nil, fmt.Errorf("create inbox dir: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsWatcher.Add(inboxDir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	return &implWatcher{
		inboxDir: inboxDir,
		handler:  handler,
		logger:   log,
		watcher:  fsWatcher,
	}, nil
}
