package watcher

import "context"

// Watcher monitors the inbox directory and hands newly dropped media
// files to the ingest handler.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// IngestHandler receives the path of a settled media file.
type IngestHandler func(ctx context.Context, filePath string) error
