package storage

import "context"

// Storage holds audio segments in an S3-compatible bucket for the
// recognition service to fetch, and removes them after processing.
type Storage interface {
	// Upload puts a local file under the given key and returns its
	// s3://bucket/key locator.
	Upload(ctx context.Context, localPath, key string) (string, error)
	Delete(ctx context.Context, key string) error
	// StorageURI builds the HTTPS URI the recognition service consumes.
	StorageURI(key string) string
}
