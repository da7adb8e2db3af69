package speechkit

import "context"

// Client drives the asynchronous (deferred) speech recognition service:
// submit an uploaded audio URI, poll the long-running operation until a
// terminal response, and extract the recognized text.
type Client interface {
	// Recognize runs submit, poll and extract for one audio URI.
	Recognize(ctx context.Context, audioURI string) (string, error)
	Submit(ctx context.Context, audioURI string) (string, error)
	Poll(ctx context.Context, operationID string) (*Operation, error)
	ExtractText(op *Operation) string
}
