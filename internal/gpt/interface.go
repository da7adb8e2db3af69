package gpt

import "context"

// Client turns a transcript into a structured markdown report, chunking
// and re-summarizing transparently when the text exceeds the model's
// input ceiling.
type Client interface {
	Analyze(ctx context.Context, text string) (string, error)
}
