package bot

import "context"

// Bot is the chat front-end: it authorizes users, accepts media
// uploads, queues them for processing and serves stored results.
type Bot interface {
	// Run consumes updates until ctx is cancelled.
	Run(ctx context.Context) error
}
