package dispatcher

import "context"

// Dispatcher owns the job queue and the worker pool executing the full
// processing pipeline for each job.
type Dispatcher interface {
	// Enqueue adds a job and returns the queue depth at insertion time
	// (1 means the job will run next).
	Enqueue(job Job) int
	QueueDepth() int
	Start(ctx context.Context)
	// Stop shuts the pool down according to the configured policy:
	// hard-cancel abandons in-flight jobs, drain finishes them first.
	Stop()
}

// Notifier delivers fire-and-forget messages to a requester. Send
// failures are the implementation's problem; they are never surfaced
// to pipeline logic.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string)
	// NotifyResult delivers the final report along with the stored
	// transcription identifier so the front-end can offer a document.
	NotifyResult(ctx context.Context, chatID int64, text string, transcriptionID int64)
}
