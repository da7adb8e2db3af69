package dispatcher

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Job is one user-submitted media file moving through the pipeline.
// It is immutable after creation and owned by exactly one worker.
type Job struct {
	ID         string
	ChatID     int64
	FilePath   string
	FileName   string
	EnqueuedAt time.Time
}

// NewJob creates a job with an explicitly generated identifier.
func NewJob(chatID int64, filePath, fileName string) Job {
	return Job{
		ID:         strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		ChatID:     chatID,
		FilePath:   filePath,
		FileName:   fileName,
		EnqueuedAt: time.Now(),
	}
}
