package dispatcher

import (
	"context"
	"sync"
	"time"

	"github.com/avolkov/voxscribe/internal/config"
	"github.com/avolkov/voxscribe/internal/gpt"
	"github.com/avolkov/voxscribe/internal/logger"
	"github.com/avolkov/voxscribe/internal/repository"
	"github.com/avolkov/voxscribe/internal/segmenter"
	"github.com/avolkov/voxscribe/internal/speechkit"
	"github.com/avolkov/voxscribe/internal/storage"
)

type implDispatcher struct {
	segmenter  segmenter.Segmenter
	storage    storage.Storage
	recognizer speechkit.Client
	analyzer   gpt.Client
	repo       repository.Repository
	notifier   Notifier
	logger     logger.Logger

	queue    *jobQueue
	workers  int
	tmpDir   string
	shutdown string

	expectedWait func(durationSeconds float64) time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Dispatcher wiring the pipeline components together.
func New(
	cfg config.ProcessingConfig,
	seg segmenter.Segmenter,
	store storage.Storage,
	rec speechkit.Client,
	analyzer gpt.Client,
	repo repository.Repository,
	notifier Notifier,
	log logger.Logger,
) Dispatcher {
	return &implDispatcher{
		segmenter:    seg,
		storage:      store,
		recognizer:   rec,
		analyzer:     analyzer,
		repo:         repo,
		notifier:     notifier,
		logger:       log,
		queue:        newJobQueue(),
		workers:      cfg.Workers,
		tmpDir:       cfg.TmpDir,
		shutdown:     cfg.Shutdown,
		expectedWait: expectedProcessingTime,
	}
}

// expectedProcessingTime is the heuristic for how long recognition of a
// file should take: roughly 10 seconds per minute of audio plus a fixed
// five-minute buffer.
func expectedProcessingTime(durationSeconds float64) time.Duration {
	return time.Duration((durationSeconds/60*10 + 300) * float64(time.Second))
}
