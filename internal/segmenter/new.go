package segmenter

import (
	"os"

	"github.com/avolkov/voxscribe/internal/logger"
	"github.com/avolkov/voxscribe/pkg/executor"
)

type implSegmenter struct {
	executor    executor.Executor
	logger      logger.Logger
	maxDuration int   // seconds
	maxSize     int64 // bytes

	fileSize func(string) (int64, error)
}

// New creates a Segmenter with the given per-part ceilings.
func New(exec executor.Executor, log logger.Logger, maxDurationSeconds int, maxSizeBytes int64) Segmenter {
	return &implSegmenter{
		executor:    exec,
		logger:      log,
		maxDuration: maxDurationSeconds,
		maxSize:     maxSizeBytes,
		fileSize: func(path string) (int64, error) {
			info, err := os.Stat(path)
			if err != nil {
				return 0, err
			}
			return info.Size(), nil
		},
	}
}
