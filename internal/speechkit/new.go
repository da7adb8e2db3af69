package speechkit

import (
	"net/http"
	"time"

	"github.com/avolkov/voxscribe/internal/config"
	"github.com/avolkov/voxscribe/internal/iam"
	"github.com/avolkov/voxscribe/internal/logger"
)

type implClient struct {
	iam    iam.Manager
	logger logger.Logger

	recognizeURL string
	operationURL string
	language     string
	model        string
	sampleRate   int

	httpClient   *http.Client
	pollInterval time.Duration
	maxPollTime  time.Duration
}

// New creates a recognition client for the configured endpoints.
func New(iamManager iam.Manager, cfg config.SpeechKitConfig, log logger.Logger) Client {
	return &implClient{
		iam:          iamManager,
		logger:       log,
		recognizeURL: cfg.Endpoint + "/speech/stt/v2/longRunningRecognize",
		operationURL: cfg.OperationEndpoint,
		language:     cfg.Language,
		model:        cfg.Model,
		sampleRate:   cfg.SampleRateHertz,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		pollInterval: 5 * time.Second,
		maxPollTime:  30 * time.Minute,
	}
}
