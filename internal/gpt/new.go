package gpt

import (
	"net/http"
	"time"

	"github.com/avolkov/voxscribe/internal/config"
	"github.com/avolkov/voxscribe/internal/iam"
	"github.com/avolkov/voxscribe/internal/logger"
)

type implClient struct {
	iam      iam.Manager
	logger   logger.Logger
	folderID string

	completionURL string
	modelURI      string
	temperature   float64
	maxTokens     int

	httpClient *http.Client

	// maxInputChars is a conservative per-request ceiling tuned to the
	// model's context budget (~6000 tokens for Russian text).
	maxInputChars int
	// overlap carries context across chunk boundaries.
	overlap int
}

// New creates an analysis client for the configured completion endpoint.
func New(iamManager iam.Manager, folderID string, cfg config.GPTConfig, log logger.Logger) Client {
	return &implClient{
		iam:           iamManager,
		logger:        log,
		folderID:      folderID,
		completionURL: cfg.Endpoint + "/foundationModels/v1/completion",
		modelURI:      cfg.ModelURI,
		temperature:   cfg.Temperature,
		maxTokens:     cfg.MaxTokens,
		httpClient:    &http.Client{Timeout: 120 * time.Second},
		maxInputChars: 24000,
		overlap:       500,
	}
}
