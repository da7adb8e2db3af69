package iam

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avolkov/voxscribe/internal/logger"
)

type serviceAccountKey struct {
	ID               string `json:"id"`
	ServiceAccountID string `json:"service_account_id"`
	PrivateKey       string `json:"private_key"`
}

type implManager struct {
	keyID            string
	serviceAccountID string
	privateKey       *rsa.PrivateKey
	endpoint         string
	logger           logger.Logger

	httpClient *http.Client
	now        func() time.Time

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

// New creates a Manager from a service account key JSON file.
// The key file must contain id, service_account_id and private_key fields.
func New(keyFilePath, endpoint string, log logger.Logger) (Manager, error) {
	data, err := os.ReadFile(keyFilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: read key file: %v", ErrCredential, err)
	}

	var key serviceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("%w: parse key file: %v", ErrCredential, err)
	}
	if key.ID == "" || key.ServiceAccountID == "" || key.PrivateKey == "" {
		return nil, fmt.Errorf("%w: key file is missing id, service_account_id or private_key", ErrCredential)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(key.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key: %v", ErrCredential, err)
	}

	return &implManager{
		keyID:            key.ID,
		serviceAccountID: key.ServiceAccountID,
		privateKey:       privateKey,
		endpoint:         endpoint,
		logger:           log,
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		now:              time.Now,
	}, nil
}
