package iam

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrCredential covers every failure to obtain or parse an IAM token.
// Callers decide whether to retry; the manager never retries internally.
var ErrCredential = errors.New("iam credential")

const (
	// tokenLifetime is the nominal lifetime requested for each token.
	tokenLifetime = 3600 * time.Second
	// refreshMargin shortens the cached lifetime so a token is never
	// used at the edge of expiry.
	refreshMargin = 300 * time.Second
)

// Token returns a currently valid IAM token, fetching a new one if the
// cached token is absent or expired. Concurrent callers share a single
// fetch: validity is checked, the lock is taken, validity is re-checked,
// and only then does one goroutine hit the exchange endpoint.
func (m *implManager) Token(ctx context.Context) (string, error) {
	m.mu.RLock()
	token, valid := m.token, m.now().Before(m.expiresAt)
	m.mu.RUnlock()
	if token != "" && valid {
		return token, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Re-check after acquiring the lock
	if m.token != "" && m.now().Before(m.expiresAt) {
		return m.token, nil
	}

	assertion, err := m.signAssertion()
	if err != nil {
		return "", err
	}

	token, err = m.exchange(ctx, assertion)
	if err != nil {
		return "", err
	}

	m.token = token
	m.expiresAt = m.now().Add(tokenLifetime - refreshMargin)
	m.logger.Debug(ctx, "IAM token refreshed, valid until %s", m.expiresAt.Format(time.RFC3339))
	return m.token, nil
}

// Invalidate forces the next Token call to fetch a fresh token.
func (m *implManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.expiresAt = time.Time{}
}

// signAssertion builds the PS256-signed JWT exchanged for an IAM token.
func (m *implManager) signAssertion() (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Issuer:    m.serviceAccountID,
		Audience:  jwt.ClaimStrings{m.endpoint},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodPS256, claims)
	token.Header["kid"] = m.keyID

	signed, err := token.SignedString(m.privateKey)
	if err != nil {
		return "", fmt.Errorf("%w: sign assertion: %v", ErrCredential, err)
	}
	return signed, nil
}

func (m *implManager) exchange(ctx context.Context, assertion string) (string, error) {
	body, err := json.Marshal(map[string]string{"jwt": assertion})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrCredential, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrCredential, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: exchange request: %v", ErrCredential, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrCredential, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: exchange failed: %d %s", ErrCredential, resp.StatusCode, string(payload))
	}

	var parsed struct {
		IAMToken string `json:"iamToken"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", ErrCredential, err)
	}
	if parsed.IAMToken == "" {
		return "", fmt.Errorf("%w: no iamToken in response", ErrCredential)
	}

	return parsed.IAMToken, nil
}
