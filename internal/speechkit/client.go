package speechkit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrSubmit is returned when the recognition request cannot be submitted
// or the service does not hand back an operation identifier.
var ErrSubmit = errors.New("recognition submit")

// ErrPoll is returned when an operation status query fails at the
// transport or HTTP level.
var ErrPoll = errors.New("recognition poll")

// ErrOperation is returned when the remote operation finishes with an
// explicit error payload.
var ErrOperation = errors.New("recognition operation")

// ErrPollTimeout is returned when the operation produces no terminal
// response within the maximum poll window.
var ErrPollTimeout = errors.New("recognition poll timeout")

// Operation is the state of one long-running recognition operation.
type Operation struct {
	ID       string            `json:"id"`
	Done     bool              `json:"done"`
	Response OperationResponse `json:"response"`
	Error    *OperationError   `json:"error"`
}

// OperationResponse holds the recognition result of a finished operation.
type OperationResponse struct {
	Chunks []Chunk `json:"chunks"`
}

// Chunk is one recognized fragment with ranked alternatives.
type Chunk struct {
	Alternatives []Alternative `json:"alternatives"`
}

// Alternative is a single recognition hypothesis.
type Alternative struct {
	Text string `json:"text"`
}

// OperationError is the error payload of a failed operation.
type OperationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Recognize submits the audio URI, waits for the operation to finish,
// and returns the concatenated recognized text.
func (c *implClient) Recognize(ctx context.Context, audioURI string) (string, error) {
	operationID, err := c.Submit(ctx, audioURI)
	if err != nil {
		return "", err
	}
	c.logger.Info(ctx, "Recognition operation started: %s", operationID)

	op, err := c.Poll(ctx, operationID)
	if err != nil {
		return "", err
	}

	text := c.ExtractText(op)
	c.logger.Info(ctx, "Recognition complete: %d characters", len(text))
	return text, nil
}

// Submit posts the recognition configuration and the audio reference,
// returning the remote operation identifier.
func (c *implClient) Submit(ctx context.Context, audioURI string) (string, error) {
	body := map[string]interface{}{
		"config": map[string]interface{}{
			"specification": map[string]interface{}{
				"languageCode":      c.language,
				"model":             c.model,
				"audioEncoding":     "OGG_OPUS",
				"sampleRateHertz":   c.sampleRate,
				"audioChannelCount": 1,
			},
		},
		"audio": map[string]interface{}{
			"uri": audioURI,
		},
	}

	payload, status, err := c.doJSON(ctx, http.MethodPost, c.recognizeURL, body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmit, err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrSubmit, status, string(payload))
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", ErrSubmit, err)
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("%w: no operation ID in response", ErrSubmit)
	}
	return parsed.ID, nil
}

// Poll queries the operation on a fixed interval until it carries a
// completion flag or an error payload, or the poll window elapses.
func (c *implClient) Poll(ctx context.Context, operationID string) (*Operation, error) {
	url := c.operationURL + "/" + operationID
	attempts := int(c.maxPollTime / c.pollInterval)

	for i := 0; i < attempts; i++ {
		payload, status, err := c.doJSON(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPoll, err)
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d: %s", ErrPoll, status, string(payload))
		}

		var op Operation
		if err := json.Unmarshal(payload, &op); err != nil {
			return nil, fmt.Errorf("%w: parse response: %v", ErrPoll, err)
		}

		if op.Error != nil {
			return nil, fmt.Errorf("%w: [%d] %s", ErrOperation, op.Error.Code, op.Error.Message)
		}
		if op.Done {
			return &op, nil
		}

		select {
		case <-time.After(c.pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w: no terminal response after %s for operation %s",
		ErrPollTimeout, c.maxPollTime, operationID)
}

// ExtractText concatenates the best alternative from every chunk in
// chunk order, joined by a single space. No chunks means an empty
// transcript, which is valid.
func (c *implClient) ExtractText(op *Operation) string {
	var texts []string
	for _, chunk := range op.Response.Chunks {
		if len(chunk.Alternatives) > 0 {
			texts = append(texts, chunk.Alternatives[0].Text)
		}
	}
	return strings.Join(texts, " ")
}

// doJSON performs one authenticated API call. The bearer token is
// fetched fresh for every call so a credential that expires mid-poll is
// refreshed transparently on the next attempt.
func (c *implClient) doJSON(ctx context.Context, method, url string, body interface{}) ([]byte, int, error) {
	token, err := c.iam.Token(ctx)
	if err != nil {
		return nil, 0, err
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return payload, resp.StatusCode, nil
}
