package gpt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrRequest is returned when the completion request fails at the
// transport or HTTP level.
var ErrRequest = errors.New("analysis request")

// ErrMalformed is returned when a success response lacks the expected
// result field.
var ErrMalformed = errors.New("analysis response malformed")

// Analyze produces a structured markdown report for the transcript.
// Empty input short-circuits to a placeholder; text over the input
// ceiling is analyzed in overlapping chunks and merged with one final
// summarization request.
func (c *implClient) Analyze(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return emptyTranscriptPlaceholder, nil
	}

	if len([]rune(text)) <= c.maxInputChars {
		return c.complete(ctx, systemPrompt, text)
	}

	return c.analyzeChunked(ctx, text)
}

func (c *implClient) analyzeChunked(ctx context.Context, text string) (string, error) {
	chunks := c.splitText(text)
	c.logger.Info(ctx, "Text split into %d chunks for analysis", len(chunks))

	partials := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		c.logger.Info(ctx, "Analyzing chunk %d/%d", i+1, len(chunks))
		result, err := c.complete(ctx, systemPrompt,
			fmt.Sprintf("[Часть %d из %d]\n\n%s", i+1, len(chunks), chunk))
		if err != nil {
			return "", err
		}
		partials = append(partials, result)
	}

	sections := make([]string, 0, len(partials))
	for i, partial := range partials {
		sections = append(sections, fmt.Sprintf("### Результат анализа части %d\n%s", i+1, partial))
	}
	return c.complete(ctx, summarizePrompt, strings.Join(sections, "\n\n---\n\n"))
}

// complete sends one completion request and returns the model's text.
func (c *implClient) complete(ctx context.Context, system, user string) (string, error) {
	token, err := c.iam.Token(ctx)
	if err != nil {
		return "", err
	}

	body := map[string]interface{}{
		"modelUri": c.modelURI,
		"completionOptions": map[string]interface{}{
			"stream":      false,
			"temperature": c.temperature,
			"maxTokens":   c.maxTokens,
		},
		"messages": []map[string]string{
			{"role": "system", "text": system},
			{"role": "user", "text": user},
		},
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.completionURL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-folder-id", c.folderID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrRequest, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrRequest, resp.StatusCode, string(payload))
	}

	var parsed struct {
		Result struct {
			Alternatives []struct {
				Message struct {
					Role string `json:"role"`
					Text string `json:"text"`
				} `json:"message"`
			} `json:"alternatives"`
		} `json:"result"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", ErrMalformed, err)
	}
	if len(parsed.Result.Alternatives) == 0 {
		return "", fmt.Errorf("%w: no alternatives in response", ErrMalformed)
	}

	return parsed.Result.Alternatives[0].Message.Text, nil
}
