// Package inference calls hosted model endpoints that follow the Hugging Face
// inference API shape: POST {base}/models/{model} with {"inputs": ...}.
package inference

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

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inference error (%d): %s", e.StatusCode, e.Body)
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Invoke posts inputs (and optional parameters) to model and decodes the JSON
// response into out.
func (c *Client) Invoke(ctx context.Context, model, inputs string, parameters map[string]any, out any) error {
	if c.baseURL == "" {
		return errors.New("inference base url is not configured")
	}
	model = strings.Trim(strings.TrimSpace(model), "/")
	if model == "" {
		return errors.New("inference model is not configured")
	}

	payload := map[string]any{
		"inputs":  inputs,
		"options": map[string]any{"wait_for_model": true},
	}
	if len(parameters) > 0 {
		payload["parameters"] = parameters
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/models/"+model, bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &StatusError{StatusCode: response.StatusCode, Body: truncate(strings.TrimSpace(string(raw)), 500)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode inference response: %w", err)
	}
	return nil
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "...(truncated)"
}
