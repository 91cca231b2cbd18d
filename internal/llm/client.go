package llm

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

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

var ErrEmptyCompletion = errors.New("llm response content is empty")

type ClientConfig struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// HTTPChatModel talks to an OpenAI-compatible chat completions endpoint.
// It performs exactly one request per call; there are no retries.
type HTTPChatModel struct {
	url        string
	apiKey     string
	model      string
	httpClient *http.Client
}

var _ model.BaseChatModel = (*HTTPChatModel)(nil)

func NewHTTPChatModel(cfg ClientConfig) *HTTPChatModel {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPChatModel{
		url:    strings.TrimSpace(cfg.URL),
		apiKey: strings.TrimSpace(cfg.APIKey),
		model:  strings.TrimSpace(cfg.Model),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (m *HTTPChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if m.url == "" {
		return nil, errors.New("LLM_API_URL is not configured")
	}
	options := model.GetCommonOptions(&model.Options{Model: &m.model}, opts...)
	requestModel := m.model
	if options.Model != nil && strings.TrimSpace(*options.Model) != "" {
		requestModel = strings.TrimSpace(*options.Model)
	}
	if requestModel == "" {
		return nil, errors.New("LLM_MODEL is not configured")
	}

	payload := chatRequest{
		Model:       requestModel,
		Messages:    make([]chatMessage, 0, len(input)),
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
	}
	for _, msg := range input {
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			continue
		}
		payload.Messages = append(payload.Messages, chatMessage{Role: string(msg.Role), Content: msg.Content})
	}
	if len(payload.Messages) == 0 {
		return nil, errors.New("llm request has no messages")
	}

	bodyRaw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(bodyRaw))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	response, err := m.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("llm request failed: %w", err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("llm error (%d): %s", response.StatusCode, truncateForLog(string(responseBody), 500))
	}

	var parsed chatResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode llm response: %w", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return nil, ErrEmptyCompletion
	}

	return &schema.Message{
		Role:    schema.Assistant,
		Content: strings.TrimSpace(parsed.Choices[0].Message.Content),
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: parsed.Choices[0].FinishReason,
			Usage: &schema.TokenUsage{
				PromptTokens:     parsed.Usage.PromptTokens,
				CompletionTokens: parsed.Usage.CompletionTokens,
				TotalTokens:      parsed.Usage.TotalTokens,
			},
		},
	}, nil
}

// Stream delivers the full completion as a single chunk.
func (m *HTTPChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func truncateForLog(value string, limit int) string {
	trimmed := strings.TrimSpace(value)
	if limit <= 0 || len(trimmed) <= limit {
		return trimmed
	}
	return trimmed[:limit] + "...(truncated)"
}
