package emotion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sakinah/backend/internal/inference"
)

var ErrNoScores = errors.New("emotion model returned no scores")

// InferenceClassifier queries a text-classification model that emits the
// seven labels, such as j-hartmann/emotion-english-distilroberta-base.
type InferenceClassifier struct {
	client *inference.Client
	model  string
}

func NewInferenceClassifier(client *inference.Client, model string) *InferenceClassifier {
	return &InferenceClassifier{client: client, model: model}
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (c *InferenceClassifier) Classify(ctx context.Context, text string) (Result, error) {
	var raw json.RawMessage
	params := map[string]any{"top_k": len(Labels)}
	if err := c.client.Invoke(ctx, c.model, text, params, &raw); err != nil {
		return Result{}, fmt.Errorf("classify emotion: %w", err)
	}

	items, err := decodeLabelScores(raw)
	if err != nil {
		return Result{}, fmt.Errorf("classify emotion: %w", err)
	}

	known := make(map[string]bool, len(Labels))
	for _, label := range Labels {
		known[label] = true
	}
	probabilities := make(map[string]float64, len(items))
	for _, item := range items {
		label := normalizeLabel(item.Label)
		if known[label] {
			probabilities[label] = item.Score
		}
	}
	// A model with a different label set would otherwise yield all zeros.
	if len(probabilities) == 0 {
		return Result{}, fmt.Errorf("classify emotion: %w", ErrNoScores)
	}
	return NewResult(probabilities), nil
}

// decodeLabelScores accepts both the nested [[...]] and the flat [...] shape.
func decodeLabelScores(raw json.RawMessage) ([]labelScore, error) {
	var nested [][]labelScore
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}
	var flat []labelScore
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}
	return nil, ErrNoScores
}
