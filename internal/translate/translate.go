// Package translate converts text between Arabic and English.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sakinah/backend/internal/inference"
)

type Direction string

const (
	ArabicToEnglish Direction = "ar-en"
	EnglishToArabic Direction = "en-ar"
)

var ErrEmptyTranslation = errors.New("translation came back empty")

type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Func adapts a plain function to Translator.
type Func func(ctx context.Context, text string) (string, error)

func (f Func) Translate(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// Passthrough returns its input unchanged. It stands in for a real model
// when no inference endpoint is configured.
type Passthrough struct{}

func (Passthrough) Translate(_ context.Context, text string) (string, error) {
	return text, nil
}

// InferenceTranslator runs a MarianMT style translation model behind an
// inference endpoint.
type InferenceTranslator struct {
	client    *inference.Client
	model     string
	direction Direction
}

func NewInferenceTranslator(client *inference.Client, model string, direction Direction) *InferenceTranslator {
	return &InferenceTranslator{client: client, model: model, direction: direction}
}

type translationOutput struct {
	TranslationText string `json:"translation_text"`
}

func (t *InferenceTranslator) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	var out []translationOutput
	if err := t.client.Invoke(ctx, t.model, text, nil, &out); err != nil {
		return "", fmt.Errorf("translate %s: %w", t.direction, err)
	}
	if len(out) == 0 || strings.TrimSpace(out[0].TranslationText) == "" {
		return "", fmt.Errorf("translate %s: %w", t.direction, ErrEmptyTranslation)
	}
	return strings.TrimSpace(out[0].TranslationText), nil
}
