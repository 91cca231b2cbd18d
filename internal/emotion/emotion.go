// Package emotion scores English text against seven basic emotions.
package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"
)

const (
	Anger    = "anger"
	Disgust  = "disgust"
	Fear     = "fear"
	Joy      = "joy"
	Neutral  = "neutral"
	Sadness  = "sadness"
	Surprise = "surprise"
)

// Labels is the closed label set in model output order.
var Labels = []string{Anger, Disgust, Fear, Joy, Neutral, Sadness, Surprise}

type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

type Score struct {
	Label   string
	Percent float64
}

// Scores are ordered by descending percentage. They encode as a JSON object
// that keeps that order.
type Scores []Score

func (s Scores) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(item.Label)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(item.Percent)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s Scores) Map() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, item := range s {
		out[item.Label] = item.Percent
	}
	return out
}

type Result struct {
	Dominant string
	Scores   Scores
}

// NeutralResult is used when classification is unavailable.
func NeutralResult() Result {
	return Result{Dominant: Neutral, Scores: Scores{}}
}

// NewResult converts label probabilities (0..1) into percentages rounded to
// two decimals, sorted high to low. Unknown labels are dropped; missing
// labels score zero. Ties keep label order.
func NewResult(probabilities map[string]float64) Result {
	index := make(map[string]int, len(Labels))
	for i, label := range Labels {
		index[label] = i
	}

	scores := make(Scores, 0, len(Labels))
	for _, label := range Labels {
		scores = append(scores, Score{Label: label, Percent: roundPercent(probabilities[label])})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Percent != scores[j].Percent {
			return scores[i].Percent > scores[j].Percent
		}
		return index[scores[i].Label] < index[scores[j].Label]
	})
	return Result{Dominant: scores[0].Label, Scores: scores}
}

func roundPercent(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	return math.Round(p*100*100) / 100
}

func normalizeLabel(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
