package emotion

import (
	"context"
	"math"
	"strings"
)

var keywordBuckets = map[string][]string{
	Anger: {
		"angry", "furious", "rage", "mad", "annoyed", "hate", "irritated", "frustrated", "pissed", "outraged",
	},
	Disgust: {
		"disgust", "disgusting", "gross", "sick of", "revolting", "nasty", "repulsive", "ashamed",
	},
	Fear: {
		"afraid", "scared", "fear", "anxious", "anxiety", "worried", "panic", "nervous", "terrified", "dread",
	},
	Joy: {
		"happy", "glad", "great", "love", "thank", "excited", "wonderful", "grateful", "better", "relieved",
	},
	Sadness: {
		"sad", "depressed", "lonely", "cry", "crying", "hopeless", "tired", "hurt", "miss", "empty", "lost",
		"grief", "unhappy", "worthless",
	},
	Surprise: {
		"surprised", "shocked", "unexpected", "suddenly", "can't believe", "wow", "amazed",
	},
}

// Lexicon is an offline keyword classifier. It maps keyword hits to logits
// and softmaxes them so the output has the same shape as the hosted model.
type Lexicon struct{}

func (Lexicon) Classify(_ context.Context, text string) (Result, error) {
	logits := scoreText(text)

	maxLogit := math.Inf(-1)
	for _, label := range Labels {
		maxLogit = math.Max(maxLogit, logits[label])
	}
	var total float64
	exp := make(map[string]float64, len(Labels))
	for _, label := range Labels {
		exp[label] = math.Exp(logits[label] - maxLogit)
		total += exp[label]
	}
	probabilities := make(map[string]float64, len(Labels))
	for _, label := range Labels {
		probabilities[label] = exp[label] / total
	}
	return NewResult(probabilities), nil
}

func scoreText(text string) map[string]float64 {
	normalized := strings.ToLower(strings.TrimSpace(text))
	logits := make(map[string]float64, len(Labels))
	logits[Neutral] = 1

	if normalized == "" {
		return logits
	}
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				logits[label] += 1.5
			}
		}
	}
	if exclamations := strings.Count(text, "!"); exclamations > 0 {
		logits[Surprise] += 0.5 * float64(exclamations)
	}
	return logits
}
