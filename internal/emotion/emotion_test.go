package emotion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sakinah/backend/internal/inference"
)

func sum(scores Scores) float64 {
	var total float64
	for _, s := range scores {
		total += s.Percent
	}
	return total
}

func TestNewResultRoundsAndSorts(t *testing.T) {
	result := NewResult(map[string]float64{
		Sadness:  0.71234,
		Fear:     0.2,
		Neutral:  0.08766,
		"bogus":  0.9,
	})
	assert.Equal(t, Sadness, result.Dominant)
	require.Len(t, result.Scores, len(Labels))
	assert.Equal(t, Score{Label: Sadness, Percent: 71.23}, result.Scores[0])
	assert.Equal(t, Score{Label: Fear, Percent: 20}, result.Scores[1])
	assert.Equal(t, Score{Label: Neutral, Percent: 8.77}, result.Scores[2])
	assert.Equal(t, Anger, result.Scores[3].Label)
}

func TestScoresMarshalKeepsOrder(t *testing.T) {
	scores := Scores{{Label: Sadness, Percent: 70.5}, {Label: Anger, Percent: 20}, {Label: Joy, Percent: 9.5}}
	raw, err := json.Marshal(map[string]any{"emotion": scores})
	require.NoError(t, err)
	assert.JSONEq(t, `{"emotion":{"sadness":70.5,"anger":20,"joy":9.5}}`, string(raw))
	assert.Contains(t, string(raw), `{"sadness":70.5,"anger":20,"joy":9.5}`)

	empty, err := json.Marshal(Scores{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(empty))
}

func TestInferenceClassifierParsesNestedOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[{"label":"joy","score":0.9},{"label":"neutral","score":0.05},{"label":"sadness","score":0.05}]]`))
	}))
	defer server.Close()

	c := NewInferenceClassifier(inference.New(server.URL, "", time.Second), "j-hartmann/emotion-english-distilroberta-base")
	result, err := c.Classify(context.Background(), "I am so happy today")
	require.NoError(t, err)
	assert.Equal(t, Joy, result.Dominant)
	assert.Equal(t, 90.0, result.Scores.Map()[Joy])
}

func TestInferenceClassifierParsesFlatOutputAndRejectsEmpty(t *testing.T) {
	body := `[{"label":"FEAR","score":0.6},{"label":"anger","score":0.4}]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	c := NewInferenceClassifier(inference.New(server.URL, "", time.Second), "m")
	result, err := c.Classify(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, Fear, result.Dominant)

	body = `[]`
	_, err = c.Classify(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoScores)
}

func TestInferenceClassifierRejectsUnknownLabels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[{"label":"LABEL_0","score":0.9},{"label":"LABEL_1","score":0.1}]]`))
	}))
	defer server.Close()

	c := NewInferenceClassifier(inference.New(server.URL, "", time.Second), "m")
	_, err := c.Classify(context.Background(), "I feel odd")
	assert.ErrorIs(t, err, ErrNoScores)
}

func TestLexiconClassifier(t *testing.T) {
	ctx := context.Background()

	sad, err := Lexicon{}.Classify(ctx, "I feel so lonely and hopeless lately")
	require.NoError(t, err)
	assert.Equal(t, Sadness, sad.Dominant)
	assert.InDelta(t, 100, sum(sad.Scores), 0.05)

	calm, err := Lexicon{}.Classify(ctx, "I went to the market")
	require.NoError(t, err)
	assert.Equal(t, Neutral, calm.Dominant)

	blank, err := Lexicon{}.Classify(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, Neutral, blank.Dominant)
}
