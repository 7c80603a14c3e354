package emotion

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpsyche/advisor/backend/internal/analysis/model"
	"github.com/finpsyche/advisor/backend/internal/analysis/rules"
	"github.com/finpsyche/advisor/backend/internal/analysis/sentiment"
)

type fixedSentiment float64

func (f fixedSentiment) Score(string) sentiment.Scores {
	return sentiment.Scores{Compound: float64(f)}
}

type stubModel struct {
	prediction model.Prediction
	err        error
	calls      int
}

func (s *stubModel) Predict(string) (model.Prediction, error) {
	s.calls++
	return s.prediction, s.err
}

func newRulesOnly(compound float64) *Classifier {
	return NewClassifier(fixedSentiment(compound), rules.Default().Emotion)
}

func TestPredictKeywordPriority(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		compound float64
		want     Label
	}{
		{"stress beats excitement", "I'm so stressed but this rally is amazing", 0.6, Stress},
		{"stress beats fear", "I regret it and I'm scared of a crash", -0.6, Stress},
		{"fear beats hesitation", "maybe the market will crash", -0.2, Fear},
		{"hesitation", "I'm not sure about bonds", 0.0, Hesitation},
		{"overconfidence gated on sentiment", "this is guaranteed to make a fortune", 0.7, Overconfidence},
		{"overconfidence gate closed", "this is guaranteed to make a fortune", 0.3, Calm},
		{"excitement", "the new fund is awesome", 0.5, Excitement},
		{"negative fallback", "everything is ruined", -0.5, Stress},
		{"positive fallback", "feeling good about it", 0.5, Confidence},
		{"neutral fallback", "what is an index fund", 0.1, Calm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newRulesOnly(tt.compound).Predict(tt.text)
			assert.Equal(t, tt.want, got.Label)
		})
	}
}

func TestPredictRulesOnlyScoreIsAbsCompound(t *testing.T) {
	got := newRulesOnly(-0.62).Predict("I am scared")
	assert.Equal(t, Fear, got.Label)
	assert.InDelta(t, 0.62, got.Score, 1e-9)
}

func TestPredictStressOverridesCalmCandidate(t *testing.T) {
	stub := &stubModel{prediction: model.Prediction{Label: "Calm", Probability: 0.9}}
	c := NewClassifier(fixedSentiment(0.0), rules.Default().Emotion, WithModel(stub))

	got := c.Predict("I have no control over my spending")

	assert.Equal(t, Stress, got.Label)
	assert.InDelta(t, 0.9*StressOverrideScale, got.Score, 1e-9)
	assert.Equal(t, 1, stub.calls)
}

func TestPredictOverridePolicy(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		compound  float64
		candidate string
		prob      float64
		wantLabel Label
		wantScore float64
	}{
		{"stress over excitement", "spending too much stress", 0.5, "Excitement", 0.8, Stress, 0.8 * StressOverrideScale},
		{"stress over overconfidence", "I regret this", 0.0, "Overconfidence", 0.5, Stress, 0.5 * StressOverrideScale},
		{"negative sentiment conflicts with excitement", "I am scared of a crash", -0.7, "Excitement", 0.6, Fear, 0.6 * SentimentConflictScale},
		{"negative sentiment without keyword", "this is awful", -0.7, "Overconfidence", 1.0, Stress, SentimentConflictScale},
		{"candidate trusted", "I am scared of a crash", -0.7, "Hesitation", 0.66, Hesitation, 0.66},
		{"stress candidate trusted", "tell me about bonds", 0.0, "Stress", 0.4, Stress, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubModel{prediction: model.Prediction{Label: tt.candidate, Probability: tt.prob}}
			c := NewClassifier(fixedSentiment(tt.compound), rules.Default().Emotion, WithModel(stub))

			got := c.Predict(tt.text)
			assert.Equal(t, tt.wantLabel, got.Label)
			assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
		})
	}
}

func TestPredictFallsBackOnModelProblems(t *testing.T) {
	tests := []struct {
		name string
		stub *stubModel
	}{
		{"error", &stubModel{err: errors.New("model offline")}},
		{"unknown label", &stubModel{prediction: model.Prediction{Label: "Joy", Probability: 0.9}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(fixedSentiment(-0.4), rules.Default().Emotion, WithModel(tt.stub))
			got := c.Predict("what if I lose it all")
			assert.Equal(t, Fear, got.Label)
			assert.InDelta(t, 0.4, got.Score, 1e-9)
		})
	}
}

func TestPredictAlwaysReturnsKnownLabelInRange(t *testing.T) {
	texts := []string{
		"",
		"   ",
		"!!!",
		"I'm sure I'll make a fortune, guaranteed!",
		"I'm terrified, the market will crash and I will lose everything",
		"hmm maybe",
		"ok",
		"I wish I hadn't bought that car",
	}
	probs := []float64{-0.5, 0, 0.5, 1, 1.7}

	for _, text := range texts {
		assertValid(t, NewClassifier(nil, rules.Default().Emotion).Predict(text))
		for _, p := range probs {
			stub := &stubModel{prediction: model.Prediction{Label: "Excitement", Probability: p}}
			c := NewClassifier(nil, rules.Default().Emotion, WithModel(stub))
			assertValid(t, c.Predict(text))
		}
	}
}

func TestPredictWithVader(t *testing.T) {
	c := NewClassifier(sentiment.Default(), rules.Default().Emotion)

	assert.Equal(t, Overconfidence, c.Predict("I'm sure I'll make a fortune, guaranteed!").Label)
	assert.Equal(t, Excitement, c.Predict("This market boom is so exciting!").Label)
	assert.Equal(t, Stress, c.Predict("I have no control over my spending").Label)
}

func TestValidateTables(t *testing.T) {
	require.NoError(t, ValidateTables(rules.Default().Emotion))

	err := ValidateTables([]rules.Table{{Label: "Joy", Keywords: []string{"yay"}}})
	assert.ErrorIs(t, err, rules.ErrInvalidRules)
}

func assertValid(t *testing.T, r Result) {
	t.Helper()
	assert.True(t, r.Label.Valid(), "unexpected label %q", r.Label)
	assert.GreaterOrEqual(t, r.Score, 0.0)
	assert.LessOrEqual(t, r.Score, 1.0)
}
