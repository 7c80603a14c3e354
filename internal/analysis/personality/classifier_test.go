package personality

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpsyche/advisor/backend/internal/analysis/emotion"
	"github.com/finpsyche/advisor/backend/internal/analysis/model"
	"github.com/finpsyche/advisor/backend/internal/analysis/rules"
)

type stubModel struct {
	prediction model.Prediction
	err        error
	got        []float64
}

func (s *stubModel) Predict(features []float64) (model.Prediction, error) {
	s.got = features
	return s.prediction, s.err
}

var calm = emotion.Result{Label: emotion.Calm, Score: 0.2}

func TestFeatures(t *testing.T) {
	tables := rules.Default().Personality

	assert.Equal(t, [FeatureCount]float64{0.4, 1, 0, 0, 0}, Features(tables, "I want to gamble on crypto", 0.4))
	assert.Equal(t, [FeatureCount]float64{0, 0, 1, 1, 1}, Features(tables, "Buy NOW, I'm nervous about my FD", 0))
	assert.Equal(t, [FeatureCount]float64{0.9, 0, 0, 0, 0}, Features(tables, "balanced portfolio", 0.9))
}

func TestPredictRuleFallback(t *testing.T) {
	tests := []struct {
		text string
		want Label
		conf float64
	}{
		{"I want to gamble on crypto, yolo", RiskTaker, 0.7},
		{"crypto is risky but I keep savings too", Neutral, 0.5},
		{"I prefer safe, cautious savings", RiskAverse, 0.7},
		{"should I buy immediately?", Impulsive, 0.7},
		{"I panic whenever I buy crypto immediately", Emotional, 0.7},
		{"tell me about index funds", Neutral, 0.5},
	}

	c := NewClassifier(rules.Default().Personality, nil)
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := c.Predict(tt.text, calm)
			assert.Equal(t, tt.want, got.Label)
			assert.Equal(t, tt.conf, got.Confidence)
		})
	}
}

func TestPredictUsesModel(t *testing.T) {
	stub := &stubModel{prediction: model.Prediction{Label: "Risk-Averse", Probability: 0.83}}
	c := NewClassifier(rules.Default().Personality, stub)

	got := c.Predict("I want to gamble on crypto", emotion.Result{Label: emotion.Fear, Score: 0.6})

	assert.Equal(t, Result{Label: RiskAverse, Confidence: 0.83}, got)
	assert.Equal(t, []float64{0.6, 1, 0, 0, 0}, stub.got)
	assert.True(t, c.HasModel())
}

func TestPredictRejectsBadModelOutput(t *testing.T) {
	tests := []struct {
		name string
		stub *stubModel
	}{
		{"error", &stubModel{err: errors.New("broken")}},
		{"unknown label", &stubModel{prediction: model.Prediction{Label: "Gambler", Probability: 0.9}}},
		{"zero probability", &stubModel{prediction: model.Prediction{Label: "Neutral", Probability: 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(rules.Default().Personality, tt.stub)
			got := c.Predict("I want to gamble on crypto, yolo", calm)
			assert.Equal(t, Result{Label: RiskTaker, Confidence: 0.7}, got)
		})
	}
}

func TestTrainingSamples(t *testing.T) {
	samples := TrainingSamples(rules.Default().Personality)
	require.Len(t, samples, 20)

	counts := make(map[string]int)
	for _, s := range samples {
		assert.Len(t, s.Features, FeatureCount)
		assert.Equal(t, seedEmotionScore, s.Features[0])
		counts[s.Label]++
	}
	for _, label := range Labels {
		assert.Equal(t, 4, counts[string(label)], label)
	}
}

func TestTrainedModelInvariant(t *testing.T) {
	m, err := TrainModel(rules.Default().Personality)
	require.NoError(t, err)

	c := NewClassifier(rules.Default().Personality, m)
	for _, text := range []string{"", "yolo crypto", "I'm scared, keep it safe", "buy now!", "so anxious", "hello"} {
		got := c.Predict(text, calm)
		assert.True(t, got.Label.Valid(), got.Label)
		assert.Greater(t, got.Confidence, 0.0)
		assert.LessOrEqual(t, got.Confidence, 1.0)
	}
}
