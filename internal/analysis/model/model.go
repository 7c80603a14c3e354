package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/finpsyche/advisor/backend/pkg/logger"
)

var (
	// ErrNotTrained is returned by a model without any labels.
	ErrNotTrained = errors.New("model not trained")
	// ErrNoTrainingData is returned when neither an artifact nor training data exists.
	ErrNoTrainingData = errors.New("no training data")
	// ErrFeatureDimension is returned for a feature vector of the wrong length.
	ErrFeatureDimension = errors.New("feature vector dimension mismatch")
)

// Prediction is the most probable label and its probability.
type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// TextModel classifies raw text.
type TextModel interface {
	Predict(text string) (Prediction, error)
}

// FeatureModel classifies a numeric feature vector.
type FeatureModel interface {
	Predict(features []float64) (Prediction, error)
}

// Artifact is a model that can persist itself.
type Artifact interface {
	Save(path string) error
}

// LoadOrTrain loads the artifact at path when it exists. Otherwise it trains a
// new model and saves it to path; a failed save is logged and the freshly
// trained model is still returned.
func LoadOrTrain[M Artifact](path string, load func(string) (M, error), train func() (M, error)) (M, error) {
	log := logger.Component("model")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			m, err := load(path)
			if err == nil {
				log.WithField("path", path).Info("loaded model artifact")
				return m, nil
			}
			log.WithError(err).WithField("path", path).Warn("model artifact unreadable, retraining")
		}
	}

	m, err := train()
	if err != nil {
		var zero M
		return zero, err
	}

	if path != "" {
		if err := m.Save(path); err != nil {
			log.WithError(err).WithField("path", path).Warn("save model artifact failed")
		} else {
			log.WithField("path", path).Info("trained and saved model artifact")
		}
	}
	return m, nil
}

func saveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read model: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode model: %w", err)
	}
	return nil
}

// softmaxArgmax returns the index of the largest score and its softmax
// probability.
func softmaxArgmax(scores []float64) (int, float64) {
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	var sum float64
	for _, s := range scores {
		sum += math.Exp(s - scores[best])
	}
	return best, 1 / sum
}
