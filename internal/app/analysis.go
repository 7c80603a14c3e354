package app

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/finpsyche/advisor/backend/internal/advice"
	"github.com/finpsyche/advisor/backend/internal/analysis/casual"
	"github.com/finpsyche/advisor/backend/internal/analysis/emotion"
	"github.com/finpsyche/advisor/backend/internal/analysis/model"
	"github.com/finpsyche/advisor/backend/internal/analysis/personality"
	"github.com/finpsyche/advisor/backend/internal/analysis/rules"
	"github.com/finpsyche/advisor/backend/internal/config"
	"github.com/finpsyche/advisor/backend/pkg/logger"
)

// Artifact file names under AdvisorConfig.ModelDir.
const (
	EmotionModelFile     = "emotion_nb.gob"
	PersonalityModelFile = "personality_centroid.json"
)

// Analysis holds the read-only classification stack shared by the server and
// the CLI.
type Analysis struct {
	Rules       *rules.Set
	Casual      *casual.Detector
	Emotion     *emotion.Classifier
	Personality *personality.Classifier
	Composer    *advice.Composer
}

// LoadRules returns the embedded rules, or the rules file when one is set.
func LoadRules(path string) (*rules.Set, error) {
	if path == "" {
		return rules.Default(), nil
	}
	set, err := rules.Load(path)
	if err != nil {
		return nil, err
	}
	if err := emotion.ValidateTables(set.Emotion); err != nil {
		return nil, err
	}
	return set, nil
}

// NewAnalysis builds the classifiers. Missing or untrainable statistical
// models are logged and the classifiers run on rules alone.
func NewAnalysis(cfg config.AdvisorConfig) (*Analysis, error) {
	set, err := LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	log := logger.Component("bootstrap")

	var emotionOpts []emotion.Option
	if nb, err := LoadEmotionModel(cfg, false); err != nil {
		log.WithError(err).Warn("emotion model unavailable, using rules only")
	} else {
		emotionOpts = append(emotionOpts, emotion.WithModel(nb))
	}

	var personalityModel model.FeatureModel
	if centroid, err := LoadPersonalityModel(cfg, set, false); err != nil {
		log.WithError(err).Warn("personality model unavailable, using rules only")
	} else {
		personalityModel = centroid
	}

	return &Analysis{
		Rules:       set,
		Casual:      casual.NewDetector(set.Casual),
		Emotion:     emotion.NewClassifier(nil, set.Emotion, emotionOpts...),
		Personality: personality.NewClassifier(set.Personality, personalityModel),
		Composer:    advice.NewComposer(set.Topics),
	}, nil
}

// LoadEmotionModel loads the emotion artifact or trains it from the labelled
// CSV. retrain ignores an existing artifact.
func LoadEmotionModel(cfg config.AdvisorConfig, retrain bool) (*model.NaiveBayes, error) {
	path := artifactPath(cfg.ModelDir, EmotionModelFile)
	train := func() (*model.NaiveBayes, error) {
		samples, err := model.ReadLabeledCSV(cfg.EmotionTrainingCSV)
		if err != nil {
			return nil, err
		}
		return model.TrainNaiveBayes(samples)
	}
	if retrain {
		return saveTrained(path, train)
	}
	return model.LoadOrTrain(path, model.LoadNaiveBayes, train)
}

// LoadPersonalityModel loads the personality artifact or trains the
// reference centroid model from the seed phrases.
func LoadPersonalityModel(cfg config.AdvisorConfig, set *rules.Set, retrain bool) (*model.Centroid, error) {
	path := artifactPath(cfg.ModelDir, PersonalityModelFile)
	train := func() (*model.Centroid, error) {
		return personality.TrainModel(set.Personality)
	}
	if retrain {
		return saveTrained(path, train)
	}
	return model.LoadOrTrain(path, model.LoadCentroid, train)
}

func saveTrained[M model.Artifact](path string, train func() (M, error)) (M, error) {
	m, err := train()
	if err != nil {
		return m, err
	}
	if path == "" {
		return m, nil
	}
	if err := m.Save(path); err != nil {
		return m, fmt.Errorf("save %s: %w", path, err)
	}
	return m, nil
}

func artifactPath(dir, name string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, name)
}

// IsMissingData reports whether err means there was nothing to train on.
func IsMissingData(err error) bool {
	return errors.Is(err, model.ErrNoTrainingData)
}
