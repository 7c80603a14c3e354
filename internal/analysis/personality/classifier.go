package personality

import (
	"strings"

	"github.com/finpsyche/advisor/backend/internal/analysis/emotion"
	"github.com/finpsyche/advisor/backend/internal/analysis/model"
	"github.com/finpsyche/advisor/backend/internal/analysis/rules"
	"github.com/finpsyche/advisor/backend/pkg/logger"
)

// Label is an investor personality.
type Label string

const (
	RiskTaker  Label = "Risk-Taker"
	RiskAverse Label = "Risk-Averse"
	Neutral    Label = "Neutral"
	Impulsive  Label = "Impulsive"
	Emotional  Label = "Emotional"
)

// Labels lists every personality in display order.
var Labels = []Label{RiskTaker, RiskAverse, Neutral, Impulsive, Emotional}

const (
	ruleConfidence    = 0.7
	neutralConfidence = 0.5
	// FeatureCount is the width of the feature vector.
	FeatureCount = 5
)

// Valid reports whether l is one of Labels.
func (l Label) Valid() bool {
	for _, known := range Labels {
		if l == known {
			return true
		}
	}
	return false
}

// Result is the personality of one message.
type Result struct {
	Label      Label   `json:"personality"`
	Confidence float64 `json:"personalityConfidence"`
}

// Classifier predicts a personality from text and the emotion score.
type Classifier struct {
	tables rules.PersonalityTables
	model  model.FeatureModel
}

// NewClassifier builds a rules-first classifier; m may be nil.
func NewClassifier(tables rules.PersonalityTables, m model.FeatureModel) *Classifier {
	return &Classifier{tables: tables, model: m}
}

// HasModel reports whether a statistical model is attached.
func (c *Classifier) HasModel() bool {
	return c.model != nil
}

// Features returns [emotionScore, risk, safe, impulsive, emotional] where
// the last four are keyword indicator flags.
func Features(tables rules.PersonalityTables, text string, emotionScore float64) [FeatureCount]float64 {
	lower := strings.ToLower(text)
	return [FeatureCount]float64{
		emotionScore,
		flag(rules.ContainsAny(lower, tables.Risk)),
		flag(rules.ContainsAny(lower, tables.Safe)),
		flag(rules.ContainsAny(lower, tables.Impulsive)),
		flag(rules.ContainsAny(lower, tables.Emotional)),
	}
}

// Predict classifies text. Model failures fall back to the keyword rules.
func (c *Classifier) Predict(text string, e emotion.Result) Result {
	features := Features(c.tables, text, e.Score)

	if c.model != nil {
		prediction, err := c.model.Predict(features[:])
		switch {
		case err != nil:
			logger.Component("personality").WithError(err).Debug("statistical model failed, using rules")
		case !Label(prediction.Label).Valid() || prediction.Probability <= 0:
			logger.Component("personality").WithField("label", prediction.Label).Debug("statistical model result rejected, using rules")
		default:
			return Result{Label: Label(prediction.Label), Confidence: min(prediction.Probability, 1)}
		}
	}

	return fallback(features)
}

func fallback(f [FeatureCount]float64) Result {
	risk, safe, impulsive, emotional := f[1] > 0, f[2] > 0, f[3] > 0, f[4] > 0
	switch {
	case emotional:
		return Result{Label: Emotional, Confidence: ruleConfidence}
	case impulsive:
		return Result{Label: Impulsive, Confidence: ruleConfidence}
	case risk && !safe:
		return Result{Label: RiskTaker, Confidence: ruleConfidence}
	case safe && !risk:
		return Result{Label: RiskAverse, Confidence: ruleConfidence}
	default:
		return Result{Label: Neutral, Confidence: neutralConfidence}
	}
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
