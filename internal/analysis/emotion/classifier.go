package emotion

import (
	"fmt"
	"math"
	"strings"

	"github.com/finpsyche/advisor/backend/internal/analysis/model"
	"github.com/finpsyche/advisor/backend/internal/analysis/rules"
	"github.com/finpsyche/advisor/backend/internal/analysis/sentiment"
	"github.com/finpsyche/advisor/backend/pkg/logger"
)

// Label is the financial emotion of a message.
type Label string

const (
	Fear           Label = "Fear"
	Stress         Label = "Stress"
	Excitement     Label = "Excitement"
	Confidence     Label = "Confidence"
	Hesitation     Label = "Hesitation"
	Overconfidence Label = "Overconfidence"
	Calm           Label = "Calm"
)

// Labels lists every label the classifier can return.
var Labels = []Label{Fear, Stress, Excitement, Confidence, Hesitation, Overconfidence, Calm}

// Override scales applied to a statistical probability.
const (
	// StressOverrideScale applies when a stress indicator overrules a
	// positive or calm statistical candidate.
	StressOverrideScale = 0.8
	// SentimentConflictScale applies when a positive statistical candidate
	// contradicts clearly negative sentiment.
	SentimentConflictScale = 0.7
)

const sentimentThreshold = 0.3

// Result is the classification of one message.
type Result struct {
	Label Label   `json:"emotion"`
	Score float64 `json:"emotionScore"`
}

// Valid reports whether l is one of Labels.
func (l Label) Valid() bool {
	for _, known := range Labels {
		if l == known {
			return true
		}
	}
	return false
}

// Classifier combines sentiment, ordered keyword tables and an optional
// statistical model.
type Classifier struct {
	analyzer sentiment.Analyzer
	tables   []rules.Table
	model    model.TextModel
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithModel injects a statistical text model. A nil model keeps the
// classifier rules-only.
func WithModel(m model.TextModel) Option {
	return func(c *Classifier) {
		c.model = m
	}
}

// NewClassifier builds a classifier from the ordered emotion tables.
func NewClassifier(analyzer sentiment.Analyzer, tables []rules.Table, opts ...Option) *Classifier {
	if analyzer == nil {
		analyzer = sentiment.Default()
	}
	c := &Classifier{analyzer: analyzer, tables: tables}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ValidateTables checks that every table carries a known label.
func ValidateTables(tables []rules.Table) error {
	for _, t := range tables {
		if !Label(t.Label).Valid() {
			return fmt.Errorf("%w: unknown emotion label %q", rules.ErrInvalidRules, t.Label)
		}
	}
	return nil
}

// HasModel reports whether a statistical model is attached.
func (c *Classifier) HasModel() bool {
	return c.model != nil
}

// Predict classifies text. It never fails: model problems fall back to the
// keyword rules.
func (c *Classifier) Predict(text string) Result {
	compound := c.analyzer.Score(text).Compound
	ruleLabel, stressFlag := c.keywordPass(strings.ToLower(text), compound)
	ruleResult := Result{Label: ruleLabel, Score: clamp(math.Abs(compound))}

	if c.model == nil {
		return ruleResult
	}

	prediction, err := c.model.Predict(text)
	if err != nil {
		logger.Component("emotion").WithError(err).Debug("statistical model failed, using rules")
		return ruleResult
	}
	candidate := Label(prediction.Label)
	if !candidate.Valid() {
		logger.Component("emotion").WithField("label", prediction.Label).Debug("statistical model returned unknown label, using rules")
		return ruleResult
	}
	p := clamp(prediction.Probability)

	switch {
	case stressFlag && (candidate == Overconfidence || candidate == Excitement || candidate == Calm):
		return Result{Label: Stress, Score: p * StressOverrideScale}
	case (candidate == Overconfidence || candidate == Excitement) && compound < -sentimentThreshold:
		return Result{Label: ruleLabel, Score: p * SentimentConflictScale}
	case candidate == Calm && stressFlag:
		return Result{Label: Stress, Score: p * StressOverrideScale}
	default:
		return Result{Label: candidate, Score: p}
	}
}

// keywordPass returns the rule label and whether the stress table matched.
func (c *Classifier) keywordPass(lower string, compound float64) (Label, bool) {
	var (
		label      Label
		stressFlag bool
	)
	for _, table := range c.tables {
		if !table.Allows(compound) || !table.Match(lower) {
			continue
		}
		if Label(table.Label) == Stress {
			stressFlag = true
		}
		if label == "" {
			label = Label(table.Label)
		}
	}
	if label != "" {
		return label, stressFlag
	}

	switch {
	case compound < -sentimentThreshold:
		return Stress, false
	case compound > sentimentThreshold:
		return Confidence, false
	default:
		return Calm, false
	}
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
