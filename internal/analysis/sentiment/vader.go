package sentiment

import (
	"strings"
	"sync"

	"github.com/jonreiter/govader"
)

// Scores holds the polarity breakdown of a text. Compound is normalised to
// [-1, 1]; Positive, Negative and Neutral are proportions summing to 1 (or
// all zero for empty input).
type Scores struct {
	Compound float64 `json:"compound"`
	Positive float64 `json:"pos"`
	Negative float64 `json:"neg"`
	Neutral  float64 `json:"neu"`
}

// Analyzer scores free text.
type Analyzer interface {
	Score(text string) Scores
}

// Vader scores text with the VADER lexicon and rules, extended with personal
// finance terms the stock lexicon does not rate.
type Vader struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewVader builds an analyzer. Finance valences only fill gaps; words VADER
// already rates keep their stock valence.
func NewVader() *Vader {
	sia := govader.NewSentimentIntensityAnalyzer()
	for word, valence := range financeValence {
		if _, ok := sia.Lexicon[word]; !ok {
			sia.Lexicon[word] = valence
		}
	}
	return &Vader{sia: sia}
}

var shared = sync.OnceValue(NewVader)

// Default returns a process-wide analyzer. Loading the lexicon is costly and
// scoring only reads it.
func Default() *Vader {
	return shared()
}

// Score implements Analyzer.
func (v *Vader) Score(text string) Scores {
	if strings.TrimSpace(text) == "" {
		return Scores{}
	}
	s := v.sia.PolarityScores(text)
	return Scores{
		Compound: s.Compound,
		Positive: s.Positive,
		Negative: s.Negative,
		Neutral:  s.Neutral,
	}
}
