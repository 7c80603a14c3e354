package personality

import (
	"github.com/finpsyche/advisor/backend/internal/analysis/model"
	"github.com/finpsyche/advisor/backend/internal/analysis/rules"
)

const seedEmotionScore = 0.5

// seedPhrases are the labelled examples the reference model is fitted on.
var seedPhrases = map[Label][]string{
	RiskTaker: {
		"Let's go all in on crypto!",
		"High risk, high reward!",
		"I'm investing everything in stocks",
		"YOLO on this trade",
	},
	RiskAverse: {
		"Too risky, stick to savings.",
		"I hate volatility.",
		"Only safe investments for me",
		"FDs are safest",
	},
	Neutral: {
		"Balanced portfolio sounds good.",
		"Moderate growth is fine.",
		"Diversified approach works",
		"Steady returns preferred",
	},
	Impulsive: {
		"Buy now before it's too late!",
		"Impulse buy that stock!",
		"I need to invest right now",
		"Quick decision needed",
	},
	Emotional: {
		"Money makes me anxious.",
		"Fear of missing out...",
		"I'm so worried about losses",
		"Financial stress is killing me",
	},
}

// TrainingSamples returns the seed phrases as feature vectors, in Labels
// order.
func TrainingSamples(tables rules.PersonalityTables) []model.FeatureSample {
	var samples []model.FeatureSample
	for _, label := range Labels {
		for _, phrase := range seedPhrases[label] {
			f := Features(tables, phrase, seedEmotionScore)
			samples = append(samples, model.FeatureSample{Features: f[:], Label: string(label)})
		}
	}
	return samples
}

// TrainModel fits the reference centroid model on TrainingSamples.
func TrainModel(tables rules.PersonalityTables) (*model.Centroid, error) {
	return model.TrainCentroid(TrainingSamples(tables))
}
