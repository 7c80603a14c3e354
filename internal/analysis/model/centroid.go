package model

import (
	"fmt"
	"sort"
)

// FeatureSample is one labelled feature vector.
type FeatureSample struct {
	Features []float64
	Label    string
}

// Centroid is a nearest-centroid classifier. Probabilities are a softmax over
// negative squared distances scaled by Temperature.
type Centroid struct {
	Labels      []string    `json:"labels"`
	Centroids   [][]float64 `json:"centroids"`
	Temperature float64     `json:"temperature"`
}

const defaultTemperature = 0.25

// TrainCentroid averages the feature vectors of each label. All vectors must
// share one dimension.
func TrainCentroid(samples []FeatureSample) (*Centroid, error) {
	if len(samples) == 0 {
		return nil, ErrNoTrainingData
	}

	dim := len(samples[0].Features)
	sums := make(map[string][]float64)
	counts := make(map[string]int)
	for _, s := range samples {
		if len(s.Features) != dim {
			return nil, fmt.Errorf("%w: got %d want %d", ErrFeatureDimension, len(s.Features), dim)
		}
		if sums[s.Label] == nil {
			sums[s.Label] = make([]float64, dim)
		}
		for i, v := range s.Features {
			sums[s.Label][i] += v
		}
		counts[s.Label]++
	}

	c := &Centroid{Temperature: defaultTemperature}
	for label := range sums {
		c.Labels = append(c.Labels, label)
	}
	sort.Strings(c.Labels)
	for _, label := range c.Labels {
		centre := sums[label]
		for i := range centre {
			centre[i] /= float64(counts[label])
		}
		c.Centroids = append(c.Centroids, centre)
	}
	return c, nil
}

// LoadCentroid reads a model saved with Save.
func LoadCentroid(path string) (*Centroid, error) {
	var c Centroid
	if err := loadJSON(path, &c); err != nil {
		return nil, err
	}
	if len(c.Labels) == 0 || len(c.Labels) != len(c.Centroids) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotTrained)
	}
	if c.Temperature <= 0 {
		c.Temperature = defaultTemperature
	}
	return &c, nil
}

// Save writes the model as JSON.
func (c *Centroid) Save(path string) error {
	return saveJSON(path, c)
}

// Predict implements FeatureModel.
func (c *Centroid) Predict(features []float64) (Prediction, error) {
	if c == nil || len(c.Labels) == 0 {
		return Prediction{}, ErrNotTrained
	}

	scores := make([]float64, len(c.Centroids))
	for i, centre := range c.Centroids {
		if len(centre) != len(features) {
			return Prediction{}, fmt.Errorf("%w: got %d want %d", ErrFeatureDimension, len(features), len(centre))
		}
		var d float64
		for j, v := range features {
			diff := v - centre[j]
			d += diff * diff
		}
		scores[i] = -d / c.Temperature
	}

	best, p := softmaxArgmax(scores)
	return Prediction{Label: c.Labels[best], Probability: p}, nil
}
