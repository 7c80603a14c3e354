package model

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var emotionSamples = []Sample{
	{Text: "I am scared the market will crash", Label: "Fear"},
	{Text: "terrified of losing my savings", Label: "Fear"},
	{Text: "so stressed about my credit card bills", Label: "Stress"},
	{Text: "I regret spending too much", Label: "Stress"},
	{Text: "feeling calm about my plan", Label: "Calm"},
	{Text: "steady and relaxed about money", Label: "Calm"},
}

func TestNaiveBayesPredict(t *testing.T) {
	nb, err := TrainNaiveBayes(emotionSamples)
	require.NoError(t, err)
	assert.Equal(t, []string{"Calm", "Fear", "Stress"}, nb.Labels())

	tests := []struct {
		text string
		want string
	}{
		{"what if the market will crash", "Fear"},
		{"my credit card bills are a problem", "Stress"},
		{"relaxed and calm", "Calm"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			p, err := nb.Predict(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Label)
			assert.Greater(t, p.Probability, 1.0/3)
			assert.LessOrEqual(t, p.Probability, 1.0)
		})
	}
}

func TestNaiveBayesUntrained(t *testing.T) {
	var nb *NaiveBayes
	_, err := nb.Predict("anything")
	assert.ErrorIs(t, err, ErrNotTrained)

	_, err = TrainNaiveBayes([]Sample{{Text: "", Label: "Fear"}, {Text: "x", Label: ""}})
	assert.ErrorIs(t, err, ErrNoTrainingData)

	_, err = TrainNaiveBayes([]Sample{{Text: "scared", Label: "Fear"}, {Text: "afraid", Label: "Fear"}})
	assert.ErrorIs(t, err, ErrNoTrainingData, "a single label cannot be classified")

	assert.ErrorIs(t, (&NaiveBayes{}).Save(filepath.Join(t.TempDir(), "x.gob")), ErrNotTrained)
}

func TestNaiveBayesRoundTrip(t *testing.T) {
	nb, err := TrainNaiveBayes(emotionSamples)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "emotion.gob")
	require.NoError(t, nb.Save(path))

	loaded, err := LoadNaiveBayes(path)
	require.NoError(t, err)

	want, _ := nb.Predict("scared of a crash")
	got, err := loaded.Predict("scared of a crash")
	require.NoError(t, err)
	assert.Equal(t, want.Label, got.Label)
	assert.InDelta(t, want.Probability, got.Probability, 1e-9)
	assert.Equal(t, nb.Labels(), loaded.Labels())
}

func TestNaiveBayesLongInput(t *testing.T) {
	nb, err := TrainNaiveBayes(emotionSamples)
	require.NoError(t, err)

	p, err := nb.Predict(strings.Repeat("scared the market will crash ", 200))
	require.NoError(t, err)
	assert.Equal(t, "Fear", p.Label)
	assert.InDelta(t, 1.0, p.Probability, 1e-6)
}

func TestCentroidPredict(t *testing.T) {
	c, err := TrainCentroid([]FeatureSample{
		{Features: []float64{0.5, 1, 0}, Label: "Risk-Taker"},
		{Features: []float64{0.5, 1, 0}, Label: "Risk-Taker"},
		{Features: []float64{0.5, 0, 1}, Label: "Risk-Averse"},
	})
	require.NoError(t, err)

	p, err := c.Predict([]float64{0.4, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, "Risk-Taker", p.Label)
	assert.Greater(t, p.Probability, 0.5)

	_, err = c.Predict([]float64{1})
	assert.ErrorIs(t, err, ErrFeatureDimension)
}

func TestCentroidRejectsMixedDimensions(t *testing.T) {
	_, err := TrainCentroid([]FeatureSample{
		{Features: []float64{1, 2}, Label: "a"},
		{Features: []float64{1}, Label: "b"},
	})
	assert.ErrorIs(t, err, ErrFeatureDimension)

	_, err = TrainCentroid(nil)
	assert.ErrorIs(t, err, ErrNoTrainingData)
}

func TestParseLabeledCSV(t *testing.T) {
	samples, err := ParseLabeledCSV(strings.NewReader("label,text,source\nFear,\"crash, again\",x\nCalm,fine,y\n"))
	require.NoError(t, err)
	assert.Equal(t, []Sample{
		{Text: "crash, again", Label: "Fear"},
		{Text: "fine", Label: "Calm"},
	}, samples)

	_, err = ParseLabeledCSV(strings.NewReader("text,emotion\nhello,Calm\n"))
	assert.Error(t, err)

	_, err = ParseLabeledCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoTrainingData)
}

func TestReadLabeledCSVMissingFile(t *testing.T) {
	_, err := ReadLabeledCSV(filepath.Join(t.TempDir(), "none.csv"))
	assert.ErrorIs(t, err, ErrNoTrainingData)
}

func TestLoadOrTrain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emotion.gob")
	trained := 0
	train := func() (*NaiveBayes, error) {
		trained++
		return TrainNaiveBayes(emotionSamples)
	}

	first, err := LoadOrTrain(path, LoadNaiveBayes, train)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, trained)
	assert.FileExists(t, path)

	second, err := LoadOrTrain(path, LoadNaiveBayes, train)
	require.NoError(t, err)
	assert.Equal(t, 1, trained, "existing artifact must be loaded, not retrained")
	assert.Equal(t, first.Labels(), second.Labels())
}

func TestLoadOrTrainRetrainsCorruptArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emotion.gob")
	require.NoError(t, os.WriteFile(path, []byte("{not gob"), 0o600))

	nb, err := LoadOrTrain(path, LoadNaiveBayes, func() (*NaiveBayes, error) {
		return TrainNaiveBayes(emotionSamples)
	})
	require.NoError(t, err)
	assert.NotEmpty(t, nb.Labels())
}

func TestLoadOrTrainPropagatesTrainError(t *testing.T) {
	boom := errors.New("boom")
	_, err := LoadOrTrain(filepath.Join(t.TempDir(), "m.json"), LoadCentroid, func() (*Centroid, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}
