package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/jbrukh/bayesian"
)

// Sample is one labelled training text.
type Sample struct {
	Text  string
	Label string
}

// NaiveBayes is a multinomial naive Bayes text classifier over unigrams and
// bigrams with Laplace smoothing.
type NaiveBayes struct {
	clf *bayesian.Classifier
}

// TrainNaiveBayes fits a model on samples. Samples with an empty label or
// text are skipped. At least two distinct labels are required.
func TrainNaiveBayes(samples []Sample) (*NaiveBayes, error) {
	docs := make(map[string][][]string)
	for _, s := range samples {
		label := strings.TrimSpace(s.Label)
		grams := ngrams(s.Text)
		if label == "" || len(grams) == 0 {
			continue
		}
		docs[label] = append(docs[label], grams)
	}
	if len(docs) < 2 {
		return nil, fmt.Errorf("%d usable labels, need 2: %w", len(docs), ErrNoTrainingData)
	}

	labels := make([]string, 0, len(docs))
	for label := range docs {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	classes := make([]bayesian.Class, len(labels))
	for i, label := range labels {
		classes[i] = bayesian.Class(label)
	}
	clf := bayesian.NewClassifier(classes...)
	for _, label := range labels {
		for _, grams := range docs[label] {
			clf.Learn(grams, bayesian.Class(label))
		}
	}
	return &NaiveBayes{clf: clf}, nil
}

// LoadNaiveBayes reads a model saved with Save.
func LoadNaiveBayes(path string) (*NaiveBayes, error) {
	clf, err := bayesian.NewClassifierFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if len(clf.Classes) < 2 {
		return nil, fmt.Errorf("%s: %w", path, ErrNotTrained)
	}
	return &NaiveBayes{clf: clf}, nil
}

// Save writes the model as gob.
func (nb *NaiveBayes) Save(path string) error {
	if nb == nil || nb.clf == nil {
		return ErrNotTrained
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	if err := nb.clf.WriteToFile(path); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

// Labels returns the class labels in sorted order.
func (nb *NaiveBayes) Labels() []string {
	if nb == nil || nb.clf == nil {
		return nil
	}
	out := make([]string, len(nb.clf.Classes))
	for i, c := range nb.clf.Classes {
		out[i] = string(c)
	}
	return out
}

// Predict implements TextModel.
func (nb *NaiveBayes) Predict(text string) (Prediction, error) {
	if nb == nil || nb.clf == nil {
		return Prediction{}, ErrNotTrained
	}

	// ErrUnderflow only reports that the log-domain scores were used.
	scores, best, _, err := nb.clf.SafeProbScores(ngrams(text))
	if err != nil && !errors.Is(err, bayesian.ErrUnderflow) {
		return Prediction{}, err
	}
	return Prediction{Label: string(nb.clf.Classes[best]), Probability: scores[best]}, nil
}

func ngrams(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	grams := make([]string, 0, 2*len(words))
	grams = append(grams, words...)
	for i := 1; i < len(words); i++ {
		grams = append(grams, words[i-1]+" "+words[i])
	}
	return grams
}
