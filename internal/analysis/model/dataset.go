package model

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadLabeledCSV reads a CSV file with a header containing "text" and "label"
// columns. Extra columns are ignored.
func ReadLabeledCSV(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNoTrainingData)
		}
		return nil, fmt.Errorf("open training data: %w", err)
	}
	defer f.Close()

	return ParseLabeledCSV(f)
}

// ParseLabeledCSV is ReadLabeledCSV over a reader.
func ParseLabeledCSV(r io.Reader) ([]Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoTrainingData
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	textCol, labelCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "text":
			textCol = i
		case "label":
			labelCol = i
		}
	}
	if textCol < 0 || labelCol < 0 {
		return nil, fmt.Errorf("training data needs text and label columns, got %v", header)
	}

	var samples []Sample
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if textCol >= len(record) || labelCol >= len(record) {
			continue
		}
		samples = append(samples, Sample{
			Text:  record[textCol],
			Label: strings.TrimSpace(record[labelCol]),
		})
	}
	if len(samples) == 0 {
		return nil, ErrNoTrainingData
	}
	return samples, nil
}
