package ml

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// The bundled training data: a breast-cancer style table with numeric
// feature columns and a trailing 0/1 target column.
//
//go:embed data/breast_cancer.csv
var breastCancerCSV []byte

// Dataset is a labeled feature matrix.
type Dataset struct {
	FeatureNames []string
	Features     [][]float64
	Labels       []int
}

// LoadBundledDataset parses the dataset shipped inside the binary.
func LoadBundledDataset() (*Dataset, error) {
	return parseDataset(bytes.NewReader(breastCancerCSV))
}

// LoadDatasetFile parses an external CSV with the bundled dataset's layout:
// one header row, numeric feature columns, target last.
func LoadDatasetFile(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return parseDataset(file)
}

func parseDataset(r io.Reader) (*Dataset, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if len(records) < 2 {
		return nil, errors.New("dataset has no data rows")
	}

	header := records[0]
	if len(header) < 2 {
		return nil, errors.New("dataset needs at least one feature column and a target")
	}
	featureCount := len(header) - 1

	ds := &Dataset{
		FeatureNames: header[:featureCount],
		Features:     make([][]float64, 0, len(records)-1),
		Labels:       make([]int, 0, len(records)-1),
	}
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i+1, len(record), len(header))
		}
		row := make([]float64, featureCount)
		for j := 0; j < featureCount; j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i+1, header[j], err)
			}
			row[j] = v
		}
		label, err := strconv.Atoi(record[featureCount])
		if err != nil || (label != 0 && label != 1) {
			return nil, fmt.Errorf("row %d: target %q is not 0 or 1", i+1, record[featureCount])
		}
		ds.Features = append(ds.Features, row)
		ds.Labels = append(ds.Labels, label)
	}
	return ds, nil
}
