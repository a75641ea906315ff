package preprocess

import (
	"fmt"
	"math"
	"sort"

	"mlproject/domain/dataset"

	"github.com/montanaflynn/stats"
)

// MedianImputer replaces missing numeric values (NaN) with the per-column median
// of the fitting data.
type MedianImputer struct {
	Statistics []float64
}

// Fit learns one median per column. A column without any observed value has no
// median and fails the fit.
func (m *MedianImputer) Fit(columns [][]float64, names []string) error {
	medians := make([]float64, len(columns))
	for j, col := range columns {
		observed := make([]float64, 0, len(col))
		for _, v := range col {
			if !math.IsNaN(v) {
				observed = append(observed, v)
			}
		}
		median, err := stats.Median(observed)
		if err != nil {
			return fmt.Errorf("column %q has no observed values to take a median from: %w", names[j], err)
		}
		medians[j] = median
	}
	m.Statistics = medians
	return nil
}

// Transform returns imputed copies of columns
func (m *MedianImputer) Transform(columns [][]float64) ([][]float64, error) {
	if len(columns) != len(m.Statistics) {
		return nil, fmt.Errorf("median imputer fitted on %d columns, got %d", len(m.Statistics), len(columns))
	}
	out := make([][]float64, len(columns))
	for j, col := range columns {
		filled := make([]float64, len(col))
		for i, v := range col {
			if math.IsNaN(v) {
				v = m.Statistics[j]
			}
			filled[i] = v
		}
		out[j] = filled
	}
	return out, nil
}

// MostFrequentImputer replaces missing categorical values with the per-column mode
// of the fitting data. Ties go to the lexicographically smallest value.
type MostFrequentImputer struct {
	Statistics []string
}

// Fit learns one mode per column.
func (m *MostFrequentImputer) Fit(columns [][]string, names []string) error {
	modes := make([]string, len(columns))
	for j, col := range columns {
		counts := make(map[string]int)
		for _, v := range col {
			if !dataset.IsMissing(v) {
				counts[v]++
			}
		}
		if len(counts) == 0 {
			return fmt.Errorf("column %q has no observed values to take a mode from", names[j])
		}

		values := make([]string, 0, len(counts))
		for v := range counts {
			values = append(values, v)
		}
		sort.Strings(values)
		best := values[0]
		for _, v := range values[1:] {
			if counts[v] > counts[best] {
				best = v
			}
		}
		modes[j] = best
	}
	m.Statistics = modes
	return nil
}

// Transform returns imputed copies of columns
func (m *MostFrequentImputer) Transform(columns [][]string) ([][]string, error) {
	if len(columns) != len(m.Statistics) {
		return nil, fmt.Errorf("most-frequent imputer fitted on %d columns, got %d", len(m.Statistics), len(columns))
	}
	out := make([][]string, len(columns))
	for j, col := range columns {
		filled := make([]string, len(col))
		for i, v := range col {
			if dataset.IsMissing(v) {
				v = m.Statistics[j]
			}
			filled[i] = v
		}
		out[j] = filled
	}
	return out, nil
}
