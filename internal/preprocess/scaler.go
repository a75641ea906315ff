package preprocess

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// machineEpsilon is the float64 unit roundoff; scales below ten times it count as zero.
const machineEpsilon = 2.220446049250313e-16

// StandardScaler standardises columns with the population mean and standard
// deviation of the fitting data. With WithMean unset only the division is applied.
type StandardScaler struct {
	WithMean bool
	Mean     []float64
	Scale    []float64
}

// Fit learns mean and scale per column. Constant columns get a scale of 1.
func (s *StandardScaler) Fit(columns [][]float64) error {
	means := make([]float64, len(columns))
	scales := make([]float64, len(columns))
	for j, col := range columns {
		if len(col) == 0 {
			return fmt.Errorf("scaler column %d is empty", j)
		}
		mean, variance := stat.PopMeanVariance(col, nil)
		if math.IsNaN(mean) || math.IsInf(mean, 0) {
			return fmt.Errorf("scaler column %d has non-finite values", j)
		}
		scale := math.Sqrt(variance)
		if scale < 10*machineEpsilon || math.IsNaN(scale) {
			scale = 1
		}
		means[j] = mean
		scales[j] = scale
	}
	s.Mean = means
	s.Scale = scales
	return nil
}

// Transform returns scaled copies of columns
func (s *StandardScaler) Transform(columns [][]float64) ([][]float64, error) {
	if len(columns) != len(s.Scale) {
		return nil, fmt.Errorf("scaler fitted on %d columns, got %d", len(s.Scale), len(columns))
	}
	out := make([][]float64, len(columns))
	for j, col := range columns {
		scaled := make([]float64, len(col))
		for i, v := range col {
			if s.WithMean {
				v -= s.Mean[j]
			}
			scaled[i] = v / s.Scale[j]
		}
		out[j] = scaled
	}
	return out, nil
}
