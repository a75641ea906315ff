package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
)

// NumericSummary holds the summary statistics of a numeric column.
// StdDev is the population standard deviation.
type NumericSummary struct {
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	Outliers int     `json:"outliers"`
}

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// Summarize computes summary and shape statistics of data
func (da *DistributionAnalyzer) Summarize(data []float64) (NumericSummary, error) {
	var s NumericSummary

	mean, err := stats.Mean(data)
	if err != nil {
		return s, err
	}
	stdDev, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return s, err
	}
	min, err := stats.Min(data)
	if err != nil {
		return s, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return s, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return s, err
	}

	// nearest-rank quartiles for IQR-based outlier detection
	q25, err := stats.PercentileNearestRank(data, 25)
	if err != nil {
		return s, err
	}
	q75, err := stats.PercentileNearestRank(data, 75)
	if err != nil {
		return s, err
	}

	s.Mean = mean
	s.StdDev = stdDev
	s.Min = min
	s.Max = max
	s.Median = median
	s.Q25 = q25
	s.Q75 = q75
	s.Skewness = skewness(data, mean, stdDev)
	s.Kurtosis = kurtosis(data, mean, stdDev)
	s.Outliers = countOutliers(data, q25, q75)
	return s, nil
}

// skewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func skewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d
	}
	return sum / n * math.Sqrt(n*(n-1)) / (n - 2)
}

// kurtosis computes sample excess kurtosis with the usual bias correction
func kurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d * d
	}
	m4 := sum / n
	return ((n+1)*m4 - 3*(n-1)) * (n - 1) / ((n - 2) * (n - 3))
}

// countOutliers counts values outside 1.5 IQR of the quartiles
func countOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lower := q25 - 1.5*iqr
	upper := q75 + 1.5*iqr

	n := 0
	for _, x := range data {
		if x < lower || x > upper {
			n++
		}
	}
	return n
}
