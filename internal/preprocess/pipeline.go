package preprocess

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"mlproject/domain/dataset"
)

// NumericPipeline imputes missing values with the median, then standardises.
type NumericPipeline struct {
	Columns []string
	Imputer MedianImputer
	Scaler  StandardScaler
}

// NewNumericPipeline creates an unfit numeric sub-pipeline for columns
func NewNumericPipeline(columns []string) *NumericPipeline {
	return &NumericPipeline{
		Columns: append([]string(nil), columns...),
		Scaler:  StandardScaler{WithMean: true},
	}
}

// Width returns the number of output columns
func (p *NumericPipeline) Width() int {
	return len(p.Columns)
}

// Fit learns medians on t, then scaling statistics on the imputed values.
func (p *NumericPipeline) Fit(t *dataset.Table) error {
	cols, err := numericColumns(t, p.Columns)
	if err != nil {
		return err
	}
	if err := p.Imputer.Fit(cols, p.Columns); err != nil {
		return err
	}
	imputed, err := p.Imputer.Transform(cols)
	if err != nil {
		return err
	}
	return p.Scaler.Fit(imputed)
}

// Transform applies the fitted steps to t
func (p *NumericPipeline) Transform(t *dataset.Table) ([][]float64, error) {
	cols, err := numericColumns(t, p.Columns)
	if err != nil {
		return nil, err
	}
	imputed, err := p.Imputer.Transform(cols)
	if err != nil {
		return nil, err
	}
	return p.Scaler.Transform(imputed)
}

// CategoricalPipeline imputes with the most frequent value, one-hot encodes, then
// scales the indicators to unit variance without centering them.
type CategoricalPipeline struct {
	Columns []string
	Imputer MostFrequentImputer
	Encoder OneHotEncoder
	Scaler  StandardScaler
}

// NewCategoricalPipeline creates an unfit categorical sub-pipeline for columns
func NewCategoricalPipeline(columns []string) *CategoricalPipeline {
	return &CategoricalPipeline{
		Columns: append([]string(nil), columns...),
		Scaler:  StandardScaler{WithMean: false},
	}
}

// Width returns the number of output columns; known only after fitting
func (p *CategoricalPipeline) Width() int {
	return p.Encoder.Width()
}

// Fit learns modes, the category vocabulary and indicator scales on t.
func (p *CategoricalPipeline) Fit(t *dataset.Table) error {
	cols, err := stringColumns(t, p.Columns)
	if err != nil {
		return err
	}
	if err := p.Imputer.Fit(cols, p.Columns); err != nil {
		return err
	}
	imputed, err := p.Imputer.Transform(cols)
	if err != nil {
		return err
	}
	if err := p.Encoder.Fit(imputed, p.Columns); err != nil {
		return err
	}
	encoded, err := p.Encoder.Transform(imputed)
	if err != nil {
		return err
	}
	return p.Scaler.Fit(encoded)
}

// Transform applies the fitted steps to t
func (p *CategoricalPipeline) Transform(t *dataset.Table) ([][]float64, error) {
	cols, err := stringColumns(t, p.Columns)
	if err != nil {
		return nil, err
	}
	imputed, err := p.Imputer.Transform(cols)
	if err != nil {
		return nil, err
	}
	encoded, err := p.Encoder.Transform(imputed)
	if err != nil {
		return nil, err
	}
	return p.Scaler.Transform(encoded)
}

// FeatureNames names the indicator columns as <column>_<category>
func (p *CategoricalPipeline) FeatureNames() []string {
	names := make([]string, 0, p.Width())
	for j, col := range p.Columns {
		for _, c := range p.Encoder.Categories[j] {
			names = append(names, col+"_"+c)
		}
	}
	return names
}

func stringColumns(t *dataset.Table, names []string) ([][]string, error) {
	cols := make([][]string, len(names))
	for j, name := range names {
		values, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		cols[j] = values
	}
	return cols, nil
}

// numericColumns parses names from t; missing cells become NaN.
func numericColumns(t *dataset.Table, names []string) ([][]float64, error) {
	raw, err := stringColumns(t, names)
	if err != nil {
		return nil, err
	}
	cols := make([][]float64, len(raw))
	for j, values := range raw {
		parsed := make([]float64, len(values))
		for i, v := range values {
			if dataset.IsMissing(v) {
				parsed[i] = math.NaN()
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil || math.IsInf(f, 0) {
				return nil, fmt.Errorf("column %q row %d: %q is not a number", names[j], i+1, v)
			}
			parsed[i] = f
		}
		cols[j] = parsed
	}
	return cols, nil
}
