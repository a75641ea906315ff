package preprocess

import (
	stderrors "errors"
	"fmt"
	"io"

	"mlproject/domain/dataset"
	"mlproject/internal/errors"

	"gonum.org/v1/gonum/mat"
)

// Feature name prefixes of the two blocks
const (
	numericPrefix     = "num__"
	categoricalPrefix = "cat__"
)

var (
	// ErrNotFitted is returned when transforming with an unfit transformer
	ErrNotFitted = stderrors.New("transformer is not fitted")
	// ErrAlreadyFitted is returned when fitting a transformer a second time
	ErrAlreadyFitted = stderrors.New("transformer is already fitted")
)

// ColumnTransformer routes the numeric columns through a NumericPipeline and the
// categorical columns through a CategoricalPipeline, then concatenates the results
// numeric block first. Columns outside both groups are dropped.
//
// A ColumnTransformer is fit exactly once; afterwards Transform may be called any
// number of times and never changes the learned state.
type ColumnTransformer struct {
	Numeric     *NumericPipeline
	Categorical *CategoricalPipeline

	fitted bool
}

// Build constructs an unfit transformer for groups. It does no I/O and no fitting.
func Build(groups dataset.ColumnGroups) *ColumnTransformer {
	return &ColumnTransformer{
		Numeric:     NewNumericPipeline(groups.Numerical),
		Categorical: NewCategoricalPipeline(groups.Categorical),
	}
}

// IsFitted reports whether Fit has completed successfully
func (ct *ColumnTransformer) IsFitted() bool {
	return ct.fitted
}

// Fit learns every statistic from features. features must not contain test rows.
func (ct *ColumnTransformer) Fit(features *dataset.Table) error {
	if ct.fitted {
		return errors.Fit("fit preprocessor", ErrAlreadyFitted)
	}
	if err := ct.checkColumns(features); err != nil {
		return err
	}
	if features.Len() == 0 {
		return errors.Fit("fit preprocessor", fmt.Errorf("no rows to fit on"))
	}

	numeric := NewNumericPipeline(ct.Numeric.Columns)
	if err := numeric.Fit(features); err != nil {
		return errors.Fit("fit numeric pipeline", err)
	}
	categorical := NewCategoricalPipeline(ct.Categorical.Columns)
	if err := categorical.Fit(features); err != nil {
		return errors.Fit("fit categorical pipeline", err)
	}

	ct.Numeric = numeric
	ct.Categorical = categorical
	ct.fitted = true
	return nil
}

// Transform applies the learned statistics to features.
func (ct *ColumnTransformer) Transform(features *dataset.Table) (*mat.Dense, error) {
	if !ct.fitted {
		return nil, errors.Fit("transform", ErrNotFitted)
	}
	if err := ct.checkColumns(features); err != nil {
		return nil, err
	}
	rows := features.Len()
	if rows == 0 {
		return nil, errors.Fit("transform", fmt.Errorf("no rows to transform"))
	}
	width := ct.NumFeatures()
	if width == 0 {
		return nil, errors.Fit("transform", fmt.Errorf("transformer produces no feature columns"))
	}

	numeric, err := ct.Numeric.Transform(features)
	if err != nil {
		return nil, errors.Fit("transform numeric pipeline", err)
	}
	categorical, err := ct.Categorical.Transform(features)
	if err != nil {
		return nil, errors.Fit("transform categorical pipeline", err)
	}

	data := make([]float64, rows*width)
	offset := 0
	for _, block := range [][][]float64{numeric, categorical} {
		for _, col := range block {
			for i, v := range col {
				data[i*width+offset] = v
			}
			offset++
		}
	}
	return mat.NewDense(rows, width, data), nil
}

// FitTransform fits on features and transforms them
func (ct *ColumnTransformer) FitTransform(features *dataset.Table) (*mat.Dense, error) {
	if err := ct.Fit(features); err != nil {
		return nil, err
	}
	return ct.Transform(features)
}

// NumFeatures returns the output width: one column per numeric column plus one per
// category learned for each categorical column.
func (ct *ColumnTransformer) NumFeatures() int {
	return ct.Numeric.Width() + ct.Categorical.Width()
}

// FeatureNames returns output column names in matrix order.
func (ct *ColumnTransformer) FeatureNames() []string {
	names := make([]string, 0, ct.NumFeatures())
	for _, c := range ct.Numeric.Columns {
		names = append(names, numericPrefix+c)
	}
	if ct.fitted {
		for _, c := range ct.Categorical.FeatureNames() {
			names = append(names, categoricalPrefix+c)
		}
	}
	return names
}

// Describe writes the learned statistics in a human readable form.
func (ct *ColumnTransformer) Describe(w io.Writer) error {
	if !ct.fitted {
		_, err := fmt.Fprintln(w, "preprocessor: not fitted")
		return err
	}
	if _, err := fmt.Fprintf(w, "preprocessor: %d output features\n", ct.NumFeatures()); err != nil {
		return err
	}
	for j, c := range ct.Numeric.Columns {
		if _, err := fmt.Fprintf(w, "  numeric %-28s median=%g mean=%g scale=%g\n",
			c, ct.Numeric.Imputer.Statistics[j], ct.Numeric.Scaler.Mean[j], ct.Numeric.Scaler.Scale[j]); err != nil {
			return err
		}
	}
	for j, c := range ct.Categorical.Columns {
		if _, err := fmt.Fprintf(w, "  categorical %-24s mode=%q categories=%q\n",
			c, ct.Categorical.Imputer.Statistics[j], ct.Categorical.Encoder.Categories[j]); err != nil {
			return err
		}
	}
	return nil
}

func (ct *ColumnTransformer) checkColumns(t *dataset.Table) error {
	for _, cols := range [][]string{ct.Numeric.Columns, ct.Categorical.Columns} {
		for _, c := range cols {
			if !t.HasColumn(c) {
				return errors.Schema("route columns", &dataset.MissingColumnError{Column: c})
			}
		}
	}
	return nil
}
