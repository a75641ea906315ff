package preprocess

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"mlproject/domain/dataset"
	"mlproject/internal/errors"
	"mlproject/internal/split"
	"mlproject/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func smallGroups() dataset.ColumnGroups {
	return dataset.ColumnGroups{
		Numerical:   []string{"writing_score"},
		Categorical: []string{"lunch"},
		Target:      "math_score",
	}
}

func smallFeatures() *dataset.Table {
	return &dataset.Table{
		Columns: []string{"lunch", "comment", "writing_score"},
		Rows: [][]string{
			{"standard", "x", "70"},
			{"free/reduced", "y", "80"},
			{"standard", "z", ""},
			{"NA", "w", "90"},
		},
	}
}

// studentSplit returns train/test feature tables of the generated dataset.
func studentSplit(t *testing.T, cfg testkit.StudentGeneratorConfig) (train, test *dataset.Table) {
	t.Helper()
	tbl := testkit.NewStudentGenerator(cfg).Generate()
	res, err := split.NewSplitter(0.2, 42).Split(tbl)
	require.NoError(t, err)

	train, err = res.Train.Drop("math_score")
	require.NoError(t, err)
	test, err = res.Test.Drop("math_score")
	require.NoError(t, err)
	return train, test
}

func TestBuildIsUnfit(t *testing.T) {
	ct := Build(dataset.StudentPerformance())

	assert.False(t, ct.IsFitted())
	assert.Equal(t, []string{"writing_score", "reading_score"}, ct.Numeric.Columns)
	assert.Len(t, ct.Categorical.Columns, 5)

	_, err := ct.Transform(smallFeatures())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeFit))
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestFitTransformSmallTable(t *testing.T) {
	ct := Build(smallGroups())
	m, err := ct.FitTransform(smallFeatures())
	require.NoError(t, err)

	rows, cols := m.Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 3, cols, "1 numeric + 2 lunch categories; comment is dropped")
	assert.Equal(t, []string{"num__writing_score", "cat__lunch_free/reduced", "cat__lunch_standard"}, ct.FeatureNames())

	indicatorScale := math.Sqrt(0.1875)
	assert.InDelta(t, -math.Sqrt(2), m.At(0, 0), 1e-12)
	assert.InDelta(t, 0, m.At(2, 0), 1e-12, "missing writing score imputed with the median")
	assert.InDelta(t, 0, m.At(0, 1), 1e-12)
	assert.InDelta(t, 1/indicatorScale, m.At(0, 2), 1e-12)
	assert.InDelta(t, 1/indicatorScale, m.At(3, 2), 1e-12, "missing lunch imputed with the mode")
}

func TestFitTwiceFails(t *testing.T) {
	ct := Build(smallGroups())
	require.NoError(t, ct.Fit(smallFeatures()))

	err := ct.Fit(smallFeatures())
	assert.ErrorIs(t, err, ErrAlreadyFitted)
}

func TestFitFailures(t *testing.T) {
	tests := []struct {
		name  string
		table *dataset.Table
		code  string
	}{
		{
			name: "numeric column entirely missing",
			table: &dataset.Table{
				Columns: []string{"lunch", "writing_score"},
				Rows:    [][]string{{"standard", ""}, {"free/reduced", "NA"}},
			},
			code: errors.CodeFit,
		},
		{
			name: "categorical column entirely missing",
			table: &dataset.Table{
				Columns: []string{"lunch", "writing_score"},
				Rows:    [][]string{{"", "70"}, {"NaN", "80"}},
			},
			code: errors.CodeFit,
		},
		{
			name: "non-numeric token",
			table: &dataset.Table{
				Columns: []string{"lunch", "writing_score"},
				Rows:    [][]string{{"standard", "seventy"}},
			},
			code: errors.CodeFit,
		},
		{
			name:  "declared column absent",
			table: &dataset.Table{Columns: []string{"lunch"}, Rows: [][]string{{"standard"}}},
			code:  errors.CodeSchema,
		},
		{
			name:  "no rows",
			table: &dataset.Table{Columns: []string{"lunch", "writing_score"}},
			code:  errors.CodeFit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct := Build(smallGroups())
			err := ct.Fit(tt.table)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
			assert.False(t, ct.IsFitted())
		})
	}
}

func TestSchemaPreservation(t *testing.T) {
	train, test := studentSplit(t, testkit.DefaultStudentConfig())
	ct := Build(dataset.StudentPerformance())

	trainM, err := ct.FitTransform(train)
	require.NoError(t, err)
	testM, err := ct.Transform(test)
	require.NoError(t, err)

	want := len(ct.Numeric.Columns)
	for _, col := range ct.Categorical.Columns {
		values, err := train.Column(col)
		require.NoError(t, err)
		distinct := map[string]struct{}{}
		for _, v := range values {
			distinct[v] = struct{}{}
		}
		want += len(distinct)
	}

	_, trainCols := trainM.Dims()
	testRows, testCols := testM.Dims()
	assert.Equal(t, want, trainCols)
	assert.Equal(t, trainCols, testCols)
	assert.Equal(t, test.Len(), testRows)
	assert.Len(t, ct.FeatureNames(), want)
}

func TestNoLeakage(t *testing.T) {
	cfg := testkit.DefaultStudentConfig()
	cfg.MissingRate = 0.05
	train, test := studentSplit(t, cfg)

	first := Build(dataset.StudentPerformance())
	require.NoError(t, first.Fit(train))
	second := Build(dataset.StudentPerformance())
	require.NoError(t, second.Fit(train))
	assert.Equal(t, first.Numeric, second.Numeric)
	assert.Equal(t, first.Categorical, second.Categorical)

	_, err := first.Transform(test)
	require.NoError(t, err)
	_, err = first.Transform(test)
	require.NoError(t, err)
	assert.Equal(t, second.Numeric, first.Numeric, "transform must not change learned state")
	assert.Equal(t, second.Categorical, first.Categorical)
}

func TestUnseenCategoryEncodesAsZeros(t *testing.T) {
	train, test := studentSplit(t, testkit.DefaultStudentConfig())
	ct := Build(dataset.StudentPerformance())
	require.NoError(t, ct.Fit(train))

	lunchIdx := -1
	for j, c := range ct.Categorical.Columns {
		if c == "lunch" {
			lunchIdx = j
		}
	}
	require.GreaterOrEqual(t, lunchIdx, 0)
	assert.Equal(t, []string{"free/reduced", "standard"}, ct.Categorical.Encoder.Categories[lunchIdx])

	var lunchCols []int
	for j, name := range ct.FeatureNames() {
		if name == "cat__lunch_free/reduced" || name == "cat__lunch_standard" {
			lunchCols = append(lunchCols, j)
		}
	}
	require.Len(t, lunchCols, 2)

	col := test.ColumnIndex("lunch")
	test.Rows[0][col] = "catered"
	m, err := ct.Transform(test)
	require.NoError(t, err)
	for _, j := range lunchCols {
		assert.Equal(t, 0.0, m.At(0, j))
	}
}

func TestRoundTripReload(t *testing.T) {
	cfg := testkit.DefaultStudentConfig()
	cfg.MissingRate = 0.05
	train, test := studentSplit(t, cfg)

	ct := Build(dataset.StudentPerformance())
	require.NoError(t, ct.Fit(train))
	want, err := ct.Transform(test)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "preprocessor.gob")
	require.NoError(t, Save(path, ct))
	require.NoError(t, Save(path, ct), "saving again overwrites")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.IsFitted())
	assert.Equal(t, ct.FeatureNames(), loaded.FeatureNames())

	got, err := loaded.Transform(test)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(want, got, 1e-12))
}

func TestDescribe(t *testing.T) {
	ct := Build(smallGroups())
	var buf bytes.Buffer
	require.NoError(t, ct.Describe(&buf))
	assert.Contains(t, buf.String(), "not fitted")

	require.NoError(t, ct.Fit(smallFeatures()))
	buf.Reset()
	require.NoError(t, ct.Describe(&buf))
	assert.Contains(t, buf.String(), "3 output features")
	assert.Contains(t, buf.String(), "median=80")
	assert.Contains(t, buf.String(), `mode="standard"`)
}
