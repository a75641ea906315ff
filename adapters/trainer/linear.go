package trainer

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"os"

	"mlproject/ports"

	"gonum.org/v1/gonum/mat"
)

// defaultRidge keeps the normal equations solvable when one-hot blocks are collinear
const defaultRidge = 1e-6

// LinearRegression is a baseline ModelTrainer: ridge-regularised least squares with
// an intercept, scored by R² on the test matrix.
type LinearRegression struct {
	artifactPath string
	ridge        float64
}

// LinearModel is the persisted form of a fitted regression
type LinearModel struct {
	Intercept    float64
	Coefficients []float64
}

// NewLinearRegression creates a trainer that writes its model to artifactPath
func NewLinearRegression(artifactPath string) *LinearRegression {
	return &LinearRegression{artifactPath: artifactPath, ridge: defaultRidge}
}

// Train fits on train, scores on test and saves the model.
func (lr *LinearRegression) Train(train, test *mat.Dense) (*ports.TrainedModel, error) {
	_, trainCols := train.Dims()
	_, testCols := test.Dims()
	if trainCols < 2 {
		return nil, fmt.Errorf("train matrix needs at least one feature and a target, got %d columns", trainCols)
	}
	if trainCols != testCols {
		return nil, fmt.Errorf("train has %d columns, test has %d", trainCols, testCols)
	}

	model, err := lr.fit(train)
	if err != nil {
		return nil, err
	}
	score := model.R2(test)

	if err := model.Save(lr.artifactPath); err != nil {
		return nil, err
	}
	return &ports.TrainedModel{
		Name:         "linear_regression",
		Score:        score,
		ArtifactPath: lr.artifactPath,
	}, nil
}

// fit solves (XᵀX + λI)β = Xᵀy with X augmented by a leading column of ones.
func (lr *LinearRegression) fit(m *mat.Dense) (*LinearModel, error) {
	rows, cols := m.Dims()
	features := cols - 1

	x := mat.NewDense(rows, features+1, nil)
	y := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		x.Set(i, 0, 1)
		for j := 0; j < features; j++ {
			x.Set(i, j+1, m.At(i, j))
		}
		y.SetVec(i, m.At(i, features))
	}

	var gram mat.Dense
	gram.Mul(x.T(), x)
	for j := 1; j <= features; j++ {
		gram.Set(j, j, gram.At(j, j)+lr.ridge)
	}
	var moment mat.VecDense
	moment.MulVec(x.T(), y)

	var beta mat.VecDense
	if err := beta.SolveVec(&gram, &moment); err != nil {
		return nil, fmt.Errorf("failed to solve normal equations: %w", err)
	}

	coef := make([]float64, features)
	for j := range coef {
		coef[j] = beta.AtVec(j + 1)
	}
	return &LinearModel{Intercept: beta.AtVec(0), Coefficients: coef}, nil
}

// Predict returns predictions for the feature columns of m. A trailing target
// column, if present, is ignored.
func (lm *LinearModel) Predict(m *mat.Dense) []float64 {
	rows, _ := m.Dims()
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		p := lm.Intercept
		for j, c := range lm.Coefficients {
			p += c * m.At(i, j)
		}
		out[i] = p
	}
	return out
}

// R2 returns the coefficient of determination on m, whose last column is the target.
func (lm *LinearModel) R2(m *mat.Dense) float64 {
	rows, cols := m.Dims()
	pred := lm.Predict(m)
	mean := 0.0
	for i := 0; i < rows; i++ {
		mean += m.At(i, cols-1)
	}
	mean /= float64(rows)

	var ssRes, ssTot float64
	for i := 0; i < rows; i++ {
		y := m.At(i, cols-1)
		ssRes += (y - pred[i]) * (y - pred[i])
		ssTot += (y - mean) * (y - mean)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// Save writes the model as gob, replacing any existing file.
func (lm *LinearModel) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(lm); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write model file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close model file: %w", err)
	}
	return nil
}

// LoadLinearModel reads a model written by Save
func LoadLinearModel(path string) (*LinearModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer f.Close()

	var lm LinearModel
	if err := gob.NewDecoder(f).Decode(&lm); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	return &lm, nil
}
