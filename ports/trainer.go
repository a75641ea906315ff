package ports

import (
	"gonum.org/v1/gonum/mat"
)

// TrainedModel is what a training stage hands back to the pipeline
type TrainedModel struct {
	Name         string
	Score        float64 // quality on the test matrix, higher is better
	ArtifactPath string
}

// ModelTrainer consumes the transformed matrices. Both matrices share one column
// layout: transformed features, numeric block then one-hot block, with the target
// as the last column.
type ModelTrainer interface {
	Train(train, test *mat.Dense) (*TrainedModel, error)
}
