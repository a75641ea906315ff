package app

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"mlproject/adapters/tabular"
	"mlproject/domain/dataset"
	"mlproject/internal/config"
	"mlproject/internal/errors"
	"mlproject/internal/logging"
	"mlproject/internal/preprocess"

	"gonum.org/v1/gonum/mat"
)

const stageTransformation = "transformation"

// TransformationResult holds the feature/target matrices and the saved preprocessor.
// Both matrices have the transformed features first and the target as last column.
type TransformationResult struct {
	Train            *mat.Dense
	Test             *mat.Dense
	PreprocessorPath string
	FeatureNames     []string
}

// TransformationService fits the preprocessor on the train split and applies it to
// both splits.
type TransformationService struct {
	config config.Config
	groups dataset.ColumnGroups
	reader *tabular.Reader
	logger *slog.Logger
}

// NewTransformationService creates a transformation stage for the given column groups
func NewTransformationService(cfg config.Config, groups dataset.ColumnGroups, logger *slog.Logger) *TransformationService {
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.With("stage", stageTransformation)
	return &TransformationService{
		config: cfg,
		groups: groups,
		reader: tabular.NewReader(logger),
		logger: logger,
	}
}

// Run transforms the splits at trainPath and testPath and returns both matrices and
// the path of the saved preprocessor.
func (s *TransformationService) Run(trainPath, testPath string) (*mat.Dense, *mat.Dense, string, error) {
	res, err := s.RunDetailed(trainPath, testPath)
	if err != nil {
		return nil, nil, "", err
	}
	return res.Train, res.Test, res.PreprocessorPath, nil
}

// RunDetailed is Run that also reports the output feature names.
func (s *TransformationService) RunDetailed(trainPath, testPath string) (*TransformationResult, error) {
	if err := s.groups.Validate(); err != nil {
		return nil, errors.Stage(stageTransformation, errors.WithCode(errors.CodeConfigInvalid, err))
	}

	trainTable, err := s.reader.Read(trainPath)
	if err != nil {
		return nil, errors.Stage(stageTransformation, errors.SourceRead("read train split", err))
	}
	testTable, err := s.reader.Read(testPath)
	if err != nil {
		return nil, errors.Stage(stageTransformation, errors.SourceRead("read test split", err))
	}
	s.logger.Info("read train and test data completed",
		"train_rows", trainTable.Len(),
		"test_rows", testTable.Len())

	trainFeatures, trainTarget, err := s.separateTarget(trainTable, "train")
	if err != nil {
		return nil, errors.Stage(stageTransformation, err)
	}
	testFeatures, testTarget, err := s.separateTarget(testTable, "test")
	if err != nil {
		return nil, errors.Stage(stageTransformation, err)
	}

	s.logger.Info("obtaining preprocessing object",
		"numerical", s.groups.Numerical,
		"categorical", s.groups.Categorical,
		"target", s.groups.Target)
	preprocessor := preprocess.Build(s.groups)

	s.logger.Info("applying preprocessing object on training and testing data")
	if err := preprocessor.Fit(trainFeatures); err != nil {
		return nil, errors.Stage(stageTransformation, err)
	}
	trainX, err := preprocessor.Transform(trainFeatures)
	if err != nil {
		return nil, errors.Stage(stageTransformation, err)
	}
	testX, err := preprocessor.Transform(testFeatures)
	if err != nil {
		return nil, errors.Stage(stageTransformation, err)
	}

	trainArr := appendTarget(trainX, trainTarget)
	testArr := appendTarget(testX, testTarget)

	path := s.config.Artifacts.Preprocessor
	if err := s.config.Artifacts.EnsureDir(); err != nil {
		return nil, errors.Stage(stageTransformation, errors.Serialization("prepare artifact directory", err))
	}
	if err := preprocess.Save(path, preprocessor); err != nil {
		return nil, errors.Stage(stageTransformation, err)
	}

	rows, cols := trainArr.Dims()
	s.logger.Info("saved preprocessing object",
		"path", path,
		"features", preprocessor.NumFeatures(),
		"train_shape", fmt.Sprintf("%dx%d", rows, cols))

	return &TransformationResult{
		Train:            trainArr,
		Test:             testArr,
		PreprocessorPath: path,
		FeatureNames:     preprocessor.FeatureNames(),
	}, nil
}

// separateTarget checks the declared columns and splits t into the feature table
// and the parsed target vector.
func (s *TransformationService) separateTarget(t *dataset.Table, side string) (*dataset.Table, *mat.VecDense, error) {
	if err := s.groups.CheckTable(t); err != nil {
		return nil, nil, errors.Schema("check "+side+" columns", err)
	}

	raw, err := t.Column(s.groups.Target)
	if err != nil {
		return nil, nil, errors.Schema("read "+side+" target", err)
	}
	target := mat.NewVecDense(len(raw), nil)
	for i, v := range raw {
		if dataset.IsMissing(v) {
			return nil, nil, errors.Schema("read "+side+" target",
				fmt.Errorf("column %q row %d is missing", s.groups.Target, i+1))
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, nil, errors.Schema("read "+side+" target",
				fmt.Errorf("column %q row %d: %q is not a number", s.groups.Target, i+1, v))
		}
		target.SetVec(i, f)
	}

	features, err := t.Drop(s.groups.Target)
	if err != nil {
		return nil, nil, errors.Schema("drop "+side+" target", err)
	}
	return features, target, nil
}

// appendTarget returns [features | target]
func appendTarget(features *mat.Dense, target *mat.VecDense) *mat.Dense {
	var out mat.Dense
	out.Augment(features, target)
	return &out
}
