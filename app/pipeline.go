package app

import (
	"log/slog"
	"time"

	"mlproject/domain/dataset"
	"mlproject/domain/run"
	"mlproject/internal/config"
	"mlproject/internal/errors"
	"mlproject/internal/logging"
	"mlproject/internal/profiling"
	"mlproject/ports"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

const (
	stageTraining = "training"
	stageManifest = "manifest"
)

// Result is the outcome of a full pipeline run
type Result struct {
	Manifest     *run.Manifest
	ManifestPath string
	Train        *mat.Dense
	Test         *mat.Dense
	Model        *ports.TrainedModel
}

// Pipeline runs ingestion, transformation and, when a trainer is set, training.
type Pipeline struct {
	config  config.Config
	groups  dataset.ColumnGroups
	trainer ports.ModelTrainer
	logger  *slog.Logger
	now     func() time.Time
}

// NewPipeline creates a pipeline for the student-performance dataset. trainer may be
// nil, in which case the run stops after transformation.
func NewPipeline(cfg config.Config, logger *slog.Logger, trainer ports.ModelTrainer) *Pipeline {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pipeline{
		config:  cfg,
		groups:  dataset.StudentPerformance(),
		trainer: trainer,
		logger:  logger,
		now:     time.Now,
	}
}

// Run executes every stage in order, aborting on the first failure. The manifest is
// only written once all stages have succeeded.
func (p *Pipeline) Run() (*Result, error) {
	runID := uuid.New().String()
	logger := p.logger.With("run_id", runID)
	started := p.now().UTC()

	logger.Info("pipeline run started", "source", p.config.Source.Path)

	ingested, err := NewIngestionService(p.config, logger).RunDetailed()
	if err != nil {
		logger.Error("pipeline run failed", "stage", stageIngestion, "code", errors.GetCode(err), "error", err)
		return nil, err
	}

	transformed, err := NewTransformationService(p.config, p.groups, logger).
		RunDetailed(ingested.TrainPath, ingested.TestPath)
	if err != nil {
		logger.Error("pipeline run failed", "stage", stageTransformation, "code", errors.GetCode(err), "error", err)
		return nil, err
	}

	var model *ports.TrainedModel
	if p.trainer != nil {
		logger.Info("model training started", "stage", stageTraining)
		model, err = p.trainer.Train(transformed.Train, transformed.Test)
		if err != nil {
			err = errors.Stage(stageTraining, errors.Wrap(err, "train model"))
			logger.Error("pipeline run failed", "stage", stageTraining, "code", errors.GetCode(err), "error", err)
			return nil, err
		}
		logger.Info("model training completed",
			"stage", stageTraining,
			"model", model.Name,
			"score", model.Score)
	}

	manifest := p.buildManifest(runID, started, ingested, transformed, model)
	if err := manifest.Validate(); err != nil {
		err = errors.Stage(stageManifest, errors.Wrap(err, "validate run manifest"))
		logger.Error("pipeline run failed", "stage", stageManifest, "code", errors.GetCode(err), "error", err)
		return nil, err
	}
	path := p.config.Artifacts.Manifest
	if err := writeJSON(path, manifest); err != nil {
		err = errors.Stage(stageManifest, errors.Serialization("write run manifest", err))
		logger.Error("pipeline run failed", "stage", stageManifest, "code", errors.GetCode(err), "error", err)
		return nil, err
	}

	logger.Info("pipeline run completed",
		"manifest", path,
		"fingerprint", manifest.Fingerprint)

	return &Result{
		Manifest:     manifest,
		ManifestPath: path,
		Train:        transformed.Train,
		Test:         transformed.Test,
		Model:        model,
	}, nil
}

func (p *Pipeline) buildManifest(runID string, started time.Time, in *IngestionResult,
	tr *TransformationResult, model *ports.TrainedModel) *run.Manifest {
	trainRows, trainCols := tr.Train.Dims()
	testRows, testCols := tr.Test.Dims()

	m := &run.Manifest{
		RunID:        runID,
		Status:       run.StatusCompleted,
		Source:       p.config.Source.Path,
		SourceHash:   in.SourceHash,
		Seed:         p.config.Split.Seed,
		TestFraction: p.config.Split.TestFraction,
		RawRows:      in.RawRows,
		TrainRows:    in.TrainRows,
		TestRows:     in.TestRows,
		Columns:      sourceColumns(in.Profile),
		Features:     tr.FeatureNames,
		TrainShape:   [2]int{trainRows, trainCols},
		TestShape:    [2]int{testRows, testCols},
		Artifacts: run.ArtifactSet{
			Raw:          in.RawPath,
			Train:        in.TrainPath,
			Test:         in.TestPath,
			Preprocessor: tr.PreprocessorPath,
		},
		Fingerprint: run.Fingerprint(in.SourceHash, p.config.Split.Seed,
			p.config.Split.TestFraction, in.TrainRows, in.TestRows),
		StartedAt:   started,
		CompletedAt: p.now().UTC(),
	}
	if model != nil {
		m.Model = &run.ModelInfo{
			Name:     model.Name,
			Score:    model.Score,
			Artifact: model.ArtifactPath,
		}
	}
	return m
}

func sourceColumns(p *profiling.TableProfile) []run.Column {
	if p == nil {
		return nil
	}
	cols := make([]run.Column, len(p.Columns))
	for i, c := range p.Columns {
		cols[i] = run.Column{
			Name:     c.Name,
			Kind:     c.Kind,
			Missing:  c.Missing,
			Distinct: c.Distinct,
		}
	}
	return cols
}
