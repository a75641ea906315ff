package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"mlproject/adapters/trainer"
	"mlproject/domain/run"
	"mlproject/internal/errors"
	"mlproject/internal/logging"
	"mlproject/internal/testkit"
	"mlproject/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

type failingTrainer struct{}

func (failingTrainer) Train(train, test *mat.Dense) (*ports.TrainedModel, error) {
	return nil, fmt.Errorf("singular system")
}

type recordingTrainer struct {
	trainCols, testCols int
}

func (r *recordingTrainer) Train(train, test *mat.Dense) (*ports.TrainedModel, error) {
	_, r.trainCols = train.Dims()
	_, r.testCols = test.Dims()
	return &ports.TrainedModel{Name: "recording", Score: 0.5}, nil
}

func TestPipelineRunEndToEnd(t *testing.T) {
	cfg := testConfig(t, testkit.StudentGeneratorConfig{Rows: 1000, Seed: 42, MissingRate: 0.02})
	modelPath := cfg.Artifacts.Model

	res, err := NewPipeline(cfg, nil, trainer.NewLinearRegression(modelPath)).Run()
	require.NoError(t, err)
	require.NotNil(t, res.Model)
	assert.Greater(t, res.Model.Score, 0.5, "generated scores carry signal")
	assert.FileExists(t, modelPath)

	var manifest run.Manifest
	require.NoError(t, json.Unmarshal(readFile(t, res.ManifestPath), &manifest))
	assert.NoError(t, manifest.Validate())
	assert.Equal(t, run.StatusCompleted, manifest.Status)
	assert.Equal(t, int64(42), manifest.Seed)
	assert.Equal(t, 1000, manifest.RawRows)
	assert.Equal(t, [2]int{800, 20}, manifest.TrainShape)
	assert.Equal(t, [2]int{200, 20}, manifest.TestShape)
	assert.Len(t, manifest.Features, 19)
	require.Len(t, manifest.Columns, 8)
	assert.Equal(t, "gender", manifest.Columns[0].Name)
	assert.Equal(t, "numeric", manifest.Columns[5].Kind)
	assert.Equal(t, cfg.Artifacts.Preprocessor, manifest.Artifacts.Preprocessor)
	require.NotNil(t, manifest.Model)
	assert.Equal(t, modelPath, manifest.Model.Artifact)
	assert.False(t, manifest.CompletedAt.Before(manifest.StartedAt))
}

func TestPipelineWithoutTrainer(t *testing.T) {
	cfg := testConfig(t, testkit.DefaultStudentConfig())

	res, err := NewPipeline(cfg, nil, nil).Run()
	require.NoError(t, err)
	assert.Nil(t, res.Model)
	assert.Nil(t, res.Manifest.Model)
	assert.FileExists(t, cfg.Artifacts.Manifest)
}

func TestPipelineHandsMatricesToTrainer(t *testing.T) {
	cfg := testConfig(t, testkit.DefaultStudentConfig())
	rec := &recordingTrainer{}

	res, err := NewPipeline(cfg, nil, rec).Run()
	require.NoError(t, err)
	assert.Equal(t, 20, rec.trainCols)
	assert.Equal(t, rec.trainCols, rec.testCols)
	assert.Equal(t, "recording", res.Manifest.Model.Name)
}

func TestPipelineFingerprintIsStable(t *testing.T) {
	gen := testkit.DefaultStudentConfig()

	first, err := NewPipeline(testConfig(t, gen), nil, nil).Run()
	require.NoError(t, err)
	second, err := NewPipeline(testConfig(t, gen), nil, nil).Run()
	require.NoError(t, err)

	assert.NotEqual(t, first.Manifest.RunID, second.Manifest.RunID)
	assert.Equal(t, first.Manifest.Fingerprint, second.Manifest.Fingerprint)
	assert.True(t, mat.Equal(first.Train, second.Train))
	assert.True(t, mat.Equal(first.Test, second.Test))
}

func TestPipelineAbortsOnFailure(t *testing.T) {
	t.Run("training", func(t *testing.T) {
		cfg := testConfig(t, testkit.DefaultStudentConfig())

		_, err := NewPipeline(cfg, nil, failingTrainer{}).Run()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "singular system")
		assert.NoFileExists(t, cfg.Artifacts.Manifest)
	})

	t.Run("ingestion", func(t *testing.T) {
		cfg := testConfig(t, testkit.DefaultStudentConfig())
		cfg.Source.Path = filepath.Join(t.TempDir(), "absent.csv")

		_, err := NewPipeline(cfg, nil, nil).Run()
		require.Error(t, err)
		assert.Equal(t, errors.CodeSourceRead, errors.GetCode(err))
		assert.NoFileExists(t, cfg.Artifacts.Preprocessor)
		assert.NoFileExists(t, cfg.Artifacts.Manifest)
	})
}

func TestPipelineManifestWriteFailure(t *testing.T) {
	cfg := testConfig(t, testkit.DefaultStudentConfig())
	// a directory in place of the manifest file makes the write fail
	require.NoError(t, os.MkdirAll(cfg.Artifacts.Manifest, 0o755))

	var logs bytes.Buffer
	_, err := NewPipeline(cfg, logging.New(&logs, "info", "text"), nil).Run()
	require.Error(t, err)
	assert.Equal(t, errors.CodeSerialization, errors.GetCode(err))
	assert.True(t, errors.Is(err, errors.CodeSerialization))
	assert.Contains(t, err.Error(), "manifest")

	assert.Contains(t, logs.String(), "pipeline run failed")
	assert.Contains(t, logs.String(), "stage=manifest")
	assert.Contains(t, logs.String(), "code=SERIALIZATION")
}
