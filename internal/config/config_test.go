package config

import (
	"path/filepath"
	"testing"

	"mlproject/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "notebook/data/stud.csv", cfg.Source.Path)
	assert.Equal(t, 0.2, cfg.Split.TestFraction)
	assert.Equal(t, int64(42), cfg.Split.Seed)
	assert.Empty(t, cfg.Split.StratifyBy)
	assert.Equal(t, filepath.Join("artifacts", "train.csv"), cfg.Artifacts.Train)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PIPELINE_SOURCE", "data/students.xlsx")
	t.Setenv("PIPELINE_ARTIFACT_DIR", "out")
	t.Setenv("PIPELINE_TEST_FRACTION", "0.25")
	t.Setenv("PIPELINE_SEED", "7")
	t.Setenv("PIPELINE_LOG_FORMAT", "json")
	t.Setenv("PIPELINE_STRATIFY_BY", "lunch")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/students.xlsx", cfg.Source.Path)
	assert.Equal(t, filepath.Join("out", "preprocessor.gob"), cfg.Artifacts.Preprocessor)
	assert.Equal(t, 0.25, cfg.Split.TestFraction)
	assert.Equal(t, int64(7), cfg.Split.Seed)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "lunch", cfg.Split.StratifyBy)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-numeric seed", key: "PIPELINE_SEED", value: "forty-two"},
		{name: "non-numeric fraction", key: "PIPELINE_TEST_FRACTION", value: "a fifth"},
		{name: "fraction out of range", key: "PIPELINE_TEST_FRACTION", value: "1.5"},
		{name: "zero fraction", key: "PIPELINE_TEST_FRACTION", value: "0"},
		{name: "unknown log format", key: "PIPELINE_LOG_FORMAT", value: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.CodeConfigInvalid))
		})
	}
}
