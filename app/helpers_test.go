package app

import (
	"os"
	"path/filepath"
	"testing"

	"mlproject/domain/artifacts"
	"mlproject/internal/config"
	"mlproject/internal/testkit"

	"github.com/stretchr/testify/require"
)

// testConfig writes a generated source into a temp dir and points a default
// config at it, with artifacts under <tmp>/artifacts.
func testConfig(t *testing.T, gen testkit.StudentGeneratorConfig) config.Config {
	t.Helper()
	dir := t.TempDir()
	source, err := testkit.NewStudentGenerator(gen).WriteCSV(dir, "stud.csv")
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Source.Path = source
	cfg.Artifacts = artifacts.NewPaths(filepath.Join(dir, "artifacts"))
	return cfg
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func writeText(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
