package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
)

// Artifact file names inside the artifact directory
const (
	RawFile          = "data.csv"
	TrainFile        = "train.csv"
	TestFile         = "test.csv"
	PreprocessorFile = "preprocessor.gob"
	ManifestFile     = "manifest.json"
	ModelFile        = "model.gob"
)

// Paths names every artifact location of a run, all rooted under Dir
type Paths struct {
	Dir          string
	Raw          string
	Train        string
	Test         string
	Preprocessor string
	Manifest     string
	Model        string
}

// NewPaths lays out the artifact files under dir
func NewPaths(dir string) Paths {
	return Paths{
		Dir:          dir,
		Raw:          filepath.Join(dir, RawFile),
		Train:        filepath.Join(dir, TrainFile),
		Test:         filepath.Join(dir, TestFile),
		Preprocessor: filepath.Join(dir, PreprocessorFile),
		Manifest:     filepath.Join(dir, ManifestFile),
		Model:        filepath.Join(dir, ModelFile),
	}
}

// EnsureDir creates the artifact directory if it does not exist yet.
func (p Paths) EnsureDir() error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory %s: %w", p.Dir, err)
	}
	return nil
}
