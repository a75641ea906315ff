package run

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Status of a pipeline run
type Status string

// StatusCompleted marks a run whose stages all succeeded
const StatusCompleted Status = "completed"

// Manifest records what a pipeline run consumed and produced.
// It is written next to the artifacts once every stage has succeeded.
type Manifest struct {
	RunID        string      `json:"run_id"`
	Status       Status      `json:"status"`
	Source       string      `json:"source"`
	SourceHash   string      `json:"source_hash"`
	Seed         int64       `json:"seed"`
	TestFraction float64     `json:"test_fraction"`
	RawRows      int         `json:"raw_rows"`
	TrainRows    int         `json:"train_rows"`
	TestRows     int         `json:"test_rows"`
	Columns      []Column    `json:"columns"`
	Features     []string    `json:"features"`
	TrainShape   [2]int      `json:"train_shape"`
	TestShape    [2]int      `json:"test_shape"`
	Artifacts    ArtifactSet `json:"artifacts"`
	Model        *ModelInfo  `json:"model,omitempty"`
	Fingerprint  string      `json:"fingerprint"`
	StartedAt    time.Time   `json:"started_at"`
	CompletedAt  time.Time   `json:"completed_at"`
}

// Column profiles one source column
type Column struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Missing  int    `json:"missing"`
	Distinct int    `json:"distinct"`
}

// ArtifactSet lists the files written by the run
type ArtifactSet struct {
	Raw          string `json:"raw"`
	Train        string `json:"train"`
	Test         string `json:"test"`
	Preprocessor string `json:"preprocessor"`
}

// ModelInfo summarises the trained model, when training ran
type ModelInfo struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Artifact string  `json:"artifact"`
}

// Fingerprint hashes every input that decides the split, so two runs with equal
// fingerprints produced identical train/test row sets.
func Fingerprint(sourceHash string, seed int64, fraction float64, trainRows, testRows int) string {
	data := fmt.Sprintf("source:%s|seed:%d|fraction:%g|train:%d|test:%d",
		sourceHash, seed, fraction, trainRows, testRows)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(data)))
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if m.RunID == "" {
		return fmt.Errorf("run_id cannot be empty")
	}
	if m.SourceHash == "" {
		return fmt.Errorf("source_hash cannot be empty")
	}
	if m.TrainRows+m.TestRows != m.RawRows {
		return fmt.Errorf("split rows %d+%d do not cover %d raw rows", m.TrainRows, m.TestRows, m.RawRows)
	}
	if m.Fingerprint == "" {
		return fmt.Errorf("fingerprint cannot be empty")
	}
	return nil
}
