package preprocess

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mlproject/internal/errors"
)

const (
	artifactMagic   = "mlproject/preprocessor"
	artifactVersion = 1
)

// envelope is the on-disk form of a fitted transformer
type envelope struct {
	Magic       string
	Version     int
	SavedAt     time.Time
	Transformer *ColumnTransformer
}

// Save serialises a fitted transformer to path, replacing any existing file. The
// data is written to a temporary file in the same directory and renamed into place.
func Save(path string, ct *ColumnTransformer) error {
	if ct == nil || !ct.IsFitted() {
		return errors.Serialization("save preprocessor", ErrNotFitted)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Serialization("save preprocessor", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	env := envelope{
		Magic:       artifactMagic,
		Version:     artifactVersion,
		SavedAt:     time.Now().UTC(),
		Transformer: ct,
	}
	if err := gob.NewEncoder(tmp).Encode(&env); err != nil {
		tmp.Close()
		cleanup()
		return errors.Serialization("encode preprocessor", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Serialization("save preprocessor", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return errors.Serialization("save preprocessor", err)
	}
	return nil
}

// Load reads a transformer written by Save. The result is fitted and transforms
// exactly like the transformer that was saved.
func Load(path string) (*ColumnTransformer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Serialization("load preprocessor", err)
	}
	defer f.Close()

	var env envelope
	if err := gob.NewDecoder(f).Decode(&env); err != nil {
		return nil, errors.Serialization("decode preprocessor", err)
	}
	if env.Magic != artifactMagic {
		return nil, errors.Serialization("decode preprocessor", fmt.Errorf("%s is not a preprocessor artifact", path))
	}
	if env.Version != artifactVersion {
		return nil, errors.Serialization("decode preprocessor",
			fmt.Errorf("unsupported artifact version %d, want %d", env.Version, artifactVersion))
	}

	ct := env.Transformer
	if ct == nil {
		return nil, errors.Serialization("decode preprocessor", fmt.Errorf("artifact holds no transformer"))
	}
	// gob drops zero-valued pointers, e.g. a sub-pipeline with no columns
	if ct.Numeric == nil {
		ct.Numeric = NewNumericPipeline(nil)
	}
	if ct.Categorical == nil {
		ct.Categorical = NewCategoricalPipeline(nil)
	}
	if err := ct.checkState(); err != nil {
		return nil, errors.Serialization("decode preprocessor", err)
	}
	ct.fitted = true
	return ct, nil
}

// checkState verifies that every learned statistic lines up with its columns.
func (ct *ColumnTransformer) checkState() error {
	n := ct.Numeric
	if len(n.Imputer.Statistics) != len(n.Columns) ||
		len(n.Scaler.Mean) != len(n.Columns) ||
		len(n.Scaler.Scale) != len(n.Columns) {
		return fmt.Errorf("numeric statistics do not match %d columns", len(n.Columns))
	}
	c := ct.Categorical
	if len(c.Imputer.Statistics) != len(c.Columns) || len(c.Encoder.Categories) != len(c.Columns) {
		return fmt.Errorf("categorical statistics do not match %d columns", len(c.Columns))
	}
	if len(c.Scaler.Scale) != c.Encoder.Width() || len(c.Scaler.Mean) != c.Encoder.Width() {
		return fmt.Errorf("indicator scales do not match %d indicator columns", c.Encoder.Width())
	}
	return nil
}
