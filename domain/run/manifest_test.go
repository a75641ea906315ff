package run

import (
	"testing"
)

func TestFingerprint_Deterministic(t *testing.T) {
	fp1 := Fingerprint("abc", 42, 0.2, 800, 200)
	fp2 := Fingerprint("abc", 42, 0.2, 800, 200)

	if fp1 != fp2 {
		t.Errorf("Fingerprints not identical: %s vs %s", fp1, fp2)
	}
	if len(fp1) != 64 {
		t.Errorf("expected sha256 hex digest, got %q", fp1)
	}
}

func TestFingerprint_Unique(t *testing.T) {
	base := Fingerprint("abc", 42, 0.2, 800, 200)

	testCases := []struct {
		name string
		fp   string
	}{
		{"different source", Fingerprint("abd", 42, 0.2, 800, 200)},
		{"different seed", Fingerprint("abc", 43, 0.2, 800, 200)},
		{"different fraction", Fingerprint("abc", 42, 0.25, 750, 250)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.fp == base {
				t.Errorf("%s: fingerprint should differ from base", tc.name)
			}
		})
	}
}

func TestManifestValidate(t *testing.T) {
	m := &Manifest{
		RunID:       "run-1",
		SourceHash:  "abc",
		RawRows:     10,
		TrainRows:   8,
		TestRows:    2,
		Fingerprint: Fingerprint("abc", 42, 0.2, 8, 2),
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.TestRows = 3
	if err := m.Validate(); err == nil {
		t.Error("expected coverage error")
	}

	m.TestRows = 2
	m.RunID = ""
	if err := m.Validate(); err == nil {
		t.Error("expected run_id error")
	}
}
