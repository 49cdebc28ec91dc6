package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// UpdateGoldenEnv, when set, makes Golden rewrite the file instead of comparing.
const UpdateGoldenEnv = "TASKBOARD_UPDATE_GOLDEN"

// Golden compares rendered output against testdata/<name>.golden.
func Golden(t *testing.T, name string, got string) {
	t.Helper()

	goldenPath := filepath.Join("testdata", name+".golden")

	if os.Getenv(UpdateGoldenEnv) != "" {
		if err := os.MkdirAll("testdata", 0755); err != nil {
			t.Fatalf("failed to create testdata dir: %v", err)
		}
		if err := os.WriteFile(goldenPath, []byte(got), 0644); err != nil {
			t.Fatalf("failed to update golden file: %v", err)
		}
		return
	}

	want, err := os.ReadFile(goldenPath)
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v\nGot:\n%s", goldenPath, err, got)
	}

	if got != string(want) {
		t.Errorf("output mismatch for %s (set %s=1 to update)\nWant:\n%s\nGot:\n%s", name, UpdateGoldenEnv, want, got)
	}
}
