package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.yaml")

	cp := &Checkpoint{RunID: "run-1"}
	cp.Add(3)
	cp.Add(1)
	cp.Add(3) // duplicate, ignored
	if err := cp.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	if loaded.RunID != "run-1" {
		t.Errorf("Expected run ID run-1, got %q", loaded.RunID)
	}
	if len(loaded.Completed) != 2 || loaded.Completed[0] != 1 || loaded.Completed[1] != 3 {
		t.Errorf("Expected sorted completed files [1 3], got %v", loaded.Completed)
	}
	if !loaded.Has(3) || loaded.Has(2) {
		t.Error("Has reported wrong membership")
	}
}

func TestLoadCheckpointMissing(t *testing.T) {
	cp, err := LoadCheckpoint(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Expected no error for missing checkpoint, got %v", err)
	}
	if cp != nil {
		t.Error("Expected nil checkpoint for missing file")
	}
	if cp.Has(1) {
		t.Error("Nil checkpoint should report nothing completed")
	}
}

func TestLoadCheckpointMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.yaml")
	if err := os.WriteFile(path, []byte(":\tnot yaml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCheckpoint(path); err == nil {
		t.Error("Expected parse error for malformed checkpoint")
	}
}
