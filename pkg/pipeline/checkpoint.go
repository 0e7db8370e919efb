package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Checkpoint records which output files a run has completed so an
// interrupted run can resume without redoing them.
type Checkpoint struct {
	RunID     string `yaml:"run_id"`
	Completed []int  `yaml:"completed_files"`
}

// LoadCheckpoint reads a checkpoint document. A missing file yields a
// nil checkpoint, not an error.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := yaml.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint %s: %w", path, err)
	}
	return &cp, nil
}

// Save writes the checkpoint document. The write goes through a
// temporary file and rename so an interrupted save never leaves a
// truncated checkpoint behind.
func (cp *Checkpoint) Save(path string) error {
	sort.Ints(cp.Completed)
	data, err := yaml.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace checkpoint: %w", err)
	}
	return nil
}

// Has reports whether a file number is recorded as completed.
func (cp *Checkpoint) Has(fileNum int) bool {
	if cp == nil {
		return false
	}
	for _, n := range cp.Completed {
		if n == fileNum {
			return true
		}
	}
	return false
}

// Add records a completed file number.
func (cp *Checkpoint) Add(fileNum int) {
	if cp.Has(fileNum) {
		return
	}
	cp.Completed = append(cp.Completed, fileNum)
}
