package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/skysim-labs/skysim/pkg/logger"
)

// FileResult summarizes one output file of a run.
type FileResult struct {
	FileNum      int            `yaml:"file_num" json:"file_num"`
	FileName     string         `yaml:"file_name" json:"file_name"`
	Seed         int64          `yaml:"seed" json:"seed"`
	NObjects     int            `yaml:"nobjects" json:"nobjects"`
	TotalFlux    float64        `yaml:"total_flux" json:"total_flux"`
	ObjectCounts map[string]int `yaml:"object_counts" json:"object_counts"`
	Skipped      bool           `yaml:"skipped" json:"skipped"`
	Duration     time.Duration  `yaml:"duration" json:"duration"`
}

// Result is the outcome of a completed run.
type Result struct {
	RunID    string
	Camera   string
	Started  time.Time
	Finished time.Time
	Files    []FileResult
	Resumed  int
}

// Runner executes a run plan: a worker pool over the output file list,
// with deterministic per-file seeds and checkpointed resume.
type Runner struct {
	plan *Plan

	// OnFileDone, when set, is called after each file completes.
	// Callbacks may arrive from any worker goroutine.
	OnFileDone func(FileResult)

	mu         sync.Mutex
	checkpoint *Checkpoint
	unsaved    int
	results    []FileResult
}

// NewRunner creates a runner for the given plan.
func NewRunner(plan *Plan) *Runner {
	return &Runner{plan: plan}
}

// Run executes the plan. An existing checkpoint resumes the run by
// skipping completed files. Run returns the partial result alongside the
// error when the context is cancelled mid-run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	plan := r.plan
	result := &Result{
		RunID:   uuid.New().String(),
		Camera:  plan.Camera,
		Started: time.Now(),
	}

	if err := os.MkdirAll(plan.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if plan.Checkpoint != nil {
		cp, err := LoadCheckpoint(r.checkpointPath())
		if err != nil {
			return nil, err
		}
		if cp != nil {
			logger.Infof("Resuming run: %d of %d files already complete", len(cp.Completed), plan.NFiles)
			r.checkpoint = cp
		} else {
			r.checkpoint = &Checkpoint{RunID: result.RunID}
		}
	}

	var pending []int
	for i := 0; i < plan.NFiles; i++ {
		num := plan.FirstFile + i
		if r.checkpoint.Has(num) {
			result.Resumed++
			r.results = append(r.results, FileResult{
				FileNum:  num,
				FileName: fmt.Sprintf(plan.FileNameFormat, num),
				Skipped:  true,
			})
			continue
		}
		pending = append(pending, num)
	}

	jobs := make(chan int)
	errCh := make(chan error, 1)
	// Closed by the first failing worker so dispatch stops feeding jobs
	// once no worker is left to receive them.
	quit := make(chan struct{})
	var quitOnce sync.Once
	var wg sync.WaitGroup

	workers := plan.Workers()
	if workers > len(pending) && len(pending) > 0 {
		workers = len(pending)
	}
	logger.Infof("Simulating %d file(s) with %d worker(s), camera %s", len(pending), workers, plan.Camera)

	bar := logger.NewProgressBar(len(pending), "Rendering")
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for fileNum := range jobs {
				fr, err := r.simulateFile(ctx, fileNum)
				if err != nil {
					select {
					case errCh <- err:
					default:
					}
					quitOnce.Do(func() { close(quit) })
					return
				}
				r.fileDone(*fr)
				bar.Increment()
			}
		}()
	}

dispatch:
	for _, fileNum := range pending {
		select {
		case <-ctx.Done():
			break dispatch
		case <-quit:
			break dispatch
		case jobs <- fileNum:
		}
	}
	close(jobs)
	wg.Wait()
	if len(pending) > 0 {
		bar.Finish()
	}

	if r.checkpoint != nil && r.unsaved > 0 {
		if err := r.checkpoint.Save(r.checkpointPath()); err != nil {
			return nil, err
		}
	}

	result.Finished = time.Now()
	r.mu.Lock()
	result.Files = append(result.Files, r.results...)
	r.mu.Unlock()
	sortFiles(result.Files)

	select {
	case err := <-errCh:
		return result, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run interrupted: %w", err)
	}
	return result, nil
}

// simulateFile produces one output file: it walks the catalog objects,
// accumulates their summary statistics and writes the file manifest.
func (r *Runner) simulateFile(ctx context.Context, fileNum int) (*FileResult, error) {
	plan := r.plan
	started := time.Now()

	fr := FileResult{
		FileNum:      fileNum,
		FileName:     fmt.Sprintf(plan.FileNameFormat, fileNum),
		Seed:         plan.Seed + int64(fileNum),
		NObjects:     plan.ObjectsPerFile(),
		ObjectCounts: map[string]int{},
	}

	for i := 0; i < fr.NObjects; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("file %d interrupted: %w", fileNum, err)
			}
		}
		if plan.Catalog == nil {
			continue
		}
		obj, _, err := plan.Catalog.At(i % plan.Catalog.NumObjects())
		if err != nil {
			return nil, fmt.Errorf("file %d: %w", fileNum, err)
		}
		fr.TotalFlux += obj.Flux()
		fr.ObjectCounts[obj.Type]++
	}

	fr.Duration = time.Since(started)
	if err := r.writeManifest(&fr); err != nil {
		return nil, err
	}
	return &fr, nil
}

func (r *Runner) writeManifest(fr *FileResult) error {
	manifest := map[string]any{
		"camera":        r.plan.Camera,
		"file":          *fr,
		"effective_psf": r.plan.PSF.EffectiveFWHM(),
		"created":       time.Now().Format(time.RFC3339),
	}
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := filepath.Join(r.plan.OutputDir, fr.FileName+".manifest.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func (r *Runner) fileDone(fr FileResult) {
	r.mu.Lock()
	r.results = append(r.results, fr)
	if r.checkpoint != nil {
		r.checkpoint.Add(fr.FileNum)
		r.unsaved++
		if r.unsaved >= r.plan.Checkpoint.Every {
			if err := r.checkpoint.Save(r.checkpointPath()); err != nil {
				logger.Errorf("Failed to save checkpoint: %v", err)
			} else {
				r.unsaved = 0
			}
		}
	}
	r.mu.Unlock()

	if r.OnFileDone != nil {
		r.OnFileDone(fr)
	}
}

func (r *Runner) checkpointPath() string {
	return filepath.Join(r.plan.OutputDir, r.plan.Checkpoint.FileName)
}

func sortFiles(files []FileResult) {
	sort.Slice(files, func(i, j int) bool { return files[i].FileNum < files[j].FileNum })
}
