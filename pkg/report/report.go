// Package report summarizes a completed simulation run: a JSON or
// Markdown document written next to the output files, plus a console
// summary.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/skysim-labs/skysim/pkg/logger"
	"github.com/skysim-labs/skysim/pkg/pipeline"
)

// Config controls report generation.
type Config struct {
	OutputDir string
	Format    string // "json" or "markdown"
}

// Report is the run summary document.
type Report struct {
	Metadata   Metadata              `json:"metadata"`
	Summary    Summary               `json:"summary"`
	Files      []pipeline.FileResult `json:"files"`
	ObjectMix  map[string]int        `json:"object_mix"`
	Throughput Throughput            `json:"throughput"`
}

// Metadata identifies the run.
type Metadata struct {
	RunID       string    `json:"run_id"`
	Camera      string    `json:"camera"`
	GeneratedAt time.Time `json:"generated_at"`
	Started     time.Time `json:"started"`
	Finished    time.Time `json:"finished"`
	Duration    string    `json:"duration"`
}

// Summary holds the headline numbers.
type Summary struct {
	FilesSimulated int     `json:"files_simulated"`
	FilesResumed   int     `json:"files_resumed"`
	TotalObjects   int     `json:"total_objects"`
	TotalFlux      float64 `json:"total_flux"`
}

// Throughput holds rate figures derived from the per-file timings.
type Throughput struct {
	ObjectsPerSecond float64 `json:"objects_per_second"`
	MeanFileSeconds  float64 `json:"mean_file_seconds"`
	SlowestFile      string  `json:"slowest_file,omitempty"`
}

// Build assembles a report from a run result.
func Build(result *pipeline.Result) *Report {
	duration := result.Finished.Sub(result.Started)
	r := &Report{
		Metadata: Metadata{
			RunID:       result.RunID,
			Camera:      result.Camera,
			GeneratedAt: time.Now(),
			Started:     result.Started,
			Finished:    result.Finished,
			Duration:    duration.String(),
		},
		Files:     result.Files,
		ObjectMix: make(map[string]int),
	}

	var simulated int
	var busy time.Duration
	var slowest time.Duration
	for _, fr := range result.Files {
		if fr.Skipped {
			r.Summary.FilesResumed++
			continue
		}
		simulated++
		r.Summary.TotalObjects += fr.NObjects
		r.Summary.TotalFlux += fr.TotalFlux
		busy += fr.Duration
		if fr.Duration > slowest {
			slowest = fr.Duration
			r.Throughput.SlowestFile = fr.FileName
		}
		for typ, n := range fr.ObjectCounts {
			r.ObjectMix[typ] += n
		}
	}
	r.Summary.FilesSimulated = simulated

	if busy > 0 {
		r.Throughput.ObjectsPerSecond = float64(r.Summary.TotalObjects) / busy.Seconds()
	}
	if simulated > 0 {
		r.Throughput.MeanFileSeconds = busy.Seconds() / float64(simulated)
	}
	return r
}

// Save writes the report into the output directory and returns its path.
func Save(r *Report, cfg Config) (string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	name := fmt.Sprintf("run_%s_%s", shortID(r.Metadata.RunID), timestamp)

	var path string
	var err error
	switch cfg.Format {
	case "", "json":
		path = filepath.Join(cfg.OutputDir, name+".json")
		err = saveJSON(r, path)
	case "markdown":
		path = filepath.Join(cfg.OutputDir, name+".md")
		err = saveMarkdown(r, path)
	default:
		return "", fmt.Errorf("unsupported report format: %s", cfg.Format)
	}
	if err != nil {
		return "", err
	}

	logger.Successf("Run report saved to: %s", path)
	return path, nil
}

func saveJSON(r *Report, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func saveMarkdown(r *Report, path string) error {
	var sb strings.Builder

	sb.WriteString("# Simulation Run Report\n\n")
	sb.WriteString(fmt.Sprintf("**Run ID:** %s\n", r.Metadata.RunID))
	sb.WriteString(fmt.Sprintf("**Camera:** %s\n", r.Metadata.Camera))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n", r.Metadata.GeneratedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("**Duration:** %s\n\n", r.Metadata.Duration))

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Files simulated:** %d\n", r.Summary.FilesSimulated))
	if r.Summary.FilesResumed > 0 {
		sb.WriteString(fmt.Sprintf("- **Files resumed from checkpoint:** %d\n", r.Summary.FilesResumed))
	}
	sb.WriteString(fmt.Sprintf("- **Objects drawn:** %d\n", r.Summary.TotalObjects))
	sb.WriteString(fmt.Sprintf("- **Total flux:** %.4g\n\n", r.Summary.TotalFlux))

	if len(r.ObjectMix) > 0 {
		sb.WriteString("## Object Mix\n\n")
		types := make([]string, 0, len(r.ObjectMix))
		for typ := range r.ObjectMix {
			types = append(types, typ)
		}
		sort.Strings(types)
		for _, typ := range types {
			sb.WriteString(fmt.Sprintf("- **%s:** %d\n", typ, r.ObjectMix[typ]))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Throughput\n\n")
	sb.WriteString(fmt.Sprintf("- **Objects/second:** %.1f\n", r.Throughput.ObjectsPerSecond))
	sb.WriteString(fmt.Sprintf("- **Mean seconds/file:** %.3f\n", r.Throughput.MeanFileSeconds))
	if r.Throughput.SlowestFile != "" {
		sb.WriteString(fmt.Sprintf("- **Slowest file:** %s\n", r.Throughput.SlowestFile))
	}
	sb.WriteString("\n## Files\n\n")
	sb.WriteString("| File | Seed | Objects | Flux | Duration |\n")
	sb.WriteString("|------|------|---------|------|----------|\n")
	for _, fr := range r.Files {
		if fr.Skipped {
			sb.WriteString(fmt.Sprintf("| %s | - | - | - | resumed |\n", fr.FileName))
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %.4g | %s |\n",
			fr.FileName, fr.Seed, fr.NObjects, fr.TotalFlux, fr.Duration.Round(time.Millisecond)))
	}

	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// PrintSummary writes the headline numbers to the console.
func PrintSummary(r *Report) {
	logger.LogSection("Run Summary")
	logger.LogKeyValue("Run ID", shortID(r.Metadata.RunID))
	logger.LogKeyValue("Camera", r.Metadata.Camera)
	logger.LogKeyValue("Duration", r.Metadata.Duration)
	logger.LogKeyValue("Files simulated", r.Summary.FilesSimulated)
	if r.Summary.FilesResumed > 0 {
		logger.LogKeyValue("Files resumed", color.YellowString("%d", r.Summary.FilesResumed))
	}
	logger.LogKeyValue("Objects drawn", r.Summary.TotalObjects)
	for typ, n := range r.ObjectMix {
		logger.LogKeyValue("  "+typ, n)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
