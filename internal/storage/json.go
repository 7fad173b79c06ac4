package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"e2erun/internal/domain"
)

// BuildOutput turns a run summary into the stored report
func BuildOutput(summary domain.RunSummary, now time.Time) domain.TestResultsOutput {
	files := make(map[string]bool)
	skipped := make(map[string]bool)
	retried := 0
	failedCases := 0
	details := []domain.TestFailure{}

	for _, r := range summary.Results {
		files[r.Path] = true
		if r.Skipped {
			skipped[r.Path] = true
		}
		if r.Pass > 1 {
			retried++
		}
		if !r.Failed() {
			continue
		}
		if r.FailedCase() != nil {
			failedCases++
		}
		details = append(details, r.Failure())
	}

	return domain.TestResultsOutput{
		Meta: domain.TestResultsMeta{
			TotalTestFiles:   len(files),
			PassedTestFiles:  len(files) - len(skipped) - len(summary.Failing),
			FailedTestFiles:  len(summary.Failing),
			SkippedTestFiles: len(skipped),
			RetriedTestFiles: retried,
			FailedTestCases:  failedCases,
			Aborted:          summary.Aborted,
			CI:               summary.CI,
			Duration:         summary.Duration.String(),
			DurationSeconds:  summary.Duration.Seconds(),
			Timestamp:        now.Format(time.RFC3339),
		},
		Failing: append([]string{}, summary.Failing...),
		Details: details,
	}
}

// Save writes the run report to the configured JSON output file.
func (s *JSONStorage) Save(summary domain.RunSummary) error {
	output := BuildOutput(summary, time.Now())
	return s.SaveOutput(&output)
}

// Load reads the last run report from the configured JSON output file.
func (s *JSONStorage) Load() (*domain.TestResultsOutput, error) {
	path := s.cfg.GetOutputPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var output domain.TestResultsOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &output, nil
}

// SaveOutput writes the full output to the configured JSON file.
func (s *JSONStorage) SaveOutput(output *domain.TestResultsOutput) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	path := s.cfg.GetOutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
