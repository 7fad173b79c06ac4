package storage

import (
	"e2erun/internal/config"
	"e2erun/internal/domain"
)

// Storage persists and loads suite run reports (e.g. for the faills viewer).
type Storage interface {
	Save(summary domain.RunSummary) error
	Load() (*domain.TestResultsOutput, error)
	// SaveOutput writes the full output (e.g. after resolving failures in the viewer).
	SaveOutput(output *domain.TestResultsOutput) error
}

// JSONStorage stores results in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}
