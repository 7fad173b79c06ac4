package ui

import "e2erun/internal/domain"

// Viewer displays stored failures in an interactive TUI
type Viewer interface {
	View(results *domain.TestResultsOutput) error
}
