package execution

import (
	"fmt"
	"strings"
	"time"

	"e2erun/internal/domain"
)

// ServerStartError reports that the server under test failed to start
type ServerStartError struct {
	Err error
}

func (e *ServerStartError) Error() string {
	return "server start failed: " + e.Err.Error()
}

func (e *ServerStartError) Unwrap() error {
	return e.Err
}

// CaseTimeoutError reports a case that did not settle within its timeout
type CaseTimeoutError struct {
	Description string
	Timeout     time.Duration
}

func (e *CaseTimeoutError) Error() string {
	return fmt.Sprintf("case %q timed out after %s", e.Description, e.Timeout)
}

// CaseThrewError reports a case body that returned an error or panicked
type CaseThrewError struct {
	Description string
	Err         error
}

func (e *CaseThrewError) Error() string {
	return fmt.Sprintf("case %q threw: %v", e.Description, e.Err)
}

func (e *CaseThrewError) Unwrap() error {
	return e.Err
}

// LogDetectedFailure reports disqualifying log entries where nothing was thrown
type LogDetectedFailure struct {
	// Stage is the case description, or "server start" / "server stop"
	Stage   string
	Entries []domain.LogEntry
}

func (e *LogDetectedFailure) Error() string {
	first := ""
	for _, entry := range e.Entries {
		if entry.Severity != domain.SeverityInfo {
			first = fmt.Sprintf(": [%s] %s", entry.Source, entry.Text)
			break
		}
	}
	return fmt.Sprintf("log-detected failure during %s%s", e.Stage, first)
}

// AbortError is the parallel CI circuit breaker: a file failed on its final
// attempt and the process must exit with status 1 once resources are released.
type AbortError struct {
	Path string
	Pass int
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("aborting: %s failed on its final attempt (pass %d) in parallel CI", e.Path, e.Pass)
}

// SuiteFailure lists every file still failing after all passes
type SuiteFailure struct {
	Paths []string
}

func (e *SuiteFailure) Error() string {
	return fmt.Sprintf("%d test file(s) failed:\n%s", len(e.Paths), strings.Join(e.Paths, "\n"))
}
