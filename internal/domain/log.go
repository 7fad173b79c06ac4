package domain

import "time"

// Severity of a captured log entry
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the lowercase severity name used in reports
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// MarshalText encodes the severity by name so stored reports stay readable
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name, unknown names decode as info
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "warning":
		*s = SeverityWarning
	case "error":
		*s = SeverityError
	default:
		*s = SeverityInfo
	}
	return nil
}

// LogEntry is one line of side-channel output captured during a file's execution window
type LogEntry struct {
	Source   string    `json:"source"` // browser, server, test, harness
	Text     string    `json:"text"`
	Severity Severity  `json:"severity"`
	Time     time.Time `json:"time"`
}

// IsFailure reports whether the entry disqualifies a case
func (e LogEntry) IsFailure(failOnWarning bool) bool {
	return e.Severity == SeverityError || (failOnWarning && e.Severity == SeverityWarning)
}
