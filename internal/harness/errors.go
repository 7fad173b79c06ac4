package harness

import "fmt"

// UsageError reports misuse of the declaration API by a test file.
// It is never retried.
type UsageError struct {
	File string
	Msg  string
}

func (e *UsageError) Error() string {
	if e.File == "" {
		return "usage error: " + e.Msg
	}
	return fmt.Sprintf("usage error in %s: %s", e.File, e.Msg)
}

// InvariantViolation reports a broken internal precondition of the harness itself
type InvariantViolation struct {
	Msg string
}

func (e *InvariantViolation) Error() string {
	return "harness invariant violated: " + e.Msg
}
