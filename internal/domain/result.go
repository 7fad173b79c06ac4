package domain

import "time"

// Outcome of one file attempt
type Outcome int

const (
	Pass Outcome = iota
	Fail
)

func (o Outcome) String() string {
	if o == Fail {
		return "fail"
	}
	return "pass"
}

// FailureKind names the stage that made an attempt fail
type FailureKind string

const (
	FailureBuild       FailureKind = "build"
	FailureLoad        FailureKind = "load"
	FailurePage        FailureKind = "page"
	FailureServerStart FailureKind = "server-start"
	FailureCaseThrew   FailureKind = "case-threw"
	FailureCaseTimeout FailureKind = "case-timeout"
	FailureLogDetected FailureKind = "log-detected"
	FailurePostStop    FailureKind = "post-stop"
)

// CaseResult represents the result of one test case
type CaseResult struct {
	Description string
	Passed      bool
	Kind        FailureKind // Empty when passed
	Reason      string
	Entries     []LogEntry // Log captured when the case failed
	Duration    time.Duration
}

// FileResult represents the result of executing a test file once
type FileResult struct {
	Path       string
	Pass       int  // 1 or 2
	Final      bool // Failure is permanent: no further retry
	Outcome    Outcome
	Skipped    bool
	SkipReason string
	Kind       FailureKind // Stage of the file-level failure, empty when passed
	Reason     string
	Entries    []LogEntry
	Cases      []CaseResult
	Duration   time.Duration
}

// Failed reports whether the attempt failed
func (r FileResult) Failed() bool {
	return r.Outcome == Fail
}

// TestResultsMeta contains metadata about a suite run
type TestResultsMeta struct {
	TotalTestFiles   int     `json:"total_test_files"`
	PassedTestFiles  int     `json:"passed_test_files"`
	FailedTestFiles  int     `json:"failed_test_files"`
	SkippedTestFiles int     `json:"skipped_test_files"`
	RetriedTestFiles int     `json:"retried_test_files"`
	FailedTestCases  int     `json:"failed_test_cases"`
	Aborted          bool    `json:"aborted,omitempty"`
	CI               bool    `json:"ci"`
	Duration         string  `json:"duration"`
	DurationSeconds  float64 `json:"duration_seconds"`
	Timestamp        string  `json:"timestamp"`
}

// TestResultsOutput is the complete output structure for test results
type TestResultsOutput struct {
	Meta    TestResultsMeta `json:"meta"`
	Failing []string        `json:"failing"` // Files still failing after all passes
	Details []TestFailure   `json:"details"`
}

// FailedCase returns the case that failed the attempt, nil for file-level failures
func (r FileResult) FailedCase() *CaseResult {
	for i := range r.Cases {
		if !r.Cases[i].Passed {
			return &r.Cases[i]
		}
	}
	return nil
}

// Failure converts a failed attempt into its stored form
func (r FileResult) Failure() TestFailure {
	f := TestFailure{
		FilePath: r.Path,
		Kind:     r.Kind,
		Message:  r.Reason,
		Attempt:  r.Pass,
		Final:    r.Final,
		Logs:     r.Entries,
	}
	if c := r.FailedCase(); c != nil {
		f.TestName = c.Description
	}
	return f
}

// RunSummary is everything one suite run produced
type RunSummary struct {
	Results  []FileResult // Every attempt in execution order
	Failing  []string     // Files still failing after all passes
	Duration time.Duration
	CI       bool
	Aborted  bool
}
