package domain

// TestFailure represents a failed file attempt as stored in the results file
type TestFailure struct {
	FilePath string      `json:"file_path"`
	TestName string      `json:"test_name,omitempty"` // Case description, empty for file-level failures
	Kind     FailureKind `json:"kind"`
	Message  string      `json:"message"`
	Attempt  int         `json:"attempt"`
	Final    bool        `json:"final"`
	Logs     []LogEntry  `json:"logs,omitempty"`
	Resolved bool        `json:"resolved,omitempty"` // Track if the failure is marked as resolved
}
