package domain

// Test represents a discovered e2e test file
type Test struct {
	Path     string // Full path to the test file
	FilePath string // Path relative to the project
	FileName string // Just the filename
}

// TestCase represents a single registered case within a test file
type TestCase struct {
	Description string // Description passed to File.Test
	FilePath    string // Path to the test file containing this case
}
