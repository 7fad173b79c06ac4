package config

import "time"

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultTestPath is the default test path
	DefaultTestPath = "."
	// DefaultConfigFile is looked up in the project path
	DefaultConfigFile = "e2erun.yaml"
	// DefaultFileSuffix marks e2e test files
	DefaultFileSuffix = "_e2e.go"
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "e2e-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = ".e2erun"
	// DefaultCaseTimeout bounds a case whose file does not declare a timeout
	DefaultCaseTimeout = 30 * time.Second
	// DefaultServerURL is where the server under test listens
	DefaultServerURL = "http://localhost:3000"
	// DefaultServerReadyTimeout bounds waiting for the server URL to answer
	DefaultServerReadyTimeout = 60 * time.Second
	// DefaultServerStopTimeout is the grace period between interrupt and kill
	DefaultServerStopTimeout = 10 * time.Second
)

// DefaultPathsToIgnore are the default directories to ignore when scanning for tests
var DefaultPathsToIgnore = []string{
	"vendor",
	"node_modules",
	"testdata",
	"dist",
	"build",
}
