package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	TestPath    string
	FileSuffix  string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string

	// Execution settings
	CaseTimeout time.Duration
	BuildDir    string

	// Paths to ignore when scanning
	PathsToIgnore []string

	Server   ServerConfig
	Browser  BrowserConfig
	Database DatabaseConfig

	// Command flags
	Flags Flags
}

// ServerConfig describes the default server under test. With an empty Command the
// harness starts no server unless a test file installs its own hooks.
type ServerConfig struct {
	Command      []string          `yaml:"command"`
	Dir          string            `yaml:"dir"`
	URL          string            `yaml:"url"`
	Env          map[string]string `yaml:"env"`
	ReadyTimeout time.Duration     `yaml:"ready_timeout"`
	StopTimeout  time.Duration     `yaml:"stop_timeout"`
}

// BrowserConfig configures the browser session shared by the suite
type BrowserConfig struct {
	Bin         string   `yaml:"bin"`
	Headless    bool     `yaml:"headless"`
	DebuggerURL string   `yaml:"debugger_url"`
	Flags       []string `yaml:"flags"`
}

// DatabaseConfig describes the MySQL database used by the server under test
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`

	// Migrate runs in the server directory after the database is prepared
	Migrate []string `yaml:"migrate"`
}

// Flags holds command-line flags
type Flags struct {
	ConfigFile string
	TestPath   string
	NameFilter string
	TestCases  bool
	CI         bool
	ParallelCI bool
	Timeout    time.Duration
	Headful    bool
	PrepareDB  bool
	FreshDB    bool
	OpenFaills bool
	Verbose    bool
}

// fileConfig is the on-disk shape of e2erun.yaml
type fileConfig struct {
	TestPath      string         `yaml:"test_path"`
	FileSuffix    string         `yaml:"file_suffix"`
	OutputDir     string         `yaml:"output_dir"`
	CaseTimeout   time.Duration  `yaml:"case_timeout"`
	BuildDir      string         `yaml:"build_dir"`
	PathsToIgnore []string       `yaml:"ignore"`
	Server        ServerConfig   `yaml:"server"`
	Browser       *BrowserConfig `yaml:"browser"`
	Database      DatabaseConfig `yaml:"database"`
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		TestPath:       DefaultTestPath,
		FileSuffix:     DefaultFileSuffix,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		CaseTimeout:    DefaultCaseTimeout,
		Server: ServerConfig{
			URL:          DefaultServerURL,
			ReadyTimeout: DefaultServerReadyTimeout,
			StopTimeout:  DefaultServerStopTimeout,
		},
		Browser: BrowserConfig{Headless: true},
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load creates a config from defaults, the project .env and config file, then applies flags
func Load(flags Flags) (*Config, error) {
	cfg := New()

	// .env may not exist, environment variables are used as they are
	_ = godotenv.Load(filepath.Join(cfg.ProjectPath, ".env"))

	path := flags.ConfigFile
	explicit := path != ""
	if !explicit {
		path = filepath.Join(cfg.ProjectPath, DefaultConfigFile)
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg.ApplyFlags(flags)
	return cfg, nil
}

// loadFile merges the YAML config file at path over the current values
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.TestPath != "" {
		c.TestPath = fc.TestPath
	}
	if fc.FileSuffix != "" {
		c.FileSuffix = fc.FileSuffix
	}
	if fc.OutputDir != "" {
		c.OutputJSONDir = fc.OutputDir
	}
	if fc.CaseTimeout > 0 {
		c.CaseTimeout = fc.CaseTimeout
	}
	if fc.BuildDir != "" {
		c.BuildDir = fc.BuildDir
	}
	if len(fc.PathsToIgnore) > 0 {
		c.PathsToIgnore = fc.PathsToIgnore
	}

	if len(fc.Server.Command) > 0 {
		c.Server.Command = fc.Server.Command
	}
	if fc.Server.Dir != "" {
		c.Server.Dir = fc.Server.Dir
	}
	if fc.Server.URL != "" {
		c.Server.URL = fc.Server.URL
	}
	if len(fc.Server.Env) > 0 {
		c.Server.Env = fc.Server.Env
	}
	if fc.Server.ReadyTimeout > 0 {
		c.Server.ReadyTimeout = fc.Server.ReadyTimeout
	}
	if fc.Server.StopTimeout > 0 {
		c.Server.StopTimeout = fc.Server.StopTimeout
	}

	if fc.Browser != nil {
		c.Browser = *fc.Browser
	}
	c.Database = fc.Database
	return nil
}

// ApplyFlags applies command-line overrides
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.Timeout > 0 {
		c.CaseTimeout = flags.Timeout
	}
	if flags.Headful {
		c.Browser.Headless = false
	}
}

// GetTestPath returns the test path, using flag if provided
func (c *Config) GetTestPath() string {
	if c.Flags.TestPath != "" {
		// If TestPath is provided, make it relative to the project path if it's not absolute
		if filepath.IsAbs(c.Flags.TestPath) {
			return c.Flags.TestPath
		}
		return filepath.Join(c.ProjectPath, c.Flags.TestPath)
	}

	// Default: combine project path and test path
	return filepath.Join(c.ProjectPath, c.TestPath)
}

// GetOutputPath returns the full path to the output JSON file.
// Resolves to an absolute path so run and faills always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetBuildDir returns the directory build artifacts are staged under
func (c *Config) GetBuildDir() string {
	if c.BuildDir != "" {
		return c.BuildDir
	}
	return filepath.Join(os.TempDir(), "e2erun-build")
}

// GetServerDir returns the working directory of the server command
func (c *Config) GetServerDir() string {
	if c.Server.Dir == "" {
		return c.ProjectPath
	}
	if filepath.IsAbs(c.Server.Dir) {
		return c.Server.Dir
	}
	return filepath.Join(c.ProjectPath, c.Server.Dir)
}

// GetDatabaseName returns the database name of the server under test
func (c *Config) GetDatabaseName() string {
	if c.Database.Name != "" {
		return c.Database.Name
	}
	if name := os.Getenv("DB_DATABASE"); name != "" {
		return name
	}
	return "e2e_testing"
}
