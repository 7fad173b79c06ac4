package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_GetTestPath(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name: "default path",
			config: &Config{
				ProjectPath: ".",
				TestPath:    ".",
				Flags:       Flags{},
			},
			expected: ".",
		},
		{
			name: "with test path flag",
			config: &Config{
				ProjectPath: "/project",
				TestPath:    ".",
				Flags: Flags{
					TestPath: "e2e",
				},
			},
			expected: "/project/e2e",
		},
		{
			name: "absolute test path",
			config: &Config{
				ProjectPath: "/project",
				TestPath:    ".",
				Flags: Flags{
					TestPath: "/absolute/path",
				},
			},
			expected: "/absolute/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.GetTestPath()
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestConfig_GetDatabaseName(t *testing.T) {
	t.Run("configured name wins", func(t *testing.T) {
		t.Setenv("DB_DATABASE", "from_env")
		cfg := New()
		cfg.Database.Name = "configured"
		if name := cfg.GetDatabaseName(); name != "configured" {
			t.Errorf("expected configured, got %s", name)
		}
	})

	t.Run("environment fallback", func(t *testing.T) {
		t.Setenv("DB_DATABASE", "from_env")
		if name := New().GetDatabaseName(); name != "from_env" {
			t.Errorf("expected from_env, got %s", name)
		}
	})

	t.Run("default name", func(t *testing.T) {
		t.Setenv("DB_DATABASE", "")
		if name := New().GetDatabaseName(); name != "e2e_testing" {
			t.Errorf("expected e2e_testing, got %s", name)
		}
	})
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.ProjectPath != DefaultProjectPath {
		t.Errorf("expected ProjectPath %s, got %s", DefaultProjectPath, cfg.ProjectPath)
	}

	if cfg.CaseTimeout != DefaultCaseTimeout {
		t.Errorf("expected CaseTimeout %s, got %s", DefaultCaseTimeout, cfg.CaseTimeout)
	}

	if !cfg.Browser.Headless {
		t.Error("expected headless browser by default")
	}

	if len(cfg.PathsToIgnore) != len(DefaultPathsToIgnore) {
		t.Errorf("expected %d paths to ignore, got %d", len(DefaultPathsToIgnore), len(cfg.PathsToIgnore))
	}
}

func TestConfig_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "e2erun.yaml")
	content := `
test_path: e2e
case_timeout: 5s
ignore: [fixtures]
server:
  command: ["go", "run", "./cmd/app"]
  url: http://localhost:8080
  ready_timeout: 20s
  env:
    APP_ENV: test
browser:
  headless: false
  flags: ["no-sandbox"]
database:
  host: 127.0.0.1
  name: app_e2e
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(Flags{ConfigFile: path, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.TestPath != "e2e" {
		t.Errorf("expected test path e2e, got %s", cfg.TestPath)
	}
	if cfg.CaseTimeout != 2*time.Second {
		t.Errorf("expected flag timeout to win, got %s", cfg.CaseTimeout)
	}
	if len(cfg.Server.Command) != 3 || cfg.Server.URL != "http://localhost:8080" {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Server.ReadyTimeout != 20*time.Second {
		t.Errorf("expected ready timeout 20s, got %s", cfg.Server.ReadyTimeout)
	}
	if cfg.Server.StopTimeout != DefaultServerStopTimeout {
		t.Errorf("expected default stop timeout, got %s", cfg.Server.StopTimeout)
	}
	if cfg.Server.Env["APP_ENV"] != "test" {
		t.Errorf("expected server env APP_ENV=test, got %v", cfg.Server.Env)
	}
	if cfg.Browser.Headless {
		t.Error("expected headful browser from config")
	}
	if cfg.GetDatabaseName() != "app_e2e" {
		t.Errorf("expected database app_e2e, got %s", cfg.GetDatabaseName())
	}
	if len(cfg.PathsToIgnore) != 1 || cfg.PathsToIgnore[0] != "fixtures" {
		t.Errorf("unexpected ignore list: %v", cfg.PathsToIgnore)
	}
}

func TestConfig_LoadErrors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		if _, err := Load(Flags{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")}); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		os.WriteFile(path, []byte("server: [unclosed"), 0644)
		if _, err := Load(Flags{ConfigFile: path}); err == nil {
			t.Error("expected parse error")
		}
	})
}
