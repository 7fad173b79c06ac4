package database

import (
	"bytes"
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"e2erun/internal/config"
)

func TestIsValidDatabaseName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "plain", input: "e2e_testing", expected: true},
		{name: "digits", input: "app_2", expected: true},
		{name: "empty", input: "", expected: false},
		{name: "too long", input: string(bytes.Repeat([]byte("a"), 65)), expected: false},
		{name: "quote", input: "app'; DROP", expected: false},
		{name: "backtick", input: "app`", expected: false},
		{name: "comment", input: "app--", expected: false},
		{name: "keyword", input: "drop", expected: false},
		{name: "keyword inside name", input: "dropbox", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isValidDatabaseName(tt.input))
		})
	}
}

func TestManager_DSN(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_USERNAME", "app")
	t.Setenv("DB_PASSWORD", "")

	cfg := config.New()
	m := NewManager(cfg, zap.NewNop())
	assert.Equal(t, "app@tcp(db.internal:3306)/", m.DSN())

	cfg.Database = config.DatabaseConfig{Host: "127.0.0.1", Port: "3307", User: "root", Password: "secret"}
	assert.Equal(t, "root:secret@tcp(127.0.0.1:3307)/", m.DSN())
}

func TestManager_PrepareRejectsInvalidName(t *testing.T) {
	cfg := config.New()
	cfg.Database.Name = "bad;name"
	m := NewManager(cfg, zap.NewNop())

	_, err := m.Prepare(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid database name")
}

func TestMigrator_Run(t *testing.T) {
	t.Run("no command", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, NewMigrator(config.New(), zap.NewNop(), &out).Run(context.Background()))
		assert.Empty(t, out.String())
	})

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	t.Run("streams output", func(t *testing.T) {
		cfg := config.New()
		cfg.ProjectPath = t.TempDir()
		cfg.Database.Name = "shop"
		cfg.Database.Migrate = []string{"sh", "-c", "echo migrating $DB_DATABASE"}

		var out bytes.Buffer
		require.NoError(t, NewMigrator(cfg, zap.NewNop(), &out).Run(context.Background()))
		assert.Equal(t, "  migrating shop\n", out.String())
	})

	t.Run("failing command", func(t *testing.T) {
		cfg := config.New()
		cfg.ProjectPath = t.TempDir()
		cfg.Database.Migrate = []string{"sh", "-c", "exit 2"}

		err := NewMigrator(cfg, zap.NewNop(), &bytes.Buffer{}).Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "migration failed")
	})
}
