package ui

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"e2erun/internal/config"
	"e2erun/internal/discovery"
	"e2erun/internal/domain"
)

func TestFormatter_PrintTestList(t *testing.T) {
	root := t.TempDir()
	write := func(name, src string) string {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(src), 0644))
		return path
	}
	cart := write("e2e/cart_e2e.go", `package main

import "e2erun/e2e"

func Setup(f *e2e.File) {
	f.Run(e2e.RunOptions{})
	f.Test("adds an item", nil)
	f.Test("removes an item", nil)
}
`)
	legacy := write("e2e/legacy_e2e.go", `package main

import "e2erun/e2e"

func Setup(f *e2e.File) { f.Skip("gone") }
`)

	cfg := config.New()
	cfg.ProjectPath = root

	var out bytes.Buffer
	NewFormatter(cfg, discovery.NewParser(), &out).PrintTestList([]string{cart, legacy}, true, map[string]struct{}{"e2e/cart_e2e.go": {}})

	assert.Equal(t, "Found 2 test file(s):\n"+
		"├── e2e/cart_e2e.go [F]\n"+
		"│   ├── adds an item\n"+
		"│   └── removes an item\n"+
		"└── e2e/legacy_e2e.go\n"+
		"    └── (skipped)\n", out.String())
}

func TestFormatter_PrintMetaStats(t *testing.T) {
	cfg := config.New()
	cfg.ProjectPath = "/app"

	output := &domain.TestResultsOutput{
		Meta:    domain.TestResultsMeta{TotalTestFiles: 3, PassedTestFiles: 2, FailedTestFiles: 1, FailedTestCases: 1},
		Failing: []string{"/app/e2e/cart_e2e.go"},
		Details: []domain.TestFailure{
			{FilePath: "/app/e2e/cart_e2e.go", TestName: "adds an item", Kind: domain.FailureCaseThrew, Attempt: 1},
			{FilePath: "/app/e2e/cart_e2e.go", Kind: domain.FailurePostStop, Attempt: 2, Final: true},
		},
	}

	var out bytes.Buffer
	f := NewFormatter(cfg, discovery.NewParser(), &out)
	f.PrintMetaStats(output)

	got := out.String()
	assert.Contains(t, got, "│ Failed Test Files               │ 1                           │")
	assert.Contains(t, got, "✗ 1 test file(s) failed with 1 case failure(s)")
	assert.Contains(t, got, "└── e2e\n"+
		"    └── cart_e2e.go\n"+
		"        ├── adds an item (attempt 1)\n"+
		"        └── <post-stop> (attempt 2, final)\n")

	assert.Equal(t, map[string]struct{}{"e2e/cart_e2e.go": {}}, f.FailedPaths(output))
}

func TestListItemText(t *testing.T) {
	failure := domain.TestFailure{FilePath: "/app/e2e/cart_e2e.go", Kind: domain.FailureBuild, Attempt: 1}
	assert.Equal(t, "[yellow]1.[white] cart_e2e.go [gray](build, attempt 1)[white]", listItemText(failure, 1, false))
	assert.Contains(t, listItemText(failure, 1, true), "✓")
}
