package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParser_FindTestCases(t *testing.T) {
	parser := NewParser()
	tmpDir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(tmpDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}
		return path
	}

	running := write("cart_e2e.go", `package main

import (
	"context"

	"e2erun/e2e"
)

func Setup(f *e2e.File) {
	f.Run(e2e.RunOptions{Flaky: true})

	f.Test("adds an item", func(ctx context.Context) error { return nil })
	f.Test(`+"`removes an item`"+`, func(ctx context.Context) error { return nil })
	name := "computed"
	f.Test(name, func(ctx context.Context) error { return nil })
}
`)
	skipped := write("legacy_e2e.go", `package main

import "e2erun/e2e"

func Setup(f *e2e.File) {
	f.Skip("flow removed")
}
`)

	t.Run("finds cases in registration order", func(t *testing.T) {
		got, err := parser.FindTestCases(running)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := []string{"adds an item", "removes an item", "<dynamic>"}
		if len(got.Cases) != len(expected) {
			t.Fatalf("expected %v, got %v", expected, got.Cases)
		}
		for i := range expected {
			if got.Cases[i] != expected[i] {
				t.Errorf("case %d: expected %q, got %q", i, expected[i], got.Cases[i])
			}
		}
		if got.Skipped {
			t.Error("running file reported as skipped")
		}
	})

	t.Run("detects skip", func(t *testing.T) {
		got, err := parser.FindTestCases(skipped)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Skipped || len(got.Cases) != 0 {
			t.Errorf("expected skipped file without cases, got %+v", got)
		}
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		_, err := parser.FindTestCases("/non/existent/file_e2e.go")
		if err == nil {
			t.Error("expected error for non-existent file")
		}
	})
}
