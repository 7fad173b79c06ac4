package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"e2erun/internal/config"
)

func TestDiscovery_Discover(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b_e2e.go", "a_e2e.go", "c_test.go"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("package main\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.New()
	cfg.ProjectPath = root

	files, err := New(cfg).Discover()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a_e2e.go" || filepath.Base(files[1]) != "b_e2e.go" {
		t.Errorf("unexpected files: %v", files)
	}

	cfg.Flags.NameFilter = "b_"
	files, err = New(cfg).Discover()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "b_e2e.go" {
		t.Errorf("unexpected filtered files: %v", files)
	}
}
