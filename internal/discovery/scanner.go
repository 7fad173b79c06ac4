package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scanner scans for test files in a directory
type Scanner struct {
	suffix   string
	skipDirs map[string]bool
}

// NewScanner creates a Scanner matching files that end in suffix, skipping the given directories
func NewScanner(suffix string, skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{suffix: suffix, skipDirs: skipMap}
}

// Scan finds all test files under root in lexical order. A root that is itself a
// test file is returned as the only result.
func (s *Scanner) Scan(root string) ([]string, error) {
	var testFiles []string

	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		if !strings.HasSuffix(root, s.suffix) {
			return nil, fmt.Errorf("test path is not a directory or %s file: %s", s.suffix, root)
		}
		return []string{root}, nil
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			// Skip hidden directories (starting with .)
			if strings.HasPrefix(name, ".") || s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasSuffix(d.Name(), s.suffix) {
			testFiles = append(testFiles, path)
		}
		return nil
	})

	return testFiles, err
}
