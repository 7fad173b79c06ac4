// Package build stages test files into per-attempt build directories and checks
// that they can be loaded.
package build

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EntryPoint is the function every test file must declare
const EntryPoint = "Setup"

// Artifact is a staged build of one test file
type Artifact struct {
	// BuiltPath is the staged source the loader evaluates
	BuiltPath string
	// ID names this build, distinct for every attempt
	ID string

	dir  string
	once sync.Once
	err  error
}

// NewArtifact returns an artifact whose Dispose removes dir
func NewArtifact(builtPath, dir string) *Artifact {
	return &Artifact{BuiltPath: builtPath, dir: dir}
}

// Dispose removes the build directory. It is idempotent and safe after a failed build.
func (a *Artifact) Dispose() error {
	if a == nil {
		return nil
	}
	a.once.Do(func() {
		if a.dir != "" {
			a.err = os.RemoveAll(a.dir)
		}
	})
	return a.err
}

// Builder stages test files
type Builder struct {
	root   string
	logger *zap.Logger
}

// NewBuilder creates a Builder staging under root
func NewBuilder(root string, logger *zap.Logger) *Builder {
	return &Builder{root: root, logger: logger}
}

// Build copies sourcePath into a fresh directory and verifies it is a loadable
// test file: package main declaring a top-level Setup function with one parameter.
// The returned artifact is non-nil whenever a directory was created, even on error,
// so callers can always Dispose it.
func (b *Builder) Build(ctx context.Context, sourcePath string) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("read test file: %w", err)
	}

	id := uuid.NewString()
	dir := filepath.Join(b.root, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create build dir: %w", err)
	}
	artifact := &Artifact{
		BuiltPath: filepath.Join(dir, filepath.Base(sourcePath)),
		ID:        id,
		dir:       dir,
	}

	if err := os.WriteFile(artifact.BuiltPath, src, 0644); err != nil {
		return artifact, fmt.Errorf("stage test file: %w", err)
	}

	if err := check(artifact.BuiltPath, src); err != nil {
		return artifact, err
	}

	b.logger.Debug("Built test file",
		zap.String("source", sourcePath),
		zap.String("artifact", artifact.BuiltPath))
	return artifact, nil
}

// check parses the staged source and looks for the entry point
func check(path string, src []byte) error {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.SkipObjectResolution)
	if err != nil {
		return fmt.Errorf("compile %s: %w", filepath.Base(path), err)
	}
	if file.Name.Name != "main" {
		return fmt.Errorf("compile %s: package %s, test files must be package main", filepath.Base(path), file.Name.Name)
	}

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv != nil || fn.Name.Name != EntryPoint {
			continue
		}
		if fn.Type.Params.NumFields() != 1 {
			return fmt.Errorf("compile %s: %s must take exactly one *e2e.File parameter", filepath.Base(path), EntryPoint)
		}
		return nil
	}
	return errors.New("compile " + filepath.Base(path) + ": missing func " + EntryPoint + "(f *e2e.File)")
}
