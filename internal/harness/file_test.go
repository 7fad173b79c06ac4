package harness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context) error { return nil }

func TestFile_State(t *testing.T) {
	tests := []struct {
		name      string
		declare   func(f *File)
		wantState State
		wantUsage bool
	}{
		{
			name:      "run with cases",
			declare:   func(f *File) { f.Run(RunOptions{}); f.Test("a", noop) },
			wantState: StateRunning,
		},
		{
			name:      "cases before run",
			declare:   func(f *File) { f.Test("a", noop); f.Run(RunOptions{Flaky: true}) },
			wantState: StateRunning,
		},
		{
			name:      "skip",
			declare:   func(f *File) { f.Skip("broken upstream") },
			wantState: StateSkipped,
		},
		{
			name:      "skip then run",
			declare:   func(f *File) { f.Skip("x"); f.Run(RunOptions{}) },
			wantUsage: true,
		},
		{
			name:      "run then skip",
			declare:   func(f *File) { f.Run(RunOptions{}); f.Skip("x") },
			wantUsage: true,
		},
		{
			name:      "case after skip",
			declare:   func(f *File) { f.Skip("x"); f.Test("a", noop) },
			wantUsage: true,
		},
		{
			name:      "skip after case",
			declare:   func(f *File) { f.Test("a", noop); f.Skip("x") },
			wantUsage: true,
		},
		{
			name:      "run twice",
			declare:   func(f *File) { f.Run(RunOptions{}); f.Run(RunOptions{}) },
			wantUsage: true,
		},
		{
			name:      "cases without run",
			declare:   func(f *File) { f.Test("a", noop) },
			wantUsage: true,
		},
		{
			name:      "nothing declared",
			declare:   func(f *File) {},
			wantUsage: true,
		},
		{
			name:      "nil body",
			declare:   func(f *File) { f.Run(RunOptions{}); f.Test("a", nil) },
			wantUsage: true,
		},
		{
			name:      "negative timeout",
			declare:   func(f *File) { f.Run(RunOptions{CaseTimeout: -time.Second}) },
			wantUsage: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFile("login_e2e.go", "attempt", "http://localhost:3000")
			tt.declare(f)

			state, err := f.State()
			if tt.wantUsage {
				var usage *UsageError
				require.True(t, errors.As(err, &usage), "expected UsageError, got %v", err)
				assert.Equal(t, "login_e2e.go", usage.File)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, state)
		})
	}
}

func TestFile_SkippedFileKeepsNoCases(t *testing.T) {
	f := NewFile("a_e2e.go", "id", "")
	f.Skip("flaky backend")
	f.Test("should not register", noop)

	assert.Empty(t, f.Cases())
	assert.Nil(t, f.Declaration())
	assert.Equal(t, "flaky backend", f.SkipReason())
	require.Error(t, f.Err())
}

func TestFile_CasesKeepRegistrationOrder(t *testing.T) {
	f := NewFile("a_e2e.go", "id", "")
	f.Run(RunOptions{CaseTimeout: time.Second})
	for _, d := range []string{"first", "second", "third"} {
		f.Test(d, noop)
	}

	cases := f.Cases()
	require.Len(t, cases, 3)
	assert.Equal(t, "first", cases[0].Description)
	assert.Equal(t, "third", cases[2].Description)
	assert.Equal(t, time.Second, f.Declaration().CaseTimeout)
}

func TestFile_DefaultsCanBeReplaced(t *testing.T) {
	var calls []string
	f := NewFile("a_e2e.go", "id", "")
	f.SetDefaults(
		func(context.Context) error { calls = append(calls, "default start"); return nil },
		func(context.Context) error { calls = append(calls, "default stop"); return nil },
		nil,
	)
	f.OnServerStart(func(context.Context) error { calls = append(calls, "file start"); return nil })

	start, stop := f.ServerHooks()
	require.NoError(t, start(context.Background()))
	require.NoError(t, stop(context.Background()))
	assert.Equal(t, []string{"file start", "default stop"}, calls)

	f.Logf("ignored without sink %d", 1)
}

type stubPage struct{}

func (stubPage) Navigate(string) error       { return nil }
func (stubPage) Eval(string) (string, error) { return "", nil }
func (stubPage) Close() error                { return nil }

func TestFile_AttachPageOnce(t *testing.T) {
	f := NewFile("a_e2e.go", "id", "")
	require.NoError(t, f.AttachPage(stubPage{}))

	var invariant *InvariantViolation
	require.ErrorAs(t, f.AttachPage(stubPage{}), &invariant)
	assert.NotNil(t, f.Page())
}
