package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"e2erun/internal/config"
	"e2erun/internal/domain"
	"e2erun/internal/failurelog"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

// waitForLine blocks until text shows up in the log, so signals are only sent
// once the script has installed its handlers
func waitForLine(t *testing.T, log *failurelog.Log, text string) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, e := range log.Snapshot() {
			if e.Text == text {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond, "never saw %q", text)
}

func TestProcess_ShutdownOutputReachesLogBeforeStopReturns(t *testing.T) {
	skipOnWindows(t)

	script := `trap 'kill $pid; echo "ERROR database gone" >&2; exit 0' INT
echo "GET /error 200 4ms"
echo listening
sleep 30 &
pid=$!
wait`

	log := failurelog.New()
	p := NewProcess(config.ServerConfig{
		Command:     []string{"sh", "-c", script},
		StopTimeout: 5 * time.Second,
	}, t.TempDir(), log, zap.NewNop())

	require.NoError(t, p.Start(context.Background()))
	waitForLine(t, log, "listening")
	require.False(t, log.HasFailures(true), "access log lines on stdout are not failures")

	require.NoError(t, p.Stop(context.Background()))

	entries := log.Snapshot()
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, "server", e.Source)
	}
	assert.Equal(t, "GET /error 200 4ms", entries[0].Text)
	assert.Equal(t, domain.SeverityInfo, entries[0].Severity)
	assert.Equal(t, "ERROR database gone", entries[2].Text)
	assert.Equal(t, domain.SeverityError, entries[2].Severity)
	assert.True(t, log.HasFailures(false))
}

func TestProcess_StderrKeywordsAreFailures(t *testing.T) {
	skipOnWindows(t)

	log := failurelog.New()
	p := NewProcess(config.ServerConfig{
		Command:     []string{"sh", "-c", `echo "GET /error 200 4ms"; echo "disk is full, request failed with exception" >&2; echo ready; exec sleep 30`},
		StopTimeout: 5 * time.Second,
	}, t.TempDir(), log, zap.NewNop())

	require.NoError(t, p.Start(context.Background()))
	waitForLine(t, log, "ready")
	require.NoError(t, p.Stop(context.Background()))

	severities := map[string]domain.Severity{}
	for _, e := range log.Snapshot() {
		severities[e.Text] = e.Severity
	}
	assert.Equal(t, domain.SeverityInfo, severities["GET /error 200 4ms"])
	assert.Equal(t, domain.SeverityError, severities["disk is full, request failed with exception"])
}

func TestProcess_WaitsForURL(t *testing.T) {
	skipOnWindows(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewProcess(config.ServerConfig{
		Command:      []string{"sleep", "30"},
		URL:          srv.URL,
		ReadyTimeout: 5 * time.Second,
	}, t.TempDir(), failurelog.New(), zap.NewNop())

	require.NoError(t, p.Start(context.Background()))
	require.NoError(t, p.Stop(context.Background()))
}

func TestProcess_ExitBeforeReady(t *testing.T) {
	skipOnWindows(t)

	log := failurelog.New()
	p := NewProcess(config.ServerConfig{
		Command:      []string{"sh", "-c", "echo 'fatal: port in use'; exit 3"},
		URL:          "http://127.0.0.1:1",
		ReadyTimeout: 10 * time.Second,
	}, t.TempDir(), log, zap.NewNop())

	err := p.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited before answering")

	err = p.Stop(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server exited")

	entries := log.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.SeverityError, entries[0].Severity)
}

func TestProcess_Errors(t *testing.T) {
	tests := []struct {
		name    string
		command []string
		wantErr string
	}{
		{name: "no command", wantErr: "no server command"},
		{name: "missing binary", command: []string{"e2erun-no-such-binary"}, wantErr: "start server"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProcess(config.ServerConfig{Command: tt.command}, t.TempDir(), failurelog.New(), zap.NewNop())
			err := p.Start(context.Background())
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
			assert.NoError(t, p.Stop(context.Background()))
		})
	}
}

func TestNewFactory(t *testing.T) {
	cfg := config.New()
	assert.Nil(t, NewFactory(cfg, failurelog.New(), zap.NewNop()))

	cfg.Server.Command = []string{"sleep", "1"}
	f := NewFactory(cfg, failurelog.New(), zap.NewNop())
	require.NotNil(t, f)
	start, stop := f.Hooks()
	assert.NotNil(t, start)
	assert.NotNil(t, stop)
}
