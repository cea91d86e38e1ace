package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coderunr/editor/internal/catalogue"
	"github.com/coderunr/editor/internal/client"
	"github.com/coderunr/editor/internal/handler"
	"github.com/coderunr/editor/internal/session"
	"github.com/coderunr/editor/internal/types"
	"github.com/fatih/color"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

// executionService answers every request with response and records the bodies
type executionService struct {
	mu       sync.Mutex
	bodies   []map[string]interface{}
	response types.ExecutionResult
}

func (s *executionService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	s.bodies = append(s.bodies, body)
	resp := s.response
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *executionService) last() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies[len(s.bodies)-1]
}

func newService(t *testing.T, response types.ExecutionResult) (*httptest.Server, *executionService) {
	t.Helper()
	svc := &executionService{response: response}
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)
	return srv, svc
}

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExecuteCommand(t *testing.T) {
	srv, svc := newService(t, types.ExecutionResult{Output: "Hello, World!\n"})

	out, err := runCommand(t, "", "run", "python", "--url", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!\n", out)

	body := svc.last()
	assert.Equal(t, "python", body["language"])
	assert.Equal(t, catalogue.Builtin().Snippet(catalogue.Python), body["script"])
	assert.NotContains(t, body, "stdin")
}

func TestExecuteCommandWithFileAndStdin(t *testing.T) {
	srv, svc := newService(t, types.ExecutionResult{Output: "42\n"})

	file := filepath.Join(t.TempDir(), "main.rb")
	require.NoError(t, os.WriteFile(file, []byte("puts gets"), 0o644))

	_, err := runCommand(t, "42", "execute", "ruby", file, "-i", "--url", srv.URL)
	require.NoError(t, err)

	body := svc.last()
	assert.Equal(t, "puts gets", body["script"])
	assert.Equal(t, "42", body["stdin"])

	input := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(input, []byte("7\n"), 0o644))

	_, err = runCommand(t, "", "execute", "ruby", file, "--stdin-file", input, "--url", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "7\n", svc.last()["stdin"])
}

func TestExecuteCommandDiagnostic(t *testing.T) {
	srv, _ := newService(t, types.ExecutionResult{CompileMessage: "main.cpp:1: error: expected ';'"})

	out, err := runCommand(t, "", "run", "cpp", "--url", srv.URL)
	assert.ErrorIs(t, err, ErrDiagnostic)
	assert.Equal(t, "main.cpp:1: error: expected ';'\n", out)
}

func TestExecuteCommandErrors(t *testing.T) {
	t.Run("unknown language", func(t *testing.T) {
		_, err := runCommand(t, "", "run", "cobol")
		assert.ErrorIs(t, err, catalogue.ErrUnknownLanguage)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := runCommand(t, "", "run", "go", filepath.Join(t.TempDir(), "nope.go"))
		assert.ErrorContains(t, err, "failed to read file")
	})

	t.Run("unreachable service", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		out, err := runCommand(t, "", "run", "go", "--url", url, "--timeout", "2s")
		assert.ErrorContains(t, err, "request failed")
		assert.Contains(t, out, "Request failed")
	})
}

func TestListCommand(t *testing.T) {
	out, err := runCommand(t, "", "languages")
	require.NoError(t, err)
	assert.Contains(t, out, "Available languages (9)")
	for _, id := range catalogue.Builtin().Languages() {
		assert.Contains(t, out, string(id))
	}
	assert.NotContains(t, out, "Hello, World!")

	out, err = runCommand(t, "", "ls", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello, World!")
}

func TestVersionCommand(t *testing.T) {
	serve := func(v string) string {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(types.VersionResponse{Message: "CodeRunr Editor v" + v, Version: v})
		}))
		t.Cleanup(srv.Close)
		return srv.URL
	}

	out, err := runCommand(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "CodeRunr Editor v")

	out, err = runCommand(t, "", "version", "--server", serve("1.4.2"))
	require.NoError(t, err)
	assert.Contains(t, out, "(compatible)")

	out, err = runCommand(t, "", "version", "--server", serve("2.0.0"))
	assert.Error(t, err)
	assert.Contains(t, out, "(incompatible)")
}

func TestAttachRun(t *testing.T) {
	execSrv, svc := newService(t, types.ExecutionResult{Output: "attached\n"})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	sessions := session.NewManager(session.Options{
		Executor:    client.New(execSrv.URL, 5*time.Second, client.WithLogger(logger)),
		MaxSessions: 4,
		IdleTimeout: time.Minute,
		Logger:      logger,
	})
	t.Cleanup(sessions.Close)

	r := chi.NewRouter()
	r.Route("/api/v1", handler.NewHandler(sessions, logger).RegisterRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	s, err := sessions.Create("go")
	require.NoError(t, err)
	s.SetStdin("hi")

	out, err := runCommand(t, "", "attach", s.ID, "--server", srv.URL, "--run")
	require.NoError(t, err)
	assert.Contains(t, out, "== GO ==")
	assert.Contains(t, out, "attached\n")
	assert.Equal(t, "hi", svc.last()["stdin"])

	_, err = runCommand(t, "", "attach", "missing", "--server", srv.URL)
	assert.ErrorContains(t, err, "status 404")
}

// gatedExecutor holds the first request until release is closed
type gatedExecutor struct {
	release chan struct{}
	calls   atomic.Int32
}

func (e *gatedExecutor) Execute(ctx context.Context, _ types.ExecutionRequest) (*types.ExecutionResult, error) {
	if e.calls.Add(1) == 1 {
		select {
		case <-e.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &types.ExecutionResult{Output: "other client\n"}, nil
	}
	return &types.ExecutionResult{Output: "mine\n"}, nil
}

// onceHook runs fn the first time msg is logged
type onceHook struct {
	msg  string
	once sync.Once
	fn   func()
}

func (h *onceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *onceHook) Fire(e *logrus.Entry) error {
	if e.Message == h.msg {
		h.once.Do(h.fn)
	}
	return nil
}

func TestAttachRunIgnoresOtherClientsRun(t *testing.T) {
	exec := &gatedExecutor{release: make(chan struct{})}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.DebugLevel)

	sessions := session.NewManager(session.Options{
		Executor:    exec,
		MaxSessions: 4,
		IdleTimeout: time.Minute,
		Logger:      logger,
	})
	t.Cleanup(sessions.Close)

	s, err := sessions.Create("python")
	require.NoError(t, err)

	// Another client's run is in flight when we connect and settles before
	// our run request is read.
	_, otherDone := s.Submit()
	logger.AddHook(&onceHook{msg: "WebSocket attached", fn: func() {
		close(exec.release)
		<-otherDone
	}})

	r := chi.NewRouter()
	r.Route("/api/v1", handler.NewHandler(sessions, logger).RegisterRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	out, err := runCommand(t, "", "attach", s.ID, "--server", srv.URL, "--run")
	require.NoError(t, err)
	assert.Contains(t, out, "other client\n")
	assert.True(t, strings.HasSuffix(out, "mine\n"), out)
	assert.Equal(t, int32(2), exec.calls.Load())
}

func TestConvertToWebSocketURL(t *testing.T) {
	u, err := convertToWebSocketURL("https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, "wss://example.com", u)

	_, err = convertToWebSocketURL("ftp://example.com")
	assert.Error(t, err)
}
