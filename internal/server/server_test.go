package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JoseCortezz25/craft-canvas/internal/graph"
	"github.com/JoseCortezz25/craft-canvas/internal/llm"
	"github.com/JoseCortezz25/craft-canvas/internal/logger"
	"github.com/JoseCortezz25/craft-canvas/internal/orchestrator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeGenerator answers through a configurable function.
type fakeGenerator struct {
	calls    int
	generate func(ctx context.Context, prompt string) (*orchestrator.Result, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, _ ...orchestrator.RunOption) (*orchestrator.Result, error) {
	f.calls++
	if f.generate == nil {
		return &orchestrator.Result{
			RunID:     "run-1",
			Artifacts: orchestrator.Artifacts{HTML: "<p>" + prompt + "</p>", CSS: "p{}", JS: "x()"},
		}, nil
	}
	return f.generate(ctx, prompt)
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	s, err := New(opts)
	require.NoError(t, err)
	return s
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestNew_RequiresGeneratorOrConfigErr(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestPostGenerate_Success(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestServer(t, Options{Generator: gen})

	rec := do(s, http.MethodPost, "/generate", `{"prompt":"a contact form"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"html": "<p>a contact form</p>", "css": "p{}", "js": "x()"}, decode(t, rec))
	assert.Equal(t, "run-1", rec.Header().Get("X-Run-Id"))
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
}

func TestPostGenerate_ConfigErrorShortCircuits(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestServer(t, Options{
		Generator: gen,
		ConfigErr: &llm.ConfigurationError{Field: "apiKey", Reason: "credential is empty"},
	})

	rec := do(s, http.MethodPost, "/generate", `{"prompt":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]string{"error": "Server configuration error: API key missing."}, decode(t, rec))
	assert.Zero(t, gen.calls)
}

func TestPostGenerate_ConfigErrorFromRun(t *testing.T) {
	gen := &fakeGenerator{generate: func(context.Context, string) (*orchestrator.Result, error) {
		return nil, &llm.ConfigurationError{Field: "apiKey", Reason: "credential is empty"}
	}}
	rec := do(newTestServer(t, Options{Generator: gen}), http.MethodPost, "/generate", `{"prompt":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ConfigErrorMessage, decode(t, rec)["error"])
}

func TestPostGenerate_PipelineFailure(t *testing.T) {
	gen := &fakeGenerator{generate: func(context.Context, string) (*orchestrator.Result, error) {
		return nil, &graph.NodeError{Node: "planning", Err: &llm.SchemaValidationError{Schema: "agent_instructions", Attempts: 2, Err: errors.New("missing field(s): ux")}}
	}}
	rec := do(newTestServer(t, Options{Generator: gen}), http.MethodPost, "/generate", `{"prompt":"x"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body, 1, "no partial artifacts")
	assert.True(t, strings.HasPrefix(body["error"], "Server error: "))
	assert.Contains(t, body["error"], "planning")
}

func TestPostGenerate_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `prompt=x`},
		{name: "missing prompt", body: `{}`},
		{name: "blank prompt", body: `{"prompt":"   "}`},
		{name: "wrong type", body: `{"prompt":42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{}
			rec := do(newTestServer(t, Options{Generator: gen}), http.MethodPost, "/generate", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["error"])
			assert.Zero(t, gen.calls)
		})
	}
}

func TestPostGenerate_ClientDisconnectCancelsRun(t *testing.T) {
	started := make(chan struct{})
	gen := &fakeGenerator{generate: func(ctx context.Context, _ string) (*orchestrator.Result, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	s := newTestServer(t, Options{Generator: gen})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"prompt":"x"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		s.Handler().ServeHTTP(rec, req)
		close(done)
	}()
	<-started
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run was not cancelled")
	}
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetGenerate_Status(t *testing.T) {
	rec := do(newTestServer(t, Options{Generator: &fakeGenerator{}}), http.MethodGet, "/generate", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"message": StatusMessage}, decode(t, rec))
}

func TestHealthz(t *testing.T) {
	rec := do(newTestServer(t, Options{Generator: &fakeGenerator{}}), http.MethodGet, "/healthz", "")
	assert.Equal(t, map[string]string{"status": "ok"}, decode(t, rec))

	rec = do(newTestServer(t, Options{ConfigErr: errors.New("no key")}), http.MethodGet, "/healthz", "")
	assert.Equal(t, map[string]string{"status": "misconfigured"}, decode(t, rec))
}

func TestRequestID_Propagated(t *testing.T) {
	s := newTestServer(t, Options{Generator: &fakeGenerator{}})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(headerRequestID))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := newTestServer(t, Options{Generator: &fakeGenerator{}, Logger: logger.FromZap(zap.New(core))})

	do(s, http.MethodGet, "/healthz", "")
	do(s, http.MethodPost, "/generate", `{}`)

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, "/generate", entries[1].ContextMap()["path"])
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, Options{Generator: &fakeGenerator{}, CORSOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRun_GracefulShutdown(t *testing.T) {
	s := newTestServer(t, Options{Generator: &fakeGenerator{}})
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
