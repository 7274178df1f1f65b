package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/coursemate/internal/catalog"
	"github.com/jonathan/coursemate/internal/prereq"
	"github.com/jonathan/coursemate/internal/server/ratelimit"
	"github.com/jonathan/coursemate/internal/types"
)

type failingSource struct{}

func (failingSource) Prerequisites(context.Context, types.CourseCode) (types.PrerequisiteGroups, error) {
	return nil, errors.New("connection refused")
}

func testCatalog(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.New(&types.DegreeProgram{
		Name: "Test",
		Categories: []types.RequirementCategory{
			{Name: "Intro", Courses: []types.CourseCode{"CMPUT 174", "CMPUT 175"}, Units: 6},
			{Name: "Core", Courses: []types.CourseCode{"CMPUT 201", "CMPUT 204"}, Units: 3},
		},
	})
	require.NoError(t, err)
	return store
}

func newTestServer(t *testing.T, mutate ...func(*Config)) *Server {
	t.Helper()
	src, err := prereq.ParseFixture([]byte(`{
		"CMPUT 175": {"and": ["CMPUT 174"]},
		"CMPUT 201": {"and": ["CMPUT 175"]},
		"CMPUT 204": {"and": ["CMPUT 201", "CMPUT 272"], "one of": ["MATH 125"]}
	}`))
	require.NoError(t, err)

	cfg := Config{
		Catalog:   testCatalog(t),
		Source:    src,
		RateLimit: &ratelimit.Config{Enabled: false},
	}
	for _, fn := range mutate {
		fn(&cfg)
	}

	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(s.cleanup)
	return s
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestNew_RequiresCatalogAndSource(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorContains(t, err, "catalog")

	_, err = New(Config{Catalog: testCatalog(t)})
	assert.ErrorContains(t, err, "prerequisite source")
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, float64(1), resp["programs"])
}

func TestResolveEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/resolve", `{"program": "Test", "courses": "cmput174"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp struct {
		SubmissionID string                   `json:"submission_id"`
		Program      string                   `json:"program"`
		Completed    []string                 `json:"completed"`
		Outstanding  json.RawMessage          `json:"outstanding"`
		Nodes        []types.GraphNode        `json:"nodes"`
		Edges        []types.PrerequisiteEdge `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.SubmissionID)
	assert.Equal(t, "Test", resp.Program)
	assert.Equal(t, []string{"CMPUT 174"}, resp.Completed)
	assert.JSONEq(t, `{"Intro: 3 units": ["CMPUT 175"], "Core: 3 units": ["CMPUT 201"]}`, string(resp.Outstanding))
	assert.True(t, strings.Index(string(resp.Outstanding), "Intro") < strings.Index(string(resp.Outstanding), "Core"))

	assert.Equal(t, []types.GraphNode{
		{Key: "CMPUT 175", Status: types.StatusNotCompleted},
		{Key: "CMPUT 174", Status: types.StatusNotCompleted},
		{Key: "CMPUT 201", Status: types.StatusNotCompleted},
		{Key: "CMPUT 175", Status: types.StatusNotCompleted},
		{Key: "CMPUT 174", Status: types.StatusCompleted},
	}, resp.Nodes)
	assert.Equal(t, []types.PrerequisiteEdge{
		{Key: 0, From: "CMPUT 174", To: "CMPUT 175"},
		{Key: 1, From: "CMPUT 175", To: "CMPUT 201"},
	}, resp.Edges)
}

func TestResolveEndpoint_Dedupe(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/resolve", `{"program": "Test", "courses": "cmput174", "dedupe": true, "concurrency": 2}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp types.ResolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []types.GraphNode{
		{Key: "CMPUT 175", Status: types.StatusNotCompleted},
		{Key: "CMPUT 174", Status: types.StatusCompleted},
		{Key: "CMPUT 201", Status: types.StatusNotCompleted},
	}, resp.Nodes)
}

func TestResolveEndpoint_Validation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"missing program", `{"courses": "CMPUT 174"}`, http.StatusBadRequest, "Please select a program."},
		{"unknown program", `{"program": "Arts"}`, http.StatusBadRequest, "Unknown program: Arts"},
		{"invalid json", `{invalid`, http.StatusBadRequest, "Invalid request body"},
		{"concurrency out of range", `{"program": "Test", "concurrency": 99}`, http.StatusBadRequest, "Concurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/resolve", tt.body)

			assert.Equal(t, tt.status, w.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Contains(t, resp["error"], tt.message)
		})
	}
}

func TestResolveEndpoint_LookupFailuresDegrade(t *testing.T) {
	var calls atomic.Int32
	s := newTestServer(t, func(cfg *Config) {
		cfg.Lookup = prereq.LookupFunc(func(context.Context, types.CourseCode) prereq.Result {
			calls.Add(1)
			return prereq.Failed(errors.New("HTTP status 503"))
		})
	})

	w := do(t, s, http.MethodPost, "/resolve", `{"program": "Test", "courses": ""}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp types.ResolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Nodes, 3)
	assert.Empty(t, resp.Edges)
	assert.Equal(t, int32(3), calls.Load())
}

func TestResolveStreamEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/resolve/stream", `{"program": "Test", "courses": "CMPUT 174"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Equal(t, 3, strings.Count(body, "event: step"))
	assert.Contains(t, body, `"step":"assemble_graph"`)
	assert.Contains(t, body, "event: result")
	assert.Contains(t, body, "event: complete")
	assert.Less(t, strings.Index(body, "event: result"), strings.Index(body, "event: complete"))
}

func TestResolveStreamEndpoint_Validation(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/resolve/stream", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please select a program.")
}

func TestProgramsEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/programs", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list ProgramsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, []string{"Test"}, list.Programs)

	w = do(t, s, http.MethodGet, "/programs/Test", "")
	require.Equal(t, http.StatusOK, w.Code)
	var program types.DegreeProgram
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &program))
	assert.Equal(t, "Test", program.Name)
	require.Len(t, program.Categories, 2)
	assert.Equal(t, "Intro", program.Categories[0].Name)

	w = do(t, s, http.MethodGet, "/programs/Nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPrerequisitesEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/CMPUT%20204", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"courses": {"and": ["CMPUT 201", "CMPUT 272"], "one of": ["MATH 125"]}}`, w.Body.String())

	// Lowercase and unspaced codes are normalized.
	w = do(t, s, http.MethodGet, "/api/cmput201", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"courses": {"and": ["CMPUT 175"]}}`, w.Body.String())

	w = do(t, s, http.MethodGet, "/api/CMPUT%20999", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"courses": []}`, w.Body.String())
}

func TestPrerequisitesEndpoint_RoundTripsThroughClient(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	result := prereq.NewClient(srv.URL, nil).Lookup(context.Background(), "CMPUT 204")

	require.True(t, result.OK())
	assert.Equal(t, []types.CourseCode{"CMPUT 201", "CMPUT 272", "MATH 125"}, result.Courses)
}

func TestPrerequisitesEndpoint_SourceFailure(t *testing.T) {
	s := newTestServer(t, func(cfg *Config) { cfg.Source = failingSource{} })

	w := do(t, s, http.MethodGet, "/api/CMPUT%20201", "")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "unavailable")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/resolve", `{"program": "Test", "courses": ""}`)

	w := do(t, s, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `coursemate_submissions_total{program="Test",result="ok"} 1`)
	assert.Contains(t, w.Body.String(), `coursemate_prereq_lookups_total{outcome="ok"} 3`)
}

func TestRateLimitMiddleware(t *testing.T) {
	s := newTestServer(t, func(cfg *Config) {
		cfg.RateLimit = &ratelimit.Config{
			Enabled:       true,
			DefaultLimit:  1000,
			DefaultWindow: time.Minute,
			EndpointConfigs: []ratelimit.EndpointConfig{
				{Path: "/programs", Method: "GET", Limit: 2, Window: time.Hour, Burst: 2},
			},
		}
	})

	for i := 0; i < 2; i++ {
		w := do(t, s, http.MethodGet, "/programs", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := do(t, s, http.MethodGet, "/programs", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")

	// Health stays reachable.
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", "").Code)
}

// TestCORSMiddleware tests CORS headers
func TestCORSMiddleware(t *testing.T) {
	s := newTestServer(t)

	handler := s.withCORS(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header Access-Control-Allow-Origin: *")
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected CORS header Access-Control-Allow-Methods")
	}
}

// TestCORSMiddleware_OPTIONS tests OPTIONS preflight request
func TestCORSMiddleware_OPTIONS(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodOptions, "/resolve", "")

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200 for OPTIONS, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Error("OPTIONS response should have empty body")
	}
}

// TestLoggingMiddleware tests that logging middleware passes through
func TestLoggingMiddleware(t *testing.T) {
	s := newTestServer(t)

	called := false
	handler := s.withLogging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if !called {
		t.Error("logging middleware should call next handler")
	}
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

// TestSSEWriter tests SSE event writing
func TestSSEWriter(t *testing.T) {
	w := httptest.NewRecorder()

	sse, err := NewSSEWriter(w)
	if err != nil {
		t.Fatalf("failed to create SSE writer: %v", err)
	}

	event := map[string]string{"step": "test", "message": "hello"}
	if err := sse.WriteEvent("step", event); err != nil {
		t.Fatalf("failed to write event: %v", err)
	}
	sse.WriteComplete("abc", "completed")

	if !bytes.Contains(w.Body.Bytes(), []byte("event: step")) {
		t.Error("expected 'event: step' in output")
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"submission_id":"abc"`)) {
		t.Error("expected submission id in complete event")
	}
}

func TestShutdown_RunsHooks(t *testing.T) {
	closed := 0
	s := newTestServer(t, func(cfg *Config) {
		cfg.OnShutdown = []func(){func() { closed++ }}
	})

	require.NoError(t, s.Shutdown(context.Background()))
	assert.Equal(t, 1, closed)

	s.cleanup()
	assert.Equal(t, 1, closed, "hooks run once")
}
