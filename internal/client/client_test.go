package client_test

import (
	"codedx-client/internal/client"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a client for server using API key auth and a no-op sleeper.
func newTestClient(t *testing.T, baseURL string, opts ...client.Option) *client.Client {
	t.Helper()

	cfg := client.Config{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}
	opts = append([]client.Option{client.WithSleeper(func(time.Duration) {})}, opts...)
	c, err := client.NewClient(cfg, opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewClient_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config client.Config
		errMsg string
	}{
		{
			name:   "empty base URL",
			config: client.Config{APIKey: "k", Timeout: time.Second},
			errMsg: "base URL cannot be empty",
		},
		{
			name:   "invalid URL scheme",
			config: client.Config{BaseURL: "ftp://localhost", APIKey: "k", Timeout: time.Second},
			errMsg: "http:// or https:// scheme",
		},
		{
			name:   "no credentials",
			config: client.Config{BaseURL: "http://localhost", Timeout: time.Second},
			errMsg: "an API key or a username is required",
		},
		{
			name:   "zero timeout",
			config: client.Config{BaseURL: "http://localhost", APIKey: "k"},
			errMsg: "timeout must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := client.NewClient(tt.config)

			require.Error(t, err)
			assert.Nil(t, c)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestClient_RequestHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config client.Config
		check  func(t *testing.T, r *http.Request)
	}{
		{
			name:   "api key",
			config: client.Config{APIKey: "secret-key"},
			check: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "secret-key", r.Header.Get("API-Key"))
				assert.Empty(t, r.Header.Get("Authorization"))
			},
		},
		{
			name:   "basic auth",
			config: client.Config{Username: "admin", Password: "hunter2"},
			check: func(t *testing.T, r *http.Request) {
				user, pass, ok := r.BasicAuth()
				assert.True(t, ok)
				assert.Equal(t, "admin", user)
				assert.Equal(t, "hunter2", pass)
				assert.Empty(t, r.Header.Get("API-Key"))
			},
		},
		{
			name:   "api key wins over basic auth",
			config: client.Config{APIKey: "secret-key", Username: "admin", Password: "hunter2"},
			check: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "secret-key", r.Header.Get("API-Key"))
				_, _, ok := r.BasicAuth()
				assert.False(t, ok)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.check(t, r)
				assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "codedx-client/"))
				_, err := uuid.Parse(r.Header.Get("X-Request-Id"))
				assert.NoError(t, err, "X-Request-Id should be a UUID")
				writeJSON(t, w, http.StatusOK, []client.Project{})
			}))
			defer server.Close()

			cfg := tt.config
			cfg.BaseURL = server.URL
			cfg.Timeout = 5 * time.Second
			c, err := client.NewClient(cfg)
			require.NoError(t, err)

			_, err = c.GetProjects(context.Background())
			require.NoError(t, err)
		})
	}
}

func TestClient_URLConstruction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		basePath string
		wantPath string
	}{
		{name: "root", basePath: "", wantPath: "/x/projects/12/branches"},
		{name: "trailing slash", basePath: "/", wantPath: "/x/projects/12/branches"},
		{name: "context path", basePath: "/codedx", wantPath: "/codedx/x/projects/12/branches"},
		{name: "context path with trailing slash", basePath: "/codedx/", wantPath: "/codedx/x/projects/12/branches"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotPath string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.EscapedPath()
				writeJSON(t, w, http.StatusOK, []client.Branch{})
			}))
			defer server.Close()

			c := newTestClient(t, server.URL+tt.basePath)
			_, err := c.GetBranches(context.Background(), 12)

			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, gotPath)
		})
	}
}

func TestClient_GetProjects(t *testing.T) {
	t.Parallel()

	parent := uint32(1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/x/projects", r.URL.Path)
		_, _ = io.WriteString(w, `[{"id":1,"name":"WebGoat","parentId":null},{"id":2,"name":"Child","parentId":1}]`)
	}))
	defer server.Close()

	projects, err := newTestClient(t, server.URL).GetProjects(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []client.Project{
		{ID: 1, Name: "WebGoat"},
		{ID: 2, Name: "Child", ParentID: &parent},
	}, projects)
}

func TestClient_QueryProjects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filter   client.ProjectFilter
		wantBody string
	}{
		{
			name:     "name only",
			filter:   client.ProjectFilter{Name: "goat"},
			wantBody: `{"filter":{"name":"goat"}}`,
		},
		{
			name:     "metadata only",
			filter:   client.ProjectFilter{Metadata: map[string]string{"owner": "alice"}},
			wantBody: `{"filter":{"metadata":{"owner":"alice"}}}`,
		},
		{
			name:     "both",
			filter:   client.ProjectFilter{Name: "goat", Metadata: map[string]string{"tier": "1"}},
			wantBody: `{"filter":{"name":"goat","metadata":{"tier":"1"}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/x/projects/query", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				body, err := io.ReadAll(r.Body)
				assert.NoError(t, err)
				assert.JSONEq(t, tt.wantBody, string(body))
				writeJSON(t, w, http.StatusOK, []client.Project{{ID: 3, Name: "WebGoat"}})
			}))
			defer server.Close()

			projects, err := newTestClient(t, server.URL).QueryProjects(context.Background(), tt.filter)

			require.NoError(t, err)
			assert.Equal(t, []client.Project{{ID: 3, Name: "WebGoat"}}, projects)
		})
	}
}

func TestClient_QueryBranches(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/x/projects/5/branches", r.URL.Path)
		writeJSON(t, w, http.StatusOK, []client.Branch{
			{ID: 1, Name: "main", ProjectID: 5, IsDefault: true},
			{ID: 2, Name: "Feature/Login", ProjectID: 5},
			{ID: 3, Name: "release-1.0", ProjectID: 5},
		})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	branches, err := c.QueryBranches(context.Background(), 5, "FEATURE")
	require.NoError(t, err)
	assert.Equal(t, []client.Branch{{ID: 2, Name: "Feature/Login", ProjectID: 5}}, branches)

	none, err := c.QueryBranches(context.Background(), 5, "hotfix")
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := c.QueryBranches(context.Background(), 5, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestClient_NonSuccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantKind client.BodyKind
		wantMsg  string
	}{
		{name: "structured", status: http.StatusBadRequest, body: `{"error":"bad input"}`, wantKind: client.BodyStructured, wantMsg: "bad input"},
		{name: "raw", status: http.StatusInternalServerError, body: "not json", wantKind: client.BodyRaw, wantMsg: "not json"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"Authentication required"}`, wantKind: client.BodyStructured, wantMsg: "Authentication required"},
		{name: "forbidden", status: http.StatusForbidden, body: "", wantKind: client.BodyRaw, wantMsg: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			_, err := newTestClient(t, server.URL).GetProjects(context.Background())

			var apiErr *client.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, client.KindNonSuccess, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantKind, apiErr.Body.Kind)
			assert.Equal(t, tt.wantMsg, apiErr.Body.Message)
		})
	}
}

func TestClient_UndecodableSuccessIsTransport(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"unexpected": "object"}`)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).GetProjects(context.Background())

	require.Error(t, err)
	assert.True(t, client.IsTransport(err))
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestClient_ConnectionFailureIsTransport(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := server.URL
	server.Close()

	_, err := newTestClient(t, baseURL).GetProjects(context.Background())

	require.Error(t, err)
	assert.True(t, client.IsTransport(err))
}

func TestClient_ContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, []client.Project{})
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, server.URL).GetProjects(ctx)

	require.Error(t, err)
	assert.True(t, client.IsTransport(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_JobEndpoints(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/jobs/job-1":
			_, _ = io.WriteString(w, `{"jobId":"job-1","status":"running","progress":50}`)
		case "/api/jobs/job-1/result":
			_, _ = io.WriteString(w, `{"analysisId":17,"jobId":"job-1"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	status, err := c.GetJobStatus(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, client.JobStatusResponse{JobID: "job-1", Status: client.JobRunning}, status)

	result, err := c.GetJobResult(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, client.AnalysisJobResponse{AnalysisID: 17, JobID: "job-1"}, result)
}

func TestClient_UnknownJobStatusIsTransport(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"jobId":"j","status":"paused"}`)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).GetJobStatus(context.Background(), "j")

	require.Error(t, err)
	assert.True(t, client.IsTransport(err))
}
