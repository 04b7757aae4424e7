package commands_test

// Commands configure the process-wide logger, so the tests in this package run
// sequentially.

import (
	"bytes"
	"codedx-client/internal/client"
	"codedx-client/internal/client/commands"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type result struct {
	stdout string
	stderr string
	err    error
	code   int
}

// run executes the root command with args and stdin, reporting the outcome the
// way main does.
func run(t *testing.T, args []string, stdin string, opts ...commands.Option) result {
	t.Helper()

	opts = append([]commands.Option{
		commands.WithClientOptions(client.WithSleeper(func(time.Duration) {})),
	}, opts...)
	cmd := commands.NewRootCmd(opts...)

	var stdout, stderr bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.ExecuteContext(context.Background())
	code := commands.Report(&stderr, err)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err, code: code}
}

func connect(baseURL string, args ...string) []string {
	return append([]string{"--base-url", baseURL, "--api-key", "test-key"}, args...)
}

// requestLog records "METHOD path" for every request a test server sees.
type requestLog struct {
	mu       sync.Mutex
	requests []string
}

func (l *requestLog) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l.mu.Lock()
		l.requests = append(l.requests, r.Method+" "+r.URL.EscapedPath())
		l.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (l *requestLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.requests...)
}

func newServer(t *testing.T, mux *http.ServeMux) (*httptest.Server, *requestLog) {
	t.Helper()
	log := &requestLog{}
	server := httptest.NewServer(log.wrap(mux))
	t.Cleanup(server.Close)
	return server, log
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func projectsMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /x/projects", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, []map[string]interface{}{
			{"id": 1, "name": "WebGoat", "parentId": nil},
			{"id": 2, "name": "Juice Shop", "parentId": 1},
		})
	})
	mux.HandleFunc("GET /x/projects/{id}/branches", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.PathValue("id"))
		writeJSON(t, w, http.StatusOK, []map[string]interface{}{
			{"id": 10, "name": "main", "projectId": 5, "isDefault": true},
			{"id": 11, "name": "Feature/Login", "projectId": 5, "isDefault": false},
		})
	})
	return mux
}
