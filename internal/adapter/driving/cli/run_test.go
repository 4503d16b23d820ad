package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewcerberus/internal/config"
)

// fakeGitHub is an httptest-backed GitHub API covering the endpoints a run touches.
type fakeGitHub struct {
	mu sync.Mutex

	comments      []map[string]any // Existing issue comments.
	threads       []map[string]any // GraphQL review thread nodes.
	rejectReviews bool             // Fail batch reviews with a 422.

	created  []string
	updated  map[string]string
	resolved []string
	reviews  [][]any
	inline   []map[string]any
	requests int
}

func newFakeGitHub(t *testing.T) (*fakeGitHub, *httptest.Server) {
	t.Helper()
	f := &fakeGitHub{updated: map[string]string{}}
	server := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(server.Close)
	return f, server
}

func (f *fakeGitHub) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++

	w.Header().Set("Content-Type", "application/json")
	var body map[string]any
	if r.Body != nil && r.Method != http.MethodGet {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	switch {
	case r.URL.Path == "/graphql":
		query, _ := body["query"].(string)
		if strings.Contains(query, "resolveReviewThread") {
			vars, _ := body["variables"].(map[string]any)
			f.resolved = append(f.resolved, fmt.Sprint(vars["threadId"]))
			_, _ = w.Write([]byte(`{"data":{"resolveReviewThread":{"thread":{"isResolved":true}}}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"repository": map[string]any{"pullRequest": map[string]any{
				"reviewThreads": map[string]any{
					"pageInfo": map[string]any{"hasNextPage": false, "endCursor": ""},
					"nodes":    f.threads,
				},
			}}},
		})

	case r.Method == http.MethodGet && r.URL.Path == "/repos/owner/repo/issues/7/comments":
		_ = json.NewEncoder(w).Encode(f.comments)

	case r.Method == http.MethodPost && r.URL.Path == "/repos/owner/repo/issues/7/comments":
		f.created = append(f.created, fmt.Sprint(body["body"]))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 500, "body": body["body"]})

	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/repos/owner/repo/issues/comments/"):
		id := strings.TrimPrefix(r.URL.Path, "/repos/owner/repo/issues/comments/")
		f.updated[id] = fmt.Sprint(body["body"])
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 1, "body": body["body"]})

	case r.Method == http.MethodPost && r.URL.Path == "/repos/owner/repo/pulls/7/reviews":
		if f.rejectReviews {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"Unprocessable Entity","errors":["Line could not be resolved"]}`))
			return
		}
		comments, _ := body["comments"].([]any)
		f.reviews = append(f.reviews, comments)
		_, _ = w.Write([]byte(`{"id": 1}`))

	case r.Method == http.MethodPost && r.URL.Path == "/repos/owner/repo/pulls/7/comments":
		if _, hasLine := body["line"]; hasLine {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"Validation Failed","errors":[{"field":"pull_request_review_thread.line","code":"custom","message":"could not be resolved"}]}`))
			return
		}
		f.inline = append(f.inline, body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 2}`))

	default:
		http.NotFound(w, r)
	}
}

// setupRunEnv points the run command at server and returns the ledger path.
func setupRunEnv(t *testing.T, serverURL, review string) string {
	t.Helper()
	dir := t.TempDir()

	eventPath := filepath.Join(dir, "event.json")
	require.NoError(t, os.WriteFile(eventPath, []byte(`{
		"pull_request": {"number": 7, "head": {"sha": "abc123"}, "base": {"ref": "main"}}
	}`), 0o600))

	ledger := filepath.Join(dir, "history.db")
	t.Setenv("INPUT_GITHUB_TOKEN", "ghs_test")
	t.Setenv("GITHUB_REPOSITORY", "owner/repo")
	t.Setenv("GITHUB_EVENT_PATH", eventPath)
	t.Setenv("GITHUB_API_URL", serverURL)
	t.Setenv("GITHUB_GRAPHQL_URL", serverURL+"/graphql")
	t.Setenv("INPUT_REVIEW_FILE", writeReviewFile(t, review))
	t.Setenv("REVIEWCERBERUS_HISTORY_DB", ledger)
	return ledger
}

func TestRunCommand_FirstRun(t *testing.T) {
	isolateEnv(t)
	gh, server := newFakeGitHub(t)
	gh.rejectReviews = true
	setupRunEnv(t, server.URL, sampleReview)

	out, _, err := execute(t, "run")

	require.NoError(t, err)
	require.Len(t, gh.created, 1)
	assert.Contains(t, gh.created[0], "<!-- reviewcerberus:summary -->")
	assert.Empty(t, gh.updated)
	assert.Empty(t, gh.resolved)

	// The batch is rejected, so comments go out one by one and the lined
	// comment is demoted to file-level.
	assert.Empty(t, gh.reviews)
	require.Len(t, gh.inline, 2)
	assert.Equal(t, "file", gh.inline[0]["subject_type"])
	assert.True(t, strings.HasPrefix(fmt.Sprint(gh.inline[0]["body"]), "**Line 42:**\n\n"))
	assert.Equal(t, "file", gh.inline[1]["subject_type"])

	assert.Contains(t, out, "summary comment created")
	assert.Contains(t, out, "1 as file-level")
}

func TestRunCommand_RerunUpdatesSummaryAndResolvesThreads(t *testing.T) {
	isolateEnv(t)
	gh, server := newFakeGitHub(t)
	gh.comments = []map[string]any{
		{"id": 11, "body": "thanks!"},
		{"id": 12, "body": "<!-- reviewcerberus:summary -->\nold summary"},
	}
	gh.threads = []map[string]any{
		{"id": "T-owned", "isResolved": false, "comments": map[string]any{"nodes": []any{map[string]any{"body": "<!-- reviewcerberus:issue -->\nold"}}}},
		{"id": "T-human", "isResolved": false, "comments": map[string]any{"nodes": []any{map[string]any{"body": "please rename"}}}},
		{"id": "T-done", "isResolved": true, "comments": map[string]any{"nodes": []any{map[string]any{"body": "<!-- reviewcerberus:issue -->\nolder"}}}},
	}
	ledger := setupRunEnv(t, server.URL, `{"description": "only lined issues", "issues": [
		{"title": "Off by one", "category": "LOGIC", "severity": "HIGH",
		 "location": [{"filename": "a.go", "line": 3}], "explanation": "e", "suggested_fix": "f"}
	]}`)

	out, _, err := execute(t, "run")

	require.NoError(t, err)
	assert.Empty(t, gh.created)
	require.Contains(t, gh.updated, "12")
	assert.Contains(t, gh.updated["12"], "Off by one")
	assert.Equal(t, []string{"T-owned"}, gh.resolved)
	require.Len(t, gh.reviews, 1)
	assert.Len(t, gh.reviews[0], 1)
	assert.Contains(t, out, "summary comment updated")
	assert.Contains(t, out, "resolved 1 old review thread(s)")

	history, _, err := execute(t, "history", "--db", ledger)
	require.NoError(t, err)
	assert.Contains(t, history, "owner/repo")
	assert.Contains(t, history, "updated")
	assert.Contains(t, history, "batch")
}

func TestRunCommand_FailOnAfterDelivery(t *testing.T) {
	isolateEnv(t)
	gh, server := newFakeGitHub(t)
	gh.rejectReviews = true
	setupRunEnv(t, server.URL, sampleReview)
	t.Setenv("INPUT_FAIL_ON", "critical")

	_, _, err := execute(t, "run")

	require.Error(t, err)
	assert.True(t, IsFindings(err))
	assert.Len(t, gh.created, 1, "summary is posted before fail_on is evaluated")
	assert.NotEmpty(t, gh.inline)
}

func TestRunCommand_NotPullRequest(t *testing.T) {
	isolateEnv(t)
	gh, server := newFakeGitHub(t)
	setupRunEnv(t, server.URL, sampleReview)

	eventPath := filepath.Join(t.TempDir(), "push.json")
	require.NoError(t, os.WriteFile(eventPath, []byte(`{"ref": "refs/heads/main"}`), 0o600))
	t.Setenv("GITHUB_EVENT_PATH", eventPath)

	_, _, err := execute(t, "run")

	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrNotPullRequest))
	assert.Zero(t, gh.requests)
}

func TestRunCommand_MissingToken(t *testing.T) {
	isolateEnv(t)
	gh, server := newFakeGitHub(t)
	setupRunEnv(t, server.URL, sampleReview)
	os.Unsetenv("INPUT_GITHUB_TOKEN")

	_, _, err := execute(t, "run")

	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrMissingToken))
	assert.Zero(t, gh.requests)
}

func TestRunCommand_MalformedReviewIsFatal(t *testing.T) {
	isolateEnv(t)
	gh, server := newFakeGitHub(t)
	setupRunEnv(t, server.URL, `{"issues": [{"title": "t", "category": "LOGIC", "severity": "SEVERE", "location": []}]}`)

	_, _, err := execute(t, "run")

	require.Error(t, err)
	assert.Zero(t, gh.requests)
}
