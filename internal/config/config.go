// Package config loads run configuration from the GitHub Actions environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
)

var (
	// ErrMissingToken is returned when neither INPUT_GITHUB_TOKEN nor GITHUB_TOKEN is set.
	ErrMissingToken = errors.New("github_token is required")
	// ErrNotPullRequest is returned when the triggering event has no pull request.
	ErrNotPullRequest = errors.New("this action can only be run on pull_request events")
)

// DefaultReviewFile is where the analysis engine writes its result inside the workspace.
const DefaultReviewFile = ".reviewcerberus-output.json"

const (
	maxConfidence  = 10
	defaultBaseRef = "main"
)

// Config holds the configuration for one delivery run.
type Config struct {
	GitHubToken string
	APIURL      string // Empty selects github.com.
	GraphQLURL  string
	Repository  string // owner/repo
	EventPath   string

	// MinConfidence is nil unless both min_confidence and verify are set.
	MinConfidence *int
	Verify        bool
	FailOn        *model.Severity

	ReviewFile string
	HistoryDB  string // Empty disables the delivery ledger.
}

// Load reads configuration from environment variables and returns a validated Config.
// Required: INPUT_GITHUB_TOKEN (or GITHUB_TOKEN), GITHUB_REPOSITORY, GITHUB_EVENT_PATH.
// Optional: GITHUB_API_URL, GITHUB_GRAPHQL_URL, INPUT_MIN_CONFIDENCE, INPUT_VERIFY,
// INPUT_FAIL_ON, INPUT_REVIEW_FILE (.reviewcerberus-output.json), REVIEWCERBERUS_HISTORY_DB.
func Load() (*Config, error) {
	token := os.Getenv("INPUT_GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return nil, ErrMissingToken
	}

	repository := strings.TrimSpace(os.Getenv("GITHUB_REPOSITORY"))
	if repository == "" {
		return nil, fmt.Errorf("GITHUB_REPOSITORY is required")
	}

	eventPath := os.Getenv("GITHUB_EVENT_PATH")
	if eventPath == "" {
		return nil, fmt.Errorf("GITHUB_EVENT_PATH is required")
	}

	verify := strings.EqualFold(strings.TrimSpace(os.Getenv("INPUT_VERIFY")), "true")

	minConfidence, err := ParseMinConfidence(os.Getenv("INPUT_MIN_CONFIDENCE"))
	if err != nil {
		return nil, fmt.Errorf("INPUT_MIN_CONFIDENCE: %w", err)
	}
	if minConfidence != nil && !verify {
		slog.Warn("min_confidence requires verify to be enabled, ignoring min_confidence")
		minConfidence = nil
	}

	failOn, err := ParseSeverity(os.Getenv("INPUT_FAIL_ON"))
	if err != nil {
		return nil, fmt.Errorf("INPUT_FAIL_ON: %w", err)
	}

	reviewFile := DefaultReviewFile
	if v := os.Getenv("INPUT_REVIEW_FILE"); v != "" {
		reviewFile = v
	}

	return &Config{
		GitHubToken:   token,
		APIURL:        os.Getenv("GITHUB_API_URL"),
		GraphQLURL:    os.Getenv("GITHUB_GRAPHQL_URL"),
		Repository:    repository,
		EventPath:     eventPath,
		MinConfidence: minConfidence,
		Verify:        verify,
		FailOn:        failOn,
		ReviewFile:    reviewFile,
		HistoryDB:     os.Getenv("REVIEWCERBERUS_HISTORY_DB"),
	}, nil
}

// ParseMinConfidence parses a confidence threshold. Empty input means no threshold.
func ParseMinConfidence(v string) (*int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("invalid confidence %q: %w", v, err)
	}
	if n < 0 || n > maxConfidence {
		return nil, fmt.Errorf("confidence %d outside 0..%d", n, maxConfidence)
	}
	return &n, nil
}

// ParseSeverity parses a severity name case-insensitively. Empty input means none.
func ParseSeverity(v string) (*model.Severity, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	sev := model.Severity(strings.ToUpper(v))
	if !sev.Valid() {
		return nil, fmt.Errorf("unknown severity %q (want critical, high, medium or low)", v)
	}
	return &sev, nil
}

// pullRequestEvent is the subset of a pull_request webhook payload we read.
type pullRequestEvent struct {
	PullRequest *struct {
		Number int `json:"number"`
		Head   struct {
			SHA string `json:"sha"`
		} `json:"head"`
		Base struct {
			Ref string `json:"ref"`
		} `json:"base"`
	} `json:"pull_request"`
}

// LoadPullRequest builds the pull request reference from the event payload at
// eventPath and the "owner/repo" repository name.
func LoadPullRequest(eventPath, repository string) (model.PullRequestRef, error) {
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return model.PullRequestRef{}, fmt.Errorf("invalid repository name %q: expected owner/repo", repository)
	}

	data, err := os.ReadFile(eventPath)
	if err != nil {
		return model.PullRequestRef{}, fmt.Errorf("reading event payload: %w", err)
	}

	var event pullRequestEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return model.PullRequestRef{}, fmt.Errorf("decoding event payload: %w", err)
	}
	if event.PullRequest == nil || event.PullRequest.Number == 0 {
		return model.PullRequestRef{}, ErrNotPullRequest
	}
	if event.PullRequest.Head.SHA == "" {
		return model.PullRequestRef{}, fmt.Errorf("event payload has no head sha for pull request #%d", event.PullRequest.Number)
	}

	baseRef := event.PullRequest.Base.Ref
	if baseRef == "" {
		baseRef = defaultBaseRef
	}

	return model.PullRequestRef{
		Owner:   owner,
		Repo:    repo,
		Number:  event.PullRequest.Number,
		HeadSHA: event.PullRequest.Head.SHA,
		BaseRef: baseRef,
	}, nil
}
