// Package github implements the GitHubClient and GitHubWriter ports using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
	"github.com/ericfisherdev/reviewcerberus/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

const (
	defaultAPIURL     = "https://api.github.com/"
	defaultGraphQLURL = "https://api.github.com/graphql"
)

// Client implements the driven.GitHubClient and driven.GitHubWriter ports.
type Client struct {
	gh         *gh.Client
	token      string // Stored for GraphQL Authorization header.
	graphqlURL string
	httpClient *http.Client // Used for GraphQL requests.
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with token auth)
//
// Empty apiURL and graphqlURL select github.com. GitHub Enterprise Server
// passes the values Actions exposes as GITHUB_API_URL and GITHUB_GRAPHQL_URL.
func NewClient(token, apiURL, graphqlURL string) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	if apiURL != "" && strings.TrimRight(apiURL, "/")+"/" != defaultAPIURL {
		u, err := parseBaseURL(apiURL)
		if err != nil {
			return nil, err
		}
		client.BaseURL = u
	}

	if graphqlURL == "" {
		graphqlURL = defaultGraphQLURL
	}

	return &Client{
		gh:         client,
		token:      token,
		graphqlURL: graphqlURL,
		httpClient: graphqlHTTPClient,
	}, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	client.BaseURL = u

	// Derive graphqlURL from baseURL so httptest servers can intercept GraphQL requests.
	graphqlU := *u
	graphqlU.Path = "/graphql"

	return &Client{
		gh:         client,
		token:      token,
		graphqlURL: graphqlU.String(),
		httpClient: httpClient,
	}, nil
}

// parseBaseURL parses a REST base URL, adding the trailing slash go-github requires.
func parseBaseURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	return u, nil
}

// ListIssueComments retrieves all general PR-level comments (from the Issues API) for a pull request.
// It handles pagination automatically and maps go-github types to domain model types.
func (c *Client) ListIssueComments(ctx context.Context, pr model.PullRequestRef) ([]model.IssueComment, error) {
	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	var allComments []model.IssueComment

	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, pr.Owner, pr.Repo, pr.Number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing issue comments for %s#%d (page %d): %w", pr.FullName(), pr.Number, opts.Page, err)
		}

		logRateLimit(resp, pr.FullName()+"/issue-comments", opts.Page, len(comments))

		for _, comment := range comments {
			allComments = append(allComments, mapIssueComment(comment))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allComments, nil
}

// CreateIssueComment adds a PR-level comment via the Issues API.
func (c *Client) CreateIssueComment(ctx context.Context, pr model.PullRequestRef, body string) (model.IssueComment, error) {
	comment, resp, err := c.gh.Issues.CreateComment(ctx, pr.Owner, pr.Repo, pr.Number, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return model.IssueComment{}, fmt.Errorf("creating comment on %s#%d: %w", pr.FullName(), pr.Number, err)
	}

	logRateLimit(resp, pr.FullName()+"/create-comment", 0, 1)
	return mapIssueComment(comment), nil
}

// UpdateIssueComment replaces the body of an existing PR-level comment.
func (c *Client) UpdateIssueComment(ctx context.Context, pr model.PullRequestRef, commentID int64, body string) (model.IssueComment, error) {
	comment, resp, err := c.gh.Issues.EditComment(ctx, pr.Owner, pr.Repo, commentID, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return model.IssueComment{}, fmt.Errorf("updating comment %d on %s: %w", commentID, pr.FullName(), err)
	}

	logRateLimit(resp, pr.FullName()+"/update-comment", 0, 1)
	return mapIssueComment(comment), nil
}

// mapIssueComment converts a go-github IssueComment to a domain model IssueComment.
func mapIssueComment(c *gh.IssueComment) model.IssueComment {
	return model.IssueComment{
		ID:        c.GetID(),
		Author:    c.GetUser().GetLogin(),
		Body:      c.GetBody(),
		CreatedAt: c.GetCreatedAt().Time,
		UpdatedAt: c.GetUpdatedAt().Time,
	}
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
