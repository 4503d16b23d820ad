package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
)

// graphqlHTTPClient is the HTTP client used for GraphQL requests.
// It enforces a 30-second timeout as a safety net alongside context cancellation.
var graphqlHTTPClient = &http.Client{Timeout: 30 * time.Second}

// reviewThreadsQuery fetches one page of review threads with the body of the
// comment that opened each thread.
const reviewThreadsQuery = `query($owner: String!, $repo: String!, $pr: Int!, $after: String) {
	repository(owner: $owner, name: $repo) {
		pullRequest(number: $pr) {
			reviewThreads(first: 100, after: $after) {
				pageInfo {
					hasNextPage
					endCursor
				}
				nodes {
					id
					isResolved
					comments(first: 1) {
						nodes {
							body
						}
					}
				}
			}
		}
	}
}`

const resolveThreadMutation = `mutation($threadId: ID!) {
	resolveReviewThread(input: {threadId: $threadId}) {
		thread { isResolved }
	}
}`

// graphqlRequest is the JSON body sent to the GitHub GraphQL API.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// graphqlError is a single entry of a GraphQL "errors" array.
type graphqlError struct {
	Message string `json:"message"`
}

// reviewThreadsResponse represents the expected shape of a GitHub GraphQL
// response for the review threads query.
type reviewThreadsResponse struct {
	Data struct {
		Repository struct {
			PullRequest struct {
				ReviewThreads struct {
					PageInfo struct {
						HasNextPage bool   `json:"hasNextPage"`
						EndCursor   string `json:"endCursor"`
					} `json:"pageInfo"`
					Nodes []struct {
						ID         string `json:"id"`
						IsResolved bool   `json:"isResolved"`
						Comments   struct {
							Nodes []struct {
								Body string `json:"body"`
							} `json:"nodes"`
						} `json:"comments"`
					} `json:"nodes"`
				} `json:"reviewThreads"`
			} `json:"pullRequest"`
		} `json:"repository"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// graphqlMutationResponse represents the minimal response shape for GraphQL mutations.
// We only check for errors; the actual mutation payload is not inspected.
type graphqlMutationResponse struct {
	Errors []graphqlError `json:"errors"`
}

// FetchReviewThreads queries the GitHub GraphQL API for every review thread on
// the pull request, following pagination cursors until the last page.
func (c *Client) FetchReviewThreads(ctx context.Context, pr model.PullRequestRef) ([]model.ReviewThread, error) {
	var (
		threads []model.ReviewThread
		cursor  *string
		page    int
	)

	for {
		page++
		var gqlResp reviewThreadsResponse
		err := c.doGraphQL(ctx, reviewThreadsQuery, map[string]any{
			"owner": pr.Owner,
			"repo":  pr.Repo,
			"pr":    pr.Number,
			"after": cursor,
		}, &gqlResp)
		if err != nil {
			return nil, fmt.Errorf("review threads for %s#%d (page %d): %w", pr.FullName(), pr.Number, page, err)
		}
		if len(gqlResp.Errors) > 0 {
			return nil, fmt.Errorf("review threads for %s#%d: %s", pr.FullName(), pr.Number, gqlResp.Errors[0].Message)
		}

		conn := gqlResp.Data.Repository.PullRequest.ReviewThreads
		for _, node := range conn.Nodes {
			bodies := make([]string, 0, len(node.Comments.Nodes))
			for _, comment := range node.Comments.Nodes {
				bodies = append(bodies, comment.Body)
			}
			threads = append(threads, model.ReviewThread{
				ID:            node.ID,
				IsResolved:    node.IsResolved,
				CommentBodies: bodies,
			})
		}

		slog.Debug("graphql: fetched review threads", "pr", pr.Number, "page", page, "count", len(conn.Nodes))

		if !conn.PageInfo.HasNextPage || conn.PageInfo.EndCursor == "" {
			break
		}
		next := conn.PageInfo.EndCursor
		cursor = &next
	}

	return threads, nil
}

// ResolveReviewThread marks a review thread as resolved via a GraphQL mutation.
// threadID is the thread's GraphQL node ID.
func (c *Client) ResolveReviewThread(ctx context.Context, threadID string) error {
	var gqlResp graphqlMutationResponse
	if err := c.doGraphQL(ctx, resolveThreadMutation, map[string]any{"threadId": threadID}, &gqlResp); err != nil {
		return fmt.Errorf("resolve thread %s: %w", threadID, err)
	}
	if len(gqlResp.Errors) > 0 {
		return fmt.Errorf("resolve thread %s: %s", threadID, gqlResp.Errors[0].Message)
	}
	return nil
}

// doGraphQL posts a query and decodes the JSON response into out.
func (c *Client) doGraphQL(ctx context.Context, query string, variables map[string]any, out any) error {
	if c.token == "" {
		return fmt.Errorf("graphql requests require a GitHub token")
	}

	bodyBytes, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshaling graphql request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating graphql request: %w", err)
	}
	httpReq.Header.Set("Authorization", fmt.Sprintf("bearer %s", c.token))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("graphql request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("graphql request: HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding graphql response: %w", err)
	}
	return nil
}
