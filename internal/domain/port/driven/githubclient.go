// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"

	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
)

// GitHubClient defines the driven port for reading and upserting pull request
// conversation state. Pagination, authentication and transport retries are the
// implementation's concern.
type GitHubClient interface {
	// ListIssueComments returns every PR-level comment in creation order.
	ListIssueComments(ctx context.Context, pr model.PullRequestRef) ([]model.IssueComment, error)
	// CreateIssueComment adds a PR-level comment (via the Issues API).
	CreateIssueComment(ctx context.Context, pr model.PullRequestRef, body string) (model.IssueComment, error)
	// UpdateIssueComment replaces the body of an existing PR-level comment.
	UpdateIssueComment(ctx context.Context, pr model.PullRequestRef, commentID int64, body string) (model.IssueComment, error)

	// FetchReviewThreads returns every review thread on the pull request.
	// This data typically comes from the GitHub GraphQL API.
	FetchReviewThreads(ctx context.Context, pr model.PullRequestRef) ([]model.ReviewThread, error)
	// ResolveReviewThread marks a review thread as resolved.
	// threadID is the thread's GraphQL node ID.
	ResolveReviewThread(ctx context.Context, threadID string) error
}
