package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
	"github.com/ericfisherdev/reviewcerberus/internal/domain/port/driven"
)

// ThreadReconciler resolves review threads left behind by earlier runs.
type ThreadReconciler struct {
	ghClient driven.GitHubClient
}

// NewThreadReconciler creates a ThreadReconciler backed by the given client.
func NewThreadReconciler(ghClient driven.GitHubClient) *ThreadReconciler {
	return &ThreadReconciler{ghClient: ghClient}
}

// ResolveOwnedThreads resolves every unresolved thread whose first comment
// carries MarkerIssue and returns how many were resolved. Replies are never
// inspected: ownership is decided by the comment that opened the thread.
// The first failed resolution stops the pass; the count so far is returned
// alongside the error.
func (r *ThreadReconciler) ResolveOwnedThreads(ctx context.Context, pr model.PullRequestRef) (int, error) {
	threads, err := r.ghClient.FetchReviewThreads(ctx, pr)
	if err != nil {
		return 0, fmt.Errorf("fetching review threads for %s#%d: %w", pr.FullName(), pr.Number, err)
	}

	resolved := 0
	for _, thread := range threads {
		if !isOwnedOpenThread(thread) {
			continue
		}

		slog.Info("resolving stale review thread", "thread_id", thread.ID, "pr", pr.Number)
		if err := r.ghClient.ResolveReviewThread(ctx, thread.ID); err != nil {
			return resolved, fmt.Errorf("resolving thread %s: %w", thread.ID, err)
		}
		resolved++
	}

	return resolved, nil
}

// isOwnedOpenThread reports whether the thread is unresolved and was opened
// by one of our issue comments.
func isOwnedOpenThread(thread model.ReviewThread) bool {
	if thread.IsResolved || len(thread.CommentBodies) == 0 {
		return false
	}
	return strings.Contains(thread.CommentBodies[0], MarkerIssue)
}
