package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
)

// ErrLineNotInDiff indicates GitHub rejected an inline comment because its
// line is not part of the pull request diff.
var ErrLineNotInDiff = errors.New("line is not part of the diff")

// ReviewCommentRequest is the input to GitHubWriter.CreateReviewComment.
type ReviewCommentRequest struct {
	Path      string
	Body      string
	Line      int  // Ignored when FileLevel is set.
	FileLevel bool // Anchor to the file instead of a line.
}

// GitHubWriter defines the driven port for posting review comments.
// It is intentionally separate from GitHubClient following the Interface
// Segregation Principle.
type GitHubWriter interface {
	// CreateReview submits all comments as one COMMENT review anchored to
	// commitSHA. It fails as a unit if any single comment is rejected.
	CreateReview(ctx context.Context, pr model.PullRequestRef, commitSHA string, comments []model.ReviewComment) error

	// CreateReviewComment posts one independent review comment on commitSHA.
	// Implementations wrap ErrLineNotInDiff when the line is outside the diff.
	CreateReviewComment(ctx context.Context, pr model.PullRequestRef, commitSHA string, req ReviewCommentRequest) error
}
