package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
	"github.com/ericfisherdev/reviewcerberus/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubWriter = (*Client)(nil)

const (
	reviewEventComment = "COMMENT"
	sideRight          = "RIGHT"
	subjectTypeFile    = "file"
)

// outOfDiffPhrases are fragments of the 422 messages GitHub returns when a
// comment targets a line that the pull request diff does not contain.
var outOfDiffPhrases = []string{
	"must be part of the diff",
	"line could not be resolved",
	"pull_request_review_thread.line",
}

// CreateReview submits every comment as a single COMMENT review pinned to commitSHA.
// Comments without a line are sent without a line field; if GitHub rejects
// them the whole review fails and the caller falls back to single comments.
func (c *Client) CreateReview(ctx context.Context, pr model.PullRequestRef, commitSHA string, comments []model.ReviewComment) error {
	draftComments := make([]*gh.DraftReviewComment, 0, len(comments))
	for _, rc := range comments {
		dc := &gh.DraftReviewComment{
			Path: gh.Ptr(rc.Path),
			Body: gh.Ptr(rc.Body),
		}
		if rc.Line > 0 {
			dc.Line = gh.Ptr(rc.Line)
			dc.Side = gh.Ptr(sideRight)
		}
		draftComments = append(draftComments, dc)
	}

	_, resp, err := c.gh.PullRequests.CreateReview(ctx, pr.Owner, pr.Repo, pr.Number, &gh.PullRequestReviewRequest{
		CommitID: gh.Ptr(commitSHA),
		Event:    gh.Ptr(reviewEventComment),
		Comments: draftComments,
	})
	if err != nil {
		return fmt.Errorf("creating review for %s#%d: %w", pr.FullName(), pr.Number, classifyReviewError(err))
	}

	logRateLimit(resp, pr.FullName()+"/create-review", 0, len(comments))
	return nil
}

// CreateReviewComment posts a single review comment outside of a review.
// File-level requests use subject_type "file" and carry no line.
func (c *Client) CreateReviewComment(ctx context.Context, pr model.PullRequestRef, commitSHA string, req driven.ReviewCommentRequest) error {
	comment := &gh.PullRequestComment{
		CommitID: gh.Ptr(commitSHA),
		Path:     gh.Ptr(req.Path),
		Body:     gh.Ptr(req.Body),
	}
	switch {
	case req.FileLevel:
		comment.SubjectType = gh.Ptr(subjectTypeFile)
	case req.Line > 0:
		comment.Line = gh.Ptr(req.Line)
		comment.Side = gh.Ptr(sideRight)
	}

	_, resp, err := c.gh.PullRequests.CreateComment(ctx, pr.Owner, pr.Repo, pr.Number, comment)
	if err != nil {
		return fmt.Errorf("creating review comment on %s in %s#%d: %w", req.Path, pr.FullName(), pr.Number, classifyReviewError(err))
	}

	logRateLimit(resp, pr.FullName()+"/create-review-comment", 0, 1)
	return nil
}

// classifyReviewError wraps driven.ErrLineNotInDiff around 422 responses that
// reject a comment line. Other errors are returned unchanged.
func classifyReviewError(err error) error {
	if isLineNotInDiff(err) {
		return fmt.Errorf("%w: %w", driven.ErrLineNotInDiff, err)
	}
	return err
}

func isLineNotInDiff(err error) bool {
	var ghErr *gh.ErrorResponse
	if !errors.As(err, &ghErr) || ghErr.Response == nil {
		return false
	}
	if ghErr.Response.StatusCode != http.StatusUnprocessableEntity {
		return false
	}

	messages := []string{ghErr.Message}
	for _, e := range ghErr.Errors {
		messages = append(messages, e.Message, e.Field)
	}
	for _, msg := range messages {
		lower := strings.ToLower(msg)
		for _, phrase := range outOfDiffPhrases {
			if strings.Contains(lower, phrase) {
				return true
			}
		}
	}
	return false
}
