package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
	"github.com/ericfisherdev/reviewcerberus/internal/domain/port/driven"
)

// tierStatus is the outcome of a single publishing strategy.
type tierStatus int

const (
	tierOK        tierStatus = iota
	tierRetryable            // The next tier may still succeed.
	tierFatal                // No later tier can help this comment.
)

// tierResult is returned by every tier. reason is nil only for tierOK.
type tierResult struct {
	status tierStatus
	reason error
}

func tierSucceeded() tierResult         { return tierResult{status: tierOK} }
func tierRetry(reason error) tierResult { return tierResult{status: tierRetryable, reason: reason} }
func tierAbort(reason error) tierResult { return tierResult{status: tierFatal, reason: reason} }

// DroppedComment is a line comment that every tier rejected.
type DroppedComment struct {
	Comment model.ReviewComment
	Reason  error
}

// PublishReport summarizes what PublishReview delivered.
type PublishReport struct {
	Tier         model.PublishTier
	Posted       int // Comments that reached the pull request, including file-level ones.
	FileLevel    int // Comments demoted from a line anchor to a file-level comment.
	Dropped      []DroppedComment
	NotAttempted int // Comments skipped because the context ended first.
}

// CommentPublisher writes the summary comment and inline review comments.
type CommentPublisher struct {
	ghClient driven.GitHubClient
	ghWriter driven.GitHubWriter
}

// NewCommentPublisher creates a CommentPublisher with the required dependencies.
func NewCommentPublisher(ghClient driven.GitHubClient, ghWriter driven.GitHubWriter) *CommentPublisher {
	return &CommentPublisher{
		ghClient: ghClient,
		ghWriter: ghWriter,
	}
}

// PublishSummary updates the existing summary comment in place or creates one
// if none exists. The first comment carrying MarkerSummary wins.
func (p *CommentPublisher) PublishSummary(ctx context.Context, pr model.PullRequestRef, body string) (model.SummaryAction, error) {
	comments, err := p.ghClient.ListIssueComments(ctx, pr)
	if err != nil {
		return "", fmt.Errorf("listing comments on %s#%d: %w", pr.FullName(), pr.Number, err)
	}

	for _, c := range comments {
		if !strings.Contains(c.Body, MarkerSummary) {
			continue
		}

		slog.Info("updating existing summary comment", "comment_id", c.ID, "pr", pr.Number)
		if _, err := p.ghClient.UpdateIssueComment(ctx, pr, c.ID, body); err != nil {
			return "", fmt.Errorf("updating summary comment %d: %w", c.ID, err)
		}
		return model.SummaryUpdated, nil
	}

	slog.Info("creating new summary comment", "pr", pr.Number)
	if _, err := p.ghClient.CreateIssueComment(ctx, pr, body); err != nil {
		return "", fmt.Errorf("creating summary comment on %s#%d: %w", pr.FullName(), pr.Number, err)
	}
	return model.SummaryCreated, nil
}

// PublishReview posts the inline comments. It first submits them as a single
// review; if that fails, each comment is posted on its own, and a comment whose
// line is outside the diff is demoted to a file-level comment. Comments that
// fail every tier are logged and reported, never returned as an error. Once ctx
// is done the remaining comments are counted as not attempted.
func (p *CommentPublisher) PublishReview(ctx context.Context, pr model.PullRequestRef, comments []model.ReviewComment) PublishReport {
	if len(comments) == 0 {
		slog.Info("no line comments to post", "pr", pr.Number)
		return PublishReport{Tier: model.PublishTierNone}
	}

	slog.Info("creating review", "pr", pr.Number, "comments", len(comments))
	err := p.ghWriter.CreateReview(ctx, pr, pr.HeadSHA, comments)
	if err == nil {
		return PublishReport{Tier: model.PublishTierBatch, Posted: len(comments)}
	}

	slog.Warn("batch review creation failed, posting comments individually",
		"pr", pr.Number,
		"error", err,
	)

	report := PublishReport{Tier: model.PublishTierIndividual}
	for i, comment := range comments {
		if ctx.Err() != nil {
			report.NotAttempted = len(comments) - i
			slog.Warn("stopped posting review comments",
				"pr", pr.Number,
				"remaining", report.NotAttempted,
				"error", ctx.Err(),
			)
			break
		}

		fileLevel, dropErr := p.publishOne(ctx, pr, comment)
		if dropErr != nil {
			slog.Warn("dropping review comment",
				"path", comment.Path,
				"line", comment.Line,
				"error", dropErr,
			)
			report.Dropped = append(report.Dropped, DroppedComment{Comment: comment, Reason: dropErr})
			continue
		}

		report.Posted++
		if fileLevel {
			report.FileLevel++
		}
	}

	return report
}

// publishOne walks one comment through the individual and file-level tiers.
// It reports whether the comment landed as a demoted file-level comment, or
// the last tier's error when nothing worked.
func (p *CommentPublisher) publishOne(ctx context.Context, pr model.PullRequestRef, comment model.ReviewComment) (bool, error) {
	res := p.postIndividual(ctx, pr, comment)
	switch res.status {
	case tierOK:
		return false, nil
	case tierFatal:
		return false, res.reason
	}

	slog.Info("line not in diff, posting as file-level comment",
		"path", comment.Path,
		"line", comment.Line,
	)

	res = p.postFileLevel(ctx, pr, comment)
	if res.status != tierOK {
		return false, res.reason
	}
	return true, nil
}

// postIndividual posts the comment as an independent review comment. Only a
// rejected line anchor is retryable; a comment without a line goes out
// file-level directly, so nothing is left to retry for it.
func (p *CommentPublisher) postIndividual(ctx context.Context, pr model.PullRequestRef, comment model.ReviewComment) tierResult {
	req := driven.ReviewCommentRequest{
		Path:      comment.Path,
		Body:      comment.Body,
		Line:      comment.Line,
		FileLevel: comment.Line <= 0,
	}

	err := p.ghWriter.CreateReviewComment(ctx, pr, pr.HeadSHA, req)
	switch {
	case err == nil:
		return tierSucceeded()
	case comment.Line > 0 && errors.Is(err, driven.ErrLineNotInDiff):
		return tierRetry(err)
	default:
		return tierAbort(err)
	}
}

// postFileLevel posts the comment without a line anchor, keeping the intended
// line in the body.
func (p *CommentPublisher) postFileLevel(ctx context.Context, pr model.PullRequestRef, comment model.ReviewComment) tierResult {
	req := driven.ReviewCommentRequest{
		Path:      comment.Path,
		Body:      fmt.Sprintf("**Line %d:**\n\n%s", comment.Line, comment.Body),
		FileLevel: true,
	}

	if err := p.ghWriter.CreateReviewComment(ctx, pr, pr.HeadSHA, req); err != nil {
		return tierAbort(err)
	}
	return tierSucceeded()
}
