// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
	"github.com/ericfisherdev/reviewcerberus/internal/domain/port/driven"
)

// DeliveryOptions tunes a single delivery run.
type DeliveryOptions struct {
	MinConfidence *int            // nil keeps every issue.
	FailOn        *model.Severity // nil never fails the run on findings.
}

// DeliveryResult describes the outcome of a delivery run.
type DeliveryResult struct {
	RunID           string
	TotalIssues     int
	ReportedIssues  int
	ResolvedThreads int
	ReconcileErr    error // Non-nil when stale-thread cleanup stopped early.
	SummaryAction   model.SummaryAction
	Publish         PublishReport
	FailOnMessage   string // Non-empty when FailOn matched a reported issue.
}

// DeliveryService delivers one review result to one pull request: filter,
// sort, reconcile stale threads, publish the summary, then publish the
// line comments. Every step runs sequentially.
type DeliveryService struct {
	reconciler *ThreadReconciler
	publisher  *CommentPublisher
	runStore   driven.RunStore // May be nil when no ledger is configured.
	opts       DeliveryOptions
	now        func() time.Time
}

// NewDeliveryService creates a DeliveryService. runStore may be nil.
func NewDeliveryService(
	reconciler *ThreadReconciler,
	publisher *CommentPublisher,
	runStore driven.RunStore,
	opts DeliveryOptions,
) *DeliveryService {
	return &DeliveryService{
		reconciler: reconciler,
		publisher:  publisher,
		runStore:   runStore,
		opts:       opts,
		now:        time.Now,
	}
}

// Deliver publishes output to pr. Only a failed summary upsert is fatal;
// thread reconciliation is best-effort and individual line comments degrade
// through the publisher's tiers.
func (s *DeliveryService) Deliver(ctx context.Context, pr model.PullRequestRef, output model.ReviewOutput) (*DeliveryResult, error) {
	result := &DeliveryResult{
		RunID:       uuid.NewString(),
		TotalIssues: len(output.Issues),
	}

	filtered := FilterOutput(output, s.opts.MinConfidence)
	if s.opts.MinConfidence != nil {
		slog.Info("filtered issues by confidence",
			"dropped", len(output.Issues)-len(filtered.Issues),
			"min_confidence", *s.opts.MinConfidence,
		)
	}

	sorted := SortBySeverity(filtered.Issues)
	result.ReportedIssues = len(sorted)

	slog.Info("resolving old review threads", "pr", pr.Number)
	resolved, err := s.reconciler.ResolveOwnedThreads(ctx, pr)
	result.ResolvedThreads = resolved
	if err != nil {
		result.ReconcileErr = err
		slog.Warn("thread reconciliation stopped early, continuing with publishing",
			"resolved", resolved,
			"error", err,
		)
	} else if resolved > 0 {
		slog.Info("resolved old review threads", "count", resolved)
	}

	slog.Info("posting summary comment", "pr", pr.Number)
	summaryBody := RenderSummary(model.ReviewOutput{Description: filtered.Description, Issues: sorted})
	action, err := s.publisher.PublishSummary(ctx, pr, summaryBody)
	if err != nil {
		return result, fmt.Errorf("publishing summary: %w", err)
	}
	result.SummaryAction = action

	result.Publish = s.publisher.PublishReview(ctx, pr, BuildLineComments(sorted))
	result.FailOnMessage = CheckFailOn(sorted, s.opts.FailOn)

	s.record(ctx, pr, result)

	slog.Info("review delivered",
		"pr", pr.Number,
		"issues", result.ReportedIssues,
		"summary", result.SummaryAction,
		"tier", result.Publish.Tier,
		"posted", result.Publish.Posted,
		"dropped", len(result.Publish.Dropped),
		"not_attempted", result.Publish.NotAttempted,
	)

	return result, nil
}

// BuildLineComments maps each issue to one inline comment anchored at its
// primary location. Issues without a usable primary location are skipped; they
// still appear in the summary table.
func BuildLineComments(issues []model.ReviewIssue) []model.ReviewComment {
	comments := make([]model.ReviewComment, 0, len(issues))
	for _, issue := range issues {
		loc, ok := issue.PrimaryLocation()
		if !ok || loc.Filename == "" {
			continue
		}

		comment := model.ReviewComment{
			Path: loc.Filename,
			Body: RenderIssue(issue),
		}
		if loc.HasLine() {
			comment.Line = *loc.Line
		}
		comments = append(comments, comment)
	}
	return comments
}

// record appends the run to the ledger. Ledger failures are logged only.
func (s *DeliveryService) record(ctx context.Context, pr model.PullRequestRef, result *DeliveryResult) {
	if s.runStore == nil {
		return
	}

	run := model.DeliveryRun{
		ID:              result.RunID,
		RepoFullName:    pr.FullName(),
		PRNumber:        pr.Number,
		HeadSHA:         pr.HeadSHA,
		TotalIssues:     result.TotalIssues,
		ReportedIssues:  result.ReportedIssues,
		ResolvedThreads: result.ResolvedThreads,
		SummaryAction:   result.SummaryAction,
		PublishTier:     result.Publish.Tier,
		PostedComments:  result.Publish.Posted,
		FileLevel:       result.Publish.FileLevel,
		DroppedComments: len(result.Publish.Dropped),
		CreatedAt:       s.now().UTC(),
	}

	if err := s.runStore.Record(ctx, run); err != nil {
		slog.Warn("failed to record delivery run", "run_id", run.ID, "error", err)
	}
}
