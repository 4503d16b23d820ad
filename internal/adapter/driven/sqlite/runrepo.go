package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
	"github.com/ericfisherdev/reviewcerberus/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RunStore = (*RunRepo)(nil)

const defaultListLimit = 20

// createdAtLayout has a fixed width so created_at sorts correctly as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// RunRepo is the SQLite implementation of the RunStore port interface.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new RunRepo backed by the given DB.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Record appends one delivery run. Runs are never updated.
func (r *RunRepo) Record(ctx context.Context, run model.DeliveryRun) error {
	const query = `
		INSERT INTO delivery_runs (
			id, repo_full_name, pr_number, head_sha, total_issues, reported_issues,
			resolved_threads, summary_action, publish_tier, posted_comments,
			file_level, dropped_comments, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		run.ID,
		run.RepoFullName,
		run.PRNumber,
		run.HeadSHA,
		run.TotalIssues,
		run.ReportedIssues,
		run.ResolvedThreads,
		string(run.SummaryAction),
		string(run.PublishTier),
		run.PostedComments,
		run.FileLevel,
		run.DroppedComments,
		createdAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return fmt.Errorf("record delivery run %s: %w", run.ID, err)
	}

	return nil
}

// ListRecent returns the newest runs first. An empty repoFullName lists runs
// for every repository; a non-positive limit falls back to 20.
func (r *RunRepo) ListRecent(ctx context.Context, repoFullName string, limit int) ([]model.DeliveryRun, error) {
	const query = `
		SELECT id, repo_full_name, pr_number, head_sha, total_issues, reported_issues,
			resolved_threads, summary_action, publish_tier, posted_comments,
			file_level, dropped_comments, created_at
		FROM delivery_runs
		WHERE (? = '' OR repo_full_name = ?)
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := r.db.Reader.QueryContext(ctx, query, repoFullName, repoFullName, limit)
	if err != nil {
		return nil, fmt.Errorf("list delivery runs: %w", err)
	}
	defer rows.Close()

	var runs []model.DeliveryRun
	for rows.Next() {
		var (
			run           model.DeliveryRun
			summaryAction string
			publishTier   string
			createdAt     string
		)

		if err := rows.Scan(
			&run.ID,
			&run.RepoFullName,
			&run.PRNumber,
			&run.HeadSHA,
			&run.TotalIssues,
			&run.ReportedIssues,
			&run.ResolvedThreads,
			&summaryAction,
			&publishTier,
			&run.PostedComments,
			&run.FileLevel,
			&run.DroppedComments,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan delivery run: %w", err)
		}

		run.SummaryAction = model.SummaryAction(summaryAction)
		run.PublishTier = model.PublishTier(publishTier)
		run.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate delivery runs: %w", err)
	}

	return runs, nil
}

// parseTime tries the SQLite datetime layouts the ledger may contain.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
