package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/reviewcerberus/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
)

const historyDBEnv = "REVIEWCERBERUS_HISTORY_DB"

type historyOptions struct {
	dbPath string
	repo   string
	limit  int
}

func newHistoryCommand() *cobra.Command {
	opts := &historyOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded delivery runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", "", "Delivery ledger database (defaults to $"+historyDBEnv+")")
	cmd.Flags().StringVar(&opts.repo, "repo", "", "Only list runs for owner/repo")
	cmd.Flags().IntVar(&opts.limit, "limit", 20, "Maximum number of runs to list")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *historyOptions) error {
	dbPath := opts.dbPath
	if dbPath == "" {
		dbPath = os.Getenv(historyDBEnv)
	}
	if dbPath == "" {
		return fmt.Errorf("no ledger configured: pass --db or set %s", historyDBEnv)
	}
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}

	db, err := sqlite.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	runs, err := sqlite.NewRunRepo(db).ListRecent(cmd.Context(), opts.repo, opts.limit)
	if err != nil {
		return err
	}

	return writeHistoryTable(cmd.OutOrStdout(), runs)
}

func writeHistoryTable(out io.Writer, runs []model.DeliveryRun) error {
	if len(runs) == 0 {
		printWarning(out, "no delivery runs recorded")
		return nil
	}

	table := newTable(out, []string{"When", "Repository", "PR", "Head", "Issues", "Resolved", "Summary", "Tier", "Posted", "File-level", "Dropped"})
	for _, run := range runs {
		issues := strconv.Itoa(run.ReportedIssues)
		if run.TotalIssues != run.ReportedIssues {
			issues = fmt.Sprintf("%d/%d", run.ReportedIssues, run.TotalIssues)
		}
		dropped := strconv.Itoa(run.DroppedComments)
		if run.DroppedComments > 0 {
			dropped = red(dropped)
		}
		if err := table.Append([]string{
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			run.RepoFullName,
			"#" + strconv.Itoa(run.PRNumber),
			shortSHA(run.HeadSHA),
			issues,
			strconv.Itoa(run.ResolvedThreads),
			string(run.SummaryAction),
			string(run.PublishTier),
			strconv.Itoa(run.PostedComments),
			strconv.Itoa(run.FileLevel),
			dropped,
		}); err != nil {
			return fmt.Errorf("building history table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering history table: %w", err)
	}
	return nil
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
