package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	ghadapter "github.com/ericfisherdev/reviewcerberus/internal/adapter/driven/github"
	"github.com/ericfisherdev/reviewcerberus/internal/adapter/driven/reviewfile"
	"github.com/ericfisherdev/reviewcerberus/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/reviewcerberus/internal/application"
	"github.com/ericfisherdev/reviewcerberus/internal/config"
	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
	"github.com/ericfisherdev/reviewcerberus/internal/domain/port/driven"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Deliver the review result to the pull request that triggered the workflow",
		Long: "run reads its configuration from the GitHub Actions environment, loads the review " +
			"result, resolves stale ReviewCerberus threads, upserts the summary comment and posts " +
			"one inline comment per issue.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return runDelivery(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}
}

// runDelivery wires the adapters for one run and delivers the review.
func runDelivery(ctx context.Context, out io.Writer, cfg *config.Config) error {
	pr, err := config.LoadPullRequest(cfg.EventPath, cfg.Repository)
	if err != nil {
		return err
	}

	output, err := reviewfile.Load(cfg.ReviewFile)
	if err != nil {
		return err
	}

	slog.Info("running ReviewCerberus delivery",
		"repo", pr.FullName(),
		"pr", pr.Number,
		"head_sha", pr.HeadSHA,
		"base_ref", pr.BaseRef,
		"issues", len(output.Issues),
	)

	client, err := ghadapter.NewClient(cfg.GitHubToken, cfg.APIURL, cfg.GraphQLURL)
	if err != nil {
		return fmt.Errorf("creating GitHub client: %w", err)
	}

	var runStore driven.RunStore
	if cfg.HistoryDB != "" {
		db, err := sqlite.Open(cfg.HistoryDB)
		if err != nil {
			slog.Warn("delivery ledger unavailable, continuing without it", "path", cfg.HistoryDB, "error", err)
		} else {
			defer func() {
				if err := db.Close(); err != nil {
					slog.Warn("closing delivery ledger", "error", err)
				}
			}()
			runStore = sqlite.NewRunRepo(db)
		}
	}

	service := application.NewDeliveryService(
		application.NewThreadReconciler(client),
		application.NewCommentPublisher(client, client),
		runStore,
		application.DeliveryOptions{
			MinConfidence: cfg.MinConfidence,
			FailOn:        cfg.FailOn,
		},
	)

	result, err := service.Deliver(ctx, pr, output)
	if err != nil {
		return err
	}

	printResult(out, result)

	if result.FailOnMessage != "" {
		return &FindingsError{Message: result.FailOnMessage}
	}
	return nil
}

func printResult(out io.Writer, result *application.DeliveryResult) {
	printSuccess(out, "summary comment %s (%d issue(s))", result.SummaryAction, result.ReportedIssues)
	if result.ResolvedThreads > 0 {
		printSuccess(out, "resolved %d old review thread(s)", result.ResolvedThreads)
	}
	if result.ReconcileErr != nil {
		printWarning(out, "stale thread cleanup stopped early: %v", result.ReconcileErr)
	}

	report := result.Publish
	if report.Tier != model.PublishTierNone {
		printSuccess(out, "posted %d inline comment(s) via %s delivery, %d as file-level", report.Posted, report.Tier, report.FileLevel)
	}
	for _, d := range report.Dropped {
		printWarning(out, "could not post comment on %s: %v", commentAnchor(d.Comment), d.Reason)
	}
	if report.NotAttempted > 0 {
		printWarning(out, "interrupted before posting %d comment(s)", report.NotAttempted)
	}
}
