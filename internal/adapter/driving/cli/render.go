package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/reviewcerberus/internal/adapter/driven/reviewfile"
	"github.com/ericfisherdev/reviewcerberus/internal/adapter/driving/preview"
	"github.com/ericfisherdev/reviewcerberus/internal/application"
	"github.com/ericfisherdev/reviewcerberus/internal/config"
	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
)

type renderOptions struct {
	reviewFile    string
	minConfidence string
	failOn        string
	htmlOut       string
	tableOnly     bool
}

func newRenderCommand() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a review result locally without calling GitHub",
		Long: "render prints the issue table, the summary comment and every inline comment " +
			"exactly as run would post them. Use --html to write a browser preview.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.reviewFile, "review-file", config.DefaultReviewFile, "Review result JSON written by the analysis engine")
	cmd.Flags().StringVar(&opts.minConfidence, "min-confidence", "", "Drop verified issues below this confidence (0-10)")
	cmd.Flags().StringVar(&opts.failOn, "fail-on", "", "Exit non-zero when an issue at or above this severity remains")
	cmd.Flags().StringVar(&opts.htmlOut, "html", "", "Write an HTML preview to this file")
	cmd.Flags().BoolVar(&opts.tableOnly, "table-only", false, "Print only the issue table")

	return cmd
}

func runRender(out io.Writer, opts *renderOptions) error {
	minConfidence, err := config.ParseMinConfidence(opts.minConfidence)
	if err != nil {
		return fmt.Errorf("--min-confidence: %w", err)
	}
	failOn, err := config.ParseSeverity(opts.failOn)
	if err != nil {
		return fmt.Errorf("--fail-on: %w", err)
	}

	output, err := reviewfile.Load(opts.reviewFile)
	if err != nil {
		return err
	}

	filtered := application.FilterOutput(output, minConfidence)
	sorted := application.SortBySeverity(filtered.Issues)
	rendered := model.ReviewOutput{Description: filtered.Description, Issues: sorted}
	summary := application.RenderSummary(rendered)
	comments := application.BuildLineComments(sorted)

	if err := writeIssueTable(out, sorted); err != nil {
		return err
	}

	if !opts.tableOnly {
		fmt.Fprintf(out, "\n%s\n\n%s\n", bold("Summary comment"), summary)
		for _, c := range comments {
			fmt.Fprintf(out, "\n%s\n\n%s\n", bold(commentAnchor(c)), c.Body)
		}
	}

	if opts.htmlOut != "" {
		if err := writePreview(opts.htmlOut, summary, comments); err != nil {
			return err
		}
		printSuccess(out, "wrote HTML preview to %s", opts.htmlOut)
	}

	if msg := application.CheckFailOn(sorted, failOn); msg != "" {
		return &FindingsError{Message: msg}
	}
	return nil
}

func writeIssueTable(out io.Writer, issues []model.ReviewIssue) error {
	if len(issues) == 0 {
		printSuccess(out, "no issues found")
		return nil
	}

	table := newTable(out, []string{"#", "Severity", "Category", "Title", "Location", "Confidence"})
	for i, issue := range issues {
		location := "-"
		if loc, ok := issue.PrimaryLocation(); ok && loc.Filename != "" {
			location = loc.String()
		}
		confidence := "-"
		if issue.Confidence != nil {
			confidence = strconv.Itoa(*issue.Confidence) + "/10"
		}
		if err := table.Append([]string{
			strconv.Itoa(i + 1),
			severityColor(issue.Severity),
			string(issue.Category),
			issue.Title,
			location,
			confidence,
		}); err != nil {
			return fmt.Errorf("building issue table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering issue table: %w", err)
	}
	return nil
}

func commentAnchor(c model.ReviewComment) string {
	if c.Line > 0 {
		return fmt.Sprintf("%s:%d", c.Path, c.Line)
	}
	return c.Path + " (file)"
}

func writePreview(path, summary string, comments []model.ReviewComment) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating preview file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing preview file: %w", cerr)
		}
	}()

	return preview.WritePage(f, "ReviewCerberus preview", summary, comments)
}
