package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
)

// FindingsError is returned when a fail_on threshold matched a reported issue.
// Delivery has already completed when it is returned.
type FindingsError struct {
	Message string
}

func (e *FindingsError) Error() string { return e.Message }

// IsFindings reports whether err came from a tripped fail_on threshold.
func IsFindings(err error) bool {
	var fe *FindingsError
	return errors.As(err, &fe)
}

var (
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix = color.New(color.FgHiYellow).Sprint("⚠")
	bold          = color.New(color.Bold).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
	orange        = color.New(color.FgRed).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
)

// severityColor returns the severity name colored by urgency.
func severityColor(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return red(string(s))
	case model.SeverityHigh:
		return orange(string(s))
	case model.SeverityMedium:
		return yellow(string(s))
	case model.SeverityLow:
		return green(string(s))
	default:
		return string(s)
	}
}

func printSuccess(w io.Writer, format string, a ...any) {
	fmt.Fprintf(w, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func printWarning(w io.Writer, format string, a ...any) {
	fmt.Fprintf(w, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

// newTable creates a borderless, left-aligned table writing to w.
func newTable(w io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}
