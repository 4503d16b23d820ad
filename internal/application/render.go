package application

import (
	"fmt"
	"strings"

	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
)

// Identity markers embedded in every rendered comment. They are matched by
// substring on later runs, so their bytes must never change.
const (
	MarkerSummary = "<!-- reviewcerberus:summary -->"
	MarkerIssue   = "<!-- reviewcerberus:issue -->"
)

const (
	toolName       = "ReviewCerberus"
	toolHomeURL    = "https://github.com/Kirill89/reviewcerberus"
	noIssuesNotice = "✅ No issues found"
)

// severityGlyph maps each severity to the circle shown next to it.
func severityGlyph(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "🔴"
	case model.SeverityHigh:
		return "🟠"
	case model.SeverityMedium:
		return "🟡"
	case model.SeverityLow:
		return "🟢"
	default:
		return "⚪"
	}
}

// RenderIssue renders a single issue as the body of an inline review comment.
func RenderIssue(issue model.ReviewIssue) string {
	glyph := severityGlyph(issue.Severity)

	var b strings.Builder
	b.WriteString(MarkerIssue)
	b.WriteString("\n")
	fmt.Fprintf(&b, "### %s %s\n\n", glyph, issue.Title)
	fmt.Fprintf(&b, "**Severity:** %s %s  \n", glyph, issue.Severity)
	fmt.Fprintf(&b, "**Category:** %s\n\n", issue.Category)

	if issue.Explanation != "" {
		fmt.Fprintf(&b, "#### Explanation\n\n%s\n\n", issue.Explanation)
	}
	if issue.SuggestedFix != "" {
		fmt.Fprintf(&b, "#### Suggested Fix\n\n%s\n\n", issue.SuggestedFix)
	}

	if issue.Confidence != nil {
		fmt.Fprintf(&b, "**Confidence:** %d/10\n\n", *issue.Confidence)
		if issue.Rationale != nil && *issue.Rationale != "" {
			fmt.Fprintf(&b, "%s\n\n", *issue.Rationale)
		}
	}

	if len(issue.Location) > 1 {
		b.WriteString("**Also affects:**\n")
		for _, loc := range issue.Location[1:] {
			fmt.Fprintf(&b, "- `%s`\n", loc.String())
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// RenderSummary renders the PR-level summary comment. Issues are listed in the
// order given; callers pass them through SortBySeverity first.
func RenderSummary(output model.ReviewOutput) string {
	var b strings.Builder
	b.WriteString(MarkerSummary)
	b.WriteString("\n")
	fmt.Fprintf(&b, "## %s Code Review\n\n", toolName)

	if output.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", output.Description)
	}

	if len(output.Issues) == 0 {
		fmt.Fprintf(&b, "### %s\n\n", noIssuesNotice)
	} else {
		fmt.Fprintf(&b, "### Issues (%d)\n\n", len(output.Issues))
		b.WriteString("| # | Title | Category | Severity | Location |\n")
		b.WriteString("|---|-------|----------|----------|----------|\n")
		for idx, issue := range output.Issues {
			fmt.Fprintf(&b, "| %d | %s | %s | %s %s | `%s` |\n",
				idx+1,
				tableCell(issue.Title),
				issue.Category,
				severityGlyph(issue.Severity),
				issue.Severity,
				summaryLocation(issue),
			)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\n<sub>Generated by [%s](%s)</sub>\n", toolName, toolHomeURL)
	return b.String()
}

// summaryLocation returns the primary file with a "(+N)" suffix counting the
// remaining locations. Line numbers are left to the inline comments.
func summaryLocation(issue model.ReviewIssue) string {
	primary, ok := issue.PrimaryLocation()
	if !ok {
		return "-"
	}

	loc := primary.Filename
	if extra := len(issue.Location) - 1; extra > 0 {
		loc += fmt.Sprintf(" (+%d)", extra)
	}
	return tableCell(loc)
}

// tableCell keeps a value on one markdown table row.
func tableCell(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
