package application

import (
	"fmt"
	"sort"

	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
)

// FilterByConfidence keeps issues whose confidence meets minConfidence.
// Issues without a confidence score were never verified and are always kept.
// A nil threshold returns issues unchanged. The input slice is never modified.
func FilterByConfidence(issues []model.ReviewIssue, minConfidence *int) []model.ReviewIssue {
	if minConfidence == nil {
		return issues
	}

	kept := make([]model.ReviewIssue, 0, len(issues))
	for _, issue := range issues {
		if issue.Confidence == nil || *issue.Confidence >= *minConfidence {
			kept = append(kept, issue)
		}
	}
	return kept
}

// FilterOutput returns a new ReviewOutput carrying only the issues that pass
// FilterByConfidence.
func FilterOutput(output model.ReviewOutput, minConfidence *int) model.ReviewOutput {
	return model.ReviewOutput{
		Description: output.Description,
		Issues:      FilterByConfidence(output.Issues, minConfidence),
	}
}

// SortBySeverity returns a copy of issues ordered CRITICAL, HIGH, MEDIUM, LOW.
// Issues of equal severity keep their original relative order.
func SortBySeverity(issues []model.ReviewIssue) []model.ReviewIssue {
	sorted := make([]model.ReviewIssue, len(issues))
	copy(sorted, issues)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Rank() < sorted[j].Severity.Rank()
	})
	return sorted
}

// CheckFailOn returns a failure message when any issue is at or above the
// failOn severity. It returns "" when failOn is nil or nothing matches.
func CheckFailOn(issues []model.ReviewIssue, failOn *model.Severity) string {
	if failOn == nil {
		return ""
	}

	threshold := failOn.Rank()
	var matched int
	for _, issue := range issues {
		if issue.Severity.Rank() <= threshold {
			matched++
		}
	}

	if matched == 0 {
		return ""
	}
	return fmt.Sprintf("found %d issue(s) with severity %s or higher", matched, *failOn)
}
