package model

import "strconv"

// IssueLocation points at a file and, optionally, a line within it.
type IssueLocation struct {
	Filename string `json:"filename"`
	Line     *int   `json:"line,omitempty"`
}

// HasLine reports whether the location carries a positive line number.
func (l IssueLocation) HasLine() bool {
	return l.Line != nil && *l.Line > 0
}

// String renders the location as "filename" or "filename:line".
func (l IssueLocation) String() string {
	if l.HasLine() {
		return l.Filename + ":" + strconv.Itoa(*l.Line)
	}
	return l.Filename
}

// ReviewIssue is a single defect reported by the analysis engine.
// The first Location entry is the primary location used for line-comment
// placement; an issue without one is reported in the summary only.
type ReviewIssue struct {
	Title        string          `json:"title"`
	Category     Category        `json:"category"`
	Severity     Severity        `json:"severity"`
	Location     []IssueLocation `json:"location"`
	Explanation  string          `json:"explanation"`
	SuggestedFix string          `json:"suggested_fix"`
	Confidence   *int            `json:"confidence,omitempty"` // nil means not verified.
	Rationale    *string         `json:"rationale,omitempty"`
}

// PrimaryLocation returns the first location, or false if there is none.
func (i ReviewIssue) PrimaryLocation() (IssueLocation, bool) {
	if len(i.Location) == 0 {
		return IssueLocation{}, false
	}
	return i.Location[0], true
}

// ReviewOutput is the complete result of one analysis run.
type ReviewOutput struct {
	Description string        `json:"description"`
	Issues      []ReviewIssue `json:"issues"`
}
