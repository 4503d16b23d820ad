package model

import "time"

// DeliveryRun is one ledger entry describing what a run posted.
type DeliveryRun struct {
	ID              string
	RepoFullName    string
	PRNumber        int
	HeadSHA         string
	TotalIssues     int // Before confidence filtering.
	ReportedIssues  int // After confidence filtering.
	ResolvedThreads int
	SummaryAction   SummaryAction
	PublishTier     PublishTier
	PostedComments  int
	FileLevel       int
	DroppedComments int
	CreatedAt       time.Time
}
