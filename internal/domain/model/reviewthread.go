package model

// ReviewThread is a review-comment conversation owned by the hosting platform.
// Only the bodies the adapter fetched are present; the reconciler reads the first.
type ReviewThread struct {
	ID            string // GraphQL node ID used for resolution.
	IsResolved    bool
	CommentBodies []string
}
