package model

// PullRequestRef identifies the pull request a run delivers to.
type PullRequestRef struct {
	Owner   string
	Repo    string
	Number  int
	HeadSHA string // Commit that line comments are anchored to.
	BaseRef string
}

// FullName returns "owner/repo".
func (p PullRequestRef) FullName() string {
	return p.Owner + "/" + p.Repo
}
