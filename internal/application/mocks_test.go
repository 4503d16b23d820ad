package application

import (
	"context"

	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
	"github.com/ericfisherdev/reviewcerberus/internal/domain/port/driven"
)

// --- In-memory GitHub double implementing GitHubClient and GitHubWriter ---

type fakeGitHub struct {
	// Issue comments.
	comments  []model.IssueComment
	listErr   error
	createErr error
	updateErr error
	created   []string
	updated   map[int64]string
	nextID    int64

	// Review threads.
	threads    []model.ReviewThread
	threadsErr error
	resolveErr map[string]error
	resolved   []string

	// Reviews.
	reviewErr      error
	reviews        [][]model.ReviewComment
	reviewSHAs     []string
	commentErr     func(req driven.ReviewCommentRequest) error
	attempts       []driven.ReviewCommentRequest
	reviewComments []driven.ReviewCommentRequest
}

var (
	_ driven.GitHubClient = (*fakeGitHub)(nil)
	_ driven.GitHubWriter = (*fakeGitHub)(nil)
)

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		updated:    make(map[int64]string),
		resolveErr: make(map[string]error),
		nextID:     1000,
	}
}

func (f *fakeGitHub) ListIssueComments(_ context.Context, _ model.PullRequestRef) ([]model.IssueComment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.comments, nil
}

func (f *fakeGitHub) CreateIssueComment(_ context.Context, _ model.PullRequestRef, body string) (model.IssueComment, error) {
	if f.createErr != nil {
		return model.IssueComment{}, f.createErr
	}
	f.nextID++
	c := model.IssueComment{ID: f.nextID, Body: body}
	f.comments = append(f.comments, c)
	f.created = append(f.created, body)
	return c, nil
}

func (f *fakeGitHub) UpdateIssueComment(_ context.Context, _ model.PullRequestRef, commentID int64, body string) (model.IssueComment, error) {
	if f.updateErr != nil {
		return model.IssueComment{}, f.updateErr
	}
	f.updated[commentID] = body
	for i := range f.comments {
		if f.comments[i].ID == commentID {
			f.comments[i].Body = body
		}
	}
	return model.IssueComment{ID: commentID, Body: body}, nil
}

func (f *fakeGitHub) FetchReviewThreads(_ context.Context, _ model.PullRequestRef) ([]model.ReviewThread, error) {
	if f.threadsErr != nil {
		return nil, f.threadsErr
	}
	return f.threads, nil
}

func (f *fakeGitHub) ResolveReviewThread(_ context.Context, threadID string) error {
	if err := f.resolveErr[threadID]; err != nil {
		return err
	}
	f.resolved = append(f.resolved, threadID)
	return nil
}

func (f *fakeGitHub) CreateReview(_ context.Context, _ model.PullRequestRef, commitSHA string, comments []model.ReviewComment) error {
	if f.reviewErr != nil {
		return f.reviewErr
	}
	f.reviews = append(f.reviews, comments)
	f.reviewSHAs = append(f.reviewSHAs, commitSHA)
	return nil
}

func (f *fakeGitHub) CreateReviewComment(_ context.Context, _ model.PullRequestRef, _ string, req driven.ReviewCommentRequest) error {
	f.attempts = append(f.attempts, req)
	if f.commentErr != nil {
		if err := f.commentErr(req); err != nil {
			return err
		}
	}
	f.reviewComments = append(f.reviewComments, req)
	return nil
}

// --- In-memory RunStore ---

type fakeRunStore struct {
	runs []model.DeliveryRun
	err  error
}

func (s *fakeRunStore) Record(_ context.Context, run model.DeliveryRun) error {
	if s.err != nil {
		return s.err
	}
	s.runs = append(s.runs, run)
	return nil
}

func (s *fakeRunStore) ListRecent(_ context.Context, _ string, _ int) ([]model.DeliveryRun, error) {
	return s.runs, s.err
}

// --- Helper functions ---

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func severityPtr(v model.Severity) *model.Severity {
	return &v
}

func testPR() model.PullRequestRef {
	return model.PullRequestRef{Owner: "owner", Repo: "repo", Number: 7, HeadSHA: "abc123"}
}

func makeIssue(title string, severity model.Severity, locs ...model.IssueLocation) model.ReviewIssue {
	if len(locs) == 0 {
		locs = []model.IssueLocation{{Filename: "test.py"}}
	}
	return model.ReviewIssue{
		Title:        title,
		Category:     model.CategoryLogic,
		Severity:     severity,
		Location:     locs,
		Explanation:  "Test explanation",
		SuggestedFix: "Test fix",
	}
}

func loc(filename string, line ...int) model.IssueLocation {
	l := model.IssueLocation{Filename: filename}
	if len(line) > 0 {
		l.Line = intPtr(line[0])
	}
	return l
}
