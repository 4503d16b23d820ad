package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
)

func TestResolveOwnedThreads(t *testing.T) {
	gh := newFakeGitHub()
	gh.threads = []model.ReviewThread{
		{ID: "T1", IsResolved: false, CommentBodies: []string{MarkerIssue + "\nold issue"}},
		{ID: "T2", IsResolved: false, CommentBodies: []string{"human comment"}},
		{ID: "T3", IsResolved: true, CommentBodies: []string{MarkerIssue + "\nalready resolved"}},
		{ID: "T4", IsResolved: false, CommentBodies: []string{RenderIssue(makeIssue("x", model.SeverityLow))}},
		{ID: "T5", IsResolved: false, CommentBodies: nil},
	}

	count, err := NewThreadReconciler(gh).ResolveOwnedThreads(context.Background(), testPR())

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []string{"T1", "T4"}, gh.resolved)
}

func TestResolveOwnedThreads_OnlyFirstCommentCounts(t *testing.T) {
	gh := newFakeGitHub()
	gh.threads = []model.ReviewThread{
		{ID: "T1", CommentBodies: []string{"human question", MarkerIssue + " quoted in a reply"}},
	}

	count, err := NewThreadReconciler(gh).ResolveOwnedThreads(context.Background(), testPR())

	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, gh.resolved)
}

func TestResolveOwnedThreads_FetchError(t *testing.T) {
	gh := newFakeGitHub()
	gh.threadsErr = errors.New("graphql down")

	count, err := NewThreadReconciler(gh).ResolveOwnedThreads(context.Background(), testPR())

	require.Error(t, err)
	assert.Zero(t, count)
}

func TestResolveOwnedThreads_ResolveErrorStopsPass(t *testing.T) {
	gh := newFakeGitHub()
	gh.threads = []model.ReviewThread{
		{ID: "T1", CommentBodies: []string{MarkerIssue}},
		{ID: "T2", CommentBodies: []string{MarkerIssue}},
		{ID: "T3", CommentBodies: []string{MarkerIssue}},
	}
	resolveErr := errors.New("forbidden")
	gh.resolveErr["T2"] = resolveErr

	count, err := NewThreadReconciler(gh).ResolveOwnedThreads(context.Background(), testPR())

	require.ErrorIs(t, err, resolveErr)
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{"T1"}, gh.resolved, "T3 must not be attempted after T2 fails")
}
