// File: internal/fixer/tracker_test.go
package fixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/docmend/api/schemas"
)

func intPtr(n int) *int { return &n }

func fixableIssue(id, pattern string) schemas.Issue {
	return schemas.Issue{
		ID:   id,
		Kind: schemas.IssueKindError,
		Fix: &schemas.FixDescriptor{
			Label:              "Replace " + pattern,
			Pattern:            pattern,
			RequiresGeneration: true,
		},
	}
}

func TestTracker_InitSkipsIneligibleIssues(t *testing.T) {
	t.Parallel()
	tr := NewTracker()

	issues := []schemas.Issue{
		fixableIssue("a", "TBD"),
		{ID: "no-fix", Kind: schemas.IssueKindInfo},
		{ID: "no-pattern", Fix: &schemas.FixDescriptor{RequiresGeneration: true}},
		{ID: "mechanical", Fix: &schemas.FixDescriptor{Pattern: "x", RequiresGeneration: false}},
		fixableIssue("b", "lorem"),
	}

	assert.Equal(t, 2, tr.Init(issues))

	_, ok := tr.Get("no-fix")
	assert.False(t, ok)
	_, ok = tr.Get("mechanical")
	assert.False(t, ok)

	// A generation fix without a pattern can never be targeted: tracked, but
	// immediately Failed and excluded from the eligible count.
	state, ok := tr.Get("no-pattern")
	require.True(t, ok)
	assert.Equal(t, schemas.JobFailed, state.Status)
	assert.Contains(t, state.Error, "empty pattern")

	state, ok = tr.Get("a")
	require.True(t, ok)
	assert.Equal(t, schemas.JobPending, state.Status)
	assert.Equal(t, "TBD", state.OriginalPattern)
	assert.True(t, state.Selected, "jobs default to selected")
}

func TestTracker_Lifecycle(t *testing.T) {
	t.Parallel()
	tr := NewTracker()
	tr.Init([]schemas.Issue{fixableIssue("a", "TBD")})

	gen, err := tr.BeginAttempt("a", false)
	require.NoError(t, err)

	state, _ := tr.Get("a")
	assert.Equal(t, schemas.JobInFlight, state.Status)

	// A second attempt while in flight is rejected.
	_, err = tr.BeginAttempt("a", false)
	assert.ErrorIs(t, err, ErrJobInFlight)

	require.True(t, tr.CommitSuccess("a", gen, "March 1, 2025"))
	state, _ = tr.Get("a")
	assert.Equal(t, schemas.JobSucceeded, state.Status)
	assert.Equal(t, "March 1, 2025", state.Suggestion)
	assert.Empty(t, state.Error)
}

func TestTracker_FailureAndRetry(t *testing.T) {
	t.Parallel()
	tr := NewTracker()
	tr.Init([]schemas.Issue{fixableIssue("a", "TBD")})

	gen, err := tr.BeginAttempt("a", false)
	require.NoError(t, err)
	require.True(t, tr.CommitFailure("a", gen, "rate limited"))

	state, _ := tr.Get("a")
	assert.Equal(t, schemas.JobFailed, state.Status)
	assert.Equal(t, "rate limited", state.Error)
	assert.Empty(t, state.Suggestion)

	// Retry re-enters InFlight and clears the prior error.
	gen2, err := tr.BeginAttempt("a", false)
	require.NoError(t, err)
	state, _ = tr.Get("a")
	assert.Equal(t, schemas.JobInFlight, state.Status)
	assert.Empty(t, state.Error)

	require.True(t, tr.CommitSuccess("a", gen2, "done"))
	state, _ = tr.Get("a")
	assert.Equal(t, schemas.JobSucceeded, state.Status)
	assert.Empty(t, state.Error, "no residual error after a successful retry")
}

func TestTracker_RegenerateOverwritesAtomically(t *testing.T) {
	t.Parallel()
	tr := NewTracker()
	tr.Init([]schemas.Issue{fixableIssue("a", "TBD")})

	gen, _ := tr.BeginAttempt("a", false)
	tr.CommitSuccess("a", gen, "first")

	// Succeeded jobs are only re-entered via regenerate.
	_, err := tr.BeginAttempt("a", false)
	assert.Error(t, err)

	gen2, err := tr.BeginAttempt("a", true)
	require.NoError(t, err)

	// A completion from the superseded attempt must be discarded.
	assert.False(t, tr.CommitSuccess("a", gen, "stale"))
	state, _ := tr.Get("a")
	assert.Equal(t, schemas.JobInFlight, state.Status)

	require.True(t, tr.CommitSuccess("a", gen2, "second"))
	state, _ = tr.Get("a")
	assert.Equal(t, "second", state.Suggestion)
}

func TestTracker_StaleCommitDropped(t *testing.T) {
	t.Parallel()
	tr := NewTracker()
	tr.Init([]schemas.Issue{fixableIssue("a", "TBD")})

	gen, _ := tr.BeginAttempt("a", false)
	tr.CommitFailure("a", gen, "boom")

	// The job moved on; the old generation can no longer commit.
	assert.False(t, tr.CommitSuccess("a", gen, "late"))
	assert.False(t, tr.CommitFailure("a", gen, "late"))

	state, _ := tr.Get("a")
	assert.Equal(t, schemas.JobFailed, state.Status)
}

func TestTracker_UnknownJob(t *testing.T) {
	t.Parallel()
	tr := NewTracker()

	_, err := tr.BeginAttempt("ghost", false)
	assert.ErrorIs(t, err, ErrUnknownJob)
	assert.ErrorIs(t, tr.ToggleSelected("ghost"), ErrUnknownJob)
	assert.False(t, tr.CommitSuccess("ghost", 1, "x"))
}

func TestTracker_SelectionSurface(t *testing.T) {
	t.Parallel()
	tr := NewTracker()
	tr.Init([]schemas.Issue{
		fixableIssue("done", "a"),
		fixableIssue("failed", "b"),
		fixableIssue("pending", "c"),
	})

	gen, _ := tr.BeginAttempt("done", false)
	tr.CommitSuccess("done", gen, "ok")
	gen, _ = tr.BeginAttempt("failed", false)
	tr.CommitFailure("failed", gen, "no")

	// DeselectAll clears every flag regardless of status.
	tr.DeselectAll()
	for _, s := range tr.Snapshot() {
		assert.False(t, s.Selected)
	}

	// SelectAll only re-selects Succeeded jobs.
	tr.SelectAll()
	byID := map[string]schemas.JobState{}
	for _, s := range tr.Snapshot() {
		byID[s.IssueID] = s
	}
	assert.True(t, byID["done"].Selected)
	assert.False(t, byID["failed"].Selected)
	assert.False(t, byID["pending"].Selected)

	require.NoError(t, tr.ToggleSelected("failed"))
	s, _ := tr.Get("failed")
	assert.True(t, s.Selected)
}

func TestTracker_SnapshotPreservesInputOrder(t *testing.T) {
	t.Parallel()
	tr := NewTracker()
	tr.Init([]schemas.Issue{
		fixableIssue("z", "1"),
		fixableIssue("m", "2"),
		fixableIssue("a", "3"),
	})

	var ids []string
	for _, s := range tr.Snapshot() {
		ids = append(ids, s.IssueID)
	}
	assert.Equal(t, []string{"z", "m", "a"}, ids)
}
