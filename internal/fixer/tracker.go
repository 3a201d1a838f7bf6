// File: internal/fixer/tracker.go
// Description: Concurrency-safe registry of per-issue fix job states. The
// scheduler owns status transitions; the selection surface owns the selected
// flag. A generation counter per job makes regenerate commits atomic: a
// completion carrying a stale counter is discarded instead of committed.

package fixer

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/xkilldash9x/docmend/api/schemas"
)

var (
	// ErrUnknownJob is returned when an issue id has no tracked job.
	ErrUnknownJob = errors.New("fixer: unknown job")
	// ErrJobInFlight is returned when a transition would give one job two
	// outstanding generation calls.
	ErrJobInFlight = errors.New("fixer: job already in flight")
)

// job is the mutable tracker entry backing one schemas.JobState snapshot.
type job struct {
	state schemas.JobState
	// generation increments every time the job enters InFlight. A completion
	// commits only if it still carries the current generation.
	generation uint64
	// order preserves the issue's position in the batch input for stable
	// snapshot listings.
	order int
}

// Tracker holds every fix job of one session. All access goes through the
// mutex; callers only ever see value snapshots.
type Tracker struct {
	mu   sync.Mutex
	jobs map[string]*job
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{jobs: make(map[string]*job)}
}

// Init registers one job per issue whose fix descriptor requires generation.
// Fixable issues start Pending and count toward the returned eligible total; a
// generation-requiring descriptor with an empty pattern can never be targeted,
// so its job is registered already Failed. Issues without a
// generation-requiring descriptor are skipped and never enter the pipeline.
// Callers create one tracker per session.
func (t *Tracker) Init(issues []schemas.Issue) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	count := 0
	for _, issue := range issues {
		if issue.Fix == nil || !issue.Fix.RequiresGeneration {
			continue
		}
		entry := &job{
			state: schemas.JobState{
				IssueID:         issue.ID,
				Status:          schemas.JobPending,
				OriginalPattern: issue.Fix.Pattern,
				Selected:        true,
			},
			order: len(t.jobs),
		}
		if issue.Fix.Pattern == "" {
			entry.state.Status = schemas.JobFailed
			entry.state.Error = "fix descriptor has an empty pattern"
		} else {
			count++
		}
		t.jobs[issue.ID] = entry
	}
	return count
}

// Get returns a snapshot of one job state.
func (t *Tracker) Get(issueID string) (schemas.JobState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	j, ok := t.jobs[issueID]
	if !ok {
		return schemas.JobState{}, false
	}
	return j.state, true
}

// Snapshot returns every job state in batch input order.
func (t *Tracker) Snapshot() []schemas.JobState {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]schemas.JobState, 0, len(t.jobs))
	ordered := make([]*job, 0, len(t.jobs))
	for _, j := range t.jobs {
		ordered = append(ordered, j)
	}
	sort.Slice(ordered, func(a, b int) bool { return ordered[a].order < ordered[b].order })
	for _, j := range ordered {
		out = append(out, j.state)
	}
	return out
}

// InFlightCount returns the number of jobs currently in flight.
func (t *Tracker) InFlightCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, j := range t.jobs {
		if j.state.Status == schemas.JobInFlight {
			n++
		}
	}
	return n
}

// BeginAttempt transitions a job to InFlight and returns the generation token
// the eventual completion must present. Entering InFlight clears any prior
// error. Pending and Failed jobs may always begin; a Succeeded job may only
// begin when regenerate is set; a job already InFlight is rejected so no job
// ever has two outstanding generation calls.
func (t *Tracker) BeginAttempt(issueID string, regenerate bool) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	j, ok := t.jobs[issueID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownJob, issueID)
	}

	switch j.state.Status {
	case schemas.JobInFlight:
		return 0, fmt.Errorf("%w: %s", ErrJobInFlight, issueID)
	case schemas.JobSucceeded:
		if !regenerate {
			return 0, fmt.Errorf("fixer: job %s already succeeded; use regenerate", issueID)
		}
	}

	j.generation++
	j.state.Status = schemas.JobInFlight
	j.state.Error = ""
	return j.generation, nil
}

// CommitSuccess moves an in-flight job to Succeeded, installing the suggestion
// and clearing any error. The commit is dropped (returning false) when the
// generation token is stale, so a superseded or abandoned attempt can never
// overwrite a newer result.
func (t *Tracker) CommitSuccess(issueID string, generation uint64, suggestion string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	j, ok := t.jobs[issueID]
	if !ok || j.generation != generation || j.state.Status != schemas.JobInFlight {
		return false
	}
	j.state.Status = schemas.JobSucceeded
	j.state.Suggestion = suggestion
	j.state.Error = ""
	return true
}

// CommitFailure moves an in-flight job to Failed, recording the error message
// and clearing any prior suggestion. Stale generations are dropped the same
// way as in CommitSuccess.
func (t *Tracker) CommitFailure(issueID string, generation uint64, message string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	j, ok := t.jobs[issueID]
	if !ok || j.generation != generation || j.state.Status != schemas.JobInFlight {
		return false
	}
	j.state.Status = schemas.JobFailed
	j.state.Suggestion = ""
	j.state.Error = message
	return true
}

// Abandon returns an in-flight job to its retriable Failed state when the
// session is cancelled before the generation call completes. Stale
// generations are ignored.
func (t *Tracker) Abandon(issueID string, generation uint64, message string) bool {
	return t.CommitFailure(issueID, generation, message)
}

// ToggleSelected flips the selected flag of one job.
func (t *Tracker) ToggleSelected(issueID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	j, ok := t.jobs[issueID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, issueID)
	}
	j.state.Selected = !j.state.Selected
	return nil
}

// SetSelected sets the selected flag of one job explicitly.
func (t *Tracker) SetSelected(issueID string, selected bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	j, ok := t.jobs[issueID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, issueID)
	}
	j.state.Selected = selected
	return nil
}

// SelectAll marks every Succeeded job selected. Jobs that have not produced a
// suggestion are left alone; their flag is inert anyway.
func (t *Tracker) SelectAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, j := range t.jobs {
		if j.state.Status == schemas.JobSucceeded {
			j.state.Selected = true
		}
	}
}

// DeselectAll clears the selected flag on every job regardless of status.
func (t *Tracker) DeselectAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, j := range t.jobs {
		j.state.Selected = false
	}
}
