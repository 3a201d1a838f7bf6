// File: api/schemas/jobs.go
// Description: Per-issue fix job lifecycle types shared between the scheduler,
// the selection surface, and observers such as the progress reporter.

package schemas

// JobStatus is the lifecycle state of a single fix generation job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobInFlight  JobStatus = "in_flight"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// JobState is a point-in-time snapshot of one fix job. Suggestion is non-empty
// if and only if the status is JobSucceeded; Error is non-empty if and only if
// the status is JobFailed.
type JobState struct {
	IssueID string    `json:"issue_id"`
	Status  JobStatus `json:"status"`
	// OriginalPattern is the literal text the fix targets, copied from the
	// issue for display and audit.
	OriginalPattern string `json:"original_pattern"`
	Suggestion      string `json:"suggestion,omitempty"`
	Error           string `json:"error,omitempty"`
	// Selected marks the job for inclusion in the merge. Defaults to true and
	// is toggled only by the caller; inert until the job succeeds.
	Selected bool `json:"selected"`
}

// Terminal reports whether the job has reached a terminal status. Failed jobs
// remain retriable.
func (s JobState) Terminal() bool {
	return s.Status == JobSucceeded || s.Status == JobFailed
}

// Progress is one point of the batch completion stream. Completed is
// monotonically non-decreasing and reaches Total exactly when every worker has
// exited.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}
