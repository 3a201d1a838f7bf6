// File: internal/reporting/report.go
// Description: Session report assembly. Captures the outcome of every job in
// a fix session for review and audit.

package reporting

import (
	"fmt"
	"os"
	"time"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/docmend/api/schemas"
)

// IssueOutcome is the report entry for one issue.
type IssueOutcome struct {
	IssueID    string            `json:"issue_id"`
	Kind       schemas.IssueKind `json:"kind"`
	Label      string            `json:"label,omitempty"`
	Pattern    string            `json:"pattern,omitempty"`
	Status     schemas.JobStatus `json:"status,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Error      string            `json:"error,omitempty"`
	Selected   bool              `json:"selected"`
	Applied    bool              `json:"applied"`
}

// SessionReport is the full record of one fix session.
type SessionReport struct {
	SessionID    string         `json:"session_id"`
	DocumentPath string         `json:"document_path"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
	Total        int            `json:"total_jobs"`
	Succeeded    int            `json:"succeeded"`
	Failed       int            `json:"failed"`
	AppliedIDs   []string       `json:"applied_ids"`
	Outcomes     []IssueOutcome `json:"outcomes"`
}

// BuildReport assembles the session report from the issue list, the final job
// states, and the merge result.
func BuildReport(
	sessionID, documentPath string,
	startedAt, finishedAt time.Time,
	issues []schemas.Issue,
	states []schemas.JobState,
	appliedIDs []string,
) SessionReport {
	byID := make(map[string]schemas.JobState, len(states))
	for _, s := range states {
		byID[s.IssueID] = s
	}
	applied := make(map[string]bool, len(appliedIDs))
	for _, id := range appliedIDs {
		applied[id] = true
	}

	report := SessionReport{
		SessionID:    sessionID,
		DocumentPath: documentPath,
		StartedAt:    startedAt,
		FinishedAt:   finishedAt,
		AppliedIDs:   appliedIDs,
	}

	for _, issue := range issues {
		outcome := IssueOutcome{
			IssueID: issue.ID,
			Kind:    issue.Kind,
			Label:   issue.Label,
			Applied: applied[issue.ID],
		}
		if issue.Fix != nil {
			outcome.Pattern = issue.Fix.Pattern
		}
		if state, ok := byID[issue.ID]; ok {
			outcome.Status = state.Status
			outcome.Suggestion = state.Suggestion
			outcome.Error = state.Error
			outcome.Selected = state.Selected
			report.Total++
			switch state.Status {
			case schemas.JobSucceeded:
				report.Succeeded++
			case schemas.JobFailed:
				report.Failed++
			}
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
	return report
}

// Write serializes the report as indented JSON to path.
func (r SessionReport) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("reporting: encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("reporting: writing report %s: %w", path, err)
	}
	return nil
}
