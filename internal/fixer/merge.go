// File: internal/fixer/merge.go
// Description: Deterministic merge of accepted suggestions into the document.
// The merge walks issues in their original input order over a running working
// text, so the output is independent of the order in which jobs completed.

package fixer

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/docmend/api/schemas"
	"github.com/xkilldash9x/docmend/internal/textmatch"
)

// ApplySelected computes the final document text from the original text, the
// ordered issue list, and the session's job states. Only jobs that are
// Succeeded, selected, and carry a non-empty suggestion are applied; every
// other issue is skipped silently and excluded from the applied-id list.
//
// Occurrence-indexed fixes replace exactly that occurrence in the current
// working text; index-less fixes replace every case-insensitive occurrence.
// Earlier replacements can shift what a later occurrence index addresses;
// that sequential running-text behavior is deliberate and documented.
func ApplySelected(
	documentText string,
	issues []schemas.Issue,
	states map[string]schemas.JobState,
) ([]string, string) {
	working := documentText
	applied := make([]string, 0, len(issues))

	for _, issue := range issues {
		if issue.Fix == nil || issue.Fix.Pattern == "" {
			continue
		}
		state, ok := states[issue.ID]
		if !ok || state.Status != schemas.JobSucceeded || !state.Selected || state.Suggestion == "" {
			continue
		}

		if issue.Fix.OccurrenceIndex != nil {
			next, replaced, err := textmatch.ReplaceNthOccurrence(
				working, issue.Fix.Pattern, state.Suggestion, *issue.Fix.OccurrenceIndex)
			if err != nil {
				continue
			}
			working = next
			if replaced {
				applied = append(applied, issue.ID)
			}
			continue
		}

		next, count, err := textmatch.ReplaceAllOccurrences(working, issue.Fix.Pattern, state.Suggestion)
		if err != nil {
			continue
		}
		working = next
		if count > 0 {
			applied = append(applied, issue.ID)
		}
	}

	return applied, working
}

// ApplySelected merges the session's accepted suggestions into the original
// document text and returns the applied issue ids with the final text.
func (b *Batch) ApplySelected() ([]string, string) {
	states := make(map[string]schemas.JobState)
	for _, s := range b.tracker.Snapshot() {
		states[s.IssueID] = s
	}
	applied, final := ApplySelected(b.docText, b.issues, states)
	b.logger.Info("Merged selected fixes",
		zap.Int("applied", len(applied)),
		zap.Int("eligible", b.total))
	return applied, final
}
