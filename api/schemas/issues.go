// File: api/schemas/issues.go
// Description: Core data model for detected document issues and their fix
// descriptors. Issues are produced by an external analysis pass and are
// immutable for the duration of a fix session.

package schemas

import "strings"

// IssueKind classifies a detected document problem. The kind drives which
// generation action is requested for the fix.
type IssueKind string

const (
	IssueKindError         IssueKind = "error"
	IssueKindWarning       IssueKind = "warning"
	IssueKindInfo          IssueKind = "info"
	IssueKindCompliance    IssueKind = "compliance"
	IssueKindHallucination IssueKind = "hallucination"
)

// FixDescriptor describes how an issue can be fixed automatically. An issue
// without a descriptor, or with an empty Pattern, never enters the scheduling
// pipeline.
type FixDescriptor struct {
	Label string `json:"label"`
	// Pattern is the literal text the fix targets. Matching is case-insensitive.
	Pattern string `json:"pattern,omitempty"`
	// OccurrenceIndex selects which 0-indexed occurrence of Pattern the fix
	// targets. When nil the fix applies to every occurrence.
	OccurrenceIndex *int `json:"occurrence_index,omitempty"`
	// RequiresGeneration marks fixes that need a generated replacement rather
	// than a purely mechanical edit.
	RequiresGeneration bool `json:"requires_generation"`
}

// Issue is a detected problem in the document under review.
type Issue struct {
	ID    string    `json:"id"`
	Kind  IssueKind `json:"kind"`
	Label string    `json:"label"`
	// Section names the document section the issue was found in. Passed to the
	// generator as a hint; never used algorithmically.
	Section string         `json:"section,omitempty"`
	Fix     *FixDescriptor `json:"fix,omitempty"`
}

// Fixable reports whether the issue is eligible for the generation pipeline.
func (i Issue) Fixable() bool {
	return i.Fix != nil && i.Fix.RequiresGeneration && i.Fix.Pattern != ""
}

// ActionKind names a generation action understood by the generation
// collaborator.
type ActionKind string

const (
	ActionFixIssue         ActionKind = "fix_issue"
	ActionFixHallucination ActionKind = "fix_hallucination"
	ActionFixCompliance    ActionKind = "fix_compliance"
	ActionFixVagueLanguage ActionKind = "fix_vague_language"
)

// ActionForIssue selects the generation action for an issue. Hallucination and
// compliance issues get dedicated actions; warnings whose label mentions vague
// language get the vague-language action; everything else falls through to the
// generic fix action.
func ActionForIssue(issue Issue) ActionKind {
	switch issue.Kind {
	case IssueKindHallucination:
		return ActionFixHallucination
	case IssueKindCompliance:
		return ActionFixCompliance
	case IssueKindWarning:
		if strings.Contains(strings.ToLower(issue.Label), "vague") {
			return ActionFixVagueLanguage
		}
	}
	return ActionFixIssue
}
