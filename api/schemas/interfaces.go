// File: api/schemas/interfaces.go
// Description: Contracts between the fix engine and its external
// collaborators. The engine is injected with these interfaces, keeping it
// decoupled from any concrete LLM provider or document format.

package schemas

import "context"

// GenerationRequest carries the inputs for one fix generation call.
type GenerationRequest struct {
	// Action selects the kind of rewrite the generator should perform.
	Action ActionKind
	// Target is the exact text span being replaced.
	Target string
	// Context is the bounded text window surrounding the target occurrence.
	Context string
	// SectionHint names the document section the target sits in, when known.
	SectionHint string
}

// Generator produces replacement text for a targeted document span. The engine
// treats it as an opaque asynchronous call and owns no retry policy beyond the
// scheduler's explicit per-job retry.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// DocumentSource supplies the plain-text form of the host document. The engine
// never writes to the host document; it returns a new text value for the host
// to commit.
type DocumentSource interface {
	PlainText() string
}

// ProgressFunc observes the batch completion stream.
type ProgressFunc func(p Progress)
