// File: internal/llmclient/prompts.go
// Description: Prompt construction for the fix actions. The model must return
// only the replacement text, which then substitutes the target span verbatim.

package llmclient

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/docmend/api/schemas"
)

const basePromptRules = `You are an expert document editor. You will be given a target text span from a document, the surrounding context, and optionally the section it appears in.
Respond with ONLY the replacement text for the target span. No explanations, no quotes, no markdown fences. The replacement must read naturally in place of the target.`

var actionInstructions = map[schemas.ActionKind]string{
	schemas.ActionFixIssue: `Rewrite the target span to resolve the described problem while preserving the document's tone and meaning.`,
	schemas.ActionFixHallucination: `The target span makes a claim that is not supported by the document. Replace it with accurate, verifiable wording grounded in the surrounding context, or soften it to remove the unsupported claim.`,
	schemas.ActionFixCompliance: `The target span has a regulatory-compliance gap. Replace it with wording that satisfies standard compliance requirements for this kind of document, keeping it precise and unambiguous.`,
	schemas.ActionFixVagueLanguage: `The target span is vague. Replace it with specific, concrete wording that commits to measurable terms wherever the context allows.`,
}

// systemPrompt returns the system instruction for one action.
func systemPrompt(action schemas.ActionKind) string {
	instruction, ok := actionInstructions[action]
	if !ok {
		instruction = actionInstructions[schemas.ActionFixIssue]
	}
	return basePromptRules + "\n\n" + instruction
}

// userPrompt renders the generation inputs into the user message.
func userPrompt(req schemas.GenerationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target span:\n%s\n\n", req.Target)
	fmt.Fprintf(&b, "Surrounding context:\n%s\n", req.Context)
	if req.SectionHint != "" {
		fmt.Fprintf(&b, "\nDocument section: %s\n", req.SectionHint)
	}
	return b.String()
}

// cleanReplacement strips the wrapping models habitually add despite
// instructions: markdown fences, surrounding quotes, stray whitespace.
func cleanReplacement(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if idx := strings.Index(s, "\n"); idx >= 0 && !strings.ContainsAny(s[:idx], " \t") {
			// Drop a language tag on the opening fence.
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s
}
