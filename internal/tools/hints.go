package tools

import (
	"context"
	"fmt"
	"strings"
)

// HintInput describes the question hints are generated for.
type HintInput struct {
	Question      string
	Persona       string
	ResumeContext string
	BriefContext  string
}

// GenerateHints produces the full tiered hint set for one question. The
// caller controls disclosure: tiers 1 and 2 (bullets, personal hooks, avoid
// list) may be shown on demand, while the tier-3 example answer requires an
// explicit reveal.
func (t *Toolbox) GenerateHints(ctx context.Context, in HintInput) (*HintData, error) {
	system := "You are an interview coach. Generate helpful hints for the candidate. " +
		"Include both general key points AND personalized hooks from their resume. Return ONLY valid JSON."

	var prompt strings.Builder
	prompt.WriteString("Generate hints for this interview question:\n\n")
	fmt.Fprintf(&prompt, "Question: %s\n", in.Question)
	fmt.Fprintf(&prompt, "Persona: %s\n", in.Persona)
	fmt.Fprintf(&prompt, "Candidate resume: %s\n", orNone(in.ResumeContext))
	fmt.Fprintf(&prompt, "Research brief: %s\n", orNone(in.BriefContext))
	prompt.WriteString(`
Return JSON:
- "bullets": list of 3-5 key points to cover in the answer
- "personal_hooks": list of 1-3 specific experiences from the candidate's resume they should mention
- "avoid": list of 1-2 things NOT to say
- "example_answer": a full model answer (60-90 seconds speaking length, conversational tone, STAR framework where applicable)`)

	raw, err := t.generate(ctx, "hint_generator", system, prompt.String())
	if err != nil {
		return nil, err
	}

	var hints HintData
	if err := DecodeLoose(raw, &hints); err != nil {
		return nil, err
	}

	return &hints, nil
}

// WithoutExampleAnswer returns a copy limited to tiers 1 and 2.
func (h *HintData) WithoutExampleAnswer() *HintData {
	if h == nil {
		return nil
	}
	return &HintData{
		Bullets:       h.Bullets,
		PersonalHooks: h.PersonalHooks,
		Avoid:         h.Avoid,
	}
}
