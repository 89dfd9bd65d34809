package tools

import (
	"context"
	"fmt"
	"strings"
)

// ImproveInput carries the weak answer to rewrite.
type ImproveInput struct {
	Question     string
	Answer       string
	BriefContext string
}

// ImproveAnswer generates a coached rewrite of a weak or evasive answer. Both
// scores in the result are model estimates; the rewrite is deliberately never
// fed back through the live analyzer.
func (t *Toolbox) ImproveAnswer(ctx context.Context, in ImproveInput) (*ImprovedAnswer, error) {
	system := "You are an interview coach. Generate an improved model answer. " +
		"Keep it natural and conversational, not robotic. Return ONLY valid JSON."

	var prompt strings.Builder
	prompt.WriteString("Improve this interview answer:\n\n")
	fmt.Fprintf(&prompt, "Question: %s\n", in.Question)
	fmt.Fprintf(&prompt, "Candidate's answer: %s\n", in.Answer)
	fmt.Fprintf(&prompt, "Context (resume/research): %s\n", orNone(in.BriefContext))
	prompt.WriteString(`
Return JSON:
- "improved_answer": the full improved answer text (conversational, 60-90 seconds speaking length)
- "reasoning": list of what was changed and why
- "tips": list of 2-3 actionable tips for the candidate
- "score_before": estimated score of the original answer (0-100)
- "score_after": estimated score of the improved answer (0-100)`)

	raw, err := t.generate(ctx, "answer_improver", system, prompt.String())
	if err != nil {
		return nil, err
	}

	var improved ImprovedAnswer
	if err := DecodeLoose(raw, &improved); err != nil {
		return nil, err
	}

	improved.ScoreBefore = ClampScore(improved.ScoreBefore)
	improved.ProjectedScoreAfter = ClampScore(improved.ProjectedScoreAfter)

	if strings.TrimSpace(improved.ImprovedAnswer) == "" {
		return nil, fmt.Errorf("answer improver returned empty answer")
	}

	return &improved, nil
}
