package tools

import (
	"context"
	"fmt"
	"strings"
)

// DetectSTAR breaks an answer into its STAR framework components. The score
// is clamped to [0,100].
func (t *Toolbox) DetectSTAR(ctx context.Context, answer string) (*STARResult, error) {
	system := "You are a STAR framework analyzer. Identify STAR components in the answer. Return ONLY valid JSON."

	var prompt strings.Builder
	prompt.WriteString("Analyze this answer for STAR framework structure:\n\n")
	fmt.Fprintf(&prompt, "Answer: %s\n", answer)
	prompt.WriteString(`
Return JSON:
- "situation": {"present": true/false, "text": extracted text or ""}
- "task": {"present": true/false, "text": extracted text or ""}
- "action": {"present": true/false, "text": extracted text or ""}
- "result": {"present": true/false, "text": extracted text or ""}
- "score": 0-100 (overall STAR completeness)
- "feedback": one-sentence improvement suggestion`)

	raw, err := t.generate(ctx, "star_detector", system, prompt.String())
	if err != nil {
		return nil, err
	}

	var star STARResult
	if err := DecodeLoose(raw, &star); err != nil {
		return nil, err
	}

	star.Score = ClampScore(star.Score)
	return &star, nil
}
