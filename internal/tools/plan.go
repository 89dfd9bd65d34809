package tools

import (
	"context"
	"fmt"
	"strings"
)

// Plan item priorities and depths.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"

	DepthSurface  = "surface"
	DepthModerate = "moderate"
	DepthDeep     = "deep"
)

// PlanDraft is one model-proposed plan entry. The plan builder validates,
// deduplicates, and redistributes drafts before they become plan items.
type PlanDraft struct {
	Question string `json:"question" mapstructure:"question"`
	Persona  string `json:"persona" mapstructure:"persona"`
	Topic    string `json:"topic" mapstructure:"topic"`
	Priority string `json:"priority" mapstructure:"priority"`
	Depth    string `json:"depth" mapstructure:"depth"`
}

// DraftPlan asks the model for a personalized question plan. The reply is a
// JSON array; entries with unknown personas or empty topics are dropped by
// the caller.
func (t *Toolbox) DraftPlan(ctx context.Context, company, role, briefContext string, count int) ([]PlanDraft, error) {
	system := "You are an interview strategist. Generate a structured interview plan that is " +
		"PERSONALIZED to the specific candidate. Return ONLY a valid JSON array, no other text."

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Create an interview plan for a %s position at %s.\n\n", role, company)
	fmt.Fprintf(&prompt, "Research brief:\n%s\n\n", orNone(briefContext))
	fmt.Fprintf(&prompt, "Generate exactly %d questions. For each, provide:\n", count)
	prompt.WriteString(`- "question": a SPECIFIC interview question that references the candidate's actual background
- "persona": "HM", "Tech", or "HR"
- "topic": the topic category (unique per question)
- "priority": "high", "medium", or "low"
- "depth": "surface", "moderate", or "deep"

RULES:
1. Questions about identified gaps should mention the gap and ask the candidate to address it.
2. Do NOT generate generic questions like "Tell me about yourself".
3. HM covers business fit, culture, and leadership; Tech covers architecture, coding, and system design; HR covers soft skills, motivation, and expectations.
Return ONLY a JSON array.`)

	raw, err := t.generate(ctx, "plan_generator", system, prompt.String())
	if err != nil {
		return nil, err
	}

	var drafts []PlanDraft
	if err := DecodeLoose(raw, &drafts); err != nil {
		return nil, err
	}

	return drafts, nil
}
