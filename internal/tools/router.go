package tools

import (
	"context"
	"fmt"
	"strings"
)

// RouteInput feeds the advisory routing call.
type RouteInput struct {
	CurrentPersona  string
	Quality         string
	Flags           []string
	RemainingTopics []string
	AnswerSummary   string
}

// RouteNext asks the model for an advisory routing suggestion. The action is
// validated against the closed action set; any other value is a validation
// failure, never guessed at. The orchestrator clamps the suggestion to its
// deterministic policy, so a routing failure here is not fatal.
func (t *Toolbox) RouteNext(ctx context.Context, in RouteInput) (*RoutingResult, error) {
	system := "You are an interview flow controller that makes real interviewers' decisions. " +
		"Real interviewers ALWAYS follow up on weak or incomplete answers. Return ONLY valid JSON."

	var prompt strings.Builder
	prompt.WriteString("Decide the next interview action:\n\n")
	fmt.Fprintf(&prompt, "Current persona: %s\n", in.CurrentPersona)
	fmt.Fprintf(&prompt, "Answer quality: %s\n", in.Quality)
	fmt.Fprintf(&prompt, "Answer summary: %s\n", truncate(in.AnswerSummary, 200))
	fmt.Fprintf(&prompt, "Remaining topics: %s\n", strings.Join(in.RemainingTopics, ", "))
	fmt.Fprintf(&prompt, "Flags: %s\n", strings.Join(in.Flags, "; "))
	prompt.WriteString(`
Return JSON:
- "next_persona": "HM" | "Tech" | "HR"
- "action": "follow_up" | "next_question" | "switch_persona" | "end_interview"
- "reason": brief explanation
- "suggested_topic": narrower topic for a follow-up (if applicable)`)

	raw, err := t.generate(ctx, "persona_router", system, prompt.String())
	if err != nil {
		return nil, err
	}

	var routing RoutingResult
	if err := DecodeLoose(raw, &routing); err != nil {
		return nil, err
	}

	if err := ValidateRouting(&routing); err != nil {
		return nil, err
	}

	return &routing, nil
}

// ValidateRouting enforces the closed action and persona enums on a routing
// result coming from the model boundary.
func ValidateRouting(routing *RoutingResult) error {
	switch routing.Action {
	case ActionFollowUp, ActionNextQuestion, ActionSwitchPersona, ActionEndInterview:
	default:
		return fmt.Errorf("invalid routing action %q", routing.Action)
	}

	if routing.NextPersona != "" && !ValidPersona(routing.NextPersona) {
		return fmt.Errorf("invalid routing persona %q", routing.NextPersona)
	}

	return nil
}
