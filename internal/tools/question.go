package tools

import (
	"context"
	"fmt"
	"strings"
)

// QuestionInput describes the plan item being rendered into a question.
type QuestionInput struct {
	Topic          string
	Persona        string
	Depth          string
	HistorySummary string
	BriefContext   string
}

// GenerateQuestion renders a plan item into a personalized question in the
// asking persona's style. Callers fall back to the plan item's stored
// question text when the model is unavailable.
func (t *Toolbox) GenerateQuestion(ctx context.Context, in QuestionInput) (*GeneratedQuestion, error) {
	style := personaStyles[in.Persona]
	system := fmt.Sprintf("You are a %s interviewer. Style: %s Generate a single personalized interview question. Return ONLY valid JSON.",
		in.Persona, style)

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Generate an interview question:\n- Topic: %s\n- Depth: %s\n- Persona: %s\n", in.Topic, in.Depth, in.Persona)
	fmt.Fprintf(&prompt, "- Previous questions summary: %s\n", orNone(in.HistorySummary))
	fmt.Fprintf(&prompt, "- Research context: %s\n", orNone(in.BriefContext))
	prompt.WriteString(`
IMPORTANT: The question MUST be personalized to this specific candidate.
Reference their actual experience, projects, skills, or gaps.
Do NOT ask generic textbook questions.

Return JSON:
- "question": the personalized interview question text
- "rationale": why this question matters for THIS candidate`)

	raw, err := t.generate(ctx, "question_generator", system, prompt.String())
	if err != nil {
		return nil, err
	}

	var question GeneratedQuestion
	if err := DecodeLoose(raw, &question); err != nil {
		return nil, err
	}

	if strings.TrimSpace(question.Question) == "" {
		return nil, fmt.Errorf("question generator returned empty question")
	}

	return &question, nil
}

// FollowUpInput describes the weak answer a follow-up should probe.
type FollowUpInput struct {
	Persona       string
	LastQuestion  string
	LastAnswer    string
	Quality       string
	MissingPoints []string
	Flags         []string
	BriefContext  string
}

// GenerateFollowUp produces one ephemeral follow-up question reacting to the
// candidate's previous answer, in the persona's style.
func (t *Toolbox) GenerateFollowUp(ctx context.Context, in FollowUpInput) (string, error) {
	style := personaStyles[in.Persona]
	system := fmt.Sprintf("You are a %s interviewer. Style: %s Return ONLY the follow-up question text, nothing else.",
		in.Persona, style)

	var prompt strings.Builder
	prompt.WriteString("CONTEXT (do NOT repeat this in your question):\n")
	fmt.Fprintf(&prompt, "Previous question: %q\n", truncate(in.LastQuestion, 100))
	fmt.Fprintf(&prompt, "Candidate's answer (%s): %q\n", in.Quality, truncate(in.LastAnswer, 500))
	fmt.Fprintf(&prompt, "Missing points: %s\n", strings.Join(in.MissingPoints, "; "))
	fmt.Fprintf(&prompt, "Flags: %s\n", strings.Join(in.Flags, "; "))
	fmt.Fprintf(&prompt, "Candidate background: %s\n\n", orNone(in.BriefContext))
	prompt.WriteString(`TASK: Generate ONE follow-up question.

RULES:
- Start by referencing something FROM THE CANDIDATE'S ANSWER, not from the original question
- Pick a specific claim, detail, or gap from their answer and dig into it
- Push for concrete examples, numbers, or specifics they didn't provide
- Keep it short: one sentence, max two
- Sound like a real interviewer reacting to what they just heard`)

	raw, err := t.generate(ctx, "follow_up_generator", system, prompt.String())
	if err != nil {
		return "", err
	}

	question := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"`))
	if question == "" {
		return "", fmt.Errorf("follow-up generator returned empty question")
	}

	return question, nil
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
