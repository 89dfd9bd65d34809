package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// HistoryEntry is one prior question/answer pair fed to the consistency check.
type HistoryEntry struct {
	TurnNumber int    `json:"turn_number"`
	Persona    string `json:"persona"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

// CheckConsistency compares the latest answer against all prior turns' claims
// (projects, dates, role scope). It fails open: a model failure yields a
// consistent result with no contradictions, logged, so the interview is never
// blocked by the checker.
func (t *Toolbox) CheckConsistency(ctx context.Context, history []HistoryEntry) *ConsistencyResult {
	if len(history) < 2 {
		return &ConsistencyResult{Consistent: true}
	}

	payload, err := json.Marshal(history)
	if err != nil {
		t.logger.Warn("consistency check skipped", zap.Error(err))
		return &ConsistencyResult{Consistent: true}
	}

	system := "You are a consistency analyzer. Find contradictions across multiple interview answers, " +
		"especially conflicting projects, dates, and role scope. Return ONLY valid JSON."

	var prompt strings.Builder
	prompt.WriteString("Check these interview answers for contradictions. The last entry is the newest answer.\n\n")
	prompt.Write(payload)
	prompt.WriteString(`

Return JSON:
- "contradictions": list of {"first_turn": int, "second_turn": int, "description": "...", "severity": "high"|"medium"|"low"}
- "concerns": list of general concerns about consistency
- "consistent": true/false (overall assessment)`)

	raw, err := t.generate(ctx, "consistency_checker", system, prompt.String())
	if err != nil {
		t.logger.Warn("consistency check unavailable, treating as consistent", zap.Error(err))
		return &ConsistencyResult{Consistent: true}
	}

	var result ConsistencyResult
	if err := DecodeLoose(raw, &result); err != nil {
		t.logger.Warn("consistency response malformed, treating as consistent", zap.Error(err))
		return &ConsistencyResult{Consistent: true}
	}

	for i := range result.Contradictions {
		result.Contradictions[i].Severity = normalizeSeverity(result.Contradictions[i].Severity)
	}

	// The boolean and the list must agree even when the model disagrees with
	// itself.
	if len(result.Contradictions) > 0 {
		result.Consistent = false
	}

	return &result
}

func normalizeSeverity(severity string) string {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case SeverityHigh:
		return SeverityHigh
	case SeverityLow:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// FlagContradiction renders a contradiction as a session flag string.
func FlagContradiction(c Contradiction) string {
	return fmt.Sprintf("inconsistency (%s): %s", c.Severity, c.Description)
}
