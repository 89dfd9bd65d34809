package tools

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// AnalyzeAnswerInput carries the context needed to judge one answer.
type AnalyzeAnswerInput struct {
	Question      string
	Answer        string
	Persona       string
	Topic         string
	ResumeContext string
}

// AnalyzeAnswer grades an answer into a validated AnswerAnalysis. Sub-scores
// are clamped to [0,100], the composite is computed locally from the persona's
// weights, and the quality class is derived from the documented thresholds.
// The model call is the only failure source; on failure the analysis degrades
// to a conservative default so the interview never stalls.
func (t *Toolbox) AnalyzeAnswer(ctx context.Context, in AnalyzeAnswerInput) *AnswerAnalysis {
	system := "You are a strict interview answer evaluator. Analyze the answer objectively. " +
		"Be honest about quality -- most interview answers are NOT strong. Return ONLY valid JSON."

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Analyze this interview answer:\n\n")
	fmt.Fprintf(&prompt, "Question (%s, topic %q): %s\n", in.Persona, in.Topic, in.Question)
	fmt.Fprintf(&prompt, "Answer: %s\n", in.Answer)
	if in.ResumeContext != "" {
		fmt.Fprintf(&prompt, "Candidate background: %s\n", in.ResumeContext)
	}
	prompt.WriteString(`
SCORING RUBRIC (follow strictly):
- Specific examples with numbers and metrics score high on specificity.
- Hedging language ("I think", "probably", "maybe") lowers confidence.
- An answer shorter than 50 words rarely scores above 60 on any axis.
- non_answer is true ONLY when the answer redirects, refuses, or answers a
  different question entirely.

Return JSON:
- "confidence_score": 0-100
- "specificity_score": 0-100
- "star_score": 0-100 (how well it follows the STAR framework)
- "non_answer": true/false
- "key_points_covered": list of good points mentioned
- "missing_points": list of important things not mentioned
- "flags": list of concerns (e.g., "vague", "too_short", "no_examples", "inconsistent", "avoided_topic", "no_answer")
- "summary": one-sentence assessment`)

	raw, err := t.generate(ctx, "answer_analyzer", system, prompt.String())
	if err != nil {
		t.logger.Warn("answer analysis unavailable, using conservative default", zap.Error(err))
		return fallbackAnalysis()
	}

	var analysis AnswerAnalysis
	if err := DecodeLoose(raw, &analysis); err != nil {
		t.logger.Warn("answer analysis response malformed, using conservative default", zap.Error(err))
		return fallbackAnalysis()
	}

	finalizeAnalysis(&analysis, in.Persona)
	return &analysis
}

// fallbackAnalysis is the conservative default used when the model is
// unavailable: the interview proceeds and the gap is flagged for the report.
func fallbackAnalysis() *AnswerAnalysis {
	analysis := &AnswerAnalysis{
		ConfidenceScore:  50,
		SpecificityScore: 50,
		STARScore:        50,
		Flags:            []string{FlagAnalysisUnavailable},
		Summary:          "Automatic analysis was unavailable for this answer.",
	}
	analysis.Composite = 50
	analysis.Quality = QualityAdequate
	return analysis
}

// finalizeAnalysis clamps sub-scores and derives composite and quality. The
// model's own quality label, if any, is discarded.
func finalizeAnalysis(analysis *AnswerAnalysis, persona string) {
	analysis.ConfidenceScore = ClampScore(analysis.ConfidenceScore)
	analysis.SpecificityScore = ClampScore(analysis.SpecificityScore)
	analysis.STARScore = ClampScore(analysis.STARScore)

	weights := WeightsForPersona(persona)
	analysis.Composite = weights.Composite(
		analysis.ConfidenceScore,
		analysis.SpecificityScore,
		analysis.STARScore,
	)
	analysis.Quality = ClassifyQuality(analysis.Composite, analysis.NonAnswer)

	cleaned := analysis.Flags[:0]
	for _, flag := range analysis.Flags {
		flag = strings.TrimSpace(flag)
		if flag != "" {
			cleaned = append(cleaned, flag)
		}
	}
	analysis.Flags = cleaned
}
