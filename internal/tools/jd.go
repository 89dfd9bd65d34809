package tools

import (
	"context"
	"fmt"
	"strings"
)

// ParseJobDescription extracts structured requirements, responsibilities,
// qualifications, and keywords from raw job description text.
func (t *Toolbox) ParseJobDescription(ctx context.Context, jdText string) (*JobDescription, error) {
	system := "You are a job description parser. Extract structured information from the JD. Return ONLY valid JSON."

	var prompt strings.Builder
	prompt.WriteString("Parse this job description into structured JSON:\n\n")
	prompt.WriteString(jdText)
	prompt.WriteString(`

Return JSON with these keys:
- "requirements": list of required qualifications/skills
- "responsibilities": list of job responsibilities
- "qualifications": {"required": [...], "preferred": [...]}
- "keywords": list of technical keywords
- "experience_level": "entry" | "mid" | "senior"
- "summary": one-sentence role summary`)

	raw, err := t.generate(ctx, "jd_parser", system, prompt.String())
	if err != nil {
		return nil, err
	}

	var jd JobDescription
	if err := DecodeLoose(raw, &jd); err != nil {
		return nil, err
	}

	return &jd, nil
}

// AnalyzeGaps compares a candidate's resume text against structured job
// requirements, producing matches, gaps with severity, and predicted weak
// points for the interview plan.
func (t *Toolbox) AnalyzeGaps(ctx context.Context, jdContext, resumeText string) (*GapReport, error) {
	system := "You are a resume-JD gap analyzer. Compare the candidate's profile against job requirements. " +
		"Be specific and actionable. Return ONLY valid JSON."

	var prompt strings.Builder
	prompt.WriteString("Compare this candidate's resume against the job requirements:\n\n")
	fmt.Fprintf(&prompt, "JD requirements:\n%s\n\n", jdContext)
	fmt.Fprintf(&prompt, "Candidate resume:\n%s\n", resumeText)
	prompt.WriteString(`
Return JSON with:
- "matches": list of {"requirement": "...", "evidence": "...", "strength": "strong"|"moderate"|"weak"}
- "gaps": list of {"requirement": "...", "severity": "critical"|"moderate"|"minor", "suggestion": "..."}
- "strengths": list of standout candidate strengths not in the JD
- "predicted_weak_points": list of topics the candidate will struggle with in the interview
- "overall_fit_score": 0-100`)

	raw, err := t.generate(ctx, "gap_analyzer", system, prompt.String())
	if err != nil {
		return nil, err
	}

	var report GapReport
	if err := DecodeLoose(raw, &report); err != nil {
		return nil, err
	}

	report.OverallFitScore = ClampScore(report.OverallFitScore)
	return &report, nil
}
