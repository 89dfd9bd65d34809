package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mockview/mockview/internal/tools"
)

// ResumeAnalyzer turns extracted resume text into a ResumeProfile. Text
// extraction from PDF and similar formats is an external collaborator's job;
// this analyzer only consumes plain text.
type ResumeAnalyzer struct {
	toolbox *tools.Toolbox
	logger  *zap.Logger
}

// NewResumeAnalyzer creates a ResumeAnalyzer around the shared toolbox.
func NewResumeAnalyzer(toolbox *tools.Toolbox, logger *zap.Logger) *ResumeAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResumeAnalyzer{toolbox: toolbox, logger: logger}
}

// Analyze compares resume text against the research brief and produces the
// candidate's profile with identified gaps. A parsed job description, when
// available, sharpens the gap analysis; nil means none was provided.
func (a *ResumeAnalyzer) Analyze(ctx context.Context, resumeText string, brief *Brief, jd *tools.JobDescription) (*ResumeProfile, error) {
	resumeText = strings.TrimSpace(resumeText)
	if resumeText == "" {
		return nil, errors.New("resume text is empty")
	}

	jdContext := brief.Context(3000)
	if jd != nil {
		if data, err := json.Marshal(jd); err == nil {
			jdContext += "\nJob description:\n" + string(data)
		}
	}

	report, err := a.toolbox.AnalyzeGaps(ctx, jdContext, resumeText)
	if err != nil {
		return nil, fmt.Errorf("analyze resume gaps: %w", err)
	}

	profile := &ResumeProfile{
		Gaps:                report.Gaps,
		Strengths:           report.Strengths,
		PredictedWeakPoints: report.PredictedWeakPoints,
		FitScore:            report.OverallFitScore,
	}

	for _, match := range report.Matches {
		if strings.TrimSpace(match.Requirement) != "" {
			profile.Skills = append(profile.Skills, match.Requirement)
		}
	}

	a.logger.Info("resume analyzed",
		zap.Int("skills", len(profile.Skills)),
		zap.Int("gaps", len(profile.Gaps)),
		zap.Int("fit_score", profile.FitScore),
	)

	return profile, nil
}
