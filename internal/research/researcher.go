package research

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mockview/mockview/internal/ai"
	"github.com/mockview/mockview/internal/tools"
)

// ErrBriefUnavailable is returned when neither a preset nor live research can
// produce a brief for the requested company/role pair.
var ErrBriefUnavailable = errors.New("research brief unavailable")

// Researcher produces a Brief for a company/role pair.
type Researcher interface {
	FetchBrief(ctx context.Context, company, role string) (*Brief, error)
}

// LiveResearcher builds a brief from a model call when no preset exists. Web
// search and scraping stay behind external collaborators; the model's own
// knowledge of the company and role is the fallback source here.
type LiveResearcher struct {
	gen    ai.Generator
	logger *zap.Logger
}

// NewLiveResearcher creates a LiveResearcher around the given generator.
func NewLiveResearcher(gen ai.Generator, logger *zap.Logger) *LiveResearcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveResearcher{gen: gen, logger: logger}
}

// FetchBrief produces a research brief for the company/role pair.
func (r *LiveResearcher) FetchBrief(ctx context.Context, company, role string) (*Brief, error) {
	company = strings.TrimSpace(company)
	role = strings.TrimSpace(role)
	if company == "" || role == "" {
		return nil, errors.New("company and role are required")
	}

	system := "You are a research assistant preparing a candidate for a job interview. " +
		"Summarize what is typically expected for the role at the company. Return ONLY valid JSON."

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Build an interview research brief for a %s position at %s.\n", role, company)
	prompt.WriteString(`
Return JSON with:
- "summary": one-paragraph description of the role
- "competencies": 5-8 business/culture/leadership competencies the hiring manager probes
- "technical_skills": 5-10 technical skills the technical interviewer probes
- "soft_skills": 4-6 soft skills HR probes
- "style_notes": 3-5 notes on the company's interview style
- "keywords": 5-15 technical keywords for this role
- "gap_hints": 2-4 topics candidates for this role commonly struggle with`)

	raw, err := r.gen.GenerateContent(ctx, system, prompt.String())
	if err != nil {
		r.logger.Warn("live research failed",
			zap.String("company", company),
			zap.String("role", role),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s", ErrBriefUnavailable, err)
	}

	var brief Brief
	if err := decodeBrief(raw, &brief); err != nil {
		r.logger.Warn("live research response malformed", zap.Error(err))
		return nil, fmt.Errorf("%w: %s", ErrBriefUnavailable, err)
	}

	brief.Company = company
	brief.Role = role

	if len(brief.Competencies) == 0 && len(brief.TechnicalSkills) == 0 && len(brief.SoftSkills) == 0 {
		return nil, fmt.Errorf("%w: empty brief for %s / %s", ErrBriefUnavailable, company, role)
	}

	return &brief, nil
}

func decodeBrief(raw string, brief *Brief) error {
	return tools.DecodeLoose(raw, brief)
}
