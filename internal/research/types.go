package research

import (
	"encoding/json"
	"strings"

	"github.com/mockview/mockview/internal/tools"
)

// Brief is the research output for one company/role pair. It is immutable
// once produced; the engine builds the question plan from it.
type Brief struct {
	Company         string   `json:"company" yaml:"company" mapstructure:"company"`
	Role            string   `json:"role" yaml:"role" mapstructure:"role"`
	Summary         string   `json:"summary" yaml:"summary" mapstructure:"summary"`
	Competencies    []string `json:"competencies" yaml:"competencies" mapstructure:"competencies"`
	TechnicalSkills []string `json:"technical_skills" yaml:"technical_skills" mapstructure:"technical_skills"`
	SoftSkills      []string `json:"soft_skills" yaml:"soft_skills" mapstructure:"soft_skills"`
	StyleNotes      []string `json:"style_notes" yaml:"style_notes" mapstructure:"style_notes"`
	Keywords        []string `json:"keywords" yaml:"keywords" mapstructure:"keywords"`
	GapHints        []string `json:"gap_hints,omitempty" yaml:"gap_hints,omitempty" mapstructure:"gap_hints"`
}

// Context renders the brief as a compact JSON context block for prompts,
// truncated to limit runes.
func (b *Brief) Context(limit int) string {
	if b == nil {
		return ""
	}
	data, err := json.Marshal(b)
	if err != nil {
		return ""
	}
	s := string(data)
	runes := []rune(s)
	if limit > 0 && len(runes) > limit {
		return string(runes[:limit])
	}
	return s
}

// Project is a notable project extracted from the resume.
type Project struct {
	Name         string   `json:"name" mapstructure:"name"`
	Summary      string   `json:"summary" mapstructure:"summary"`
	Technologies []string `json:"technologies" mapstructure:"technologies"`
}

// ResumeProfile is the structured view of the candidate's resume relative to
// the target role. Immutable once produced.
type ResumeProfile struct {
	Skills              []string    `json:"skills" mapstructure:"skills"`
	Projects            []Project   `json:"projects" mapstructure:"projects"`
	Gaps                []tools.Gap `json:"gaps" mapstructure:"gaps"`
	Strengths           []string    `json:"strengths" mapstructure:"strengths"`
	PredictedWeakPoints []string    `json:"predicted_weak_points" mapstructure:"predicted_weak_points"`
	FitScore            int         `json:"fit_score" mapstructure:"fit_score"`
}

// Context renders the profile as a compact JSON context block for prompts.
func (p *ResumeProfile) Context(limit int) string {
	if p == nil {
		return ""
	}
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	s := string(data)
	runes := []rune(s)
	if limit > 0 && len(runes) > limit {
		return string(runes[:limit])
	}
	return s
}

// GapTopics lists gap requirements as interview topics, highest severity
// first.
func (p *ResumeProfile) GapTopics() []string {
	if p == nil {
		return nil
	}

	bySeverity := func(severity string) []string {
		var topics []string
		for _, gap := range p.Gaps {
			if strings.EqualFold(gap.Severity, severity) && strings.TrimSpace(gap.Requirement) != "" {
				topics = append(topics, gap.Requirement)
			}
		}
		return topics
	}

	topics := bySeverity("critical")
	topics = append(topics, bySeverity("moderate")...)
	topics = append(topics, bySeverity("minor")...)
	return topics
}
