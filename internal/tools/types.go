package tools

// Answer quality classes, ordered from best to worst.
const (
	QualityStrong   = "strong"
	QualityAdequate = "adequate"
	QualityWeak     = "weak"
	QualityEvasive  = "evasive"
)

// Routing actions. Any model output outside this set is a validation failure.
const (
	ActionFollowUp      = "follow_up"
	ActionNextQuestion  = "next_question"
	ActionSwitchPersona = "switch_persona"
	ActionEndInterview  = "end_interview"
)

// Contradiction severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Quality classification thresholds over the composite score.
const (
	strongThreshold   = 75
	adequateThreshold = 50
	weakThreshold     = 25
)

// FlagAnalysisUnavailable marks turns whose analysis fell back to the
// conservative default after the model call failed.
const FlagAnalysisUnavailable = "analysis_unavailable"

// criticalFlags force a follow-up regardless of the quality class.
var criticalFlags = map[string]bool{
	"avoided_topic": true,
	"inconsistent":  true,
	"no_answer":     true,
}

// AnswerAnalysis is the structured verdict on a single answer. Scores are
// integers in [0,100]; Composite is computed locally from the three
// sub-scores and never supplied by the model.
type AnswerAnalysis struct {
	Quality          string   `json:"quality" mapstructure:"quality"`
	ConfidenceScore  int      `json:"confidence_score" mapstructure:"confidence_score"`
	SpecificityScore int      `json:"specificity_score" mapstructure:"specificity_score"`
	STARScore        int      `json:"star_score" mapstructure:"star_score"`
	Composite        int      `json:"composite" mapstructure:"-"`
	KeyPointsCovered []string `json:"key_points_covered" mapstructure:"key_points_covered"`
	MissingPoints    []string `json:"missing_points" mapstructure:"missing_points"`
	Flags            []string `json:"flags" mapstructure:"flags"`
	Summary          string   `json:"summary" mapstructure:"summary"`
	NonAnswer        bool     `json:"non_answer" mapstructure:"non_answer"`
}

// HasCriticalFlag reports whether any raised flag is in the critical set.
func (a *AnswerAnalysis) HasCriticalFlag() bool {
	for _, flag := range a.Flags {
		if criticalFlags[flag] {
			return true
		}
	}
	return false
}

// Contradiction describes a conflict between two answers in the history.
type Contradiction struct {
	FirstTurn   int    `json:"first_turn" mapstructure:"first_turn"`
	SecondTurn  int    `json:"second_turn" mapstructure:"second_turn"`
	Description string `json:"description" mapstructure:"description"`
	Severity    string `json:"severity" mapstructure:"severity"`
}

// ConsistencyResult aggregates contradictions found against prior turns.
type ConsistencyResult struct {
	Consistent     bool            `json:"consistent" mapstructure:"consistent"`
	Contradictions []Contradiction `json:"contradictions" mapstructure:"contradictions"`
	Concerns       []string        `json:"concerns" mapstructure:"concerns"`
}

// HasHighSeverity reports whether any contradiction is rated high.
func (c *ConsistencyResult) HasHighSeverity() bool {
	for _, contradiction := range c.Contradictions {
		if contradiction.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

// RoutingResult is the model's advisory routing suggestion. The orchestrator
// clamps it to deterministic policy before acting on it.
type RoutingResult struct {
	NextPersona    string `json:"next_persona" mapstructure:"next_persona"`
	Action         string `json:"action" mapstructure:"action"`
	Reason         string `json:"reason" mapstructure:"reason"`
	SuggestedTopic string `json:"suggested_topic,omitempty" mapstructure:"suggested_topic"`
}

// HintData holds tiered hints for the current question. Bullets and
// PersonalHooks are tier 1, Avoid is tier 2, ExampleAnswer is tier 3 and is
// only disclosed through an explicit reveal.
type HintData struct {
	Bullets       []string `json:"bullets" mapstructure:"bullets"`
	PersonalHooks []string `json:"personal_hooks" mapstructure:"personal_hooks"`
	Avoid         []string `json:"avoid" mapstructure:"avoid"`
	ExampleAnswer string   `json:"example_answer,omitempty" mapstructure:"example_answer"`
}

// GeneratedQuestion is the rendered question for one plan item.
type GeneratedQuestion struct {
	Question  string `json:"question" mapstructure:"question"`
	Rationale string `json:"rationale" mapstructure:"rationale"`
}

// STARComponent marks the presence of one STAR element in an answer.
type STARComponent struct {
	Present bool   `json:"present" mapstructure:"present"`
	Text    string `json:"text" mapstructure:"text"`
}

// STARResult is the STAR framework breakdown of an answer.
type STARResult struct {
	Situation STARComponent `json:"situation" mapstructure:"situation"`
	Task      STARComponent `json:"task" mapstructure:"task"`
	Action    STARComponent `json:"action" mapstructure:"action"`
	Result    STARComponent `json:"result" mapstructure:"result"`
	Score     int           `json:"score" mapstructure:"score"`
	Feedback  string        `json:"feedback" mapstructure:"feedback"`
}

// ImprovedAnswer is a coached rewrite of a weak answer. ProjectedScoreAfter
// is the model's estimate for the rewrite; it is never produced by re-running
// the analyzer and must not be compared with measured scores.
type ImprovedAnswer struct {
	ImprovedAnswer      string   `json:"improved_answer" mapstructure:"improved_answer"`
	Reasoning           []string `json:"reasoning" mapstructure:"reasoning"`
	Tips                []string `json:"tips" mapstructure:"tips"`
	ScoreBefore         int      `json:"score_before" mapstructure:"score_before"`
	ProjectedScoreAfter int      `json:"projected_score_after" mapstructure:"score_after"`
}

// JobDescription is the structured form of a raw job description.
type JobDescription struct {
	Requirements     []string       `json:"requirements" mapstructure:"requirements"`
	Responsibilities []string       `json:"responsibilities" mapstructure:"responsibilities"`
	Qualifications   Qualifications `json:"qualifications" mapstructure:"qualifications"`
	Keywords         []string       `json:"keywords" mapstructure:"keywords"`
	ExperienceLevel  string         `json:"experience_level" mapstructure:"experience_level"`
	Summary          string         `json:"summary" mapstructure:"summary"`
}

// Qualifications splits requirements into required and preferred.
type Qualifications struct {
	Required  []string `json:"required" mapstructure:"required"`
	Preferred []string `json:"preferred" mapstructure:"preferred"`
}

// GapMatch is one requirement the candidate satisfies.
type GapMatch struct {
	Requirement string `json:"requirement" mapstructure:"requirement"`
	Evidence    string `json:"evidence" mapstructure:"evidence"`
	Strength    string `json:"strength" mapstructure:"strength"`
}

// Gap is one requirement the candidate does not clearly satisfy.
type Gap struct {
	Requirement string `json:"requirement" mapstructure:"requirement"`
	Severity    string `json:"severity" mapstructure:"severity"`
	Suggestion  string `json:"suggestion" mapstructure:"suggestion"`
}

// GapReport compares a resume against structured job requirements.
type GapReport struct {
	Matches             []GapMatch `json:"matches" mapstructure:"matches"`
	Gaps                []Gap      `json:"gaps" mapstructure:"gaps"`
	Strengths           []string   `json:"strengths" mapstructure:"strengths"`
	PredictedWeakPoints []string   `json:"predicted_weak_points" mapstructure:"predicted_weak_points"`
	OverallFitScore     int        `json:"overall_fit_score" mapstructure:"overall_fit_score"`
}

// ClampScore limits a score to the [0,100] range.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// CompositeWeights are the per-sub-score weights used to combine confidence,
// specificity, and STAR scores into the composite.
type CompositeWeights struct {
	Confidence  float64
	Specificity float64
	STAR        float64
}

// BehavioralWeights weight STAR highest; used for HM and HR topics.
var BehavioralWeights = CompositeWeights{Confidence: 0.25, Specificity: 0.30, STAR: 0.45}

// TechnicalWeights weight STAR lowest; used for Tech topics.
var TechnicalWeights = CompositeWeights{Confidence: 0.40, Specificity: 0.40, STAR: 0.20}

// Composite computes the weighted composite score, rounded half-up.
func (w CompositeWeights) Composite(confidence, specificity, star int) int {
	sum := w.Confidence + w.Specificity + w.STAR
	if sum <= 0 {
		return 0
	}
	value := (w.Confidence*float64(confidence) + w.Specificity*float64(specificity) + w.STAR*float64(star)) / sum
	return ClampScore(int(value + 0.5))
}

// ClassifyQuality maps a composite score to a quality class. An explicit
// non-answer is always evasive regardless of the composite.
func ClassifyQuality(composite int, nonAnswer bool) string {
	switch {
	case nonAnswer:
		return QualityEvasive
	case composite >= strongThreshold:
		return QualityStrong
	case composite >= adequateThreshold:
		return QualityAdequate
	case composite >= weakThreshold:
		return QualityWeak
	default:
		return QualityEvasive
	}
}
