package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mockview/mockview/internal/logger"
	"github.com/mockview/mockview/internal/tools"
)

// EvaluationReport is the terminal synthesis over the whole turn history.
// Created once per session and cached; re-evaluation returns the cached
// report byte for byte.
type EvaluationReport struct {
	SessionID     string                   `json:"session_id"`
	Company       string                   `json:"company"`
	Role          string                   `json:"role"`
	OverallScore  int                      `json:"overall_score"`
	PersonaScores map[string]int           `json:"persona_scores"`
	Strengths     []string                 `json:"strengths"`
	Weaknesses    []string                 `json:"weaknesses"`
	PerQuestion   []QuestionReview         `json:"per_question"`
	Consistency   *tools.ConsistencyResult `json:"consistency"`
	HintAnalysis  HintAnalysis             `json:"hint_analysis"`
	VoiceSummary  VoiceSummary             `json:"voice_summary"`
	ModelAnswers  []ModelAnswer            `json:"model_answers"`
	ActionPlan    []string                 `json:"action_plan"`
	Flags         []string                 `json:"flags,omitempty"`
	GeneratedAt   time.Time                `json:"generated_at"`
}

// QuestionReview is the per-turn record in the report.
type QuestionReview struct {
	TurnNumber       int               `json:"turn_number"`
	Persona          string            `json:"persona"`
	Topic            string            `json:"topic"`
	Question         string            `json:"question"`
	Quality          string            `json:"quality"`
	Composite        int               `json:"composite"`
	ConfidenceScore  int               `json:"confidence_score"`
	SpecificityScore int               `json:"specificity_score"`
	STAR             *tools.STARResult `json:"star"`
	Flags            []string          `json:"flags,omitempty"`
	FollowUp         bool              `json:"follow_up,omitempty"`
	HintUsed         bool              `json:"hint_used"`
	Summary          string            `json:"summary,omitempty"`
}

// HintBreakdown buckets turns by hint usage and resulting quality.
type HintBreakdown struct {
	NoHintNeeded         int `json:"no_hint_needed"`
	HintUsedAnsweredWell int `json:"hint_used_answered_well"`
	HintUsedStillWeak    int `json:"hint_used_still_weak"`
}

// HintAnalysis summarizes hint reliance. HintsUsed plus HintsNotUsed always
// equals TotalQuestions.
type HintAnalysis struct {
	TotalQuestions int           `json:"total_questions"`
	HintsUsed      int           `json:"hints_used"`
	HintsNotUsed   int           `json:"hints_not_used"`
	Breakdown      HintBreakdown `json:"breakdown"`
	UsageRate      float64       `json:"hint_usage_rate"`
}

// ShortestAnswer identifies the briefest spoken answer.
type ShortestAnswer struct {
	TurnNumber int     `json:"turn_number"`
	Question   string  `json:"question"`
	DurationS  float64 `json:"duration_s"`
}

// VoiceSummary aggregates voice metrics across the turns that carried them.
type VoiceSummary struct {
	HasVoiceData        bool            `json:"has_voice_data"`
	TurnsWithVoice      int             `json:"turns_with_voice,omitempty"`
	AvgResponseLatencyS float64         `json:"avg_response_latency_s,omitempty"`
	AvgAnswerDurationS  float64         `json:"avg_answer_duration_s,omitempty"`
	AvgWordCount        float64         `json:"avg_word_count,omitempty"`
	TotalFillerCount    int             `json:"total_filler_count,omitempty"`
	AvgFillerRatePerMin float64         `json:"avg_filler_rate_per_min,omitempty"`
	ShortestAnswer      *ShortestAnswer `json:"shortest_answer,omitempty"`
}

// ModelAnswer is a coached rewrite for a weak or evasive turn. The after
// score is the model's projection for its own rewrite, never a measured
// analyzer score.
type ModelAnswer struct {
	TurnNumber          int      `json:"turn_number"`
	Question            string   `json:"question"`
	OriginalQuality     string   `json:"original_quality"`
	ImprovedAnswer      string   `json:"improved_answer"`
	Reasoning           []string `json:"reasoning,omitempty"`
	Tips                []string `json:"tips,omitempty"`
	ScoreBefore         int      `json:"score_before"`
	ProjectedScoreAfter int      `json:"projected_score_after"`
}

const topListSize = 5

// Evaluate synthesizes the final report. It is idempotent get-or-compute: the
// first call computes and caches, every later call returns the cached report.
// The session lock is held for the whole computation so concurrent retries
// wait and then observe the cache instead of recomputing.
func (e *Engine) Evaluate(ctx context.Context, sessionID string) (*EvaluationReport, error) {
	session, err := e.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.report != nil {
		return session.report, nil
	}
	if session.inFlight {
		return nil, fmt.Errorf("%w: previous turn is still being processed", ErrInvalidSessionState)
	}
	if len(session.Turns) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptySession, session.ID)
	}

	if session.Phase != PhaseEvaluating {
		e.setPhase(session, PhaseEvaluating)
	}

	report := e.buildReport(ctx, session)

	e.setPhase(session, PhaseDone)
	session.report = report
	if data, err := json.MarshalIndent(report, "", "  "); err == nil {
		session.reportJSON = data
	}

	if e.archive != nil {
		if err := e.archive.SaveReport(session.ID, report); err != nil {
			e.logger.Warn("report archive failed",
				zap.String(logger.FieldSession, session.ID),
				zap.Error(err),
			)
		}
	}

	e.logger.Info("evaluation complete",
		zap.String(logger.FieldSession, session.ID),
		zap.Int("overall_score", report.OverallScore),
		zap.Int("turns", len(report.PerQuestion)),
	)

	return report, nil
}

// ReportJSON returns the cached JSON rendering of the report, computing the
// report first if needed.
func (e *Engine) ReportJSON(ctx context.Context, sessionID string) ([]byte, error) {
	if _, err := e.Evaluate(ctx, sessionID); err != nil {
		return nil, err
	}

	session, err := e.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	return session.reportJSON, nil
}

func (e *Engine) buildReport(ctx context.Context, session *Session) *EvaluationReport {
	report := &EvaluationReport{
		SessionID:     session.ID,
		Company:       session.Company,
		Role:          session.Role,
		PersonaScores: make(map[string]int),
		Flags:         append([]string(nil), session.flags...),
		GeneratedAt:   time.Now().UTC(),
	}

	compositeSum := 0
	personaSums := make(map[string]int)
	personaCounts := make(map[string]int)
	strengthCounter := newFrequencyCounter()
	weaknessCounter := newFrequencyCounter()

	for _, turn := range session.Turns {
		analysis := turn.Analysis
		compositeSum += analysis.Composite
		personaSums[turn.Persona] += analysis.Composite
		personaCounts[turn.Persona]++

		strengthCounter.addAll(analysis.KeyPointsCovered)
		weaknessCounter.addAll(analysis.MissingPoints)
		weaknessCounter.addAll(analysis.Flags)

		report.PerQuestion = append(report.PerQuestion, QuestionReview{
			TurnNumber:       turn.TurnNumber,
			Persona:          turn.Persona,
			Topic:            turn.Topic,
			Question:         turn.Question,
			Quality:          analysis.Quality,
			Composite:        analysis.Composite,
			ConfidenceScore:  analysis.ConfidenceScore,
			SpecificityScore: analysis.SpecificityScore,
			STAR:             e.starBreakdown(ctx, session.ID, turn),
			Flags:            analysis.Flags,
			FollowUp:         turn.FollowUp,
			HintUsed:         turn.HintUsed,
			Summary:          analysis.Summary,
		})
	}

	report.OverallScore = roundAverage(compositeSum, len(session.Turns))
	for persona, sum := range personaSums {
		report.PersonaScores[persona] = roundAverage(sum, personaCounts[persona])
	}

	report.Strengths = strengthCounter.top(topListSize)
	report.Weaknesses = weaknessCounter.top(topListSize)
	report.Consistency = e.sessionConsistency(ctx, session)
	report.HintAnalysis = buildHintAnalysis(session.Turns)
	report.VoiceSummary = buildVoiceSummary(session.Turns)
	report.ModelAnswers = e.buildModelAnswers(ctx, session)
	report.ActionPlan = buildActionPlan(report.Weaknesses, report.ModelAnswers, report.PerQuestion)

	return report
}

// starBreakdown runs the STAR detector on one answer, degrading to the
// analyzer's STAR sub-score when the detector is unavailable.
func (e *Engine) starBreakdown(ctx context.Context, sessionID string, turn *Turn) *tools.STARResult {
	star, err := e.toolbox.DetectSTAR(ctx, turn.Answer)
	if err != nil {
		e.logger.Warn("star detection unavailable",
			zap.String(logger.FieldSession, sessionID),
			zap.Int("turn_number", turn.TurnNumber),
			zap.Error(err),
		)
		return &tools.STARResult{Score: turn.Analysis.STARScore}
	}
	return star
}

// sessionConsistency runs a final full-history check and merges in the
// contradictions already recorded per turn, deduplicated. Fail-open as
// always: with no checker result the recorded contradictions alone decide.
func (e *Engine) sessionConsistency(ctx context.Context, session *Session) *tools.ConsistencyResult {
	final := e.toolbox.CheckConsistency(ctx, session.history("", "", 0))

	seen := make(map[string]bool)
	var merged []tools.Contradiction
	add := func(c tools.Contradiction) {
		key := fmt.Sprintf("%d|%d|%s", c.FirstTurn, c.SecondTurn, strings.ToLower(c.Description))
		if seen[key] {
			return
		}
		seen[key] = true
		merged = append(merged, c)
	}

	for _, c := range final.Contradictions {
		add(c)
	}
	for _, turn := range session.Turns {
		if turn.Consistency == nil {
			continue
		}
		for _, c := range turn.Consistency.Contradictions {
			add(c)
		}
	}

	return &tools.ConsistencyResult{
		Consistent:     len(merged) == 0,
		Contradictions: merged,
		Concerns:       final.Concerns,
	}
}

func buildHintAnalysis(turns []*Turn) HintAnalysis {
	analysis := HintAnalysis{TotalQuestions: len(turns)}

	for _, turn := range turns {
		answeredWell := turn.Analysis.Quality == tools.QualityStrong || turn.Analysis.Quality == tools.QualityAdequate
		if turn.HintUsed {
			analysis.HintsUsed++
			if answeredWell {
				analysis.Breakdown.HintUsedAnsweredWell++
			} else {
				analysis.Breakdown.HintUsedStillWeak++
			}
		} else {
			analysis.HintsNotUsed++
			if answeredWell {
				analysis.Breakdown.NoHintNeeded++
			}
		}
	}

	if analysis.TotalQuestions > 0 {
		analysis.UsageRate = math.Round(float64(analysis.HintsUsed)/float64(analysis.TotalQuestions)*100) / 100
	}

	return analysis
}

func buildVoiceSummary(turns []*Turn) VoiceSummary {
	var summary VoiceSummary
	var latencySum, durationSum, rateSum, wordSum float64
	var shortest *ShortestAnswer

	for _, turn := range turns {
		metrics := turn.VoiceMetrics
		if metrics == nil {
			continue
		}
		summary.TurnsWithVoice++
		latencySum += metrics.ResponseLatencyS
		durationSum += metrics.AnswerDurationS
		rateSum += metrics.FillerRatePerMin
		wordSum += float64(metrics.WordCount)
		summary.TotalFillerCount += metrics.FillerCount

		if shortest == nil || metrics.AnswerDurationS < shortest.DurationS {
			shortest = &ShortestAnswer{
				TurnNumber: turn.TurnNumber,
				Question:   turn.Question,
				DurationS:  metrics.AnswerDurationS,
			}
		}
	}

	if summary.TurnsWithVoice == 0 {
		return summary
	}

	n := float64(summary.TurnsWithVoice)
	summary.HasVoiceData = true
	summary.AvgResponseLatencyS = math.Round(latencySum/n*100) / 100
	summary.AvgAnswerDurationS = math.Round(durationSum/n*100) / 100
	summary.AvgFillerRatePerMin = math.Round(rateSum/n*100) / 100
	summary.AvgWordCount = math.Round(wordSum/n*100) / 100
	summary.ShortestAnswer = shortest

	return summary
}

// buildModelAnswers coaches rewrites for every weak or evasive turn. A failed
// rewrite is skipped, never blocks the report.
func (e *Engine) buildModelAnswers(ctx context.Context, session *Session) []ModelAnswer {
	var answers []ModelAnswer
	briefCtx := session.Brief.Context(1500)

	for _, turn := range session.Turns {
		quality := turn.Analysis.Quality
		if quality != tools.QualityWeak && quality != tools.QualityEvasive {
			continue
		}

		improved, err := e.toolbox.ImproveAnswer(ctx, tools.ImproveInput{
			Question:     turn.Question,
			Answer:       turn.Answer,
			BriefContext: briefCtx,
		})
		if err != nil {
			e.logger.Warn("answer improvement unavailable",
				zap.String(logger.FieldSession, session.ID),
				zap.Int("turn_number", turn.TurnNumber),
				zap.Error(err),
			)
			continue
		}

		answers = append(answers, ModelAnswer{
			TurnNumber:          turn.TurnNumber,
			Question:            turn.Question,
			OriginalQuality:     quality,
			ImprovedAnswer:      improved.ImprovedAnswer,
			Reasoning:           improved.Reasoning,
			Tips:                improved.Tips,
			ScoreBefore:         turn.Analysis.Composite,
			ProjectedScoreAfter: improved.ProjectedScoreAfter,
		})
	}

	return answers
}

// buildActionPlan derives concrete next steps from the aggregated weaknesses
// and the coaching tips, deduplicated in order.
func buildActionPlan(weaknesses []string, modelAnswers []ModelAnswer, reviews []QuestionReview) []string {
	var plan []string
	seen := make(map[string]bool)
	add := func(step string) {
		step = strings.TrimSpace(step)
		key := strings.ToLower(step)
		if step == "" || seen[key] {
			return
		}
		seen[key] = true
		plan = append(plan, step)
	}

	for _, weakness := range weaknesses {
		add(fmt.Sprintf("Prepare a concrete story that addresses: %s", weakness))
	}

	starSum, starCount := 0, 0
	for _, review := range reviews {
		if review.STAR != nil {
			starSum += review.STAR.Score
			starCount++
		}
	}
	if starCount > 0 && roundAverage(starSum, starCount) < 50 {
		add("Structure behavioral answers with STAR: situation, task, action, result.")
	}

	for _, answer := range modelAnswers {
		for _, tip := range answer.Tips {
			add(tip)
		}
	}

	const maxSteps = 8
	if len(plan) > maxSteps {
		plan = plan[:maxSteps]
	}
	return plan
}

// frequencyCounter ranks strings by occurrence, preserving first-seen order
// and casing among equals.
type frequencyCounter struct {
	counts map[string]int
	order  map[string]int
	labels map[string]string
	next   int
}

func newFrequencyCounter() *frequencyCounter {
	return &frequencyCounter{
		counts: make(map[string]int),
		order:  make(map[string]int),
		labels: make(map[string]string),
	}
}

func (f *frequencyCounter) addAll(values []string) {
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		key := strings.ToLower(value)
		if _, ok := f.counts[key]; !ok {
			f.order[key] = f.next
			f.labels[key] = value
			f.next++
		}
		f.counts[key]++
	}
}

func (f *frequencyCounter) top(n int) []string {
	keys := make([]string, 0, len(f.counts))
	for key := range f.counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if f.counts[keys[i]] != f.counts[keys[j]] {
			return f.counts[keys[i]] > f.counts[keys[j]]
		}
		return f.order[keys[i]] < f.order[keys[j]]
	})

	if len(keys) > n {
		keys = keys[:n]
	}
	result := make([]string, len(keys))
	for i, key := range keys {
		result[i] = f.labels[key]
	}
	return result
}

func roundAverage(sum, count int) int {
	if count == 0 {
		return 0
	}
	return int(float64(sum)/float64(count) + 0.5)
}
