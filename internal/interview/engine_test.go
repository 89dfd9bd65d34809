package interview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/mockview/mockview/internal/research"
	"github.com/mockview/mockview/internal/tools"
	"github.com/mockview/mockview/internal/voice"
)

var errStub = errors.New("stubbed model failure")

// fakeModel scripts every tool call by recognizing the tool's system
// instruction. Unset tools fail, which exercises the documented degradation
// paths: plan and question rendering fall back to stored text, hints are
// omitted, and routing falls back to pure policy.
type fakeModel struct {
	mu            sync.Mutex
	analysisQueue []string
	consistency   string
	routing       string
	hints         string
	star          string
	improved      string
	jd            string
}

func (f *fakeModel) GenerateContent(_ context.Context, system, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.Contains(system, "interview strategist"):
		return "", errStub
	case strings.Contains(system, "answer evaluator"):
		if len(f.analysisQueue) == 0 {
			return "", errStub
		}
		resp := f.analysisQueue[0]
		f.analysisQueue = f.analysisQueue[1:]
		return resp, nil
	case strings.Contains(system, "consistency analyzer"):
		if f.consistency == "" {
			return `{"consistent": true, "contradictions": []}`, nil
		}
		return f.consistency, nil
	case strings.Contains(system, "flow controller"):
		if f.routing == "" {
			return "", errStub
		}
		return f.routing, nil
	case strings.Contains(system, "Return ONLY the follow-up question text"):
		return "Could you give one concrete example, with numbers?", nil
	case strings.Contains(system, "single personalized interview question"):
		return "", errStub
	case strings.Contains(system, "Generate helpful hints"):
		if f.hints == "" {
			return "", errStub
		}
		return f.hints, nil
	case strings.Contains(system, "STAR framework analyzer"):
		if f.star == "" {
			return "", errStub
		}
		return f.star, nil
	case strings.Contains(system, "improved model answer"):
		if f.improved == "" {
			return "", errStub
		}
		return f.improved, nil
	case strings.Contains(system, "job description parser"):
		if f.jd == "" {
			return "", errStub
		}
		return f.jd, nil
	}

	return "", fmt.Errorf("unexpected tool call: %s", system)
}

func (f *fakeModel) Model() string { return "stub-model" }

// analysisJSON renders an analyzer reply with the given sub-scores.
func analysisJSON(confidence, specificity, star int, nonAnswer bool) string {
	return fmt.Sprintf(`{
		"confidence_score": %d,
		"specificity_score": %d,
		"star_score": %d,
		"non_answer": %v,
		"key_points_covered": ["covered point"],
		"missing_points": ["missing point"],
		"flags": [],
		"summary": "scripted analysis"
	}`, confidence, specificity, star, nonAnswer)
}

func strongAnalysis() string  { return analysisJSON(80, 80, 80, false) }
func evasiveAnalysis() string { return analysisJSON(10, 10, 10, true) }

type fakeResearcher struct {
	brief *research.Brief
	err   error
}

func (f *fakeResearcher) FetchBrief(_ context.Context, _, _ string) (*research.Brief, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.brief, nil
}

type fakeArchive struct {
	mu      sync.Mutex
	turns   int
	reports int
	err     error
}

func (f *fakeArchive) SaveTurn(_ string, _ *Turn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns++
	return f.err
}

func (f *fakeArchive) SaveReport(_ string, _ *EvaluationReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports++
	return f.err
}

func testBrief() *research.Brief {
	return &research.Brief{
		Company:         "Acme",
		Role:            "Data Engineer",
		Summary:         "Builds data pipelines.",
		Competencies:    []string{"leadership", "project ownership"},
		TechnicalSkills: []string{"spark tuning", "sql modeling"},
		SoftSkills:      []string{"communication", "handling feedback"},
	}
}

func newTestEngine(fm *fakeModel, arch Archiver) *Engine {
	toolbox := tools.NewToolbox(fm, zap.NewNop(), 0)
	return NewEngine(
		toolbox,
		nil,
		&fakeResearcher{brief: testBrief()},
		nil,
		arch,
		zap.NewNop(),
		Config{},
	)
}

func startSession(t *testing.T, engine *Engine, mode string, count int) string {
	t.Helper()

	start, err := engine.StartSession(context.Background(), StartRequest{
		Company:       "Acme",
		Role:          "Data Engineer",
		Mode:          mode,
		QuestionCount: count,
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if start.PlanLength != count {
		t.Fatalf("plan length = %d, want %d", start.PlanLength, count)
	}
	return start.SessionID
}

func TestSixStrongAnswersAdvanceWithoutFollowUps(t *testing.T) {
	ctx := context.Background()
	fm := &fakeModel{star: `{"score": 80, "feedback": "solid structure"}`}
	for i := 0; i < 6; i++ {
		fm.analysisQueue = append(fm.analysisQueue, strongAnalysis())
	}

	arch := &fakeArchive{}
	engine := newTestEngine(fm, arch)
	id := startSession(t, engine, ModePractice, 6)

	turns := 0
	for {
		question, err := engine.NextQuestion(ctx, id)
		if err != nil {
			t.Fatalf("NextQuestion: %v", err)
		}
		if question.Done {
			break
		}
		if question.FollowUp {
			t.Fatalf("unexpected follow-up at turn %d", question.TurnNumber)
		}

		turns++
		if question.TurnNumber != turns {
			t.Fatalf("turn number = %d, want %d", question.TurnNumber, turns)
		}

		outcome, err := engine.SubmitAnswer(ctx, id, SubmitRequest{Answer: "a detailed, quantified answer"})
		if err != nil {
			t.Fatalf("SubmitAnswer: %v", err)
		}
		if outcome.TurnNumber != turns {
			t.Fatalf("outcome turn number = %d, want %d", outcome.TurnNumber, turns)
		}
		if outcome.Routing.Action == tools.ActionFollowUp {
			t.Fatalf("strong answer at turn %d routed to a follow-up", turns)
		}
	}

	if turns != 6 {
		t.Fatalf("completed %d turns, want 6", turns)
	}

	report, err := engine.Evaluate(ctx, id)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if len(report.PerQuestion) != 6 {
		t.Fatalf("per_question length = %d, want 6", len(report.PerQuestion))
	}
	for i, review := range report.PerQuestion {
		if review.TurnNumber != i+1 {
			t.Fatalf("per_question[%d].turn_number = %d, want %d", i, review.TurnNumber, i+1)
		}
	}
	if report.OverallScore != 80 {
		t.Fatalf("overall score = %d, want 80", report.OverallScore)
	}
	if len(report.ModelAnswers) != 0 {
		t.Fatalf("expected no model answers for strong turns, got %d", len(report.ModelAnswers))
	}

	hints := report.HintAnalysis
	if hints.TotalQuestions != 6 || hints.Breakdown.NoHintNeeded != 6 {
		t.Fatalf("unexpected hint analysis: %+v", hints)
	}
	if hints.HintsUsed+hints.HintsNotUsed != hints.TotalQuestions {
		t.Fatalf("hint counts do not add up: %+v", hints)
	}
	if report.VoiceSummary.HasVoiceData {
		t.Fatalf("expected has_voice_data=false without voice metrics")
	}

	for _, persona := range tools.PersonaOrder {
		if score, ok := report.PersonaScores[persona]; !ok || score != 80 {
			t.Fatalf("persona score for %s = %d (present=%v), want 80", persona, score, ok)
		}
	}

	arch.mu.Lock()
	defer arch.mu.Unlock()
	if arch.turns != 6 || arch.reports != 1 {
		t.Fatalf("archive saw %d turns and %d reports, want 6 and 1", arch.turns, arch.reports)
	}
}

func TestEvaluateIsIdempotentAndByteIdentical(t *testing.T) {
	ctx := context.Background()
	fm := &fakeModel{analysisQueue: []string{strongAnalysis()}}
	engine := newTestEngine(fm, nil)
	id := startSession(t, engine, ModeReal, 1)

	if _, err := engine.NextQuestion(ctx, id); err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	if _, err := engine.SubmitAnswer(ctx, id, SubmitRequest{Answer: "done"}); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	first, err := engine.ReportJSON(ctx, id)
	if err != nil {
		t.Fatalf("ReportJSON: %v", err)
	}
	second, err := engine.ReportJSON(ctx, id)
	if err != nil {
		t.Fatalf("ReportJSON (second): %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatalf("repeated evaluation produced different reports")
	}

	one, err := engine.Evaluate(ctx, id)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	two, err := engine.Evaluate(ctx, id)
	if err != nil {
		t.Fatalf("Evaluate (second): %v", err)
	}
	if one != two {
		t.Fatalf("expected the cached report instance on re-evaluation")
	}
}

func TestEvasiveAnswerEarnsExactlyOneFollowUp(t *testing.T) {
	ctx := context.Background()
	fm := &fakeModel{}
	fm.analysisQueue = []string{evasiveAnalysis(), evasiveAnalysis()}
	for i := 0; i < 5; i++ {
		fm.analysisQueue = append(fm.analysisQueue, strongAnalysis())
	}

	engine := newTestEngine(fm, nil)
	id := startSession(t, engine, ModeReal, 6)

	first, err := engine.NextQuestion(ctx, id)
	if err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}

	outcome, err := engine.SubmitAnswer(ctx, id, SubmitRequest{Answer: "let's talk about something else"})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if outcome.Routing.Action != tools.ActionFollowUp {
		t.Fatalf("evasive answer routed to %q, want %q", outcome.Routing.Action, tools.ActionFollowUp)
	}
	if outcome.Routing.NextPersona != first.Persona {
		t.Fatalf("follow-up switched persona from %s to %s", first.Persona, outcome.Routing.NextPersona)
	}

	followUp, err := engine.NextQuestion(ctx, id)
	if err != nil {
		t.Fatalf("NextQuestion (follow-up): %v", err)
	}
	if !followUp.FollowUp {
		t.Fatalf("expected a follow-up question, got %+v", followUp)
	}
	if followUp.TurnNumber != 2 {
		t.Fatalf("follow-up turn number = %d, want 2", followUp.TurnNumber)
	}
	if followUp.Persona != first.Persona || followUp.Topic != first.Topic {
		t.Fatalf("follow-up persona/topic = %s/%s, want %s/%s", followUp.Persona, followUp.Topic, first.Persona, first.Topic)
	}

	// A second evasive answer on the same item: the budget is spent, so the
	// interview must advance, never probe a third time.
	outcome, err = engine.SubmitAnswer(ctx, id, SubmitRequest{Answer: "again, no real answer"})
	if err != nil {
		t.Fatalf("SubmitAnswer (follow-up): %v", err)
	}
	if outcome.Routing.Action == tools.ActionFollowUp {
		t.Fatalf("budget-exhausted item routed to a second follow-up")
	}

	turn := 2
	for {
		question, err := engine.NextQuestion(ctx, id)
		if err != nil {
			t.Fatalf("NextQuestion: %v", err)
		}
		if question.Done {
			break
		}
		turn++
		if question.TurnNumber != turn {
			t.Fatalf("turn number = %d, want %d (gapless)", question.TurnNumber, turn)
		}
		if _, err := engine.SubmitAnswer(ctx, id, SubmitRequest{Answer: "a solid answer"}); err != nil {
			t.Fatalf("SubmitAnswer: %v", err)
		}
	}

	if turn != 7 {
		t.Fatalf("completed %d turns, want 7 (6 planned + 1 follow-up)", turn)
	}
}

func TestRepeatedEvasiveAnswersEndTheInterview(t *testing.T) {
	ctx := context.Background()
	fm := &fakeModel{analysisQueue: []string{evasiveAnalysis(), evasiveAnalysis(), evasiveAnalysis()}}
	engine := newTestEngine(fm, nil)
	id := startSession(t, engine, ModeReal, 6)

	var last *TurnOutcome
	for i := 0; i < 3; i++ {
		if _, err := engine.NextQuestion(ctx, id); err != nil {
			t.Fatalf("NextQuestion: %v", err)
		}
		outcome, err := engine.SubmitAnswer(ctx, id, SubmitRequest{Answer: "no comment"})
		if err != nil {
			t.Fatalf("SubmitAnswer: %v", err)
		}
		last = outcome
	}

	if last.Routing.Action != tools.ActionEndInterview {
		t.Fatalf("third evasive answer routed to %q, want %q", last.Routing.Action, tools.ActionEndInterview)
	}
	if !last.IsInterviewOver {
		t.Fatalf("expected the interview to be over")
	}

	question, err := engine.NextQuestion(ctx, id)
	if err != nil {
		t.Fatalf("NextQuestion after end: %v", err)
	}
	if !question.Done {
		t.Fatalf("expected a done signal after end_interview")
	}
}

func TestContradictionSurfacesInReport(t *testing.T) {
	ctx := context.Background()
	fm := &fakeModel{
		analysisQueue: []string{strongAnalysis(), strongAnalysis()},
		consistency: `{
			"consistent": false,
			"contradictions": [
				{"first_turn": 1, "second_turn": 2, "description": "employment dates conflict", "severity": "high"}
			]
		}`,
	}
	engine := newTestEngine(fm, nil)
	id := startSession(t, engine, ModeReal, 2)

	if _, err := engine.NextQuestion(ctx, id); err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	if _, err := engine.SubmitAnswer(ctx, id, SubmitRequest{Answer: "I led the team in 2020"}); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	if _, err := engine.NextQuestion(ctx, id); err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	outcome, err := engine.SubmitAnswer(ctx, id, SubmitRequest{Answer: "I joined the team in 2023"})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	if outcome.Consistency == nil || outcome.Consistency.Consistent {
		t.Fatalf("expected an inconsistent result on turn 2, got %+v", outcome.Consistency)
	}

	report, err := engine.Evaluate(ctx, id)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if report.Consistency == nil || report.Consistency.Consistent {
		t.Fatalf("expected the report to surface the contradiction")
	}
	if len(report.Consistency.Contradictions) == 0 {
		t.Fatalf("expected contradictions in the report")
	}
	if !report.Consistency.HasHighSeverity() {
		t.Fatalf("expected a high severity contradiction")
	}
}

func TestRevealExampleAnswerTaintsTheTurn(t *testing.T) {
	ctx := context.Background()
	fm := &fakeModel{
		analysisQueue: []string{strongAnalysis()},
		hints:         `{"bullets": ["quantify impact"], "personal_hooks": ["your spark project"], "avoid": ["rambling"], "example_answer": "A full model answer."}`,
	}
	engine := newTestEngine(fm, nil)
	id := startSession(t, engine, ModePractice, 1)

	question, err := engine.NextQuestion(ctx, id)
	if err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	if question.Hints == nil || len(question.Hints.Bullets) == 0 {
		t.Fatalf("expected tier 1 hints in practice mode")
	}
	if question.Hints.ExampleAnswer != "" {
		t.Fatalf("example answer leaked without an explicit reveal")
	}

	example, err := engine.RevealExampleAnswer(id)
	if err != nil {
		t.Fatalf("RevealExampleAnswer: %v", err)
	}
	if example != "A full model answer." {
		t.Fatalf("unexpected example answer: %q", example)
	}

	outcome, err := engine.SubmitAnswer(ctx, id, SubmitRequest{Answer: "an excellent answer"})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	tainted := false
	for _, flag := range outcome.Analysis.Flags {
		if flag == FlagExampleRevealed {
			tainted = true
		}
	}
	if !tainted {
		t.Fatalf("expected flag %q on the analysis, got %v", FlagExampleRevealed, outcome.Analysis.Flags)
	}

	report, err := engine.Evaluate(ctx, id)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !report.PerQuestion[0].HintUsed {
		t.Fatalf("expected hint_used=true after a reveal")
	}
	if report.HintAnalysis.HintsUsed != 1 || report.HintAnalysis.Breakdown.HintUsedAnsweredWell != 1 {
		t.Fatalf("unexpected hint analysis: %+v", report.HintAnalysis)
	}
}

func TestRealModeWithholdsHints(t *testing.T) {
	ctx := context.Background()
	fm := &fakeModel{
		analysisQueue: []string{strongAnalysis()},
		hints:         `{"bullets": ["b"], "example_answer": "secret"}`,
	}
	engine := newTestEngine(fm, nil)
	id := startSession(t, engine, ModeReal, 1)

	question, err := engine.NextQuestion(ctx, id)
	if err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	if question.Hints != nil {
		t.Fatalf("real mode served hints: %+v", question.Hints)
	}

	if _, err := engine.RevealExampleAnswer(id); !errors.Is(err, ErrInvalidSessionState) {
		t.Fatalf("RevealExampleAnswer in real mode = %v, want ErrInvalidSessionState", err)
	}
}

func TestNextQuestionIsIdempotentWhileUnanswered(t *testing.T) {
	ctx := context.Background()
	fm := &fakeModel{}
	engine := newTestEngine(fm, nil)
	id := startSession(t, engine, ModeReal, 2)

	first, err := engine.NextQuestion(ctx, id)
	if err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	again, err := engine.NextQuestion(ctx, id)
	if err != nil {
		t.Fatalf("NextQuestion (refetch): %v", err)
	}

	if first.Question != again.Question || first.TurnNumber != again.TurnNumber {
		t.Fatalf("refetch changed the question: %+v vs %+v", first, again)
	}
}

func TestSubmitAnswerRequiresPendingQuestion(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(&fakeModel{}, nil)
	id := startSession(t, engine, ModeReal, 2)

	if _, err := engine.SubmitAnswer(ctx, id, SubmitRequest{Answer: "hello"}); !errors.Is(err, ErrInvalidSessionState) {
		t.Fatalf("submit without a question = %v, want ErrInvalidSessionState", err)
	}
}

func TestSubmitAnswerAfterCompletionFails(t *testing.T) {
	ctx := context.Background()
	fm := &fakeModel{analysisQueue: []string{strongAnalysis()}}
	engine := newTestEngine(fm, nil)
	id := startSession(t, engine, ModeReal, 1)

	if _, err := engine.NextQuestion(ctx, id); err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	if _, err := engine.SubmitAnswer(ctx, id, SubmitRequest{Answer: "done"}); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	if _, err := engine.SubmitAnswer(ctx, id, SubmitRequest{Answer: "one more"}); !errors.Is(err, ErrInvalidSessionState) {
		t.Fatalf("submit after completion = %v, want ErrInvalidSessionState", err)
	}
}

func TestEvaluateEmptySessionFails(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(&fakeModel{}, nil)
	id := startSession(t, engine, ModeReal, 2)

	if _, err := engine.Evaluate(ctx, id); !errors.Is(err, ErrEmptySession) {
		t.Fatalf("evaluate with zero turns = %v, want ErrEmptySession", err)
	}
}

func TestUnknownSessionFails(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(&fakeModel{}, nil)

	if _, err := engine.NextQuestion(ctx, "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("unknown session = %v, want ErrSessionNotFound", err)
	}
}

func TestStartSessionResearchUnavailable(t *testing.T) {
	toolbox := tools.NewToolbox(&fakeModel{}, zap.NewNop(), 0)
	engine := NewEngine(
		toolbox,
		nil,
		&fakeResearcher{err: errors.New("no such company")},
		nil,
		nil,
		zap.NewNop(),
		Config{},
	)

	_, err := engine.StartSession(context.Background(), StartRequest{Company: "Ghost Corp", Role: "Engineer"})
	if !errors.Is(err, ErrResearchUnavailable) {
		t.Fatalf("start without research = %v, want ErrResearchUnavailable", err)
	}
}

func TestWeakAnswerModelRewriteIsProjected(t *testing.T) {
	ctx := context.Background()
	fm := &fakeModel{
		analysisQueue: []string{analysisJSON(30, 30, 30, false)},
		improved: `{
			"improved_answer": "A structured rewrite with metrics.",
			"reasoning": ["added metrics"],
			"tips": ["quantify your impact"],
			"score_before": 30,
			"score_after": 85
		}`,
	}
	engine := newTestEngine(fm, nil)
	id := startSession(t, engine, ModeReal, 1)

	if _, err := engine.NextQuestion(ctx, id); err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	// Weak answer on the only plan item: the follow-up consumes its budget...
	outcome, err := engine.SubmitAnswer(ctx, id, SubmitRequest{Answer: "it went fine I guess"})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if outcome.Routing.Action != tools.ActionFollowUp {
		t.Fatalf("weak answer routed to %q, want follow_up", outcome.Routing.Action)
	}

	// ...and the follow-up answer falls back to the conservative default when
	// the analyzer queue runs dry, which is adequate and needs no rewrite.
	if _, err := engine.NextQuestion(ctx, id); err != nil {
		t.Fatalf("NextQuestion (follow-up): %v", err)
	}
	if _, err := engine.SubmitAnswer(ctx, id, SubmitRequest{Answer: "a bit more detail"}); err != nil {
		t.Fatalf("SubmitAnswer (follow-up): %v", err)
	}

	report, err := engine.Evaluate(ctx, id)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if len(report.ModelAnswers) != 1 {
		t.Fatalf("model answers = %d, want 1 (only the weak turn)", len(report.ModelAnswers))
	}
	answer := report.ModelAnswers[0]
	if answer.TurnNumber != 1 || answer.OriginalQuality != tools.QualityWeak {
		t.Fatalf("unexpected model answer: %+v", answer)
	}
	if answer.ScoreBefore != 30 || answer.ProjectedScoreAfter != 85 {
		t.Fatalf("score pair = %d/%d, want 30/85", answer.ScoreBefore, answer.ProjectedScoreAfter)
	}
}

var voiceMetricsFixture = voice.Metrics{
	ResponseLatencyS: 2.1,
	AnswerDurationS:  42.5,
	FillerCount:      3,
	FillerWords:      []string{"um", "like", "you know"},
	WordCount:        120,
	FillerRatePerMin: 4.24,
}

func TestVoiceMetricsFlowIntoTheReport(t *testing.T) {
	ctx := context.Background()
	fm := &fakeModel{analysisQueue: []string{strongAnalysis()}}
	engine := newTestEngine(fm, nil)
	id := startSession(t, engine, ModeReal, 1)

	if _, err := engine.NextQuestion(ctx, id); err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}

	metrics := &voiceMetricsFixture
	if _, err := engine.SubmitAnswer(ctx, id, SubmitRequest{Answer: "spoken answer", VoiceMetrics: metrics}); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	report, err := engine.Evaluate(ctx, id)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	summary := report.VoiceSummary
	if !summary.HasVoiceData || summary.TurnsWithVoice != 1 {
		t.Fatalf("unexpected voice summary: %+v", summary)
	}
	if summary.TotalFillerCount != 3 || summary.AvgAnswerDurationS != 42.5 {
		t.Fatalf("unexpected voice aggregates: %+v", summary)
	}
	if summary.ShortestAnswer == nil || summary.ShortestAnswer.TurnNumber != 1 {
		t.Fatalf("expected shortest answer for turn 1, got %+v", summary.ShortestAnswer)
	}
}

func TestJobDescriptionWidensThePlan(t *testing.T) {
	ctx := context.Background()
	fm := &fakeModel{
		jd: `{
			"requirements": ["airflow orchestration"],
			"responsibilities": ["own the warehouse pipelines"],
			"keywords": ["airflow"],
			"experience_level": "senior",
			"summary": "Senior data engineer owning batch pipelines."
		}`,
	}
	engine := newTestEngine(fm, nil)

	start, err := engine.StartSession(ctx, StartRequest{
		Company:       "Acme",
		Role:          "Data Engineer",
		Mode:          ModeReal,
		JDText:        "We need a senior data engineer for Airflow-orchestrated pipelines.",
		QuestionCount: 7,
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	plan, err := engine.Plan(start.SessionID)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	found := false
	for _, item := range plan {
		if strings.EqualFold(item.Topic, "airflow orchestration") {
			found = true
			if item.Persona != tools.PersonaTech {
				t.Fatalf("JD requirement planned for %s, want %s", item.Persona, tools.PersonaTech)
			}
		}
	}
	if !found {
		t.Fatalf("JD requirement missing from the plan: %+v", plan)
	}
}

func TestJobDescriptionParseFailureDoesNotBlockStart(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(&fakeModel{}, nil)

	start, err := engine.StartSession(ctx, StartRequest{
		Company:       "Acme",
		Role:          "Data Engineer",
		Mode:          ModeReal,
		JDText:        "unparseable",
		QuestionCount: 6,
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if start.PlanLength != 6 {
		t.Fatalf("plan length = %d, want 6", start.PlanLength)
	}
}
