package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mockview/mockview/internal/logger"
	"github.com/mockview/mockview/internal/research"
	"github.com/mockview/mockview/internal/tools"
	"github.com/mockview/mockview/internal/voice"
)

// Archiver persists finalized turns and reports. Persistence is best-effort;
// the engine logs failures and moves on.
type Archiver interface {
	SaveTurn(sessionID string, turn *Turn) error
	SaveReport(sessionID string, report *EvaluationReport) error
}

// Config tunes the engine's deterministic policies.
type Config struct {
	DefaultQuestionCount int `mapstructure:"default_question_count"`
	MaxQuestionCount     int `mapstructure:"max_question_count"`
	// FollowUpBudget bounds follow-ups per plan item.
	FollowUpBudget int `mapstructure:"follow_up_budget"`
	// MaxEvasiveStreak ends the interview after this many consecutive
	// evasive answers.
	MaxEvasiveStreak int `mapstructure:"max_evasive_streak"`
}

func (c Config) withDefaults() Config {
	if c.DefaultQuestionCount <= 0 {
		c.DefaultQuestionCount = 6
	}
	if c.MaxQuestionCount <= 0 {
		c.MaxQuestionCount = 15
	}
	if c.FollowUpBudget <= 0 {
		c.FollowUpBudget = 1
	}
	if c.MaxEvasiveStreak <= 0 {
		c.MaxEvasiveStreak = 3
	}
	return c
}

// Engine orchestrates interview sessions: research, planning, per-turn
// routing, and evaluation. Sessions are independent; each is guarded by its
// own lock, released around model calls with an in-flight marker so
// overlapping requests on one session are rejected rather than interleaved.
type Engine struct {
	toolbox    *tools.Toolbox
	presets    *research.Library
	researcher research.Researcher
	resumes    *research.ResumeAnalyzer
	store      *Store
	archive    Archiver
	logger     *zap.Logger
	cfg        Config
}

// NewEngine wires the engine. presets, researcher, resumes, and archive may
// be nil; the corresponding capability is then disabled.
func NewEngine(toolbox *tools.Toolbox, presets *research.Library, researcher research.Researcher, resumes *research.ResumeAnalyzer, archive Archiver, log *zap.Logger, cfg Config) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		toolbox:    toolbox,
		presets:    presets,
		researcher: researcher,
		resumes:    resumes,
		store:      NewStore(),
		archive:    archive,
		logger:     log,
		cfg:        cfg.withDefaults(),
	}
}

// StartRequest configures a new session. JDText is an optional raw job
// description; when present it is parsed and merged into the research brief.
type StartRequest struct {
	Company       string
	Role          string
	Mode          string
	ResumeText    string
	JDText        string
	QuestionCount int
}

// StartResult summarizes a freshly started session.
type StartResult struct {
	SessionID    string `json:"session_id"`
	BriefSummary string `json:"brief_summary"`
	PlanLength   int    `json:"plan_length"`
}

// StartSession runs setup, research, and planning for a new session. A preset
// brief is preferred; live research is the fallback. Resume analysis failure
// degrades to planning without a profile, but a missing brief fails the start.
func (e *Engine) StartSession(ctx context.Context, req StartRequest) (*StartResult, error) {
	company := strings.TrimSpace(req.Company)
	role := strings.TrimSpace(req.Role)
	if company == "" || role == "" {
		return nil, fmt.Errorf("company and role are required")
	}

	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode == "" {
		mode = ModePractice
	}
	if mode != ModePractice && mode != ModeReal {
		return nil, fmt.Errorf("unknown mode %q", req.Mode)
	}

	count := req.QuestionCount
	if count <= 0 {
		count = e.cfg.DefaultQuestionCount
	}
	if count > e.cfg.MaxQuestionCount {
		count = e.cfg.MaxQuestionCount
	}

	session := newSession(uuid.NewString()[:8], company, role, mode, count)
	log := logger.WithFields(e.logger, logger.SessionFields(session.ID, "")...)

	e.setPhase(session, PhaseResearching)
	brief, err := e.fetchBrief(ctx, company, role, log)
	if err != nil {
		return nil, err
	}
	var jd *tools.JobDescription
	if jdText := strings.TrimSpace(req.JDText); jdText != "" {
		jd, err = e.toolbox.ParseJobDescription(ctx, jdText)
		if err != nil {
			log.Warn("job description parsing failed, continuing without it", zap.Error(err))
			jd = nil
		} else {
			brief = mergeJobDescription(brief, jd)
		}
	}
	session.Brief = brief

	if resumeText := strings.TrimSpace(req.ResumeText); resumeText != "" && e.resumes != nil {
		profile, err := e.resumes.Analyze(ctx, resumeText, brief, jd)
		if err != nil {
			log.Warn("resume analysis failed, planning without profile", zap.Error(err))
		} else {
			session.Resume = profile
		}
	}

	e.setPhase(session, PhasePlanning)
	session.Plan = buildPlan(ctx, e.toolbox, brief, session.Resume, count, log)

	e.store.Put(session)
	log.Info("session started",
		zap.String("company", company),
		zap.String("role", role),
		zap.String("mode", mode),
		zap.Int("plan_length", len(session.Plan)),
	)

	return &StartResult{
		SessionID:    session.ID,
		BriefSummary: brief.Summary,
		PlanLength:   len(session.Plan),
	}, nil
}

func (e *Engine) fetchBrief(ctx context.Context, company, role string, log *zap.Logger) (*research.Brief, error) {
	if brief, ok := e.presets.Lookup(company, role); ok {
		log.Info("using preset research brief")
		return brief, nil
	}

	if e.researcher == nil {
		return nil, fmt.Errorf("%w: no preset for %s / %s and live research is disabled", ErrResearchUnavailable, company, role)
	}

	brief, err := e.researcher.FetchBrief(ctx, company, role)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrResearchUnavailable, err)
	}
	return brief, nil
}

// mergeJobDescription folds a parsed job description into a copy of the
// brief: its keywords widen the planning material, its requirements join the
// technical skill pool. The preset stays untouched.
func mergeJobDescription(brief *research.Brief, jd *tools.JobDescription) *research.Brief {
	merged := *brief
	merged.Keywords = appendMissing(merged.Keywords, jd.Keywords)
	merged.TechnicalSkills = appendMissing(merged.TechnicalSkills, jd.Requirements)
	return &merged
}

func appendMissing(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, value := range existing {
		seen[strings.ToLower(strings.TrimSpace(value))] = true
	}

	merged := append([]string(nil), existing...)
	for _, value := range extra {
		key := strings.ToLower(strings.TrimSpace(value))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, strings.TrimSpace(value))
	}
	return merged
}

// Presets lists the company/role pairs answerable without live research.
func (e *Engine) Presets() [][2]string {
	return e.presets.Pairs()
}

// Plan returns a copy of the session's ordered question plan.
func (e *Engine) Plan(sessionID string) ([]PlanItem, error) {
	session, err := e.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	plan := make([]PlanItem, len(session.Plan))
	for i, item := range session.Plan {
		plan[i] = *item
	}
	return plan, nil
}

// Question is the next-question view served to the candidate. Done signals
// that the plan is exhausted and evaluation is the only step left.
type Question struct {
	Done       bool            `json:"done"`
	TurnNumber int             `json:"turn_number,omitempty"`
	Question   string          `json:"question,omitempty"`
	Persona    string          `json:"persona,omitempty"`
	Topic      string          `json:"topic,omitempty"`
	FollowUp   bool            `json:"follow_up,omitempty"`
	Hints      *tools.HintData `json:"hints,omitempty"`
}

// NextQuestion serves the next question: a pending follow-up first, otherwise
// the next plan item rendered through its persona. Re-fetching while a
// question is unanswered returns the same question. In practice mode the view
// carries tier 1 and 2 hints; the example answer stays behind an explicit
// reveal.
func (e *Engine) NextQuestion(ctx context.Context, sessionID string) (*Question, error) {
	session, err := e.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()

	switch session.Phase {
	case PhaseEvaluating, PhaseDone:
		session.mu.Unlock()
		return &Question{Done: true}, nil
	case PhasePlanning, PhaseInterviewing:
	default:
		session.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot fetch a question while %s", ErrInvalidSessionState, session.Phase)
	}

	if session.inFlight {
		session.mu.Unlock()
		return nil, fmt.Errorf("%w: previous turn is still being processed", ErrInvalidSessionState)
	}

	if session.active != nil {
		view := e.questionView(session)
		session.mu.Unlock()
		return view, nil
	}

	if session.pending == nil && session.planIndex >= len(session.Plan) {
		e.setPhase(session, PhaseEvaluating)
		session.mu.Unlock()
		return &Question{Done: true}, nil
	}

	// Snapshot what rendering needs, then release the lock for the model
	// calls. The in-flight marker keeps the session from advancing meanwhile.
	session.inFlight = true
	pending := session.pending
	var item PlanItem
	var itemIndex int
	if pending == nil {
		itemIndex = session.planIndex
		item = *session.Plan[itemIndex]
	}
	mode := session.Mode
	briefCtx := session.Brief.Context(1500)
	resumeCtx := session.Resume.Context(1500)
	var historySummary string
	if pending == nil {
		historySummary = session.memory(item.Persona).HistorySummary()
	}
	session.mu.Unlock()

	next := &activeQuestion{}
	if pending != nil {
		next.question = pending.question
		next.persona = pending.persona
		next.topic = pending.topic
		next.planIndex = pending.parentIndex
		next.followUp = true
	} else {
		next.persona = item.Persona
		next.topic = item.Topic
		next.fromPlan = true
		next.planIndex = itemIndex
		next.question = e.renderQuestion(ctx, session.ID, item, historySummary, briefCtx)
	}

	if mode == ModePractice {
		hints, err := e.toolbox.GenerateHints(ctx, tools.HintInput{
			Question:      next.question,
			Persona:       next.persona,
			ResumeContext: resumeCtx,
			BriefContext:  briefCtx,
		})
		if err != nil {
			e.logger.Warn("hint generation failed",
				zap.String(logger.FieldSession, session.ID),
				zap.Error(err),
			)
		} else {
			next.hints = hints
		}
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.inFlight = false

	if session.closed {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, session.ID)
	}
	if session.Phase == PhasePlanning {
		e.setPhase(session, PhaseInterviewing)
	}

	session.active = next
	session.pending = nil

	logger.WithFields(e.logger, logger.SessionFields(session.ID, next.persona)...).Info("question served",
		zap.String("topic", next.topic),
		zap.Bool("follow_up", next.followUp),
		zap.Int("turn_number", len(session.Turns)+1),
	)

	return e.questionView(session), nil
}

// renderQuestion renders a plan item through its persona, falling back to the
// item's stored question text when the model is unavailable.
func (e *Engine) renderQuestion(ctx context.Context, sessionID string, item PlanItem, historySummary, briefCtx string) string {
	rendered, err := e.toolbox.GenerateQuestion(ctx, tools.QuestionInput{
		Topic:          item.Topic,
		Persona:        item.Persona,
		Depth:          item.Depth,
		HistorySummary: historySummary,
		BriefContext:   briefCtx,
	})
	if err != nil {
		e.logger.Warn("question rendering failed, using planned text",
			zap.String(logger.FieldSession, sessionID),
			zap.String("topic", item.Topic),
			zap.Error(err),
		)
		return item.Question
	}
	return rendered.Question
}

// questionView builds the caller-facing view of the active question. Callers
// must hold the session lock.
func (e *Engine) questionView(s *Session) *Question {
	view := &Question{
		TurnNumber: len(s.Turns) + 1,
		Question:   s.active.question,
		Persona:    s.active.persona,
		Topic:      s.active.topic,
		FollowUp:   s.active.followUp,
	}
	if s.Mode == ModePractice {
		view.Hints = s.active.hints.WithoutExampleAnswer()
	}
	return view
}

// RevealExampleAnswer discloses the tier-3 example answer for the active
// question. The reveal taints the answer's independence: the turn is recorded
// with hint_used=true and an escalation flag regardless of how well the
// candidate then answers.
func (e *Engine) RevealExampleAnswer(sessionID string) (string, error) {
	session, err := e.store.Get(sessionID)
	if err != nil {
		return "", err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.Mode != ModePractice {
		return "", fmt.Errorf("%w: example answers are a practice mode feature", ErrInvalidSessionState)
	}
	if session.Phase != PhaseInterviewing || session.active == nil {
		return "", fmt.Errorf("%w: no question is pending", ErrInvalidSessionState)
	}
	if session.inFlight {
		return "", fmt.Errorf("%w: previous turn is still being processed", ErrInvalidSessionState)
	}

	hints := session.active.hints
	if hints == nil || strings.TrimSpace(hints.ExampleAnswer) == "" {
		return "", fmt.Errorf("no example answer is available for this question")
	}

	session.active.hintRevealed = true
	e.logger.Info("example answer revealed",
		zap.String(logger.FieldSession, session.ID),
		zap.Int("turn_number", len(session.Turns)+1),
	)

	return hints.ExampleAnswer, nil
}

// SubmitRequest carries one answer into the turn pipeline. VoiceMetrics is
// set when the answer arrived through the voice pipeline.
type SubmitRequest struct {
	Answer       string
	VoiceMetrics *voice.Metrics
}

// TurnOutcome reports the finalized turn back to the caller.
type TurnOutcome struct {
	TurnNumber      int                      `json:"turn_number"`
	Analysis        *tools.AnswerAnalysis    `json:"analysis"`
	Consistency     *tools.ConsistencyResult `json:"consistency,omitempty"`
	Routing         *tools.RoutingResult     `json:"routing"`
	IsInterviewOver bool                     `json:"is_interview_over"`
}

// SubmitAnswer runs the turn pipeline: analysis, consistency check from the
// second turn onward, then the routing decision, and finalizes the turn. The
// session lock is released around the model calls; a concurrent submission or
// fetch is rejected while the turn is in flight. If the session is abandoned
// meanwhile, the results are discarded and the turn never persisted.
func (e *Engine) SubmitAnswer(ctx context.Context, sessionID string, req SubmitRequest) (*TurnOutcome, error) {
	session, err := e.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	answer := strings.TrimSpace(req.Answer)
	if answer == "" {
		return nil, fmt.Errorf("answer text is empty")
	}

	snap, err := e.beginTurn(session, answer)
	if err != nil {
		return nil, err
	}

	analysis := e.toolbox.AnalyzeAnswer(ctx, tools.AnalyzeAnswerInput{
		Question:      snap.active.question,
		Answer:        answer,
		Persona:       snap.active.persona,
		Topic:         snap.active.topic,
		ResumeContext: snap.resumeCtx,
	})

	var consistency *tools.ConsistencyResult
	if snap.turnNumber >= 2 {
		consistency = e.toolbox.CheckConsistency(ctx, snap.history)
	}

	streak := 0
	if analysis.Quality == tools.QualityEvasive {
		streak = snap.evasiveStreak + 1
	}

	policy := decideRouting(routingContext{
		persona:         snap.active.persona,
		quality:         analysis.Quality,
		critical:        analysis.HasCriticalFlag(),
		budgetLeft:      snap.budgetLeft,
		remainingAfter:  snap.remainingAfter,
		nextPersona:     snap.nextPersona,
		evasiveLimitHit: streak >= e.cfg.MaxEvasiveStreak,
	})

	advisory, err := e.toolbox.RouteNext(ctx, tools.RouteInput{
		CurrentPersona:  snap.active.persona,
		Quality:         analysis.Quality,
		Flags:           analysis.Flags,
		RemainingTopics: snap.remainingTopics,
		AnswerSummary:   analysis.Summary,
	})
	if err != nil {
		e.logger.Debug("routing advisory unavailable",
			zap.String(logger.FieldSession, session.ID),
			zap.Error(err),
		)
	} else if advisory.Action != policy.Action {
		e.logger.Debug("routing advisory overridden by policy",
			zap.String(logger.FieldSession, session.ID),
			zap.String("advisory_action", advisory.Action),
			zap.String("policy_action", policy.Action),
		)
	}
	routing := clampRouting(policy, advisory)

	var followUpQuestion, followUpTopic string
	if routing.Action == tools.ActionFollowUp {
		followUpTopic = strings.TrimSpace(routing.SuggestedTopic)
		if followUpTopic == "" {
			followUpTopic = snap.active.topic
		}
		followUpQuestion = e.renderFollowUp(ctx, session.ID, snap.active, answer, analysis, snap.briefCtx)
	}

	turn, outcome, err := e.finalizeTurn(session, snap, answer, req.VoiceMetrics, analysis, consistency, routing, streak, followUpQuestion, followUpTopic)
	if err != nil {
		return nil, err
	}

	if e.archive != nil {
		if err := e.archive.SaveTurn(session.ID, turn); err != nil {
			e.logger.Warn("turn archive failed",
				zap.String(logger.FieldSession, session.ID),
				zap.Error(err),
			)
		}
	}

	return outcome, nil
}

// turnSnapshot captures everything the pipeline needs while the lock is held.
type turnSnapshot struct {
	active          activeQuestion
	turnNumber      int
	history         []tools.HistoryEntry
	briefCtx        string
	resumeCtx       string
	remainingTopics []string
	remainingAfter  int
	nextPersona     string
	budgetLeft      bool
	evasiveStreak   int
}

func (e *Engine) beginTurn(session *Session, answer string) (*turnSnapshot, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.Phase != PhaseInterviewing {
		return nil, fmt.Errorf("%w: cannot submit an answer while %s", ErrInvalidSessionState, session.Phase)
	}
	if session.inFlight {
		return nil, fmt.Errorf("%w: previous turn is still being processed", ErrInvalidSessionState)
	}
	if session.active == nil {
		return nil, fmt.Errorf("%w: no question is pending", ErrInvalidSessionState)
	}

	session.inFlight = true

	snap := &turnSnapshot{
		active:        *session.active,
		turnNumber:    len(session.Turns) + 1,
		briefCtx:      session.Brief.Context(1500),
		resumeCtx:     session.Resume.Context(1500),
		evasiveStreak: session.evasiveStreak,
	}
	snap.history = session.history(session.active.question, answer, snap.turnNumber)

	afterIndex := session.planIndex
	if snap.active.fromPlan {
		afterIndex = snap.active.planIndex + 1
	}
	snap.remainingAfter = len(session.Plan) - afterIndex
	if snap.remainingAfter > 0 {
		snap.nextPersona = session.Plan[afterIndex].Persona
		for _, item := range session.Plan[afterIndex:] {
			snap.remainingTopics = append(snap.remainingTopics, item.Topic)
		}
	}

	parent := snap.active.planIndex
	if parent >= 0 && parent < len(session.Plan) {
		snap.budgetLeft = session.Plan[parent].followUpsUsed < e.cfg.FollowUpBudget
	}

	return snap, nil
}

func (e *Engine) renderFollowUp(ctx context.Context, sessionID string, active activeQuestion, answer string, analysis *tools.AnswerAnalysis, briefCtx string) string {
	question, err := e.toolbox.GenerateFollowUp(ctx, tools.FollowUpInput{
		Persona:       active.persona,
		LastQuestion:  active.question,
		LastAnswer:    answer,
		Quality:       analysis.Quality,
		MissingPoints: analysis.MissingPoints,
		Flags:         analysis.Flags,
		BriefContext:  briefCtx,
	})
	if err != nil {
		e.logger.Warn("follow-up rendering failed, using fallback probe",
			zap.String(logger.FieldSession, sessionID),
			zap.Error(err),
		)
		return fmt.Sprintf("Can you walk me through one specific example of %s, with concrete details and numbers?", active.topic)
	}
	return question
}

func (e *Engine) finalizeTurn(session *Session, snap *turnSnapshot, answer string, metrics *voice.Metrics, analysis *tools.AnswerAnalysis, consistency *tools.ConsistencyResult, routing *tools.RoutingResult, streak int, followUpQuestion, followUpTopic string) (*Turn, *TurnOutcome, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	session.inFlight = false

	if session.closed {
		return nil, nil, fmt.Errorf("%w: %q", ErrSessionNotFound, session.ID)
	}
	if session.Phase != PhaseInterviewing || session.active == nil {
		return nil, nil, fmt.Errorf("%w: session advanced while the turn was in flight", ErrInvalidSessionState)
	}

	if session.active.hintRevealed {
		analysis.Flags = append(analysis.Flags, FlagExampleRevealed)
		session.addFlag(fmt.Sprintf("turn %d: %s", snap.turnNumber, FlagExampleRevealed))
	}

	turn := &Turn{
		TurnNumber:   snap.turnNumber,
		Persona:      snap.active.persona,
		Topic:        snap.active.topic,
		Question:     snap.active.question,
		Answer:       answer,
		FollowUp:     snap.active.followUp,
		HintUsed:     session.active.hintRevealed,
		VoiceMetrics: metrics,
		Analysis:     analysis,
		Consistency:  consistency,
		AnsweredAt:   time.Now(),
	}
	session.Turns = append(session.Turns, turn)

	session.memory(turn.Persona).Record(turn.TurnNumber, turn.Question, turn.Answer)
	for _, persona := range tools.PersonaOrder {
		if persona != turn.Persona {
			session.memory(persona).Observe(turn.TurnNumber, turn.Persona, turn.Topic, analysis.Quality, analysis.Flags)
		}
	}

	if consistency != nil {
		for _, contradiction := range consistency.Contradictions {
			session.addFlag(tools.FlagContradiction(contradiction))
		}
	}
	session.evasiveStreak = streak

	if snap.active.fromPlan {
		session.planIndex = snap.active.planIndex + 1
	}
	session.active = nil
	session.pending = nil

	switch routing.Action {
	case tools.ActionFollowUp:
		parent := snap.active.planIndex
		if parent >= 0 && parent < len(session.Plan) {
			session.Plan[parent].followUpsUsed++
		}
		session.pending = &pendingFollowUp{
			question:    followUpQuestion,
			persona:     snap.active.persona,
			topic:       followUpTopic,
			parentIndex: parent,
		}
	case tools.ActionEndInterview:
		e.setPhase(session, PhaseEvaluating)
	}

	if session.Phase == PhaseInterviewing && session.pending == nil && session.planIndex >= len(session.Plan) {
		e.setPhase(session, PhaseEvaluating)
	}

	logger.WithFields(e.logger, logger.SessionFields(session.ID, turn.Persona)...).Info("turn finalized",
		zap.Int("turn_number", turn.TurnNumber),
		zap.String("quality", analysis.Quality),
		zap.Int("composite", analysis.Composite),
		zap.String("action", routing.Action),
	)

	outcome := &TurnOutcome{
		TurnNumber:      turn.TurnNumber,
		Analysis:        analysis,
		Consistency:     consistency,
		Routing:         routing,
		IsInterviewOver: session.Phase != PhaseInterviewing,
	}
	return turn, outcome, nil
}

// SessionState is the inspection view of a session.
type SessionState struct {
	SessionID       string   `json:"session_id"`
	Company         string   `json:"company"`
	Role            string   `json:"role"`
	Mode            string   `json:"mode"`
	Phase           Phase    `json:"phase"`
	PlanLength      int      `json:"plan_length"`
	PlanIndex       int      `json:"plan_index"`
	TurnsCompleted  int      `json:"turns_completed"`
	FollowUpPending bool     `json:"follow_up_pending"`
	FlagCount       int      `json:"flag_count"`
	CoveredTopics   []string `json:"covered_topics"`
}

// State reports the session's phase and progress.
func (e *Engine) State(sessionID string) (*SessionState, error) {
	session, err := e.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	return &SessionState{
		SessionID:       session.ID,
		Company:         session.Company,
		Role:            session.Role,
		Mode:            session.Mode,
		Phase:           session.Phase,
		PlanLength:      len(session.Plan),
		PlanIndex:       session.planIndex,
		TurnsCompleted:  len(session.Turns),
		FollowUpPending: session.pending != nil,
		FlagCount:       len(session.flags),
		CoveredTopics:   session.coveredTopics(),
	}, nil
}

// Abandon discards a session. Results of any in-flight model calls are
// dropped when they try to finalize; no partial turn is persisted.
func (e *Engine) Abandon(sessionID string) error {
	session, err := e.store.Get(sessionID)
	if err != nil {
		return err
	}

	session.mu.Lock()
	session.closed = true
	session.mu.Unlock()

	e.store.Delete(sessionID)
	e.logger.Info("session abandoned", zap.String(logger.FieldSession, sessionID))
	return nil
}

func (e *Engine) setPhase(session *Session, next Phase) {
	e.logger.Info("phase transition",
		zap.String(logger.FieldSession, session.ID),
		zap.String("from", string(session.Phase)),
		zap.String("to", string(next)),
	)
	session.Phase = next
}
