package interview

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mockview/mockview/internal/research"
	"github.com/mockview/mockview/internal/tools"
	"github.com/mockview/mockview/internal/voice"
)

// Phase is the session lifecycle state.
type Phase string

const (
	PhaseSetup        Phase = "setup"
	PhaseResearching  Phase = "researching"
	PhasePlanning     Phase = "planning"
	PhaseInterviewing Phase = "interviewing"
	PhaseEvaluating   Phase = "evaluating"
	PhaseDone         Phase = "done"
)

// Session modes. Practice mode unlocks tiered hints; real mode withholds them.
const (
	ModePractice = "practice"
	ModeReal     = "real"
)

// FlagExampleRevealed marks a turn whose full example answer was disclosed
// before the candidate answered. The answer's independence is tainted and the
// report treats it as hint-assisted regardless of its quality.
const FlagExampleRevealed = "example_answer_revealed"

// Turn is one finalized question/answer exchange. Append-only and immutable
// once written; exactly one analysis per turn.
type Turn struct {
	TurnNumber   int                      `json:"turn_number"`
	Persona      string                   `json:"persona"`
	Topic        string                   `json:"topic"`
	Question     string                   `json:"question"`
	Answer       string                   `json:"answer"`
	FollowUp     bool                     `json:"follow_up"`
	HintUsed     bool                     `json:"hint_used"`
	VoiceMetrics *voice.Metrics           `json:"voice_metrics,omitempty"`
	Analysis     *tools.AnswerAnalysis    `json:"analysis"`
	Consistency  *tools.ConsistencyResult `json:"consistency,omitempty"`
	AnsweredAt   time.Time                `json:"answered_at"`
}

// MemoryEntry is one question/answer pair in a persona's own memory.
type MemoryEntry struct {
	TurnNumber int
	Question   string
	Answer     string
}

// PersonaMemory is one interviewer's independent view of the session. A
// persona only remembers its own exchanges verbatim; what the other personas
// learn arrives as rolling notes about raised flags, never as transcripts.
type PersonaMemory struct {
	Persona string
	Entries []MemoryEntry
	Notes   []string
}

// Record appends the persona's own exchange.
func (m *PersonaMemory) Record(turnNumber int, question, answer string) {
	m.Entries = append(m.Entries, MemoryEntry{
		TurnNumber: turnNumber,
		Question:   question,
		Answer:     answer,
	})
}

// Observe appends a cross-persona note about another interviewer's turn.
func (m *PersonaMemory) Observe(turnNumber int, persona, topic, quality string, flags []string) {
	note := fmt.Sprintf("turn %d (%s, %s): %s", turnNumber, persona, topic, quality)
	if len(flags) > 0 {
		note += " [" + strings.Join(flags, ", ") + "]"
	}
	m.Notes = append(m.Notes, note)
}

// HistorySummary renders the persona's prior questions for prompt context.
func (m *PersonaMemory) HistorySummary() string {
	if len(m.Entries) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.Entries))
	for _, entry := range m.Entries {
		lines = append(lines, fmt.Sprintf("Q%d: %s", entry.TurnNumber, entry.Question))
	}
	return strings.Join(lines, "\n")
}

// activeQuestion is the served, not-yet-answered question.
type activeQuestion struct {
	question string
	persona  string
	topic    string
	// fromPlan is false for follow-ups; planIndex then names the parent item.
	fromPlan     bool
	planIndex    int
	followUp     bool
	hints        *tools.HintData
	hintRevealed bool
}

// pendingFollowUp is a scheduled but not yet served follow-up question.
type pendingFollowUp struct {
	question    string
	persona     string
	topic       string
	parentIndex int
}

// Session is the mutable per-interview state. All fields behind mu; the
// inFlight guard rejects overlapping turn processing while the lock is
// released around model calls.
type Session struct {
	mu sync.Mutex

	ID            string
	Company       string
	Role          string
	Mode          string
	QuestionCount int
	CreatedAt     time.Time

	Phase  Phase
	Brief  *research.Brief
	Resume *research.ResumeProfile

	Plan      []*PlanItem
	planIndex int
	pending   *pendingFollowUp
	active    *activeQuestion

	Turns    []*Turn
	memories map[string]*PersonaMemory

	flags         []string
	evasiveStreak int

	inFlight bool
	closed   bool

	report     *EvaluationReport
	reportJSON []byte
}

func newSession(id, company, role, mode string, questionCount int) *Session {
	memories := make(map[string]*PersonaMemory, len(tools.PersonaOrder))
	for _, persona := range tools.PersonaOrder {
		memories[persona] = &PersonaMemory{Persona: persona}
	}

	return &Session{
		ID:            id,
		Company:       company,
		Role:          role,
		Mode:          mode,
		QuestionCount: questionCount,
		CreatedAt:     time.Now(),
		Phase:         PhaseSetup,
		memories:      memories,
	}
}

// memory returns the persona's memory, creating it for unknown ids so a
// lookup never panics.
func (s *Session) memory(persona string) *PersonaMemory {
	if s.memories == nil {
		s.memories = make(map[string]*PersonaMemory)
	}
	m, ok := s.memories[persona]
	if !ok {
		m = &PersonaMemory{Persona: persona}
		s.memories[persona] = m
	}
	return m
}

// addFlag appends a session flag, skipping duplicates.
func (s *Session) addFlag(flag string) {
	flag = strings.TrimSpace(flag)
	if flag == "" {
		return
	}
	for _, existing := range s.flags {
		if existing == flag {
			return
		}
	}
	s.flags = append(s.flags, flag)
}

// history renders the finalized turns as consistency-check entries,
// optionally appending the in-flight answer as the newest entry.
func (s *Session) history(currentQuestion, currentAnswer string, currentTurn int) []tools.HistoryEntry {
	entries := make([]tools.HistoryEntry, 0, len(s.Turns)+1)
	for _, turn := range s.Turns {
		entries = append(entries, tools.HistoryEntry{
			TurnNumber: turn.TurnNumber,
			Persona:    turn.Persona,
			Question:   turn.Question,
			Answer:     turn.Answer,
		})
	}
	if currentTurn > 0 {
		entries = append(entries, tools.HistoryEntry{
			TurnNumber: currentTurn,
			Persona:    s.active.persona,
			Question:   currentQuestion,
			Answer:     currentAnswer,
		})
	}
	return entries
}

// coveredTopics lists the topics of finalized turns in order, deduplicated.
func (s *Session) coveredTopics() []string {
	seen := make(map[string]bool, len(s.Turns))
	var topics []string
	for _, turn := range s.Turns {
		key := strings.ToLower(strings.TrimSpace(turn.Topic))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		topics = append(topics, turn.Topic)
	}
	return topics
}

// remainingTopics lists the topics of unconsumed plan items.
func (s *Session) remainingTopics() []string {
	var topics []string
	for i := s.planIndex; i < len(s.Plan); i++ {
		topics = append(topics, s.Plan[i].Topic)
	}
	return topics
}
