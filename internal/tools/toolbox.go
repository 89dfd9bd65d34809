package tools

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mockview/mockview/internal/ai"
	"github.com/mockview/mockview/internal/logger"
)

const defaultMaxLogLength = 200

// Interviewer persona identifiers. The fixed rotation order is HM, Tech, HR.
const (
	PersonaHM   = "HM"
	PersonaTech = "Tech"
	PersonaHR   = "HR"
)

// PersonaOrder is the fixed persona rotation.
var PersonaOrder = []string{PersonaHM, PersonaTech, PersonaHR}

// personaStyles parameterize question tone per persona.
var personaStyles = map[string]string{
	PersonaHM:   "Warm but sharp. Start friendly, then ask the real question. Focus on business fit, culture, leadership.",
	PersonaTech: "Dry and precise. No fluff. If the answer is vague, say 'Can you be more specific?'. Focus on technical depth.",
	PersonaHR:   "Friendly and empathetic but persistent. Dig into motivations, soft skills, and career goals.",
}

// ValidPersona reports whether id names one of the three interviewer personas.
func ValidPersona(id string) bool {
	return id == PersonaHM || id == PersonaTech || id == PersonaHR
}

// WeightsForPersona selects composite weights by the asking persona. Tech
// topics weight STAR lowest; HM and HR topics weight it highest.
func WeightsForPersona(persona string) CompositeWeights {
	if persona == PersonaTech {
		return TechnicalWeights
	}
	return BehavioralWeights
}

// Toolbox bundles the stateless analysis functions of the tool layer. Every
// method builds a focused prompt, invokes the generator, and validates the
// reply into a typed result.
type Toolbox struct {
	gen       ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

// NewToolbox creates a Toolbox around the given generator.
func NewToolbox(gen ai.Generator, log *zap.Logger, maxLogLength int) *Toolbox {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Toolbox{
		gen:       gen,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// generate runs one model call with request/response debug logging.
func (t *Toolbox) generate(ctx context.Context, tool, system, prompt string) (string, error) {
	t.logger.Debug("tool request",
		zap.String("tool", tool),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, t.maxLogLen)),
	)

	raw, err := t.gen.GenerateContent(ctx, system, prompt)
	if err != nil {
		return "", err
	}

	t.logger.Debug("tool response",
		zap.String("tool", tool),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, t.maxLogLen)),
	)

	return raw, nil
}
