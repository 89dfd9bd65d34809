package tools

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// stubGenerator scripts the model boundary for tests.
type stubGenerator struct {
	response string
	err      error
	calls    int
	lastSys  string
	lastMsg  string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, prompt string) (string, error) {
	s.calls++
	s.lastSys = system
	s.lastMsg = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string { return "stub-model" }

var errModelDown = errors.New("model unavailable")

func newTestToolbox(gen *stubGenerator) *Toolbox {
	return NewToolbox(gen, zap.NewNop(), 0)
}
