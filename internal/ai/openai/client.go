package openai

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultModel = "gpt-4o-mini"

type completer interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Generator wraps the official openai-go chat completions API behind the
// ai.Generator contract.
type Generator struct {
	completions completer
	model       string
	logger      *zap.Logger
}

// NewGenerator creates a Generator backed by the OpenAI chat completions API.
func NewGenerator(apiKey, model string, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &Generator{
		completions: &client.Chat.Completions,
		model:       model,
		logger:      logger,
	}, nil
}

// GenerateContent sends the system instruction and user message as a single
// chat completion request and returns the first choice's content.
func (g *Generator) GenerateContent(ctx context.Context, system, message string) (string, error) {
	if g == nil || g.completions == nil {
		return "", errors.New("openai generator is not initialized")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("message must not be empty")
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if system = strings.TrimSpace(system); system != "" {
		msgs = append(msgs, openai.SystemMessage(system))
	}
	msgs = append(msgs, openai.UserMessage(message))

	resp, err := g.completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(g.model),
		Messages: msgs,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai api returned empty choices")
	}

	output := strings.TrimSpace(resp.Choices[0].Message.Content)
	if output == "" {
		return "", errors.New("openai api returned empty response")
	}

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
