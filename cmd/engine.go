package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mockview/mockview/internal/ai"
	"github.com/mockview/mockview/internal/ai/gemini"
	"github.com/mockview/mockview/internal/ai/openai"
	"github.com/mockview/mockview/internal/archive"
	"github.com/mockview/mockview/internal/interview"
	"github.com/mockview/mockview/internal/logger"
	"github.com/mockview/mockview/internal/research"
	"github.com/mockview/mockview/internal/secrets"
	"github.com/mockview/mockview/internal/tools"
)

const defaultPresetsFile = "config/presets.yaml"

// newGenerator builds the configured model provider. Gemini is the default;
// openai is selected with ai.provider.
func newGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Generator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ai configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	switch provider {
	case "", "gemini":
		if cfg.Gemini == nil {
			cfg.Gemini = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: cfg.Gemini.APIKeyFile,
			Env:  "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}

		genLogger := logger.WithFields(log, logger.CommonFields("gemini", cfg.Gemini.Model)...)
		return gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)

	case "openai":
		if cfg.OpenAI == nil {
			cfg.OpenAI = &OpenAIConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "openai api key",
			File: cfg.OpenAI.APIKeyFile,
			Env:  "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY_FILE)", err)
		}

		genLogger := logger.WithFields(log, logger.CommonFields("openai", cfg.OpenAI.Model)...)
		return openai.NewGenerator(apiKey, cfg.OpenAI.Model, genLogger)

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

// buildEngine wires the full interview engine from the config.
func buildEngine(ctx context.Context, config *Config, log *zap.Logger) (*interview.Engine, error) {
	generator, err := newGenerator(ctx, config.AI, log)
	if err != nil {
		return nil, fmt.Errorf("building model provider: %w", err)
	}

	maxLogLength := 0
	if config.AI != nil {
		maxLogLength = config.AI.MaxLogLength
	}
	toolbox := tools.NewToolbox(generator, log, maxLogLength)

	presetsFile := config.PresetsFile
	if presetsFile == "" {
		presetsFile = defaultPresetsFile
	}
	presets, err := research.LoadLibrary(presetsFile)
	if err != nil {
		return nil, fmt.Errorf("loading presets: %w", err)
	}
	log.Info("preset library loaded", zap.Int("presets", presets.Len()))

	var archiver interview.Archiver
	if config.ArchiveDir != "" {
		archiver = archive.New(config.ArchiveDir, log)
	}

	return interview.NewEngine(
		toolbox,
		presets,
		research.NewLiveResearcher(generator, log),
		research.NewResumeAnalyzer(toolbox, log),
		archiver,
		log,
		config.Interview,
	), nil
}
