package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"fastfox/internal/bridge"
	"fastfox/internal/config"
	"fastfox/internal/extract"
	"fastfox/internal/history"
	"fastfox/internal/label"
	"fastfox/internal/organizer"
	"fastfox/internal/services/caption"
	"fastfox/internal/services/gemini"
	"fastfox/internal/services/llm"
	"fastfox/internal/services/ollama"
)

// buildOrganizer wires the configured collaborators into an Organizer.
// store may be nil when history recording is off.
func buildOrganizer(ctx context.Context, cfg *config.Config, store *history.Store, logger *slog.Logger) (*organizer.Organizer, error) {
	completer, err := buildCompleter(cfg)
	if err != nil {
		return nil, err
	}
	captioner, err := buildCaptioner(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := extract.Options{
		CSVEncodings: cfg.Organize.CSVEncodings,
		Captioner:    captioner,
		Logger:       logger,
	}
	if cfg.Bridge.Enabled {
		opts.Converter = bridge.New(bridge.Config{
			Binary:   cfg.Bridge.Binary,
			LockPath: filepath.Join(cfg.LockDir(), "bridge.lock"),
			Timeout:  time.Duration(cfg.Bridge.TimeoutSeconds) * time.Second,
		}, logger)
	}
	extractor, err := extract.New(opts)
	if err != nil {
		return nil, err
	}

	synth := label.New(label.Options{
		Completer:   completer,
		PromptChars: cfg.Organize.PromptChars,
		MaxTokens:   cfg.LLM.MaxTokens,
		MaxChars:    cfg.Organize.LabelMaxChars,
		Logger:      logger,
	})

	orgOpts := organizer.Options{
		Extractor:   extractor,
		Synthesizer: synth,
		Collision:   cfg.Organize.Collision,
		LockDir:     cfg.LockDir(),
		Logger:      logger,
	}
	if store != nil && cfg.Organize.RecordHistory {
		orgOpts.History = store
	}
	return organizer.New(orgOpts)
}

func buildCompleter(cfg *config.Config) (label.Completer, error) {
	switch cfg.LLM.Provider {
	case config.ProviderOllama:
		client, err := ollama.New(ollama.Config{
			ServerURL: cfg.LLM.BaseURL,
			Model:     cfg.LLM.Model,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderOpenAI:
		return llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		}, llm.WithRetryMaxAttempts(cfg.LLM.RetryAttempts)), nil
	default:
		return nil, fmt.Errorf("llm.provider: unsupported value %q", cfg.LLM.Provider)
	}
}

func buildCaptioner(ctx context.Context, cfg *config.Config) (extract.Captioner, error) {
	switch cfg.Caption.Provider {
	case config.ProviderGemini:
		captioner, err := gemini.New(ctx, gemini.Config{
			APIKey: cfg.Caption.APIToken,
			Model:  cfg.Caption.Model,
		})
		if err != nil {
			return nil, err
		}
		return captioner, nil
	case config.ProviderHuggingFace:
		return caption.NewClient(caption.Config{
			APIToken:       cfg.Caption.APIToken,
			BaseURL:        cfg.Caption.BaseURL,
			Model:          cfg.Caption.Model,
			TimeoutSeconds: cfg.Caption.TimeoutSeconds,
		}), nil
	default:
		return nil, fmt.Errorf("caption.provider: unsupported value %q", cfg.Caption.Provider)
	}
}
