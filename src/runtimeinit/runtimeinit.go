// Package runtimeinit is the shared startup sequence: configuration,
// logging, recognition service, clipboard and profile store, in that order.
package runtimeinit

import (
	"fmt"
	"log"

	"profile-clip/src/clipboard"
	"profile-clip/src/config"
	"profile-clip/src/llm"
	"profile-clip/src/ocr"
	"profile-clip/src/profile"
	"profile-clip/src/screenshot"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(bool)
	// SkipPing bypasses the recognition-service reachability check. Offline
	// tools that never call OCR set this.
	SkipPing bool
}

func Bootstrap(opts Options) (*config.Config, *profile.Store, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("OPENROUTER_API_KEY is required. Checked key file %s and OPENROUTER_API_KEY env var", cfg.APIKeyPath)
	}
	if cfg.Model == "" {
		return nil, nil, fmt.Errorf("MODEL is required. Please set it in your .env file")
	}

	llm.Init(&llm.Config{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		Providers: cfg.Providers,
	})
	if !opts.SkipPing {
		if err := llm.Ping(); err != nil {
			return nil, nil, fmt.Errorf("startup check failed: %w", err)
		}
		log.Printf("LLM ping succeeded")
	}

	screenshot.Init()
	ocr.Init()
	if err := clipboard.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize clipboard: %w", err)
	}

	store, err := profile.Open(cfg.ProfilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open profile %s: %w", cfg.ProfilePath, err)
	}

	return cfg, store, nil
}
