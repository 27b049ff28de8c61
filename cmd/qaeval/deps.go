package main

import (
	"fmt"
	"log/slog"

	"github.com/stellarlinkco/qa-eval/internal/config"
	"github.com/stellarlinkco/qa-eval/internal/contextdoc"
	"github.com/stellarlinkco/qa-eval/internal/llm"
	"github.com/stellarlinkco/qa-eval/internal/orchestrator"
	"github.com/stellarlinkco/qa-eval/internal/realtime"
	"github.com/stellarlinkco/qa-eval/internal/scoring"
	"github.com/stellarlinkco/qa-eval/internal/store"
)

// buildOrchestrator wires the full evaluation pipeline from config.
func buildOrchestrator(cfg *config.Config, st store.Store, logger *slog.Logger) (*orchestrator.Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("qaeval: nil config")
	}
	if logger == nil {
		logger = slog.Default()
	}

	registry, err := llm.NewRegistryFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	var embedder llm.Embedder
	if e, ok := registry.Embedder(); ok {
		embedder = e
	} else {
		logger.Warn("no embedding provider configured, cosine scoring uses term frequency")
	}

	scorer := &scoring.Aggregator{
		Embedder: embedder,
		Judge: &scoring.Judge{
			Registry:     registry,
			DefaultModel: cfg.Evaluation.JudgeModel,
			Logger:       logger,
		},
		Logger: logger,
	}

	var transport realtime.Transport
	if pcfg, ok := cfg.LLM.Providers["openai"]; ok {
		transport = realtime.NewOpenAITransport(pcfg.APIKey, pcfg.BaseURL, pcfg.Model, realtime.Config{
			TranscriptionModel: cfg.Realtime.TranscriptionModel,
			ConnectTimeout:     cfg.Realtime.ConnectTimeout,
			ResponseTimeout:    cfg.Realtime.ResponseTimeout,
		})
	} else {
		logger.Warn("no openai provider configured, audio questions will fail")
	}

	return &orchestrator.Orchestrator{
		Store:          st,
		Registry:       registry,
		Transport:      transport,
		Scorer:         scorer,
		Loader:         &contextdoc.Loader{Logger: logger},
		Concurrency:    cfg.Evaluation.Concurrency,
		JudgeModel:     cfg.Evaluation.JudgeModel,
		RealtimeModels: cfg.Realtime.Models,
		CaseTimeout:    cfg.Evaluation.Timeout,
		Logger:         logger,
	}, nil
}
