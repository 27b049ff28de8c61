package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stellarlinkco/qa-eval/internal/config"
)

func NewRegistryFromConfig(cfg *config.Config) (*Registry, error) {
	if cfg == nil {
		return nil, errors.New("llm: nil config")
	}

	r := NewRegistry()
	for name, pcfg := range cfg.LLM.Providers {
		key := strings.ToLower(strings.TrimSpace(name))
		switch key {
		case "":
			continue
		case "claude", "anthropic":
			r.Register(NewClaudeProvider(pcfg.APIKey, pcfg.BaseURL, pcfg.Model))
		case "openai":
			r.Register(NewOpenAIProvider(pcfg.APIKey, pcfg.BaseURL, pcfg.Model, pcfg.EmbeddingModel))
		default:
			return nil, fmt.Errorf("llm: unknown provider %q", name)
		}
	}

	// The configured judge model must resolve; a bad identifier should fail
	// here, not on the first judged case.
	if judge := strings.TrimSpace(cfg.Evaluation.JudgeModel); judge != "" {
		if _, _, err := r.Resolve(judge); err != nil {
			return nil, fmt.Errorf("llm: judge model: %w", err)
		}
	}

	return r, nil
}
