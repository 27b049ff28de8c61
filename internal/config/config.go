package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Realtime   RealtimeConfig   `yaml:"realtime"`
	Storage    StorageConfig    `yaml:"storage"`
}

type LLMConfig struct {
	Providers map[string]ProviderConfig `yaml:"providers,omitempty"`
}

type ProviderConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url,omitempty"`
	Model          string `yaml:"model,omitempty"`
	EmbeddingModel string `yaml:"embedding_model,omitempty"` // openai only
}

type EvaluationConfig struct {
	// Concurrency caps in-flight case pipelines per run. The cap exists to
	// respect upstream provider rate limits, not to saturate CPU.
	Concurrency int `yaml:"concurrency,omitempty"`
	// JudgeModel is a "<provider>:<model-id>" identifier used when a run does
	// not name its own judge.
	JudgeModel string        `yaml:"judge_model,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
}

type RealtimeConfig struct {
	// Model used for transcription on the audio path.
	TranscriptionModel string `yaml:"transcription_model,omitempty"`
	// Models whose text questions are also routed through the realtime
	// transport instead of the request/response path.
	Models          []string      `yaml:"models,omitempty"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout,omitempty"`
	ResponseTimeout time.Duration `yaml:"response_timeout,omitempty"`
}

type StorageConfig struct {
	Type string `yaml:"type,omitempty"` // "sqlite" or "memory"
	Path string `yaml:"path,omitempty"` // SQLite file path
}

const (
	DefaultConcurrency     = 3
	DefaultJudgeModel      = "openai:gpt-4o-mini"
	DefaultConnectTimeout  = 30 * time.Second
	DefaultResponseTimeout = 15 * time.Second
)

func Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// Default returns a config usable without a config file, relying on env vars
// for provider credentials.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.LLM.Providers == nil {
		cfg.LLM.Providers = make(map[string]ProviderConfig)
	}
	if cfg.Evaluation.Concurrency <= 0 {
		cfg.Evaluation.Concurrency = DefaultConcurrency
	}
	if strings.TrimSpace(cfg.Evaluation.JudgeModel) == "" {
		cfg.Evaluation.JudgeModel = DefaultJudgeModel
	}
	if cfg.Realtime.ConnectTimeout <= 0 {
		cfg.Realtime.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.Realtime.ResponseTimeout <= 0 {
		cfg.Realtime.ResponseTimeout = DefaultResponseTimeout
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); v != "" {
		p := cfg.LLM.Providers["claude"]
		p.APIKey = v
		cfg.LLM.Providers["claude"] = p
	} else if v := strings.TrimSpace(os.Getenv("ANTHROPIC_AUTH_TOKEN")); v != "" {
		p := cfg.LLM.Providers["claude"]
		p.APIKey = v
		cfg.LLM.Providers["claude"] = p
	}

	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		p := cfg.LLM.Providers["openai"]
		p.APIKey = v
		cfg.LLM.Providers["openai"] = p
	}
}
