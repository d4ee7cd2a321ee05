package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything read from the environment. godotenv loading
// happens in main before Load is called.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"local"`

	// LLM gateway (OpenAI-style chat completions endpoint)
	LLMGatewayURL string        `envconfig:"LLM_GATEWAY_URL"`
	LLMAPIKey     string        `envconfig:"LLM_API_KEY"`
	LLMModel      string        `envconfig:"LLM_MODEL" default:"gpt-4o"`
	LLMTimeout    time.Duration `envconfig:"LLM_TIMEOUT" default:"25s"`
	LLMMaxRetry   time.Duration `envconfig:"LLM_MAX_RETRY_TIME" default:"45s"`
	// How many times an unparseable or schema-invalid model payload is
	// re-asked before the task fails.
	LLMMaxInvalid int  `envconfig:"LLM_MAX_INVALID_RESPONSES" default:"2"`
	MockLLM       bool `envconfig:"USE_MOCK_LLM" default:"false"`

	// Transcription
	TranscribeProvider string `envconfig:"TRANSCRIBE_PROVIDER" default:"http"` // http | assemblyai | mock
	TranscribeURL      string `envconfig:"TRANSCRIBE_URL"`
	AssemblyAIKey      string `envconfig:"ASSEMBLYAI_API_KEY"`
	TranscribeLanguage string `envconfig:"TRANSCRIBE_LANGUAGE" default:"es"`

	// Pipeline
	CallTimeout time.Duration `envconfig:"CALL_TIMEOUT" default:"120s"`

	// Optional sinks
	DatabaseURL string `envconfig:"DATABASE_URL"`
	NatsURL     string `envconfig:"NATS_URL"`

	// Batch mode
	DatasetPath string `envconfig:"DATASET_PATH"`
	ExportPath  string `envconfig:"EXPORT_PATH" default:"call_insights.xlsx"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return &cfg, nil
}

// ValidateForProcessing checks that a real pipeline run can be served.
// Mock modes bypass the external services entirely.
func (c *Config) ValidateForProcessing() error {
	if !c.MockLLM && (c.LLMGatewayURL == "" || c.LLMAPIKey == "") {
		return fmt.Errorf("llm gateway not configured")
	}
	switch c.TranscribeProvider {
	case "http":
		if c.TranscribeURL == "" {
			return fmt.Errorf("TRANSCRIBE_URL not set")
		}
	case "assemblyai":
		if c.AssemblyAIKey == "" {
			return fmt.Errorf("ASSEMBLYAI_API_KEY not set")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown transcribe provider %q", c.TranscribeProvider)
	}
	return nil
}
