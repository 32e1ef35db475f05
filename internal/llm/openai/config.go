// Package openai implements llm.StructuredExtractor against any
// OpenAI-compatible chat/completions endpoint, including local inference
// servers such as LM Studio.
package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Config for the extraction client.
type Config struct {
	APIKey        string        // if empty, falls back to env LLM_API_KEY, then "lm-studio"
	BaseURL       string        // default http://localhost:1234/v1
	Model         string        // e.g. "fused_3b"
	Temperature   float32       // 0..2
	Timeout       time.Duration // http client timeout; one attempt, no retry
	LenientFields bool          // sanitize near-miss responses before failing
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("LLM_API_KEY")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = "lm-studio"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:1234/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "fused_3b"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}
