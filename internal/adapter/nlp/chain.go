package nlp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"topicpulse/internal/config"
	"topicpulse/internal/domain/topic"
	"topicpulse/internal/worker"
)

// ErrNoProvider is returned when no analyzer provider has credentials
var ErrNoProvider = errors.New("no entity analyzer provider configured")

// Provider is one named analyzer in a chain
type Provider struct {
	Name     string
	Analyzer topic.EntityAnalyzer
}

// Chain tries providers in order and returns the first success
type Chain struct {
	providers []Provider
	timeout   time.Duration
	logger    *slog.Logger
}

var _ topic.EntityAnalyzer = (*Chain)(nil)

// NewChain builds a fallback chain; timeout bounds each provider call
func NewChain(timeout time.Duration, logger *slog.Logger, providers ...Provider) *Chain {
	return &Chain{
		providers: providers,
		timeout:   timeout,
		logger:    logger.With("component", "entity_analyzer"),
	}
}

// NewFromConfig builds the chain Gemini, OpenAI, Anthropic from the
// providers that carry an API key
func NewFromConfig(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Chain, error) {
	var providers []Provider

	if cfg.Gemini.APIKey != "" {
		g, err := NewGeminiAnalyzer(ctx, cfg.Gemini)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		providers = append(providers, Provider{Name: "gemini", Analyzer: g})
	}
	if cfg.OpenAI.APIKey != "" {
		o, err := NewOpenAIAnalyzer(cfg.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		providers = append(providers, Provider{Name: "openai", Analyzer: o})
	}
	if cfg.Anthropic.APIKey != "" {
		a, err := NewAnthropicAnalyzer(cfg.Anthropic)
		if err != nil {
			return nil, fmt.Errorf("anthropic: %w", err)
		}
		providers = append(providers, Provider{Name: "anthropic", Analyzer: a})
	}

	if len(providers) == 0 {
		return nil, ErrNoProvider
	}
	return NewChain(cfg.Timeout, logger, providers...), nil
}

// Analyze returns the entities of the first provider that succeeds.
// When every provider fails the joined error is transient if any part was.
func (c *Chain) Analyze(ctx context.Context, text string) ([]topic.Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if len(c.providers) == 0 {
		return nil, ErrNoProvider
	}

	var (
		errs      []error
		transient bool
	)
	for _, p := range c.providers {
		entities, err := c.call(ctx, p, text)
		if err == nil {
			return entities, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		c.logger.Warn("entity analyzer failed, trying next provider", "provider", p.Name, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
		transient = transient || worker.IsTransient(err)
	}

	joined := errors.Join(errs...)
	if transient {
		return nil, worker.Transient(joined)
	}
	return nil, joined
}

func (c *Chain) call(ctx context.Context, p Provider, text string) ([]topic.Entity, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return p.Analyzer.Analyze(ctx, text)
}
