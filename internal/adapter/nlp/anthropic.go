package nlp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"topicpulse/internal/config"
	"topicpulse/internal/domain/topic"
)

// AnthropicAnalyzer extracts entities with the Messages API
type AnthropicAnalyzer struct {
	client *anthropic.Client
	model  anthropic.Model
}

var _ topic.EntityAnalyzer = (*AnthropicAnalyzer)(nil)

// NewAnthropicAnalyzer creates the Anthropic client. Retries are left to the worker pool.
func NewAnthropicAnalyzer(cfg config.ProviderConfig) (*AnthropicAnalyzer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithMaxRetries(0),
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSpace(cfg.BaseURL)))
	}

	model := anthropic.ModelClaudeHaiku4_5
	if strings.TrimSpace(cfg.Model) != "" {
		model = anthropic.Model(strings.TrimSpace(cfg.Model))
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicAnalyzer{client: &client, model: model}, nil
}

// Analyze asks Claude for the salient entities of text
func (a *AnthropicAnalyzer) Analyze(ctx context.Context, text string) ([]topic.Entity, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(text))),
		},
	})
	if err != nil {
		return nil, classifyAnthropicErr(fmt.Errorf("anthropic API error: %w", err))
	}

	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("no response from anthropic")
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		sb.WriteString(block.Text)
	}

	entities, err := parseEntities(sb.String())
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	return entities, nil
}

func classifyAnthropicErr(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode, err)
	}
	return classifyNetErr(err)
}
