package nlp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"topicpulse/internal/config"
	"topicpulse/internal/domain/topic"
)

// OpenAIAnalyzer extracts entities with a chat completion
type OpenAIAnalyzer struct {
	client *openai.Client
	model  openai.ChatModel
}

var _ topic.EntityAnalyzer = (*OpenAIAnalyzer)(nil)

// NewOpenAIAnalyzer creates the OpenAI client. Retries are left to the worker pool.
func NewOpenAIAnalyzer(cfg config.ProviderConfig) (*OpenAIAnalyzer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithMaxRetries(0),
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSpace(cfg.BaseURL)))
	}

	model := openai.ChatModelGPT4oMini
	if strings.TrimSpace(cfg.Model) != "" {
		model = openai.ChatModel(strings.TrimSpace(cfg.Model))
	}

	client := openai.NewClient(opts...)
	return &OpenAIAnalyzer{client: &client, model: model}, nil
}

// Analyze asks the chat model for the salient entities of text as JSON
func (o *OpenAIAnalyzer) Analyze(ctx context.Context, text string) ([]topic.Entity, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildPrompt(text)),
		},
	})
	if err != nil {
		return nil, classifyOpenAIErr(fmt.Errorf("openai API error: %w", err))
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from openai")
	}

	entities, err := parseEntities(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	return entities, nil
}

func classifyOpenAIErr(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode, err)
	}
	return classifyNetErr(err)
}
