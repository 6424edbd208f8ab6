package nlp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"topicpulse/internal/config"
	"topicpulse/internal/domain/topic"
)

var entitySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"entities": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":      {Type: genai.TypeString},
					"type":      {Type: genai.TypeString, Enum: entityTypes},
					"salience":  {Type: genai.TypeNumber},
					"sentiment": {Type: genai.TypeNumber},
					"mentions":  {Type: genai.TypeInteger},
				},
				Required: []string{"name", "type", "salience", "sentiment", "mentions"},
			},
		},
	},
	Required: []string{"entities"},
}

// GeminiAnalyzer extracts entities with Gemini structured output
type GeminiAnalyzer struct {
	client *genai.Client
	model  string
}

var _ topic.EntityAnalyzer = (*GeminiAnalyzer)(nil)

// NewGeminiAnalyzer creates the Gemini client
func NewGeminiAnalyzer(ctx context.Context, cfg config.ProviderConfig) (*GeminiAnalyzer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("GEMINI_MODEL is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}

	return &GeminiAnalyzer{client: client, model: strings.TrimSpace(cfg.Model)}, nil
}

// Analyze asks Gemini for the salient entities of text using a response schema
func (g *GeminiAnalyzer) Analyze(ctx context.Context, text string) ([]topic.Entity, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(buildPrompt(text)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			CandidateCount:    1,
			ResponseMIMEType:  "application/json",
			ResponseSchema:    entitySchema,
		},
	)
	if err != nil {
		return nil, classifyGeminiErr(err)
	}

	entities, err := parseEntities(resp.Text())
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return entities, nil
}

func classifyGeminiErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, err)
	}
	return classifyNetErr(err)
}
