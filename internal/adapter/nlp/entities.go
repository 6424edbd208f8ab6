package nlp

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"slices"
	"strings"

	"topicpulse/internal/domain/topic"
	"topicpulse/internal/worker"
)

const maxPromptRunes = 8000

var entityTypes = []string{
	"PERSON", "LOCATION", "ORGANIZATION", "EVENT", "WORK_OF_ART", "CONSUMER_GOOD", "OTHER",
}

const systemPrompt = `You are an entity analysis tool. Given a text, list the named and common entities it mentions.

Return ONLY a single JSON object of the form:
{"entities": [{"name": "...", "type": "...", "salience": 0.0, "sentiment": 0.0, "mentions": 1}]}

Rules:
- type is one of: PERSON, LOCATION, ORGANIZATION, EVENT, WORK_OF_ART, CONSUMER_GOOD, OTHER
- salience is the importance of the entity to the whole text, in [0,1]; saliences sum to at most 1
- sentiment is the tone towards the entity, in [-1,1]
- mentions is how often the entity occurs
- order entities by salience, highest first
- do not include extra keys`

func buildPrompt(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) > maxPromptRunes {
		runes = runes[:maxPromptRunes]
	}
	return "Text:\n" + string(runes)
}

type entityResponse struct {
	Entities []topic.Entity `json:"entities"`
}

// parseEntities decodes a model reply into normalized entities ordered by salience
func parseEntities(content string) ([]topic.Entity, error) {
	content = cleanJSONResponse(content)

	var parsed entityResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	entities := make([]topic.Entity, 0, len(parsed.Entities))
	for _, e := range parsed.Entities {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			continue
		}
		e.Type = normalizeType(e.Type)
		e.Salience = topic.Clamp01(e.Salience)
		e.Sentiment = clampSentiment(e.Sentiment)
		e.Mentions = max(e.Mentions, 1)
		entities = append(entities, e)
	}

	slices.SortStableFunc(entities, func(a, b topic.Entity) int {
		switch {
		case a.Salience > b.Salience:
			return -1
		case a.Salience < b.Salience:
			return 1
		}
		return 0
	})

	return entities, nil
}

func normalizeType(t string) string {
	t = strings.ToUpper(strings.TrimSpace(t))
	t = strings.ReplaceAll(t, " ", "_")
	if slices.Contains(entityTypes, t) {
		return t
	}
	return "OTHER"
}

func clampSentiment(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < -1:
		return -1
	case v > 1:
		return 1
	}
	return v
}

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}

// classifyStatus marks rate limiting and server errors as retryable
func classifyStatus(code int, err error) error {
	if code == http.StatusTooManyRequests || code/100 == 5 {
		return worker.Transient(err)
	}
	return err
}

func classifyNetErr(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return worker.Transient(err)
	}
	return err
}
