// internal/service/discovery/preprocess.go

package discovery

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"topicpulse/internal/config"
)

// Preprocessor normalizes raw text fragments before extraction
type Preprocessor struct {
	MinTokenLength int
	MaxTokenLength int
	StopWords      map[string]struct{}
}

// NewPreprocessor creates a preprocessor with the English stop words plus
// any configured extras
func NewPreprocessor(cfg config.NLPConfig) *Preprocessor {
	return &Preprocessor{
		MinTokenLength: cfg.MinTokenLength,
		MaxTokenLength: cfg.MaxTokenLength,
		StopWords:      StopWords(cfg.ExtraStopWords...),
	}
}

// Clean returns one cleaned string per input fragment, in the same order.
// A fragment whose tokens are all dropped becomes the empty string.
func (p *Preprocessor) Clean(texts []string) []string {
	cleaned := make([]string, len(texts))
	for i, text := range texts {
		cleaned[i] = p.CleanText(text)
	}
	return cleaned
}

// CleanText lowercases, tokenizes and filters a single fragment
func (p *Preprocessor) CleanText(text string) string {
	tokens := Tokenize(strings.ToLower(text))

	kept := tokens[:0]
	for _, token := range tokens {
		n := utf8.RuneCountInString(token)
		if n < p.MinTokenLength || n > p.MaxTokenLength {
			continue
		}
		if _, stop := p.StopWords[token]; stop {
			continue
		}
		kept = append(kept, token)
	}

	return strings.Join(kept, " ")
}

// Tokenize splits text into word tokens. A token is a run of letters,
// digits, combining marks, hyphens and apostrophes with leading and
// trailing hyphens/apostrophes removed.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !isWordRune(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "-'"); f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '-' || r == '\''
}
