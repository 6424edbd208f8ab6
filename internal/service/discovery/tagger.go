// internal/service/discovery/tagger.go

package discovery

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"topicpulse/internal/domain/topic"
)

// LexiconTagger classifies a term's grammatical role from word lists and
// suffix rules. Nouns map to entity, verbs to action, adjectives to
// attribute and everything else to other. Multi-word terms are tagged by
// their last word.
type LexiconTagger struct {
	functionWords map[string]struct{}
}

var _ topic.Tagger = (*LexiconTagger)(nil)

// NewLexiconTagger creates a tagger that treats the English stop words as
// function words
func NewLexiconTagger() *LexiconTagger {
	fw := StopWords(extraFunctionWords...)
	return &LexiconTagger{functionWords: fw}
}

type suffixRule struct {
	suffix   string
	category topic.Category
}

// Checked in order; the first matching suffix wins.
var suffixRules = []suffixRule{
	{"ing", topic.CategoryAction},
	{"ed", topic.CategoryAction},
	{"ize", topic.CategoryAction},
	{"ify", topic.CategoryAction},
	{"ous", topic.CategoryAttribute},
	{"ful", topic.CategoryAttribute},
	{"ive", topic.CategoryAttribute},
	{"able", topic.CategoryAttribute},
	{"ible", topic.CategoryAttribute},
	{"less", topic.CategoryAttribute},
	{"ish", topic.CategoryAttribute},
	{"ly", topic.CategoryOther},
}

// a suffix only applies when at least this many runes precede it
const minStemRunes = 3

// Tag returns the category of term
func (t *LexiconTagger) Tag(term string) topic.Category {
	words := strings.Fields(term)
	if len(words) == 0 {
		return topic.CategoryOther
	}
	head := words[len(words)-1]

	first, _ := utf8.DecodeRuneInString(head)
	if unicode.IsUpper(first) && len(words) > 1 {
		return topic.CategoryEntity
	}

	word := strings.ToLower(strings.Trim(head, "-'.,!?\""))
	if word == "" || isNumeric(word) {
		return topic.CategoryOther
	}
	if _, ok := t.functionWords[word]; ok {
		return topic.CategoryOther
	}
	if _, ok := verbs[word]; ok {
		return topic.CategoryAction
	}
	if _, ok := adjectives[word]; ok {
		return topic.CategoryAttribute
	}
	if _, ok := nouns[word]; ok {
		return topic.CategoryEntity
	}
	if unicode.IsUpper(first) {
		return topic.CategoryEntity
	}

	n := utf8.RuneCountInString(word)
	for _, rule := range suffixRules {
		if strings.HasSuffix(word, rule.suffix) && n-utf8.RuneCountInString(rule.suffix) >= minStemRunes {
			return rule.category
		}
	}

	return topic.CategoryEntity
}

func isNumeric(word string) bool {
	if _, err := strconv.ParseFloat(strings.ReplaceAll(word, ",", ""), 64); err == nil {
		return true
	}
	_, ok := numberWords[word]
	return ok
}

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var extraFunctionWords = []string{
	"also", "yet", "still", "even", "ever", "never", "always", "often", "however", "though",
	"although", "within", "without", "upon", "among", "via", "per", "vs", "would", "could",
	"might", "must", "shall", "may", "whose", "whether", "hence", "thus",
}

var numberWords = wordSet(
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten",
	"eleven", "twelve", "twenty", "thirty", "forty", "fifty", "hundred", "thousand",
	"million", "billion", "trillion",
)

var verbs = wordSet(
	"go", "run", "make", "take", "get", "see", "know", "think", "come", "give", "find", "tell",
	"ask", "work", "seem", "feel", "try", "leave", "call", "keep", "let", "begin", "help", "show",
	"hear", "play", "move", "believe", "bring", "happen", "write", "sit", "stand", "lose", "pay",
	"meet", "include", "continue", "learn", "change", "lead", "understand", "watch", "follow",
	"stop", "create", "speak", "read", "spend", "grow", "walk", "win", "teach", "offer",
	"remember", "consider", "appear", "buy", "serve", "die", "send", "build", "stay", "fall",
	"reach", "kill", "raise", "pass", "sell", "decide", "return", "explain", "hope", "develop",
	"carry", "break", "receive", "agree", "produce", "eat", "catch", "choose", "launch",
	"announce", "release", "vote", "resign", "sue", "hack", "crash", "explode", "invest", "rise",
	"surge", "soar", "plunge", "merge", "acquire", "unveil", "reveal", "discover", "fight",
	"protest", "publish", "finish", "establish", "punish", "vanish", "cherish", "flourish",
	"nourish", "went", "gone", "ran", "made", "took", "got", "saw", "knew", "thought", "came",
	"gave", "found", "told", "became", "left", "felt", "brought", "began", "kept", "held",
	"wrote", "stood", "heard", "meant", "met", "paid", "sat", "spoke", "led", "grew", "lost",
	"fell", "sent", "built", "understood", "drew", "broke", "spent", "won", "sold", "caught",
	"bought", "fought", "taught", "chose", "rose", "shot", "ate", "wore", "drove", "spread",
	"said", "says",
)

var adjectives = wordSet(
	"happy", "sad", "good", "bad", "new", "old", "great", "big", "small", "large", "little",
	"long", "short", "high", "low", "young", "important", "different", "real", "best", "better",
	"worst", "worse", "hot", "cold", "free", "full", "easy", "hard", "early", "late", "strong",
	"weak", "true", "false", "fast", "slow", "rich", "poor", "dark", "bright", "clear", "red",
	"blue", "green", "black", "white", "huge", "tiny", "smart", "cheap", "viral", "global",
	"local", "national", "social", "digital", "political", "public", "private", "major", "top",
	"latest", "daily", "weekly", "monthly", "yearly", "friendly", "lovely", "likely", "ugly",
	"holy", "lonely", "silly", "deadly", "costly", "elderly", "naked", "wicked", "sacred",
	"rugged", "beloved", "quick", "safe", "sure", "main", "nice", "fine", "fresh", "pure",
	"rare", "wild", "wise", "calm", "crazy", "busy", "angry", "funny", "pretty", "ready",
	"heavy", "healthy", "wealthy", "lucky", "scary", "sunny", "rainy", "windy", "cloudy",
	"spicy", "tasty", "alive", "first", "last", "next", "final", "open", "official",
)

// nouns that would otherwise match a suffix rule
var nouns = wordSet(
	"thing", "something", "nothing", "anything", "everything", "king", "ring", "spring",
	"string", "wing", "sibling", "ceiling", "morning", "evening", "building", "wedding",
	"pudding", "clothing", "housing", "earring", "offspring", "viking", "lightning", "darling",
	"speed", "breed", "creed", "greed", "olive", "archive", "motive", "executive", "detective",
	"table", "cable", "vegetable", "fable", "timetable", "constable", "family", "supply",
	"reply", "assembly", "anomaly", "monopoly", "rally", "ally", "belly", "jelly", "bully",
	"butterfly", "lily", "computer",
)
