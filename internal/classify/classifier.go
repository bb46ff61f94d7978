// Package classify turns free-form, mixed-language query text into a
// ResolvedIntent: detected language, business category and price intent.
package classify

import (
	"context"
	"log"
	"strings"
	"unicode"

	"github.com/dukaanlabs/dukaan/internal/domain"
	"github.com/dukaanlabs/dukaan/internal/lexicon"
)

// CategoryClassifier is the external language-understanding fallback.
// Implementations must be timeout-bounded; returned errors are swallowed
// here and degrade to an unresolved category.
type CategoryClassifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Classifier resolves language, category and price intent for a query.
// It is pure apart from the optional external fallback call.
type Classifier struct {
	fallback CategoryClassifier
}

// New creates a Classifier. fallback may be nil, in which case unresolved
// lexicon lookups stay unresolved.
func New(fallback CategoryClassifier) *Classifier {
	return &Classifier{fallback: fallback}
}

// Resolve classifies the query text.
func (c *Classifier) Resolve(ctx context.Context, text string) domain.ResolvedIntent {
	intent := domain.ResolvedIntent{
		Language:    DetectLanguage(text),
		PriceIntent: detectPriceIntent(text),
	}

	intent.Category = matchCategory(text)
	if intent.Category == "" {
		intent.Category = disambiguate(text)
	}
	if intent.Category == "" && c.fallback != nil {
		label, err := c.fallback.Classify(ctx, text)
		if err != nil {
			log.Printf("classify: external fallback failed, continuing unresolved: %v", err)
		} else if domain.IsKnownCategory(label) {
			intent.Category = label
		}
	}

	return intent
}

// DetectLanguage scans for Devanagari versus Latin letters.
// Devanagari only -> hindi; both -> mixed; otherwise english.
func DetectLanguage(text string) domain.Language {
	var devanagari, latin bool
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Devanagari, r):
			devanagari = true
		case r < 128 && unicode.IsLetter(r):
			latin = true
		}
		if devanagari && latin {
			return domain.LanguageMixed
		}
	}
	if devanagari {
		return domain.LanguageHindi
	}
	return domain.LanguageEnglish
}

// matchCategory checks the lexicon against both the lowercased and the
// original-cased text. Devanagari substrings survive only in the original
// form, so both views are searched.
func matchCategory(text string) string {
	lowered := strings.ToLower(text)
	for _, entry := range lexicon.Entries() {
		for _, syn := range entry.Synonyms {
			if strings.Contains(lowered, strings.ToLower(syn)) || strings.Contains(text, syn) {
				return entry.Category
			}
		}
	}
	return ""
}

// disambiguate applies the hard-coded Devanagari rules for the two
// categories whose generic words overlap: कपड़ा (cloth) and गहना/सोना
// (ornament/gold) appear in everyday phrases the lexicon cannot carry.
// Applied only after the lexicon failed.
func disambiguate(text string) string {
	for _, word := range []string{"कपड़ा", "कपड़े", "कपड़ों"} {
		if strings.Contains(text, word) {
			return "clothing"
		}
	}
	for _, word := range []string{"गहना", "गहने", "जेवर", "सोना चांदी", "सोने की"} {
		if strings.Contains(text, word) {
			return "jewellery"
		}
	}
	return ""
}

// detectPriceIntent scans the precedence-ordered buckets and returns at
// most one intent; the first matching bucket wins.
func detectPriceIntent(text string) domain.PriceIntent {
	lowered := strings.ToLower(text)
	for _, bucket := range lexicon.PriceIntentBuckets() {
		for _, syn := range bucket.Synonyms {
			if strings.Contains(lowered, strings.ToLower(syn)) || strings.Contains(text, syn) {
				return bucket.Intent
			}
		}
	}
	return ""
}

// IsGreeting reports whether the query is a greeting or too short to be
// anything else. Single-word keywords match whole words only, so "hi"
// cannot fire inside "chahiye".
func IsGreeting(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < 5 {
		return true
	}
	lowered := strings.ToLower(trimmed)
	words := strings.Fields(lowered)
	for _, kw := range lexicon.GreetingKeywords() {
		if strings.ContainsRune(kw, ' ') {
			if strings.Contains(lowered, kw) {
				return true
			}
			continue
		}
		for _, w := range words {
			if strings.Trim(w, ".,!?;:\"'()") == kw {
				return true
			}
		}
	}
	return false
}

// IsPersonal reports whether the query is about the assistant itself.
func IsPersonal(text string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range lexicon.PersonalKeywords() {
		if strings.Contains(lowered, strings.ToLower(kw)) || strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Tokens splits the query into candidate keywords for the partial-match
// fallback, keeping only words longer than 2 characters.
func Tokens(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		word := strings.Trim(f, ".,!?;:\"'()")
		if len([]rune(word)) > 2 {
			tokens = append(tokens, word)
		}
	}
	return tokens
}
