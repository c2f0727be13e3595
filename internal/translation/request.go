package translation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"horse.fit/polyglot/internal/language"
)

// Tier identifies which stage of the fallback chain produced a result.
type Tier string

const (
	TierPrimaryAI       Tier = "primary_ai"
	TierFallbackService Tier = "fallback_service"
	TierLocalDictionary Tier = "local_dictionary"
)

// Preference is the caller's hint for where the chain should start.
type Preference string

const (
	PreferPrimaryAI Preference = "primary_ai"
	PreferSecondary Preference = "secondary"
)

var (
	ErrEmptyText           = errors.New("text is required")
	ErrMissingTarget       = errors.New("target language is required")
	ErrUnsupportedLanguage = errors.New("language is not supported")
	ErrUnknownPreference   = errors.New("unknown provider preference")
)

// Request is one user-initiated translate action.
type Request struct {
	Text           string
	SourceLanguage string
	TargetLanguage string
	Preferred      Preference
}

// Result is what the pipeline hands back. TranslatedText is never empty for a
// request built with NewRequest.
type Result struct {
	TranslatedText string    `json:"translated_text"`
	ProviderUsed   Tier      `json:"provider_used"`
	ProviderName   string    `json:"provider_name"`
	SourceLanguage string    `json:"source_language"`
	TargetLanguage string    `json:"target_language"`
	Attempts       []Attempt `json:"attempts,omitempty"`
}

// Attempt records a tier that was tried and failed.
type Attempt struct {
	Tier      Tier   `json:"tier"`
	Provider  string `json:"provider"`
	Error     string `json:"error"`
	LatencyMs int64  `json:"latency_ms"`
}

// NewRequest validates and canonicalizes a translate action. A blank or "auto"
// source language asks the pipeline to detect it.
func NewRequest(text, sourceLanguage, targetLanguage string, preferred Preference) (Request, error) {
	if strings.TrimSpace(text) == "" {
		return Request{}, ErrEmptyText
	}

	if strings.TrimSpace(targetLanguage) == "" {
		return Request{}, ErrMissingTarget
	}
	target, ok := language.Lookup(targetLanguage)
	if !ok {
		return Request{}, fmt.Errorf("target %q: %w", targetLanguage, ErrUnsupportedLanguage)
	}

	source := language.Auto
	if !language.IsAuto(sourceLanguage) {
		entry, ok := language.Lookup(sourceLanguage)
		if !ok {
			return Request{}, fmt.Errorf("source %q: %w", sourceLanguage, ErrUnsupportedLanguage)
		}
		source = entry.Code
	}

	if preferred == "" {
		preferred = PreferPrimaryAI
	}
	if preferred != PreferPrimaryAI && preferred != PreferSecondary {
		return Request{}, fmt.Errorf("%q: %w", preferred, ErrUnknownPreference)
	}

	return Request{
		Text:           text,
		SourceLanguage: source,
		TargetLanguage: target.Code,
		Preferred:      preferred,
	}, nil
}

var preferenceSpellings = map[string]Preference{
	"":                 PreferPrimaryAI,
	"primary":          PreferPrimaryAI,
	"primary_ai":       PreferPrimaryAI,
	"ai":               PreferPrimaryAI,
	"secondary":        PreferSecondary,
	"fallback":         PreferSecondary,
	"fallback_service": PreferSecondary,
}

// ParsePreference accepts the spellings used by the CLI and the HTTP API.
func ParsePreference(raw string) (Preference, error) {
	if preferred, ok := preferenceSpellings[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return preferred, nil
	}
	return "", fmt.Errorf("%q: %w", raw, ErrUnknownPreference)
}

// PreferenceSpellings lists every accepted preference value, sorted.
func PreferenceSpellings() []string {
	out := make([]string, 0, len(preferenceSpellings))
	for spelling := range preferenceSpellings {
		out = append(out, spelling)
	}
	sort.Strings(out)
	return out
}
