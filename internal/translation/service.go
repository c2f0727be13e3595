package translation

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured is returned by providers that lack credentials or an endpoint.
	ErrNotConfigured = errors.New("translation provider is not configured")
	// ErrEmptyTranslation is returned when a provider answers without usable text.
	ErrEmptyTranslation = errors.New("translation response was empty")
)

// Provider translates free-form text between languages.
type Provider interface {
	Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error)
	Name() string
	SupportedLanguages() []string
}

// TranslateRequest describes one provider call.
type TranslateRequest struct {
	Text       string
	SourceLang string // table code, or "auto"
	TargetLang string
}

// TranslateResponse contains translated text and provider metadata.
type TranslateResponse struct {
	Text         string
	SourceLang   string
	TargetLang   string
	ProviderName string
	LatencyMs    int64
}
