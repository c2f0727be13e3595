package translation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"horse.fit/polyglot/internal/language"
)

const DefaultLibreTranslateURL = "https://libretranslate.com"

// LibreTranslateProvider is the conventional machine-translation service used
// as the secondary tier.
type LibreTranslateProvider struct {
	translateURL string
	apiKey       string
	http         *resty.Client
}

func NewLibreTranslateProvider(baseURL, apiKey string, timeout time.Duration) *LibreTranslateProvider {
	return &LibreTranslateProvider{
		translateURL: libreTranslateURL(baseURL),
		apiKey:       strings.TrimSpace(apiKey),
		http:         newHTTPClient(timeout),
	}
}

func (p *LibreTranslateProvider) Name() string {
	return "libretranslate"
}

func (p *LibreTranslateProvider) SupportedLanguages() []string {
	return language.Codes()
}

type libreTranslateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

func (p *LibreTranslateProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if p == nil {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	source := language.Auto
	if !language.IsAuto(req.SourceLang) {
		source = language.SecondaryLocale(req.SourceLang)
	}
	target := language.SecondaryLocale(req.TargetLang)

	started := time.Now()
	resp, err := p.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(libreTranslateRequest{
			Q:      req.Text,
			Source: source,
			Target: target,
			Format: "text",
			APIKey: p.apiKey,
		}).
		Post(p.translateURL)
	if err != nil {
		return nil, fmt.Errorf("send libretranslate request: %w", err)
	}
	if resp.IsError() {
		if msg := strings.TrimSpace(gjson.GetBytes(resp.Body(), "error").String()); msg != "" {
			return nil, fmt.Errorf("libretranslate status %d: %s", resp.StatusCode(), msg)
		}
		return nil, fmt.Errorf("libretranslate status %d", resp.StatusCode())
	}

	translated := gjson.GetBytes(resp.Body(), "translatedText").String()
	if strings.TrimSpace(translated) == "" {
		return nil, ErrEmptyTranslation
	}

	return &TranslateResponse{
		Text:         translated,
		SourceLang:   req.SourceLang,
		TargetLang:   req.TargetLang,
		ProviderName: p.Name(),
		LatencyMs:    time.Since(started).Milliseconds(),
	}, nil
}

func libreTranslateURL(raw string) string {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	if base == "" {
		base = DefaultLibreTranslateURL
	}
	if strings.HasSuffix(base, "/translate") {
		return base
	}
	return base + "/translate"
}
