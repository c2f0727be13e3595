package translation

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"horse.fit/polyglot/internal/language"
)

const (
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel    = "gemini-1.5-flash"
)

const geminiRequestTemplate = `{"contents":[{"role":"user","parts":[{"text":""}]}]}`

// GeminiProvider calls the Generative Language generateContent endpoint.
type GeminiProvider struct {
	endpoint string
	model    string
	apiKey   string
	http     *resty.Client
}

func NewGeminiProvider(endpoint, model, apiKey string, timeout time.Duration) *GeminiProvider {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultGeminiEndpoint
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiProvider{
		endpoint: endpoint,
		model:    model,
		apiKey:   strings.TrimSpace(apiKey),
		http:     newHTTPClient(timeout),
	}
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) ModelName() string {
	if p == nil {
		return ""
	}
	return p.model
}

func (p *GeminiProvider) SupportedLanguages() []string {
	return language.Codes()
}

func (p *GeminiProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if p == nil || p.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	body, err := geminiRequestBody(BuildPrompt(req.Text, req.SourceLang, req.TargetLang))
	if err != nil {
		return nil, fmt.Errorf("build gemini request: %w", err)
	}

	started := time.Now()
	resp, err := p.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", p.apiKey).
		SetBody(body).
		Post(p.generateURL())
	if err != nil {
		return nil, fmt.Errorf("send gemini request: %w", err)
	}
	if resp.IsError() {
		if msg := strings.TrimSpace(gjson.GetBytes(resp.Body(), "error.message").String()); msg != "" {
			return nil, fmt.Errorf("gemini status %d: %s", resp.StatusCode(), msg)
		}
		return nil, fmt.Errorf("gemini status %d", resp.StatusCode())
	}

	if reason := gjson.GetBytes(resp.Body(), "promptFeedback.blockReason").String(); reason != "" {
		return nil, fmt.Errorf("gemini blocked prompt: %s", reason)
	}
	translated := strings.TrimSpace(geminiResponseText(resp.Body()))
	if translated == "" {
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

func (p *GeminiProvider) generateURL() string {
	return p.endpoint + "/models/" + url.PathEscape(p.model) + ":generateContent"
}

func geminiRequestBody(prompt string) ([]byte, error) {
	body, err := sjson.SetBytes([]byte(geminiRequestTemplate), "contents.0.parts.0.text", prompt)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(body, "generationConfig.temperature", 0.2)
}

// geminiResponseText joins the text parts of the first candidate.
func geminiResponseText(body []byte) string {
	var sb strings.Builder
	for _, part := range gjson.GetBytes(body, "candidates.0.content.parts.#.text").Array() {
		sb.WriteString(part.String())
	}
	return sb.String()
}
