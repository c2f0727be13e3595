package translation

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"horse.fit/polyglot/internal/language"
)

const (
	// DefaultOpenAIEndpoint points to a local OpenAI-compatible endpoint.
	DefaultOpenAIEndpoint = "http://127.0.0.1:8845/v1"
	DefaultOpenAIModel    = "tencent/HY-MT1.5-7B"
)

// OpenAIProvider translates text by calling an OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	endpointURL string
	model       string
	apiKey      string
	http        *resty.Client
}

// NewOpenAIProvider builds a provider for the given endpoint/model. The API key
// is optional; local servers usually run without one.
func NewOpenAIProvider(endpoint, model, apiKey string, timeout time.Duration) *OpenAIProvider {
	trimmedModel := strings.TrimSpace(model)
	if trimmedModel == "" {
		trimmedModel = DefaultOpenAIModel
	}
	return &OpenAIProvider{
		endpointURL: chatCompletionsURL(normalizeEndpoint(endpoint)),
		model:       trimmedModel,
		apiKey:      strings.TrimSpace(apiKey),
		http:        newHTTPClient(timeout),
	}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

// ModelName returns the configured model identifier.
func (p *OpenAIProvider) ModelName() string {
	if p == nil {
		return ""
	}
	return p.model
}

func (p *OpenAIProvider) SupportedLanguages() []string {
	return language.Codes()
}

func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if p == nil {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	if strings.TrimSpace(req.TargetLang) == "" {
		return nil, ErrMissingTarget
	}

	payload := openAIChatRequest{
		Model: p.model,
		Messages: []openAIChatMessage{
			{Role: "user", Content: BuildPrompt(req.Text, req.SourceLang, req.TargetLang)},
		},
		Temperature: 0.3,
	}

	started := time.Now()
	r := p.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload)
	if p.apiKey != "" {
		r.SetAuthToken(p.apiKey)
	}
	resp, err := r.Post(p.endpointURL)
	if err != nil {
		return nil, fmt.Errorf("send translation request: %w", err)
	}
	if resp.IsError() {
		if msg := strings.TrimSpace(gjson.GetBytes(resp.Body(), "error.message").String()); msg != "" {
			return nil, fmt.Errorf("translation endpoint status %d: %s", resp.StatusCode(), msg)
		}
		return nil, fmt.Errorf("translation endpoint status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	choice := gjson.GetBytes(resp.Body(), "choices.0.message.content")
	if !choice.Exists() {
		return nil, fmt.Errorf("translation response missing choices")
	}
	translated := strings.TrimSpace(choice.String())
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

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func normalizeEndpoint(raw string) string {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		return DefaultOpenAIEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		return DefaultOpenAIEndpoint
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	if parsed.Path == "" {
		parsed.Path = "/v1"
	}
	return parsed.String()
}

func chatCompletionsURL(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		return DefaultOpenAIEndpoint + "/chat/completions"
	}

	path := strings.TrimRight(parsed.Path, "/")
	switch {
	case strings.HasSuffix(path, "/chat/completions"):
		parsed.Path = path
	case strings.HasSuffix(path, "/v1"):
		parsed.Path = path + "/chat/completions"
	case path == "":
		parsed.Path = "/v1/chat/completions"
	default:
		parsed.Path = path + "/v1/chat/completions"
	}

	return parsed.String()
}

func newHTTPClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return resty.New().SetTimeout(timeout)
}
