package translation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/translate"
	"github.com/tidwall/gjson"
)

func TestGeminiProviderTranslate(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":" Hola, "},{"text":"mundo\n"}]}}]}`)
	}))
	defer server.Close()

	provider := NewGeminiProvider(server.URL+"/v1beta/", "gemini-1.5-flash", "test-key", 5*time.Second)
	resp, err := provider.Translate(context.Background(), TranslateRequest{Text: "Hello, world", SourceLang: "en", TargetLang: "es"})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if resp.Text != "Hola, mundo" {
		t.Fatalf("expected joined parts, got %q", resp.Text)
	}
	if gotPath != "/v1beta/models/gemini-1.5-flash:generateContent" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
	prompt := gjson.GetBytes(gotBody, "contents.0.parts.0.text").String()
	if !strings.Contains(prompt, "from English (en) to Spanish (es)") || !strings.Contains(prompt, `"Hello, world"`) {
		t.Fatalf("unexpected prompt %q", prompt)
	}
}

func TestGeminiProviderRequiresKey(t *testing.T) {
	t.Parallel()

	provider := NewGeminiProvider("", "", "", time.Second)
	_, err := provider.Translate(context.Background(), TranslateRequest{Text: "hi", TargetLang: "es"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestGeminiProviderSurfacesAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"quota exhausted"}}`)
	}))
	defer server.Close()

	provider := NewGeminiProvider(server.URL, "m", "k", time.Second)
	_, err := provider.Translate(context.Background(), TranslateRequest{Text: "hi", TargetLang: "es"})
	if err == nil || !strings.Contains(err.Error(), "quota exhausted") {
		t.Fatalf("expected api error message, got %v", err)
	}
}

func TestGeminiProviderEmptyCandidates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	}))
	defer server.Close()

	provider := NewGeminiProvider(server.URL, "m", "k", time.Second)
	_, err := provider.Translate(context.Background(), TranslateRequest{Text: "hi", TargetLang: "es"})
	if !errors.Is(err, ErrEmptyTranslation) {
		t.Fatalf("expected ErrEmptyTranslation, got %v", err)
	}
}

func TestLibreTranslateProviderMapsLocales(t *testing.T) {
	t.Parallel()

	var payload map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, _ = io.WriteString(w, `{"translatedText":"X"}`)
	}))
	defer server.Close()

	provider := NewLibreTranslateProvider(server.URL+"/", "secret", time.Second)
	resp, err := provider.Translate(context.Background(), TranslateRequest{Text: "Hello", SourceLang: "en", TargetLang: "zh"})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if resp.Text != "X" {
		t.Fatalf("expected X, got %q", resp.Text)
	}
	if payload["q"] != "Hello" || payload["source"] != "en" || payload["target"] != "zh-CN" || payload["format"] != "text" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload["api_key"] != "secret" {
		t.Fatalf("expected api_key in payload, got %+v", payload)
	}
}

func TestLibreTranslateProviderAutoSourceAndMissingText(t *testing.T) {
	t.Parallel()

	var payload map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, _ = io.WriteString(w, `{"detectedLanguage":{"language":"en"}}`)
	}))
	defer server.Close()

	provider := NewLibreTranslateProvider(server.URL+"/translate", "", time.Second)
	_, err := provider.Translate(context.Background(), TranslateRequest{Text: "Hello", SourceLang: "auto", TargetLang: "zh-TW"})
	if !errors.Is(err, ErrEmptyTranslation) {
		t.Fatalf("expected ErrEmptyTranslation, got %v", err)
	}
	if payload["source"] != "auto" || payload["target"] != "zh-TW" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if _, ok := payload["api_key"]; ok {
		t.Fatalf("api_key must be omitted when not configured")
	}
}

func TestOpenAIProviderTranslate(t *testing.T) {
	t.Parallel()

	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"  Hallo  "}}]}`)
	}))
	defer server.Close()

	provider := NewOpenAIProvider(server.URL, "", "sk-test", time.Second)
	resp, err := provider.Translate(context.Background(), TranslateRequest{Text: "Hello", SourceLang: "en", TargetLang: "de"})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if resp.Text != "Hallo" {
		t.Fatalf("expected trimmed text, got %q", resp.Text)
	}
	if gotPath != "/v1/chat/completions" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if provider.ModelName() != DefaultOpenAIModel {
		t.Fatalf("expected default model, got %q", provider.ModelName())
	}
}

func TestChatCompletionsURL(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"127.0.0.1:8845":                       "http://127.0.0.1:8845/v1/chat/completions",
		"http://host/v1/":                      "http://host/v1/chat/completions",
		"https://host/api/v1/chat/completions": "https://host/api/v1/chat/completions",
		"https://host/openai":                  "https://host/openai/v1/chat/completions",
		"":                                     DefaultOpenAIEndpoint + "/chat/completions",
	}
	for input, want := range cases {
		if got := chatCompletionsURL(normalizeEndpoint(input)); got != want {
			t.Fatalf("chatCompletionsURL(%q) = %q, want %q", input, got, want)
		}
	}
}

type fakeTranslateAPI struct {
	input *translate.TranslateTextInput
	out   *translate.TranslateTextOutput
	err   error
}

func (f *fakeTranslateAPI) TranslateText(_ context.Context, params *translate.TranslateTextInput, _ ...func(*translate.Options)) (*translate.TranslateTextOutput, error) {
	f.input = params
	return f.out, f.err
}

func TestAWSTranslateProvider(t *testing.T) {
	t.Parallel()

	api := &fakeTranslateAPI{out: &translate.TranslateTextOutput{
		TranslatedText:     aws.String("Olá"),
		SourceLanguageCode: aws.String("en"),
	}}
	provider := newAWSTranslateProviderWithClient(api)

	resp, err := provider.Translate(context.Background(), TranslateRequest{Text: "Hello", SourceLang: "auto", TargetLang: "PT"})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if resp.Text != "Olá" || resp.SourceLang != "en" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if aws.ToString(api.input.SourceLanguageCode) != "auto" || aws.ToString(api.input.TargetLanguageCode) != "pt" {
		t.Fatalf("unexpected input codes %q -> %q", aws.ToString(api.input.SourceLanguageCode), aws.ToString(api.input.TargetLanguageCode))
	}
}

func TestAWSTranslateProviderWrapsErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("throttled")
	provider := newAWSTranslateProviderWithClient(&fakeTranslateAPI{err: boom})
	_, err := provider.Translate(context.Background(), TranslateRequest{Text: "Hello", SourceLang: "en", TargetLang: "es"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
