package speech

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"

	"horse.fit/polyglot/internal/config"
)

func TestBrowserSentinel(t *testing.T) {
	t.Parallel()

	audio, err := NewBrowser().Synthesize(context.Background(), "¿Dónde está? 50% off & more", "ES")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	want := "browser-tts://%C2%BFD%C3%B3nde%20est%C3%A1%3F%2050%25%20off%20%26%20more?lang=es"
	if audio.Locator != want {
		t.Fatalf("unexpected locator\n got: %s\nwant: %s", audio.Locator, want)
	}
	if audio.Provider != BrowserProviderName || audio.Language != "es" {
		t.Fatalf("unexpected audio %+v", audio)
	}

	text, lang, ok := DecodeSentinel(audio.Locator)
	if !ok || text != "¿Dónde está? 50% off & more" || lang != "es" {
		t.Fatalf("DecodeSentinel() = %q, %q, %v", text, lang, ok)
	}
}

func TestEscapeComponentKeepsUnreserved(t *testing.T) {
	t.Parallel()

	if got := escapeComponent("A-z_0.9!~*'()"); got != "A-z_0.9!~*'()" {
		t.Fatalf("unexpected escape %q", got)
	}
	if got := escapeComponent("a+b/c"); got != "a%2Bb%2Fc" {
		t.Fatalf("unexpected escape %q", got)
	}
}

func TestDecodeSentinelRejectsOtherLocators(t *testing.T) {
	t.Parallel()

	if _, _, ok := DecodeSentinel("data:audio/mp3;base64,AAAA"); ok {
		t.Fatalf("data URI must not decode as sentinel")
	}
	if IsSentinel("https://example.com") {
		t.Fatalf("http URL is not a sentinel")
	}
}

func TestBrowserRejectsBlankText(t *testing.T) {
	t.Parallel()

	if _, err := NewBrowser().Synthesize(context.Background(), "  ", "en"); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

type fakePolly struct {
	mu     sync.Mutex
	inputs []*polly.SynthesizeSpeechInput
	audio  []byte
	err    error
}

func (f *fakePolly) SynthesizeSpeech(_ context.Context, params *polly.SynthesizeSpeechInput, _ ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, params)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &polly.SynthesizeSpeechOutput{AudioStream: io.NopCloser(bytes.NewReader(f.audio))}, nil
}

func TestPollyReturnsDataURI(t *testing.T) {
	t.Parallel()

	api := &fakePolly{audio: []byte("ID3-mp3-bytes")}
	synth := newPollyWithClient(api, "")

	audio, err := synth.Synthesize(context.Background(), "Bonjour", "fr")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !strings.HasPrefix(audio.Locator, "data:audio/mp3;base64,") {
		t.Fatalf("unexpected locator %q", audio.Locator)
	}
	data, mime, err := DecodeAudio(audio.Locator)
	if err != nil || mime != "audio/mp3" || string(data) != "ID3-mp3-bytes" {
		t.Fatalf("DecodeAudio() = %q, %q, %v", data, mime, err)
	}

	input := api.inputs[0]
	if input.VoiceId != types.VoiceId("Léa") {
		t.Fatalf("expected French voice, got %q", input.VoiceId)
	}
	if input.OutputFormat != types.OutputFormatMp3 || input.Engine != types.EngineNeural {
		t.Fatalf("unexpected format/engine %q/%q", input.OutputFormat, input.Engine)
	}
	if aws.ToString(input.Text) != "Bonjour" {
		t.Fatalf("unexpected text %q", aws.ToString(input.Text))
	}
}

func TestPollyUnknownLanguageUsesDefaultVoice(t *testing.T) {
	t.Parallel()

	api := &fakePolly{audio: []byte("x")}
	audio, err := newPollyWithClient(api, "standard").Synthesize(context.Background(), "hi", "tlh")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if audio.Voice != "Matthew" || api.inputs[0].Engine != types.EngineStandard {
		t.Fatalf("unexpected voice/engine %q/%q", audio.Voice, api.inputs[0].Engine)
	}
}

func TestPollyFallsBackToStandardEngine(t *testing.T) {
	t.Parallel()

	api := &fakePolly{audio: []byte("x")}
	synth := newPollyWithClient(api, "neural")

	for _, lang := range []string{"ru", "es"} {
		if _, err := synth.Synthesize(context.Background(), "hola", lang); err != nil {
			t.Fatalf("Synthesize(%q) error = %v", lang, err)
		}
	}
	if api.inputs[0].VoiceId != types.VoiceId("Tatyana") || api.inputs[0].Engine != types.EngineStandard {
		t.Fatalf("expected standard engine for Tatyana, got %q/%q", api.inputs[0].VoiceId, api.inputs[0].Engine)
	}
	if api.inputs[1].VoiceId != types.VoiceId("Lupe") || api.inputs[1].Engine != types.EngineNeural {
		t.Fatalf("expected neural engine for Lupe, got %q/%q", api.inputs[1].VoiceId, api.inputs[1].Engine)
	}
}

func TestPollyErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("throttled")
	if _, err := newPollyWithClient(&fakePolly{err: boom}, "").Synthesize(context.Background(), "hi", "en"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if _, err := newPollyWithClient(&fakePolly{}, "").Synthesize(context.Background(), "hi", "en"); err == nil {
		t.Fatalf("expected error for empty audio stream")
	}
}

func TestSynthesizePair(t *testing.T) {
	t.Parallel()

	api := &fakePolly{audio: []byte("x")}
	source, target, err := SynthesizePair(context.Background(), newPollyWithClient(api, ""), "Hello", "en", "Hola", "es")
	if err != nil {
		t.Fatalf("SynthesizePair() error = %v", err)
	}
	if source.Voice != "Matthew" || target.Voice != "Lupe" {
		t.Fatalf("unexpected voices %q/%q", source.Voice, target.Voice)
	}
	if len(api.inputs) != 2 {
		t.Fatalf("expected two synth calls, got %d", len(api.inputs))
	}
}

func TestSynthesizePairReportsFailure(t *testing.T) {
	t.Parallel()

	_, _, err := SynthesizePair(context.Background(), NewBrowser(), "Hello", "en", " ", "es")
	if !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	t.Parallel()

	synth, err := New(context.Background(), &config.Config{SpeechProvider: "Browser"})
	if err != nil || synth.Name() != BrowserProviderName {
		t.Fatalf("New() = %v, %v", synth, err)
	}
	if _, err := New(context.Background(), &config.Config{SpeechProvider: "espeak"}); !errors.Is(err, ErrUnknownEngine) {
		t.Fatalf("expected ErrUnknownEngine, got %v", err)
	}
}

func TestDecodeAudioRejectsSentinel(t *testing.T) {
	t.Parallel()

	if _, _, err := DecodeAudio(EncodeSentinel("hi", "en")); !errors.Is(err, ErrNotAudioData) {
		t.Fatalf("expected ErrNotAudioData, got %v", err)
	}
}
