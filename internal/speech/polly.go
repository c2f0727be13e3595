package speech

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"

	"horse.fit/polyglot/internal/language"
)

const (
	PollyProviderName  = "polly"
	DefaultPollyEngine = "neural"
)

type pollyAPI interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// Polly synthesizes mp3 audio with Amazon Polly and returns it inline.
type Polly struct {
	client pollyAPI
	engine types.Engine
}

func NewPolly(cfg aws.Config, engine string) *Polly {
	return newPollyWithClient(polly.NewFromConfig(cfg), engine)
}

func newPollyWithClient(client pollyAPI, engine string) *Polly {
	engine = strings.ToLower(strings.TrimSpace(engine))
	if engine == "" {
		engine = DefaultPollyEngine
	}
	return &Polly{client: client, engine: types.Engine(engine)}
}

func (p *Polly) Name() string {
	return PollyProviderName
}

func (p *Polly) Synthesize(ctx context.Context, text, lang string) (*Audio, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	voice := language.VoiceFor(lang)
	out, err := p.client.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Text:         aws.String(text),
		VoiceId:      types.VoiceId(voice),
		OutputFormat: types.OutputFormatMp3,
		Engine:       p.engineFor(lang),
	})
	if err != nil {
		return nil, fmt.Errorf("polly synthesize: %w", err)
	}
	if out.AudioStream == nil {
		return nil, fmt.Errorf("polly synthesize: no audio data received")
	}
	defer out.AudioStream.Close()

	data, err := io.ReadAll(out.AudioStream)
	if err != nil {
		return nil, fmt.Errorf("read polly audio stream: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("polly synthesize: no audio data received")
	}

	return &Audio{
		Locator:  "data:audio/mp3;base64," + base64.StdEncoding.EncodeToString(data),
		Provider: p.Name(),
		Voice:    voice,
		Language: strings.TrimSpace(lang),
	}, nil
}

// engineFor downgrades neural requests for voices that only have a standard model.
func (p *Polly) engineFor(lang string) types.Engine {
	if p.engine == types.EngineNeural && !language.SupportsNeural(lang) {
		return types.EngineStandard
	}
	return p.engine
}
