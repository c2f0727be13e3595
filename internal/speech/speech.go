// Package speech turns text into a playable locator: an inline mp3 data URI
// from Amazon Polly, or a sentinel telling the browser to speak on-device.
package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"horse.fit/polyglot/internal/awsconf"
	"horse.fit/polyglot/internal/config"
)

var (
	ErrEmptyText     = errors.New("speech text is required")
	ErrNotAudioData  = errors.New("locator is not inline audio data")
	ErrUnknownEngine = errors.New("unknown speech provider")
)

// Audio is a synthesized clip. Locator is either a data: URI or a
// browser-tts:// sentinel.
type Audio struct {
	Locator  string `json:"locator"`
	Provider string `json:"provider"`
	Voice    string `json:"voice,omitempty"`
	Language string `json:"language"`
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) (*Audio, error)
	Name() string
}

// New builds the synthesizer selected by SPEECH_PROVIDER.
func New(ctx context.Context, cfg *config.Config) (Synthesizer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.SpeechProvider)) {
	case "", BrowserProviderName:
		return NewBrowser(), nil
	case PollyProviderName:
		awsCfg, err := awsconf.Load(ctx, awsconf.Options{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return NewPolly(awsCfg, cfg.PollyEngine), nil
	default:
		return nil, fmt.Errorf("%q: %w", cfg.SpeechProvider, ErrUnknownEngine)
	}
}

// SynthesizePair speaks the source and target texts concurrently. Either
// failure cancels the other and is returned.
func SynthesizePair(ctx context.Context, synth Synthesizer, sourceText, sourceLang, targetText, targetLang string) (*Audio, *Audio, error) {
	var sourceAudio, targetAudio *Audio
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		audio, err := synth.Synthesize(groupCtx, sourceText, sourceLang)
		if err != nil {
			return fmt.Errorf("source audio: %w", err)
		}
		sourceAudio = audio
		return nil
	})
	group.Go(func() error {
		audio, err := synth.Synthesize(groupCtx, targetText, targetLang)
		if err != nil {
			return fmt.Errorf("target audio: %w", err)
		}
		targetAudio = audio
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}
	return sourceAudio, targetAudio, nil
}

const dataURIPrefix = "data:"

// DecodeAudio extracts the bytes and media type from a base64 data URI.
func DecodeAudio(locator string) ([]byte, string, error) {
	if !strings.HasPrefix(locator, dataURIPrefix) {
		return nil, "", ErrNotAudioData
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(locator, dataURIPrefix), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, "", ErrNotAudioData
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode audio payload: %w", err)
	}
	return data, strings.TrimSuffix(meta, ";base64"), nil
}
