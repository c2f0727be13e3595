package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/polyglot/internal/config"
	"horse.fit/polyglot/internal/langdetect"
	"horse.fit/polyglot/internal/language"
)

// PipelineOptions wires the three tiers. A nil Primary or Secondary is treated
// as a failing tier.
type PipelineOptions struct {
	Primary     Provider
	Secondary   Provider
	Dictionary  *Dictionary
	Detect      func(text string) string
	TierTimeout time.Duration
	Logger      zerolog.Logger
}

// Pipeline runs the ordered fallback chain: primary AI, secondary service,
// local dictionary. Each tier is tried at most once.
type Pipeline struct {
	primary     Provider
	secondary   Provider
	dictionary  *Dictionary
	detect      func(string) string
	tierTimeout time.Duration
	logger      zerolog.Logger
}

func NewPipeline(opts PipelineOptions) *Pipeline {
	dictionary := opts.Dictionary
	if dictionary == nil {
		dictionary = DefaultDictionary()
	}
	timeout := opts.TierTimeout
	if timeout < 0 {
		timeout = 0
	}
	return &Pipeline{
		primary:     opts.Primary,
		secondary:   opts.Secondary,
		dictionary:  dictionary,
		detect:      opts.Detect,
		tierTimeout: timeout,
		logger:      opts.Logger,
	}
}

// NewPipelineFromConfig builds the registry and resolves the configured
// primary and secondary backends. Unknown names fail fast.
func NewPipelineFromConfig(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Pipeline, *Registry, error) {
	registry, err := NewRegistryFromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("build translation registry: %w", err)
	}
	primary, err := registry.Provider(cfg.PrimaryProvider)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve primary provider: %w", err)
	}
	secondary, err := registry.Provider(cfg.SecondaryProvider)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve secondary provider: %w", err)
	}

	pipeline := NewPipeline(PipelineOptions{
		Primary:     primary,
		Secondary:   secondary,
		Detect:      langdetect.Detect,
		TierTimeout: cfg.TierTimeout,
		Logger:      logger,
	})
	return pipeline, registry, nil
}

// Translate never fails: when both remote tiers fail the dictionary tier
// answers, marking unknown phrases as untranslated.
func (p *Pipeline) Translate(ctx context.Context, req Request) Result {
	source := req.SourceLanguage
	if language.IsAuto(source) {
		source = language.Auto
		if p.detect != nil {
			if detected := p.detect(req.Text); detected != "" {
				source = detected
			}
		}
	}

	result := Result{
		SourceLanguage: source,
		TargetLanguage: req.TargetLanguage,
	}
	call := TranslateRequest{
		Text:       req.Text,
		SourceLang: source,
		TargetLang: req.TargetLanguage,
	}

	if req.Preferred != PreferSecondary {
		if resp, ok := p.attempt(ctx, TierPrimaryAI, p.primary, call, &result); ok {
			result.TranslatedText = strings.TrimSpace(resp.Text)
			result.ProviderUsed = TierPrimaryAI
			result.ProviderName = resp.ProviderName
			return result
		}
	}

	if resp, ok := p.attempt(ctx, TierFallbackService, p.secondary, call, &result); ok {
		result.TranslatedText = resp.Text
		result.ProviderUsed = TierFallbackService
		result.ProviderName = resp.ProviderName
		if language.IsAuto(result.SourceLanguage) && !language.IsAuto(resp.SourceLang) {
			result.SourceLanguage = resp.SourceLang
		}
		return result
	}

	result.TranslatedText = p.dictionary.Translate(req.Text, req.TargetLanguage)
	result.ProviderUsed = TierLocalDictionary
	result.ProviderName = DictionaryProviderName
	p.logger.Info().
		Str("tier", string(TierLocalDictionary)).
		Str("target", req.TargetLanguage).
		Bool("matched", !strings.HasSuffix(result.TranslatedText, UnavailableSuffix)).
		Msg("translation served from local dictionary")
	return result
}

func (p *Pipeline) attempt(ctx context.Context, tier Tier, provider Provider, call TranslateRequest, result *Result) (*TranslateResponse, bool) {
	name := "none"
	if provider != nil {
		name = provider.Name()
	}

	started := time.Now()
	resp, err := p.invoke(ctx, provider, call)
	if err == nil && (resp == nil || strings.TrimSpace(resp.Text) == "") {
		err = ErrEmptyTranslation
	}
	if err == nil {
		if resp.ProviderName == "" {
			resp.ProviderName = name
		}
		return resp, true
	}

	latency := time.Since(started)
	result.Attempts = append(result.Attempts, Attempt{
		Tier:      tier,
		Provider:  name,
		Error:     err.Error(),
		LatencyMs: latency.Milliseconds(),
	})
	event := p.logger.Warn()
	if errors.Is(err, ErrNotConfigured) {
		event = p.logger.Debug()
	}
	event.
		Err(err).
		Str("tier", string(tier)).
		Str("provider", name).
		Dur("latency", latency).
		Msg("translation tier failed")
	return nil, false
}

func (p *Pipeline) invoke(ctx context.Context, provider Provider, call TranslateRequest) (*TranslateResponse, error) {
	if provider == nil {
		return nil, ErrNotConfigured
	}
	if p.tierTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.tierTimeout)
		defer cancel()
	}
	return provider.Translate(ctx, call)
}
