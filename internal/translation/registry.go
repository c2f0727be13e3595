package translation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"horse.fit/polyglot/internal/awsconf"
	"horse.fit/polyglot/internal/config"
)

// Registry stores translation providers by normalized name.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// NewRegistryFromConfig registers every backend the configuration can build.
// The AWS backend is only built when AWS is in use, so the SDK credential
// chain is not consulted otherwise.
func NewRegistryFromConfig(ctx context.Context, cfg *config.Config) (*Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	registry := NewRegistry()
	providers := []Provider{
		NewGeminiProvider(cfg.GeminiEndpoint, cfg.GeminiModel, cfg.GeminiAPIKey, cfg.ProviderHTTPTimeout),
		NewOpenAIProvider(cfg.OpenAIEndpoint, cfg.OpenAIModel, cfg.OpenAIAPIKey, cfg.ProviderHTTPTimeout),
		NewLibreTranslateProvider(cfg.LibreTranslateURL, cfg.LibreTranslateAPIKey, cfg.ProviderHTTPTimeout),
	}
	if cfg.UsesAWS() {
		awsCfg, err := awsconf.Load(ctx, awsconf.Options{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		providers = append(providers, NewAWSTranslateProvider(awsCfg))
	}

	for _, provider := range providers {
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register adds one provider.
func (r *Registry) Register(provider Provider) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	if provider == nil {
		return fmt.Errorf("provider is nil")
	}
	name := normalizeProviderName(provider.Name())
	if name == "" {
		return fmt.Errorf("provider name is required")
	}
	r.providers[name] = provider
	return nil
}

// Provider resolves a provider by name.
func (r *Registry) Provider(name string) (Provider, error) {
	if r == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if len(r.providers) == 0 {
		return nil, fmt.Errorf("no translation providers are registered")
	}

	resolvedName := normalizeProviderName(name)
	provider, ok := r.providers[resolvedName]
	if ok {
		return provider, nil
	}

	return nil, fmt.Errorf("translation provider %q is not registered (available: %s)", resolvedName, strings.Join(r.ProviderNames(), ", "))
}

func (r *Registry) ProviderNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProviderInfo summarizes one registered backend for health output.
type ProviderInfo struct {
	Name      string `json:"name"`
	Model     string `json:"model,omitempty"`
	Languages int    `json:"languages"`
}

type modelNamer interface {
	ModelName() string
}

// Describe lists registered providers sorted by name.
func (r *Registry) Describe() []ProviderInfo {
	names := r.ProviderNames()
	out := make([]ProviderInfo, 0, len(names))
	for _, name := range names {
		provider := r.providers[name]
		info := ProviderInfo{
			Name:      name,
			Languages: len(provider.SupportedLanguages()),
		}
		if named, ok := provider.(modelNamer); ok {
			info.Model = named.ModelName()
		}
		out = append(out, info)
	}
	return out
}

func normalizeProviderName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
