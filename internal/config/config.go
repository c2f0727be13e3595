package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment   string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile       string `envconfig:"LOG_FILE" default:""`
	LogMaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"50"`
	LogMaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"3"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"8"`

	DefaultAdminUser               string `envconfig:"DEFAULT_ADMIN_USER" default:"admin"`
	DefaultAdminPassword           string `envconfig:"DEFAULT_ADMIN_PASSWORD" default:""`
	DefaultAdminMustChangePassword bool   `envconfig:"DEFAULT_ADMIN_MUST_CHANGE_PASSWORD" default:"true"`
	SessionTTLHours                int    `envconfig:"SESSION_TTL_HOURS" default:"720"`
	SessionCookieName              string `envconfig:"SESSION_COOKIE_NAME" default:"polyglot_session"`
	SessionCookieSecure            bool   `envconfig:"SESSION_COOKIE_SECURE" default:"false"`
	AllowSignup                    bool   `envconfig:"ALLOW_SIGNUP" default:"true"`
	CORSAllowedOrigins             string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`

	PrimaryProvider string `envconfig:"PRIMARY_PROVIDER" default:"gemini"`
	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY" default:""`
	GeminiModel     string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	GeminiEndpoint  string `envconfig:"GEMINI_ENDPOINT" default:"https://generativelanguage.googleapis.com/v1beta"`
	OpenAIEndpoint  string `envconfig:"OPENAI_ENDPOINT" default:"http://127.0.0.1:8845/v1"`
	OpenAIModel     string `envconfig:"OPENAI_MODEL" default:"tencent/HY-MT1.5-7B"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY" default:""`

	SecondaryProvider    string `envconfig:"SECONDARY_PROVIDER" default:"libretranslate"`
	LibreTranslateURL    string `envconfig:"LIBRETRANSLATE_URL" default:"https://libretranslate.com"`
	LibreTranslateAPIKey string `envconfig:"LIBRETRANSLATE_API_KEY" default:""`

	AWSRegion          string `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID" default:""`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY" default:""`

	SpeechProvider string `envconfig:"SPEECH_PROVIDER" default:"browser"`
	PollyEngine    string `envconfig:"POLLY_ENGINE" default:"neural"`

	ProviderHTTPTimeout time.Duration `envconfig:"PROVIDER_HTTP_TIMEOUT" default:"30s"`
	TierTimeout         time.Duration `envconfig:"TIER_TIMEOUT" default:"0s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) cannot exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if strings.TrimSpace(c.DefaultAdminUser) == "" {
		return fmt.Errorf("DEFAULT_ADMIN_USER is required")
	}
	if c.SessionTTLHours < 1 {
		return fmt.Errorf("SESSION_TTL_HOURS must be >= 1")
	}
	if strings.TrimSpace(c.SessionCookieName) == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME is required")
	}
	if c.LogMaxSizeMB < 1 {
		return fmt.Errorf("LOG_MAX_SIZE_MB must be >= 1")
	}
	if c.ProviderHTTPTimeout <= 0 {
		return fmt.Errorf("PROVIDER_HTTP_TIMEOUT must be > 0")
	}
	if c.TierTimeout < 0 {
		return fmt.Errorf("TIER_TIMEOUT must be >= 0")
	}

	switch normalizeName(c.PrimaryProvider) {
	case "gemini", "openai":
	default:
		return fmt.Errorf("PRIMARY_PROVIDER must be one of gemini, openai (got %q)", c.PrimaryProvider)
	}
	switch normalizeName(c.SecondaryProvider) {
	case "libretranslate", "aws":
	default:
		return fmt.Errorf("SECONDARY_PROVIDER must be one of libretranslate, aws (got %q)", c.SecondaryProvider)
	}
	switch normalizeName(c.SpeechProvider) {
	case "browser", "polly":
	default:
		return fmt.Errorf("SPEECH_PROVIDER must be one of browser, polly (got %q)", c.SpeechProvider)
	}
	if c.UsesAWS() && strings.TrimSpace(c.AWSRegion) == "" {
		return fmt.Errorf("AWS_REGION is required when an AWS provider is selected")
	}
	if (strings.TrimSpace(c.AWSAccessKeyID) == "") != (strings.TrimSpace(c.AWSSecretAccessKey) == "") {
		return fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together")
	}
	return nil
}

func (c *Config) SessionTTL() time.Duration {
	if c == nil || c.SessionTTLHours < 1 {
		return 0
	}
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}

// UsesAWS reports whether any selected backend talks to AWS.
func (c *Config) UsesAWS() bool {
	return normalizeName(c.SecondaryProvider) == "aws" || normalizeName(c.SpeechProvider) == "polly"
}

func normalizeName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
