package translation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/translate"

	"horse.fit/polyglot/internal/language"
)

// translateAPI is the slice of the AWS Translate client the provider needs.
type translateAPI interface {
	TranslateText(ctx context.Context, params *translate.TranslateTextInput, optFns ...func(*translate.Options)) (*translate.TranslateTextOutput, error)
}

// AWSTranslateProvider uses Amazon Translate as the secondary tier.
type AWSTranslateProvider struct {
	client translateAPI
}

func NewAWSTranslateProvider(cfg aws.Config) *AWSTranslateProvider {
	return &AWSTranslateProvider{client: translate.NewFromConfig(cfg)}
}

func newAWSTranslateProviderWithClient(client translateAPI) *AWSTranslateProvider {
	return &AWSTranslateProvider{client: client}
}

func (p *AWSTranslateProvider) Name() string {
	return "aws"
}

func (p *AWSTranslateProvider) SupportedLanguages() []string {
	return language.Codes()
}

func (p *AWSTranslateProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if p == nil || p.client == nil {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	// Amazon Translate accepts the table codes directly, including "auto" and "zh-TW".
	source := language.Auto
	if !language.IsAuto(req.SourceLang) {
		if entry, ok := language.Lookup(req.SourceLang); ok {
			source = entry.Code
		}
	}
	target := strings.TrimSpace(req.TargetLang)
	if entry, ok := language.Lookup(req.TargetLang); ok {
		target = entry.Code
	}

	started := time.Now()
	out, err := p.client.TranslateText(ctx, &translate.TranslateTextInput{
		Text:               aws.String(req.Text),
		SourceLanguageCode: aws.String(source),
		TargetLanguageCode: aws.String(target),
	})
	if err != nil {
		return nil, fmt.Errorf("aws translate: %w", err)
	}

	translated := aws.ToString(out.TranslatedText)
	if strings.TrimSpace(translated) == "" {
		return nil, ErrEmptyTranslation
	}

	sourceLang := req.SourceLang
	if detected := aws.ToString(out.SourceLanguageCode); language.IsAuto(sourceLang) && detected != "" {
		sourceLang = detected
	}

	return &TranslateResponse{
		Text:         translated,
		SourceLang:   sourceLang,
		TargetLang:   req.TargetLang,
		ProviderName: p.Name(),
		LatencyMs:    time.Since(started).Milliseconds(),
	}, nil
}
