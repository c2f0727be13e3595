package translation

import (
	"horse.fit/polyglot/internal/language"
)

type LanguageOption struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Voice string `json:"voice,omitempty"`
}

// SourceLanguageOptions prepends the auto-detect choice to the target list.
func SourceLanguageOptions() []LanguageOption {
	options := []LanguageOption{
		{
			Code:  language.Auto,
			Label: "Detect language",
		},
	}
	options = append(options, TargetLanguageOptions()...)
	return options
}

// TargetLanguageOptions lists the supported languages ordered by display name.
func TargetLanguageOptions() []LanguageOption {
	entries := language.Entries()
	options := make([]LanguageOption, 0, len(entries))
	for _, entry := range entries {
		options = append(options, LanguageOption{
			Code:  entry.Code,
			Label: entry.Name,
			Voice: entry.Voice,
		})
	}
	return options
}
