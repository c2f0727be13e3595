package translation

import (
	"fmt"

	"horse.fit/polyglot/internal/language"
)

const promptTemplate = `Translate the following text from %s to %s:

"%s"

Return ONLY the translation without any explanations or additional text.`

// BuildPrompt renders the instruction sent to generative providers.
func BuildPrompt(text, sourceLang, targetLang string) string {
	return fmt.Sprintf(promptTemplate, promptLanguageLabel(sourceLang), promptLanguageLabel(targetLang), text)
}

func promptLanguageLabel(code string) string {
	if language.IsAuto(code) {
		return "the detected source language"
	}
	if entry, ok := language.Lookup(code); ok {
		return fmt.Sprintf("%s (%s)", entry.Name, entry.Code)
	}
	return code
}
