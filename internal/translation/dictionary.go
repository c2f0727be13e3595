package translation

import (
	"sort"
	"strings"

	"horse.fit/polyglot/internal/language"
)

// UnavailableSuffix is appended to text the last tier cannot translate.
const UnavailableSuffix = " (translation unavailable)"

// DictionaryProviderName is reported in Result.ProviderName for the last tier.
const DictionaryProviderName = "dictionary"

var defaultPhrases = map[string]map[string]string{
	"hello": {
		"es": "hola",
		"fr": "bonjour",
		"de": "hallo",
		"it": "ciao",
		"zh": "你好",
		"ja": "こんにちは",
		"ru": "привет",
	},
	"thank you": {
		"es": "gracias",
		"fr": "merci",
		"de": "danke",
		"it": "grazie",
		"zh": "谢谢",
		"ja": "ありがとう",
		"ru": "спасибо",
	},
	"goodbye": {
		"es": "adiós",
		"fr": "au revoir",
		"de": "auf wiedersehen",
		"it": "arrivederci",
		"zh": "再见",
		"ja": "さようなら",
		"ru": "до свидания",
	},
}

// Dictionary is the read-only phrase table behind the last fallback tier.
type Dictionary struct {
	phrases map[string]map[string]string
}

func DefaultDictionary() *Dictionary {
	return &Dictionary{phrases: defaultPhrases}
}

// Lookup matches the whole input (trimmed, lowercased) against known phrases.
// The target is tried as given and then by its primary subtag.
func (d *Dictionary) Lookup(text, targetLang string) (string, bool) {
	if d == nil {
		return "", false
	}
	translations, ok := d.phrases[strings.ToLower(strings.TrimSpace(text))]
	if !ok {
		return "", false
	}

	if tag := language.NormalizeTag(targetLang); tag != "" {
		if value, ok := translations[tag]; ok {
			return value, true
		}
	}
	if code := language.NormalizeCode(targetLang); code != "" {
		if value, ok := translations[code]; ok {
			return value, true
		}
	}
	return "", false
}

// Translate always returns a string: the phrase translation when known,
// otherwise the original text marked as untranslated.
func (d *Dictionary) Translate(text, targetLang string) string {
	if value, ok := d.Lookup(text, targetLang); ok {
		return value
	}
	return text + UnavailableSuffix
}

// Phrases lists the known source phrases in sorted order.
func (d *Dictionary) Phrases() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.phrases))
	for phrase := range d.phrases {
		out = append(out, phrase)
	}
	sort.Strings(out)
	return out
}
