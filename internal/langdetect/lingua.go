package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"

	"horse.fit/polyglot/internal/language"
)

// minLetters is the shortest sample the detector is trusted with.
const minLetters = 6

// supported mirrors the language table. Norwegian is split into its two
// written standards by lingua and folded back to "no" below.
var supported = []lingua.Language{
	lingua.Arabic,
	lingua.Chinese,
	lingua.Czech,
	lingua.Danish,
	lingua.Dutch,
	lingua.English,
	lingua.Finnish,
	lingua.French,
	lingua.German,
	lingua.Greek,
	lingua.Hebrew,
	lingua.Hindi,
	lingua.Hungarian,
	lingua.Indonesian,
	lingua.Italian,
	lingua.Japanese,
	lingua.Korean,
	lingua.Malay,
	lingua.Bokmal,
	lingua.Nynorsk,
	lingua.Persian,
	lingua.Polish,
	lingua.Portuguese,
	lingua.Romanian,
	lingua.Russian,
	lingua.Spanish,
	lingua.Swedish,
	lingua.Thai,
	lingua.Turkish,
	lingua.Ukrainian,
	lingua.Vietnamese,
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// Warm builds the detector and loads its models. Call it at startup so the
// first request does not pay for model loading.
func Warm() {
	getDetector()
}

// Detect returns the table code of the text's language, or "" when the sample
// is too short or inconclusive.
func Detect(text string) string {
	code := DetectISO6391(text)
	switch code {
	case "nb", "nn":
		code = "no"
	}
	if code == "" || !language.IsSupported(code) {
		return ""
	}
	return code
}

func DetectISO6391(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < minLetters {
		return ""
	}

	detected, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(detected.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(supported...).
			WithMinimumRelativeDistance(0.1).
			WithPreloadedLanguageModels().
			Build()
	})
	return detector
}
