package language

import (
	"sort"
	"strings"
)

// DefaultVoice is the Polly voice used for codes without a mapping.
const DefaultVoice = "Matthew"

// Auto marks a source language that should be detected from the text.
const Auto = "auto"

// Entry describes one supported language code.
type Entry struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Locale string `json:"locale"`
	Voice  string `json:"voice"`
	Engine string `json:"engine"`
}

type entry struct {
	name   string
	locale string
	voice  string
	engine string
}

const (
	engineNeural   = "neural"
	engineStandard = "standard"
)

// Voices marked as stand-ins come from another language because Polly has
// no voice for the code. engine is the best Polly engine the voice supports.
var table = map[string]entry{
	"ar":    {name: "Arabic", locale: "ar", voice: "Zeina", engine: engineStandard},
	"zh":    {name: "Chinese (Simplified)", locale: "zh-CN", voice: "Zhiyu", engine: engineNeural},
	"zh-tw": {name: "Chinese (Traditional)", locale: "zh-TW", voice: "Zhiyu", engine: engineNeural},
	"cs":    {name: "Czech", locale: "cs", voice: "Ola", engine: engineNeural}, // stand-in
	"da":    {name: "Danish", locale: "da", voice: "Mads", engine: engineStandard},
	"nl":    {name: "Dutch", locale: "nl", voice: "Ruben", engine: engineStandard},
	"en":    {name: "English", locale: "en", voice: "Matthew", engine: engineNeural},
	"fi":    {name: "Finnish", locale: "fi", voice: "Suvi", engine: engineNeural},
	"fr":    {name: "French", locale: "fr", voice: "Léa", engine: engineNeural},
	"de":    {name: "German", locale: "de", voice: "Vicki", engine: engineNeural},
	"el":    {name: "Greek", locale: "el", voice: "Aditi", engine: engineStandard},  // stand-in
	"he":    {name: "Hebrew", locale: "he", voice: "Aditi", engine: engineStandard}, // stand-in
	"hi":    {name: "Hindi", locale: "hi", voice: "Aditi", engine: engineStandard},
	"hu":    {name: "Hungarian", locale: "hu", voice: "Tatyana", engine: engineStandard}, // stand-in
	"id":    {name: "Indonesian", locale: "id", voice: "Salli", engine: engineNeural},    // stand-in
	"it":    {name: "Italian", locale: "it", voice: "Carla", engine: engineStandard},
	"ja":    {name: "Japanese", locale: "ja", voice: "Takumi", engine: engineNeural},
	"ko":    {name: "Korean", locale: "ko", voice: "Seoyeon", engine: engineNeural},
	"ms":    {name: "Malay", locale: "ms", voice: "Salli", engine: engineNeural}, // stand-in
	"no":    {name: "Norwegian", locale: "no", voice: "Liv", engine: engineStandard},
	"fa":    {name: "Persian", locale: "fa", voice: "Aditi", engine: engineStandard}, // stand-in
	"pl":    {name: "Polish", locale: "pl", voice: "Ewa", engine: engineStandard},
	"pt":    {name: "Portuguese", locale: "pt", voice: "Camila", engine: engineNeural},
	"ro":    {name: "Romanian", locale: "ro", voice: "Carmen", engine: engineStandard},
	"ru":    {name: "Russian", locale: "ru", voice: "Tatyana", engine: engineStandard},
	"es":    {name: "Spanish", locale: "es", voice: "Lupe", engine: engineNeural},
	"sv":    {name: "Swedish", locale: "sv", voice: "Astrid", engine: engineStandard},
	"th":    {name: "Thai", locale: "th", voice: "Salli", engine: engineNeural}, // stand-in
	"tr":    {name: "Turkish", locale: "tr", voice: "Filiz", engine: engineStandard},
	"uk":    {name: "Ukrainian", locale: "uk", voice: "Tatyana", engine: engineStandard}, // stand-in
	"vi":    {name: "Vietnamese", locale: "vi", voice: "Salli", engine: engineNeural},    // stand-in
}

// Lookup returns the table entry for a code, trying the full tag first and then
// its primary subtag ("zh-TW", then "zh").
func Lookup(raw string) (Entry, bool) {
	key, ok := resolve(raw)
	if !ok {
		return Entry{}, false
	}
	e := table[key]
	return Entry{Code: canonicalCode(key), Name: e.name, Locale: e.locale, Voice: e.voice, Engine: e.engine}, true
}

// IsSupported reports whether the code is in the closed language set.
func IsSupported(raw string) bool {
	_, ok := resolve(raw)
	return ok
}

// DisplayName returns the human-readable name, or the trimmed input when unknown.
func DisplayName(raw string) string {
	if e, ok := Lookup(raw); ok {
		return e.Name
	}
	return strings.TrimSpace(raw)
}

// SecondaryLocale maps a code to the locale expected by the secondary translation
// service. Unknown codes pass through unchanged.
func SecondaryLocale(raw string) string {
	if e, ok := Lookup(raw); ok {
		return e.Locale
	}
	return strings.TrimSpace(raw)
}

// VoiceFor returns the speech voice for a code, falling back to DefaultVoice.
func VoiceFor(raw string) string {
	if e, ok := Lookup(raw); ok && e.Voice != "" {
		return e.Voice
	}
	return DefaultVoice
}

// SupportsNeural reports whether the voice for a code can use Polly's neural
// engine. The default voice can.
func SupportsNeural(raw string) bool {
	if e, ok := Lookup(raw); ok && e.Voice != "" {
		return e.Engine == engineNeural
	}
	return true
}

// Codes returns every supported code in canonical casing, sorted.
func Codes() []string {
	codes := make([]string, 0, len(table))
	for key := range table {
		codes = append(codes, canonicalCode(key))
	}
	sort.Strings(codes)
	return codes
}

// Entries returns the full table sorted by display name.
func Entries() []Entry {
	out := make([]Entry, 0, len(table))
	for key, e := range table {
		out = append(out, Entry{Code: canonicalCode(key), Name: e.name, Locale: e.locale, Voice: e.voice, Engine: e.engine})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// IsAuto reports whether the source language asks for detection.
func IsAuto(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed == "" || strings.EqualFold(trimmed, Auto)
}

func resolve(raw string) (string, bool) {
	tag := NormalizeTag(raw)
	if tag == "" {
		return "", false
	}
	if _, ok := table[tag]; ok {
		return tag, true
	}
	code := NormalizeCode(tag)
	if _, ok := table[code]; ok {
		return code, true
	}
	return "", false
}

// canonicalCode restores region casing for table keys ("zh-tw" -> "zh-TW").
func canonicalCode(key string) string {
	if dash := strings.IndexByte(key, '-'); dash >= 0 {
		return key[:dash] + "-" + strings.ToUpper(key[dash+1:])
	}
	return key
}
