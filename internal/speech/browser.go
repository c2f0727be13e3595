package speech

import (
	"context"
	"net/url"
	"strings"

	"horse.fit/polyglot/internal/language"
)

const (
	BrowserProviderName = "browser"
	SentinelScheme      = "browser-tts://"
)

// Browser defers playback to the client's on-device speech engine by
// returning a sentinel locator instead of audio.
type Browser struct{}

func NewBrowser() *Browser {
	return &Browser{}
}

func (b *Browser) Name() string {
	return BrowserProviderName
}

func (b *Browser) Synthesize(ctx context.Context, text, lang string) (*Audio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	code := strings.TrimSpace(lang)
	if entry, ok := language.Lookup(code); ok {
		code = entry.Code
	}
	return &Audio{
		Locator:  EncodeSentinel(text, code),
		Provider: b.Name(),
		Language: code,
	}, nil
}

// EncodeSentinel renders browser-tts://<text>?lang=<code> with the text
// escaped like encodeURIComponent.
func EncodeSentinel(text, lang string) string {
	return SentinelScheme + escapeComponent(text) + "?lang=" + lang
}

// DecodeSentinel parses a locator produced by EncodeSentinel.
func DecodeSentinel(locator string) (text, lang string, ok bool) {
	rest, found := strings.CutPrefix(locator, SentinelScheme)
	if !found {
		return "", "", false
	}
	encoded, query, _ := strings.Cut(rest, "?")
	decoded, err := url.PathUnescape(encoded)
	if err != nil {
		return "", "", false
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return "", "", false
	}
	return decoded, values.Get("lang"), true
}

// IsSentinel reports whether a locator asks for on-device speech.
func IsSentinel(locator string) bool {
	return strings.HasPrefix(locator, SentinelScheme)
}

func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isComponentSafe(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hex[c>>4])
		sb.WriteByte(hex[c&0x0f])
	}
	return sb.String()
}

func isComponentSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
