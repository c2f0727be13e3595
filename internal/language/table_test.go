package language

import "testing"

func TestEveryCodeHasVoice(t *testing.T) {
	t.Parallel()

	codes := Codes()
	if len(codes) != 31 {
		t.Fatalf("unexpected language count: got %d want 31", len(codes))
	}
	for _, code := range codes {
		entry, ok := Lookup(code)
		if !ok {
			t.Fatalf("code %q does not resolve", code)
		}
		if entry.Voice == "" {
			t.Fatalf("code %q has no voice", code)
		}
		if got := VoiceFor(code); got != entry.Voice {
			t.Fatalf("VoiceFor(%q) = %q, want %q", code, got, entry.Voice)
		}
	}
}

func TestVoiceForUnknownCodeUsesDefault(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"xx", "", "  ", "klingon", "123"} {
		if got := VoiceFor(code); got != DefaultVoice {
			t.Fatalf("VoiceFor(%q) = %q, want %q", code, got, DefaultVoice)
		}
	}
}

func TestLookupFallsBackToPrimarySubtag(t *testing.T) {
	t.Parallel()

	entry, ok := Lookup("zh_TW")
	if !ok || entry.Code != "zh-TW" || entry.Locale != "zh-TW" {
		t.Fatalf("unexpected zh_TW entry: %+v ok=%t", entry, ok)
	}

	entry, ok = Lookup("es-MX")
	if !ok || entry.Code != "es" {
		t.Fatalf("expected es-MX to resolve to es, got %+v ok=%t", entry, ok)
	}
}

func TestSecondaryLocale(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"zh":    "zh-CN",
		"ZH":    "zh-CN",
		"es":    "es",
		"zh-TW": "zh-TW",
		"xx":    "xx",
		"auto":  "auto",
	}
	for input, want := range cases {
		if got := SecondaryLocale(input); got != want {
			t.Fatalf("SecondaryLocale(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	if got := DisplayName("fr"); got != "French" {
		t.Fatalf("unexpected display name: %q", got)
	}
	if got := DisplayName(" tlh "); got != "tlh" {
		t.Fatalf("expected unknown code to pass through, got %q", got)
	}
}

func TestIsAuto(t *testing.T) {
	t.Parallel()

	if !IsAuto("") || !IsAuto(" AUTO ") {
		t.Fatalf("expected blank and auto to be detected")
	}
	if IsAuto("en") {
		t.Fatalf("did not expect en to be auto")
	}
}

func TestEntriesSortedByName(t *testing.T) {
	t.Parallel()

	entries := Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Name > entries[i].Name {
			t.Fatalf("entries not sorted: %q before %q", entries[i-1].Name, entries[i].Name)
		}
	}
}

func TestEveryVoiceNamesAnEngine(t *testing.T) {
	t.Parallel()

	for _, entry := range Entries() {
		if entry.Engine != engineNeural && entry.Engine != engineStandard {
			t.Fatalf("code %q has engine %q", entry.Code, entry.Engine)
		}
		if got := SupportsNeural(entry.Code); got != (entry.Engine == engineNeural) {
			t.Fatalf("SupportsNeural(%q) = %t, engine %q", entry.Code, got, entry.Engine)
		}
	}
	if SupportsNeural("ru") {
		t.Fatalf("expected Tatyana to be standard only")
	}
	if !SupportsNeural("tlh") {
		t.Fatalf("expected the default voice to support neural")
	}
}
