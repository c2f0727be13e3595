package app

import (
	"strings"
	"testing"

	"horse.fit/polyglot/internal/language"
	"horse.fit/polyglot/internal/translation"
)

func TestRunRejectsUnknownCommand(t *testing.T) {
	t.Parallel()

	if code := Run([]string{"ingest"}); code != 2 {
		t.Fatalf("unexpected exit code: %d", code)
	}
	if code := Run(nil); code != 2 {
		t.Fatalf("unexpected exit code for empty args: %d", code)
	}
}

func TestTranslateValidatesBeforeLoadingConfig(t *testing.T) {
	t.Parallel()

	cases := [][]string{
		{"--to", "es"},
		{"--to", "xx", "hello"},
		{"--to", "es", "--prefer", "deepl", "hello"},
		{"--to", "es", "--format", "yaml", "hello"},
	}
	for _, args := range cases {
		if code := runTranslate(args); code != 2 {
			t.Fatalf("runTranslate(%v) = %d, want 2", args, code)
		}
	}
}

func TestSpeakRequiresSupportedLanguage(t *testing.T) {
	t.Parallel()

	if code := runSpeak([]string{"--lang", "tlh", "qapla"}); code != 2 {
		t.Fatalf("unexpected exit code: %d", code)
	}
	if code := runSpeak([]string{"--lang", "es"}); code != 2 {
		t.Fatalf("unexpected exit code for missing text: %d", code)
	}
}

func TestCreateUserRejectsInvalidUsername(t *testing.T) {
	t.Parallel()

	if code := runCreateUser([]string{"--username", "x"}); code != 2 {
		t.Fatalf("unexpected exit code: %d", code)
	}
}

func TestLanguageRowsCoverTable(t *testing.T) {
	t.Parallel()

	rows := languageRows(language.Entries())
	if len(rows) != len(language.Codes()) {
		t.Fatalf("expected %d rows, got %d", len(language.Codes()), len(rows))
	}
	for _, row := range rows {
		if len(row) != 5 || row[0] == "" || row[3] == "" || row[4] == "" {
			t.Fatalf("incomplete row: %#v", row)
		}
	}
}

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	if got, err := parseOutputFormat("", outputFormatTable); err != nil || got != outputFormatTable {
		t.Fatalf("unexpected default: %q %v", got, err)
	}
	if got, err := parseOutputFormat(" JSON ", outputFormatTable); err != nil || got != outputFormatJSON {
		t.Fatalf("unexpected json: %q %v", got, err)
	}
	if _, err := parseOutputFormat("xml", outputFormatTable); err == nil {
		t.Fatalf("expected error for xml")
	}
}

func TestBuildServeUnitFile(t *testing.T) {
	t.Parallel()

	unit := buildServeUnitFile(unitOptions{
		User:       "polyglot",
		WorkingDir: "/srv/polyglot",
		EnvFile:    "/srv/polyglot/.env",
		Binary:     "/usr/local/bin/polyglot",
		Port:       9000,
	})

	for _, want := range []string{
		"User=polyglot",
		"WorkingDirectory=/srv/polyglot",
		"EnvironmentFile=-/srv/polyglot/.env",
		"ExecStart=/usr/local/bin/polyglot serve --host 0.0.0.0 --port 9000",
		"WantedBy=multi-user.target",
	} {
		if !strings.Contains(unit, want) {
			t.Fatalf("unit file missing %q:\n%s", want, unit)
		}
	}
}

func TestValidatePort(t *testing.T) {
	t.Parallel()

	if err := validatePort(0, "--port"); err == nil {
		t.Fatalf("expected error for port 0")
	}
	if err := validatePort(65536, "--port"); err == nil {
		t.Fatalf("expected error for port 65536")
	}
	if err := validatePort(8090, "--port"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProviderRows(t *testing.T) {
	t.Parallel()

	rows := providerRows([]translation.ProviderInfo{
		{Name: "gemini", Model: "gemini-1.5-flash", Languages: 31},
		{Name: "libretranslate", Languages: 31},
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], "|") != "gemini|gemini-1.5-flash|31" {
		t.Fatalf("unexpected gemini row: %#v", rows[0])
	}
	if strings.Join(rows[1], "|") != "libretranslate|-|31" {
		t.Fatalf("unexpected libretranslate row: %#v", rows[1])
	}
}
