package db

import (
	"context"
	"testing"

	"gorm.io/gorm/logger"
)

func TestNormalizeSettingsLanguage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw       string
		fallback  string
		allowAuto bool
		want      string
	}{
		{raw: "ES", fallback: "en", want: "es"},
		{raw: "zh_tw", fallback: "en", want: "zh-TW"},
		{raw: "pt-BR", fallback: "en", want: "pt"},
		{raw: "xx", fallback: "es", want: "es"},
		{raw: "", fallback: "en", allowAuto: true, want: "en"},
		{raw: "AUTO", fallback: "en", allowAuto: true, want: "auto"},
		{raw: "auto", fallback: "es", allowAuto: false, want: "es"},
	}
	for _, tc := range cases {
		if got := NormalizeSettingsLanguage(tc.raw, tc.fallback, tc.allowAuto); got != tc.want {
			t.Fatalf("NormalizeSettingsLanguage(%q, %q, %v) = %q, want %q", tc.raw, tc.fallback, tc.allowAuto, got, tc.want)
		}
	}
}

func TestResolveGormLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]logger.LogLevel{
		"debug":  logger.Info,
		"info":   logger.Warn,
		"error":  logger.Error,
		"silent": logger.Silent,
	}
	for level, want := range cases {
		if got := resolveGormLogLevel(level, "production"); got != want {
			t.Fatalf("resolveGormLogLevel(%q) = %v, want %v", level, got, want)
		}
	}
	if got := resolveGormLogLevel("verbose", "local"); got != logger.Warn {
		t.Fatalf("expected warn for unknown level in local env, got %v", got)
	}
}

func TestAutoMigrateModelsUsePolyglotSchema(t *testing.T) {
	t.Parallel()

	type tabler interface{ TableName() string }
	for _, model := range autoMigrateModels() {
		name := model.(tabler).TableName()
		if len(name) < len("polyglot.") || name[:len("polyglot.")] != "polyglot." {
			t.Fatalf("table %q is outside the polyglot schema", name)
		}
	}
}

func TestNilPoolIsSafe(t *testing.T) {
	t.Parallel()

	var pool *Pool
	if err := pool.Close(); err != nil {
		t.Fatalf("Close() on nil pool = %v", err)
	}
	if err := pool.QueryRow(context.Background(), "SELECT 1").Scan(); !IsNoRows(err) {
		t.Fatalf("expected no rows from nil pool, got %v", err)
	}
}
