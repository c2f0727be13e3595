package cli

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func writeEnvFile(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return path
}

func TestEnvLoader_LoadsRequestedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeEnvFile(t, dir, "polyglot.env", "POLYGLOT_TEST_VALUE=requested\n")
	t.Setenv("POLYGLOT_ENV_FILE", "")
	t.Setenv("POLYGLOT_TEST_VALUE", "")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loader := AddEnvFlag(fs, ".env", "")
	if err := fs.Parse([]string{"--env", path}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	loaded, err := loader.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded != path {
		t.Fatalf("unexpected loaded path: %q", loaded)
	}
	if got := os.Getenv("POLYGLOT_TEST_VALUE"); got != "requested" {
		t.Fatalf("unexpected env value: %q", got)
	}
}

func TestEnvLoader_OverrideVariableWins(t *testing.T) {
	dir := t.TempDir()
	requested := writeEnvFile(t, dir, "requested.env", "POLYGLOT_TEST_VALUE=requested\n")
	override := writeEnvFile(t, dir, "override.env", "POLYGLOT_TEST_VALUE=override\n")
	t.Setenv("POLYGLOT_ENV_FILE", override)
	t.Setenv("POLYGLOT_TEST_VALUE", "")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loader := AddEnvFlag(fs, requested, "")
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	loaded, err := loader.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded != override {
		t.Fatalf("unexpected loaded path: %q", loaded)
	}
	if got := os.Getenv("POLYGLOT_TEST_VALUE"); got != "override" {
		t.Fatalf("unexpected env value: %q", got)
	}
}

func TestEnvLoader_IgnoresForeignOverrideVariable(t *testing.T) {
	dir := t.TempDir()
	requested := writeEnvFile(t, dir, "requested.env", "POLYGLOT_TEST_VALUE=requested\n")
	foreign := writeEnvFile(t, dir, "foreign.env", "POLYGLOT_TEST_VALUE=foreign\n")
	t.Setenv(EnvFileVar, "")
	t.Setenv("HORSE_ENV_FILE", foreign)
	t.Setenv("POLYGLOT_TEST_VALUE", "")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loader := AddEnvFlag(fs, requested, "")
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	loaded, err := loader.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded != requested {
		t.Fatalf("unexpected loaded path: %q", loaded)
	}
	if got := os.Getenv("POLYGLOT_TEST_VALUE"); got != "requested" {
		t.Fatalf("unexpected env value: %q", got)
	}
}

func TestEnvLoader_MissingFileFails(t *testing.T) {
	t.Setenv("POLYGLOT_ENV_FILE", "")

	missing := filepath.Join(t.TempDir(), "nope", "missing.env")
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loader := AddEnvFlag(fs, missing, "")
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	if _, err := loader.Load(); err == nil {
		t.Fatalf("expected error for missing env file")
	}
}

func TestEnvLoader_NilLoader(t *testing.T) {
	t.Parallel()

	var loader *EnvLoader
	if _, err := loader.Load(); err == nil {
		t.Fatalf("expected error for nil loader")
	}
}
