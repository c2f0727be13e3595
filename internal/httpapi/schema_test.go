package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"horse.fit/polyglot/internal/translation"
)

func TestLoadSchemasCompilesEveryRequestSchema(t *testing.T) {
	t.Parallel()

	schemas, err := loadSchemas()
	if err != nil {
		t.Fatalf("load schemas: %v", err)
	}
	for _, name := range []string{schemaLogin, schemaSignup, schemaSettings, schemaTranslate, schemaSpeech} {
		if schemas[name] == nil {
			t.Fatalf("schema %s was not compiled", name)
		}
	}
}

func TestDecodeStrictJSON(t *testing.T) {
	t.Parallel()

	if _, err := decodeStrictJSON([]byte(`  {"a":1}  `)); err != nil {
		t.Fatalf("expected single document to decode, got %v", err)
	}
	for _, raw := range []string{"", "   ", `{"a":`, `{"a":1}{"b":2}`, `[1] x`} {
		if _, err := decodeStrictJSON([]byte(raw)); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestBindValidatedReportsFieldErrors(t *testing.T) {
	t.Parallel()

	_, c, _ := newJSONContext(http.MethodPost, "/api/v1/speech", `{"text":"","language":"es"}`)

	var body speechRequestBody
	err := bindValidated(c, schemaSpeech, &body)
	reqErr, ok := err.(*requestError)
	if !ok {
		t.Fatalf("expected *requestError, got %T (%v)", err, err)
	}
	if _, exists := reqErr.fields["text"]; !exists {
		t.Fatalf("expected text field error, got %#v", reqErr.fields)
	}
}

func TestBindValidatedDecodesValidBody(t *testing.T) {
	t.Parallel()

	_, c, _ := newJSONContext(http.MethodPost, "/api/v1/speech", `{"text":"hola","language":"es"}`)

	var body speechRequestBody
	if err := bindValidated(c, schemaSpeech, &body); err != nil {
		t.Fatalf("bindValidated returned error: %v", err)
	}
	if body.Text != "hola" || body.Language != "es" {
		t.Fatalf("unexpected body: %#v", body)
	}
}

func TestTranslateSchemaAcceptsEveryPreferenceSpelling(t *testing.T) {
	t.Parallel()

	raw, err := schemaFiles.ReadFile("schemas/" + schemaTranslate)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	var doc struct {
		Properties struct {
			PreferredProvider struct {
				Enum []string `json:"enum"`
			} `json:"preferred_provider"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode schema: %v", err)
	}

	got := strings.Join(doc.Properties.PreferredProvider.Enum, ",")
	want := strings.Join(translation.PreferenceSpellings(), ",")
	if got != want {
		t.Fatalf("schema enum %q does not match accepted spellings %q", got, want)
	}
}
