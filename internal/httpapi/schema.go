package httpapi

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const maxRequestBodyBytes = 1 << 20

//go:embed schemas/*.schema.json
var schemaFiles embed.FS

const (
	schemaLogin     = "login.schema.json"
	schemaSignup    = "signup.schema.json"
	schemaSettings  = "settings.schema.json"
	schemaTranslate = "translate.schema.json"
	schemaSpeech    = "speech.schema.json"
)

var (
	compileOnce     sync.Once
	compiledSchemas map[string]*jsonschema.Schema
	compileErr      error
)

func loadSchemas() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		names := []string{schemaLogin, schemaSignup, schemaSettings, schemaTranslate, schemaSpeech}
		for _, name := range names {
			raw, err := schemaFiles.ReadFile("schemas/" + name)
			if err != nil {
				compileErr = fmt.Errorf("read schema %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
				compileErr = fmt.Errorf("add schema resource %s: %w", name, err)
				return
			}
		}

		out := make(map[string]*jsonschema.Schema, len(names))
		for _, name := range names {
			schema, err := compiler.Compile(name)
			if err != nil {
				compileErr = fmt.Errorf("compile schema %s: %w", name, err)
				return
			}
			out[name] = schema
		}
		compiledSchemas = out
	})

	if compileErr != nil {
		return nil, compileErr
	}
	return compiledSchemas, nil
}

// requestError carries field-level problems back to the handler.
type requestError struct {
	fields map[string]string
}

func (e *requestError) Error() string {
	parts := make([]string, 0, len(e.fields))
	for field, msg := range e.fields {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// bindValidated decodes the body, validates it against the named schema and
// unmarshals it into dst. Validation problems are returned as *requestError.
func bindValidated(c echo.Context, schemaName string, dst any) error {
	raw, err := readBody(c)
	if err != nil {
		return &requestError{fields: map[string]string{"body": err.Error()}}
	}
	value, err := decodeStrictJSON(raw)
	if err != nil {
		return &requestError{fields: map[string]string{"body": err.Error()}}
	}

	schemas, err := loadSchemas()
	if err != nil {
		return err
	}
	schema, ok := schemas[schemaName]
	if !ok {
		return fmt.Errorf("schema %q is not registered", schemaName)
	}
	if err := schema.Validate(value); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			fields := map[string]string{}
			collectSchemaErrors(validationErr, fields)
			return &requestError{fields: fields}
		}
		return fmt.Errorf("validate request: %w", err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return &requestError{fields: map[string]string{"body": err.Error()}}
	}
	return nil
}

func readBody(c echo.Context) ([]byte, error) {
	if c.Request().Body == nil {
		return nil, fmt.Errorf("request body is empty")
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxRequestBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if len(raw) > maxRequestBodyBytes {
		return nil, fmt.Errorf("request body is too large")
	}
	return raw, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("request body is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("request body contains trailing content")
	}
	return value, nil
}

func collectSchemaErrors(err *jsonschema.ValidationError, out map[string]string) {
	if len(err.Causes) == 0 {
		field := strings.TrimPrefix(err.InstanceLocation, "/")
		if field == "" {
			field = "body"
		}
		if _, exists := out[field]; !exists {
			out[field] = err.Message
		}
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, out)
	}
}
