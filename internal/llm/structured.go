// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"
)

// ErrInvalidSchema is returned when a structured response does not decode
// into the target type or fails its validation.
var ErrInvalidSchema = errors.New("response does not match schema")

// Validator is implemented by structured targets that check their own fields.
type Validator interface {
	Validate() error
}

// Structured asks m for a JSON object described by schema and decodes it into out,
// which must be a non-nil pointer. Unknown fields and trailing data are rejected.
// If out implements Validator, the decoded value must pass Validate.
//
// out is only written on success, so callers preload it with their default.
// A failed model call returns the ErrNoContent error from Call; a response
// that does not fit returns ErrInvalidSchema.
func Structured(ctx context.Context, m Model, timeout time.Duration, prompt, schema string, out any) error {
	target := reflect.ValueOf(out)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return fmt.Errorf("structured output target must be a non-nil pointer, got %T", out)
	}

	full := prompt + "\n\nRespond with a single JSON object and nothing else. Schema:\n" + schema
	gen := m.Generate
	if jm, ok := m.(JSONModel); ok {
		gen = jm.GenerateJSON
	}
	text, err := call(ctx, m, timeout, full, gen)
	if err != nil {
		return err
	}

	fresh := reflect.New(target.Elem().Type())
	if err := decodeStrict(StripFences(text), fresh.Interface()); err != nil {
		return fmt.Errorf("%s: %w: %v", m.Name(), ErrInvalidSchema, err)
	}
	if v, ok := fresh.Interface().(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%s: %w: %v", m.Name(), ErrInvalidSchema, err)
		}
	}
	target.Elem().Set(fresh.Elem())
	return nil
}

func decodeStrict(text string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("trailing data after JSON value")
	}
	return nil
}

// StripFences removes a surrounding Markdown code fence (``` or ```json).
func StripFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	} else {
		t = strings.TrimPrefix(t, "```")
	}
	t = strings.TrimSpace(t)
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}
