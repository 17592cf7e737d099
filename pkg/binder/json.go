package binder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
)

// DefaultMaxJSONSize is the maximum JSON request body size (1MB).
const DefaultMaxJSONSize = 1 << 20

// JSON creates a strict JSON binder: unknown fields, trailing data and bodies
// over DefaultMaxJSONSize are rejected. Decoded strings are sanitized.
func JSON() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if err := r.Context().Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrFailedToParseJSON, err)
		}

		mediaType, err := mediaTypeOf(r)
		if err != nil {
			return fmt.Errorf("%w, expected application/json", err)
		}
		if mediaType != "application/json" {
			return fmt.Errorf("%w: got %s, expected application/json", ErrUnsupportedMediaType, mediaType)
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, DefaultMaxJSONSize+1))
		if err != nil {
			return fmt.Errorf("%w: failed to read request body: %v", ErrFailedToParseJSON, err)
		}
		if len(body) > DefaultMaxJSONSize {
			return fmt.Errorf("%w: max %d bytes", ErrRequestTooLarge, DefaultMaxJSONSize)
		}

		decoder := json.NewDecoder(bytes.NewReader(body))
		decoder.DisallowUnknownFields()

		if err := decoder.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: empty body", ErrFailedToParseJSON)
			}
			return fmt.Errorf("%w: %v", ErrFailedToParseJSON, err)
		}

		var extra json.RawMessage
		if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrFailedToParseJSON)
		}

		sanitizeStruct(v)
		return nil
	}
}

func sanitizeStruct(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return
	}
	sanitizeReflectValue(rv.Elem())
}

// sanitizeReflectValue walks settable strings in structs, slices, arrays and pointers.
// Map values are not addressable and are left untouched.
func sanitizeReflectValue(rv reflect.Value) {
	switch rv.Kind() {
	case reflect.String:
		if rv.CanSet() {
			rv.SetString(sanitizeStringValue(rv.String()))
		}
	case reflect.Struct:
		for i := range rv.NumField() {
			if field := rv.Field(i); field.CanSet() {
				sanitizeReflectValue(field)
			}
		}
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			sanitizeReflectValue(rv.Index(i))
		}
	case reflect.Ptr:
		if !rv.IsNil() {
			sanitizeReflectValue(rv.Elem())
		}
	}
}
