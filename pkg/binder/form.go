package binder

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"reflect"
	"strings"
)

// DefaultMaxMemory is the multipart memory limit (10MB). Larger parts spill to disk.
const DefaultMaxMemory = 10 << 20

// FormOption configures the Form binder.
type FormOption func(*formConfig)

type formConfig struct {
	maxMemory   int64
	maxBodySize int64
}

// WithMaxMemory sets the multipart memory limit.
func WithMaxMemory(n int64) FormOption {
	return func(c *formConfig) {
		if n > 0 {
			c.maxMemory = n
		}
	}
}

// WithMaxBodySize rejects request bodies larger than n bytes with ErrRequestTooLarge.
func WithMaxBodySize(n int64) FormOption {
	return func(c *formConfig) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// Form binds application/x-www-form-urlencoded and multipart/form-data requests.
//
// Struct tags:
//   - `form:"name"` binds form field "name" (string, numeric, bool, slices, pointers)
//   - `file:"name"` binds uploaded file "name" (*multipart.FileHeader or []*multipart.FileHeader)
//   - `form:"-"` / `file:"-"` skip the field
//
//	type PreviewRequest struct {
//		Prompt string                `form:"prompt"`
//		CSV    *multipart.FileHeader `file:"csv"`
//	}
//
// Uploaded filenames are reduced to their base name.
func Form(opts ...FormOption) func(r *http.Request, v any) error {
	cfg := formConfig{maxMemory: DefaultMaxMemory}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(r *http.Request, v any) error {
		mediaType, err := mediaTypeOf(r)
		if err != nil {
			return fmt.Errorf("%w, expected application/x-www-form-urlencoded or multipart/form-data", err)
		}

		if cfg.maxBodySize > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(nil, r.Body, cfg.maxBodySize)
		}

		var values map[string][]string
		var files map[string][]*multipart.FileHeader

		switch mediaType {
		case "application/x-www-form-urlencoded":
			if err := r.ParseForm(); err != nil {
				return formError(err)
			}
			values = r.PostForm

		case "multipart/form-data":
			boundary := boundaryOf(r)
			if !validateBoundary(boundary) {
				return fmt.Errorf("%w: invalid boundary parameter", ErrInvalidForm)
			}
			if err := r.ParseMultipartForm(cfg.maxMemory); err != nil {
				return formError(err)
			}
			values = r.MultipartForm.Value
			files = r.MultipartForm.File

		default:
			return fmt.Errorf("%w: got %s, expected application/x-www-form-urlencoded or multipart/form-data", ErrUnsupportedMediaType, mediaType)
		}

		return bindFormAndFiles(v, values, files)
	}
}

func formError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: max %d bytes", ErrRequestTooLarge, maxErr.Limit)
	}
	return fmt.Errorf("%w: %v", ErrInvalidForm, err)
}

func boundaryOf(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	_, after, ok := strings.Cut(ct, "boundary=")
	if !ok {
		return ""
	}
	if i := strings.Index(after, ";"); i >= 0 {
		after = after[:i]
	}
	return strings.Trim(strings.TrimSpace(after), `"`)
}

func bindFormAndFiles(v any, values map[string][]string, files map[string][]*multipart.FileHeader) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer", ErrInvalidForm)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("%w: target must be a pointer to struct", ErrInvalidForm)
	}

	rt := rv.Type()
	for i := range rv.NumField() {
		field := rv.Field(i)
		fieldType := rt.Field(i)
		if !field.CanSet() {
			continue
		}

		if name := tagName(fieldType.Tag.Get("form")); name != "" {
			if fieldValues := values[name]; len(fieldValues) > 0 {
				if err := setFieldValue(field, fieldType.Type, fieldValues); err != nil {
					return fmt.Errorf("%w: field %s: %v", ErrInvalidForm, fieldType.Name, err)
				}
			}
		}

		if name := tagName(fieldType.Tag.Get("file")); name != "" {
			if headers := files[name]; len(headers) > 0 {
				if err := setFileField(field, fieldType.Type, headers); err != nil {
					return fmt.Errorf("%w: field %s: %v", ErrInvalidForm, fieldType.Name, err)
				}
			}
		}
	}
	return nil
}

// tagName returns the name part of a struct tag, or "" for empty and "-".
func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}

var fileHeaderType = reflect.TypeOf((*multipart.FileHeader)(nil))

func setFileField(field reflect.Value, fieldType reflect.Type, headers []*multipart.FileHeader) error {
	for _, fh := range headers {
		fh.Filename = sanitizeFilename(fh.Filename)
	}

	switch {
	case fieldType == fileHeaderType:
		field.Set(reflect.ValueOf(headers[0]))
		return nil
	case fieldType.Kind() == reflect.Slice && fieldType.Elem() == fileHeaderType:
		slice := reflect.MakeSlice(fieldType, len(headers), len(headers))
		for i, fh := range headers {
			slice.Index(i).Set(reflect.ValueOf(fh))
		}
		field.Set(slice)
		return nil
	}
	return fmt.Errorf("unsupported type for file field: %v (expected *multipart.FileHeader or []*multipart.FileHeader)", fieldType)
}

// sanitizeFilename strips directory components and NUL bytes.
func sanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\x00", "")
	if filename == "." || filename == ".." || filename == "" || filename == "/" {
		filename = "unnamed"
	}
	return filename
}
