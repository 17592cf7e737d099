package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// PreviewID records the preview identifier under the key "preview_id".
// If id is empty, it returns an empty Attr.
func PreviewID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("preview_id", id)
}

// RequestID records the request identifier under the key "request_id".
// If id is empty, it returns an empty Attr.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Count records a number of affected items under the key "count".
func Count(n int64) slog.Attr {
	return slog.Int64("count", n)
}

// Provider records an upstream provider name under the key "provider".
func Provider(name string) slog.Attr {
	return slog.String("provider", name)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Storage records the preview storage driver under the key "storage".
func Storage(kind string) slog.Attr {
	return slog.String("storage", kind)
}
