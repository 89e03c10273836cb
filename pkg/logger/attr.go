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

// Component records the originating component under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Backend records the active secret-storage backend under the key "backend".
func Backend(name string) slog.Attr {
	return slog.String("backend", name)
}

// AccountID records a TOTP account identifier under the key "account_id".
// If id is nil, it returns an empty Attr.
func AccountID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("account_id", id)
}

// Service records a keyring service name under the key "service".
func Service(name string) slog.Attr {
	return slog.String("service", name)
}

// Path records a filesystem path under the key "path".
func Path(p string) slog.Attr {
	return slog.String("path", p)
}
