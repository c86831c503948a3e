package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// sensitiveKeys are attribute, header and query parameter names whose
// values are always masked.
var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"x-csrf-token":        true,
	"password":            true,
	"passwd":              true,
	"secret":              true,
	"token":               true,
	"api_key":             true,
	"apikey":              true,
	"api-key":             true,
	"access_token":        true,
	"refresh_token":       true,
	"session":             true,
	"session_id":          true,
	"sessionid":           true,
	"sid":                 true,
	"credential":          true,
	"credentials":         true,
	"auth":                true,
}

// sensitiveKeywords mark a key as sensitive when they appear anywhere in it.
// The bare "key" is excluded because it matches names like "primary_key".
var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "auth", "cookie", "credential", "session",
}

// sensitivePatterns match values that are sensitive regardless of key.
var sensitivePatterns = []*regexp.Regexp{
	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
	// Bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	// Basic auth
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
	// Long alphanumeric API keys
	regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`),
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// SecureHandler wraps an slog.Handler and sanitizes every attribute before
// the wrapped handler sees it.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled reports whether the wrapped handler handles records at the given level.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it to the wrapped handler.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes sanitized and added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitized := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitized[i] = sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitized)}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

func sanitizeAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitized := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			sanitized[i] = sanitizeAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitized...)}
	}

	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, sanitizeString(a.Value.String()))
	case slog.KindAny:
		switch v := a.Value.Any().(type) {
		case map[string]string:
			return slog.Any(a.Key, sanitizeHeaders(v))
		case map[string][]string:
			return slog.Any(a.Key, sanitizeMultiHeaders(v))
		case *url.URL:
			if v != nil {
				return slog.String(a.Key, sanitizeURL(v))
			}
		}
	}
	return a
}

// sanitizeString masks sensitive values and strips credentials from URLs.
func sanitizeString(s string) string {
	if isSensitiveValue(s) {
		return MaskValue
	}
	if !strings.Contains(s, "://") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s
	}
	return sanitizeURL(u)
}

// sanitizeURL redacts the userinfo password and sensitive query parameters.
func sanitizeURL(u *url.URL) string {
	clean := *u
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			clean.User = url.UserPassword(u.User.Username(), MaskValue)
		}
	}
	if clean.RawQuery != "" {
		query := clean.Query()
		changed := false
		for key := range query {
			if isSensitiveKey(key) {
				query.Set(key, MaskValue)
				changed = true
			}
		}
		if changed {
			clean.RawQuery = query.Encode()
		}
	}
	return clean.String()
}

func sanitizeHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if isSensitiveKey(k) || isSensitiveValue(v) {
			out[k] = MaskValue
			continue
		}
		out[k] = v
	}
	return out
}

func sanitizeMultiHeaders(headers map[string][]string) map[string][]string {
	out := make(map[string][]string, len(headers))
	for k, values := range headers {
		if isSensitiveKey(k) {
			out[k] = []string{MaskValue}
			continue
		}
		out[k] = values
	}
	return out
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	return sensitiveKeys[lower] || containsSensitiveKeyword(lower)
}

// containsSensitiveKeyword checks if the lowercased key contains a sensitive keyword.
func containsSensitiveKeyword(key string) bool {
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// isSensitiveValue checks if a value matches sensitive patterns.
func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// NewSecureLogger creates a text logger that sanitizes all output.
// With verbose set the level is Debug, otherwise Warn.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewSecureJSONLogger creates a JSON logger that sanitizes all output.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
