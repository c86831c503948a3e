// Package log provides secure logging for wikitree, built on top of the
// standard slog package.
//
// The SecureHandler masks values that should never reach a log file:
//   - request headers configured per host (Authorization, Cookie, X-Api-Key)
//   - credentials embedded in URLs, such as a proxy's user:password
//   - query parameters that carry tokens or session identifiers
//   - values that look like bearer tokens, JWTs or long API keys
//
// Header maps logged as a single attribute are sanitized entry by entry, so
// a host's configured headers can be logged for debugging without leaking
// the cookie.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("fetching", "url", articleURL, "headers", site.Headers)
//	slog.SetDefault(logger)
package log
