// Package fetch retrieves raw article and image content over HTTP.
//
// The package provides:
//   - Fetcher: the interface the crawler and the image downloader depend on
//   - HTTPFetcher: a net/http implementation with body size limits
//   - RetryFetcher: an explicit, caller-visible retry policy
//   - LimitedFetcher: a bound on concurrent in-flight requests
//   - NewHTTPClient: client construction with optional SOCKS5 proxy and
//     per-host header/cookie injection
//
// Every failure is reported as a *FetchError so callers can treat transport
// problems, timeouts and non-2xx statuses uniformly.
package fetch
