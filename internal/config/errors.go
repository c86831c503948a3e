package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when no root article URL is given.
	ErrNoTarget = errors.New("no target specified: provide at least one article URL")

	// ErrInvalidRootURL is returned when a root is not an absolute http(s) URL.
	ErrInvalidRootURL = errors.New("invalid root URL: must be an absolute http or https URL")

	// ErrInvalidHeight is returned when the height is negative.
	ErrInvalidHeight = errors.New("invalid height: must be zero or greater")

	// ErrInvalidWorkers is returned when the image worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidMaxInFlight is returned when the request limit is not positive.
	ErrInvalidMaxInFlight = errors.New("invalid in-flight limit: must be positive")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRetries is returned when retries or backoff are negative.
	ErrInvalidRetries = errors.New("invalid retries: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidProxyAddress is returned when the proxy is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address: expected host:port")

	// ErrConflictingProxy is returned when both --proxy and --tor are given.
	ErrConflictingProxy = errors.New("conflicting proxy settings: --proxy and --tor cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
