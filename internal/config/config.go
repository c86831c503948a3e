package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/wikitree/internal/fetch"
	"github.com/nao1215/wikitree/internal/tor"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "wikitree"

	// DefaultHeight is the number of levels below the root article.
	// Height 2 yields at most 7 people.
	DefaultHeight = 2

	// DefaultWorkers is the number of concurrent portrait downloads.
	DefaultWorkers = 4

	// DefaultMaxInFlight bounds concurrent article requests across all
	// branches of one crawl.
	DefaultMaxInFlight = 8

	// DefaultImageDir is where portraits are written.
	DefaultImageDir = "images"

	// DefaultTimeout applies to a single HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultRetries is the number of extra attempts for transient fetch errors.
	DefaultRetries = 2

	// DefaultRetryBackoff is the base delay between retries. The n-th retry
	// waits n times this value.
	DefaultRetryBackoff = 500 * time.Millisecond

	// DefaultBatchSize is the number of root articles crawled concurrently.
	DefaultBatchSize = 2

	// DefaultUserAgent identifies wikitree in HTTP requests.
	DefaultUserAgent = fetch.DefaultUserAgent

	// DefaultMaxBodySize limits how much of an article is read.
	DefaultMaxBodySize = fetch.DefaultMaxBodySize

	// DefaultTorStartupTimeout is how long the embedded Tor daemon may take
	// to bootstrap.
	DefaultTorStartupTimeout = tor.DefaultStartupTimeout
)

// Config holds all configuration options for a wikitree run.
type Config struct {
	// RootURLs are the articles each crawl starts from.
	RootURLs []string

	// Height is the number of levels below the root. Zero yields a
	// single-node tree.
	Height int

	// Workers is the size of the portrait download pool.
	Workers int

	// MaxInFlight bounds concurrent article requests.
	MaxInFlight int

	// ImageDir is the directory portraits are written to.
	ImageDir string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// Retries is the number of extra attempts after a transient failure.
	Retries int

	// RetryBackoff is the base delay between attempts.
	RetryBackoff time.Duration

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// UseTor routes all requests through an embedded Tor daemon.
	UseTor bool

	// TorStartupTimeout bounds how long the embedded Tor daemon may take
	// to bootstrap.
	TorStartupTimeout time.Duration

	// BatchSize is the number of root URLs crawled concurrently.
	BatchSize int

	// Verbose enables debug logging, including every rejected candidate.
	Verbose bool

	// ConfigFilePath is the explicit configuration file path.
	// Empty means the default search locations are used.
	ConfigFilePath string

	// Site holds the loaded configuration file. Never nil after the CLI
	// has built the config.
	Site *File

	// JSONReport selects JSON output.
	JSONReport bool

	// MarkdownReport selects Markdown output.
	MarkdownReport bool

	// ReportFile is an optional file the report is also written to.
	ReportFile string

	// SaveToDB stores every finished crawl in the export database.
	SaveToDB bool

	// DBDir is the directory holding the export database.
	DBDir string

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes.
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Height:       DefaultHeight,
		Workers:      DefaultWorkers,
		MaxInFlight:  DefaultMaxInFlight,
		ImageDir:     DefaultImageDir,
		Timeout:      DefaultTimeout,
		Retries:      DefaultRetries,
		RetryBackoff: DefaultRetryBackoff,
		BatchSize:    DefaultBatchSize,
		DBDir:        XDGDataDir(),
		UserAgent:    DefaultUserAgent,
		MaxBodySize:  DefaultMaxBodySize,
		Site:         NewFile(),

		TorStartupTimeout: DefaultTorStartupTimeout,
	}
}

// XDGDataDir returns the XDG data directory for wikitree.
// On Linux: ~/.local/share/wikitree
// On macOS: ~/Library/Application Support/wikitree
// On Windows: %LOCALAPPDATA%\wikitree
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for wikitree.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors.
func (c *Config) Validate() error {
	if len(c.RootURLs) == 0 {
		return ErrNoTarget
	}
	for _, raw := range c.RootURLs {
		if !isArticleURL(raw) {
			return ErrInvalidRootURL
		}
	}

	if c.Height < 0 {
		return ErrInvalidHeight
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.MaxInFlight <= 0 {
		return ErrInvalidMaxInFlight
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Retries < 0 || c.RetryBackoff < 0 {
		return ErrInvalidRetries
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.ProxyAddress != "" && !fetch.IsValidProxyAddress(c.ProxyAddress) {
		return ErrInvalidProxyAddress
	}

	if c.UseTor && c.ProxyAddress != "" {
		return ErrConflictingProxy
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}

// ClientOptions translates the configuration into HTTP client options,
// including per-host headers from the configuration file.
func (c *Config) ClientOptions() fetch.ClientOptions {
	opts := fetch.ClientOptions{
		Timeout:      c.Timeout,
		ProxyAddress: c.ProxyAddress,
	}
	if c.Site != nil {
		opts.Defaults, opts.Hosts = c.Site.HostHeaders()
	}
	return opts
}

func isArticleURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
