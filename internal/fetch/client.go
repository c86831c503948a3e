package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// maxRedirects limits how many redirects a single request may follow.
// Encyclopedia article aliases usually redirect once.
const maxRedirects = 10

// HostHeaders holds extra request headers and a cookie for one host.
type HostHeaders struct {
	// Cookie is a raw cookie string (e.g., "name=value; other=value").
	Cookie string

	// Headers are additional request headers.
	Headers map[string]string
}

// ClientOptions configures NewHTTPClient.
type ClientOptions struct {
	// Timeout applies to each request, including reading the body.
	Timeout time.Duration

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// Defaults are injected into every request.
	Defaults HostHeaders

	// Hosts are injected into requests whose host matches the key.
	// Host headers override default headers of the same name; cookies are appended.
	Hosts map[string]HostHeaders
}

// NewHTTPClient creates an HTTP client for crawling.
//
// When ProxyAddress is set, every connection is dialed through that SOCKS5
// proxy. Configured headers and cookies are injected by a RoundTripper so
// redirected requests carry them too.
func NewHTTPClient(opts ClientOptions) (*http.Client, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     30 * time.Second,
	}

	if opts.ProxyAddress != "" {
		if !IsValidProxyAddress(opts.ProxyAddress) {
			return nil, ErrInvalidProxyAddress
		}
		dialer, err := proxy.SOCKS5("tcp", opts.ProxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		}
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	var rt http.RoundTripper = transport
	if hasHeaders(opts.Defaults) || len(opts.Hosts) > 0 {
		rt = &headerInjectingTransport{
			base:     transport,
			defaults: opts.Defaults,
			hosts:    opts.Hosts,
		}
	}

	return &http.Client{
		Transport: rt,
		Timeout:   opts.Timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// IsValidProxyAddress checks if the address is in "host:port" format with
// a non-empty host and a port between 1 and 65535.
func IsValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

func hasHeaders(h HostHeaders) bool {
	return h.Cookie != "" || len(h.Headers) > 0
}

// headerInjectingTransport wraps an http.RoundTripper to inject
// configured headers and cookies into every request.
type headerInjectingTransport struct {
	base     http.RoundTripper
	defaults HostHeaders
	hosts    map[string]HostHeaders
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	inject := func(h HostHeaders) {
		if h.Cookie != "" {
			if existing := clone.Header.Get("Cookie"); existing != "" {
				clone.Header.Set("Cookie", existing+"; "+h.Cookie)
			} else {
				clone.Header.Set("Cookie", h.Cookie)
			}
		}
		for key, value := range h.Headers {
			clone.Header.Set(key, value)
		}
	}

	inject(t.defaults)
	if h, ok := t.hosts[strings.ToLower(clone.URL.Hostname())]; ok {
		inject(h)
	}

	return t.base.RoundTrip(clone)
}
