package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestHTTPFetcher tests fetching with an HTTP client.
func TestHTTPFetcher(t *testing.T) {
	t.Parallel()

	t.Run("returns body on success", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("User-Agent") != "TestBot/1.0" {
				t.Errorf("unexpected User-Agent %q", r.Header.Get("User-Agent"))
			}
			_, _ = w.Write([]byte("hello")) //nolint:errcheck
		}))
		defer server.Close()

		f := NewHTTPFetcher(server.Client(), WithUserAgent("TestBot/1.0"))
		body, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != "hello" {
			t.Errorf("expected body 'hello', got %q", body)
		}
	})

	t.Run("non-2xx status is a FetchError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.NotFound(w, nil)
		}))
		defer server.Close()

		f := NewHTTPFetcher(server.Client())
		_, err := f.Fetch(context.Background(), server.URL)
		if !errors.Is(err, ErrFetch) {
			t.Fatalf("expected ErrFetch, got %v", err)
		}

		var fe *FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("expected *FetchError, got %T", err)
		}
		if fe.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", fe.StatusCode)
		}
		if fe.Temporary() {
			t.Error("404 should not be temporary")
		}
	})

	t.Run("transport failure is a FetchError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		url := server.URL
		server.Close()

		f := NewHTTPFetcher(&http.Client{Timeout: time.Second})
		_, err := f.Fetch(context.Background(), url)
		if !errors.Is(err, ErrFetch) {
			t.Fatalf("expected ErrFetch, got %v", err)
		}
	})

	t.Run("timeout is a FetchError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(300 * time.Millisecond)
			_, _ = w.Write([]byte("slow")) //nolint:errcheck
		}))
		defer server.Close()

		client := server.Client()
		client.Timeout = 50 * time.Millisecond
		f := NewHTTPFetcher(client)
		_, err := f.Fetch(context.Background(), server.URL)
		if !errors.Is(err, ErrFetch) {
			t.Fatalf("expected ErrFetch, got %v", err)
		}
	})

	t.Run("limits body size", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("a", 100))) //nolint:errcheck
		}))
		defer server.Close()

		f := NewHTTPFetcher(server.Client(), WithMaxBodySize(10))
		body, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(body) != 10 {
			t.Errorf("expected 10 bytes, got %d", len(body))
		}
	})

	t.Run("nil client uses default", func(t *testing.T) {
		t.Parallel()

		f := NewHTTPFetcher(nil)
		if f.client != http.DefaultClient {
			t.Error("expected http.DefaultClient")
		}
		if f.userAgent != DefaultUserAgent {
			t.Errorf("expected default user agent, got %q", f.userAgent)
		}
	})
}

// TestRetryFetcher tests the retry policy.
func TestRetryFetcher(t *testing.T) {
	t.Parallel()

	t.Run("retries temporary failures", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		next := FetcherFunc(func(_ context.Context, url string) ([]byte, error) {
			if calls.Add(1) < 3 {
				return nil, &FetchError{URL: url, StatusCode: http.StatusServiceUnavailable}
			}
			return []byte("ok"), nil
		})

		f := NewRetryFetcher(next, 3, 0)
		body, err := f.Fetch(context.Background(), "http://example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != "ok" {
			t.Errorf("expected 'ok', got %q", body)
		}
		if calls.Load() != 3 {
			t.Errorf("expected 3 calls, got %d", calls.Load())
		}
	})

	t.Run("does not retry permanent failures", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		next := FetcherFunc(func(_ context.Context, url string) ([]byte, error) {
			calls.Add(1)
			return nil, &FetchError{URL: url, StatusCode: http.StatusNotFound}
		})

		f := NewRetryFetcher(next, 3, 0)
		if _, err := f.Fetch(context.Background(), "http://example.com"); err == nil {
			t.Fatal("expected error")
		}
		if calls.Load() != 1 {
			t.Errorf("expected 1 call, got %d", calls.Load())
		}
	})

	t.Run("gives up after retries", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		next := FetcherFunc(func(_ context.Context, url string) ([]byte, error) {
			calls.Add(1)
			return nil, &FetchError{URL: url, Err: errors.New("connection reset")}
		})

		f := NewRetryFetcher(next, 2, time.Millisecond)
		_, err := f.Fetch(context.Background(), "http://example.com")
		if !errors.Is(err, ErrFetch) {
			t.Fatalf("expected ErrFetch, got %v", err)
		}
		if calls.Load() != 3 {
			t.Errorf("expected 3 calls, got %d", calls.Load())
		}
	})

	t.Run("zero retries returns wrapped fetcher", func(t *testing.T) {
		t.Parallel()

		next := NewHTTPFetcher(nil)
		if f := NewRetryFetcher(next, 0, time.Second); f != Fetcher(next) {
			t.Error("expected wrapped fetcher to be returned unchanged")
		}
	})
}

// TestLimitedFetcher tests the in-flight limit.
func TestLimitedFetcher(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	next := FetcherFunc(func(_ context.Context, _ string) ([]byte, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return nil, nil
	})

	f := NewLimitedFetcher(next, 2)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.Fetch(context.Background(), "http://example.com") //nolint:errcheck
		}()
	}
	wg.Wait()

	if peak.Load() > 2 {
		t.Errorf("expected at most 2 concurrent requests, got %d", peak.Load())
	}
}

// TestNewHTTPClient tests client construction.
func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	t.Run("injects headers and cookies", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(r.Header.Get("X-Test") + "|" + r.Header.Get("Cookie"))) //nolint:errcheck
		}))
		defer server.Close()

		client, err := NewHTTPClient(ClientOptions{
			Timeout:  time.Second,
			Defaults: HostHeaders{Headers: map[string]string{"X-Test": "default"}},
			Hosts: map[string]HostHeaders{
				"127.0.0.1": {Cookie: "session=abc", Headers: map[string]string{"X-Test": "host"}},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		body, err := NewHTTPFetcher(client).Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != "host|session=abc" {
			t.Errorf("unexpected injected values %q", body)
		}
	})

	t.Run("rejects invalid proxy address", func(t *testing.T) {
		t.Parallel()

		_, err := NewHTTPClient(ClientOptions{ProxyAddress: "127.0.0.1"})
		if !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})

	t.Run("accepts valid proxy address", func(t *testing.T) {
		t.Parallel()

		client, err := NewHTTPClient(ClientOptions{ProxyAddress: "127.0.0.1:9050", Timeout: time.Second})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.Timeout != time.Second {
			t.Errorf("expected timeout 1s, got %v", client.Timeout)
		}
	})
}

// TestIsValidProxyAddress tests proxy address validation.
func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		address string
		want    bool
	}{
		{"127.0.0.1:9050", true},
		{"localhost:1080", true},
		{"127.0.0.1", false},
		{":9050", false},
		{"127.0.0.1:", false},
		{"127.0.0.1:0", false},
		{"127.0.0.1:65536", false},
		{"127.0.0.1:abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			t.Parallel()
			if got := IsValidProxyAddress(tt.address); got != tt.want {
				t.Errorf("IsValidProxyAddress(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}
