package tor

import (
	"errors"
	"testing"
	"time"
)

// TestNewDaemon tests Daemon construction and options.
func TestNewDaemon(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		opts     []Option
		expected time.Duration
	}{
		{name: "default timeout", expected: DefaultStartupTimeout},
		{name: "custom timeout", opts: []Option{WithStartupTimeout(5 * time.Minute)}, expected: 5 * time.Minute},
		{name: "zero timeout is ignored", opts: []Option{WithStartupTimeout(0)}, expected: DefaultStartupTimeout},
		{name: "negative timeout is ignored", opts: []Option{WithStartupTimeout(-time.Second)}, expected: DefaultStartupTimeout},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d := NewDaemon(tc.opts...)
			if d.startupTimeout != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, d.startupTimeout)
			}
		})
	}
}

// TestDaemonBeforeStart tests Daemon methods without launching Tor.
func TestDaemonBeforeStart(t *testing.T) {
	t.Parallel()

	d := NewDaemon()

	if d.IsRunning() {
		t.Error("expected IsRunning to be false before start")
	}
	if d.SocksAddr() != "" || d.ControlAddr() != "" {
		t.Error("expected empty addresses before start")
	}
	if _, err := d.ProxyAddress(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("expected ErrNotRunning, got %v", err)
	}
	if err := d.Stop(); err != nil {
		t.Errorf("expected no error stopping unstarted daemon, got %v", err)
	}
	if err := d.Stop(); err != nil {
		t.Errorf("expected second Stop to succeed, got %v", err)
	}
}
