package tor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/tornago"
)

// DefaultStartupTimeout bounds how long Start waits for Tor to bootstrap.
const DefaultStartupTimeout = 3 * time.Minute

// ErrNotRunning is returned when the daemon's proxy is requested before
// Start succeeded or after Stop.
var ErrNotRunning = errors.New("embedded Tor daemon is not running")

// Daemon manages an embedded Tor process.
//
// Starting takes one to three minutes while Tor downloads directory
// information and builds its first circuits.
type Daemon struct {
	process *tornago.TorProcess

	socksAddr   string
	controlAddr string

	startupTimeout time.Duration
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithStartupTimeout sets the maximum time to wait for Tor to bootstrap.
// Non-positive values are ignored.
func WithStartupTimeout(timeout time.Duration) Option {
	return func(d *Daemon) {
		if timeout > 0 {
			d.startupTimeout = timeout
		}
	}
}

// NewDaemon creates a Daemon. Call Start to launch Tor.
func NewDaemon(opts ...Option) *Daemon {
	d := &Daemon{startupTimeout: DefaultStartupTimeout}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches Tor on OS-assigned ports and blocks until it has
// bootstrapped or the startup timeout expires.
func (d *Daemon) Start(ctx context.Context) error {
	if d.IsRunning() {
		return nil
	}

	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(d.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create Tor launch config: %w", err)
	}

	process, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return fmt.Errorf("failed to start embedded Tor daemon: %w", err)
	}

	if err := ctx.Err(); err != nil {
		_ = process.Stop() //nolint:errcheck // best effort cleanup
		return err
	}

	d.process = process
	d.socksAddr = process.SocksAddr()
	d.controlAddr = process.ControlAddr()
	return nil
}

// Stop shuts the daemon down. It is safe to call on a daemon that was
// never started and to call more than once.
func (d *Daemon) Stop() error {
	if d.process == nil {
		return nil
	}
	err := d.process.Stop()
	d.process = nil
	d.socksAddr = ""
	d.controlAddr = ""
	return err
}

// IsRunning reports whether the daemon is running.
func (d *Daemon) IsRunning() bool {
	return d.process != nil
}

// SocksAddr returns the SOCKS5 address ("host:port"), or "" when not running.
func (d *Daemon) SocksAddr() string {
	return d.socksAddr
}

// ControlAddr returns the control port address, or "" when not running.
func (d *Daemon) ControlAddr() string {
	return d.controlAddr
}

// ProxyAddress returns the SOCKS5 address to configure HTTP clients with.
func (d *Daemon) ProxyAddress() (string, error) {
	if !d.IsRunning() || d.socksAddr == "" {
		return "", ErrNotRunning
	}
	return d.socksAddr, nil
}
