package probe

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTimeout bounds a single connection attempt.
	DefaultTimeout = time.Second

	// NoneFound is reported when no candidate port accepted a connection.
	NoneFound = "No active ports found"

	activePrefix = "Active ports: "
	separator    = ";"
)

// DefaultPorts is the candidate list probed when none is configured.
var DefaultPorts = []int{22, 80, 443, 3306, 8080}

// Dialer opens TCP connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Prober checks which TCP ports on a host accept connections.
type Prober struct {
	timeout time.Duration
	workers int
	dialer  Dialer
}

// Option configures a Prober.
type Option func(*Prober)

// WithTimeout sets the per-port connection timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithWorkers sets how many ports are attempted at once. One means sequential.
func WithWorkers(n int) Option {
	return func(p *Prober) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithDialer replaces the network dialer.
func WithDialer(d Dialer) Option {
	return func(p *Prober) {
		if d != nil {
			p.dialer = d
		}
	}
}

// New returns a sequential Prober with a one second timeout unless
// overridden by opts.
func New(opts ...Option) *Prober {
	p := &Prober{
		timeout: DefaultTimeout,
		workers: 1,
		dialer:  &net.Dialer{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Timeout returns the per-port connection timeout.
func (p *Prober) Timeout() time.Duration { return p.timeout }

// Probe attempts one connection per port and returns the ports that
// accepted, in the order they appear in ports. Failures of any kind leave
// the port out of the result.
func (p *Prober) Probe(ctx context.Context, address string, ports []int) []int {
	open := make([]bool, len(ports))

	if p.workers <= 1 {
		for i, port := range ports {
			if ctx.Err() != nil {
				break
			}
			open[i] = p.attempt(ctx, address, port)
		}
		return collect(ports, open)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, port := range ports {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			open[i] = p.attempt(gctx, address, port)
			return nil
		})
	}
	_ = g.Wait()

	return collect(ports, open)
}

func (p *Prober) attempt(ctx context.Context, address string, port int) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.dialer.DialContext(ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func collect(ports []int, open []bool) []int {
	result := make([]int, 0, len(ports))
	for i, ok := range open {
		if ok {
			result = append(result, ports[i])
		}
	}
	return result
}

// Format renders a probe result for display and storage.
func Format(open []int) string {
	if len(open) == 0 {
		return NoneFound
	}
	parts := make([]string, len(open))
	for i, port := range open {
		parts[i] = strconv.Itoa(port)
	}
	return activePrefix + strings.Join(parts, separator)
}
