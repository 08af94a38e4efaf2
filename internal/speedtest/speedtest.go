package speedtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	st "github.com/showwin/speedtest-go/speedtest"
)

// Failed is shown in place of a summary when measurement fails for any reason.
const Failed = "Couldn't test your internet speed - Check your connection"

// ErrDisabled is returned by Disabled.
var ErrDisabled = errors.New("speed test disabled")

// Result holds one throughput measurement.
type Result struct {
	Server       string
	Latency      time.Duration
	DownloadMbps float64
	UploadMbps   float64
}

// Measurer measures internet throughput.
type Measurer interface {
	Measure(ctx context.Context) (Result, error)
}

// Summary renders a measurement for display and storage. Any error yields
// the fixed Failed message.
func Summary(res Result, err error) string {
	if err != nil {
		return Failed
	}
	return fmt.Sprintf("Download speed: %.2f Mbps, Upload speed: %.2f Mbps", res.DownloadMbps, res.UploadMbps)
}

// Disabled is a Measurer that never measures.
type Disabled struct{}

func (Disabled) Measure(context.Context) (Result, error) { return Result{}, ErrDisabled }

// Client measures throughput against a speedtest.net server.
type Client struct {
	timeout   time.Duration
	serverIDs []int
}

// NewClient returns a Client that gives up after timeout and tests against
// the first reachable server among serverIDs, or the closest server when
// serverIDs is empty.
func NewClient(timeout time.Duration, serverIDs []int) *Client {
	return &Client{timeout: timeout, serverIDs: serverIDs}
}

func (c *Client) Measure(ctx context.Context) (Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	client := st.New()

	servers, err := client.FetchServerListContext(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch server list: %w", err)
	}

	targets, err := servers.FindServer(c.serverIDs)
	if err != nil {
		return Result{}, fmt.Errorf("find server: %w", err)
	}
	if len(targets) == 0 {
		return Result{}, errors.New("no speed test server available")
	}

	s := targets[0]
	defer s.Context.Reset()

	if err := s.PingTestContext(ctx, nil); err != nil {
		return Result{}, fmt.Errorf("ping %s: %w", s.Name, err)
	}
	if err := s.DownloadTestContext(ctx); err != nil {
		return Result{}, fmt.Errorf("download test: %w", err)
	}
	if err := s.UploadTestContext(ctx); err != nil {
		return Result{}, fmt.Errorf("upload test: %w", err)
	}

	return Result{
		Server:       fmt.Sprintf("%s (%s)", s.Name, s.Sponsor),
		Latency:      s.Latency,
		DownloadMbps: s.DLSpeed.Mbps(),
		UploadMbps:   s.ULSpeed.Mbps(),
	}, nil
}
