// Package insteon talks to the embedded web server of an Insteon Hub.
package insteon

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"insteon-alert/internal/domain"
)

var ErrUnexpectedStatus = errors.New("unexpected hub status")

// Options configures a Client. Zero values fall back to plain HTTP, a five
// second timeout, certificate verification on and no circuit breaker.
type Options struct {
	Scheme             string
	Timeout            time.Duration
	InsecureSkipVerify bool
	Breaker            BreakerOptions
}

// BreakerOptions enables a per-hub circuit breaker. Once MaxFailures
// consecutive calls fail, further calls fail fast until OpenTimeout elapses.
type BreakerOptions struct {
	Enabled     bool
	MaxFailures uint32
	OpenTimeout time.Duration
}

type Client struct {
	scheme     string
	httpClient *http.Client
	logger     *slog.Logger

	breakerOpts BreakerOptions
	mu          sync.Mutex
	breakers    map[string]*gobreaker.CircuitBreaker
}

func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.Scheme == "" {
		opts.Scheme = "http"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Breaker.MaxFailures == 0 {
		opts.Breaker.MaxFailures = 3
	}
	if opts.Breaker.OpenTimeout <= 0 {
		opts.Breaker.OpenTimeout = 30 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed hubs
	}

	return &Client{
		scheme: opts.Scheme,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		logger:      logger,
		breakerOpts: opts.Breaker,
		breakers:    make(map[string]*gobreaker.CircuitBreaker),
	}
}

// CommandURL builds the hub escape sequence that sends a standard direct
// message (0262) with max hops flags 0F to device.
func CommandURL(scheme string, endpoint domain.HubEndpoint, device domain.DeviceID, cmd1, cmd2 byte) string {
	return fmt.Sprintf("%s://%s/3?0262%s0F%02X%02X=I=3", scheme, endpoint.HostPort(), device, cmd1, cmd2)
}

// Call sends a single command and returns the HTTP status. A non-200 status
// is reported as ErrUnexpectedStatus. Call never retries.
func (c *Client) Call(ctx context.Context, endpoint domain.HubEndpoint, device domain.DeviceID, cmd1, cmd2 byte) (int, error) {
	url := CommandURL(c.scheme, endpoint, device, cmd1, cmd2)

	breaker := c.breaker(endpoint)
	if breaker == nil {
		return c.doRequest(ctx, endpoint, url)
	}

	var status int
	_, err := breaker.Execute(func() (interface{}, error) {
		var err error
		status, err = c.doRequest(ctx, endpoint, url)
		return nil, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.Warn("hub circuit open, skipping call", "hub", endpoint.HostPort(), "device", device)
	}
	return status, err
}

func (c *Client) doRequest(ctx context.Context, endpoint domain.HubEndpoint, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(endpoint.Username, endpoint.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("call to insteon hub failed", "url", url, "error", err)
		return 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	// The hub answers with a status page; replies are not parsed.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("insteon hub returned non-200 status", "url", url, "status", resp.StatusCode)
		return resp.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	c.logger.Info("insteon command sent", "url", url)
	return resp.StatusCode, nil
}

func (c *Client) breaker(endpoint domain.HubEndpoint) *gobreaker.CircuitBreaker {
	if !c.breakerOpts.Enabled {
		return nil
	}

	key := endpoint.HostPort()

	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, ok := c.breakers[key]; ok {
		return cb
	}

	maxFailures := c.breakerOpts.MaxFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "insteon-hub-" + key,
		Timeout: c.breakerOpts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Info("hub circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	c.breakers[key] = cb
	return cb
}
