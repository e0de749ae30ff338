package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/sp-admin/internal/metrics"
)

const maxBody = 8 << 20

// Client talks JSON to the remote REST API.
type Client struct {
	baseURL    string
	http       *http.Client
	log        *zap.Logger
	breakerCfg BreakerConfig

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request, body read included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithBreaker sets the config of every per-collection breaker.
func WithBreaker(cfg BreakerConfig) Option {
	return func(c *Client) { c.breakerCfg = cfg }
}

// NewClient returns a client rooted at baseURL. Requests time out after 15s
// unless WithTimeout says otherwise.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: 15 * time.Second},
		log:        zap.NewNop(),
		breakerCfg: DefaultBreakerConfig(),
		breakers:   make(map[string]*Breaker),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Breaker returns the breaker guarding collection, creating it on first use.
func (c *Client) Breaker(collection string) *Breaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.breakers[collection]
	if !ok {
		b = NewBreaker(c.breakerCfg)
		c.breakers[collection] = b
	}
	return b
}

// Do sends one request. body, when non-nil, is sent as JSON; a 2xx response
// body is decoded into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, collection, path string, body, out any) error {
	url := c.baseURL + path

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("remote: encode %s body: %w", collection, err)
		}
	}

	err := c.Breaker(collection).Execute(func() error {
		return c.roundTrip(ctx, method, url, payload, out)
	}, tripsBreaker)
	if errors.Is(err, ErrCircuitOpen) {
		metrics.IncrementBreakerOpen(collection)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, url string, payload []byte, out any) error {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return &NetworkError{Method: method, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &NetworkError{Method: method, URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(data)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return &HTTPError{Method: method, URL: url, Status: resp.StatusCode, Body: snippet}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &NetworkError{Method: method, URL: url, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// tripsBreaker counts transport failures and 5xx against the endpoint.
// Cancellation by the caller is not the endpoint's fault.
func tripsBreaker(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return true
	}
	return StatusOf(err) >= 500
}
