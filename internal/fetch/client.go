// Package fetch downloads remote assets over HTTP(S).
//
// Redirects are followed by hand rather than by net/http so the chain can be capped
// and logged. Each request is attempted exactly once; retry policy belongs to callers.
//
//	c, err := fetch.New(fetch.WithTimeout(30*time.Second), fetch.WithLogger(logging.New("fetch")))
//	css, err := c.Fetch(ctx, "https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.4.0/css/all.min.css")
//	n, err := c.FetchToFile(ctx, "https://unpkg.com/aos@2.3.1/dist/aos.js", "assets/js/aos.js")
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"vendorize/internal/atomicfile"
	"vendorize/internal/logging"
)

const (
	// DefaultTimeout bounds a single request including its body.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the number of redirects followed before giving up.
	DefaultMaxRedirects = 10
	// DefaultUserAgent is sent when no WithUserAgent option is given.
	DefaultUserAgent = "vendorize/1.0"
)

// Client performs GET requests with capped redirect following.
type Client struct {
	httpClient   *http.Client
	logger       *slog.Logger
	maxRedirects int
	userAgent    string
}

// Option configures the Client during construction.
type Option func(*clientConfig) error

type clientConfig struct {
	httpClient   *http.Client
	logger       *slog.Logger
	timeout      time.Duration
	maxRedirects int
	userAgent    string
}

// New creates a Client. Without options it uses DefaultTimeout and DefaultMaxRedirects.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		timeout:      DefaultTimeout,
		maxRedirects: DefaultMaxRedirects,
		userAgent:    DefaultUserAgent,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	// Copy so the caller's client keeps its own redirect policy.
	var hc http.Client
	if cfg.httpClient != nil {
		hc = *cfg.httpClient
	}
	hc.Timeout = cfg.timeout
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	logger := cfg.logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Client{
		httpClient:   &hc,
		logger:       logger,
		maxRedirects: cfg.maxRedirects,
		userAgent:    cfg.userAgent,
	}, nil
}

// WithHTTPClient overrides the transport settings of the underlying HTTP client.
// Its Timeout and CheckRedirect are replaced by the Client's own.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) error {
		cfg.httpClient = c
		return nil
	}
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		cfg.logger = l
		return nil
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d < 0 {
			return fmt.Errorf("fetch: negative timeout %s", d)
		}
		cfg.timeout = d
		return nil
	}
}

// WithMaxRedirects caps the redirect chain length.
func WithMaxRedirects(n int) Option {
	return func(cfg *clientConfig) error {
		if n < 0 {
			return fmt.Errorf("fetch: negative redirect cap %d", n)
		}
		cfg.maxRedirects = n
		return nil
	}
}

// WithUserAgent sets the User-Agent header. Some CDNs vary their payload on it.
func WithUserAgent(ua string) Option {
	return func(cfg *clientConfig) error {
		cfg.userAgent = ua
		return nil
	}
}

// Fetch returns the full body of rawURL.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(NetworkFailure, rawURL, 0, fmt.Errorf("read body: %w", err))
	}
	return data, nil
}

// FetchToFile streams the body of rawURL into dest, replacing any existing file.
// The file only appears once the whole body has been written.
func (c *Client) FetchToFile(ctx context.Context, rawURL, dest string) (int64, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body := &trackingReader{r: resp.Body}
	n, err := atomicfile.Write(dest, atomicfile.DefaultPerm, func(w io.Writer) (int64, error) {
		return io.Copy(w, body)
	})
	if err != nil {
		if body.err != nil {
			return 0, newError(NetworkFailure, rawURL, 0, fmt.Errorf("read body: %w", body.err))
		}
		return 0, Filesystem(rawURL, err)
	}
	return n, nil
}

// get resolves redirects and returns the terminal 200 response.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	current := rawURL
	for hops := 0; ; hops++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current, nil)
		if err != nil {
			return nil, newError(NetworkFailure, rawURL, 0, fmt.Errorf("create request: %w", err))
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		c.logger.DebugContext(ctx, "request", "url", current, "hop", hops)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, newError(NetworkFailure, rawURL, 0, unwrapURLError(err))
		}

		if isRedirect(resp.StatusCode) {
			if loc := resp.Header.Get("Location"); loc != "" {
				discard(resp)
				if hops >= c.maxRedirects {
					return nil, newError(TooManyRedirects, rawURL, resp.StatusCode,
						fmt.Errorf("stopped after %d redirects", hops))
				}
				next, err := req.URL.Parse(loc)
				if err != nil {
					return nil, newError(NetworkFailure, rawURL, resp.StatusCode, fmt.Errorf("bad Location %q: %w", loc, err))
				}
				current = next.String()
				c.logger.InfoContext(ctx, "redirect", "from", req.URL.String(), "to", current, "status", resp.StatusCode)
				continue
			}
		}

		if resp.StatusCode != http.StatusOK {
			discard(resp)
			return nil, newError(UnexpectedStatus, rawURL, resp.StatusCode, nil)
		}
		return resp, nil
	}
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusTemporaryRedirect:
		return true
	}
	return false
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
	_ = resp.Body.Close()
}

// unwrapURLError drops the *url.Error wrapper; the URL is already on our Error.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}
