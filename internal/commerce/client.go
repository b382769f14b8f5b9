package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTimeout = 15 * time.Second

	HeaderStoreSlug = "X-Store-Slug"

	maxErrorBody = 64 << 10
)

// SlugSource yields the selected store slug; it is consulted on every request.
type SlugSource interface {
	StoreSlug(ctx context.Context) (string, error)
}

type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

type Client struct {
	baseURL    string
	uploadsURL string
	httpClient *http.Client
	slugs      SlugSource
	tokens     TokenSource
	logger     *zap.Logger
}

type Option func(*Client)

// WithHTTPClient uses a copy of hc, so later options never change the caller's client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		cp := *hc
		c.httpClient = &cp
	}
}

func WithSlugSource(s SlugSource) Option {
	return func(c *Client) {
		c.slugs = s
	}
}

func WithTokenSource(s TokenSource) Option {
	return func(c *Client) {
		c.tokens = s
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func WithUploadsURL(u string) Option {
	return func(c *Client) {
		c.uploadsURL = strings.TrimRight(u, "/") + "/"
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("url.Parse: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base URL[%s] is not absolute", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookiejar.New: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout, Jar: jar},
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		c.httpClient.Jar = jar
	}

	return c, nil
}

// MediaURL resolves a product media path against the uploads host. Absolute URLs pass through.
func (c *Client) MediaURL(path string) string {
	if path == "" || c.uploadsURL == "" || strings.Contains(path, "://") {
		return path
	}
	return c.uploadsURL + strings.TrimLeft(path, "/")
}

// Close releases idle keep-alive connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("json.Marshal: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.decorate(ctx, req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(method, path, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("json.Decode %s %s: %w", method, path, err)
	}

	return nil
}

// decorate attaches the store slug and bearer token. Lookup failures are logged and the
// request goes out without the header. No selected store is not a failure.
func (c *Client) decorate(ctx context.Context, req *http.Request) {
	if c.slugs != nil {
		slug, err := c.slugs.StoreSlug(ctx)
		switch {
		case errors.Is(err, ErrNoStore):
			c.logger.Debug("no store selected, sending request without store slug")
		case err != nil:
			c.logger.Warn("store slug lookup failed", zap.Error(err))
		case slug != "":
			req.Header.Set(HeaderStoreSlug, slug)
		}
	}

	if c.tokens != nil {
		token, err := c.tokens.AccessToken(ctx)
		switch {
		case err != nil:
			c.logger.Warn("access token lookup failed", zap.Error(err))
		case token != "":
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}
