// Package video talks to the YouTube and Vimeo endpoints used to hydrate
// reference titles and to fetch YouTube transcripts.
package video

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"
)

const (
	// YouTubeBaseURL serves oEmbed, timedtext and watch pages.
	YouTubeBaseURL = "https://www.youtube.com"

	// VimeoBaseURL serves Vimeo oEmbed.
	VimeoBaseURL = "https://vimeo.com"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 15 * time.Second

	// DefaultRateLimit is the default number of requests per second.
	DefaultRateLimit = 5.0

	// DefaultUserAgent is sent unless BJF_USER_AGENT is set.
	DefaultUserAgent = "bjf/1.0"

	// maxBodySize caps response bodies; watch pages are large.
	maxBodySize = 8 << 20
)

// Client is a rate-limited HTTP client for video provider endpoints.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	youtubeURL string
	vimeoURL   string
	userAgent  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithYouTubeBaseURL sets a custom YouTube base URL (for testing).
func WithYouTubeBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.youtubeURL = url
	}
}

// WithVimeoBaseURL sets a custom Vimeo base URL (for testing).
func WithVimeoBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.vimeoURL = url
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient creates a new video provider client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		youtubeURL: YouTubeBaseURL,
		vimeoURL:   VimeoBaseURL,
		userAgent:  DefaultUserAgent,
	}

	if ua := os.Getenv("BJF_USER_AGENT"); ua != "" {
		c.userAgent = ua
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, URL: resp.Request.URL.String()}
	}
	return nil
}

// get performs a rate-limited GET and returns the response body.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}
	return body, nil
}
