package video

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/matsen/bjjflow/internal/metrics"
)

// oEmbedResponse is the subset of an oEmbed document we read.
type oEmbedResponse struct {
	Title any `json:"title"`
}

// OEmbedEndpoint returns the oEmbed lookup URL for u, or "" when u is not a
// YouTube or Vimeo URL.
func (c *Client) OEmbedEndpoint(u *url.URL) string {
	target := url.QueryEscape(u.String())
	switch ProviderOf(u) {
	case ProviderYouTube:
		return c.youtubeURL + "/oembed?url=" + target + "&format=json"
	case ProviderVimeo:
		return c.vimeoURL + "/api/oembed.json?url=" + target
	default:
		return ""
	}
}

// FetchTitle looks up the title of a YouTube or Vimeo video through oEmbed.
// Other hosts yield ErrUnsupportedHost. A missing or blank title is
// ErrInvalidResponse.
func (c *Client) FetchTitle(ctx context.Context, rawURL string) (title string, err error) {
	defer func() {
		metrics.FetchesTotal.WithLabelValues("title", metrics.Outcome(err)).Inc()
	}()

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}
	endpoint := c.OEmbedEndpoint(u)
	if endpoint == "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedHost, Hostname(u))
	}

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return "", err
	}

	var resp oEmbedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	s, _ := resp.Title.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: missing title", ErrInvalidResponse)
	}
	return s, nil
}
