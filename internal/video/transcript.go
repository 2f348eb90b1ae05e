package video

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/matsen/bjjflow/internal/metrics"
)

const playerResponseMarker = "ytInitialPlayerResponse = "

// captionTrack is one entry of the watch page caption track list.
type captionTrack struct {
	BaseURL      any `json:"baseUrl"`
	LanguageCode any `json:"languageCode"`
	Kind         any `json:"kind"`
}

type playerResponse struct {
	Captions struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

// timedTextEndpoints lists the direct transcript URLs tried first, in order.
func (c *Client) timedTextEndpoints(videoID string) []string {
	v := url.QueryEscape(videoID)
	base := c.youtubeURL + "/api/timedtext?lang=en"
	return []string{
		base + "&fmt=json3&v=" + v,
		base + "&kind=asr&fmt=json3&v=" + v,
		base + "&v=" + v,
	}
}

// FetchTranscript returns the transcript text of a YouTube video. It tries
// the direct timedtext endpoints, then the caption tracks advertised by the
// watch page, returning the first non-empty parse. When nothing yields text
// the error wraps ErrNotFound.
func (c *Client) FetchTranscript(ctx context.Context, videoID string) (transcript string, err error) {
	defer func() {
		metrics.FetchesTotal.WithLabelValues("transcript", metrics.Outcome(err)).Inc()
	}()

	if videoID == "" {
		return "", fmt.Errorf("%w: empty video id", ErrNotFound)
	}

	if text := c.firstTranscript(ctx, c.timedTextEndpoints(videoID)); text != "" {
		return text, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if text := c.firstTranscript(ctx, c.captionTrackURLs(ctx, videoID)); text != "" {
		return text, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("%w: no transcript for video %s", ErrNotFound, videoID)
}

// firstTranscript fetches each URL in turn and returns the first non-empty
// parsed transcript. Failures move on to the next URL.
func (c *Client) firstTranscript(ctx context.Context, urls []string) string {
	for _, u := range urls {
		if ctx.Err() != nil {
			return ""
		}
		body, err := c.get(ctx, u)
		if err != nil {
			continue
		}
		if text := ParseTimedText(body); text != "" {
			return text
		}
	}
	return ""
}

// captionTrackURLs scrapes the watch page for caption tracks, ranked English
// first and then manual before auto-generated.
func (c *Client) captionTrackURLs(ctx context.Context, videoID string) []string {
	body, err := c.get(ctx, c.youtubeURL+"/watch?v="+url.QueryEscape(videoID))
	if err != nil {
		return nil
	}
	return CaptionTrackURLs(string(body))
}

// CaptionTrackURLs extracts caption track URLs from a watch page, ordered by
// preference.
func CaptionTrackURLs(html string) []string {
	start := strings.Index(html, playerResponseMarker)
	if start < 0 {
		return nil
	}
	jsonStart := start + len(playerResponseMarker)
	end := strings.Index(html[jsonStart:], "};")
	if end < 0 {
		return nil
	}

	var resp playerResponse
	if err := json.Unmarshal([]byte(html[jsonStart:jsonStart+end+1]), &resp); err != nil {
		return nil
	}

	type ranked struct {
		url   string
		score int
	}
	var tracks []ranked
	for _, t := range resp.Captions.Renderer.CaptionTracks {
		u, _ := t.BaseURL.(string)
		if u == "" {
			continue
		}
		lang, _ := t.LanguageCode.(string)
		kind, _ := t.Kind.(string)
		score := 0
		if strings.HasPrefix(lang, "en") {
			score += 2
		}
		if kind != "asr" {
			score++
		}
		tracks = append(tracks, ranked{url: u, score: score})
	}
	sort.SliceStable(tracks, func(i, j int) bool {
		return tracks[i].score > tracks[j].score
	})

	urls := make([]string, len(tracks))
	for i, t := range tracks {
		urls[i] = t.url
	}
	return urls
}
