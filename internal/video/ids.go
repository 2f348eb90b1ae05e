package video

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/matsen/bjjflow/internal/graph"
)

// Provider identifies the host of a reference URL.
type Provider string

// Providers.
const (
	ProviderYouTube Provider = "YouTube"
	ProviderVimeo   Provider = "Vimeo"
	ProviderOther   Provider = ""
)

var digits = regexp.MustCompile(`^\d+$`)

// Hostname returns the URL host without port and leading "www.".
func Hostname(u *url.URL) string {
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// ProviderOf classifies u by host.
func ProviderOf(u *url.URL) Provider {
	switch Hostname(u) {
	case "youtube.com", "m.youtube.com", "youtu.be":
		return ProviderYouTube
	case "vimeo.com", "player.vimeo.com":
		return ProviderVimeo
	default:
		return ProviderOther
	}
}

func pathParts(u *url.URL) []string {
	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// YouTubeID extracts the video id from youtu.be/<id>, youtube.com/watch?v=<id>
// and youtube.com/{shorts,embed,live}/<id> URLs. It returns "" otherwise.
func YouTubeID(u *url.URL) string {
	host := Hostname(u)
	parts := pathParts(u)
	if host == "youtu.be" {
		if len(parts) > 0 {
			return parts[0]
		}
		return ""
	}
	if host != "youtube.com" && host != "m.youtube.com" {
		return ""
	}
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	if len(parts) > 1 {
		switch parts[0] {
		case "shorts", "embed", "live":
			return parts[1]
		}
	}
	return ""
}

// VimeoID returns the last all-digit path segment of a Vimeo URL, or "".
func VimeoID(u *url.URL) string {
	host := Hostname(u)
	if host != "vimeo.com" && host != "player.vimeo.com" {
		return ""
	}
	parts := pathParts(u)
	for i := len(parts) - 1; i >= 0; i-- {
		if digits.MatchString(parts[i]) {
			return parts[i]
		}
	}
	return ""
}

// YouTubeIDFromString parses raw and returns its YouTube video id, or "".
func YouTubeIDFromString(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return YouTubeID(u)
}

// Preview is the display form of a reference.
type Preview struct {
	DisplayTitle string `json:"display_title"`
	Subtitle     string `json:"subtitle"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// PreviewFor builds the preview of a reference.
func PreviewFor(ref graph.Reference) Preview {
	u, err := url.Parse(ref.URL)
	if err != nil || u.Host == "" {
		title := ref.Title
		if title == "" {
			title = ref.URL
		}
		return Preview{DisplayTitle: title, Subtitle: "Video"}
	}

	title := strings.TrimSpace(ref.Title)
	if title == "" {
		title = "Loading title..."
	}
	if id := YouTubeID(u); id != "" {
		return Preview{
			DisplayTitle: title,
			Subtitle:     string(ProviderYouTube),
			ThumbnailURL: "https://img.youtube.com/vi/" + id + "/hqdefault.jpg",
		}
	}
	if id := VimeoID(u); id != "" {
		return Preview{
			DisplayTitle: title,
			Subtitle:     string(ProviderVimeo),
			ThumbnailURL: "https://vumbnail.com/" + id + ".jpg",
		}
	}
	return Preview{DisplayTitle: title, Subtitle: Hostname(u)}
}
