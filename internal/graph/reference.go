package graph

import (
	"errors"
	"net/url"
	"strings"
)

// Reference is a video or article attached to a chart.
// Title may be empty until it is hydrated from the provider.
type Reference struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// UnmarshalJSON decodes a reference field by field; non-string fields are empty.
func (r *Reference) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*r = Reference{ID: f.str("id"), Title: f.str("title"), URL: f.str("url")}
	return nil
}

// Validation errors for references.
var (
	ErrInvalidURL        = errors.New("please enter a valid URL")
	ErrUnsupportedScheme = errors.New("reference URL must start with http:// or https://")
)

// NormalizeURL parses raw as an absolute http or https URL and returns its
// canonical string form.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", ErrInvalidURL
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ErrUnsupportedScheme
	}
	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

// NewReference validates rawURL and returns a reference with a fresh id.
func NewReference(title, rawURL string) (Reference, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return Reference{}, err
	}
	return Reference{
		ID:    NewID("ref"),
		Title: strings.TrimSpace(title),
		URL:   normalized,
	}, nil
}
