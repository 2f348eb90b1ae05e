package editor

import (
	"context"
	"net/url"
	"strings"

	"github.com/matsen/bjjflow/internal/video"
)

// TitleFetcher looks up the title of a video URL.
type TitleFetcher interface {
	FetchTitle(ctx context.Context, rawURL string) (string, error)
}

// HydrateTitle fills in the title of an untitled reference in the active
// chart. Non-video hosts get their hostname. Video titles come from f; on
// failure the hostname is used unless a title was set in the meantime. A
// lookup already in flight for id makes this a no-op. The lock is not held
// during the lookup.
func (e *Editor) HydrateTitle(ctx context.Context, id string, f TitleFetcher) (string, error) {
	e.mu.Lock()
	if e.inFlight[id] {
		e.mu.Unlock()
		return "", nil
	}
	ref := e.store.Reference(id)
	if ref == nil || strings.TrimSpace(ref.Title) != "" {
		e.mu.Unlock()
		return "", nil
	}
	u, err := url.Parse(ref.URL)
	if err != nil || u.Host == "" {
		e.mu.Unlock()
		return "", nil
	}
	host := video.Hostname(u)
	if video.ProviderOf(u) == video.ProviderOther {
		ref.Title = host
		e.persist()
		e.mu.Unlock()
		return host, nil
	}
	e.inFlight[id] = true
	rawURL := ref.URL
	e.mu.Unlock()

	title, fetchErr := f.FetchTitle(ctx, rawURL)

	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, id)

	cur := e.store.Reference(id)
	if fetchErr == nil {
		if cur == nil {
			return "", nil
		}
		cur.Title = truncateRunes(title, MaxTitleLen)
		e.persist()
		return cur.Title, nil
	}

	e.logger.Debug("title lookup failed, using hostname", "reference", id, "error", fetchErr)
	if cur == nil || strings.TrimSpace(cur.Title) != "" {
		return "", fetchErr
	}
	cur.Title = host
	e.persist()
	return host, fetchErr
}

// PendingTitles returns the ids of untitled references in the active chart.
func (e *Editor) PendingTitles() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var ids []string
	for _, r := range e.store.References() {
		if strings.TrimSpace(r.Title) == "" {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
