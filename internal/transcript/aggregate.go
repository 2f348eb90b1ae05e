package transcript

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/matsen/bjjflow/internal/graph"
	"github.com/matsen/bjjflow/internal/video"
)

var (
	// ErrNoTranscripts is returned when no reference produced a transcript.
	ErrNoTranscripts = errors.New("unable to fetch transcripts from the current references")

	// ErrNoVideoReferences is returned when no reference is a YouTube video.
	ErrNoVideoReferences = fmt.Errorf("%w: no YouTube references found for transcript extraction", ErrNoTranscripts)
)

// Fetcher fetches the transcript of one YouTube video.
type Fetcher interface {
	FetchTranscript(ctx context.Context, videoID string) (string, error)
}

// Source is a reference that points at a YouTube video.
type Source struct {
	ReferenceID string `json:"reference_id"`
	Title       string `json:"title"`
	VideoID     string `json:"video_id"`
}

// Sources selects the references with a YouTube video id, in order.
func Sources(refs []graph.Reference) []Source {
	var out []Source
	for _, r := range refs {
		id := video.YouTubeIDFromString(r.URL)
		if id == "" {
			continue
		}
		title := r.Title
		if title == "" {
			title = r.URL
		}
		out = append(out, Source{ReferenceID: r.ID, Title: title, VideoID: id})
	}
	return out
}

// Aggregate is the outcome of fetching transcripts for several sources.
type Aggregate struct {
	Text   string   `json:"-"`
	Used   []Source `json:"used"`
	Failed []Source `json:"failed"`
}

// SourceLabel describes where the text came from, for status messages.
func (a Aggregate) SourceLabel() string {
	return fmt.Sprintf("%d reference transcript(s)", len(a.Used))
}

// Fetch retrieves every source's transcript concurrently. Failed or empty
// transcripts are skipped; the successful ones are joined with a space in
// source order. It returns ErrNoTranscripts when nothing succeeded.
func Fetch(ctx context.Context, f Fetcher, sources []Source) (Aggregate, error) {
	if len(sources) == 0 {
		return Aggregate{}, ErrNoVideoReferences
	}

	texts := make([]string, len(sources))
	var wg sync.WaitGroup
	for i, s := range sources {
		wg.Add(1)
		go func(i int, s Source) {
			defer wg.Done()
			text, err := f.FetchTranscript(ctx, s.VideoID)
			if err == nil {
				texts[i] = text
			}
		}(i, s)
	}
	wg.Wait()

	var agg Aggregate
	var parts []string
	for i, s := range sources {
		if texts[i] == "" {
			agg.Failed = append(agg.Failed, s)
			continue
		}
		agg.Used = append(agg.Used, s)
		parts = append(parts, texts[i])
	}
	if len(parts) == 0 {
		return agg, ErrNoTranscripts
	}
	agg.Text = strings.Join(parts, " ")
	return agg, nil
}
