package editor

import (
	"context"

	"github.com/matsen/bjjflow/internal/transcript"
)

// ApplyTranscript rebuilds the active chart from transcript text, keeping its
// references, lays it out and returns the status summary. It is a no-op in
// user mode.
func (e *Editor) ApplyTranscript(text, source string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.builder() {
		return ""
	}
	return e.applyTranscript(text, source)
}

func (e *Editor) applyTranscript(text, source string) string {
	generated := transcript.Generate(text, e.position, e.flowType)
	generated.References = append(generated.References, e.store.References()...)
	e.loadIntoActive(generated)
	e.autoLayout()
	return transcript.Summary(e.position, e.flowType, len(generated.Nodes), source)
}

// BuildFromTranscripts fetches the transcripts of every YouTube reference in
// the active chart and rebuilds the chart from them. If no transcript could be
// fetched the chart is left unchanged and the error wraps
// transcript.ErrNoTranscripts. The lock is not held while fetching.
func (e *Editor) BuildFromTranscripts(ctx context.Context, f transcript.Fetcher) (string, error) {
	e.mu.Lock()
	if !e.builder() {
		e.mu.Unlock()
		return "", nil
	}
	sources := transcript.Sources(e.store.References())
	e.mu.Unlock()

	e.logger.Info("fetching transcripts", "references", len(sources))
	agg, err := transcript.Fetch(ctx, f, sources)
	if err != nil {
		return "", err
	}
	for _, s := range agg.Failed {
		e.logger.Warn("transcript unavailable", "reference", s.ReferenceID, "video", s.VideoID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	summary := e.applyTranscript(agg.Text, agg.SourceLabel())
	e.logger.Info(summary)
	return summary, nil
}
