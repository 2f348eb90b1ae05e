package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matsen/bjjflow/internal/editor"
	"github.com/matsen/bjjflow/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingSaver keeps the last saved document.
type recordingSaver struct {
	mu    sync.Mutex
	saves int
	last  []byte
}

func (r *recordingSaver) save(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.last = append([]byte(nil), data...)
	return nil
}

func (r *recordingSaver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

type fakeTitles struct {
	title string
	err   error
}

func (f fakeTitles) FetchTitle(context.Context, string) (string, error) {
	return f.title, f.err
}

type fakeTranscripts map[string]string

func (f fakeTranscripts) FetchTranscript(_ context.Context, id string) (string, error) {
	if text, ok := f[id]; ok {
		return text, nil
	}
	return "", errors.New("no captions")
}

func newTestServer(t *testing.T, opts ...Option) (*httptest.Server, *editor.Editor, *recordingSaver) {
	t.Helper()
	ed := editor.New(editor.WithLogger(quietLogger()))
	c := graph.EmptyChart()
	c.Nodes = append(c.Nodes,
		graph.Node{ID: "a", Label: "Mount", Type: graph.TypePosition, X: 80, Y: 80},
		graph.Node{ID: "b", Label: "Armbar", Type: graph.TypeAttack, X: 400, Y: 80},
	)
	ed.LoadIntoActive(c)

	saver := &recordingSaver{}
	opts = append([]Option{WithLogger(quietLogger()), WithSaver(saver.save)}, opts...)
	srv := New(ed, "", opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, ed, saver
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestGetChart(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/chart")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	view := decode[editor.View](t, resp)
	assert.Len(t, view.Chart.Nodes, 2)
	assert.Equal(t, "Mount", string(view.Position))
}

func TestGetWorkspace(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/workspace")
	require.NoError(t, err)
	defer resp.Body.Close()

	var doc map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Contains(t, doc, "charts")
	assert.JSONEq(t, `"Mount"`, string(doc["currentPosition"]))
}

func TestPostCommand(t *testing.T) {
	ts, _, saver := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/commands", `{"op":"connect","from":"a","to":"b"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[commandResponse](t, resp)
	assert.NotEmpty(t, out.Result.ID)
	require.Len(t, out.View.Chart.Edges, 1)
	assert.Equal(t, "a", out.View.Chart.Edges[0].From)
	assert.Equal(t, 1, saver.count())
}

// blockingSaver holds its first save until released, then records like
// recordingSaver.
type blockingSaver struct {
	recordingSaver
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSaver) save(data []byte) error {
	first := false
	b.once.Do(func() { first = true })
	if first {
		close(b.entered)
		<-b.release
	}
	return b.recordingSaver.save(data)
}

func hasNode(ed *editor.Editor, label string) bool {
	for _, n := range ed.View().Chart.Nodes {
		if n.Label == label {
			return true
		}
	}
	return false
}

func TestPostCommand_ConcurrentSavesKeepLatest(t *testing.T) {
	saver := &blockingSaver{entered: make(chan struct{}), release: make(chan struct{})}
	ts, ed, _ := newTestServer(t, WithSaver(saver.save))

	var wg sync.WaitGroup
	post := func(label string) {
		defer wg.Done()
		resp, err := http.Post(ts.URL+"/api/commands", "application/json",
			strings.NewReader(`{"op":"add_node","label":"`+label+`"}`))
		if err == nil {
			resp.Body.Close()
		}
	}

	wg.Add(1)
	go post("First")
	select {
	case <-saver.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first save never started")
	}

	wg.Add(1)
	go post("Second")
	require.Eventually(t, func() bool { return hasNode(ed, "Second") }, 5*time.Second, 10*time.Millisecond)
	close(saver.release)
	wg.Wait()

	saver.mu.Lock()
	last := string(saver.last)
	saver.mu.Unlock()
	assert.Contains(t, last, `"First"`)
	assert.Contains(t, last, `"Second"`)
}

func TestPostCommand_Errors(t *testing.T) {
	ts, _, saver := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"op":`},
		{"unknown op", `{"op":"fly"}`},
		{"validation error", `{"op":"connect_selected"}`},
		{"bad url", `{"op":"add_reference","url":"ftp://example.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/commands", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decode[map[string]string](t, resp)
			assert.NotEmpty(t, body["error"])
		})
	}
	assert.Zero(t, saver.count())
}

func TestPostLayout(t *testing.T) {
	ts, ed, _ := newTestServer(t)
	_, err := ed.Apply(editor.Connect{From: "a", To: "b"})
	require.NoError(t, err)

	resp := postJSON(t, ts.URL+"/api/layout", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	nodes := ed.View().Chart.Nodes
	require.Len(t, nodes, 2)
	assert.Less(t, nodes[0].X, nodes[1].X)
}

func TestImport(t *testing.T) {
	ts, ed, saver := newTestServer(t)

	chartDoc := `{"position":"Guard","chartType":"Escapes","nodes":[{"id":"x","label":"Hip Escape","type":"reaction","x":10,"y":10}],"edges":[]}`
	resp := postJSON(t, ts.URL+"/api/workspace", chartDoc)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[importResponse](t, resp)
	assert.Equal(t, "chart", out.Kind)
	require.Len(t, ed.View().Chart.Nodes, 1)
	assert.Equal(t, 1, saver.count())

	resp = postJSON(t, ts.URL+"/api/workspace", `{"nodes": 3}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Len(t, ed.View().Chart.Nodes, 1)
}

func TestExport(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/chart/export")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, `attachment; filename="mount-attacks.json"`, resp.Header.Get("Content-Disposition"))
	doc := decode[map[string]any](t, resp)
	assert.Equal(t, "Attacks", doc["chartType"])
}

func TestPath(t *testing.T) {
	ts, ed, _ := newTestServer(t)
	_, err := ed.Apply(editor.Connect{From: "a", To: "b"})
	require.NoError(t, err)

	resp, err := http.Get(ts.URL + "/api/chart/path")
	require.NoError(t, err)
	defer resp.Body.Close()

	out := decode[map[string][]string](t, resp)
	assert.Equal(t, []string{"Mount", "Armbar"}, out["path"])
}

func addReference(t *testing.T, ed *editor.Editor, url string) string {
	t.Helper()
	res, err := ed.Apply(editor.AddReference{URL: url})
	require.NoError(t, err)
	return res.ID
}

func TestHydrate(t *testing.T) {
	ts, ed, _ := newTestServer(t, WithTitleFetcher(fakeTitles{title: "Mount Armbar Details"}))
	id := addReference(t, ed, "https://www.youtube.com/watch?v=abc123")

	resp := postJSON(t, ts.URL+"/api/references/"+id+"/hydrate", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[hydrateResponse](t, resp)
	assert.Equal(t, "Mount Armbar Details", out.Title)
	assert.Empty(t, out.Warning)
}

func TestHydrate_FallbackWarning(t *testing.T) {
	ts, ed, _ := newTestServer(t, WithTitleFetcher(fakeTitles{err: errors.New("boom")}))
	id := addReference(t, ed, "https://www.youtube.com/watch?v=abc123")

	resp := postJSON(t, ts.URL+"/api/references/"+id+"/hydrate", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[hydrateResponse](t, resp)
	assert.Equal(t, "youtube.com", out.Title)
	assert.Contains(t, out.Warning, "boom")
}

func TestHydrate_NotConfigured(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/references/r1/hydrate", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAddReference_HydratesInBackground(t *testing.T) {
	ts, ed, _ := newTestServer(t, WithTitleFetcher(fakeTitles{title: "Back Take"}))

	resp := postJSON(t, ts.URL+"/api/commands", `{"op":"add_reference","url":"https://youtu.be/xyz"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[commandResponse](t, resp)
	require.True(t, out.Result.NeedsTitle)

	assert.Eventually(t, func() bool {
		refs := ed.View().Chart.References
		return len(refs) == 1 && refs[0].Title == "Back Take"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestBuildTranscripts(t *testing.T) {
	ts, ed, saver := newTestServer(t, WithTranscriptFetcher(fakeTranscripts{
		"vid1": "from mount we go for the armbar and then the americana",
	}))
	addReference(t, ed, "https://www.youtube.com/watch?v=vid1")
	before := saver.count()

	resp := postJSON(t, ts.URL+"/api/transcripts/build", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	nodes := ed.View().Chart.Nodes
	assert.Greater(t, len(nodes), 1)
	assert.Len(t, ed.View().Chart.References, 1)
	assert.Greater(t, saver.count(), before)
}

func TestBuildTranscripts_NoVideos(t *testing.T) {
	ts, ed, _ := newTestServer(t, WithTranscriptFetcher(fakeTranscripts{}))
	addReference(t, ed, "https://example.com/article")

	resp := postJSON(t, ts.URL+"/api/transcripts/build", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Len(t, ed.View().Chart.Nodes, 2)
}

func TestBuildTranscripts_AllFail(t *testing.T) {
	ts, ed, _ := newTestServer(t, WithTranscriptFetcher(fakeTranscripts{}))
	addReference(t, ed, "https://www.youtube.com/watch?v=missing")

	resp := postJSON(t, ts.URL+"/api/transcripts/build", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Len(t, ed.View().Chart.Nodes, 2)
}

func TestHealthzAndMetrics(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Generate a request that the metrics middleware records
	resp, err = http.Get(ts.URL + "/api/chart")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `bjf_http_requests_total{method="GET",path="GET /api/chart",status="200"}`)
	assert.Contains(t, string(body), `bjf_chart_nodes{chart="Mount::Attacks"}`)
}

func TestRecoveryMiddleware(t *testing.T) {
	s := &Server{logger: quietLogger()}
	h := s.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/chart", "application/json", bytes.NewReader(nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
