package editor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/matsen/bjjflow/internal/chart"
	"github.com/matsen/bjjflow/internal/graph"
	"github.com/matsen/bjjflow/internal/transcript"
	"github.com/matsen/bjjflow/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newEditor returns an editor whose active chart holds the given nodes.
func newEditor(t *testing.T, nodes ...graph.Node) *Editor {
	t.Helper()
	e := New(WithLogger(quietLogger()))
	c := graph.EmptyChart()
	c.Nodes = append(c.Nodes, nodes...)
	e.LoadIntoActive(c)
	return e
}

func mustApply(t *testing.T, e *Editor, cmd Command) Result {
	t.Helper()
	res, err := e.Apply(cmd)
	require.NoError(t, err)
	return res
}

func node(id string, x, y float64) graph.Node {
	return graph.Node{ID: id, Label: id, Type: graph.TypePosition, X: x, Y: y}
}

func TestSelection_ToggleAndExclusivity(t *testing.T) {
	e := newEditor(t, node("a", 80, 80), node("b", 300, 80))

	mustApply(t, e, SelectNode{ID: "a"})
	mustApply(t, e, SelectNode{ID: "b", Additive: true})
	assert.Equal(t, []string{"a", "b"}, e.View().SelectedNodes)

	mustApply(t, e, SelectNode{ID: "a", Additive: true})
	assert.Equal(t, []string{"b"}, e.View().SelectedNodes)

	mustApply(t, e, SelectEdge{ID: "e1"})
	v := e.View()
	assert.Empty(t, v.SelectedNodes)
	assert.Equal(t, "e1", v.SelectedEdge)

	mustApply(t, e, SelectNode{ID: "a"})
	v = e.View()
	assert.Equal(t, []string{"a"}, v.SelectedNodes)
	assert.Empty(t, v.SelectedEdge)

	mustApply(t, e, ClearSelection{})
	assert.Empty(t, e.View().SelectedNodes)
}

func TestConnectSelected(t *testing.T) {
	e := newEditor(t, node("a", 80, 80), node("b", 300, 80))

	mustApply(t, e, SelectNode{ID: "a"})
	_, err := e.Apply(ConnectSelected{})
	assert.ErrorIs(t, err, ErrNeedTwoNodes)

	mustApply(t, e, SelectNode{ID: "b", Additive: true})
	res := mustApply(t, e, ConnectSelected{})
	require.NotEmpty(t, res.ID)

	edges := e.View().Chart.Edges
	require.Len(t, edges, 1)
	assert.Equal(t, "a", edges[0].From)
	assert.Equal(t, "b", edges[0].To)
}

func TestDeleteSelected_RemovesTouchingEdges(t *testing.T) {
	e := newEditor(t, node("a", 80, 80), node("b", 300, 80), node("c", 520, 80))
	mustApply(t, e, Connect{From: "a", To: "b"})
	mustApply(t, e, Connect{From: "b", To: "c"})
	mustApply(t, e, Connect{From: "a", To: "c"})

	mustApply(t, e, SelectNode{ID: "b"})
	mustApply(t, e, DeleteSelected{})

	c := e.View().Chart
	assert.Len(t, c.Nodes, 2)
	require.Len(t, c.Edges, 1)
	assert.Equal(t, "a", c.Edges[0].From)
	assert.Equal(t, "c", c.Edges[0].To)
	assert.Empty(t, e.View().SelectedNodes)
}

func TestEdgeCommands_DefaultToSelectedEdge(t *testing.T) {
	e := newEditor(t, node("a", 80, 80), node("b", 300, 80))
	id := mustApply(t, e, Connect{From: "a", To: "b"}).ID

	mustApply(t, e, SelectEdge{ID: id})
	mustApply(t, e, ToggleCurve{})
	mustApply(t, e, SetAnchor{End: graph.EndFrom, Index: 4})
	mustApply(t, e, SetAnchor{End: graph.EndTo, Index: 9})

	edge := e.View().Chart.Edges[0]
	assert.True(t, edge.Curved)
	assert.Equal(t, 4, edge.FromAnchor)
	assert.Equal(t, graph.DefaultToAnchor, edge.ToAnchor)

	mustApply(t, e, DeleteEdge{})
	v := e.View()
	assert.Empty(t, v.Chart.Edges)
	assert.Empty(t, v.SelectedEdge)
}

func TestAddNode_Near(t *testing.T) {
	e := newEditor(t, graph.Node{ID: "a", Label: "A", Type: graph.TypeReaction, X: 100, Y: 140})

	res := mustApply(t, e, AddNode{Near: true})
	n := findNode(t, e, res.ID)
	assert.Equal(t, graph.TypeAttack, n.Type, "no selection defaults to attack")
	assert.Equal(t, 80.0, n.X)
	assert.Equal(t, []string{res.ID}, e.View().SelectedNodes)

	mustApply(t, e, SelectNode{ID: "a"})
	res = mustApply(t, e, AddNode{Near: true})
	n = findNode(t, e, res.ID)
	assert.Equal(t, graph.TypeReaction, n.Type)
	assert.Equal(t, 100.0+210+30, n.X)
	assert.Equal(t, 140.0, n.Y)
	assert.Equal(t, "New Node", n.Label)
}

func findNode(t *testing.T, e *Editor, id string) graph.Node {
	t.Helper()
	for _, n := range e.View().Chart.Nodes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("node %s not found", id)
	return graph.Node{}
}

func TestDrag_SingleNodeWithZoom(t *testing.T) {
	e := newEditor(t, node("a", 100, 100))
	mustApply(t, e, SetZoom{Zoom: 2})

	mustApply(t, e, BeginDrag{NodeID: "a", Pointer: Pointer{X: 200, Y: 200}})
	mustApply(t, e, MoveDrag{Pointer: Pointer{X: 240, Y: 200, ScrollX: 20, ScrollY: 40}})

	n := findNode(t, e, "a")
	assert.Equal(t, 130.0, n.X)
	assert.Equal(t, 120.0, n.Y)
	assert.True(t, e.View().Dragging)

	mustApply(t, e, EndDrag{})
	assert.False(t, e.View().Dragging)

	// Moves after the drag ended do nothing.
	mustApply(t, e, MoveDrag{Pointer: Pointer{X: 0, Y: 0}})
	assert.Equal(t, 130.0, findNode(t, e, "a").X)
}

func TestDrag_GroupClampAndGrow(t *testing.T) {
	e := newEditor(t, node("a", 100, 100), node("b", 400, 100), node("c", 700, 100))
	mustApply(t, e, SelectNode{ID: "a"})
	mustApply(t, e, SelectNode{ID: "b", Additive: true})

	mustApply(t, e, BeginDrag{NodeID: "a", Pointer: Pointer{X: 0, Y: 0}})
	mustApply(t, e, MoveDrag{Pointer: Pointer{X: 1000, Y: -500}})

	a, b, c := findNode(t, e, "a"), findNode(t, e, "b"), findNode(t, e, "c")
	assert.Equal(t, 1100.0, a.X)
	assert.Equal(t, 1400.0, b.X)
	assert.Equal(t, 6.0, a.Y, "clamped to the top inset")
	assert.Equal(t, 6.0, b.Y)
	assert.Equal(t, 700.0, c.X, "unselected node stays put")
	assert.GreaterOrEqual(t, e.View().Canvas.Width, 1400.0+210+140)
}

func TestDrag_UnselectedNodeDragsAlone(t *testing.T) {
	e := newEditor(t, node("a", 100, 100), node("b", 400, 100), node("c", 700, 100))
	mustApply(t, e, SelectNode{ID: "a"})
	mustApply(t, e, SelectNode{ID: "b", Additive: true})

	mustApply(t, e, BeginDrag{NodeID: "c", Pointer: Pointer{X: 0, Y: 0}})
	mustApply(t, e, MoveDrag{Pointer: Pointer{X: 10, Y: 10}})

	assert.Equal(t, 100.0, findNode(t, e, "a").X)
	assert.Equal(t, 710.0, findNode(t, e, "c").X)
}

func TestUserMode_IgnoresBuilderCommands(t *testing.T) {
	e := newEditor(t, node("a", 100, 100), node("b", 400, 100))
	mustApply(t, e, SelectNode{ID: "a"})

	mustApply(t, e, SetMode{Mode: workspace.ModeUser})
	assert.Empty(t, e.View().SelectedNodes, "user mode clears selection")

	mustApply(t, e, AddNode{})
	mustApply(t, e, Connect{From: "a", To: "b"})
	mustApply(t, e, BeginDrag{NodeID: "a"})
	mustApply(t, e, MoveDrag{Pointer: Pointer{X: 50, Y: 50}})
	mustApply(t, e, SelectNode{ID: "a"})

	v := e.View()
	assert.Len(t, v.Chart.Nodes, 2)
	assert.Empty(t, v.Chart.Edges)
	assert.Equal(t, 100.0, v.Chart.Nodes[0].X)
	assert.Empty(t, v.SelectedNodes)

	// Non-builder commands still work.
	mustApply(t, e, SetZoom{Zoom: 9})
	assert.Equal(t, 2.5, e.View().Zoom)
	mustApply(t, e, SetZoom{Zoom: -0.3, Relative: true})
	assert.InDelta(t, 2.2, e.View().Zoom, 1e-9)
}

func TestSwitchChart_PersistsAndLoadsTemplate(t *testing.T) {
	e := New(WithLogger(quietLogger()))
	assert.Equal(t, TemplateSource, e.Boot())
	require.Len(t, e.View().Chart.Nodes, 6)

	mustApply(t, e, UpdateNode{ID: "n1", NodePatch: graph.NodePatch{Label: ptr("Edited")}})
	mustApply(t, e, SwitchChart{Position: chart.Mount, FlowType: chart.Escapes})
	assert.Equal(t, "Bottom Mount Survival", e.View().Chart.Nodes[0].Label)

	mustApply(t, e, SwitchChart{Position: chart.Standing, FlowType: chart.Attacks})
	require.Len(t, e.View().Chart.Nodes, 1)
	assert.Equal(t, "Standing Attacks", e.View().Chart.Nodes[0].Label)

	mustApply(t, e, SwitchChart{Position: chart.Mount, FlowType: chart.Attacks})
	assert.Equal(t, "Edited", e.View().Chart.Nodes[0].Label)

	_, err := e.Apply(SwitchChart{Position: "Turtle", FlowType: chart.Attacks})
	assert.ErrorIs(t, err, chart.ErrUnknownPosition)
	assert.Equal(t, chart.Mount, e.View().Position)
}

func ptr[T any](v T) *T { return &v }

func TestView_IsACopy(t *testing.T) {
	e := newEditor(t, node("a", 100, 100))
	v := e.View()
	v.Chart.Nodes[0].Label = "mutated"
	assert.Equal(t, "a", e.View().Chart.Nodes[0].Label)
}

func TestSerializeAndLoadWorkspace(t *testing.T) {
	e := New(WithLogger(quietLogger()))
	e.Boot()
	mustApply(t, e, SetTheme{Theme: workspace.ThemeLight})
	mustApply(t, e, SwitchChart{Position: chart.HalfGuard, FlowType: chart.Escapes})

	data, err := e.SerializeWorkspace()
	require.NoError(t, err)

	other := New(WithLogger(quietLogger()))
	kind, err := other.Import(data)
	require.NoError(t, err)
	assert.Equal(t, workspace.KindWorkspace, kind)

	v := other.View()
	assert.Equal(t, chart.HalfGuard, v.Position)
	assert.Equal(t, chart.Escapes, v.FlowType)
	assert.Equal(t, workspace.ThemeLight, v.Theme)
	assert.Equal(t, e.View().Chart, v.Chart)
	assert.Equal(t, e.Charts(), other.Charts())
}

func TestSerializeChart_ImportRoundTrip(t *testing.T) {
	e := newEditor(t)
	a := mustApply(t, e, AddNode{NodeSpec: graph.NodeSpec{Label: "Closed Guard", X: ptr(120.5), Y: ptr(80.0)}}).ID
	b := mustApply(t, e, AddNode{NodeSpec: graph.NodeSpec{Label: "Triangle", Type: graph.TypeFinish, Notes: "Angle off first", X: ptr(420.0), Y: ptr(260.25)}}).ID
	c := mustApply(t, e, AddNode{NodeSpec: graph.NodeSpec{Label: "Posture Up", Type: graph.TypeReaction, X: ptr(300.0), Y: ptr(40.0)}}).ID

	curved := mustApply(t, e, Connect{From: a, To: b}).ID
	mustApply(t, e, ToggleCurve{ID: curved})
	mustApply(t, e, SetAnchor{ID: curved, End: graph.EndFrom, Index: 0})
	mustApply(t, e, SetAnchor{ID: curved, End: graph.EndTo, Index: 5})
	mustApply(t, e, Connect{From: b, To: c})
	mustApply(t, e, AddReference{Title: "Triangle details", URL: "https://www.youtube.com/watch?v=abc123"})

	want := e.View().Chart
	require.Len(t, want.Edges, 2)
	require.True(t, want.Edges[0].Curved)
	require.Len(t, want.References, 1)

	data, err := e.SerializeChart()
	require.NoError(t, err)

	other := New(WithLogger(quietLogger()))
	kind, err := other.Import(data)
	require.NoError(t, err)
	assert.Equal(t, workspace.KindChart, kind)
	assert.Equal(t, want, other.View().Chart)

	// Importing over the original reproduces it too.
	mustApply(t, e, ClearBoard{})
	_, err = e.Import(data)
	require.NoError(t, err)
	assert.Equal(t, want, e.View().Chart)
}

func TestLoadWorkspace_InvalidSelectionKeepsPrior(t *testing.T) {
	e := New(WithLogger(quietLogger()))
	mustApply(t, e, SwitchChart{Position: chart.BackControl, FlowType: chart.Escapes})

	e.LoadWorkspace(workspace.Snapshot{
		CurrentPosition:  "Turtle",
		CurrentChartType: "Sweeps",
		Mode:             "admin",
		Theme:            "sepia",
	})
	v := e.View()
	assert.Equal(t, chart.BackControl, v.Position)
	assert.Equal(t, chart.Escapes, v.FlowType)
	assert.Equal(t, workspace.ModeBuilder, v.Mode)
	assert.Equal(t, workspace.ThemeDark, v.Theme)
	assert.Empty(t, v.Chart.Nodes, "loaded workspace had no chart for the key")
}

func TestImport_ErrorsLeaveStateUnchanged(t *testing.T) {
	e := newEditor(t, node("a", 100, 100))
	before := e.View()

	_, err := e.Import([]byte(`{"nodes": [`))
	assert.ErrorIs(t, err, workspace.ErrInvalidJSON)
	_, err = e.Import([]byte(`{"foo": 1}`))
	assert.ErrorIs(t, err, workspace.ErrUnsupportedFormat)

	assert.Equal(t, before, e.View())
}

func TestImport_ChartReplacesActive(t *testing.T) {
	e := newEditor(t, node("a", 100, 100))
	mustApply(t, e, SelectNode{ID: "a"})

	kind, err := e.Import([]byte(`{"position":"Standing","chartType":"Attacks","nodes":[{"id":"z","label":"Z","x":5,"y":5}],"edges":[]}`))
	require.NoError(t, err)
	assert.Equal(t, workspace.KindChart, kind)

	v := e.View()
	assert.Equal(t, chart.Mount, v.Position, "chart import targets the active chart")
	require.Len(t, v.Chart.Nodes, 1)
	assert.Equal(t, "z", v.Chart.Nodes[0].ID)
	assert.Empty(t, v.SelectedNodes)
}

func TestBoot_Precedence(t *testing.T) {
	ws := []byte(`{"currentPosition":"Standing","currentChartType":"Escapes","charts":{"Standing::Escapes":{"nodes":[{"id":"s","label":"Sprawl"}],"edges":[]}}}`)
	failing := Source{Name: "bundled", Load: func() ([]byte, error) { return nil, errors.New("missing") }}
	broken := Source{Name: "broken", Load: func() ([]byte, error) { return []byte("{"), nil }}
	local := Source{Name: "local", Load: func() ([]byte, error) { return ws, nil }}

	e := New(WithLogger(quietLogger()))
	assert.Equal(t, "local", e.Boot(failing, broken, local))
	v := e.View()
	assert.Equal(t, chart.Standing, v.Position)
	assert.Equal(t, "Sprawl", v.Chart.Nodes[0].Label)
}

type fakeTitles struct {
	title string
	err   error
	block chan struct{}
	calls int
	mu    sync.Mutex
}

func (f *fakeTitles) FetchTitle(ctx context.Context, _ string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.title, f.err
}

func addRef(t *testing.T, e *Editor, url string) string {
	t.Helper()
	res := mustApply(t, e, AddReference{URL: url})
	require.True(t, res.NeedsTitle)
	return res.ID
}

func refTitle(e *Editor, id string) string {
	for _, r := range e.View().Chart.References {
		if r.ID == id {
			return r.Title
		}
	}
	return ""
}

func TestAddReference_Validation(t *testing.T) {
	e := newEditor(t)
	_, err := e.Apply(AddReference{URL: "not a url"})
	assert.ErrorIs(t, err, graph.ErrInvalidURL)
	_, err = e.Apply(AddReference{URL: "ftp://example.com/x"})
	assert.ErrorIs(t, err, graph.ErrUnsupportedScheme)
	assert.Empty(t, e.View().Chart.References)

	res := mustApply(t, e, AddReference{Title: "  Drill  ", URL: "https://example.com"})
	assert.False(t, res.NeedsTitle)
	assert.Equal(t, "Drill", refTitle(e, res.ID))

	mustApply(t, e, RemoveReference{ID: res.ID})
	assert.Empty(t, e.View().Chart.References)
}

func TestHydrateTitle(t *testing.T) {
	ctx := context.Background()

	t.Run("non-video host uses hostname", func(t *testing.T) {
		e := newEditor(t)
		id := addRef(t, e, "https://www.example.com/article")
		f := &fakeTitles{}
		title, err := e.HydrateTitle(ctx, id, f)
		require.NoError(t, err)
		assert.Equal(t, "example.com", title)
		assert.Equal(t, 0, f.calls)
	})

	t.Run("video title truncated", func(t *testing.T) {
		e := newEditor(t)
		id := addRef(t, e, "https://youtu.be/abc")
		long := make([]rune, 150)
		for i := range long {
			long[i] = 'x'
		}
		_, err := e.HydrateTitle(ctx, id, &fakeTitles{title: string(long)})
		require.NoError(t, err)
		assert.Len(t, refTitle(e, id), MaxTitleLen)
	})

	t.Run("failure falls back to hostname", func(t *testing.T) {
		e := newEditor(t)
		id := addRef(t, e, "https://www.youtube.com/watch?v=abc")
		title, err := e.HydrateTitle(ctx, id, &fakeTitles{err: errors.New("offline")})
		assert.Error(t, err)
		assert.Equal(t, "youtube.com", title)
		assert.Equal(t, "youtube.com", refTitle(e, id))
	})

	t.Run("removed during lookup", func(t *testing.T) {
		e := newEditor(t)
		id := addRef(t, e, "https://vimeo.com/42")
		f := &fakeTitles{title: "Late", block: make(chan struct{})}

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = e.HydrateTitle(ctx, id, f)
		}()
		// A second lookup for the same id is ignored while the first is in flight.
		require.Eventually(t, func() bool {
			f.mu.Lock()
			defer f.mu.Unlock()
			return f.calls == 1
		}, timeout, tick)
		title, err := e.HydrateTitle(ctx, id, f)
		assert.NoError(t, err)
		assert.Empty(t, title)

		mustApply(t, e, RemoveReference{ID: id})
		close(f.block)
		<-done
		assert.Empty(t, e.View().Chart.References)
	})
}

type fakeTranscripts map[string]string

func (f fakeTranscripts) FetchTranscript(_ context.Context, id string) (string, error) {
	if t, ok := f[id]; ok {
		return t, nil
	}
	return "", errors.New("unavailable")
}

func TestBuildFromTranscripts(t *testing.T) {
	e := New(WithLogger(quietLogger()))
	e.Boot()
	mustApply(t, e, AddReference{Title: "Armbars", URL: "https://youtu.be/a"})
	mustApply(t, e, AddReference{Title: "Broken", URL: "https://youtu.be/b"})
	mustApply(t, e, AddReference{Title: "Blog", URL: "https://example.com"})

	summary, err := e.BuildFromTranscripts(context.Background(), fakeTranscripts{"a": "finish the armbar from high mount"})
	require.NoError(t, err)
	assert.Equal(t, "Built Mount Attacks with 3 nodes from 1 reference transcript(s).", summary)

	v := e.View()
	require.Len(t, v.Chart.Nodes, 3)
	assert.Equal(t, "Mount Control", v.Chart.Nodes[0].Label)
	assert.Equal(t, "Armbar", v.Chart.Nodes[1].Label)
	assert.Equal(t, "High Mount Climb", v.Chart.Nodes[2].Label)
	assert.Len(t, v.Chart.References, 3, "references survive the rebuild")
	assert.Equal(t, 40.0, v.Chart.Nodes[0].X)
	assert.Equal(t, 280.0, v.Chart.Nodes[1].X)
}

func TestBuildFromTranscripts_AllFailLeavesChart(t *testing.T) {
	e := New(WithLogger(quietLogger()))
	e.Boot()
	mustApply(t, e, AddReference{Title: "Broken", URL: "https://youtu.be/b"})
	before := e.View().Chart

	_, err := e.BuildFromTranscripts(context.Background(), fakeTranscripts{})
	assert.ErrorIs(t, err, transcript.ErrNoTranscripts)
	assert.Equal(t, before, e.View().Chart)
}

func TestDecodeCommand(t *testing.T) {
	cmd, err := DecodeCommand([]byte(`{"op":"add_node","label":"Sprawl","type":"attack","x":10,"y":20}`))
	require.NoError(t, err)
	add, ok := cmd.(*AddNode)
	require.True(t, ok)
	assert.Equal(t, "Sprawl", add.Label)
	require.NotNil(t, add.X)
	assert.Equal(t, 10.0, *add.X)

	cmd, err = DecodeCommand([]byte(`{"op":"move_drag","pointer":{"x":1,"y":2,"scrollX":3,"scrollY":4}}`))
	require.NoError(t, err)
	assert.Equal(t, &MoveDrag{Pointer: Pointer{X: 1, Y: 2, ScrollX: 3, ScrollY: 4}}, cmd)

	_, err = DecodeCommand([]byte(`{"op":"explode"}`))
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = DecodeCommand([]byte(`nope`))
	assert.Error(t, err)
}

func TestDecodeCommand_CoversEveryOp(t *testing.T) {
	for op, ctor := range commandTypes {
		assert.Equal(t, op, ctor().Op())
	}
}
