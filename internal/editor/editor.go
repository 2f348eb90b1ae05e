// Package editor holds the interactive state of a workspace: the active chart,
// the chart registry, selection, drag, zoom, mode and theme. Every mutation
// arrives through Apply or one of the load/serialize methods, and all of them
// are serialized by a single mutex.
package editor

import (
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/matsen/bjjflow/internal/chart"
	"github.com/matsen/bjjflow/internal/geometry"
	"github.com/matsen/bjjflow/internal/graph"
	"github.com/matsen/bjjflow/internal/layout"
	"github.com/matsen/bjjflow/internal/workspace"
)

// MaxTitleLen bounds a hydrated reference title, in runes.
const MaxTitleLen = 120

// Editor is the workspace state machine.
type Editor struct {
	mu sync.Mutex

	position chart.Position
	flowType chart.FlowType
	mode     workspace.Mode
	theme    workspace.Theme
	zoom     float64

	registry *chart.Registry
	store    *graph.Store
	canvas   geometry.Canvas

	selected     []string
	selectedEdge string
	drag         *dragState

	inFlight  map[string]bool
	templates chart.TemplateFunc
	logger    *slog.Logger
}

// Option configures an Editor.
type Option func(*Editor)

// WithTemplates sets the provider used to populate empty charts.
func WithTemplates(fn chart.TemplateFunc) Option {
	return func(e *Editor) {
		if fn != nil {
			e.templates = fn
		}
	}
}

// WithViewport sets the visible board size used as the minimum canvas size.
func WithViewport(v geometry.Viewport) Option {
	return func(e *Editor) {
		e.canvas.Viewport = v
	}
}

// WithLogger sets the logger for status messages.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an editor on an empty Mount/Attacks chart in builder mode with
// the dark theme. Call Boot or LoadTemplate to populate it.
func New(opts ...Option) *Editor {
	e := &Editor{
		position:  chart.Mount,
		flowType:  chart.Attacks,
		mode:      workspace.ModeBuilder,
		theme:     workspace.ThemeDark,
		zoom:      1,
		registry:  chart.NewRegistry(),
		store:     graph.NewStore(graph.EmptyChart()),
		inFlight:  make(map[string]bool),
		templates: chart.TemplateFor,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.canvas.Ensure(nil, 0, 0)
	return e
}

// View is a read-only copy of the editor state.
type View struct {
	Position      chart.Position  `json:"position"`
	FlowType      chart.FlowType  `json:"chart_type"`
	Mode          workspace.Mode  `json:"mode"`
	Theme         workspace.Theme `json:"theme"`
	Zoom          float64         `json:"zoom"`
	Canvas        geometry.Canvas `json:"canvas"`
	Chart         graph.Chart     `json:"chart"`
	SelectedNodes []string        `json:"selected_nodes"`
	SelectedEdge  string          `json:"selected_edge,omitempty"`
	Dragging      bool            `json:"dragging"`
}

// View returns a snapshot of the current state.
func (e *Editor) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return View{
		Position:      e.position,
		FlowType:      e.flowType,
		Mode:          e.mode,
		Theme:         e.theme,
		Zoom:          e.zoom,
		Canvas:        e.canvas,
		Chart:         e.store.Snapshot(),
		SelectedNodes: append([]string{}, e.selected...),
		SelectedEdge:  e.selectedEdge,
		Dragging:      e.drag != nil,
	}
}

// Key returns the key of the active chart.
func (e *Editor) Key() chart.Key {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.key()
}

// Charts returns copies of every chart, with the active chart persisted first.
func (e *Editor) Charts() map[string]graph.Chart {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.persist()
	return e.registry.Charts()
}

// RandomPath walks the active chart; see graph.RandomPath.
func (e *Editor) RandomPath(rng *rand.Rand) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return graph.RandomPath(e.store.Snapshot(), rng)
}

func (e *Editor) key() chart.Key {
	return chart.Key{Position: e.position, FlowType: e.flowType}
}

func (e *Editor) builder() bool {
	return e.mode == workspace.ModeBuilder
}

// persist stores a copy of the active chart in the registry.
func (e *Editor) persist() {
	e.registry.Persist(e.key().String(), e.store.Snapshot())
}

// resetCanvas recomputes the canvas from scratch for the active nodes.
func (e *Editor) resetCanvas() {
	e.canvas.Reset()
	e.canvas.Ensure(e.store.Nodes(), 0, 0)
}

// loadCurrent replaces the active chart with the registry copy for the
// current key.
func (e *Editor) loadCurrent() {
	e.store.Replace(e.registry.Load(e.key().String()))
	e.clearSelection()
	e.drag = nil
	e.resetCanvas()
}

// loadIntoActive replaces the active chart with c and persists it.
func (e *Editor) loadIntoActive(c graph.Chart) {
	e.store.Replace(c)
	e.clearSelection()
	e.drag = nil
	e.resetCanvas()
	e.persist()
}

func (e *Editor) loadTemplate() {
	e.loadIntoActive(e.templates(e.position, e.flowType))
}

func (e *Editor) switchChart(p chart.Position, f chart.FlowType) {
	e.persist()
	e.position = p
	e.flowType = f
	e.loadCurrent()
	if len(e.store.Nodes()) == 0 {
		e.loadTemplate()
	}
}

func (e *Editor) autoLayout() layout.Result {
	return layout.Apply(e.store.Nodes(), e.store.Edges(), &e.canvas)
}

func (e *Editor) setMode(m workspace.Mode) {
	e.mode = workspace.ParseMode(string(m))
	if e.mode == workspace.ModeUser {
		e.clearSelection()
		e.drag = nil
	}
}

func (e *Editor) setZoom(z float64) {
	e.zoom = geometry.ClampZoom(z)
	e.canvas.Ensure(e.store.Nodes(), 0, 0)
}
