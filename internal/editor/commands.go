package editor

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/matsen/bjjflow/internal/chart"
	"github.com/matsen/bjjflow/internal/geometry"
	"github.com/matsen/bjjflow/internal/graph"
	"github.com/matsen/bjjflow/internal/workspace"
)

// Command errors.
var (
	ErrNeedTwoNodes   = errors.New("select exactly two nodes to connect")
	ErrUnknownCommand = errors.New("unknown command")
)

// Result reports what a command produced.
type Result struct {
	// ID is the id of the created node, edge or reference, if any.
	ID string `json:"id,omitempty"`
	// NeedsTitle is set when a reference was added without a title and should
	// be hydrated.
	NeedsTitle bool `json:"needs_title,omitempty"`
}

// Command is one editor operation.
type Command interface {
	Op() string
	apply(e *Editor) (Result, error)
}

// builderOnly lists the operations ignored in user mode.
var builderOnly = map[string]bool{
	"add_node":         true,
	"connect":          true,
	"connect_selected": true,
	"delete_selected":  true,
	"delete_edge":      true,
	"toggle_curve":     true,
	"set_anchor":       true,
	"select_node":      true,
	"select_edge":      true,
	"clear_selection":  true,
	"begin_drag":       true,
	"move_drag":        true,
	"auto_layout":      true,
	"update_node":      true,
	"add_reference":    true,
	"clear_board":      true,
}

// Apply executes cmd. Builder-only commands are ignored in user mode, and
// commands naming unknown ids do nothing; neither is an error.
func (e *Editor) Apply(cmd Command) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if builderOnly[cmd.Op()] && !e.builder() {
		return Result{}, nil
	}
	return cmd.apply(e)
}

// AddNode creates a node. With Near set it follows the board's add button:
// the node is placed right of the single selected node with that node's type
// (or at the default position as an attack), and becomes the selection.
type AddNode struct {
	graph.NodeSpec
	Near bool `json:"near,omitempty"`
}

func (AddNode) Op() string { return "add_node" }

func (c AddNode) apply(e *Editor) (Result, error) {
	spec := c.NodeSpec
	if c.Near {
		sel := e.selectedSingleNode()
		if spec.Type == "" {
			spec.Type = graph.TypeAttack
			if sel != nil {
				spec.Type = sel.Type
			}
		}
		if sel != nil && spec.X == nil && spec.Y == nil {
			x, y := sel.X+geometry.NodeWidth+nearGap, sel.Y
			spec.X, spec.Y = &x, &y
		}
	}
	id := e.store.AddNode(spec)
	e.canvas.Ensure(e.store.Nodes(), 0, 0)
	if c.Near {
		e.selectNode(id, false)
	}
	return Result{ID: id}, nil
}

// nearGap is the horizontal gap between a selected node and one added next to it.
const nearGap = 30

// Connect adds an edge from From to To.
type Connect struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (Connect) Op() string { return "connect" }

func (c Connect) apply(e *Editor) (Result, error) {
	id, _ := e.store.Connect(c.From, c.To)
	return Result{ID: id}, nil
}

// ConnectSelected connects the two selected nodes in selection order.
type ConnectSelected struct{}

func (ConnectSelected) Op() string { return "connect_selected" }

func (ConnectSelected) apply(e *Editor) (Result, error) {
	if len(e.selected) != 2 {
		return Result{}, ErrNeedTwoNodes
	}
	id, _ := e.store.Connect(e.selected[0], e.selected[1])
	return Result{ID: id}, nil
}

// DeleteSelected removes the selected nodes and their edges.
type DeleteSelected struct{}

func (DeleteSelected) Op() string { return "delete_selected" }

func (DeleteSelected) apply(e *Editor) (Result, error) {
	e.deleteSelected()
	return Result{}, nil
}

// DeleteEdge removes an edge. An empty ID means the selected edge.
type DeleteEdge struct {
	ID string `json:"id,omitempty"`
}

func (DeleteEdge) Op() string { return "delete_edge" }

func (c DeleteEdge) apply(e *Editor) (Result, error) {
	id := e.edgeTarget(c.ID)
	if id == "" {
		return Result{}, nil
	}
	e.store.DeleteEdge(id)
	if id == e.selectedEdge {
		e.selectedEdge = ""
	}
	return Result{}, nil
}

// ToggleCurve flips an edge between straight and curved. An empty ID means
// the selected edge.
type ToggleCurve struct {
	ID string `json:"id,omitempty"`
}

func (ToggleCurve) Op() string { return "toggle_curve" }

func (c ToggleCurve) apply(e *Editor) (Result, error) {
	e.store.ToggleCurve(e.edgeTarget(c.ID))
	return Result{}, nil
}

// SetAnchor moves one end of an edge to another anchor. An empty ID means the
// selected edge.
type SetAnchor struct {
	ID    string    `json:"id,omitempty"`
	End   graph.End `json:"end"`
	Index int       `json:"index"`
}

func (SetAnchor) Op() string { return "set_anchor" }

func (c SetAnchor) apply(e *Editor) (Result, error) {
	e.store.SetAnchor(e.edgeTarget(c.ID), c.End, c.Index)
	return Result{}, nil
}

func (e *Editor) edgeTarget(id string) string {
	if id != "" {
		return id
	}
	return e.selectedEdge
}

// SelectNode selects a node; Additive toggles it within the selection.
type SelectNode struct {
	ID       string `json:"id"`
	Additive bool   `json:"additive,omitempty"`
}

func (SelectNode) Op() string { return "select_node" }

func (c SelectNode) apply(e *Editor) (Result, error) {
	e.selectNode(c.ID, c.Additive)
	return Result{}, nil
}

// SelectEdge selects an edge, clearing the node selection.
type SelectEdge struct {
	ID string `json:"id"`
}

func (SelectEdge) Op() string { return "select_edge" }

func (c SelectEdge) apply(e *Editor) (Result, error) {
	e.selectEdge(c.ID)
	return Result{}, nil
}

// ClearSelection deselects everything, as a click on the empty board does.
type ClearSelection struct{}

func (ClearSelection) Op() string { return "clear_selection" }

func (ClearSelection) apply(e *Editor) (Result, error) {
	e.clearSelection()
	return Result{}, nil
}

// BeginDrag starts dragging a node at the given pointer position.
type BeginDrag struct {
	NodeID  string  `json:"nodeId"`
	Pointer Pointer `json:"pointer"`
}

func (BeginDrag) Op() string { return "begin_drag" }

func (c BeginDrag) apply(e *Editor) (Result, error) {
	e.beginDrag(c.NodeID, c.Pointer)
	return Result{}, nil
}

// MoveDrag moves the dragged nodes to follow the pointer.
type MoveDrag struct {
	Pointer Pointer `json:"pointer"`
}

func (MoveDrag) Op() string { return "move_drag" }

func (c MoveDrag) apply(e *Editor) (Result, error) {
	e.moveDrag(c.Pointer)
	return Result{}, nil
}

// EndDrag discards the drag state.
type EndDrag struct{}

func (EndDrag) Op() string { return "end_drag" }

func (EndDrag) apply(e *Editor) (Result, error) {
	e.endDrag()
	return Result{}, nil
}

// AutoLayout arranges the active chart left to right by depth.
type AutoLayout struct{}

func (AutoLayout) Op() string { return "auto_layout" }

func (AutoLayout) apply(e *Editor) (Result, error) {
	e.autoLayout()
	return Result{}, nil
}

// SwitchChart makes another chart active, populating it from the template
// provider when it is empty.
type SwitchChart struct {
	Position chart.Position `json:"position"`
	FlowType chart.FlowType `json:"chartType"`
}

func (SwitchChart) Op() string { return "switch_chart" }

func (c SwitchChart) apply(e *Editor) (Result, error) {
	p, ok := chart.ParsePosition(string(c.Position))
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", chart.ErrUnknownPosition, c.Position)
	}
	f, ok := chart.ParseFlowType(string(c.FlowType))
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", chart.ErrUnknownFlowType, c.FlowType)
	}
	e.switchChart(p, f)
	return Result{}, nil
}

// SetZoom sets the zoom level, or adjusts it by Zoom when Relative is set.
// The result is clamped to [geometry.ZoomMin, geometry.ZoomMax].
type SetZoom struct {
	Zoom     float64 `json:"zoom"`
	Relative bool    `json:"relative,omitempty"`
}

func (SetZoom) Op() string { return "set_zoom" }

func (c SetZoom) apply(e *Editor) (Result, error) {
	z := c.Zoom
	if c.Relative {
		z += e.zoom
	}
	e.setZoom(z)
	return Result{}, nil
}

// SetMode switches between builder and user mode. Entering user mode clears
// the selection.
type SetMode struct {
	Mode workspace.Mode `json:"mode"`
}

func (SetMode) Op() string { return "set_mode" }

func (c SetMode) apply(e *Editor) (Result, error) {
	e.setMode(c.Mode)
	return Result{}, nil
}

// SetTheme sets the colour theme.
type SetTheme struct {
	Theme workspace.Theme `json:"theme"`
}

func (SetTheme) Op() string { return "set_theme" }

func (c SetTheme) apply(e *Editor) (Result, error) {
	e.theme = workspace.ParseTheme(string(c.Theme))
	return Result{}, nil
}

// UpdateNode applies inspector edits to a node. An empty ID means the single
// selected node.
type UpdateNode struct {
	ID string `json:"id,omitempty"`
	graph.NodePatch
}

func (UpdateNode) Op() string { return "update_node" }

func (c UpdateNode) apply(e *Editor) (Result, error) {
	id := c.ID
	if id == "" {
		n := e.selectedSingleNode()
		if n == nil {
			return Result{}, nil
		}
		id = n.ID
	}
	e.store.UpdateNode(id, c.NodePatch)
	return Result{}, nil
}

// AddReference attaches a video or article link to the active chart.
type AddReference struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

func (AddReference) Op() string { return "add_reference" }

func (c AddReference) apply(e *Editor) (Result, error) {
	ref, err := graph.NewReference(c.Title, c.URL)
	if err != nil {
		return Result{}, err
	}
	e.store.AddReference(ref)
	e.persist()
	return Result{ID: ref.ID, NeedsTitle: ref.Title == ""}, nil
}

// RemoveReference detaches a reference from the active chart.
type RemoveReference struct {
	ID string `json:"id"`
}

func (RemoveReference) Op() string { return "remove_reference" }

func (c RemoveReference) apply(e *Editor) (Result, error) {
	e.store.RemoveReference(c.ID)
	e.persist()
	return Result{}, nil
}

// LoadTemplate replaces the active chart with its template.
type LoadTemplate struct{}

func (LoadTemplate) Op() string { return "load_template" }

func (LoadTemplate) apply(e *Editor) (Result, error) {
	e.loadTemplate()
	return Result{}, nil
}

// ClearBoard empties the active chart.
type ClearBoard struct{}

func (ClearBoard) Op() string { return "clear_board" }

func (ClearBoard) apply(e *Editor) (Result, error) {
	e.loadIntoActive(graph.EmptyChart())
	return Result{}, nil
}

// commandTypes maps op names to constructors for DecodeCommand.
var commandTypes = map[string]func() Command{
	"add_node":         func() Command { return &AddNode{} },
	"connect":          func() Command { return &Connect{} },
	"connect_selected": func() Command { return &ConnectSelected{} },
	"delete_selected":  func() Command { return &DeleteSelected{} },
	"delete_edge":      func() Command { return &DeleteEdge{} },
	"toggle_curve":     func() Command { return &ToggleCurve{} },
	"set_anchor":       func() Command { return &SetAnchor{} },
	"select_node":      func() Command { return &SelectNode{} },
	"select_edge":      func() Command { return &SelectEdge{} },
	"clear_selection":  func() Command { return &ClearSelection{} },
	"begin_drag":       func() Command { return &BeginDrag{} },
	"move_drag":        func() Command { return &MoveDrag{} },
	"end_drag":         func() Command { return &EndDrag{} },
	"auto_layout":      func() Command { return &AutoLayout{} },
	"switch_chart":     func() Command { return &SwitchChart{} },
	"set_zoom":         func() Command { return &SetZoom{} },
	"set_mode":         func() Command { return &SetMode{} },
	"set_theme":        func() Command { return &SetTheme{} },
	"update_node":      func() Command { return &UpdateNode{} },
	"add_reference":    func() Command { return &AddReference{} },
	"remove_reference": func() Command { return &RemoveReference{} },
	"load_template":    func() Command { return &LoadTemplate{} },
	"clear_board":      func() Command { return &ClearBoard{} },
}

// DecodeCommand decodes a {"op": "...", ...} JSON command.
func DecodeCommand(data []byte) (Command, error) {
	var env struct {
		Op string `json:"op"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding command: %w", err)
	}
	newCmd, ok := commandTypes[env.Op]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, env.Op)
	}
	cmd := newCmd()
	if err := json.Unmarshal(data, cmd); err != nil {
		return nil, fmt.Errorf("decoding %s command: %w", env.Op, err)
	}
	return cmd, nil
}
