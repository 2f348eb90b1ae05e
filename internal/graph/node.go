// Package graph defines the flow chart data model and the editing operations
// that act on the active chart.
package graph

// NodeType classifies a node in a technique flow.
type NodeType string

// Node types.
const (
	TypePosition NodeType = "position"
	TypeAttack   NodeType = "attack"
	TypeReaction NodeType = "reaction"
	TypeFinish   NodeType = "finish"
)

// ValidNodeTypes lists the supported node types.
var ValidNodeTypes = []NodeType{TypePosition, TypeAttack, TypeReaction, TypeFinish}

// Valid reports whether t is one of the supported node types.
func (t NodeType) Valid() bool {
	for _, v := range ValidNodeTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ParseNodeType converts a string to a NodeType.
func ParseNodeType(s string) (NodeType, bool) {
	t := NodeType(s)
	return t, t.Valid()
}

// Field limits and defaults for nodes.
const (
	MaxLabelLen  = 60
	MaxNotesLen  = 400
	DefaultLabel = "New Node"
	DefaultType  = TypePosition
	DefaultX     = 80.0
	DefaultY     = 80.0
)

// Node is a technique step: a position, an attack, a reaction or a finish.
// X and Y are the top-left corner in unscaled chart coordinates.
type Node struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Type  NodeType `json:"type"`
	Notes string   `json:"notes"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
}

// UnmarshalJSON decodes a node field by field, replacing a missing or unknown
// type with DefaultType and non-numeric coordinates with 0. Only a non-object
// is an error.
func (n *Node) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*n = Node{
		ID:    f.str("id"),
		Label: f.str("label"),
		Type:  NodeType(f.str("type")),
		Notes: f.str("notes"),
		X:     f.num("x"),
		Y:     f.num("y"),
	}
	if !n.Type.Valid() {
		n.Type = DefaultType
	}
	return nil
}

// NodeSpec describes a node to create. Zero-valued fields take the documented
// defaults; X and Y are pointers so that an explicit 0 is distinguishable from unset.
type NodeSpec struct {
	ID    string   `json:"id,omitempty"`
	Label string   `json:"label,omitempty"`
	Type  NodeType `json:"type,omitempty"`
	Notes string   `json:"notes,omitempty"`
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
}

// NewNode builds a node from spec, filling defaults.
func NewNode(spec NodeSpec) Node {
	n := Node{
		ID:    spec.ID,
		Label: spec.Label,
		Type:  spec.Type,
		Notes: truncate(spec.Notes, MaxNotesLen),
		X:     DefaultX,
		Y:     DefaultY,
	}
	if n.ID == "" {
		n.ID = NewID("node")
	}
	if n.Label == "" {
		n.Label = DefaultLabel
	}
	n.Label = truncate(n.Label, MaxLabelLen)
	if !n.Type.Valid() {
		n.Type = DefaultType
	}
	if spec.X != nil {
		n.X = *spec.X
	}
	if spec.Y != nil {
		n.Y = *spec.Y
	}
	return n
}

// NodePatch holds inspector edits. Nil fields are left unchanged.
type NodePatch struct {
	Label *string   `json:"label,omitempty"`
	Type  *NodeType `json:"type,omitempty"`
	Notes *string   `json:"notes,omitempty"`
}

// apply mutates n with the patch. Invalid types are ignored.
func (p NodePatch) apply(n *Node) {
	if p.Label != nil {
		n.Label = truncate(*p.Label, MaxLabelLen)
	}
	if p.Type != nil && p.Type.Valid() {
		n.Type = *p.Type
	}
	if p.Notes != nil {
		n.Notes = truncate(*p.Notes, MaxNotesLen)
	}
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
