package graph

// Store owns the node, edge and reference collections of the active chart.
//
// Every operation is best-effort: unknown ids and invalid input are silently
// ignored and reported through the boolean results only.
type Store struct {
	chart Chart
}

// NewStore returns a store working on a copy of c.
func NewStore(c Chart) *Store {
	return &Store{chart: c.Clone()}
}

// Snapshot returns a deep copy of the active chart.
func (s *Store) Snapshot() Chart {
	return s.chart.Clone()
}

// Replace swaps the active collections for a copy of c.
func (s *Store) Replace(c Chart) {
	s.chart = c.Clone()
}

// Nodes returns the live node slice. Callers may reposition nodes in place
// but must not append to or reslice it.
func (s *Store) Nodes() []Node {
	return s.chart.Nodes
}

// Edges returns the live edge slice.
func (s *Store) Edges() []Edge {
	return s.chart.Edges
}

// References returns the live reference slice.
func (s *Store) References() []Reference {
	return s.chart.References
}

// Node returns a pointer to the node with the given id, or nil.
func (s *Store) Node(id string) *Node {
	if i := s.chart.NodeIndex(id); i >= 0 {
		return &s.chart.Nodes[i]
	}
	return nil
}

// Edge returns a pointer to the edge with the given id, or nil.
func (s *Store) Edge(id string) *Edge {
	if i := s.chart.EdgeIndex(id); i >= 0 {
		return &s.chart.Edges[i]
	}
	return nil
}

// Reference returns a pointer to the reference with the given id, or nil.
func (s *Store) Reference(id string) *Reference {
	for i := range s.chart.References {
		if s.chart.References[i].ID == id {
			return &s.chart.References[i]
		}
	}
	return nil
}

// AddNode appends a node built from spec and returns its id. It never fails.
func (s *Store) AddNode(spec NodeSpec) string {
	n := NewNode(spec)
	s.chart.Nodes = append(s.chart.Nodes, n)
	return n.ID
}

// HasEdge reports whether an edge already connects from to to.
func (s *Store) HasEdge(from, to string) bool {
	for _, e := range s.chart.Edges {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}

// Connect appends an edge from -> to with default anchors. It is a no-op when
// either id is empty, the ids are equal, or the ordered pair is already
// connected. Ids are not checked against the node set.
func (s *Store) Connect(from, to string) (string, bool) {
	if from == "" || to == "" || from == to {
		return "", false
	}
	if s.HasEdge(from, to) {
		return "", false
	}
	e := NewEdge("", from, to)
	s.chart.Edges = append(s.chart.Edges, e)
	return e.ID, true
}

// DeleteNodes removes every node whose id is in ids together with every edge
// touching a removed id. It returns the number of nodes removed.
func (s *Store) DeleteNodes(ids map[string]bool) int {
	if len(ids) == 0 {
		return 0
	}
	nodes := make([]Node, 0, len(s.chart.Nodes))
	for _, n := range s.chart.Nodes {
		if !ids[n.ID] {
			nodes = append(nodes, n)
		}
	}
	removed := len(s.chart.Nodes) - len(nodes)

	edges := make([]Edge, 0, len(s.chart.Edges))
	for _, e := range s.chart.Edges {
		if !ids[e.From] && !ids[e.To] {
			edges = append(edges, e)
		}
	}

	s.chart.Nodes = nodes
	s.chart.Edges = edges
	return removed
}

// DeleteEdge removes the edge with the given id.
func (s *Store) DeleteEdge(id string) bool {
	i := s.chart.EdgeIndex(id)
	if i < 0 {
		return false
	}
	s.chart.Edges = append(s.chart.Edges[:i:i], s.chart.Edges[i+1:]...)
	return true
}

// ToggleCurve flips the curved flag of the edge with the given id.
func (s *Store) ToggleCurve(id string) bool {
	e := s.Edge(id)
	if e == nil {
		return false
	}
	e.Curved = !e.Curved
	return true
}

// SetAnchor sets the anchor index of one end of an edge. Unknown edges, ends
// and out-of-range indexes are ignored.
func (s *Store) SetAnchor(id string, end End, index int) bool {
	e := s.Edge(id)
	if e == nil || !ValidAnchor(index) {
		return false
	}
	switch end {
	case EndFrom:
		e.FromAnchor = index
	case EndTo:
		e.ToAnchor = index
	default:
		return false
	}
	return true
}

// UpdateNode applies inspector edits to the node with the given id.
func (s *Store) UpdateNode(id string, patch NodePatch) bool {
	n := s.Node(id)
	if n == nil {
		return false
	}
	patch.apply(n)
	return true
}

// MoveNode sets the position of the node with the given id.
func (s *Store) MoveNode(id string, x, y float64) bool {
	n := s.Node(id)
	if n == nil {
		return false
	}
	n.X, n.Y = x, y
	return true
}

// AddReference appends ref.
func (s *Store) AddReference(ref Reference) {
	s.chart.References = append(s.chart.References, ref)
}

// RemoveReference removes the reference with the given id.
func (s *Store) RemoveReference(id string) bool {
	refs := make([]Reference, 0, len(s.chart.References))
	for _, r := range s.chart.References {
		if r.ID != id {
			refs = append(refs, r)
		}
	}
	removed := len(refs) != len(s.chart.References)
	s.chart.References = refs
	return removed
}
