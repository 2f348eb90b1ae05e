package graph

// Default anchor indexes: right side of the source to left side of the target.
const (
	DefaultFromAnchor = 2
	DefaultToAnchor   = 6
)

// AnchorCount is the number of fixed anchor points around a node.
const AnchorCount = 8

// End names one end of an edge.
type End string

// Edge ends.
const (
	EndFrom End = "from"
	EndTo   End = "to"
)

// Edge is a directed transition between two nodes.
type Edge struct {
	ID         string `json:"id"`
	From       string `json:"from"`
	To         string `json:"to"`
	Curved     bool   `json:"curved"`
	FromAnchor int    `json:"fromAnchor"`
	ToAnchor   int    `json:"toAnchor"`
}

// NewEdge returns an edge between from and to with default curve and anchors.
func NewEdge(id, from, to string) Edge {
	if id == "" {
		id = NewID("edge")
	}
	return Edge{
		ID:         id,
		From:       from,
		To:         to,
		FromAnchor: DefaultFromAnchor,
		ToAnchor:   DefaultToAnchor,
	}
}

// UnmarshalJSON decodes an edge field by field. Missing or non-numeric
// anchors become 2 and 6, fractional anchors are rounded and a non-boolean
// curved flag is false. Only a non-object is an error.
func (e *Edge) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*e = Edge{
		ID:         f.str("id"),
		From:       f.str("from"),
		To:         f.str("to"),
		Curved:     f.boolean("curved"),
		FromAnchor: f.index("fromAnchor", DefaultFromAnchor),
		ToAnchor:   f.index("toAnchor", DefaultToAnchor),
	}
	return nil
}

// Touches reports whether the edge starts or ends at nodeID.
func (e Edge) Touches(nodeID string) bool {
	return e.From == nodeID || e.To == nodeID
}

// Key returns the ordered (from, to) pair identifying the transition.
func (e Edge) Key() EdgeKey {
	return EdgeKey{From: e.From, To: e.To}
}

// EdgeKey is the ordered pair an edge connects. At most one edge per key is
// created by Connect; loaded charts may contain duplicates.
type EdgeKey struct {
	From string
	To   string
}

// ValidAnchor reports whether i is a valid anchor index.
func ValidAnchor(i int) bool {
	return i >= 0 && i < AnchorCount
}
