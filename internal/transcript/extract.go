package transcript

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matsen/bjjflow/internal/chart"
	"github.com/matsen/bjjflow/internal/graph"
)

// Match is a catalog concept found in a transcript.
type Match struct {
	Label   string         `json:"label"`
	Type    graph.NodeType `json:"type"`
	Keyword string         `json:"keyword"`
	Offset  int            `json:"offset"`
}

// Note is the node note recorded for a match.
func (m Match) Note() string {
	return fmt.Sprintf("Derived from transcript mention of %q.", m.Keyword)
}

// Extract finds the catalog concepts mentioned in text. For each concept the
// first keyword (in catalog order) contained in the lowercased text is used,
// and matches are ordered by that keyword's first offset, ties keeping
// catalog order.
func Extract(text string, p chart.Position, f chart.FlowType) []Match {
	normalized := strings.ToLower(text)

	var matches []Match
	for _, c := range Catalog(p, f) {
		for _, kw := range c.Keywords {
			offset := strings.Index(normalized, kw)
			if offset < 0 {
				continue
			}
			matches = append(matches, Match{Label: c.Label, Type: c.Type, Keyword: kw, Offset: offset})
			break
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Offset < matches[j].Offset
	})
	return matches
}
