// Package workspace encodes and decodes the JSON documents a workspace is
// exchanged in: single-chart exports and full-workspace snapshots.
package workspace

import (
	"encoding/json"
	"errors"

	"github.com/matsen/bjjflow/internal/graph"
)

// FileName is the default name of a full-workspace export.
const FileName = "bjj-flowchart-workspace.json"

// Validation errors. Neither leaves any state partially modified.
var (
	ErrInvalidJSON       = errors.New("invalid JSON")
	ErrUnsupportedFormat = errors.New("unsupported JSON format")
)

// Mode is the editing mode of the workspace.
type Mode string

// Modes.
const (
	ModeBuilder Mode = "builder"
	ModeUser    Mode = "user"
)

// ParseMode returns m when it is a known mode and builder otherwise.
func ParseMode(m string) Mode {
	if Mode(m) == ModeUser {
		return ModeUser
	}
	return ModeBuilder
}

// Theme is the colour theme stored with the workspace.
type Theme string

// Themes.
const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme returns t when it is a known theme and dark otherwise.
func ParseTheme(t string) Theme {
	if Theme(t) == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

// ChartPayload is the single-chart export document.
type ChartPayload struct {
	Position   string            `json:"position"`
	ChartType  string            `json:"chartType"`
	Nodes      []graph.Node      `json:"nodes"`
	Edges      []graph.Edge      `json:"edges"`
	References []graph.Reference `json:"references"`
}

// Chart returns the graph content of the payload.
func (p ChartPayload) Chart() graph.Chart {
	return graph.Chart{Nodes: p.Nodes, Edges: p.Edges, References: p.References}.Clone()
}

// Snapshot is the full-workspace document. Position and chart type are kept
// as raw strings; the editor decides whether they name a known chart.
type Snapshot struct {
	CurrentPosition  string                 `json:"currentPosition"`
	CurrentChartType string                 `json:"currentChartType"`
	Mode             Mode                   `json:"mode"`
	Theme            Theme                  `json:"theme"`
	Charts           map[string]graph.Chart `json:"charts"`
}

// EncodeChart renders a single-chart document as indented JSON.
func EncodeChart(position, chartType string, c graph.Chart) ([]byte, error) {
	c = c.Clone()
	return json.MarshalIndent(ChartPayload{
		Position:   position,
		ChartType:  chartType,
		Nodes:      c.Nodes,
		Edges:      c.Edges,
		References: c.References,
	}, "", "  ")
}

// EncodeWorkspace renders a full-workspace document as indented JSON.
func EncodeWorkspace(s Snapshot) ([]byte, error) {
	if s.Charts == nil {
		s.Charts = map[string]graph.Chart{}
	}
	return json.MarshalIndent(s, "", "  ")
}
