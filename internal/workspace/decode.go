package workspace

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/matsen/bjjflow/internal/graph"
)

// Kind tells which document an imported payload turned out to be.
type Kind int

// Payload kinds.
const (
	KindChart Kind = iota + 1
	KindWorkspace
)

func (k Kind) String() string {
	switch k {
	case KindChart:
		return "chart"
	case KindWorkspace:
		return "workspace"
	default:
		return "unknown"
	}
}

// Payload is a decoded import document. Exactly one of Chart and Workspace
// is meaningful, as indicated by Kind.
type Payload struct {
	Kind      Kind
	Chart     ChartPayload
	Workspace Snapshot
}

// Parse detects and decodes an import document. A document whose nodes and
// edges are both arrays is a chart; otherwise one with an object-valued
// charts field is a workspace. Anything else is ErrUnsupportedFormat.
func Parse(data []byte) (Payload, error) {
	if !json.Valid(data) {
		return Payload{}, ErrInvalidJSON
	}
	fields, ok := objectFields(data)
	if !ok {
		return Payload{}, ErrUnsupportedFormat
	}
	if isArray(fields["nodes"]) && isArray(fields["edges"]) {
		return Payload{Kind: KindChart, Chart: decodeChartPayload(fields)}, nil
	}
	if isObject(fields["charts"]) {
		return Payload{Kind: KindWorkspace, Workspace: decodeSnapshot(fields)}, nil
	}
	return Payload{}, ErrUnsupportedFormat
}

// DecodeChart leniently decodes a chart: non-array nodes, edges or references
// become empty collections and elements that cannot be decoded are skipped.
// Only malformed JSON text is an error.
func DecodeChart(data []byte) (graph.Chart, error) {
	if !json.Valid(data) {
		return graph.Chart{}, ErrInvalidJSON
	}
	fields, _ := objectFields(data)
	return decodeChartPayload(fields).Chart(), nil
}

// DecodeWorkspace decodes a full-workspace document. A charts field that is
// not an object yields an empty chart map; mode and theme fall back to their
// defaults.
func DecodeWorkspace(data []byte) (Snapshot, error) {
	if !json.Valid(data) {
		return Snapshot{}, ErrInvalidJSON
	}
	fields, ok := objectFields(data)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: workspace must be an object", ErrUnsupportedFormat)
	}
	return decodeSnapshot(fields), nil
}

func decodeChartPayload(fields map[string]json.RawMessage) ChartPayload {
	return ChartPayload{
		Position:   decodeString(fields["position"]),
		ChartType:  decodeString(fields["chartType"]),
		Nodes:      decodeArray[graph.Node](fields["nodes"]),
		Edges:      decodeArray[graph.Edge](fields["edges"]),
		References: decodeArray[graph.Reference](fields["references"]),
	}
}

func decodeSnapshot(fields map[string]json.RawMessage) Snapshot {
	s := Snapshot{
		CurrentPosition:  decodeString(fields["currentPosition"]),
		CurrentChartType: decodeString(fields["currentChartType"]),
		Mode:             ParseMode(decodeString(fields["mode"])),
		Theme:            ParseTheme(decodeString(fields["theme"])),
		Charts:           map[string]graph.Chart{},
	}
	charts, ok := objectFields(fields["charts"])
	if !ok {
		return s
	}
	for key, raw := range charts {
		chartFields, _ := objectFields(raw)
		s.Charts[key] = decodeChartPayload(chartFields).Chart()
	}
	return s
}

// objectFields splits a JSON object into its raw fields. ok is false when raw
// is not an object.
func objectFields(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if !isObject(raw) {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

func decodeArray[T any](raw json.RawMessage) []T {
	out := []T{}
	if !isArray(raw) {
		return out
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return out
	}
	for _, elem := range elems {
		var v T
		if !isObject(elem) {
			continue
		}
		if err := json.Unmarshal(elem, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func decodeString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func isArray(raw json.RawMessage) bool  { return firstByte(raw) == '[' }
func isObject(raw json.RawMessage) bool { return firstByte(raw) == '{' }
