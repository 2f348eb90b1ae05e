package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/bjjflow/internal/editor"
	"github.com/matsen/bjjflow/internal/graph"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for search

	LabelMaxLen = 40 // Node labels in list output
	NotesMaxLen = 60 // Notes in search results
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// outputError writes an error message to stderr and returns the exit code.
func outputError(code int, format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return code
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Chart  string `json:"chart,omitempty"`
	ID     string `json:"id,omitempty"`
	Path   string `json:"path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// printStatus prints a status response, or msg in human mode.
func printStatus(resp StatusResponse, msg string) {
	if humanOutput {
		outputHuman("%s\n", msg)
		return
	}
	outputJSON(resp)
}

// printViewHuman prints the active chart.
func printViewHuman(v editor.View) {
	outputHuman("%s %s (%s mode, %s theme)\n", v.Position, v.FlowType, v.Mode, v.Theme)

	outputHuman("\nNodes (%d):\n", len(v.Chart.Nodes))
	for _, n := range v.Chart.Nodes {
		outputHuman("  %-14s [%-8s] %-*s (%g, %g)\n", n.ID, n.Type, LabelMaxLen, truncateString(n.Label, LabelMaxLen), n.X, n.Y)
	}

	labels := make(map[string]string, len(v.Chart.Nodes))
	for _, n := range v.Chart.Nodes {
		labels[n.ID] = n.Label
	}
	outputHuman("\nTransitions (%d):\n", len(v.Chart.Edges))
	for _, e := range v.Chart.Edges {
		outputHuman("  %-14s %s -> %s%s\n", e.ID, nodeName(labels, e.From), nodeName(labels, e.To), edgeFlags(e))
	}

	if len(v.Chart.References) > 0 {
		outputHuman("\nReferences (%d):\n", len(v.Chart.References))
		for _, r := range v.Chart.References {
			title := r.Title
			if title == "" {
				title = "(untitled)"
			}
			outputHuman("  %-14s %s <%s>\n", r.ID, title, r.URL)
		}
	}
}

func nodeName(labels map[string]string, id string) string {
	if l, ok := labels[id]; ok {
		return l
	}
	return id + " (missing)"
}

func edgeFlags(e graph.Edge) string {
	var flags []string
	if e.Curved {
		flags = append(flags, "curved")
	}
	if e.FromAnchor != graph.DefaultFromAnchor || e.ToAnchor != graph.DefaultToAnchor {
		flags = append(flags, fmt.Sprintf("anchors %d→%d", e.FromAnchor, e.ToAnchor))
	}
	if len(flags) == 0 {
		return ""
	}
	return " [" + strings.Join(flags, ", ") + "]"
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
