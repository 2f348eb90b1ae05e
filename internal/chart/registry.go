package chart

import (
	"sort"

	"github.com/matsen/bjjflow/internal/graph"
)

// Registry maps chart keys to saved chart snapshots. Keys are kept as strings
// so that unrecognised keys in a loaded workspace survive a round trip.
//
// Charts cross the registry boundary only as deep copies: Persist stores a
// clone and Load returns a clone.
type Registry struct {
	charts map[string]graph.Chart
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{charts: make(map[string]graph.Chart)}
}

// FromCharts builds a registry holding copies of charts.
func FromCharts(charts map[string]graph.Chart) *Registry {
	r := NewRegistry()
	for k, c := range charts {
		r.charts[k] = c.Clone()
	}
	return r
}

// Persist stores a copy of c under key.
func (r *Registry) Persist(key string, c graph.Chart) {
	r.charts[key] = c.Clone()
}

// Load returns a copy of the chart stored under key, creating an empty chart
// when none exists.
func (r *Registry) Load(key string) graph.Chart {
	c, ok := r.charts[key]
	if !ok {
		c = graph.EmptyChart()
		r.charts[key] = c
	}
	return c.Clone()
}

// Has reports whether a chart is stored under key.
func (r *Registry) Has(key string) bool {
	_, ok := r.charts[key]
	return ok
}

// Keys returns the stored keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.charts))
	for k := range r.charts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored charts.
func (r *Registry) Len() int {
	return len(r.charts)
}

// Charts returns copies of every stored chart.
func (r *Registry) Charts() map[string]graph.Chart {
	out := make(map[string]graph.Chart, len(r.charts))
	for k, c := range r.charts {
		out[k] = c.Clone()
	}
	return out
}
