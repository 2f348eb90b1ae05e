package editor

import (
	"fmt"

	"github.com/matsen/bjjflow/internal/chart"
	"github.com/matsen/bjjflow/internal/graph"
	"github.com/matsen/bjjflow/internal/workspace"
)

// SerializeChart renders the active chart as a single-chart document.
func (e *Editor) SerializeChart() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return workspace.EncodeChart(string(e.position), string(e.flowType), e.store.Snapshot())
}

// Snapshot persists the active chart and returns the full workspace.
func (e *Editor) Snapshot() workspace.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

func (e *Editor) snapshot() workspace.Snapshot {
	e.persist()
	return workspace.Snapshot{
		CurrentPosition:  string(e.position),
		CurrentChartType: string(e.flowType),
		Mode:             e.mode,
		Theme:            e.theme,
		Charts:           e.registry.Charts(),
	}
}

// SerializeWorkspace persists the active chart and renders every chart plus
// the current selection, mode and theme.
func (e *Editor) SerializeWorkspace() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return workspace.EncodeWorkspace(e.snapshot())
}

// LoadIntoActive replaces the active chart with c, clears the selection,
// recomputes the canvas and persists the result.
func (e *Editor) LoadIntoActive(c graph.Chart) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadIntoActive(c)
}

// LoadWorkspace replaces every chart with those of s. A position or chart type
// that is not recognised keeps the current value. The chart for the resulting
// selection becomes active.
func (e *Editor) LoadWorkspace(s workspace.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadWorkspace(s)
}

func (e *Editor) loadWorkspace(s workspace.Snapshot) {
	e.registry = chart.FromCharts(s.Charts)
	if p, ok := chart.ParsePosition(s.CurrentPosition); ok {
		e.position = p
	}
	if f, ok := chart.ParseFlowType(s.CurrentChartType); ok {
		e.flowType = f
	}
	e.setMode(s.Mode)
	e.theme = workspace.ParseTheme(string(s.Theme))
	e.loadCurrent()
}

// Import loads a chart or workspace document. A chart document replaces the
// active chart regardless of the position it names; a workspace document
// replaces everything. On error nothing changes.
func (e *Editor) Import(data []byte) (workspace.Kind, error) {
	p, err := workspace.Parse(data)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	switch p.Kind {
	case workspace.KindChart:
		e.loadIntoActive(p.Chart.Chart())
	case workspace.KindWorkspace:
		e.loadWorkspace(p.Workspace)
	}
	return p.Kind, nil
}

// Source is a workspace document tried at startup.
type Source struct {
	Name string
	Load func() ([]byte, error)
}

// TemplateSource is the name Boot reports when no source could be loaded.
const TemplateSource = "built-in template"

// Boot loads the first source that yields a workspace document and returns
// its name. When every source fails the active chart is filled from the
// template provider.
func (e *Editor) Boot(sources ...Source) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, src := range sources {
		data, err := src.Load()
		if err != nil {
			e.logger.Debug("startup source unavailable", "source", src.Name, "error", err)
			continue
		}
		s, err := workspace.DecodeWorkspace(data)
		if err != nil {
			e.logger.Warn("startup source could not be loaded", "source", src.Name, "error", err)
			continue
		}
		e.loadWorkspace(s)
		e.logger.Info("startup source loaded", "source", src.Name, "charts", e.registry.Len())
		return src.Name
	}

	e.loadTemplate()
	e.logger.Info("startup source loaded", "source", TemplateSource)
	return TemplateSource
}

// ExportFileName is the file name for exporting the active chart.
func (e *Editor) ExportFileName() string {
	return fmt.Sprintf("%s.json", e.Key().Slug())
}
