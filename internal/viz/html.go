package viz

import (
	"bytes"
	"fmt"
	"html/template"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
}

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout  string // "preset", "breadthfirst", or "grid"
	Theme   string // "dark" or "light"
	Offline bool   // Whether to embed Cytoscape.js inline
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		Layout:  "preset",
		Theme:   "dark",
		Offline: false,
	}
}

// ValidLayouts lists the supported layout algorithm names.
var ValidLayouts = []string{"preset", "breadthfirst", "grid"}

// GenerateHTML generates a self-contained HTML file for the chart visualization.
func GenerateHTML(graph *GraphData, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}

	if err := validateLayout(opts.Layout); err != nil {
		return "", err
	}
	if err := validateTheme(opts.Theme); err != nil {
		return "", err
	}

	if graph.IsEmpty() {
		return generateEmptyHTML(graph.Title), nil
	}

	graphJSON, err := graph.ToCytoscapeJSON()
	if err != nil {
		return "", err
	}

	data := templateData{
		Title:     graph.Title,
		ScriptTag: template.HTML(buildScriptTag(opts.Offline)),
		GraphJSON: template.JS(graphJSON),
		Layout:    layoutToCytoscape(opts.Layout),
		Palette:   paletteFor(opts.Theme),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// validateLayout checks if the layout option is valid.
func validateLayout(layout string) error {
	switch layout {
	case "", "preset", "breadthfirst", "grid":
		return nil
	default:
		return fmt.Errorf("invalid layout %q: must be preset, breadthfirst, or grid", layout)
	}
}

func validateTheme(theme string) error {
	switch theme {
	case "", "dark", "light":
		return nil
	default:
		return fmt.Errorf("invalid theme %q: must be dark or light", theme)
	}
}

// templateData holds data for the HTML template.
type templateData struct {
	Title     string
	ScriptTag template.HTML
	GraphJSON template.JS
	Layout    string
	Palette   palette
}

// palette holds the page colours for a theme.
type palette struct {
	Background string
	Board      string
	Text       string
	Edge       string
}

func paletteFor(theme string) palette {
	if theme == "light" {
		return palette{Background: "#eef1f5", Board: "#ffffff", Text: "#1d2430", Edge: "#6b7a90"}
	}
	return palette{Background: "#0f141b", Board: "#161d27", Text: "#e8edf3", Edge: "#8fa3bf"}
}

// layoutToCytoscape converts user-friendly layout names to Cytoscape.js layout algorithm names.
func layoutToCytoscape(layout string) string {
	switch layout {
	case "breadthfirst":
		return "breadthfirst"
	case "grid":
		return "grid"
	default:
		return "preset"
	}
}

// buildScriptTag returns either inline script or CDN reference.
func buildScriptTag(offline bool) string {
	if offline && cytoscapeJS != "" {
		return "<script>" + cytoscapeJS + "</script>"
	}
	return `<script src="https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"></script>`
}

// generateEmptyHTML returns HTML for an empty chart.
func generateEmptyHTML(title string) string {
	return `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>` + template.HTMLEscapeString(title) + ` - Empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #f5f5f5;
    }
    .empty-state {
      text-align: center;
      color: #666;
    }
    .empty-state h2 {
      margin-bottom: 0.5em;
      color: #333;
    }
    .empty-state p {
      margin: 0.5em 0;
    }
    .empty-state code {
      background: #e0e0e0;
      padding: 2px 6px;
      border-radius: 3px;
    }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No nodes yet</h2>
    <p>This chart is empty.</p>
    <p>Load a starter chart using <code>bjf chart template</code></p>
    <p>Add nodes using <code>bjf node add</code></p>
  </div>
</body>
</html>`
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  {{.ScriptTag}}
  <style>
    * {
      box-sizing: border-box;
    }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      padding: 0;
      background: {{.Palette.Background}};
      color: {{.Palette.Text}};
    }
    header {
      padding: 10px 16px;
      font-weight: bold;
    }
    #cy {
      width: 100%;
      height: calc(100vh - 40px);
      background: {{.Palette.Board}};
    }
    #tooltip {
      position: absolute;
      display: none;
      background: white;
      color: #222;
      border: 1px solid #ccc;
      border-radius: 4px;
      padding: 8px 12px;
      box-shadow: 0 2px 8px rgba(0,0,0,0.15);
      max-width: 300px;
      font-size: 13px;
      z-index: 1000;
      pointer-events: none;
    }
    #tooltip .type {
      font-size: 10px;
      text-transform: uppercase;
      color: #888;
      margin-bottom: 4px;
    }
    #tooltip .label {
      font-weight: bold;
      margin-bottom: 4px;
    }
    #tooltip .detail {
      color: #555;
      margin: 2px 0;
    }
  </style>
</head>
<body>
  <header>{{.Title}}</header>
  <div id="cy"></div>
  <div id="tooltip"></div>
  <script>
    (function() {
      const graphData = {{.GraphJSON}};
      const layout = "{{.Layout}}";

      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: graphData,
        autoungrabify: true,
        style: [
          {
            selector: 'node',
            style: {
              'shape': 'round-rectangle',
              'width': '210px',
              'height': '88px',
              'label': 'data(label)',
              'color': '#fff',
              'font-size': '14px',
              'font-weight': 'bold',
              'text-valign': 'center',
              'text-halign': 'center',
              'text-wrap': 'wrap',
              'text-max-width': '190px',
              'border-width': 2,
              'border-color': 'rgba(255,255,255,0.25)'
            }
          },
          {
            selector: 'node[type="position"]',
            style: { 'background-color': '#3A6EA5' }
          },
          {
            selector: 'node[type="attack"]',
            style: { 'background-color': '#C0392B' }
          },
          {
            selector: 'node[type="reaction"]',
            style: { 'background-color': '#D68910' }
          },
          {
            selector: 'node[type="finish"]',
            style: { 'background-color': '#1E8449' }
          },
          {
            selector: 'edge',
            style: {
              'line-color': '{{.Palette.Edge}}',
              'target-arrow-color': '{{.Palette.Edge}}',
              'target-arrow-shape': 'triangle',
              'curve-style': 'straight',
              'source-endpoint': 'data(sourceEndpoint)',
              'target-endpoint': 'data(targetEndpoint)',
              'width': 2
            }
          },
          {
            selector: 'edge[?curved]',
            style: {
              'curve-style': 'unbundled-bezier',
              'control-point-distances': 60,
              'control-point-weights': 0.5
            }
          },
          {
            selector: 'node.highlighted',
            style: {
              'border-width': 4,
              'border-color': '#ff6b6b'
            }
          },
          {
            selector: 'node.dimmed',
            style: {
              'opacity': 0.3
            }
          },
          {
            selector: 'edge.dimmed',
            style: {
              'opacity': 0.2
            }
          }
        ],
        layout: {
          name: layout,
          animate: false,
          directed: true,
          spacingFactor: 1.2
        }
      });

      const tooltip = document.getElementById('tooltip');

      function showTooltip(evt, content) {
        tooltip.innerHTML = content;
        tooltip.style.display = 'block';
        const pos = evt.renderedPosition || evt.position;
        tooltip.style.left = (pos.x + 15) + 'px';
        tooltip.style.top = (pos.y + 55) + 'px';
      }

      function hideTooltip() {
        tooltip.style.display = 'none';
      }

      function getNodeTooltip(node) {
        const data = node.data();
        let html = '<div class="type">' + data.type + '</div>';
        html += '<div class="label">' + escapeHtml(data.label) + '</div>';
        if (data.notes) html += '<div class="detail">' + escapeHtml(data.notes) + '</div>';
        html += '<div class="detail">Connections: ' + data.connectionCount + '</div>';
        return html;
      }

      function escapeHtml(str) {
        if (!str) return '';
        return str.replace(/&/g, '&amp;')
                  .replace(/</g, '&lt;')
                  .replace(/>/g, '&gt;')
                  .replace(/"/g, '&quot;');
      }

      cy.on('mouseover', 'node', function(evt) {
        showTooltip(evt, getNodeTooltip(evt.target));
      });

      cy.on('mouseout', 'node', function() {
        hideTooltip();
      });

      // Click highlighting follows outgoing transitions
      cy.on('tap', 'node', function(evt) {
        const node = evt.target;
        cy.elements().removeClass('highlighted dimmed');
        const reachable = node.successors().add(node);
        reachable.nodes().addClass('highlighted');
        cy.elements().not(reachable).addClass('dimmed');
      });

      cy.on('tap', function(evt) {
        if (evt.target === cy) {
          cy.elements().removeClass('highlighted dimmed');
        }
      });
    })();
  </script>
</body>
</html>`

// cytoscapeJS holds the library source for offline mode. When empty the CDN
// script is used.
var cytoscapeJS string
