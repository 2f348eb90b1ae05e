package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matsen/bjjflow/internal/graph"
)

// setupTestDB creates a test database indexed with two small charts
func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	charts := map[string]graph.Chart{
		"Mount::Attacks": {
			Nodes: []graph.Node{
				{ID: "n1", Label: "Mount Control", Type: graph.TypePosition, Notes: "Establish base.", X: 50, Y: 170},
				{ID: "n2", Label: "Americana", Type: graph.TypeAttack, Notes: "Pin the wrist.", X: 320, Y: 80},
				{ID: "n3", Label: "Armbar", Type: graph.TypeAttack, Notes: "Swing the leg over the head.", X: 320, Y: 260},
				{ID: "n4", Label: "Tap", Type: graph.TypeFinish, X: 600, Y: 170},
			},
			Edges: []graph.Edge{
				graph.NewEdge("e1", "n1", "n2"),
				graph.NewEdge("e2", "n1", "n3"),
				graph.NewEdge("e3", "n3", "n4"),
			},
		},
		"Back::Attacks": {
			Nodes: []graph.Node{
				{ID: "n1", Label: "Back Control", Type: graph.TypePosition, X: 50, Y: 170},
				{ID: "n2", Label: "Armbar from Back", Type: graph.TypeAttack, Notes: "When the arm is exposed.", X: 320, Y: 170},
			},
			Edges: []graph.Edge{graph.NewEdge("e1", "n1", "n2")},
		},
		"Guard::Escapes": graph.EmptyChart(),
	}

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}

	if _, err := db.Rebuild(charts); err != nil {
		db.Close()
		t.Fatalf("Failed to rebuild DB: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return db, cleanup
}

func TestOpenDB_CreatesSchema(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	// Verify file exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("OpenDB() did not create database file")
	}
}

func TestDB_Rebuild(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 6 {
		t.Errorf("Count() = %d, want 6", count)
	}

	// Rebuilding replaces the previous contents
	n, err := db.Rebuild(map[string]graph.Chart{
		"Side Control::Attacks": {Nodes: []graph.Node{{ID: "a", Label: "Kimura", Type: graph.TypeAttack}}},
	})
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Rebuild() = %d, want 1", n)
	}
	count, _ = db.Count()
	if count != 1 {
		t.Errorf("Count() after second rebuild = %d, want 1", count)
	}
}

func TestDB_Rebuild_DuplicateIDsAcrossCharts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	hits, err := db.Search(SearchFilters{Query: "control"}, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("Search(control) returned %d hits, want 2", len(hits))
	}
	charts := map[string]bool{}
	for _, h := range hits {
		if h.ID != "n1" {
			t.Errorf("hit ID = %q, want n1", h.ID)
		}
		charts[h.ChartKey] = true
	}
	if !charts["Mount::Attacks"] || !charts["Back::Attacks"] {
		t.Errorf("hits came from %v, want both Mount and Back charts", charts)
	}
}

func TestDB_Search(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	tests := []struct {
		query string
		limit int
		want  int
	}{
		// Label search
		{"americana", 10, 1},
		{"armbar", 10, 2},

		// Notes search
		{"wrist", 10, 1},
		{"exposed", 10, 1},

		// Punctuation is quoted rather than parsed
		{"Back,", 10, 2},

		// No results
		{"nonexistent query xyz", 10, 0},

		// Limit
		{"armbar", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			hits, err := db.Search(SearchFilters{Query: tt.query}, tt.limit)
			if err != nil {
				t.Fatalf("Search(%q) error = %v", tt.query, err)
			}
			if len(hits) != tt.want {
				t.Errorf("Search(%q) returned %d hits, want %d", tt.query, len(hits), tt.want)
			}
		})
	}
}

func TestDB_SearchWithFilters(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	tests := []struct {
		name    string
		filters SearchFilters
		wantIDs []string
	}{
		{
			name:    "type only",
			filters: SearchFilters{Type: graph.TypeFinish},
			wantIDs: []string{"n4"},
		},
		{
			name:    "chart only",
			filters: SearchFilters{ChartKey: "Back::Attacks"},
			wantIDs: []string{"n1", "n2"},
		},
		{
			name:    "query and chart",
			filters: SearchFilters{Query: "armbar", ChartKey: "Mount::Attacks"},
			wantIDs: []string{"n3"},
		},
		{
			name:    "label field excludes notes",
			filters: SearchFilters{Label: "leg"},
			wantIDs: nil,
		},
		{
			name:    "label field",
			filters: SearchFilters{Label: "tap"},
			wantIDs: []string{"n4"},
		},
		{
			name:    "query and type",
			filters: SearchFilters{Query: "armbar", Type: graph.TypePosition},
			wantIDs: nil,
		},
		{
			name:    "empty chart",
			filters: SearchFilters{ChartKey: "Guard::Escapes"},
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := db.Search(tt.filters, 0)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(hits) != len(tt.wantIDs) {
				t.Fatalf("Search() returned %d hits, want %d", len(hits), len(tt.wantIDs))
			}
			for i, h := range hits {
				if h.ID != tt.wantIDs[i] {
					t.Errorf("hit[%d].ID = %q, want %q", i, h.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestDB_SearchHitFields(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	hits, err := db.Search(SearchFilters{Query: "americana"}, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("Search() returned %d hits, want 1", len(hits))
	}
	h := hits[0]
	if h.ChartKey != "Mount::Attacks" || h.Type != graph.TypeAttack || h.Notes != "Pin the wrist." {
		t.Errorf("hit = %+v", h)
	}
	if h.X != 320 || h.Y != 80 {
		t.Errorf("hit position = (%v, %v), want (320, 80)", h.X, h.Y)
	}
}

func TestDB_Stats(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	// Charts with no nodes or edges have no rows
	want := []ChartStat{
		{ChartKey: "Back::Attacks", Nodes: 2, Edges: 1},
		{ChartKey: "Mount::Attacks", Nodes: 4, Edges: 3},
	}
	if len(stats) != len(want) {
		t.Fatalf("Stats() returned %d rows, want %d", len(stats), len(want))
	}
	for i := range want {
		if stats[i] != want[i] {
			t.Errorf("stats[%d] = %+v, want %+v", i, stats[i], want[i])
		}
	}
}

func TestDB_EmptyRebuild(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := OpenDB(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	n, err := db.Rebuild(nil)
	if err != nil {
		t.Fatalf("Rebuild(nil) error = %v", err)
	}
	if n != 0 {
		t.Errorf("Rebuild(nil) = %d, want 0", n)
	}

	hits, err := db.Search(SearchFilters{Query: "anything"}, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Search() on empty index returned %d hits", len(hits))
	}
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", "simple"},
		{"two words", "two words"},
		{"  spaces  ", "spaces"},               // Trimmed
		{"", ""},                               // Empty stays empty
		{`with "quotes"`, `"with ""quotes"""`}, // Quotes escaped
		{"near-side", `"near-side"`},           // Hyphen quoted
		{"term:colon", `"term:colon"`},         // Colon quoted
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := prepareFTSQuery(tt.input)
			if got != tt.want {
				t.Errorf("prepareFTSQuery(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDB_Close(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}

	// Close should not error
	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	// Operations after close should fail
	_, err = db.Count()
	if err == nil {
		t.Error("Operations after Close() should fail")
	}
}
