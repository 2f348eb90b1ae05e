// Package storage persists the workspace state file and maintains the
// ephemeral SQLite index used to search nodes across every chart.
package storage

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/matsen/bjjflow/internal/graph"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectNodeFields contains the standard field list for SELECT queries.
const selectNodeFields = `n.chart_key, n.id, n.label, n.type, n.notes, n.x, n.y`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Nodes of every chart; ids are only unique per chart, and not even
		-- that for hand-edited files, so rows are keyed by rowid.
		CREATE TABLE IF NOT EXISTS nodes (
			chart_key TEXT NOT NULL,
			id TEXT NOT NULL,
			label TEXT NOT NULL,
			type TEXT NOT NULL,
			notes TEXT NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_chart ON nodes(chart_key);
		CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(type);

		CREATE TABLE IF NOT EXISTS edges (
			chart_key TEXT NOT NULL,
			id TEXT NOT NULL,
			from_id TEXT NOT NULL,
			to_id TEXT NOT NULL,
			curved INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_edges_chart ON edges(chart_key);

		-- Full-text search over labels and notes; rowid matches nodes.rowid
		CREATE VIRTUAL TABLE IF NOT EXISTS nodes_fts USING fts5(
			label,
			notes
		);
	`

	_, err := db.Exec(schema)
	return err
}

// Rebuild clears the database and indexes every chart. It returns the number
// of nodes indexed.
func (d *DB) Rebuild(charts map[string]graph.Chart) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"nodes", "edges", "nodes_fts"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return 0, fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	nodeStmt, err := tx.Prepare(`
		INSERT INTO nodes (chart_key, id, label, type, notes, x, y)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing nodes insert: %w", err)
	}
	defer nodeStmt.Close()

	ftsStmt, err := tx.Prepare(`INSERT INTO nodes_fts (rowid, label, notes) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	edgeStmt, err := tx.Prepare(`
		INSERT INTO edges (chart_key, id, from_id, to_id, curved)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing edges insert: %w", err)
	}
	defer edgeStmt.Close()

	keys := make([]string, 0, len(charts))
	for k := range charts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	count := 0
	for _, key := range keys {
		c := charts[key]
		for _, n := range c.Nodes {
			res, err := nodeStmt.Exec(key, n.ID, n.Label, string(n.Type), n.Notes, n.X, n.Y)
			if err != nil {
				return 0, fmt.Errorf("inserting node %s/%s: %w", key, n.ID, err)
			}
			rowID, err := res.LastInsertId()
			if err != nil {
				return 0, fmt.Errorf("reading rowid for %s/%s: %w", key, n.ID, err)
			}
			if _, err := ftsStmt.Exec(rowID, n.Label, n.Notes); err != nil {
				return 0, fmt.Errorf("inserting fts for %s/%s: %w", key, n.ID, err)
			}
			count++
		}
		for _, e := range c.Edges {
			if _, err := edgeStmt.Exec(key, e.ID, e.From, e.To, e.Curved); err != nil {
				return 0, fmt.Errorf("inserting edge %s/%s: %w", key, e.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing index: %w", err)
	}
	return count, nil
}

// NodeHit is an indexed node together with the chart it belongs to.
type NodeHit struct {
	ChartKey string         `json:"chart"`
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Type     graph.NodeType `json:"type"`
	Notes    string         `json:"notes,omitempty"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
}

// SearchFilters contains optional filters for Search. Empty fields are ignored.
type SearchFilters struct {
	Query    string         // FTS query over label and notes
	Label    string         // FTS query over label only
	Type     graph.NodeType // exact node type
	ChartKey string         // exact chart key
}

// Search returns nodes matching ALL specified filters, best FTS matches first.
func (d *DB) Search(filters SearchFilters, limit int) ([]NodeHit, error) {
	var ftsTerms []string
	var args []any

	if q := prepareFTSQuery(filters.Query); q != "" {
		ftsTerms = append(ftsTerms, q)
	}
	if q := prepareFTSQuery(filters.Label); q != "" {
		ftsTerms = append(ftsTerms, "label:"+q)
	}

	var query string
	if len(ftsTerms) > 0 {
		query = `SELECT ` + selectNodeFields + `
			FROM nodes_fts JOIN nodes n ON n.rowid = nodes_fts.rowid
			WHERE nodes_fts MATCH ?`
		args = append(args, strings.Join(ftsTerms, " AND "))
	} else {
		query = `SELECT ` + selectNodeFields + ` FROM nodes n WHERE 1=1`
	}

	if filters.Type != "" {
		query += " AND n.type = ?"
		args = append(args, string(filters.Type))
	}
	if filters.ChartKey != "" {
		query += " AND n.chart_key = ?"
		args = append(args, filters.ChartKey)
	}

	if len(ftsTerms) > 0 {
		query += " ORDER BY nodes_fts.rank"
	} else {
		query += " ORDER BY n.rowid"
	}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	var hits []NodeHit
	for rows.Next() {
		var h NodeHit
		var typ string
		if err := rows.Scan(&h.ChartKey, &h.ID, &h.Label, &typ, &h.Notes, &h.X, &h.Y); err != nil {
			return nil, err
		}
		h.Type = graph.NodeType(typ)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// ChartStat summarises one indexed chart.
type ChartStat struct {
	ChartKey string `json:"chart"`
	Nodes    int    `json:"nodes"`
	Edges    int    `json:"edges"`
}

// Stats returns node and edge counts per chart, ordered by chart key.
func (d *DB) Stats() ([]ChartStat, error) {
	rows, err := d.db.Query(`
		SELECT chart_key, SUM(nodes), SUM(edges) FROM (
			SELECT chart_key, COUNT(*) AS nodes, 0 AS edges FROM nodes GROUP BY chart_key
			UNION ALL
			SELECT chart_key, 0 AS nodes, COUNT(*) AS edges FROM edges GROUP BY chart_key
		) GROUP BY chart_key ORDER BY chart_key
	`)
	if err != nil {
		return nil, fmt.Errorf("counting charts: %w", err)
	}
	defer rows.Close()

	var stats []ChartStat
	for rows.Next() {
		var s ChartStat
		if err := rows.Scan(&s.ChartKey, &s.Nodes, &s.Edges); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Count returns the total number of indexed nodes.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM nodes").Scan(&count)
	return count, err
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,'") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
