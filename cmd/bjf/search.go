package main

import (
	"fmt"

	"github.com/matsen/bjjflow/internal/storage"
	"github.com/spf13/cobra"
)

var (
	searchLimit    int
	searchLabel    string
	searchType     string
	searchPosition string
	searchFlow     string
)

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return (0 for no limit)")
	searchCmd.Flags().StringVarP(&searchLabel, "label", "l", "", "Search in labels only")
	searchCmd.Flags().StringVarP(&searchType, "type", "t", "", "Filter by node type: position, attack, reaction, finish")
	searchCmd.Flags().StringVar(&searchPosition, "position", "", "Filter by chart position (requires --flow)")
	searchCmd.Flags().StringVar(&searchFlow, "flow", "", "Filter by chart flow type (requires --position)")
	rootCmd.AddCommand(searchCmd)

	rootCmd.AddCommand(statsCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search nodes across every chart",
	Long: `Search node labels and notes across every chart of the workspace.

The search index is rebuilt from the workspace on every call and lives in
.bjjflow/cache/, so it never needs to be maintained by hand.

Examples:
  bjf search armbar
  bjf search --label "bridge" --type reaction
  bjf search choke --position back-control --flow attacks`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	filters := storage.SearchFilters{Label: searchLabel}
	if len(args) == 1 {
		filters.Query = args[0]
	}
	if searchType != "" {
		filters.Type = mustParseNodeType(searchType)
	}
	if (searchPosition == "") != (searchFlow == "") {
		exitWithError(ExitError, "--position and --flow must be used together")
	}
	if searchPosition != "" {
		filters.ChartKey = mustParseChart(searchPosition, searchFlow).String()
	}
	if filters == (storage.SearchFilters{}) {
		exitWithError(ExitError, "nothing to search: pass a query or a filter")
	}

	s := mustOpenSession()
	db := mustIndex(s)
	defer db.Close()

	hits, err := db.Search(filters, searchLimit)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}
	if hits == nil {
		hits = []storage.NodeHit{}
	}

	if !humanOutput {
		return outputJSON(hits)
	}
	if len(hits) == 0 {
		outputHuman("No matching nodes\n")
		return nil
	}
	outputHuman("Found %d node(s):\n\n", len(hits))
	for _, h := range hits {
		outputHuman("  %-24s %-14s [%-8s] %s\n", h.ChartKey, h.ID, h.Type, truncateString(h.Label, LabelMaxLen))
		if h.Notes != "" {
			outputHuman("  %-24s %s\n", "", truncateString(h.Notes, NotesMaxLen))
		}
	}
	return nil
}

// mustIndex opens the search database and loads every chart into it.
func mustIndex(s *session) *storage.DB {
	db := mustOpenDatabase(s.root)
	if _, err := db.Rebuild(s.editor.Charts()); err != nil {
		db.Close()
		exitWithError(ExitError, "indexing charts: %v", err)
	}
	return db
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count nodes and transitions per chart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()
		db := mustIndex(s)
		defer db.Close()

		stats, err := db.Stats()
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}
		if stats == nil {
			stats = []storage.ChartStat{}
		}
		if !humanOutput {
			return outputJSON(stats)
		}

		var nodes, edges int
		for _, st := range stats {
			outputHuman("%-24s %4d nodes  %4d transitions\n", st.ChartKey, st.Nodes, st.Edges)
			nodes += st.Nodes
			edges += st.Edges
		}
		outputHuman("%-24s %4d nodes  %4d transitions\n", "Total", nodes, edges)
		return nil
	},
}
