package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/matsen/bjjflow/internal/config"
	"github.com/matsen/bjjflow/internal/editor"
	"github.com/matsen/bjjflow/internal/graph"
	"github.com/matsen/bjjflow/internal/video"
	"github.com/spf13/cobra"
)

func init() {
	// Load .env file if present (for BJF_YOUTUBE_RATE_LIMIT and friends)
	_ = godotenv.Load()

	rootCmd.AddCommand(refCmd)

	refAddCmd.Flags().StringP("title", "t", "", "Reference title (default: looked up from the video host)")
	refAddCmd.Flags().Bool("no-fetch", false, "Do not look up a missing title")
	refCmd.AddCommand(refAddCmd)

	refCmd.AddCommand(refListCmd)
	refCmd.AddCommand(refRemoveCmd)
	refCmd.AddCommand(refHydrateCmd)
}

var refCmd = &cobra.Command{
	Use:   "ref",
	Short: "Manage video and article references of the active chart",
}

// newVideoClient builds the video metadata client from global configuration.
func newVideoClient() *video.Client {
	return video.NewClient(
		video.WithRateLimit(config.GetYouTubeRateLimit()),
		video.WithTimeout(httpTimeout()),
	)
}

// httpTimeout is the configured per-request timeout, or the video client's
// default when none is set.
func httpTimeout() time.Duration {
	if d := config.GetHTTPTimeout(); d > 0 {
		return d
	}
	return video.DefaultTimeout
}

// HydrateResult reports one title lookup.
type HydrateResult struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Error string `json:"error,omitempty"`
}

// hydrate looks up the title of each reference and saves the workspace once.
func hydrate(ctx context.Context, s *session, ids []string) []HydrateResult {
	client := newVideoClient()
	results := make([]HydrateResult, 0, len(ids))
	for _, id := range ids {
		title, err := s.editor.HydrateTitle(ctx, id, client)
		res := HydrateResult{ID: id, Title: title}
		if err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	s.mustSave()
	return results
}

var refAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Attach a link to the active chart",
	Long: `Attach a link to the active chart. URLs must be absolute http or https links.

When no title is given, YouTube and Vimeo titles are looked up through the
provider's oEmbed endpoint; other links are titled with their hostname.

Examples:
  bjf ref add https://youtu.be/dQw4w9WgXcQ
  bjf ref add https://example.com/mount-escapes --title "Mount escape notes"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		noFetch, _ := cmd.Flags().GetBool("no-fetch")

		s := mustOpenSession()
		res := s.mustApply(editor.AddReference{Title: title, URL: args[0]})
		if res.ID == "" {
			exitWithError(ExitDataError, "reference not added (user mode)")
		}

		if res.NeedsTitle && !noFetch {
			ctx, cancel := context.WithTimeout(context.Background(), 2*httpTimeout())
			defer cancel()
			hydrate(ctx, s, []string{res.ID})
		}

		ref := mustFindReference(s, res.ID)
		if humanOutput {
			outputHuman("Added reference %s: %s\n", ref.ID, ref.Title)
			return nil
		}
		return outputJSON(ref)
	},
}

// ReferenceListing is a reference with its display preview.
type ReferenceListing struct {
	graph.Reference
	Preview video.Preview `json:"preview"`
}

var refListCmd = &cobra.Command{
	Use:   "list",
	Short: "List references with their video previews",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()
		refs := s.editor.View().Chart.References

		listings := make([]ReferenceListing, 0, len(refs))
		for _, r := range refs {
			listings = append(listings, ReferenceListing{Reference: r, Preview: video.PreviewFor(r)})
		}
		if !humanOutput {
			return outputJSON(listings)
		}
		if len(listings) == 0 {
			outputHuman("No references in %s\n", s.chartName())
			return nil
		}
		for _, l := range listings {
			outputHuman("%-14s %s (%s)\n", l.ID, l.Preview.DisplayTitle, l.Preview.Subtitle)
			outputHuman("               %s\n", l.URL)
		}
		return nil
	},
}

var refRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Detach a reference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()
		mustFindReference(s, args[0])
		s.mustApply(editor.RemoveReference{ID: args[0]})
		printStatus(StatusResponse{Status: "removed", Chart: s.chartName(), ID: args[0]}, "Removed reference "+args[0])
		return nil
	},
}

var refHydrateCmd = &cobra.Command{
	Use:   "hydrate [id]...",
	Short: "Look up missing reference titles",
	Long: `Look up the titles of untitled references, or of the given ids.
If the lookup fails the reference is titled with its hostname.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()
		ids := args
		if len(ids) == 0 {
			ids = s.editor.PendingTitles()
		}
		for _, id := range ids {
			mustFindReference(s, id)
		}

		timeout := time.Duration(len(ids)+1) * httpTimeout()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		results := hydrate(ctx, s, ids)

		var failed int
		for _, r := range results {
			if r.Error != "" {
				failed++
			}
		}
		if humanOutput {
			for _, r := range results {
				switch {
				case r.Error != "" && r.Title != "":
					outputHuman("%s: %s (lookup failed: %s)\n", r.ID, r.Title, r.Error)
				case r.Error != "":
					outputHuman("%s: lookup failed: %s\n", r.ID, r.Error)
				case r.Title != "":
					outputHuman("%s: %s\n", r.ID, r.Title)
				}
			}
			outputHuman("Hydrated %d reference(s), %d failed\n", len(results)-failed, failed)
		} else if err := outputJSON(results); err != nil {
			return err
		}
		if failed > 0 && failed == len(results) {
			os.Exit(ExitNetwork)
		}
		return nil
	},
}

// mustFindReference returns a reference of the active chart, exits if it is missing.
func mustFindReference(s *session, id string) graph.Reference {
	for _, r := range s.editor.View().Chart.References {
		if r.ID == id {
			return r
		}
	}
	exitWithError(ExitDataError, "reference %q not found in %s", id, s.chartName())
	return graph.Reference{}
}
