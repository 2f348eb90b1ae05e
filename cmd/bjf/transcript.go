package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/matsen/bjjflow/internal/graph"
	"github.com/matsen/bjjflow/internal/transcript"
	"github.com/matsen/bjjflow/internal/video"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(transcriptCmd)

	transcriptApplyCmd.Flags().String("source", "transcript file", "Source name shown in the summary")
	transcriptCmd.AddCommand(transcriptApplyCmd)
	transcriptCmd.AddCommand(transcriptBuildCmd)
	transcriptCmd.AddCommand(transcriptFetchCmd)
}

var transcriptCmd = &cobra.Command{
	Use:   "transcript",
	Short: "Generate charts from video transcripts",
	Long: `Generate the active chart from the spoken content of instructional videos.

Known techniques for the chart's position and flow type are matched by
keyword in the transcript, ordered by first mention and chained from the
position node. The chart's references are kept.`,
}

// SummaryResponse is the response for chart generation commands.
type SummaryResponse struct {
	Chart   string `json:"chart"`
	Summary string `json:"summary"`
	Nodes   int    `json:"nodes"`
}

func printSummary(s *session, summary string) error {
	if summary == "" {
		exitWithError(ExitDataError, "chart not rebuilt (user mode)")
	}
	if humanOutput {
		outputHuman("%s\n", summary)
		return nil
	}
	return outputJSON(SummaryResponse{
		Chart:   s.chartName(),
		Summary: summary,
		Nodes:   len(s.editor.View().Chart.Nodes),
	})
}

var transcriptApplyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Rebuild the active chart from transcript text",
	Long:  `Rebuild the active chart from a plain-text transcript ('-' reads stdin).`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readDocument(args[0])
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		source, _ := cmd.Flags().GetString("source")

		s := mustOpenSession()
		summary := s.editor.ApplyTranscript(string(data), source)
		s.mustSave()
		return printSummary(s, summary)
	},
}

var transcriptBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the active chart from its YouTube references",
	Long: `Fetch the captions of every YouTube reference of the active chart and
rebuild the chart from them. The chart is unchanged if no transcript could
be fetched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()
		refs := len(transcript.Sources(s.editor.View().Chart.References))

		timeout := time.Duration(refs+1) * 2 * httpTimeout()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		summary, err := s.editor.BuildFromTranscripts(ctx, newVideoClient())
		if err != nil {
			if errors.Is(err, transcript.ErrNoVideoReferences) {
				exitWithError(ExitDataError, "%v", err)
			}
			exitWithError(ExitNetwork, "%v", err)
		}
		s.mustSave()
		return printSummary(s, summary)
	},
}

var transcriptFetchCmd = &cobra.Command{
	Use:   "fetch <video-url-or-id>",
	Short: "Print the transcript of a YouTube video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id string
		if u, err := graph.NormalizeURL(args[0]); err == nil {
			id = video.YouTubeIDFromString(u)
		}
		if id == "" {
			id = strings.TrimSpace(args[0])
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*httpTimeout())
		defer cancel()
		text, err := newVideoClient().FetchTranscript(ctx, id)
		if err != nil {
			if video.IsNotFound(err) {
				exitWithError(ExitDataError, "no transcript for %s", id)
			}
			exitWithError(ExitNetwork, "%v", err)
		}

		if humanOutput {
			outputHuman("%s\n", text)
			return nil
		}
		return outputJSON(map[string]string{"video_id": id, "transcript": text})
	},
}
