package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/matsen/bjjflow/internal/config"
	"github.com/matsen/bjjflow/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: listen_addr from global config, or "+config.DefaultListenAddr+")")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workspace over a JSON HTTP API",
	Long: `Serve the workspace over a JSON HTTP API until interrupted.

Every mutation is saved to the workspace state. Routes:
  GET  /api/workspace                   full workspace document
  POST /api/workspace                   import a chart or workspace document
  GET  /api/chart                       active chart and editor state
  GET  /api/chart/export                active chart document
  GET  /api/chart/path                  random path through the active chart
  POST /api/commands                    apply an editor command
  POST /api/layout                      auto-layout the active chart
  POST /api/references/{id}/hydrate     look up a reference title
  POST /api/transcripts/build           rebuild the chart from transcripts
  GET  /healthz                         liveness
  GET  /metrics                         Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mustOpenSession()
		logger := newLogger()
		logger.Info("workspace loaded", "root", s.root, "source", s.source, "chart", s.chartName())

		addr := serveAddr
		if addr == "" {
			addr = config.GetListenAddr()
		}

		client := newVideoClient()
		srv := server.New(s.editor, addr,
			server.WithTitleFetcher(client),
			server.WithTranscriptFetcher(client),
			server.WithSaver(s.save),
			server.WithLogger(logger),
		)

		shutdownChan := make(chan os.Signal, 1)
		signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.Run()
		}()

		if humanOutput {
			outputHuman("Serving %s on http://%s\n", s.chartName(), addr)
		}

		select {
		case err := <-errChan:
			if err != nil {
				exitWithError(ExitNetwork, "%v", err)
			}
			return nil
		case <-shutdownChan:
		}

		srv.Shutdown()
		s.mustSave()
		return nil
	},
}
