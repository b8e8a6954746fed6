package main

import (
	"os"

	"github.com/aretw0/mnemo/internal/cli"
	"github.com/aretw0/mnemo/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Loads the corpus and serves mnemonic generation as a JSON API over HTTP.
Build events stream from /v1/events and Prometheus metrics from /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, map[string]string{
			"port":    "server.http_port",
			"workers": "server.workers",
		})
		if err != nil {
			return err
		}
		defer app.Close()

		if tui.IsTerminal(os.Stderr) {
			tui.PrintBanner(os.Stderr)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.HandleExecutionError(cli.RunServe(ctx, app, app.Config.Server.HTTPPort))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Int("workers", 2, "Number of build workers")
}
