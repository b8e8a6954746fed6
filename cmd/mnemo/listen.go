package main

import (
	"os"

	"github.com/aretw0/mnemo/internal/cli"
	"github.com/aretw0/mnemo/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Start the TCP socket server",
	Long: `Loads the corpus and answers one constraint per TCP connection with
"sent1 :: sent2 $$$ pruned by constraint $$$ pruned by arc consistency".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, map[string]string{
			"port":    "server.socket_port",
			"workers": "server.workers",
			"buffer":  "server.buffer_size",
			"count":   "count",
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
		return cli.HandleExecutionError(cli.RunListen(ctx, app, app.Config.Server.SocketPort))
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)
	listenCmd.Flags().IntP("port", "p", 7799, "Port to listen on")
	listenCmd.Flags().Int("workers", 2, "Number of build workers")
	listenCmd.Flags().Int("buffer", 4096, "Maximum request size in bytes")
	listenCmd.Flags().IntP("count", "n", 1, "Sentences per reply")
}
