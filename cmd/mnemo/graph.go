package main

import (
	"strings"

	"github.com/aretw0/mnemo/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [constraint]",
	Short: "Export the constrained layers as a Mermaid diagram",
	Long:  `Builds the model for a constraint and outputs a Mermaid diagram (graph LR) of its normalized layers.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		highlight, _ := cmd.Flags().GetBool("highlight")
		return cli.RunGraph(cmd.Context(), app, strings.Join(args, " "), highlight, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("highlight", false, "Highlight one sampled sentence")
}
