package main

import (
	"strings"

	"github.com/aretw0/mnemo/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [constraint]",
	Short: "Check the invariants of the model built for a constraint",
	Long: `Builds the model for a constraint and checks that every layer is stochastic and
arc-consistent, that every token satisfies its position and that sampled sentences
only follow existing edges.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		samples, _ := cmd.Flags().GetInt("samples")
		return cli.RunValidate(cmd.Context(), app, strings.Join(args, " "), samples, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Int("samples", 100, "Number of sampled sentences to check")
}
