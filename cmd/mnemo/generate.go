package main

import (
	"strings"

	"github.com/aretw0/mnemo/internal/cli"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [constraint]",
	Short: "Generate mnemonic sentences for a constraint",
	Long: `Generates sentences whose words start with the given prefixes, one per position.
Positions are separated by spaces or commas and "*" matches any word.

Output is rendered as markdown on a terminal and as plain lines otherwise.`,
	Example: `  mnemo generate --corpus book.txt "t w d"
  mnemo generate --corpus book.txt -n 5 --format json "m v e m"
  mnemo generate --corpus book.txt --babble 8`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, map[string]string{
			"count":          "count",
			"sentence-limit": "sentence_limit",
			"seed":           "seed",
			"min-word":       "filter.min_word_length",
			"stop-words":     "filter.stop_words",
		})
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		format, _ := cmd.Flags().GetString("format")
		babble, _ := cmd.Flags().GetInt("babble")
		err = cli.RunGenerate(ctx, app, cli.GenerateOptions{
			Constraint: strings.Join(args, " "),
			Count:      app.Config.Count,
			Format:     format,
			Babble:     babble,
			Out:        cmd.OutOrStdout(),
		})
		return cli.HandleExecutionError(err)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntP("count", "n", 1, "Number of sentences to generate")
	generateCmd.Flags().String("format", cli.FormatAuto, "Output format: auto, markdown, json or plain")
	generateCmd.Flags().Int("babble", 0, "Generate an unconstrained sentence of this many tokens")
	generateCmd.Flags().Int("sentence-limit", 0, "Train on at most this many corpus sentences (0 = all)")
	generateCmd.Flags().Uint64("seed", 0, "Seed for reproducible sampling (0 = random)")
	generateCmd.Flags().Int("min-word", 0, "Reject constrained words shorter than this")
	generateCmd.Flags().String("stop-words", "none", "Stop-word list rejected at constrained positions: none or english")
}
