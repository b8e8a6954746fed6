package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/mnemo/internal/cli"
	"github.com/aretw0/mnemo/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mnemo",
	Short: "mnemo generates sentence mnemonics from a text corpus",
	Long: `mnemo trains a markov chain on a text corpus and draws sentences whose words
start with the letters you ask for, e.g. "t w d" -> "the wild dog".`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("corpus", "", "Path to the training corpus")
	rootCmd.PersistentFlags().Int("order", 1, "Markov order (words per token)")
	rootCmd.PersistentFlags().String("cache", config.BackendFile, "Model cache backend: none, memory, file, redis or sqlite")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logs and build diagnostics")
}

// persistentBindings maps root flags to config keys.
var persistentBindings = map[string]string{
	"corpus": "corpus",
	"order":  "order",
	"cache":  "cache.backend",
}

// loadApp reads the config file, applies every changed flag named in bindings
// (flag name to config key) and wires the application.
func loadApp(cmd *cobra.Command, bindings map[string]string) (*cli.App, error) {
	overrides := map[string]any{}
	apply := func(flag, key string) {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			overrides[key] = f.Value.String()
		}
	}
	for flag, key := range persistentBindings {
		apply(flag, key)
	}
	for flag, key := range bindings {
		apply(flag, key)
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		overrides["log.level"] = "debug"
		overrides["diagnostics"] = true
	}

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, overrides)
	if err != nil {
		return nil, err
	}
	return cli.NewApp(cfg, os.Stderr)
}
