package main

import (
	"fmt"

	"github.com/aretw0/mnemo/internal/cli"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage trained models in the cache",
}

var cacheLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List cached models",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		keys, err := cli.ListCache(cmd.Context(), app)
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

var cacheRmCmd = &cobra.Command{
	Use:   "rm [key]",
	Short: "Remove a cached model (defaults to the current corpus)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.Close()

		var key string
		if len(args) > 0 {
			key = args[0]
		}
		key, err = cli.EvictCache(cmd.Context(), app, key)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", key)
		return nil
	},
}

var cacheWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Train the corpus into the cache ahead of time",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd, map[string]string{"sentence-limit": "sentence_limit"})
		if err != nil {
			return err
		}
		defer app.Close()

		key, err := cli.WarmCache(cmd.Context(), app)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cached %s\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheLsCmd, cacheRmCmd, cacheWarmCmd)
	cacheWarmCmd.Flags().Int("sentence-limit", 0, "Train on at most this many corpus sentences (0 = all)")
}
