package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/mnemo"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mnemo",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mnemo version %s\n", strings.TrimSpace(mnemo.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
