package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Overridden with -ldflags at release time.
var version = "development"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the jobpilot version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s %s\n", app, version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
