package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gobuilder"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gobuilder %s\n", gobuilder.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
