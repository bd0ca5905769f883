package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/cartsync"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cartsync",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cartsync version %s\n", strings.TrimSpace(cartsync.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
