package main

import (
	"fmt"
	"strings"

	usetree "github.com/RobbyUitbeijerse/use-tree"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of use-tree",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("use-tree version %s\n", strings.TrimSpace(usetree.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
