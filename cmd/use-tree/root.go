package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "use-tree",
	Short: "use-tree materializes lazily loaded trees",
	Long:  `use-tree loads hierarchical data on demand and renders it as an expandable tree, from a YAML file or over HTTP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "use-tree.yaml", "Path to the config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
