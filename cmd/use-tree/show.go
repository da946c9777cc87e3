package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	usetree "github.com/RobbyUitbeijerse/use-tree"
	"github.com/RobbyUitbeijerse/use-tree/internal/cli"
	"github.com/RobbyUitbeijerse/use-tree/internal/logging"
	"github.com/RobbyUitbeijerse/use-tree/pkg/adapters/file"
	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the materialized tree of a YAML data file",
	Long:  `Loads the tree described by the given YAML file, resolves the requested expansions and active trail, and prints the visible rows.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger := setup(cmd)

		active, _ := cmd.Flags().GetString("active")
		if active == "" {
			active = cfg.Active
		}
		expand, _ := cmd.Flags().GetStringSlice("expand")
		if len(expand) == 0 {
			expand = cfg.Expand
		}
		noColor, _ := cmd.Flags().GetBool("no-color")

		source, err := file.Load(args[0])
		if err != nil {
			fmt.Printf("Error loading %s: %v\n", args[0], err)
			os.Exit(1)
		}

		opts := []usetree.Option[file.Payload]{usetree.WithLogger[file.Payload](logger)}
		if cfg.LoadingTransitionMs > 0 {
			opts = append(opts, usetree.WithLoadingTransition[file.Payload](
				time.Duration(cfg.LoadingTransitionMs)*time.Millisecond))
		}
		engine := usetree.New(source, opts...)
		defer engine.Close()

		if active != "" {
			engine.SetActiveID(active)
		}
		for _, id := range expand {
			engine.SetExpanded(id, true)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		if err := engine.WaitIdle(ctx); err != nil {
			fmt.Printf("Error resolving tree: %v\n", err)
			os.Exit(1)
		}

		color := !noColor && !cfg.NoColor && term.IsTerminal(int(os.Stdout.Fd()))
		printer := cli.NewPrinter(os.Stdout,
			cli.WithColor[file.Payload](color),
			cli.WithLabel(nodeLabel),
		)
		if err := printer.Print(engine.Tree()); err != nil {
			fmt.Printf("Error printing tree: %v\n", err)
			os.Exit(1)
		}
	},
}

// nodeLabel prefers the payload's title over the raw id.
func nodeLabel(n *domain.ViewNode[file.Payload]) string {
	if title, ok := n.Data["title"].(string); ok && title != "" {
		return title
	}
	return n.ID
}

// setup loads the config file and builds the command logger.
func setup(cmd *cobra.Command) (cli.Config, *slog.Logger) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := cli.LoadConfig(cfgPath, cmd.Flags().Changed("config"))
	if err != nil {
		fmt.Printf("Error reading config: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	return cfg, logging.New(level)
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().String("active", "", "Node to activate before printing")
	showCmd.Flags().StringSlice("expand", nil, "Nodes to force open")
	showCmd.Flags().Bool("no-color", false, "Disable terminal styling")
}
