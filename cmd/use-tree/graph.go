package main

import (
	"context"
	"fmt"
	"os"
	"time"

	usetree "github.com/RobbyUitbeijerse/use-tree"
	"github.com/RobbyUitbeijerse/use-tree/internal/presentation/graph"
	"github.com/RobbyUitbeijerse/use-tree/pkg/adapters/file"
	"github.com/RobbyUitbeijerse/use-tree/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Export the tree visualization",
	Long:  `Loads the whole tree and outputs a Mermaid diagram (graph TD) of its structure.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger := setup(cmd)

		active, _ := cmd.Flags().GetString("active")
		if active == "" {
			active = cfg.Active
		}

		source, err := file.Load(args[0])
		if err != nil {
			fmt.Printf("Error loading %s: %v\n", args[0], err)
			os.Exit(1)
		}

		engine := usetree.New(source, usetree.WithLogger[file.Payload](logger))
		defer engine.Close()
		if active != "" {
			engine.SetActiveID(active)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		tree, err := loadAll(ctx, engine)
		if err != nil {
			fmt.Printf("Error resolving tree: %v\n", err)
			os.Exit(1)
		}

		var overlay *graph.Overlay
		if active != "" {
			overlay = &graph.Overlay{ActiveNode: active}
			tree.Walk(func(n *domain.ViewNode[file.Payload]) bool {
				if n.IsActiveTrail {
					overlay.TrailNodes = append(overlay.TrailNodes, n.ID)
				}
				return true
			})
		}

		fmt.Print(graph.GenerateMermaid(tree, overlay))
	},
}

// loadAll expands nodes level by level until no fetch discovers new ones.
func loadAll(ctx context.Context, engine *usetree.Engine[file.Payload]) (*domain.Tree[file.Payload], error) {
	seen := -1
	for {
		if err := engine.WaitIdle(ctx); err != nil {
			return nil, err
		}
		tree := engine.Tree()

		var ids []string
		tree.Walk(func(n *domain.ViewNode[file.Payload]) bool {
			ids = append(ids, n.ID)
			return true
		})
		if len(ids) == seen {
			return tree, nil
		}
		seen = len(ids)
		engine.SetAllExpanded(ids...)
	}
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("active", "", "Node whose trail to highlight")
}
