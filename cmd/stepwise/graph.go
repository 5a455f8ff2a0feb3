package main

import (
	"fmt"

	"github.com/aretw0/stepwise/internal/presentation/graph"
	"github.com/spf13/cobra"
)

func newGraphCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <pipeline.yaml>",
		Short: "Export the step graph as a Mermaid diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := a.load(args[0])
			if err != nil {
				return err
			}

			var overlay *graph.Overlay
			if idx, _ := cmd.Flags().GetInt("recipe"); idx >= 0 {
				recipes := s.Recipes()
				if idx >= len(recipes) {
					return fmt.Errorf("recipe %d out of range (%d recipes)", idx, len(recipes))
				}
				overlay = &graph.Overlay{Recipe: recipes[idx].Names()}
			}

			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(s.Steps(), s.Inspect(), overlay))
			return nil
		},
	}
	cmd.Flags().Int("recipe", -1, "Highlight the recipe with this index")
	return cmd
}
