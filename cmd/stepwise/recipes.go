package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRecipesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipes <pipeline.yaml>",
		Short: "List the recipes and the inputs they need",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := a.load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				recipes := make([][]string, len(s.Recipes()))
				for i, r := range s.Recipes() {
					recipes[i] = r.Names()
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"inputs": s.Inputs(), "recipes": recipes})
			}

			inputs := s.Inputs()
			for _, k := range inputs.Keys() {
				fmt.Fprintf(out, "input %s: %s\n", k, inputs[k].Name())
			}
			for i, r := range s.Recipes() {
				fmt.Fprintf(out, "recipe %d: %s\n", i, strings.Join(r.Names(), " -> "))
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print as JSON")
	return cmd
}
