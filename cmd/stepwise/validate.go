package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <pipeline.yaml>",
		Short: "Check that a pipeline admits a sound ordering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, s, err := a.load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d steps, %d recipes\n", displayName(p.Name, args[0]), len(s.Steps()), len(s.Recipes()))
			return nil
		},
	}
}

func displayName(name, path string) string {
	if name != "" {
		return name
	}
	return path
}
