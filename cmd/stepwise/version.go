package main

import (
	"fmt"

	"github.com/aretw0/stepwise"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of stepwise",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stepwise version %s\n", stepwise.Version)
		},
	}
}
