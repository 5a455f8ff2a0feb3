package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/adapters/process"
	"github.com/aretw0/stepwise/pkg/pipeline"
	"github.com/spf13/cobra"
)

// app carries state shared by the subcommands.
type app struct {
	logger   *slog.Logger
	commands string
}

func newRootCmd() *cobra.Command {
	a := &app{logger: logging.NewNop()}

	root := &cobra.Command{
		Use:           "stepwise",
		Short:         "Stepwise schedules declarative steps",
		Long:          `Stepwise reads a pipeline of typed steps, proves which orderings are sound and runs them while enforcing each step's contract.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			levelFlag, _ := cmd.Flags().GetString("log-level")
			formatFlag, _ := cmd.Flags().GetString("log-format")

			level, err := logging.ParseLevel(levelFlag)
			if err != nil {
				return err
			}
			format, err := logging.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			a.logger = logging.NewWithWriter(cmd.ErrOrStderr(), level, format)
			a.commands, _ = cmd.Flags().GetString("commands")
			return nil
		},
	}

	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	root.PersistentFlags().String("commands", "", "YAML or JSON file binding steps to local commands")

	root.AddCommand(
		newValidateCmd(a),
		newRecipesCmd(a),
		newGraphCmd(a),
		newRunCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load reads a pipeline file and builds its scheduler.
func (a *app) load(path string, opts ...stepwise.Option) (*pipeline.Pipeline, *stepwise.Scheduler, error) {
	p, err := pipeline.Load(path, nil)
	if err != nil {
		return nil, nil, err
	}
	base := []stepwise.Option{stepwise.WithLogger(a.logger), stepwise.WithName(p.Name)}
	if a.commands != "" {
		cmds, err := process.LoadCommands(a.commands)
		if err != nil {
			return p, nil, err
		}
		base = append(base, stepwise.WithInvoker(process.NewInvoker(
			process.WithCommands(cmds),
			process.WithBaseDir(filepath.Dir(path)),
		)))
	}
	opts = append(base, opts...)
	s, err := stepwise.New(p.Steps, opts...)
	if err != nil {
		return p, nil, err
	}
	return p, s, nil
}
