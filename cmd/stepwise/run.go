package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/aretw0/stepwise/pkg/pipeline"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <pipeline.yaml>",
		Short: "Run every recipe of a pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputsPath, _ := cmd.Flags().GetString("inputs")
			asJSON, _ := cmd.Flags().GetBool("json")
			stop, _ := cmd.Flags().GetBool("stop-on-failure")

			var opts []stepwise.Option
			if stop {
				opts = append(opts, stepwise.WithStopOnFailure())
			}
			p, s, err := a.load(args[0], opts...)
			if err != nil {
				return err
			}

			inputs := p.Inputs
			if inputsPath != "" {
				raw, err := readInputs(inputsPath)
				if err != nil {
					return err
				}
				decoded, err := pipeline.DecodeInputs(p.Steps, raw)
				if err != nil {
					return fmt.Errorf("inputs: %w", err)
				}
				inputs = merge(inputs, decoded)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			report, runErr := s.Run(ctx, inputs)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				rendered, err := tui.RenderReport(report)
				if err != nil {
					a.logger.Warn("render failed, printing markdown", "error", err)
					rendered = tui.ReportMarkdown(report)
				}
				fmt.Fprint(out, rendered)
				fmt.Fprintf(out, "status: %s\n", tui.Status(runErr == nil))
			}
			return runErr
		},
	}
	cmd.Flags().String("inputs", "", "YAML or JSON file with bound inputs, merged over the pipeline defaults")
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	cmd.Flags().Bool("stop-on-failure", false, "Abort the remaining recipes after a failure")
	return cmd
}

// readInputs parses a YAML file; JSON is a subset of YAML.
func readInputs(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inputs: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse inputs: %w", err)
	}
	return raw, nil
}

func merge(base, over map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
