package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wippyai/refcell/scenario"
)

var replayCmd = &cobra.Command{
	Use:   "replay [scenario.yaml]",
	Short: "Run a lifecycle scenario and print its event trace",
	Long: `Run a lifecycle scenario step by step. Without a file the built-in
three-alias scenario over resource 0xABCD is used. Remaining handles are
released at the end and a teardown summary is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadScenario(args)
		if err != nil {
			return err
		}
		return replay(os.Stdout, s, useColor())
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func loadScenario(args []string) (*scenario.Scenario, error) {
	if len(args) == 0 {
		return scenario.Default(), nil
	}
	return scenario.Load(args[0])
}

func newRunner(s *scenario.Scenario) *scenario.Runner {
	return scenario.NewRunner(s,
		scenario.WithLogger(logger),
		scenario.WithHandleOptions(cfg.HandleOptions()...),
	)
}

func replay(w io.Writer, s *scenario.Scenario, color bool) error {
	r := newRunner(s)

	name := s.Name
	if name == "" {
		name = "scenario"
	}
	fmt.Fprintln(w, paint(color, titleStyle, name))
	fmt.Fprintln(w)

	var runErr error
	for !r.Done() {
		res, err := r.Step()
		fmt.Fprint(w, formatResult(color, res))
		if err != nil {
			fmt.Fprintln(w, paint(color, errorStyle, "       error: "+err.Error()))
			runErr = err
			break
		}
	}

	if err := r.Close(); err != nil && runErr == nil {
		runErr = err
	}

	fmt.Fprintln(w)
	for _, line := range r.Summary() {
		fmt.Fprintln(w, line)
	}
	return runErr
}
