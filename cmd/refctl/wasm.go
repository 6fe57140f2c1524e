package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wippyai/refcell"
	"github.com/wippyai/refcell/errors"
	"github.com/wippyai/refcell/refc"
	"github.com/wippyai/refcell/wasmres"
)

var (
	wasmOrder []string
	wasmName  string
)

var wasmCmd = &cobra.Command{
	Use:   "wasm <module.wasm>",
	Short: "Share a wazero runtime across a compiled module and an instance",
	Long: `Compile and instantiate a core WebAssembly module on one runtime, then
release the three handles in the order given by --order. Derived handles keep
their parents open, so the teardown order printed is always instance, compiled
module, runtime, whatever the release order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wasm, err := readWasm(args[0])
		if err != nil {
			return err
		}
		return runWasm(cmd.Context(), os.Stdout, wasm, wasmName, wasmOrder, useColor())
	},
}

func init() {
	wasmCmd.Flags().StringSliceVar(&wasmOrder, "order", []string{"runtime", "compiled", "instance"},
		"Release order of the runtime, compiled and instance handles")
	wasmCmd.Flags().StringVar(&wasmName, "name", "main", "Module instance name")
	rootCmd.AddCommand(wasmCmd)
}

func runWasm(ctx context.Context, w io.Writer, wasm []byte, name string, order []string, color bool) error {
	if err := checkOrder(order); err != nil {
		return err
	}

	// Count 0 on release marks the start of a teardown, in the order closes happen.
	trace := func(label string) refc.Option {
		return refc.WithObserver(refc.ObserverFunc(func(e refc.Event) {
			if e.Type == refc.EventReleased && e.Count == 0 {
				fmt.Fprintln(w, paint(color, teardownStyle, "  teardown "+label))
			}
		}))
	}
	opts := func(label string) []refc.Option {
		return append(cfg.HandleOptions(), refc.WithName(label), trace(label))
	}

	rt := wasmres.NewRuntime(ctx, &wasmres.Config{
		Interpreter:      cfg.Wasm.Interpreter,
		MemoryLimitPages: cfg.Wasm.MemoryLimitPages,
	}, opts("runtime")...)

	compiled, err := wasmres.Compile(ctx, rt, wasm, opts("compiled")...)
	if err != nil {
		rt.Release()
		return err
	}

	inst, err := wasmres.Instantiate(ctx, rt, compiled, name, opts("instance")...)
	if err != nil {
		compiled.Release()
		rt.Release()
		return err
	}

	handles := map[string]refcell.Releaser{
		"runtime":  rt,
		"compiled": compiled,
		"instance": inst,
	}
	for _, label := range order {
		fmt.Fprintln(w, paint(color, opStyle, "release "+label))
		handles[label].Release()
	}
	return nil
}

func readWasm(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseWasm, errors.KindNotFound,
			pkgerrors.Wrapf(err, "read module %s", path), "cannot read module")
	}
	return data, nil
}

func checkOrder(order []string) error {
	seen := map[string]bool{}
	for _, label := range order {
		switch label {
		case "runtime", "compiled", "instance":
		default:
			return errors.InvalidInput(errors.PhaseWasm, fmt.Sprintf("unknown handle %q in --order", label))
		}
		if seen[label] {
			return errors.InvalidInput(errors.PhaseWasm, fmt.Sprintf("handle %q listed twice in --order", label))
		}
		seen[label] = true
	}
	if len(seen) != 3 {
		return errors.InvalidInput(errors.PhaseWasm,
			"--order must list runtime, compiled and instance, got "+strings.Join(order, ","))
	}
	return nil
}
