// Package wasmres exposes wazero runtimes, compiled modules and module
// instances as shared handles.
//
// Each wazero object is freed by calling Close against it, so it fits the
// handle model directly. Derived resources pin the handles they were derived
// from: a compiled module holds a share of its runtime, and an instance holds a
// share of both. Releasing handles in any order therefore closes instances
// before modules and modules before the runtime.
//
//	rt := wasmres.NewRuntime(ctx, nil)
//	mod, err := wasmres.Compile(ctx, rt, wasmBytes)
//	rt.Release() // runtime stays open while mod is live
//	mod.Release() // closes the module, then the runtime
package wasmres

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/refcell/errors"
	"github.com/wippyai/refcell/refc"
)

// Config holds configuration for runtime creation
type Config struct {
	// Interpreter selects the interpreter instead of the compiler.
	Interpreter bool

	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	MemoryLimitPages uint32
}

type closer interface {
	Close(context.Context) error
}

// NewRuntime creates a wazero runtime owned by the returned handle.
func NewRuntime(ctx context.Context, cfg *Config, opts ...refc.Option) *refc.Handle[wazero.Runtime] {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil {
		if cfg.Interpreter {
			runtimeCfg = wazero.NewRuntimeConfigInterpreter()
		}
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
	}

	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	closeCtx := context.WithoutCancel(ctx)
	return refc.Create(rt, func(r wazero.Runtime) {
		closeQuietly(closeCtx, "runtime", r)
	}, opts...)
}

// Compile compiles wasm on the runtime behind rt. The returned handle keeps rt's
// runtime open until it is torn down.
func Compile(ctx context.Context, rt *refc.Handle[wazero.Runtime], wasm []byte, opts ...refc.Option) (*refc.Handle[wazero.CompiledModule], error) {
	if !rt.Valid() {
		return nil, errors.InvalidResource(errors.PhaseWasm, rt.Name())
	}

	compiled, err := rt.Raw().CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Instantiation(errors.PhaseWasm, rt.Name(), err)
	}

	parent := rt.Clone()
	closeCtx := context.WithoutCancel(ctx)
	return refc.Create(compiled, func(m wazero.CompiledModule) {
		closeQuietly(closeCtx, "compiled module", m)
		parent.Release()
	}, opts...), nil
}

// Instantiate instantiates compiled on rt's runtime under name. The returned
// handle keeps both parents open until it is torn down.
func Instantiate(ctx context.Context, rt *refc.Handle[wazero.Runtime], compiled *refc.Handle[wazero.CompiledModule], name string, opts ...refc.Option) (*refc.Handle[api.Module], error) {
	if !rt.Valid() {
		return nil, errors.InvalidResource(errors.PhaseWasm, rt.Name())
	}
	if !compiled.Valid() {
		return nil, errors.InvalidResource(errors.PhaseWasm, compiled.Name())
	}

	mod, err := rt.Raw().InstantiateModule(ctx, compiled.Raw(), wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, errors.Instantiation(errors.PhaseWasm, name, err)
	}

	parentRT := rt.Clone()
	parentMod := compiled.Clone()
	closeCtx := context.WithoutCancel(ctx)
	return refc.Create(mod, func(m api.Module) {
		closeQuietly(closeCtx, "module instance", m)
		parentMod.Release()
		parentRT.Release()
	}, opts...), nil
}

// closeQuietly closes c and logs a failure. Teardown has no error channel.
func closeQuietly(ctx context.Context, what string, c closer) {
	if c == nil {
		return
	}
	if err := c.Close(ctx); err != nil {
		refc.Logger().Warn("close failed", zap.String("resource", what), zap.Error(err))
		return
	}
	refc.Logger().Debug("closed", zap.String("resource", what))
}
