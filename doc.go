// Package refcell provides shared-ownership handles for resources that are
// allocated and freed by external functions rather than by Go.
//
// A raw window, rendering context, pixel surface, GPU texture or wazero runtime
// is wrapped once, together with the function that frees it. Every alias of the
// handle counts as an owner, and the free function runs exactly once when the
// last owner releases.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	refcell/             Root package with the Releaser interface
//	├── refc/            Cell/Handle core: refcount, teardown, registry
//	├── resource/        Owning handle table that scopes application lifetime
//	├── scenario/        YAML lifecycle scripts and a step runner
//	├── wasmres/         wazero runtimes, modules and instances as handles
//	├── config/          YAML configuration and logger construction
//	├── errors/          Structured error types
//	└── cmd/refctl/      CLI: replay, interactive TUI, wasm demo
//
// # Quick Start
//
//	win := refc.Create(sdl.CreateWindow(640, 480), sdl.DestroyWindow)
//	defer win.Release()
//
//	ren := refc.Create(sdl.CreateRenderer(win.Raw()), sdl.DestroyRenderer)
//	defer ren.Release()
//
//	shared := win.Clone() // count 2
//	shared.Release()      // count 1, window still alive
//
// Handles are not safe for concurrent use. All Clone and Release calls on
// handles aliasing one resource must happen on a single goroutine.
package refcell
