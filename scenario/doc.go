// Package scenario replays handle lifecycle scripts.
//
// A script names a set of fake resources and a sequence of create, clone,
// release and expect steps over named handles. Every resource gets a counting
// teardown, so a script states exactly when each resource must be freed:
//
//	name: three-aliases
//	resources:
//	  - name: window
//	    value: 0xABCD
//	steps:
//	  - {op: create,  handle: h1, resource: window}
//	  - {op: clone,   handle: h2, from: h1}
//	  - {op: release, handle: h2}
//	  - {op: release, handle: h1}
//	  - {op: expect,  resource: window, teardowns: 1}
//
// Handles live in a resource.Table and raw values go through a refc.Registry, so
// a script that creates a second cell for a live resource fails with a duplicate
// error instead of tearing it down twice.
package scenario
