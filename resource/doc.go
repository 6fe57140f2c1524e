// Package resource provides an owning handle table that scopes the lifetime of
// a group of resources.
//
// A Table replaces a process-wide application object: the caller creates it,
// passes it to the collaborators that need it, and closes it at the end of the
// program. Each entry is one share of ownership, typically a *refc.Handle.
//
// # Handle Table
//
// The Table maps integer IDs to releasers:
//
//	table := resource.NewTable()
//	defer table.Close()
//
//	// Insert an owner, get an ID
//	id := resource.Put(table, "window", win)
//
//	// Retrieve the typed handle
//	win, ok := resource.Lookup[*sdl.Window](table, id)
//
//	// Give a second collaborator its own share
//	shared, ok := resource.Share[*sdl.Window](table, id)
//
//	// Release one share
//	table.Remove(id)
//
// # Kinds
//
// Entries are labelled with a kind string and can be fetched with a kind check:
//
//	value, ok := table.GetTyped(id, "window")   // ok
//	value, ok := table.GetTyped(id, "texture")  // !ok
//
// # Observers
//
// Register observers to track table events:
//
//	table.Subscribe(observer)
//
// # Teardown Order
//
// Close and Clear release the remaining entries in reverse insertion order, so a
// renderer inserted after its window is released first. The table's bookkeeping
// is safe for concurrent use; the handles it stores are not, so releases of
// aliases of one resource must still happen on one goroutine.
package resource
