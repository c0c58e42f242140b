// Package resource maps integer handles to live reflected objects.
//
// Bindings that cannot hold Go pointers (WebAssembly guests, scripting VMs)
// refer to objects by Handle. Each entry records the object's RecordData, so
// lookups can be type-checked by type id and removal can run the record's
// destructor.
//
//	table := resource.NewTable()
//	h := table.Insert(resource.Object{Type: rec, Ptr: rec.Alloc(), Owned: true})
//	obj, ok := table.GetTyped(h, rec.ID)
//	table.Remove(h) // runs rec.Dtor for owned objects
//
// Borrow and ReturnBorrow pin an entry for the duration of a call; an entry
// with outstanding borrows cannot be removed.
//
// Handle 0 is never issued. Freed handles are reused.
package resource
