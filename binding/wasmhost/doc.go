// Package wasmhost exposes registered records to WebAssembly guests.
//
// Every record in a registry becomes a group of host functions in one wazero
// host module. Objects live in a resource table and cross the boundary as
// i32 handles:
//
//	geometry.Vec2.new        (f32, f32) -> i32
//	geometry.Vec2.drop       (i32)
//	geometry.Vec2.Len        (i32) -> f32
//	geometry.Vec2.Add#1      (i32, i32) -> i32
//	geometry.Vec2.get_X      (i32) -> f32
//	geometry.Vec2.set_X      (i32, f32)
//
// Scalars map to core value types. Records taken as *T, Ref[T] or
// RValueRef[T] are bound to the object's storage; records taken by value are
// copied from it. Callables that need anything else are skipped.
package wasmhost
