// Package builder populates export descriptors with a fluent API.
//
//	rec, err := builder.NewRecord[geometry.Vec2]().
//		BasicInfo().
//		Ctor(geometry.NewVec2).
//		Method("add", (*geometry.Vec2).Add).Param(0, "other").
//		Done().
//		Field("X").
//		Done().
//		Build()
//
// Builder methods never panic. The first failure is kept and returned by
// Build; later calls on the same builder or its sub-builders are no-ops.
package builder
