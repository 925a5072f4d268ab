// Package dsl provides a fluent builder for idxcodec schemas.
//
// Overview
//   - Builder API: declare record directives and fields with Record()/Offset()/AutoIndex()/Field()/MustBuild().
//   - Field steps: Index(n), Skip(), NoIncrement(), SkipIf(p), With(c), SerializeWith(e), DeserializeWith(d),
//     and Codec(name)/SkipIfNamed(name) to resolve registered hooks.
//   - Typed binding: Bind[T](b) returns an idxcodec.Codec[T] for a struct whose field labels match.
//   - Dynamic binding: Dynamic(name, b) returns an idxcodec.DynamicCodec over map[string]any.
//
// Example
//
//	b := dsl.Record().
//		Field("Number", dsl.Of[int32]()).Index(1).
//		Field("Option", dsl.Of[*uint8]()).Index(4).SkipIfNamed("nil")
//	c := dsl.MustBind[SomeKeys](b)
//
// Errors from field steps (unknown registry names) are reported by Build.
package dsl
