// Package idxcodec encodes flat records as maps keyed by small integers
// instead of field names.
//
// Package idxcodec provides:
//
// - A schema builder that assigns wire indices from explicit or automatic directives (BuildSchema)
// - Struct tag, DSL (dsl/), and YAML (schemafile/) front-ends producing builder input
// - Encode/Decode over a minimal map reader/writer SPI, with duplicate/missing/unknown key policy
// - Wire adapters for CBOR, MessagePack, and JSON under wire/, and field codecs under codec/
// - A stable error model via Issues (field label, code, message)
//
// Design policy:
// - Keep only public APIs in the root package; the encode/decode state machine lives in internal/engine.
// - A schema is built once per type and is read-only afterwards; codecs are safe for concurrent use.
// - Unknown keys are skipped by default (forward compatibility); UnknownStrict rejects them.
//
// Typical usage:
//
//	type SomeKeys struct {
//		Number int32   `idx:"index=1"`
//		Bytes  [7]byte `idx:"index=2"`
//		Option *uint8  `idx:"index=4,skip_if=nil"`
//		Vector []int   `idx:"index=5"`
//	}
//
//	c := idxcodec.MustFor[SomeKeys]()
//	data, err := c.Marshal(cbor.Format, v)
//	v2, err := c.Unmarshal(cbor.Format, data)
package idxcodec
