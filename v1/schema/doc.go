// Package schema compiles .proto schema text at runtime and resolves message
// types for the decoder.
//
// Every loaded source becomes a Unit. A Unit keeps all message types it can
// reach in a flat arena, and each FieldDescriptor carries a closed FieldKind
// so consumers can switch on it exhaustively:
//
//	reg := schema.NewRegistry()
//	unit, err := reg.LoadSchema(src, "telemetry.proto")
//	if err != nil {
//		// errors.Is(err, schema.ErrSchemaParse)
//	}
//	fmt.Println(unit.TypeNames()) // [Sample Batch]
//
//	td, err := reg.ResolveType("telemetry.proto", "Sample")
//
// Units are isolated from each other: each is built against a private file
// set holding only its own imports. A source may import another loaded unit
// by logical name, or any google/protobuf well-known type. LoadSources loads
// a batch whose members import each other regardless of order.
package schema
