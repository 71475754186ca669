// Package decoder parses raw protobuf payloads into reflective messages for a
// type compiled at runtime by package schema. No generated code is involved;
// messages are built with dynamicpb.
//
// Payloads framed by a Confluent Schema Registry serializer can be decoded
// with WithConfluentFraming, which strips the header and checks that its
// message indexes point at the bound type.
package decoder
