package decoder

import (
	"math"
	"testing"

	"github.com/Aleph-Alpha/pbseries/v1/schema"
	"github.com/Aleph-Alpha/pbseries/v1/schema_registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

const testProto = `
syntax = "proto3";
package demo;

message M {
  double x = 1;
  repeated string tags = 2;
  M child = 3;
}

message Other {
  int32 v = 1;
}
`

func resolve(t *testing.T, src, unit, typeName string) *schema.TypeDescriptor {
	t.Helper()
	reg := schema.NewRegistry()
	_, err := reg.LoadSchema([]byte(src), unit)
	require.NoError(t, err)
	td, err := reg.ResolveType(unit, typeName)
	require.NoError(t, err)
	return td
}

func encodeM(x float64, tags ...string) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(x))
	for _, tag := range tags {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, tag)
	}
	return b
}

func TestDecode_RoundTrip(t *testing.T) {
	td := resolve(t, testProto, "demo.proto", "M")

	inst, err := Decode(td, encodeM(3.5, "a", "b"))
	require.NoError(t, err)
	assert.Same(t, td, inst.Type())
	assert.Nil(t, inst.Frame())

	msg := inst.Message()
	fields := msg.Descriptor().Fields()
	assert.Equal(t, 3.5, msg.Get(fields.ByName("x")).Float())

	tags := msg.Get(fields.ByName("tags")).List()
	require.Equal(t, 2, tags.Len())
	assert.Equal(t, "a", tags.Get(0).String())
	assert.Equal(t, "b", tags.Get(1).String())
	assert.False(t, msg.Has(fields.ByName("child")))
}

func TestDecode_EmptyPayload(t *testing.T) {
	td := resolve(t, testProto, "demo.proto", "M")

	inst, err := Decode(td, nil)
	require.NoError(t, err)
	assert.False(t, inst.Message().Has(inst.Message().Descriptor().Fields().ByName("x")))
}

func TestDecode_UnknownFieldsAreSkipped(t *testing.T) {
	td := resolve(t, testProto, "demo.proto", "M")

	payload := encodeM(1)
	payload = protowire.AppendTag(payload, 99, protowire.VarintType)
	payload = protowire.AppendVarint(payload, 7)

	inst, err := Decode(td, payload)
	require.NoError(t, err)
	assert.Empty(t, inst.Message().GetUnknown())
	assert.Equal(t, 1.0, inst.Message().Get(inst.Message().Descriptor().Fields().ByName("x")).Float())
}

func TestDecode_Malformed(t *testing.T) {
	td := resolve(t, testProto, "demo.proto", "M")
	d := New(td)

	truncated := protowire.AppendTag(nil, 2, protowire.BytesType)
	truncated = protowire.AppendVarint(truncated, 5)
	truncated = append(truncated, 'a', 'b')

	badVarint := protowire.AppendTag(nil, 3, protowire.VarintType)
	badVarint = append(badVarint, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01)

	invalidWireType := protowire.AppendTag(nil, 1, protowire.Type(7))
	invalidWireType = append(invalidWireType, 0x00)

	cases := map[string][]byte{
		"truncated length-delimited": truncated,
		"overlong varint":            badVarint,
		"invalid wire type":          invalidWireType,
		"truncated fixed64":          protowire.AppendTag(nil, 1, protowire.Fixed64Type),
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			inst, err := d.Decode(payload)
			assert.ErrorIs(t, err, ErrDecode)
			assert.Nil(t, inst)
		})
	}

	// the decoder keeps working after a failure
	inst, err := d.Decode(encodeM(2))
	require.NoError(t, err)
	assert.NotNil(t, inst)
}

func TestDecode_RequiredFields(t *testing.T) {
	src := `syntax = "proto2"; message Req { required int32 id = 1; optional string note = 2; }`
	td := resolve(t, src, "req.proto", "Req")

	_, err := New(td).Decode(nil)
	assert.ErrorIs(t, err, ErrDecode)

	inst, err := New(td, WithAllowPartial()).Decode(nil)
	require.NoError(t, err)
	assert.NotNil(t, inst)
}

func TestDecode_ConfluentFraming(t *testing.T) {
	td := resolve(t, testProto, "demo.proto", "M")
	d := New(td, WithConfluentFraming())

	t.Run("first message shorthand", func(t *testing.T) {
		payload := append(schema_registry.EncodeFrame(42, nil), encodeM(1.5)...)
		inst, err := d.Decode(payload)
		require.NoError(t, err)
		require.NotNil(t, inst.Frame())
		assert.Equal(t, 42, inst.Frame().SchemaID)
		assert.Equal(t, []int{0}, inst.Frame().Indexes)
	})

	t.Run("other message", func(t *testing.T) {
		payload := append(schema_registry.EncodeFrame(42, []int{1}), encodeM(1.5)...)
		_, err := d.Decode(payload)
		assert.ErrorIs(t, err, ErrFrameMismatch)
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("index out of range", func(t *testing.T) {
		payload := append(schema_registry.EncodeFrame(42, []int{5}), encodeM(1.5)...)
		_, err := d.Decode(payload)
		assert.ErrorIs(t, err, ErrFrameMismatch)
	})

	t.Run("short header", func(t *testing.T) {
		_, err := d.Decode([]byte{0, 0, 1})
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("bad magic byte", func(t *testing.T) {
		payload := append(schema_registry.EncodeFrame(42, nil), encodeM(1.5)...)
		payload[0] = 1
		_, err := d.Decode(payload)
		assert.ErrorIs(t, err, ErrDecode)
	})
}

func TestDecode_NestedFrameIndexes(t *testing.T) {
	src := `syntax = "proto3"; package n; message Outer { message Inner { int32 v = 1; } Inner in = 1; }`
	td := resolve(t, src, "n.proto", "Outer.Inner")

	payload := schema_registry.EncodeFrame(7, []int{0, 0})
	payload = protowire.AppendTag(payload, 1, protowire.VarintType)
	payload = protowire.AppendVarint(payload, 9)

	inst, err := New(td, WithConfluentFraming()).Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, inst.Frame().Indexes)
	assert.EqualValues(t, 9, inst.Message().Get(inst.Message().Descriptor().Fields().ByName("v")).Int())
}
