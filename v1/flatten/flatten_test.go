package flatten

import (
	"errors"
	"testing"

	"github.com/Aleph-Alpha/pbseries/v1/decoder"
	"github.com/Aleph-Alpha/pbseries/v1/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

const flatProto = `
syntax = "proto3";
package flat;

enum Color {
  COLOR_UNSPECIFIED = 0;
  RED = 1;
  GREEN = 2;
}

message Item {
  int32 v = 1;
  string label = 2;
}

message M {
  double x = 1;
  repeated string tags = 2;
  M child = 3;
}

message All {
  double d = 1;
  float f = 2;
  int32 i32 = 3;
  int64 i64 = 4;
  uint32 u32 = 5;
  uint64 u64 = 6;
  sint32 s32 = 7;
  sint64 s64 = 8;
  fixed32 fx32 = 9;
  fixed64 fx64 = 10;
  sfixed32 sfx32 = 11;
  sfixed64 sfx64 = 12;
  bool flag = 13;
  Color color = 14;
  string name = 15;
  bytes raw = 16;
  repeated Item items = 17;
  map<string, int32> counts = 18;
  map<int32, Item> by_id = 19;
  repeated Color palette = 20;
  repeated double empty = 21;
}
`

func resolve(t *testing.T, typeName string) *schema.TypeDescriptor {
	t.Helper()
	reg := schema.NewRegistry()
	_, err := reg.LoadSchema([]byte(flatProto), "flat.proto")
	require.NoError(t, err)
	td, err := reg.ResolveType("flat.proto", typeName)
	require.NoError(t, err)
	return td
}

// roundTrip marshals msg and decodes it again through the decoder package.
func roundTrip(t *testing.T, td *schema.TypeDescriptor, msg *dynamicpb.Message) *decoder.Instance {
	t.Helper()
	payload, err := proto.Marshal(msg)
	require.NoError(t, err)
	inst, err := decoder.Decode(td, payload)
	require.NoError(t, err)
	return inst
}

func field(msg protoreflect.Message, name string) protoreflect.FieldDescriptor {
	return msg.Descriptor().Fields().ByName(protoreflect.Name(name))
}

func byKey(points []Point) map[string]Value {
	out := make(map[string]Value, len(points))
	for _, p := range points {
		out[p.Key] = p.Value
	}
	return out
}

func TestFlatten_Scenario(t *testing.T) {
	td := resolve(t, "M")
	msg := dynamicpb.NewMessage(td.Descriptor())
	msg.Set(field(msg, "x"), protoreflect.ValueOfFloat64(3.5))
	tags := msg.Mutable(field(msg, "tags")).List()
	tags.Append(protoreflect.ValueOfString("a"))
	tags.Append(protoreflect.ValueOfString("b"))

	res, err := Flatten(roundTrip(t, td, msg), "", 12.5)
	require.NoError(t, err)
	assert.Empty(t, res.FieldErrors)

	assert.Equal(t, []Point{
		{Key: "x", Timestamp: 12.5, Value: NumericValue(3.5)},
		{Key: "tags[0]", Timestamp: 12.5, Value: TextValue("a")},
		{Key: "tags[1]", Timestamp: 12.5, Value: TextValue("b")},
	}, res.Points)
}

func TestFlatten_NestedMessagesEmitOnlyLeaves(t *testing.T) {
	td := resolve(t, "M")
	msg := dynamicpb.NewMessage(td.Descriptor())
	child := msg.Mutable(field(msg, "child")).Message()
	child.Set(field(child, "x"), protoreflect.ValueOfFloat64(1))
	grandchild := child.Mutable(field(child, "child")).Message()
	grandchild.Mutable(field(grandchild, "tags")).List().Append(protoreflect.ValueOfString("z"))

	res, err := New().Flatten(roundTrip(t, td, msg), "sensors/a", 1)
	require.NoError(t, err)

	keys := make([]string, 0, len(res.Points))
	for _, p := range res.Points {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"sensors/a/child/x", "sensors/a/child/child/tags[0]"}, keys)
}

func TestFlatten_AllKinds(t *testing.T) {
	td := resolve(t, "All")
	msg := dynamicpb.NewMessage(td.Descriptor())
	msg.Set(field(msg, "d"), protoreflect.ValueOfFloat64(-2.25))
	msg.Set(field(msg, "f"), protoreflect.ValueOfFloat32(1.5))
	msg.Set(field(msg, "i32"), protoreflect.ValueOfInt32(-7))
	msg.Set(field(msg, "i64"), protoreflect.ValueOfInt64(1<<52))
	msg.Set(field(msg, "u32"), protoreflect.ValueOfUint32(4000000000))
	msg.Set(field(msg, "u64"), protoreflect.ValueOfUint64(1<<60))
	msg.Set(field(msg, "s32"), protoreflect.ValueOfInt32(-3))
	msg.Set(field(msg, "s64"), protoreflect.ValueOfInt64(-9))
	msg.Set(field(msg, "fx32"), protoreflect.ValueOfUint32(5))
	msg.Set(field(msg, "fx64"), protoreflect.ValueOfUint64(6))
	msg.Set(field(msg, "sfx32"), protoreflect.ValueOfInt32(-11))
	msg.Set(field(msg, "sfx64"), protoreflect.ValueOfInt64(-12))
	msg.Set(field(msg, "flag"), protoreflect.ValueOfBool(true))
	msg.Set(field(msg, "color"), protoreflect.ValueOfEnum(2))
	msg.Set(field(msg, "name"), protoreflect.ValueOfString("probe"))
	msg.Set(field(msg, "raw"), protoreflect.ValueOfBytes([]byte("ok")))

	res, err := Flatten(roundTrip(t, td, msg), "", 0)
	require.NoError(t, err)
	require.Empty(t, res.FieldErrors)

	got := byKey(res.Points)
	numeric := map[string]float64{
		"d":     -2.25,
		"f":     1.5,
		"i32":   -7,
		"i64":   1 << 52,
		"u32":   4000000000,
		"u64":   1 << 60,
		"s32":   -3,
		"s64":   -9,
		"fx32":  5,
		"fx64":  6,
		"sfx32": -11,
		"sfx64": -12,
		"flag":  1,
	}
	for key, want := range numeric {
		v, ok := got[key]
		require.True(t, ok, key)
		assert.Equal(t, ValueNumeric, v.Kind(), key)
		assert.Equal(t, want, v.Number(), key)
	}

	assert.Equal(t, TextValue("GREEN"), got["color"])
	assert.Equal(t, TextValue("probe"), got["name"])
	assert.Equal(t, TextValue("ok"), got["raw"])
	assert.Len(t, res.Points, len(numeric)+3)

	// declaration order
	assert.Equal(t, "d", res.Points[0].Key)
	assert.Equal(t, "raw", res.Points[len(res.Points)-1].Key)
}

func TestFlatten_UnsetAndEmptyFieldsAreSkipped(t *testing.T) {
	td := resolve(t, "All")
	msg := dynamicpb.NewMessage(td.Descriptor())
	msg.Set(field(msg, "flag"), protoreflect.ValueOfBool(false))
	msg.Mutable(field(msg, "empty"))

	res, err := Flatten(roundTrip(t, td, msg), "", 0)
	require.NoError(t, err)
	assert.Empty(t, res.Points)
	assert.Empty(t, res.FieldErrors)
}

func TestFlatten_RepeatedMessagesAndEnums(t *testing.T) {
	td := resolve(t, "All")
	msg := dynamicpb.NewMessage(td.Descriptor())

	items := msg.Mutable(field(msg, "items")).List()
	for i, label := range []string{"first", "second", "third"} {
		el := items.NewElement()
		el.Message().Set(field(el.Message(), "v"), protoreflect.ValueOfInt32(int32(i+1)))
		el.Message().Set(field(el.Message(), "label"), protoreflect.ValueOfString(label))
		items.Append(el)
	}
	palette := msg.Mutable(field(msg, "palette")).List()
	palette.Append(protoreflect.ValueOfEnum(1))
	palette.Append(protoreflect.ValueOfEnum(0))

	res, err := Flatten(roundTrip(t, td, msg), "", 0)
	require.NoError(t, err)

	got := byKey(res.Points)
	assert.Equal(t, NumericValue(1), got["items[0]/v"])
	assert.Equal(t, TextValue("first"), got["items[0]/label"])
	assert.Equal(t, NumericValue(3), got["items[2]/v"])
	assert.Equal(t, TextValue("third"), got["items[2]/label"])
	assert.Equal(t, TextValue("RED"), got["palette[0]"])
	assert.Equal(t, TextValue("COLOR_UNSPECIFIED"), got["palette[1]"])
	assert.Len(t, res.Points, 8)
	_, ok := got["items"]
	assert.False(t, ok)
}

func TestFlatten_UndefinedEnumIsFieldError(t *testing.T) {
	td := resolve(t, "All")
	msg := dynamicpb.NewMessage(td.Descriptor())
	msg.Set(field(msg, "color"), protoreflect.ValueOfEnum(42))
	msg.Set(field(msg, "name"), protoreflect.ValueOfString("still here"))

	res, err := Flatten(roundTrip(t, td, msg), "", 0)
	require.NoError(t, err)

	require.Len(t, res.FieldErrors, 1)
	fe := res.FieldErrors[0]
	assert.Equal(t, "color", fe.Key)
	assert.Equal(t, schema.KindEnum, fe.Kind)
	assert.ErrorIs(t, fe, ErrUndefinedEnumValue)
	assert.Contains(t, fe.Error(), "42")

	require.Len(t, res.Points, 1)
	assert.Equal(t, "name", res.Points[0].Key)
}

func TestFlatten_Bytes(t *testing.T) {
	td := resolve(t, "All")
	msg := dynamicpb.NewMessage(td.Descriptor())
	msg.Set(field(msg, "raw"), protoreflect.ValueOfBytes([]byte{0xff, 0x00, 0x10}))

	res, err := Flatten(roundTrip(t, td, msg), "", 0)
	require.NoError(t, err)
	require.Len(t, res.Points, 1)
	assert.Equal(t, TextValue("/wAQ"), res.Points[0].Value)
}

func TestFlatten_MapsAreSortedByKey(t *testing.T) {
	td := resolve(t, "All")
	msg := dynamicpb.NewMessage(td.Descriptor())

	counts := msg.Mutable(field(msg, "counts")).Map()
	counts.Set(protoreflect.ValueOfString("b").MapKey(), protoreflect.ValueOfInt32(2))
	counts.Set(protoreflect.ValueOfString("a").MapKey(), protoreflect.ValueOfInt32(1))

	byID := msg.Mutable(field(msg, "by_id")).Map()
	for _, id := range []int32{10, -4} {
		item := byID.NewValue()
		item.Message().Set(field(item.Message(), "v"), protoreflect.ValueOfInt32(id*2))
		byID.Set(protoreflect.ValueOfInt32(id).MapKey(), item)
	}

	res, err := Flatten(roundTrip(t, td, msg), "", 0)
	require.NoError(t, err)
	require.Empty(t, res.FieldErrors)

	keys := make([]string, 0, len(res.Points))
	for _, p := range res.Points {
		keys = append(keys, p.Key+"="+p.Value.String())
	}
	assert.Equal(t, []string{
		`counts[0]/key="a"`,
		`counts[0]/value=1`,
		`counts[1]/key="b"`,
		`counts[1]/value=2`,
		`by_id[0]/key=-4`,
		`by_id[0]/value/v=-8`,
		`by_id[1]/key=10`,
		`by_id[1]/value/v=20`,
	}, keys)
}

func TestFlatten_MaxDepth(t *testing.T) {
	td := resolve(t, "M")
	msg := dynamicpb.NewMessage(td.Descriptor())
	cur := protoreflect.Message(msg)
	for i := 0; i < 4; i++ {
		cur = cur.Mutable(field(cur, "child")).Message()
	}
	cur.Set(field(cur, "x"), protoreflect.ValueOfFloat64(1))
	inst := roundTrip(t, td, msg)

	res, err := New(WithMaxDepth(3)).Flatten(inst, "", 0)
	assert.ErrorIs(t, err, ErrMaxDepthExceeded)
	assert.Nil(t, res)

	res, err = New(WithMaxDepth(4)).Flatten(inst, "", 0)
	require.NoError(t, err)
	require.Len(t, res.Points, 1)
	assert.Equal(t, "child/child/child/child/x", res.Points[0].Key)
}

func TestFlatten_Deterministic(t *testing.T) {
	td := resolve(t, "All")
	msg := dynamicpb.NewMessage(td.Descriptor())
	counts := msg.Mutable(field(msg, "counts")).Map()
	for _, k := range []string{"z", "y", "x", "w", "v"} {
		counts.Set(protoreflect.ValueOfString(k).MapKey(), protoreflect.ValueOfInt32(1))
	}
	msg.Set(field(msg, "d"), protoreflect.ValueOfFloat64(9))

	payload, err := proto.Marshal(msg)
	require.NoError(t, err)

	var first *Result
	for i := 0; i < 5; i++ {
		inst, err := decoder.Decode(td, payload)
		require.NoError(t, err)
		res, err := Flatten(inst, "t", 1)
		require.NoError(t, err)
		if first == nil {
			first = res
			continue
		}
		assert.Equal(t, first, res)
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "x", JoinKey("", "x"))
	assert.Equal(t, "a/b/x", JoinKey("a/b", "x"))
	assert.Equal(t, "tags[12]", IndexKey("tags", 12))
}

func TestFieldError_Unwrap(t *testing.T) {
	fe := &FieldError{Key: "k", Kind: schema.KindUnsupported, Err: ErrUnsupportedFieldKind}
	assert.True(t, errors.Is(fe, ErrUnsupportedFieldKind))
	assert.Equal(t, `field "k" (unsupported): unsupported field kind`, fe.Error())
}
