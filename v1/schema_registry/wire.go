package schema_registry

import (
	"encoding/binary"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

const magicByte = 0x0

// EncodeSchemaID encodes a schema ID in the Confluent wire format
// Format: [magic_byte][schema_id]
// - magic_byte: 0x0 (1 byte)
// - schema_id: 4 bytes (big-endian)
func EncodeSchemaID(schemaID int) []byte {
	buf := make([]byte, 5)
	buf[0] = magicByte
	binary.BigEndian.PutUint32(buf[1:], uint32(schemaID))
	return buf
}

// DecodeSchemaID decodes a schema ID from the Confluent wire format
// Returns the schema ID and the remaining payload (after the 5-byte header)
func DecodeSchemaID(data []byte) (int, []byte, error) {
	if len(data) < 5 {
		return 0, nil, fmt.Errorf("%w: expected at least 5 bytes, got %d", ErrInvalidFrame, len(data))
	}

	if data[0] != magicByte {
		return 0, nil, fmt.Errorf("%w: expected magic byte 0x0, got 0x%x", ErrInvalidFrame, data[0])
	}

	return int(binary.BigEndian.Uint32(data[1:5])), data[5:], nil
}

// EncodeFrame builds the Protobuf variant of the header: the schema ID
// followed by the zig-zag varint count and values of the message indexes.
// A nil or [0] index path is written as the single-byte shorthand.
func EncodeFrame(schemaID int, indexes []int) []byte {
	buf := EncodeSchemaID(schemaID)
	if len(indexes) == 0 || (len(indexes) == 1 && indexes[0] == 0) {
		return protowire.AppendVarint(buf, protowire.EncodeZigZag(0))
	}
	buf = protowire.AppendVarint(buf, protowire.EncodeZigZag(int64(len(indexes))))
	for _, idx := range indexes {
		buf = protowire.AppendVarint(buf, protowire.EncodeZigZag(int64(idx)))
	}
	return buf
}

// DecodeFrame strips a Protobuf Confluent header and returns the schema ID,
// the message index path and the remaining payload.
func DecodeFrame(data []byte) (int, []int, []byte, error) {
	id, rest, err := DecodeSchemaID(data)
	if err != nil {
		return 0, nil, nil, err
	}

	count, n := consumeZigZag(rest)
	if n < 0 {
		return 0, nil, nil, fmt.Errorf("%w: malformed message index count", ErrInvalidFrame)
	}
	rest = rest[n:]

	if count == 0 {
		return id, []int{0}, rest, nil
	}
	if count < 0 || count > int64(len(rest)) {
		return 0, nil, nil, fmt.Errorf("%w: message index count %d", ErrInvalidFrame, count)
	}

	indexes := make([]int, 0, count)
	for i := int64(0); i < count; i++ {
		idx, n := consumeZigZag(rest)
		if n < 0 {
			return 0, nil, nil, fmt.Errorf("%w: malformed message index", ErrInvalidFrame)
		}
		indexes = append(indexes, int(idx))
		rest = rest[n:]
	}
	return id, indexes, rest, nil
}

func consumeZigZag(b []byte) (int64, int) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, n
	}
	return protowire.DecodeZigZag(v), n
}
