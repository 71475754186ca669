package decoder

import (
	"fmt"

	"github.com/Aleph-Alpha/pbseries/v1/schema"
	"github.com/Aleph-Alpha/pbseries/v1/schema_registry"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Frame is the Confluent wire header stripped from a framed payload.
type Frame struct {
	SchemaID int
	Indexes  []int
}

// Instance is a decoded message bound to its type. It is produced fresh for
// every payload and never shared between calls.
type Instance struct {
	td    *schema.TypeDescriptor
	msg   protoreflect.Message
	frame *Frame
}

// Type returns the descriptor the instance was decoded with.
func (i *Instance) Type() *schema.TypeDescriptor { return i.td }

// Message returns the reflective view of the decoded value.
func (i *Instance) Message() protoreflect.Message { return i.msg }

// Frame returns the stripped Confluent header, or nil for unframed payloads.
func (i *Instance) Frame() *Frame { return i.frame }

// Option configures a Decoder.
type Option func(*Decoder)

// WithConfluentFraming expects every payload to start with the Confluent
// Schema Registry header: magic byte, 4-byte schema id and message indexes.
func WithConfluentFraming() Option {
	return func(d *Decoder) { d.framed = true }
}

// WithAllowPartial accepts payloads with missing proto2 required fields.
func WithAllowPartial() Option {
	return func(d *Decoder) { d.unmarshal.AllowPartial = true }
}

// Decoder turns raw payloads into Instances of one message type.
// It holds no per-payload state and is safe for concurrent use.
type Decoder struct {
	td        *schema.TypeDescriptor
	msgType   protoreflect.MessageType
	unmarshal proto.UnmarshalOptions
	framed    bool
}

// New returns a Decoder bound to td.
func New(td *schema.TypeDescriptor, opts ...Option) *Decoder {
	d := &Decoder{
		td:      td,
		msgType: dynamicpb.NewMessageType(td.Descriptor()),
		unmarshal: proto.UnmarshalOptions{
			DiscardUnknown: true,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Type returns the bound descriptor.
func (d *Decoder) Type() *schema.TypeDescriptor { return d.td }

// Decode parses payload using the standard protobuf wire format. Fields that
// are not part of the bound type are skipped. Truncated input, malformed
// varints and invalid wire types fail with ErrDecode.
func (d *Decoder) Decode(payload []byte) (*Instance, error) {
	var frame *Frame
	if d.framed {
		id, indexes, rest, err := schema_registry.DecodeFrame(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDecode, d.td.FullName(), err)
		}
		if err := d.checkIndexes(indexes); err != nil {
			return nil, err
		}
		frame = &Frame{SchemaID: id, Indexes: indexes}
		payload = rest
	}

	msg := d.msgType.New()
	if err := d.unmarshal.Unmarshal(payload, msg.Interface()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, d.td.FullName(), err)
	}

	return &Instance{td: d.td, msg: msg, frame: frame}, nil
}

// checkIndexes walks the message index path from the top of the declaring
// file and verifies it lands on the bound type.
func (d *Decoder) checkIndexes(indexes []int) error {
	md := d.td.Descriptor()
	messages := md.ParentFile().Messages()

	var selected protoreflect.MessageDescriptor
	for _, idx := range indexes {
		if idx < 0 || idx >= messages.Len() {
			return fmt.Errorf("%w: message index %v out of range", ErrFrameMismatch, indexes)
		}
		selected = messages.Get(idx)
		messages = selected.Messages()
	}
	if selected == nil || selected.FullName() != md.FullName() {
		return fmt.Errorf("%w: message index %v, bound to %s", ErrFrameMismatch, indexes, md.FullName())
	}
	return nil
}

// Decode is a one-shot helper for New(td).Decode(payload).
func Decode(td *schema.TypeDescriptor, payload []byte) (*Instance, error) {
	return New(td).Decode(payload)
}
