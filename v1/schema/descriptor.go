package schema

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// Unit is one compiled schema source. It owns every TypeDescriptor reachable
// from the source in a flat arena; descriptors refer to each other by index.
// A Unit is immutable once built and safe for concurrent use.
type Unit struct {
	name   string
	source []byte
	file   protoreflect.FileDescriptor

	types    []*TypeDescriptor
	index    map[protoreflect.FullName]int
	declared []int
}

// Name returns the logical name the unit was loaded under.
func (u *Unit) Name() string { return u.name }

// Package returns the proto package declared by the source, if any.
func (u *Unit) Package() string { return string(u.file.Package()) }

// File returns the underlying file descriptor.
func (u *Unit) File() protoreflect.FileDescriptor { return u.file }

// Source returns a copy of the raw text the unit was compiled from.
func (u *Unit) Source() []byte {
	out := make([]byte, len(u.source))
	copy(out, u.source)
	return out
}

// TypeNames returns the top-level message names declared by the source, in
// declaration order.
func (u *Unit) TypeNames() []string {
	names := make([]string, 0, len(u.declared))
	for _, i := range u.declared {
		names = append(names, u.types[i].Name())
	}
	return names
}

// Types returns the top-level message types declared by the source.
func (u *Unit) Types() []*TypeDescriptor {
	out := make([]*TypeDescriptor, 0, len(u.declared))
	for _, i := range u.declared {
		out = append(out, u.types[i])
	}
	return out
}

// Lookup returns the type with the given fully-qualified name. Types pulled
// in from imports are included when a field of this unit refers to them.
func (u *Unit) Lookup(fullName string) (*TypeDescriptor, bool) {
	i, ok := u.index[protoreflect.FullName(fullName)]
	if !ok {
		return nil, false
	}
	return u.types[i], true
}

// Resolve finds a message type by fully-qualified name, or by a name relative
// to the unit's package ("Outer.Inner" in package "pkg" finds "pkg.Outer.Inner").
func (u *Unit) Resolve(typeName string) (*TypeDescriptor, error) {
	if td, ok := u.Lookup(typeName); ok {
		return td, nil
	}
	if pkg := u.Package(); pkg != "" {
		if td, ok := u.Lookup(pkg + "." + typeName); ok {
			return td, nil
		}
	}
	return nil, fmt.Errorf("%w: %q in unit %q", ErrUnknownType, typeName, u.name)
}

// TypeDescriptor is a resolved message type within a Unit.
type TypeDescriptor struct {
	unit   *Unit
	desc   protoreflect.MessageDescriptor
	fields []FieldDescriptor
}

// Name returns the short message name.
func (t *TypeDescriptor) Name() string { return string(t.desc.Name()) }

// FullName returns the fully-qualified message name.
func (t *TypeDescriptor) FullName() string { return string(t.desc.FullName()) }

// Unit returns the name of the unit that owns this descriptor.
func (t *TypeDescriptor) Unit() string { return t.unit.name }

// Fields returns the fields in declaration order. The slice must not be modified.
func (t *TypeDescriptor) Fields() []FieldDescriptor { return t.fields }

// IsMapEntry reports whether the type is the synthetic entry of a map field.
func (t *TypeDescriptor) IsMapEntry() bool { return t.desc.IsMapEntry() }

// Descriptor returns the protobuf message descriptor backing this type.
func (t *TypeDescriptor) Descriptor() protoreflect.MessageDescriptor { return t.desc }

// FieldDescriptor describes one field of a TypeDescriptor.
type FieldDescriptor struct {
	name     string
	number   int32
	kind     FieldKind
	repeated bool
	isMap    bool
	message  int
	unit     *Unit
	desc     protoreflect.FieldDescriptor
}

func (f FieldDescriptor) Name() string { return f.name }
func (f FieldDescriptor) Number() int32 { return f.number }
func (f FieldDescriptor) Kind() FieldKind { return f.kind }
func (f FieldDescriptor) IsRepeated() bool { return f.repeated }

// IsMap reports whether the field is a map. Map fields are also repeated and
// of KindMessage; MessageType returns the entry type.
func (f FieldDescriptor) IsMap() bool { return f.isMap }

// MessageType returns the nested type for KindMessage fields and nil otherwise.
func (f FieldDescriptor) MessageType() *TypeDescriptor {
	if f.message < 0 {
		return nil
	}
	return f.unit.types[f.message]
}

// Descriptor returns the protobuf field descriptor backing this field.
func (f FieldDescriptor) Descriptor() protoreflect.FieldDescriptor { return f.desc }

// newUnit builds the arena for file. Every message declared in the file is
// registered first, top-level messages in declaration order, then any type
// reached through a field.
func newUnit(name string, source []byte, file protoreflect.FileDescriptor) *Unit {
	u := &Unit{
		name:   name,
		source: source,
		file:   file,
		index:  make(map[protoreflect.FullName]int),
	}

	var queue []protoreflect.MessageDescriptor
	add := func(md protoreflect.MessageDescriptor) int {
		if i, ok := u.index[md.FullName()]; ok {
			return i
		}
		i := len(u.types)
		u.types = append(u.types, &TypeDescriptor{unit: u, desc: md})
		u.index[md.FullName()] = i
		queue = append(queue, md)
		return i
	}

	top := file.Messages()
	for i := 0; i < top.Len(); i++ {
		u.declared = append(u.declared, add(top.Get(i)))
	}
	var nested func(mds protoreflect.MessageDescriptors)
	nested = func(mds protoreflect.MessageDescriptors) {
		for i := 0; i < mds.Len(); i++ {
			md := mds.Get(i)
			add(md)
			nested(md.Messages())
		}
	}
	for i := 0; i < top.Len(); i++ {
		nested(top.Get(i).Messages())
	}

	for len(queue) > 0 {
		md := queue[0]
		queue = queue[1:]
		td := u.types[u.index[md.FullName()]]

		fields := md.Fields()
		td.fields = make([]FieldDescriptor, 0, fields.Len())
		for j := 0; j < fields.Len(); j++ {
			fd := fields.Get(j)
			f := FieldDescriptor{
				name:     string(fd.Name()),
				number:   int32(fd.Number()),
				kind:     kindOf(fd.Kind()),
				repeated: fd.Cardinality() == protoreflect.Repeated,
				isMap:    fd.IsMap(),
				message:  -1,
				unit:     u,
				desc:     fd,
			}
			if f.kind == KindMessage && fd.Message() != nil {
				f.message = add(fd.Message())
			}
			td.fields = append(td.fields, f)
		}
	}
	return u
}
