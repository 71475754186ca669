package flatten

import (
	"encoding/base64"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/Aleph-Alpha/pbseries/v1/decoder"
	"github.com/Aleph-Alpha/pbseries/v1/schema"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// DefaultMaxDepth bounds message nesting. Recursive schemas are legal, but a
// payload nested this deep is treated as hostile.
const DefaultMaxDepth = 64

// Option configures a Flattener.
type Option func(*Flattener)

// WithMaxDepth overrides DefaultMaxDepth. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(f *Flattener) {
		if n > 0 {
			f.maxDepth = n
		}
	}
}

// Flattener turns decoded messages into points. It holds no per-message state
// and is safe for concurrent use.
type Flattener struct {
	maxDepth int
}

// New returns a Flattener.
func New(opts ...Option) *Flattener {
	f := &Flattener{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Flatten is New().Flatten.
func Flatten(inst *decoder.Instance, prefix string, ts float64) (*Result, error) {
	return New().Flatten(inst, prefix, ts)
}

// Flatten walks inst depth-first in field declaration order.
//
// Scalars are widened to float64 (bool as 0/1; 64-bit integers above 2^53
// lose precision). Enums are emitted as their symbolic name, strings as is,
// and bytes as text when valid UTF-8, base64 otherwise. Nested messages emit
// nothing themselves, only their leaves. Repeated elements get an "[i]"
// suffix and map entries become "[i]/key" and "[i]/value" sorted by key.
//
// Unset singular fields are skipped. A field that cannot be rendered is
// reported in Result.FieldErrors and the walk continues. Exceeding the depth
// limit fails the whole message with ErrMaxDepthExceeded and no result.
func (f *Flattener) Flatten(inst *decoder.Instance, prefix string, ts float64) (*Result, error) {
	w := &walker{maxDepth: f.maxDepth, ts: ts, result: &Result{}}
	if err := w.message(inst.Message(), inst.Type(), prefix, 0); err != nil {
		return nil, err
	}
	return w.result, nil
}

type walker struct {
	maxDepth int
	ts       float64
	result   *Result
}

func (w *walker) message(msg protoreflect.Message, td *schema.TypeDescriptor, prefix string, depth int) error {
	if depth > w.maxDepth {
		return fmt.Errorf("%w: %d levels at %q", ErrMaxDepthExceeded, w.maxDepth, prefix)
	}

	for _, fd := range td.Fields() {
		pfd := fd.Descriptor()
		if !msg.Has(pfd) {
			continue
		}
		key := JoinKey(prefix, fd.Name())

		switch {
		case fd.IsMap():
			if err := w.mapField(msg.Get(pfd).Map(), fd, key, depth); err != nil {
				return err
			}
		case fd.IsRepeated():
			list := msg.Get(pfd).List()
			for i := 0; i < list.Len(); i++ {
				if err := w.value(fd, list.Get(i), IndexKey(key, i), depth); err != nil {
					return err
				}
			}
		default:
			if err := w.value(fd, msg.Get(pfd), key, depth); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) value(fd schema.FieldDescriptor, v protoreflect.Value, key string, depth int) error {
	switch fd.Kind() {
	case schema.KindDouble, schema.KindFloat:
		w.numeric(key, v.Float())
	case schema.KindUint32, schema.KindUint64:
		w.numeric(key, float64(v.Uint()))
	case schema.KindInt32, schema.KindInt64:
		w.numeric(key, float64(v.Int()))
	case schema.KindBool:
		if v.Bool() {
			w.numeric(key, 1)
		} else {
			w.numeric(key, 0)
		}
	case schema.KindEnum:
		ev := fd.Descriptor().Enum().Values().ByNumber(v.Enum())
		if ev == nil {
			w.fieldError(key, fd.Kind(), fmt.Errorf("%w: %d", ErrUndefinedEnumValue, v.Enum()))
			return nil
		}
		w.text(key, string(ev.Name()))
	case schema.KindString:
		w.text(key, v.String())
	case schema.KindBytes:
		w.text(key, renderBytes(v.Bytes()))
	case schema.KindMessage:
		return w.message(v.Message(), fd.MessageType(), key, depth+1)
	case schema.KindUnsupported:
		w.fieldError(key, fd.Kind(), fmt.Errorf("%w: %s", ErrUnsupportedFieldKind, fd.Descriptor().Kind()))
	}
	return nil
}

// mapField emits entries as a repeated key/value message. Go maps have no
// order, so entries are sorted by key to keep the output deterministic.
func (w *walker) mapField(m protoreflect.Map, fd schema.FieldDescriptor, key string, depth int) error {
	entry := fd.MessageType()
	if entry == nil || len(entry.Fields()) != 2 {
		w.fieldError(key, fd.Kind(), fmt.Errorf("%w: malformed map entry", ErrUnsupportedFieldKind))
		return nil
	}
	keyField, valueField := entry.Fields()[0], entry.Fields()[1]

	keys := make([]protoreflect.MapKey, 0, m.Len())
	m.Range(func(k protoreflect.MapKey, _ protoreflect.Value) bool {
		keys = append(keys, k)
		return true
	})
	sort.Slice(keys, func(i, j int) bool { return lessMapKey(keys[i], keys[j]) })

	for i, k := range keys {
		base := IndexKey(key, i)
		if err := w.value(keyField, k.Value(), JoinKey(base, keyField.Name()), depth+1); err != nil {
			return err
		}
		if err := w.value(valueField, m.Get(k), JoinKey(base, valueField.Name()), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) numeric(key string, v float64) {
	w.result.Points = append(w.result.Points, Point{Key: key, Timestamp: w.ts, Value: NumericValue(v)})
}

func (w *walker) text(key, s string) {
	w.result.Points = append(w.result.Points, Point{Key: key, Timestamp: w.ts, Value: TextValue(s)})
}

func (w *walker) fieldError(key string, kind schema.FieldKind, err error) {
	w.result.FieldErrors = append(w.result.FieldErrors, &FieldError{Key: key, Kind: kind, Err: err})
}

func renderBytes(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return base64.StdEncoding.EncodeToString(b)
}

// lessMapKey orders keys of one map. All keys of a map share a kind.
func lessMapKey(a, b protoreflect.MapKey) bool {
	switch av := a.Interface().(type) {
	case string:
		return av < b.String()
	case bool:
		return !av && b.Bool()
	case int32, int64:
		return a.Int() < b.Int()
	case uint32, uint64:
		return a.Uint() < b.Uint()
	default:
		return false
	}
}
