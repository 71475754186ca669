package flatten

import "strconv"

// ValueKind tells numeric points from text points.
type ValueKind int

const (
	ValueNumeric ValueKind = iota
	ValueText
)

func (k ValueKind) String() string {
	switch k {
	case ValueNumeric:
		return "numeric"
	case ValueText:
		return "text"
	default:
		return "unknown"
	}
}

// Value is either a float64 or a string.
type Value struct {
	kind ValueKind
	num  float64
	text string
}

// NumericValue wraps v as a numeric point value.
func NumericValue(v float64) Value { return Value{kind: ValueNumeric, num: v} }

// TextValue wraps s as a text point value.
func TextValue(s string) Value { return Value{kind: ValueText, text: s} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) Number() float64 { return v.num }
func (v Value) Text() string { return v.text }

// String renders the value for logs.
func (v Value) String() string {
	if v.kind == ValueText {
		return strconv.Quote(v.text)
	}
	return strconv.FormatFloat(v.num, 'g', -1, 64)
}

// Point is one flattened sample.
type Point struct {
	Key       string
	Timestamp float64
	Value     Value
}

// Result holds the points of one message in depth-first declaration order,
// plus the fields that were skipped.
type Result struct {
	Points      []Point
	FieldErrors []*FieldError
}
