package lang

import (
	"iter"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind indicates the type of a [Value].
type Kind int

const (
	// KindString represents a string literal value.
	KindString Kind = iota

	// KindInteger represents a 64-bit signed integer value.
	KindInteger

	// KindFloat represents a 64-bit floating-point value.
	KindFloat

	// KindArray represents a flat array of scalar values.
	KindArray

	// KindDictionary represents an ordered mapping of keys to values.
	KindDictionary
)

// String returns a string representation of the value kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"

	case KindInteger:
		return "Integer"

	case KindFloat:
		return "Float"

	case KindArray:
		return "Array"

	case KindDictionary:
		return "Dictionary"

	default:
		return "Unknown"
	}
}

// Value is the tagged union produced by the evaluator.
// Exactly one of the payload fields is meaningful based on Kind.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Array []Value
	Dict  *Dictionary
}

// IsNumeric reports whether v is an Integer or a Float.
func (v Value) IsNumeric() bool {
	return v.Kind == KindInteger || v.Kind == KindFloat
}

// IsScalar reports whether v is a String, Integer, or Float.
func (v Value) IsScalar() bool {
	return v.Kind == KindString || v.IsNumeric()
}

// float returns the numeric value of v promoted to float64.
func (v Value) float() float64 {
	if v.Kind == KindInteger {
		return float64(v.Int)
	}

	return v.Float
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.Kind {
	case KindArray:
		if v.Array != nil {
			v.Array = slices.Clone(v.Array)
		}

	case KindDictionary:
		v.Dict = v.Dict.Clone()
	}

	return v
}

// Equal reports whether v and w have the same kind and the same content.
// Dictionary key order is significant.
func (v Value) Equal(w Value) bool {
	if v.Kind != w.Kind {
		return false
	}

	switch v.Kind {
	case KindString:
		return v.Str == w.Str

	case KindInteger:
		return v.Int == w.Int

	case KindFloat:
		return v.Float == w.Float ||
			(math.IsNaN(v.Float) && math.IsNaN(w.Float))

	case KindArray:
		return slices.EqualFunc(v.Array, w.Array, Value.Equal)

	case KindDictionary:
		return v.Dict.Equal(w.Dict)

	default:
		return false
	}
}

// String formats v in the configuration language's literal syntax.
func (v Value) String() string {
	var sb strings.Builder

	v.write(&sb)

	return sb.String()
}

func (v Value) write(sb *strings.Builder) {
	switch v.Kind {
	case KindString:
		sb.WriteByte('"')
		sb.WriteString(v.Str)
		sb.WriteByte('"')

	case KindInteger:
		sb.WriteString(strconv.FormatInt(v.Int, 10))

	case KindFloat:
		sb.WriteString(formatFloat(v.Float))

	case KindArray:
		sb.WriteByte('{')

		for i, e := range v.Array {
			if i > 0 {
				sb.WriteByte('.')

				// Adjacent numbers joined by a bare dot read back as one dotted run.
				if e.IsNumeric() || v.Array[i-1].IsNumeric() {
					sb.WriteByte(' ')
				}
			}

			e.write(sb)
		}

		sb.WriteByte('}')

	case KindDictionary:
		sb.WriteString("begin ... end;")
	}
}

// formatFloat formats f so that it always reads back as a Float: a decimal
// point is always present.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// Dictionary is an insertion-ordered mapping from string keys to values.
// The zero value is an empty dictionary ready to use.
type Dictionary struct {
	keys   []string
	values map[string]Value
}

// NewDictionaryOf returns an empty dictionary with room for n entries.
func NewDictionaryOf(n int) *Dictionary {
	return &Dictionary{
		keys:   make([]string, 0, n),
		values: make(map[string]Value, n),
	}
}

// Len returns the number of entries in d.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}

	return len(d.keys)
}

// Has reports whether key is present in d.
func (d *Dictionary) Has(key string) bool {
	if d == nil {
		return false
	}

	_, ok := d.values[key]

	return ok
}

// Get returns the value stored under key.
func (d *Dictionary) Get(key string) (Value, bool) {
	if d == nil {
		return Value{}, false
	}

	v, ok := d.values[key]

	return v, ok
}

// Set stores value under key. New keys are appended to the iteration order;
// existing keys keep their position.
func (d *Dictionary) Set(key string, value Value) {
	if d.values == nil {
		d.values = make(map[string]Value)
	}

	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}

	d.values[key] = value
}

// Keys returns the keys of d in insertion order.
func (d *Dictionary) Keys() []string {
	if d == nil {
		return nil
	}

	return slices.Clone(d.keys)
}

// All returns an iterator over the entries of d in insertion order.
func (d *Dictionary) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if d == nil {
			return
		}

		for _, k := range d.keys {
			if !yield(k, d.values[k]) {
				return
			}
		}
	}
}

// Clone returns a deep copy of d.
func (d *Dictionary) Clone() *Dictionary {
	if d == nil {
		return nil
	}

	c := NewDictionaryOf(len(d.keys))
	for k, v := range d.All() {
		c.Set(k, v.Clone())
	}

	return c
}

// Equal reports whether d and e hold equal values under the same keys in the
// same order.
func (d *Dictionary) Equal(e *Dictionary) bool {
	if d.Len() != e.Len() {
		return false
	}

	if d.Len() == 0 {
		return true
	}

	if !slices.Equal(d.keys, e.keys) {
		return false
	}

	for k, v := range d.All() {
		w, _ := e.Get(k)
		if !v.Equal(w) {
			return false
		}
	}

	return true
}
