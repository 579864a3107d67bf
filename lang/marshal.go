package lang

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/goccy/go-yaml"
)

// ToNative converts a Value to its native Go type: string, int64, float64,
// []any, or map[string]any.
func (v Value) ToNative() any {
	switch v.Kind {
	case KindString:
		return v.Str

	case KindInteger:
		return v.Int

	case KindFloat:
		return v.Float

	case KindArray:
		result := make([]any, 0, len(v.Array))
		for _, e := range v.Array {
			result = append(result, e.ToNative())
		}

		return result

	case KindDictionary:
		return v.Dict.ToMap()

	default:
		return nil
	}
}

// ToMap converts d to a native Go map. Key order is not preserved.
func (d *Dictionary) ToMap() map[string]any {
	result := make(map[string]any, d.Len())

	for k, v := range d.All() {
		result[k] = v.ToNative()
	}

	return result
}

// ToMap converts the document to a native Go map where each top-level
// dictionary name is a key.
func (doc *Document) ToMap() map[string]any {
	return doc.root.ToMap()
}

// toOrdered converts a Value like [Value.ToNative] but represents
// dictionaries as [yaml.MapSlice] to keep their key order.
func (v Value) toOrdered() any {
	switch v.Kind {
	case KindArray:
		result := make([]any, 0, len(v.Array))
		for _, e := range v.Array {
			result = append(result, e.toOrdered())
		}

		return result

	case KindDictionary:
		return v.Dict.MapSlice()

	default:
		return v.ToNative()
	}
}

// MapSlice converts d to an ordered [yaml.MapSlice].
func (d *Dictionary) MapSlice() yaml.MapSlice {
	result := make(yaml.MapSlice, 0, d.Len())

	for k, v := range d.All() {
		result = append(result, yaml.MapItem{Key: k, Value: v.toOrdered()})
	}

	return result
}

// MapSlice converts the document to an ordered [yaml.MapSlice].
func (doc *Document) MapSlice() yaml.MapSlice {
	return doc.root.MapSlice()
}

// MarshalJSON implements json.Marshaler for Value. Dictionaries keep their
// key order and Floats always carry a decimal point.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindInteger:
		return strconv.AppendInt(nil, v.Int, 10), nil

	case KindFloat:
		if math.IsInf(v.Float, 0) || math.IsNaN(v.Float) {
			return json.Marshal(v.Float)
		}

		return []byte(formatFloat(v.Float)), nil

	case KindArray:
		if len(v.Array) == 0 {
			return []byte("[]"), nil
		}

		return json.Marshal(v.Array)

	case KindDictionary:
		return v.Dict.MarshalJSON()

	default:
		return json.Marshal(v.Str)
	}
}

// MarshalJSON implements json.Marshaler for Dictionary, writing entries in
// insertion order.
func (d *Dictionary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	i := 0

	for k, v := range d.All() {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}

		val, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)

		i++
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler for Document.
func (doc *Document) MarshalJSON() ([]byte, error) {
	return doc.root.MarshalJSON()
}
