package lang

// Builder provides a programmatic API for constructing values and documents
// without parsing source text. This is useful for generating configuration
// files programmatically or for testing.
//
// Example:
//
//	b := lang.NewBuilder()
//	doc := b.Document(
//	    b.Entry("port", b.Integer(8080)),
//	    b.Entry("server", b.Dictionary(
//	        b.Entry("host", b.String("localhost")),
//	        b.Entry("port", b.Integer(8080)),
//	    )),
//	)
type Builder struct{}

// Entry is a named value.
type Entry struct {
	Key   string
	Value Value
}

// NewBuilder creates a new builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// String creates a String [Value].
func (b *Builder) String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Integer creates an Integer [Value].
func (b *Builder) Integer(i int64) Value {
	return Value{Kind: KindInteger, Int: i}
}

// Float creates a Float [Value].
func (b *Builder) Float(f float64) Value {
	return Value{Kind: KindFloat, Float: f}
}

// Array creates an Array [Value].
func (b *Builder) Array(elems ...Value) Value {
	return Value{Kind: KindArray, Array: append([]Value{}, elems...)}
}

// Entry creates an [Entry].
func (b *Builder) Entry(key string, value Value) Entry {
	return Entry{Key: key, Value: value}
}

// Dictionary creates a Dictionary [Value] holding entries in order.
// A later entry replaces an earlier one with the same key.
func (b *Builder) Dictionary(entries ...Entry) Value {
	dict := NewDictionaryOf(len(entries))
	for _, e := range entries {
		dict.Set(e.Key, e.Value)
	}

	return Value{Kind: KindDictionary, Dict: dict}
}

// Document creates a [Document]. Dictionary entries become top-level
// dictionaries and all other entries become constants.
func (b *Builder) Document(entries ...Entry) *Document {
	doc := NewDocument()

	for _, e := range entries {
		if e.Value.Kind == KindDictionary {
			doc.DefineDictionary(e.Key, e.Value.Dict)
		} else {
			doc.DefineConstant(e.Key, e.Value)
		}
	}

	return doc
}
