package lang

import (
	"context"
	"iter"
	"log/slog"

	"github.com/ardnew/cfgconv/log"
)

// Document is the result of a successful parse: an ordered mapping from
// top-level dictionary names to their contents, plus a snapshot of the
// constant table as it stood at the end of the parse.
type Document struct {
	root      *Dictionary
	constants *Dictionary
	opts      optionsKey // configuration options
	logger    log.Logger // structured logger (outside optionsKey, doesn't affect cache)
}

func newDocument() *Document {
	return &Document{
		root:      new(Dictionary),
		constants: new(Dictionary),
	}
}

// NewDocument returns an empty Document configured with opts.
func NewDocument(opts ...Option) *Document {
	doc := newDocument()

	applyDefaults(doc)
	applyOptions(doc, opts...)

	return doc
}

// DefineDictionary adds or replaces the top-level dictionary name.
func (doc *Document) DefineDictionary(name string, dict *Dictionary) *Document {
	if dict == nil {
		dict = new(Dictionary)
	}

	doc.root.Set(name, Value{Kind: KindDictionary, Dict: dict})

	return doc
}

// DefineConstant adds or replaces the constant name.
func (doc *Document) DefineConstant(name string, value Value) *Document {
	doc.constants.Set(name, value)

	return doc
}

// Get returns the top-level dictionary name.
func (doc *Document) Get(name string) (*Dictionary, bool) {
	v, ok := doc.root.Get(name)
	if !ok {
		return nil, false
	}

	return v.Dict, true
}

// Names returns the top-level dictionary names in source order.
func (doc *Document) Names() []string {
	return doc.root.Keys()
}

// Len returns the number of top-level dictionaries.
func (doc *Document) Len() int {
	return doc.root.Len()
}

// All returns an iterator over the top-level dictionaries in source order.
func (doc *Document) All() iter.Seq2[string, *Dictionary] {
	return func(yield func(string, *Dictionary) bool) {
		for name, v := range doc.root.All() {
			if !yield(name, v.Dict) {
				return
			}
		}
	}
}

// Constant returns a copy of the constant name.
func (doc *Document) Constant(name string) (Value, bool) {
	v, ok := doc.constants.Get(name)
	if !ok {
		return Value{}, false
	}

	return v.Clone(), true
}

// Constants returns an iterator over copies of the constants in the order
// they were first declared.
func (doc *Document) Constants() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for name, v := range doc.constants.All() {
			if !yield(name, v.Clone()) {
				return
			}
		}
	}
}

// ConstantNames returns the constant names in the order they were first
// declared.
func (doc *Document) ConstantNames() []string {
	return doc.constants.Keys()
}

// Value returns the document as a single Dictionary value.
func (doc *Document) Value() Value {
	return Value{Kind: KindDictionary, Dict: doc.root}
}

// Equal reports whether doc and other hold equal dictionaries in the same
// order. Constants are not compared.
func (doc *Document) Equal(other *Document) bool {
	return doc.root.Equal(other.root)
}

// EvaluateValue evaluates a single value expression against the document's
// constants. Errors report line 1.
func (doc *Document) EvaluateValue(ctx context.Context, text string) (Value, error) {
	p := &parser{
		lines:     []string{text},
		constants: doc.constants,
		maxDepth:  doc.opts.maxDepth,
		logger:    doc.logger,
	}

	v, err := p.evaluateValue(p.current())
	if err != nil {
		return Value{}, err
	}

	doc.logger.TraceContext(ctx, "evaluate value",
		slog.String("text", text),
		slog.String("kind", v.Kind.String()))

	return v, nil
}
