package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache maps a cacheKey to the *state of its parse.
var globalCache sync.Map

// cacheKey identifies a parse by the hashes of its source and its options.
// The two hashes are compared separately, never combined.
type cacheKey struct {
	source uint64
	opts   uint64
}

func newCacheKey(source string, opts optionsKey) cacheKey {
	return cacheKey{
		source: xxh3.HashString(source),
		opts:   hashOptions(opts),
	}
}

// state tracks the parse result for a cached source.
type state struct {
	once sync.Once
	doc  *Document
	err  error
}

// hashOptions encodes options using gob and hashes with xxh3.
// Returns a hash that uniquely identifies the options configuration.
func hashOptions(opts optionsKey) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(opts.maxDepth)
	_ = enc.Encode(opts.processEnv)

	return xxh3.Hash(buf.Bytes())
}

// ParseReader parses the content of r into a Document.
//
// Results are cached by content and options, so parsing the same content
// again returns a fresh copy of the cached document (or the cached error)
// without reparsing.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Document, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return parseCached(ctx, string(data), opts...)
}

// parseCached parses source once per distinct (source, options) pair.
func parseCached(
	ctx context.Context,
	source string,
	opts ...Option,
) (*Document, error) {
	tempDoc := newDocument()

	applyDefaults(tempDoc)
	applyOptions(tempDoc, opts...)

	key := newCacheKey(source, tempDoc.opts)

	value, cacheHit := globalCache.LoadOrStore(key, new(state))

	entry, ok := value.(*state)
	if !ok {
		return nil, ErrReadInput.
			With(slog.String("issue", "invalid entry type in cache"))
	}

	tempDoc.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(key.source, 16)),
		slog.String("opts_hash", strconv.FormatUint(key.opts, 16)),
		slog.Bool("cache_hit", cacheHit),
	)

	entry.once.Do(func() {
		entry.doc, entry.err = ParseString(ctx, source, opts...)
	})

	if entry.err != nil {
		return nil, entry.err
	}

	// Hand out a copy so callers cannot mutate the cached document.
	doc := &Document{
		root:      entry.doc.root.Clone(),
		constants: entry.doc.constants.Clone(),
		opts:      tempDoc.opts,
		logger:    tempDoc.logger,
	}

	return doc, nil
}

// ClearCache removes all cached parse results.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache.Clear()
}
