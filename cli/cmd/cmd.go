package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cfgconv/lang"
	"github.com/ardnew/cfgconv/log"
)

type (
	kongContextKey  struct{}
	outputKey       struct{}
	parseOptionsKey struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, kongContextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(kongContextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// WithOutput returns a new context.Context whose commands write their
// results to w instead of standard output.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// WithParseOptions returns a new context.Context carrying options applied to
// every document parsed by a command.
func WithParseOptions(ctx context.Context, opts ...lang.Option) context.Context {
	return context.WithValue(ctx, parseOptionsKey{}, opts)
}

func parseOptionsFrom(ctx context.Context) []lang.Option {
	opts, _ := ctx.Value(parseOptionsKey{}).([]lang.Option)

	return append([]lang.Option{
		lang.WithLogger(log.Default()),
		lang.WithProcessEnv(os.Environ()),
	}, opts...)
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// fileKey uniquely identifies a file by its device and inode numbers, so that
// symlinks and relative paths to the same file are read once.
type fileKey struct {
	dev uint64
	ino uint64
}

// sourceFiles reads a set of source files in order, followed by stdin if it
// was named. A newline is inserted after each file so that the last line of
// one file never joins the first line of the next.
type sourceFiles struct {
	files    []*os.File
	hasStdin bool
	reader   io.Reader
}

// IsZero reports whether there are no sources.
func (s *sourceFiles) IsZero() bool { return len(s.files) == 0 && !s.hasStdin }

// Read implements io.Reader.
func (s *sourceFiles) Read(p []byte) (int, error) {
	if s.reader == nil {
		readers := make([]io.Reader, 0, 2*len(s.files)+1)

		for _, f := range s.files {
			readers = append(readers, f, strings.NewReader("\n"))
		}

		if s.hasStdin {
			readers = append(readers, os.Stdin)
		}

		s.reader = io.MultiReader(readers...)
	}

	return s.reader.Read(p)
}

// Close closes every opened file. Stdin is left open.
func (s *sourceFiles) Close() error {
	var errs []error

	for _, f := range s.files {
		errs = append(errs, f.Close())
	}

	return errors.Join(errs...)
}

// openSources opens the given source paths, deduplicating them by device and
// inode. Every occurrence of "-" refers to a single stdin reader, read after
// all regular files. No sources means stdin.
func openSources(sources []string) (*sourceFiles, error) {
	if len(sources) == 0 {
		sources = []string{stdinSource}
	}

	var srcs sourceFiles

	seen := make(map[fileKey]struct{})

	var stdinKey fileKey
	if info, err := os.Stdin.Stat(); err == nil {
		stdinKey, _ = makeFileKey(info)
	}

	for _, src := range sources {
		if src == stdinSource {
			seen[stdinKey] = struct{}{}

			continue
		}

		file, err := openUniqueFile(src, seen)
		if err != nil {
			_ = srcs.Close()

			return nil, ErrReadSource.With(slog.String("source", src)).Wrap(err)
		}

		if file != nil {
			srcs.files = append(srcs.files, file)
		}
	}

	// Stdin may have been named with "-" or by its device path.
	_, srcs.hasStdin = seen[stdinKey]

	return &srcs, nil
}

// openUniqueFile opens the file at path unless it has been seen before, in
// which case it returns a nil file and no error.
func openUniqueFile(path string, seen map[fileKey]struct{}) (*os.File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, err
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return nil, nil
		}

		seen[key] = struct{}{}
	}

	return os.Open(resolved)
}

// makeFileKey creates a fileKey from os.FileInfo.
// It returns false if the underlying Sys() data is not a *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

// loadDocument parses the concatenation of the given sources.
func loadDocument(ctx context.Context, sources []string) (*lang.Document, error) {
	srcs, err := openSources(sources)
	if err != nil {
		return nil, err
	}
	defer srcs.Close()

	return lang.ParseReader(ctx, srcs, parseOptionsFrom(ctx)...)
}

// loadOrEmpty is [loadDocument], except that no sources yields an empty
// document rather than reading stdin.
func loadOrEmpty(ctx context.Context, sources []string) (*lang.Document, error) {
	if len(sources) == 0 {
		return lang.NewDocument(parseOptionsFrom(ctx)...), nil
	}

	return loadDocument(ctx, sources)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns the writer for path, where "-" and "" name the command
// output writer held in ctx.
func openOutput(ctx context.Context, path string) (io.WriteCloser, error) {
	if path == "" || path == stdinSource {
		return nopCloser{outputFrom(ctx)}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, ErrWriteOutput.With(slog.String("output", path)).Wrap(err)
	}

	return f, nil
}
