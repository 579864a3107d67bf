package lang

// This file defines the built-in environment available to queries. The
// environment is lazily initialized once per process and cloned on every
// access so callers may mutate the returned map without affecting the
// shared cache.
//
// Built-in names can be shadowed by constants and dictionaries.

import (
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/mung"
)

// Private singleton cache.
//
//nolint:gochecknoglobals
var (
	envCacheOnce sync.Once
	envCache     map[string]any
)

// platform identifies the host operating system and architecture using Go
// naming conventions.
type platform struct {
	OS   string
	Arch string
}

// makeEnvCache returns a clone of the lazily-initialized, process-scoped
// environment containing built-in variables and functions.
func makeEnvCache() map[string]any {
	envCacheOnce.Do(func() {
		envCache = map[string]any{
			"platform": platform{OS: runtime.GOOS, Arch: runtime.GOARCH},
			"hostname": hostname(),
			"cwd":      cwd,

			"file": map[string]any{
				"exists": fileExists,
				"isDir":  fileIsDir,
			},

			"path": map[string]any{
				"abs":  pathAbs,
				"cat":  filepath.Join,
				"base": filepath.Base,
				"dir":  filepath.Dir,
			},

			// PATH-like string manipulation via mung.
			"mung": map[string]any{
				"prefix":   mungPrefix,
				"prefixif": mungPrefixIf,
			},
		}
	})

	return maps.Clone(envCache)
}

// BuiltinEnvKeys returns the sorted top-level names of the query builtins.
func BuiltinEnvKeys() []string {
	keys := slices.Collect(maps.Keys(makeEnvCache()))

	// "env" is bound per query to the process environment
	keys = append(keys, "env")
	slices.Sort(keys)

	return keys
}

// BuiltinEnvLookup returns the sorted member names of the builtin at the
// dot-separated path, or nil if the path does not name a group of builtins.
// The path "env" yields the process environment variable names.
func BuiltinEnvLookup(path string) []string {
	if path == "" {
		return BuiltinEnvKeys()
	}

	if path == "env" {
		keys := slices.Collect(maps.Keys(buildProcessEnvMap(nil)))
		slices.Sort(keys)

		return keys
	}

	var current any = makeEnvCache()

	for seg := range strings.SplitSeq(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}

		if current, ok = m[seg]; !ok {
			return nil
		}
	}

	m, ok := current.(map[string]any)
	if !ok {
		return nil
	}

	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)

	return keys
}

// BuiltinEnvValue returns the builtin at the dot-separated path, such as
// the function "path.cat".
func BuiltinEnvValue(path string) (any, bool) {
	if path == "env" {
		return envFunc(nil), true
	}

	var current any = makeEnvCache()

	for seg := range strings.SplitSeq(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		if current, ok = m[seg]; !ok {
			return nil, false
		}
	}

	return current, true
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return ""
	}

	return name
}

func cwd() string {
	dir, err := os.Getwd()
	if err != nil {
		return pathAbs(".")
	}

	return dir
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return !os.IsNotExist(err)
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.IsDir()
}

func pathAbs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

func mungPrefix(key string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

func mungPrefixIf(
	key string,
	predicate func(string) bool,
	prefix ...string,
) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(predicate),
	).String()
}

// buildProcessEnvMap converts a "KEY=VALUE" string slice to a map.
// If envList is empty, os.Environ() is used.
func buildProcessEnvMap(envList []string) map[string]string {
	if len(envList) == 0 {
		envList = os.Environ()
	}

	result := make(map[string]string, len(envList))

	for _, entry := range envList {
		key, value, ok := strings.Cut(entry, "=")
		if ok {
			result[key] = value
		}
	}

	return result
}

// envFunc returns the env() builtin reading from processEnv.
func envFunc(processEnv map[string]string) func(string) string {
	return func(key string) string {
		return processEnv[key]
	}
}
