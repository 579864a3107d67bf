package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// DirMode is the permission mode of directories created by [MkdirAll].
const DirMode os.FileMode = 0o700

// Prefix returns the base name of the running executable, used to name the
// configuration and cache directories.
//
// Two substitutions apply:
//   - "__debug_bin<N>" (dlv output) becomes [Name]
//   - leading dots are removed
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = filepath.Base(id)
		id = strings.TrimSuffix(id, filepath.Ext(id))

		id = regexp.MustCompile(`^__debug_bin\d*$`).ReplaceAllString(id, Name)
		id = strings.TrimLeft(id, ".")

		if id == "" {
			return Name
		}

		return id
	},
)

// userDir returns the first usable directory among the result of primary,
// the given subdirectory of the user's home, and the working directory.
func userDir(primary func() (string, error), homeSub string) string {
	if dir, err := primary(); err == nil {
		return dir
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, homeSub)
	}

	if wd, err := os.Getwd(); err == nil {
		return wd
	}

	return "."
}

// ConfigDir returns the configuration directory path.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string {
		return filepath.Join(userDir(os.UserConfigDir, ".config"), Prefix())
	},
)

// CacheDir returns the cache directory path used for transient files such as
// REPL history and profiles.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string {
		return filepath.Join(userDir(os.UserCacheDir, ".cache"), Prefix())
	},
)

// ConfigPath joins elem onto [ConfigDir].
func ConfigPath(elem ...string) string {
	return filepath.Join(append([]string{ConfigDir()}, elem...)...)
}

// MkdirAll creates the configuration and cache directories.
func MkdirAll() error {
	for _, dir := range []string{ConfigDir(), CacheDir()} {
		if err := os.MkdirAll(dir, DirMode); err != nil {
			return err
		}
	}

	return nil
}
