// Package cmd implements the cfgconv subcommands.
//
// Every command reads documents written in the configuration language through
// [github.com/ardnew/cfgconv/lang] and writes results to standard output
// unless a different writer is installed with [WithOutput]:
//
//   - convert: write a document as YAML, JSON, TOML or native syntax
//   - check:   parse sources and report the first error
//   - fmt:     pretty-print a document in a chosen format
//   - eval:    evaluate a value against the constants of a document
//   - query:   run an expression over a document
//   - init:    write the current flag values as a configuration file
//   - repl:    evaluate declarations, values and queries interactively
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file. It is also the name of the dictionary in that
	// file holding flag values.
	ConfigIdentifier = "config"
)
