//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the cfgconv module embedded at build
// time, without surrounding whitespace.
var Version = strings.TrimSpace(version)

const (
	// Name is the canonical command and module identifier. It names the
	// configuration and cache directories and appears in help output.
	Name = "cfgconv"
	// Description is a short summary of the command used in help output.
	Description = "Configuration language to YAML converter"
)

// AuthorInfo is an author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
