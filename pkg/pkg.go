// Package pkg holds project-wide identity and filesystem locations.
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the module embedded at build time.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the canonical command name. It appears in help text and in the
	// default configuration and cache paths.
	Name = "non"
	// Description is a short summary of the project used in help output.
	Description = "Prototype record compiler"
	// SourceExt is the conventional file extension of source files.
	SourceExt = ".non"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
//
//nolint:gochecknoglobals
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
