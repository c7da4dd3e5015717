// Package course provides normalization helpers for course identifiers and
// exporter server hosts. The helpers are pure functions so the CLI and the
// backup orchestrator share one definition of each rule.
package course

import (
	"errors"
	"strings"
)

const (
	// DefaultServer is the exporter host used when no server is given.
	DefaultServer = "courses.academy.africa"

	// ArchiveSuffix is appended to the normalized course name to form the
	// archive filename.
	ArchiveSuffix = "-course.zip"
)

// ErrEmptyName indicates that the course name normalized to nothing.
var ErrEmptyName = errors.New("course name is empty")

// NormalizeName strips an accidental leading path separator from a course
// name. A name like "/math101" becomes "math101"; "/a/b" keeps only the
// first segment after the separator. Names without a leading separator are
// returned unchanged.
func NormalizeName(name string) (string, error) {
	if strings.HasPrefix(name, "/") {
		parts := strings.SplitN(strings.TrimPrefix(name, "/"), "/", 2)
		name = parts[0]
	}
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// ArchiveName returns the archive filename for a normalized course name.
func ArchiveName(name string) string {
	return name + ArchiveSuffix
}

// ExportKey returns the course key the exporter expects. The exporter
// addresses courses by their slash-prefixed namespace even though the CLI
// accepts the bare name.
func ExportKey(name string) string {
	return "/" + name
}

// ResolveServer resolves the exporter host. An empty argument yields
// DefaultServer; otherwise one literal http:// or https:// prefix is
// stripped and the remainder is used verbatim.
func ResolveServer(server string) string {
	if server == "" {
		return DefaultServer
	}
	if after, ok := strings.CutPrefix(server, "https://"); ok {
		return after
	}
	if after, ok := strings.CutPrefix(server, "http://"); ok {
		return after
	}
	return server
}

// DefaultCommitTemplate is the commit message template used when none is
// configured. The {course} placeholder expands to the course name.
const DefaultCommitTemplate = "backup course {course}"

// CommitMessage returns the default commit message for a backup of the
// given course.
func CommitMessage(name string) string {
	return FormatCommitMessage("", name)
}

// FormatCommitMessage expands a commit message template for the given
// course. An empty template falls back to DefaultCommitTemplate.
func FormatCommitMessage(template, name string) string {
	if template == "" {
		template = DefaultCommitTemplate
	}
	return strings.ReplaceAll(template, "{course}", name)
}
