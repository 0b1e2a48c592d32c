// Package util collects ambient concerns shared by every compiler stage: source
// locations and diagnostics, CLI option parsing, source/stdin reading, and the small
// generic data structures (Stack, synthetic label counter) the frontend and backend
// both reuse.
package util

import "fmt"

// SourceLocation pins a token or AST node to a single byte in a single source file.
// It is immutable and copied by value, matching spec's "zero-cost copy" requirement.
type SourceLocation struct {
	Filename string
	Line     int
	Column   int
	Offset   int
}

// String renders the location the way diagnostics do: file:line:col.
func (l SourceLocation) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Filename, l.Line, l.Column)
}
