package util

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/golang/glog"
)

// Severity classifies a diagnostic message. Only Error and Fatal affect the process
// exit code; Warning, Note and Remark are purely informative.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
	SeverityRemark
	SeverityFatal
)

// String returns the lower-case label used in rendered diagnostics.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	case SeverityRemark:
		return "remark"
	case SeverityFatal:
		return "fatal error"
	default:
		return "diagnostic"
	}
}

// Diagnostics owns the process-visible table of source buffers (so it can render
// caret snippets) plus running error/warning counters. One Diagnostics instance is
// shared by the lexer, parser and lowering stages of a single compilation.
type Diagnostics struct {
	mu      sync.Mutex
	sources map[string]string
	out     io.Writer
	errors  int
	warns   int
}

// NewDiagnostics returns a Diagnostics sink that writes to stderr.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{sources: make(map[string]string), out: os.Stderr}
}

// SetOutput redirects rendered diagnostics, primarily for tests.
func (d *Diagnostics) SetOutput(w io.Writer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.out = w
}

// SetSource registers the text of filename so later diagnostics against locations in
// that file can render a source snippet and caret.
func (d *Diagnostics) SetSource(filename, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sources[filename] = text
}

// ClearSource drops a previously registered source buffer.
func (d *Diagnostics) ClearSource(filename string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sources, filename)
}

// Report renders a single diagnostic line, an optional source snippet with caret, and
// bumps the relevant counter. A Fatal severity logs through glog.Fatalf and exits the
// process, matching the "Internal / OOM" error kind in spec §7.
func (d *Diagnostics) Report(loc SourceLocation, sev Severity, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	d.mu.Lock()
	switch sev {
	case SeverityError, SeverityFatal:
		d.errors++
	case SeverityWarning:
		d.warns++
	}
	src, haveSrc := d.sources[loc.Filename]
	out := d.out
	d.mu.Unlock()

	fmt.Fprintf(out, "%s: %s: %s\n", loc, sev, msg)
	if haveSrc {
		if line := sourceLine(src, loc.Line); line != "" {
			fmt.Fprintf(out, "%5d | %s\n", loc.Line, line)
			if loc.Column > 0 {
				fmt.Fprintf(out, "      | %s^\n", strings.Repeat(" ", loc.Column-1))
			}
		}
	}

	if sev == SeverityFatal {
		glog.Fatalf("%s: %s", loc, msg)
	}
}

// FixIt appends a replacement-hint line directly below the most recently reported
// diagnostic, e.g. "did you mean 'int'?".
func (d *Diagnostics) FixIt(loc SourceLocation, replacement string) {
	d.mu.Lock()
	out := d.out
	d.mu.Unlock()
	fmt.Fprintf(out, "      | fix-it: replace with %q at %s\n", replacement, loc)
}

// ErrorCount returns the number of Error/Fatal diagnostics reported so far.
func (d *Diagnostics) ErrorCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errors
}

// WarningCount returns the number of Warning diagnostics reported so far.
func (d *Diagnostics) WarningCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.warns
}

// sourceLine returns the 1-indexed line from src, or "" if out of range.
func sourceLine(src string, line int) string {
	if line < 1 {
		return ""
	}
	cur := 1
	start := -1
	for i, r := range src {
		if cur == line && start == -1 {
			start = i
		}
		if r == '\n' {
			if cur == line {
				return src[start:i]
			}
			cur++
		}
	}
	if cur == line && start != -1 {
		return src[start:]
	}
	return ""
}
