// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package frontend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga/wgsl"
)

// SourceError is a preprocessing or attribute error at a source line.
type SourceError struct {
	Message string

	// File is the include name, or empty for the main source.
	File string

	// Line and Column are 1-based. Zero means unknown.
	Line   int
	Column int

	// Source is the text the position refers to.
	Source string
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	loc := e.File
	if e.Line > 0 {
		if loc != "" {
			loc += ":"
		}
		loc += fmt.Sprintf("%d:%d", e.Line, max(e.Column, 1))
	}
	if loc == "" {
		return e.Message
	}
	return loc + ": " + e.Message
}

// FormatWithContext returns the message followed by the offending line and
// a caret under the column.
func (e *SourceError) FormatWithContext() string {
	if e.Source == "" || e.Line == 0 {
		return e.Error()
	}
	lines := strings.Split(e.Source, "\n")
	if e.Line > len(lines) {
		return e.Error()
	}
	line := lines[e.Line-1]
	col := min(max(e.Column, 1), len(line)+1)

	var sb strings.Builder
	fmt.Fprintf(&sb, "error: %s\n", e.Message)
	if e.File != "" {
		fmt.Fprintf(&sb, "  --> %s:%d:%d\n", e.File, e.Line, col)
	} else {
		fmt.Fprintf(&sb, "  --> line %d:%d\n", e.Line, col)
	}
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", e.Line, line)
	fmt.Fprintf(&sb, "   | %s^\n", strings.Repeat(" ", col-1))
	return sb.String()
}

func newSourceError(file string, line int, source, format string, args ...any) *SourceError {
	return &SourceError{
		Message: fmt.Sprintf(format, args...),
		File:    file,
		Line:    line,
		Column:  1,
		Source:  source,
	}
}

// formatDiagnostic renders a frontend error with source context when the
// error carries positions.
func formatDiagnostic(err error) string {
	var list wgsl.SourceErrors
	if errors.As(err, &list) {
		return list.FormatAll()
	}
	var one *wgsl.SourceError
	if errors.As(err, &one) {
		return one.FormatWithContext()
	}
	var se *SourceError
	if errors.As(err, &se) {
		return se.FormatWithContext()
	}
	return err.Error()
}
