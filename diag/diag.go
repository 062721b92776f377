// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package diag collects compile diagnostics.
//
// A [List] is owned by the top-level compile call and passed explicitly to
// every stage. Stages append messages and report success with a bool or an
// error; nothing here touches process-wide logging state.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes a diagnostic by the stage that produced it.
type Kind uint8

const (
	// KindFrontend is a syntax or semantic error reported by the frontend.
	KindFrontend Kind = iota

	// KindEntryPoint is a missing mandatory entry point.
	KindEntryPoint

	// KindReflection is an unsupported reflection shape.
	KindReflection

	// KindVertexInput is a missing, unknown or mismatched vertex semantic.
	KindVertexInput

	// KindCodegen is a link or per-entry-point code generation failure.
	KindCodegen

	// KindCrossCompile is a failure while flattening or transpiling bytecode.
	KindCrossCompile

	// KindConfig is an invalid build configuration.
	KindConfig
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindFrontend:
		return "frontend"
	case KindEntryPoint:
		return "entry-point"
	case KindReflection:
		return "reflection"
	case KindVertexInput:
		return "vertex-input"
	case KindCodegen:
		return "codegen"
	case KindCrossCompile:
		return "cross-compile"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Severity is the severity of a message.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Message is a single diagnostic.
type Message struct {
	Kind     Kind
	Severity Severity
	Text     string
}

// String formats the message for display.
func (m Message) String() string {
	if m.Severity == SeverityWarning {
		return fmt.Sprintf("%s warning: %s", m.Kind, m.Text)
	}
	return fmt.Sprintf("%s error: %s", m.Kind, m.Text)
}

// List is an ordered diagnostic sink. The zero value is ready to use.
type List struct {
	msgs []Message
}

// Errorf appends an error message.
func (l *List) Errorf(kind Kind, format string, args ...any) {
	l.msgs = append(l.msgs, Message{Kind: kind, Severity: SeverityError, Text: fmt.Sprintf(format, args...)})
}

// Warnf appends a warning.
func (l *List) Warnf(kind Kind, format string, args ...any) {
	l.msgs = append(l.msgs, Message{Kind: kind, Severity: SeverityWarning, Text: fmt.Sprintf(format, args...)})
}

// Text appends raw diagnostic text verbatim, one message per non-empty
// line. It is used for toolchain output.
func (l *List) Text(kind Kind, sev Severity, text string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		l.msgs = append(l.msgs, Message{Kind: kind, Severity: sev, Text: line})
	}
}

// Add appends err as an error message. A *Error is flattened into the list.
func (l *List) Add(kind Kind, err error) {
	if err == nil {
		return
	}
	var de *Error
	if errors.As(err, &de) {
		l.msgs = append(l.msgs, de.Messages...)
		return
	}
	l.msgs = append(l.msgs, Message{Kind: kind, Severity: SeverityError, Text: err.Error()})
}

// Messages returns the collected messages in order.
func (l *List) Messages() []Message {
	return l.msgs
}

// Strings returns every message formatted for display.
func (l *List) Strings() []string {
	out := make([]string, len(l.msgs))
	for i, m := range l.msgs {
		out[i] = m.String()
	}
	return out
}

// Len returns the number of messages.
func (l *List) Len() int {
	return len(l.msgs)
}

// HasErrors reports whether any message is an error.
func (l *List) HasErrors() bool {
	for _, m := range l.msgs {
		if m.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Reset discards all messages.
func (l *List) Reset() {
	l.msgs = l.msgs[:0]
}

// Err returns nil when the list holds no errors, otherwise a *Error holding
// a copy of every message.
func (l *List) Err() error {
	if !l.HasErrors() {
		return nil
	}
	msgs := make([]Message, len(l.msgs))
	copy(msgs, l.msgs)
	return &Error{Messages: msgs}
}

// Error is a failed compile with its full diagnostic list.
type Error struct {
	Messages []Message
}

// Error implements the error interface.
func (e *Error) Error() string {
	var errs []string
	for _, m := range e.Messages {
		if m.Severity == SeverityError {
			errs = append(errs, m.String())
		}
	}
	switch len(errs) {
	case 0:
		return "compile failed"
	case 1:
		return errs[0]
	default:
		return fmt.Sprintf("%s (and %d more errors)", errs[0], len(errs)-1)
	}
}

// Has reports whether e carries an error of the given kind.
func (e *Error) Has(kind Kind) bool {
	for _, m := range e.Messages {
		if m.Kind == kind && m.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Messages returns the display strings carried by err. For errors that are
// not a *Error it returns err's text.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	var de *Error
	if !errors.As(err, &de) {
		return []string{err.Error()}
	}
	out := make([]string, len(de.Messages))
	for i, m := range de.Messages {
		out[i] = m.String()
	}
	return out
}
