// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package frontend

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/gogpu/shaderkit/session"
)

//go:embed builtin/*.wgsl
var builtinFS embed.FS

// nopHandler is a slog.Handler that silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// Options configures an Environment.
type Options struct {
	// Logger receives diagnostics. Nil disables logging.
	//
	// Log levels used by the compiler:
	//   - [slog.LevelDebug]: per-compile details (macros, entry points, code sizes)
	//   - [slog.LevelInfo]: environment creation
	//   - [slog.LevelWarn]: non-fatal frontend findings
	Logger *slog.Logger

	// Debug selects unoptimized output with debug info for every backend.
	Debug bool

	// Includes are consulted by #include after the session search paths
	// and before the built-in includes.
	Includes []fs.FS
}

// Environment is the long-lived compiler handle. It is created once at
// startup and passed to every compile. An Environment is immutable and safe
// for concurrent use; each compile opens its own [Context].
type Environment struct {
	logger   *slog.Logger
	debug    bool
	includes []fs.FS
}

// NewEnvironment creates an environment.
func NewEnvironment(opts Options) (*Environment, error) {
	builtin, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		return nil, fmt.Errorf("frontend: built-in includes: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(nopHandler{})
	}
	env := &Environment{
		logger:   logger,
		debug:    opts.Debug,
		includes: append(append([]fs.FS(nil), opts.Includes...), builtin),
	}
	logger.Info("shader compiler environment created",
		slog.Bool("debug", opts.Debug),
		slog.Int("include_roots", len(env.includes)))
	return env, nil
}

// MustEnvironment is like NewEnvironment but panics on error. Failing to
// create the environment is unrecoverable for the process.
func MustEnvironment(opts Options) *Environment {
	env, err := NewEnvironment(opts)
	if err != nil {
		panic(err)
	}
	return env
}

// Logger returns the environment's logger.
func (e *Environment) Logger() *slog.Logger {
	return e.logger
}

// Debug reports whether the environment compiles debug builds.
func (e *Environment) Debug() bool {
	return e.debug
}

// Descriptor returns the preset descriptor of backend b using the
// environment's debug toggle.
func (e *Environment) Descriptor(b session.Backend) session.Descriptor {
	return session.ForBackend(b, e.debug)
}

// NewContext opens a compile context for one session descriptor. The
// caller must Close it.
func (e *Environment) NewContext(desc session.Descriptor) *Context {
	return &Context{
		env:    e,
		desc:   desc,
		logger: e.logger.With(slog.String("backend", desc.Backend.String())),
	}
}
