// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package shaderkit compiles WGSL shaders for several graphics APIs and
// reflects the parameters and vertex inputs the engine binds at draw time.
//
// The simplest use compiles a graphics shader for Vulkan:
//
//	compiled, err := shaderkit.Compile(source)
//	if err != nil {
//	    for _, msg := range diag.Messages(err) {
//	        log.Println(msg)
//	    }
//	}
//	spv := compiled.Source.Vertex
//
// CompileWithOptions selects the backend, the pipeline kind and the
// definitions. Long-running tools that compile many shaders into
// pipelines they keep should use the backend package directly.
package shaderkit

import (
	"log/slog"
	"sync"

	"github.com/gogpu/shaderkit/backend"
	"github.com/gogpu/shaderkit/frontend"
	"github.com/gogpu/shaderkit/reflection"
	"github.com/gogpu/shaderkit/session"
)

// CompileOptions configures a one-shot compile.
type CompileOptions struct {
	// Backend is the target graphics API (default: Vulkan).
	Backend session.Backend

	// Kind selects the mandatory entry points (default: graphics).
	Kind reflection.PipelineKind

	// Defines are applied after the backend's own macros.
	Defines []session.Macro

	// SearchPaths are consulted by #include before the built-in includes.
	SearchPaths []string

	// Debug emits unoptimized code with debug info.
	Debug bool

	// Logger receives compiler logs. Nil disables logging.
	Logger *slog.Logger
}

// DefaultOptions returns the options Compile uses.
func DefaultOptions() CompileOptions {
	return CompileOptions{
		Backend: session.Vulkan,
		Kind:    reflection.PipelineGraphics,
	}
}

// defaultEnv is created on first use and shared by every compile that
// needs neither a logger nor debug output.
var defaultEnv = sync.OnceValue(func() *frontend.Environment {
	return frontend.MustEnvironment(frontend.Options{})
})

// DefaultEnvironment returns the shared release-mode environment.
func DefaultEnvironment() *frontend.Environment {
	return defaultEnv()
}

// Compile compiles a graphics shader for Vulkan using default options.
func Compile(source string) (*backend.Compiled, error) {
	return CompileWithOptions(source, DefaultOptions())
}

// CompileWithOptions compiles source with custom options.
//
// The compilation pipeline is:
//  1. Preprocess and parse author attributes
//  2. Parse and lower WGSL, then validate the IR
//  3. Discover entry points and link the program
//  4. Generate per-stage code
//  5. Reflect parameters and vertex inputs
//  6. Cross-compile to GLSL ES (GLES only)
//
// On failure the error is a *diag.Error carrying every diagnostic.
func CompileWithOptions(source string, opts CompileOptions) (*backend.Compiled, error) {
	env := DefaultEnvironment()
	if opts.Debug || opts.Logger != nil {
		var err error
		env, err = frontend.NewEnvironment(frontend.Options{Logger: opts.Logger, Debug: opts.Debug})
		if err != nil {
			return nil, err
		}
	}
	c := backend.New(opts.Backend, env, backend.Options{SearchPaths: opts.SearchPaths})
	return c.Build(opts.Kind, opts.Defines, source)
}
