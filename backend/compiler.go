// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"log/slog"
	"maps"

	"github.com/gogpu/shaderkit/crosscompile"
	"github.com/gogpu/shaderkit/diag"
	"github.com/gogpu/shaderkit/emit"
	"github.com/gogpu/shaderkit/frontend"
	"github.com/gogpu/shaderkit/param"
	"github.com/gogpu/shaderkit/reflection"
	"github.com/gogpu/shaderkit/session"
	"github.com/gogpu/shaderkit/vertex"
	"github.com/gogpu/shaderkit/walker"
)

// Options configures a Compiler.
type Options struct {
	// SearchPaths are appended to the include search paths of every
	// compile.
	SearchPaths []string

	// Macros are defined after the backend's own macros and before the
	// target's definitions.
	Macros []session.Macro
}

// Compiler compiles shaders for one backend. A Compiler holds no per-compile
// state and may be used from several goroutines.
type Compiler struct {
	env    *frontend.Environment
	desc   session.Descriptor
	logger *slog.Logger
}

// New returns a compiler for backend b.
func New(b session.Backend, env *frontend.Environment, opts Options) *Compiler {
	desc := env.Descriptor(b).
		WithSearchPaths(opts.SearchPaths...).
		WithMacros(opts.Macros...)
	return &Compiler{
		env:    env,
		desc:   desc,
		logger: env.Logger().With(slog.String("backend", b.String())),
	}
}

// NewVulkan returns a compiler emitting SPIR-V 1.3.
func NewVulkan(env *frontend.Environment, opts Options) *Compiler {
	return New(session.Vulkan, env, opts)
}

// NewOpenGL returns a compiler emitting GLSL 330 core.
func NewOpenGL(env *frontend.Environment, opts Options) *Compiler {
	return New(session.OpenGL, env, opts)
}

// NewGLES returns a compiler emitting GLSL ES 3.00 with flattened
// bindings.
func NewGLES(env *frontend.Environment, opts Options) *Compiler {
	return New(session.GLES, env, opts)
}

// NewMetal returns a compiler emitting MSL 2.1.
func NewMetal(env *frontend.Environment, opts Options) *Compiler {
	return New(session.Metal, env, opts)
}

// NewD3D12 returns a compiler emitting HLSL for shader model 5.1.
func NewD3D12(env *frontend.Environment, opts Options) *Compiler {
	return New(session.D3D12, env, opts)
}

// Backend returns the compiler's backend.
func (c *Compiler) Backend() session.Backend {
	return c.desc.Backend
}

// Descriptor returns the session descriptor every compile starts from.
func (c *Compiler) Descriptor() session.Descriptor {
	return c.desc
}

// Compile compiles source for target and installs the result on it. On
// failure target keeps its previous result and the returned error is a
// *diag.Error carrying every diagnostic.
func (c *Compiler) Compile(target Target, source string) error {
	compiled, err := c.Build(target.PipelineKind(), target.Macros(), source)
	if err != nil {
		c.logger.Warn("shader compile failed",
			slog.String("target", target.Label()),
			slog.Any("error", err))
		return err
	}
	target.Install(compiled)
	c.logger.Debug("shader compiled",
		slog.String("target", target.Label()),
		slog.Int("parameters", compiled.Parameters.Len()),
		slog.Int("attributes", len(compiled.Attributes)))
	return nil
}

// Build compiles source with macros defined after the compiler's own and
// returns the result without installing it anywhere.
func (c *Compiler) Build(kind reflection.PipelineKind, macros []session.Macro, source string) (*Compiled, error) {
	var sink diag.List
	desc := c.desc.WithMacros(macros...)

	ctx := c.env.NewContext(desc)
	defer ctx.Close()

	prog, ok := ctx.CompileModule(source, kind, &sink)
	if !ok {
		return nil, failure(&sink)
	}
	src, layout, ok := emit.Emit(prog, &sink)
	if !ok {
		return nil, failure(&sink)
	}
	table := param.NewTable()
	var attrs []vertex.Attribute
	if !walker.Walk(layout, table, &attrs, &sink) {
		return nil, failure(&sink)
	}
	var flat crosscompile.Remap
	if desc.Flags.Has(session.FlagFlattenBindings) && !desc.Transpile.IsZero() {
		if flat, ok = transpile(prog, src, &sink); !ok {
			return nil, failure(&sink)
		}
	}

	var warnings []string
	for _, m := range sink.Messages() {
		warnings = append(warnings, m.String())
	}
	return &Compiled{
		Source:     src,
		Parameters: table,
		Attributes: attrs,
		Backend:    desc.Backend,
		Profile:    desc.TargetProfile(),
		Kind:       kind,
		Flat:       flat,
		Warnings:   warnings,
	}, nil
}

// transpile replaces the SPIR-V of every stage of src with GLSL ES and
// returns the flattened bindings shared by all stages.
func transpile(prog *frontend.Program, src *emit.ShaderSource, sink *diag.List) (crosscompile.Remap, bool) {
	flat := make(crosscompile.Remap)
	for _, ep := range prog.EntryPoints() {
		text, remap, err := crosscompile.FlattenAndTranspile(src.Stage(ep.Stage), prog.Module(), ep.Name)
		if err != nil {
			sink.Errorf(diag.KindCrossCompile, "%s: %v", ep.Name, err)
			return nil, false
		}
		src.Set(ep.Stage, []byte(text))
		maps.Copy(flat, remap)
	}
	return flat, true
}

func failure(sink *diag.List) error {
	if err := sink.Err(); err != nil {
		return err
	}
	return &diag.Error{Messages: append(sink.Messages(), diag.Message{
		Kind:     diag.KindCodegen,
		Severity: diag.SeverityError,
		Text:     "compile failed without diagnostics",
	})}
}
