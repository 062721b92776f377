// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package frontend

import (
	"log/slog"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/shaderkit/diag"
	"github.com/gogpu/shaderkit/reflection"
	"github.com/gogpu/shaderkit/session"
)

// Entry point names recognized by the compiler, in stage order.
const (
	VertexEntry      = "vs_main"
	TessControlEntry = "tsc_main"
	TessEvalEntry    = "ts_main"
	GeometryEntry    = "gs_main"
	FragmentEntry    = "fs_main"
	ComputeEntry     = "cs_main"
)

// entryNames maps each stage to its fixed entry point name.
var entryNames = [reflection.StageCount]string{
	reflection.StageVertex:      VertexEntry,
	reflection.StageTessControl: TessControlEntry,
	reflection.StageTessEval:    TessEvalEntry,
	reflection.StageGeometry:    GeometryEntry,
	reflection.StageFragment:    FragmentEntry,
	reflection.StageCompute:     ComputeEntry,
}

// EntryPointName returns the entry point name of stage s.
func EntryPointName(s reflection.Stage) string {
	if s >= reflection.StageCount {
		return ""
	}
	return entryNames[s]
}

// Context is one compile session. It owns the module, entry points and
// program it produces; Close releases them. A Context is not safe for
// concurrent use.
type Context struct {
	env     *Environment
	desc    session.Descriptor
	logger  *slog.Logger
	program *Program
	closed  bool
}

// Descriptor returns the session descriptor of the context.
func (c *Context) Descriptor() session.Descriptor {
	return c.desc
}

// Close releases everything the context allocated. Programs obtained from
// the context are unusable afterwards. Close is idempotent.
func (c *Context) Close() {
	if c.closed {
		return
	}
	c.closed = true
	if c.program != nil {
		c.program.release()
		c.program = nil
	}
}

// CompileModule compiles source as one translation unit and links the
// entry points of the given pipeline kind into a program.
//
// Diagnostics are appended to sink. The boolean is false when the compile
// failed; the sink then holds at least one error.
func (c *Context) CompileModule(source string, kind reflection.PipelineKind, sink *diag.List) (*Program, bool) {
	if c.closed {
		sink.Errorf(diag.KindFrontend, "compile context is closed")
		return nil, false
	}
	if c.program != nil {
		c.program.release()
		c.program = nil
	}

	pp := newPreprocessor(c.desc, c.env.includes)
	expanded, err := pp.Run(source)
	if err != nil {
		sink.Text(diag.KindFrontend, diag.SeverityError, formatDiagnostic(err))
		return nil, false
	}
	c.logger.Debug("preprocessed shader",
		slog.Int("macros", len(pp.Defined())),
		slog.Int("bytes", len(expanded)))

	attrs, err := scanAttributes(expanded)
	if err != nil {
		sink.Text(diag.KindFrontend, diag.SeverityError, formatDiagnostic(err))
		return nil, false
	}

	ast, err := naga.Parse(expanded)
	if err != nil {
		sink.Text(diag.KindFrontend, diag.SeverityError, formatDiagnostic(err))
		return nil, false
	}
	module, err := naga.LowerWithSource(ast, expanded)
	if err != nil {
		sink.Text(diag.KindFrontend, diag.SeverityError, formatDiagnostic(err))
		return nil, false
	}

	findings, err := naga.Validate(module)
	if err != nil {
		sink.Errorf(diag.KindFrontend, "validation: %v", err)
		return nil, false
	}
	for _, f := range findings {
		sink.Warnf(diag.KindFrontend, "%s", f.Error())
		c.logger.Warn("shader validation finding", slog.String("message", f.Error()))
	}

	entries, ok := c.discover(module, kind, sink)
	if !ok {
		return nil, false
	}

	c.program = &Program{
		ctx:     c,
		module:  module,
		attrs:   attrs,
		entries: entries,
		kind:    kind,
	}
	c.logger.Debug("shader module linked",
		slog.String("pipeline", kind.String()),
		slog.Int("entry_points", len(entries)))
	return c.program, true
}

// discover probes the module for every recognized entry point and checks
// that the set found forms a valid pipeline of the requested kind.
func (c *Context) discover(m *ir.Module, kind reflection.PipelineKind, sink *diag.List) ([]EntryPoint, bool) {
	var found [reflection.StageCount]int
	for i := range found {
		found[i] = -1
	}

	ok := true
	for s, name := range entryNames {
		stage := reflection.Stage(s)
		for i, ep := range m.EntryPoints {
			if ep.Name != name {
				continue
			}
			if got, known := irStage(ep.Stage); !known || got != stage {
				sink.Errorf(diag.KindEntryPoint, "entry point %s must be a %s shader", name, stage)
				ok = false
				break
			}
			found[s] = i
			break
		}
	}
	if !ok {
		return nil, false
	}

	switch kind {
	case reflection.PipelineCompute:
		if found[reflection.StageCompute] < 0 {
			sink.Errorf(diag.KindEntryPoint, "compute pipeline is not valid: missing %s", ComputeEntry)
			return nil, false
		}
	default:
		var missing []string
		for _, s := range []reflection.Stage{reflection.StageVertex, reflection.StageFragment} {
			if found[s] < 0 {
				missing = append(missing, entryNames[s])
			}
		}
		if len(missing) > 0 {
			for _, name := range missing {
				sink.Errorf(diag.KindEntryPoint, "graphics pipeline is not valid: missing %s", name)
			}
			return nil, false
		}
	}

	var entries []EntryPoint
	for s, index := range found {
		if index < 0 {
			continue
		}
		stage := reflection.Stage(s)
		if (stage == reflection.StageCompute) != (kind == reflection.PipelineCompute) {
			sink.Warnf(diag.KindEntryPoint, "%s ignored in a %s pipeline", entryNames[s], kind)
			continue
		}
		entries = append(entries, EntryPoint{Name: entryNames[s], Stage: stage, index: index})
	}
	return entries, true
}

func irStage(s ir.ShaderStage) (reflection.Stage, bool) {
	switch s {
	case ir.StageVertex:
		return reflection.StageVertex, true
	case ir.StageFragment:
		return reflection.StageFragment, true
	case ir.StageCompute:
		return reflection.StageCompute, true
	}
	return 0, false
}
