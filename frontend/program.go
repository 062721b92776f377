// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package frontend

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/msl"
	"github.com/gogpu/naga/spirv"
	"github.com/gogpu/shaderkit/reflection"
	"github.com/gogpu/shaderkit/session"
)

// ErrClosed is returned when a program is used after its context closed.
var ErrClosed = errors.New("frontend: compile context closed")

// EntryPoint is an entry point discovered in a compiled module.
type EntryPoint struct {
	Name  string
	Stage reflection.Stage

	// index is the position in the module's entry point list.
	index int
}

// Program is a module linked with its entry points.
type Program struct {
	ctx     *Context
	module  *ir.Module
	attrs   *attributeIndex
	entries []EntryPoint
	kind    reflection.PipelineKind

	layout    *reflection.ProgramLayout
	layoutErr error
	built     bool
}

// Kind returns the pipeline kind the program was linked for.
func (p *Program) Kind() reflection.PipelineKind {
	return p.kind
}

// EntryPoints returns the linked entry points in stage order.
func (p *Program) EntryPoints() []EntryPoint {
	return p.entries
}

// Module returns the lowered module, or nil after the context closed.
func (p *Program) Module() *ir.Module {
	return p.module
}

// Layout returns the reflection graph of the program. It is built on first
// use.
func (p *Program) Layout() (reflection.Program, error) {
	if p.module == nil {
		return nil, ErrClosed
	}
	if !p.built {
		p.layout, p.layoutErr = buildLayout(p.module, p.attrs, p.entries)
		p.built = true
	}
	if p.layoutErr != nil {
		return nil, p.layoutErr
	}
	return p.layout, nil
}

// EntryPointCode returns the code of entry point i in the session format.
// Text formats are returned as UTF-8 source.
func (p *Program) EntryPointCode(i int) ([]byte, error) {
	if p.module == nil {
		return nil, ErrClosed
	}
	if i < 0 || i >= len(p.entries) {
		return nil, fmt.Errorf("frontend: entry point index %d out of range", i)
	}
	ep := p.entries[i]
	desc := p.ctx.desc

	code, err := p.generate(ep, desc)
	if err != nil {
		return nil, fmt.Errorf("%s (%s): %w", ep.Name, desc.Profile, err)
	}
	p.ctx.logger.Debug("entry point generated",
		slog.String("entry_point", ep.Name),
		slog.String("profile", desc.Profile.String()),
		slog.Int("bytes", len(code)))
	return code, nil
}

func (p *Program) generate(ep EntryPoint, desc session.Descriptor) ([]byte, error) {
	irEP := p.module.EntryPoints[ep.index]
	prof := desc.Profile

	switch prof.Format {
	case session.FormatSPIRV:
		// The SPIR-V writer emits every entry point of the module it is
		// given, so it receives a copy scoped to one.
		scoped := *p.module
		scoped.EntryPoints = []ir.EntryPoint{irEP}
		backend := spirv.NewBackend(spirv.Options{
			Version: spirv.Version{Major: prof.Major, Minor: prof.Minor},
			Debug:   desc.EmitDebugInfo,
		})
		return backend.Compile(&scoped)

	case session.FormatGLSL:
		opts := glsl.DefaultOptions()
		opts.LangVersion = glsl.Version{Major: prof.Major, Minor: prof.Minor, ES: prof.ES}
		opts.EntryPoint = ep.Name
		if desc.EmitDebugInfo {
			opts.WriterFlags |= glsl.WriterFlagDebugInfo
		}
		code, _, err := glsl.Compile(p.module, opts)
		return []byte(code), err

	case session.FormatHLSL:
		sm, err := shaderModel(prof)
		if err != nil {
			return nil, err
		}
		opts := hlsl.DefaultOptions()
		opts.ShaderModel = sm
		opts.EntryPoint = ep.Name
		opts.BindingMap = p.hlslBindings()
		code, _, err := hlsl.Compile(p.module, opts)
		return []byte(code), err

	case session.FormatMSL:
		opts := msl.DefaultOptions()
		opts.LangVersion = msl.Version{Major: prof.Major, Minor: prof.Minor}
		code, _, err := msl.CompileWithPipeline(p.module, opts, msl.PipelineOptions{
			EntryPoint: &msl.EntryPointSelector{Stage: irEP.Stage, Name: ep.Name},
		})
		return []byte(code), err
	}
	return nil, fmt.Errorf("unsupported format %s", prof.Format)
}

// hlslBindings maps every bound global to register space = group and
// register = binding.
func (p *Program) hlslBindings() map[hlsl.ResourceBinding]hlsl.BindTarget {
	m := make(map[hlsl.ResourceBinding]hlsl.BindTarget)
	for _, g := range p.module.GlobalVariables {
		if g.Binding == nil {
			continue
		}
		m[hlsl.ResourceBinding{Group: g.Binding.Group, Binding: g.Binding.Binding}] = hlsl.BindTarget{
			Space:    uint8(g.Binding.Group),
			Register: g.Binding.Binding,
		}
	}
	return m
}

func shaderModel(p session.Profile) (hlsl.ShaderModel, error) {
	switch {
	case p.Major == 5 && p.Minor <= 1:
		return hlsl.ShaderModel5_0 + hlsl.ShaderModel(p.Minor), nil
	case p.Major == 6 && p.Minor <= 6:
		return hlsl.ShaderModel6_0 + hlsl.ShaderModel(p.Minor), nil
	}
	return 0, fmt.Errorf("unsupported shader model %d.%d", p.Major, p.Minor)
}

func (p *Program) release() {
	p.module = nil
	p.attrs = nil
	p.layout = nil
	p.built = false
}
