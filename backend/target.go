// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"slices"
	"sync"

	"github.com/gogpu/shaderkit/reflection"
	"github.com/gogpu/shaderkit/session"
)

// Target receives the result of a successful compile.
type Target interface {
	// Label names the target in diagnostics.
	Label() string

	// PipelineKind selects the mandatory entry points.
	PipelineKind() reflection.PipelineKind

	// Macros returns the target's definitions in the order they apply.
	Macros() []session.Macro

	// Install replaces the target's compiled state.
	Install(c *Compiled)
}

// RenderPass contributes definitions to every pipeline drawn in it.
type RenderPass struct {
	Name    string
	Defines []session.Macro
}

// slot holds the last successfully compiled state of a target.
type slot struct {
	mu       sync.RWMutex
	compiled *Compiled
}

// Compiled returns the last successful compile, or nil.
func (s *slot) Compiled() *Compiled {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.compiled
}

// Install replaces the compiled state.
func (s *slot) Install(c *Compiled) {
	s.mu.Lock()
	s.compiled = c
	s.mu.Unlock()
}

// Pipeline is a graphics or compute pipeline.
type Pipeline struct {
	slot

	Name    string
	Kind    reflection.PipelineKind
	Defines []session.Macro

	// Pass is the render pass the pipeline is drawn in, if any. Its
	// definitions apply after the pipeline's.
	Pass *RenderPass
}

// NewPipeline returns a pipeline of the given kind.
func NewPipeline(name string, kind reflection.PipelineKind, defines ...session.Macro) *Pipeline {
	return &Pipeline{Name: name, Kind: kind, Defines: defines}
}

func (p *Pipeline) Label() string {
	return p.Name
}

func (p *Pipeline) PipelineKind() reflection.PipelineKind {
	return p.Kind
}

// Macros returns the pipeline's definitions followed by the pass's.
func (p *Pipeline) Macros() []session.Macro {
	out := slices.Clone(p.Defines)
	if p.Pass != nil {
		out = append(out, p.Pass.Defines...)
	}
	return out
}

// Material is a variant of a pipeline with its own definitions. It keeps
// its own compiled state.
type Material struct {
	slot

	Name     string
	Pipeline *Pipeline
	Defines  []session.Macro
}

// NewMaterial returns a material drawn with pipeline p.
func NewMaterial(name string, p *Pipeline, defines ...session.Macro) *Material {
	return &Material{Name: name, Pipeline: p, Defines: defines}
}

func (m *Material) Label() string {
	return m.Pipeline.Name + "/" + m.Name
}

func (m *Material) PipelineKind() reflection.PipelineKind {
	return m.Pipeline.Kind
}

// Macros returns the pipeline's definitions, then the material's, then the
// pass's.
func (m *Material) Macros() []session.Macro {
	out := slices.Clone(m.Pipeline.Defines)
	out = append(out, m.Defines...)
	if m.Pipeline.Pass != nil {
		out = append(out, m.Pipeline.Pass.Defines...)
	}
	return out
}
