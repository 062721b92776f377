// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"cmp"
	"maps"
	"slices"

	"github.com/gogpu/gputypes"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/shaderkit/crosscompile"
	"github.com/gogpu/shaderkit/emit"
	"github.com/gogpu/shaderkit/param"
	"github.com/gogpu/shaderkit/reflection"
	"github.com/gogpu/shaderkit/session"
	"github.com/gogpu/shaderkit/vertex"
)

// Compiled is the result of a successful compile. It is not modified after
// it is installed.
type Compiled struct {
	Source     *emit.ShaderSource
	Parameters *param.Table
	Attributes []vertex.Attribute
	Backend    session.Backend
	Profile    session.Profile
	Kind       reflection.PipelineKind

	// Flat holds the single-set binding of every bound parameter when the
	// code was cross-compiled with flattened bindings, keyed by its
	// original location. GLSL ES has no binding qualifier for textures and
	// samplers, so callers assign texture units from it.
	Flat crosscompile.Remap

	// Warnings are the non-fatal diagnostics of the compile.
	Warnings []string
}

// VertexLayouts returns the vertex buffer layouts described by the vertex
// attributes, one per stream.
func (c *Compiled) VertexLayouts() ([]gputypes.VertexBufferLayout, error) {
	return vertex.BufferLayouts(c.Attributes)
}

// FlatBinding returns the flattened binding of the named parameter. It
// reports false when the code was not cross-compiled or the parameter is
// not bound.
func (c *Compiled) FlatBinding(name string) (uint32, bool) {
	if c.Flat == nil {
		return 0, false
	}
	info, ok := c.Parameters.Get(name)
	if !ok {
		return 0, false
	}
	b, ok := c.Flat[crosscompile.Location{Set: info.Binding.Set, Binding: info.Binding.Binding}]
	return b, ok
}

// BindGroupLayouts returns the bind group layout entries of the parameters,
// visible to every stage the compile produced.
func (c *Compiled) BindGroupLayouts() map[uint32][]gputypes.BindGroupLayoutEntry {
	return c.Parameters.BindGroupLayouts(c.Source.Stages()...)
}

type reflectionDump struct {
	Backend    string              `yaml:"backend"`
	Profile    string              `yaml:"profile"`
	Pipeline   string              `yaml:"pipeline"`
	Stages     []string            `yaml:"stages"`
	Globals    *param.BindLocation `yaml:"globals,omitempty"`
	Local      *param.LocalBlock   `yaml:"local,omitempty"`
	Parameters []param.Info        `yaml:"parameters"`
	Attributes []vertex.Attribute  `yaml:"attributes,omitempty"`
	Flat       []flatBinding       `yaml:"flat_bindings,omitempty"`
	Warnings   []string            `yaml:"warnings,omitempty"`
}

type flatBinding struct {
	Set     uint32 `yaml:"set"`
	Binding uint32 `yaml:"binding"`
	Flat    uint32 `yaml:"flat"`
}

// MarshalYAML implements yaml.Marshaler. Only reflection is written; the
// code itself is not.
func (c *Compiled) MarshalYAML() (any, error) {
	d := reflectionDump{
		Backend:    c.Backend.String(),
		Profile:    c.Profile.String(),
		Pipeline:   c.Kind.String(),
		Globals:    c.Parameters.Globals,
		Local:      c.Parameters.Local,
		Parameters: c.Parameters.Infos(),
		Attributes: c.Attributes,
		Warnings:   c.Warnings,
	}
	for _, s := range c.Source.Stages() {
		d.Stages = append(d.Stages, s.String())
	}
	for _, loc := range slices.SortedFunc(maps.Keys(c.Flat), func(a, b crosscompile.Location) int {
		return cmp.Or(cmp.Compare(a.Set, b.Set), cmp.Compare(a.Binding, b.Binding))
	}) {
		d.Flat = append(d.Flat, flatBinding{Set: loc.Set, Binding: loc.Binding, Flat: c.Flat[loc]})
	}
	return d, nil
}

// YAML returns the reflection of c as a YAML document.
func (c *Compiled) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
