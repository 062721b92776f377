// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package param

import (
	"fmt"
	"iter"
	"slices"

	"cogentcore.org/core/base/ordmap"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/shaderkit/reflection"
)

// FrameGlobalsName is the struct name of the engine's per-frame block.
const FrameGlobalsName = "FrameGlobals"

// FrameGlobalsSize is the exact byte size of the per-frame block: four
// 4x4 float matrices followed by three float4 vectors.
const FrameGlobalsSize = 4*64 + 3*16

// BindLocation is a descriptor set and binding pair.
type BindLocation struct {
	Set     uint32 `yaml:"set"`
	Binding uint32 `yaml:"binding"`
}

// String returns "set:binding".
func (b BindLocation) String() string {
	return fmt.Sprintf("%d:%d", b.Set, b.Binding)
}

// Info describes one reflected parameter.
type Info struct {
	// Name is the dot-joined qualified path of the symbol.
	Name string `yaml:"name"`

	Type Type `yaml:"type"`

	// Offset is the byte offset relative to the enclosing constant buffer.
	Offset uint32 `yaml:"offset"`

	// Binding is the descriptor location. For values it is the location of
	// the enclosing constant buffer.
	Binding BindLocation `yaml:"binding"`

	// Size is the byte size for values and memory blocks, zero for
	// resources.
	Size uint32 `yaml:"size"`

	// PushConstant marks values stored in push-constant memory.
	PushConstant bool `yaml:"push_constant,omitempty"`
}

// LocalBlock is the per-draw constant buffer.
type LocalBlock struct {
	Binding      BindLocation `yaml:"binding"`
	Size         uint32       `yaml:"size"`
	PushConstant bool         `yaml:"push_constant"`
}

// Table is an insertion-ordered set of parameters keyed by qualified name.
// The zero value is an empty table.
type Table struct {
	params ordmap.Map[string, Info]

	// Globals is the binding of the per-frame block, if the shader declares
	// one.
	Globals *BindLocation

	// Local is the per-draw block, if the shader declares one.
	Local *LocalBlock
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// Add inserts info. An existing entry with the same name is overwritten in
// place and keeps its position.
func (t *Table) Add(info Info) {
	t.params.Add(info.Name, info)
}

// Get returns the parameter with the given qualified name.
func (t *Table) Get(name string) (Info, bool) {
	return t.params.ValueByKeyTry(name)
}

// Len returns the number of parameters.
func (t *Table) Len() int {
	return t.params.Len()
}

// Names returns the qualified names in insertion order.
func (t *Table) Names() []string {
	return t.params.Keys()
}

// Infos returns the parameters in insertion order.
func (t *Table) Infos() []Info {
	return t.params.Values()
}

// All iterates parameters in insertion order.
func (t *Table) All() iter.Seq2[string, Info] {
	return func(yield func(string, Info) bool) {
		for _, kv := range t.params.Order {
			if !yield(kv.Key, kv.Value) {
				return
			}
		}
	}
}

// Reset removes every parameter and both distinguished slots.
func (t *Table) Reset() {
	t.params.Reset()
	t.Globals = nil
	t.Local = nil
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	c := &Table{}
	c.params.Copy(&t.params)
	if t.Globals != nil {
		g := *t.Globals
		c.Globals = &g
	}
	if t.Local != nil {
		l := *t.Local
		c.Local = &l
	}
	return c
}

// BindGroupLayouts derives bind group layout entries from the table, keyed by
// descriptor set. Every entry is visible to the given stages. Values and
// memory blocks contribute the uniform buffer that holds them; push-constant
// values contribute nothing.
func (t *Table) BindGroupLayouts(stages ...reflection.Stage) map[uint32][]gputypes.BindGroupLayoutEntry {
	visibility := gputypes.BindGroupLayoutEntry{}.Visibility
	for _, s := range stages {
		switch s {
		case reflection.StageVertex:
			visibility |= gputypes.ShaderStageVertex
		case reflection.StageFragment:
			visibility |= gputypes.ShaderStageFragment
		case reflection.StageCompute:
			visibility |= gputypes.ShaderStageCompute
		}
	}

	groups := make(map[uint32][]gputypes.BindGroupLayoutEntry)
	seen := make(map[BindLocation]bool)

	add := func(loc BindLocation, e gputypes.BindGroupLayoutEntry) {
		if seen[loc] {
			return
		}
		seen[loc] = true
		e.Binding = loc.Binding
		e.Visibility = visibility
		groups[loc.Set] = append(groups[loc.Set], e)
	}
	uniform := gputypes.BindGroupLayoutEntry{
		Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}

	if t.Globals != nil {
		add(*t.Globals, uniform)
	}
	if t.Local != nil && !t.Local.PushConstant {
		add(t.Local.Binding, uniform)
	}
	for _, info := range t.Infos() {
		if info.PushConstant {
			continue
		}
		switch info.Type {
		case Sampler:
			add(info.Binding, gputypes.BindGroupLayoutEntry{
				Sampler: &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			})
		case Texture2D, CombinedImageSampler:
			add(info.Binding, textureEntry(gputypes.TextureViewDimension2D))
		case Texture3D:
			add(info.Binding, textureEntry(gputypes.TextureViewDimension3D))
		case TextureCube:
			add(info.Binding, textureEntry(gputypes.TextureViewDimensionCube))
		case StorageBuffer:
			add(info.Binding, gputypes.BindGroupLayoutEntry{
				Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			})
		case RWStorageBuffer:
			add(info.Binding, gputypes.BindGroupLayoutEntry{
				Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
			})
		case RWTexture2D:
			// Storage textures need the texel format, which reflection does
			// not carry; the binding layer declares them itself.
		default:
			add(info.Binding, uniform)
		}
	}

	for set := range groups {
		slices.SortFunc(groups[set], func(a, b gputypes.BindGroupLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})
	}
	return groups
}

func textureEntry(dim gputypes.TextureViewDimension) gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Texture: &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: dim,
		},
	}
}
