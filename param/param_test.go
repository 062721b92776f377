// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package param

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/shaderkit/reflection"
)

func TestClassifyDetectors(t *testing.T) {
	tests := []struct {
		shape Shape
		want  Type
	}{
		{Shape{1, 1, 0, reflection.ScalarBool}, Bool},
		{Shape{1, 1, 0, reflection.ScalarInt32}, Int},
		{Shape{1, 1, 0, reflection.ScalarUint32}, UInt},
		{Shape{1, 1, 0, reflection.ScalarFloat32}, Float},
		{Shape{1, 2, 0, reflection.ScalarBool}, Bool2},
		{Shape{1, 4, 0, reflection.ScalarInt32}, Int4},
		{Shape{1, 3, 0, reflection.ScalarUint32}, UInt3},
		{Shape{1, 2, 0, reflection.ScalarFloat32}, Float2},
		{Shape{1, 3, 0, reflection.ScalarFloat32}, Float3},
		{Shape{1, 4, 0, reflection.ScalarFloat32}, Float4},
		{Shape{3, 3, 0, reflection.ScalarFloat32}, Float3x3},
		{Shape{4, 4, 0, reflection.ScalarFloat32}, Float4x4},

		// No exact match falls back to an opaque block.
		{Shape{4, 3, 0, reflection.ScalarFloat32}, MemoryBlock},
		{Shape{4, 4, 0, reflection.ScalarInt32}, MemoryBlock},
		{Shape{1, 4, 8, reflection.ScalarFloat32}, MemoryBlock},
		{Shape{1, 1, 0, reflection.ScalarFloat16}, MemoryBlock},
		{Shape{}, MemoryBlock},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.shape, nil))
		})
	}
}

func TestClassifyTotal(t *testing.T) {
	scalars := []reflection.ScalarKind{
		reflection.ScalarNone, reflection.ScalarBool, reflection.ScalarInt8,
		reflection.ScalarUint8, reflection.ScalarInt16, reflection.ScalarUint16,
		reflection.ScalarInt32, reflection.ScalarUint32, reflection.ScalarFloat16,
		reflection.ScalarFloat32, reflection.ScalarFloat64,
	}
	for rows := uint32(0); rows <= 5; rows++ {
		for cols := uint32(0); cols <= 5; cols++ {
			for _, count := range []uint32{0, 1, 4} {
				for _, s := range scalars {
					got := Classify(Shape{rows, cols, count, s}, nil)
					require.NotEqual(t, Undefined, got, "shape %d %d %d %s", rows, cols, count, s)
				}
			}
		}
	}
}

func TestClassifyRoleHint(t *testing.T) {
	hints := reflection.AttributeSet{AttrRole: {RoleLocalToWorld}}
	got := Classify(Shape{4, 4, 0, reflection.ScalarFloat32}, hints)
	assert.Equal(t, LocalToWorld, got)

	// An unknown role does not short-circuit.
	hints = reflection.AttributeSet{AttrRole: {"diffuse"}}
	got = Classify(Shape{1, 4, 0, reflection.ScalarFloat32}, hints)
	assert.Equal(t, Float4, got)

	// Texture roles are not value roles.
	hints = reflection.AttributeSet{AttrRole: {RoleTexture2D}}
	got = Classify(Shape{1, 1, 0, reflection.ScalarFloat32}, hints)
	assert.Equal(t, Float, got)
}

func TestRoleTypes(t *testing.T) {
	for role, want := range map[string]Type{
		RoleLocalToWorld:    LocalToWorld,
		RoleGlobals:         Globals,
		RoleSurfaceMaterial: SurfaceMaterial,
		RoleCombinedSurface: CombinedSurface,
	} {
		got, ok := RoleType(role)
		assert.True(t, ok, role)
		assert.Equal(t, want, got)
	}
	for role, want := range map[string]Type{
		RoleTexture2D:       Texture2D,
		RoleRWTexture2D:     RWTexture2D,
		RoleCombinedSampler: CombinedImageSampler,
	} {
		got, ok := ResourceRoleType(role)
		assert.True(t, ok, role)
		assert.Equal(t, want, got)
	}
	_, ok := RoleType("LOCAL_TO_WORLD")
	assert.False(t, ok)
}

func TestTypeNames(t *testing.T) {
	for ty := Undefined; ty <= TextureCube; ty++ {
		name := ty.String()
		back, ok := ParseType(name)
		require.True(t, ok, name)
		assert.Equal(t, ty, back)
	}
	assert.True(t, Sampler.IsResource())
	assert.False(t, MemoryBlock.IsResource())
	assert.True(t, Float3x3.IsValue())
	assert.False(t, Globals.IsValue())
}

func TestTableOverwriteKeepsOrder(t *testing.T) {
	tbl := NewTable()
	tbl.Add(Info{Name: "a", Type: Float})
	tbl.Add(Info{Name: "b", Type: Int})
	tbl.Add(Info{Name: "a", Type: Float4, Offset: 16})

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"a", "b"}, tbl.Names())
	a, ok := tbl.Get("a")
	require.True(t, ok)
	assert.Equal(t, Float4, a.Type)
	assert.Equal(t, uint32(16), a.Offset)

	var names []string
	for name := range tbl.All() {
		names = append(names, name)
	}
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestTableResetAndClone(t *testing.T) {
	var tbl Table
	tbl.Add(Info{Name: "x", Type: Float})
	tbl.Globals = &BindLocation{Set: 0, Binding: 0}
	tbl.Local = &LocalBlock{Size: 64}

	c := tbl.Clone()
	tbl.Reset()

	assert.Equal(t, 0, tbl.Len())
	assert.Nil(t, tbl.Globals)
	assert.Nil(t, tbl.Local)

	assert.Equal(t, 1, c.Len())
	require.NotNil(t, c.Globals)
	require.NotNil(t, c.Local)
	assert.Equal(t, uint32(64), c.Local.Size)
	_, ok := tbl.Get("x")
	assert.False(t, ok)
}

func TestBindGroupLayouts(t *testing.T) {
	tbl := NewTable()
	tbl.Globals = &BindLocation{Set: 0, Binding: 0}
	tbl.Add(Info{Name: "globals", Type: Globals, Binding: BindLocation{0, 0}})
	tbl.Add(Info{Name: "material.tint", Type: Float4, Binding: BindLocation{1, 0}})
	tbl.Add(Info{Name: "material.roughness", Type: Float, Offset: 16, Binding: BindLocation{1, 0}})
	tbl.Add(Info{Name: "albedo", Type: Texture2D, Binding: BindLocation{1, 2}})
	tbl.Add(Info{Name: "linear", Type: Sampler, Binding: BindLocation{1, 1}})
	tbl.Add(Info{Name: "draw.model", Type: Float4x4, PushConstant: true})

	groups := tbl.BindGroupLayouts(reflection.StageVertex, reflection.StageFragment)
	require.Len(t, groups, 2)
	require.Len(t, groups[0], 1)
	require.Len(t, groups[1], 3)

	set1 := groups[1]
	assert.Equal(t, uint32(0), set1[0].Binding)
	require.NotNil(t, set1[0].Buffer)
	assert.Equal(t, gputypes.BufferBindingTypeUniform, set1[0].Buffer.Type)
	assert.NotNil(t, set1[1].Sampler)
	require.NotNil(t, set1[2].Texture)
	assert.Equal(t, gputypes.TextureViewDimension2D, set1[2].Texture.ViewDimension)
	assert.Equal(t, gputypes.ShaderStageVertex|gputypes.ShaderStageFragment, set1[2].Visibility)
}
