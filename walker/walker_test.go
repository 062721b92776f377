// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package walker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/shaderkit/diag"
	"github.com/gogpu/shaderkit/param"
	"github.com/gogpu/shaderkit/reflection"
	"github.com/gogpu/shaderkit/vertex"
)

var (
	f32  = func() *reflection.TypeLayout { return reflection.NewScalar(reflection.ScalarFloat32, 4) }
	vec2 = func() *reflection.TypeLayout { return reflection.NewVector(reflection.ScalarFloat32, 2, 8) }
	vec3 = func() *reflection.TypeLayout { return reflection.NewVector(reflection.ScalarFloat32, 3, 12) }
	vec4 = func() *reflection.TypeLayout { return reflection.NewVector(reflection.ScalarFloat32, 4, 16) }
	mat4 = func() *reflection.TypeLayout { return reflection.NewMatrix(reflection.ScalarFloat32, 4, 4, 64) }
)

func texture2D() *reflection.TypeLayout {
	return reflection.NewResource(reflection.ShapeTexture2D, reflection.BindingTexture)
}

// globalsProgram returns a program whose only entry point is a fragment
// shader and whose global root holds fields.
func globalsProgram(fields ...*reflection.VarLayout) reflection.Program {
	root := reflection.NewVar("", reflection.NewStruct("", 0, fields...))
	return reflection.NewProgram(root, reflection.NewEntryPoint("fs_main", reflection.StageFragment))
}

// cbuffer wraps element in a constant buffer bound at set:binding.
func cbuffer(name string, set, binding uint32, element *reflection.TypeLayout) *reflection.VarLayout {
	return reflection.NewVar(name, reflection.NewConstantBuffer(reflection.NewVar("", element))).
		At(reflection.CategoryDescriptorTableSlot, binding).
		InSpace(reflection.CategoryDescriptorTableSlot, set)
}

func walk(t *testing.T, program reflection.Program) (*param.Table, []vertex.Attribute, *diag.List, bool) {
	t.Helper()
	table := param.NewTable()
	var attrs []vertex.Attribute
	sink := &diag.List{}
	ok := Walk(program, table, &attrs, sink)
	return table, attrs, sink, ok
}

func TestUniformTraceStopsAtConstantBuffer(t *testing.T) {
	leaf := reflection.NewVar("intensity", f32()).At(reflection.CategoryUniform, 4)
	inner := reflection.NewVar("light", reflection.NewStruct("Light", 16, leaf)).
		At(reflection.CategoryUniform, 16)
	buffer := reflection.NewVar("lighting", reflection.NewConstantBuffer(
		reflection.NewVar("", reflection.NewStruct("Lighting", 32, inner)))).
		At(reflection.CategoryUniform, 8).
		At(reflection.CategoryDescriptorTableSlot, 3)
	root := reflection.NewVar("", reflection.NewStruct("", 0, buffer)).
		At(reflection.CategoryUniform, 1000).
		At(reflection.CategoryDescriptorTableSlot, 2).
		InSpace(reflection.CategoryDescriptorTableSlot, 1)
	program := reflection.NewProgram(root)

	table, _, sink, ok := walk(t, program)
	require.True(t, ok, sink.Strings())

	info, ok := table.Get("lighting.light.intensity")
	require.True(t, ok, table.Names())
	assert.Equal(t, uint32(8+16+4), info.Offset, "uniform offsets above the buffer are ignored")
	assert.Equal(t, param.BindLocation{Set: 1, Binding: 5}, info.Binding, "descriptor slots trace to the root")
	assert.Equal(t, param.Float, info.Type)
	assert.Equal(t, uint32(4), info.Size)
}

func TestTraceOffsetCategories(t *testing.T) {
	leaf := reflection.NewVar("x", f32()).At(reflection.CategoryUniform, 4).At(reflection.CategoryDescriptorTableSlot, 1)
	inner := reflection.NewVar("inner", reflection.NewStruct("Inner", 8, leaf)).At(reflection.CategoryUniform, 16)
	cb := reflection.NewVar("cb", reflection.NewConstantBuffer(reflection.NewVar("", reflection.NewStruct("S", 32, inner)))).
		At(reflection.CategoryUniform, 32).At(reflection.CategoryDescriptorTableSlot, 2)
	root := reflection.NewVar("", reflection.NewStruct("", 0, cb)).
		At(reflection.CategoryUniform, 64).At(reflection.CategoryDescriptorTableSlot, 4)

	r := newEntry("", root, nil, 0)
	c := r.child(cb, 0)
	require.Equal(t, "cb", c.name)
	el := c.child(cb.Type().Element(), 0)
	assert.Equal(t, "cb", el.name)
	in := el.child(inner, 0)
	l := in.child(leaf, 0)
	assert.Equal(t, "cb.inner.x", l.name)

	assert.Equal(t, uint32(4+16+32), l.offset(reflection.CategoryUniform))
	assert.Equal(t, uint32(1+2+4), l.offset(reflection.CategoryDescriptorTableSlot))
	assert.Equal(t, uint32(0), l.offset(reflection.CategoryVaryingInput))
}

func TestFrameGlobalsDetection(t *testing.T) {
	frame := func(size uint32) *reflection.TypeLayout {
		return reflection.NewStruct(param.FrameGlobalsName, size,
			reflection.NewVar("view", mat4()).At(reflection.CategoryUniform, 0),
			reflection.NewVar("time", vec4()).At(reflection.CategoryUniform, 64))
	}

	table, _, sink, ok := walk(t, globalsProgram(cbuffer("frame", 0, 2, frame(param.FrameGlobalsSize))))
	require.True(t, ok, sink.Strings())
	require.Equal(t, 1, table.Len())
	info, _ := table.Get("frame")
	assert.Equal(t, param.Globals, info.Type)
	require.NotNil(t, table.Globals)
	assert.Equal(t, param.BindLocation{Set: 0, Binding: 2}, *table.Globals)

	table, _, sink, ok = walk(t, globalsProgram(cbuffer("frame", 0, 2, frame(param.FrameGlobalsSize-16))))
	require.True(t, ok, sink.Strings())
	assert.Nil(t, table.Globals, "size mismatch is an ordinary buffer")
	assert.Equal(t, []string{"frame.view", "frame.time"}, table.Names())
	view, _ := table.Get("frame.view")
	assert.Equal(t, param.Float4x4, view.Type)

	renamed := reflection.NewStruct("Frame", param.FrameGlobalsSize,
		reflection.NewVar("view", mat4()).At(reflection.CategoryUniform, 0))
	table, _, _, ok = walk(t, globalsProgram(cbuffer("frame", 0, 2, renamed)))
	require.True(t, ok)
	assert.Nil(t, table.Globals, "name mismatch is an ordinary buffer")
}

func TestMemoryBlockExclusion(t *testing.T) {
	block := reflection.NewStruct("Lighting", 16,
		reflection.NewVar("intensity", f32()).At(reflection.CategoryUniform, 0),
		reflection.NewVar("ramp", texture2D()).At(reflection.CategoryDescriptorTableSlot, 1),
	).WithAttributes(reflection.AttributeSet{AttrBlock: {BlockMemory}})
	lighting := reflection.NewVar("lighting", block).At(reflection.CategoryUniform, 32)

	program := globalsProgram(cbuffer("material", 1, 0,
		reflection.NewStruct("Material", 48, lighting)))
	table, _, sink, ok := walk(t, program)
	require.True(t, ok, sink.Strings())

	require.Equal(t, 2, table.Len(), table.Names())
	mem, ok := table.Get("material.lighting")
	require.True(t, ok)
	assert.Equal(t, param.MemoryBlock, mem.Type)
	assert.Equal(t, uint32(16), mem.Size)
	assert.Equal(t, uint32(32), mem.Offset)
	assert.Equal(t, param.BindLocation{Set: 1, Binding: 0}, mem.Binding)

	tex, ok := table.Get("material.lighting.ramp")
	require.True(t, ok)
	assert.Equal(t, param.Texture2D, tex.Type)
	assert.Equal(t, param.BindLocation{Set: 1, Binding: 1}, tex.Binding)

	_, ok = table.Get("material.lighting.intensity")
	assert.False(t, ok)
}

func TestRoleHints(t *testing.T) {
	program := globalsProgram(cbuffer("object", 2, 0, reflection.NewStruct("Object", 80,
		reflection.NewVar("model", mat4()).At(reflection.CategoryUniform, 0).
			WithAttributes(reflection.AttributeSet{AttrRole: {param.RoleLocalToWorld}}),
		reflection.NewVar("tint", vec4()).At(reflection.CategoryUniform, 64),
	)))
	table, _, sink, ok := walk(t, program)
	require.True(t, ok, sink.Strings())

	model, _ := table.Get("object.model")
	assert.Equal(t, param.LocalToWorld, model.Type)
	tint, _ := table.Get("object.tint")
	assert.Equal(t, param.Float4, tint.Type)
	assert.Equal(t, uint32(64), tint.Offset)
}

func TestResourceTypes(t *testing.T) {
	tests := []struct {
		name  string
		typ   *reflection.TypeLayout
		attrs reflection.AttributeSet
		want  param.Type
	}{
		{"texture", texture2D(), nil, param.Texture2D},
		{"combined", reflection.NewResource(reflection.ShapeTexture2D, reflection.BindingCombinedTextureSampler), nil, param.CombinedImageSampler},
		{"storage texture", reflection.NewResource(reflection.ShapeTexture2D, reflection.BindingMutableTexture), nil, param.RWTexture2D},
		{"role override", texture2D(), reflection.AttributeSet{AttrRole: {param.RoleCombinedSampler}}, param.CombinedImageSampler},
		{"cube", reflection.NewResource(reflection.ShapeTextureCube, reflection.BindingTexture), nil, param.TextureCube},
		{"volume", reflection.NewResource(reflection.ShapeTexture3D, reflection.BindingTexture), nil, param.Texture3D},
		{"storage", reflection.NewResource(reflection.ShapeStructuredBuffer, reflection.BindingRawBuffer), nil, param.StorageBuffer},
		{"rw storage", reflection.NewResource(reflection.ShapeStructuredBuffer, reflection.BindingMutableRawBuffer), nil, param.RWStorageBuffer},
		{"sampler", reflection.NewSampler(), nil, param.Sampler},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := reflection.NewVar("r", tt.typ).
				At(reflection.CategoryDescriptorTableSlot, 3).
				InSpace(reflection.CategoryDescriptorTableSlot, 2).
				WithAttributes(tt.attrs)
			table, _, sink, ok := walk(t, globalsProgram(v))
			require.True(t, ok, sink.Strings())
			info, ok := table.Get("r")
			require.True(t, ok)
			assert.Equal(t, tt.want, info.Type)
			assert.Equal(t, param.BindLocation{Set: 2, Binding: 3}, info.Binding)
		})
	}
}

func TestUnsupportedShapes(t *testing.T) {
	tests := []struct {
		name string
		v    *reflection.VarLayout
		want string
	}{
		{"texture binding range", reflection.NewVar("t", reflection.NewResource(reflection.ShapeTexture2D, reflection.BindingRawBuffer)), "unsupported binding range"},
		{"texture array", reflection.NewVar("layers", reflection.NewResource(reflection.ShapeTexture2DArray, reflection.BindingTexture)), "not supported as uniform parameter: layers (texture_2d_array)"},
		{"multisampled texture", reflection.NewVar("ms", reflection.NewResource(reflection.ShapeTexture2DMultisample, reflection.BindingTexture)), "not supported as uniform parameter: ms (texture_2d_multisample)"},
		{"acceleration structure", reflection.NewVar("as", reflection.NewResource(reflection.ShapeAccelerationStructure, reflection.BindingNone)), "not supported as uniform parameter"},
		{"unknown kind", reflection.NewVar("n", reflection.NewUnsized(reflection.KindNone)), "not supported as uniform parameter"},
		{"missing type", reflection.NewVar("m", nil), "no type information"},
		{"missing layout", reflection.NewVar("u", reflection.NewUnsized(reflection.KindScalar)), "no layout information"},
		{"resource array", reflection.NewVar("a", reflection.NewArray(reflection.NewVar("", texture2D()), 4, 0)), "arrays of resource"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, _, sink, ok := walk(t, globalsProgram(tt.v))
			assert.False(t, ok)
			assert.Zero(t, table.Len())
			require.True(t, sink.HasErrors())
			assert.Contains(t, sink.Strings()[0], tt.want)
			assert.Equal(t, diag.KindReflection, sink.Messages()[0].Kind)
		})
	}
}

func TestArraysAreMemoryBlocks(t *testing.T) {
	arr := reflection.NewVar("weights", reflection.NewArray(reflection.NewVar("", vec4()), 4, 64)).
		At(reflection.CategoryUniform, 16)
	table, _, sink, ok := walk(t, globalsProgram(cbuffer("params", 0, 0,
		reflection.NewStruct("Params", 80, arr))))
	require.True(t, ok, sink.Strings())
	info, _ := table.Get("params.weights")
	assert.Equal(t, param.MemoryBlock, info.Type)
	assert.Equal(t, uint32(64), info.Size)
	assert.Equal(t, uint32(16), info.Offset)
}

func TestPushConstantLocalBlock(t *testing.T) {
	element := reflection.NewVar("", reflection.NewStruct("Draw", 80,
		reflection.NewVar("model", mat4()).At(reflection.CategoryUniform, 0),
		reflection.NewVar("id", reflection.NewScalar(reflection.ScalarUint32, 4)).At(reflection.CategoryUniform, 64)))
	draw := reflection.NewVar("draw", reflection.NewPushConstantBuffer(element)).
		At(reflection.CategoryPushConstant, 0)

	table, _, sink, ok := walk(t, globalsProgram(draw))
	require.True(t, ok, sink.Strings())
	require.NotNil(t, table.Local)
	assert.True(t, table.Local.PushConstant)
	assert.Equal(t, uint32(80), table.Local.Size)

	id, _ := table.Get("draw.id")
	assert.Equal(t, param.UInt, id.Type)
	assert.True(t, id.PushConstant)
	assert.Equal(t, uint32(64), id.Offset)
}

func TestRootConstantBufferIsLocal(t *testing.T) {
	root := reflection.NewVar("", reflection.NewConstantBuffer(reflection.NewVar("", reflection.NewStruct("Params", 16,
		reflection.NewVar("tint", vec4()).At(reflection.CategoryUniform, 0))))).
		At(reflection.CategoryDescriptorTableSlot, 5)
	table, _, sink, ok := walk(t, reflection.NewProgram(root))
	require.True(t, ok, sink.Strings())
	require.NotNil(t, table.Local)
	assert.Equal(t, param.BindLocation{Binding: 5}, table.Local.Binding)
	assert.False(t, table.Local.PushConstant)
	assert.Equal(t, uint32(16), table.Local.Size)
	assert.Equal(t, []string{"tint"}, table.Names())
}

// vertexProgram returns a program with a vertex entry point taking one
// struct input made of fields.
func vertexProgram(fields ...*reflection.VarLayout) reflection.Program {
	in := reflection.NewVar("in", reflection.NewStruct("VertexInput", 0, fields...))
	root := reflection.NewVar("", reflection.NewStruct("", 0))
	return reflection.NewProgram(root, reflection.NewEntryPoint(VertexEntry, reflection.StageVertex, in))
}

func input(name string, t *reflection.TypeLayout, location uint32, semantic string, index uint32) *reflection.VarLayout {
	return reflection.NewVar(name, t).At(reflection.CategoryVaryingInput, location).WithSemantic(semantic, index)
}

func TestVertexAttributes(t *testing.T) {
	program := vertexProgram(
		input("position", vec3(), 0, "POSITION", 0),
		input("uv1", vec2(), 1, "texcoord1", 0),
		input("color", vec4(), 2, "COLOR", 0),
		input("offset", vec3(), 3, "TEXCOORD", 2).WithAttributes(reflection.AttributeSet{
			AttrInstanced: {}, AttrStream: {"1"}, AttrOffset: {"12"},
		}),
		input("index", reflection.NewScalar(reflection.ScalarUint32, 4), 4, "SV_VertexID", 0),
		input("weights", reflection.NewScalar(reflection.ScalarFloat32, 4), 5, "BlendIndices", 0),
	)
	_, attrs, sink, ok := walk(t, program)
	require.True(t, ok, sink.Strings())
	require.Len(t, attrs, 5)

	assert.Equal(t, vertex.Attribute{
		Semantic: vertex.SemanticPosition, Name: "in.position", Element: vertex.Float3,
		Location: 0, Offset: vertex.OffsetAuto,
	}, attrs[0])

	assert.Equal(t, vertex.SemanticTexCoord, attrs[1].Semantic)
	assert.Equal(t, uint32(1), attrs[1].SemanticIndex, "index from the semantic suffix")
	assert.Equal(t, vertex.Float2, attrs[1].Element)

	assert.Equal(t, vertex.Color, attrs[2].Element, "float4 color is packed")

	assert.Equal(t, uint32(2), attrs[3].SemanticIndex)
	assert.Equal(t, vertex.PerInstance, attrs[3].Rate)
	assert.Equal(t, uint32(1), attrs[3].Stream)
	assert.Equal(t, uint32(12), attrs[3].Offset)
	assert.Equal(t, uint32(3), attrs[3].Location)

	assert.Equal(t, vertex.SemanticBlendIndices, attrs[4].Semantic, "scalar inputs accept every semantic")
	assert.Equal(t, uint32(5), attrs[4].Location)
}

func TestInstancedStructInput(t *testing.T) {
	in := reflection.NewVar("instance", reflection.NewStruct("Instance", 0,
		input("row", vec4(), 4, "TEXCOORD4", 0),
	)).WithAttributes(reflection.AttributeSet{AttrInstanced: {"true"}, AttrStream: {"1"}})
	root := reflection.NewVar("", reflection.NewStruct("", 0))
	program := reflection.NewProgram(root, reflection.NewEntryPoint(VertexEntry, reflection.StageVertex, in))

	_, attrs, sink, ok := walk(t, program)
	require.True(t, ok, sink.Strings())
	require.Len(t, attrs, 1)
	assert.Equal(t, vertex.PerInstance, attrs[0].Rate)
	assert.Equal(t, uint32(1), attrs[0].Stream)
	assert.Equal(t, "instance.row", attrs[0].Name)
}

func TestVertexInputErrors(t *testing.T) {
	tests := []struct {
		name  string
		field *reflection.VarLayout
		want  string
	}{
		{"blend indices vector", input("bones", reflection.NewVector(reflection.ScalarUint32, 4, 16), 0, "BLENDINDICES", 0), "not supported on vector input"},
		{"missing semantic", input("p", vec3(), 0, "", 0), "has no semantic"},
		{"unknown semantic", input("p", vec3(), 0, "FOG", 0), "unrecognized semantic"},
		{"matrix input", input("m", mat4(), 0, "TEXCOORD", 0), "unsupported input variable type"},
		{"unsupported scalar", input("d", reflection.NewScalar(reflection.ScalarFloat64, 8), 0, "TEXCOORD", 0), "unsupported vertex element scalar"},
		{"bad stream", input("p", vec3(), 0, "POSITION", 0).WithAttributes(reflection.AttributeSet{AttrStream: {"x"}}), "invalid @stream"},
		{"stream past uint32", input("p", vec3(), 0, "POSITION", 0).WithAttributes(reflection.AttributeSet{AttrStream: {"4294967296"}}), "@stream(4294967296) exceeds 31"},
		{"stream too large", input("p", vec3(), 0, "POSITION", 0).WithAttributes(reflection.AttributeSet{AttrStream: {"4294967295"}}), "@stream(4294967295) exceeds 31"},
		{"offset sentinel", input("p", vec3(), 0, "POSITION", 0).WithAttributes(reflection.AttributeSet{AttrOffset: {"4294967295"}}), "@offset(4294967295) exceeds 65535"},
		{"negative offset", input("p", vec3(), 0, "POSITION", 0).WithAttributes(reflection.AttributeSet{AttrOffset: {"-4"}}), "invalid @offset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, attrs, sink, ok := walk(t, vertexProgram(tt.field))
			assert.False(t, ok)
			assert.Empty(t, attrs)
			require.True(t, sink.HasErrors())
			assert.Contains(t, sink.Strings()[0], tt.want)
			assert.Equal(t, diag.KindVertexInput, sink.Messages()[0].Kind)
		})
	}
}

func TestWalkClearsOnFailure(t *testing.T) {
	table := param.NewTable()
	table.Add(param.Info{Name: "stale", Type: param.Float})
	table.Globals = &param.BindLocation{}
	attrs := []vertex.Attribute{{Name: "stale"}}

	program := reflection.NewProgram(
		reflection.NewVar("", reflection.NewStruct("", 0,
			reflection.NewVar("tint", vec4()),
			reflection.NewVar("bad", reflection.NewUnsized(reflection.KindNone)))),
		reflection.NewEntryPoint(VertexEntry, reflection.StageVertex,
			input("p", vec3(), 0, "POSITION", 0)),
	)
	var sink diag.List
	ok := Walk(program, table, &attrs, &sink)
	assert.False(t, ok)
	assert.Zero(t, table.Len())
	assert.Nil(t, table.Globals)
	assert.Empty(t, attrs)
}

func TestWalkReplacesPreviousResults(t *testing.T) {
	table := param.NewTable()
	table.Add(param.Info{Name: "stale", Type: param.Float})
	attrs := []vertex.Attribute{{Name: "stale"}}

	program := reflection.NewProgram(
		reflection.NewVar("", reflection.NewStruct("", 0, cbuffer("p", 0, 0,
			reflection.NewStruct("P", 16, reflection.NewVar("tint", vec4()))))),
		reflection.NewEntryPoint(VertexEntry, reflection.StageVertex,
			input("pos", vec3(), 0, "POSITION", 0)),
	)
	var sink diag.List
	require.True(t, Walk(program, table, &attrs, &sink))
	assert.Equal(t, []string{"p.tint"}, table.Names())
	require.Len(t, attrs, 1)
	assert.Equal(t, "pos", attrs[0].Name)
}
