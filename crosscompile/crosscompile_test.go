// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package crosscompile

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func op(code spirv.OpCode, words ...uint32) spirv.Instruction {
	return spirv.Instruction{Opcode: code, Words: words}
}

func name(id uint32, s string) spirv.Instruction {
	b := spirv.NewInstructionBuilder()
	b.AddWord(id)
	b.AddString(s)
	return b.Build(spirv.OpName)
}

func decorate(id uint32, d spirv.Decoration, v uint32) spirv.Instruction {
	return op(spirv.OpDecorate, id, uint32(d), v)
}

// resourceModule declares a texture in set 1 binding 2, a sampler in set 2
// binding 0 and a uniform buffer in set 0 binding 0.
func resourceModule() *Module {
	return &Module{
		Version: spirv.Version1_0,
		Bound:   13,
		Instructions: []spirv.Instruction{
			op(spirv.OpCapability, 1),
			op(spirv.OpEntryPoint, 4, 20, 0x6d5f7366, 0x6e6961, 10),
			name(10, "albedo"),
			name(11, "albedo_sampler"),
			decorate(10, spirv.DecorationDescriptorSet, 1),
			decorate(10, spirv.DecorationBinding, 2),
			decorate(11, spirv.DecorationDescriptorSet, 2),
			decorate(11, spirv.DecorationBinding, 0),
			decorate(12, spirv.DecorationDescriptorSet, 0),
			decorate(12, spirv.DecorationBinding, 0),
			op(spirv.OpTypeFloat, 1, 32),
			op(spirv.OpTypeImage, 2, 1, 1, 0, 0, 0, 1, 0),
			op(spirv.OpTypeSampler, 3),
			op(spirv.OpTypePointer, 4, 0, 2),
			op(spirv.OpTypePointer, 5, 0, 3),
			op(spirv.OpTypeStruct, 6, 1),
			op(spirv.OpTypePointer, 7, 2, 6),
			op(spirv.OpVariable, 4, 10, 0),
			op(spirv.OpVariable, 5, 11, 0),
			op(spirv.OpVariable, 7, 12, 2),
		},
	}
}

func decorationsOf(m *Module, id uint32) map[spirv.Decoration]uint32 {
	out := make(map[spirv.Decoration]uint32)
	for _, inst := range m.Instructions {
		if inst.Opcode == spirv.OpDecorate && inst.Words[0] == id {
			out[spirv.Decoration(inst.Words[1])] = inst.Words[2]
		}
	}
	return out
}

func TestParseRoundTrip(t *testing.T) {
	m := resourceModule()
	parsed, err := Parse(m.Bytes())
	require.NoError(t, err)
	assert.Equal(t, m, parsed)
	assert.Equal(t, "albedo", parsed.Names()[10])
}

func TestParseMalformed(t *testing.T) {
	valid := resourceModule().Bytes()

	bigEndian := make([]byte, len(valid))
	for i := 0; i < len(valid); i += 4 {
		binary.BigEndian.PutUint32(bigEndian[i:], binary.LittleEndian.Uint32(valid[i:]))
	}

	zeroCount := append([]byte(nil), valid[:20]...)
	zeroCount = binary.LittleEndian.AppendUint32(zeroCount, uint32(spirv.OpNop))

	tests := []struct {
		name string
		code []byte
		want string
	}{
		{"unaligned", valid[:len(valid)-1], "not a multiple of 4"},
		{"short", valid[:16], "shorter than the header"},
		{"magic", append([]byte{1, 2, 3, 4}, valid[4:]...), "invalid magic"},
		{"big endian", bigEndian, "big-endian"},
		{"zero word count", zeroCount, "zero word count"},
		{"overrun", valid[:len(valid)-4], "overruns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.code)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFlatten(t *testing.T) {
	m := resourceModule()
	before := len(m.Instructions)

	remap, err := Flatten(m)
	require.NoError(t, err)
	assert.Equal(t, Remap{
		{Set: 1, Binding: 2}: 18,
		{Set: 2, Binding: 0}: 32,
	}, remap)
	assert.Len(t, m.Instructions, before-2)

	assert.Equal(t, map[spirv.Decoration]uint32{spirv.DecorationBinding: 18}, decorationsOf(m, 10))
	assert.Equal(t, map[spirv.Decoration]uint32{spirv.DecorationBinding: 32}, decorationsOf(m, 11))
	assert.Equal(t, map[spirv.Decoration]uint32{
		spirv.DecorationDescriptorSet: 0,
		spirv.DecorationBinding:       0,
	}, decorationsOf(m, 12))

	again, err := Parse(m.Bytes())
	require.NoError(t, err)
	assert.Equal(t, m, again)
}

func TestFlattenArrayOfTextures(t *testing.T) {
	m := &Module{
		Version: spirv.Version1_0,
		Bound:   8,
		Instructions: []spirv.Instruction{
			decorate(7, spirv.DecorationDescriptorSet, 3),
			decorate(7, spirv.DecorationBinding, 1),
			op(spirv.OpTypeFloat, 1, 32),
			op(spirv.OpTypeImage, 2, 1, 1, 0, 0, 0, 1, 0),
			op(spirv.OpTypeSampledImage, 3, 2),
			op(opTypeRuntimeArray, 4, 3),
			op(spirv.OpTypePointer, 5, 0, 4),
			op(spirv.OpVariable, 5, 7, 0),
		},
	}
	remap, err := Flatten(m)
	require.NoError(t, err)
	assert.Equal(t, Remap{{Set: 3, Binding: 1}: 49}, remap)
	assert.Equal(t, map[spirv.Decoration]uint32{spirv.DecorationBinding: 49}, decorationsOf(m, 7))
}

func TestFlattenCollision(t *testing.T) {
	m := resourceModule()
	// Move the texture to set 0 binding 32, where the sampler lands.
	m.Instructions[4] = decorate(10, spirv.DecorationDescriptorSet, 0)
	m.Instructions[5] = decorate(10, spirv.DecorationBinding, 32)
	orig := m.Bytes()

	_, err := Flatten(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both flatten to binding 32")
	assert.Equal(t, orig, m.Bytes(), "failed flatten must not modify the module")
}

func TestFlatBinding(t *testing.T) {
	assert.Equal(t, uint32(0), FlatBinding(0, 0))
	assert.Equal(t, uint32(5), FlatBinding(0, 5))
	assert.Equal(t, uint32(16), FlatBinding(1, 0))
	assert.Equal(t, uint32(35), FlatBinding(2, 3))
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, resourceModule()))
	out := buf.String()

	assert.Contains(t, out, "; SPIR-V 1.0")
	assert.Contains(t, out, `OpEntryPoint Fragment %20 "fs_main" %albedo`)
	assert.Contains(t, out, "OpDecorate %albedo DescriptorSet 1")
	assert.Contains(t, out, "OpDecorate %albedo_sampler Binding 0")
	assert.Contains(t, out, "%albedo = OpVariable UniformConstant image2D")
	assert.Contains(t, out, "%albedo_sampler = OpVariable UniformConstant sampler")
	assert.Contains(t, out, "%12 = OpVariable Uniform struct")
	assert.False(t, strings.Contains(out, "OpTypeFloat"))
}

func TestBindGlobals(t *testing.T) {
	at := func(group, binding uint32) *ir.ResourceBinding {
		return &ir.ResourceBinding{Group: group, Binding: binding}
	}
	globals := []ir.GlobalVariable{
		{Name: "frame", Space: ir.SpaceUniform, Binding: at(0, 0)},
		{Name: "material", Space: ir.SpaceUniform, Binding: at(1, 0)},
		{Name: "albedo", Space: ir.SpaceHandle, Binding: at(1, 1)},
		{Name: "albedo_sampler", Space: ir.SpaceHandle, Binding: at(1, 2)},
		{Name: "lights", Space: ir.SpaceStorage, Binding: at(2, 0)},
		{Name: "scratch", Space: ir.SpacePrivate},
	}
	remap := Remap{{Set: 1, Binding: 1}: 17, {Set: 1, Binding: 2}: 18}

	out, bound, err := bindGlobals(globals, remap)
	require.NoError(t, err)
	assert.Equal(t, Remap{
		{Set: 0, Binding: 0}: 0,
		{Set: 1, Binding: 0}: 16,
		{Set: 1, Binding: 1}: 17,
		{Set: 1, Binding: 2}: 18,
		{Set: 2, Binding: 0}: 32,
	}, bound)
	want := []uint32{0, 16, 17, 18, 32}
	for i, b := range want {
		assert.Equal(t, &ir.ResourceBinding{Group: 0, Binding: b}, out[i].Binding, globals[i].Name)
	}
	assert.Nil(t, out[5].Binding)

	// The input is left alone.
	assert.Equal(t, uint32(1), globals[1].Binding.Group)
	assert.Len(t, remap, 2)
}

func TestBindGlobalsBlockCollision(t *testing.T) {
	globals := []ir.GlobalVariable{
		{Name: "a", Space: ir.SpaceUniform, Binding: &ir.ResourceBinding{Group: 1, Binding: 0}},
		{Name: "b", Space: ir.SpaceUniform, Binding: &ir.ResourceBinding{Group: 0, Binding: 16}},
	}
	_, _, err := bindGlobals(globals, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both flatten to binding 16")
}

func TestFlattenAndTranspileEmpty(t *testing.T) {
	src, remap, err := FlattenAndTranspile(nil, nil, "fs_main")
	require.NoError(t, err)
	assert.Empty(t, src)
	assert.Nil(t, remap)
}

func TestFlattenAndTranspileMalformed(t *testing.T) {
	_, _, err := FlattenAndTranspile([]byte{1, 2, 3, 4}, nil, "fs_main")
	assert.ErrorIs(t, err, ErrMalformed)
}
