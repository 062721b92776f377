// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package crosscompile

import (
	"fmt"
	"slices"

	"github.com/gogpu/naga/spirv"
)

// BindingsPerSet is the number of binding slots each descriptor set
// occupies once flattened.
const BindingsPerSet = 16

// Opcodes the naga spirv package does not name.
const (
	opTypeRuntimeArray spirv.OpCode = 29
)

// Location is a descriptor set and binding pair.
type Location struct {
	Set     uint32
	Binding uint32
}

// Remap maps the original location of every flattened resource to its
// binding in the single implicit set.
type Remap map[Location]uint32

// FlatBinding returns the flattened binding of set and binding.
func FlatBinding(set, binding uint32) uint32 {
	return set*BindingsPerSet + binding
}

// Flatten rewrites the Binding decoration of every image, sampled image and
// sampler variable of m to set*16+binding and removes its DescriptorSet
// decoration. Buffers keep their decorations.
func Flatten(m *Module) (Remap, error) {
	types := make(map[uint32]spirv.Instruction)
	var resources []uint32
	for _, inst := range m.Instructions {
		switch inst.Opcode {
		case spirv.OpTypePointer, spirv.OpTypeImage, spirv.OpTypeSampler,
			spirv.OpTypeSampledImage, spirv.OpTypeArray, opTypeRuntimeArray:
			if len(inst.Words) > 0 {
				types[inst.Words[0]] = inst
			}
		case spirv.OpVariable:
			if len(inst.Words) >= 2 && isResourcePointer(types, inst.Words[0]) {
				resources = append(resources, inst.Words[1])
			}
		}
	}

	type slots struct {
		set, binding       uint32
		setIdx, bindingIdx int
	}
	found := make(map[uint32]*slots, len(resources))
	for _, id := range resources {
		found[id] = &slots{setIdx: -1, bindingIdx: -1}
	}
	for i, inst := range m.Instructions {
		if inst.Opcode != spirv.OpDecorate || len(inst.Words) < 3 {
			continue
		}
		s, ok := found[inst.Words[0]]
		if !ok {
			continue
		}
		switch spirv.Decoration(inst.Words[1]) {
		case spirv.DecorationDescriptorSet:
			s.set, s.setIdx = inst.Words[2], i
		case spirv.DecorationBinding:
			s.binding, s.bindingIdx = inst.Words[2], i
		}
	}

	remap := make(Remap)
	owner := make(map[uint32]Location)
	var drop []int
	for _, id := range resources {
		s := found[id]
		if s.bindingIdx < 0 {
			continue
		}
		loc := Location{Set: s.set, Binding: s.binding}
		flat := FlatBinding(s.set, s.binding)
		if prev, ok := owner[flat]; ok && prev != loc {
			return nil, fmt.Errorf("crosscompile: set %d binding %d and set %d binding %d both flatten to binding %d",
				prev.Set, prev.Binding, loc.Set, loc.Binding, flat)
		}
		owner[flat] = loc
		remap[loc] = flat
		if s.setIdx >= 0 {
			drop = append(drop, s.setIdx)
		}
	}

	// m is only modified once every resource flattened cleanly.
	for _, id := range resources {
		s := found[id]
		if s.bindingIdx < 0 {
			continue
		}
		words := slices.Clone(m.Instructions[s.bindingIdx].Words)
		words[2] = FlatBinding(s.set, s.binding)
		m.Instructions[s.bindingIdx].Words = words
	}

	if len(drop) > 0 {
		slices.Sort(drop)
		out := m.Instructions[:0:0]
		for i, inst := range m.Instructions {
			if _, ok := slices.BinarySearch(drop, i); !ok {
				out = append(out, inst)
			}
		}
		m.Instructions = out
	}
	return remap, nil
}

// isResourcePointer reports whether id is a pointer to an image, sampled
// image or sampler, or to an array of them.
func isResourcePointer(types map[uint32]spirv.Instruction, id uint32) bool {
	ptr, ok := types[id]
	if !ok || ptr.Opcode != spirv.OpTypePointer || len(ptr.Words) < 3 {
		return false
	}
	t := ptr.Words[2]
	for range 8 {
		inst, ok := types[t]
		if !ok {
			return false
		}
		switch inst.Opcode {
		case spirv.OpTypeImage, spirv.OpTypeSampler, spirv.OpTypeSampledImage:
			return true
		case spirv.OpTypeArray, opTypeRuntimeArray:
			if len(inst.Words) < 2 {
				return false
			}
			t = inst.Words[1]
		default:
			return false
		}
	}
	return false
}
