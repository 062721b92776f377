// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package crosscompile

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gogpu/naga/spirv"
)

var executionModels = map[uint32]string{
	0: "Vertex", 1: "TessellationControl", 2: "TessellationEvaluation",
	3: "Geometry", 4: "Fragment", 5: "GLCompute",
}

var storageClasses = map[uint32]string{
	0: "UniformConstant", 1: "Input", 2: "Uniform", 3: "Output",
	4: "Workgroup", 6: "Private", 7: "Function", 9: "PushConstant",
	12: "StorageBuffer",
}

var decorations = map[uint32]string{
	2: "Block", 3: "BufferBlock", 4: "RowMajor", 5: "ColMajor",
	6: "ArrayStride", 7: "MatrixStride", 11: "BuiltIn", 14: "Flat",
	24: "NonWritable", 25: "NonReadable", 30: "Location",
	33: "Binding", 34: "DescriptorSet", 35: "Offset",
}

var dims = map[uint32]string{
	0: "1D", 1: "2D", 2: "3D", 3: "Cube", 4: "Rect", 5: "Buffer", 6: "SubpassData",
}

func lookup(m map[uint32]string, v uint32) string {
	if s, ok := m[v]; ok {
		return s
	}
	return strconv.FormatUint(uint64(v), 10)
}

// Dump writes the interface of m: header, entry points, debug names,
// decorations and module-scope variables. Instructions inside functions
// are not listed.
func Dump(w io.Writer, m *Module) error {
	names := m.Names()
	id := func(n uint32) string {
		if s, ok := names[n]; ok && s != "" {
			return "%" + s
		}
		return "%" + strconv.FormatUint(uint64(n), 10)
	}
	types := make(map[uint32]spirv.Instruction)

	p := &printer{w: w}
	p.printf("; SPIR-V %d.%d\n", m.Version.Major, m.Version.Minor)
	p.printf("; Generator: 0x%08X\n", m.Generator)
	p.printf("; Bound: %d\n", m.Bound)

	for _, inst := range m.Instructions {
		ops := inst.Words
		switch inst.Opcode {
		case spirv.OpEntryPoint:
			if len(ops) < 3 {
				continue
			}
			n := stringWords(ops[2:])
			p.printf("OpEntryPoint %s %s %q", lookup(executionModels, ops[0]), id(ops[1]), decodeString(ops[2:]))
			for _, v := range ops[2+n:] {
				p.printf(" %s", id(v))
			}
			p.printf("\n")

		case spirv.OpName:
			if len(ops) >= 2 {
				p.printf("OpName %%%d %q\n", ops[0], decodeString(ops[1:]))
			}

		case spirv.OpDecorate:
			if len(ops) < 2 {
				continue
			}
			p.printf("OpDecorate %s %s", id(ops[0]), lookup(decorations, ops[1]))
			for _, v := range ops[2:] {
				p.printf(" %d", v)
			}
			p.printf("\n")

		case spirv.OpTypePointer, spirv.OpTypeImage, spirv.OpTypeSampler,
			spirv.OpTypeSampledImage, spirv.OpTypeArray, opTypeRuntimeArray, spirv.OpTypeStruct:
			if len(ops) > 0 {
				types[ops[0]] = inst
			}

		case spirv.OpVariable:
			if len(ops) < 3 || storageClasses[ops[2]] == "Function" {
				continue
			}
			p.printf("%s = OpVariable %s %s\n", id(ops[1]), lookup(storageClasses, ops[2]), describe(types, ops[0]))
		}
	}
	return p.err
}

// describe names the type a variable points to.
func describe(types map[uint32]spirv.Instruction, ptr uint32) string {
	inst, ok := types[ptr]
	if !ok || inst.Opcode != spirv.OpTypePointer || len(inst.Words) < 3 {
		return "%" + strconv.FormatUint(uint64(ptr), 10)
	}
	t := inst.Words[2]
	pointee, ok := types[t]
	if !ok {
		return "%" + strconv.FormatUint(uint64(t), 10)
	}
	switch pointee.Opcode {
	case spirv.OpTypeImage:
		if len(pointee.Words) >= 3 {
			return "image" + lookup(dims, pointee.Words[2])
		}
		return "image"
	case spirv.OpTypeSampler:
		return "sampler"
	case spirv.OpTypeSampledImage:
		return "sampled_image"
	case spirv.OpTypeStruct:
		return "struct"
	case spirv.OpTypeArray, opTypeRuntimeArray:
		return "array"
	}
	return "%" + strconv.FormatUint(uint64(t), 10)
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
