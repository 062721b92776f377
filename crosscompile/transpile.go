// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package crosscompile

import (
	"fmt"
	"maps"

	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/ir"
)

// Target is the profile every transpiled stage is written in.
var Target = glsl.VersionES300

// Transpile writes entry point entry of module as GLSL ES 3.00 and returns
// the binding of every bound global. Globals whose original location
// appears in remap take their flattened binding; other bound globals, the
// uniform and storage blocks, are flattened the same way in the block
// binding namespace. module is not modified.
func Transpile(module *ir.Module, entry string, remap Remap) (string, Remap, error) {
	globals, bound, err := bindGlobals(module.GlobalVariables, remap)
	if err != nil {
		return "", nil, err
	}
	flat := *module
	flat.GlobalVariables = globals

	opts := glsl.DefaultOptions()
	opts.LangVersion = Target
	opts.EntryPoint = entry
	code, _, err := glsl.Compile(&flat, opts)
	if err != nil {
		return "", nil, fmt.Errorf("crosscompile: transpile %s: %w", entry, err)
	}
	return code, bound, nil
}

// bindGlobals returns a copy of globals rebound to set 0 and the location
// map it applied. Image and sampler locations come from remap; buffers
// share a namespace of their own.
func bindGlobals(globals []ir.GlobalVariable, remap Remap) ([]ir.GlobalVariable, Remap, error) {
	out := make([]ir.GlobalVariable, len(globals))
	copy(out, globals)
	bound := maps.Clone(remap)
	if bound == nil {
		bound = make(Remap)
	}

	blocks := make(map[uint32]Location)
	for i := range out {
		g := &out[i]
		if g.Binding == nil {
			continue
		}
		loc := Location{Set: g.Binding.Group, Binding: g.Binding.Binding}
		b, ok := remap[loc]
		if !ok {
			b = FlatBinding(loc.Set, loc.Binding)
			if g.Space == ir.SpaceUniform || g.Space == ir.SpaceStorage {
				if prev, taken := blocks[b]; taken && prev != loc {
					return nil, nil, fmt.Errorf("crosscompile: %s: set %d binding %d and set %d binding %d both flatten to binding %d",
						g.Name, prev.Set, prev.Binding, loc.Set, loc.Binding, b)
				}
				blocks[b] = loc
			}
			bound[loc] = b
		}
		g.Binding = &ir.ResourceBinding{Group: 0, Binding: b}
	}
	return out, bound, nil
}

// FlattenAndTranspile parses the SPIR-V code of one stage, flattens its
// resource bindings and transpiles entry point entry of module, the module
// the code was generated from, with the same bindings. It returns the
// GLSL ES source and the flattened binding of every bound global. Empty
// code yields empty source.
func FlattenAndTranspile(code []byte, module *ir.Module, entry string) (string, Remap, error) {
	if len(code) == 0 {
		return "", nil, nil
	}
	m, err := Parse(code)
	if err != nil {
		return "", nil, err
	}
	remap, err := Flatten(m)
	if err != nil {
		return "", nil, err
	}
	return Transpile(module, entry, remap)
}
