// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package walker

import (
	"strings"

	"github.com/gogpu/shaderkit/diag"
	"github.com/gogpu/shaderkit/param"
	"github.com/gogpu/shaderkit/reflection"
	"github.com/gogpu/shaderkit/vertex"
)

// Attribute names read from reflected symbols.
const (
	AttrRole      = "role"
	AttrBlock     = "block"
	AttrStream    = "stream"
	AttrOffset    = "offset"
	AttrInstanced = "instanced"
)

// BlockMemory is the block role of structs reflected as one opaque
// parameter.
const BlockMemory = "memory"

// VertexEntry is the entry point whose inputs become vertex attributes.
const VertexEntry = "vs_main"

// systemValuePrefix marks builtin inputs, which have no vertex attribute.
const systemValuePrefix = "SV_"

// Walk fills table and attrs from the layout of program. Existing contents
// are replaced. On failure both are cleared and the reasons are appended to
// sink.
func Walk(program reflection.Program, table *param.Table, attrs *[]vertex.Attribute, sink *diag.List) bool {
	table.Reset()
	*attrs = (*attrs)[:0]

	ok := VertexInputs(program, attrs, sink) && Parameters(program, table, sink)
	if !ok {
		table.Reset()
		*attrs = nil
	}
	return ok
}

// VertexInputs appends the vertex attributes of the vertex entry point to
// out. Programs without a vertex entry point have none. On failure out is
// left as it was.
func VertexInputs(program reflection.Program, out *[]vertex.Attribute, sink *diag.List) bool {
	ep, ok := program.FindEntryPoint(VertexEntry)
	if !ok {
		return true
	}
	w := vertexWalker{sink: sink}
	for _, p := range ep.Parameters() {
		e := newEntry(p.Name(), p, nil, 0)
		if !w.input(&e) {
			return false
		}
	}
	*out = append(*out, w.attrs...)
	return true
}

type vertexWalker struct {
	attrs []vertex.Attribute
	sink  *diag.List
}

func (w *vertexWalker) input(e *traceEntry) bool {
	t := e.v.Type()
	if t == nil {
		w.sink.Errorf(diag.KindVertexInput, "vertex input %s has no type information", e.name)
		return false
	}

	switch t.Kind() {
	case reflection.KindStruct:
		for _, f := range t.Fields() {
			c := e.child(f, 0)
			if !w.input(&c) {
				return false
			}
		}
		return true

	case reflection.KindScalar, reflection.KindVector:
		return w.leaf(e, t)
	}

	w.sink.Errorf(diag.KindVertexInput, "unsupported input variable type %s for %s", t.Kind(), e.name)
	return false
}

func (w *vertexWalker) leaf(e *traceEntry, t reflection.Type) bool {
	text := e.v.Semantic()
	if strings.HasPrefix(text, systemValuePrefix) {
		return true
	}
	if text == "" {
		w.sink.Errorf(diag.KindVertexInput, "vertex input %s has no semantic", e.name)
		return false
	}
	sem, suffix, ok := vertex.ParseSemantic(text)
	if !ok {
		w.sink.Errorf(diag.KindVertexInput, "unrecognized semantic %q on vertex input %s", text, e.name)
		return false
	}
	if t.Kind() == reflection.KindVector && !sem.AllowsVector() {
		w.sink.Errorf(diag.KindVertexInput, "semantic %s is not supported on vector input %s", sem, e.name)
		return false
	}
	index := e.v.SemanticIndex()
	if index == 0 {
		index = suffix
	}

	width := uint32(1)
	if t.Kind() == reflection.KindVector {
		width = t.Columns()
	}
	elem, err := vertex.ElementFor(t.Scalar(), width, sem)
	if err != nil {
		w.sink.Errorf(diag.KindVertexInput, "vertex input %s: %v", e.name, err)
		return false
	}

	a := vertex.Attribute{
		Semantic:      sem,
		SemanticIndex: index,
		Name:          e.name,
		Element:       elem,
		Location:      e.offset(reflection.CategoryVaryingInput),
		Offset:        vertex.OffsetAuto,
	}
	if attrs, ok := e.inheritedAttr(AttrInstanced); ok {
		instanced, valid := attrs.Bool(AttrInstanced)
		if !valid {
			w.sink.Errorf(diag.KindVertexInput, "vertex input %s: invalid @%s value", e.name, AttrInstanced)
			return false
		}
		if instanced {
			a.Rate = vertex.PerInstance
		}
	}
	if attrs, ok := e.inheritedAttr(AttrStream); ok {
		n, valid := attrs.Int(AttrStream)
		if !valid || n < 0 {
			w.sink.Errorf(diag.KindVertexInput, "vertex input %s: invalid @%s value", e.name, AttrStream)
			return false
		}
		if n >= vertex.MaxStreams {
			w.sink.Errorf(diag.KindVertexInput, "vertex input %s: @%s(%d) exceeds %d", e.name, AttrStream, n, vertex.MaxStreams-1)
			return false
		}
		a.Stream = uint32(n)
	}
	if attrs, ok := e.attr(AttrOffset); ok {
		n, valid := attrs.Int(AttrOffset)
		if !valid || n < 0 {
			w.sink.Errorf(diag.KindVertexInput, "vertex input %s: invalid @%s value", e.name, AttrOffset)
			return false
		}
		if n > vertex.MaxOffset {
			w.sink.Errorf(diag.KindVertexInput, "vertex input %s: @%s(%d) exceeds %d", e.name, AttrOffset, n, vertex.MaxOffset)
			return false
		}
		a.Offset = uint32(n)
	}
	w.attrs = append(w.attrs, a)
	return true
}
