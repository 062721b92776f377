// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package walker

import (
	"github.com/gogpu/shaderkit/diag"
	"github.com/gogpu/shaderkit/param"
	"github.com/gogpu/shaderkit/reflection"
)

// Parameters adds the parameters reachable from the global root of program
// to table. On failure table may hold a partial result; [Walk] clears it.
func Parameters(program reflection.Program, table *param.Table, sink *diag.List) bool {
	root := program.GlobalParams()
	if root == nil || root.Type() == nil {
		sink.Errorf(diag.KindReflection, "program has no global parameter layout")
		return false
	}
	w := paramWalker{table: table, sink: sink}
	e := newEntry(root.Name(), root, nil, 0)
	if e.kind == reflection.KindConstantBuffer {
		w.local(&e)
	}
	return w.walk(&e)
}

type paramWalker struct {
	table *param.Table
	sink  *diag.List
}

func (w *paramWalker) walk(e *traceEntry) bool {
	t := e.v.Type()
	if t == nil {
		w.sink.Errorf(diag.KindReflection, "parameter %s has no type information", e.name)
		return false
	}
	if e.exclude.excludes(t.Kind()) {
		return true
	}

	switch t.Kind() {
	case reflection.KindScalar, reflection.KindVector, reflection.KindMatrix:
		return w.value(e, t)
	case reflection.KindArray:
		if elem := t.Element(); elem != nil && elem.Type() != nil {
			switch elem.Type().Kind() {
			case reflection.KindResource, reflection.KindSamplerState, reflection.KindConstantBuffer:
				w.sink.Errorf(diag.KindReflection, "arrays of %s are not supported: %s", elem.Type().Kind(), e.name)
				return false
			}
		}
		return w.value(e, t)
	case reflection.KindResource:
		return w.resource(e, t)
	case reflection.KindSamplerState:
		w.table.Add(param.Info{Name: e.name, Type: param.Sampler, Binding: e.location()})
		return true
	case reflection.KindStruct:
		return w.aggregate(e, t)
	case reflection.KindConstantBuffer:
		return w.constantBuffer(e, t)
	}

	w.sink.Errorf(diag.KindReflection, "resource type not supported as uniform parameter: %s (%s)", e.name, t.Kind())
	return false
}

func (w *paramWalker) value(e *traceEntry, t reflection.Type) bool {
	size, ok := t.Size(reflection.CategoryUniform)
	if !ok {
		w.sink.Errorf(diag.KindReflection, "parameter %s has no layout information", e.name)
		return false
	}
	var hints reflection.Attributes
	if a, ok := e.attr(AttrRole); ok {
		hints = a
	}
	info := param.Info{
		Name:   e.name,
		Type:   param.Classify(param.ShapeOf(t), hints),
		Offset: e.offset(reflection.CategoryUniform),
		Size:   size,
	}
	w.placeInBuffer(e, &info)
	w.table.Add(info)
	return true
}

func (w *paramWalker) resource(e *traceEntry, t reflection.Type) bool {
	var typ param.Type
	switch t.Shape() {
	case reflection.ShapeTexture2D:
		if a, ok := e.attr(AttrRole); ok {
			role, _ := a.String(AttrRole)
			typ, _ = param.ResourceRoleType(role)
		}
		if typ == param.Undefined {
			switch t.BindingKind() {
			case reflection.BindingCombinedTextureSampler:
				typ = param.CombinedImageSampler
			case reflection.BindingTexture:
				typ = param.Texture2D
			case reflection.BindingMutableTexture:
				typ = param.RWTexture2D
			default:
				w.sink.Errorf(diag.KindReflection, "unsupported binding range %s for 2D texture %s", t.BindingKind(), e.name)
				return false
			}
		}
	case reflection.ShapeTexture3D:
		typ = param.Texture3D
	case reflection.ShapeTextureCube:
		typ = param.TextureCube
	case reflection.ShapeStructuredBuffer, reflection.ShapeByteAddressBuffer:
		switch t.BindingKind() {
		case reflection.BindingRawBuffer:
			typ = param.StorageBuffer
		case reflection.BindingMutableRawBuffer:
			typ = param.RWStorageBuffer
		default:
			w.sink.Errorf(diag.KindReflection, "unsupported binding range %s for buffer %s", t.BindingKind(), e.name)
			return false
		}
	default:
		w.sink.Errorf(diag.KindReflection, "resource type not supported as uniform parameter: %s (%s)", e.name, t.Shape())
		return false
	}
	w.table.Add(param.Info{Name: e.name, Type: typ, Binding: e.location()})
	return true
}

func (w *paramWalker) aggregate(e *traceEntry, t reflection.Type) bool {
	exclude := e.exclude
	if a, ok := e.attr(AttrBlock); ok {
		if role, _ := a.String(AttrBlock); role == BlockMemory {
			size, ok := t.Size(reflection.CategoryUniform)
			if !ok {
				w.sink.Errorf(diag.KindReflection, "memory block %s has no layout information", e.name)
				return false
			}
			info := param.Info{
				Name:   e.name,
				Type:   param.MemoryBlock,
				Offset: e.offset(reflection.CategoryUniform),
				Size:   size,
			}
			w.placeInBuffer(e, &info)
			w.table.Add(info)
			exclude |= excludeValues
		}
	}
	for _, f := range t.Fields() {
		c := e.child(f, exclude)
		if !w.walk(&c) {
			return false
		}
	}
	return true
}

func (w *paramWalker) constantBuffer(e *traceEntry, t reflection.Type) bool {
	elem := t.Element()
	if elem == nil || elem.Type() == nil {
		w.sink.Errorf(diag.KindReflection, "constant buffer %s has no element layout", e.name)
		return false
	}

	if isFrameGlobals(elem.Type()) {
		loc := e.location()
		w.table.Globals = &loc
		w.table.Add(param.Info{Name: e.name, Type: param.Globals, Binding: loc, Size: param.FrameGlobalsSize})
		return true
	}
	if t.BindingKind() == reflection.BindingPushConstant {
		w.local(e)
	}

	c := e.child(elem, e.exclude)
	return w.walk(&c)
}

// local records e as the per-draw block unless one was already found.
func (w *paramWalker) local(e *traceEntry) {
	if w.table.Local != nil {
		return
	}
	t := e.v.Type()
	block := &param.LocalBlock{
		Binding:      e.location(),
		PushConstant: t.BindingKind() == reflection.BindingPushConstant,
	}
	if elem := t.Element(); elem != nil && elem.Type() != nil {
		block.Size, _ = elem.Type().Size(reflection.CategoryUniform)
	}
	w.table.Local = block
}

// placeInBuffer sets the binding of a value to that of its enclosing
// constant buffer.
func (w *paramWalker) placeInBuffer(e *traceEntry, info *param.Info) {
	cb := e.buffer()
	if cb == nil {
		return
	}
	info.Binding = cb.location()
	info.PushConstant = cb.v.Type().BindingKind() == reflection.BindingPushConstant
}

// isFrameGlobals reports whether t is the engine's per-frame block. Both
// the name and the exact size must match.
func isFrameGlobals(t reflection.Type) bool {
	if t.Name() != param.FrameGlobalsName {
		return false
	}
	size, ok := t.Size(reflection.CategoryUniform)
	return ok && size == param.FrameGlobalsSize
}
