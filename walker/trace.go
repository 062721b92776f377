// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package walker

import (
	"github.com/gogpu/shaderkit/param"
	"github.com/gogpu/shaderkit/reflection"
)

// exclusion is the set of node kinds that must not be emitted as
// parameters below a given trace entry.
type exclusion uint8

const (
	excludeScalar exclusion = 1 << iota
	excludeVector
	excludeMatrix
	excludeResource
	excludeSampler
	excludeStruct
	excludeConstantBuffer

	excludeValues = excludeScalar | excludeVector | excludeMatrix
)

// excludes reports whether nodes of kind k are excluded. Arrays are values
// and are excluded together with them.
func (x exclusion) excludes(k reflection.Kind) bool {
	switch k {
	case reflection.KindScalar:
		return x&excludeScalar != 0
	case reflection.KindVector:
		return x&excludeVector != 0
	case reflection.KindMatrix:
		return x&excludeMatrix != 0
	case reflection.KindArray:
		return x&excludeValues == excludeValues
	case reflection.KindResource:
		return x&excludeResource != 0
	case reflection.KindSamplerState:
		return x&excludeSampler != 0
	case reflection.KindStruct:
		return x&excludeStruct != 0
	case reflection.KindConstantBuffer:
		return x&excludeConstantBuffer != 0
	}
	return false
}

// traceEntry links a visited variable to its parent. Entries live on the
// stack of the recursion that created them.
type traceEntry struct {
	name    string
	v       reflection.Variable
	parent  *traceEntry
	kind    reflection.Kind
	exclude exclusion
}

func newEntry(name string, v reflection.Variable, parent *traceEntry, x exclusion) traceEntry {
	e := traceEntry{name: name, v: v, parent: parent, exclude: x}
	if t := v.Type(); t != nil {
		e.kind = t.Kind()
	}
	return e
}

// child returns the entry of v nested below e. Unnamed variables, such as
// the element of a constant buffer, share the name of their parent.
func (e *traceEntry) child(v reflection.Variable, x exclusion) traceEntry {
	name := e.name
	switch {
	case v.Name() == "":
	case name == "":
		name = v.Name()
	default:
		name += "." + v.Name()
	}
	return newEntry(name, v, e, x)
}

// offset sums the offsets in category c from e toward the root. A uniform
// trace stops at the first constant buffer, inclusive: offsets inside a
// buffer are relative to the buffer.
func (e *traceEntry) offset(c reflection.Category) uint32 {
	var sum uint32
	for n := e; n != nil; n = n.parent {
		sum += n.v.Offset(c)
		if c == reflection.CategoryUniform && n.kind == reflection.KindConstantBuffer {
			break
		}
	}
	return sum
}

// set returns the descriptor set of e: the register spaces contributed by
// every entry up to the root.
func (e *traceEntry) set() uint32 {
	var sum uint32
	for n := e; n != nil; n = n.parent {
		sum += n.v.Offset(reflection.CategoryRegisterSpace) + n.v.Space(reflection.CategoryDescriptorTableSlot)
	}
	return sum
}

// location returns the bind location of e.
func (e *traceEntry) location() param.BindLocation {
	return param.BindLocation{Set: e.set(), Binding: e.offset(reflection.CategoryDescriptorTableSlot)}
}

// buffer returns the nearest enclosing constant buffer of e.
func (e *traceEntry) buffer() *traceEntry {
	for n := e.parent; n != nil; n = n.parent {
		if n.kind == reflection.KindConstantBuffer {
			return n
		}
	}
	return nil
}

// attr looks up an attribute on the variable, then on its type.
func (e *traceEntry) attr(name string) (reflection.Attributes, bool) {
	if a := e.v.Attributes(); a != nil && a.Has(name) {
		return a, true
	}
	if t := e.v.Type(); t != nil {
		if a := t.Attributes(); a != nil && a.Has(name) {
			return a, true
		}
	}
	return nil, false
}

// inheritedAttr is like attr but continues with the ancestors of e.
func (e *traceEntry) inheritedAttr(name string) (reflection.Attributes, bool) {
	for n := e; n != nil; n = n.parent {
		if a, ok := n.attr(name); ok {
			return a, true
		}
	}
	return nil, false
}
