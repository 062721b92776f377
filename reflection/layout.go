// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package reflection

import (
	"strconv"
)

// AttributeSet is an immutable set of named attributes with raw string
// arguments.
type AttributeSet map[string][]string

var _ Attributes = AttributeSet(nil)

// Has reports whether the attribute is present.
func (a AttributeSet) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Args returns the raw arguments of the attribute.
func (a AttributeSet) Args(name string) []string {
	return a[name]
}

// String returns the first argument of the attribute.
func (a AttributeSet) String(name string) (string, bool) {
	args, ok := a[name]
	if !ok || len(args) == 0 {
		return "", false
	}
	return args[0], true
}

// Int returns the first argument parsed as a base-10 integer.
func (a AttributeSet) Int(name string) (int, bool) {
	s, ok := a.String(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Bool returns the attribute as a flag.
func (a AttributeSet) Bool(name string) (bool, bool) {
	args, ok := a[name]
	if !ok {
		return false, false
	}
	if len(args) == 0 {
		return true, true
	}
	b, err := strconv.ParseBool(args[0])
	if err != nil {
		return false, false
	}
	return b, true
}

// Merge returns a new set holding a's attributes overridden by b's.
func (a AttributeSet) Merge(b AttributeSet) AttributeSet {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	out := make(AttributeSet, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// TypeLayout is the concrete, immutable implementation of [Type].
type TypeLayout struct {
	kind    Kind
	name    string
	rows    uint32
	columns uint32
	count   uint32
	scalar  ScalarKind
	sizes   [numCategories]uint32
	sized   bool
	fields  []Variable
	element Variable
	shape   ResourceShape
	binding BindingKind
	attrs   AttributeSet
}

var _ Type = (*TypeLayout)(nil)

// NewScalar returns a scalar type occupying size bytes of uniform memory.
func NewScalar(s ScalarKind, size uint32) *TypeLayout {
	return newSized(KindScalar, s, 1, 1, size)
}

// NewVector returns an n-wide vector type.
func NewVector(s ScalarKind, n, size uint32) *TypeLayout {
	return newSized(KindVector, s, 1, n, size)
}

// NewMatrix returns a rows x columns matrix type.
func NewMatrix(s ScalarKind, rows, columns, size uint32) *TypeLayout {
	return newSized(KindMatrix, s, rows, columns, size)
}

func newSized(k Kind, s ScalarKind, rows, columns, size uint32) *TypeLayout {
	t := &TypeLayout{kind: k, scalar: s, rows: rows, columns: columns, sized: true}
	t.sizes[CategoryUniform] = size
	return t
}

// NewArray returns an array of count elements. The element's shape is
// carried over so that arrays of vectors still report their rows and
// columns.
func NewArray(element *VarLayout, count, size uint32) *TypeLayout {
	t := &TypeLayout{kind: KindArray, count: count, sized: true}
	t.sizes[CategoryUniform] = size
	if element != nil {
		t.element = element
		if et := element.typ; et != nil {
			t.rows, t.columns, t.scalar = et.rows, et.columns, et.scalar
			t.shape, t.binding = et.shape, et.binding
		}
	}
	return t
}

// NewStruct returns a struct type with the given members.
func NewStruct(name string, size uint32, fields ...*VarLayout) *TypeLayout {
	t := &TypeLayout{kind: KindStruct, name: name, sized: true}
	t.sizes[CategoryUniform] = size
	t.fields = make([]Variable, len(fields))
	for i, f := range fields {
		t.fields[i] = f
	}
	return t
}

// NewConstantBuffer returns a constant buffer wrapping element. The buffer
// itself occupies one descriptor slot and no uniform bytes in its parent.
func NewConstantBuffer(element *VarLayout) *TypeLayout {
	t := &TypeLayout{kind: KindConstantBuffer, binding: BindingConstantBuffer, sized: true}
	t.sizes[CategoryDescriptorTableSlot] = 1
	if element != nil {
		t.element = element
	}
	return t
}

// NewPushConstantBuffer returns a constant buffer living in push-constant
// memory.
func NewPushConstantBuffer(element *VarLayout) *TypeLayout {
	t := NewConstantBuffer(element)
	t.binding = BindingPushConstant
	t.sizes[CategoryDescriptorTableSlot] = 0
	if element != nil && element.typ != nil {
		t.sizes[CategoryPushConstant] = element.typ.sizes[CategoryUniform]
	}
	return t
}

// NewResource returns a resource of the given shape bound through a binding
// range of kind b.
func NewResource(shape ResourceShape, b BindingKind) *TypeLayout {
	t := &TypeLayout{kind: KindResource, shape: shape, binding: b, sized: true}
	t.sizes[CategoryDescriptorTableSlot] = 1
	return t
}

// NewSampler returns a sampler state type.
func NewSampler() *TypeLayout {
	t := &TypeLayout{kind: KindSamplerState, binding: BindingSampler, sized: true}
	t.sizes[CategoryDescriptorTableSlot] = 1
	return t
}

// NewUnsized returns a type of kind k that carries no layout information.
func NewUnsized(k Kind) *TypeLayout {
	return &TypeLayout{kind: k}
}

// WithName returns t renamed. It must be called while building the graph.
func (t *TypeLayout) WithName(name string) *TypeLayout {
	t.name = name
	return t
}

// WithAttributes attaches author attributes to the type declaration.
func (t *TypeLayout) WithAttributes(a AttributeSet) *TypeLayout {
	t.attrs = a
	return t
}

func (t *TypeLayout) Kind() Kind { return t.kind }
func (t *TypeLayout) Name() string { return t.name }
func (t *TypeLayout) Rows() uint32 { return t.rows }
func (t *TypeLayout) Columns() uint32 { return t.columns }
func (t *TypeLayout) ElementCount() uint32 { return t.count }
func (t *TypeLayout) Scalar() ScalarKind { return t.scalar }
func (t *TypeLayout) Fields() []Variable { return t.fields }
func (t *TypeLayout) Element() Variable { return t.element }
func (t *TypeLayout) Shape() ResourceShape { return t.shape }
func (t *TypeLayout) BindingKind() BindingKind { return t.binding }
func (t *TypeLayout) Attributes() Attributes { return t.attrs }
func (t *TypeLayout) Size(c Category) (uint32, bool) {
	if !t.sized || c >= numCategories {
		return 0, false
	}
	return t.sizes[c], true
}

// VarLayout is the concrete, immutable implementation of [Variable].
type VarLayout struct {
	name          string
	typ           *TypeLayout
	offsets       [numCategories]uint32
	spaces        [numCategories]uint32
	uses          [numCategories]bool
	semantic      string
	semanticIndex uint32
	attrs         AttributeSet
}

var _ Variable = (*VarLayout)(nil)

// NewVar returns a variable of type t. A nil t models a variable whose
// layout lost its type information.
func NewVar(name string, t *TypeLayout) *VarLayout {
	return &VarLayout{name: name, typ: t}
}

// At records the offset of v in category c.
func (v *VarLayout) At(c Category, offset uint32) *VarLayout {
	v.offsets[c] = offset
	v.uses[c] = true
	return v
}

// InSpace records the register space of v in category c.
func (v *VarLayout) InSpace(c Category, space uint32) *VarLayout {
	v.spaces[c] = space
	v.uses[c] = true
	return v
}

// WithSemantic records the varying semantic of v.
func (v *VarLayout) WithSemantic(name string, index uint32) *VarLayout {
	v.semantic = name
	v.semanticIndex = index
	return v
}

// WithAttributes attaches author attributes to v.
func (v *VarLayout) WithAttributes(a AttributeSet) *VarLayout {
	v.attrs = a
	return v
}

func (v *VarLayout) Name() string { return v.name }
func (v *VarLayout) Offset(c Category) uint32 { return v.offsets[c] }
func (v *VarLayout) Space(c Category) uint32 { return v.spaces[c] }
func (v *VarLayout) Uses(c Category) bool { return c < numCategories && v.uses[c] }
func (v *VarLayout) Semantic() string { return v.semantic }
func (v *VarLayout) SemanticIndex() uint32 { return v.semanticIndex }
func (v *VarLayout) Attributes() Attributes { return v.attrs }

// Type returns the variable's type, or nil.
func (v *VarLayout) Type() Type {
	if v.typ == nil {
		return nil
	}
	return v.typ
}

// EntryPointLayout is the concrete implementation of [EntryPoint].
type EntryPointLayout struct {
	name   string
	stage  Stage
	params []Variable
}

var _ EntryPoint = (*EntryPointLayout)(nil)

// NewEntryPoint returns an entry point layout.
func NewEntryPoint(name string, stage Stage, params ...*VarLayout) *EntryPointLayout {
	ep := &EntryPointLayout{name: name, stage: stage, params: make([]Variable, len(params))}
	for i, p := range params {
		ep.params[i] = p
	}
	return ep
}

func (e *EntryPointLayout) Name() string { return e.name }
func (e *EntryPointLayout) Stage() Stage { return e.stage }
func (e *EntryPointLayout) Parameters() []Variable { return e.params }

// ProgramLayout is the concrete implementation of [Program].
type ProgramLayout struct {
	globals     Variable
	entryPoints []EntryPoint
}

var _ Program = (*ProgramLayout)(nil)

// NewProgram returns a program layout rooted at globals.
func NewProgram(globals *VarLayout, entryPoints ...*EntryPointLayout) *ProgramLayout {
	p := &ProgramLayout{entryPoints: make([]EntryPoint, len(entryPoints))}
	if globals != nil {
		p.globals = globals
	}
	for i, ep := range entryPoints {
		p.entryPoints[i] = ep
	}
	return p
}

func (p *ProgramLayout) GlobalParams() Variable { return p.globals }
func (p *ProgramLayout) EntryPoints() []EntryPoint { return p.entryPoints }

// FindEntryPoint returns the entry point with the exact given name.
func (p *ProgramLayout) FindEntryPoint(name string) (EntryPoint, bool) {
	for _, ep := range p.entryPoints {
		if ep.Name() == name {
			return ep, true
		}
	}
	return nil, false
}
