// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package frontend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/naga/ir"
	"github.com/gogpu/shaderkit/reflection"
)

// SystemValuePrefix starts the semantic of a builtin entry-point input.
const SystemValuePrefix = "SV_"

// layoutBuilder converts a lowered module into a reflection graph.
type layoutBuilder struct {
	module *ir.Module
	attrs  *attributeIndex
	types  map[ir.TypeHandle]*reflection.TypeLayout
}

func buildLayout(m *ir.Module, attrs *attributeIndex, eps []EntryPoint) (*reflection.ProgramLayout, error) {
	b := &layoutBuilder{
		module: m,
		attrs:  attrs,
		types:  make(map[ir.TypeHandle]*reflection.TypeLayout),
	}

	var fields []*reflection.VarLayout
	for _, g := range m.GlobalVariables {
		v, err := b.global(g)
		if err != nil {
			return nil, fmt.Errorf("global %q: %w", g.Name, err)
		}
		if v != nil {
			fields = append(fields, v)
		}
	}
	root := reflection.NewVar("", reflection.NewStruct("", 0, fields...))

	layouts := make([]*reflection.EntryPointLayout, 0, len(eps))
	for _, ep := range eps {
		irEP := m.EntryPoints[ep.index]
		if int(irEP.Function) >= len(m.Functions) {
			return nil, fmt.Errorf("entry point %q: function handle %d out of range", ep.Name, irEP.Function)
		}
		fn := &m.Functions[irEP.Function]
		params := make([]*reflection.VarLayout, 0, len(fn.Arguments))
		for _, arg := range fn.Arguments {
			p, err := b.varying(arg.Name, arg.Type, arg.Binding, b.attrs.param(ep.Name, arg.Name))
			if err != nil {
				return nil, fmt.Errorf("entry point %q: parameter %q: %w", ep.Name, arg.Name, err)
			}
			params = append(params, p)
		}
		layouts = append(layouts, reflection.NewEntryPoint(ep.Name, ep.Stage, params...))
	}
	return reflection.NewProgram(root, layouts...), nil
}

// global reflects one module-scope variable. Private and workgroup
// variables are not externally bound and yield nil.
func (b *layoutBuilder) global(g ir.GlobalVariable) (*reflection.VarLayout, error) {
	switch g.Space {
	case ir.SpaceUniform, ir.SpacePushConstant, ir.SpaceStorage, ir.SpaceHandle:
	default:
		return nil, nil
	}
	t, err := b.typeOf(g.Type)
	if err != nil {
		return nil, err
	}

	var vt *reflection.TypeLayout
	switch g.Space {
	case ir.SpaceUniform:
		vt = reflection.NewConstantBuffer(reflection.NewVar("", t))
	case ir.SpacePushConstant:
		vt = reflection.NewPushConstantBuffer(reflection.NewVar("", t))
	case ir.SpaceStorage:
		kind := reflection.BindingRawBuffer
		if b.attrs.writable[g.Name] {
			kind = reflection.BindingMutableRawBuffer
		}
		name := b.module.Types[g.Type].Name
		vt = reflection.NewResource(reflection.ShapeStructuredBuffer, kind).
			WithName(name).
			WithAttributes(b.attrs.structs[name])
	default:
		vt = t
	}

	v := reflection.NewVar(g.Name, vt).WithAttributes(b.attrs.globals[g.Name])
	if g.Space == ir.SpacePushConstant {
		v.At(reflection.CategoryPushConstant, 0)
	} else if g.Binding != nil {
		v.At(reflection.CategoryDescriptorTableSlot, g.Binding.Binding).
			InSpace(reflection.CategoryDescriptorTableSlot, g.Binding.Group)
	}
	return v, nil
}

// typeOf returns the layout of a type handle. Types that carry no layout,
// such as pointers, yield nil.
func (b *layoutBuilder) typeOf(h ir.TypeHandle) (*reflection.TypeLayout, error) {
	if t, ok := b.types[h]; ok {
		return t, nil
	}
	if int(h) >= len(b.module.Types) {
		return nil, fmt.Errorf("type handle %d out of range", h)
	}
	ty := b.module.Types[h]

	var t *reflection.TypeLayout
	switch inner := ty.Inner.(type) {
	case ir.ScalarType:
		t = reflection.NewScalar(scalarKind(inner), scalarSize(inner))
	case ir.AtomicType:
		t = reflection.NewScalar(scalarKind(inner.Scalar), scalarSize(inner.Scalar))
	case ir.VectorType:
		n := uint32(inner.Size)
		t = reflection.NewVector(scalarKind(inner.Scalar), n, n*scalarSize(inner.Scalar))
	case ir.MatrixType:
		rows, cols := uint32(inner.Rows), uint32(inner.Columns)
		// Columns of three rows are padded to four.
		padded := rows
		if padded == 3 {
			padded = 4
		}
		t = reflection.NewMatrix(scalarKind(inner.Scalar), rows, cols, cols*padded*scalarSize(inner.Scalar))
	case ir.ArrayType:
		elem, err := b.typeOf(inner.Base)
		if err != nil {
			return nil, err
		}
		var count uint32
		if inner.Size.Constant != nil {
			count = *inner.Size.Constant
		}
		t = reflection.NewArray(reflection.NewVar("", elem), count, inner.Stride*count)
	case ir.StructType:
		fields := make([]*reflection.VarLayout, 0, len(inner.Members))
		for _, m := range inner.Members {
			ft, err := b.typeOf(m.Type)
			if err != nil {
				return nil, err
			}
			fields = append(fields, reflection.NewVar(m.Name, ft).
				At(reflection.CategoryUniform, m.Offset).
				WithAttributes(b.attrs.member(ty.Name, m.Name)))
		}
		t = reflection.NewStruct(ty.Name, inner.Span, fields...).WithAttributes(b.attrs.structs[ty.Name])
	case ir.ImageType:
		kind := reflection.BindingTexture
		if inner.Class == ir.ImageClassStorage {
			kind = reflection.BindingMutableTexture
		}
		t = reflection.NewResource(imageShape(inner), kind).WithName(ty.Name)
	case ir.SamplerType:
		t = reflection.NewSampler().WithName(ty.Name)
	default:
		return nil, nil
	}
	b.types[h] = t
	return t, nil
}

// varying reflects an entry-point input. Struct inputs without a binding
// are expanded member by member so that every leaf carries its own
// location and semantic.
func (b *layoutBuilder) varying(name string, h ir.TypeHandle, binding *ir.Binding, attrs reflection.AttributeSet) (*reflection.VarLayout, error) {
	if int(h) >= len(b.module.Types) {
		return nil, fmt.Errorf("type handle %d out of range", h)
	}
	ty := b.module.Types[h]

	if st, ok := ty.Inner.(ir.StructType); ok && binding == nil {
		fields := make([]*reflection.VarLayout, 0, len(st.Members))
		for _, m := range st.Members {
			f, err := b.varying(m.Name, m.Type, m.Binding, b.attrs.member(ty.Name, m.Name))
			if err != nil {
				return nil, err
			}
			fields = append(fields, f)
		}
		t := reflection.NewStruct(ty.Name, st.Span, fields...).WithAttributes(b.attrs.structs[ty.Name])
		return reflection.NewVar(name, t).WithAttributes(attrs), nil
	}

	t, err := b.typeOf(h)
	if err != nil {
		return nil, err
	}
	v := reflection.NewVar(name, t).WithAttributes(attrs)
	if binding != nil {
		switch bb := (*binding).(type) {
		case ir.LocationBinding:
			v.At(reflection.CategoryVaryingInput, bb.Location)
		case ir.BuiltinBinding:
			return v.WithSemantic(SystemValuePrefix+builtinName(bb.Builtin), 0), nil
		}
	}
	if args := attrs.Args(AttrSemantic); len(args) > 0 {
		var index uint64
		if len(args) > 1 {
			index, err = strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid semantic index %q", args[1])
			}
		}
		v.WithSemantic(strings.TrimSpace(args[0]), uint32(index))
	}
	return v, nil
}

func scalarKind(s ir.ScalarType) reflection.ScalarKind {
	switch s.Kind {
	case ir.ScalarBool:
		return reflection.ScalarBool
	case ir.ScalarSint:
		switch s.Width {
		case 1:
			return reflection.ScalarInt8
		case 2:
			return reflection.ScalarInt16
		}
		return reflection.ScalarInt32
	case ir.ScalarUint:
		switch s.Width {
		case 1:
			return reflection.ScalarUint8
		case 2:
			return reflection.ScalarUint16
		}
		return reflection.ScalarUint32
	case ir.ScalarFloat:
		switch s.Width {
		case 2:
			return reflection.ScalarFloat16
		case 8:
			return reflection.ScalarFloat64
		}
		return reflection.ScalarFloat32
	}
	return reflection.ScalarNone
}

// scalarSize returns the host-shareable size of a scalar. Booleans occupy
// a full word.
func scalarSize(s ir.ScalarType) uint32 {
	if s.Kind == ir.ScalarBool {
		return 4
	}
	return uint32(s.Width)
}

func imageShape(img ir.ImageType) reflection.ResourceShape {
	switch img.Dim {
	case ir.Dim1D:
		return reflection.ShapeTexture1D
	case ir.Dim3D:
		return reflection.ShapeTexture3D
	case ir.DimCube:
		if img.Arrayed {
			return reflection.ShapeTextureCubeArray
		}
		return reflection.ShapeTextureCube
	}
	switch {
	case img.Multisampled:
		return reflection.ShapeTexture2DMultisample
	case img.Arrayed:
		return reflection.ShapeTexture2DArray
	}
	return reflection.ShapeTexture2D
}

func builtinName(v ir.BuiltinValue) string {
	switch v {
	case ir.BuiltinPosition:
		return "Position"
	case ir.BuiltinVertexIndex:
		return "VertexID"
	case ir.BuiltinInstanceIndex:
		return "InstanceID"
	case ir.BuiltinFrontFacing:
		return "IsFrontFace"
	case ir.BuiltinFragDepth:
		return "Depth"
	case ir.BuiltinSampleIndex:
		return "SampleIndex"
	case ir.BuiltinSampleMask:
		return "Coverage"
	case ir.BuiltinLocalInvocationID:
		return "GroupThreadID"
	case ir.BuiltinLocalInvocationIndex:
		return "GroupIndex"
	case ir.BuiltinGlobalInvocationID:
		return "DispatchThreadID"
	case ir.BuiltinWorkGroupID:
		return "GroupID"
	case ir.BuiltinNumWorkGroups:
		return "NumWorkGroups"
	default:
		return fmt.Sprintf("Builtin%d", uint8(v))
	}
}
