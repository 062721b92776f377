// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package reflection

import "fmt"

// Kind is the closed set of reflected node kinds.
type Kind uint8

const (
	KindNone Kind = iota
	KindScalar
	KindVector
	KindMatrix
	KindArray
	KindStruct
	KindConstantBuffer
	KindResource
	KindSamplerState
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindScalar:
		return "scalar"
	case KindVector:
		return "vector"
	case KindMatrix:
		return "matrix"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindConstantBuffer:
		return "constant_buffer"
	case KindResource:
		return "resource"
	case KindSamplerState:
		return "sampler_state"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ScalarKind is the element kind of scalars, vectors and matrices.
type ScalarKind uint8

const (
	ScalarNone ScalarKind = iota
	ScalarBool
	ScalarInt8
	ScalarUint8
	ScalarInt16
	ScalarUint16
	ScalarInt32
	ScalarUint32
	ScalarFloat16
	ScalarFloat32
	ScalarFloat64
)

// String returns the scalar kind name.
func (s ScalarKind) String() string {
	switch s {
	case ScalarNone:
		return "none"
	case ScalarBool:
		return "bool"
	case ScalarInt8:
		return "int8"
	case ScalarUint8:
		return "uint8"
	case ScalarInt16:
		return "int16"
	case ScalarUint16:
		return "uint16"
	case ScalarInt32:
		return "int32"
	case ScalarUint32:
		return "uint32"
	case ScalarFloat16:
		return "float16"
	case ScalarFloat32:
		return "float32"
	case ScalarFloat64:
		return "float64"
	default:
		return fmt.Sprintf("scalar(%d)", uint8(s))
	}
}

// ResourceShape is the shape of a resource node.
type ResourceShape uint8

const (
	ShapeNone ResourceShape = iota
	ShapeTexture1D
	ShapeTexture2D
	ShapeTexture3D
	ShapeTextureCube
	ShapeStructuredBuffer
	ShapeByteAddressBuffer
	ShapeAccelerationStructure
	ShapeTexture2DArray
	ShapeTextureCubeArray
	ShapeTexture2DMultisample
)

// String returns the shape name.
func (s ResourceShape) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeTexture1D:
		return "texture_1d"
	case ShapeTexture2D:
		return "texture_2d"
	case ShapeTexture3D:
		return "texture_3d"
	case ShapeTextureCube:
		return "texture_cube"
	case ShapeStructuredBuffer:
		return "structured_buffer"
	case ShapeByteAddressBuffer:
		return "byte_address_buffer"
	case ShapeAccelerationStructure:
		return "acceleration_structure"
	case ShapeTexture2DArray:
		return "texture_2d_array"
	case ShapeTextureCubeArray:
		return "texture_cube_array"
	case ShapeTexture2DMultisample:
		return "texture_2d_multisample"
	default:
		return fmt.Sprintf("shape(%d)", uint8(s))
	}
}

// BindingKind is the kind of binding range a resource occupies.
type BindingKind uint8

const (
	BindingNone BindingKind = iota
	BindingSampler
	BindingTexture
	BindingMutableTexture
	BindingCombinedTextureSampler
	BindingConstantBuffer
	BindingRawBuffer
	BindingMutableRawBuffer
	BindingPushConstant
)

// String returns the binding kind name.
func (b BindingKind) String() string {
	switch b {
	case BindingNone:
		return "none"
	case BindingSampler:
		return "sampler"
	case BindingTexture:
		return "texture"
	case BindingMutableTexture:
		return "mutable_texture"
	case BindingCombinedTextureSampler:
		return "combined_texture_sampler"
	case BindingConstantBuffer:
		return "constant_buffer"
	case BindingRawBuffer:
		return "raw_buffer"
	case BindingMutableRawBuffer:
		return "mutable_raw_buffer"
	case BindingPushConstant:
		return "push_constant"
	default:
		return fmt.Sprintf("binding(%d)", uint8(b))
	}
}

// Category selects which offset of a variable is being traced.
type Category uint8

const (
	// CategoryUniform is the byte offset inside uniform memory.
	CategoryUniform Category = iota

	// CategoryDescriptorTableSlot is the binding index inside a descriptor
	// table (Vulkan binding, WGSL @binding).
	CategoryDescriptorTableSlot

	// CategoryRegisterSpace is the descriptor set / register space
	// contributed by an enclosing element.
	CategoryRegisterSpace

	// CategoryVaryingInput is the vertex input location.
	CategoryVaryingInput

	// CategoryPushConstant marks variables living in push-constant memory.
	CategoryPushConstant

	numCategories
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryUniform:
		return "uniform"
	case CategoryDescriptorTableSlot:
		return "descriptor_table_slot"
	case CategoryRegisterSpace:
		return "register_space"
	case CategoryVaryingInput:
		return "varying_input"
	case CategoryPushConstant:
		return "push_constant"
	default:
		return fmt.Sprintf("category(%d)", uint8(c))
	}
}

// Stage is a programmable pipeline stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StageTessControl
	StageTessEval
	StageGeometry
	StageFragment
	StageCompute

	// StageCount is the number of stages.
	StageCount
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageTessControl:
		return "tess_control"
	case StageTessEval:
		return "tess_eval"
	case StageGeometry:
		return "geometry"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
}

// PipelineKind distinguishes graphics and compute programs.
type PipelineKind uint8

const (
	PipelineGraphics PipelineKind = iota
	PipelineCompute
)

// String returns the pipeline kind name.
func (k PipelineKind) String() string {
	if k == PipelineCompute {
		return "compute"
	}
	return "graphics"
}

// Attributes exposes author-supplied attributes attached to a symbol.
type Attributes interface {
	// Has reports whether the attribute is present.
	Has(name string) bool

	// String returns the first argument of the attribute.
	String(name string) (string, bool)

	// Int returns the first argument of the attribute parsed as an integer.
	Int(name string) (int, bool)

	// Bool returns the attribute as a flag. A present attribute without
	// arguments is true.
	Bool(name string) (bool, bool)

	// Args returns all raw arguments of the attribute.
	Args(name string) []string
}

// Type is a reflected type together with its layout.
type Type interface {
	Kind() Kind
	Name() string

	// Rows, Columns and ElementCount describe the value shape. Scalars are
	// 1x1, vectors 1xN, matrices RxC. ElementCount is the array length for
	// arrays and zero otherwise.
	Rows() uint32
	Columns() uint32
	ElementCount() uint32
	Scalar() ScalarKind

	// Size returns the footprint in the given category. The boolean is false
	// when the layout carries no size information.
	Size(c Category) (uint32, bool)

	// Fields returns struct members in declaration order.
	Fields() []Variable

	// Element returns the element variable of constant buffers and arrays.
	Element() Variable

	Shape() ResourceShape
	BindingKind() BindingKind
	Attributes() Attributes
}

// Variable is a reflected variable: a name, a type and per-category offsets.
type Variable interface {
	Name() string

	// Type returns nil when the layout carries no type information.
	Type() Type

	// Offset returns the offset contributed by this variable in category c,
	// relative to its parent.
	Offset(c Category) uint32

	// Space returns the register space this variable binds into for
	// category c.
	Space(c Category) uint32

	// Uses reports whether the variable occupies any resource of category c.
	Uses(c Category) bool

	Semantic() string
	SemanticIndex() uint32
	Attributes() Attributes
}

// EntryPoint is a reflected entry point.
type EntryPoint interface {
	Name() string
	Stage() Stage
	Parameters() []Variable
}

// Program is the layout of a linked program.
type Program interface {
	// GlobalParams returns the root of all module-scope parameters.
	GlobalParams() Variable
	EntryPoints() []EntryPoint
	FindEntryPoint(name string) (EntryPoint, bool)
}
