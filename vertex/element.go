// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vertex

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/shaderkit/reflection"
)

// ElementType is the storage type of one vertex attribute.
type ElementType uint8

const (
	ElementUnknown ElementType = iota
	Byte
	Byte2
	Byte3
	Byte4
	Short
	Short2
	Short3
	Short4
	Int
	Int2
	Int3
	Int4
	UInt
	UInt2
	UInt3
	UInt4
	Float
	Float2
	Float3
	Float4

	// Color is four normalized bytes.
	Color
)

var elementNames = [...]string{
	ElementUnknown: "unknown",
	Byte:           "byte",
	Byte2:          "byte2",
	Byte3:          "byte3",
	Byte4:          "byte4",
	Short:          "short",
	Short2:         "short2",
	Short3:         "short3",
	Short4:         "short4",
	Int:            "int",
	Int2:           "int2",
	Int3:           "int3",
	Int4:           "int4",
	UInt:           "uint",
	UInt2:          "uint2",
	UInt3:          "uint3",
	UInt4:          "uint4",
	Float:          "float",
	Float2:         "float2",
	Float3:         "float3",
	Float4:         "float4",
	Color:          "color",
}

// String returns the element type name.
func (e ElementType) String() string {
	if int(e) < len(elementNames) {
		return elementNames[e]
	}
	return fmt.Sprintf("element(%d)", uint8(e))
}

// MarshalText implements encoding.TextMarshaler.
func (e ElementType) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// Components returns the number of components.
func (e ElementType) Components() uint32 {
	switch e {
	case ElementUnknown:
		return 0
	case Color:
		return 4
	}
	return uint32(e-1)%4 + 1
}

// Size returns the byte size of one element.
func (e ElementType) Size() uint32 {
	switch {
	case e == Color:
		return 4
	case e >= Byte && e <= Byte4:
		return e.Components()
	case e >= Short && e <= Short4:
		return 2 * e.Components()
	case e >= Int && e <= Float4:
		return 4 * e.Components()
	}
	return 0
}

// Format returns the vertex format of e. Bytes are unsigned and shorts are
// signed; widths with no matching vertex format report false.
func (e ElementType) Format() (gputypes.VertexFormat, bool) {
	switch e {
	case Byte2:
		return gputypes.VertexFormatUint8x2, true
	case Byte4:
		return gputypes.VertexFormatUint8x4, true
	case Short2:
		return gputypes.VertexFormatSint16x2, true
	case Short4:
		return gputypes.VertexFormatSint16x4, true
	case Int:
		return gputypes.VertexFormatSint32, true
	case Int2:
		return gputypes.VertexFormatSint32x2, true
	case Int3:
		return gputypes.VertexFormatSint32x3, true
	case Int4:
		return gputypes.VertexFormatSint32x4, true
	case UInt:
		return gputypes.VertexFormatUint32, true
	case UInt2:
		return gputypes.VertexFormatUint32x2, true
	case UInt3:
		return gputypes.VertexFormatUint32x3, true
	case UInt4:
		return gputypes.VertexFormatUint32x4, true
	case Float:
		return gputypes.VertexFormatFloat32, true
	case Float2:
		return gputypes.VertexFormatFloat32x2, true
	case Float3:
		return gputypes.VertexFormatFloat32x3, true
	case Float4:
		return gputypes.VertexFormatFloat32x4, true
	case Color:
		return gputypes.VertexFormatUnorm8x4, true
	}
	var zero gputypes.VertexFormat
	return zero, false
}

// ElementFor infers the storage type of an input with the given scalar kind
// and component count. A four-wide float tagged Color becomes the packed
// Color element.
func ElementFor(s reflection.ScalarKind, width uint32, sem Semantic) (ElementType, error) {
	if width < 1 || width > 4 {
		return ElementUnknown, fmt.Errorf("unsupported vector width %d", width)
	}
	var base ElementType
	switch s {
	case reflection.ScalarInt8, reflection.ScalarUint8:
		base = Byte
	case reflection.ScalarInt16, reflection.ScalarUint16:
		base = Short
	case reflection.ScalarInt32:
		base = Int
	case reflection.ScalarUint32:
		base = UInt
	case reflection.ScalarFloat32:
		base = Float
	default:
		return ElementUnknown, fmt.Errorf("unsupported vertex element scalar %s", s)
	}
	if base == Float && width == 4 && sem == SemanticColor {
		return Color, nil
	}
	return base + ElementType(width-1), nil
}
