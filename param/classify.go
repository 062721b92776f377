// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package param

import "github.com/gogpu/shaderkit/reflection"

// AttrRole is the attribute carrying a role hint.
const AttrRole = "role"

// Shape is the structural shape of a reflected value.
type Shape struct {
	Rows         uint32
	Columns      uint32
	ElementCount uint32
	Scalar       reflection.ScalarKind
}

// ShapeOf returns the shape of t.
func ShapeOf(t reflection.Type) Shape {
	return Shape{
		Rows:         t.Rows(),
		Columns:      t.Columns(),
		ElementCount: t.ElementCount(),
		Scalar:       t.Scalar(),
	}
}

// detector maps one exact shape to a type.
type detector struct {
	shape  Shape
	result Type
}

func (d detector) match(s Shape) (Type, bool) {
	if s == d.shape {
		return d.result, true
	}
	return Undefined, false
}

func vec(n uint32, s reflection.ScalarKind, t Type) detector {
	return detector{Shape{Rows: 1, Columns: n, Scalar: s}, t}
}

// detectors is evaluated in order; the first match wins.
var detectors = [...]detector{
	vec(1, reflection.ScalarBool, Bool),
	vec(1, reflection.ScalarInt32, Int),
	vec(1, reflection.ScalarUint32, UInt),
	vec(1, reflection.ScalarFloat32, Float),

	vec(2, reflection.ScalarBool, Bool2),
	vec(3, reflection.ScalarBool, Bool3),
	vec(4, reflection.ScalarBool, Bool4),
	vec(2, reflection.ScalarInt32, Int2),
	vec(3, reflection.ScalarInt32, Int3),
	vec(4, reflection.ScalarInt32, Int4),
	vec(2, reflection.ScalarUint32, UInt2),
	vec(3, reflection.ScalarUint32, UInt3),
	vec(4, reflection.ScalarUint32, UInt4),
	vec(2, reflection.ScalarFloat32, Float2),
	vec(3, reflection.ScalarFloat32, Float3),
	vec(4, reflection.ScalarFloat32, Float4),

	{Shape{Rows: 3, Columns: 3, Scalar: reflection.ScalarFloat32}, Float3x3},
	{Shape{Rows: 4, Columns: 4, Scalar: reflection.ScalarFloat32}, Float4x4},
}

// Classify returns the parameter type of a value with the given shape.
// A recognized role hint wins over structural inference. Shapes no detector
// accepts classify as MemoryBlock. Classify never returns Undefined.
func Classify(s Shape, hints reflection.Attributes) Type {
	if hints != nil {
		if role, ok := hints.String(AttrRole); ok {
			if t, ok := RoleType(role); ok {
				return t
			}
		}
	}
	for _, d := range detectors {
		if t, ok := d.match(s); ok {
			return t
		}
	}
	return MemoryBlock
}
