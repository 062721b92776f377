// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package param

import "fmt"

// Type is the canonical type of a shader parameter.
type Type uint8

const (
	Undefined Type = iota

	Bool
	Int
	UInt
	Float
	Bool2
	Bool3
	Bool4
	Int2
	Int3
	Int4
	UInt2
	UInt3
	UInt4
	Float2
	Float3
	Float4
	Float3x3
	Float4x4

	Sampler
	Texture2D
	RWTexture2D
	CombinedImageSampler
	MemoryBlock
	Globals

	// Role types are only ever selected by an explicit role hint.
	LocalToWorld
	SurfaceMaterial
	CombinedSurface

	StorageBuffer
	RWStorageBuffer
	Texture3D
	TextureCube
)

var typeNames = [...]string{
	Undefined:            "undefined",
	Bool:                 "bool",
	Int:                  "int",
	UInt:                 "uint",
	Float:                "float",
	Bool2:                "bool2",
	Bool3:                "bool3",
	Bool4:                "bool4",
	Int2:                 "int2",
	Int3:                 "int3",
	Int4:                 "int4",
	UInt2:                "uint2",
	UInt3:                "uint3",
	UInt4:                "uint4",
	Float2:               "float2",
	Float3:               "float3",
	Float4:               "float4",
	Float3x3:             "float3x3",
	Float4x4:             "float4x4",
	Sampler:              "sampler",
	Texture2D:            "texture2d",
	RWTexture2D:          "rw_texture2d",
	CombinedImageSampler: "combined_image_sampler",
	MemoryBlock:          "memory_block",
	Globals:              "globals",
	LocalToWorld:         "local_to_world",
	SurfaceMaterial:      "surface_material",
	CombinedSurface:      "combined_surface",
	StorageBuffer:        "storage_buffer",
	RWStorageBuffer:      "rw_storage_buffer",
	Texture3D:            "texture3d",
	TextureCube:          "texture_cube",
}

// String returns the type name.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// IsResource reports whether t occupies a binding slot rather than bytes in
// a constant buffer.
func (t Type) IsResource() bool {
	switch t {
	case Sampler, Texture2D, RWTexture2D, CombinedImageSampler, Globals,
		StorageBuffer, RWStorageBuffer, Texture3D, TextureCube:
		return true
	}
	return false
}

// IsValue reports whether t is a scalar, vector or matrix type.
func (t Type) IsValue() bool {
	return t >= Bool && t <= Float4x4
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseType returns the type with the given name.
func ParseType(name string) (Type, bool) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), true
		}
	}
	return Undefined, false
}

// Role tags understood by the classifier. Role hints are matched exactly.
const (
	RoleLocalToWorld    = "local_to_world"
	RoleGlobals         = "globals"
	RoleSurfaceMaterial = "surface_material"
	RoleCombinedSurface = "combined_surface"

	RoleTexture2D       = "texture2d"
	RoleRWTexture2D     = "rw_texture2d"
	RoleCombinedSampler = "combined_sampler"
)

// RoleType returns the special type named by a role hint.
func RoleType(role string) (Type, bool) {
	switch role {
	case RoleLocalToWorld:
		return LocalToWorld, true
	case RoleGlobals:
		return Globals, true
	case RoleSurfaceMaterial:
		return SurfaceMaterial, true
	case RoleCombinedSurface:
		return CombinedSurface, true
	}
	return Undefined, false
}

// ResourceRoleType returns the texture sub-type named by a role hint.
func ResourceRoleType(role string) (Type, bool) {
	switch role {
	case RoleTexture2D:
		return Texture2D, true
	case RoleRWTexture2D:
		return RWTexture2D, true
	case RoleCombinedSampler:
		return CombinedImageSampler, true
	}
	return Undefined, false
}
