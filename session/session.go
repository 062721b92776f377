// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package session builds per-backend compile descriptors.
//
// A [Descriptor] carries everything the frontend needs to know about one
// target: search paths, the ordered macro list, the output format and
// profile, and the optimization and debug toggles. Building a descriptor is
// pure; nothing here touches process state.
package session

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/gputypes"
)

// Backend identifies a graphics API the compiler targets.
type Backend uint8

const (
	// Vulkan consumes SPIR-V directly.
	Vulkan Backend = iota

	// OpenGL is desktop GL 3.3 core.
	OpenGL

	// GLES is OpenGL ES 3.0. It cannot address more than one descriptor
	// set, so its SPIR-V is flattened and transpiled.
	GLES

	// Metal consumes MSL.
	Metal

	// D3D12 consumes HLSL.
	D3D12
)

// Backends lists every backend.
var Backends = []Backend{Vulkan, OpenGL, GLES, Metal, D3D12}

// String returns the backend name.
func (b Backend) String() string {
	switch b {
	case Vulkan:
		return "vulkan"
	case OpenGL:
		return "gl"
	case GLES:
		return "gles"
	case Metal:
		return "metal"
	case D3D12:
		return "d3d12"
	default:
		return fmt.Sprintf("backend(%d)", uint8(b))
	}
}

// ParseBackend returns the backend with the given name.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vulkan", "vk":
		return Vulkan, nil
	case "gl", "opengl":
		return OpenGL, nil
	case "gles", "es":
		return GLES, nil
	case "metal", "mtl":
		return Metal, nil
	case "d3d12", "dx12":
		return D3D12, nil
	}
	return 0, fmt.Errorf("session: unknown backend %q", name)
}

// API returns the gputypes backend the compiled code is meant for.
func (b Backend) API() gputypes.Backend {
	switch b {
	case Metal:
		return gputypes.BackendMetal
	case D3D12:
		return gputypes.BackendDX12
	case OpenGL, GLES:
		return gputypes.BackendGL
	default:
		return gputypes.BackendVulkan
	}
}

// macroName returns the TARGET_ macro name of b.
func (b Backend) macroName() string {
	return "TARGET_" + strings.ToUpper(b.String())
}

// Macro is a preprocessor definition.
type Macro struct {
	Name  string `toml:"name" yaml:"name"`
	Value string `toml:"value" yaml:"value"`
}

// String returns "NAME=VALUE", or "NAME" when the value is empty.
func (m Macro) String() string {
	if m.Value == "" {
		return m.Name
	}
	return m.Name + "=" + m.Value
}

// ParseMacro parses "NAME" or "NAME=VALUE".
func ParseMacro(s string) (Macro, error) {
	name, value, _ := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return Macro{}, fmt.Errorf("session: empty macro name in %q", s)
	}
	return Macro{Name: name, Value: strings.TrimSpace(value)}, nil
}

// Flags are backend-specific compile flags.
type Flags uint32

const (
	// FlagFlattenBindings collapses descriptor sets into one binding space
	// before transpiling.
	FlagFlattenBindings Flags = 1 << iota
)

// Has reports whether every flag in f2 is set.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// Descriptor configures one compile session.
type Descriptor struct {
	Backend Backend

	// SearchPaths are directories consulted by #include, in order.
	SearchPaths []string

	// Macros is the ordered macro list. Later definitions win.
	Macros []Macro

	// Format is the code format the frontend emits.
	Format Format

	// Profile is the profile of the emitted code.
	Profile Profile

	// Transpile is the profile the emitted code is cross-compiled to, if
	// any.
	Transpile Profile

	Optimize      bool
	EmitDebugInfo bool
	Flags         Flags
}

// ForBackend returns the preset descriptor of backend b. debug selects
// unoptimized code with debug info; release is the inverse.
func ForBackend(b Backend, debug bool) Descriptor {
	d := Descriptor{
		Backend:       b,
		Optimize:      !debug,
		EmitDebugInfo: debug,
		Macros:        []Macro{{Name: b.macroName(), Value: "1"}},
	}
	switch b {
	case Vulkan:
		d.Format = FormatSPIRV
		d.Profile = ProfileSPIRV1_3
	case OpenGL:
		d.Format = FormatGLSL
		d.Profile = ProfileGLSL330
		d.Macros = append(d.Macros, Macro{Name: "UV_INVERTED", Value: "1"})
	case GLES:
		d.Format = FormatSPIRV
		d.Profile = ProfileSPIRV1_0
		d.Transpile = ProfileGLSLES300
		d.Flags |= FlagFlattenBindings
	case Metal:
		d.Format = FormatMSL
		d.Profile = ProfileMSL2_1
	case D3D12:
		d.Format = FormatHLSL
		d.Profile = ProfileSM5_1
	}
	return d
}

// TargetProfile returns the profile of the final output.
func (d Descriptor) TargetProfile() Profile {
	if !d.Transpile.IsZero() {
		return d.Transpile
	}
	return d.Profile
}

// TargetFormat returns the format of the final output.
func (d Descriptor) TargetFormat() Format {
	return d.TargetProfile().Format
}

// WithMacros returns a copy of d with macros appended.
func (d Descriptor) WithMacros(macros ...Macro) Descriptor {
	d.Macros = append(slices.Clip(d.Macros), macros...)
	return d
}

// WithSearchPaths returns a copy of d with paths appended.
func (d Descriptor) WithSearchPaths(paths ...string) Descriptor {
	d.SearchPaths = append(slices.Clip(d.SearchPaths), paths...)
	return d
}
