// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package session

import (
	"fmt"
	"strconv"
	"strings"
)

// Format is the kind of code a session produces.
type Format uint8

const (
	// FormatSPIRV is portable SPIR-V bytecode.
	FormatSPIRV Format = iota

	// FormatGLSL is GLSL source text.
	FormatGLSL

	// FormatHLSL is HLSL source text.
	FormatHLSL

	// FormatMSL is Metal Shading Language source text.
	FormatMSL
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatSPIRV:
		return "spirv"
	case FormatGLSL:
		return "glsl"
	case FormatHLSL:
		return "hlsl"
	case FormatMSL:
		return "msl"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// IsText reports whether f is a text format.
func (f Format) IsText() bool {
	return f != FormatSPIRV
}

// Profile is a minimum capability profile: a format plus a version.
type Profile struct {
	Format Format
	Major  uint8
	Minor  uint8

	// ES selects the embedded GLSL flavor.
	ES bool
}

// Profiles used by the backend presets.
var (
	ProfileSPIRV1_0  = Profile{Format: FormatSPIRV, Major: 1, Minor: 0}
	ProfileSPIRV1_3  = Profile{Format: FormatSPIRV, Major: 1, Minor: 3}
	ProfileGLSL330   = Profile{Format: FormatGLSL, Major: 3, Minor: 30}
	ProfileGLSLES300 = Profile{Format: FormatGLSL, Major: 3, Minor: 0, ES: true}
	ProfileMSL2_1    = Profile{Format: FormatMSL, Major: 2, Minor: 1}
	ProfileSM5_1     = Profile{Format: FormatHLSL, Major: 5, Minor: 1}
)

// IsZero reports whether p is unset.
func (p Profile) IsZero() bool {
	return p == Profile{}
}

// String returns the profile string, for example "spirv_1_3", "glsl_330",
// "glsl_300_es", "metal_2_1" or "sm_5_1".
func (p Profile) String() string {
	switch p.Format {
	case FormatSPIRV:
		return fmt.Sprintf("spirv_%d_%d", p.Major, p.Minor)
	case FormatGLSL:
		s := fmt.Sprintf("glsl_%d", glslNumber(p.Major, p.Minor))
		if p.ES {
			s += "_es"
		}
		return s
	case FormatHLSL:
		return fmt.Sprintf("sm_%d_%d", p.Major, p.Minor)
	case FormatMSL:
		return fmt.Sprintf("metal_%d_%d", p.Major, p.Minor)
	default:
		return "unknown"
	}
}

// glslNumber returns the #version number: 3.30 is 330, ES 3.0 is 300.
func glslNumber(major, minor uint8) int {
	if minor < 10 {
		return int(major)*100 + int(minor)*10
	}
	return int(major)*100 + int(minor)
}

// ParseProfile parses a profile string produced by [Profile.String].
func ParseProfile(s string) (Profile, error) {
	bad := func() (Profile, error) {
		return Profile{}, fmt.Errorf("session: invalid profile %q", s)
	}
	prefix, rest, ok := strings.Cut(s, "_")
	if !ok {
		return bad()
	}
	if prefix == "glsl" {
		es := strings.HasSuffix(rest, "_es")
		rest = strings.TrimSuffix(rest, "_es")
		n, err := strconv.Atoi(rest)
		if err != nil || n < 100 {
			return bad()
		}
		return Profile{Format: FormatGLSL, Major: uint8(n / 100), Minor: uint8(n % 100), ES: es}, nil
	}

	var f Format
	switch prefix {
	case "spirv":
		f = FormatSPIRV
	case "sm":
		f = FormatHLSL
	case "metal":
		f = FormatMSL
	default:
		return bad()
	}
	majText, minText, ok := strings.Cut(rest, "_")
	if !ok {
		return bad()
	}
	major, err := strconv.ParseUint(majText, 10, 8)
	if err != nil {
		return bad()
	}
	minor, err := strconv.ParseUint(minText, 10, 8)
	if err != nil {
		return bad()
	}
	return Profile{Format: f, Major: uint8(major), Minor: uint8(minor)}, nil
}
