// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package vertex describes the varying inputs of a vertex entry point and
// derives vertex buffer layouts from them.
package vertex

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Semantic is the fixed role of a vertex input.
type Semantic uint8

const (
	SemanticPosition Semantic = iota
	SemanticTexCoord
	SemanticColor
	SemanticNormal
	SemanticTangent
	SemanticBinormal
	SemanticBlendWeight
	SemanticBlendIndices
)

var semanticNames = [...]string{
	SemanticPosition:     "POSITION",
	SemanticTexCoord:     "TEXCOORD",
	SemanticColor:        "COLOR",
	SemanticNormal:       "NORMAL",
	SemanticTangent:      "TANGENT",
	SemanticBinormal:     "BINORMAL",
	SemanticBlendWeight:  "BLENDWEIGHT",
	SemanticBlendIndices: "BLENDINDICES",
}

// String returns the canonical upper-case semantic name.
func (s Semantic) String() string {
	if int(s) < len(semanticNames) {
		return semanticNames[s]
	}
	return fmt.Sprintf("SEMANTIC(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Semantic) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AllowsVector reports whether inputs with this semantic may be
// vector-typed. Scalar inputs are accepted for every semantic.
func (s Semantic) AllowsVector() bool {
	switch s {
	case SemanticPosition, SemanticTexCoord, SemanticColor, SemanticNormal,
		SemanticTangent, SemanticBinormal, SemanticBlendWeight:
		return true
	}
	return false
}

// foldName case-folds a semantic name. A Caser keeps state, so each call
// gets its own.
func foldName(s string) string {
	return cases.Fold().String(s)
}

var semanticLookup = func() map[string]Semantic {
	m := make(map[string]Semantic, len(semanticNames)+1)
	for i, n := range semanticNames {
		m[foldName(n)] = Semantic(i)
	}
	m[foldName("BITANGENT")] = SemanticBinormal
	return m
}()

// ParseSemantic maps semantic text to a semantic and index. Matching is
// case-insensitive. Trailing decimal digits are the semantic index when the
// caller supplies none, so "TEXCOORD1" is (TexCoord, 1).
func ParseSemantic(text string) (Semantic, uint32, bool) {
	name := foldName(strings.TrimSpace(text))
	if s, ok := semanticLookup[name]; ok {
		return s, 0, true
	}
	end := len(name)
	for end > 0 && name[end-1] >= '0' && name[end-1] <= '9' {
		end--
	}
	if end == len(name) || end == 0 {
		return 0, 0, false
	}
	s, ok := semanticLookup[name[:end]]
	if !ok {
		return 0, 0, false
	}
	idx, err := strconv.ParseUint(name[end:], 10, 32)
	if err != nil {
		return 0, 0, false
	}
	return s, uint32(idx), true
}

// InputRate is the rate at which a vertex buffer advances.
type InputRate uint8

const (
	PerVertex InputRate = iota
	PerInstance
)

// String returns the rate name.
func (r InputRate) String() string {
	if r == PerInstance {
		return "per_instance"
	}
	return "per_vertex"
}

// MarshalText implements encoding.TextMarshaler.
func (r InputRate) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// OffsetAuto places an attribute directly after the previous attribute of
// its stream.
const OffsetAuto = ^uint32(0)

// Limits on author-supplied stream indices and byte offsets.
const (
	MaxStreams = 32
	MaxOffset  = 1<<16 - 1
)

// Attribute is one varying input of the vertex stage.
type Attribute struct {
	Semantic      Semantic    `yaml:"semantic"`
	SemanticIndex uint32      `yaml:"semantic_index"`
	Name          string      `yaml:"name"`
	Element       ElementType `yaml:"element"`
	Location      uint32      `yaml:"location"`
	Stream        uint32      `yaml:"stream"`
	Offset        uint32      `yaml:"offset"`
	Rate          InputRate   `yaml:"rate"`
}

// String returns a short description of the attribute.
func (a Attribute) String() string {
	off := "auto"
	if a.Offset != OffsetAuto {
		off = strconv.FormatUint(uint64(a.Offset), 10)
	}
	return fmt.Sprintf("%s%d %s @location(%d) stream %d offset %s %s",
		a.Semantic, a.SemanticIndex, a.Element, a.Location, a.Stream, off, a.Rate)
}
