// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package crosscompile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga/spirv"
)

const headerWords = 5

// ErrMalformed is wrapped by every error Parse returns.
var ErrMalformed = errors.New("crosscompile: malformed SPIR-V")

// Module is a decoded SPIR-V binary.
type Module struct {
	Version   spirv.Version
	Generator uint32
	Bound     uint32
	Schema    uint32

	Instructions []spirv.Instruction
}

// Parse decodes a little-endian SPIR-V binary. It validates the header and
// the word count of every instruction; it does not validate semantics.
func Parse(code []byte) (*Module, error) {
	if len(code)%4 != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of 4", ErrMalformed, len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	if len(words) < headerWords {
		return nil, fmt.Errorf("%w: %d words is shorter than the header", ErrMalformed, len(words))
	}

	switch words[0] {
	case spirv.MagicNumber:
	case swapEndian(spirv.MagicNumber):
		return nil, fmt.Errorf("%w: big-endian modules are not supported", ErrMalformed)
	default:
		return nil, fmt.Errorf("%w: invalid magic 0x%08X", ErrMalformed, words[0])
	}

	v := words[1]
	m := &Module{
		Version:   spirv.Version{Major: uint8(v >> 16), Minor: uint8(v >> 8)},
		Generator: words[2],
		Bound:     words[3],
		Schema:    words[4],
	}

	for off := headerWords; off < len(words); {
		count := int(words[off] >> 16)
		op := spirv.OpCode(words[off] & 0xFFFF)
		if count == 0 {
			return nil, fmt.Errorf("%w: zero word count at word %d", ErrMalformed, off)
		}
		if off+count > len(words) {
			return nil, fmt.Errorf("%w: instruction %d at word %d overruns the module (%d words)",
				ErrMalformed, op, off, count)
		}
		m.Instructions = append(m.Instructions, spirv.Instruction{
			Opcode: op,
			Words:  append([]uint32(nil), words[off+1:off+count]...),
		})
		off += count
	}
	return m, nil
}

// Bytes encodes m as a little-endian SPIR-V binary.
func (m *Module) Bytes() []byte {
	words := []uint32{
		spirv.MagicNumber,
		uint32(m.Version.Major)<<16 | uint32(m.Version.Minor)<<8,
		m.Generator,
		m.Bound,
		m.Schema,
	}
	for _, inst := range m.Instructions {
		words = append(words, inst.Encode()...)
	}
	out := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// Names returns the debug names of m by result id.
func (m *Module) Names() map[uint32]string {
	names := make(map[uint32]string)
	for _, inst := range m.Instructions {
		if inst.Opcode == spirv.OpName && len(inst.Words) >= 2 {
			names[inst.Words[0]] = decodeString(inst.Words[1:])
		}
	}
	return names
}

func swapEndian(w uint32) uint32 {
	return w>>24 | (w>>8)&0xFF00 | (w<<8)&0xFF0000 | w<<24
}

// decodeString decodes a nul-terminated literal string.
func decodeString(words []uint32) string {
	var sb strings.Builder
	for _, w := range words {
		for i := range 4 {
			b := byte(w >> (8 * i))
			if b == 0 {
				return sb.String()
			}
			sb.WriteByte(b)
		}
	}
	return sb.String()
}

// stringWords returns the number of words a literal string starting at
// words[0] occupies.
func stringWords(words []uint32) int {
	for i, w := range words {
		if w>>24 == 0 || w&0xFF == 0 || (w>>8)&0xFF == 0 || (w>>16)&0xFF == 0 {
			return i + 1
		}
	}
	return len(words)
}
