// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package emit collects the per-stage code of a linked program.
package emit

import (
	"github.com/gogpu/shaderkit/diag"
	"github.com/gogpu/shaderkit/frontend"
	"github.com/gogpu/shaderkit/reflection"
)

// ShaderSource holds the code of every pipeline stage. Stages a program
// does not use are empty.
type ShaderSource struct {
	Vertex      []byte
	TessControl []byte
	TessEval    []byte
	Geometry    []byte
	Fragment    []byte
	Compute     []byte
}

// Stage returns the code of stage s.
func (s *ShaderSource) Stage(stage reflection.Stage) []byte {
	if p := s.slot(stage); p != nil {
		return *p
	}
	return nil
}

// Set stores code as the code of stage s.
func (s *ShaderSource) Set(stage reflection.Stage, code []byte) {
	if p := s.slot(stage); p != nil {
		*p = code
	}
}

// Stages returns the stages that hold code, in pipeline order.
func (s *ShaderSource) Stages() []reflection.Stage {
	var out []reflection.Stage
	for st := range reflection.StageCount {
		if len(s.Stage(st)) > 0 {
			out = append(out, st)
		}
	}
	return out
}

// Clone returns a deep copy of s.
func (s *ShaderSource) Clone() *ShaderSource {
	c := &ShaderSource{}
	for st := range reflection.StageCount {
		if code := s.Stage(st); code != nil {
			c.Set(st, append([]byte(nil), code...))
		}
	}
	return c
}

func (s *ShaderSource) slot(stage reflection.Stage) *[]byte {
	switch stage {
	case reflection.StageVertex:
		return &s.Vertex
	case reflection.StageTessControl:
		return &s.TessControl
	case reflection.StageTessEval:
		return &s.TessEval
	case reflection.StageGeometry:
		return &s.Geometry
	case reflection.StageFragment:
		return &s.Fragment
	case reflection.StageCompute:
		return &s.Compute
	}
	return nil
}

// Emit retrieves the code of every entry point of program and the program
// layout. Any failure discards the whole result and is appended to sink.
func Emit(program *frontend.Program, sink *diag.List) (*ShaderSource, reflection.Program, bool) {
	src := &ShaderSource{}
	for i, ep := range program.EntryPoints() {
		code, err := program.EntryPointCode(i)
		if err != nil {
			sink.Errorf(diag.KindCodegen, "%s: %v", ep.Name, err)
			return nil, nil, false
		}
		if len(code) == 0 {
			sink.Errorf(diag.KindCodegen, "%s: empty code", ep.Name)
			return nil, nil, false
		}
		src.Set(ep.Stage, code)
	}

	layout, err := program.Layout()
	if err != nil {
		sink.Errorf(diag.KindCodegen, "program layout: %v", err)
		return nil, nil, false
	}
	return src, layout, true
}
