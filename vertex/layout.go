// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vertex

import (
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
)

// ResolveOffsets returns a copy of attrs with every OffsetAuto replaced by
// the end of the preceding attribute in the same stream, taken in location
// order. The input order is preserved.
func ResolveOffsets(attrs []Attribute) []Attribute {
	out := slices.Clone(attrs)
	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		if out[a].Stream != out[b].Stream {
			return int(out[a].Stream) - int(out[b].Stream)
		}
		return int(out[a].Location) - int(out[b].Location)
	})

	cursor := make(map[uint32]uint32)
	for _, i := range order {
		a := &out[i]
		if a.Offset == OffsetAuto {
			a.Offset = cursor[a.Stream]
		}
		cursor[a.Stream] = max(cursor[a.Stream], a.Offset+a.Element.Size())
	}
	return out
}

// BufferLayouts groups attrs into one vertex buffer layout per stream. The
// result is indexed by stream; unused streams in between get an empty
// layout. A stream steps per instance when any of its attributes does.
func BufferLayouts(attrs []Attribute) ([]gputypes.VertexBufferLayout, error) {
	if len(attrs) == 0 {
		return nil, nil
	}
	for _, a := range attrs {
		if a.Stream >= MaxStreams {
			return nil, fmt.Errorf("vertex: %s: stream %d exceeds %d", a.Name, a.Stream, MaxStreams-1)
		}
		if a.Offset != OffsetAuto && a.Offset > MaxOffset {
			return nil, fmt.Errorf("vertex: %s: offset %d exceeds %d", a.Name, a.Offset, MaxOffset)
		}
	}
	resolved := ResolveOffsets(attrs)

	var streams uint32
	for _, a := range resolved {
		streams = max(streams, a.Stream+1)
	}
	layouts := make([]gputypes.VertexBufferLayout, streams)
	for i := range layouts {
		layouts[i].StepMode = gputypes.VertexStepModeVertex
	}

	slices.SortStableFunc(resolved, func(a, b Attribute) int {
		return int(a.Location) - int(b.Location)
	})
	for _, a := range resolved {
		format, ok := a.Element.Format()
		if !ok {
			return nil, fmt.Errorf("vertex: %s: element type %s has no vertex format", a.Name, a.Element)
		}
		l := &layouts[a.Stream]
		l.Attributes = append(l.Attributes, gputypes.VertexAttribute{
			Format:         format,
			Offset:         uint64(a.Offset),
			ShaderLocation: a.Location,
		})
		l.ArrayStride = max(l.ArrayStride, uint64(a.Offset+a.Element.Size()))
		if a.Rate == PerInstance {
			l.StepMode = gputypes.VertexStepModeInstance
		}
	}
	return layouts, nil
}

// StepMode returns the vertex step mode for r.
func (r InputRate) StepMode() gputypes.VertexStepMode {
	if r == PerInstance {
		return gputypes.VertexStepModeInstance
	}
	return gputypes.VertexStepModeVertex
}
