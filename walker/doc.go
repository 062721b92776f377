// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package walker turns the reflection graph of a linked program into the
// engine's binding contract: a [param.Table] of qualified parameters and
// the list of vertex attributes of the vertex stage.
//
// Parameter extraction descends from the program's global root. Every
// visited variable gets a trace entry linked to its parent; offsets are
// recovered by summing along that chain. Uniform offsets are relative to
// the nearest enclosing constant buffer, so a uniform trace stops there.
// Descriptor slots and register spaces are traced to the root.
//
// A struct tagged with the block role "memory" is reflected as a single
// MemoryBlock parameter; the values inside it are not reflected on their
// own, while nested resources and samplers still are.
//
// A constant buffer whose element is the FrameGlobals struct of exactly
// [param.FrameGlobalsSize] bytes becomes one Globals parameter.
package walker
