// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package crosscompile turns per-stage SPIR-V into GLSL ES 3.00 for
// runtimes that bind every resource into a single descriptor set.
//
// The SPIR-V of a stage is parsed and its image and sampler bindings are
// flattened: binding b of set s becomes binding s*16+b of the only set.
// The stage is then written as GLSL ES from the IR module it was generated
// from, using the same flattened bindings. Uniform and storage blocks are
// flattened with the same rule in the block binding namespace. GLSL ES
// 3.00 cannot declare texture bindings, so the returned [Remap] is how a
// GL runtime learns which unit each texture and sampler uses.
//
//	code, remap, err := crosscompile.FlattenAndTranspile(spv, module, "fs_main")
//
// Malformed SPIR-V is reported as an error wrapping [ErrMalformed].
package crosscompile
