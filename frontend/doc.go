// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package frontend compiles WGSL shader modules with naga and exposes the
// result as a linked [Program].
//
// An [Environment] is created once per process and passed to every compile.
// Each compile opens a [Context] for one session descriptor:
//
//	env := frontend.MustEnvironment(frontend.Options{Logger: logger})
//	ctx := env.NewContext(env.Descriptor(session.Vulkan))
//	defer ctx.Close()
//
//	var sink diag.List
//	prog, ok := ctx.CompileModule(source, reflection.PipelineGraphics, &sink)
//
// # Source conventions
//
// Sources pass through a line-oriented preprocessor before naga sees them.
// It understands #define, #undef, #ifdef, #ifndef, #if, #else, #endif and
// #include. Directive lines become empty lines, so line numbers in naga
// diagnostics match the original text. The built-in include
// "frame_globals.wgsl" declares the per-frame FrameGlobals block.
//
// Author attributes live in comments and attach to the next declaration:
//
//	//@block(memory)
//	struct Lighting { ... }
//
//	struct VertexInput {
//	    //@semantic(TEXCOORD, 1) @instanced
//	    @location(2) uv: vec2<f32>,
//	}
//
// Entry points are found by name: vs_main, tsc_main, ts_main, gs_main and
// fs_main for graphics pipelines, cs_main for compute pipelines.
package frontend
