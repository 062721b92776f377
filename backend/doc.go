// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package backend provides one shader compiler facade per graphics API.
//
// Every facade has the same contract: Compile takes a target and a WGSL
// source, runs the whole pipeline (preprocess, compile, emit, reflect and,
// for GLES, cross-compile) and installs the result on the target only when
// every step succeeded. A failed compile leaves the target's previous
// result in place and returns a *diag.Error with every diagnostic.
//
//	env := frontend.MustEnvironment(frontend.Options{})
//	c := backend.NewVulkan(env, backend.Options{})
//	p := backend.NewPipeline("lit", reflection.PipelineGraphics)
//	if err := c.Compile(p, source); err != nil {
//		for _, msg := range diag.Messages(err) {
//			log.Println(msg)
//		}
//	}
//	code := p.Compiled().Source.Vertex
//
// Definitions apply in a fixed order: the backend's own macros, then
// [Options.Macros], then the pipeline's, then a material's, then the render
// pass's. Later definitions win.
package backend
