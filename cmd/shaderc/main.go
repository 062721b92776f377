// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command shaderc compiles a WGSL shader for one or more graphics APIs and
// writes the per-stage code and, optionally, its reflection.
//
// Usage:
//
//	shaderc [options] <input.wgsl>
//
// Examples:
//
//	shaderc shader.wgsl                          # Vulkan SPIR-V next to the input
//	shaderc -backend vulkan,gles,metal shader.wgsl
//	shaderc -compute -o build particles.wgsl     # compute pipeline
//	shaderc -D MAX_LIGHTS=8 -I include shader.wgsl
//	shaderc -reflect -watch shader.wgsl          # rebuild on every change
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cogentcore.org/core/base/errors"

	"github.com/gogpu/shaderkit/config"
	"github.com/gogpu/shaderkit/frontend"
	"github.com/gogpu/shaderkit/session"
)

const shadercVersion = "0.1.0-dev"

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

var (
	backends     = flag.String("backend", "", "comma-separated backends: vulkan, gl, gles, metal, d3d12")
	compute      = flag.Bool("compute", false, "compile a compute pipeline")
	configPath   = flag.String("config", "", "TOML build configuration")
	output       = flag.String("o", "", "output directory (default: the configuration's, or .)")
	reflect      = flag.Bool("reflect", false, "write the reflection of every backend as YAML")
	dumpBindings = flag.Bool("dump-bindings", false, "print the interface of every SPIR-V stage")
	debug        = flag.Bool("debug", false, "emit unoptimized code with debug info")
	watch        = flag.Bool("watch", false, "recompile whenever the input or an include changes")
	verbose      = flag.Bool("v", false, "verbose logging")
	version      = flag.Bool("version", false, "print version")

	defines     listFlag
	searchPaths listFlag
)

func main() {
	flag.Var(&defines, "D", "define a macro as NAME or NAME=VALUE (repeatable)")
	flag.Var(&searchPaths, "I", "add an include search path (repeatable)")
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("shaderc version %s\n", shadercVersion)
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}

	job, err := newJob(args[0])
	if errors.Log(err) != nil {
		os.Exit(1)
	}
	env, err := frontend.NewEnvironment(frontend.Options{Logger: logger, Debug: job.cfg.Debug})
	if errors.Log(err) != nil {
		os.Exit(1)
	}
	b := newBuilder(env, job, os.Stdout)

	if *watch {
		if errors.Log(b.watch()) != nil {
			os.Exit(1)
		}
		return
	}
	if !b.build() {
		os.Exit(1)
	}
}

// newJob merges the configuration file with the command line.
func newJob(input string) (*job, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return nil, err
		}
	}
	if *backends != "" {
		cfg.Backends = strings.Split(*backends, ",")
	}
	if *compute {
		cfg.Pipeline = "compute"
	}
	if *output != "" {
		cfg.OutputDir = *output
	}
	if *reflect {
		cfg.ReflectionFormat = config.ReflectionYAML
	}
	cfg.Debug = cfg.Debug || *debug
	cfg.SearchPaths = append(cfg.SearchPaths, searchPaths...)
	for _, d := range defines {
		m, err := session.ParseMacro(d)
		if err != nil {
			return nil, err
		}
		cfg.Defines = append(cfg.Defines, m)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &job{input: input, cfg: cfg, dumpBindings: *dumpBindings}, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: shaderc [options] <input.wgsl>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  shaderc shader.wgsl                         Compile for Vulkan\n")
	fmt.Fprintf(os.Stderr, "  shaderc -backend vulkan,gles shader.wgsl    Compile for two backends\n")
	fmt.Fprintf(os.Stderr, "  shaderc -reflect -o build shader.wgsl       Write reflection YAML\n")
	fmt.Fprintf(os.Stderr, "  shaderc -watch shader.wgsl                  Recompile on change\n")
}
