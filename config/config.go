// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package config loads shader build configuration from TOML files.
//
// A configuration names the backends to build for, the pipeline kind, the
// include search paths and the definitions every compile starts with:
//
//	debug = true
//	backends = ["vulkan", "gles"]
//	pipeline = "graphics"
//	search_paths = ["shaders/include"]
//	output_dir = "build/shaders"
//	reflection_format = "yaml"
//
//	[[define]]
//	name = "MAX_LIGHTS"
//	value = "8"
//
// Unknown keys are rejected.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/shaderkit/reflection"
	"github.com/gogpu/shaderkit/session"
)

// Reflection output formats.
const (
	ReflectionNone = "none"
	ReflectionYAML = "yaml"
)

// Config is a shader build configuration.
type Config struct {
	Debug            bool            `toml:"debug"`
	SearchPaths      []string        `toml:"search_paths"`
	Backends         []string        `toml:"backends"`
	Pipeline         string          `toml:"pipeline"`
	Defines          []session.Macro `toml:"define"`
	OutputDir        string          `toml:"output_dir"`
	ReflectionFormat string          `toml:"reflection_format"`
}

// Default returns the configuration used when no file is given: a release
// build of a graphics pipeline for Vulkan, written to the current
// directory without reflection.
func Default() Config {
	return Config{
		Backends:         []string{session.Vulkan.String()},
		Pipeline:         reflection.PipelineGraphics.String(),
		OutputDir:        ".",
		ReflectionFormat: ReflectionNone,
	}
}

// Load reads the configuration file at path. Fields the file omits keep
// their defaults. Relative search paths and output directory are resolved
// against the directory of path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i, p := range c.SearchPaths {
		c.SearchPaths[i] = resolve(dir, p)
	}
	c.OutputDir = resolve(dir, c.OutputDir)
	return c, nil
}

// Decode reads a configuration from r and validates it.
func Decode(r io.Reader) (Config, error) {
	c := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks every enumerated field.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.BackendList(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.PipelineKind(); err != nil {
		errs = append(errs, err)
	}
	switch c.ReflectionFormat {
	case "", ReflectionNone, ReflectionYAML:
	default:
		errs = append(errs, fmt.Errorf("unknown reflection format %q", c.ReflectionFormat))
	}
	for _, m := range c.Defines {
		if m.Name == "" {
			errs = append(errs, errors.New("define without a name"))
		}
	}
	return errors.Join(errs...)
}

// BackendList parses the configured backends.
func (c Config) BackendList() ([]session.Backend, error) {
	if len(c.Backends) == 0 {
		return nil, errors.New("no backends configured")
	}
	out := make([]session.Backend, 0, len(c.Backends))
	for _, name := range c.Backends {
		b, err := session.ParseBackend(name)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// PipelineKind parses the configured pipeline kind. Empty means graphics.
func (c Config) PipelineKind() (reflection.PipelineKind, error) {
	switch c.Pipeline {
	case "", "graphics":
		return reflection.PipelineGraphics, nil
	case "compute":
		return reflection.PipelineCompute, nil
	}
	return 0, fmt.Errorf("unknown pipeline kind %q", c.Pipeline)
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
