// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"

	"cogentcore.org/core/base/errors"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/shaderkit/backend"
	"github.com/gogpu/shaderkit/config"
	"github.com/gogpu/shaderkit/crosscompile"
	"github.com/gogpu/shaderkit/diag"
	"github.com/gogpu/shaderkit/frontend"
	"github.com/gogpu/shaderkit/reflection"
	"github.com/gogpu/shaderkit/session"
)

// job is one input file with its merged configuration.
type job struct {
	input        string
	cfg          config.Config
	dumpBindings bool
}

// builder compiles a job for every configured backend. Each backend keeps
// a pipeline across rebuilds, so a failed rebuild leaves the previous
// outputs in place.
type builder struct {
	env       *frontend.Environment
	job       *job
	kind      reflection.PipelineKind
	backends  []session.Backend
	pipelines map[session.Backend]*backend.Pipeline

	mu  sync.Mutex // guards out
	out io.Writer
}

func newBuilder(env *frontend.Environment, j *job, out io.Writer) *builder {
	kind := errors.Log1(j.cfg.PipelineKind())
	list := errors.Log1(j.cfg.BackendList())
	b := &builder{
		env:       env,
		job:       j,
		kind:      kind,
		backends:  list,
		pipelines: make(map[session.Backend]*backend.Pipeline, len(list)),
		out:       out,
	}
	name := baseName(j.input)
	for _, be := range list {
		b.pipelines[be] = backend.NewPipeline(name, kind)
	}
	return b
}

// build compiles every backend concurrently and reports whether all of
// them succeeded.
func (b *builder) build() bool {
	source, err := os.ReadFile(b.job.input)
	if errors.Log(err) != nil {
		return false
	}
	if errors.Log(os.MkdirAll(b.job.cfg.OutputDir, 0o755)) != nil {
		return false
	}

	opts := backend.Options{
		SearchPaths: append([]string{filepath.Dir(b.job.input)}, b.job.cfg.SearchPaths...),
		Macros:      b.job.cfg.Defines,
	}
	var g errgroup.Group
	for _, be := range b.backends {
		g.Go(func() error {
			p := b.pipelines[be]
			if err := backend.New(be, b.env, opts).Compile(p, string(source)); err != nil {
				b.report(be, err)
				return err
			}
			return errors.Log(b.write(be, p.Compiled()))
		})
	}
	return g.Wait() == nil
}

// report prints every diagnostic of a failed compile.
func (b *builder) report(be session.Backend, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, msg := range diag.Messages(err) {
		fmt.Fprintf(b.out, "%s: %s: %s\n", b.job.input, be, msg)
	}
}

// write stores the code of every stage and, when configured, the
// reflection of c.
func (b *builder) write(be session.Backend, c *backend.Compiled) error {
	prefix := filepath.Join(b.job.cfg.OutputDir, baseName(b.job.input)+"."+be.String())
	for _, s := range c.Source.Stages() {
		path := fmt.Sprintf("%s.%s.%s", prefix, s, extension(c.Profile.Format))
		if err := os.WriteFile(path, c.Source.Stage(s), 0o644); err != nil {
			return err
		}
	}
	if b.job.cfg.ReflectionFormat == config.ReflectionYAML {
		data, err := c.YAML()
		if err != nil {
			return err
		}
		if err := os.WriteFile(prefix+".reflect.yaml", data, 0o644); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	for _, msg := range c.Warnings {
		fmt.Fprintf(&buf, "%s: %s: %s\n", b.job.input, be, msg)
	}
	if b.job.dumpBindings && c.Profile.Format == session.FormatSPIRV {
		for _, s := range c.Source.Stages() {
			m, err := crosscompile.Parse(c.Source.Stage(s))
			if err != nil {
				return err
			}
			fmt.Fprintf(&buf, "; %s %s\n", be, s)
			if err := crosscompile.Dump(&buf, m); err != nil {
				return err
			}
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := b.out.Write(buf.Bytes())
	return err
}

// watch builds once, then rebuilds whenever a WGSL file in the input's
// directory or a search path changes. It returns when the process is
// interrupted.
func (b *builder) watch() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	dirs := append([]string{filepath.Dir(b.job.input)}, b.job.cfg.SearchPaths...)
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	return b.watchLoop(ctx, watcher.Events, watcher.Errors)
}

func (b *builder) watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	b.build()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if filepath.Ext(event.Name) != ".wgsl" {
				continue
			}
			slog.Info("shader changed, rebuilding", slog.String("file", event.Name))
			if b.build() {
				slog.Info("rebuild succeeded", slog.String("input", b.job.input))
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			errors.Log(fmt.Errorf("file watcher: %w", err))
		}
	}
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func extension(f session.Format) string {
	switch f {
	case session.FormatSPIRV:
		return "spv"
	case session.FormatGLSL:
		return "glsl"
	case session.FormatHLSL:
		return "hlsl"
	case session.FormatMSL:
		return "metal"
	}
	return "bin"
}
