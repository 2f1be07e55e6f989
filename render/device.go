// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/gogpu/fx/internal/kernel"
	"github.com/gogpu/fx/internal/parallel"
	"github.com/gogpu/fx/shader"
	"github.com/gogpu/fx/uniform"
)

// ErrUnsupported is returned by a Device asked to run a program or
// generator it does not implement.
var ErrUnsupported = errors.New("render: unsupported by device")

// Device executes effect programs. dst and src always have the same size
// and are distinct targets.
type Device interface {
	// Name identifies the device in logs.
	Name() string

	// Draw runs prog over src into dst.
	Draw(dst, src *Target, prog *shader.Program, u uniform.Set) error

	// Generate runs a built-in procedural generator over src into dst.
	Generate(dst, src *Target, generator string, u uniform.Set) error
}

// SoftwareDevice executes programs on the CPU.
//
// Each compiled program is dispatched by its source ref to the equivalent
// kernel; structural values reach the kernel through the uniform set, so a
// specialized program and its kernel agree. Rows are spread over a worker
// pool. SoftwareDevice is safe for concurrent use.
type SoftwareDevice struct {
	pool *parallel.WorkerPool
}

// NewSoftwareDevice creates a device with the given number of workers.
// workers <= 0 uses GOMAXPROCS.
func NewSoftwareDevice(workers int) *SoftwareDevice {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &SoftwareDevice{pool: parallel.NewWorkerPool(workers)}
}

// Name returns "software".
func (d *SoftwareDevice) Name() string { return "software" }

// Workers returns the size of the worker pool.
func (d *SoftwareDevice) Workers() int { return d.pool.Workers() }

// Draw runs the kernel matching prog's source.
func (d *SoftwareDevice) Draw(dst, src *Target, prog *shader.Program, u uniform.Set) error {
	if prog == nil {
		return fmt.Errorf("%w: nil program", ErrUnsupported)
	}
	fn, ok := kernel.Shader(prog.Ref())
	if !ok {
		return fmt.Errorf("%w: shader %q", ErrUnsupported, prog.Ref())
	}
	return d.run(fn, dst, src, u)
}

// Generate runs the named generator kernel.
func (d *SoftwareDevice) Generate(dst, src *Target, generator string, u uniform.Set) error {
	fn, ok := kernel.Generator(generator)
	if !ok {
		return fmt.Errorf("%w: generator %q", ErrUnsupported, generator)
	}
	return d.run(fn, dst, src, u)
}

func (d *SoftwareDevice) run(fn kernel.Func, dst, src *Target, u uniform.Set) error {
	if err := checkPair(dst, src); err != nil {
		return err
	}
	fn(dst.img, src.img, u, d.pool)
	return nil
}

func checkPair(dst, src *Target) error {
	if dst == nil || src == nil {
		return errors.New("render: nil target")
	}
	if dst.Width() != src.Width() || dst.Height() != src.Height() {
		return fmt.Errorf("render: target %dx%d does not match source %dx%d",
			dst.Width(), dst.Height(), src.Width(), src.Height())
	}
	if dst == src {
		return errors.New("render: target aliases source")
	}
	return nil
}

// Close stops the worker pool. Draws after Close run on the calling
// goroutine.
func (d *SoftwareDevice) Close() {
	d.pool.Close()
}
