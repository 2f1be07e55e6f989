// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render runs one effect over one image.
//
// A Renderer scales the source onto an off-screen Target, loads the
// effect's compiled program from a shader.ProgramCache and has a Device
// execute it with the bound uniforms. The input image is never modified.
//
// # Degradation
//
// Render always returns an image. When the program fails to compile, the
// target cannot be allocated, or the device rejects the draw, Render returns
// the source image unchanged together with an *Error describing the
// failure, so an effect that cannot run simply has no visual impact.
//
// # Devices
//
// The renderer receives a Device, it does not create one. SoftwareDevice
// executes every catalog shader and generator on the CPU across a worker
// pool, matching the WGSL programs sample for sample.
//
//	programs := shader.NewProgramCache()
//	dev := render.NewSoftwareDevice(0)
//	defer dev.Close()
//
//	r := render.NewRenderer(programs, dev)
//	desc, _ := catalog.Default().Get("pixelate")
//	u := uniform.Bind(desc, nil, ms2.Vec{})
//	out, err := r.Render(img, desc, u, 1)
//
// # Thread Safety
//
// A Renderer may be used from multiple goroutines as long as its Device is
// safe for concurrent use. SoftwareDevice is.
package render
