// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"bytes"
	"errors"
	"image/color"
	"slices"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/soypat/geometry/ms2"

	"github.com/gogpu/fx/catalog"
	"github.com/gogpu/fx/internal/kernel"
	"github.com/gogpu/fx/shader"
	"github.com/gogpu/fx/uniform"
)

// createNoopDevice opens the HAL noop backend, which records nothing and
// needs no GPU.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()

	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		t.Fatal("no noop adapters")
	}
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		open.Device.Destroy()
		instance.Destroy()
	})
	return open.Device, open.Queue
}

// recordingDevice captures what a draw hands to the HAL.
type recordingDevice struct {
	hal.Device
	modules [][]uint32
	formats []gputypes.TextureFormat
	staging hal.Buffer
	size    uint64
}

func (d *recordingDevice) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	d.modules = append(d.modules, slices.Clone(desc.Source.SPIRV))
	return d.Device.CreateShaderModule(desc)
}

func (d *recordingDevice) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	for _, t := range desc.Fragment.Targets {
		d.formats = append(d.formats, t.Format)
	}
	return d.Device.CreateRenderPipeline(desc)
}

func (d *recordingDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	b, err := d.Device.CreateBuffer(desc)
	if err == nil && desc.Usage&gputypes.BufferUsageMapRead != 0 {
		d.staging, d.size = b, desc.Size
	}
	return b, err
}

// recordingQueue captures uniform uploads and, standing in for the GPU,
// fills the readback buffer on submit.
type recordingQueue struct {
	hal.Queue
	dev    *recordingDevice
	writes [][]byte
	fill   func(size uint64) []byte
}

func (q *recordingQueue) WriteBuffer(b hal.Buffer, offset uint64, data []byte) error {
	q.writes = append(q.writes, slices.Clone(data))
	return q.Queue.WriteBuffer(b, offset, data)
}

func (q *recordingQueue) Submit(cmds []hal.CommandBuffer) (uint64, error) {
	idx, err := q.Queue.Submit(cmds)
	if err == nil && q.fill != nil && q.dev.staging != nil {
		err = q.Queue.WriteBuffer(q.dev.staging, 0, q.fill(q.dev.size))
	}
	return idx, err
}

func loadProgram(t *testing.T, ref string) *shader.Program {
	t.Helper()
	prog, err := shader.NewProgramCache(shader.WithCompiler(&fakeCompiler{})).LoadRef(ref)
	if err != nil {
		t.Fatalf("LoadRef(%q): %v", ref, err)
	}
	return prog
}

func TestGPUDeviceDraw(t *testing.T) {
	device, queue := createNoopDevice(t)
	rd := &recordingDevice{Device: device}
	const w, h = 3, 2
	rq := &recordingQueue{Queue: queue, dev: rd, fill: func(size uint64) []byte {
		b := make([]byte, size)
		for y := range h {
			for x := range w {
				i := y*copyRowAlignment + x*4
				copy(b[i:], []byte{uint8(x * 40), uint8(y * 90), 7, 255})
			}
		}
		return b
	}}
	g, err := NewGPUDevice(rd, rq)
	if err != nil {
		t.Fatal(err)
	}

	d, u := effect(t, "sepia", nil)
	prog := loadProgram(t, d.ShaderRef)
	src := targetFrom(kernel.FromImage(checker(w, h)))
	dst, _ := NewTarget(w, h, 0)

	if err := g.Draw(dst, src, prog, u); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(rd.modules) != 1 || !slices.Equal(rd.modules[0], prog.SPIRV()) {
		t.Errorf("shader modules = %v, want program SPIR-V %v", rd.modules, prog.SPIRV())
	}
	if len(rd.formats) != 1 || rd.formats[0] != dst.Format() {
		t.Errorf("pipeline formats = %v, want %v", rd.formats, dst.Format())
	}
	if len(rq.writes) != 1 || !bytes.HasPrefix(rq.writes[0], u.Bytes()) || len(rq.writes[0])%16 != 0 {
		t.Errorf("uniform upload = %v, want padded %v", rq.writes, u.Bytes())
	}
	if rd.size != copyRowAlignment*h {
		t.Errorf("readback size = %d, want %d", rd.size, copyRowAlignment*h)
	}

	img := dst.Image()
	for y := range h {
		for x := range w {
			want := color.NRGBA{R: uint8(x * 40), G: uint8(y * 90), B: 7, A: 255}
			if got := img.NRGBAAt(x, y); got != want {
				t.Errorf("(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestGPUDeviceRejects(t *testing.T) {
	device, queue := createNoopDevice(t)
	g, err := NewGPUDevice(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := NewTarget(2, 2, 0)
	b, _ := NewTarget(3, 2, 0)
	prog := loadProgram(t, catalog.ShaderColorMatrix)

	if err := g.Draw(a, a, nil, uniform.Set{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("nil program: err = %v", err)
	}
	if err := g.Draw(a, a, &shader.Program{}, uniform.Set{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("empty program: err = %v", err)
	}
	if err := g.Draw(a, b, prog, uniform.Set{}); err == nil {
		t.Error("mismatched targets accepted")
	}
	if err := g.Draw(a, a, prog, uniform.Set{}); err == nil {
		t.Error("aliased targets accepted")
	}
	if err := g.Generate(a, b, catalog.GeneratorClouds, uniform.Set{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("generator without fallback: err = %v", err)
	}
	if _, err := NewGPUDevice(nil, queue); err == nil {
		t.Error("nil device accepted")
	}
}

func TestGPUDeviceFallback(t *testing.T) {
	device, queue := createNoopDevice(t)
	sw := NewSoftwareDevice(1)
	defer sw.Close()
	g, err := NewGPUDevice(device, queue, WithFallback(sw), WithDeviceName("noop"))
	if err != nil {
		t.Fatal(err)
	}
	if g.Name() != "noop" {
		t.Errorf("Name = %q", g.Name())
	}

	d, u := effect(t, "clouds", nil)
	src := targetFrom(kernel.FromImage(checker(4, 4)))
	dst, _ := NewTarget(4, 4, 0)
	if err := g.Generate(dst, src, d.Generator, u.WithResolution(ms2.Vec{X: 4, Y: 4})); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if slices.Equal(dst.Pixels(), make([]float32, len(dst.Pixels()))) {
		t.Error("fallback generator left the target empty")
	}
}

type fakeProvider struct {
	device, queue any
}

func (p fakeProvider) Device() gpucontext.Device             { return p.device }
func (p fakeProvider) Queue() gpucontext.Queue               { return p.queue }
func (p fakeProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }
func (p fakeProvider) Adapter() gpucontext.Adapter           { return nil }
func (p fakeProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "Noop", Type: gpucontext.AdapterTypeSoftware}
}

type halHandles struct {
	device hal.Device
	queue  hal.Queue
}

func (h halHandles) HalDevice() any { return h.device }
func (h halHandles) HalQueue() any  { return h.queue }

func TestGPUDeviceFromProvider(t *testing.T) {
	device, queue := createNoopDevice(t)

	g, err := NewGPUDeviceFromProvider(fakeProvider{device: device, queue: queue})
	if err != nil {
		t.Fatalf("direct handles: %v", err)
	}
	if g.Name() != "gpu:Noop" {
		t.Errorf("Name = %q", g.Name())
	}

	h := halHandles{device: device, queue: queue}
	if _, err := NewGPUDeviceFromProvider(fakeProvider{device: h, queue: h}); err != nil {
		t.Errorf("accessor handles: %v", err)
	}
	if _, err := NewGPUDeviceFromProvider(fakeProvider{device: "cpu", queue: queue}); err == nil {
		t.Error("non-HAL device accepted")
	}
	if _, err := NewGPUDeviceFromProvider(nil); err == nil {
		t.Error("nil provider accepted")
	}
}

func TestRenderOnGPUDevice(t *testing.T) {
	device, queue := createNoopDevice(t)
	g, err := NewGPUDevice(device, queue)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRenderer(shader.NewProgramCache(shader.WithCompiler(&fakeCompiler{})), g)

	d, u := effect(t, "invert", nil)
	src := checker(5, 3)
	out, err := r.Render(src, d, u, 1)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out.Bounds() != src.Bounds() {
		t.Errorf("bounds = %v", out.Bounds())
	}
	// The noop backend draws nothing, so the readback is transparent.
	if got := color.NRGBAModel.Convert(out.At(2, 1)).(color.NRGBA); got != (color.NRGBA{}) {
		t.Errorf("noop pixel = %v", got)
	}
}
