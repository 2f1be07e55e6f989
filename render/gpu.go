// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fx/shader"
	"github.com/gogpu/fx/uniform"
)

// copyRowAlignment is the row pitch alignment WebGPU requires for
// texture-to-buffer copies.
const copyRowAlignment = 256

// GPUDevice executes compiled programs on a wgpu HAL device.
//
// Each Draw uploads the source into a sampled texture, runs the program's
// fullscreen triangle into a texture of the target's format and reads the
// result back into the target. The program's uniform set is bound as the
// std140 buffer at @group(0) @binding(2).
//
// Procedural generators have no WGSL program; Generate runs them on the
// fallback device when one is configured.
type GPUDevice struct {
	mu       sync.Mutex
	device   hal.Device
	queue    hal.Queue
	name     string
	fallback Device
}

// GPUOption configures a GPUDevice.
type GPUOption func(*GPUDevice)

// WithFallback sets the device used for generators.
func WithFallback(d Device) GPUOption {
	return func(g *GPUDevice) {
		g.fallback = d
	}
}

// WithDeviceName overrides the name reported in logs.
func WithDeviceName(name string) GPUOption {
	return func(g *GPUDevice) {
		if name != "" {
			g.name = name
		}
	}
}

// NewGPUDevice wraps an open HAL device and its queue. The caller keeps
// ownership of both.
func NewGPUDevice(device hal.Device, queue hal.Queue, opts ...GPUOption) (*GPUDevice, error) {
	if device == nil || queue == nil {
		return nil, errors.New("render: nil HAL device or queue")
	}
	g := &GPUDevice{device: device, queue: queue, name: "gpu"}
	for _, o := range opts {
		o(g)
	}
	return g, nil
}

// NewGPUDeviceFromProvider uses the device shared by a host application.
// The provider's Device and Queue must be HAL objects, either directly or
// through HalDevice() any and HalQueue() any accessors.
func NewGPUDeviceFromProvider(p gpucontext.DeviceProvider, opts ...GPUOption) (*GPUDevice, error) {
	if p == nil {
		return nil, errors.New("render: nil device provider")
	}
	device, ok := halDevice(p.Device())
	if !ok {
		return nil, fmt.Errorf("render: provider device %T is not a HAL device", p.Device())
	}
	queue, ok := halQueue(p.Queue())
	if !ok {
		return nil, fmt.Errorf("render: provider queue %T is not a HAL queue", p.Queue())
	}
	name := "gpu"
	if info := p.AdapterInfo(); info.Name != "" {
		name = "gpu:" + info.Name
	}
	return NewGPUDevice(device, queue, append([]GPUOption{WithDeviceName(name)}, opts...)...)
}

func halDevice(v any) (hal.Device, bool) {
	switch d := v.(type) {
	case hal.Device:
		return d, true
	case interface{ HalDevice() any }:
		hd, ok := d.HalDevice().(hal.Device)
		return hd, ok
	}
	return nil, false
}

func halQueue(v any) (hal.Queue, bool) {
	switch q := v.(type) {
	case hal.Queue:
		return q, true
	case interface{ HalQueue() any }:
		hq, ok := q.HalQueue().(hal.Queue)
		return hq, ok
	}
	return nil, false
}

// Name returns the device name, "gpu" unless overridden.
func (g *GPUDevice) Name() string { return g.name }

// Draw runs prog's SPIR-V over src into dst.
func (g *GPUDevice) Draw(dst, src *Target, prog *shader.Program, u uniform.Set) error {
	if prog == nil || len(prog.SPIRV()) == 0 {
		return fmt.Errorf("%w: program without SPIR-V", ErrUnsupported)
	}
	if err := checkPair(dst, src); err != nil {
		return err
	}
	if f := dst.Format(); f != gputypes.TextureFormatRGBA8Unorm {
		return fmt.Errorf("%w: target format %v", ErrUnsupported, f)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	p := &gpuPass{
		device: g.device,
		queue:  g.queue,
		width:  uint32(dst.Width()),
		height: uint32(dst.Height()),
		format: dst.Format(),
	}
	defer p.release()

	if err := p.prepare(prog, src, u); err != nil {
		return fmt.Errorf("render: gpu program %q: %w", prog.Ref(), err)
	}
	pix, err := p.execute()
	if err != nil {
		return fmt.Errorf("render: gpu program %q: %w", prog.Ref(), err)
	}
	dst.setRows(pix, int(p.stride))
	return nil
}

// Generate runs the generator on the fallback device.
func (g *GPUDevice) Generate(dst, src *Target, generator string, u uniform.Set) error {
	if g.fallback == nil {
		return fmt.Errorf("%w: generator %q", ErrUnsupported, generator)
	}
	return g.fallback.Generate(dst, src, generator, u)
}

// gpuPass holds the resources of a single Draw.
type gpuPass struct {
	device hal.Device
	queue  hal.Queue
	width  uint32
	height uint32
	stride uint32
	format gputypes.TextureFormat

	pipeline hal.RenderPipeline
	group    hal.BindGroup
	target   hal.Texture
	view     hal.TextureView
	staging  hal.Buffer
	cleanup  []func()
}

func (p *gpuPass) onRelease(f func()) { p.cleanup = append(p.cleanup, f) }

func (p *gpuPass) release() {
	for i := len(p.cleanup) - 1; i >= 0; i-- {
		p.cleanup[i]()
	}
	p.cleanup = nil
}

func (p *gpuPass) extent() hal.Extent3D {
	return hal.Extent3D{Width: p.width, Height: p.height, DepthOrArrayLayers: 1}
}

func (p *gpuPass) texture(label string, usage gputypes.TextureUsage) (hal.Texture, hal.TextureView, error) {
	tex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          p.extent(),
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        p.format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s texture: %w", label, err)
	}
	p.onRelease(func() { p.device.DestroyTexture(tex) })

	view, err := p.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        p.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s view: %w", label, err)
	}
	p.onRelease(func() { p.device.DestroyTextureView(view) })
	return tex, view, nil
}

func (p *gpuPass) prepare(prog *shader.Program, src *Target, u uniform.Set) error {
	module, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  prog.Ref(),
		Source: hal.ShaderSource{SPIRV: prog.SPIRV()},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	p.onRelease(func() { p.device.DestroyShaderModule(module) })

	srcTex, srcView, err := p.texture("fx_source", gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return err
	}
	ext := p.extent()
	if err := p.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: srcTex, MipLevel: 0},
		src.Image().Pix,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: p.width * 4, RowsPerImage: p.height},
		&ext,
	); err != nil {
		return fmt.Errorf("upload source: %w", err)
	}

	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "fx_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}
	p.onRelease(func() { p.device.DestroySampler(sampler) })

	params := uniformBytes(u)
	ub, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "fx_params",
		Size:  uint64(len(params)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	p.onRelease(func() { p.device.DestroyBuffer(ub) })
	if err := p.queue.WriteBuffer(ub, 0, params); err != nil {
		return fmt.Errorf("upload uniforms: %w", err)
	}

	layout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "fx_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	p.onRelease(func() { p.device.DestroyBindGroupLayout(layout) })

	pipelineLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "fx_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{layout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.onRelease(func() { p.device.DestroyPipelineLayout(pipelineLayout) })

	p.group, err = p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "fx_bind_group",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: srcView.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: sampler.NativeHandle()}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: ub.NativeHandle(), Offset: 0, Size: uint64(len(params))}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	group := p.group
	p.onRelease(func() { p.device.DestroyBindGroup(group) })

	p.pipeline, err = p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "fx_" + prog.Ref(),
		Layout: pipelineLayout,
		Vertex: hal.VertexState{Module: module, EntryPoint: "vs_main"},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    p.format,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	pipeline := p.pipeline
	p.onRelease(func() { p.device.DestroyRenderPipeline(pipeline) })

	p.target, p.view, err = p.texture("fx_target", gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc)
	if err != nil {
		return err
	}

	p.stride = alignUp(p.width*4, copyRowAlignment)
	p.staging, err = p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "fx_readback",
		Size:  uint64(p.stride) * uint64(p.height),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create readback buffer: %w", err)
	}
	staging := p.staging
	p.onRelease(func() { p.device.DestroyBuffer(staging) })
	return nil
}

func (p *gpuPass) execute() ([]byte, error) {
	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "fx_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("fx_draw"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "fx_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       p.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{},
		}},
	})
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, p.group, nil)
	rp.Draw(3, 1, 0, 0)
	rp.End()

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: p.target,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(p.target, p.staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: p.stride, RowsPerImage: p.height},
		TextureBase:  hal.ImageCopyTexture{Texture: p.target, MipLevel: 0},
		Size:         p.extent(),
	}})

	cmd, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer p.device.FreeCommandBuffer(cmd)

	if _, err := p.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	if err := p.device.WaitIdle(); err != nil {
		return nil, fmt.Errorf("wait: %w", err)
	}

	size := uint64(p.stride) * uint64(p.height)
	m, err := p.device.MapBuffer(p.staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("map readback: %w", err)
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(m.Ptr), size))
	if err := p.device.UnmapBuffer(p.staging); err != nil {
		return nil, fmt.Errorf("unmap readback: %w", err)
	}
	return out, nil
}

// uniformBytes returns the set's buffer padded to a non-empty multiple of
// 16 bytes.
func uniformBytes(u uniform.Set) []byte {
	b := u.Bytes()
	n := alignUp(uint32(max(len(b), 16)), 16)
	if int(n) == len(b) {
		return b
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func alignUp(n, align uint32) uint32 {
	return (n + align - 1) / align * align
}
