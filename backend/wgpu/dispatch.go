package wgpu

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/meshgradient/gpucore"
	"github.com/gogpu/meshgradient/internal/parallel"
	"github.com/gogpu/wgpu/hal"
)

// bytesPerRowAlignment is the row pitch alignment of texture copies.
const bytesPerRowAlignment = 256

// sliceBytes views a slice of GPU-layout structs as raw bytes.
func sliceBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	size := len(s) * int(unsafe.Sizeof(s[0]))
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), size) //nolint:gosec // GPU-layout structs, no pointers
}

// valueBytes views a single GPU-layout value as raw bytes.
func valueBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v)) //nolint:gosec // GPU-layout struct, no pointers
}

// frame collects the transient GPU objects of one stage dispatch and
// releases them together.
type frame struct {
	device hal.Device
	queue  hal.Queue

	buffers  []hal.Buffer
	groups   []hal.BindGroup
	textures []hal.Texture
	views    []hal.TextureView
}

func newFrame(device hal.Device, queue hal.Queue) *frame {
	return &frame{device: device, queue: queue}
}

func (f *frame) buffer(label string, size uint64, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := f.device.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: size, Usage: usage})
	if err != nil {
		return nil, fmt.Errorf("create %s buffer: %w", label, err)
	}
	f.buffers = append(f.buffers, buf)
	return buf, nil
}

// upload creates a buffer holding data.
func (f *frame) upload(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := f.buffer(label, uint64(len(data)), usage|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	if err := f.queue.WriteBuffer(buf, 0, data); err != nil {
		return nil, fmt.Errorf("write %s buffer: %w", label, err)
	}
	return buf, nil
}

// uniform uploads a small value as a uniform buffer.
func uniform[T any](f *frame, label string, v T) (hal.Buffer, error) {
	return f.upload(label, valueBytes(&v), gputypes.BufferUsageUniform)
}

func (f *frame) storageTexture(label string, width, height uint32) (hal.Texture, hal.TextureView, error) {
	tex, err := f.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageStorageBinding | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s texture: %w", label, err)
	}
	f.textures = append(f.textures, tex)

	view, err := f.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           label + "_view",
		Format:          gputypes.TextureFormatRGBA8Unorm,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s texture view: %w", label, err)
	}
	f.views = append(f.views, view)
	return tex, view, nil
}

func (f *frame) bindGroup(label string, layout hal.BindGroupLayout, entries []gputypes.BindGroupEntry) (hal.BindGroup, error) {
	bg, err := f.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s bind group: %w", label, err)
	}
	f.groups = append(f.groups, bg)
	return bg, nil
}

func (f *frame) release() {
	for _, bg := range f.groups {
		f.device.DestroyBindGroup(bg)
	}
	for _, v := range f.views {
		f.device.DestroyTextureView(v)
	}
	for _, t := range f.textures {
		f.device.DestroyTexture(t)
	}
	for _, b := range f.buffers {
		f.device.DestroyBuffer(b)
	}
	f.groups, f.views, f.textures, f.buffers = nil, nil, nil, nil
}

func bufferEntry(slot uint32, buf hal.Buffer, size uint64) gputypes.BindGroupEntry {
	return gputypes.BindGroupEntry{
		Binding:  slot,
		Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: size},
	}
}

// computePass describes one stage dispatch.
type computePass struct {
	label    string
	layout   hal.BindGroupLayout
	pipeline hal.ComputePipeline
	entries  []gputypes.BindGroupEntry
	bound    gpucore.Bound

	// prepare records commands ahead of the pass.
	prepare func(enc hal.CommandEncoder)

	// copyOut records the readback copy after the pass.
	copyOut func(enc hal.CommandEncoder)
}

// run records the pass, submits it and waits for the device to go idle.
func (f *frame) run(p computePass) error {
	bg, err := f.bindGroup(p.label, p.layout, p.entries)
	if err != nil {
		return err
	}

	encoder, err := f.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: p.label + "_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Destroy()
	if err := encoder.BeginEncoding(p.label); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	if p.prepare != nil {
		p.prepare(encoder)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: p.label + "_pass"})
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(parallel.Workgroups(p.bound.X), parallel.Workgroups(p.bound.Y), 1)
	pass.End()

	if p.copyOut != nil {
		p.copyOut(encoder)
	}

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer f.device.FreeCommandBuffer(cmd)

	if _, err := f.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := f.device.WaitIdle(); err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	return nil
}

// clearBuffer returns a prepare step zeroing buf, so slots the pass does
// not write read back as zero.
func clearBuffer(buf hal.Buffer, size uint64) func(hal.CommandEncoder) {
	return func(enc hal.CommandEncoder) {
		enc.ClearBuffer(buf, 0, size)
		enc.TransitionBuffers([]hal.BufferBarrier{{
			Buffer: buf,
			Usage: hal.BufferUsageTransition{
				OldUsage: gputypes.BufferUsageCopyDst,
				NewUsage: gputypes.BufferUsageStorage,
			},
		}})
	}
}

// copyBuffer returns a copyOut that moves size bytes of src into dst after
// a storage write.
func copyBuffer(src, dst hal.Buffer, size uint64) func(hal.CommandEncoder) {
	return func(enc hal.CommandEncoder) {
		enc.TransitionBuffers([]hal.BufferBarrier{{
			Buffer: src,
			Usage: hal.BufferUsageTransition{
				OldUsage: gputypes.BufferUsageStorage,
				NewUsage: gputypes.BufferUsageCopySrc,
			},
		}})
		enc.CopyBufferToBuffer(src, dst, []hal.BufferCopy{{SrcOffset: 0, DstOffset: 0, Size: size}})
	}
}

// readback copies the first len(dst) elements of a mapped staging buffer
// into dst.
func readback[T any](f *frame, staging hal.Buffer, dst []T) error {
	raw := sliceBytes(dst)
	if len(raw) == 0 {
		return nil
	}
	mapping, err := f.device.MapBuffer(staging, 0, uint64(len(raw)))
	if err != nil {
		return fmt.Errorf("map staging buffer: %w", err)
	}
	copy(raw, unsafe.Slice((*byte)(mapping.Ptr), len(raw))) //nolint:gosec // mapping covers len(raw) bytes
	if err := f.device.UnmapBuffer(staging); err != nil {
		return fmt.Errorf("unmap staging buffer: %w", err)
	}
	return nil
}

// alignRow rounds a texture row pitch up to the copy alignment.
func alignRow(bytes uint32) uint32 {
	return (bytes + bytesPerRowAlignment - 1) / bytesPerRowAlignment * bytesPerRowAlignment
}
