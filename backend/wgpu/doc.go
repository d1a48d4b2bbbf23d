// Package wgpu provides the GPU compute backend of the mesh gradient
// pipeline using gogpu/wgpu.
//
// Each pipeline stage is a WGSL compute shader with @workgroup_size(8, 8).
// The shaders are embedded in the binary, compiled to SPIR-V with naga and
// turned into compute pipelines once, when the backend is initialized:
//
//	patch.wgsl        patch_smooth, patch_linear
//	tessellate.wgsl   main
//	triangulate.wgsl  main
//	noise.wgsl        main
//
// A stage uploads its inputs into storage and uniform buffers, dispatches
// enough workgroups to cover its bound, copies the result into a mappable
// staging buffer and waits for the device to go idle before reading it
// back. The result lands in the run's arena, so callers see the same
// slices the software backend returns.
//
// # CPU Fallback
//
// When no GPU is available, or a dispatch fails, the stage runs on the CPU
// kernels instead and a warning is logged. The backend therefore never
// fails a render because of the device.
//
// # Shared Devices
//
// Applications that already own a gogpu device can share it:
//
//	b := wgpu.New()
//	if err := b.SetDeviceProvider(app); err != nil {
//		log.Fatal(err)
//	}
//
// A shared device is not destroyed by Close.
package wgpu
