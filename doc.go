// Package meshgradient renders smooth mesh gradients.
//
// A mesh gradient is a colour surface defined over a grid of control
// points. Each point carries a location, two tangents and a colour. The
// surface between four neighbouring points is a bicubic Hermite patch, so
// positions and colours stay continuous across patch edges.
//
// # Pipeline
//
// Rendering runs four compute stages on a backend:
//
//	control points ──► PatchInterpolator ──► Tessellator ──► Triangulator ──► triangles
//	                                                                          (external rasteriser)
//	NoiseField ──► grey noise image (independent of the mesh)
//
// The patch interpolator derives Hermite coefficient matrices per cell, the
// tessellator samples every patch at Subdivisions+1 steps per edge into one
// dense vertex grid, and the triangulator turns that grid into a
// counter-clockwise triangle list. Drawing the triangles is left to the
// caller's rasteriser.
//
// # Quick Start
//
//	colors := meshgradient.NewGrid[meshgradient.RGBA](3, 3)
//	// ... fill colors ...
//	mesh := meshgradient.GenerateMesh(colors)
//
//	r, err := meshgradient.NewRenderer(meshgradient.StaticSource(mesh))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer r.Close()
//
//	frame, err := r.Render()
//	if err != nil {
//		log.Fatal(err)
//	}
//	for i := range frame.TriangleCount() {
//		tri := frame.Triangle(i)
//		// rasterise tri
//	}
//
// Frame.Preview rasterises the triangle list on the CPU, and
// Frame.Composite blends the noise overlay from Renderer.Noise on top.
//
// # Animation
//
// An Animator is a MeshSource that moves every control point toward a
// randomised variant of its initial state and picks a new target once it arrives. Pass
// it to NewRenderer and call Render once per displayed frame.
//
// # Backends
//
// The software backend runs every stage on a goroutine pool and is always
// available. Importing github.com/gogpu/meshgradient/gpu adds a WebGPU
// backend that runs the stages as compute shaders.
//
// # Logging
//
// The package is silent by default. SetLogger enables structured logging
// through log/slog for this package and its backends.
package meshgradient
