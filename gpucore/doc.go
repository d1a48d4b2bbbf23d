// Package gpucore defines the buffer contracts shared by every stage of the
// mesh gradient compute pipeline.
//
// The pipeline has four stages. Three of them form a chain, the fourth is
// independent:
//
//	control points ──► PatchInterpolator ──► PatchCoefficients
//	                                             │
//	                                             ▼
//	                    SampleVertex grid ◄── Tessellator
//	                           │
//	                           ▼
//	                      Triangulator ──► triangle list
//
//	NoiseUniforms ──► NoiseField ──► RGBA image
//
// Every type in this package has the exact memory layout of the matching
// WGSL struct (32-bit scalars, vec4 and mat4 aligned to 16 bytes), so CPU
// kernels and GPU kernels read and write the same bytes.
//
// # Bindings
//
// Each stage exposes a table of typed binding descriptors ([PatchBindings],
// [TessellateBindings], [TriangulateBindings], [NoiseBindings]). Slots are
// distinct Go types per stage, so a tessellator slot cannot be used to
// address a triangulator binding. [LayoutEntries] converts a table into the
// gputypes layout entries a WebGPU backend needs.
//
// # Plans and arenas
//
// [NewPlan] validates a control grid and a subdivision count and derives
// every buffer size and dispatch bound of one pipeline run. An [Arena]
// hands out the output buffers for one run; [ArenaPool] recycles arenas of
// identical shape between runs.
package gpucore
