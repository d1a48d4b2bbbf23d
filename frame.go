package meshgradient

import (
	"image"
	"math"

	"github.com/gogpu/meshgradient/gpucore"
	xdraw "golang.org/x/image/draw"
)

// previewSupersample is the rasterization scale of Preview before the
// downscale to the requested size.
const previewSupersample = 2

// coverEpsilon lets pixel centres on a shared edge land in both triangles.
const coverEpsilon = 1e-5

// Frame is the output of one Render: the patch coefficients, the dense
// vertex grid and the triangle list ready for a vertex buffer.
//
// Positions are in [-1, 1] clip space with y up. Colours are RGBA in
// [0, 1]. Buffers belong to the renderer; see Renderer.Render for how long
// they stay valid.
type Frame struct {
	Plan gpucore.Plan

	// Coefficients holds one entry per grid cell, row-major.
	Coefficients []gpucore.PatchCoefficients

	// Vertices is the dense sample grid, row-major with VertexWidth
	// samples per row.
	Vertices     []gpucore.SampleVertex
	VertexWidth  int
	VertexHeight int

	// Triangles is a triangle list, six vertices per grid quad.
	Triangles []gpucore.SampleVertex
}

// TriangleCount returns the number of triangles in the frame.
func (f *Frame) TriangleCount() int {
	return len(f.Triangles) / 3
}

// Triangle returns triangle i.
func (f *Frame) Triangle(i int) gpucore.Triangle {
	return gpucore.Triangle(f.Triangles[3*i : 3*i+3])
}

// Vertex returns the dense grid sample at column x, row y.
func (f *Frame) Vertex(x, y int) gpucore.SampleVertex {
	return f.Vertices[x+y*f.VertexWidth]
}

// Preview rasterizes the triangle list into a width x height image with
// per-vertex colour interpolation. Clip space y points up, so row 0 of the
// image is y = 1. Pixels no triangle covers stay transparent.
func (f *Frame) Preview(width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	if width <= 0 || height <= 0 {
		return dst
	}
	big := image.NewNRGBA(image.Rect(0, 0, width*previewSupersample, height*previewSupersample))
	for i := range f.TriangleCount() {
		rasterize(big, f.Triangle(i))
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), big, big.Bounds(), xdraw.Src, nil)
	return dst
}

// Composite draws the frame preview into dst and blends noise over it.
// A nil noise image leaves the preview unchanged.
func (f *Frame) Composite(dst xdraw.Image, noise *image.NRGBA) {
	r := dst.Bounds()
	xdraw.Draw(dst, r, f.Preview(r.Dx(), r.Dy()), image.Point{}, xdraw.Src)
	if noise != nil {
		xdraw.Draw(dst, r, noise, noise.Bounds().Min, xdraw.Over)
	}
}

type rasterPoint struct {
	x, y  float32
	color gpucore.Vec4
}

// rasterize fills the pixels whose centres fall inside t using barycentric
// colour interpolation. Either winding is accepted.
func rasterize(img *image.NRGBA, t gpucore.Triangle) {
	w := float32(img.Rect.Dx())
	h := float32(img.Rect.Dy())
	var p [3]rasterPoint
	for i, v := range t {
		p[i] = rasterPoint{
			x:     (v.Position.X + 1) / 2 * w,
			y:     (1 - v.Position.Y) / 2 * h,
			color: v.Color,
		}
	}

	area := edge(p[0], p[1], p[2].x, p[2].y)
	if area == 0 {
		return
	}

	minX := clampInt(floor(min(p[0].x, p[1].x, p[2].x)), 0, img.Rect.Dx())
	maxX := clampInt(ceil(max(p[0].x, p[1].x, p[2].x)), 0, img.Rect.Dx())
	minY := clampInt(floor(min(p[0].y, p[1].y, p[2].y)), 0, img.Rect.Dy())
	maxY := clampInt(ceil(max(p[0].y, p[1].y, p[2].y)), 0, img.Rect.Dy())

	for y := minY; y < maxY; y++ {
		cy := float32(y) + 0.5
		for x := minX; x < maxX; x++ {
			cx := float32(x) + 0.5
			w0 := edge(p[1], p[2], cx, cy) / area
			w1 := edge(p[2], p[0], cx, cy) / area
			w2 := edge(p[0], p[1], cx, cy) / area
			if w0 < -coverEpsilon || w1 < -coverEpsilon || w2 < -coverEpsilon {
				continue
			}
			c := gpucore.Vec4{
				X: w0*p[0].color.X + w1*p[1].color.X + w2*p[2].color.X,
				Y: w0*p[0].color.Y + w1*p[1].color.Y + w2*p[2].color.Y,
				Z: w0*p[0].color.Z + w1*p[1].color.Z + w2*p[2].color.Z,
				W: 1,
			}
			img.SetNRGBA(x, y, vec4Color(c))
		}
	}
}

// edge is twice the signed area of (a, b, (x, y)).
func edge(a, b rasterPoint, x, y float32) float32 {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}

func floor(v float32) int { return int(math.Floor(float64(v))) }
func ceil(v float32) int  { return int(math.Ceil(float64(v))) }

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
