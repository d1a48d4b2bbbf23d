package meshgradient

import (
	"image"
	"testing"

	"github.com/gogpu/meshgradient/gpucore"
)

func renderTestFrame(t *testing.T) *Frame {
	t.Helper()
	r := newTestRenderer(t, StaticSource(testMesh(3, 3)), WithSubdivisions(4))
	f, err := r.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return f
}

func TestFrameTriangle(t *testing.T) {
	f := renderTestFrame(t)
	tri := f.Triangle(f.TriangleCount() - 1)
	if tri[2] != f.Triangles[len(f.Triangles)-1] {
		t.Error("last triangle does not end the triangle list")
	}
}

func TestFramePreviewCoverage(t *testing.T) {
	f := renderTestFrame(t)
	img := f.Preview(40, 30)
	if img.Bounds() != image.Rect(0, 0, 40, 30) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	for _, pt := range []image.Point{{20, 15}, {5, 5}, {35, 25}} {
		if a := img.NRGBAAt(pt.X, pt.Y).A; a != 255 {
			t.Errorf("pixel %v alpha = %d, want opaque", pt, a)
		}
	}
}

func TestFramePreviewOrientation(t *testing.T) {
	f := renderTestFrame(t)
	img := f.Preview(64, 64)

	// Green follows the row index, which grows with y. Image row 0 is the
	// top, y = 1.
	top := img.NRGBAAt(32, 2).G
	bottom := img.NRGBAAt(32, 61).G
	if top <= bottom {
		t.Errorf("green top = %d, bottom = %d; want top > bottom", top, bottom)
	}
	left := img.NRGBAAt(2, 32).R
	right := img.NRGBAAt(61, 32).R
	if left >= right {
		t.Errorf("red left = %d, right = %d; want left < right", left, right)
	}
}

func TestFramePreviewEmpty(t *testing.T) {
	f := renderTestFrame(t)
	if img := f.Preview(0, 10); !img.Bounds().Empty() {
		t.Errorf("Preview(0, 10) bounds = %v", img.Bounds())
	}
}

func TestFrameComposite(t *testing.T) {
	f := renderTestFrame(t)
	r := newTestRenderer(t, StaticSource(testMesh(2, 2)), WithNoise(NoiseConfig{Color1: 255, Color2: 255, Color3: 255, Alpha: 1}))
	noise, err := r.Noise(16, 16)
	if err != nil {
		t.Fatalf("Noise: %v", err)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	f.Composite(dst, nil)
	plain := dst.NRGBAAt(8, 8)

	f.Composite(dst, noise)
	if got := dst.NRGBAAt(8, 8); got.R != 255 || got.G != 255 || got.B != 255 {
		t.Errorf("opaque white noise gave %v over %v", got, plain)
	}
}

func TestRasterizeWinding(t *testing.T) {
	for _, flip := range []bool{false, true} {
		img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
		tri := testTriangle()
		if flip {
			tri[1], tri[2] = tri[2], tri[1]
		}
		rasterize(img, tri)
		if img.NRGBAAt(1, 6).A == 0 {
			t.Errorf("flip=%v: covered pixel left empty", flip)
		}
		if img.NRGBAAt(7, 0).A != 0 {
			t.Errorf("flip=%v: pixel outside triangle filled", flip)
		}
	}
}

// testTriangle covers the lower left half of clip space.
func testTriangle() gpucore.Triangle {
	return gpucore.Triangle{
		{Position: gpucore.Vec2{X: -1, Y: 1}, Color: gpucore.Vec4{X: 1, W: 1}},
		{Position: gpucore.Vec2{X: -1, Y: -1}, Color: gpucore.Vec4{Y: 1, W: 1}},
		{Position: gpucore.Vec2{X: 1, Y: -1}, Color: gpucore.Vec4{Z: 1, W: 1}},
	}
}
