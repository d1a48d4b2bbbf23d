package compute

import "github.com/gogpu/meshgradient/gpucore"

// hermite is the cubic Hermite characteristic matrix. Row k holds the
// coefficients of t^k for the basis functions h00, h01, h10, h11.
var hermite = [4][4]float32{
	{1, 0, 0, 0},
	{0, 0, 1, 0},
	{-3, 3, -2, -1},
	{2, -2, 1, 1},
}

// HermiteWeights maps the power basis [1, t, t², t³] through the Hermite
// characteristic matrix. At t = 0 and t = 1 the result is an exact unit
// vector, so patch corners evaluate to their control values bit for bit.
func HermiteWeights(t float32) [4]float32 {
	b := [4]float32{1, t, t * t, t * t * t}
	var w [4]float32
	for j := range 4 {
		for k := range 4 {
			w[j] += b[k] * hermite[k][j]
		}
	}
	return w
}

// EvalPatch returns wu · m · wvᵀ.
func EvalPatch(m *gpucore.Mat4, wu, wv [4]float32) float32 {
	var sum float32
	for i := range 4 {
		var row float32
		for j := range 4 {
			row += m.At(i, j) * wv[j]
		}
		sum += wu[i] * row
	}
	return sum
}
