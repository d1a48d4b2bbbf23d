package meshgradient

// GenerateMesh builds an evenly spaced control mesh carrying the given
// colours.
//
// Locations span [-1, 1] on both axes. Tangents match the grid spacing
// (UTangent.X = 2/(w-1), VTangent.Y = 2/(h-1)), which makes every patch an
// affine map of its cell. A dimension of one point is centred at 0 with a
// zero tangent along it.
func GenerateMesh(colors *Grid[RGBA]) *ControlMesh {
	if colors == nil {
		return NewGrid[ControlPoint](0, 0)
	}
	mesh := NewGrid[ControlPoint](colors.Width, colors.Height)
	for y := range mesh.Height {
		for x := range mesh.Width {
			lx, tu := spread(x, mesh.Width)
			ly, tv := spread(y, mesh.Height)
			mesh.Set(x, y, ControlPoint{
				Location: V2(lx, ly),
				UTangent: V2(tu, 0),
				VTangent: V2(0, tv),
				Color:    colors.At(x, y),
			})
		}
	}
	return mesh
}

// spread maps index i of n evenly onto [-1, 1] and returns the spacing.
func spread(i, n int) (pos, step float32) {
	if n < 2 {
		return 0, 0
	}
	f := float32(i) / float32(n-1)
	return -1 + f*2, 2 / float32(n-1)
}

// GenerateMeshFunc is like GenerateMesh but asks color for the colour of
// each point.
func GenerateMeshFunc(width, height int, color func(x, y int) RGBA) *ControlMesh {
	colors := NewGrid[RGBA](width, height)
	for y := range colors.Height {
		for x := range colors.Width {
			colors.Set(x, y, color(x, y))
		}
	}
	return GenerateMesh(colors)
}
