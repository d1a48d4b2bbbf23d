package meshgradient

import (
	"fmt"
	"slices"
)

// Grid is a row-major two-dimensional grid. Element (x, y) is stored at
// Elements[x + y*Width].
type Grid[T any] struct {
	Width    int
	Height   int
	Elements []T
}

// ControlMesh is the grid of control points a mesh gradient is built from.
type ControlMesh = Grid[ControlPoint]

// NewGrid creates a width x height grid of zero values. Negative
// dimensions are treated as zero.
func NewGrid[T any](width, height int) *Grid[T] {
	width, height = max(width, 0), max(height, 0)
	return &Grid[T]{
		Width:    width,
		Height:   height,
		Elements: make([]T, width*height),
	}
}

// GridFromSlice wraps elems as a grid of the given width. The height is
// len(elems)/width. The slice is not copied.
func GridFromSlice[T any](width int, elems []T) (*Grid[T], error) {
	if width <= 0 {
		if len(elems) == 0 {
			return &Grid[T]{}, nil
		}
		return nil, fmt.Errorf("%w: width %d for %d elements", ErrInvalidGrid, width, len(elems))
	}
	if len(elems)%width != 0 {
		return nil, fmt.Errorf("%w: %d elements is not a multiple of width %d", ErrInvalidGrid, len(elems), width)
	}
	return &Grid[T]{Width: width, Height: len(elems) / width, Elements: elems}, nil
}

// Index returns the element index of (x, y).
func (g *Grid[T]) Index(x, y int) int {
	return x + y*g.Width
}

// At returns the element at (x, y).
func (g *Grid[T]) At(x, y int) T {
	return g.Elements[g.Index(x, y)]
}

// Set stores v at (x, y).
func (g *Grid[T]) Set(x, y int, v T) {
	g.Elements[g.Index(x, y)] = v
}

// Len returns the number of elements.
func (g *Grid[T]) Len() int {
	return len(g.Elements)
}

// Valid reports whether the element count matches the dimensions.
func (g *Grid[T]) Valid() bool {
	return g.Width >= 0 && g.Height >= 0 && len(g.Elements) == g.Width*g.Height
}

// Clone returns a deep copy of the grid.
func (g *Grid[T]) Clone() *Grid[T] {
	if g == nil {
		return nil
	}
	return &Grid[T]{Width: g.Width, Height: g.Height, Elements: slices.Clone(g.Elements)}
}

// EqualFunc reports whether a and b have the same dimensions and eq holds
// for every pair of elements. Two nil grids are equal.
func EqualFunc[T any](a, b *Grid[T], eq func(T, T) bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Width == b.Width && a.Height == b.Height && slices.EqualFunc(a.Elements, b.Elements, eq)
}

// Equal reports whether two grids of comparable elements are identical.
func Equal[T comparable](a, b *Grid[T]) bool {
	return EqualFunc(a, b, func(x, y T) bool { return x == y })
}
