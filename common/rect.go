package common

import "github.com/jakecoffman/cp"

// Rect is an axis-aligned box anchored at its minimum corner.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Overlaps reports whether r and other share interior area. Touching edges do
// not overlap, so adjacent tiles never block each other.
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

// Contains reports whether other lies entirely inside r, edges included.
func (r Rect) Contains(other Rect) bool {
	return other.X >= r.X &&
		other.Y >= r.Y &&
		other.X+other.Width <= r.X+r.Width &&
		other.Y+other.Height <= r.Y+r.Height
}

// At returns a copy of r moved to x, y.
func (r Rect) At(x, y float64) Rect {
	r.X = x
	r.Y = y
	return r
}

func (r Rect) Min() cp.Vector {
	return cp.Vector{X: r.X, Y: r.Y}
}

func (r Rect) Center() cp.Vector {
	return cp.Vector{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}
