package common

import (
	"math"

	"github.com/jakecoffman/cp"
)

// TileSize is the default tile edge length in world units.
const TileSize = 32

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Snap rounds v to the nearest multiple of tile, halves rounding up.
func Snap(v, tile float64) float64 {
	if tile <= 0 {
		return v
	}
	return math.Floor(v/tile+0.5) * tile
}

// SnapVector snaps both axes of v to the tile grid.
func SnapVector(v cp.Vector, tile float64) cp.Vector {
	return cp.Vector{X: Snap(v.X, tile), Y: Snap(v.Y, tile)}
}

// SameCell reports whether a and b snap to the same tile.
func SameCell(a, b cp.Vector, tile float64) bool {
	sa := SnapVector(a, tile)
	sb := SnapVector(b, tile)
	return sa.X == sb.X && sa.Y == sb.Y
}

// SamePoint compares two positions exactly.
func SamePoint(a, b cp.Vector) bool {
	return a.X == b.X && a.Y == b.Y
}
