package component

import "github.com/milk9111/questmark/common"

// BoundingBox follows the transform; Rect.X and Rect.Y are kept equal to the
// transform position plus the offset.
type BoundingBox struct {
	Rect    common.Rect
	OffsetX float64
	OffsetY float64
}

var BoundingBoxComponent = NewComponent[BoundingBox]()
