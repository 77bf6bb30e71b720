package component

import "github.com/jakecoffman/cp"

// Transform holds the world position of an entity's minimum corner.
type Transform struct {
	Position cp.Vector
}

var TransformComponent = NewComponent[Transform]()
