package component

import "github.com/jakecoffman/cp"

// Velocity is in world units per second.
type Velocity struct {
	Value cp.Vector
}

var VelocityComponent = NewComponent[Velocity]()

// Speed is the magnitude of an entity's movement along each axis.
type Speed struct {
	Value float64
}

var SpeedComponent = NewComponent[Speed]()
