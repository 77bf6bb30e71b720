package component

import "github.com/jakecoffman/cp"

// PhysicsBody is the kinematic Chipmunk body that integrates an entity's
// velocity. Body is filled in by the movement system.
type PhysicsBody struct {
	Body *cp.Body
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
