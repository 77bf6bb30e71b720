package ecs

import (
	"log"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/questmark/common"
)

// queryInset shrinks overlap queries so that boxes sharing only an edge do not
// count as blocked. Chipmunk bounding boxes intersect inclusively.
const queryInset = 1e-6

// PhysicsWorld owns the Chipmunk space. Every moving entity gets a kinematic
// body whose velocity is integrated by Step; walls are static box shapes used
// for overlap queries.
type PhysicsWorld struct {
	space   *cp.Space
	bodies  map[Entity]*cp.Body
	statics []*cp.Shape
}

// NewPhysicsWorld creates an empty top-down space without gravity.
func NewPhysicsWorld() *PhysicsWorld {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})
	return &PhysicsWorld{
		space:  space,
		bodies: make(map[Entity]*cp.Body),
	}
}

// Space returns the underlying Chipmunk space.
func (pw *PhysicsWorld) Space() *cp.Space {
	if pw == nil {
		return nil
	}
	return pw.space
}

// SetStatic replaces the wall shapes.
func (pw *PhysicsWorld) SetStatic(boxes []common.Rect) {
	if pw == nil {
		return
	}
	for _, shape := range pw.statics {
		pw.space.RemoveShape(shape)
	}
	pw.statics = pw.statics[:0]
	for _, b := range boxes {
		shape := cp.NewBox2(pw.space.StaticBody, rectBB(b), 0)
		pw.space.AddShape(shape)
		pw.statics = append(pw.statics, shape)
	}
	log.Printf("PhysicsWorld: %d static shapes", len(pw.statics))
}

// EnsureBody returns the kinematic body of e, creating it at pos if needed.
func (pw *PhysicsWorld) EnsureBody(e Entity, pos cp.Vector) *cp.Body {
	if pw == nil {
		return nil
	}
	if body, ok := pw.bodies[e]; ok {
		return body
	}
	body := cp.NewKinematicBody()
	body.SetPosition(pos)
	pw.space.AddBody(body)
	pw.bodies[e] = body
	return body
}

func (pw *PhysicsWorld) Body(e Entity) (*cp.Body, bool) {
	if pw == nil {
		return nil, false
	}
	body, ok := pw.bodies[e]
	return body, ok
}

func (pw *PhysicsWorld) RemoveBody(e Entity) {
	if pw == nil {
		return
	}
	body, ok := pw.bodies[e]
	if !ok {
		return
	}
	pw.space.RemoveBody(body)
	delete(pw.bodies, e)
}

// Prune drops bodies whose entities are gone.
func (pw *PhysicsWorld) Prune(alive func(Entity) bool) {
	if pw == nil {
		return
	}
	for e := range pw.bodies {
		if !alive(e) {
			pw.RemoveBody(e)
		}
	}
}

// Bodies returns the number of kinematic bodies.
func (pw *PhysicsWorld) Bodies() int {
	if pw == nil {
		return 0
	}
	return len(pw.bodies)
}

// Step advances every body by dt seconds.
func (pw *PhysicsWorld) Step(dt float64) {
	if pw == nil || dt <= 0 {
		return
	}
	pw.space.Step(dt)
}

// Blocked reports whether r overlaps any static shape by more than an edge.
func (pw *PhysicsWorld) Blocked(r common.Rect) bool {
	if pw == nil || len(pw.statics) == 0 {
		return false
	}
	bb := rectBB(r)
	bb.L += queryInset
	bb.B += queryInset
	bb.R -= queryInset
	bb.T -= queryInset
	hit := false
	pw.space.BBQuery(bb, cp.SHAPE_FILTER_ALL, func(_ *cp.Shape, _ interface{}) {
		hit = true
	}, nil)
	return hit
}

func rectBB(r common.Rect) cp.BB {
	return cp.BB{L: r.X, B: r.Y, R: r.X + r.Width, T: r.Y + r.Height}
}
