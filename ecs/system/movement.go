package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/questmark/common"
	"github.com/milk9111/questmark/ecs"
	"github.com/milk9111/questmark/ecs/component"
)

// MovementSystem integrates velocities through the world's kinematic bodies
// and keeps bounding boxes on their transforms. Player-driven entities are
// stopped at walls and level bounds; pursuit agents follow planned paths and
// are not checked.
type MovementSystem struct{}

func NewMovementSystem() *MovementSystem {
	return &MovementSystem{}
}

func (ms *MovementSystem) Update(w *ecs.World) {
	if ms == nil || w == nil {
		return
	}
	dt := w.DeltaTime()
	pw := w.PhysicsWorld()
	if pw != nil {
		pw.Prune(w.IsAlive)
	}

	moving := w.Query(component.TransformComponent.Kind(), component.VelocityComponent.Kind())
	for _, e := range moving {
		t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		vel, _ := ecs.Get(w, e, component.VelocityComponent.Kind())
		if ecs.Has(w, e, component.PlayerTagComponent.Kind()) {
			blockAxes(w, e, t.Position, &vel.Value, dt)
		}
		if pw == nil {
			t.Position = t.Position.Add(vel.Value.Mult(dt))
			continue
		}
		body := pw.EnsureBody(e, t.Position)
		body.SetPosition(t.Position)
		body.SetVelocityVector(vel.Value)
		if pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok {
			pb.Body = body
		}
	}

	if pw != nil {
		pw.Step(dt)
		for _, e := range moving {
			body, ok := pw.Body(e)
			if !ok {
				continue
			}
			t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
			t.Position = body.Position()
		}
	}

	ecs.ForEach2(w, component.TransformComponent.Kind(), component.BoundingBoxComponent.Kind(),
		func(_ ecs.Entity, t *component.Transform, bb *component.BoundingBox) {
			syncBounds(t, bb)
		})
}

// blockAxes zeroes each axis of vel that would push e's box into a wall or
// out of the level.
func blockAxes(w *ecs.World, e ecs.Entity, pos cp.Vector, vel *cp.Vector, dt float64) {
	bb, ok := ecs.Get(w, e, component.BoundingBoxComponent.Kind())
	if !ok {
		return
	}
	box := bb.Rect.At(pos.X+bb.OffsetX, pos.Y+bb.OffsetY)
	bounds, hasBounds := levelBounds(w)
	pw := w.PhysicsWorld()

	blocked := func(r common.Rect) bool {
		if hasBounds && (r.X < 0 || r.Y < 0 || r.X+r.Width > bounds.Width || r.Y+r.Height > bounds.Height) {
			return true
		}
		return pw.Blocked(r)
	}

	if vel.X != 0 && blocked(box.At(box.X+vel.X*dt, box.Y)) {
		vel.X = 0
	}
	if vel.Y != 0 && blocked(box.At(box.X, box.Y+vel.Y*dt)) {
		vel.Y = 0
	}
	if vel.X != 0 && vel.Y != 0 && blocked(box.At(box.X+vel.X*dt, box.Y+vel.Y*dt)) {
		// sliding into a corner: keep the dominant axis
		if math.Abs(vel.X) >= math.Abs(vel.Y) {
			vel.Y = 0
		} else {
			vel.X = 0
		}
	}
}

func syncBounds(t *component.Transform, bb *component.BoundingBox) {
	bb.Rect = bb.Rect.At(t.Position.X+bb.OffsetX, t.Position.Y+bb.OffsetY)
}

func levelBounds(w *ecs.World) (component.LevelBounds, bool) {
	boundsEntity, ok := ecs.First(w, component.LevelBoundsComponent.Kind())
	if !ok {
		return component.LevelBounds{}, false
	}
	bounds, ok := ecs.Get(w, boundsEntity, component.LevelBoundsComponent.Kind())
	if !ok {
		return component.LevelBounds{}, false
	}
	return *bounds, true
}
