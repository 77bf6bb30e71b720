package system

import (
	"github.com/milk9111/questmark/ecs"
	"github.com/milk9111/questmark/ecs/component"
)

// InputReader reports the movement axes for the current tick.
type InputReader interface {
	Axis() (x, y float64)
}

// InputSystem copies the reader's axes into every Input component and turns
// them into velocity.
type InputSystem struct {
	reader InputReader
}

func NewInputSystem(reader InputReader) *InputSystem {
	return &InputSystem{reader: reader}
}

func (is *InputSystem) Update(w *ecs.World) {
	if is == nil || w == nil {
		return
	}
	var x, y float64
	if is.reader != nil {
		x, y = is.reader.Axis()
	}
	ecs.ForEach3(w,
		component.InputComponent.Kind(),
		component.VelocityComponent.Kind(),
		component.SpeedComponent.Kind(),
		func(_ ecs.Entity, in *component.Input, vel *component.Velocity, speed *component.Speed) {
			in.MoveX = clampAxis(x)
			in.MoveY = clampAxis(y)
			vel.Value.X = in.MoveX * speed.Value
			vel.Value.Y = in.MoveY * speed.Value
		})
}

func clampAxis(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
