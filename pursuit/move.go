package pursuit

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/questmark/common"
)

// MoveToward sets vel so that pos heads to target at speed. An axis that
// would overshoot within dt is snapped onto target and its velocity zeroed,
// which keeps agents from jittering around a waypoint. It reports whether pos
// now equals target.
func MoveToward(pos, vel *cp.Vector, target cp.Vector, speed, dt float64) bool {
	pos.X, vel.X = approach(pos.X, target.X, speed, dt)
	pos.Y, vel.Y = approach(pos.Y, target.Y, speed, dt)
	return common.SamePoint(*pos, target)
}

func approach(p, target, speed, dt float64) (float64, float64) {
	step := speed * dt
	switch {
	case p < target:
		if p+step > target {
			return target, 0
		}
		return p, speed
	case p > target:
		if p-step < target {
			return target, 0
		}
		return p, -speed
	default:
		return p, 0
	}
}
