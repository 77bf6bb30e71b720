package pursuit

import (
	"fmt"
	"strconv"
	"strings"
)

// globalRange is the config sentinel for an agent that always pursues.
const globalRange = -1

// Aggression is either a finite pursuit radius or global, meaning the agent
// pursues regardless of distance.
type Aggression struct {
	radius float64
	global bool
}

// Finite returns an aggression limited to radius world units.
func Finite(radius float64) Aggression {
	return Aggression{radius: radius}
}

// Global returns an aggression with unlimited range.
func Global() Aggression {
	return Aggression{global: true}
}

// FromRange converts a legacy range value where -1 means global.
func FromRange(r float64) Aggression {
	if r == globalRange {
		return Global()
	}
	return Finite(r)
}

// ParseAggression accepts "global", "-1" or a non-negative radius.
func ParseAggression(s string) (Aggression, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Aggression{}, fmt.Errorf("pursuit: empty aggression")
	}
	if s == "global" {
		return Global(), nil
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Aggression{}, fmt.Errorf("pursuit: parse aggression %q: %w", s, err)
	}
	if r == globalRange {
		return Global(), nil
	}
	if r < 0 {
		return Aggression{}, fmt.Errorf("pursuit: negative aggression radius %v", r)
	}
	return Finite(r), nil
}

func (a Aggression) IsGlobal() bool {
	return a.global
}

// Radius returns the pursuit radius and false for global aggression.
func (a Aggression) Radius() (float64, bool) {
	if a.global {
		return 0, false
	}
	return a.radius, true
}

// Within reports whether a chased entity at distance d provokes pursuit.
func (a Aggression) Within(d float64) bool {
	return a.global || d <= a.radius
}

func (a Aggression) String() string {
	if a.global {
		return "global"
	}
	return strconv.FormatFloat(a.radius, 'f', -1, 64)
}
