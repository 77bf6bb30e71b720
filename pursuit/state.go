package pursuit

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Mode is the behaviour an agent is currently in.
type Mode uint8

const (
	modeNone Mode = iota
	ModePursuing
	ModeReturning
)

func (m Mode) String() string {
	switch m {
	case ModePursuing:
		return "pursuing"
	case ModeReturning:
		return "returning"
	default:
		return "none"
	}
}

// AgentPathState is the planning bookkeeping of one agent.
type AgentPathState struct {
	// Path holds waypoints goal first; the next waypoint is the last element.
	Path []cp.Vector
	// Timer accumulates time since the last replan.
	Timer float64
	// Period is the minimum time between replans.
	Period float64
	// Returning is set while the agent heads back home.
	Returning bool
	// Home is the fixed position the agent returns to.
	Home cp.Vector
	// AtSource is set once a returning agent stands exactly on Home.
	AtSource bool

	Speed      float64
	Aggression Aggression

	mode Mode
}

func (s *AgentPathState) Mode() Mode {
	return s.mode
}

// IdleEligible reports whether other behaviours may drive the agent.
func (s *AgentPathState) IdleEligible() bool {
	return s.AtSource
}

// Next returns the next unreached waypoint.
func (s *AgentPathState) Next() (cp.Vector, bool) {
	if len(s.Path) == 0 {
		return cp.Vector{}, false
	}
	return s.Path[len(s.Path)-1], true
}

func (s *AgentPathState) pop() {
	if len(s.Path) > 0 {
		s.Path = s.Path[:len(s.Path)-1]
	}
}

func (s *AgentPathState) clearPath() {
	s.Path = s.Path[:0]
}

// replanPeriod is the time needed to cross half a tile at speed.
func replanPeriod(tileSize, speed float64) float64 {
	if speed <= 0 {
		return math.Inf(1)
	}
	return tileSize / 2 / speed
}

// Handle is a stable reference to an agent. A handle goes stale once the
// agent is removed, even if its slot is reused.
type Handle struct {
	index uint32
	gen   uint32
}

// Valid reports whether h was ever issued. It does not check liveness.
func (h Handle) Valid() bool {
	return h.gen != 0
}

type agentSlot struct {
	state AgentPathState
	gen   uint32
	alive bool
}

// agentArena stores agent state in a slice with generation-checked handles
// and a free list of reusable slots.
type agentArena struct {
	slots []agentSlot
	free  []uint32
	live  int
}

func (a *agentArena) add(state AgentPathState) Handle {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, agentSlot{})
		idx = uint32(len(a.slots) - 1)
	}
	slot := &a.slots[idx]
	slot.gen++
	slot.alive = true
	slot.state = state
	a.live++
	return Handle{index: idx, gen: slot.gen}
}

func (a *agentArena) get(h Handle) (*AgentPathState, bool) {
	if !h.Valid() || int(h.index) >= len(a.slots) {
		return nil, false
	}
	slot := &a.slots[h.index]
	if !slot.alive || slot.gen != h.gen {
		return nil, false
	}
	return &slot.state, true
}

func (a *agentArena) remove(h Handle) bool {
	if _, ok := a.get(h); !ok {
		return false
	}
	slot := &a.slots[h.index]
	slot.alive = false
	slot.state = AgentPathState{}
	a.free = append(a.free, h.index)
	a.live--
	return true
}

func (a *agentArena) each(fn func(h Handle, s *AgentPathState)) {
	for i := range a.slots {
		slot := &a.slots[i]
		if !slot.alive {
			continue
		}
		fn(Handle{index: uint32(i), gen: slot.gen}, &slot.state)
	}
}
