// Package pursuit drives agents that chase a target while it is within their
// aggression range and walk back to their home position otherwise.
//
// The Controller owns one planner and the per-agent state. Callers advance
// each agent once per tick with its current body, the chased entity and the
// boxes of every other dynamic obstacle; the controller replans at most once
// per half-tile of travel and turns the plan into velocity commands.
package pursuit

import (
	"io"
	"log"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/questmark/common"
	"github.com/milk9111/questmark/pathfinding"
)

// Body is the mutable movement state of an agent for one tick.
type Body struct {
	Position cp.Vector
	Velocity cp.Vector
	Bounds   common.Rect
}

// Chased describes the entity agents pursue.
type Chased struct {
	Position cp.Vector
	Bounds   common.Rect
}

type EventKind string

const (
	EventPursue   EventKind = "pursue"
	EventReturn   EventKind = "return"
	EventAtSource EventKind = "at_source"
	EventReplan   EventKind = "replan"
	EventNoPath   EventKind = "no_path"
)

// Event reports a decision taken during Advance.
type Event struct {
	Handle Handle
	Kind   EventKind
	// Steps is the length of the new plan for EventReplan.
	Steps int
}

type Controller struct {
	cfg      pathfinding.Config
	planner  *pathfinding.AStar
	tileSize float64
	static   []common.Rect
	scratch  []common.Rect

	agents agentArena

	listener func(Event)
	logger   *log.Logger
}

func NewController(cfg pathfinding.Config) *Controller {
	return &Controller{
		cfg:    cfg,
		logger: log.New(io.Discard, "", 0),
	}
}

// SetLogger routes controller diagnostics to l. A nil logger discards them.
func (c *Controller) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	c.logger = l
}

// OnEvent registers fn to receive every Event. Only one listener is kept.
func (c *Controller) OnEvent(fn func(Event)) {
	c.listener = fn
}

func (c *Controller) emit(ev Event) {
	if c.listener != nil {
		c.listener(ev)
	}
}

// SetMapData installs a new map. Every agent's replan period is recomputed
// and its plan dropped, since old waypoints may no longer be walkable.
func (c *Controller) SetMapData(width, height, tileSize int, static []common.Rect) {
	c.planner = pathfinding.NewAStar(width, height, tileSize, c.cfg)
	c.tileSize = float64(tileSize)
	c.static = append(c.static[:0], static...)
	c.agents.each(func(_ Handle, s *AgentPathState) {
		s.Period = replanPeriod(c.tileSize, s.Speed)
		s.clearPath()
	})
	c.logger.Printf("PursuitController: map %dx%d tile=%d static=%d", width, height, tileSize, len(static))
}

// Planner returns the planner for the current map, or nil before SetMapData.
func (c *Controller) Planner() *pathfinding.AStar {
	return c.planner
}

// Add registers an agent that lives at home and moves at speed.
func (c *Controller) Add(home cp.Vector, speed float64, aggr Aggression) Handle {
	return c.agents.add(AgentPathState{
		Home:       home,
		Speed:      speed,
		Aggression: aggr,
		AtSource:   true,
		Period:     replanPeriod(c.tileSize, speed),
	})
}

func (c *Controller) Remove(h Handle) bool {
	return c.agents.remove(h)
}

func (c *Controller) State(h Handle) (*AgentPathState, bool) {
	return c.agents.get(h)
}

// Len returns the number of live agents.
func (c *Controller) Len() int {
	return c.agents.live
}

// Advance runs one tick for the agent behind h. body is updated in place:
// velocity always, position only when the agent snaps onto a waypoint.
// others holds the boxes of every dynamic obstacle except the agent itself
// and the chased entity. It returns false for a stale handle or before any
// map data was set.
func (c *Controller) Advance(h Handle, body *Body, chased Chased, others []common.Rect, dt float64) bool {
	st, ok := c.agents.get(h)
	if !ok || c.planner == nil || body == nil {
		return false
	}

	dist := body.Position.Distance(chased.Position)
	if st.Aggression.Within(dist) {
		c.enter(h, st, body, ModePursuing)
	} else {
		c.enter(h, st, body, ModeReturning)
	}

	st.Timer += dt
	if st.Timer > st.Period {
		st.Timer = 0
		target := chased.Position
		if st.Returning {
			target = st.Home
		}
		c.replan(h, st, body, chased, others, target)
	}

	c.follow(st, body, dt)

	if st.Returning && !st.AtSource && common.SamePoint(body.Position, st.Home) {
		st.AtSource = true
		c.emit(Event{Handle: h, Kind: EventAtSource})
	}
	return true
}

func (c *Controller) enter(h Handle, st *AgentPathState, body *Body, mode Mode) {
	if st.mode == mode {
		return
	}
	prev := st.mode
	st.mode = mode
	st.Returning = mode == ModeReturning
	if prev != modeNone {
		st.clearPath()
		body.Velocity = cp.Vector{}
	}
	if mode == ModePursuing {
		st.AtSource = false
		c.emit(Event{Handle: h, Kind: EventPursue})
		return
	}
	st.AtSource = common.SamePoint(body.Position, st.Home)
	c.emit(Event{Handle: h, Kind: EventReturn})
}

func (c *Controller) replan(h Handle, st *AgentPathState, body *Body, chased Chased, others []common.Rect, target cp.Vector) {
	src := common.SnapVector(body.Position, c.tileSize)
	dst := common.SnapVector(target, c.tileSize)

	if common.SamePoint(src, dst) {
		st.clearPath()
		if st.Returning {
			// final approach from the home tile onto the exact home position
			st.Path = append(st.Path, st.Home)
		} else {
			body.Velocity = cp.Vector{}
		}
		c.emit(Event{Handle: h, Kind: EventReplan, Steps: len(st.Path)})
		return
	}

	c.scratch = append(c.scratch[:0], c.static...)
	c.scratch = append(c.scratch, others...)
	if st.Returning && !chased.Bounds.Empty() {
		c.scratch = append(c.scratch, chased.Bounds)
	}
	c.planner.SetCollisionData(c.scratch)

	path, ok := c.planner.FindPath(src, dst)
	if !ok {
		st.clearPath()
		body.Velocity = cp.Vector{}
		c.logger.Printf("PursuitController: no path %v -> %v (%d expanded)", src, dst, c.planner.Expanded())
		c.emit(Event{Handle: h, Kind: EventNoPath})
		return
	}

	st.Path = append(st.Path[:0], path...)
	if st.Returning && len(st.Path) > 0 {
		st.Path[0] = st.Home
	}
	c.emit(Event{Handle: h, Kind: EventReplan, Steps: len(st.Path)})
}

// follow steers body toward the next waypoint, dropping waypoints that have
// been reached.
func (c *Controller) follow(st *AgentPathState, body *Body, dt float64) {
	for {
		next, ok := st.Next()
		if !ok {
			body.Velocity = cp.Vector{}
			return
		}
		if common.SamePoint(body.Position, next) {
			st.pop()
			continue
		}
		if MoveToward(&body.Position, &body.Velocity, next, st.Speed, dt) {
			st.pop()
		}
		return
	}
}
