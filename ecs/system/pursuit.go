package system

import (
	"io"
	"log"

	"github.com/milk9111/questmark/common"
	"github.com/milk9111/questmark/ecs"
	"github.com/milk9111/questmark/ecs/component"
	"github.com/milk9111/questmark/pathfinding"
	"github.com/milk9111/questmark/pursuit"
)

// EventPrefix starts the type of every world event raised for pursuit
// decisions, e.g. "pursuit.no_path".
const EventPrefix = "pursuit."

type obstacle struct {
	entity ecs.Entity
	box    common.Rect
}

// PursuitSystem feeds pursuit agents to a pursuit.Controller once per tick.
// Agents are registered lazily the first time they are seen and released
// when their entity dies.
type PursuitSystem struct {
	controller *pursuit.Controller
	logger     *log.Logger

	agents  map[pursuit.Handle]ecs.Entity
	current ecs.Entity
	world   *ecs.World

	obstacles []obstacle
	others    []common.Rect
}

func NewPursuitSystem(cfg pathfinding.Config) *PursuitSystem {
	ps := &PursuitSystem{
		controller: pursuit.NewController(cfg),
		logger:     log.New(io.Discard, "", 0),
		agents:     make(map[pursuit.Handle]ecs.Entity),
	}
	ps.controller.OnEvent(ps.forward)
	return ps
}

// SetLogger routes system and controller diagnostics to l.
func (ps *PursuitSystem) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	ps.logger = l
	ps.controller.SetLogger(l)
}

func (ps *PursuitSystem) Controller() *pursuit.Controller {
	return ps.controller
}

func (ps *PursuitSystem) SetMapData(width, height, tileSize int, static []common.Rect) {
	ps.controller.SetMapData(width, height, tileSize, static)
}

func (ps *PursuitSystem) forward(ev pursuit.Event) {
	if ps.world == nil {
		return
	}
	ps.world.Events().Push(ecs.Event{
		Type:   EventPrefix + string(ev.Kind),
		Entity: ps.current,
		Data:   ev,
	})
	if ev.Kind != pursuit.EventReplan {
		ps.logger.Printf("PursuitSystem: entity %v %s", ps.current, ev.Kind)
	}
}

func (ps *PursuitSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	ps.world = w
	defer func() { ps.world = nil }()

	ps.release(w)

	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	chased, ok := chasedState(w, player)
	if !ok {
		return
	}

	ps.obstacles = ps.obstacles[:0]
	ecs.ForEach2(w, component.CollidableComponent.Kind(), component.BoundingBoxComponent.Kind(),
		func(e ecs.Entity, _ *component.Collidable, bb *component.BoundingBox) {
			if e != player {
				ps.obstacles = append(ps.obstacles, obstacle{entity: e, box: bb.Rect})
			}
		})

	dt := w.DeltaTime()
	for _, e := range w.Query(
		component.PursuitAgentComponent.Kind(),
		component.TransformComponent.Kind(),
		component.VelocityComponent.Kind(),
	) {
		ps.advance(w, e, chased, dt)
	}
}

func (ps *PursuitSystem) advance(w *ecs.World, e ecs.Entity, chased pursuit.Chased, dt float64) {
	agent, _ := ecs.Get(w, e, component.PursuitAgentComponent.Kind())
	t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	vel, _ := ecs.Get(w, e, component.VelocityComponent.Kind())

	if _, ok := ps.controller.State(agent.Handle); !ok {
		agent.Handle = ps.register(w, e, t)
	}

	body := pursuit.Body{Position: t.Position, Velocity: vel.Value}
	bb, hasBox := ecs.Get(w, e, component.BoundingBoxComponent.Kind())
	if hasBox {
		body.Bounds = bb.Rect
	}

	ps.others = ps.others[:0]
	for _, o := range ps.obstacles {
		if o.entity != e {
			ps.others = append(ps.others, o.box)
		}
	}

	ps.current = e
	if !ps.controller.Advance(agent.Handle, &body, chased, ps.others, dt) {
		return
	}

	t.Position = body.Position
	vel.Value = body.Velocity
	if hasBox {
		syncBounds(t, bb)
	}

	st, _ := ps.controller.State(agent.Handle)
	agent.Mode = st.Mode()
	if aggr, ok := ecs.Get(w, e, component.AggressionComponent.Kind()); ok {
		aggr.AtSource = st.AtSource
	}
}

func (ps *PursuitSystem) register(w *ecs.World, e ecs.Entity, t *component.Transform) pursuit.Handle {
	home := t.Position
	if src, ok := ecs.Get(w, e, component.SourcePositionComponent.Kind()); ok {
		home = src.Position
	}
	speed := 0.0
	if s, ok := ecs.Get(w, e, component.SpeedComponent.Kind()); ok {
		speed = s.Value
	}
	aggr := pursuit.Global()
	if a, ok := ecs.Get(w, e, component.AggressionComponent.Kind()); ok {
		aggr = a.Range
	}
	h := ps.controller.Add(home, speed, aggr)
	ps.agents[h] = e
	ps.logger.Printf("PursuitSystem: registered entity %v home=%v speed=%v aggression=%v", e, home, speed, aggr)
	return h
}

// release frees controller slots of agents whose entity died or lost its
// PursuitAgent component.
func (ps *PursuitSystem) release(w *ecs.World) {
	for h, e := range ps.agents {
		if agent, ok := ecs.Get(w, e, component.PursuitAgentComponent.Kind()); ok && agent.Handle == h {
			continue
		}
		ps.controller.Remove(h)
		delete(ps.agents, h)
	}
}

func chasedState(w *ecs.World, player ecs.Entity) (pursuit.Chased, bool) {
	t, ok := ecs.Get(w, player, component.TransformComponent.Kind())
	if !ok {
		return pursuit.Chased{}, false
	}
	chased := pursuit.Chased{Position: t.Position}
	if bb, ok := ecs.Get(w, player, component.BoundingBoxComponent.Kind()); ok {
		chased.Bounds = bb.Rect
	}
	return chased, true
}
