package pursuit

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/questmark/common"
	"github.com/milk9111/questmark/pathfinding"
)

const tile = 32

func wall(x, y int) common.Rect {
	return common.NewRect(float64(x*tile), float64(y*tile), tile, tile)
}

func bodyAt(x, y float64) *Body {
	return &Body{
		Position: cp.Vector{X: x, Y: y},
		Bounds:   common.NewRect(x, y, 16, 16),
	}
}

func chasedAt(x, y float64) Chased {
	return Chased{
		Position: cp.Vector{X: x, Y: y},
		Bounds:   common.NewRect(x, y, 16, 16),
	}
}

// tick advances the agent and integrates its velocity the way the movement
// system does.
func tick(c *Controller, h Handle, b *Body, chased Chased, others []common.Rect, dt float64) {
	c.Advance(h, b, chased, others, dt)
	b.Position = b.Position.Add(b.Velocity.Mult(dt))
	b.Bounds = b.Bounds.At(b.Position.X, b.Position.Y)
}

func newController(w, h int, static []common.Rect) *Controller {
	c := NewController(pathfinding.Config{})
	c.SetMapData(w, h, tile, static)
	return c
}

func recordEvents(c *Controller) *[]Event {
	var events []Event
	c.OnEvent(func(ev Event) { events = append(events, ev) })
	return &events
}

func countKind(events []Event, kind EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func TestAggression(t *testing.T) {
	cases := []struct {
		in      string
		global  bool
		radius  float64
		wantErr bool
	}{
		{in: "global", global: true},
		{in: " Global ", global: true},
		{in: "-1", global: true},
		{in: "96", radius: 96},
		{in: "0", radius: 0},
		{in: "-5", wantErr: true},
		{in: "far", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			a, err := ParseAggression(c.in)
			if c.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", c.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.IsGlobal() != c.global {
				t.Fatalf("global = %v, want %v", a.IsGlobal(), c.global)
			}
			if r, ok := a.Radius(); ok && r != c.radius {
				t.Fatalf("radius = %v, want %v", r, c.radius)
			}
		})
	}

	if !Global().Within(1e9) {
		t.Fatalf("global aggression must cover any distance")
	}
	if !Finite(64).Within(64) || Finite(64).Within(64.5) {
		t.Fatalf("finite aggression must include its radius and nothing beyond")
	}
	if !FromRange(-1).IsGlobal() || FromRange(32).IsGlobal() {
		t.Fatalf("FromRange must map only -1 to global")
	}
}

func TestHandles(t *testing.T) {
	c := newController(4, 4, nil)
	a := c.Add(cp.Vector{}, 32, Global())
	b := c.Add(cp.Vector{X: 32}, 32, Global())
	if c.Len() != 2 {
		t.Fatalf("expected 2 agents, got %d", c.Len())
	}
	if !c.Remove(a) {
		t.Fatalf("expected remove of live handle to succeed")
	}
	if c.Remove(a) {
		t.Fatalf("expected second remove to fail")
	}
	reused := c.Add(cp.Vector{X: 64}, 32, Global())
	if _, ok := c.State(a); ok {
		t.Fatalf("stale handle must not resolve after its slot is reused")
	}
	if st, ok := c.State(reused); !ok || st.Home.X != 64 {
		t.Fatalf("expected reused slot to hold the new agent")
	}
	if _, ok := c.State(b); !ok {
		t.Fatalf("unrelated handle must stay valid")
	}
	if c.Advance(a, bodyAt(0, 0), chasedAt(0, 0), nil, 0.1) {
		t.Fatalf("Advance must reject a stale handle")
	}
	if (Handle{}).Valid() {
		t.Fatalf("zero handle must be invalid")
	}
}

func TestAdvanceWithoutMapData(t *testing.T) {
	c := NewController(pathfinding.Config{})
	h := c.Add(cp.Vector{}, 32, Global())
	if c.Advance(h, bodyAt(0, 0), chasedAt(64, 64), nil, 1) {
		t.Fatalf("Advance must not run before SetMapData")
	}
}

func TestSetMapDataRecomputesPeriod(t *testing.T) {
	c := NewController(pathfinding.Config{})
	h := c.Add(cp.Vector{}, 40, Global())
	c.SetMapData(8, 8, tile, nil)
	st, _ := c.State(h)
	if want := float64(tile) / (2 * 40); st.Period != want {
		t.Fatalf("period = %v, want %v", st.Period, want)
	}
	still := c.Add(cp.Vector{}, 0, Global())
	st, _ = c.State(still)
	if !math.IsInf(st.Period, 1) {
		t.Fatalf("a motionless agent should never replan, period=%v", st.Period)
	}
}

func TestGlobalAggressionAlwaysPursues(t *testing.T) {
	c := newController(20, 20, nil)
	h := c.Add(cp.Vector{}, 64, Global())
	body := bodyAt(0, 0)
	chased := chasedAt(608, 608)

	start := body.Position.Distance(chased.Position)
	for i := 0; i < 120; i++ {
		tick(c, h, body, chased, nil, 1.0/60)
	}
	st, _ := c.State(h)
	if st.Mode() != ModePursuing || st.Returning {
		t.Fatalf("expected pursuing, got %v", st.Mode())
	}
	if st.IdleEligible() {
		t.Fatalf("a pursuing agent must not be idle eligible")
	}
	if d := body.Position.Distance(chased.Position); d >= start {
		t.Fatalf("expected agent to close in, distance %v >= %v", d, start)
	}
}

func TestReturnsHomeAndMarksAtSource(t *testing.T) {
	c := newController(20, 20, []common.Rect{wall(10, 10)})
	events := recordEvents(c)
	home := cp.Vector{X: 70, Y: 64}
	h := c.Add(home, 64, Finite(64))
	body := bodyAt(home.X, home.Y)

	near := chasedAt(134, 64)
	for i := 0; i < 30; i++ {
		tick(c, h, body, near, nil, 1.0/60)
	}
	st, _ := c.State(h)
	if st.Mode() != ModePursuing || st.AtSource {
		t.Fatalf("expected pursuit while the target is in range")
	}
	if common.SamePoint(body.Position, home) {
		t.Fatalf("expected agent to leave home while pursuing")
	}

	far := chasedAt(600, 600)
	reached := false
	for i := 0; i < 600; i++ {
		tick(c, h, body, far, nil, 1.0/60)
		if st.AtSource {
			reached = true
			break
		}
	}
	if !reached {
		t.Fatalf("agent never got home, at %v", body.Position)
	}
	if !common.SamePoint(body.Position, home) {
		t.Fatalf("expected exact home position, got %v", body.Position)
	}
	if !st.IdleEligible() || st.Mode() != ModeReturning {
		t.Fatalf("expected idle eligible returning agent")
	}
	if countKind(*events, EventReturn) != 1 || countKind(*events, EventAtSource) != 1 {
		t.Fatalf("expected one return and one at_source event, got %v", *events)
	}

	// staying home keeps the agent still
	for i := 0; i < 60; i++ {
		tick(c, h, body, far, nil, 1.0/60)
	}
	if !common.SamePoint(body.Position, home) || body.Velocity != (cp.Vector{}) {
		t.Fatalf("expected agent to rest at home, pos=%v vel=%v", body.Position, body.Velocity)
	}
}

func TestTransitionDiscardsPlan(t *testing.T) {
	c := newController(20, 20, nil)
	h := c.Add(cp.Vector{}, 32, Finite(200))
	body := bodyAt(0, 0)
	for i := 0; i < 40; i++ {
		tick(c, h, body, chasedAt(160, 0), nil, 1.0/60)
	}
	st, _ := c.State(h)
	if len(st.Path) == 0 {
		t.Fatalf("expected a pursuit plan")
	}
	// a tick short enough not to trigger a replan
	st.Timer = 0
	c.Advance(h, body, chasedAt(600, 600), nil, 1e-6)
	if st.Mode() != ModeReturning {
		t.Fatalf("expected returning mode")
	}
	if len(st.Path) != 0 || body.Velocity != (cp.Vector{}) {
		t.Fatalf("expected pursuit plan to be dropped, path=%v vel=%v", st.Path, body.Velocity)
	}
}

func TestReturnToPursuitDiscardsPlan(t *testing.T) {
	c := newController(20, 20, nil)
	h := c.Add(cp.Vector{}, 32, Finite(100))
	body := bodyAt(160, 0)
	far := chasedAt(600, 600)
	for i := 0; i < 40; i++ {
		tick(c, h, body, far, nil, 1.0/60)
	}
	st, _ := c.State(h)
	if st.Mode() != ModeReturning {
		t.Fatalf("expected returning mode, got %v", st.Mode())
	}
	if len(st.Path) == 0 || body.Velocity == (cp.Vector{}) {
		t.Fatalf("expected a return plan in progress, path=%v vel=%v", st.Path, body.Velocity)
	}

	st.Timer = 0
	near := chasedAt(body.Position.X+20, body.Position.Y)
	c.Advance(h, body, near, nil, 1e-6)
	if st.Mode() != ModePursuing {
		t.Fatalf("expected pursuing mode")
	}
	if len(st.Path) != 0 || body.Velocity != (cp.Vector{}) {
		t.Fatalf("expected return plan to be dropped, path=%v vel=%v", st.Path, body.Velocity)
	}
	if st.AtSource {
		t.Fatalf("expected at-source to be cleared while pursuing")
	}
}

func TestReplanFrequency(t *testing.T) {
	const speed = 40.0
	c := newController(20, 20, nil)
	h := c.Add(cp.Vector{}, speed, Global())
	body := bodyAt(0, 0)

	clock := 0.0
	var times []float64
	c.OnEvent(func(ev Event) {
		if ev.Kind == EventReplan || ev.Kind == EventNoPath {
			times = append(times, clock)
		}
	})

	steps := []float64{1.0 / 60, 0.05, 0.3, 1.0 / 120, 0.45}
	for i := 0; i < 400; i++ {
		dt := steps[i%len(steps)]
		clock += dt
		target := chasedAt(float64(64+(i*7)%512), float64(64+(i*13)%512))
		tick(c, h, body, target, nil, dt)
	}

	period := float64(tile) / (2 * speed)
	if len(times) < 10 {
		t.Fatalf("expected repeated replans, got %d", len(times))
	}
	for i := 1; i < len(times); i++ {
		if gap := times[i] - times[i-1]; gap < period-1e-9 {
			t.Fatalf("replans %d and %d only %.4fs apart, period %.4fs", i-1, i, gap, period)
		}
	}
}

func TestNoPathLeavesAgentStill(t *testing.T) {
	var box []common.Rect
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx != 0 || dy != 0 {
				box = append(box, wall(3+dx, 3+dy))
			}
		}
	}
	c := newController(10, 10, box)
	events := recordEvents(c)
	h := c.Add(cp.Vector{X: 96, Y: 96}, 64, Global())
	body := bodyAt(96, 96)
	for i := 0; i < 60; i++ {
		tick(c, h, body, chasedAt(288, 288), nil, 1.0/60)
	}
	if countKind(*events, EventNoPath) == 0 {
		t.Fatalf("expected no_path events")
	}
	if !common.SamePoint(body.Position, cp.Vector{X: 96, Y: 96}) || body.Velocity != (cp.Vector{}) {
		t.Fatalf("expected enclosed agent to stay put, pos=%v vel=%v", body.Position, body.Velocity)
	}
}

func TestSameCellSkipsSearch(t *testing.T) {
	c := newController(10, 10, nil)
	events := recordEvents(c)
	h := c.Add(cp.Vector{}, 64, Global())
	body := bodyAt(32, 32)
	for i := 0; i < 30; i++ {
		tick(c, h, body, chasedAt(40, 36), nil, 1.0/60)
	}
	if countKind(*events, EventNoPath) != 0 {
		t.Fatalf("same-cell request must not reach the planner")
	}
	if countKind(*events, EventReplan) == 0 {
		t.Fatalf("expected a replan decision")
	}
	if body.Velocity != (cp.Vector{}) || !common.SamePoint(body.Position, cp.Vector{X: 32, Y: 32}) {
		t.Fatalf("expected agent to hold still, pos=%v vel=%v", body.Position, body.Velocity)
	}
}

func TestObstacleSelection(t *testing.T) {
	t.Run("other_agents_block", func(t *testing.T) {
		c := newController(5, 1, nil)
		events := recordEvents(c)
		h := c.Add(cp.Vector{}, 64, Global())
		body := bodyAt(0, 0)
		other := []common.Rect{common.NewRect(64, 0, 16, 16)}
		for i := 0; i < 30; i++ {
			tick(c, h, body, chasedAt(128, 0), other, 1.0/60)
		}
		if countKind(*events, EventNoPath) == 0 {
			t.Fatalf("expected another agent to block the corridor")
		}
	})

	t.Run("chased_ignored_while_pursuing", func(t *testing.T) {
		c := newController(5, 1, nil)
		events := recordEvents(c)
		h := c.Add(cp.Vector{}, 64, Global())
		body := bodyAt(0, 0)
		for i := 0; i < 30; i++ {
			tick(c, h, body, chasedAt(64, 0), nil, 1.0/60)
		}
		if countKind(*events, EventNoPath) != 0 {
			t.Fatalf("the chased entity must not block its own pursuit")
		}
	})

	t.Run("chased_blocks_return", func(t *testing.T) {
		c := newController(5, 1, nil)
		events := recordEvents(c)
		h := c.Add(cp.Vector{X: 128}, 64, Finite(10))
		body := bodyAt(0, 0)
		for i := 0; i < 30; i++ {
			tick(c, h, body, chasedAt(64, 0), nil, 1.0/60)
		}
		if countKind(*events, EventNoPath) == 0 {
			t.Fatalf("expected the chased entity to block the way home")
		}
	})
}

func TestMoveToward(t *testing.T) {
	cases := []struct {
		name    string
		pos     cp.Vector
		target  cp.Vector
		wantPos cp.Vector
		wantVel cp.Vector
		reached bool
	}{
		{"moving_right", cp.Vector{X: 0, Y: 0}, cp.Vector{X: 32, Y: 0}, cp.Vector{X: 0, Y: 0}, cp.Vector{X: 10, Y: 0}, false},
		{"moving_up_left", cp.Vector{X: 32, Y: 32}, cp.Vector{X: 0, Y: 0}, cp.Vector{X: 32, Y: 32}, cp.Vector{X: -10, Y: -10}, false},
		{"overshoot_snaps", cp.Vector{X: 31, Y: 0}, cp.Vector{X: 32, Y: 0}, cp.Vector{X: 32, Y: 0}, cp.Vector{}, true},
		{"one_axis_snaps", cp.Vector{X: 31, Y: 0}, cp.Vector{X: 32, Y: 32}, cp.Vector{X: 32, Y: 0}, cp.Vector{X: 0, Y: 10}, false},
		{"already_there", cp.Vector{X: 5, Y: 5}, cp.Vector{X: 5, Y: 5}, cp.Vector{X: 5, Y: 5}, cp.Vector{}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			pos := c.pos
			vel := cp.Vector{X: 99, Y: 99}
			reached := MoveToward(&pos, &vel, c.target, 10, 0.5)
			if pos != c.wantPos || vel != c.wantVel || reached != c.reached {
				t.Fatalf("got pos=%v vel=%v reached=%v, want pos=%v vel=%v reached=%v",
					pos, vel, reached, c.wantPos, c.wantVel, c.reached)
			}
		})
	}
}
