package pathfinding

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/questmark/common"
)

const tile = 32

func at(x, y int) cp.Vector {
	return cp.Vector{X: float64(x * tile), Y: float64(y * tile)}
}

func wall(x, y int) common.Rect {
	return common.NewRect(float64(x*tile), float64(y*tile), tile, tile)
}

func checkSteps(t *testing.T, a *AStar, start cp.Vector, path []cp.Vector) {
	t.Helper()
	prev := start
	for i := len(path) - 1; i >= 0; i-- {
		step := path[i]
		dx := math.Abs(step.X - prev.X)
		dy := math.Abs(step.Y - prev.Y)
		if dx > tile || dy > tile || (dx == 0 && dy == 0) {
			t.Fatalf("step %v -> %v is not a single grid move", prev, step)
		}
		if !a.inBounds(step.X, step.Y) {
			t.Fatalf("step %v is out of bounds", step)
		}
		if a.Blocked(step.X, step.Y) {
			t.Fatalf("step %v is blocked", step)
		}
		prev = step
	}
}

func TestFindPathOptimalOnOpenGrid(t *testing.T) {
	cases := []struct {
		name          string
		start, target cp.Vector
	}{
		{"straight", at(0, 0), at(7, 0)},
		{"diagonal", at(1, 1), at(6, 6)},
		{"mixed", at(0, 9), at(8, 2)},
		{"reverse", at(9, 9), at(2, 5)},
	}
	a := NewAStar(10, 10, tile, Config{})
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a.SetCollisionData(nil)
			path, ok := a.FindPath(c.start, c.target)
			if !ok {
				t.Fatalf("expected a path")
			}
			if path[0] != c.target {
				t.Fatalf("expected goal first, got %v", path[0])
			}
			checkSteps(t, a, c.start, path)
			got := PathCost(c.start, path)
			want := Distance(c.start, c.target)
			if math.Abs(got-want) > 1e-6 {
				t.Fatalf("path cost %.4f, want octile distance %.4f", got, want)
			}
		})
	}
}

func TestFindPathSameCell(t *testing.T) {
	a := NewAStar(4, 4, tile, Config{})
	a.SetCollisionData(nil)
	path, ok := a.FindPath(at(2, 2), at(2, 2))
	if !ok || len(path) != 0 {
		t.Fatalf("expected empty path for same cell, got %v ok=%v", path, ok)
	}
}

func TestFindPathAroundWall(t *testing.T) {
	a := NewAStar(10, 10, tile, Config{})
	var walls []common.Rect
	for y := 0; y < 9; y++ {
		walls = append(walls, wall(5, y))
	}
	a.SetCollisionData(walls)

	start, target := at(2, 2), at(8, 2)
	path, ok := a.FindPath(start, target)
	if !ok {
		t.Fatalf("expected a path through the gap at row 9")
	}
	checkSteps(t, a, start, path)
	found := false
	for _, p := range path {
		if p == at(5, 9) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected path to pass through the gap, got %v", path)
	}
}

func TestFindPathEnclosedTarget(t *testing.T) {
	a := NewAStar(9, 9, tile, Config{})
	var ring []common.Rect
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			ring = append(ring, wall(4+dx, 4+dy))
		}
	}
	a.SetCollisionData(ring)
	if path, ok := a.FindPath(at(0, 0), at(4, 4)); ok {
		t.Fatalf("expected no path into an enclosed cell, got %v", path)
	}
}

func TestCornerCutting(t *testing.T) {
	t.Run("both_flanks_blocked", func(t *testing.T) {
		a := NewAStar(3, 3, tile, Config{})
		a.SetCollisionData([]common.Rect{wall(1, 0), wall(0, 1)})
		if path, ok := a.FindPath(at(0, 0), at(1, 1)); ok {
			t.Fatalf("expected diagonal squeeze to be rejected, got %v", path)
		}
	})

	t.Run("one_flank_blocked", func(t *testing.T) {
		a := NewAStar(3, 3, tile, Config{})
		a.SetCollisionData([]common.Rect{wall(1, 0)})
		path, ok := a.FindPath(at(0, 0), at(1, 1))
		if !ok || len(path) != 1 || path[0] != at(1, 1) {
			t.Fatalf("expected a direct diagonal step, got %v ok=%v", path, ok)
		}
	})

	t.Run("detour", func(t *testing.T) {
		a := NewAStar(5, 5, tile, Config{})
		a.SetCollisionData([]common.Rect{wall(2, 1), wall(1, 2)})
		start, target := at(1, 1), at(2, 2)
		path, ok := a.FindPath(start, target)
		if !ok {
			t.Fatalf("expected a detour path")
		}
		if len(path) < 2 {
			t.Fatalf("expected the direct diagonal to be pruned, got %v", path)
		}
		checkSteps(t, a, start, path)
		if PathCost(start, path) <= Distance(start, target) {
			t.Fatalf("detour should cost more than the direct diagonal")
		}
	})
}

func TestDynamicObstacleBlocksPartiallyCoveredCell(t *testing.T) {
	a := NewAStar(3, 1, tile, Config{})
	// an agent box that only covers part of the middle cell
	a.SetCollisionData([]common.Rect{common.NewRect(40, 4, 8, 8)})
	if !a.Blocked(32, 0) {
		t.Fatalf("expected partially covered cell to be blocked")
	}
	if _, ok := a.FindPath(at(0, 0), at(2, 0)); ok {
		t.Fatalf("expected corridor to be blocked by the agent box")
	}
}

func TestCollisionDataIsReplaced(t *testing.T) {
	a := NewAStar(3, 1, tile, Config{})
	a.SetCollisionData([]common.Rect{wall(1, 0)})
	if _, ok := a.FindPath(at(0, 0), at(2, 0)); ok {
		t.Fatalf("expected corridor to be blocked")
	}
	a.SetCollisionData(nil)
	if _, ok := a.FindPath(at(0, 0), at(2, 0)); !ok {
		t.Fatalf("expected stale collision data to be discarded")
	}
}

func TestMaxExpansions(t *testing.T) {
	a := NewAStar(30, 30, tile, Config{MaxExpansions: 10})
	a.SetCollisionData(nil)
	if _, ok := a.FindPath(at(0, 0), at(29, 29)); ok {
		t.Fatalf("expected the expansion cap to stop the search")
	}
	if a.Expanded() > 11 {
		t.Fatalf("expanded %d nodes past the cap", a.Expanded())
	}
}

func TestFindPathWithin(t *testing.T) {
	a := NewAStar(6, 6, tile, Config{})
	a.SetCollisionData([]common.Rect{wall(4, 4)})
	if _, ok := a.FindPath(at(0, 0), at(4, 4)); ok {
		t.Fatalf("expected exact search into a wall to fail")
	}
	path, ok := a.FindPathWithin(at(0, 0), at(4, 4), tile)
	if !ok {
		t.Fatalf("expected tolerant search to stop next to the wall")
	}
	last := path[0]
	if math.Abs(last.X-128) > tile || math.Abs(last.Y-128) > tile {
		t.Fatalf("tolerant path ended at %v, too far from target", last)
	}
}

func TestBlockedAcrossQuadtreeSplit(t *testing.T) {
	a := NewAStar(24, 16, tile, Config{})
	boxes := make([]common.Rect, 0, 9)
	for i := 0; i < 8; i++ {
		boxes = append(boxes, common.NewRect(float64(i*4+1), 1, 2, 2))
	}
	agent := common.NewRect(50, 4, 24, 24)
	boxes = append(boxes, agent)
	a.SetCollisionData(boxes)

	if a.index.Depth() != 4 {
		t.Fatalf("expected the index to reach depth 4, got %d", a.index.Depth())
	}
	// cells 1 and 2 straddle the x=48 split of the level 3 node
	for _, x := range []float64{32, 64} {
		if !a.Blocked(x, 0) {
			t.Fatalf("cell at x=%v overlaps agent box %v but is reported free", x, agent)
		}
	}
	if a.Blocked(96, 0) {
		t.Fatalf("expected cell at x=96 to be free")
	}

	path, ok := a.FindPath(at(0, 2), at(4, 0))
	if !ok {
		t.Fatalf("expected a path around the agent")
	}
	checkSteps(t, a, at(0, 2), path)
	for _, p := range path {
		if p == at(1, 0) || p == at(2, 0) {
			t.Fatalf("path %v walks through the agent box", path)
		}
	}
}
