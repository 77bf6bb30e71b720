// Package pathfinding plans paths over an 8-connected tile grid with A*.
//
// Obstacles are arbitrary boxes in world units. A cell is walkable when its
// tile-sized box overlaps none of them; candidate obstacles for each test come
// from a quadtree rebuilt by SetCollisionData.
package pathfinding

import (
	"container/heap"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/questmark/common"
	"github.com/milk9111/questmark/quadtree"
)

const (
	straightCost = 1.0
	diagonalCost = math.Sqrt2
)

// Config tunes a planner. The zero value searches until the open set is
// exhausted and uses the default quadtree shape.
type Config struct {
	// MaxExpansions caps the number of nodes popped per search. Zero means
	// no cap.
	MaxExpansions int             `yaml:"max_expansions"`
	Quadtree      quadtree.Config `yaml:"quadtree"`
}

// AStar plans paths between tile positions. It keeps no state between
// searches other than the collision data, which must be refreshed before
// every FindPath call.
type AStar struct {
	mapWidth  int
	mapHeight int
	tile      float64
	cfg       Config

	index      *quadtree.QuadTree
	candidates []common.Rect

	nodes     nodeArena
	open      nodeHeap
	openSet   map[cell]NodeID
	closedSet map[cell]NodeID

	expanded int
}

// NewAStar returns a planner for a map of mapWidth by mapHeight tiles of
// tileSize world units.
func NewAStar(mapWidth, mapHeight, tileSize int, cfg Config) *AStar {
	a := &AStar{
		mapWidth:  mapWidth,
		mapHeight: mapHeight,
		tile:      float64(tileSize),
		cfg:       cfg,
		openSet:   make(map[cell]NodeID, 128),
		closedSet: make(map[cell]NodeID, 128),
	}
	a.open.arena = &a.nodes
	a.index = quadtree.NewWithConfig(a.Bounds(), cfg.Quadtree)
	return a
}

// Bounds returns the map region in world units.
func (a *AStar) Bounds() common.Rect {
	return common.NewRect(0, 0, float64(a.mapWidth)*a.tile, float64(a.mapHeight)*a.tile)
}

// TileSize returns the grid step in world units.
func (a *AStar) TileSize() float64 {
	return a.tile
}

// Expanded returns how many nodes the last search popped.
func (a *AStar) Expanded() int {
	return a.expanded
}

// SetCollisionData replaces the obstacle set used by the next search.
func (a *AStar) SetCollisionData(boxes []common.Rect) {
	a.index.Clear()
	for _, b := range boxes {
		a.index.Insert(b)
	}
}

// Blocked reports whether the tile whose minimum corner is at x, y overlaps
// any obstacle.
func (a *AStar) Blocked(x, y float64) bool {
	box := common.NewRect(x, y, a.tile, a.tile)
	a.candidates = a.index.Retrieve(a.candidates[:0], box)
	for _, c := range a.candidates {
		if box.Overlaps(c) {
			return true
		}
	}
	return false
}

func (a *AStar) inBounds(x, y float64) bool {
	maxX := float64(a.mapWidth-1) * a.tile
	maxY := float64(a.mapHeight-1) * a.tile
	return x >= 0 && x <= maxX && y >= 0 && y <= maxY
}

func (a *AStar) cellOf(p cp.Vector) cell {
	return cell{
		x: int(math.Floor(p.X/a.tile + 0.5)),
		y: int(math.Floor(p.Y/a.tile + 0.5)),
	}
}

func (a *AStar) positionOf(c cell) cp.Vector {
	return cp.Vector{X: float64(c.x) * a.tile, Y: float64(c.y) * a.tile}
}

// FindPath searches from start to target, both given as tile positions. The
// returned steps run from target back to the first step after start, so
// callers consume them from the tail. ok is false when target is
// unreachable.
func (a *AStar) FindPath(start, target cp.Vector) (path []cp.Vector, ok bool) {
	goal := a.cellOf(target)
	return a.search(start, target, func(n *Node) bool {
		return n.cell == goal
	})
}

// FindPathWithin is FindPath but succeeds as soon as a popped node lies within
// tolerance world units of target on both axes.
func (a *AStar) FindPathWithin(start, target cp.Vector, tolerance float64) ([]cp.Vector, bool) {
	goal := a.positionOf(a.cellOf(target))
	return a.search(start, target, func(n *Node) bool {
		return math.Abs(n.Position.X-goal.X) <= tolerance &&
			math.Abs(n.Position.Y-goal.Y) <= tolerance
	})
}

func (a *AStar) reset() {
	a.nodes.reset()
	a.open.reset()
	clear(a.openSet)
	clear(a.closedSet)
	a.expanded = 0
}

func (a *AStar) search(start, target cp.Vector, done func(n *Node) bool) ([]cp.Vector, bool) {
	a.reset()
	defer a.nodes.reset()

	target = a.positionOf(a.cellOf(target))
	startCell := a.cellOf(start)
	startPos := a.positionOf(startCell)

	src := a.nodes.alloc(startPos, startCell, noParent, 0, diagonal(startPos, target))
	heap.Push(&a.open, src)
	a.openSet[startCell] = src

	for a.open.Len() > 0 {
		currID := heap.Pop(&a.open).(NodeID)
		curr := *a.nodes.at(currID)
		if a.openSet[curr.cell] == currID {
			delete(a.openSet, curr.cell)
		}

		if done(&curr) {
			return a.nodes.backtrace(currID), true
		}

		// a cheaper copy of this cell was already expanded
		if prev, seen := a.closedSet[curr.cell]; seen && a.nodes.at(prev).F <= curr.F {
			continue
		}
		a.closedSet[curr.cell] = currID

		a.expanded++
		if a.cfg.MaxExpansions > 0 && a.expanded > a.cfg.MaxExpansions {
			return nil, false
		}

		a.expand(currID, curr, target)
	}
	return nil, false
}

func (a *AStar) expand(currID NodeID, curr Node, target cp.Vector) {
	for i := 0; i < 9; i++ {
		if i == 4 {
			continue
		}
		dx := i%3 - 1
		dy := i/3 - 1
		x := curr.Position.X + float64(dx)*a.tile
		y := curr.Position.Y + float64(dy)*a.tile

		if !a.inBounds(x, y) {
			continue
		}
		if a.Blocked(x, y) {
			continue
		}
		// no squeezing between two blocked orthogonal neighbours
		if dx != 0 && dy != 0 && a.Blocked(x, curr.Position.Y) && a.Blocked(curr.Position.X, y) {
			continue
		}

		pos := cp.Vector{X: x, Y: y}
		c := cell{x: curr.cell.x + dx, y: curr.cell.y + dy}
		g := curr.G + diagonal(curr.Position, pos)
		h := diagonal(pos, target)
		f := g + h

		if id, ok := a.openSet[c]; ok && a.nodes.at(id).F < f {
			continue
		}
		if id, ok := a.closedSet[c]; ok && a.nodes.at(id).F <= f {
			continue
		}

		id := a.nodes.alloc(pos, c, currID, g, h)
		heap.Push(&a.open, id)
		a.openSet[c] = id
	}
}

// diagonal is the octile distance between two positions.
func diagonal(a, b cp.Vector) float64 {
	dx := math.Abs(a.X - b.X)
	dy := math.Abs(a.Y - b.Y)
	return straightCost*(dx+dy) + (diagonalCost-2*straightCost)*math.Min(dx, dy)
}

// PathCost sums the octile step costs from start through every step of a
// goal-first path.
func PathCost(start cp.Vector, path []cp.Vector) float64 {
	cost := 0.0
	prev := start
	for i := len(path) - 1; i >= 0; i-- {
		cost += diagonal(prev, path[i])
		prev = path[i]
	}
	return cost
}

// Distance is the octile distance used as the search heuristic.
func Distance(a, b cp.Vector) float64 {
	return diagonal(a, b)
}
