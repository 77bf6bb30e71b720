// Package quadtree implements a region quadtree over axis-aligned boxes.
//
// A node keeps its boxes locally until it holds more than Capacity of them,
// then splits into four equal quadrants and pushes down every box that fits
// entirely inside one quadrant. Boxes that straddle a split line stay at the
// node for good. Retrieve returns candidates rather than exact overlaps.
package quadtree

import "github.com/milk9111/questmark/common"

const (
	DefaultCapacity  = 8
	DefaultMaxLevels = 4
)

// Quadrant order follows the cartesian numbering I..IV.
const (
	quadrantNE = iota
	quadrantNW
	quadrantSW
	quadrantSE
)

// Config tunes the split behaviour. Zero values fall back to the defaults.
type Config struct {
	Capacity  int `yaml:"capacity"`
	MaxLevels int `yaml:"max_levels"`
}

func (c Config) withDefaults() Config {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.MaxLevels <= 0 {
		c.MaxLevels = DefaultMaxLevels
	}
	return c
}

type QuadTree struct {
	cfg      Config
	level    int
	bounds   common.Rect
	boxes    []common.Rect
	children [4]*QuadTree
}

// New returns an empty root node covering bounds with the default config.
func New(bounds common.Rect) *QuadTree {
	return NewWithConfig(bounds, Config{})
}

func NewWithConfig(bounds common.Rect, cfg Config) *QuadTree {
	return newNode(0, bounds, cfg.withDefaults())
}

func newNode(level int, bounds common.Rect, cfg Config) *QuadTree {
	return &QuadTree{
		cfg:    cfg,
		level:  level,
		bounds: bounds,
	}
}

func (q *QuadTree) Bounds() common.Rect {
	return q.bounds
}

func (q *QuadTree) Level() int {
	return q.level
}

func (q *QuadTree) split() bool {
	return q.children[0] != nil
}

// Clear drops every stored box and discards all children.
func (q *QuadTree) Clear() {
	q.boxes = q.boxes[:0]
	for i, child := range q.children {
		if child != nil {
			child.Clear()
			q.children[i] = nil
		}
	}
}

func (q *QuadTree) subdivide() {
	x := q.bounds.X
	y := q.bounds.Y
	w := q.bounds.Width / 2
	h := q.bounds.Height / 2
	next := q.level + 1

	q.children[quadrantNE] = newNode(next, common.NewRect(x+w, y+h, w, h), q.cfg)
	q.children[quadrantNW] = newNode(next, common.NewRect(x, y+h, w, h), q.cfg)
	q.children[quadrantSW] = newNode(next, common.NewRect(x, y, w, h), q.cfg)
	q.children[quadrantSE] = newNode(next, common.NewRect(x+w, y, w, h), q.cfg)
}

// quadrant returns the child that fully contains box, or -1 when the node
// has not split or the box straddles a split line.
func (q *QuadTree) quadrant(box common.Rect) int {
	if !q.split() {
		return -1
	}
	for i, child := range q.children {
		if child.bounds.Contains(box) {
			return i
		}
	}
	return -1
}

// Insert stores box in the deepest node whose region fully contains it.
func (q *QuadTree) Insert(box common.Rect) {
	if i := q.quadrant(box); i >= 0 {
		q.children[i].Insert(box)
		return
	}

	q.boxes = append(q.boxes, box)
	if len(q.boxes) <= q.cfg.Capacity || q.level >= q.cfg.MaxLevels {
		return
	}

	if !q.split() {
		q.subdivide()
	}
	kept := q.boxes[:0]
	for _, b := range q.boxes {
		if i := q.quadrant(b); i >= 0 {
			q.children[i].Insert(b)
			continue
		}
		kept = append(kept, b)
	}
	q.boxes = kept
}

// Retrieve appends to dst every box that could overlap target: the boxes held
// at this node plus the retrieval of the quadrant containing target. A target
// that straddles split lines descends into every quadrant it overlaps.
// Callers still have to test each candidate for overlap.
func (q *QuadTree) Retrieve(dst []common.Rect, target common.Rect) []common.Rect {
	if i := q.quadrant(target); i >= 0 {
		dst = q.children[i].Retrieve(dst, target)
	} else if q.split() {
		for _, child := range q.children {
			if child.bounds.Overlaps(target) {
				dst = child.Retrieve(dst, target)
			}
		}
	}
	return append(dst, q.boxes...)
}

// Len returns the number of boxes stored in the tree.
func (q *QuadTree) Len() int {
	n := len(q.boxes)
	for _, child := range q.children {
		if child != nil {
			n += child.Len()
		}
	}
	return n
}

// Depth returns the deepest level created below and including this node.
func (q *QuadTree) Depth() int {
	depth := q.level
	for _, child := range q.children {
		if child == nil {
			continue
		}
		if d := child.Depth(); d > depth {
			depth = d
		}
	}
	return depth
}
