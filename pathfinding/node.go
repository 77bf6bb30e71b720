package pathfinding

import "github.com/jakecoffman/cp"

// NodeID addresses a Node inside the search arena.
type NodeID int32

const noParent NodeID = -1

// cell is a position quantized to the tile grid. Two nodes with the same cell
// describe the same search state.
type cell struct {
	x int
	y int
}

// Node is one search state: a grid cell, the node it was reached from, and
// its A* scores where F = G + H.
type Node struct {
	Position cp.Vector
	Parent   NodeID
	G        float64
	H        float64
	F        float64

	cell cell
}

// nodeArena owns every Node created during one search. Parent links are
// indices into the arena, so the whole backtrace chain is released at once
// by reset.
type nodeArena struct {
	nodes []Node
}

func (a *nodeArena) alloc(pos cp.Vector, c cell, parent NodeID, g, h float64) NodeID {
	a.nodes = append(a.nodes, Node{
		Position: pos,
		Parent:   parent,
		G:        g,
		H:        h,
		F:        g + h,
		cell:     c,
	})
	return NodeID(len(a.nodes) - 1)
}

func (a *nodeArena) at(id NodeID) *Node {
	return &a.nodes[id]
}

func (a *nodeArena) reset() {
	a.nodes = a.nodes[:0]
}

func (a *nodeArena) len() int {
	return len(a.nodes)
}

// backtrace walks parent links from id and returns the positions of every
// non-root node, goal first.
func (a *nodeArena) backtrace(id NodeID) []cp.Vector {
	n := 0
	for cur := id; a.at(cur).Parent != noParent; cur = a.at(cur).Parent {
		n++
	}
	path := make([]cp.Vector, 0, n)
	for cur := id; a.at(cur).Parent != noParent; cur = a.at(cur).Parent {
		path = append(path, a.at(cur).Position)
	}
	return path
}
