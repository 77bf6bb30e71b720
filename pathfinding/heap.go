package pathfinding

// nodeHeap is a binary min-heap of arena ids ordered by F score.
type nodeHeap struct {
	ids   []NodeID
	arena *nodeArena
}

func (h nodeHeap) Len() int { return len(h.ids) }

func (h nodeHeap) Less(i, j int) bool {
	return h.arena.at(h.ids[i]).F < h.arena.at(h.ids[j]).F
}

func (h nodeHeap) Swap(i, j int) { h.ids[i], h.ids[j] = h.ids[j], h.ids[i] }

func (h *nodeHeap) Push(x any) {
	h.ids = append(h.ids, x.(NodeID))
}

func (h *nodeHeap) Pop() any {
	old := h.ids
	n := len(old)
	id := old[n-1]
	h.ids = old[:n-1]
	return id
}

func (h *nodeHeap) reset() {
	h.ids = h.ids[:0]
}
