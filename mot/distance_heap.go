package mot

import "github.com/google/uuid"

// candidate is a detection paired with the nearest known track
type candidate[B Blob[B]] struct {
	detection B
	trackID   uuid.UUID
	distance  float64
}

// distanceHeap is a min-heap by distance. The heap routines follow container/heap
// but work on concrete candidates so callers do not need type assertions.
type distanceHeap[B Blob[B]] []*candidate[B]

func (h distanceHeap[B]) Len() int           { return len(h) }
func (h distanceHeap[B]) Less(i, j int) bool { return h[i].distance < h[j].distance }
func (h distanceHeap[B]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

// Push pushes the element x onto the heap.
func (h *distanceHeap[B]) Push(x *candidate[B]) {
	*h = append(*h, x)
	h.up(h.Len() - 1)
}

// Pop removes and returns the nearest candidate.
func (h *distanceHeap[B]) Pop() *candidate[B] {
	n := h.Len() - 1
	h.Swap(0, n)
	h.down(0, n)
	last := (*h)[n]
	*h = (*h)[:n]
	return last
}

func (h distanceHeap[B]) up(j int) {
	for {
		i := (j - 1) / 2
		if i == j || !h.Less(j, i) {
			break
		}
		h.Swap(i, j)
		j = i
	}
}

func (h distanceHeap[B]) down(i0, n int) {
	i := i0
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 {
			break
		}
		j := j1
		if j2 := j1 + 1; j2 < n && h.Less(j2, j1) {
			j = j2
		}
		if !h.Less(j, i) {
			break
		}
		h.Swap(i, j)
		i = j
	}
}
