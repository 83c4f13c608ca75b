package queue

import (
	"time"

	"github.com/google/uuid"
)

type entry struct {
	id       uuid.UUID
	task     Task
	priority int
	seq      uint64
	queuedAt time.Time
}

// taskHeap orders higher priorities first and keeps insertion order among
// equal priorities.
type taskHeap []*entry

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}

	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) {
	*h = append(*h, x.(*entry))
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
