package queue

import (
	"container/heap"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Stats struct {
	Pending   int `json:"pending"`
	InFlight  int `json:"in_flight"`
	Queued    int `json:"queued"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Queue is safe for concurrent use. It is drained once it is empty and no
// taken task is still running; both counts are guarded by the same mutex
// so a running task that is about to add children keeps the queue open.
type Queue struct {
	mu        sync.Mutex
	cond      *sync.Cond
	items     taskHeap
	seq       uint64
	inFlight  int
	stopped   bool
	queued    int
	completed int
	failed    int
}

func New() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *Queue) Add(t Task) uuid.UUID {
	q.mu.Lock()
	defer q.mu.Unlock()

	e := &entry{
		id:       uuid.New(),
		task:     t,
		priority: t.Priority(),
		seq:      q.seq,
		queuedAt: time.Now(),
	}
	q.seq++
	q.queued++

	heap.Push(&q.items, e)
	q.cond.Signal()

	return e.id
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Pending returns the queued tasks in the order they would be taken.
func (q *Queue) Pending() []Task {
	q.mu.Lock()
	sorted := make(taskHeap, len(q.items))
	copy(sorted, q.items)
	q.mu.Unlock()

	sort.Sort(sorted)

	tasks := make([]Task, len(sorted))
	for i, e := range sorted {
		tasks[i] = e.task
	}

	return tasks
}

func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	return Stats{
		Pending:   len(q.items),
		InFlight:  q.inFlight,
		Queued:    q.queued,
		Completed: q.completed,
		Failed:    q.failed,
	}
}

// take blocks until a task is available. It reports false when the queue is
// drained or stopped.
func (q *Queue) take() (*entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.stopped {
		if q.inFlight == 0 {
			q.cond.Broadcast()
			return nil, false
		}
		q.cond.Wait()
	}

	if q.stopped {
		return nil, false
	}

	e := heap.Pop(&q.items).(*entry)
	q.inFlight++
	return e, true
}

func (q *Queue) finish(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.inFlight--
	if err != nil {
		q.failed++
	} else {
		q.completed++
	}

	if q.inFlight == 0 && len(q.items) == 0 {
		q.cond.Broadcast()
	}
}

// stop wakes every waiting worker and makes take return false. Tasks left in
// the queue are not run.
func (q *Queue) stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopped = true
	q.cond.Broadcast()
}
