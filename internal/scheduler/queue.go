package scheduler

import (
	"sync"

	"github.com/amolmagar-dev/jobsuitex/internal/metrics"
)

// queue is a FIFO of campaign ids awaiting a run. Manual triggers jump
// the line via pushFront; a campaign appears at most once.
type queue struct {
	mu  sync.Mutex
	ids []string
	set map[string]struct{}
}

func newQueue() *queue {
	return &queue{set: make(map[string]struct{})}
}

// Push appends the campaign unless it is already queued. Reports
// whether the id was added.
func (q *queue) Push(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.set[id]; ok {
		return false
	}
	q.ids = append(q.ids, id)
	q.set[id] = struct{}{}
	metrics.QueueDepth.Set(float64(len(q.ids)))
	return true
}

// PushFront inserts the campaign at the head so it runs next. Reports
// whether the id was added; an already queued campaign keeps its slot.
func (q *queue) PushFront(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.set[id]; ok {
		return false
	}
	q.ids = append([]string{id}, q.ids...)
	q.set[id] = struct{}{}
	metrics.QueueDepth.Set(float64(len(q.ids)))
	return true
}

// Pop removes and returns the head of the queue.
func (q *queue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.ids) == 0 {
		return "", false
	}
	id := q.ids[0]
	q.ids = q.ids[1:]
	delete(q.set, id)
	metrics.QueueDepth.Set(float64(len(q.ids)))
	return id, true
}

// Remove drops a queued-but-unstarted campaign. Reports whether it was
// present.
func (q *queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.set[id]; !ok {
		return false
	}
	for i, queued := range q.ids {
		if queued == id {
			q.ids = append(q.ids[:i], q.ids[i+1:]...)
			break
		}
	}
	delete(q.set, id)
	metrics.QueueDepth.Set(float64(len(q.ids)))
	return true
}

func (q *queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ids)
}
