package engine

import (
	"context"
	"sync"
)

// JobQueue is an unbounded FIFO safe for many pushers and poppers. Each item
// is handed to exactly one Pop.
type JobQueue struct {
	mu    sync.Mutex
	items []QueueItem

	// notify wakes a blocked Pop; one pending signal is enough since Pop
	// passes it on while items remain
	notify chan struct{}
}

func NewJobQueue() *JobQueue {
	return &JobQueue{notify: make(chan struct{}, 1)}
}

// Push appends item and never blocks.
func (q *JobQueue) Push(item QueueItem) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	q.signal()
}

// Pop removes the head, blocking until one exists or ctx ends.
func (q *JobQueue) Pop(ctx context.Context) (QueueItem, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items[0] = QueueItem{}
			q.items = q.items[1:]
			more := len(q.items) > 0
			q.mu.Unlock()

			if more {
				q.signal()
			}
			return item, nil
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-ctx.Done():
			return QueueItem{}, ctx.Err()
		}
	}
}

func (q *JobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *JobQueue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
		// Signal already pending
	}
}
