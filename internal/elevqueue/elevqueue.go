package elevqueue

import (
	"container/list"
	"context"
	"sync"

	"github.com/dinaMadelen/elevdispatch/internal/elevcar"
)

// Queue is an unbounded FIFO of pending requests shared by every worker.
// Enqueue never blocks. Dequeue blocks until an item is available or the
// context is cancelled, and each item is handed to exactly one caller.
type Queue struct {
	mu       sync.Mutex
	items    *list.List
	notEmpty chan struct{}
}

func New() *Queue {
	return &Queue{
		items:    list.New(),
		notEmpty: make(chan struct{}, 1),
	}
}

func (q *Queue) Enqueue(req elevcar.Request) {
	q.mu.Lock()
	q.items.PushBack(req)
	q.mu.Unlock()
	q.signal()
}

// EnqueueFront puts req ahead of everything already queued
func (q *Queue) EnqueueFront(req elevcar.Request) {
	q.mu.Lock()
	q.items.PushFront(req)
	q.mu.Unlock()
	q.signal()
}

func (q *Queue) Dequeue(ctx context.Context) (elevcar.Request, error) {
	for {
		q.mu.Lock()
		if front := q.items.Front(); front != nil {
			req := q.items.Remove(front).(elevcar.Request)
			more := q.items.Len() > 0
			q.mu.Unlock()
			if more {
				//pass the wakeup on to the next waiter
				q.signal()
			}
			return req, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return elevcar.Request{}, ctx.Err()
		case <-q.notEmpty:
		}
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

func (q *Queue) signal() {
	select {
	case q.notEmpty <- struct{}{}:
	default:
	}
}
