package elevqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dinaMadelen/elevdispatch/internal/elevcar"
)

const TEST_DELAY = 100 * time.Millisecond

func TestFIFO(t *testing.T) {
	q := New()
	n := 50
	for i := 0; i < n; i++ {
		q.Enqueue(elevcar.Request{Id: fmt.Sprint(i), TargetFloor: i})
	}
	if q.Len() != n {
		t.Errorf("Len() = %d, expected %d", q.Len(), n)
	}

	for i := 0; i < n; i++ {
		req, err := q.Dequeue(context.Background())
		if err != nil {
			t.Fatalf("Dequeue() error = %v", err)
		}
		if req.TargetFloor != i {
			t.Errorf("Dequeue() #%d = floor %d, expected floor %d", i, req.TargetFloor, i)
		}
	}
}

func TestEnqueueFront(t *testing.T) {
	q := New()
	q.Enqueue(elevcar.Request{TargetFloor: 1})
	q.EnqueueFront(elevcar.Request{TargetFloor: 0})

	first, _ := q.Dequeue(context.Background())
	second, _ := q.Dequeue(context.Background())
	if first.TargetFloor != 0 || second.TargetFloor != 1 {
		t.Errorf("Dequeue() order = %d, %d, expected 0, 1", first.TargetFloor, second.TargetFloor)
	}
}

func TestDequeueBlocksUntilEnqueue(t *testing.T) {
	q := New()
	got := make(chan elevcar.Request, 1)

	go func() {
		req, err := q.Dequeue(context.Background())
		if err == nil {
			got <- req
		}
	}()

	select {
	case <-got:
		t.Fatalf("Dequeue() returned on an empty queue")
	case <-time.After(TEST_DELAY):
	}

	q.Enqueue(elevcar.Request{TargetFloor: 4})
	select {
	case req := <-got:
		if req.TargetFloor != 4 {
			t.Errorf("Dequeue() = floor %d, expected 4", req.TargetFloor)
		}
	case <-time.After(TEST_DELAY):
		t.Errorf("Dequeue() did not wake up after Enqueue()")
	}
}

func TestDequeueCancelled(t *testing.T) {
	q := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		_, err := q.Dequeue(ctx)
		done <- err
	}()

	time.Sleep(TEST_DELAY / 2)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Dequeue() error = %v, expected context.Canceled", err)
		}
	case <-time.After(TEST_DELAY):
		t.Errorf("Dequeue() did not return after cancel")
	}
}

// Every item goes to exactly one of several concurrent consumers
func TestExactlyOnceDelivery(t *testing.T) {
	q := New()
	n := 1000
	consumers := 8

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	seen := make(map[string]int)
	var wg sync.WaitGroup
	var received sync.WaitGroup
	received.Add(n)

	for c := 0; c < consumers; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				req, err := q.Dequeue(ctx)
				if err != nil {
					return
				}
				mu.Lock()
				seen[req.Id]++
				mu.Unlock()
				received.Done()
			}
		}()
	}

	for i := 0; i < n; i++ {
		q.Enqueue(elevcar.Request{Id: fmt.Sprint(i)})
	}
	received.Wait()
	cancel()
	wg.Wait()

	if len(seen) != n {
		t.Errorf("received %d distinct requests, expected %d", len(seen), n)
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("request %s delivered %d times", id, count)
		}
	}
}
