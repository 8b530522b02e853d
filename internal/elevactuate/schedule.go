package elevactuate

import (
	"context"
	"sync"

	"github.com/dinaMadelen/elevdispatch/internal/elevcar"
)

type Task struct {
	Car         elevcar.Car
	TargetFloor int
	// Done is called with the result of the move, or with ErrScheduleStopped
	// if the schedule shut down before the task ran. May be nil.
	Done func(err error)
}

// Schedule runs actuation tasks one at a time on its own goroutine. Each
// worker owns one, so a slow move only delays that worker's later moves.
type Schedule struct {
	name     string
	actuator Actuator
	tasks    chan Task

	mu      sync.Mutex
	running bool
}

func NewSchedule(name string, actuator Actuator, size int) *Schedule {
	if size < 1 {
		size = 1
	}
	return &Schedule{
		name:     name,
		actuator: actuator,
		tasks:    make(chan Task, size),
	}
}

func (s *Schedule) Start(ctx context.Context, waitGroup *sync.WaitGroup) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		Log.Error().Str("schedule", s.name).Msg("Schedule already running")
		return
	}
	s.running = true
	s.mu.Unlock()

	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		for {
			//checked first so a stopped schedule never picks up another task
			if ctx.Err() != nil {
				s.stop()
				return
			}
			select {
			case <-ctx.Done():
				s.stop()
				return
			case task := <-s.tasks:
				s.run(ctx, task)
			}
		}
	}()
}

// Submit queues a task without blocking
func (s *Schedule) Submit(task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrScheduleStopped
	}
	select {
	case s.tasks <- task:
		return nil
	default:
		return ErrScheduleFull
	}
}

func (s *Schedule) run(ctx context.Context, task Task) {
	Log.Debug().Str("schedule", s.name).Int("elevator", task.Car.Id).Msgf("Moving elevator to floor %d", task.TargetFloor)
	err := s.actuator.Move(ctx, task.Car, task.TargetFloor)
	if err != nil {
		Log.Warn().Err(err).Str("schedule", s.name).Int("elevator", task.Car.Id).Msg("Actuation failed")
	}
	if task.Done != nil {
		task.Done(err)
	}
}

func (s *Schedule) stop() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	s.drain()
	Log.Debug().Str("schedule", s.name).Msg("Schedule has been signaled to stop")
}

func (s *Schedule) drain() {
	for {
		select {
		case task := <-s.tasks:
			if task.Done != nil {
				task.Done(ErrScheduleStopped)
			}
		default:
			return
		}
	}
}
