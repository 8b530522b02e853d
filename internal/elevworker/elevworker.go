package elevworker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dinaMadelen/elevdispatch/internal/elevactuate"
	"github.com/dinaMadelen/elevdispatch/internal/elevcar"
	"github.com/dinaMadelen/elevdispatch/internal/elevlock"
	"github.com/dinaMadelen/elevdispatch/internal/elevqueue"
	"github.com/dinaMadelen/elevdispatch/internal/elevselect"
	"github.com/dinaMadelen/elevdispatch/internal/elevstore"
	"github.com/dinaMadelen/elevdispatch/internal/logger"
)

var Log = logger.GetLogger()

const (
	DEFAULT_WORKERS        = 3
	DEFAULT_REQUEUE_DELAY  = 500 * time.Millisecond
	DEFAULT_MAX_ATTEMPTS   = 20
	DEFAULT_RESELECT_LIMIT = 2
	DEFAULT_SCHEDULE_SIZE  = 16
)

var ErrNoEligibleCar = errors.New("no eligible elevator")

type Options struct {
	Workers      int
	RequeueDelay time.Duration
	// MaxAttempts caps how often one call is requeued before it is given up.
	// Zero means never give up.
	MaxAttempts int
	// ReselectLimit is how many fresh snapshots a worker takes when every
	// candidate went stale between snapshot and lock
	ReselectLimit int
	ScheduleSize  int
	// OnOutcome, if set, is called once per processed request. It runs on
	// worker and schedule goroutines and must not block.
	OnOutcome func(Outcome)
}

func DefaultOptions() Options {
	return Options{
		Workers:       DEFAULT_WORKERS,
		RequeueDelay:  DEFAULT_REQUEUE_DELAY,
		MaxAttempts:   DEFAULT_MAX_ATTEMPTS,
		ReselectLimit: DEFAULT_RESELECT_LIMIT,
		ScheduleSize:  DEFAULT_SCHEDULE_SIZE,
	}
}

type OutcomeKind int

const (
	Assigned OutcomeKind = iota
	Selected
	Requeued
	Dropped
	Skipped
)

func (ok OutcomeKind) String() string {
	switch ok {
	case Assigned:
		return "Assigned"
	case Selected:
		return "Selected"
	case Requeued:
		return "Requeued"
	case Dropped:
		return "Dropped"
	case Skipped:
		return "Skipped"
	default:
		return "Undefined"
	}
}

type Outcome struct {
	Kind       OutcomeKind
	Request    elevcar.Request
	ElevatorId int
	Worker     int
	Err        error
}

// Pool is a fixed set of workers draining one queue. Each worker owns an
// actuation schedule, so moves never block the worker loop.
type Pool struct {
	queue    *elevqueue.Queue
	store    elevstore.Store
	locks    *elevlock.Registry
	actuator elevactuate.Actuator
	opts     Options

	running atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc
	// read by requeue timers without mu, Stop holds mu while it waits
	wg atomic.Pointer[sync.WaitGroup]
}

func NewPool(queue *elevqueue.Queue, store elevstore.Store, locks *elevlock.Registry, actuator elevactuate.Actuator, opts Options) *Pool {
	defaults := DefaultOptions()
	if opts.Workers < 1 {
		opts.Workers = defaults.Workers
	}
	if opts.RequeueDelay <= 0 {
		opts.RequeueDelay = defaults.RequeueDelay
	}
	if opts.ReselectLimit < 0 {
		opts.ReselectLimit = 0
	}
	if opts.ScheduleSize < 1 {
		opts.ScheduleSize = defaults.ScheduleSize
	}
	return &Pool{
		queue:    queue,
		store:    store,
		locks:    locks,
		actuator: actuator,
		opts:     opts,
	}
}

// Start launches every worker and its schedule. Only the first call on a
// stopped pool does anything, so it is safe to call from several places.
func (p *Pool) Start(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running.CompareAndSwap(false, true) {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	wg := &sync.WaitGroup{}
	p.cancel = cancel
	p.wg.Store(wg)

	for id := 1; id <= p.opts.Workers; id++ {
		schedule := elevactuate.NewSchedule(fmt.Sprintf("worker-%d", id), p.actuator, p.opts.ScheduleSize)
		schedule.Start(ctx, wg)

		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.work(ctx, id, schedule)
		}(id)
	}

	Log.Info().Msgf("Started %d dispatch workers", p.opts.Workers)
	return true
}

// Stop interrupts every blocked worker and waits for them to exit.
// Assignments that already hold a car lock finish first.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running.Load() {
		Log.Error().Msg("Dispatch pool not running, so cannot stop it")
		return
	}

	Log.Debug().Msg("Stopping dispatch workers")
	p.cancel()
	p.wg.Load().Wait()
	p.running.Store(false)
	Log.Debug().Msg("Stopped dispatch workers")
}

func (p *Pool) Running() bool {
	return p.running.Load()
}

func (p *Pool) work(ctx context.Context, id int, schedule *elevactuate.Schedule) {
	log := logger.Component(fmt.Sprintf("worker-%d", id))
	for {
		req, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Debug().Msg("Worker has been signaled to stop")
				return
			}
			log.Error().Err(err).Msg("Dequeue failed")
			continue
		}

		log.Debug().Str("request", req.Id).Msgf("Dequeued %s", req.String())
		if err := p.safeProcess(ctx, id, req, schedule); err != nil {
			log.Error().Err(err).Str("request", req.Id).Msg("Processing request failed")
		}
	}
}

// safeProcess keeps a panicking request from taking its worker down with it
func (p *Pool) safeProcess(ctx context.Context, worker int, req elevcar.Request, schedule *elevactuate.Schedule) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing %s: %v", req.Id, r)
		}
	}()
	return p.process(ctx, worker, req, schedule)
}

func (p *Pool) process(ctx context.Context, worker int, req elevcar.Request, schedule *elevactuate.Schedule) error {
	if req.Status {
		p.report(Outcome{Kind: Skipped, Request: req, Worker: worker})
		return nil
	}

	switch req.Type {
	case elevcar.Call:
		return p.assign(ctx, worker, req, schedule)
	case elevcar.Select:
		car, err := p.Select(ctx, req)
		if err != nil {
			p.report(Outcome{Kind: Dropped, Request: req, Worker: worker, Err: err})
			return err
		}
		req.Status = true
		p.report(Outcome{Kind: Selected, Request: req, ElevatorId: car.Id, Worker: worker})
		return nil
	default:
		err := fmt.Errorf("unknown request type %d", req.Type)
		p.report(Outcome{Kind: Dropped, Request: req, Worker: worker, Err: err})
		return err
	}
}

// assign snapshots the cars, walks the eligible ones nearest first and
// commits to the first that is still eligible once its lock is held
func (p *Pool) assign(ctx context.Context, worker int, req elevcar.Request, schedule *elevactuate.Schedule) error {
	for snapshot := 0; snapshot <= p.opts.ReselectLimit; snapshot++ {
		cars, err := p.store.FindAll(ctx)
		if err != nil {
			p.retryLater(ctx, worker, req, err)
			return fmt.Errorf("loading elevators: %w", err)
		}

		candidates := elevselect.Ranked(cars, req)
		if len(candidates) == 0 {
			p.retryLater(ctx, worker, req, ErrNoEligibleCar)
			return nil
		}

		for _, candidate := range candidates {
			committed, err := p.commit(ctx, worker, req, candidate, schedule)
			if err != nil {
				if ctx.Err() == nil {
					p.retryLater(ctx, worker, req, err)
				} else {
					p.queue.EnqueueFront(req)
				}
				return err
			}
			if committed {
				return nil
			}
			Log.Debug().Str("request", req.Id).Int("elevator", candidate.Id).Msg("Candidate went stale before lock, trying next")
		}
	}

	p.retryLater(ctx, worker, req, ErrNoEligibleCar)
	return nil
}

// commit holds candidate's lock while it re-validates, persists and hands
// the move to the worker's schedule. committed is false if the car is gone
// or no longer eligible.
func (p *Pool) commit(ctx context.Context, worker int, req elevcar.Request, candidate elevcar.Car, schedule *elevactuate.Schedule) (committed bool, err error) {
	unlock, err := p.locks.Lock(ctx, candidate.Id)
	if err != nil {
		return false, err
	}
	defer unlock()

	//past this point the assignment runs to completion even if the pool stops
	commitCtx := context.WithoutCancel(ctx)

	car, found, err := p.store.FindById(commitCtx, candidate.Id)
	if err != nil {
		return false, fmt.Errorf("reloading elevator %d: %w", candidate.Id, err)
	}
	if !found || !elevselect.Eligible(car, req.TargetFloor) {
		return false, nil
	}

	req.Status = true
	car.IsMovingUp = req.TargetFloor >= car.CurrentFloor
	saved, err := p.store.Save(commitCtx, car)
	if err != nil {
		req.Status = false
		return false, fmt.Errorf("saving elevator %d: %w", car.Id, err)
	}

	//Done runs on the schedule goroutine, so it gets its own copy of the request
	retry := req
	retry.Status = false
	task := elevactuate.Task{
		Car:         saved,
		TargetFloor: req.TargetFloor,
		Done: func(err error) {
			if err == nil {
				return
			}
			p.retryLater(ctx, worker, retry, err)
		},
	}
	if err := schedule.Submit(task); err != nil {
		req.Status = false
		return false, fmt.Errorf("scheduling move for elevator %d: %w", car.Id, err)
	}

	Log.Info().Str("request", req.Id).Int("elevator", car.Id).Int("worker", worker).Msgf("Assigned call to floor %d", req.TargetFloor)
	p.report(Outcome{Kind: Assigned, Request: req, ElevatorId: car.Id, Worker: worker})
	return true, nil
}

// Select moves the named car straight to the request's floor and direction.
// The car is written under its lock so it never interleaves with an
// assignment of the same car.
func (p *Pool) Select(ctx context.Context, req elevcar.Request) (elevcar.Car, error) {
	unlock, err := p.locks.Lock(ctx, req.ElevatorId)
	if err != nil {
		return elevcar.Car{}, err
	}
	defer unlock()

	car, found, err := p.store.FindById(ctx, req.ElevatorId)
	if err != nil {
		return elevcar.Car{}, fmt.Errorf("loading elevator %d: %w", req.ElevatorId, err)
	}
	if !found {
		return elevcar.Car{}, fmt.Errorf("%w: %d", elevstore.ErrNotFound, req.ElevatorId)
	}

	car.CurrentFloor = req.TargetFloor
	car.IsMovingUp = req.Direction
	saved, err := p.store.Save(ctx, car)
	if err != nil {
		return elevcar.Car{}, fmt.Errorf("saving elevator %d: %w", car.Id, err)
	}
	return saved, nil
}

// retryLater puts a call back on the queue after RequeueDelay, or gives it
// up once MaxAttempts is reached. A stopping pool requeues at once so the
// call survives a restart.
func (p *Pool) retryLater(ctx context.Context, worker int, req elevcar.Request, reason error) {
	req.Status = false
	req.Attempts++

	if p.opts.MaxAttempts > 0 && req.Attempts >= p.opts.MaxAttempts {
		Log.Warn().Err(reason).Str("request", req.Id).Msgf("No elevator available for floor %d after %d attempts, giving up", req.TargetFloor, req.Attempts)
		p.report(Outcome{Kind: Dropped, Request: req, Worker: worker, Err: reason})
		return
	}

	Log.Debug().Err(reason).Str("request", req.Id).Msgf("Requeueing in %v", p.opts.RequeueDelay)
	p.report(Outcome{Kind: Requeued, Request: req, Worker: worker, Err: reason})

	wg := p.wg.Load()
	if wg == nil || ctx.Err() != nil {
		p.queue.Enqueue(req)
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		timer := time.NewTimer(p.opts.RequeueDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
		p.queue.Enqueue(req)
	}()
}

func (p *Pool) report(outcome Outcome) {
	if p.opts.OnOutcome != nil {
		p.opts.OnOutcome(outcome)
	}
}
