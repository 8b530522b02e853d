package elevdispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/dinaMadelen/elevdispatch/internal/elevcar"
	"github.com/dinaMadelen/elevdispatch/internal/elevqueue"
	"github.com/dinaMadelen/elevdispatch/internal/elevselect"
	"github.com/dinaMadelen/elevdispatch/internal/elevstore"
	"github.com/dinaMadelen/elevdispatch/internal/elevutils"
	"github.com/dinaMadelen/elevdispatch/internal/elevworker"
	"github.com/dinaMadelen/elevdispatch/internal/logger"
)

var Log = logger.GetLogger()

var (
	ErrNotFound       = errors.New("elevator not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInfrastructure = errors.New("internal error")
)

type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindClient
	KindServer
)

func (ek ErrorKind) String() string {
	switch ek {
	case KindNone:
		return "None"
	case KindClient:
		return "Client"
	case KindServer:
		return "Server"
	default:
		return "Undefined"
	}
}

// KindOf tells a caller whether err is its own fault or ours
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidRequest):
		return KindClient
	default:
		return KindServer
	}
}

// Dispatcher is the public face of the dispatch core
type Dispatcher struct {
	queue    *elevqueue.Queue
	store    elevstore.Store
	pool     *elevworker.Pool
	minFloor int
	maxFloor int
}

func NewDispatcher(queue *elevqueue.Queue, store elevstore.Store, pool *elevworker.Pool, minFloor int, maxFloor int) *Dispatcher {
	return &Dispatcher{
		queue:    queue,
		store:    store,
		pool:     pool,
		minFloor: minFloor,
		maxFloor: maxFloor,
	}
}

// Start brings up the worker pool. Calls are accepted before Start and wait
// on the queue until it runs.
func (d *Dispatcher) Start(ctx context.Context) {
	if !d.pool.Start(ctx) {
		Log.Warn().Msg("Dispatcher already running")
	}
}

func (d *Dispatcher) Stop() {
	d.pool.Stop()
}

// CallElevator queues a call and answers at once with the car that looks
// best right now. That preview is not binding: the worker that takes the
// queued call picks again from a fresh snapshot and may choose differently.
// If no car is eligible the response is Pending and the call stays queued.
func (d *Dispatcher) CallElevator(ctx context.Context, req elevcar.Request) (elevcar.Response, error) {
	Log.Info().Msgf("Call Elevator to floor %d", req.TargetFloor)
	if req.Type != elevcar.Call {
		return elevcar.Response{}, fmt.Errorf("%w: CallElevator needs a %s request, got %s", ErrInvalidRequest, elevcar.Call, req.Type)
	}
	if err := d.checkFloor(req.TargetFloor); err != nil {
		return elevcar.Response{}, err
	}
	if req.Id == "" {
		req.Id = elevutils.NewRequestId()
	}
	req.Status = false

	d.queue.Enqueue(req)

	cars, err := d.store.FindAll(ctx)
	if err != nil {
		Log.Error().Err(err).Str("request", req.Id).Msg("Call Elevator Error")
		return elevcar.Response{}, fmt.Errorf("%w: %w", ErrInfrastructure, err)
	}

	response := elevcar.Response{TargetFloor: req.TargetFloor}
	car, ok := elevselect.Nearest(cars, req)
	if !ok {
		Log.Info().Str("request", req.Id).Msg("No elevator available yet, call is pending")
		response.Pending = true
		return response, nil
	}
	response.ElevatorId = car.Id
	return response, nil
}

// SelectFloor sends the named car straight to the request's floor. No
// selection happens since the car is given.
func (d *Dispatcher) SelectFloor(ctx context.Context, req elevcar.Request) (elevcar.Response, error) {
	Log.Info().Msgf("Select Floor %d on elevator %d", req.TargetFloor, req.ElevatorId)
	if req.Type != elevcar.Select {
		return elevcar.Response{}, fmt.Errorf("%w: SelectFloor needs a %s request, got %s", ErrInvalidRequest, elevcar.Select, req.Type)
	}
	if err := d.checkFloor(req.TargetFloor); err != nil {
		return elevcar.Response{}, err
	}

	car, err := d.pool.Select(ctx, req)
	if err != nil {
		if errors.Is(err, elevstore.ErrNotFound) {
			return elevcar.Response{}, fmt.Errorf("%w: %d", ErrNotFound, req.ElevatorId)
		}
		Log.Error().Err(err).Msg("Select Floor Error")
		return elevcar.Response{}, fmt.Errorf("%w: %w", ErrInfrastructure, err)
	}
	return elevcar.Response{ElevatorId: car.Id, TargetFloor: req.TargetFloor}, nil
}

func (d *Dispatcher) Cars(ctx context.Context) ([]elevcar.Car, error) {
	cars, err := d.store.FindAll(ctx)
	if err != nil {
		Log.Error().Err(err).Msg("Get All Elevators Error")
		return nil, fmt.Errorf("%w: %w", ErrInfrastructure, err)
	}
	return cars, nil
}

func (d *Dispatcher) Pending() int {
	return d.queue.Len()
}

func (d *Dispatcher) checkFloor(floor int) error {
	if d.minFloor > d.maxFloor {
		return nil
	}
	if floor < d.minFloor || floor > d.maxFloor {
		return fmt.Errorf("%w: floor %d outside %d..%d", ErrInvalidRequest, floor, d.minFloor, d.maxFloor)
	}
	return nil
}
