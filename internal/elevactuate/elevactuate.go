package elevactuate

import (
	"context"
	"errors"
	"time"

	"github.com/dinaMadelen/elevdispatch/internal/elevcar"
	"github.com/dinaMadelen/elevdispatch/internal/logger"
)

var Log = logger.GetLogger()

var (
	ErrScheduleFull    = errors.New("actuation schedule is full")
	ErrScheduleStopped = errors.New("actuation schedule is stopped")
)

// Actuator drives a car to targetFloor. Move may block for as long as the
// motion takes; it runs on a worker's Schedule, never on the worker itself.
type Actuator interface {
	Move(ctx context.Context, car elevcar.Car, targetFloor int) error
}

type ActuatorFunc func(ctx context.Context, car elevcar.Car, targetFloor int) error

func (f ActuatorFunc) Move(ctx context.Context, car elevcar.Car, targetFloor int) error {
	return f(ctx, car, targetFloor)
}

// Nop accepts every move and does nothing
var Nop Actuator = ActuatorFunc(func(context.Context, elevcar.Car, int) error { return nil })

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
