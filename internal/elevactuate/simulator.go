package elevactuate

import (
	"context"
	"fmt"
	"time"

	"github.com/dinaMadelen/elevdispatch/internal/elevcar"
	"github.com/dinaMadelen/elevdispatch/internal/elevlock"
	"github.com/dinaMadelen/elevdispatch/internal/elevstore"
)

// Simulator moves cars in the store one floor per FloorTravel, then holds
// the door open for DoorOpen. Every step reloads the car and saves it under
// the car's lock, so concurrent selects and assignments interleave with it.
type Simulator struct {
	Store       elevstore.Store
	Locks       *elevlock.Registry
	FloorTravel time.Duration
	DoorOpen    time.Duration
}

func NewSimulator(store elevstore.Store, locks *elevlock.Registry, floorTravel time.Duration, doorOpen time.Duration) *Simulator {
	return &Simulator{
		Store:       store,
		Locks:       locks,
		FloorTravel: floorTravel,
		DoorOpen:    doorOpen,
	}
}

func (s *Simulator) Move(ctx context.Context, car elevcar.Car, targetFloor int) error {
	for {
		arrived, err := s.step(ctx, car.Id, targetFloor)
		if err != nil {
			return err
		}
		if arrived {
			break
		}
		if err := sleepCtx(ctx, s.FloorTravel); err != nil {
			return err
		}
	}

	if err := sleepCtx(ctx, s.DoorOpen); err != nil {
		return err
	}
	return s.update(ctx, car.Id, func(c *elevcar.Car) {
		c.IsDoorOpen = false
	})
}

// step moves the car one floor towards targetFloor, or opens the door if it
// is already there
func (s *Simulator) step(ctx context.Context, id int, targetFloor int) (bool, error) {
	arrived := false
	err := s.update(ctx, id, func(c *elevcar.Car) {
		switch {
		case c.CurrentFloor < targetFloor:
			c.IsDoorOpen = false
			c.IsMovingUp = true
			c.CurrentFloor++
		case c.CurrentFloor > targetFloor:
			c.IsDoorOpen = false
			c.IsMovingUp = false
			c.CurrentFloor--
		}
		if c.CurrentFloor == targetFloor {
			c.IsDoorOpen = true
			arrived = true
		}
	})
	return arrived, err
}

func (s *Simulator) update(ctx context.Context, id int, mutate func(c *elevcar.Car)) error {
	unlock, err := s.Locks.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	car, found, err := s.Store.FindById(ctx, id)
	if err != nil {
		return fmt.Errorf("loading elevator %d: %w", id, err)
	}
	if !found {
		return fmt.Errorf("%w: %d", elevstore.ErrNotFound, id)
	}
	mutate(&car)
	if _, err := s.Store.Save(ctx, car); err != nil {
		return fmt.Errorf("saving elevator %d: %w", id, err)
	}
	Log.Trace().Int("elevator", id).Msgf("Simulated %s", car.String())
	return nil
}
