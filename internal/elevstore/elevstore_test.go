package elevstore

import (
	"context"
	"errors"
	"testing"

	"github.com/dinaMadelen/elevdispatch/internal/elevcar"
	"github.com/dinaMadelen/elevdispatch/internal/logger"
	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) *Memory {
	_ = logger.GetLoggerConfigured(zerolog.Disabled)
	store, err := NewMemory([]elevcar.Car{
		{Id: 2, CurrentFloor: 8},
		{Id: 1, CurrentFloor: 3, IsMovingUp: true},
	})
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}
	return store
}

func TestFindAllOrderedById(t *testing.T) {
	store := newTestStore(t)

	cars, err := store.FindAll(context.Background())
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if len(cars) != 2 || cars[0].Id != 1 || cars[1].Id != 2 {
		t.Errorf("FindAll() = %v, expected elevators 1 and 2 in order", cars)
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cars, _ := store.FindAll(ctx)
	cars[0].CurrentFloor = 99

	car, found, err := store.FindById(ctx, 1)
	if err != nil || !found {
		t.Fatalf("FindById(1) = %v, %v, %v", car, found, err)
	}
	if car.CurrentFloor != 3 {
		t.Errorf("stored floor = %d after mutating snapshot, expected 3", car.CurrentFloor)
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, elevcar.Car{Id: 2, CurrentFloor: 0, IsDoorOpen: true})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	car, _, _ := store.FindById(ctx, 2)
	if car.CurrentFloor != 0 || !car.IsDoorOpen {
		t.Errorf("FindById(2) = %v, expected saved state", car)
	}
}

func TestFindByIdMissing(t *testing.T) {
	store := newTestStore(t)

	_, found, err := store.FindById(context.Background(), 42)
	if err != nil {
		t.Errorf("FindById(42) error = %v, expected nil", err)
	}
	if found {
		t.Errorf("FindById(42) found = true, expected false")
	}
}

func TestDuplicateSeed(t *testing.T) {
	_, err := NewMemory([]elevcar.Car{{Id: 1}, {Id: 1}})
	if err == nil {
		t.Errorf("NewMemory() accepted duplicate ids")
	}
}

func TestClosedStore(t *testing.T) {
	store := newTestStore(t)
	store.Close()

	if _, err := store.FindAll(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("FindAll() error = %v, expected ErrClosed", err)
	}
	if _, err := store.Save(context.Background(), elevcar.Car{Id: 1}); !errors.Is(err, ErrClosed) {
		t.Errorf("Save() error = %v, expected ErrClosed", err)
	}
}
