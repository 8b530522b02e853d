package elevstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dinaMadelen/elevdispatch/internal/elevcar"
	"github.com/dinaMadelen/elevdispatch/internal/logger"
	"github.com/tiendc/go-deepcopy"
)

var Log = logger.GetLogger()

var (
	ErrClosed   = errors.New("store is closed")
	ErrNotFound = errors.New("elevator not found")
)

// Store is the durable record of every car. Save is last-write-wins; there is
// no version token. FindById reports a missing car with found=false, callers
// turn that into ErrNotFound where it matters.
type Store interface {
	FindAll(ctx context.Context) ([]elevcar.Car, error)
	FindById(ctx context.Context, id int) (elevcar.Car, bool, error)
	Save(ctx context.Context, car elevcar.Car) (elevcar.Car, error)
}

// Memory keeps cars in a map and hands out deep copies, so a caller mutating
// its snapshot never touches the stored record.
type Memory struct {
	mu     sync.RWMutex
	cars   map[int]*elevcar.Car
	closed bool
}

func NewMemory(seed []elevcar.Car) (*Memory, error) {
	m := &Memory{cars: make(map[int]*elevcar.Car, len(seed))}
	for _, car := range seed {
		if _, exists := m.cars[car.Id]; exists {
			return nil, fmt.Errorf("duplicate elevator id %d in seed", car.Id)
		}
		stored := new(elevcar.Car)
		if err := deepcopy.Copy(stored, car); err != nil {
			return nil, fmt.Errorf("copying seed elevator %d: %w", car.Id, err)
		}
		m.cars[car.Id] = stored
	}
	Log.Debug().Msgf("Memory store seeded with %d elevators", len(m.cars))
	return m, nil
}

// FindAll returns the cars ordered by id
func (m *Memory) FindAll(ctx context.Context) ([]elevcar.Car, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	ids := make([]int, 0, len(m.cars))
	for id := range m.cars {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	snapshot := make([]elevcar.Car, 0, len(ids))
	for _, id := range ids {
		var car elevcar.Car
		if err := deepcopy.Copy(&car, *m.cars[id]); err != nil {
			return nil, fmt.Errorf("copying elevator %d: %w", id, err)
		}
		snapshot = append(snapshot, car)
	}
	return snapshot, nil
}

func (m *Memory) FindById(ctx context.Context, id int) (elevcar.Car, bool, error) {
	if err := ctx.Err(); err != nil {
		return elevcar.Car{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return elevcar.Car{}, false, ErrClosed
	}

	stored, exists := m.cars[id]
	if !exists {
		return elevcar.Car{}, false, nil
	}
	var car elevcar.Car
	if err := deepcopy.Copy(&car, *stored); err != nil {
		return elevcar.Car{}, false, fmt.Errorf("copying elevator %d: %w", id, err)
	}
	return car, true, nil
}

// Save inserts or overwrites the car with the same id
func (m *Memory) Save(ctx context.Context, car elevcar.Car) (elevcar.Car, error) {
	if err := ctx.Err(); err != nil {
		return elevcar.Car{}, err
	}
	stored := new(elevcar.Car)
	if err := deepcopy.Copy(stored, car); err != nil {
		return elevcar.Car{}, fmt.Errorf("copying elevator %d: %w", car.Id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return elevcar.Car{}, ErrClosed
	}
	m.cars[car.Id] = stored
	Log.Debug().Int("elevator", car.Id).Msgf("Saved %s", car.String())
	return car, nil
}

// Close makes every later call fail with ErrClosed
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}
