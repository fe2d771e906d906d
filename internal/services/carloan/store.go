// Package carloan manages car records and their loan calculations.
package carloan

import (
	"context"
	"sort"
	"sync"

	"car-loan-calculator/internal/models"
)

// CarStore persists car records.
type CarStore interface {
	Create(ctx context.Context, car *models.Car) error
	BulkCreate(ctx context.Context, cars []*models.Car) error
	GetByID(ctx context.Context, id string) (*models.Car, error)
	List(ctx context.Context) ([]*models.Car, error)
	Update(ctx context.Context, car *models.Car) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}

// MemoryStore is a CarStore kept in process memory, used when no database
// is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	cars map[string]models.Car
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cars: make(map[string]models.Car)}
}

// Create stores a copy of car.
func (s *MemoryStore) Create(_ context.Context, car *models.Car) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cars[car.ID] = *car
	return nil
}

// BulkCreate stores copies of cars.
func (s *MemoryStore) BulkCreate(ctx context.Context, cars []*models.Car) error {
	for _, car := range cars {
		if err := s.Create(ctx, car); err != nil {
			return err
		}
	}
	return nil
}

// GetByID returns a copy of the stored car.
func (s *MemoryStore) GetByID(_ context.Context, id string) (*models.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	car, ok := s.cars[id]
	if !ok {
		return nil, models.ErrCarNotFound
	}
	return &car, nil
}

// List returns all cars, oldest first.
func (s *MemoryStore) List(_ context.Context) ([]*models.Car, error) {
	s.mu.RLock()
	cars := make([]*models.Car, 0, len(s.cars))
	for _, car := range s.cars {
		c := car
		cars = append(cars, &c)
	}
	s.mu.RUnlock()

	sort.Slice(cars, func(i, j int) bool {
		if cars[i].CreatedAt.Equal(cars[j].CreatedAt) {
			return cars[i].ID < cars[j].ID
		}
		return cars[i].CreatedAt.Before(cars[j].CreatedAt)
	})
	return cars, nil
}

// Update replaces an existing car.
func (s *MemoryStore) Update(_ context.Context, car *models.Car) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.cars[car.ID]
	if !ok {
		return models.ErrCarNotFound
	}
	updated := *car
	updated.CreatedAt = existing.CreatedAt
	s.cars[car.ID] = updated
	return nil
}

// Delete removes a car.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cars[id]; !ok {
		return models.ErrCarNotFound
	}
	delete(s.cars, id)
	return nil
}

// DeleteAll removes every car.
func (s *MemoryStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.cars))
	s.cars = make(map[string]models.Car)
	return n, nil
}
