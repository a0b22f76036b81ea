package registration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when a registration ID is unknown
var ErrNotFound = errors.New("registration not found")

// Store manages registration persistence and retrieval
type Store interface {
	// Add a new registration
	Add(ctx context.Context, reg *Registration) error

	// Get a registration by ID
	Get(ctx context.Context, id string) (*Registration, error)

	// RecordResult stores the outcome of the participant's guess
	RecordResult(ctx context.Context, id string, correct bool) error

	// List returns the most recent registrations, newest first
	List(ctx context.Context, limit int) ([]*Registration, error)
}

// InMemoryStore implements Store using an in-memory map
// Thread-safe with RWMutex
type InMemoryStore struct {
	regs map[string]*Registration
	now  func() time.Time
	mu   sync.RWMutex
}

// NewInMemoryStore creates a new in-memory registration store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		regs: make(map[string]*Registration),
		now:  time.Now,
	}
}

// Add adds a new registration to the store.
// Sets CreatedAt and UpdatedAt.
func (s *InMemoryStore) Add(ctx context.Context, reg *Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.regs[reg.ID]; exists {
		return fmt.Errorf("registration with ID %s already exists", reg.ID)
	}

	now := s.now()
	reg.CreatedAt = now
	reg.UpdatedAt = now
	stored := *reg
	s.regs[reg.ID] = &stored
	return nil
}

// Get retrieves a registration by ID
func (s *InMemoryStore) Get(ctx context.Context, id string) (*Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reg, exists := s.regs[id]
	if !exists {
		return nil, fmt.Errorf("registration %s: %w", id, ErrNotFound)
	}
	out := *reg
	return &out, nil
}

// RecordResult sets IsCorrect and bumps UpdatedAt
func (s *InMemoryStore) RecordResult(ctx context.Context, id string, correct bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, exists := s.regs[id]
	if !exists {
		return fmt.Errorf("registration %s: %w", id, ErrNotFound)
	}

	reg.IsCorrect = &correct
	reg.UpdatedAt = s.now()
	return nil
}

// List returns registrations ordered by CreatedAt, newest first.
// A non-positive limit returns everything.
func (s *InMemoryStore) List(ctx context.Context, limit int) ([]*Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Registration, 0, len(s.regs))
	for _, reg := range s.regs {
		r := *reg
		out = append(out, &r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
