package indexed

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/KirkDiggler/rpg-charforge/internal/errors"
	"github.com/KirkDiggler/rpg-charforge/internal/pkg/keylock"
)

// memoryStore keeps encoded payloads in a map and the index as an ordered id
// slice. One RWMutex guards both; the per-id lock serializes the
// read-modify-write cycles so the map lock is only held for the final swap.
type memoryStore[T Record[T]] struct {
	cfg   Config
	locks *keylock.Locker

	mu       sync.RWMutex
	payloads map[string][]byte
	index    []string
}

// NewMemory creates an in-process store. Data lives as long as the store.
func NewMemory[T Record[T]](cfg *Config) (Store[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &memoryStore[T]{
		cfg:      *cfg,
		locks:    keylock.New(),
		payloads: make(map[string][]byte),
	}, nil
}

func (s *memoryStore[T]) Create(ctx context.Context, record T) (T, error) {
	var zero T
	if err := checkRecord(s.cfg.EntityType, record); err != nil {
		return zero, err
	}
	if err := errors.FromContext(ctx); err != nil {
		return zero, err
	}
	id := record.GetID()

	unlock := s.locks.Lock(id)
	defer unlock()

	data, err := encode(record)
	if err != nil {
		return zero, err
	}

	s.mu.Lock()
	if _, exists := s.payloads[id]; exists {
		s.mu.Unlock()
		return zero, errors.AlreadyExistsf("%s %s already exists", s.cfg.EntityType, id)
	}
	s.payloads[id] = data
	s.index = append(s.index, id)
	s.mu.Unlock()

	slog.DebugContext(ctx, "record created", "entity_type", s.cfg.EntityType, "id", id)
	return decode[T](data)
}

func (s *memoryStore[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	if err := checkID(id); err != nil {
		return zero, false, err
	}
	if err := errors.FromContext(ctx); err != nil {
		return zero, false, err
	}

	s.mu.RLock()
	data, ok := s.payloads[id]
	s.mu.RUnlock()
	if !ok {
		return zero, false, nil
	}

	out, err := decode[T](data)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

func (s *memoryStore[T]) Mutate(ctx context.Context, id string, fn MutateFunc[T]) (T, error) {
	var zero T
	if err := checkID(id); err != nil {
		return zero, err
	}
	if err := errors.FromContext(ctx); err != nil {
		return zero, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	s.mu.RLock()
	data, ok := s.payloads[id]
	s.mu.RUnlock()
	if !ok {
		return zero, errors.NotFoundf("%s %s not found", s.cfg.EntityType, id)
	}

	current, err := decode[T](data)
	if err != nil {
		return zero, err
	}
	next, err := fn(current)
	if err != nil {
		return zero, err
	}
	if isNil(next) {
		return zero, errors.Internalf("mutation of %s %s returned no record", s.cfg.EntityType, id)
	}
	next = next.WithID(id)

	data, err = encode(next)
	if err != nil {
		return zero, err
	}

	s.mu.Lock()
	s.payloads[id] = data
	s.mu.Unlock()

	slog.DebugContext(ctx, "record mutated", "entity_type", s.cfg.EntityType, "id", id)
	return decode[T](data)
}

func (s *memoryStore[T]) Update(ctx context.Context, id string, patch Patch[T]) (T, error) {
	return s.Mutate(ctx, id, patchMutation(id, patch))
}

func (s *memoryStore[T]) Delete(ctx context.Context, id string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	if err := errors.FromContext(ctx); err != nil {
		return false, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payloads[id]; !ok {
		return false, nil
	}
	delete(s.payloads, id)
	if i := slices.Index(s.index, id); i >= 0 {
		s.index = slices.Delete(s.index, i, i+1)
	}

	slog.DebugContext(ctx, "record deleted", "entity_type", s.cfg.EntityType, "id", id)
	return true, nil
}

func (s *memoryStore[T]) List(ctx context.Context) ([]T, error) {
	if err := errors.FromContext(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	payloads := make([][]byte, 0, len(s.index))
	for _, id := range s.index {
		payloads = append(payloads, s.payloads[id])
	}
	s.mu.RUnlock()

	out := make([]T, 0, len(payloads))
	for _, data := range payloads {
		rec, err := decode[T](data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
