package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"MusicHub/core/isrc"
	"MusicHub/store"
)

// CounterRepository persists the ISRC sequence counter. The counter only
// ever grows: it is bumped once per successful submission and never
// reused, even when a submission is later deleted.
type CounterRepository interface {
	// Current returns the stored counter, or the seed value when none has
	// been written yet.
	Current() (int, error)
	Save(counter int) error
}

type storeCounterRepository struct {
	mu sync.Mutex
	st store.Store
}

// NewStoreCounterRepository creates a counter repository over the given
// store.
func NewStoreCounterRepository(st store.Store) CounterRepository {
	return &storeCounterRepository{st: st}
}

func (r *storeCounterRepository) Current() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := r.st.Get(store.ISRCCounterKey)
	if errors.Is(err, store.ErrNotFound) {
		return isrc.SeedCounter, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load ISRC counter: %w", err)
	}

	var counter int
	if err := json.Unmarshal(raw, &counter); err != nil {
		return 0, fmt.Errorf("failed to decode ISRC counter: %w", err)
	}
	return counter, nil
}

func (r *storeCounterRepository) Save(counter int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := json.Marshal(counter)
	if err != nil {
		return fmt.Errorf("failed to encode ISRC counter: %w", err)
	}
	if err := r.st.Set(store.ISRCCounterKey, raw); err != nil {
		return fmt.Errorf("failed to persist ISRC counter: %w", err)
	}
	return nil
}
