package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"MusicHub/model"
	"MusicHub/store"
)

var ErrSubmissionNotFound = errors.New("submission not found")

// SubmissionRepository holds every release intake. Submissions are never
// deleted automatically; Remove exists only for the admin tooling.
type SubmissionRepository interface {
	All() ([]model.Submission, error)
	ByID(id string) (*model.Submission, error)
	ByUploader(username string) ([]model.Submission, error)
	// Append adds a newly created submission and persists the collection.
	Append(sub *model.Submission) error
	// UpdateStatus sets the workflow state; it is the only mutation the
	// normal flow performs after creation.
	UpdateStatus(id, status string) error
	// Update rewrites a submission's descriptive fields (admin bulk edit).
	// ID, ISRC, uploader and submission date are kept from the stored
	// record regardless of what the caller passes.
	Update(sub *model.Submission) error
	Remove(id string) error
}

// storeSubmissionRepository keeps the collection as one JSON document and
// serializes its read-modify-write cycles behind a mutex.
type storeSubmissionRepository struct {
	mu sync.Mutex
	st store.Store
}

// NewStoreSubmissionRepository creates a submission repository over the
// given store.
func NewStoreSubmissionRepository(st store.Store) SubmissionRepository {
	return &storeSubmissionRepository{st: st}
}

func (r *storeSubmissionRepository) load() ([]model.Submission, error) {
	raw, err := r.st.Get(store.SubmissionsKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions collection: %w", err)
	}

	var subs []model.Submission
	if err := json.Unmarshal(raw, &subs); err != nil {
		return nil, fmt.Errorf("failed to decode submissions collection: %w", err)
	}
	return subs, nil
}

func (r *storeSubmissionRepository) save(subs []model.Submission) error {
	raw, err := json.Marshal(subs)
	if err != nil {
		return fmt.Errorf("failed to encode submissions collection: %w", err)
	}
	if err := r.st.Set(store.SubmissionsKey, raw); err != nil {
		return fmt.Errorf("failed to persist submissions collection: %w", err)
	}
	return nil
}

func (r *storeSubmissionRepository) All() ([]model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *storeSubmissionRepository) ByID(id string) (*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if subs[i].ID == id {
			s := subs[i]
			return &s, nil
		}
	}
	return nil, nil // not found
}

func (r *storeSubmissionRepository) ByUploader(username string) ([]model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, err := r.load()
	if err != nil {
		return nil, err
	}

	var mine []model.Submission
	for _, s := range subs {
		if s.UploaderUsername == username {
			mine = append(mine, s)
		}
	}
	return mine, nil
}

func (r *storeSubmissionRepository) Append(sub *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, err := r.load()
	if err != nil {
		return err
	}
	subs = append(subs, *sub)
	return r.save(subs)
}

func (r *storeSubmissionRepository) UpdateStatus(id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, err := r.load()
	if err != nil {
		return err
	}
	for i := range subs {
		if subs[i].ID == id {
			subs[i].Status = status
			return r.save(subs)
		}
	}
	return ErrSubmissionNotFound
}

func (r *storeSubmissionRepository) Update(sub *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, err := r.load()
	if err != nil {
		return err
	}
	for i := range subs {
		if subs[i].ID == sub.ID {
			updated := *sub
			// Immutable once created.
			updated.ID = subs[i].ID
			updated.ISRC = subs[i].ISRC
			updated.UploaderUsername = subs[i].UploaderUsername
			updated.SubmissionDate = subs[i].SubmissionDate
			subs[i] = updated
			return r.save(subs)
		}
	}
	return ErrSubmissionNotFound
}

func (r *storeSubmissionRepository) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, err := r.load()
	if err != nil {
		return err
	}
	for i := range subs {
		if subs[i].ID == id {
			subs = append(subs[:i], subs[i+1:]...)
			return r.save(subs)
		}
	}
	return ErrSubmissionNotFound
}
