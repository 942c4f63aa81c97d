package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"MusicHub/core/auth"
	"MusicHub/model"
	"MusicHub/store"
)

// ProtectedUsername is the seed manager account that can never be removed.
const ProtectedUsername = "admin"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrProtectedAccount = errors.New("the admin account cannot be removed")
)

// UserRepository is the directory of label accounts.
type UserRepository interface {
	FindByUsername(username string) (*model.User, error)
	All() ([]model.User, error)
	// Upsert inserts the user, or replaces the record with the same
	// username. Usernames are unique and immutable; inserting a second
	// account with an existing username fails with ErrUsernameTaken.
	Upsert(user *model.User) error
	// Remove deletes the account. The protected admin account is refused.
	Remove(username string) error
	// Authenticate verifies a claimed credential and returns the account,
	// or nil when the username is unknown or the password does not match.
	Authenticate(username, password string) (*model.User, error)
}

// storeUserRepository keeps the user collection as one JSON document in
// the key-value store, reading and rewriting it whole on every mutation.
type storeUserRepository struct {
	mu sync.Mutex
	st store.Store
}

// NewStoreUserRepository creates a user repository over the given store.
func NewStoreUserRepository(st store.Store) UserRepository {
	return &storeUserRepository{st: st}
}

func (r *storeUserRepository) load() ([]model.User, error) {
	raw, err := r.st.Get(store.UsersKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load users collection: %w", err)
	}

	var users []model.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users collection: %w", err)
	}
	return users, nil
}

func (r *storeUserRepository) save(users []model.User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("failed to encode users collection: %w", err)
	}
	if err := r.st.Set(store.UsersKey, raw); err != nil {
		return fmt.Errorf("failed to persist users collection: %w", err)
	}
	return nil
}

func (r *storeUserRepository) FindByUsername(username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			u := users[i]
			return &u, nil
		}
	}
	return nil, nil // not found
}

func (r *storeUserRepository) All() ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *storeUserRepository) Upsert(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}

	for i := range users {
		if users[i].Username == user.Username {
			if users[i].ID != user.ID {
				return ErrUsernameTaken
			}
			users[i] = *user
			return r.save(users)
		}
	}

	users = append(users, *user)
	return r.save(users)
}

func (r *storeUserRepository) Remove(username string) error {
	if username == ProtectedUsername {
		return ErrProtectedAccount
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}

	for i := range users {
		if users[i].Username == username {
			users = append(users[:i], users[i+1:]...)
			return r.save(users)
		}
	}
	return ErrUserNotFound
}

func (r *storeUserRepository) Authenticate(username, password string) (*model.User, error) {
	user, err := r.FindByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, nil
	}
	return user, nil
}
