package store

import (
	"errors"
	"fmt"
)

// Keys used by the dashboard collections. The _v4/_v3 suffixes are part of
// the on-disk format inherited from earlier deployments; changing them
// orphans existing data.
const (
	UsersKey       = "musicHubUsers_v4"
	SubmissionsKey = "musicSubmissions_v4"
	SettingsKey    = "systemSettings_v4"
	ISRCCounterKey = "lastISRCCounter_v3"
)

// ErrNotFound is returned by Get when no value exists under the key.
var ErrNotFound = errors.New("store: key not found")

// StorageError wraps a backend failure (quota, connectivity, disabled
// storage). Operations that hit one keep their in-memory state; callers
// decide whether to retry.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store is a namespaced persistent map of string keys to JSON blobs.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the raw JSON stored under key, or ErrNotFound.
	Get(key string) ([]byte, error)
	// Set stores the raw JSON under key, overwriting any previous value.
	Set(key string, value []byte) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key string) error
}
