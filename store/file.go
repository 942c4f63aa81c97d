package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists all keys in a single JSON file, the closest analogue
// to the browser local storage this service replaced. Every Set rewrites
// the whole file through a temp-file rename so a crash mid-write cannot
// truncate existing data.
type FileStore struct {
	mu   sync.Mutex
	path string
	data map[string]json.RawMessage
}

// NewFileStore opens (or creates) the store file at path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, data: make(map[string]json.RawMessage)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, &StorageError{Op: "open", Key: path, Err: err}
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, &StorageError{Op: "open", Key: path, Err: fmt.Errorf("corrupt store file: %w", err)}
		}
	}
	return s, nil
}

func (s *FileStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *FileStore) Set(key string, value []byte) error {
	if !json.Valid(value) {
		return &StorageError{Op: "set", Key: key, Err: fmt.Errorf("value is not valid JSON")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	v := make(json.RawMessage, len(value))
	copy(v, value)
	s.data[key] = v

	if err := s.flushLocked(); err != nil {
		// Roll back the in-memory map so a failed write is not observable
		// through Get.
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return &StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	if !had {
		return nil
	}
	delete(s.data, key)

	if err := s.flushLocked(); err != nil {
		s.data[key] = prev
		return &StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (s *FileStore) flushLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
