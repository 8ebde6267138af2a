package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store is the artifact store the coordinator checkpoints against. Write
// must be atomic: a crash mid-write may never leave a partial artifact that
// a later Exists check would trust.
type Store interface {
	Exists(key string) (bool, error)
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
	Delete(key string) error
}

// FSStore keeps artifacts as files under one directory. Writes go to a
// temp file on the same volume and are renamed into place.
type FSStore struct {
	Dir string
}

func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &FSStore{Dir: dir}, nil
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.Dir, key)
}

func (s *FSStore) Exists(key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *FSStore) Read(key string) ([]byte, error) {
	return os.ReadFile(s.path(key))
}

func (s *FSStore) Write(key string, data []byte) error {
	dst := s.path(key)
	tmp, err := os.CreateTemp(s.Dir, "."+key+".tmp-*")
	if err != nil {
		return fmt.Errorf("write artifact %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write artifact %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("write artifact %s: %w", key, err)
	}
	return nil
}

func (s *FSStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	data map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (s *MemStore) Exists(key string) (bool, error) {
	_, ok := s.data[key]
	return ok, nil
}

func (s *MemStore) Read(key string) ([]byte, error) {
	d, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("artifact %s not found", key)
	}
	cp := make([]byte, len(d))
	copy(cp, d)
	return cp, nil
}

func (s *MemStore) Write(key string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	s.data[key] = cp
	return nil
}

func (s *MemStore) Delete(key string) error {
	delete(s.data, key)
	return nil
}
