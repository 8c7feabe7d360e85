package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"tallyflow/internal/domain"
	"tallyflow/internal/port"
)

// ObjectStorage is an in-memory port.ObjectStorage holding file bytes
// keyed by logical path.
type ObjectStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewObjectStorage creates an empty object store.
func NewObjectStorage() *ObjectStorage {
	return &ObjectStorage{objects: make(map[string][]byte)}
}

func (s *ObjectStorage) Put(_ context.Context, localPath, logicalPath string) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[logicalPath] = data
	return logicalPath, nil
}

// Get materializes the object into a temp file and returns its path.
func (s *ObjectStorage) Get(_ context.Context, logicalPath string) (string, error) {
	s.mu.Lock()
	data, ok := s.objects[logicalPath]
	s.mu.Unlock()
	if !ok {
		return "", domain.ErrNotFound
	}
	f, err := os.CreateTemp("", "obj-*"+filepath.Ext(logicalPath))
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

func (s *ObjectStorage) Exists(_ context.Context, logicalPath string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[logicalPath]
	return ok, nil
}

var _ port.ObjectStorage = (*ObjectStorage)(nil)
