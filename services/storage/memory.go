package storage

import (
	"context"
	"strings"
	"sync"
)

// MemoryStorageService keeps objects in process memory under mem://{bucket}/.
type MemoryStorageService struct {
	bucketName string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStorageService creates an empty in-memory BlobStore.
func NewMemoryStorageService(bucketName string) *MemoryStorageService {
	return &MemoryStorageService{bucketName: bucketName, objects: make(map[string][]byte)}
}

func (s *MemoryStorageService) prefix() string {
	return "mem://" + s.bucketName + "/"
}

func (s *MemoryStorageService) Upload(_ context.Context, objectPath string, data []byte, _ string) (string, error) {
	objectPath, err := cleanObjectPath(objectPath)
	if err != nil {
		return "", err
	}
	cp := append([]byte(nil), data...)
	s.mu.Lock()
	s.objects[objectPath] = cp
	s.mu.Unlock()
	return s.prefix() + objectPath, nil
}

func (s *MemoryStorageService) Download(_ context.Context, ref string) ([]byte, error) {
	objectPath, err := s.ObjectPath(ref)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[objectPath]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStorageService) ObjectPath(ref string) (string, error) {
	if strings.Contains(ref, "://") {
		rest, ok := strings.CutPrefix(ref, s.prefix())
		if !ok {
			return "", ErrForeignReference
		}
		ref = rest
	}
	return cleanObjectPath(ref)
}

func (s *MemoryStorageService) Delete(_ context.Context, objectPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[objectPath]; !ok {
		return ErrObjectNotFound
	}
	delete(s.objects, objectPath)
	return nil
}

// Len returns the number of stored objects.
func (s *MemoryStorageService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
