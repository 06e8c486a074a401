package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
)

// InMemory keeps objects in a map. Used by tests and database-less runs.
type InMemory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewInMemory() *InMemory {
	return &InMemory{objects: make(map[string][]byte)}
}

func (s *InMemory) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (Object, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return Object{}, fmt.Errorf("read object: %w", err)
	}
	if n > MaxFileSize {
		return Object{}, fmt.Errorf("object exceeds %d bytes", MaxFileSize)
	}
	sum := sha256.Sum256(buf.Bytes())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = buf.Bytes()
	return Object{Path: key, Hash: hex.EncodeToString(sum[:]), Size: n}, nil
}

func (s *InMemory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return ErrNotFound
	}
	delete(s.objects, key)
	return nil
}

// Get returns a stored object's bytes.
func (s *InMemory) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.objects[key]
	return b, ok
}
