package service

import (
	"context"
	"sync"
	"time"
)

// fakeStorage is an in-memory object store. PUT is simulated with upload.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string]bool
	deleted []string
}

func newFakeStorage() *fakeStorage { return &fakeStorage{objects: map[string]bool{}} }

func (s *fakeStorage) upload(key string) {
	s.mu.Lock()
	s.objects[key] = true
	s.mu.Unlock()
}

func (s *fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, contentType string, _ time.Duration) (string, error) {
	return "https://s3.test/put/" + key + "?ct=" + contentType, nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://s3.test/get/" + key, nil
}

func (s *fakeStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[key], nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func ptr(f float64) *float64 { return &f }
