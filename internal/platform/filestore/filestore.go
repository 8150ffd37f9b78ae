// Package filestore provides storage for patient report files. It
// defines the FileStore interface, an in-memory implementation suitable
// for testing and development, and an S3-backed implementation that
// serves downloads through presigned URLs.
package filestore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	ErrMissingKey   = errors.New("file key is required")
)

// MaxFileSize is the maximum allowed report file size in bytes (25 MB).
const MaxFileSize = 25 * 1024 * 1024

// DefaultURLExpiry is how long a generated download URL stays valid.
const DefaultURLExpiry = 15 * time.Minute

// FileInfo describes a stored report file.
type FileInfo struct {
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Hash        string    `json:"hash"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// FileStore is the contract for report file backends.
type FileStore interface {
	Put(ctx context.Context, key, contentType string, content io.Reader) (*FileInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, *FileInfo, error)
	Delete(ctx context.Context, key string) error
	// DownloadURL returns a time-limited URL for fetching the file
	// directly from the backend.
	DownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type storedFile struct {
	info    FileInfo
	content []byte
}

// MemoryStore is a thread-safe, in-memory FileStore for testing/dev.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string]*storedFile
}

// NewMemoryStore returns a ready-to-use MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string]*storedFile)}
}

// Put validates inputs, reads the content, computes a SHA-256 hash, and
// stores the file in memory under the given key.
func (s *MemoryStore) Put(_ context.Context, key, contentType string, content io.Reader) (*FileInfo, error) {
	if key == "" {
		return nil, ErrMissingKey
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	h := sha256.Sum256(data)
	info := FileInfo{
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(data)),
		Hash:        fmt.Sprintf("%x", h),
		UploadedAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	s.files[key] = &storedFile{info: info, content: data}
	s.mu.Unlock()

	out := info
	return &out, nil
}

// Get returns an io.ReadCloser over the file content and its info.
func (s *MemoryStore) Get(_ context.Context, key string) (io.ReadCloser, *FileInfo, error) {
	s.mu.RLock()
	f, ok := s.files[key]
	s.mu.RUnlock()

	if !ok {
		return nil, nil, ErrFileNotFound
	}

	info := f.info
	return io.NopCloser(bytes.NewReader(f.content)), &info, nil
}

// Delete removes a file by key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[key]; !ok {
		return ErrFileNotFound
	}
	delete(s.files, key)
	return nil
}

// DownloadURL returns a local path URL. MemoryStore has no presigning,
// so callers are expected to serve /files/:key themselves in dev.
func (s *MemoryStore) DownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	s.mu.RLock()
	_, ok := s.files[key]
	s.mu.RUnlock()

	if !ok {
		return "", ErrFileNotFound
	}
	return "/files/" + key, nil
}
