package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// fileEntry represents a cached item on disk
type fileEntry struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// fileStore keeps one JSON file per key
type fileStore struct {
	dir string
	mu  sync.RWMutex
	now func() time.Time
}

// NewFile creates a cache that persists entries under dir
func NewFile(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		dir = "cache"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return newCache("file", &fileStore{dir: dir, now: time.Now}, ttl), nil
}

func (f *fileStore) put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	entry := fileEntry{
		Key:       key,
		Data:      value,
		Timestamp: now,
		ExpiresAt: expiry(now, ttl),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path(key), data, 0o644)
}

func (f *fileStore) get(_ context.Context, key string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entry, err := f.read(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if isExpired(entry.ExpiresAt, f.now()) {
		return nil, ErrNotFound
	}
	return entry.Data, nil
}

func (f *fileStore) read(path string) (*fileEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// deleteExpired removes expired and unreadable entries
func (f *fileStore) deleteExpired(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return 0, err
	}

	var n int64
	now := f.now()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(f.dir, e.Name())
		entry, err := f.read(path)
		if err == nil && !isExpired(entry.ExpiresAt, now) {
			continue
		}
		if os.Remove(path) == nil {
			n++
		}
	}
	return n, nil
}

func (f *fileStore) close() error {
	return nil
}

func (f *fileStore) path(key string) string {
	hash := md5.Sum([]byte(key))
	return filepath.Join(f.dir, fmt.Sprintf("%x.json", hash))
}
