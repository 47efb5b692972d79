// Package cache keeps JSON-encoded values on disk for a fixed time to live.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store is a directory of cache entries, one file per key.
type Store struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// Entry is the on-disk form of a cached value.
type Entry struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Stats describes the current contents of a Store.
type Stats struct {
	Entries int   // valid entries
	Expired int   // entries past their expiry
	Bytes   int64 // total size on disk
}

// New opens (and creates) a store under dir. An empty dir selects DefaultDir.
func New(dir string, ttl time.Duration) (*Store, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Store{dir: dir, ttl: ttl, now: time.Now}, nil
}

// DefaultDir returns the per-user cache directory for sprint-inspect.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user cache directory: %w", err)
	}
	return filepath.Join(base, "sprint-inspect"), nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) TTL() time.Duration { return s.ttl }

// Get decodes the entry for key into value. It reports false on a miss,
// on expiry and on a corrupt entry; the latter two are removed.
func (s *Store) Get(key string, value any) (bool, error) {
	path := s.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Key != key {
		_ = os.Remove(path)
		return false, nil
	}

	if !s.now().Before(entry.ExpiresAt) {
		_ = os.Remove(path)
		return false, nil
	}

	if err := json.Unmarshal(entry.Data, value); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}
	return true, nil
}

// Set stores value under key. The file is replaced atomically.
func (s *Store) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	now := s.now()
	entryData, err := json.Marshal(Entry{
		Key:       key,
		Data:      data,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if _, err := tmp.Write(entryData); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

// Clear removes every entry and the directory itself.
func (s *Store) Clear() error {
	return os.RemoveAll(s.dir)
}

// Prune deletes expired and unreadable entries and returns how many were removed.
func (s *Store) Prune() (int, error) {
	removed := 0
	err := s.walk(func(path string, entry *Entry, _ int64) {
		if entry == nil || !s.now().Before(entry.ExpiresAt) {
			if os.Remove(path) == nil {
				removed++
			}
		}
	})
	return removed, err
}

func (s *Store) Stats() (Stats, error) {
	var st Stats
	err := s.walk(func(_ string, entry *Entry, size int64) {
		st.Bytes += size
		switch {
		case entry == nil:
		case s.now().Before(entry.ExpiresAt):
			st.Entries++
		default:
			st.Expired++
		}
	})
	return st, err
}

// walk visits every entry file; entry is nil when the file cannot be decoded.
func (s *Store) walk(fn func(path string, entry *Entry, size int64)) error {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(s.dir, f.Name())
		var entry *Entry
		if data, err := os.ReadFile(path); err == nil {
			var e Entry
			if json.Unmarshal(data, &e) == nil {
				entry = &e
			}
		}
		fn(path, entry, info.Size())
	}
	return nil
}

// path hashes the key so any string is a safe file name.
func (s *Store) path(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(hash[:])+".json")
}
