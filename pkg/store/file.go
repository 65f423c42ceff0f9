package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps each snapshot in <dir>/<id>.json.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file-based store. If dir is empty it defaults to
// the user config dir, e.g. ~/.config/composeviz/snapshots.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("get config dir: %w", err)
		}
		dir = filepath.Join(base, "composeviz", "snapshots")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// path is only called with ids that passed checkID, so it cannot escape
// the directory.
func (f *FileStore) path(id string) string {
	return filepath.Join(f.dir, id+".json")
}

func (f *FileStore) Save(_ context.Context, s *Snapshot) error {
	if err := checkID(s.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.WriteFile(f.path(s.ID), data, 0o600); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}
	return nil
}

func (f *FileStore) Get(_ context.Context, id string) (*Snapshot, error) {
	if err := checkID(id); err != nil {
		return nil, ErrNotFound
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	s, err := f.read(f.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.IsExpired() {
		return nil, ErrNotFound
	}
	return s, nil
}

func (f *FileStore) Delete(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove snapshot file: %w", err)
	}
	return nil
}

func (f *FileStore) List(_ context.Context, limit int) ([]*Snapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []*Snapshot
	err := f.each(func(_ string, s *Snapshot) {
		if !s.IsExpired() {
			out = append(out, s)
		}
	})
	if err != nil {
		return nil, err
	}
	return newestFirst(out, limit), nil
}

func (f *FileStore) Cleanup(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	err := f.each(func(path string, s *Snapshot) {
		if s.IsExpired() && os.Remove(path) == nil {
			n++
		}
	})
	return n, err
}

func (f *FileStore) Close() error { return nil }

// Dir returns the snapshot directory.
func (f *FileStore) Dir() string { return f.dir }

func (f *FileStore) read(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", filepath.Base(path), err)
	}
	return &s, nil
}

// each visits every readable snapshot file; unreadable files are skipped.
func (f *FileStore) each(fn func(path string, s *Snapshot)) error {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return fmt.Errorf("read snapshot dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(f.dir, e.Name())
		s, err := f.read(path)
		if err != nil {
			continue
		}
		fn(path, s)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
