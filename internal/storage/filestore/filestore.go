// Package filestore keeps each key in its own file inside a directory.
// Processes that open the same directory share the area; Watch turns their
// writes into storage events with fsnotify.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gaylashop/storefront/internal/storage"
)

const (
	fileExt    = ".json"
	tempPrefix = ".tmp-"
)

type Store struct {
	dir string
	log *zap.Logger

	mu sync.Mutex
	// seen holds the last value this handle wrote or observed per key, so
	// the watcher can drop events caused by its own writes.
	seen map[string]string
}

func Open(dir string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{
		dir:  dir,
		log:  log.With(zap.String("component", "filestore"), zap.String("dir", dir)),
		seen: make(map[string]string),
	}, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+fileExt)
}

func keyFromPath(name string) (string, bool) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, tempPrefix) || !strings.HasSuffix(base, fileExt) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimSuffix(base, fileExt))
	if err != nil {
		return "", false
	}
	return key, true
}

func (s *Store) GetItem(_ context.Context, key string) (string, bool, error) {
	return s.read(key)
}

func (s *Store) read(key string) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %q: %w", key, err)
	}
	return string(data), true, nil
}

// SetItem replaces the file atomically so readers never see a partial value.
func (s *Store) SetItem(_ context.Context, key, value string) error {
	tmp, err := os.CreateTemp(s.dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		return fmt.Errorf("replace %q: %w", key, err)
	}
	s.seen[key] = value
	return nil
}

func (s *Store) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	delete(s.seen, key)
	return nil
}

// Watch reports writes made by other handles until ctx is done.
func (s *Store) Watch(ctx context.Context, fn func(storage.Event)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	s.seed()
	s.log.Debug("watching storage dir")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			key, ok := keyFromPath(event.Name)
			if !ok {
				continue
			}
			if ev, changed := s.diff(key); changed {
				fn(ev)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// seed records the current contents so the first foreign write carries
// the right old value.
func (s *Store) seed() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Warn("list storage dir", zap.Error(err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		key, ok := keyFromPath(e.Name())
		if !ok || e.IsDir() {
			continue
		}
		if _, known := s.seen[key]; known {
			continue
		}
		if v, ok, err := s.read(key); err == nil && ok {
			s.seen[key] = v
		}
	}
}

func (s *Store) diff(key string) (storage.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, curOK, err := s.read(key)
	if err != nil {
		s.log.Warn("read changed key", zap.String("key", key), zap.Error(err))
		return storage.Event{}, false
	}
	prev, prevOK := s.seen[key]
	ev := storage.Event{
		Key:      key,
		OldValue: storage.Value(prev, prevOK),
		NewValue: storage.Value(cur, curOK),
	}
	if storage.SameValue(ev.OldValue, ev.NewValue) {
		return storage.Event{}, false
	}
	if curOK {
		s.seen[key] = cur
	} else {
		delete(s.seen, key)
	}
	return ev, true
}
