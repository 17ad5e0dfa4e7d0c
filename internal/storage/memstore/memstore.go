// Package memstore is an in-process storage area. Every handle opened on
// an Area behaves like a separate tab.
package memstore

import (
	"context"
	"sync"

	"github.com/gaylashop/storefront/internal/storage"
)

type Area struct {
	mu      sync.Mutex
	items   map[string]string
	handles map[*Store]struct{}
}

func NewArea() *Area {
	return &Area{
		items:   make(map[string]string),
		handles: make(map[*Store]struct{}),
	}
}

// Open returns a new handle on the area.
func (a *Area) Open() *Store {
	s := &Store{area: a, wake: make(chan struct{}, 1)}
	a.mu.Lock()
	a.handles[s] = struct{}{}
	a.mu.Unlock()
	return s
}

// broadcast must be called with a.mu held.
func (a *Area) broadcast(from *Store, ev storage.Event) {
	for h := range a.handles {
		if h != from {
			h.push(ev)
		}
	}
}

type Store struct {
	area *Area

	mu     sync.Mutex
	queue  []storage.Event
	wake   chan struct{}
	closed bool
}

func (s *Store) GetItem(_ context.Context, key string) (string, bool, error) {
	if s.isClosed() {
		return "", false, storage.ErrClosed
	}
	s.area.mu.Lock()
	defer s.area.mu.Unlock()
	v, ok := s.area.items[key]
	return v, ok, nil
}

func (s *Store) SetItem(_ context.Context, key, value string) error {
	if s.isClosed() {
		return storage.ErrClosed
	}
	s.area.mu.Lock()
	defer s.area.mu.Unlock()

	old, ok := s.area.items[key]
	if ok && old == value {
		return nil
	}
	s.area.items[key] = value
	s.area.broadcast(s, storage.Event{Key: key, OldValue: storage.Value(old, ok), NewValue: storage.Value(value, true)})
	return nil
}

func (s *Store) RemoveItem(_ context.Context, key string) error {
	if s.isClosed() {
		return storage.ErrClosed
	}
	s.area.mu.Lock()
	defer s.area.mu.Unlock()

	old, ok := s.area.items[key]
	if !ok {
		return nil
	}
	delete(s.area.items, key)
	s.area.broadcast(s, storage.Event{Key: key, OldValue: storage.Value(old, true)})
	return nil
}

// Clear empties the whole area; other handles get an event with an empty key.
func (s *Store) Clear(_ context.Context) error {
	if s.isClosed() {
		return storage.ErrClosed
	}
	s.area.mu.Lock()
	defer s.area.mu.Unlock()

	if len(s.area.items) == 0 {
		return nil
	}
	s.area.items = make(map[string]string)
	s.area.broadcast(s, storage.Event{})
	return nil
}

// Watch delivers events queued for this handle, including those queued
// before Watch was called.
func (s *Store) Watch(ctx context.Context, fn func(storage.Event)) error {
	for {
		s.mu.Lock()
		pending := s.queue
		s.queue = nil
		closed := s.closed
		s.mu.Unlock()

		for _, ev := range pending {
			fn(ev)
		}
		if closed {
			return storage.ErrClosed
		}

		select {
		case <-ctx.Done():
			return nil
		case <-s.wake:
		}
	}
}

// Close detaches the handle from the area.
func (s *Store) Close() error {
	s.area.mu.Lock()
	delete(s.area.handles, s)
	s.area.mu.Unlock()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.signal()
	return nil
}

func (s *Store) push(ev storage.Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()
	s.signal()
}

func (s *Store) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
