// Package storage defines the device-local key/value area the cart lives
// in, modelled on the browser's localStorage: string keys, string values,
// whole-value writes, and a change notification that reaches every other
// handle on the same area but never the handle that made the change.
package storage

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("storage: closed")

type Storage interface {
	// GetItem reports ok=false when the key is absent.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Event is delivered to the other handles of an area after a change.
// Key is empty when the whole area was cleared. A nil value means absent.
type Event struct {
	Key      string
	OldValue *string
	NewValue *string
}

// Watcher reports changes made through other handles. Watch blocks until
// ctx is done and returns nil in that case.
type Watcher interface {
	Watch(ctx context.Context, fn func(Event)) error
}

func ptr(s string) *string { return &s }

// Value returns a pointer to a copy of s, or nil when ok is false.
func Value(s string, ok bool) *string {
	if !ok {
		return nil
	}
	return ptr(s)
}

// SameValue compares two optional values.
func SameValue(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
