// Package broadcast is the in-process message channel shared by the
// components of one tab.
package broadcast

import (
	"sync"
)

type Kind string

const (
	// KindCartUpdated follows every persisted cart write in this tab.
	KindCartUpdated Kind = "cart-updated"
	// KindStorage carries a storage change made by another tab.
	KindStorage Kind = "storage"
)

type Message struct {
	Kind     Kind
	Key      string
	OldValue *string
	NewValue *string
}

// Channel fans every published message out to all current subscribers.
// Publish never blocks: each subscriber has its own unbounded queue.
type Channel struct {
	mu     sync.Mutex
	subs   map[*subscription]struct{}
	closed bool
}

func New() *Channel {
	return &Channel{subs: make(map[*subscription]struct{})}
}

func (c *Channel) Publish(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for s := range c.subs {
		s.enqueue(msg)
	}
}

// Subscribe returns the message stream and a cancel func that stops
// delivery and closes the stream. Cancel is safe to call more than once.
func (c *Channel) Subscribe() (<-chan Message, func()) {
	s := &subscription{
		wake:    make(chan struct{}, 1),
		out:     make(chan Message),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(s.out)
		return s.out, func() {}
	}
	c.subs[s] = struct{}{}
	c.mu.Unlock()

	go s.pump()

	cancel := func() {
		c.mu.Lock()
		delete(c.subs, s)
		c.mu.Unlock()
		s.stop()
	}
	return s.out, cancel
}

// Close cancels every subscription; later Publish calls are dropped.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := c.subs
	c.subs = make(map[*subscription]struct{})
	c.mu.Unlock()

	for s := range subs {
		s.stop()
	}
}

type subscription struct {
	once    sync.Once
	mu      sync.Mutex
	queue   []Message
	wake    chan struct{}
	out     chan Message
	done    chan struct{}
	stopped chan struct{}
}

func (s *subscription) enqueue(msg Message) {
	s.mu.Lock()
	s.queue = append(s.queue, msg)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscription) stop() {
	s.once.Do(func() { close(s.done) })
	<-s.stopped
}

func (s *subscription) pump() {
	defer close(s.stopped)
	defer close(s.out)

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		msg := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- msg:
		case <-s.done:
			return
		}
	}
}
