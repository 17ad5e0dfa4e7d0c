// Package sqlitestore keeps the storage area in a sqlite table. Handles
// with their own connection to the same file are separate tabs; Watch polls
// PRAGMA data_version, which only moves when another connection commits.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gaylashop/storefront/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS local_storage (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const DefaultPollInterval = 250 * time.Millisecond

type Store struct {
	db       *sql.DB
	log      *zap.Logger
	interval time.Duration

	mu   sync.Mutex
	seen map[string]string
}

type Option func(*Store)

func WithPollInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

func New(ctx context.Context, db *sql.DB, opts ...Option) (*Store, error) {
	s := &Store{
		db:       db,
		log:      zap.NewNop(),
		interval: DefaultPollInterval,
		seen:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("component", "sqlitestore"))

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create local_storage table: %w", err)
	}
	return s, nil
}

func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) SetItem(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	s.seen[key] = value
	return nil
}

func (s *Store) RemoveItem(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	delete(s.seen, key)
	return nil
}

// Watch reports commits made through other connections until ctx is done.
func (s *Store) Watch(ctx context.Context, fn func(storage.Event)) error {
	version, err := s.dataVersion(ctx)
	if err != nil {
		return err
	}
	if _, err := s.scan(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		v, err := s.dataVersion(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Warn("poll data_version", zap.Error(err))
			continue
		}
		if v == version {
			continue
		}
		version = v

		events, err := s.scan(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Warn("scan local_storage", zap.Error(err))
			continue
		}
		for _, ev := range events {
			fn(ev)
		}
	}
}

func (s *Store) dataVersion(ctx context.Context) (int64, error) {
	var v int64
	if err := s.db.QueryRowContext(ctx, `PRAGMA data_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read data_version: %w", err)
	}
	return v, nil
}

// scan diffs the table against seen and returns one event per changed key.
// It holds mu for the whole read so a concurrent SetItem cannot be undone.
func (s *Store) scan(ctx context.Context) ([]storage.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM local_storage`)
	if err != nil {
		return nil, fmt.Errorf("list local_storage: %w", err)
	}
	defer rows.Close()

	current := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		current[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var events []storage.Event
	for k, v := range current {
		prev, ok := s.seen[k]
		ev := storage.Event{Key: k, OldValue: storage.Value(prev, ok), NewValue: storage.Value(v, true)}
		if storage.SameValue(ev.OldValue, ev.NewValue) {
			continue
		}
		events = append(events, ev)
	}
	for k, prev := range s.seen {
		if _, ok := current[k]; !ok {
			events = append(events, storage.Event{Key: k, OldValue: storage.Value(prev, true)})
		}
	}
	s.seen = current
	return events, nil
}
