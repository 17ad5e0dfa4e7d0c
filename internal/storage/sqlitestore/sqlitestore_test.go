package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gaylashop/storefront/internal/storage"
	"github.com/gaylashop/storefront/pkg/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openHandle(t *testing.T, path string) *Store {
	t.Helper()
	db, err := sqlite.Open(sqlite.Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := New(context.Background(), db, WithPollInterval(20*time.Millisecond))
	require.NoError(t, err)
	return s
}

func TestGetSetRemove(t *testing.T) {
	ctx := context.Background()
	s := openHandle(t, filepath.Join(t.TempDir(), "storefront.db"))

	_, ok, err := s.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetItem(ctx, "k", "v1"))
	require.NoError(t, s.SetItem(ctx, "k", "v2"))

	v, ok, err := s.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.RemoveItem(ctx, "k"))
	_, ok, err = s.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWatchSeesOtherConnection(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "storefront.db")
	writer := openHandle(t, path)
	reader := openHandle(t, path)

	require.NoError(t, writer.SetItem(ctx, "k", "v1"))

	readerEvents := make(chan storage.Event, 16)
	writerEvents := make(chan storage.Event, 16)
	done := make(chan error, 2)
	go func() { done <- reader.Watch(ctx, func(ev storage.Event) { readerEvents <- ev }) }()
	go func() { done <- writer.Watch(ctx, func(ev storage.Event) { writerEvents <- ev }) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, writer.SetItem(ctx, "k", "v2"))

	select {
	case ev := <-readerEvents:
		assert.Equal(t, "k", ev.Key)
		require.NotNil(t, ev.OldValue)
		assert.Equal(t, "v1", *ev.OldValue)
		require.NotNil(t, ev.NewValue)
		assert.Equal(t, "v2", *ev.NewValue)
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not observe the write")
	}

	require.NoError(t, writer.RemoveItem(ctx, "k"))
	select {
	case ev := <-readerEvents:
		assert.Nil(t, ev.NewValue)
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not observe the removal")
	}

	select {
	case ev := <-writerEvents:
		t.Fatalf("writer observed its own write: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	assert.NoError(t, <-done)
	assert.NoError(t, <-done)
}
