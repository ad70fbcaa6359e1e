package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kobbyowen/focus/pkg/core/audit/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	entries []string
	err     error
	panics  bool
}

func (s *memoryStore) Append(_ context.Context, description string) (model.LogEntry, error) {
	if s.panics {
		panic("store exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return model.LogEntry{}, s.err
	}
	s.entries = append(s.entries, description)
	return model.LogEntry{ID: int64(len(s.entries)), Description: description}, nil
}

func (s *memoryStore) List(context.Context, int, int) ([]model.LogEntry, int64, error) {
	return nil, 0, nil
}

func (s *memoryStore) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.entries...)
}

func albumChange(id int64, from, to string) (Snapshot, Snapshot) {
	before := Snapshot{Kind: KindAlbum, ID: id, ActorID: 1, Fields: map[string]string{FieldName: from}}
	after := Snapshot{Kind: KindAlbum, ID: id, ActorID: 1, Fields: map[string]string{FieldName: to}}
	return before, after
}

func recordAlbumChange(d *Dispatcher, id int64, from, to string) {
	before, after := albumChange(id, from, to)
	d.Record(context.Background(), before, after)
}

func closeDispatcher(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
}

func TestDispatcherStoresDescriptions(t *testing.T) {
	store := &memoryStore{}
	d := NewDispatcher(store, Options{QueueSize: 16, Workers: 3})
	d.Start()

	for i := 0; i < 10; i++ {
		recordAlbumChange(d, int64(i), "old", fmt.Sprintf("new-%d", i))
	}
	closeDispatcher(t, d)

	assert.Len(t, store.snapshot(), 10)
}

func TestDispatcherSkipsUnwatchedChanges(t *testing.T) {
	store := &memoryStore{}
	reg := prometheus.NewRegistry()
	d := NewDispatcher(store, Options{QueueSize: 4, Registerer: reg})
	d.Start()

	recordAlbumChange(d, 1, "same", "same")
	closeDispatcher(t, d)

	assert.Empty(t, store.snapshot())
	assert.Equal(t, 0.0, testutil.ToFloat64(d.metrics.enqueued))
}

func TestDispatcherDropNewest(t *testing.T) {
	store := &memoryStore{}
	d := NewDispatcher(store, Options{QueueSize: 1, Workers: 1, Policy: DropNewest})

	// not started yet, so the queue fills up
	recordAlbumChange(d, 1, "a", "first")
	recordAlbumChange(d, 1, "a", "second")
	recordAlbumChange(d, 1, "a", "third")

	d.Start()
	closeDispatcher(t, d)

	entries := store.snapshot()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0], `"first"`)
	assert.Equal(t, 2.0, testutil.ToFloat64(d.metrics.dropped.WithLabelValues(dropOverflow)))
}

func TestDispatcherDropOldest(t *testing.T) {
	store := &memoryStore{}
	d := NewDispatcher(store, Options{QueueSize: 1, Workers: 1, Policy: DropOldest})

	recordAlbumChange(d, 1, "a", "first")
	recordAlbumChange(d, 1, "a", "second")
	recordAlbumChange(d, 1, "a", "third")

	d.Start()
	closeDispatcher(t, d)

	entries := store.snapshot()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0], `"third"`)
	assert.Equal(t, 2.0, testutil.ToFloat64(d.metrics.dropped.WithLabelValues(dropOverflow)))
}

func TestDispatcherFailuresAreContained(t *testing.T) {
	store := &memoryStore{err: errors.New("database is locked")}
	d := NewDispatcher(store, Options{QueueSize: 4})
	d.Start()

	assert.NotPanics(t, func() {
		recordAlbumChange(d, 1, "a", "b")
	})
	closeDispatcher(t, d)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.failed))

	panicky := &memoryStore{panics: true}
	d = NewDispatcher(panicky, Options{QueueSize: 4})
	d.Start()
	recordAlbumChange(d, 1, "a", "b")
	recordAlbumChange(d, 2, "a", "b")
	closeDispatcher(t, d)
	assert.Equal(t, 2.0, testutil.ToFloat64(d.metrics.failed))
}

func TestDispatcherRecordAfterClose(t *testing.T) {
	store := &memoryStore{}
	d := NewDispatcher(store, Options{QueueSize: 4})
	d.Start()
	closeDispatcher(t, d)

	assert.NotPanics(t, func() {
		recordAlbumChange(d, 1, "a", "b")
	})
	assert.Empty(t, store.snapshot())
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.dropped.WithLabelValues(dropClosed)))
}

func TestParseOverflowPolicy(t *testing.T) {
	assert.Equal(t, DropOldest, ParseOverflowPolicy("drop_oldest"))
	assert.Equal(t, DropNewest, ParseOverflowPolicy("drop_newest"))
	assert.Equal(t, DropNewest, ParseOverflowPolicy("block"))
}
