package bookmarks

import (
	"context"
	"errors"
	"testing"
	"time"

	"contentdesk/internal/cache"
	"contentdesk/internal/metrics"
	"contentdesk/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_ToggleScenario(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	set := Open(ctx, kv, "owner-1", "savedNews", nil)

	assert.True(t, set.Toggle(ctx, "42"))
	raw, found, err := kv.Get(ctx, "owner-1", "savedNews")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `["42"]`, string(raw))

	assert.False(t, set.Toggle(ctx, "42"))
	raw, _, _ = kv.Get(ctx, "owner-1", "savedNews")
	assert.JSONEq(t, `[]`, string(raw))
}

func TestSet_DoubleToggleRestoresMembership(t *testing.T) {
	ctx := context.Background()
	set := Open(ctx, NewMemoryKV(), "o", "", nil)
	set.Toggle(ctx, "a")
	set.Toggle(ctx, "b")

	for _, id := range []string{"a", "c"} {
		before := set.Contains(id)
		set.Toggle(ctx, id)
		set.Toggle(ctx, id)
		assert.Equal(t, before, set.Contains(id), "id %s", id)
	}
}

func TestSet_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	set := Open(ctx, kv, "o", "savedNews", nil)
	for _, id := range []string{"3", "1", "2"} {
		set.Toggle(ctx, id)
	}
	set.Toggle(ctx, "1")

	assert.Equal(t, []string{"3", "2"}, set.IDs())
	assert.Equal(t, 2, set.Len())
	raw, _, _ := kv.Get(ctx, "o", "savedNews")
	assert.Equal(t, `["3","2"]`, string(raw))
}

func TestOpen_ReadsPersistedSet(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, "o", "savedNews", []byte(`["7","9"]`)))

	set := Open(ctx, kv, "o", "savedNews", nil)

	assert.True(t, set.Contains("7"))
	assert.True(t, set.Contains("9"))
	assert.False(t, set.Contains("8"))
}

func TestOpen_MalformedValueStartsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, "o", "savedNews", []byte(`{"not":"an array"}`)))

	set := Open(ctx, kv, "o", "savedNews", nil)

	assert.Equal(t, 0, set.Len())
	assert.True(t, set.Toggle(ctx, "1"))
}

func TestSet_WriteFailureKeepsMemoryState(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT value FROM local_storage").
		WithArgs("owner-1", "savedNews").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	mock.ExpectExec("INSERT INTO local_storage").
		WillReturnError(errors.New("attempt to write a readonly database"))

	ctx := context.Background()
	set := Open(ctx, storage.NewFromDB(db, nil), "owner-1", "savedNews", nil)

	assert.True(t, set.Toggle(ctx, "42"))
	assert.True(t, set.Contains("42"), "in-memory state stays authoritative")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSet_ReadFailureStartsEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT value FROM local_storage").
		WillReturnError(errors.New("database is locked"))

	set := Open(context.Background(), storage.NewFromDB(db, nil), "owner-1", "savedNews", nil)

	assert.Equal(t, 0, set.Len())
}

func TestSet_SQLitePersistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := storage.Open(dir, nil)
	require.NoError(t, err)
	Open(ctx, store, "o", "savedNews", nil).Toggle(ctx, "42")
	require.NoError(t, store.Close())

	store, err = storage.Open(dir, nil)
	require.NoError(t, err)
	defer store.Close()

	assert.True(t, Open(ctx, store, "o", "savedNews", nil).Contains("42"))
}

func TestRegistry_OneSetPerOwner(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	r := NewRegistry(cache.NewManager(time.Minute), NewMemoryKV(), "", time.Minute, nil, m)

	a := r.For(ctx, "owner-a")
	assert.Same(t, a, r.For(ctx, "owner-a"))
	assert.NotSame(t, a, r.For(ctx, "owner-b"))
	assert.Equal(t, DefaultKey, r.Key())

	a.Toggle(ctx, "1")
	a.Toggle(ctx, "1")
	assert.False(t, r.For(ctx, "owner-b").Contains("1"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookmarkToggles.WithLabelValues("saved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookmarkToggles.WithLabelValues("removed")))
}

func TestRegistry_IdleSetsExpire(t *testing.T) {
	ctx := context.Background()
	cm := cache.NewManager(time.Minute)
	r := NewRegistry(cm, NewMemoryKV(), "", 200*time.Millisecond, nil, nil)

	a := r.For(ctx, "o")
	a.Toggle(ctx, "7")

	time.Sleep(120 * time.Millisecond)
	require.Same(t, a, r.For(ctx, "o"))
	time.Sleep(120 * time.Millisecond)
	require.Same(t, a, r.For(ctx, "o"), "access extends the lifetime")

	time.Sleep(300 * time.Millisecond)
	_, cached := cm.Get(cache.Key(cache.PrefixBookmarks, "o", DefaultKey))
	assert.False(t, cached)

	b := r.For(ctx, "o")
	assert.NotSame(t, a, b)
	assert.True(t, b.Contains("7"), "reopened from the store")
}
