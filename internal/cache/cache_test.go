package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheManager_GetSet(t *testing.T) {
	cacheManager := NewManager(15 * time.Minute)

	cacheManager.Set("test-key", "test-value", 15*time.Minute)

	cached, found := cacheManager.Get("test-key")
	require.True(t, found, "expected to find cached value")
	assert.Equal(t, "test-value", cached)
}

func TestCacheManager_Delete(t *testing.T) {
	cacheManager := NewManager(15 * time.Minute)

	cacheManager.Set("test-key", "test-value", 15*time.Minute)
	_, found := cacheManager.Get("test-key")
	require.True(t, found)

	cacheManager.Delete("test-key")

	_, found = cacheManager.Get("test-key")
	assert.False(t, found, "expected cached value to be deleted")
}

func TestCacheManager_Flush(t *testing.T) {
	cacheManager := NewManager(15 * time.Minute)

	cacheManager.Set("key1", "value1", 15*time.Minute)
	cacheManager.Set("key2", "value2", 15*time.Minute)
	assert.Equal(t, 2, cacheManager.Len())

	cacheManager.Flush()

	assert.Equal(t, 0, cacheManager.Len())
}

func TestCacheManager_DeletePrefix(t *testing.T) {
	cacheManager := NewManager(time.Minute)

	cacheManager.Set(Key(PrefixCounters, "1"), 1, 0)
	cacheManager.Set(Key(PrefixCounters, "2"), 2, 0)
	cacheManager.Set(Key(PrefixCollection, "news"), "news", 0)

	removed := cacheManager.DeletePrefix(PrefixCounters + ":")

	assert.Equal(t, 2, removed)
	_, found := cacheManager.Get(Key(PrefixCollection, "news"))
	assert.True(t, found)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "collection:news", Key(PrefixCollection, "news"))
	assert.Equal(t, "bookmarks:owner-1:savedNews", Key(PrefixBookmarks, "owner-1", "savedNews"))
}

func TestCacheManager_GetOrLoad(t *testing.T) {
	cacheManager := NewManager(time.Minute)

	var calls int32
	load := func() (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "loaded", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := cacheManager.GetOrLoad("k", time.Minute, load)
			assert.NoError(t, err)
			assert.Equal(t, "loaded", v)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCacheManager_GetOrLoadError(t *testing.T) {
	cacheManager := NewManager(time.Minute)
	boom := errors.New("boom")

	_, err := cacheManager.GetOrLoad("k", time.Minute, func() (interface{}, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	_, found := cacheManager.Get("k")
	assert.False(t, found, "failed loads are not cached")
}
