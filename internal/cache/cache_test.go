package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T, opts Options) (*Store, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	opts.Now = clock.Now
	return New(opts), clock
}

func TestDeriveKey(t *testing.T) {
	k1 := DeriveKey("quiz", "Software Development", "Go,SQL")
	k2 := DeriveKey("quiz", "Software Development", "Go,SQL")
	assert.Equal(t, k1, k2, "same input should produce same key")

	assert.NotEqual(t, k1, DeriveKey("quiz", "Data Science", "Go,SQL"))
	assert.NotEqual(t, DeriveKey("ab", "c"), DeriveKey("a", "bc"))
	assert.NotEqual(t, DeriveKey("a:b", "c"), DeriveKey("a", "b:c"))
	assert.NotEqual(t, DeriveKey("a", ""), DeriveKey("a"))
	assert.NotEqual(t, DeriveKey(""), DeriveKey())
	assert.Len(t, k1, 64)
}

func TestSetAndGet(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	payload := map[string]any{"questions": []string{"q1"}}

	s.Set("k", payload)

	got, ok := s.Get("k")
	require.True(t, ok, "expected cache hit")
	assert.Equal(t, payload, got)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestSetOverwrites(t *testing.T) {
	s, clock := newTestStore(t, Options{TTL: time.Hour})

	s.Set("k", "first")
	clock.Advance(50 * time.Minute)
	s.Set("k", "second")
	clock.Advance(50 * time.Minute)

	got, ok := s.Get("k")
	require.True(t, ok, "overwrite should reset the stored time")
	assert.Equal(t, "second", got)
	assert.Equal(t, 1, s.Stats().Count)
}

func TestTTLBoundary(t *testing.T) {
	t.Run("just before expiry", func(t *testing.T) {
		s, clock := newTestStore(t, Options{})
		s.Set("k", "v")
		clock.Advance(DefaultTTL - time.Millisecond)

		got, ok := s.Get("k")
		require.True(t, ok)
		assert.Equal(t, "v", got)
	})

	t.Run("exactly at TTL", func(t *testing.T) {
		s, clock := newTestStore(t, Options{})
		s.Set("k", "v")
		clock.Advance(DefaultTTL)

		_, ok := s.Get("k")
		assert.True(t, ok)
	})

	t.Run("just after expiry", func(t *testing.T) {
		s, clock := newTestStore(t, Options{})
		s.Set("k", "v")
		clock.Advance(DefaultTTL + time.Millisecond)

		_, ok := s.Get("k")
		assert.False(t, ok)

		stats := s.Stats()
		assert.NotContains(t, stats.Keys, "k")
		assert.Equal(t, 0, stats.Count)
		assert.Equal(t, 1, stats.Expired)
	})
}

func TestExpiredEntryStaysUntilRead(t *testing.T) {
	s, clock := newTestStore(t, Options{TTL: time.Minute})
	s.Set("k", "v")
	clock.Advance(2 * time.Minute)

	assert.Contains(t, s.Stats().Keys, "k", "stats must not expire entries")

	_, ok := s.Get("k")
	assert.False(t, ok)
	assert.NotContains(t, s.Stats().Keys, "k")
}

func TestSweep(t *testing.T) {
	s, clock := newTestStore(t, Options{TTL: time.Hour})
	s.Set("old-1", 1)
	s.Set("old-2", 2)
	clock.Advance(45 * time.Minute)
	s.Set("fresh", 3)
	clock.Advance(30 * time.Minute)

	removed := s.Sweep()
	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"fresh"}, s.Stats().Keys)
}

func TestClear(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	s.Set("h1", "data")
	s.Set("h2", "data")

	assert.Equal(t, 2, s.Clear())

	stats := s.Stats()
	assert.Equal(t, 0, stats.Count)
	assert.Empty(t, stats.Keys)
	_, ok := s.Get("h1")
	assert.False(t, ok)
}

func TestStats(t *testing.T) {
	s, clock := newTestStore(t, Options{})
	s.Set("h1", "data")
	clock.Advance(time.Minute)
	s.Set("h2", "data")

	s.Get("h1") // hit
	s.Get("h3") // miss

	stats := s.Stats()
	assert.Equal(t, 2, stats.Count)
	assert.ElementsMatch(t, []string{"h1", "h2"}, stats.Keys)
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
	require.NotNil(t, stats.OldestEntry)
	require.NotNil(t, stats.NewestEntry)
	assert.True(t, stats.OldestEntry.Before(*stats.NewestEntry))
}

func TestMaxEntriesEvictsLeastRecentlyUsed(t *testing.T) {
	s, _ := newTestStore(t, Options{MaxEntries: 2})
	s.Set("a", 1)
	s.Set("b", 2)
	s.Get("a")
	s.Set("c", 3)

	_, ok := s.Get("b")
	assert.False(t, ok, "b was least recently used")
	_, ok = s.Get("a")
	assert.True(t, ok)
	_, ok = s.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 1, s.Stats().Evictions)
}

func TestConcurrentAccess(t *testing.T) {
	s, clock := newTestStore(t, Options{TTL: time.Second})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("k%d", j%10)
				s.Set(key, i)
				s.Get(key)
				if j%50 == 0 {
					clock.Advance(100 * time.Millisecond)
					s.Sweep()
				}
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, s.Stats().Count, 10)
}
