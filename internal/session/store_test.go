package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func newSession(id string) *Session {
	return &Session{ID: id, Summary: "summary of " + id}
}

func TestGetOrCreateBuildsOnce(t *testing.T) {
	st := NewStore(0)
	builds := 0

	s1, created, err := st.GetOrCreate("abc", func() (*Session, error) {
		builds++
		return newSession("abc"), nil
	})
	require.NoError(t, err)
	require.True(t, created)

	s2, created, err := st.GetOrCreate("abc", func() (*Session, error) {
		builds++
		return newSession("abc"), nil
	})
	require.NoError(t, err)
	require.False(t, created)
	require.Same(t, s1, s2)
	require.Equal(t, 1, builds)
}

func TestGetOrCreateConcurrent(t *testing.T) {
	st := NewStore(0)
	var builds int64
	var wg sync.WaitGroup
	results := make([]*Session, 20)
	errs := make([]error, len(results))

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, errs[i] = st.GetOrCreate("abc", func() (*Session, error) {
				atomic.AddInt64(&builds, 1)
				return newSession("abc"), nil
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int64(1), atomic.LoadInt64(&builds))
	for _, s := range results {
		require.Same(t, results[0], s)
	}
	require.Equal(t, 1, st.Len())
}

func TestGetOrCreateDistinctIDs(t *testing.T) {
	st := NewStore(0)
	for _, id := range []string{"a", "b", "c"} {
		_, created, err := st.GetOrCreate(id, func() (*Session, error) { return newSession(id), nil })
		require.NoError(t, err)
		require.True(t, created)
	}
	require.Equal(t, 3, st.Len())
}

func TestFailedBuildInstallsNothing(t *testing.T) {
	st := NewStore(0)
	boom := errors.New("boom")

	_, _, err := st.GetOrCreate("abc", func() (*Session, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, st.Len())
	_, ok := st.Get("abc")
	require.False(t, ok)

	// A later attempt runs the build again.
	s, created, err := st.GetOrCreate("abc", func() (*Session, error) { return newSession("abc"), nil })
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "abc", s.ID)
}

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	st := NewStore(2)
	for _, id := range []string{"a", "b"} {
		_, _, err := st.GetOrCreate(id, func() (*Session, error) { return newSession(id), nil })
		require.NoError(t, err)
	}

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := st.Get("a")
	require.True(t, ok)

	_, _, err := st.GetOrCreate("c", func() (*Session, error) { return newSession("c"), nil })
	require.NoError(t, err)

	require.Equal(t, 2, st.Len())
	_, ok = st.Get("b")
	require.False(t, ok)
	_, ok = st.Get("a")
	require.True(t, ok)
	_, ok = st.Get("c")
	require.True(t, ok)
}
