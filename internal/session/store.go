package session

import (
	"container/list"
	"sync"

	"golang.org/x/sync/singleflight"

	"ytlearn/internal/domain"
	"ytlearn/internal/vectorindex"
)

// Session is the immutable result of ingesting one transcript. Chunks and
// Vectors are positionally aligned and match the index size. Nothing mutates
// a session after it is installed in the store.
type Session struct {
	ID      string
	Chunks  []domain.Chunk
	Vectors [][]float32
	Index   *vectorindex.Index
	Summary string
}

// Store is a process-wide session registry with atomic get-or-create
// semantics per identifier. Concurrent creations of the same id collapse
// into a single build; distinct ids build in parallel. With a positive
// capacity the store evicts the least recently used session; capacity 0
// never evicts.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*list.Element
	order    *list.List // front = most recently used
	capacity int

	group singleflight.Group
}

// NewStore creates a session store. capacity <= 0 means unbounded.
func NewStore(capacity int) *Store {
	if capacity < 0 {
		capacity = 0
	}
	return &Store{
		sessions: make(map[string]*list.Element),
		order:    list.New(),
		capacity: capacity,
	}
}

// Get returns the session for id, if present.
func (st *Store) Get(id string) (*Session, bool) {
	if st.capacity == 0 {
		st.mu.RLock()
		defer st.mu.RUnlock()
		el, ok := st.sessions[id]
		if !ok {
			return nil, false
		}
		return el.Value.(*Session), true
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	el, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	st.order.MoveToFront(el)
	return el.Value.(*Session), true
}

// Len returns the number of installed sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// GetOrCreate returns the session for id, building and installing it with
// build if absent. The boolean reports whether this call performed the
// build. No store lock is held while build runs; ownership of the id is
// established through a per-key flight, so concurrent callers for one id
// wait for the first build instead of duplicating it. A failed build
// installs nothing.
func (st *Store) GetOrCreate(id string, build func() (*Session, error)) (*Session, bool, error) {
	if s, ok := st.Get(id); ok {
		return s, false, nil
	}
	created := false
	v, err, _ := st.group.Do(id, func() (interface{}, error) {
		if s, ok := st.Get(id); ok {
			return s, nil
		}
		s, err := build()
		if err != nil {
			return nil, err
		}
		st.install(s)
		created = true
		return s, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*Session), created, nil
}

func (st *Store) install(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if el, ok := st.sessions[s.ID]; ok {
		// Lost a race we should never lose; keep the installed one.
		st.order.MoveToFront(el)
		return
	}
	st.sessions[s.ID] = st.order.PushFront(s)
	if st.capacity > 0 && st.order.Len() > st.capacity {
		oldest := st.order.Back()
		st.order.Remove(oldest)
		delete(st.sessions, oldest.Value.(*Session).ID)
	}
}
