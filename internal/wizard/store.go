package wizard

import (
	"time"

	"github.com/patrickmn/go-cache"

	"promovideo/internal/infra"
)

// Store keeps live sessions in memory with an idle TTL. An expired or
// deleted session is torn down through the eviction hook, which releases its
// uploaded-preview handles and abandons any running job.
type Store struct {
	cache  *cache.Cache
	logger infra.Logger
}

func NewStore(ttl time.Duration, logger infra.Logger) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := cache.New(ttl, 10*time.Minute)
	c.OnEvicted(func(id string, v interface{}) {
		if sess, ok := v.(*Session); ok {
			sess.Teardown()
			logger.Debug().Str("session_id", id).Msg("wizard: session evicted")
		}
	})
	return &Store{cache: c, logger: logger}
}

// Put registers a session under its id.
func (s *Store) Put(sess *Session) {
	s.cache.SetDefault(sess.ID, sess)
}

// Get returns the session and refreshes its idle TTL.
func (s *Store) Get(id string) (*Session, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	sess := v.(*Session)
	s.cache.SetDefault(id, sess)
	return sess, true
}

// Delete removes a session; teardown runs via the eviction hook.
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}
