package cache

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/JustJay7/ecourts-fetcher/internal/scraper"
)

// SessionStore parks search sessions between the CAPTCHA and the submission
type SessionStore struct {
	cache *cache.Cache
}

// NewSessionStore creates a store whose sessions expire after ttl
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{cache: cache.New(ttl, ttl)}
}

func (s *SessionStore) Put(sess *scraper.SearchSession) {
	s.cache.Set(sess.ID, sess, cache.DefaultExpiration)
}

func (s *SessionStore) Get(id string) (*scraper.SearchSession, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*scraper.SearchSession)
	return sess, ok
}

// Take returns the session and removes it, so a CAPTCHA answer is only
// submitted once
func (s *SessionStore) Take(id string) (*scraper.SearchSession, bool) {
	sess, ok := s.Get(id)
	if ok {
		s.cache.Delete(id)
	}
	return sess, ok
}

func (s *SessionStore) Len() int {
	return s.cache.ItemCount()
}
