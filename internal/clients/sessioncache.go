package clients

import (
	"sync"
	"time"

	"github.com/techblueera/be-health-service-sub001/internal/models"
)

type sessionEntry struct {
	session   *models.Session
	expiresAt time.Time
}

// SessionCache is a process-wide TTL cache for session validation
// results. It is bounded in time, not in size; stale entries are never
// served and the cache can be cleared wholesale.
type SessionCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]sessionEntry
	now     func() time.Time
}

// NewSessionCache creates a cache with the given fixed TTL.
func NewSessionCache(ttl time.Duration) *SessionCache {
	return &SessionCache{
		ttl:     ttl,
		entries: make(map[string]sessionEntry),
		now:     time.Now,
	}
}

// Get returns the cached session for token, or false when absent or
// past its expiry instant.
func (c *SessionCache) Get(token string) (*models.Session, bool) {
	c.mu.RLock()
	entry, ok := c.entries[token]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.session, true
}

// Set stores a validation result under token with the fixed TTL.
func (c *SessionCache) Set(token string, session *models.Session) {
	c.mu.Lock()
	c.entries[token] = sessionEntry{
		session:   session,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *SessionCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]sessionEntry)
	c.mu.Unlock()
}

// Len returns the current entry count, expired entries included.
func (c *SessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
