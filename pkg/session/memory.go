// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package session implements the resumption collaborator the handshake
// driver's handshake-type resolver consults (pkg/handshakefsm's
// SessionCache interface): a fixed-capacity, sharded in-memory store
// keyed by session id.
package session

import (
	"sync"

	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// entry is one cached session's resumable state.
type entry struct {
	masterSecret  []byte
	cipherSuiteID uint16
}

// shard bounds how many sessions a single registrable domain may hold,
// so one SNI name offering many subdomains (each with its own session
// id) cannot evict every other domain's cached sessions. Capacity is
// enforced FIFO rather than LRU: simple, and resumption cache entries
// are cheap to regenerate on a miss.
type shard struct {
	mu       sync.Mutex
	sessions map[string]entry
	order    []string
	capacity int
}

func newShard(capacity int) *shard {
	return &shard{sessions: make(map[string]entry), capacity: capacity}
}

func (s *shard) store(sessionID string, e entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[sessionID]; !exists {
		s.order = append(s.order, sessionID)
	}
	s.sessions[sessionID] = e
	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.sessions, oldest)
	}
}

func (s *shard) get(sessionID string) (entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	return e, ok
}

func (s *shard) delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// DefaultShardCapacity is how many sessions MemoryCache keeps per
// registrable domain before evicting the oldest.
const DefaultShardCapacity = 1024

// MemoryCache is an in-memory SessionCache (pkg/handshakefsm.SessionCache).
// Sessions are sharded by the server_name's effective TLD+1 (Key) so a
// single cache instance can serve many virtual hosts without one noisy
// subdomain starving another's resumption entries.
type MemoryCache struct {
	capacity int

	mu     sync.Mutex
	shards map[string]*shard

	// sessionShard remembers which shard a session id was stored under,
	// since Resume/Delete are keyed by session id alone (the
	// SessionCache interface carries no server name).
	sessionShard map[string]string
}

// NewMemoryCache returns a MemoryCache that caps each registrable
// domain's share of the cache at capacity sessions.
func NewMemoryCache(capacity int) *MemoryCache {
	if capacity <= 0 {
		capacity = DefaultShardCapacity
	}
	return &MemoryCache{
		capacity:     capacity,
		shards:       make(map[string]*shard),
		sessionShard: make(map[string]string),
	}
}

// Key derives the effective-TLD+1 sharding key for serverName, the way
// SPEC_FULL.md's session cache section calls for: a session cache keyed
// by registrable domain rather than raw SNI. Unparseable names (IP
// literals, single-label names, SNI left blank) fall back to the name
// itself, which simply means that name gets its own shard.
func Key(serverName string) string {
	if serverName == "" {
		return ""
	}
	domain, err := publicsuffix.Parse(serverName)
	if err != nil || domain.SLD == "" {
		return serverName
	}
	return domain.SLD + "." + domain.TLD
}

func (c *MemoryCache) shardFor(key string) *shard {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.shards[key]
	if !ok {
		s = newShard(c.capacity)
		c.shards[key] = s
	}
	return s
}

// StoreForName records a newly negotiated session under sessionID,
// sharded by serverName's registrable domain. The handshake driver's
// handlers do not call it: they store through the SessionCache
// interface's plain Store.
func (c *MemoryCache) StoreForName(serverName string, sessionID, masterSecret []byte, cipherSuiteID uint16) {
	key := Key(serverName)
	c.shardFor(key).store(string(sessionID), entry{masterSecret: masterSecret, cipherSuiteID: cipherSuiteID})

	c.mu.Lock()
	c.sessionShard[string(sessionID)] = key
	c.mu.Unlock()
}

// Store implements pkg/handshakefsm.SessionCache. It shards under the
// empty-name key; callers that have a server name should prefer
// StoreForName so resumption lookups get domain-level fanout bounding.
func (c *MemoryCache) Store(sessionID, masterSecret []byte, cipherSuiteID uint16) {
	c.StoreForName("", sessionID, masterSecret, cipherSuiteID)
}

// Resume implements pkg/handshakefsm.SessionCache.
func (c *MemoryCache) Resume(sessionID []byte) (masterSecret []byte, cipherSuiteID uint16, found bool) {
	c.mu.Lock()
	key, ok := c.sessionShard[string(sessionID)]
	c.mu.Unlock()
	if !ok {
		return nil, 0, false
	}
	e, ok := c.shardFor(key).get(string(sessionID))
	if !ok {
		return nil, 0, false
	}
	return e.masterSecret, e.cipherSuiteID, true
}

// Delete implements pkg/handshakefsm.SessionCache.
func (c *MemoryCache) Delete(sessionID []byte) {
	c.mu.Lock()
	key, ok := c.sessionShard[string(sessionID)]
	delete(c.sessionShard, string(sessionID))
	c.mu.Unlock()
	if ok {
		c.shardFor(key).delete(string(sessionID))
	}
}
