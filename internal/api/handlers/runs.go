package handlers

import (
	"os"
	"sync"
	"time"

	"stochastic-dispatch/internal/market"

	"github.com/google/uuid"
)

// DefaultRunTTL is how long a solved run stays retrievable.
const DefaultRunTTL = time.Hour

// Run is one cached solve.
type Run struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
	Solution  *market.Solution
}

// RunCache keeps solved snapshots in memory under generated IDs so clients
// can fetch the ledger of an earlier solve after the model has moved on.
type RunCache struct {
	mu    sync.RWMutex
	store map[string]*Run
	ttl   time.Duration
	now   func() time.Time
	done  chan struct{}
	once  sync.Once
}

// RunTTLFromEnv reads RUN_CACHE_TTL, falling back to DefaultRunTTL.
func RunTTLFromEnv() time.Duration {
	if raw := os.Getenv("RUN_CACHE_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return DefaultRunTTL
}

// NewRunCache starts a cache whose entries expire after ttl.
// Call Close to stop the cleanup goroutine.
func NewRunCache(ttl time.Duration) *RunCache {
	if ttl <= 0 {
		ttl = DefaultRunTTL
	}
	c := &RunCache{
		store: make(map[string]*Run),
		ttl:   ttl,
		now:   time.Now,
		done:  make(chan struct{}),
	}
	go c.cleanup(cleanupInterval(ttl))
	return c
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl < 5*time.Minute {
		return ttl
	}
	return 5 * time.Minute
}

// Add stores sol under a fresh ID.
func (c *RunCache) Add(sol *market.Solution) *Run {
	now := c.now()
	run := &Run{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
		Solution:  sol,
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[run.ID] = run
	return run
}

// Get returns the run if present and not expired.
func (c *RunCache) Get(id string) (*Run, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	run, ok := c.store[id]
	if !ok || c.now().After(run.ExpiresAt) {
		return nil, false
	}
	return run, true
}

func (c *RunCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

func (c *RunCache) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *RunCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for id, run := range c.store {
		if now.After(run.ExpiresAt) {
			delete(c.store, id)
		}
	}
}

// cleanup periodically removes expired entries
func (c *RunCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.done:
			return
		}
	}
}
