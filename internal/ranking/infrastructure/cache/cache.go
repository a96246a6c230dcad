// Package cache stores analysis results keyed by their inputs.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/ranking/domain"
)

// KeyPrefix namespaces result keys.
const KeyPrefix = "taskrank:analysis:"

// ResultCache stores analysis results. A miss is (nil, false, nil).
type ResultCache interface {
	Get(ctx context.Context, key string) (*domain.AnalysisResult, bool, error)
	Set(ctx context.Context, key string, result domain.AnalysisResult) error
}

// Key derives the cache key for one analysis. Due dates are whole days, so
// the result only varies with the UTC date of now.
func Key(tasks []domain.Task, strategy domain.Strategy, now time.Time) (string, error) {
	payload, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("failed to encode tasks for cache key: %w", err)
	}

	h := sha256.New()
	h.Write(payload)
	h.Write([]byte{0})
	h.Write([]byte(strategy))
	h.Write([]byte{0})
	h.Write([]byte(domain.DateOf(now.UTC()).String()))

	return KeyPrefix + hex.EncodeToString(h.Sum(nil)), nil
}

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*domain.AnalysisResult, bool, error) {
	return nil, false, nil
}

func (NoopCache) Set(context.Context, string, domain.AnalysisResult) error {
	return nil
}

type memoryEntry struct {
	result    domain.AnalysisResult
	expiresAt time.Time
}

// DefaultMemoryCacheSize caps the entries a MemoryCache holds.
const DefaultMemoryCacheSize = 1024

// MemoryCache is an in-process cache with a fixed TTL. Expired entries are
// swept on every Set; when the cache is still full the entry closest to
// expiry is evicted.
type MemoryCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]memoryEntry
	now        func() time.Time
}

// NewMemoryCache creates a cache whose entries expire after ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:        ttl,
		maxEntries: DefaultMemoryCacheSize,
		entries:    make(map[string]memoryEntry),
		now:        time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*domain.AnalysisResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	result := e.result
	return &result, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, result domain.AnalysisResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweep(now)
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[key] = memoryEntry{result: result, expiresAt: now.Add(c.ttl)}
	return nil
}

// Len returns the number of entries held, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) sweep(now time.Time) {
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

func (c *MemoryCache) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.expiresAt.Before(oldest) {
			oldestKey, oldest, found = k, e.expiresAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}
