// ABOUTME: Thread-safe TTL cache of seen authorization codes
// ABOUTME: Rejects replayed Microsoft codes before any provider round-trip

package replay

import (
	"container/list"
	"sync"
	"time"
)

// guardEntry stores the timestamp and list element for a cached code.
type guardEntry struct {
	timestamp time.Time
	element   *list.Element
}

// Guard provides a thread-safe, TTL-based, size-limited record of
// authorization codes the gateway has already attempted. Codes are single-use
// at the provider, so a repeat within the TTL is a replay and is rejected
// without an outbound call. Uses a doubly-linked list to maintain insertion
// order for O(1) eviction.
type Guard struct {
	mu      sync.Mutex
	seen    map[string]*guardEntry
	order   *list.List // codes in insertion order (oldest at front)
	ttl     time.Duration
	maxSize int
	done    chan struct{}
	closed  bool
}

// New creates a replay guard with the specified TTL and maximum size.
// A background goroutine periodically cleans up expired entries.
func New(ttl time.Duration, maxSize int) *Guard {
	g := &Guard{
		seen:    make(map[string]*guardEntry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	go g.cleanup()
	return g
}

// Seen atomically checks whether the code was already used and records
// it if not. Returns true if the code is a replay. The check and the record
// are one critical section so two concurrent requests with the same code
// cannot both pass.
func (g *Guard) Seen(code string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.seen[code]
	if ok && time.Since(entry.timestamp) < g.ttl {
		return true
	}

	g.recordLocked(code)
	return false
}

// recordLocked is the internal record implementation. Must be called with mu held.
func (g *Guard) recordLocked(code string) {
	now := time.Now()

	if entry, exists := g.seen[code]; exists {
		entry.timestamp = now
		g.order.MoveToBack(entry.element)
		return
	}

	if len(g.seen) >= g.maxSize {
		g.evictOldest()
	}

	elem := g.order.PushBack(code)
	g.seen[code] = &guardEntry{
		timestamp: now,
		element:   elem,
	}
}

// evictOldest removes the oldest entry. Must be called with mu held.
func (g *Guard) evictOldest() {
	front := g.order.Front()
	if front == nil {
		return
	}

	code, _ := front.Value.(string)
	g.order.Remove(front)
	delete(g.seen, code)
}

// cleanup runs in a background goroutine, periodically removing expired entries.
func (g *Guard) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.runCleanup()
		case <-g.done:
			return
		}
	}
}

// runCleanup removes all expired entries.
func (g *Guard) runCleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	for code, entry := range g.seen {
		if now.Sub(entry.timestamp) > g.ttl {
			g.order.Remove(entry.element)
			delete(g.seen, code)
		}
	}
}

// Close stops the background cleanup goroutine. Safe to call multiple times.
func (g *Guard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.closed {
		close(g.done)
		g.closed = true
	}
}
