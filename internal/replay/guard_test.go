// ABOUTME: Tests for the authorization-code replay guard
// ABOUTME: Covers first-use acceptance, replay rejection, TTL expiry, and eviction

package replay

import (
	"testing"
	"time"
)

func TestGuard_FirstUseNotSeen(t *testing.T) {
	g := New(time.Minute, 100)
	defer g.Close()

	if g.Seen("code-1") {
		t.Error("first use should not be seen")
	}
}

func TestGuard_ReplayIsSeen(t *testing.T) {
	g := New(time.Minute, 100)
	defer g.Close()

	if g.Seen("code-1") {
		t.Fatal("first use should not be seen")
	}
	if !g.Seen("code-1") {
		t.Error("second use should be seen")
	}
}

func TestGuard_ExpiredCodeNotSeen(t *testing.T) {
	g := New(10*time.Millisecond, 100)
	defer g.Close()

	g.Seen("code-1")
	time.Sleep(20 * time.Millisecond)

	if g.Seen("code-1") {
		t.Error("expired code should not count as seen")
	}
}

func TestGuard_EvictsOldestAtCapacity(t *testing.T) {
	g := New(time.Minute, 2)
	defer g.Close()

	g.Seen("a")
	g.Seen("b")
	g.Seen("c") // evicts "a"

	if g.Seen("a") {
		t.Error("evicted code should not be seen")
	}
	if !g.Seen("c") {
		t.Error("recent code should still be seen")
	}
}

func TestGuard_CloseIsIdempotent(t *testing.T) {
	g := New(time.Minute, 10)
	g.Close()
	g.Close()
}
