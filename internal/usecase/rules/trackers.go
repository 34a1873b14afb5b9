package rules

import (
	"sync"
	"time"
)

type dupKey struct {
	viewerID string
	text     string
}

// Trackers holds the process-lifetime rate-limit state of one pipeline:
// recently seen (viewer, text) pairs, the last speak time per viewer and
// the last speak time overall. Deliberately not persisted; a restart
// starts the windows fresh.
type Trackers struct {
	mu         sync.Mutex
	recent     map[dupKey]time.Time
	lastUser   map[string]time.Time
	lastGlobal time.Time
}

func NewTrackers() *Trackers {
	return &Trackers{
		recent:   make(map[dupKey]time.Time),
		lastUser: make(map[string]time.Time),
	}
}

// CheckDuplicate reports whether the viewer sent the same (lowercased)
// text within window. When it is not a duplicate the pair is recorded at
// now and entries older than window are pruned.
func (t *Trackers) CheckDuplicate(viewerID, text string, window time.Duration, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := dupKey{viewerID: viewerID, text: text}
	if seen, ok := t.recent[key]; ok && now.Sub(seen) < window {
		return true
	}

	t.recent[key] = now
	for k, seen := range t.recent {
		if now.Sub(seen) >= window {
			delete(t.recent, k)
		}
	}
	return false
}

// UserRemaining returns how long the viewer still has to wait under the
// rule-based per-user cooldown, zero when they may speak.
func (t *Trackers) UserRemaining(viewerID string, gap time.Duration, now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	last, ok := t.lastUser[viewerID]
	if !ok {
		return 0
	}
	if remaining := gap - now.Sub(last); remaining > 0 {
		return remaining
	}
	return 0
}

// GlobalRemaining is UserRemaining against the single global timestamp.
func (t *Trackers) GlobalRemaining(gap time.Duration, now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.lastGlobal.IsZero() {
		return 0
	}
	if remaining := gap - now.Sub(t.lastGlobal); remaining > 0 {
		return remaining
	}
	return 0
}

// MarkSpoken records an accepted message for the next message's cooldown
// checks.
func (t *Trackers) MarkSpoken(viewerID string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastUser[viewerID] = now
	t.lastGlobal = now
}
