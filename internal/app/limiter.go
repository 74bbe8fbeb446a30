package app

import (
	"sync"
	"time"

	"github.com/peerline/peerline/internal/domain"
)

// JoinLimiter bounds how often one peer may join rooms, over a sliding
// window.
type JoinLimiter struct {
	mu      sync.Mutex
	history map[domain.PeerID][]time.Time
	limit   int
	window  time.Duration
}

func NewJoinLimiter(limit int, window time.Duration) *JoinLimiter {
	return &JoinLimiter{
		history: make(map[domain.PeerID][]time.Time),
		limit:   limit,
		window:  window,
	}
}

func (l *JoinLimiter) Allow(peer domain.PeerID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-l.window)

	attempts := l.history[peer]

	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= l.limit {
		l.history[peer] = fresh
		return false
	}

	l.history[peer] = append(fresh, now)
	return true
}
