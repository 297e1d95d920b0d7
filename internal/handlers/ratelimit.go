package handlers

import (
	"sync"

	"golang.org/x/time/rate"
)

// pruneAbove bounds the limiter map; idle users are dropped once it grows past this.
const pruneAbove = 1024

// userLimiter hands out one token bucket per user.
type userLimiter struct {
	mu     sync.Mutex
	limit  rate.Limit
	burst  int
	byUser map[string]*rate.Limiter
}

func newUserLimiter(perSecond float64, burst int) *userLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &userLimiter{limit: limit, burst: burst, byUser: make(map[string]*rate.Limiter)}
}

func (l *userLimiter) Allow(userID string) bool {
	if l.limit == rate.Inf {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.byUser[userID]
	if !ok {
		if len(l.byUser) >= pruneAbove {
			l.pruneLocked()
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.byUser[userID] = lim
	}
	return lim.Allow()
}

// pruneLocked drops limiters whose bucket has refilled, i.e. idle users.
func (l *userLimiter) pruneLocked() {
	for id, lim := range l.byUser {
		if lim.Tokens() >= float64(l.burst) {
			delete(l.byUser, id)
		}
	}
}

func (l *userLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byUser)
}
