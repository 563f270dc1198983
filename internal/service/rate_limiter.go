package service

import (
	"context"
	"sync"
	"time"
)

// ResetRateLimiter limita la frecuencia de solicitudes de reseteo por clave.
type ResetRateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

type memoryRateLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	hits      map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryRateLimiter crea un rate limiter en memoria de ventana deslizante.
// Las claves sin hits dentro de la ventana se eliminan como maximo una vez
// por ventana.
func NewMemoryRateLimiter(window time.Duration, max int) ResetRateLimiter {
	return newMemoryRateLimiter(window, max)
}

func newMemoryRateLimiter(window time.Duration, max int) *memoryRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memoryRateLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *memoryRateLimiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	cutoff := now.Add(-l.window)
	if now.Sub(l.lastSweep) >= l.window {
		l.sweep(cutoff)
		l.lastSweep = now
	}

	kept := pruneBefore(l.hits[key], cutoff)
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	l.hits[key] = append(kept, now)
	return true
}

// sweep elimina las claves cuyo ultimo hit ya salio de la ventana.
func (l *memoryRateLimiter) sweep(cutoff time.Time) {
	for key, entries := range l.hits {
		if len(entries) == 0 || !entries[len(entries)-1].After(cutoff) {
			delete(l.hits, key)
		}
	}
}

func pruneBefore(entries []time.Time, cutoff time.Time) []time.Time {
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}
