package http

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	rateWindow     = time.Minute
	rateSweepEvery = 5 * time.Minute
	rateIdleAfter  = 10 * time.Minute
)

// rateLimiter counts mutating requests per client in fixed one-minute
// windows.
type rateLimiter struct {
	mu        sync.Mutex
	windows   map[string]*rateWindowState
	perMinute int
	now       func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

type rateWindowState struct {
	start time.Time
	seen  time.Time
	count int
}

func newRateLimiter(perMinute int) *rateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	rl := &rateLimiter{
		windows:   make(map[string]*rateWindowState),
		perMinute: perMinute,
		now:       time.Now,
		done:      make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (rl *rateLimiter) sweepLoop() {
	t := time.NewTicker(rateSweepEvery)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			rl.cleanupStaleEntries(rl.now())
		case <-rl.done:
			return
		}
	}
}

// cleanupStaleEntries forgets clients idle for longer than rateIdleAfter.
func (rl *rateLimiter) cleanupStaleEntries(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	removed := 0
	for key, w := range rl.windows {
		if now.Sub(w.seen) > rateIdleAfter {
			delete(rl.windows, key)
			removed++
		}
	}
	return removed
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// ActiveClients returns the number of tracked clients.
func (rl *rateLimiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.windows)
}

// allow records one request of client and reports whether it fits in the
// current window. When it does not, retry is the time left in the window.
func (rl *rateLimiter) allow(client string, metrics *securityMetrics) (ok bool, retry time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, found := rl.windows[client]
	if !found || now.Sub(w.start) >= rateWindow {
		rl.windows[client] = &rateWindowState{start: now, seen: now, count: 1}
		return true, 0
	}
	w.seen = now
	w.count++
	if w.count <= rl.perMinute {
		return true, 0
	}
	if metrics != nil {
		atomic.AddInt64(&metrics.rateLimitHits, 1)
	}
	return false, w.start.Add(rateWindow).Sub(now)
}
