// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// sweepEvery is how often idle clients are dropped from memory.
const sweepEvery = 5 * time.Minute

// RateLimiter counts requests per client address over a sliding window.
// Clients are told apart by the host part of r.RemoteAddr only. When the
// site runs behind a reverse proxy, mount chi's RealIP ahead of the limiter
// so RemoteAddr already holds the forwarded address.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time

	stop     chan struct{}
	stopOnce sync.Once

	// Message is the body sent with 429 responses.
	Message string
}

// NewRateLimiter allows limit requests per client within window and starts
// the sweeper that forgets idle clients. Call Stop to end it.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		hits:    make(map[string][]time.Time),
		stop:    make(chan struct{}),
		Message: http.StatusText(http.StatusTooManyRequests),
	}
	go rl.sweepLoop()
	return rl
}

// Stop ends the sweeper. Calling it more than once is fine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

// take records a request for key. When the window is already full it
// records nothing and returns how long until the oldest request expires.
func (rl *RateLimiter) take(key string) (wait time.Duration, ok bool) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	recent := live(rl.hits[key], now.Add(-rl.window))
	if len(recent) >= rl.limit {
		rl.hits[key] = recent
		return recent[0].Add(rl.window).Sub(now), false
	}
	rl.hits[key] = append(recent, now)
	return 0, true
}

// sweep forgets clients with no request inside the window.
func (rl *RateLimiter) sweep() {
	cutoff := rl.now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, ts := range rl.hits {
		if len(live(ts, cutoff)) == 0 {
			delete(rl.hits, key)
		}
	}
}

// live drops the leading timestamps at or before cutoff. ts is in
// ascending order.
func live(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}

// Middleware rejects requests over the limit with 429 and a Retry-After
// header in whole seconds.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wait, ok := rl.take(remoteHost(r))
		if !ok {
			secs := int(math.Ceil(wait.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
			http.Error(w, rl.Message, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// remoteHost is the host part of r.RemoteAddr, or the whole value when it
// carries no port.
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
