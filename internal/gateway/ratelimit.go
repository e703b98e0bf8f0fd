package gateway

import (
	"net"
	"sync"
	"time"
)

const (
	authRateWindow   = 5 * time.Minute
	authRateMaxFails = 10
	authRateMaxIPs   = 10000
)

// authRateLimiter tracks failed handshakes per remote host.
type authRateLimiter struct {
	mu       sync.Mutex
	failures map[string][]time.Time
	now      func() time.Time
}

func newAuthRateLimiter() *authRateLimiter {
	return &authRateLimiter{failures: make(map[string][]time.Time), now: time.Now}
}

func hostOf(remoteAddr string) string {
	host, _, _ := net.SplitHostPort(remoteAddr)
	if host == "" {
		return remoteAddr
	}
	return host
}

// recentLocked drops expired failures for host and returns the rest.
func (l *authRateLimiter) recentLocked(host string, cutoff time.Time) []time.Time {
	recent := l.failures[host]
	kept := recent[:0]
	for _, t := range recent {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.failures, host)
		return nil
	}
	l.failures[host] = kept
	return kept
}

func (l *authRateLimiter) allow(remoteAddr string) bool {
	host := hostOf(remoteAddr)
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.recentLocked(host, l.now().Add(-authRateWindow))) < authRateMaxFails
}

func (l *authRateLimiter) recordFailure(remoteAddr string) {
	host := hostOf(remoteAddr)
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if _, tracked := l.failures[host]; !tracked && len(l.failures) >= authRateMaxIPs {
		l.evictLocked(now.Add(-authRateWindow))
	}
	l.failures[host] = append(l.failures[host], now)
}

// evictLocked prunes expired hosts, then the host with the oldest failure
// if the table is still full.
func (l *authRateLimiter) evictLocked(cutoff time.Time) {
	for host := range l.failures {
		l.recentLocked(host, cutoff)
	}
	if len(l.failures) < authRateMaxIPs {
		return
	}
	var oldest string
	var oldestAt time.Time
	for host, times := range l.failures {
		if oldest == "" || times[0].Before(oldestAt) {
			oldest, oldestAt = host, times[0]
		}
	}
	delete(l.failures, oldest)
}
