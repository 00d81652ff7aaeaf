package service

import (
	"sync"
	"time"
)

// LoginAttempt tracks failures for one account or IP.
type LoginAttempt struct {
	FailCount   int
	LastAttempt time.Time
	LockedUntil time.Time
}

// LoginLimiter locks an account after repeated failed logins.
type LoginLimiter struct {
	attempts     map[string]*LoginAttempt
	mu           sync.RWMutex
	maxAttempts  int
	lockDuration time.Duration
	resetAfter   time.Duration
}

var (
	defaultLoginLimiter *LoginLimiter
	loginLimiterOnce    sync.Once
)

// GetLoginLimiter returns the account-keyed limiter singleton.
func GetLoginLimiter() *LoginLimiter {
	loginLimiterOnce.Do(func() {
		defaultLoginLimiter = NewLoginLimiter(5, 15*time.Minute, 30*time.Minute)
	})
	return defaultLoginLimiter
}

func NewLoginLimiter(maxAttempts int, lockDuration, resetAfter time.Duration) *LoginLimiter {
	ll := &LoginLimiter{
		attempts:     make(map[string]*LoginAttempt),
		maxAttempts:  maxAttempts,
		lockDuration: lockDuration,
		resetAfter:   resetAfter,
	}
	go ll.cleanup()
	return ll
}

// IsLocked reports whether the key is currently locked out.
func (ll *LoginLimiter) IsLocked(key string) (bool, time.Duration) {
	ll.mu.RLock()
	defer ll.mu.RUnlock()

	attempt, exists := ll.attempts[key]
	if !exists {
		return false, 0
	}

	if time.Now().Before(attempt.LockedUntil) {
		return true, time.Until(attempt.LockedUntil)
	}

	return false, 0
}

// RecordFailure counts a failed login; locking once the limit is hit.
func (ll *LoginLimiter) RecordFailure(key string) (locked bool, remaining time.Duration) {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	now := time.Now()
	attempt, exists := ll.attempts[key]

	if !exists {
		attempt = &LoginAttempt{}
		ll.attempts[key] = attempt
	}

	if now.Sub(attempt.LastAttempt) > ll.resetAfter {
		attempt.FailCount = 0
	}

	attempt.FailCount++
	attempt.LastAttempt = now

	if attempt.FailCount >= ll.maxAttempts {
		attempt.LockedUntil = now.Add(ll.lockDuration)
		return true, ll.lockDuration
	}

	return false, 0
}

// RecordSuccess clears the failure history for the key.
func (ll *LoginLimiter) RecordSuccess(key string) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	delete(ll.attempts, key)
}

// GetRemainingAttempts returns how many failures remain before lockout.
func (ll *LoginLimiter) GetRemainingAttempts(key string) int {
	ll.mu.RLock()
	defer ll.mu.RUnlock()

	attempt, exists := ll.attempts[key]
	if !exists {
		return ll.maxAttempts
	}

	if time.Since(attempt.LastAttempt) > ll.resetAfter {
		return ll.maxAttempts
	}

	remaining := ll.maxAttempts - attempt.FailCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (ll *LoginLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		ll.mu.Lock()
		now := time.Now()
		for key, attempt := range ll.attempts {
			if now.After(attempt.LockedUntil) && now.Sub(attempt.LastAttempt) > ll.resetAfter {
				delete(ll.attempts, key)
			}
		}
		ll.mu.Unlock()
	}
}

// IPLoginLimiter guards against one IP cycling through many accounts.
type IPLoginLimiter struct {
	attempts     map[string]*LoginAttempt
	mu           sync.RWMutex
	maxAttempts  int
	lockDuration time.Duration
	resetAfter   time.Duration
}

var (
	defaultIPLimiter *IPLoginLimiter
	ipLimiterOnce    sync.Once
)

// GetIPLoginLimiter returns the IP-keyed limiter singleton.
func GetIPLoginLimiter() *IPLoginLimiter {
	ipLimiterOnce.Do(func() {
		defaultIPLimiter = NewIPLoginLimiter(20, 30*time.Minute, time.Hour)
	})
	return defaultIPLimiter
}

func NewIPLoginLimiter(maxAttempts int, lockDuration, resetAfter time.Duration) *IPLoginLimiter {
	ll := &IPLoginLimiter{
		attempts:     make(map[string]*LoginAttempt),
		maxAttempts:  maxAttempts,
		lockDuration: lockDuration,
		resetAfter:   resetAfter,
	}
	go ll.cleanup()
	return ll
}

// IsLocked reports whether the IP is currently locked out.
func (ll *IPLoginLimiter) IsLocked(ip string) (bool, time.Duration) {
	ll.mu.RLock()
	defer ll.mu.RUnlock()

	attempt, exists := ll.attempts[ip]
	if !exists {
		return false, 0
	}

	if time.Now().Before(attempt.LockedUntil) {
		return true, time.Until(attempt.LockedUntil)
	}

	return false, 0
}

// RecordFailure counts a failed login from the IP.
func (ll *IPLoginLimiter) RecordFailure(ip string) (locked bool, remaining time.Duration) {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	now := time.Now()
	attempt, exists := ll.attempts[ip]

	if !exists {
		attempt = &LoginAttempt{}
		ll.attempts[ip] = attempt
	}

	if now.Sub(attempt.LastAttempt) > ll.resetAfter {
		attempt.FailCount = 0
	}

	attempt.FailCount++
	attempt.LastAttempt = now

	if attempt.FailCount >= ll.maxAttempts {
		attempt.LockedUntil = now.Add(ll.lockDuration)
		return true, ll.lockDuration
	}

	return false, 0
}

// RecordSuccess decrements the counter; the IP history is not fully
// cleared on a single success.
func (ll *IPLoginLimiter) RecordSuccess(ip string) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	if attempt, exists := ll.attempts[ip]; exists {
		attempt.FailCount--
		if attempt.FailCount <= 0 {
			delete(ll.attempts, ip)
		}
	}
}

func (ll *IPLoginLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		ll.mu.Lock()
		now := time.Now()
		for key, attempt := range ll.attempts {
			if now.After(attempt.LockedUntil) && now.Sub(attempt.LastAttempt) > ll.resetAfter {
				delete(ll.attempts, key)
			}
		}
		ll.mu.Unlock()
	}
}
