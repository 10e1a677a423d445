package services

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type phoneLimiter struct {
	limiter *rate.Limiter
	seen    time.Time
}

// PhoneThrottle limits how often a verification code may be requested for
// the same phone number.
type PhoneThrottle struct {
	limiters  map[string]*phoneLimiter
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// A limiter left alone for a full refill window has its whole burst back and
// can be dropped without changing any decision.
const throttleIdle = time.Minute

// NewPhoneThrottle allows perMinute sends per phone number. A non-positive
// value disables throttling.
func NewPhoneThrottle(perMinute int) *PhoneThrottle {
	if perMinute <= 0 {
		return nil
	}
	return &PhoneThrottle{
		limiters: make(map[string]*phoneLimiter),
		rate:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		now:      time.Now,
	}
}

// Allow reports whether another code may be sent to phone right now.
func (t *PhoneThrottle) Allow(phone string) bool {
	if t == nil {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if now.Sub(t.lastSweep) >= throttleIdle {
		for key, entry := range t.limiters {
			if now.Sub(entry.seen) >= throttleIdle {
				delete(t.limiters, key)
			}
		}
		t.lastSweep = now
	}

	entry, ok := t.limiters[phone]
	if !ok {
		entry = &phoneLimiter{limiter: rate.NewLimiter(t.rate, t.burst)}
		t.limiters[phone] = entry
	}
	entry.seen = now

	return entry.limiter.AllowN(now, 1)
}
