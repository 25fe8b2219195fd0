package auth

import (
	"time"

	"partner-media-backend/internal/client/kvstore"
)

const (
	failedAttemptsKey = "auth.failed_attempts"
	cooldownUntilKey  = "auth.cooldown_until"

	maxFailedAttempts = 5
	cooldownDuration  = 10 * time.Minute
)

// AttemptTracker counts consecutive failed sign-ins and enforces a cooldown
// after too many. State survives restarts via the device-local store.
type AttemptTracker struct {
	store *kvstore.Store
	now   func() time.Time
}

func NewAttemptTracker(store *kvstore.Store) *AttemptTracker {
	return &AttemptTracker{store: store, now: time.Now}
}

// InCooldown reports whether sign-in is currently locked out and for how
// much longer. An expired cooldown resets the counter.
func (t *AttemptTracker) InCooldown() (bool, time.Duration) {
	var until int64
	ok, err := t.store.Get(cooldownUntilKey, &until)
	if err != nil || !ok {
		return false, 0
	}
	deadline := time.UnixMilli(until)
	if t.now().After(deadline) {
		t.Reset()
		return false, 0
	}
	return true, deadline.Sub(t.now())
}

// RecordFailure increments the counter and starts the cooldown once the
// limit is reached. Returns the new count.
func (t *AttemptTracker) RecordFailure() int {
	var count int
	_, _ = t.store.Get(failedAttemptsKey, &count)
	count++
	_ = t.store.Set(failedAttemptsKey, count)
	if count >= maxFailedAttempts {
		_ = t.store.Set(cooldownUntilKey, t.now().Add(cooldownDuration).UnixMilli())
	}
	return count
}

func (t *AttemptTracker) Failures() int {
	var count int
	_, _ = t.store.Get(failedAttemptsKey, &count)
	return count
}

func (t *AttemptTracker) Reset() {
	_ = t.store.Delete(failedAttemptsKey)
	_ = t.store.Delete(cooldownUntilKey)
}
