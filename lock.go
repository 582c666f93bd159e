package redis

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// unlockScript is submitted verbatim via EVAL — DistributedLock never
// embeds a scripting engine, it only ships this one Lua payload so release
// can check-and-delete atomically server-side, per spec §4.9:
//
//	if redis.call("get", KEYS[1]) == ARGV[1]
//	  then return redis.call("del", KEYS[1])
//	  else return 0
//	end
const unlockScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

// LockInfo identifies one successful lock acquisition.
type LockInfo struct {
	Name      string
	Token     string
	Validity  time.Duration
	CreatedAt time.Time
}

// IsValid reports whether the lock's validity window has not yet elapsed,
// per spec: now - created_at < validity.
func (l LockInfo) IsValid() bool {
	return time.Since(l.CreatedAt) < l.Validity
}

func lockKey(name string) string { return "lock:" + name }

// DistributedLock implements SET-NX-PX mutual exclusion over one
// DirectClient, with bounded-random retry on contention and a
// token-guarded, Lua-atomic release. Known weakness (spec §4.9): if the
// validity window elapses before the critical section completes, two
// callers can believe they hold the lock simultaneously. Callers needing
// strict mutual exclusion must layer their own fencing on top.
type DistributedLock struct {
	client   *DirectClient
	observer Observer
}

// NewDistributedLock binds a lock session to client.
func NewDistributedLock(client *DirectClient, observer Observer) *DistributedLock {
	if observer == nil {
		observer = NopObserver{}
	}
	return &DistributedLock{client: client, observer: observer}
}

// TryLock attempts to acquire name, retrying on contention for up to
// cfg.Timeout. It returns (nil, nil) on a clean timeout — contention is
// not an error — and a non-nil error only for a caller-side or transport
// fault, or an error reply from the server.
func (l *DistributedLock) TryLock(name string, cfg LockConfig) (*LockInfo, error) {
	if name == "" {
		return nil, ErrInvalidArgument
	}
	cfg = cfg.withDefaults()
	start := time.Now()

	for {
		token := uuid.New().String()
		v, err := l.client.do("SET", lockKey(name), token, "PX", cfg.Validity.Milliseconds(), "NX")
		if err != nil {
			l.observer.OnLockAcquire(LockError, 0)
			return nil, err
		}
		if !v.IsError && v.Text == "OK" {
			l.observer.OnLockAcquire(LockAcquired, 0)
			return &LockInfo{
				Name:      name,
				Token:     token,
				Validity:  cfg.Validity,
				CreatedAt: time.Now(),
			}, nil
		}
		if v.IsError {
			l.observer.OnLockAcquire(LockError, 0)
			return nil, ServerError(v.Text)
		}

		if time.Since(start) >= cfg.Timeout {
			l.observer.OnLockAcquire(LockFailed, 0)
			return nil, nil
		}
		delay := cfg.MinDelay
		if span := cfg.MaxDelay - cfg.MinDelay; span > 0 {
			delay += time.Duration(rand.Int63n(int64(span) + 1))
		}
		remaining := cfg.Timeout - time.Since(start)
		if delay > remaining {
			delay = remaining
		}
		if delay > 0 {
			time.Sleep(delay)
		}
	}
}

// Unlock releases info's lock if and only if info.Token still matches the
// value stored server-side — evaluated atomically via unlockScript, so a
// lock that expired and was re-acquired by someone else is never released
// out from under them. A false return (with nil error) means the lock was
// already lost to expiry; spec §4.9 treats that as non-fatal, just record
// it.
func (l *DistributedLock) Unlock(info *LockInfo) (bool, error) {
	if info == nil || info.Name == "" || info.Token == "" {
		return false, ErrInvalidArgument
	}
	v, err := l.client.do("EVAL", unlockScript, "1", lockKey(info.Name), info.Token)
	if err != nil {
		l.observer.OnLockAcquire(LockUnlockError, 0)
		return false, err
	}
	if v.IsError {
		l.observer.OnLockAcquire(LockUnlockError, 0)
		return false, ServerError(v.Text)
	}
	released := v.Type == typeInteger && v.Integer == 1
	if released {
		l.observer.OnLockAcquire(LockUnlockSuccess, time.Since(info.CreatedAt))
	} else {
		l.observer.OnLockAcquire(LockUnlockError, 0)
		logWarnf("redis: lock %s was no longer held by this token at unlock", info.Name)
	}
	return released, nil
}
