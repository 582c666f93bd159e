package redis

import (
	"testing"
	"time"
)

func TestDistributedLockTryLockAcquiresImmediately(t *testing.T) {
	s := dispatchServer(t, func(name string, args []string) string {
		if name != "SET" {
			t.Fatalf("unexpected command %s", name)
		}
		return "+OK\r\n"
	})
	c := dialDirectClient(t, s.addr())
	lock := NewDistributedLock(c, nil)

	info, err := lock.TryLock("resource", LockConfig{})
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if info == nil {
		t.Fatal("TryLock returned nil info on success")
	}
	if info.Name != "resource" || info.Token == "" {
		t.Errorf("info = %+v", info)
	}
}

func TestDistributedLockTryLockRetriesThenAcquires(t *testing.T) {
	attempt := 0
	s := dispatchServer(t, func(name string, args []string) string {
		attempt++
		if attempt < 3 {
			return "$-1\r\n" // NX condition unmet: already held
		}
		return "+OK\r\n"
	})
	c := dialDirectClient(t, s.addr())
	lock := NewDistributedLock(c, nil)

	info, err := lock.TryLock("resource", LockConfig{
		MinDelay: time.Millisecond,
		MaxDelay: 2 * time.Millisecond,
		Timeout:  time.Second,
	})
	if err != nil || info == nil {
		t.Fatalf("TryLock = %+v, %v", info, err)
	}
	if attempt != 3 {
		t.Errorf("attempt = %d, want 3", attempt)
	}
}

func TestDistributedLockTryLockTimesOutReturningNil(t *testing.T) {
	s := dispatchServer(t, func(name string, args []string) string {
		return "$-1\r\n" // always held by someone else
	})
	c := dialDirectClient(t, s.addr())
	lock := NewDistributedLock(c, nil)

	info, err := lock.TryLock("resource", LockConfig{
		MinDelay: time.Millisecond,
		MaxDelay: time.Millisecond,
		Timeout:  20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("TryLock err = %v, want nil", err)
	}
	if info != nil {
		t.Fatalf("TryLock info = %+v, want nil (timed out without acquiring)", info)
	}
}

func TestDistributedLockUnlockOwnedKeyReturnsTrue(t *testing.T) {
	s := dispatchServer(t, func(name string, args []string) string {
		switch name {
		case "SET":
			return "+OK\r\n"
		case "EVAL":
			return ":1\r\n"
		}
		return "+OK\r\n"
	})
	c := dialDirectClient(t, s.addr())
	lock := NewDistributedLock(c, nil)

	info, err := lock.TryLock("resource", LockConfig{})
	if err != nil || info == nil {
		t.Fatalf("TryLock = %+v, %v", info, err)
	}
	released, err := lock.Unlock(info)
	if err != nil || !released {
		t.Fatalf("Unlock = %v, %v, want true, nil", released, err)
	}
}

func TestDistributedLockUnlockStaleTokenReturnsFalse(t *testing.T) {
	s := dispatchServer(t, func(name string, args []string) string {
		switch name {
		case "SET":
			return "+OK\r\n"
		case "EVAL":
			return ":0\r\n" // token no longer matches; someone else owns it now
		}
		return "+OK\r\n"
	})
	c := dialDirectClient(t, s.addr())
	lock := NewDistributedLock(c, nil)

	info, err := lock.TryLock("resource", LockConfig{})
	if err != nil || info == nil {
		t.Fatalf("TryLock = %+v, %v", info, err)
	}
	released, err := lock.Unlock(info)
	if err != nil {
		t.Fatalf("Unlock err = %v", err)
	}
	if released {
		t.Fatal("Unlock reported success for a lock it no longer owns")
	}
}

func TestDistributedLockUnlockRejectsNilInfo(t *testing.T) {
	c := dialDirectClient(t, dispatchServer(t, func(string, []string) string { return "+OK\r\n" }).addr())
	lock := NewDistributedLock(c, nil)
	if _, err := lock.Unlock(nil); err != ErrInvalidArgument {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}
