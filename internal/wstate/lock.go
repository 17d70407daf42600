package wstate

import (
	"fmt"

	"github.com/gofrs/flock"
)

// LockHandle guards state-{id}.json with an exclusive advisory file lock.
// Release is idempotent and safe to call from a deferred statement so the
// lock is guaranteed to drop on any exit path, including a panic unwinding
// through the caller (spec §4.1, §9 "guaranteed-release contract").
type LockHandle struct {
	flock *flock.Flock
}

// acquireLock takes the exclusive lock on path, blocking until it is
// available. The lock file itself is separate from the state file so a
// reader can inspect state-{id}.json without contending for the lock.
func acquireLock(path string) (*LockHandle, error) {
	fl := flock.New(path + ".lock")
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("acquire state lock %s: %w", path, err)
	}
	return &LockHandle{flock: fl}, nil
}

// Release unlocks the handle. Safe to call multiple times.
func (h *LockHandle) Release() error {
	if h == nil || h.flock == nil {
		return nil
	}
	if !h.flock.Locked() {
		return nil
	}
	return h.flock.Unlock()
}
