// Package gate implements the priority-leveled lock that serializes public
// operations on a vector.
//
// Three priority levels share one mutex per vector:
//
//	level 1 (Primitive) - single-element primitives; non-blocking try-acquire
//	level 2 (Composite) - operations composed of several primitives; blocking
//	level 3 (User)      - explicit user-held lock/unlock; blocking
//
// Composite operations re-enter primitive logic through unexported lockless
// paths, so the gate never needs to be recursive: a primitive that finds the
// gate held belongs to an unrelated caller and fails fast instead of racing.
// A process-wide switch turns locking off entirely for single-threaded use.
package gate

import (
	"errors"
	"sync"
	"sync/atomic"
)

// Priority levels.
const (
	Primitive int32 = 1
	Composite int32 = 2
	User      int32 = 3
)

// ErrContended is returned by TryAcquire when the gate is already held.
var ErrContended = errors.New("gate: held by another caller")

var enabled atomic.Bool

func init() {
	enabled.Store(true)
}

// Enable turns locking on process-wide.
func Enable() { enabled.Store(true) }

// Disable turns locking off process-wide. Intended for single-threaded use;
// gates held at the time of the call must still be released by their owners.
func Disable() { enabled.Store(false) }

// Enabled reports whether locking is on.
func Enabled() bool { return enabled.Load() }

// Gate is the per-vector lock. The zero value is ready to use.
type Gate struct {
	mu     sync.Mutex
	holder atomic.Int32 // priority of the current holder, 0 when free
}

// TryAcquire attempts a non-blocking acquisition at the given priority.
// It reports whether the caller became the owner; ErrContended means the
// gate is held and the caller must fail fast.
// With locking disabled it reports no ownership and no error.
func (g *Gate) TryAcquire(prio int32) (bool, error) {
	if !enabled.Load() {
		return false, nil
	}
	if !g.mu.TryLock() {
		return false, ErrContended
	}
	g.holder.Store(prio)
	return true, nil
}

// Acquire blocks until the gate is available and reports whether the caller
// became the owner (false only when locking is disabled).
func (g *Gate) Acquire(prio int32) bool {
	if !enabled.Load() {
		return false
	}
	g.mu.Lock()
	g.holder.Store(prio)
	return true
}

// Release releases the gate if owner is true and the recorded holder
// priority matches exactly. Release is symmetric with the acquisition that
// produced owner.
func (g *Gate) Release(owner bool, prio int32) {
	if !owner {
		return
	}
	if g.holder.Load() != prio {
		return
	}
	g.holder.Store(0)
	g.mu.Unlock()
}

// ReleaseIf releases the gate when it is currently held at exactly prio,
// regardless of which caller acquired it. Used by the explicit user unlock,
// which carries no ownership token.
func (g *Gate) ReleaseIf(prio int32) bool {
	if g.holder.Load() != prio {
		return false
	}
	g.holder.Store(0)
	g.mu.Unlock()
	return true
}

// Holder reports the priority level currently holding the gate, 0 when free.
func (g *Gate) Holder() int32 {
	return g.holder.Load()
}
