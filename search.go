package vector

import (
	"fmt"

	"github.com/pzaino/vector/internal/gate"
)

// searchMemoCutoff bounds the galloping phase: once consecutive hits drift
// this far apart the memo is worthless and the search falls back to a plain
// full-range bisection.
const (
	searchMemoCutoff   = 32
	searchMinMemoSize  = 64
	searchLinearWindow = 3
)

// Search locates key in an ascending-sorted vector. It reports whether the
// key was found and its index; when absent, the index is where the key would
// be inserted to keep the order. The vector keeps a memo of the last hit
// position, so runs of nearby lookups gallop out from the previous result
// instead of bisecting the whole range.
//
// A nil key or cmp, or an empty vector, reports (false, 0, nil).
func (v *Vector) Search(key []byte, cmp CompareFunc) (bool, int, error) {
	if err := v.check(); err != nil {
		return false, 0, err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return false, 0, fmt.Errorf("%w: search", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	if key == nil || cmp == nil || v.store.Size() == 0 {
		return false, 0, nil
	}
	if v.store.Corrupted() {
		return false, 0, ErrVectorCorrupted
	}
	found, idx := v.adaptiveSearch(key, cmp)
	return found, idx, nil
}

// AddOrdered inserts value into an ascending-sorted vector at its ordered
// position. Appending runs (empty vector, or value beyond the current last
// element) skip the search entirely.
func (v *Vector) AddOrdered(value []byte, cmp CompareFunc) error {
	if err := v.check(); err != nil {
		return err
	}
	if cmp == nil {
		return fmt.Errorf("add ordered: nil compare function")
	}
	owner := v.gate.Acquire(gate.Composite)
	defer v.gate.Release(owner, gate.Composite)

	size := v.store.Size()
	if size == 0 {
		return v.addAt(value, 0, false)
	}
	if v.store.Corrupted() {
		return ErrVectorCorrupted
	}
	if cmp(value, v.store.At(size-1)) > 0 {
		return v.addAt(value, size, false)
	}
	_, idx := v.adaptiveSearch(value, cmp)
	return v.addAt(value, idx, false)
}

// adaptiveSearch is a binary search that remembers where the previous lookup
// landed. While lookups stay close together it gallops out from the memo in
// doubling steps; once they drift apart (or the vector is small) it bisects
// the full range. The tail of the bisection resolves linearly, which also
// yields the insertion index on a miss. Callers hold the gate and guarantee
// a non-empty, ascending-sorted vector.
func (v *Vector) adaptiveSearch(key []byte, cmp CompareFunc) (bool, int) {
	size := v.store.Size()
	bot, top := 0, size

	if v.balance < searchMemoCutoff && size > searchMinMemoSize && v.bottom < size {
		bot = v.bottom
		top = searchMemoCutoff
		if cmp(key, v.store.At(bot)) >= 0 {
			for {
				if bot+top >= size {
					top = size - bot
					break
				}
				bot += top
				if cmp(key, v.store.At(bot)) < 0 {
					bot -= top
					break
				}
				top *= 2
			}
		} else {
			for {
				if bot < top {
					top = bot
					bot = 0
					break
				}
				bot -= top
				if cmp(key, v.store.At(bot)) >= 0 {
					break
				}
				top *= 2
			}
		}
	}

	for top > searchLinearWindow {
		mid := top / 2
		if cmp(key, v.store.At(bot+mid)) >= 0 {
			bot += mid
		}
		top -= mid
	}

	if v.bottom > bot {
		v.balance = v.bottom - bot
	} else {
		v.balance = bot - v.bottom
	}
	v.bottom = bot

	for top > 0 {
		top--
		if cmp(key, v.store.At(bot+top)) == 0 {
			return true, bot + top
		}
	}

	// Miss: bot is within the linear window of the ordered position.
	idx := bot
	for idx < size && cmp(key, v.store.At(idx)) > 0 {
		idx++
	}
	return false, idx
}
