// Package storage implements the slot array underneath a vector: a
// contiguous block of element slots with pre-reserved slack on both sides of
// the occupied range, so the container grows in O(1) amortized on either end.
//
// The store only manages slot references and capacity; element ownership,
// wiping and byte copies belong to the caller. Vacated slots are always
// cleared so the garbage collector never sees stale references.
package storage

import (
	"errors"
	"unsafe"
)

// Strategy selects how index-shifting mutations move slots.
type Strategy uint8

const (
	// InPlace moves overlapping slots directly. Cheapest; safe because every
	// mutation runs under the vector's gate.
	InPlace Strategy = iota
	// Reentrant builds the post-mutation slot array in a fresh allocation and
	// publishes it wholesale, so an observer of the array pointer sees only a
	// whole pre- or post-state, never a partial shift.
	Reentrant
)

// Side names a growth/shrink direction.
type Side uint8

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// ErrNoRoom is returned when a fixed-capacity store cannot take more slots.
var ErrNoRoom = errors.New("storage: fixed-capacity store is full")

// MemoryGovernor charges slot array bytes against an optional budget.
type MemoryGovernor interface {
	Acquire(n int64) error
	Release(n int64)
}

// Observer receives capacity and shift events, e.g. for metrics.
type Observer interface {
	Grew(side Side)
	Shrunk(side Side)
	Shifted(moved int)
}

const slotOverhead = int64(unsafe.Sizeof([]byte(nil)))

// Store is the slot array plus its bidirectional capacity bookkeeping.
// Invariants: 0 <= begin <= end <= len(slots) and
// capLeft+capRight == len(slots) after every resize.
type Store struct {
	slots    [][]byte
	begin    int
	end      int
	capLeft  int
	capRight int
	initCap  int
	fixed    bool // never resizes after creation
	strategy Strategy
	gov      MemoryGovernor
	obs      Observer
}

// New creates a store with the given initial capacity. Fixed stores keep all
// capacity on the right and never resize; resizable stores start with the
// cursors at the center so both ends have slack.
func New(initCap int, fixed bool, strategy Strategy, gov MemoryGovernor, obs Observer) (*Store, error) {
	if err := gov.Acquire(int64(initCap) * slotOverhead); err != nil {
		return nil, err
	}
	s := &Store{
		slots:    make([][]byte, initCap),
		initCap:  initCap,
		fixed:    fixed,
		strategy: strategy,
		gov:      gov,
		obs:      obs,
	}
	if fixed {
		s.capRight = initCap
	} else {
		s.capLeft = initCap / 2
		s.capRight = initCap - s.capLeft
		s.begin, s.end = s.capLeft, s.capLeft
	}
	return s, nil
}

// Size reports the number of occupied slots.
func (s *Store) Size() int { return s.end - s.begin }

// Cap reports total capacity (occupied plus slack on both sides).
func (s *Store) Cap() int { return s.capLeft + s.capRight }

// InitCap reports the floor capacity fixed at creation.
func (s *Store) InitCap() int { return s.initCap }

// Fixed reports whether the store resizes.
func (s *Store) Fixed() bool { return s.fixed }

// Corrupted reports an inconsistent cursor state.
func (s *Store) Corrupted() bool {
	return s.begin > s.end || s.end > len(s.slots)
}

// At returns the slot at logical index i. Caller validates bounds.
func (s *Store) At(i int) []byte { return s.slots[s.begin+i] }

// SetAt replaces the slot at logical index i. Caller validates bounds.
func (s *Store) SetAt(i int, slot []byte) { s.slots[s.begin+i] = slot }

// SwapSlots exchanges two slots by reference.
func (s *Store) SwapSlots(i, j int) {
	bi, bj := s.begin+i, s.begin+j
	s.slots[bi], s.slots[bj] = s.slots[bj], s.slots[bi]
}

// Occupied returns a view of the occupied range. The view is invalidated by
// any mutation.
func (s *Store) Occupied() [][]byte { return s.slots[s.begin:s.end] }

// Insert places slot at logical index i in [0, size], shifting later slots
// right by one. Index 0 consumes left slack, index size consumes right slack;
// either side grows when exhausted. Growth is all-or-nothing: on error the
// store is unchanged.
func (s *Store) Insert(i int, slot []byte) error {
	size := s.Size()

	// Front insert consumes left slack. A fixed store with no left slack
	// falls through to the shift path instead of growing.
	if i == 0 && size > 0 && !(s.fixed && s.begin == 0) {
		if s.begin == 0 {
			if err := s.Grow(Left); err != nil {
				return err
			}
		}
		s.begin--
		s.slots[s.begin] = slot
		return nil
	}

	if s.end == len(s.slots) {
		// Reclaim drifted left slack before allocating more on the right.
		if s.begin > 0 {
			s.recenterLeft()
		} else if s.fixed {
			return ErrNoRoom
		} else if err := s.Grow(Right); err != nil {
			return err
		}
	}
	if i == size {
		s.slots[s.end] = slot
		s.end++
		return nil
	}
	s.shiftRight(i)
	s.slots[s.begin+i] = slot
	s.end++
	if s.obs != nil {
		s.obs.Shifted(size - i)
	}
	return nil
}

// Extract removes and returns the slot at logical index i, closing the gap.
// Caller validates bounds and owns wiping/freeing of the returned slot.
func (s *Store) Extract(i int) []byte {
	size := s.Size()
	slot := s.slots[s.begin+i]
	switch {
	case i == 0:
		s.slots[s.begin] = nil
		s.begin++
	case i == size-1:
		s.slots[s.end-1] = nil
		s.end--
	default:
		s.shiftLeft(i+1, 1)
		s.end--
		if s.obs != nil {
			s.obs.Shifted(size - i - 1)
		}
	}
	return slot
}

// DeleteRange removes n slots starting at logical index start, invoking
// release on each before the gap closes. Caller validates the range.
func (s *Store) DeleteRange(start, n int, release func([]byte)) {
	if n <= 0 {
		return
	}
	size := s.Size()
	for k := 0; k < n; k++ {
		if slot := s.slots[s.begin+start+k]; slot != nil && release != nil {
			release(slot)
		}
	}
	switch {
	case start == 0:
		for k := s.begin; k < s.begin+n; k++ {
			s.slots[k] = nil
		}
		s.begin += n
	case start+n == size:
		for k := s.end - n; k < s.end; k++ {
			s.slots[k] = nil
		}
		s.end -= n
	default:
		s.shiftLeft(start+n, n)
		s.end -= n
		if s.obs != nil {
			s.obs.Shifted(size - start - n)
		}
	}
}

// AppendSlots appends all given slots after the occupied range, growing the
// right side as needed. All-or-nothing: on error nothing was appended.
func (s *Store) AppendSlots(ss [][]byte) error {
	n := len(ss)
	if n == 0 {
		return nil
	}
	for s.end+n > len(s.slots) {
		if s.begin > 0 && s.Size()+n <= len(s.slots) {
			s.recenterLeft()
			break
		}
		if s.fixed {
			return ErrNoRoom
		}
		if err := s.Grow(Right); err != nil {
			return err
		}
	}
	copy(s.slots[s.end:], ss)
	s.end += n
	return nil
}

// Grow doubles capacity on one side. The occupied range is recentered into
// the new allocation; on error the store is unchanged.
func (s *Store) Grow(side Side) error {
	if s.fixed {
		return ErrNoRoom
	}
	ncl, ncr := s.capLeft, s.capRight
	if side == Left {
		ncl <<= 1
	} else {
		ncr <<= 1
	}
	if err := s.rebuild(ncl, ncr); err != nil {
		return err
	}
	if s.obs != nil {
		s.obs.Grew(side)
	}
	return nil
}

// ShrinkCheck shrinks one side when capacity exceeds 4x the pre-removal
// size. Called after removals; side follows the end the removal touched.
func (s *Store) ShrinkCheck(oldSize int, side Side) error {
	if s.fixed {
		return nil
	}
	if 4*oldSize < s.Cap() {
		return s.Shrink(side)
	}
	return nil
}

// Shrink halves slack on one side, never below init capacity / 2 per side,
// never below half the current size and never taking total capacity below
// the init capacity.
func (s *Store) Shrink(side Side) error {
	if s.fixed || s.Cap() <= s.initCap {
		return nil
	}
	size := s.Size()
	floor := s.initCap / 2
	ncl, ncr := s.capLeft, s.capRight
	nc := &ncr
	if side == Left {
		nc = &ncl
	}
	*nc >>= 1
	if *nc < floor {
		*nc = floor
	}
	if *nc < size/2 {
		*nc = size / 2
	}
	// Truncating per-side floors must never take the total below the initial
	// capacity (odd initCap would otherwise lose a slot).
	if ncl+ncr < s.initCap {
		*nc += s.initCap - (ncl + ncr)
	}
	if ncl == s.capLeft && ncr == s.capRight {
		return nil
	}
	if err := s.rebuild(ncl, ncr); err != nil {
		return err
	}
	if s.obs != nil {
		s.obs.Shrunk(side)
	}
	return nil
}

// ShrinkToFit compacts capacity to max(initCap, size+2), recentered.
func (s *Store) ShrinkToFit() error {
	if s.fixed {
		return nil
	}
	size := s.Size()
	nc := s.initCap
	if size+2 > nc {
		nc = size + 2
	}
	if nc >= s.Cap() {
		return nil
	}
	if err := s.rebuild(nc/2, nc-nc/2); err != nil {
		return err
	}
	if s.obs != nil {
		s.obs.Shrunk(Left)
		s.obs.Shrunk(Right)
	}
	return nil
}

// Clear releases every occupied slot and recenters the cursors. Capacity is
// kept.
func (s *Store) Clear(release func([]byte)) {
	for k := s.begin; k < s.end; k++ {
		if slot := s.slots[k]; slot != nil && release != nil {
			release(slot)
		}
		s.slots[k] = nil
	}
	if s.fixed {
		s.begin, s.end = 0, 0
	} else {
		s.begin, s.end = s.capLeft, s.capLeft
	}
}

// RotateLeft moves the first n occupied slots to the end, in order.
// Caller validates 0 < n < size.
func (s *Store) RotateLeft(n int) {
	size := s.Size()
	occ := s.slots[s.begin:s.end]
	tmp := make([][]byte, n)
	copy(tmp, occ[:n])
	copy(occ, occ[n:])
	copy(occ[size-n:], tmp)
}

// RotateRight moves the last n occupied slots to the front, in order.
// Caller validates 0 < n < size.
func (s *Store) RotateRight(n int) {
	size := s.Size()
	occ := s.slots[s.begin:s.end]
	tmp := make([][]byte, n)
	copy(tmp, occ[size-n:])
	copy(occ[n:], occ[:size-n])
	copy(occ, tmp)
}

// Abandon drops the slot array without touching the slots themselves. Used
// when slot ownership has been transferred elsewhere (merge) or the handle is
// being destroyed.
func (s *Store) Abandon() {
	s.gov.Release(int64(len(s.slots)) * slotOverhead)
	s.slots = nil
	s.begin, s.end = 0, 0
	s.capLeft, s.capRight = 0, 0
}

// rebuild reallocates the slot array with the given region sizes and
// recenters the occupied range. All-or-nothing with respect to the budget.
func (s *Store) rebuild(ncl, ncr int) error {
	size := s.Size()
	newLen := ncl + ncr
	if newLen < size {
		return nil
	}
	delta := int64(newLen-len(s.slots)) * slotOverhead
	if delta > 0 {
		if err := s.gov.Acquire(delta); err != nil {
			return err
		}
	}
	ns := make([][]byte, newLen)
	nb := (newLen - size) / 2
	copy(ns[nb:], s.slots[s.begin:s.end])
	s.slots = ns
	s.begin, s.end = nb, nb+size
	s.capLeft, s.capRight = ncl, ncr
	if delta < 0 {
		s.gov.Release(-delta)
	}
	return nil
}

// recenterLeft packs the occupied range against the left edge to reclaim
// drifted slack without reallocating.
func (s *Store) recenterLeft() {
	size := s.Size()
	if s.strategy == Reentrant {
		ns := make([][]byte, len(s.slots))
		copy(ns, s.slots[s.begin:s.end])
		s.slots = ns
	} else {
		copy(s.slots[0:], s.slots[s.begin:s.end])
		for k := size; k < s.end; k++ {
			s.slots[k] = nil
		}
	}
	s.begin, s.end = 0, size
}

// shiftRight opens a one-slot gap at logical index i.
func (s *Store) shiftRight(i int) {
	from, to := s.begin+i, s.end
	if s.strategy == Reentrant {
		ns := make([][]byte, len(s.slots))
		copy(ns, s.slots[:from])
		copy(ns[from+1:], s.slots[from:to])
		s.slots = ns // publish the whole post-state
		return
	}
	copy(s.slots[from+1:to+1], s.slots[from:to])
}

// shiftLeft moves the logical range [i, size) left by n slots.
func (s *Store) shiftLeft(i, n int) {
	from, to := s.begin+i, s.end
	if s.strategy == Reentrant {
		ns := make([][]byte, len(s.slots))
		copy(ns, s.slots[:from-n])
		copy(ns[from-n:], s.slots[from:to])
		s.slots = ns
		return
	}
	copy(s.slots[from-n:], s.slots[from:to])
	for k := to - n; k < to; k++ {
		s.slots[k] = nil
	}
}
