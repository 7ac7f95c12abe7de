package vector

import (
	"fmt"

	"github.com/pzaino/vector/internal/gate"
)

// Swap exchanges the elements at indices i and j by slot reference; element
// bytes are never copied.
func (v *Vector) Swap(i, j int) error {
	if err := v.check(); err != nil {
		return err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: swap", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	size := v.store.Size()
	if size == 0 {
		return ErrVectorEmpty
	}
	if i < 0 || i >= size {
		return &IndexError{Index: i, Size: size}
	}
	if j < 0 || j >= size {
		return &IndexError{Index: j, Size: size}
	}
	if i != j {
		v.store.SwapSlots(i, j)
	}
	return nil
}

// SwapRange exchanges the block [s1, e1] with the equally long block
// starting at s2. The blocks must not overlap: s2 > e1 and the second block
// must end inside the occupied range.
func (v *Vector) SwapRange(s1, e1, s2 int) error {
	if err := v.check(); err != nil {
		return err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: swap range", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	size := v.store.Size()
	if size == 0 {
		return ErrVectorEmpty
	}
	if s1 < 0 || e1 < s1 || e1 >= size {
		return &IndexError{Index: e1, Size: size}
	}
	n := e1 - s1 + 1
	if s2 <= e1 || s2+n-1 >= size {
		return &IndexError{Index: s2 + n - 1, Size: size}
	}
	for k := 0; k < n; k++ {
		v.store.SwapSlots(s1+k, s2+k)
	}
	return nil
}

// RotateLeft moves the first n elements to the end, preserving their order.
// n equal to 0 or to size is a no-op; n beyond size is an error.
func (v *Vector) RotateLeft(n int) error {
	return v.rotate(n, true)
}

// RotateRight moves the last n elements to the front, preserving their order.
func (v *Vector) RotateRight(n int) error {
	return v.rotate(n, false)
}

func (v *Vector) rotate(n int, left bool) error {
	if err := v.check(); err != nil {
		return err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: rotate", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	size := v.store.Size()
	if n < 0 || n > size {
		return &IndexError{Index: n, Size: size}
	}
	if n == 0 || n == size {
		return nil
	}
	if left {
		v.store.RotateLeft(n)
	} else {
		v.store.RotateRight(n)
	}
	return nil
}

// Apply invokes f on every element in place, iterating from the last element
// to the first. On owned vectors f mutates vector-managed memory directly.
func (v *Vector) Apply(f ApplyFunc) error {
	if err := v.check(); err != nil {
		return err
	}
	if f == nil {
		return nil
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: apply", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	for i := v.store.Size() - 1; i >= 0; i-- {
		f(v.store.At(i))
	}
	return nil
}

// ApplyRange invokes f in place on every element with index in [x, y] (order
// of x and y does not matter).
func (v *Vector) ApplyRange(f ApplyFunc, x, y int) error {
	if err := v.check(); err != nil {
		return err
	}
	if f == nil {
		return nil
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: apply range", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	size := v.store.Size()
	lo, hi := x, y
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 0 || hi >= size {
		return &IndexError{Index: hi, Size: size}
	}
	for i := lo; i <= hi; i++ {
		f(v.store.At(i))
	}
	return nil
}

// ApplyIf invokes f on each element of v for which pred accepts the pair of
// elements at the same index in v and v2. v2 must be at least as large as v.
// Only v is gated; the caller is responsible for v2's stability.
func (v *Vector) ApplyIf(v2 *Vector, f ApplyFunc, pred PredicateFunc) error {
	if err := v.check(); err != nil {
		return err
	}
	if err := v2.check(); err != nil {
		return err
	}
	if f == nil || pred == nil {
		return nil
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: apply if", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	if v.store.Size() > v2.store.Size() {
		return ErrVectorTooSmall
	}
	for i := v.store.Size() - 1; i >= 0; i-- {
		if pred(v.store.At(i), v2.store.At(i)) {
			f(v.store.At(i))
		}
	}
	return nil
}
