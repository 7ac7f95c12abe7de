package vector

import (
	"fmt"

	"github.com/pzaino/vector/internal/gate"
)

// Sort orders the elements in place with a three-way-partition quicksort.
// Only slot references move; element bytes are never copied. Equal runs are
// compacted around the pivot, so heavily duplicated data sorts in near
// linear time. The sort is not stable. A nil cmp is a no-op.
func (v *Vector) Sort(cmp CompareFunc) error {
	if err := v.check(); err != nil {
		return err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: sort", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	if cmp == nil || v.store.Size() <= 1 {
		return nil
	}
	if v.store.Corrupted() {
		return ErrVectorCorrupted
	}
	v.quicksort(0, v.store.Size()-1, cmp)

	// The element layout changed wholesale; past search memos are useless.
	v.bottom, v.balance = 0, 0
	return nil
}

// quicksort is Bentley-McIlroy style: partition around the last element,
// herding keys equal to the pivot to the edges, then swap them into the
// middle so neither recursion sees them again.
func (v *Vector) quicksort(l, r int, cmp CompareFunc) {
	if r <= l {
		return
	}
	i, j := l-1, r
	p, q := l-1, r
	ref := v.store.At(r)
	for {
		for {
			i++
			if cmp(v.store.At(i), ref) >= 0 {
				break
			}
		}
		for {
			j--
			if cmp(ref, v.store.At(j)) >= 0 || j == l {
				break
			}
		}
		if i >= j {
			break
		}
		v.store.SwapSlots(i, j)
		if cmp(v.store.At(i), ref) == 0 {
			p++
			v.store.SwapSlots(p, i)
		}
		if cmp(ref, v.store.At(j)) == 0 {
			q--
			v.store.SwapSlots(q, j)
		}
	}
	v.store.SwapSlots(i, r)
	j = i - 1
	i = i + 1
	for k := l; k < p; k, j = k+1, j-1 {
		v.store.SwapSlots(k, j)
	}
	for k := r - 1; k > q; k, i = k-1, i+1 {
		v.store.SwapSlots(k, i)
	}
	v.quicksort(l, j, cmp)
	v.quicksort(i, r, cmp)
}
