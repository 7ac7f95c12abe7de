package vector

import (
	"fmt"

	"github.com/pzaino/vector/internal/gate"
	"github.com/pzaino/vector/internal/mem"
	"github.com/pzaino/vector/internal/storage"
)

// Push appends an element at the end. On owned vectors the value is copied
// into vector-managed memory; on ByReference vectors the slice itself is
// retained.
func (v *Vector) Push(value []byte) error {
	return v.Add(value)
}

// Add appends an element at the end.
func (v *Vector) Add(value []byte) error {
	if err := v.check(); err != nil {
		return err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: add", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	return v.addAt(value, v.store.Size(), false)
}

// AddFront prepends an element, shifting the occupied range right by one
// logical position (amortized O(1) thanks to left slack).
func (v *Vector) AddFront(value []byte) error {
	if err := v.check(); err != nil {
		return err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: add front", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	return v.addAt(value, 0, false)
}

// AddAt inserts an element at index i in [0, size], shifting later elements
// right. An index beyond size fails with ErrIndexOutOfBound.
func (v *Vector) AddAt(value []byte, i int) error {
	if err := v.check(); err != nil {
		return err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: add at", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	return v.addAt(value, i, true)
}

// Get returns the last element. Owned vectors return a copy; ByReference
// vectors return the stored reference itself.
func (v *Vector) Get() ([]byte, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return nil, fmt.Errorf("%w: get", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	return v.getAt(v.store.Size() - 1)
}

// GetFront returns the first element.
func (v *Vector) GetFront() ([]byte, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return nil, fmt.Errorf("%w: get front", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	return v.getAt(0)
}

// GetAt returns the element at index i in [0, size).
func (v *Vector) GetAt(i int) ([]byte, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return nil, fmt.Errorf("%w: get at", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	return v.getAt(i)
}

// Put overwrites the last element in place. The displaced value is wiped
// first when the vector carries SecureWipe.
func (v *Vector) Put(value []byte) error {
	if err := v.check(); err != nil {
		return err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: put", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	return v.putAt(value, v.store.Size()-1)
}

// PutFront overwrites the first element in place.
func (v *Vector) PutFront(value []byte) error {
	if err := v.check(); err != nil {
		return err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: put front", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	return v.putAt(value, 0)
}

// PutAt overwrites the element at index i in place. On Circular vectors the
// index wraps modulo the initial capacity, then modulo size.
func (v *Vector) PutAt(value []byte, i int) error {
	if err := v.check(); err != nil {
		return err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: put at", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	return v.putAt(value, i)
}

// Pop removes and returns the last element. Returns (nil, nil) when empty.
func (v *Vector) Pop() ([]byte, error) {
	return v.Remove()
}

// Remove removes and returns the last element.
func (v *Vector) Remove() ([]byte, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return nil, fmt.Errorf("%w: remove", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	return v.removeAt(v.store.Size()-1, false)
}

// RemoveFront removes and returns the first element.
func (v *Vector) RemoveFront() ([]byte, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return nil, fmt.Errorf("%w: remove front", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	return v.removeAt(0, false)
}

// RemoveAt removes and returns the element at index i in [0, size).
func (v *Vector) RemoveAt(i int) ([]byte, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return nil, fmt.Errorf("%w: remove at", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	return v.removeAt(i, true)
}

// Delete removes the last element without returning it: owned element memory
// is released (wiped first under SecureWipe) instead of copied out.
func (v *Vector) Delete() error {
	if err := v.check(); err != nil {
		return err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: delete", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	return v.deleteAt(v.store.Size()-1, false)
}

// DeleteFront removes the first element without returning it.
func (v *Vector) DeleteFront() error {
	if err := v.check(); err != nil {
		return err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: delete front", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	return v.deleteAt(0, false)
}

// DeleteAt removes the element at index i in [0, size) without returning it.
func (v *Vector) DeleteAt(i int) error {
	if err := v.check(); err != nil {
		return err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: delete at", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	return v.deleteAt(i, true)
}

// DeleteRange removes the count+1 elements at indices [start, start+count],
// i.e. both endpoints inclusive. The whole range must lie inside the
// occupied range.
func (v *Vector) DeleteRange(start, count int) error {
	if err := v.check(); err != nil {
		return err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: delete range", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	return v.deleteRange(start, count)
}

// getAt is the lockless read shared by primitives and composites.
func (v *Vector) getAt(i int) ([]byte, error) {
	size := v.store.Size()
	if size == 0 {
		return nil, ErrVectorEmpty
	}
	if v.store.Corrupted() {
		return nil, ErrVectorCorrupted
	}
	if i < 0 || i >= size {
		return nil, &IndexError{Index: i, Size: size}
	}
	slot := v.store.At(i)
	if v.owned() {
		return mem.Clone(slot), nil
	}
	return slot, nil
}

// putAt overwrites the element at index i. Callers hold the gate.
func (v *Vector) putAt(value []byte, i int) error {
	size := v.store.Size()
	if size == 0 {
		return ErrVectorEmpty
	}
	if v.store.Corrupted() {
		return ErrVectorCorrupted
	}
	if v.circular() {
		i %= v.store.InitCap()
		if i >= size {
			i %= size
		}
	}
	if i < 0 || i >= size {
		return &IndexError{Index: i, Size: size}
	}
	if v.owned() {
		if len(value) != v.elemSize {
			return &DataSizeError{Want: v.elemSize, Got: len(value)}
		}
		slot := v.store.At(i)
		if v.flags&SecureWipe != 0 {
			v.wipe(slot)
		}
		copy(slot, value)
		return nil
	}
	if v.flags&SecureWipe != 0 {
		v.wipe(v.store.At(i))
	}
	v.store.SetAt(i, value)
	return nil
}

// addAt inserts value at index i. With strict an index beyond size is an
// error; otherwise it clamps to an append. Callers hold the gate.
func (v *Vector) addAt(value []byte, i int, strict bool) error {
	if v.store.Corrupted() {
		return ErrVectorCorrupted
	}
	size := v.store.Size()

	// A full circular vector stops growing and overwrites in place.
	if v.circular() && size >= v.store.InitCap() {
		return v.putAt(value, i)
	}

	if i < 0 {
		return &IndexError{Index: i, Size: size}
	}
	if i > size {
		if strict {
			return &IndexError{Index: i, Size: size}
		}
		i = size
	}

	slot := value
	if v.owned() {
		if len(value) != v.elemSize {
			return &DataSizeError{Want: v.elemSize, Got: len(value)}
		}
		var err error
		if slot, err = v.newElem(value); err != nil {
			return err
		}
	}
	if err := v.store.Insert(i, slot); err != nil {
		v.releaseElem(slot)
		return asFault(err)
	}
	return nil
}

// removeAt extracts the element at index i and returns it (a copy on owned
// vectors, the reference itself on ByReference ones). Non-strict callers get
// the boundary element when i is out of range. Callers hold the gate.
func (v *Vector) removeAt(i int, strict bool) ([]byte, error) {
	size := v.store.Size()
	if size == 0 {
		return nil, nil
	}
	if v.store.Corrupted() {
		return nil, ErrVectorCorrupted
	}
	if v.circular() && i >= size {
		i %= size
	}
	if i < 0 || i >= size {
		if strict {
			return nil, &IndexError{Index: i, Size: size}
		}
		if i < 0 {
			i = 0
		} else {
			i = size - 1
		}
	}

	slot := v.store.Extract(i)
	var out []byte
	if v.owned() {
		out = mem.Clone(slot)
		v.releaseElem(slot)
	} else {
		out = slot
	}

	if !v.circular() {
		side := storage.Right
		if i == 0 {
			side = storage.Left
		}
		if err := v.store.ShrinkCheck(size, side); err != nil {
			return out, asFault(err)
		}
	}
	return out, nil
}

// deleteAt removes the element at index i, releasing owned memory instead of
// copying it out. Callers hold the gate.
func (v *Vector) deleteAt(i int, strict bool) error {
	size := v.store.Size()
	if size == 0 {
		return nil
	}
	if v.store.Corrupted() {
		return ErrVectorCorrupted
	}
	if v.circular() && i >= size {
		i %= size
	}
	if i < 0 || i >= size {
		if strict {
			return &IndexError{Index: i, Size: size}
		}
		if i < 0 {
			i = 0
		} else {
			i = size - 1
		}
	}

	v.releaseElem(v.store.Extract(i))

	if !v.circular() {
		side := storage.Right
		if i == 0 {
			side = storage.Left
		}
		return asFault(v.store.ShrinkCheck(size, side))
	}
	return nil
}

// deleteRange removes elements [start, start+count] inclusive. Callers hold
// the gate.
func (v *Vector) deleteRange(start, count int) error {
	size := v.store.Size()
	if size == 0 {
		return ErrVectorEmpty
	}
	if v.store.Corrupted() {
		return ErrVectorCorrupted
	}
	if start < 0 || count < 0 || start+count >= size {
		return &IndexError{Index: start + count, Size: size}
	}

	v.store.DeleteRange(start, count+1, v.releaseElem)

	if !v.circular() {
		side := storage.Right
		if start == 0 {
			side = storage.Left
		}
		return asFault(v.store.ShrinkCheck(size, side))
	}
	return nil
}
