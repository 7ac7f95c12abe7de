package vector

import (
	"errors"
	"fmt"

	"github.com/pzaino/vector/internal/gate"
	"github.com/pzaino/vector/internal/mem"
	"github.com/pzaino/vector/internal/storage"
)

// Bulk operations gate the destination at composite priority and re-enter
// the single-element logic locklessly. The source vector is read (or, for
// Move and Merge, mutated) without taking its gate: callers coordinating
// concurrent access to the source must hold its user lock themselves.

// Copy appends elements s2 through s2+e2-1 of v2 onto v. An e2 of zero means
// "through the last element". Both vectors must have the same element size.
// Owned destinations deep-copy element bytes; ByReference destinations take
// the source references.
func (v *Vector) Copy(v2 *Vector, s2, e2 int) error {
	if err := v.check(); err != nil {
		return err
	}
	if err := v2.check(); err != nil {
		return err
	}
	owner := v.gate.Acquire(gate.Composite)
	defer v.gate.Release(owner, gate.Composite)

	count, err := v.bulkRange(v2, s2, e2)
	if err != nil {
		return err
	}
	slots, err := v.importSlots(v2, s2, count)
	if err != nil {
		return err
	}
	if err := v.store.AppendSlots(slots); err != nil {
		v.discardImported(slots)
		return asBulkFault(err)
	}
	if v.metrics != nil {
		v.metrics.RecordTransfer(count)
	}
	return nil
}

// Insert places elements s2 through s2+e2-1 of v2 into v starting at index
// s1, shifting later elements right. An e2 of zero means "through the last
// element". s1 may equal v's size, which appends.
func (v *Vector) Insert(v2 *Vector, s2, e2, s1 int) error {
	if err := v.check(); err != nil {
		return err
	}
	if err := v2.check(); err != nil {
		return err
	}
	owner := v.gate.Acquire(gate.Composite)
	defer v.gate.Release(owner, gate.Composite)

	count, err := v.bulkRange(v2, s2, e2)
	if err != nil {
		return err
	}
	if size := v.store.Size(); s1 < 0 || s1 > size {
		return &IndexError{Index: s1, Size: size}
	}
	for j := 0; j < count; j++ {
		if err := v.addAt(v2.store.At(s2+j), s1+j, true); err != nil {
			return asBulkFault(err)
		}
	}
	if v.metrics != nil {
		v.metrics.RecordTransfer(count)
	}
	return nil
}

// Move appends elements s2 through s2+e2-1 of v2 onto v, then removes them
// from v2. An e2 of zero means "through the last element". When the
// destination deep-copied the bytes, v2 releases (and, under SecureWipe,
// wipes) its own element memory; when a ByReference destination took the
// source buffers themselves, v2 forgets them without wiping so the
// transferred data survives the handoff.
func (v *Vector) Move(v2 *Vector, s2, e2 int) error {
	if err := v.check(); err != nil {
		return err
	}
	if err := v2.check(); err != nil {
		return err
	}
	owner := v.gate.Acquire(gate.Composite)
	defer v.gate.Release(owner, gate.Composite)

	count, err := v.bulkRange(v2, s2, e2)
	if err != nil {
		return err
	}
	slots, err := v.importSlots(v2, s2, count)
	if err != nil {
		return err
	}
	if err := v.store.AppendSlots(slots); err != nil {
		v.discardImported(slots)
		return asBulkFault(err)
	}
	if !v.owned() && v2.owned() {
		// Ownership of the buffers moved with the references: the bytes
		// leave v2's budget and must not be wiped or reused.
		size2 := v2.store.Size()
		v2.store.DeleteRange(s2, count, nil)
		v2.gov.Release(int64(count) * int64(v2.elemSize))
		if !v2.circular() {
			side := storage.Right
			if s2 == 0 {
				side = storage.Left
			}
			if err := v2.store.ShrinkCheck(size2, side); err != nil {
				return asFault(err)
			}
		}
	} else if err := v2.deleteRange(s2, count-1); err != nil {
		return err
	}
	if v.metrics != nil {
		v.metrics.RecordTransfer(count)
	}
	return nil
}

// Merge appends every element of v2 onto v by transferring the slot
// references, then destroys v2: no element bytes are copied, wiped or
// released, their ownership simply changes hands. After a successful merge
// v2 is invalid and every operation on it fails with ErrVectorUndefined.
func (v *Vector) Merge(v2 *Vector) error {
	if err := v.check(); err != nil {
		return err
	}
	if err := v2.check(); err != nil {
		return err
	}
	if v == v2 {
		// Merging destroys the source; the handle cannot serve as both.
		return fmt.Errorf("%w: merge source is the destination", ErrVectorUndefined)
	}
	owner := v.gate.Acquire(gate.Composite)
	defer v.gate.Release(owner, gate.Composite)

	if v.elemSize != v2.elemSize {
		return &DataSizeError{Want: v.elemSize, Got: v2.elemSize}
	}

	occ := v2.store.Occupied()
	count := len(occ)
	bytes := int64(count) * int64(v.elemSize)

	// Element memory accounting follows the references: the destination
	// budget takes the bytes on, the source budget lets them go.
	if v.owned() {
		if err := v.gov.Acquire(bytes); err != nil {
			return asFault(err)
		}
	}
	slots := make([][]byte, count)
	copy(slots, occ)
	if err := v.store.AppendSlots(slots); err != nil {
		if v.owned() {
			v.gov.Release(bytes)
		}
		return asBulkFault(err)
	}
	if v2.owned() {
		v2.gov.Release(bytes)
	}

	v2.store.Abandon()
	v2.destroyed.Store(true)

	if v.metrics != nil {
		v.metrics.RecordTransfer(count)
	}
	v.logger.Debug("vectors merged", "id", v.id, "from", v2.id, "elements", count)
	return nil
}

// bulkRange validates a source range against v2 and resolves the element
// count, treating e2 == 0 as "through the last element".
func (v *Vector) bulkRange(v2 *Vector, s2, e2 int) (int, error) {
	if v.elemSize != v2.elemSize {
		return 0, &DataSizeError{Want: v.elemSize, Got: v2.elemSize}
	}
	size2 := v2.store.Size()
	if size2 == 0 {
		return 0, ErrVectorEmpty
	}
	if v2.store.Corrupted() {
		return 0, ErrVectorCorrupted
	}
	if s2 < 0 || s2 >= size2 {
		return 0, &IndexError{Index: s2, Size: size2}
	}
	if e2 < 0 || e2 > size2-s2 {
		return 0, &IndexError{Index: s2 + e2, Size: size2}
	}
	count := e2
	if count == 0 {
		count = size2 - s2
	}
	return count, nil
}

// importSlots materializes count slots from v2 starting at s2, per v's
// ownership policy: deep copies charged to v's budget when owned, the source
// references themselves when ByReference.
func (v *Vector) importSlots(v2 *Vector, s2, count int) ([][]byte, error) {
	slots := make([][]byte, count)
	if !v.owned() {
		for j := 0; j < count; j++ {
			slots[j] = v2.store.At(s2 + j)
		}
		return slots, nil
	}
	if err := v.gov.Acquire(int64(count) * int64(v.elemSize)); err != nil {
		return nil, asFault(err)
	}
	for j := 0; j < count; j++ {
		buf := make([]byte, v.elemSize)
		copy(buf, v2.store.At(s2+j))
		if v.flags&SecureWipe != 0 {
			_ = mem.LockPages(buf)
		}
		slots[j] = buf
	}
	return slots, nil
}

// discardImported returns slot buffers built by importSlots that never made
// it into storage.
func (v *Vector) discardImported(slots [][]byte) {
	for _, slot := range slots {
		v.releaseElem(slot)
	}
}

// asBulkFault maps storage exhaustion on a fixed destination to the
// destination-too-small fault; other errors pass through asFault.
func asBulkFault(err error) error {
	if errors.Is(err, storage.ErrNoRoom) {
		return fmt.Errorf("%w: %w", ErrVectorTooSmall, err)
	}
	return asFault(err)
}
