package vector

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/pzaino/vector/internal/gate"
	"github.com/pzaino/vector/internal/mem"
	"github.com/pzaino/vector/internal/resource"
	"github.com/pzaino/vector/internal/storage"
)

// Library defaults, selected by passing zero to New.
const (
	// DefaultCapacity is the initial capacity used when New receives 0.
	DefaultCapacity = 8
	// DefaultElementSize is the element size in bytes used when New receives 0.
	DefaultElementSize = 8
	// minCapacity is the smallest capacity a vector is created with.
	minCapacity = 4
)

// Flag is a bit set of vector properties, fixed at creation.
type Flag uint32

const (
	// ByReference makes slots hold non-owning references to caller-managed
	// buffers: the vector never copies or frees element memory, and removal
	// hands the reference back.
	ByReference Flag = 1 << iota
	// SecureWipe deterministically overwrites element bytes the moment a
	// slot becomes unoccupied (zero-fill, or the hook set via SetWipeFunc).
	SecureWipe
	// Circular fixes the capacity at creation: the index space of writes
	// wraps modulo the initial capacity and the vector never resizes.
	Circular
)

// CompareFunc orders two elements: negative when a < b, zero when equal,
// positive when a > b.
type CompareFunc func(a, b []byte) int

// ApplyFunc mutates an element in place.
type ApplyFunc func(item []byte)

// PredicateFunc reports whether a pair of elements matches.
type PredicateFunc func(a, b []byte) bool

// WipeFunc overwrites an element buffer; see SecureWipe.
type WipeFunc func(item []byte)

// Vector is a double-ended growable array of fixed-size opaque elements (or
// borrowed references). All public operations on one vector are serialized
// by its gate; operations on different vectors never block each other.
type Vector struct {
	id        uuid.UUID
	gate      gate.Gate
	store     *storage.Store
	gov       *resource.Governor
	elemSize  int
	flags     Flag
	wipeFunc  WipeFunc
	destroyed atomic.Bool

	// Adaptive-search memo: midpoint of the last successful search and its
	// drift magnitude. Mutated only while the gate is held.
	bottom  int
	balance int

	logger  *Logger
	metrics MetricsCollector
}

// New creates a vector with the given initial capacity and element size in
// bytes. Zero selects DefaultCapacity / DefaultElementSize. The capacity is
// also the shrink floor; capacities below 4 are raised to 4.
func New(capacity, elemSize int, flags Flag, opts ...Option) (*Vector, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("vector: negative capacity %d", capacity)
	}
	if elemSize < 0 {
		return nil, &DataSizeError{Want: DefaultElementSize, Got: elemSize}
	}
	if capacity == 0 {
		capacity = DefaultCapacity
	} else if capacity < minCapacity {
		capacity = minCapacity
	}
	if elemSize == 0 {
		elemSize = DefaultElementSize
	}

	o := options{logger: NoopLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	v := &Vector{
		id:       uuid.New(),
		elemSize: elemSize,
		flags:    flags,
		wipeFunc: o.wipeFunc,
		logger:   o.logger,
		metrics:  o.metrics,
	}
	v.gov = resource.NewGovernor(o.maxMemory, v.logger.Logger)

	var obs storage.Observer
	if o.metrics != nil {
		obs = storageObserver{m: o.metrics}
	}
	st, err := storage.New(capacity, flags&Circular != 0, o.storageStrategy(), v.gov, obs)
	if err != nil {
		return nil, asFault(err)
	}
	v.store = st

	v.logger.Debug("vector created",
		"id", v.id,
		"capacity", capacity,
		"element_size", elemSize,
		"by_reference", flags&ByReference != 0,
		"secure_wipe", flags&SecureWipe != 0,
		"circular", flags&Circular != 0,
	)
	return v, nil
}

// Destroy releases (and, with SecureWipe, wipes) every owned element,
// compacts storage and invalidates the handle: every later operation on it
// fails with ErrVectorUndefined. Fails with ErrRaceCondition if the gate is
// held by another caller.
func (v *Vector) Destroy() error {
	if err := v.check(); err != nil {
		return err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: destroy", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	v.store.Clear(v.releaseElem)
	_ = v.store.ShrinkToFit()
	v.store.Abandon()
	v.destroyed.Store(true)

	v.logger.Debug("vector destroyed", "id", v.id)
	return nil
}

// ID returns the vector's identity, used to tag log and metric events.
func (v *Vector) ID() uuid.UUID { return v.id }

// Size reports the number of elements. Unsynchronized snapshot.
func (v *Vector) Size() int {
	if v.check() != nil {
		return 0
	}
	return v.store.Size()
}

// Capacity reports occupied plus slack capacity. Unsynchronized snapshot.
func (v *Vector) Capacity() int {
	if v.check() != nil {
		return 0
	}
	return v.store.Cap()
}

// IsEmpty reports whether the vector holds no elements.
func (v *Vector) IsEmpty() bool {
	return v.Size() == 0
}

// MaxSize reports the largest size the index space can address.
func (v *Vector) MaxSize() int {
	if v.check() != nil {
		return 0
	}
	return math.MaxInt
}

// ElementSize reports the fixed element size in bytes.
func (v *Vector) ElementSize() int { return v.elemSize }

// Flags reports the property bits fixed at creation.
func (v *Vector) Flags() Flag { return v.flags }

// Clear removes every element, releasing or wiping per the ownership
// policy. Capacity is kept; clearing an empty vector is a no-op.
func (v *Vector) Clear() error {
	if err := v.check(); err != nil {
		return err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: clear", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	v.store.Clear(v.releaseElem)
	v.bottom, v.balance = 0, 0
	return nil
}

// ShrinkToFit compacts capacity to max(initial capacity, size+2),
// recentering the occupied range.
func (v *Vector) ShrinkToFit() error {
	if err := v.check(); err != nil {
		return err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: shrink", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	return asFault(v.store.ShrinkToFit())
}

// SetWipeFunc installs a custom secure-wipe function, used instead of the
// default zero-fill for vectors carrying SecureWipe.
func (v *Vector) SetWipeFunc(f WipeFunc) error {
	if err := v.check(); err != nil {
		return err
	}
	owner, err := v.gate.TryAcquire(gate.Primitive)
	if err != nil {
		return fmt.Errorf("%w: set wipe func", ErrRaceCondition)
	}
	defer v.gate.Release(owner, gate.Primitive)

	v.wipeFunc = f
	return nil
}

// Lock takes the vector's gate at user priority (level 3), blocking until
// available. While held, primitive operations from other callers fail with
// ErrRaceCondition instead of blocking.
func (v *Vector) Lock() error {
	if err := v.check(); err != nil {
		return err
	}
	v.gate.Acquire(gate.User)
	return nil
}

// Unlock releases a user-held gate. It is a no-op unless the gate is
// currently held at user priority.
func (v *Vector) Unlock() error {
	if err := v.check(); err != nil {
		return err
	}
	v.gate.ReleaseIf(gate.User)
	return nil
}

// LockEnable turns gate locking on process-wide. Locking is on by default.
func LockEnable() { gate.Enable() }

// LockDisable turns gate locking off process-wide, for single-threaded use.
func LockDisable() { gate.Disable() }

// check validates the handle.
func (v *Vector) check() error {
	if v == nil || v.destroyed.Load() {
		return ErrVectorUndefined
	}
	return nil
}

func (v *Vector) owned() bool {
	return v.flags&ByReference == 0
}

func (v *Vector) circular() bool {
	return v.flags&Circular != 0
}

// wipe overwrites an element buffer with the configured wipe function.
func (v *Vector) wipe(buf []byte) {
	mem.Wipe(buf, mem.WipeFunc(v.wipeFunc))
	if v.metrics != nil {
		v.metrics.RecordWipe()
	}
}

// newElem allocates an owned element buffer holding a copy of value.
func (v *Vector) newElem(value []byte) ([]byte, error) {
	if err := v.gov.Acquire(int64(v.elemSize)); err != nil {
		return nil, asFault(err)
	}
	buf := make([]byte, v.elemSize)
	copy(buf, value)
	if v.flags&SecureWipe != 0 {
		// Best effort: keeps wiped secrets from being swapped out first.
		_ = mem.LockPages(buf)
	}
	return buf, nil
}

// releaseElem retires a slot's buffer per the ownership and wipe policy.
// Borrowed references are never wiped or released here; they belong to the
// caller.
func (v *Vector) releaseElem(buf []byte) {
	if buf == nil || !v.owned() {
		return
	}
	if v.flags&SecureWipe != 0 {
		v.wipe(buf)
		_ = mem.UnlockPages(buf)
	}
	v.gov.Release(int64(len(buf)))
}

// asFault maps internal errors onto the public fault taxonomy.
func asFault(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, resource.ErrBudgetExceeded):
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	case errors.Is(err, storage.ErrNoRoom):
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	default:
		return err
	}
}
