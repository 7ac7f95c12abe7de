package vector

import (
	"github.com/pzaino/vector/internal/storage"
)

// ShiftStrategy selects how index-shifting mutations (add/remove/delete in
// the middle of the occupied range) move slots.
type ShiftStrategy uint8

const (
	// ShiftInPlace moves overlapping slots directly. Default; cheapest, and
	// safe because every mutation runs under the vector's gate.
	ShiftInPlace ShiftStrategy = iota
	// ShiftReentrant builds the post-mutation slot array in a fresh
	// allocation and publishes it wholesale, so any observer of the array
	// sees only a whole pre- or post-state, never a partial shift.
	ShiftReentrant
)

type options struct {
	logger    *Logger
	metrics   MetricsCollector
	wipeFunc  WipeFunc
	strategy  ShiftStrategy
	maxMemory int64
}

// Option configures constructor behavior.
type Option func(*options)

// WithLogger configures structured logging for lifecycle and capacity
// events. If nil is passed the library stays silent.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector. Pass nil to disable.
func WithMetricsCollector(m MetricsCollector) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithWipeFunc sets a custom secure-wipe function, used instead of the
// default zero-fill when the vector carries SecureWipe. Equivalent to
// calling SetWipeFunc after construction.
func WithWipeFunc(f WipeFunc) Option {
	return func(o *options) {
		o.wipeFunc = f
	}
}

// WithShiftStrategy selects the mutation shift strategy.
func WithShiftStrategy(s ShiftStrategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithMaxMemory caps the bytes the vector may hold in slot and element
// storage. Growth beyond the budget fails with ErrOutOfMemory, leaving the
// vector unchanged. Zero means unlimited.
func WithMaxMemory(n int64) Option {
	return func(o *options) {
		o.maxMemory = n
	}
}

func (o options) storageStrategy() storage.Strategy {
	if o.strategy == ShiftReentrant {
		return storage.Reentrant
	}
	return storage.InPlace
}
