package vector

import (
	"sync/atomic"

	"github.com/pzaino/vector/internal/storage"
)

// MetricsCollector receives operational events. Implementations must be
// safe for concurrent use. Pass one via WithMetricsCollector; collection is
// disabled by default.
type MetricsCollector interface {
	// RecordGrow is called after capacity doubles on one side ("left"/"right").
	RecordGrow(side string)
	// RecordShrink is called after capacity halves on one side.
	RecordShrink(side string)
	// RecordShift is called after a mutation moved slots, with the count moved.
	RecordShift(moved int)
	// RecordWipe is called after an element buffer is securely wiped.
	RecordWipe()
	// RecordTransfer is called after a bulk transfer, with the element count.
	RecordTransfer(elements int)
}

// BasicMetricsCollector is a ready-to-use atomic counter implementation.
type BasicMetricsCollector struct {
	grows     atomic.Int64
	shrinks   atomic.Int64
	shifts    atomic.Int64
	moved     atomic.Int64
	wipes     atomic.Int64
	transfers atomic.Int64
}

// RecordGrow implements MetricsCollector.
func (c *BasicMetricsCollector) RecordGrow(string) { c.grows.Add(1) }

// RecordShrink implements MetricsCollector.
func (c *BasicMetricsCollector) RecordShrink(string) { c.shrinks.Add(1) }

// RecordShift implements MetricsCollector.
func (c *BasicMetricsCollector) RecordShift(moved int) {
	c.shifts.Add(1)
	c.moved.Add(int64(moved))
}

// RecordWipe implements MetricsCollector.
func (c *BasicMetricsCollector) RecordWipe() { c.wipes.Add(1) }

// RecordTransfer implements MetricsCollector.
func (c *BasicMetricsCollector) RecordTransfer(elements int) {
	c.transfers.Add(int64(elements))
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Grows       int64
	Shrinks     int64
	Shifts      int64
	SlotsMoved  int64
	Wipes       int64
	Transferred int64
}

// Snapshot returns the current counter values.
func (c *BasicMetricsCollector) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Grows:       c.grows.Load(),
		Shrinks:     c.shrinks.Load(),
		Shifts:      c.shifts.Load(),
		SlotsMoved:  c.moved.Load(),
		Wipes:       c.wipes.Load(),
		Transferred: c.transfers.Load(),
	}
}

// storageObserver adapts a MetricsCollector to the storage event interface.
type storageObserver struct {
	m MetricsCollector
}

func (o storageObserver) Grew(side storage.Side)   { o.m.RecordGrow(side.String()) }
func (o storageObserver) Shrunk(side storage.Side) { o.m.RecordShrink(side.String()) }
func (o storageObserver) Shifted(moved int)        { o.m.RecordShift(moved) }
