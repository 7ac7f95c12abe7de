// Package vector implements a dynamic array of fixed-size opaque elements
// with pre-reserved capacity on both ends, so it serves equally well as a
// stack, a queue or a ring buffer.
//
// Elements are byte slices. By default the vector owns element memory: Add
// copies the value in, Get and Remove copy it out, and Delete releases it.
// The ByReference flag switches to borrowed storage, where the vector holds
// caller-managed references and never copies element bytes. The SecureWipe
// flag overwrites owned element memory the moment it stops being used, and
// the Circular flag fixes capacity so writes wrap around instead of growing.
//
// Every public operation on a vector is serialized by a per-vector gate with
// three priority levels. Single-element primitives never block: when the
// gate is contended they fail fast with ErrRaceCondition. Composite
// operations (AddOrdered, Copy, Insert, Move, Merge) block until the gate is
// free. Lock and Unlock give callers an explicit third level for multi-step
// critical sections.
//
// Beyond element access the package provides in-place three-way quicksort,
// an adaptive binary search that remembers where the previous lookup landed,
// and bulk transfer between vectors, including a destructive Merge that
// moves slot references without copying.
package vector
