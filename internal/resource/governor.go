// Package resource enforces an optional memory budget for vector storage.
//
// Go allocation failures are not observable the way a failed malloc is, so
// the budget is the mechanism that turns memory pressure into a reportable
// fault: when a vector would exceed its configured budget, the growth is
// denied as a whole and the vector is left untouched.
package resource

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// ErrBudgetExceeded is returned when an acquisition would exceed the budget.
var ErrBudgetExceeded = errors.New("resource: memory budget exceeded")

// Governor tracks bytes charged against an optional budget.
// A zero budget means unlimited; acquisitions then only keep accounting.
type Governor struct {
	budget int64
	used   atomic.Int64
	logger *slog.Logger
	warn   *rate.Limiter // throttles pressure warnings
}

// NewGovernor creates a Governor with the given budget in bytes.
// budget <= 0 disables enforcement. logger may be nil.
func NewGovernor(budget int64, logger *slog.Logger) *Governor {
	return &Governor{
		budget: budget,
		logger: logger,
		warn:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Acquire charges n bytes against the budget. It either charges the full
// amount or nothing.
func (g *Governor) Acquire(n int64) error {
	if n <= 0 {
		return nil
	}
	for {
		used := g.used.Load()
		if g.budget > 0 && used+n > g.budget {
			if g.logger != nil && g.warn.Allow() {
				g.logger.Warn("memory budget exceeded",
					"budget", g.budget,
					"used", used,
					"requested", n,
				)
			}
			return ErrBudgetExceeded
		}
		if g.used.CompareAndSwap(used, used+n) {
			return nil
		}
	}
}

// Release returns n bytes to the budget.
func (g *Governor) Release(n int64) {
	if n <= 0 {
		return
	}
	g.used.Add(-n)
}

// Used reports the bytes currently charged.
func (g *Governor) Used() int64 {
	return g.used.Load()
}

// Budget reports the configured budget, 0 if unlimited.
func (g *Governor) Budget() int64 {
	if g.budget < 0 {
		return 0
	}
	return g.budget
}
