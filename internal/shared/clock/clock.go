// Package clock abstracts "now" so reconciliation sweeps can be tested
// deterministically.
package clock

import (
	"time"

	"github.com/pawhaven/pawhaven/internal/shared/biztime"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return biztime.NowUTC()
}

// System returns a Clock backed by the real wall clock in UTC.
func System() Clock {
	return systemClock{}
}

// Fixed is a Clock pinned to a settable instant, for tests.
type Fixed struct {
	Instant time.Time
}

func (f *Fixed) Now() time.Time {
	return f.Instant
}

// Advance moves the fixed clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.Instant = f.Instant.Add(d)
}
