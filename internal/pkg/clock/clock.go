// internal/pkg/clock/clock.go
package clock

import "time"

// Clock supplies "now" timestamps so ledger-stamping code can be tested
// against a fixed time.
type Clock interface {
	Now() time.Time
}

// System is the wall clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a clock pinned to a single instant, for tests.
type Fixed struct {
	Time time.Time
}

func (f Fixed) Now() time.Time {
	return f.Time
}
