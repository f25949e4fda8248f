package reminder

import "time"

// Clock supplies the current wall-clock time. The scheduler and validator
// take a Clock so tests can inject synthetic time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
