package reminder

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Validate checks new-reminder input and returns the combined target time
// in the local timezone. The time token must be zero-padded 24-hour HH:MM.
// The target must not be earlier than the clock's current time.
func Validate(clock Clock, item, dateStr, timeStr, frequency string) (time.Time, error) {
	item = strings.TrimSpace(item)
	if item == "" || dateStr == "" || timeStr == "" || frequency == "" {
		return time.Time{}, ErrInvalidInput
	}

	if !ValidFrequency(frequency) {
		return time.Time{}, fmt.Errorf("%w: unknown frequency %q", ErrInvalidInput, frequency)
	}

	// time.Parse alone accepts a single-digit hour, so enforce the
	// zero-padded length as well.
	if len(timeStr) != len(timeLayout) {
		return time.Time{}, ErrInvalidTimeFormat
	}
	if _, err := time.Parse(timeLayout, timeStr); err != nil {
		return time.Time{}, ErrInvalidTimeFormat
	}

	target, err := time.ParseInLocation(dateLayout+" "+timeLayout, dateStr+" "+timeStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, dateStr)
	}

	if target.Before(clock.Now()) {
		return time.Time{}, ErrPastDateTime
	}

	return target, nil
}
