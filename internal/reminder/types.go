package reminder

import "time"

// Status values for reminders. Pending and Snoozed are active states;
// Taken and Missed are terminal.
const (
	StatusPending = "Pending"
	StatusTaken   = "Taken"
	StatusMissed  = "Missed"
	StatusSnoozed = "Snoozed"
)

// Frequency values for reminders.
const (
	FrequencyOnce   = "Once"
	FrequencyDaily  = "Daily"
	FrequencyWeekly = "Weekly"
)

// Reminder represents a single scheduled medication reminder.
type Reminder struct {
	ID         int64     `json:"id"`
	Item       string    `json:"item"`
	TargetTime time.Time `json:"target_time"`
	Frequency  string    `json:"frequency"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Active reports whether the reminder is still waiting to fire.
// A snoozed reminder behaves like a pending one for scheduling.
func (r *Reminder) Active() bool {
	return r.Status == StatusPending || r.Status == StatusSnoozed
}

// Recurring reports whether firing this reminder produces a successor.
func (r *Reminder) Recurring() bool {
	return r.Frequency == FrequencyDaily || r.Frequency == FrequencyWeekly
}

// ValidFrequency reports whether f is one of the supported frequencies.
func ValidFrequency(f string) bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly:
		return true
	}
	return false
}

// NextOccurrence returns the target time of the successor for a recurring
// reminder. The advance is a fixed duration (24h or 7*24h), not a calendar
// step, so it holds exactly across DST boundaries. Callers must branch on
// frequency first; Once has no successor and falls through unchanged.
func NextOccurrence(t time.Time, frequency string) time.Time {
	switch frequency {
	case FrequencyDaily:
		return t.Add(24 * time.Hour)
	case FrequencyWeekly:
		return t.Add(7 * 24 * time.Hour)
	}
	return t
}
