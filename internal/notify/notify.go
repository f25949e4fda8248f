// Package notify delivers reminder alerts to the user and collects the
// optional yes/no confirmation that resolves a fired reminder.
package notify

import "context"

// Response is the user's answer to a confirmation question.
type Response int

const (
	// NoResponse means the user never answered (dismissed, timed out,
	// or the channel failed). The dispatcher treats it the same as No.
	NoResponse Response = iota
	No
	Yes
)

func (r Response) String() string {
	switch r {
	case Yes:
		return "yes"
	case No:
		return "no"
	}
	return "no response"
}

// Notifier alerts the user and collects confirmations. Alert is
// fire-and-forget; Confirm may block until the user answers, the context
// is cancelled, or the implementation's own timeout expires.
type Notifier interface {
	Alert(title, message string) error
	Confirm(ctx context.Context, title, question string) (Response, error)
}
