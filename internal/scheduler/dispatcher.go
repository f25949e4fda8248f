package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Absoluteolivia/InnovoCon2k25/internal/notify"
	"github.com/Absoluteolivia/InnovoCon2k25/internal/reminder"
)

// Dispatcher resolves a fired reminder: it alerts the user, collects the
// yes/no confirmation, persists the outcome, and chains the successor for
// recurring reminders.
type Dispatcher struct {
	store    *reminder.Store
	notifier notify.Notifier
	register func(id int64, target time.Time)
}

// NewDispatcher creates a dispatcher that registers chained successors via
// the given callback.
func NewDispatcher(store *reminder.Store, notifier notify.Notifier, register func(id int64, target time.Time)) *Dispatcher {
	return &Dispatcher{
		store:    store,
		notifier: notifier,
		register: register,
	}
}

// Fire handles a single firing of id. It may block while awaiting the
// user's answer; it runs on the reminder's own timer goroutine, so other
// timers and the interaction surface are unaffected. Errors never
// propagate: a failed alert still resolves, a store failure retires this
// firing only.
func (d *Dispatcher) Fire(ctx context.Context, id int64) {
	rec, err := d.store.Get(id)
	if err != nil {
		// Deleted between the wake and this read: abort silently.
		if !errors.Is(err, reminder.ErrNotFound) {
			log.Printf("[dispatcher] reminder %d: %v", id, err)
		}
		return
	}

	if err := d.notifier.Alert("Medicine Reminder", fmt.Sprintf("Time to take your %s!", rec.Item)); err != nil {
		log.Printf("[dispatcher] alert failed for reminder %d: %v", id, err)
	}

	resp, err := d.notifier.Confirm(ctx, "Confirmation", fmt.Sprintf("Did you take %s?", rec.Item))
	if err != nil {
		if ctx.Err() != nil {
			// Shutting down mid-confirmation: leave the record Pending
			// for the next startup reconciliation.
			return
		}
		log.Printf("[dispatcher] confirmation failed for reminder %d: %v", id, err)
		resp = notify.NoResponse
	}

	// Anything short of an explicit yes counts as Missed.
	status := reminder.StatusMissed
	if resp == notify.Yes {
		status = reminder.StatusTaken
	}

	if _, err := d.store.Update(id, reminder.UpdateFields{Status: &status}); err != nil {
		if errors.Is(err, reminder.ErrNotFound) {
			// Deleted while awaiting the answer: nothing to resolve or chain.
			return
		}
		log.Printf("[dispatcher] failed to resolve reminder %d: %v", id, err)
		return
	}

	log.Printf("[dispatcher] reminder %d (%s) resolved as %s", id, rec.Item, status)

	if !rec.Recurring() {
		return
	}

	next := reminder.NextOccurrence(rec.TargetTime, rec.Frequency)
	created, err := d.store.Create(reminder.Reminder{
		Item:       rec.Item,
		TargetTime: next,
		Frequency:  rec.Frequency,
		Status:     reminder.StatusPending,
	})
	if err != nil {
		log.Printf("[dispatcher] failed to chain reminder %d: %v", id, err)
		return
	}

	d.register(created.ID, created.TargetTime)
	log.Printf("[dispatcher] chained reminder %d -> %d for %s", id, created.ID, next.Local().Format("2006-01-02 15:04"))
}
