// Package scheduler tracks one lightweight timer per active reminder and
// routes firings through the notification dispatcher.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Absoluteolivia/InnovoCon2k25/internal/notify"
	"github.com/Absoluteolivia/InnovoCon2k25/internal/reminder"
)

// Options tunes the scheduler's timing behavior.
type Options struct {
	// PollInterval is how often a timer re-checks its reminder against
	// the clock. Notification latency is bounded by this interval.
	PollInterval time.Duration
	// SnoozeOffset is added to the current time when a reminder is
	// snoozed.
	SnoozeOffset time.Duration
}

const (
	defaultPollInterval = 30 * time.Second
	defaultSnoozeOffset = 5 * time.Minute
)

type checkResult int

const (
	checkWait checkResult = iota
	checkRetire
	checkFire
)

// Scheduler owns one goroutine per active reminder. Each goroutine polls
// coarsely, re-reads its record from the store before acting (the store is
// the single source of truth, so concurrent deletes, snoozes, and manual
// resolutions are always observed), fires at most once, and retires.
type Scheduler struct {
	store        *reminder.Store
	clock        reminder.Clock
	dispatcher   *Dispatcher
	pollInterval time.Duration
	snoozeOffset time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	timers map[int64]*timerEntry
}

// timerEntry tracks one live timer. firing is set while the dispatcher is
// handling the reminder, which can block on the user's confirmation.
type timerEntry struct {
	cancel context.CancelFunc
	firing bool
}

// New creates a scheduler over the given store, notifier, and clock.
func New(store *reminder.Store, notifier notify.Notifier, clock reminder.Clock, opts Options) *Scheduler {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.SnoozeOffset <= 0 {
		opts.SnoozeOffset = defaultSnoozeOffset
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		store:        store,
		clock:        clock,
		pollInterval: opts.PollInterval,
		snoozeOffset: opts.SnoozeOffset,
		ctx:          ctx,
		cancel:       cancel,
		timers:       map[int64]*timerEntry{},
	}
	s.dispatcher = NewDispatcher(store, notifier, s.Register)
	return s
}

// Bootstrap reconciles reminders missed while the process was not running,
// registers a timer for every remaining active reminder, and starts a
// background sweep that picks up active reminders written by other
// processes sharing the database. It must be called before user actions
// are accepted.
func (s *Scheduler) Bootstrap() error {
	n, err := s.store.MarkMissedBefore(s.clock.Now())
	if err != nil {
		return fmt.Errorf("startup reconciliation failed: %w", err)
	}
	if n > 0 {
		log.Printf("[reconcile] marked %d overdue reminder(s) as Missed", n)
	}

	active, err := s.store.Active()
	if err != nil {
		return fmt.Errorf("failed to load active reminders: %w", err)
	}

	for _, r := range active {
		s.Register(r.ID, r.TargetTime)
	}

	s.wg.Add(1)
	go s.sweep(s.ctx)

	log.Printf("[scheduler] tracking %d active reminder(s)", len(active))
	return nil
}

// sweep periodically registers timers for active reminders that arrived
// outside this process, e.g. via the MCP server writing to the shared
// database. Already-tracked ids are no-ops.
func (s *Scheduler) sweep(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		active, err := s.store.Active()
		if err != nil {
			log.Printf("[scheduler] sweep failed: %v", err)
			continue
		}
		for _, r := range active {
			s.Register(r.ID, r.TargetTime)
		}
	}
}

// Register begins tracking id. Each reminder has at most one live timer;
// registering an already-tracked id is a no-op. target is informational —
// the timer re-reads the stored target time on every wake, so a snooze
// that moves the time is picked up without re-arming.
func (s *Scheduler) Register(id int64, target time.Time) {
	s.mu.Lock()
	if _, ok := s.timers[id]; ok {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.timers[id] = &timerEntry{cancel: cancel}
	s.mu.Unlock()

	log.Printf("[scheduler] registered reminder %d for %s", id, target.Local().Format("2006-01-02 15:04"))

	s.wg.Add(1)
	go s.watch(ctx, id)
}

// Cancel retires the timer for id with no further effect. Used on delete
// and on manual resolution.
func (s *Scheduler) Cancel(id int64) {
	if cancel := s.unregister(id); cancel != nil {
		cancel()
	}
}

// Snooze pushes the reminder's target time to now plus the snooze offset
// and marks it Snoozed. The status stays Snoozed until the next firing;
// the wake re-check treats Snoozed the same as Pending. Only an active
// reminder can be snoozed: resolved records are terminal, and a firing
// one is already awaiting its confirmation.
func (s *Scheduler) Snooze(id int64) (time.Time, error) {
	if s.firing(id) {
		return time.Time{}, fmt.Errorf("reminder %d is firing and awaiting confirmation", id)
	}

	rec, err := s.store.Get(id)
	if err != nil {
		return time.Time{}, err
	}
	if !rec.Active() {
		return time.Time{}, fmt.Errorf("reminder %d is already %s", id, rec.Status)
	}

	newTime := s.clock.Now().Add(s.snoozeOffset)
	status := reminder.StatusSnoozed
	if _, err := s.store.Update(id, reminder.UpdateFields{TargetTime: &newTime, Status: &status}); err != nil {
		return time.Time{}, err
	}

	// Re-arm in case the timer is not tracked yet; the sweep would catch
	// it eventually, but the new target should take effect immediately.
	s.Register(id, newTime)

	log.Printf("[scheduler] snoozed reminder %d until %s", id, newTime.Local().Format("15:04:05"))
	return newTime, nil
}

// Stop abandons all live timers. In-flight confirmations are interrupted
// without persisting a status; the startup reconciler restores consistency
// on the next run.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) watch(ctx context.Context, id int64) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		switch s.check(id) {
		case checkRetire:
			s.Cancel(id)
			return
		case checkFire:
			// The id stays registered while Fire blocks on the
			// confirmation, so Register remains a no-op and a snooze
			// in that window cannot start a second timer. A fired
			// timer never re-fires; a recurring successor gets its
			// own id and timer.
			s.markFiring(id)
			s.dispatcher.Fire(ctx, id)
			s.Cancel(id)
			return
		}

		select {
		case <-ctx.Done():
			s.Cancel(id)
			return
		case <-ticker.C:
		}
	}
}

// check re-reads the record and decides what the timer should do. The
// fresh read is mandatory: the record may have been deleted, resolved, or
// snoozed since the last wake.
func (s *Scheduler) check(id int64) checkResult {
	rec, err := s.store.Get(id)
	if err != nil {
		if !errors.Is(err, reminder.ErrNotFound) {
			log.Printf("[scheduler] reminder %d: %v", id, err)
		}
		return checkRetire
	}

	if !rec.Active() {
		return checkRetire
	}

	if !s.clock.Now().Before(rec.TargetTime) {
		return checkFire
	}

	return checkWait
}

func (s *Scheduler) unregister(id int64) context.CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.timers[id]
	if !ok {
		return nil
	}
	delete(s.timers, id)
	return e.cancel
}

func (s *Scheduler) markFiring(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.timers[id]; ok {
		e.firing = true
	}
}

func (s *Scheduler) firing(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.timers[id]
	return ok && e.firing
}
