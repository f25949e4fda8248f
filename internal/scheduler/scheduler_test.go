package scheduler

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Absoluteolivia/InnovoCon2k25/internal/notify"
	"github.com/Absoluteolivia/InnovoCon2k25/internal/reminder"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeNotifier records alerts and answers every confirmation with a
// scripted response.
type fakeNotifier struct {
	mu       sync.Mutex
	alerts   []string
	response notify.Response
}

func (n *fakeNotifier) Alert(title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, message)
	return nil
}

func (n *fakeNotifier) Confirm(ctx context.Context, title, question string) (notify.Response, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.response, nil
}

func (n *fakeNotifier) alertCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}

// blockingNotifier holds every confirmation open until the test releases
// it, keeping a fire in flight for as long as needed.
type blockingNotifier struct {
	mu      sync.Mutex
	alerts  int
	release chan notify.Response
}

func newBlockingNotifier() *blockingNotifier {
	return &blockingNotifier{release: make(chan notify.Response)}
}

func (n *blockingNotifier) Alert(title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts++
	return nil
}

func (n *blockingNotifier) Confirm(ctx context.Context, title, question string) (notify.Response, error) {
	select {
	case resp := <-n.release:
		return resp, nil
	case <-ctx.Done():
		return notify.NoResponse, ctx.Err()
	}
}

func (n *blockingNotifier) alertCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.alerts
}

func newSchedulerWith(t *testing.T, notifier notify.Notifier) (*Scheduler, *reminder.Store, *fakeClock) {
	t.Helper()

	store, err := reminder.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	clock := &fakeClock{now: time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)}

	sched := New(store, notifier, clock, Options{
		PollInterval: 10 * time.Millisecond,
		SnoozeOffset: 5 * time.Minute,
	})
	t.Cleanup(sched.Stop)

	return sched, store, clock
}

func newTestScheduler(t *testing.T, resp notify.Response) (*Scheduler, *reminder.Store, *fakeClock, *fakeNotifier) {
	t.Helper()

	notifier := &fakeNotifier{response: resp}
	sched, store, clock := newSchedulerWith(t, notifier)
	return sched, store, clock, notifier
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestFireResolvesAndChainsDaily(t *testing.T) {
	sched, store, clock, notifier := newTestScheduler(t, notify.No)

	target := clock.Now().Add(time.Minute)
	created, err := store.Create(reminder.Reminder{Item: "Aspirin", TargetTime: target, Frequency: reminder.FrequencyDaily})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	sched.Register(created.ID, created.TargetTime)

	// Not due yet: the timer must hold its fire.
	time.Sleep(50 * time.Millisecond)
	if notifier.alertCount() != 0 {
		t.Fatal("reminder fired before its target time")
	}

	clock.Advance(2 * time.Minute)

	waitFor(t, time.Second, func() bool {
		rec, err := store.Get(created.ID)
		return err == nil && rec.Status == reminder.StatusMissed
	}, "reminder was not resolved as Missed")

	if notifier.alertCount() != 1 {
		t.Errorf("alert count = %d, want 1", notifier.alertCount())
	}

	all, err := store.List("")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("reminder count after chaining = %d, want 2", len(all))
	}

	var successor reminder.Reminder
	for _, r := range all {
		if r.ID != created.ID {
			successor = r
		}
	}
	if successor.Status != reminder.StatusPending {
		t.Errorf("successor status = %s, want %s", successor.Status, reminder.StatusPending)
	}
	if !successor.TargetTime.Equal(target.Add(24 * time.Hour)) {
		t.Errorf("successor target = %v, want %v", successor.TargetTime, target.Add(24*time.Hour))
	}
	if successor.Frequency != reminder.FrequencyDaily {
		t.Errorf("successor frequency = %s, want %s", successor.Frequency, reminder.FrequencyDaily)
	}
}

func TestFireOnceYesNoSuccessor(t *testing.T) {
	sched, store, clock, _ := newTestScheduler(t, notify.Yes)

	created, err := store.Create(reminder.Reminder{Item: "Aspirin", TargetTime: clock.Now().Add(time.Minute)})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	sched.Register(created.ID, created.TargetTime)

	clock.Advance(2 * time.Minute)

	waitFor(t, time.Second, func() bool {
		rec, err := store.Get(created.ID)
		return err == nil && rec.Status == reminder.StatusTaken
	}, "reminder was not resolved as Taken")

	all, err := store.List("")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("one-shot reminder chained a successor: %d records", len(all))
	}
}

func TestDeletedReminderNeverFires(t *testing.T) {
	sched, store, clock, notifier := newTestScheduler(t, notify.Yes)

	created, err := store.Create(reminder.Reminder{Item: "Aspirin", TargetTime: clock.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	sched.Register(created.ID, created.TargetTime)

	if err := store.Delete(created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	sched.Cancel(created.ID)

	clock.Advance(2 * time.Hour)
	time.Sleep(50 * time.Millisecond)

	if notifier.alertCount() != 0 {
		t.Errorf("deleted reminder still alerted %d time(s)", notifier.alertCount())
	}
}

func TestResolvedReminderRetiresWithoutFiring(t *testing.T) {
	sched, store, clock, notifier := newTestScheduler(t, notify.Yes)

	created, err := store.Create(reminder.Reminder{Item: "Aspirin", TargetTime: clock.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	sched.Register(created.ID, created.TargetTime)

	// Resolve out of band: the timer's next wake must observe it and retire.
	status := reminder.StatusTaken
	if _, err := store.Update(created.ID, reminder.UpdateFields{Status: &status}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	clock.Advance(2 * time.Hour)
	time.Sleep(50 * time.Millisecond)

	if notifier.alertCount() != 0 {
		t.Errorf("resolved reminder still alerted %d time(s)", notifier.alertCount())
	}
}

func TestBootstrapReconcilesWithoutAlerting(t *testing.T) {
	sched, store, clock, notifier := newTestScheduler(t, notify.Yes)

	overdue, err := store.Create(reminder.Reminder{Item: "Overdue", TargetTime: clock.Now().Add(-time.Hour)})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	upcoming, err := store.Create(reminder.Reminder{Item: "Upcoming", TargetTime: clock.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := sched.Bootstrap(); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	rec, err := store.Get(overdue.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Status != reminder.StatusMissed {
		t.Errorf("overdue reminder status = %s, want %s", rec.Status, reminder.StatusMissed)
	}

	rec, err = store.Get(upcoming.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Status != reminder.StatusPending {
		t.Errorf("upcoming reminder status = %s, want %s", rec.Status, reminder.StatusPending)
	}

	// Reconciliation is silent: no retroactive notifications.
	time.Sleep(50 * time.Millisecond)
	if notifier.alertCount() != 0 {
		t.Errorf("reconciliation produced %d alert(s), want 0", notifier.alertCount())
	}
}

func TestSnoozeMovesTargetAndFiresLater(t *testing.T) {
	sched, store, clock, _ := newTestScheduler(t, notify.Yes)

	created, err := store.Create(reminder.Reminder{Item: "Aspirin", TargetTime: clock.Now().Add(time.Minute)})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	sched.Register(created.ID, created.TargetTime)

	newTime, err := sched.Snooze(created.ID)
	if err != nil {
		t.Fatalf("Snooze failed: %v", err)
	}
	if want := clock.Now().Add(5 * time.Minute); !newTime.Equal(want) {
		t.Errorf("snoozed target = %v, want %v", newTime, want)
	}

	rec, err := store.Get(created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Status != reminder.StatusSnoozed {
		t.Errorf("status after snooze = %s, want %s", rec.Status, reminder.StatusSnoozed)
	}

	// Past the original time but short of the snoozed one: still quiet.
	clock.Advance(2 * time.Minute)
	time.Sleep(50 * time.Millisecond)
	rec, _ = store.Get(created.ID)
	if rec.Status != reminder.StatusSnoozed {
		t.Fatalf("reminder fired before its snoozed target (status %s)", rec.Status)
	}

	clock.Advance(5 * time.Minute)
	waitFor(t, time.Second, func() bool {
		rec, err := store.Get(created.ID)
		return err == nil && rec.Status == reminder.StatusTaken
	}, "snoozed reminder did not fire at its new time")
}

func TestSnoozeUnknownID(t *testing.T) {
	sched, _, _, _ := newTestScheduler(t, notify.Yes)

	if _, err := sched.Snooze(404); err == nil {
		t.Error("Snooze(404) succeeded, want error")
	}
}

func TestSnoozeRejectsResolvedReminder(t *testing.T) {
	sched, store, clock, notifier := newTestScheduler(t, notify.Yes)

	for _, status := range []string{reminder.StatusTaken, reminder.StatusMissed} {
		created, err := store.Create(reminder.Reminder{
			Item:       "Aspirin",
			TargetTime: clock.Now().Add(-time.Hour),
			Status:     status,
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if _, err := sched.Snooze(created.ID); err == nil {
			t.Errorf("snoozing a %s reminder succeeded, want error", status)
		}

		rec, err := store.Get(created.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if rec.Status != status {
			t.Errorf("status after rejected snooze = %s, want %s", rec.Status, status)
		}
	}

	// Terminal records stay terminal: nothing fires even though their
	// target times are in the past.
	time.Sleep(50 * time.Millisecond)
	if notifier.alertCount() != 0 {
		t.Errorf("resolved reminders alerted %d time(s)", notifier.alertCount())
	}
}

func TestSnoozeDuringFireDoesNotDoubleFire(t *testing.T) {
	notifier := newBlockingNotifier()
	sched, store, clock := newSchedulerWith(t, notifier)

	created, err := store.Create(reminder.Reminder{Item: "Aspirin", TargetTime: clock.Now().Add(time.Minute)})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	sched.Register(created.ID, created.TargetTime)

	clock.Advance(2 * time.Minute)

	// The fire is now in flight, blocked on the confirmation.
	waitFor(t, time.Second, func() bool {
		return notifier.alertCount() == 1
	}, "reminder never fired")

	if _, err := sched.Snooze(created.ID); err == nil {
		t.Error("snoozing a firing reminder succeeded, want error")
	}

	// No second timer may have started for the same id.
	clock.Advance(10 * time.Minute)
	time.Sleep(50 * time.Millisecond)
	if n := notifier.alertCount(); n != 1 {
		t.Fatalf("one firing produced %d alerts", n)
	}

	notifier.release <- notify.Yes

	waitFor(t, time.Second, func() bool {
		rec, err := store.Get(created.ID)
		return err == nil && rec.Status == reminder.StatusTaken
	}, "reminder was not resolved after the confirmation")

	if n := notifier.alertCount(); n != 1 {
		t.Errorf("alert count after resolution = %d, want 1", n)
	}
}

func TestSweepPicksUpExternalWrites(t *testing.T) {
	sched, store, clock, notifier := newTestScheduler(t, notify.Yes)

	if err := sched.Bootstrap(); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	// Written by another process sharing the database: no Register call.
	created, err := store.Create(reminder.Reminder{Item: "Aspirin", TargetTime: clock.Now().Add(time.Minute)})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	clock.Advance(2 * time.Minute)

	waitFor(t, time.Second, func() bool {
		rec, err := store.Get(created.ID)
		return err == nil && rec.Status == reminder.StatusTaken
	}, "externally created reminder never fired")

	if notifier.alertCount() != 1 {
		t.Errorf("alert count = %d, want 1", notifier.alertCount())
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	sched, store, clock, notifier := newTestScheduler(t, notify.No)

	created, err := store.Create(reminder.Reminder{Item: "Aspirin", TargetTime: clock.Now().Add(time.Minute)})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Double registration must not double-fire.
	sched.Register(created.ID, created.TargetTime)
	sched.Register(created.ID, created.TargetTime)

	clock.Advance(2 * time.Minute)

	waitFor(t, time.Second, func() bool {
		rec, err := store.Get(created.ID)
		return err == nil && rec.Status == reminder.StatusMissed
	}, "reminder was not resolved")

	time.Sleep(50 * time.Millisecond)
	if notifier.alertCount() != 1 {
		t.Errorf("alert count = %d, want 1", notifier.alertCount())
	}
}
