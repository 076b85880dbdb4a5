// Package scheduler provides the reminder loop for poopstats.
//
// On every tick it compares each user's configured reminder times against
// the current wall clock and dispatches at most one reminder per user, slot
// and day, using the persisted notification log as the idempotency gate.
package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/poopstats/poopstats/internal/models"
	"github.com/poopstats/poopstats/internal/store"
)

// NotifyFunc sends the reminder prompt for one slot and seeds the user's
// conversation state with the matching pending question.
type NotifyFunc func(userID int64, slot models.Slot, date string) error

// Scheduler runs the supervised tick loop.
type Scheduler struct {
	store    store.Store
	notify   NotifyFunc
	loc      *time.Location
	interval time.Duration
	cron     *cron.Cron
}

// New creates a scheduler ticking every interval in the given timezone.
func New(st store.Store, notify NotifyFunc, loc *time.Location, interval time.Duration) *Scheduler {
	return &Scheduler{store: st, notify: notify, loc: loc, interval: interval}
}

// Start begins the tick loop. Panics inside a tick are recovered so the
// loop itself never terminates on an error.
func (s *Scheduler) Start() error {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	expr := fmt.Sprintf("@every %ds", int(s.interval.Seconds()))
	if _, err := c.AddFunc(expr, func() { s.Tick(time.Now()) }); err != nil {
		return fmt.Errorf("schedule tick job: %w", err)
	}
	c.Start()
	s.cron = c
	slog.Info("Scheduler started", "interval", s.interval, "tz", s.loc.String())
	return nil
}

// Stop stops the loop and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	slog.Info("Scheduler stopped")
}

// Tick runs one pass over all users. A reminder fires when the user's slot
// time equals the current "HH:MM" in the scheduler's timezone and the
// notification log has no record for (user, slot, today). The log is written
// only after a successful send, so a failed send is retried on the next
// matching tick and a crash between send and mark can at worst repeat a
// reminder, never lose one. Missed minutes are not back-filled.
//
// Failures are per-user and per-slot: they are logged and the tick moves on.
func (s *Scheduler) Tick(now time.Time) {
	now = now.In(s.loc)
	currentTime := now.Format(models.TimeFormatHHMM)
	today := now.Format(models.DateFormatStorage)

	schedules, err := s.store.ListSchedules()
	if err != nil {
		slog.Error("Scheduler: list schedules failed", "error", err)
		return
	}

	for _, sc := range schedules {
		for _, slot := range models.Slots {
			if sc.TimeFor(slot) != currentTime {
				continue
			}
			s.fire(sc.UserID, slot, today)
		}
	}
}

func (s *Scheduler) fire(userID int64, slot models.Slot, date string) {
	sent, err := s.store.IsNotificationSent(userID, slot, date)
	if err != nil {
		slog.Error("Scheduler: notification check failed", "error", err, "userID", userID, "slot", slot)
		return
	}
	if sent {
		return
	}

	if err := s.notify(userID, slot, date); err != nil {
		slog.Error("Scheduler: reminder dispatch failed", "error", err, "userID", userID, "slot", slot)
		return
	}
	if err := s.store.MarkNotificationSent(userID, slot, date); err != nil {
		slog.Error("Scheduler: mark notification failed", "error", err, "userID", userID, "slot", slot)
		return
	}
	slog.Debug("Scheduler: reminder dispatched", "userID", userID, "slot", slot, "date", date)
}
