/*
scheduler.go - Recurring background tasks

PURPOSE:
  Two scheduler actors own the engine's background work:
  - ReminderScheduler: periodically recomputes due/overdue equipment and
    dispatches a digest through the Notification Sink.
  - BackupScheduler: drives an injected backup function on a long cadence
    while polling a liveness flag in short increments, so a stop request is
    honored within roughly a minute instead of waiting out the interval.

DESIGN:
  - One instance per process; a process-local running flag makes a second
    Start a no-op and leaves the existing loop untouched.
  - Settings (enabled flag, interval, window) are reloaded fresh on every
    cycle, so operators change cadence without a restart.
  - The interval sleep is the only suspension point. The loop is
    interval-driven (select on a timer), never recursive self-scheduling.
  - Any failure inside one evaluation is caught and logged; the loop always
    proceeds to the next sleep. A single bad cycle never terminates the task.
  - No cross-process coordination: two processes each hosting a scheduler
    will both dispatch. Known limitation.

USAGE:
  sched := NewReminderScheduler(store, settings, sink, nil)
  sched.Start()
  // ... later
  sched.Stop()

SEE ALSO:
  - maintenance/digest.go:   Digest assembly and sink contract
  - maintenance/settings.go: Per-cycle settings reload
*/
package api

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/medequip/maintenance-engine/maintenance"
)

// =============================================================================
// REMINDER SCHEDULER
// =============================================================================

// ReminderScheduler periodically evaluates the record collections and hands
// a digest to the notification sink.
type ReminderScheduler struct {
	Store    *maintenance.Store
	Settings maintenance.SettingsLoader
	Sink     maintenance.NotificationSink

	// StartupDelay lets the surrounding process stabilize before the first
	// evaluation.
	StartupDelay time.Duration

	log     logrus.FieldLogger
	mu      sync.Mutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewReminderScheduler creates a stopped scheduler.
func NewReminderScheduler(store *maintenance.Store, settings maintenance.SettingsLoader, sink maintenance.NotificationSink, log logrus.FieldLogger) *ReminderScheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ReminderScheduler{
		Store:        store,
		Settings:     settings,
		Sink:         sink,
		StartupDelay: 30 * time.Second,
		log:          log.WithField("component", "reminder-scheduler"),
	}
}

// Start launches the evaluation loop. Returns false (and does nothing) when
// a loop is already running in this process.
func (rs *ReminderScheduler) Start() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.running {
		rs.log.Warn("start ignored: scheduler already running")
		return false
	}
	rs.running = true
	rs.stop = make(chan struct{})
	rs.wg.Add(1)
	go rs.run()

	rs.log.Info("reminder scheduler started")
	return true
}

// Stop terminates the loop and waits for it to exit.
func (rs *ReminderScheduler) Stop() {
	rs.mu.Lock()
	if !rs.running {
		rs.mu.Unlock()
		return
	}
	rs.running = false
	close(rs.stop)
	rs.mu.Unlock()

	rs.wg.Wait()
	rs.log.Info("reminder scheduler stopped")
}

func (rs *ReminderScheduler) run() {
	defer rs.wg.Done()

	select {
	case <-time.After(rs.StartupDelay):
	case <-rs.stop:
		return
	}

	for {
		interval := rs.evaluate()
		select {
		case <-time.After(interval):
		case <-rs.stop:
			return
		}
	}
}

// evaluate runs one cycle and returns the sleep interval for the next one.
// Failures are contained here: logged, never propagated to the loop.
func (rs *ReminderScheduler) evaluate() (interval time.Duration) {
	settings := rs.Settings.Load()
	interval = settings.ReminderInterval

	cycle := rs.log.WithField("cycle", uuid.NewString())
	defer func() {
		if r := recover(); r != nil {
			cycle.Errorf("evaluation panicked: %v", r)
		}
	}()

	if !settings.ReminderEnabled {
		cycle.Debug("reminders disabled, skipping evaluation")
		return interval
	}

	ctx := context.Background()
	periodic, err := rs.Store.ListPeriodic(ctx)
	if err != nil {
		cycle.WithError(err).Error("failed to list periodic records")
		return interval
	}
	single, err := rs.Store.ListSingle(ctx)
	if err != nil {
		cycle.WithError(err).Error("failed to list single-cycle records")
		return interval
	}

	digest, stats := maintenance.BuildDigest(periodic, single, time.Now(), settings.ReminderWindowDays)
	if stats.Total() == 0 {
		cycle.Debug("nothing due, digest not dispatched")
		return interval
	}

	if err := rs.Sink.Deliver(ctx, digest); err != nil {
		cycle.WithError(err).Error("digest delivery failed")
		return interval
	}
	cycle.WithFields(logrus.Fields{
		"overdue":  stats.PeriodicOverdue + stats.SingleOverdue,
		"due_soon": stats.PeriodicDueSoon + stats.SingleDueSoon,
	}).Info("digest dispatched")
	return interval
}

// RunNow triggers an immediate evaluation (for testing/admin).
func (rs *ReminderScheduler) RunNow() {
	rs.evaluate()
}

// =============================================================================
// BACKUP SCHEDULER - Short-increment variant with a liveness flag
// =============================================================================

// BackupFunc is the external backup collaborator. The archive mechanics live
// outside the engine.
type BackupFunc func(ctx context.Context) error

// BackupScheduler invokes the backup function on the configured cadence.
// Unlike the reminder loop it sleeps in short increments and polls a
// liveness flag, so Stop takes effect within about one poll increment.
type BackupScheduler struct {
	Settings maintenance.SettingsLoader
	Backup   BackupFunc

	// PollIncrement bounds how long a stop request can go unnoticed.
	PollIncrement time.Duration

	log     logrus.FieldLogger
	mu      sync.Mutex
	running bool
	alive   atomic.Bool
	wg      sync.WaitGroup
}

// NewBackupScheduler creates a stopped backup scheduler.
func NewBackupScheduler(settings maintenance.SettingsLoader, backup BackupFunc, log logrus.FieldLogger) *BackupScheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &BackupScheduler{
		Settings:      settings,
		Backup:        backup,
		PollIncrement: time.Minute,
		log:           log.WithField("component", "backup-scheduler"),
	}
}

// Start launches the backup loop. A second Start is a no-op.
func (bs *BackupScheduler) Start() bool {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if bs.running {
		bs.log.Warn("start ignored: scheduler already running")
		return false
	}
	bs.running = true
	bs.alive.Store(true)
	bs.wg.Add(1)
	go bs.run()

	bs.log.Info("backup scheduler started")
	return true
}

// Stop flips the liveness flag and waits for the loop to notice it.
func (bs *BackupScheduler) Stop() {
	bs.mu.Lock()
	if !bs.running {
		bs.mu.Unlock()
		return
	}
	bs.running = false
	bs.alive.Store(false)
	bs.mu.Unlock()

	bs.wg.Wait()
	bs.log.Info("backup scheduler stopped")
}

func (bs *BackupScheduler) run() {
	defer bs.wg.Done()

	for bs.alive.Load() {
		settings := bs.Settings.Load()
		if settings.BackupEnabled {
			bs.runBackup()
		} else {
			bs.log.Debug("backups disabled, skipping cycle")
		}
		if !bs.sleep(settings.BackupInterval) {
			return
		}
	}
}

func (bs *BackupScheduler) runBackup() {
	defer func() {
		if r := recover(); r != nil {
			bs.log.Errorf("backup panicked: %v", r)
		}
	}()
	if err := bs.Backup(context.Background()); err != nil {
		bs.log.WithError(err).Error("backup failed")
		return
	}
	bs.log.Info("backup completed")
}

// sleep waits out the interval in PollIncrement slices, checking the
// liveness flag between slices. Returns false when a stop was requested.
func (bs *BackupScheduler) sleep(interval time.Duration) bool {
	remaining := interval
	for remaining > 0 {
		if !bs.alive.Load() {
			return false
		}
		slice := bs.PollIncrement
		if remaining < slice {
			slice = remaining
		}
		time.Sleep(slice)
		remaining -= slice
	}
	return bs.alive.Load()
}
