/*
digest.go - Reminder digest assembly and the notification sink contract

PURPOSE:
  Builds the plain-text digest the reminder scheduler hands to the
  Notification Sink: counts of overdue and due-soon equipment per variant
  plus one line per affected record. The sink is an external collaborator;
  the engine does not specify the transport (email, push, chat).

SEE ALSO:
  - status.go: ClassifyPeriodic / ClassifySingle bucket the records
  - api/scheduler.go (module): Assembles and dispatches on a timer
*/
package maintenance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// =============================================================================
// NOTIFICATION SINK - External collaborator
// =============================================================================

// NotificationSink accepts a pre-built digest and delivers it by whatever
// transport the host process wires in.
type NotificationSink interface {
	Deliver(ctx context.Context, digest string) error
}

// LogSink writes digests to the log. The default sink when no transport is
// configured.
type LogSink struct {
	Log logrus.FieldLogger
}

func (s LogSink) Deliver(_ context.Context, digest string) error {
	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithField("component", "notifications").Info("maintenance digest:\n" + digest)
	return nil
}

// =============================================================================
// DIGEST
// =============================================================================

// DigestStats summarizes one digest evaluation.
type DigestStats struct {
	PeriodicOverdue int
	PeriodicDueSoon int
	SingleOverdue   int
	SingleDueSoon   int
}

// Total is the number of records needing attention.
func (d DigestStats) Total() int {
	return d.PeriodicOverdue + d.PeriodicDueSoon + d.SingleOverdue + d.SingleDueSoon
}

// BuildDigest classifies every record as of asOf and renders the digest.
// window is the due-soon look-ahead in days.
func BuildDigest(periodic []PeriodicRecord, single []SingleCycleRecord, asOf time.Time, window int) (string, DigestStats) {
	var stats DigestStats
	var overdue, dueSoon []string

	for _, rec := range periodic {
		switch ClassifyPeriodic(rec, asOf, window) {
		case DueOverdue:
			stats.PeriodicOverdue++
			overdue = append(overdue, digestLine(rec.Key, rec.EquipmentName, rec.Department, nextPeriodicDueText(rec, asOf)))
		case DueSoon:
			stats.PeriodicDueSoon++
			dueSoon = append(dueSoon, digestLine(rec.Key, rec.EquipmentName, rec.Department, nextPeriodicDueText(rec, asOf)))
		}
	}
	for _, rec := range single {
		switch ClassifySingle(rec, asOf, window) {
		case DueOverdue:
			stats.SingleOverdue++
			overdue = append(overdue, digestLine(rec.Key, rec.EquipmentName, rec.Department, rec.NextDueDate))
		case DueSoon:
			stats.SingleDueSoon++
			dueSoon = append(dueSoon, digestLine(rec.Key, rec.EquipmentName, rec.Department, rec.NextDueDate))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Equipment maintenance digest for %s\n", FormatDate(asOf))
	fmt.Fprintf(&b, "Overdue: %d (periodic %d, single-cycle %d)\n",
		stats.PeriodicOverdue+stats.SingleOverdue, stats.PeriodicOverdue, stats.SingleOverdue)
	fmt.Fprintf(&b, "Due within %d days: %d (periodic %d, single-cycle %d)\n",
		window, stats.PeriodicDueSoon+stats.SingleDueSoon, stats.PeriodicDueSoon, stats.SingleDueSoon)

	if len(overdue) > 0 {
		b.WriteString("\nOVERDUE\n")
		for _, line := range overdue {
			b.WriteString(line)
		}
	}
	if len(dueSoon) > 0 {
		b.WriteString("\nDUE SOON\n")
		for _, line := range dueSoon {
			b.WriteString(line)
		}
	}
	if stats.Total() == 0 {
		b.WriteString("\nNothing needs attention.\n")
	}
	return b.String(), stats
}

func digestLine(key, equipment, department, due string) string {
	if due == "" {
		due = "-"
	}
	return fmt.Sprintf("  - %s | %s | %s | due %s\n", key, equipment, department, due)
}

// nextPeriodicDueText picks the date worth flagging: the earliest uncovered
// past checkpoint when one exists, otherwise the next future checkpoint.
func nextPeriodicDueText(rec PeriodicRecord, asOf time.Time) string {
	var earliest time.Time
	found := false
	for i, q := range rec.Quarters {
		d, ok := parseLenient(q.DueDate, rec.Key, "quarter due date", i+1)
		if !ok || !d.Before(asOf) || strings.TrimSpace(q.Engineer) != "" {
			continue
		}
		if !found || d.Before(earliest) {
			earliest = d
			found = true
		}
	}
	if found {
		return FormatDate(earliest)
	}
	if due, ok := NextPeriodicDue(rec, asOf); ok {
		return FormatDate(due)
	}
	return ""
}
