/*
status.go - Lifecycle status derivation

PURPOSE:
  Derives a record's Upcoming/Overdue/Maintained status from its dates and
  engineer assignments "as of" a reference instant. Both derivations are pure
  given asOf; the store supplies "now" at write time and persists the result.

PERIODIC RULES:
  A quarter with a due date before asOf is "past". A past quarter is covered
  when it has a non-empty engineer. Any uncovered past quarter => Overdue.
  All past quarters covered (and at least one exists) => Maintained.
  No past quarters => Upcoming.

SINGLE-CYCLE RULES:
  No next-due date => Upcoming. A last service on/after the next-due date
  => Maintained (the catch-up service covers the old due point; no fresh due
  date is projected - see DESIGN.md). Otherwise past-due => Overdue, else
  Upcoming.

  Invalid date text never raises: it is logged and treated as absent.

SEE ALSO:
  - dates.go: Wire format parsing
  - store.go: Recomputes status on every write
*/
package maintenance

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// =============================================================================
// STATUS DERIVATION
// =============================================================================

// DerivePeriodicStatus classifies a periodic record as of the given instant.
func DerivePeriodicStatus(rec PeriodicRecord, asOf time.Time) Status {
	pastSeen := false
	for i, q := range rec.Quarters {
		due, ok := parseLenient(q.DueDate, rec.Key, "quarter due date", i+1)
		if !ok {
			continue
		}
		if !due.Before(asOf) {
			continue // scheduled in the future, ignored
		}
		pastSeen = true
		if strings.TrimSpace(q.Engineer) == "" {
			return StatusOverdue // past checkpoint nobody covered
		}
	}
	if pastSeen {
		return StatusMaintained
	}
	return StatusUpcoming
}

// DeriveSingleStatus classifies a single-cycle record as of the given instant.
func DeriveSingleStatus(rec SingleCycleRecord, asOf time.Time) Status {
	due, ok := parseLenient(rec.NextDueDate, rec.Key, "next due date", 0)
	if !ok {
		return StatusUpcoming // degenerate default: nothing is due
	}
	if last, ok := parseLenient(rec.LastServiceDate, rec.Key, "last service date", 0); ok {
		if !last.Before(due) {
			return StatusMaintained
		}
	}
	if due.Before(asOf) {
		return StatusOverdue
	}
	return StatusUpcoming
}

// parseLenient parses an optional wire date for derivation. Blank means
// absent; unparsable text is logged as an advisory and treated as absent.
func parseLenient(s, key, field string, quarter int) (time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, false
	}
	t, err := ParseDate(s)
	if err != nil {
		entry := logrus.WithFields(logrus.Fields{"record": key, "field": field})
		if quarter > 0 {
			entry = entry.WithField("quarter", quarter)
		}
		entry.Warnf("ignoring unparsable date %q in status derivation", s)
		return time.Time{}, false
	}
	return t, true
}

// =============================================================================
// DUE CLASSIFICATION - Consumed by the reminder digest
// =============================================================================

// DueClass buckets a record for the reminder digest.
type DueClass int

const (
	// DueLater: nothing overdue, nothing due inside the reminder window.
	DueLater DueClass = iota

	// DueSoon: the next checkpoint falls within the reminder window.
	DueSoon

	// DueOverdue: derived status is Overdue as of the reference instant.
	DueOverdue
)

// ClassifyPeriodic buckets a periodic record. window is the look-ahead in
// days for "due soon".
func ClassifyPeriodic(rec PeriodicRecord, asOf time.Time, window int) DueClass {
	if DerivePeriodicStatus(rec, asOf) == StatusOverdue {
		return DueOverdue
	}
	horizon := asOf.AddDate(0, 0, window)
	for i, q := range rec.Quarters {
		due, ok := parseLenient(q.DueDate, rec.Key, "quarter due date", i+1)
		if !ok {
			continue
		}
		if !due.Before(asOf) && !due.After(horizon) {
			return DueSoon
		}
	}
	return DueLater
}

// ClassifySingle buckets a single-cycle record.
func ClassifySingle(rec SingleCycleRecord, asOf time.Time, window int) DueClass {
	if DeriveSingleStatus(rec, asOf) == StatusOverdue {
		return DueOverdue
	}
	due, ok := parseLenient(rec.NextDueDate, rec.Key, "next due date", 0)
	if !ok {
		return DueLater
	}
	horizon := asOf.AddDate(0, 0, window)
	if !due.Before(asOf) && !due.After(horizon) {
		return DueSoon
	}
	return DueLater
}

// NextPeriodicDue returns the earliest quarter due date on or after asOf.
func NextPeriodicDue(rec PeriodicRecord, asOf time.Time) (time.Time, bool) {
	var best time.Time
	found := false
	for i, q := range rec.Quarters {
		due, ok := parseLenient(q.DueDate, rec.Key, "quarter due date", i+1)
		if !ok || due.Before(asOf) {
			continue
		}
		if !found || due.Before(best) {
			best = due
			found = true
		}
	}
	return best, found
}
