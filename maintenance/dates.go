/*
dates.go - Wire date format and the quarter projector

PURPOSE:
  All dates crossing the engine boundary use one fixed text format
  (day/month/year). This file owns parsing/formatting for that format and
  the quarter projector: the pure function computing the four future
  checkpoint dates from an installation date.

PROJECTION RULE:
  base + 3, 6, 9, 12 calendar months. Calendar-month arithmetic, not fixed
  day counts, so 10/01/2024 projects to 10/04, 10/07, 10/10 and 10/01/2025.
  An absent or unparsable base falls back to the reference date supplied by
  the caller (the store passes "now").

SEE ALSO:
  - status.go: Consumes parsed dates for status derivation
  - store.go:  Re-projects whenever the installation date changes
*/
package maintenance

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the fixed external wire format for every date field.
const DateLayout = "02/01/2006"

// ParseDate parses a wire-format date. The empty string is an error; callers
// that treat blank as "absent" check for that before parsing.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected dd/mm/yyyy", s)
	}
	return t, nil
}

// FormatDate renders a time in the wire format.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ProjectQuarters returns the four checkpoint dates for a cycle starting at
// base: base plus 3, 6, 9 and 12 calendar months. Pure and deterministic.
func ProjectQuarters(base time.Time) [QuarterCount]time.Time {
	var out [QuarterCount]time.Time
	for i := range out {
		out[i] = base.AddDate(0, 3*(i+1), 0)
	}
	return out
}

// ProjectQuarterDates projects the four due dates from a wire-format
// installation date. An absent or unparsable installation date substitutes
// fallback (normally "today"). The result overwrites any previously stored
// quarter due dates.
func ProjectQuarterDates(installation string, fallback time.Time) [QuarterCount]string {
	base := fallback
	if strings.TrimSpace(installation) != "" {
		if t, err := ParseDate(installation); err == nil {
			base = t
		}
	}
	var out [QuarterCount]string
	for i, d := range ProjectQuarters(base) {
		out[i] = FormatDate(d)
	}
	return out
}
