package maintenance

import (
	"testing"
	"time"
)

func TestProjectQuarters_ThreeMonthSteps(t *testing.T) {
	// GIVEN: A base date
	// WHEN: Projecting the four checkpoints
	// THEN: Each is exactly 3 calendar months after the previous

	base := time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC)
	out := ProjectQuarters(base)

	prev := base
	for i, d := range out {
		want := prev.AddDate(0, 3, 0)
		if !d.Equal(want) {
			t.Errorf("quarter %d: expected %v, got %v", i+1, want, d)
		}
		prev = d
	}
}

func TestProjectQuarterDates_SpecimenInstallation(t *testing.T) {
	// GIVEN: Installation date 10/01/2024
	// WHEN: Projecting quarter due dates
	// THEN: 10/04/2024, 10/07/2024, 10/10/2024, 10/01/2025

	out := ProjectQuarterDates("10/01/2024", time.Now())

	want := [QuarterCount]string{"10/04/2024", "10/07/2024", "10/10/2024", "10/01/2025"}
	if out != want {
		t.Errorf("expected %v, got %v", want, out)
	}
}

func TestProjectQuarterDates_BlankFallsBackToReference(t *testing.T) {
	// GIVEN: No installation date
	// WHEN: Projecting with a fixed reference date
	// THEN: The reference date is the projection base

	ref := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	out := ProjectQuarterDates("", ref)

	if out[0] != "01/09/2024" {
		t.Errorf("expected first due date 01/09/2024, got %s", out[0])
	}
	if out[3] != "01/06/2025" {
		t.Errorf("expected last due date 01/06/2025, got %s", out[3])
	}
}

func TestProjectQuarterDates_UnparsableFallsBackToReference(t *testing.T) {
	// GIVEN: Garbage in the installation date
	// WHEN: Projecting with a fixed reference date
	// THEN: The garbage is ignored, reference date used

	ref := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	if got := ProjectQuarterDates("not-a-date", ref); got[0] != "01/09/2024" {
		t.Errorf("expected fallback projection 01/09/2024, got %s", got[0])
	}
}

func TestParseDate_WireFormat(t *testing.T) {
	// GIVEN: A day/month/year wire date
	// WHEN: Parsing
	// THEN: Day and month land in the right fields (not US order)

	d, err := ParseDate("05/02/2024")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Day() != 5 || d.Month() != time.February || d.Year() != 2024 {
		t.Errorf("expected 5 Feb 2024, got %v", d)
	}
}

func TestParseDate_Rejections(t *testing.T) {
	for _, bad := range []string{"", "  ", "2024-02-05", "31/02/2024", "5 Feb 2024"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestFormatDate_RoundTrip(t *testing.T) {
	d := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	s := FormatDate(d)
	if s != "31/12/2025" {
		t.Fatalf("expected 31/12/2025, got %s", s)
	}
	back, err := ParseDate(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("round trip changed the date: %v != %v", back, d)
	}
}
