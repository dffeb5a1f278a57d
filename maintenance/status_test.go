package maintenance

import (
	"testing"
	"time"
)

func asOf(day int, month time.Month, year int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// PERIODIC STATUS
// =============================================================================

func TestDerivePeriodicStatus_UncoveredPastQuarterIsOverdue(t *testing.T) {
	// GIVEN: Reference date 15/03/2024; Q1 due 01/01/2024 covered by "A",
	//        Q2 due 01/02/2024 with no engineer, two future quarters
	// WHEN: Deriving status
	// THEN: Overdue (second quarter past-due and uncovered)

	rec := PeriodicRecord{
		Key: "EQ-1",
		Quarters: [QuarterCount]QuarterSchedule{
			{Engineer: "A", DueDate: "01/01/2024"},
			{Engineer: "", DueDate: "01/02/2024"},
			{Engineer: "", DueDate: "01/06/2024"},
			{Engineer: "", DueDate: "01/09/2024"},
		},
	}

	if got := DerivePeriodicStatus(rec, asOf(15, time.March, 2024)); got != StatusOverdue {
		t.Errorf("expected Overdue, got %s", got)
	}
}

func TestDerivePeriodicStatus_AllPastCoveredIsMaintained(t *testing.T) {
	// GIVEN: Two past quarters, both with engineers, two future quarters
	// WHEN: Deriving status
	// THEN: Maintained

	rec := PeriodicRecord{
		Key: "EQ-2",
		Quarters: [QuarterCount]QuarterSchedule{
			{Engineer: "A", DueDate: "01/01/2024"},
			{Engineer: "B", DueDate: "01/02/2024"},
			{Engineer: "", DueDate: "01/06/2024"},
			{Engineer: "", DueDate: "01/09/2024"},
		},
	}

	if got := DerivePeriodicStatus(rec, asOf(15, time.March, 2024)); got != StatusMaintained {
		t.Errorf("expected Maintained, got %s", got)
	}
}

func TestDerivePeriodicStatus_AllFutureIsUpcoming(t *testing.T) {
	// GIVEN: Every checkpoint scheduled in the future
	// WHEN: Deriving status
	// THEN: Upcoming

	rec := PeriodicRecord{
		Key: "EQ-3",
		Quarters: [QuarterCount]QuarterSchedule{
			{DueDate: "01/06/2024"}, {DueDate: "01/09/2024"},
			{DueDate: "01/12/2024"}, {DueDate: "01/03/2025"},
		},
	}

	if got := DerivePeriodicStatus(rec, asOf(15, time.March, 2024)); got != StatusUpcoming {
		t.Errorf("expected Upcoming, got %s", got)
	}
}

func TestDerivePeriodicStatus_BlankAndUnparsableDatesIgnored(t *testing.T) {
	// GIVEN: One past covered quarter, one blank and one junk due date
	// WHEN: Deriving status
	// THEN: The blank/junk entries are treated as absent; Maintained

	rec := PeriodicRecord{
		Key: "EQ-4",
		Quarters: [QuarterCount]QuarterSchedule{
			{Engineer: "A", DueDate: "01/01/2024"},
			{Engineer: "", DueDate: ""},
			{Engineer: "", DueDate: "garbage"},
			{Engineer: "", DueDate: "01/09/2024"},
		},
	}

	if got := DerivePeriodicStatus(rec, asOf(15, time.March, 2024)); got != StatusMaintained {
		t.Errorf("expected Maintained, got %s", got)
	}
}

func TestDerivePeriodicStatus_DueDateOnAsOfIsNotPast(t *testing.T) {
	// GIVEN: A quarter due exactly on the reference date, no engineer
	// WHEN: Deriving status
	// THEN: Not yet past, so Upcoming

	rec := PeriodicRecord{
		Key:      "EQ-5",
		Quarters: [QuarterCount]QuarterSchedule{{DueDate: "15/03/2024"}},
	}

	if got := DerivePeriodicStatus(rec, asOf(15, time.March, 2024)); got != StatusUpcoming {
		t.Errorf("expected Upcoming, got %s", got)
	}
}

// =============================================================================
// SINGLE-CYCLE STATUS
// =============================================================================

func TestDeriveSingleStatus_PastDueNoServiceIsOverdue(t *testing.T) {
	// GIVEN: Next due 01/02/2024, no service date, reference date 15/03/2024
	// WHEN: Deriving status
	// THEN: Overdue

	rec := SingleCycleRecord{Key: "EQ-6", NextDueDate: "01/02/2024"}
	if got := DeriveSingleStatus(rec, asOf(15, time.March, 2024)); got != StatusOverdue {
		t.Errorf("expected Overdue, got %s", got)
	}
}

func TestDeriveSingleStatus_NoDueDateIsUpcoming(t *testing.T) {
	rec := SingleCycleRecord{Key: "EQ-7"}
	if got := DeriveSingleStatus(rec, asOf(15, time.March, 2024)); got != StatusUpcoming {
		t.Errorf("expected Upcoming, got %s", got)
	}
}

func TestDeriveSingleStatus_ServiceOnOrAfterDueIsMaintained(t *testing.T) {
	// GIVEN: A service performed on the due date, and another after it
	// WHEN: Deriving status
	// THEN: Maintained in both cases, even with the due date long past

	on := SingleCycleRecord{Key: "EQ-8", NextDueDate: "01/02/2024", LastServiceDate: "01/02/2024"}
	if got := DeriveSingleStatus(on, asOf(15, time.March, 2024)); got != StatusMaintained {
		t.Errorf("service on due date: expected Maintained, got %s", got)
	}

	after := SingleCycleRecord{Key: "EQ-9", NextDueDate: "01/02/2024", LastServiceDate: "10/02/2024"}
	if got := DeriveSingleStatus(after, asOf(15, time.March, 2024)); got != StatusMaintained {
		t.Errorf("service after due date: expected Maintained, got %s", got)
	}
}

func TestDeriveSingleStatus_ServiceBeforeDueDoesNotCover(t *testing.T) {
	// GIVEN: A service before the due date, due date now past
	// WHEN: Deriving status
	// THEN: Overdue - the old service does not cover the new due point

	rec := SingleCycleRecord{Key: "EQ-10", NextDueDate: "01/02/2024", LastServiceDate: "01/12/2023"}
	if got := DeriveSingleStatus(rec, asOf(15, time.March, 2024)); got != StatusOverdue {
		t.Errorf("expected Overdue, got %s", got)
	}
}

func TestDeriveSingleStatus_FutureDueIsUpcoming(t *testing.T) {
	rec := SingleCycleRecord{Key: "EQ-11", NextDueDate: "01/06/2024"}
	if got := DeriveSingleStatus(rec, asOf(15, time.March, 2024)); got != StatusUpcoming {
		t.Errorf("expected Upcoming, got %s", got)
	}
}

// =============================================================================
// DUE CLASSIFICATION
// =============================================================================

func TestClassifyPeriodic_Buckets(t *testing.T) {
	ref := asOf(15, time.March, 2024)

	overdue := PeriodicRecord{
		Key:      "EQ-12",
		Quarters: [QuarterCount]QuarterSchedule{{DueDate: "01/02/2024"}},
	}
	if got := ClassifyPeriodic(overdue, ref, 30); got != DueOverdue {
		t.Errorf("expected DueOverdue, got %v", got)
	}

	soon := PeriodicRecord{
		Key:      "EQ-13",
		Quarters: [QuarterCount]QuarterSchedule{{DueDate: "01/04/2024"}},
	}
	if got := ClassifyPeriodic(soon, ref, 30); got != DueSoon {
		t.Errorf("expected DueSoon, got %v", got)
	}

	later := PeriodicRecord{
		Key:      "EQ-14",
		Quarters: [QuarterCount]QuarterSchedule{{DueDate: "01/09/2024"}},
	}
	if got := ClassifyPeriodic(later, ref, 30); got != DueLater {
		t.Errorf("expected DueLater, got %v", got)
	}
}

func TestClassifySingle_Buckets(t *testing.T) {
	ref := asOf(15, time.March, 2024)

	if got := ClassifySingle(SingleCycleRecord{Key: "a", NextDueDate: "01/02/2024"}, ref, 30); got != DueOverdue {
		t.Errorf("expected DueOverdue, got %v", got)
	}
	if got := ClassifySingle(SingleCycleRecord{Key: "b", NextDueDate: "01/04/2024"}, ref, 30); got != DueSoon {
		t.Errorf("expected DueSoon, got %v", got)
	}
	if got := ClassifySingle(SingleCycleRecord{Key: "c", NextDueDate: "01/09/2024"}, ref, 30); got != DueLater {
		t.Errorf("expected DueLater, got %v", got)
	}
	if got := ClassifySingle(SingleCycleRecord{Key: "d"}, ref, 30); got != DueLater {
		t.Errorf("no due date: expected DueLater, got %v", got)
	}
}

func TestNextPeriodicDue_EarliestFutureCheckpoint(t *testing.T) {
	ref := asOf(15, time.March, 2024)
	rec := PeriodicRecord{
		Key: "EQ-15",
		Quarters: [QuarterCount]QuarterSchedule{
			{DueDate: "01/01/2024"}, {DueDate: "01/09/2024"},
			{DueDate: "01/06/2024"}, {DueDate: ""},
		},
	}

	due, ok := NextPeriodicDue(rec, ref)
	if !ok {
		t.Fatal("expected a future due date")
	}
	if FormatDate(due) != "01/06/2024" {
		t.Errorf("expected 01/06/2024, got %s", FormatDate(due))
	}
}
