/*
Package maintenance provides the core equipment maintenance lifecycle engine.

PURPOSE:
  This package contains the domain types and algorithms for tracking hospital
  equipment maintenance: deriving a record's lifecycle status from dates and
  engineer assignments, projecting quarterly due dates from an installation
  date, and keeping a uniquely-keyed, densely-sequenced record collection
  consistent under bulk reconciliation.

KEY CONCEPTS IN THIS FILE (types.go):
  - PeriodicRecord:    Equipment serviced on a four-quarter cycle
  - SingleCycleRecord: Equipment tracked by one upcoming due date at a time
  - QuarterSchedule:   One quarterly checkpoint (engineer + computed due date)
  - Status:            Upcoming / Overdue / Maintained lifecycle status

DESIGN PRINCIPLES:
  1. Wire dates are text: records carry dates in the fixed dd/mm/yyyy format
     used by every surrounding tool (imports, exports, the HTTP surface).
     Parsing happens at the point of use; stored junk degrades, never panics.
  2. Status is stored, not live: it is recomputed on every write and read back
     as-is. Reads never mutate.
  3. Fixed-shape quarters: QuarterSchedule is a typed struct, not an open map.

SEE ALSO:
  - dates.go:  Date parsing and the quarter projector
  - status.go: Status derivation rules
  - store.go:  Record collection with uniqueness and dense sequencing
*/
package maintenance

// =============================================================================
// VARIANT - The two record collections
// =============================================================================

// Variant identifies which record collection an operation targets.
type Variant string

const (
	// VariantPeriodic tracks equipment across four quarterly checkpoints.
	VariantPeriodic Variant = "periodic"

	// VariantSingleCycle tracks equipment by a single next-due date.
	VariantSingleCycle Variant = "single_cycle"
)

// =============================================================================
// STATUS - Derived lifecycle status
// =============================================================================

type Status string

const (
	StatusUpcoming   Status = "Upcoming"
	StatusOverdue    Status = "Overdue"
	StatusMaintained Status = "Maintained"
)

// ParseStatus validates a caller-supplied status string.
// Returns the status and true when s is one of the three valid values.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusUpcoming, StatusOverdue, StatusMaintained:
		return Status(s), true
	}
	return "", false
}

// =============================================================================
// QUARTER SCHEDULE - One checkpoint of the four-quarter cycle
// =============================================================================

// QuarterSchedule is a value object owned by its parent PeriodicRecord.
// DueDate is always computed by the quarter projector, never user-supplied.
// Engineer is empty when nobody is assigned to the checkpoint yet.
type QuarterSchedule struct {
	Engineer string
	DueDate  string // dd/mm/yyyy, set by ProjectQuarterDates
}

// QuarterCount is the fixed number of checkpoints per periodic cycle.
const QuarterCount = 4

// =============================================================================
// RECORDS - The two concrete variants
// =============================================================================

// PeriodicRecord is a maintenance record on the four-quarter cycle.
// Key is the equipment serial and is immutable after creation.
// SequenceNumber is the dense 1..N position, reassigned by the store on
// every mutation of the collection.
type PeriodicRecord struct {
	Key            string
	SequenceNumber int
	Department     string
	EquipmentName  string
	Model          string
	Manufacturer   string
	LogNumber      string
	InstallationDate string // optional, dd/mm/yyyy
	WarrantyEndDate  string // optional, dd/mm/yyyy
	Status           Status
	Quarters         [QuarterCount]QuarterSchedule
}

// SingleCycleRecord is a maintenance record tracked by one due date at a time.
type SingleCycleRecord struct {
	Key            string
	SequenceNumber int
	Department     string
	EquipmentName  string
	Model          string
	Manufacturer   string
	LogNumber      string
	InstallationDate string // optional, dd/mm/yyyy
	WarrantyEndDate  string // optional, dd/mm/yyyy
	Status           Status
	AssignedEngineer string
	LastServiceDate  string // optional, dd/mm/yyyy
	NextDueDate      string // dd/mm/yyyy
}
