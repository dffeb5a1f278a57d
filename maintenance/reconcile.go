/*
reconcile.go - Bulk upsert of imported tabular rows

PURPOSE:
  Merges externally supplied tabular data (spreadsheet imports) into a
  record collection. Each row maps fixed external column names onto record
  fields. Row failures are collected, never fatal: a malformed row is
  reported with its 1-based index and skipped while the batch continues.

MERGE SEMANTICS:
  - Existing key  -> replace content in place, sequence number preserved
  - New key       -> insertion candidate appended in row order
  - One sequence renumbering pass and ONE persistence write for the whole
    merged collection; individual row outcomes are tracked independently.

STATUS RESOLUTION PER ROW:
  A valid supplied status is taken as given. An absent status is derived.
  An invalid status is derived too, plus an advisory error is recorded -
  the row itself still lands.

SEE ALSO:
  - store.go:  Shares the renumber/persist helpers and the store mutex
  - api/handlers.go (module): HTTP import/export endpoints
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
// TABULAR SCHEMA - Fixed external column names
// =============================================================================

// Row is one imported tabular row, keyed by the column names below.
type Row map[string]string

const (
	ColSequence     = "NO"
	ColKey          = "SERIAL"
	ColDepartment   = "DEPARTMENT"
	ColEquipment    = "EQUIPMENT"
	ColModel        = "MODEL"
	ColManufacturer = "MANUFACTURER"
	ColLogNumber    = "LOG_NO"
	ColInstallation = "INSTALLATION_DATE"
	ColWarranty     = "WARRANTY_END"
	ColStatus       = "STATUS"

	// Single-cycle only.
	ColEngineer    = "ENGINEER"
	ColLastService = "LAST_SERVICE_DATE"
	ColNextDue     = "NEXT_DUE_DATE"
)

// QuarterEngineerCols holds the periodic variant's one-engineer-per-quarter
// input columns, in quarter order.
var QuarterEngineerCols = [QuarterCount]string{
	"Q1_ENGINEER", "Q2_ENGINEER", "Q3_ENGINEER", "Q4_ENGINEER",
}

// QuarterDueCols holds the computed due-date columns used on export.
var QuarterDueCols = [QuarterCount]string{
	"Q1_DATE", "Q2_DATE", "Q3_DATE", "Q4_DATE",
}

// =============================================================================
// RECONCILER
// =============================================================================

// Summary reports the outcome of one reconciliation batch.
type Summary struct {
	Inserted int
	Updated  int
	Skipped  int
	Errors   []string
}

// Reconciler performs bulk upserts against a Store's collections.
type Reconciler struct {
	store *Store
	log   logrus.FieldLogger
}

// NewReconciler creates a reconciler bound to the given store.
func NewReconciler(store *Store, log logrus.FieldLogger) *Reconciler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reconciler{store: store, log: log.WithField("component", "reconciler")}
}

// ReconcilePeriodic merges rows into the periodic collection.
// The error return covers only the final whole-collection write; per-row
// outcomes are in the summary.
func (r *Reconciler) ReconcilePeriodic(ctx context.Context, rows []Row) (Summary, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	recs, err := r.store.loadPeriodic(ctx)
	if err != nil {
		return Summary{}, err
	}

	index := make(map[string]int, len(recs))
	for i, rec := range recs {
		index[rec.Key] = i
	}

	now := r.store.now()
	var sum Summary
	for n, row := range rows {
		rec, advisory, err := periodicFromRow(row, now)
		if err != nil {
			sum.Skipped++
			sum.Errors = append(sum.Errors, fmt.Sprintf("row %d: %v", n+1, err))
			continue
		}
		if advisory != "" {
			sum.Errors = append(sum.Errors, fmt.Sprintf("row %d: %s", n+1, advisory))
		}

		if i, ok := index[rec.Key]; ok {
			rec.SequenceNumber = recs[i].SequenceNumber
			recs[i] = rec
			sum.Updated++
		} else {
			recs = append(recs, rec)
			index[rec.Key] = len(recs) - 1
			sum.Inserted++
		}
	}

	renumberPeriodic(recs)
	if err := r.store.replacePeriodic(ctx, recs); err != nil {
		return sum, err
	}
	r.log.WithFields(logrus.Fields{
		"inserted": sum.Inserted, "updated": sum.Updated, "skipped": sum.Skipped,
	}).Info("periodic reconciliation complete")
	return sum, nil
}

// ReconcileSingle merges rows into the single-cycle collection.
func (r *Reconciler) ReconcileSingle(ctx context.Context, rows []Row) (Summary, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	recs, err := r.store.loadSingle(ctx)
	if err != nil {
		return Summary{}, err
	}

	index := make(map[string]int, len(recs))
	for i, rec := range recs {
		index[rec.Key] = i
	}

	now := r.store.now()
	var sum Summary
	for n, row := range rows {
		rec, advisory, err := singleFromRow(row, now)
		if err != nil {
			sum.Skipped++
			sum.Errors = append(sum.Errors, fmt.Sprintf("row %d: %v", n+1, err))
			continue
		}
		if advisory != "" {
			sum.Errors = append(sum.Errors, fmt.Sprintf("row %d: %s", n+1, advisory))
		}

		if i, ok := index[rec.Key]; ok {
			rec.SequenceNumber = recs[i].SequenceNumber
			recs[i] = rec
			sum.Updated++
		} else {
			recs = append(recs, rec)
			index[rec.Key] = len(recs) - 1
			sum.Inserted++
		}
	}

	renumberSingle(recs)
	if err := r.store.replaceSingle(ctx, recs); err != nil {
		return sum, err
	}
	r.log.WithFields(logrus.Fields{
		"inserted": sum.Inserted, "updated": sum.Updated, "skipped": sum.Skipped,
	}).Info("single-cycle reconciliation complete")
	return sum, nil
}

// =============================================================================
// ROW MAPPING
// =============================================================================

// periodicFromRow maps a row onto a periodic record. Quarter due dates are
// recomputed from the row's installation date; engineers come from the
// per-quarter input columns. Returns an advisory string when an invalid
// status value was supplied and replaced by derivation.
func periodicFromRow(row Row, now time.Time) (PeriodicRecord, string, error) {
	rec := PeriodicRecord{
		Key:              strings.TrimSpace(row[ColKey]),
		Department:       strings.TrimSpace(row[ColDepartment]),
		EquipmentName:    strings.TrimSpace(row[ColEquipment]),
		Model:            strings.TrimSpace(row[ColModel]),
		Manufacturer:     strings.TrimSpace(row[ColManufacturer]),
		LogNumber:        strings.TrimSpace(row[ColLogNumber]),
		InstallationDate: strings.TrimSpace(row[ColInstallation]),
		WarrantyEndDate:  strings.TrimSpace(row[ColWarranty]),
	}
	for i, col := range QuarterEngineerCols {
		rec.Quarters[i].Engineer = strings.TrimSpace(row[col])
	}
	if err := validatePeriodic(rec); err != nil {
		return PeriodicRecord{}, "", err
	}

	projectInto(&rec, now)

	supplied := strings.TrimSpace(row[ColStatus])
	rec.Status = resolveStatus(supplied, func() Status { return DerivePeriodicStatus(rec, now) })
	if advisory := statusAdvisory(supplied); advisory != "" {
		return rec, advisory, nil
	}
	return rec, "", nil
}

func singleFromRow(row Row, now time.Time) (SingleCycleRecord, string, error) {
	rec := SingleCycleRecord{
		Key:              strings.TrimSpace(row[ColKey]),
		Department:       strings.TrimSpace(row[ColDepartment]),
		EquipmentName:    strings.TrimSpace(row[ColEquipment]),
		Model:            strings.TrimSpace(row[ColModel]),
		Manufacturer:     strings.TrimSpace(row[ColManufacturer]),
		LogNumber:        strings.TrimSpace(row[ColLogNumber]),
		InstallationDate: strings.TrimSpace(row[ColInstallation]),
		WarrantyEndDate:  strings.TrimSpace(row[ColWarranty]),
		AssignedEngineer: strings.TrimSpace(row[ColEngineer]),
		LastServiceDate:  strings.TrimSpace(row[ColLastService]),
		NextDueDate:      strings.TrimSpace(row[ColNextDue]),
	}
	if err := validateSingle(rec); err != nil {
		return SingleCycleRecord{}, "", err
	}

	supplied := strings.TrimSpace(row[ColStatus])
	rec.Status = resolveStatus(supplied, func() Status { return DeriveSingleStatus(rec, now) })
	if advisory := statusAdvisory(supplied); advisory != "" {
		return rec, advisory, nil
	}
	return rec, "", nil
}

// statusAdvisory reports a non-empty status value that failed enum
// validation. Absent is fine (silent derivation).
func statusAdvisory(supplied string) string {
	if supplied == "" {
		return ""
	}
	if _, ok := ParseStatus(supplied); ok {
		return ""
	}
	return fmt.Sprintf("invalid status %q replaced by derived value", supplied)
}

// =============================================================================
// EXPORT SCHEMA - Ordered rows, sequence number first
// =============================================================================

// PeriodicExportHeader returns the fixed export column order for the
// periodic variant. The sequence number is always the first column.
func PeriodicExportHeader() []string {
	cols := []string{ColSequence, ColKey, ColDepartment, ColEquipment, ColModel,
		ColManufacturer, ColLogNumber, ColInstallation, ColWarranty}
	for i := 0; i < QuarterCount; i++ {
		cols = append(cols, QuarterEngineerCols[i], QuarterDueCols[i])
	}
	return append(cols, ColStatus)
}

// ExportPeriodicRows renders records in PeriodicExportHeader order.
func ExportPeriodicRows(recs []PeriodicRecord) [][]string {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		row := []string{fmt.Sprintf("%d", rec.SequenceNumber), rec.Key, rec.Department,
			rec.EquipmentName, rec.Model, rec.Manufacturer, rec.LogNumber,
			rec.InstallationDate, rec.WarrantyEndDate}
		for _, q := range rec.Quarters {
			row = append(row, q.Engineer, q.DueDate)
		}
		rows = append(rows, append(row, string(rec.Status)))
	}
	return rows
}

// SingleExportHeader returns the fixed export column order for the
// single-cycle variant.
func SingleExportHeader() []string {
	return []string{ColSequence, ColKey, ColDepartment, ColEquipment, ColModel,
		ColManufacturer, ColLogNumber, ColInstallation, ColWarranty,
		ColEngineer, ColLastService, ColNextDue, ColStatus}
}

// ExportSingleRows renders records in SingleExportHeader order.
func ExportSingleRows(recs []SingleCycleRecord) [][]string {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, []string{fmt.Sprintf("%d", rec.SequenceNumber), rec.Key,
			rec.Department, rec.EquipmentName, rec.Model, rec.Manufacturer,
			rec.LogNumber, rec.InstallationDate, rec.WarrantyEndDate,
			rec.AssignedEngineer, rec.LastServiceDate, rec.NextDueDate,
			string(rec.Status)})
	}
	return rows
}
