package maintenance_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medequip/maintenance-engine/maintenance"
)

func periodicRow(key string) maintenance.Row {
	return maintenance.Row{
		maintenance.ColKey:          key,
		maintenance.ColDepartment:   "Radiology",
		maintenance.ColEquipment:    "MRI Scanner",
		maintenance.ColModel:        "MAGNETOM",
		maintenance.ColManufacturer: "Siemens",
		maintenance.ColInstallation: "10/01/2024",
	}
}

func singleRow(key string) maintenance.Row {
	return maintenance.Row{
		maintenance.ColKey:          key,
		maintenance.ColDepartment:   "ICU",
		maintenance.ColEquipment:    "Ventilator",
		maintenance.ColModel:        "Servo-u",
		maintenance.ColManufacturer: "Getinge",
		maintenance.ColNextDue:      "01/06/2024",
	}
}

func TestReconcilePeriodic_MixedBatchInsertsValidReportsInvalid(t *testing.T) {
	// GIVEN: One valid row and one row with a blank required field
	// WHEN: Reconciling the batch
	// THEN: Exactly one record inserted, one skip, one error with row index

	ctx := context.Background()
	s := newTestStore()
	r := maintenance.NewReconciler(s, nil)

	bad := periodicRow("P-2")
	bad[maintenance.ColDepartment] = ""

	sum, err := r.ReconcilePeriodic(ctx, []maintenance.Row{periodicRow("P-1"), bad})
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Inserted)
	assert.Equal(t, 0, sum.Updated)
	assert.Equal(t, 1, sum.Skipped)
	require.Len(t, sum.Errors, 1)
	assert.True(t, strings.HasPrefix(sum.Errors[0], "row 2:"), "got %q", sum.Errors[0])

	recs, err := s.ListPeriodic(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "P-1", recs[0].Key)
	assert.Equal(t, 1, recs[0].SequenceNumber)
}

func TestReconcilePeriodic_ExistingKeyReplacedInPlace(t *testing.T) {
	// GIVEN: Records A, B, C sequenced 1..3
	// WHEN: Reconciling a row with key B and new content
	// THEN: B's content is replaced, its sequence number stays 2

	ctx := context.Background()
	s := newTestStore()
	r := maintenance.NewReconciler(s, nil)

	for _, key := range []string{"A", "B", "C"} {
		_, err := s.InsertPeriodic(ctx, periodicFixture(key))
		require.NoError(t, err)
	}

	row := periodicRow("B")
	row[maintenance.ColDepartment] = "Oncology"
	row[maintenance.QuarterEngineerCols[0]] = "L. Mensah"

	sum, err := r.ReconcilePeriodic(ctx, []maintenance.Row{row})
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Inserted)
	assert.Equal(t, 1, sum.Updated)

	got, ok, err := s.GetPeriodic(ctx, "B")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got.SequenceNumber)
	assert.Equal(t, "Oncology", got.Department)
	assert.Equal(t, "L. Mensah", got.Quarters[0].Engineer)
}

func TestReconcilePeriodic_QuarterDatesRecomputedFromRow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	r := maintenance.NewReconciler(s, nil)

	row := periodicRow("P-3")
	row[maintenance.ColInstallation] = "01/02/2024"

	_, err := r.ReconcilePeriodic(ctx, []maintenance.Row{row})
	require.NoError(t, err)

	got, ok, err := s.GetPeriodic(ctx, "P-3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "01/05/2024", got.Quarters[0].DueDate)
	assert.Equal(t, "01/02/2025", got.Quarters[3].DueDate)
}

func TestReconcilePeriodic_InvalidStatusLandsWithAdvisory(t *testing.T) {
	// GIVEN: A row carrying an invalid status value
	// WHEN: Reconciling
	// THEN: The row lands with a derived status plus one advisory error

	ctx := context.Background()
	s := newTestStore()
	r := maintenance.NewReconciler(s, nil)

	row := periodicRow("P-4")
	row[maintenance.ColStatus] = "Perfect"

	sum, err := r.ReconcilePeriodic(ctx, []maintenance.Row{row})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Inserted)
	assert.Equal(t, 0, sum.Skipped)
	require.Len(t, sum.Errors, 1)
	assert.Contains(t, sum.Errors[0], "invalid status")

	got, _, err := s.GetPeriodic(ctx, "P-4")
	require.NoError(t, err)
	assert.Equal(t, maintenance.StatusUpcoming, got.Status)
}

func TestReconcilePeriodic_ValidStatusTakenAsGiven(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	r := maintenance.NewReconciler(s, nil)

	row := periodicRow("P-5")
	row[maintenance.ColStatus] = "Maintained"

	sum, err := r.ReconcilePeriodic(ctx, []maintenance.Row{row})
	require.NoError(t, err)
	assert.Empty(t, sum.Errors)

	got, _, err := s.GetPeriodic(ctx, "P-5")
	require.NoError(t, err)
	assert.Equal(t, maintenance.StatusMaintained, got.Status)
}

func TestReconcileSingle_BatchRenumbersDensely(t *testing.T) {
	// GIVEN: An existing record and a batch of two new rows
	// WHEN: Reconciling
	// THEN: One renumbering pass leaves sequence numbers 1..3

	ctx := context.Background()
	s := newTestStore()
	r := maintenance.NewReconciler(s, nil)

	_, err := s.InsertSingle(ctx, singleFixture("S-1"))
	require.NoError(t, err)

	sum, err := r.ReconcileSingle(ctx, []maintenance.Row{singleRow("S-2"), singleRow("S-3")})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Inserted)

	recs, err := s.ListSingle(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for i, rec := range recs {
		assert.Equal(t, i+1, rec.SequenceNumber, "record %s", rec.Key)
	}
}

func TestReconcileSingle_BadDateRowSkipped(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	r := maintenance.NewReconciler(s, nil)

	row := singleRow("S-4")
	row[maintenance.ColNextDue] = "June 1st"

	sum, err := r.ReconcileSingle(ctx, []maintenance.Row{row})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped)
	require.Len(t, sum.Errors, 1)
	assert.True(t, strings.HasPrefix(sum.Errors[0], "row 1:"), "got %q", sum.Errors[0])
}

// =============================================================================
// EXPORT SCHEMA
// =============================================================================

func TestExport_SequenceNumberIsFirstColumn(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	_, err := s.InsertPeriodic(ctx, periodicFixture("X-1"))
	require.NoError(t, err)
	_, err = s.InsertSingle(ctx, singleFixture("X-2"))
	require.NoError(t, err)

	assert.Equal(t, maintenance.ColSequence, maintenance.PeriodicExportHeader()[0])
	assert.Equal(t, maintenance.ColSequence, maintenance.SingleExportHeader()[0])

	precs, err := s.ListPeriodic(ctx)
	require.NoError(t, err)
	prow := maintenance.ExportPeriodicRows(precs)[0]
	assert.Equal(t, "1", prow[0])
	assert.Len(t, prow, len(maintenance.PeriodicExportHeader()))

	srecs, err := s.ListSingle(ctx)
	require.NoError(t, err)
	srow := maintenance.ExportSingleRows(srecs)[0]
	assert.Equal(t, "1", srow[0])
	assert.Len(t, srow, len(maintenance.SingleExportHeader()))
}
