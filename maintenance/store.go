/*
store.go - Record collection with uniqueness and dense sequencing

PURPOSE:
  Owns the two record collections (periodic and single-cycle) behind an
  injected Repository. Enforces the collection invariants on every write:
  - key unique within a variant's collection
  - sequence numbers exactly 1..N with no gaps, recomputed on every mutation
  - status recomputed via the status engine, stored, never refreshed on read
  - quarter due dates re-projected whenever the installation date changes

PERSISTENCE MODEL:
  Whole-collection load/replace. The repository has no partial writes; every
  mutation rewrites the variant's entire collection. A single mutex serializes
  the load-mutate-persist cycle, so concurrent mutating calls within one
  process cannot lose updates. There is no cross-process coordination; two
  processes sharing one repository still race (known limitation).

KEY CONTRACTS:
  Insert: DuplicateKeyError | ValidationError, collection unchanged on error
  Update: NotFoundError | ImmutableKeyError | ValidationError, sequence kept
  Delete: false (not an error) when the key is missing

SEE ALSO:
  - store/memory.go:      In-memory repository for tests and dev
  - store/sqlite (module): Durable repository
  - reconcile.go:         Bulk upsert sharing this file's helpers
*/
package maintenance

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// =============================================================================
// REPOSITORY - Injected whole-collection persistence
// =============================================================================

// Repository loads and replaces a variant's entire record collection.
// Implementations provide durability only; all invariants live in the Store.
type Repository interface {
	LoadPeriodic(ctx context.Context) ([]PeriodicRecord, error)
	ReplacePeriodic(ctx context.Context, recs []PeriodicRecord) error

	LoadSingle(ctx context.Context) ([]SingleCycleRecord, error)
	ReplaceSingle(ctx context.Context, recs []SingleCycleRecord) error
}

// =============================================================================
// STORE
// =============================================================================

// Store exposes CRUD over both collections. Safe for concurrent use within
// one process: a single mutex serializes every load-mutate-persist cycle.
type Store struct {
	repo Repository
	log  logrus.FieldLogger
	now  func() time.Time
	mu   sync.Mutex
}

// NewStore creates a store over the given repository.
func NewStore(repo Repository, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		repo: repo,
		log:  log.WithField("component", "store"),
		now:  time.Now,
	}
}

// WithClock overrides the reference-instant source. Test hook.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// =============================================================================
// PERIODIC COLLECTION
// =============================================================================

// InsertPeriodic validates and appends a new periodic record. The four
// quarter due dates are always overwritten by the projector; a caller-supplied
// valid status wins, anything else is derived.
func (s *Store) InsertPeriodic(ctx context.Context, rec PeriodicRecord) (PeriodicRecord, error) {
	if err := validatePeriodic(rec); err != nil {
		return PeriodicRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadPeriodic(ctx)
	if err != nil {
		return PeriodicRecord{}, err
	}
	if indexOfPeriodic(recs, rec.Key) >= 0 {
		return PeriodicRecord{}, &DuplicateKeyError{Variant: VariantPeriodic, Key: rec.Key}
	}

	now := s.now()
	projectInto(&rec, now)
	rec.Status = resolveStatus(string(rec.Status), func() Status { return DerivePeriodicStatus(rec, now) })

	recs = append(recs, rec)
	renumberPeriodic(recs)

	if err := s.replacePeriodic(ctx, recs); err != nil {
		return PeriodicRecord{}, err
	}
	s.log.WithField("key", rec.Key).Info("periodic record inserted")
	return recs[len(recs)-1], nil
}

// UpdatePeriodic replaces the record stored under key with patch. The key is
// immutable and the sequence number is preserved; the installation date
// changing triggers re-projection of all four quarter due dates; status is
// always recomputed.
func (s *Store) UpdatePeriodic(ctx context.Context, key string, patch PeriodicRecord) (PeriodicRecord, error) {
	if patch.Key != "" && patch.Key != key {
		return PeriodicRecord{}, ErrImmutableKey
	}
	patch.Key = key
	if err := validatePeriodic(patch); err != nil {
		return PeriodicRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadPeriodic(ctx)
	if err != nil {
		return PeriodicRecord{}, err
	}
	i := indexOfPeriodic(recs, key)
	if i < 0 {
		return PeriodicRecord{}, ErrNotFound
	}

	existing := recs[i]
	patch.SequenceNumber = existing.SequenceNumber

	// Due dates are computed, never taken from the patch.
	for q := range patch.Quarters {
		patch.Quarters[q].DueDate = existing.Quarters[q].DueDate
	}
	now := s.now()
	if patch.InstallationDate != existing.InstallationDate {
		projectInto(&patch, now)
	}
	patch.Status = DerivePeriodicStatus(patch, now)

	recs[i] = patch
	if err := s.replacePeriodic(ctx, recs); err != nil {
		return PeriodicRecord{}, err
	}
	s.log.WithField("key", key).Info("periodic record updated")
	return recs[i], nil
}

// DeletePeriodic removes the record and renumbers the remainder. A missing
// key reports false, not an error.
func (s *Store) DeletePeriodic(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadPeriodic(ctx)
	if err != nil {
		return false, err
	}
	i := indexOfPeriodic(recs, key)
	if i < 0 {
		return false, nil
	}

	recs = append(recs[:i], recs[i+1:]...)
	renumberPeriodic(recs)
	if err := s.replacePeriodic(ctx, recs); err != nil {
		return false, err
	}
	s.log.WithField("key", key).Info("periodic record deleted")
	return true, nil
}

// GetPeriodic returns the record for key, or false when absent.
func (s *Store) GetPeriodic(ctx context.Context, key string) (PeriodicRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadPeriodic(ctx)
	if err != nil {
		return PeriodicRecord{}, false, err
	}
	i := indexOfPeriodic(recs, key)
	if i < 0 {
		return PeriodicRecord{}, false, nil
	}
	return recs[i], true, nil
}

// ListPeriodic returns the whole periodic collection in sequence order.
func (s *Store) ListPeriodic(ctx context.Context) ([]PeriodicRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadPeriodic(ctx)
}

// =============================================================================
// SINGLE-CYCLE COLLECTION
// =============================================================================

// InsertSingle validates and appends a new single-cycle record.
func (s *Store) InsertSingle(ctx context.Context, rec SingleCycleRecord) (SingleCycleRecord, error) {
	if err := validateSingle(rec); err != nil {
		return SingleCycleRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadSingle(ctx)
	if err != nil {
		return SingleCycleRecord{}, err
	}
	if indexOfSingle(recs, rec.Key) >= 0 {
		return SingleCycleRecord{}, &DuplicateKeyError{Variant: VariantSingleCycle, Key: rec.Key}
	}

	now := s.now()
	rec.Status = resolveStatus(string(rec.Status), func() Status { return DeriveSingleStatus(rec, now) })

	recs = append(recs, rec)
	renumberSingle(recs)

	if err := s.replaceSingle(ctx, recs); err != nil {
		return SingleCycleRecord{}, err
	}
	s.log.WithField("key", rec.Key).Info("single-cycle record inserted")
	return recs[len(recs)-1], nil
}

// UpdateSingle replaces the record stored under key with patch.
func (s *Store) UpdateSingle(ctx context.Context, key string, patch SingleCycleRecord) (SingleCycleRecord, error) {
	if patch.Key != "" && patch.Key != key {
		return SingleCycleRecord{}, ErrImmutableKey
	}
	patch.Key = key
	if err := validateSingle(patch); err != nil {
		return SingleCycleRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadSingle(ctx)
	if err != nil {
		return SingleCycleRecord{}, err
	}
	i := indexOfSingle(recs, key)
	if i < 0 {
		return SingleCycleRecord{}, ErrNotFound
	}

	patch.SequenceNumber = recs[i].SequenceNumber
	patch.Status = DeriveSingleStatus(patch, s.now())

	recs[i] = patch
	if err := s.replaceSingle(ctx, recs); err != nil {
		return SingleCycleRecord{}, err
	}
	s.log.WithField("key", key).Info("single-cycle record updated")
	return recs[i], nil
}

// DeleteSingle removes the record and renumbers the remainder.
func (s *Store) DeleteSingle(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadSingle(ctx)
	if err != nil {
		return false, err
	}
	i := indexOfSingle(recs, key)
	if i < 0 {
		return false, nil
	}

	recs = append(recs[:i], recs[i+1:]...)
	renumberSingle(recs)
	if err := s.replaceSingle(ctx, recs); err != nil {
		return false, err
	}
	s.log.WithField("key", key).Info("single-cycle record deleted")
	return true, nil
}

// GetSingle returns the record for key, or false when absent.
func (s *Store) GetSingle(ctx context.Context, key string) (SingleCycleRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.loadSingle(ctx)
	if err != nil {
		return SingleCycleRecord{}, false, err
	}
	i := indexOfSingle(recs, key)
	if i < 0 {
		return SingleCycleRecord{}, false, nil
	}
	return recs[i], true, nil
}

// ListSingle returns the whole single-cycle collection in sequence order.
func (s *Store) ListSingle(ctx context.Context) ([]SingleCycleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSingle(ctx)
}

// =============================================================================
// VALIDATION
// =============================================================================

func validatePeriodic(rec PeriodicRecord) error {
	if err := validateCommon(rec.Key, rec.Department, rec.EquipmentName, rec.Model, rec.Manufacturer,
		rec.InstallationDate, rec.WarrantyEndDate); err != nil {
		return err
	}
	return nil
}

func validateSingle(rec SingleCycleRecord) error {
	if err := validateCommon(rec.Key, rec.Department, rec.EquipmentName, rec.Model, rec.Manufacturer,
		rec.InstallationDate, rec.WarrantyEndDate); err != nil {
		return err
	}
	if err := validateOptionalDate("last_service_date", rec.LastServiceDate); err != nil {
		return err
	}
	return validateOptionalDate("next_due_date", rec.NextDueDate)
}

func validateCommon(key, department, equipment, model, manufacturer, installation, warranty string) error {
	required := []struct{ field, value string }{
		{"key", key},
		{"department", department},
		{"equipment_name", equipment},
		{"model", model},
		{"manufacturer", manufacturer},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Reason: "must not be blank"}
		}
	}
	if err := validateOptionalDate("installation_date", installation); err != nil {
		return err
	}
	return validateOptionalDate("warranty_end_date", warranty)
}

func validateOptionalDate(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if _, err := ParseDate(value); err != nil {
		return &ValidationError{Field: field, Reason: err.Error()}
	}
	return nil
}

// =============================================================================
// INTERNAL HELPERS - Shared with the reconciliation engine
// =============================================================================

// resolveStatus honors a valid caller-supplied status and derives otherwise.
func resolveStatus(supplied string, derive func() Status) Status {
	if st, ok := ParseStatus(strings.TrimSpace(supplied)); ok {
		return st
	}
	return derive()
}

// projectInto overwrites the record's quarter due dates from its
// installation date, preserving engineer assignments.
func projectInto(rec *PeriodicRecord, now time.Time) {
	due := ProjectQuarterDates(rec.InstallationDate, now)
	for i := range rec.Quarters {
		rec.Quarters[i].DueDate = due[i]
	}
}

func indexOfPeriodic(recs []PeriodicRecord, key string) int {
	for i := range recs {
		if recs[i].Key == key {
			return i
		}
	}
	return -1
}

func indexOfSingle(recs []SingleCycleRecord, key string) int {
	for i := range recs {
		if recs[i].Key == key {
			return i
		}
	}
	return -1
}

// renumberPeriodic reassigns dense 1..N sequence numbers in slice order.
func renumberPeriodic(recs []PeriodicRecord) {
	for i := range recs {
		recs[i].SequenceNumber = i + 1
	}
}

func renumberSingle(recs []SingleCycleRecord) {
	for i := range recs {
		recs[i].SequenceNumber = i + 1
	}
}

func (s *Store) loadPeriodic(ctx context.Context) ([]PeriodicRecord, error) {
	recs, err := s.repo.LoadPeriodic(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	return recs, nil
}

func (s *Store) replacePeriodic(ctx context.Context, recs []PeriodicRecord) error {
	if err := s.repo.ReplacePeriodic(ctx, recs); err != nil {
		return &PersistenceError{Op: "replace", Err: err}
	}
	return nil
}

func (s *Store) loadSingle(ctx context.Context) ([]SingleCycleRecord, error) {
	recs, err := s.repo.LoadSingle(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	return recs, nil
}

func (s *Store) replaceSingle(ctx context.Context, recs []SingleCycleRecord) error {
	if err := s.repo.ReplaceSingle(ctx, recs); err != nil {
		return &PersistenceError{Op: "replace", Err: err}
	}
	return nil
}
