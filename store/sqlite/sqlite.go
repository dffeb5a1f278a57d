/*
Package sqlite provides a SQLite-backed implementation of the Repository.

PURPOSE:
  Durable whole-collection persistence for both record variants. The engine's
  contract is load/replace of an entire collection, so every write rewrites
  the variant's table inside one transaction: no partial writes are possible.

KEY TABLES:
  periodic_records: One row per periodic record, quarter columns inline
  single_records:   One row per single-cycle record

CONCURRENCY:
  Uses sync.RWMutex for thread-safety within the process. Replace is
  transactional, so readers never observe a half-written collection.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  repo, err := sqlite.New("./data/maintenance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer repo.Close()
  store := maintenance.NewStore(repo, nil)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - maintenance/store.go:        Repository interface and invariants
  - maintenance/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/medequip/maintenance-engine/maintenance"
)

// Repo implements maintenance.Repository using SQLite.
type Repo struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite repository at the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Repo, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repo{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return repo, nil
}

// Close closes the database connection.
func (r *Repo) Close() error {
	return r.db.Close()
}

func (r *Repo) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS periodic_records (
		seq               INTEGER NOT NULL,
		serial            TEXT PRIMARY KEY,
		department        TEXT NOT NULL,
		equipment         TEXT NOT NULL,
		model             TEXT NOT NULL,
		manufacturer      TEXT NOT NULL,
		log_no            TEXT NOT NULL DEFAULT '',
		installation_date TEXT NOT NULL DEFAULT '',
		warranty_end      TEXT NOT NULL DEFAULT '',
		status            TEXT NOT NULL,
		q1_engineer TEXT NOT NULL DEFAULT '', q1_due TEXT NOT NULL DEFAULT '',
		q2_engineer TEXT NOT NULL DEFAULT '', q2_due TEXT NOT NULL DEFAULT '',
		q3_engineer TEXT NOT NULL DEFAULT '', q3_due TEXT NOT NULL DEFAULT '',
		q4_engineer TEXT NOT NULL DEFAULT '', q4_due TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS single_records (
		seq               INTEGER NOT NULL,
		serial            TEXT PRIMARY KEY,
		department        TEXT NOT NULL,
		equipment         TEXT NOT NULL,
		model             TEXT NOT NULL,
		manufacturer      TEXT NOT NULL,
		log_no            TEXT NOT NULL DEFAULT '',
		installation_date TEXT NOT NULL DEFAULT '',
		warranty_end      TEXT NOT NULL DEFAULT '',
		status            TEXT NOT NULL,
		engineer          TEXT NOT NULL DEFAULT '',
		last_service      TEXT NOT NULL DEFAULT '',
		next_due          TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_periodic_seq ON periodic_records(seq);
	CREATE INDEX IF NOT EXISTS idx_single_seq ON single_records(seq);
	`
	_, err := r.db.Exec(schema)
	return err
}

// =============================================================================
// PERIODIC COLLECTION
// =============================================================================

// LoadPeriodic returns the entire periodic collection in sequence order.
func (r *Repo) LoadPeriodic(ctx context.Context) ([]maintenance.PeriodicRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx, `
		SELECT seq, serial, department, equipment, model, manufacturer, log_no,
		       installation_date, warranty_end, status,
		       q1_engineer, q1_due, q2_engineer, q2_due,
		       q3_engineer, q3_due, q4_engineer, q4_due
		FROM periodic_records ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []maintenance.PeriodicRecord
	for rows.Next() {
		var rec maintenance.PeriodicRecord
		var status string
		if err := rows.Scan(&rec.SequenceNumber, &rec.Key, &rec.Department,
			&rec.EquipmentName, &rec.Model, &rec.Manufacturer, &rec.LogNumber,
			&rec.InstallationDate, &rec.WarrantyEndDate, &status,
			&rec.Quarters[0].Engineer, &rec.Quarters[0].DueDate,
			&rec.Quarters[1].Engineer, &rec.Quarters[1].DueDate,
			&rec.Quarters[2].Engineer, &rec.Quarters[2].DueDate,
			&rec.Quarters[3].Engineer, &rec.Quarters[3].DueDate); err != nil {
			return nil, err
		}
		rec.Status = maintenance.Status(status)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// ReplacePeriodic rewrites the entire periodic collection in one transaction.
func (r *Repo) ReplacePeriodic(ctx context.Context, recs []maintenance.PeriodicRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM periodic_records`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO periodic_records
		(seq, serial, department, equipment, model, manufacturer, log_no,
		 installation_date, warranty_end, status,
		 q1_engineer, q1_due, q2_engineer, q2_due,
		 q3_engineer, q3_due, q4_engineer, q4_due)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx, rec.SequenceNumber, rec.Key,
			rec.Department, rec.EquipmentName, rec.Model, rec.Manufacturer,
			rec.LogNumber, rec.InstallationDate, rec.WarrantyEndDate, string(rec.Status),
			rec.Quarters[0].Engineer, rec.Quarters[0].DueDate,
			rec.Quarters[1].Engineer, rec.Quarters[1].DueDate,
			rec.Quarters[2].Engineer, rec.Quarters[2].DueDate,
			rec.Quarters[3].Engineer, rec.Quarters[3].DueDate); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// =============================================================================
// SINGLE-CYCLE COLLECTION
// =============================================================================

// LoadSingle returns the entire single-cycle collection in sequence order.
func (r *Repo) LoadSingle(ctx context.Context) ([]maintenance.SingleCycleRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx, `
		SELECT seq, serial, department, equipment, model, manufacturer, log_no,
		       installation_date, warranty_end, status, engineer, last_service, next_due
		FROM single_records ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []maintenance.SingleCycleRecord
	for rows.Next() {
		var rec maintenance.SingleCycleRecord
		var status string
		if err := rows.Scan(&rec.SequenceNumber, &rec.Key, &rec.Department,
			&rec.EquipmentName, &rec.Model, &rec.Manufacturer, &rec.LogNumber,
			&rec.InstallationDate, &rec.WarrantyEndDate, &status,
			&rec.AssignedEngineer, &rec.LastServiceDate, &rec.NextDueDate); err != nil {
			return nil, err
		}
		rec.Status = maintenance.Status(status)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// ReplaceSingle rewrites the entire single-cycle collection in one transaction.
func (r *Repo) ReplaceSingle(ctx context.Context, recs []maintenance.SingleCycleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM single_records`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO single_records
		(seq, serial, department, equipment, model, manufacturer, log_no,
		 installation_date, warranty_end, status, engineer, last_service, next_due)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx, rec.SequenceNumber, rec.Key,
			rec.Department, rec.EquipmentName, rec.Model, rec.Manufacturer,
			rec.LogNumber, rec.InstallationDate, rec.WarrantyEndDate,
			string(rec.Status), rec.AssignedEngineer, rec.LastServiceDate,
			rec.NextDueDate); err != nil {
			return err
		}
	}
	return tx.Commit()
}
