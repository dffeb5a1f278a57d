/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures decoupling the domain records from the HTTP contract.
  DTOs are pure data carriers; validation happens in the core engine.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - maintenance/types.go: Domain records
*/
package api

import (
	"github.com/medequip/maintenance-engine/maintenance"
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// QuarterDTO is one quarterly checkpoint. DueDate is computed server-side
// and ignored on input.
type QuarterDTO struct {
	Engineer string `json:"engineer"`
	DueDate  string `json:"due_date,omitempty"`
}

// PeriodicRecordDTO represents a four-quarter-cycle record.
type PeriodicRecordDTO struct {
	Key              string        `json:"key"`
	SequenceNumber   int           `json:"sequence_number,omitempty"`
	Department       string        `json:"department"`
	EquipmentName    string        `json:"equipment_name"`
	Model            string        `json:"model"`
	Manufacturer     string        `json:"manufacturer"`
	LogNumber        string        `json:"log_number,omitempty"`
	InstallationDate string        `json:"installation_date,omitempty"`
	WarrantyEndDate  string        `json:"warranty_end_date,omitempty"`
	Status           string        `json:"status,omitempty"`
	Quarters         [4]QuarterDTO `json:"quarters"`
}

// SingleRecordDTO represents a single-cycle record.
type SingleRecordDTO struct {
	Key              string `json:"key"`
	SequenceNumber   int    `json:"sequence_number,omitempty"`
	Department       string `json:"department"`
	EquipmentName    string `json:"equipment_name"`
	Model            string `json:"model"`
	Manufacturer     string `json:"manufacturer"`
	LogNumber        string `json:"log_number,omitempty"`
	InstallationDate string `json:"installation_date,omitempty"`
	WarrantyEndDate  string `json:"warranty_end_date,omitempty"`
	Status           string `json:"status,omitempty"`
	AssignedEngineer string `json:"assigned_engineer,omitempty"`
	LastServiceDate  string `json:"last_service_date,omitempty"`
	NextDueDate      string `json:"next_due_date,omitempty"`
}

// =============================================================================
// IMPORT / EXPORT / DIGEST
// =============================================================================

// ImportRequest carries raw tabular rows keyed by the fixed column names.
type ImportRequest struct {
	Rows []map[string]string `json:"rows"`
}

// ReconcileSummaryDTO reports a batch outcome.
type ReconcileSummaryDTO struct {
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ExportDTO is an ordered tabular view, sequence number first.
type ExportDTO struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// DigestDTO previews the digest the reminder scheduler would send now.
type DigestDTO struct {
	Digest          string `json:"digest"`
	WindowDays      int    `json:"window_days"`
	PeriodicOverdue int    `json:"periodic_overdue"`
	PeriodicDueSoon int    `json:"periodic_due_soon"`
	SingleOverdue   int    `json:"single_overdue"`
	SingleDueSoon   int    `json:"single_due_soon"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toPeriodicDomain(dto PeriodicRecordDTO) maintenance.PeriodicRecord {
	rec := maintenance.PeriodicRecord{
		Key:              dto.Key,
		SequenceNumber:   dto.SequenceNumber,
		Department:       dto.Department,
		EquipmentName:    dto.EquipmentName,
		Model:            dto.Model,
		Manufacturer:     dto.Manufacturer,
		LogNumber:        dto.LogNumber,
		InstallationDate: dto.InstallationDate,
		WarrantyEndDate:  dto.WarrantyEndDate,
		Status:           maintenance.Status(dto.Status),
	}
	for i, q := range dto.Quarters {
		rec.Quarters[i].Engineer = q.Engineer
	}
	return rec
}

func fromPeriodicDomain(rec maintenance.PeriodicRecord) PeriodicRecordDTO {
	dto := PeriodicRecordDTO{
		Key:              rec.Key,
		SequenceNumber:   rec.SequenceNumber,
		Department:       rec.Department,
		EquipmentName:    rec.EquipmentName,
		Model:            rec.Model,
		Manufacturer:     rec.Manufacturer,
		LogNumber:        rec.LogNumber,
		InstallationDate: rec.InstallationDate,
		WarrantyEndDate:  rec.WarrantyEndDate,
		Status:           string(rec.Status),
	}
	for i, q := range rec.Quarters {
		dto.Quarters[i] = QuarterDTO{Engineer: q.Engineer, DueDate: q.DueDate}
	}
	return dto
}

func toSingleDomain(dto SingleRecordDTO) maintenance.SingleCycleRecord {
	return maintenance.SingleCycleRecord{
		Key:              dto.Key,
		SequenceNumber:   dto.SequenceNumber,
		Department:       dto.Department,
		EquipmentName:    dto.EquipmentName,
		Model:            dto.Model,
		Manufacturer:     dto.Manufacturer,
		LogNumber:        dto.LogNumber,
		InstallationDate: dto.InstallationDate,
		WarrantyEndDate:  dto.WarrantyEndDate,
		Status:           maintenance.Status(dto.Status),
		AssignedEngineer: dto.AssignedEngineer,
		LastServiceDate:  dto.LastServiceDate,
		NextDueDate:      dto.NextDueDate,
	}
}

func fromSingleDomain(rec maintenance.SingleCycleRecord) SingleRecordDTO {
	return SingleRecordDTO{
		Key:              rec.Key,
		SequenceNumber:   rec.SequenceNumber,
		Department:       rec.Department,
		EquipmentName:    rec.EquipmentName,
		Model:            rec.Model,
		Manufacturer:     rec.Manufacturer,
		LogNumber:        rec.LogNumber,
		InstallationDate: rec.InstallationDate,
		WarrantyEndDate:  rec.WarrantyEndDate,
		Status:           string(rec.Status),
		AssignedEngineer: rec.AssignedEngineer,
		LastServiceDate:  rec.LastServiceDate,
		NextDueDate:      rec.NextDueDate,
	}
}
