/*
handlers.go - HTTP handlers over the maintenance engine

PURPOSE:
  Thin decode -> core call -> respond handlers for both record collections,
  bulk import (reconciliation), tabular export, and the digest preview.
  All invariants live in the maintenance package; handlers only translate.

ERROR MAPPING:
  ValidationError / ImmutableKeyError -> 400
  DuplicateKeyError                   -> 409
  NotFoundError                       -> 404
  everything else                     -> 500

SEE ALSO:
  - server.go: Route wiring
  - maintenance/store.go: Operation contracts
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/medequip/maintenance-engine/maintenance"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *maintenance.Store
	Reconciler *maintenance.Reconciler
	Settings   maintenance.SettingsLoader
	Log        logrus.FieldLogger
}

// NewHandler creates a new handler over the given store.
func NewHandler(store *maintenance.Store, settings maintenance.SettingsLoader, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		Store:      store,
		Reconciler: maintenance.NewReconciler(store, log),
		Settings:   settings,
		Log:        log.WithField("component", "api"),
	}
}

// =============================================================================
// PERIODIC RECORD HANDLERS
// =============================================================================

// ListPeriodic returns the whole periodic collection.
func (h *Handler) ListPeriodic(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.ListPeriodic(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list periodic records", err)
		return
	}
	dtos := make([]PeriodicRecordDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = fromPeriodicDomain(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPeriodic returns one periodic record by key.
func (h *Handler) GetPeriodic(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	rec, ok, err := h.Store.GetPeriodic(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load record", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Record not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, fromPeriodicDomain(rec))
}

// CreatePeriodic inserts a new periodic record.
func (h *Handler) CreatePeriodic(w http.ResponseWriter, r *http.Request) {
	var dto PeriodicRecordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	rec, err := h.Store.InsertPeriodic(r.Context(), toPeriodicDomain(dto))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, fromPeriodicDomain(rec))
}

// UpdatePeriodic replaces the periodic record stored under the URL key.
func (h *Handler) UpdatePeriodic(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var dto PeriodicRecordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	rec, err := h.Store.UpdatePeriodic(r.Context(), key, toPeriodicDomain(dto))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromPeriodicDomain(rec))
}

// DeletePeriodic removes a periodic record. Deleting a missing key is a 404,
// not a failure of the collection.
func (h *Handler) DeletePeriodic(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	removed, err := h.Store.DeletePeriodic(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete record", err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "Record not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// =============================================================================
// SINGLE-CYCLE RECORD HANDLERS
// =============================================================================

// ListSingle returns the whole single-cycle collection.
func (h *Handler) ListSingle(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.ListSingle(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list single-cycle records", err)
		return
	}
	dtos := make([]SingleRecordDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = fromSingleDomain(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSingle returns one single-cycle record by key.
func (h *Handler) GetSingle(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	rec, ok, err := h.Store.GetSingle(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load record", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Record not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, fromSingleDomain(rec))
}

// CreateSingle inserts a new single-cycle record.
func (h *Handler) CreateSingle(w http.ResponseWriter, r *http.Request) {
	var dto SingleRecordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	rec, err := h.Store.InsertSingle(r.Context(), toSingleDomain(dto))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, fromSingleDomain(rec))
}

// UpdateSingle replaces the single-cycle record stored under the URL key.
func (h *Handler) UpdateSingle(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var dto SingleRecordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	rec, err := h.Store.UpdateSingle(r.Context(), key, toSingleDomain(dto))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromSingleDomain(rec))
}

// DeleteSingle removes a single-cycle record.
func (h *Handler) DeleteSingle(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	removed, err := h.Store.DeleteSingle(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete record", err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "Record not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// =============================================================================
// IMPORT / EXPORT
// =============================================================================

// ImportPeriodic reconciles a tabular batch into the periodic collection.
func (h *Handler) ImportPeriodic(w http.ResponseWriter, r *http.Request) {
	h.importRows(w, r, h.Reconciler.ReconcilePeriodic)
}

// ImportSingle reconciles a tabular batch into the single-cycle collection.
func (h *Handler) ImportSingle(w http.ResponseWriter, r *http.Request) {
	h.importRows(w, r, h.Reconciler.ReconcileSingle)
}

func (h *Handler) importRows(w http.ResponseWriter, r *http.Request, reconcile func(ctx context.Context, rows []maintenance.Row) (maintenance.Summary, error)) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	rows := make([]maintenance.Row, len(req.Rows))
	for i, raw := range req.Rows {
		rows[i] = maintenance.Row(raw)
	}
	sum, err := reconcile(r.Context(), rows)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Reconciliation write failed", err)
		return
	}
	writeJSON(w, http.StatusOK, ReconcileSummaryDTO{
		Inserted: sum.Inserted,
		Updated:  sum.Updated,
		Skipped:  sum.Skipped,
		Errors:   sum.Errors,
	})
}

// ExportPeriodic returns the periodic collection in the fixed tabular order.
func (h *Handler) ExportPeriodic(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.ListPeriodic(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list periodic records", err)
		return
	}
	writeJSON(w, http.StatusOK, ExportDTO{
		Header: maintenance.PeriodicExportHeader(),
		Rows:   maintenance.ExportPeriodicRows(recs),
	})
}

// ExportSingle returns the single-cycle collection in the fixed tabular order.
func (h *Handler) ExportSingle(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.ListSingle(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list single-cycle records", err)
		return
	}
	writeJSON(w, http.StatusOK, ExportDTO{
		Header: maintenance.SingleExportHeader(),
		Rows:   maintenance.ExportSingleRows(recs),
	})
}

// =============================================================================
// DIGEST PREVIEW
// =============================================================================

// GetDigest returns the digest the reminder scheduler would dispatch now.
func (h *Handler) GetDigest(w http.ResponseWriter, r *http.Request) {
	periodic, err := h.Store.ListPeriodic(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list periodic records", err)
		return
	}
	single, err := h.Store.ListSingle(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list single-cycle records", err)
		return
	}

	window := h.Settings.Load().ReminderWindowDays
	digest, stats := maintenance.BuildDigest(periodic, single, time.Now(), window)
	writeJSON(w, http.StatusOK, DigestDTO{
		Digest:          digest,
		WindowDays:      window,
		PeriodicOverdue: stats.PeriodicOverdue,
		PeriodicDueSoon: stats.PeriodicDueSoon,
		SingleOverdue:   stats.SingleOverdue,
		SingleDueSoon:   stats.SingleDueSoon,
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]string{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}

// writeDomainError maps engine errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, maintenance.ErrDuplicateKey):
		writeError(w, http.StatusConflict, "Duplicate record key", err)
	case errors.Is(err, maintenance.ErrNotFound):
		writeError(w, http.StatusNotFound, "Record not found", err)
	case maintenance.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid record", err)
	default:
		writeError(w, http.StatusInternalServerError, "Operation failed", err)
	}
}
