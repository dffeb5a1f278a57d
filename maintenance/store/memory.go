// Package store provides Repository implementations.
package store

import (
	"context"
	"sync"

	"github.com/medequip/maintenance-engine/maintenance"
)

// =============================================================================
// MEMORY REPOSITORY - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	periodic []maintenance.PeriodicRecord
	single   []maintenance.SingleCycleRecord
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) LoadPeriodic(_ context.Context) ([]maintenance.PeriodicRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]maintenance.PeriodicRecord, len(m.periodic))
	copy(out, m.periodic)
	return out, nil
}

func (m *Memory) ReplacePeriodic(_ context.Context, recs []maintenance.PeriodicRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periodic = make([]maintenance.PeriodicRecord, len(recs))
	copy(m.periodic, recs)
	return nil
}

func (m *Memory) LoadSingle(_ context.Context) ([]maintenance.SingleCycleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]maintenance.SingleCycleRecord, len(m.single))
	copy(out, m.single)
	return out, nil
}

func (m *Memory) ReplaceSingle(_ context.Context, recs []maintenance.SingleCycleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.single = make([]maintenance.SingleCycleRecord, len(recs))
	copy(m.single, recs)
	return nil
}
