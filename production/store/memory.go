// Package store provides Repository implementations.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/warp/pumpline/production"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	units map[production.UnitID]production.Pump

	staffing  map[production.Department]production.Staffing
	vendors   []production.VendorLane
	wipLimits production.WIPLimits
	lockDate  *time.Time
}

func NewMemory() *Memory {
	return &Memory{
		units:     make(map[production.UnitID]production.Pump),
		staffing:  make(map[production.Department]production.Staffing),
		wipLimits: make(production.WIPLimits),
	}
}

// Load returns a copy of every stored unit.
func (m *Memory) Load(_ context.Context) ([]production.Pump, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	units := make([]production.Pump, 0, len(m.units))
	for _, u := range m.units {
		units = append(units, u)
	}
	return units, nil
}

// ReplaceAll swaps the whole collection.
func (m *Memory) ReplaceAll(_ context.Context, units []production.Pump) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.units = make(map[production.UnitID]production.Pump, len(units))
	for _, u := range units {
		m.units[u.ID] = u
	}
	return nil
}

// UpsertMany inserts or overwrites by ID.
func (m *Memory) UpsertMany(_ context.Context, units []production.Pump) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range units {
		m.units[u.ID] = u
	}
	return nil
}

// Update applies a partial patch. Missing units are not an error: patch
// dispatch is fire-and-forget from the engine's perspective.
func (m *Memory) Update(_ context.Context, id production.UnitID, patch production.PumpPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.units[id]
	if !ok {
		return nil
	}
	patch.Apply(&u)
	m.units[id] = u
	return nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Memory) LoadCapacity(_ context.Context) (production.CapacityConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg := production.DefaultCapacityConfig()
	for dept, s := range m.staffing {
		cfg.Staffing[dept] = s
	}
	cfg.Vendors = append(cfg.Vendors, m.vendors...)
	return cfg, nil
}

func (m *Memory) SaveStaffing(_ context.Context, dept production.Department, s production.Staffing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staffing[dept] = s
	return nil
}

func (m *Memory) SaveVendors(_ context.Context, lanes []production.VendorLane) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vendors = append([]production.VendorLane{}, lanes...)
	return nil
}

func (m *Memory) LoadWIPLimits(_ context.Context) (production.WIPLimits, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limits := make(production.WIPLimits, len(m.wipLimits))
	for k, v := range m.wipLimits {
		limits[k] = v
	}
	return limits, nil
}

func (m *Memory) SaveWIPLimits(_ context.Context, limits production.WIPLimits) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.wipLimits = make(production.WIPLimits, len(limits))
	for k, v := range limits {
		m.wipLimits[k] = v
	}
	return nil
}

func (m *Memory) LoadLockDate(_ context.Context) (*time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lockDate, nil
}

func (m *Memory) SaveLockDate(_ context.Context, lock *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lockDate = lock
	return nil
}
