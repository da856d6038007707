/*
repository.go - Persistence interfaces for units and settings

PURPOSE:
  Defines the interface between the engine and the backing store. From
  the scheduler's perspective persistence is fire-and-forget: the Floor
  dispatches writes after each state update and logs failures without
  failing the mutation. Implementations: store/sqlite (production) and
  production/store (in-memory, tests/dev).

SEE ALSO:
  - floor.go: The single writer dispatching to these interfaces
  - store/sqlite/sqlite.go: SQLite implementation
  - production/store/memory.go: In-memory implementation
*/
package production

import (
	"context"
	"time"
)

// =============================================================================
// UNIT REPOSITORY
// =============================================================================

// Repository persists the unit collection.
type Repository interface {
	// Load returns every unit in the store.
	Load(ctx context.Context) ([]Pump, error)

	// ReplaceAll swaps the entire collection atomically.
	ReplaceAll(ctx context.Context, units []Pump) error

	// UpsertMany inserts or overwrites units by ID.
	UpsertMany(ctx context.Context, units []Pump) error

	// Update applies a partial patch to one unit.
	Update(ctx context.Context, id UnitID, patch PumpPatch) error
}

// PumpPatch is a partial update: nil fields are untouched. Clear flags
// exist for the nullable fields a nil pointer cannot distinguish.
type PumpPatch struct {
	Model    *string
	Customer *string
	PONumber *string
	Stage    *Stage
	Priority *Priority
	DueDate  *string

	ForecastStart *time.Time
	ForecastEnd   *time.Time
	ClearForecast bool

	Paused          *bool
	PausedAt        *time.Time
	ClearPausedAt   bool
	PausedStage     *Stage
	PauseReason     *PauseReason
	TotalPausedDays *int

	LastUpdate *time.Time
}

// Apply writes the patch onto a unit in place.
func (p PumpPatch) Apply(u *Pump) {
	if p.Model != nil {
		u.Model = *p.Model
	}
	if p.Customer != nil {
		u.Customer = *p.Customer
	}
	if p.PONumber != nil {
		u.PONumber = *p.PONumber
	}
	if p.Stage != nil {
		u.Stage = *p.Stage
	}
	if p.Priority != nil {
		u.Priority = *p.Priority
	}
	if p.DueDate != nil {
		u.DueDate = *p.DueDate
	}
	if p.ClearForecast {
		u.ForecastStart, u.ForecastEnd = nil, nil
	} else {
		if p.ForecastStart != nil {
			t := *p.ForecastStart
			u.ForecastStart = &t
		}
		if p.ForecastEnd != nil {
			t := *p.ForecastEnd
			u.ForecastEnd = &t
		}
	}
	if p.Paused != nil {
		u.Paused = *p.Paused
	}
	if p.ClearPausedAt {
		u.PausedAt = nil
	} else if p.PausedAt != nil {
		t := *p.PausedAt
		u.PausedAt = &t
	}
	if p.PausedStage != nil {
		u.PausedStage = *p.PausedStage
	}
	if p.PauseReason != nil {
		u.PauseReason = *p.PauseReason
	}
	if p.TotalPausedDays != nil {
		u.TotalPausedDays = *p.TotalPausedDays
	}
	if p.LastUpdate != nil {
		u.LastUpdate = *p.LastUpdate
	}
}

// =============================================================================
// SETTINGS STORE
// =============================================================================

// SettingsStore persists capacity configuration, WIP limits and the
// scheduling lock date.
type SettingsStore interface {
	LoadCapacity(ctx context.Context) (CapacityConfig, error)
	SaveStaffing(ctx context.Context, dept Department, s Staffing) error
	SaveVendors(ctx context.Context, lanes []VendorLane) error

	LoadWIPLimits(ctx context.Context) (WIPLimits, error)
	SaveWIPLimits(ctx context.Context, limits WIPLimits) error

	LoadLockDate(ctx context.Context) (*time.Time, error)
	SaveLockDate(ctx context.Context, lock *time.Time) error
}
