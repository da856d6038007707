/*
floor.go - The single-writer production floor state container

PURPOSE:
  Owns the in-memory unit collection, capacity configuration, WIP limits
  and lock date. Every mutation flows through the Floor under one mutex,
  so the scheduling algorithms can assume sequential access: the
  auto-scheduler's load map is built and consumed without interleaving.

PERSISTENCE:
  The algorithms emit their changes (patches, updated units); the Floor
  dispatches them to the Repository synchronously and treats failures as
  logged side-effect losses, never as mutation failures. The in-memory
  state is the correctness envelope.

WIP COUPLING:
  MoveStage evaluates the destination's WIP limit and applies auto-pause
  in the same state update as the stage change. An observer can never see
  an over-limit active count, not even momentarily.

SEE ALSO:
  - wip.go: Limit predicates
  - autoschedule.go: The pass MoveStage's sibling AutoSchedule runs
  - repository.go: The persistence contract
*/
package production

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Floor is the single-writer container for all production state.
type Floor struct {
	mu sync.Mutex

	units     map[UnitID]*Pump
	catalog   Catalog
	capacity  CapacityConfig
	wipLimits WIPLimits
	lockDate  *time.Time

	repo     Repository    // optional
	settings SettingsStore // optional

	// Clock overrides time.Now for tests.
	Clock func() time.Time
}

// NewFloor creates an empty floor. repo and settings may be nil for a
// purely in-memory floor.
func NewFloor(cat Catalog, repo Repository, settings SettingsStore) *Floor {
	return &Floor{
		units:     make(map[UnitID]*Pump),
		catalog:   cat,
		capacity:  DefaultCapacityConfig(),
		wipLimits: make(WIPLimits),
		repo:      repo,
		settings:  settings,
	}
}

// Restore loads units and settings from the backing stores.
func (f *Floor) Restore(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.repo != nil {
		units, err := f.repo.Load(ctx)
		if err != nil {
			return err
		}
		f.units = make(map[UnitID]*Pump, len(units))
		for i := range units {
			u := units[i]
			f.units[u.ID] = &u
		}
	}
	if f.settings != nil {
		if cfg, err := f.settings.LoadCapacity(ctx); err == nil {
			f.capacity = cfg
		}
		if limits, err := f.settings.LoadWIPLimits(ctx); err == nil {
			f.wipLimits = limits
		}
		if lock, err := f.settings.LoadLockDate(ctx); err == nil {
			f.lockDate = lock
		}
	}
	return nil
}

func (f *Floor) now() time.Time {
	if f.Clock != nil {
		return f.Clock()
	}
	return time.Now().UTC()
}

// =============================================================================
// UNIT LIFECYCLE
// =============================================================================

// NewUnit carries the fields a caller supplies at creation.
type NewUnit struct {
	ID       UnitID // optional; generated when empty
	Serial   string
	Model    string
	Customer string
	PONumber string
	Priority Priority
	DueDate  string
}

// CreateUnit places a new unit in QUEUE.
func (f *Floor) CreateUnit(ctx context.Context, in NewUnit) (Pump, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.units {
		if u.Serial == in.Serial {
			return Pump{}, ErrDuplicateSerial
		}
	}

	id := in.ID
	if id == "" {
		id = UnitID(uuid.NewString())
	}
	if in.Priority == 0 {
		in.Priority = PriorityNormal
	}

	unit := Pump{
		ID:         id,
		Serial:     in.Serial,
		Model:      in.Model,
		Customer:   in.Customer,
		PONumber:   in.PONumber,
		Stage:      StageQueue,
		Priority:   in.Priority,
		DueDate:    in.DueDate,
		LastUpdate: f.now(),
	}
	f.units[id] = &unit

	f.persistUpsert(ctx, unit)
	return unit, nil
}

// Units returns a snapshot of the fleet, ordered by serial.
func (f *Floor) Units() []Pump {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unitsLocked()
}

func (f *Floor) unitsLocked() []Pump {
	units := make([]Pump, 0, len(f.units))
	for _, u := range f.units {
		units = append(units, u.Clone())
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Serial < units[j].Serial })
	return units
}

// Unit returns one unit by ID.
func (f *Floor) Unit(id UnitID) (Pump, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.units[id]
	if !ok {
		return Pump{}, ErrUnitNotFound
	}
	return u.Clone(), nil
}

// UnitEdit carries mutable field edits. A non-nil Serial is always
// rejected: serials are immutable post-creation.
type UnitEdit struct {
	Serial   *string
	Model    *string
	Customer *string
	PONumber *string
	Priority *Priority
	DueDate  *string
}

// UpdateUnit applies field edits to a unit.
func (f *Floor) UpdateUnit(ctx context.Context, id UnitID, edit UnitEdit) (Pump, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.units[id]
	if !ok {
		return Pump{}, ErrUnitNotFound
	}
	if edit.Serial != nil {
		return Pump{}, ErrSerialImmutable
	}

	now := f.now()
	patch := PumpPatch{
		Model:      edit.Model,
		Customer:   edit.Customer,
		PONumber:   edit.PONumber,
		Priority:   edit.Priority,
		DueDate:    edit.DueDate,
		LastUpdate: &now,
	}
	patch.Apply(u)

	f.persistPatch(ctx, id, patch)
	return u.Clone(), nil
}

// =============================================================================
// STAGE MOVES AND WIP ENFORCEMENT
// =============================================================================

// MoveStage advances a unit one step. When the destination stage's active
// population already meets its WIP limit, the unit arrives auto-paused in
// the same update. Moving a paused unit is always permitted.
func (f *Floor) MoveStage(ctx context.Context, id UnitID, to Stage) (Pump, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.units[id]
	if !ok {
		return Pump{}, ErrUnitNotFound
	}
	if err := CanTransition(u.Stage, to); err != nil {
		return Pump{}, err
	}

	now := f.now()
	patch := PumpPatch{Stage: &to, LastUpdate: &now}

	if !u.Paused && f.wipLimits.ShouldAutoPause(f.unitsLocked(), to, id) {
		paused := true
		reason := PauseAuto
		patch.Paused = &paused
		patch.PausedAt = &now
		patch.PausedStage = &to
		patch.PauseReason = &reason
	}
	patch.Apply(u)

	f.persistPatch(ctx, id, patch)
	return u.Clone(), nil
}

// Pause manually pauses a unit in a work-performing stage.
func (f *Floor) Pause(ctx context.Context, id UnitID) (Pump, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.units[id]
	if !ok {
		return Pump{}, ErrUnitNotFound
	}
	if u.Paused || !u.Stage.IsWorkStage() {
		return Pump{}, ErrNotPausable
	}

	now := f.now()
	paused := true
	reason := PauseManual
	patch := PumpPatch{
		Paused:      &paused,
		PausedAt:    &now,
		PausedStage: &u.Stage,
		PauseReason: &reason,
		LastUpdate:  &now,
	}
	patch.Apply(u)

	f.persistPatch(ctx, id, patch)
	return u.Clone(), nil
}

// Resume clears a pause, unless doing so would re-exceed the stage's WIP
// limit, in which case it is rejected with no state change.
func (f *Floor) Resume(ctx context.Context, id UnitID) (Pump, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.units[id]
	if !ok {
		return Pump{}, ErrUnitNotFound
	}
	if !u.Paused {
		return Pump{}, ErrNotPaused
	}
	if err := f.wipLimits.CheckResume(f.unitsLocked(), *u); err != nil {
		log.Printf("[Floor] resume %s rejected: %v", id, err)
		return Pump{}, err
	}

	now := f.now()
	total := u.TotalPausedDays
	if u.PausedAt != nil {
		total += int(now.Sub(*u.PausedAt).Hours() / 24)
	}
	paused := false
	patch := PumpPatch{
		Paused:          &paused,
		ClearPausedAt:   true,
		TotalPausedDays: &total,
		LastUpdate:      &now,
	}
	patch.Apply(u)

	f.persistPatch(ctx, id, patch)
	return u.Clone(), nil
}

// =============================================================================
// FORECASTS AND TIMELINES
// =============================================================================

// SetForecast anchors a unit's projection at start and derives the end
// from its timeline. Advisory only: the stage field is never touched.
func (f *Floor) SetForecast(ctx context.Context, id UnitID, start time.Time) (Pump, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.units[id]
	if !ok {
		return Pump{}, ErrUnitNotFound
	}
	wc, ok := f.catalog.WorkContent(u.Model)
	if !ok {
		return Pump{}, ErrUnknownModel
	}

	blocks := BuildTimeline(*u, wc, TimelineOptions{Start: &start, Capacity: &f.capacity, Now: f.now()})
	if len(blocks) == 0 {
		return Pump{}, ErrUnknownModel
	}

	now := f.now()
	end := blocks[len(blocks)-1].End
	patch := PumpPatch{ForecastStart: &start, ForecastEnd: &end, LastUpdate: &now}
	patch.Apply(u)

	f.persistPatch(ctx, id, patch)
	return u.Clone(), nil
}

// ClearForecast removes a unit's forecast hint.
func (f *Floor) ClearForecast(ctx context.Context, id UnitID) (Pump, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.units[id]
	if !ok {
		return Pump{}, ErrUnitNotFound
	}

	now := f.now()
	patch := PumpPatch{ClearForecast: true, LastUpdate: &now}
	patch.Apply(u)

	f.persistPatch(ctx, id, patch)
	return u.Clone(), nil
}

// Timeline returns the projected stage blocks for one unit. An empty
// slice means the unit can't be projected (closed, or no catalog entry).
func (f *Floor) Timeline(id UnitID) ([]StageBlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.units[id]
	if !ok {
		return nil, ErrUnitNotFound
	}
	wc, ok := f.catalog.WorkContent(u.Model)
	if !ok {
		return nil, nil
	}
	return BuildTimeline(*u, wc, TimelineOptions{Capacity: &f.capacity, Now: f.now()}), nil
}

// CalendarWeek projects every scheduled or in-progress unit onto the week
// starting at weekStart. Rows follow the serial-sorted unit order.
func (f *Floor) CalendarWeek(weekStart time.Time) []WeekSegment {
	f.mu.Lock()
	defer f.mu.Unlock()

	var segments []WeekSegment
	row := 0
	for _, u := range f.unitsLocked() {
		if !u.Scheduled() && !u.Stage.MidProduction() {
			continue
		}
		wc, ok := f.catalog.WorkContent(u.Model)
		if !ok {
			continue
		}
		blocks := BuildTimeline(u, wc, TimelineOptions{Capacity: &f.capacity, Now: f.now()})
		segs := ProjectWeek(u.ID, blocks, weekStart, row)
		if len(segs) > 0 {
			segments = append(segments, segs...)
			row++
		}
	}
	return segments
}

// =============================================================================
// AUTO-SCHEDULING
// =============================================================================

// AutoSchedule runs one capacity-aware placement pass over the backlog
// and applies the emitted forecast patches.
func (f *Floor) AutoSchedule(ctx context.Context) AutoScheduleResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := AutoSchedule(AutoScheduleInput{
		Units:    f.unitsLocked(),
		Catalog:  f.catalog,
		Capacity: &f.capacity,
		Today:    f.now(),
		LockDate: f.lockDate,
	})

	now := f.now()
	for _, p := range result.Patches {
		u, ok := f.units[p.UnitID]
		if !ok {
			continue
		}
		patch := PumpPatch{ForecastStart: &p.Start, ForecastEnd: &p.End, LastUpdate: &now}
		patch.Apply(u)
		f.persistPatch(ctx, p.UnitID, patch)
	}
	return result
}

// =============================================================================
// SETTINGS
// =============================================================================

// Capacity returns the current capacity configuration.
func (f *Floor) Capacity() CapacityConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.capacity
}

// StaffingUpdate names the driver of a reactive-triangle update. Exactly
// one field should be set per call.
type StaffingUpdate struct {
	EmployeeCount *float64
	Efficiency    *float64
	DailyManHours *float64
}

// UpdateStaffing applies a reactive-triangle update to one department.
func (f *Floor) UpdateStaffing(ctx context.Context, dept Department, up StaffingUpdate) (Staffing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.capacity.Staffing[dept]
	switch {
	case up.EmployeeCount != nil:
		s = s.SetEmployeeCount(decimal.NewFromFloat(*up.EmployeeCount))
	case up.Efficiency != nil:
		s = s.SetEfficiency(decimal.NewFromFloat(*up.Efficiency))
	case up.DailyManHours != nil:
		s = s.SetDailyManHours(decimal.NewFromFloat(*up.DailyManHours))
	}
	if f.capacity.Staffing == nil {
		f.capacity.Staffing = make(map[Department]Staffing)
	}
	f.capacity.Staffing[dept] = s

	if f.settings != nil {
		if err := f.settings.SaveStaffing(ctx, dept, s); err != nil {
			log.Printf("[Floor] persist staffing %s: %v", dept, err)
		}
	}
	return s, nil
}

// SetVendors replaces the powder-coat vendor lanes.
func (f *Floor) SetVendors(ctx context.Context, lanes []VendorLane) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.capacity.Vendors = lanes
	if f.settings != nil {
		if err := f.settings.SaveVendors(ctx, lanes); err != nil {
			log.Printf("[Floor] persist vendors: %v", err)
		}
	}
}

// WIPLimits returns the configured limits.
func (f *Floor) WIPLimits() WIPLimits {
	f.mu.Lock()
	defer f.mu.Unlock()
	limits := make(WIPLimits, len(f.wipLimits))
	for k, v := range f.wipLimits {
		limits[k] = v
	}
	return limits
}

// SetWIPLimits replaces the per-stage limits.
func (f *Floor) SetWIPLimits(ctx context.Context, limits WIPLimits) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.wipLimits = limits
	if f.settings != nil {
		if err := f.settings.SaveWIPLimits(ctx, limits); err != nil {
			log.Printf("[Floor] persist wip limits: %v", err)
		}
	}
}

// LockDate returns the auto-scheduling cutoff, if set.
func (f *Floor) LockDate() *time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lockDate
}

// SetLockDate updates the auto-scheduling cutoff. Nil clears it.
func (f *Floor) SetLockDate(ctx context.Context, lock *time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lockDate = lock
	if f.settings != nil {
		if err := f.settings.SaveLockDate(ctx, lock); err != nil {
			log.Printf("[Floor] persist lock date: %v", err)
		}
	}
}

// =============================================================================
// PERSISTENCE DISPATCH
// =============================================================================

// persistPatch dispatches a unit patch to the repository. Failures are
// logged, never surfaced: the in-memory state already moved on.
func (f *Floor) persistPatch(ctx context.Context, id UnitID, patch PumpPatch) {
	if f.repo == nil {
		return
	}
	if err := f.repo.Update(ctx, id, patch); err != nil {
		log.Printf("[Floor] persist unit %s: %v", id, err)
	}
}

func (f *Floor) persistUpsert(ctx context.Context, units ...Pump) {
	if f.repo == nil {
		return
	}
	if err := f.repo.UpsertMany(ctx, units); err != nil {
		log.Printf("[Floor] persist units: %v", err)
	}
}
