/*
Package production provides the core production scheduling engine.

PURPOSE:
  This package contains the domain types and algorithms for tracking pump
  units through the fixed fabrication pipeline and projecting their
  timelines. It converts model-specific work content into calendar-time
  stage blocks, accounting for department staffing, efficiency factors,
  vendor-based outsourced stages, and already-committed capacity.

KEY CONCEPTS IN THIS FILE (types.go):
  - Pump: A manufactured unit under production
  - Priority: Five-level scheduling ordinal (Low..Urgent)
  - WorkContent: Per-model standard durations from the catalog
  - Catalog: Lookup interface the engine consumes (implemented elsewhere)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for man-hours and fractional days
  2. Type Safety: Strong typing for unit IDs and stages
  3. Single Writer: All mutation flows through the Floor container
  4. Advisory Forecasts: forecast fields never drive the stage field

SEE ALSO:
  - stage.go: Canonical stage sequence and transition rules
  - capacity.go: Staffing and vendor capacity model
  - timeline.go: Stage block construction
  - floor.go: The single-writer state container
*/
package production

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UnitID string

// =============================================================================
// PRIORITY - Five-level scheduling ordinal
// =============================================================================

type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityNormal
	PriorityHigh
	PriorityRush
	PriorityUrgent
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityRush:
		return "rush"
	case PriorityUrgent:
		return "urgent"
	default:
		return "normal"
	}
}

// ParsePriority maps a priority label to its ordinal. Unknown labels
// fall back to PriorityNormal.
func ParsePriority(s string) Priority {
	switch s {
	case "low":
		return PriorityLow
	case "normal":
		return PriorityNormal
	case "high":
		return PriorityHigh
	case "rush":
		return PriorityRush
	case "urgent":
		return PriorityUrgent
	default:
		return PriorityNormal
	}
}

// =============================================================================
// PUMP - A manufactured unit under production
// =============================================================================

// Pump is a manufactured unit moving through the pipeline.
//
// Invariants:
//   - Serial is immutable after creation (unique within the system)
//   - Stage only advances one step at a time; CLOSED is terminal
//   - ForecastStart/ForecastEnd are a projection, never authoritative:
//     changing them never changes Stage
type Pump struct {
	ID     UnitID
	Serial string

	Model    string // key into the work-content catalog
	Customer string
	PONumber string

	Stage    Stage
	Priority Priority

	// DueDate is the promise date in ISO form (YYYY-MM-DD). Kept as a
	// string: the auto-scheduler tie-breaks by plain ISO comparison.
	DueDate string

	// Forecast hint. Nil means unscheduled backlog.
	ForecastStart *time.Time
	ForecastEnd   *time.Time

	// Pause state. Pause is only meaningful within a work-performing stage.
	Paused          bool
	PausedAt        *time.Time
	PausedStage     Stage
	PauseReason     PauseReason
	TotalPausedDays int

	LastUpdate time.Time
}

// PauseReason tags why a unit was paused.
type PauseReason string

const (
	PauseAuto   PauseReason = "auto"   // WIP limit enforcement on stage entry
	PauseManual PauseReason = "manual" // operator action
)

// Scheduled reports whether the unit carries a forecast hint.
func (p Pump) Scheduled() bool { return p.ForecastStart != nil }

// InBacklog reports whether the unit is waiting for an auto-schedule slot.
func (p Pump) InBacklog() bool { return p.Stage == StageQueue && p.ForecastStart == nil }

// Clone returns a copy that shares no pointer state with the receiver, so
// callers holding a snapshot cannot write through to the stored unit.
func (p Pump) Clone() Pump {
	out := p
	if p.ForecastStart != nil {
		t := *p.ForecastStart
		out.ForecastStart = &t
	}
	if p.ForecastEnd != nil {
		t := *p.ForecastEnd
		out.ForecastEnd = &t
	}
	if p.PausedAt != nil {
		t := *p.PausedAt
		out.PausedAt = &t
	}
	return out
}

// =============================================================================
// WORK CONTENT - Per-model standard durations (catalog reference data)
// =============================================================================

// WorkContent holds a model's nominal lead times per production stage and,
// when known, the raw labor hours behind them. Hours are optional: when
// absent the calculator derives work content from the nominal days at the
// 8-hour standard.
type WorkContent struct {
	FabricationDays decimal.Decimal
	PowderCoatDays  decimal.Decimal
	AssemblyDays    decimal.Decimal
	ShipDays        decimal.Decimal

	FabricationHours *decimal.Decimal
	AssemblyHours    *decimal.Decimal
	ShipHours        *decimal.Decimal
}

// Catalog is the work-content lookup the engine depends on. A missing
// entry means the unit cannot be scheduled (timelines come back empty).
type Catalog interface {
	WorkContent(model string) (WorkContent, bool)
}
