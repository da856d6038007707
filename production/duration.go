/*
duration.go - Stage duration calculation

PURPOSE:
  Converts a model's nominal work content into an elapsed-time duration
  per stage. Two modes:

  Lead-time mode (fallback):
    Duration = catalog nominal days, ceiling-rounded, floor 1 day.

  Capacity-aware mode (preferred):
    For staffed stages, duration = work hours / daily man-hours, rounded
    to the nearest 1/24 of a day (hour granularity), floor 0.25 days.
    Powder-coat stays at its catalog lead time: it is outsourced and does
    not scale with in-house staffing.

  Work hours come from the catalog's raw hours when present, otherwise
  from the nominal days at the 8-hour standard worker-day. If a stage's
  department has no man-hours configured, that stage alone falls back to
  lead-time mode.

SEE ALSO:
  - capacity.go: DailyManHours source
  - timeline.go: Sequences these durations into stage blocks
*/
package production

import "github.com/shopspring/decimal"

var (
	quarterDay  = decimal.NewFromFloat(0.25)
	hoursPerDay = decimal.NewFromInt(24)
	oneDay      = decimal.NewFromInt(1)
)

// StageDuration returns the elapsed duration for one production stage in
// fractional days. The zero value means the stage does not apply.
func StageDuration(stage Stage, wc WorkContent, cfg *CapacityConfig) decimal.Decimal {
	nominal := nominalDays(stage, wc)

	// Powder-coat is vendor-run: always the catalog lead time.
	if stage == StagePowderCoat {
		return leadTimeDays(nominal)
	}

	dept, ok := DepartmentForStage(stage)
	if !ok {
		return decimal.Zero
	}

	if cfg != nil {
		daily := cfg.Staffing[dept].DailyManHours
		if daily.IsPositive() {
			return capacityDays(workHours(stage, wc), daily)
		}
	}
	return leadTimeDays(nominal)
}

// nominalDays picks the catalog lead time for a stage.
func nominalDays(stage Stage, wc WorkContent) decimal.Decimal {
	switch stage {
	case StageFabrication:
		return wc.FabricationDays
	case StagePowderCoat:
		return wc.PowderCoatDays
	case StageAssembly:
		return wc.AssemblyDays
	case StageShip:
		return wc.ShipDays
	default:
		return decimal.Zero
	}
}

// workHours resolves a stage's raw labor hours: explicit catalog hours
// when recorded, otherwise nominal days at the 8-hour standard.
func workHours(stage Stage, wc WorkContent) decimal.Decimal {
	var explicit *decimal.Decimal
	switch stage {
	case StageFabrication:
		explicit = wc.FabricationHours
	case StageAssembly:
		explicit = wc.AssemblyHours
	case StageShip:
		explicit = wc.ShipHours
	}
	if explicit != nil {
		return *explicit
	}
	return nominalDays(stage, wc).Mul(standardDayHours)
}

// leadTimeDays rounds a nominal lead time up to whole days, minimum 1.
func leadTimeDays(days decimal.Decimal) decimal.Decimal {
	rounded := days.Ceil()
	if rounded.LessThan(oneDay) {
		return oneDay
	}
	return rounded
}

// capacityDays converts labor hours to elapsed days at the department's
// daily throughput, hour granularity, quarter-day floor.
func capacityDays(hours, dailyManHours decimal.Decimal) decimal.Decimal {
	days := hours.Div(dailyManHours)
	// Round to the nearest 1/24 day so blocks land on hour boundaries.
	days = days.Mul(hoursPerDay).Round(0).Div(hoursPerDay)
	if days.LessThan(quarterDay) {
		return quarterDay
	}
	return days
}
