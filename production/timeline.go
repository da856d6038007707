/*
timeline.go - Stage block construction

PURPOSE:
  Sequences per-stage durations into a chronological list of time blocks.
  Block arithmetic is fractional-day: a 0.375-day fabrication duration
  yields a 9-hour-wide block, not a rounded full day.

START RESOLUTION:
  Explicit override > unit's forecastStart > back-computed from
  forecastEnd minus the total duration in business days > now.

MID-PRODUCTION UNITS:
  A unit already in ASSEMBLY does not get a fabrication block: the stage
  list is filtered to the current stage and everything after it.

SEE ALSO:
  - duration.go: Per-stage duration source
  - calendar.go: Clips these blocks onto weekly grids
*/
package production

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STAGE BLOCK - One element of a unit's projected timeline
// =============================================================================

// StageBlock is a computed time interval a unit occupies in one stage.
// Ephemeral: recomputed on demand, never persisted.
type StageBlock struct {
	Stage Stage
	Start time.Time
	End   time.Time
	Days  int // ceiling of the fractional duration, for display
}

// TimelineOptions tune timeline construction.
type TimelineOptions struct {
	// Start overrides all inferred start dates when non-nil.
	Start *time.Time

	// Capacity enables capacity-aware durations when non-nil.
	Capacity *CapacityConfig

	// Now anchors unscheduled units. Zero means time.Now.
	Now time.Time
}

// BuildTimeline computes the projected stage blocks for a unit. Returns
// an empty list when no durations apply (unit closed, or model missing
// from the catalog; callers pass the looked-up work content).
func BuildTimeline(unit Pump, wc WorkContent, opts TimelineOptions) []StageBlock {
	stages := remainingStages(unit.Stage)
	if len(stages) == 0 {
		return nil
	}

	durations := make([]decimal.Decimal, len(stages))
	total := decimal.Zero
	for i, stage := range stages {
		durations[i] = StageDuration(stage, wc, opts.Capacity)
		total = total.Add(durations[i])
	}
	if total.IsZero() {
		return nil
	}

	cursor := resolveStart(unit, total, opts)
	blocks := make([]StageBlock, 0, len(stages))
	for i, stage := range stages {
		d := durations[i]
		if d.IsZero() {
			continue
		}
		end := cursor.Add(durationOf(d))
		blocks = append(blocks, StageBlock{
			Stage: stage,
			Start: cursor,
			End:   end,
			Days:  int(d.Ceil().IntPart()),
		})
		cursor = end
	}
	return blocks
}

// remainingStages filters the production stages down to what the unit
// still has ahead of it.
func remainingStages(current Stage) []Stage {
	if current == StageClosed {
		return nil
	}
	if !current.MidProduction() {
		return ProductionStages
	}
	currentIdx := StageIndex(current)
	var stages []Stage
	for _, s := range ProductionStages {
		if StageIndex(s) >= currentIdx {
			stages = append(stages, s)
		}
	}
	return stages
}

// resolveStart picks the timeline anchor per the resolution order.
func resolveStart(unit Pump, totalDays decimal.Decimal, opts TimelineOptions) time.Time {
	if opts.Start != nil {
		return *opts.Start
	}
	if unit.ForecastStart != nil {
		return *unit.ForecastStart
	}
	if unit.ForecastEnd != nil {
		span := int(totalDays.Ceil().IntPart())
		return AddBusinessDays(*unit.ForecastEnd, -span)
	}
	if !opts.Now.IsZero() {
		return opts.Now
	}
	return time.Now().UTC()
}

// durationOf converts fractional days to a time.Duration. Durations are
// hour-granular (see duration.go), so conversion through minutes is exact.
func durationOf(days decimal.Decimal) time.Duration {
	minutes := days.Mul(decimal.NewFromInt(24 * 60)).Round(0).IntPart()
	return time.Duration(minutes) * time.Minute
}

// AddBusinessDays walks n business days (Mon-Fri) from t, in either
// direction, preserving the time of day.
func AddBusinessDays(t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step, n = -1, -n
	}
	for n > 0 {
		t = t.AddDate(0, 0, step)
		if wd := t.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n--
		}
	}
	return t
}
