/*
autoschedule.go - Capacity-aware backlog scheduling

PURPOSE:
  Assigns forecastStart/forecastEnd to every backlog unit (QUEUE, no
  existing forecast) without manual placement. A greedy bin-packing pass:
  sort by priority then due date, then place each unit on the earliest
  day whose fabrication start count hasn't exhausted daily capacity.

ALGORITHM:
  1. Collect unscheduled backlog units.
  2. Sort by priority descending, tie-break by ascending due date
     (ISO string comparison), else stable.
  3. Daily start capacity = ceil(weeklyCapacity(fabrication, 4d) / 5).
  4. Seed a per-day load map from every unit that already has a forecast
     start (one start per unit per day).
  5. Floor date = today, or the day after the lock date when a future
     lock is set. Locked days never receive new starts.
  6. Scan forward day by day (365-day cap) for a day with load below
     capacity; record the start, bump the load, build the timeline for
     the end date.
  7. Units without a slot inside the window stay unscheduled. Not an
     error: the caller surfaces the scheduled count.

  The load map is mutated incrementally, so later units see earlier
  placements within the same pass. Runs under the Floor's single-writer
  lock; no interleaving between steps.

SEE ALSO:
  - capacity.go: WeeklyCapacity
  - timeline.go: End-date computation
  - floor.go: Applies the emitted patches and persists them
*/
package production

import (
	"sort"
	"time"
)

// lookaheadDays caps the forward scan for a free start day.
const lookaheadDays = 365

// dayKey is the load-map key format.
const dayKey = "2006-01-02"

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

// AutoScheduleInput carries everything one scheduling pass reads.
type AutoScheduleInput struct {
	Units    []Pump // the whole fleet: backlog plus already-scheduled seeds
	Catalog  Catalog
	Capacity *CapacityConfig

	// Today anchors the search floor. Zero means time.Now.
	Today time.Time

	// LockDate, when set and in the future, pushes the search floor to
	// the following day.
	LockDate *time.Time
}

// ForecastPatch is one emitted side effect: a forecast assignment for a
// unit. The caller decides how to dispatch it (apply + persist).
type ForecastPatch struct {
	UnitID UnitID
	Start  time.Time
	End    time.Time
}

// AutoScheduleResult reports a completed pass.
type AutoScheduleResult struct {
	Scheduled int
	Skipped   int
	Patches   []ForecastPatch
}

// =============================================================================
// THE PASS
// =============================================================================

// AutoSchedule runs one greedy placement pass over the backlog. It never
// mutates the input units: all assignments come back as patches.
func AutoSchedule(in AutoScheduleInput) AutoScheduleResult {
	today := in.Today
	if today.IsZero() {
		today = time.Now().UTC()
	}

	backlog := sortBacklog(collectBacklog(in.Units))

	dailyCap := dailyStartCapacity(in.Capacity)
	load := seedLoad(in.Units)
	floor := searchFloor(today, in.LockDate)

	var result AutoScheduleResult
	for _, unit := range backlog {
		wc, ok := catalogEntry(in.Catalog, unit.Model)
		if !ok {
			// Missing catalog entry: skip this unit, never the batch.
			result.Skipped++
			continue
		}

		day, ok := findSlot(load, floor, dailyCap)
		if !ok {
			result.Skipped++
			continue
		}
		load[day.Format(dayKey)]++

		start := day
		blocks := BuildTimeline(unit, wc, TimelineOptions{Start: &start, Capacity: in.Capacity})
		if len(blocks) == 0 {
			result.Skipped++
			continue
		}

		result.Patches = append(result.Patches, ForecastPatch{
			UnitID: unit.ID,
			Start:  start,
			End:    blocks[len(blocks)-1].End,
		})
		result.Scheduled++
	}
	return result
}

func collectBacklog(units []Pump) []Pump {
	var backlog []Pump
	for _, u := range units {
		if u.InBacklog() {
			backlog = append(backlog, u)
		}
	}
	return backlog
}

// sortBacklog orders by priority descending, then due date ascending
// (ISO strings compare lexically; empty due dates sort last), else keeps
// submission order.
func sortBacklog(units []Pump) []Pump {
	sort.SliceStable(units, func(i, j int) bool {
		if units[i].Priority != units[j].Priority {
			return units[i].Priority > units[j].Priority
		}
		di, dj := units[i].DueDate, units[j].DueDate
		if di == dj {
			return false
		}
		if di == "" {
			return false
		}
		if dj == "" {
			return true
		}
		return di < dj
	})
	return units
}

// dailyStartCapacity converts fabrication's weekly start capacity into a
// whole-number units-per-day ceiling.
func dailyStartCapacity(cfg *CapacityConfig) int {
	if cfg == nil {
		return Unlimited
	}
	weekly := WeeklyCapacity(cfg.Staffing[DeptFabrication], DefaultDaysPerUnit)
	if weekly == Unlimited {
		return Unlimited
	}
	return (weekly + 4) / 5
}

// seedLoad counts one start per unit on its forecast start day, for every
// unit that already carries a forecast, scheduled stage or not.
func seedLoad(units []Pump) map[string]int {
	load := make(map[string]int)
	for _, u := range units {
		if u.ForecastStart != nil {
			load[u.ForecastStart.UTC().Format(dayKey)]++
		}
	}
	return load
}

// searchFloor returns the first day eligible for new starts.
func searchFloor(today time.Time, lock *time.Time) time.Time {
	floor := startOfDay(today)
	if lock != nil {
		if locked := startOfDay(*lock); !locked.Before(floor) {
			floor = locked.AddDate(0, 0, 1)
		}
	}
	return floor
}

// findSlot scans forward from floor for a day whose load is strictly
// below capacity, up to the lookahead cap.
func findSlot(load map[string]int, floor time.Time, capacity int) (time.Time, bool) {
	if capacity <= 0 {
		return time.Time{}, false
	}
	for i := 0; i < lookaheadDays; i++ {
		day := floor.AddDate(0, 0, i)
		if load[day.Format(dayKey)] < capacity {
			return day, true
		}
	}
	return time.Time{}, false
}

func catalogEntry(c Catalog, model string) (WorkContent, bool) {
	if c == nil {
		return WorkContent{}, false
	}
	return c.WorkContent(model)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
