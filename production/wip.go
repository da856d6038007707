/*
wip.go - WIP limit evaluation

PURPOSE:
  Pure predicates over the unit collection that the Floor consults when
  moving, pausing or resuming units. A WIP limit caps the concurrently
  ACTIVE (non-paused) population of a stage; paused units don't count,
  and a unit paused in a different stage is not physically present here
  so it doesn't count either.

ENFORCEMENT POINTS:
  - Stage entry: when the destination's active count already meets the
    limit, the incoming unit is auto-paused in the same state update as
    the move (floor.go). Never a separate later transition.
  - Resume: rejected when it would re-exceed the limit.
  - Moving a paused unit out of a stage is always permitted.

SEE ALSO:
  - floor.go: Applies these checks atomically with the mutations
*/
package production

// WIPLimits maps a stage to its cap on concurrently active units.
// An absent stage means unlimited.
type WIPLimits map[Stage]int

// ActiveCount counts non-paused units currently in stage, excluding one
// unit (the one being moved or resumed).
func ActiveCount(units []Pump, stage Stage, exclude UnitID) int {
	count := 0
	for _, u := range units {
		if u.ID == exclude {
			continue
		}
		if u.Stage == stage && !u.Paused {
			count++
		}
	}
	return count
}

// ShouldAutoPause reports whether a unit entering dest must arrive paused:
// a limit is configured and the active population already meets it.
func (w WIPLimits) ShouldAutoPause(units []Pump, dest Stage, moving UnitID) bool {
	limit, ok := w[dest]
	if !ok {
		return false
	}
	return ActiveCount(units, dest, moving) >= limit
}

// CheckResume returns a *WIPLimitError when resuming the unit would place
// the stage's active count at or above its limit, nil otherwise.
func (w WIPLimits) CheckResume(units []Pump, unit Pump) error {
	limit, ok := w[unit.Stage]
	if !ok {
		return nil
	}
	active := ActiveCount(units, unit.Stage, unit.ID)
	if active >= limit {
		return &WIPLimitError{Stage: unit.Stage, Limit: limit, Active: active}
	}
	return nil
}
