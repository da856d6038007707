/*
calendar.go - Weekly calendar projection

PURPOSE:
  Clips stage blocks onto a 5-day work-week grid (Monday start), producing
  fractional start-column/span coordinates per week for rendering. Blocks
  crossing a week boundary carry continuation flags so the renderer can
  omit rounded corners and show a "continues" cue.

GRID CONTRACT:
  For a segment with fractional startDay and span inside a grid of
  totalCols columns:
    gridColumnStart = floor(startDay) + 1
    gridColumnEnd   = "span N" where N = ceil(startDay+span) - floor(startDay)
    marginLeft      = (startDay mod 1) / totalCols * 100%
    width           = span / totalCols * 100%
  These are exact percentage/column contracts reproduced bit-for-bit by
  the test suite.

SEE ALSO:
  - timeline.go: Produces the blocks projected here
*/
package production

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// WorkWeekDays is the width of the rendered week in day columns.
const WorkWeekDays = 5

var (
	minuteGrain   = decimal.NewFromInt(24 * 60)
	minSpan       = decimal.NewFromInt(1).Div(hoursPerDay) // one hour
	weekSpanLimit = decimal.NewFromInt(WorkWeekDays)
	oneHundred    = decimal.NewFromInt(100)
)

// =============================================================================
// WEEK SEGMENT - A stage block clipped to a single calendar week
// =============================================================================

// WeekSegment is a stage block clipped to one week. Derived, ephemeral,
// rendering-only.
type WeekSegment struct {
	UnitID UnitID
	Stage  Stage
	Row    int

	// StartCol is the fractional day offset from the week start,
	// Span the fractional width in days.
	StartCol decimal.Decimal
	Span     decimal.Decimal

	// Continuation flags for blocks crossing the week boundary.
	ContinuesLeft  bool
	ContinuesRight bool
}

// ProjectWeek clips blocks onto the week starting at weekStart (Monday).
// Blocks entirely outside [weekStart, weekStart+5d) are discarded.
func ProjectWeek(unitID UnitID, blocks []StageBlock, weekStart time.Time, row int) []WeekSegment {
	weekEnd := weekStart.AddDate(0, 0, WorkWeekDays)

	var segments []WeekSegment
	for _, b := range blocks {
		if !b.End.After(weekStart) || !b.Start.Before(weekEnd) {
			continue
		}

		clippedStart, clippedEnd := b.Start, b.End
		if clippedStart.Before(weekStart) {
			clippedStart = weekStart
		}
		if clippedEnd.After(weekEnd) {
			clippedEnd = weekEnd
		}

		startCol := fractionalDays(weekStart, clippedStart)
		span := fractionalDays(clippedStart, clippedEnd)
		if span.LessThan(minSpan) {
			span = minSpan
		}
		if remaining := weekSpanLimit.Sub(startCol); span.GreaterThan(remaining) {
			span = remaining
		}

		segments = append(segments, WeekSegment{
			UnitID:         unitID,
			Stage:          b.Stage,
			Row:            row,
			StartCol:       startCol,
			Span:           span,
			ContinuesLeft:  b.Start.Before(weekStart),
			ContinuesRight: b.End.After(weekEnd),
		})
	}
	return segments
}

// fractionalDays returns the span from a to b in fractional days.
// Blocks are hour-granular, so minute arithmetic is exact.
func fractionalDays(a, b time.Time) decimal.Decimal {
	minutes := int64(b.Sub(a) / time.Minute)
	return decimal.NewFromInt(minutes).Div(minuteGrain)
}

// =============================================================================
// GRID PLACEMENT - CSS grid coordinates for a segment
// =============================================================================

// GridPlacement is the renderer-facing position of a segment inside a
// grid of totalCols day columns.
type GridPlacement struct {
	ColumnStart int
	ColumnEnd   string // "span N"
	MarginLeft  string // percentage, e.g. "25%"
	Width       string // percentage, e.g. "75%"
}

// Placement translates the fractional coordinates into the grid contract.
func (s WeekSegment) Placement(totalCols int) GridPlacement {
	cols := decimal.NewFromInt(int64(totalCols))
	floorStart := s.StartCol.Floor()
	spanCols := s.StartCol.Add(s.Span).Ceil().Sub(floorStart)

	margin := s.StartCol.Sub(floorStart).Div(cols).Mul(oneHundred)
	width := s.Span.Div(cols).Mul(oneHundred)

	return GridPlacement{
		ColumnStart: int(floorStart.IntPart()) + 1,
		ColumnEnd:   fmt.Sprintf("span %d", spanCols.IntPart()),
		MarginLeft:  margin.String() + "%",
		Width:       width.String() + "%",
	}
}

// WeekStart returns the Monday 00:00 UTC of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}
