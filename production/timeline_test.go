package production_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/pumpline/production"
)

func dd6WorkContent() production.WorkContent {
	return production.WorkContent{
		FabricationDays: decimal.NewFromFloat(1.5),
		PowderCoatDays:  decimal.NewFromInt(2),
		AssemblyDays:    decimal.NewFromInt(1),
		ShipDays:        decimal.NewFromFloat(0.25),
	}
}

func dd6Capacity() *production.CapacityConfig {
	cfg := production.DefaultCapacityConfig()
	cfg.Staffing[production.DeptFabrication] = production.Staffing{
		DailyManHours: decimal.NewFromInt(32),
	}
	cfg.Staffing[production.DeptShip] = production.Staffing{
		DailyManHours: decimal.NewFromInt(2),
	}
	return &cfg
}

// =============================================================================
// END-TO-END SCENARIO
// =============================================================================

func TestBuildTimeline_CapacityAwareScenario(t *testing.T) {
	// GIVEN: A DD-6 SAFE unit, fabrication at 32 man-hours/day and ship
	//        at 2 man-hours/day, starting 2025-01-01T09:00Z
	// WHEN: Building the timeline
	// THEN: Fabrication spans exactly 9 hours and ship exactly 24 hours

	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	unit := production.Pump{ID: "u1", Stage: production.StageQueue}

	blocks := production.BuildTimeline(unit, dd6WorkContent(), production.TimelineOptions{
		Start:    &start,
		Capacity: dd6Capacity(),
	})

	if len(blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(blocks))
	}

	fab := blocks[0]
	if fab.Stage != production.StageFabrication {
		t.Errorf("expected first block FABRICATION, got %s", fab.Stage)
	}
	if !fab.Start.Equal(start) {
		t.Errorf("fabrication must start at the anchor, got %v", fab.Start)
	}
	if got := fab.End.Sub(fab.Start); got != 9*time.Hour {
		t.Errorf("expected 9h fabrication block, got %v", got)
	}

	ship := blocks[3]
	if ship.Stage != production.StageShip {
		t.Errorf("expected last block SHIP, got %s", ship.Stage)
	}
	if got := ship.End.Sub(ship.Start); got != 24*time.Hour {
		t.Errorf("expected 24h ship block, got %v", got)
	}

	// Cursor walk: each block starts where the previous ended.
	for i := 1; i < len(blocks); i++ {
		if !blocks[i].Start.Equal(blocks[i-1].End) {
			t.Errorf("block %d starts at %v, previous ended %v",
				i, blocks[i].Start, blocks[i-1].End)
		}
	}
}

func TestBuildTimeline_Idempotent(t *testing.T) {
	// GIVEN: Identical inputs
	// WHEN: Building the timeline twice
	// THEN: The block lists are identical

	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	unit := production.Pump{ID: "u1", Stage: production.StageQueue}
	opts := production.TimelineOptions{Start: &start, Capacity: dd6Capacity()}

	first := production.BuildTimeline(unit, dd6WorkContent(), opts)
	second := production.BuildTimeline(unit, dd6WorkContent(), opts)

	if len(first) != len(second) {
		t.Fatalf("block counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("block %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

// =============================================================================
// STAGE FILTERING
// =============================================================================

func TestBuildTimeline_MidProduction_DropsEarlierStages(t *testing.T) {
	// GIVEN: A unit already in ASSEMBLY
	// WHEN: Building its timeline
	// THEN: Only ASSEMBLY and SHIP blocks appear

	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	unit := production.Pump{ID: "u1", Stage: production.StageAssembly}

	blocks := production.BuildTimeline(unit, dd6WorkContent(), production.TimelineOptions{Start: &start})

	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Stage != production.StageAssembly || blocks[1].Stage != production.StageShip {
		t.Errorf("unexpected stages: %s, %s", blocks[0].Stage, blocks[1].Stage)
	}
}

func TestBuildTimeline_Closed_Empty(t *testing.T) {
	unit := production.Pump{ID: "u1", Stage: production.StageClosed}
	blocks := production.BuildTimeline(unit, dd6WorkContent(), production.TimelineOptions{})
	if len(blocks) != 0 {
		t.Errorf("expected no blocks for a closed unit, got %d", len(blocks))
	}
}

// =============================================================================
// START RESOLUTION
// =============================================================================

func TestBuildTimeline_StartResolution(t *testing.T) {
	now := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	forecastStart := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	explicit := time.Date(2025, 2, 17, 0, 0, 0, 0, time.UTC)

	unit := production.Pump{ID: "u1", Stage: production.StageQueue, ForecastStart: &forecastStart}

	// Explicit override wins over the forecast hint.
	blocks := production.BuildTimeline(unit, dd6WorkContent(), production.TimelineOptions{
		Start: &explicit, Now: now,
	})
	if !blocks[0].Start.Equal(explicit) {
		t.Errorf("explicit start must win, got %v", blocks[0].Start)
	}

	// Forecast start wins over now.
	blocks = production.BuildTimeline(unit, dd6WorkContent(), production.TimelineOptions{Now: now})
	if !blocks[0].Start.Equal(forecastStart) {
		t.Errorf("forecast start must win over now, got %v", blocks[0].Start)
	}

	// No hints at all: anchored at now.
	unit.ForecastStart = nil
	blocks = production.BuildTimeline(unit, dd6WorkContent(), production.TimelineOptions{Now: now})
	if !blocks[0].Start.Equal(now) {
		t.Errorf("expected now anchor, got %v", blocks[0].Start)
	}
}

func TestBuildTimeline_BackComputesFromForecastEnd(t *testing.T) {
	// GIVEN: Only a forecast end (Friday 2025-02-14), lead-time durations
	//        totalling 6 days (2+2+1+1)
	// WHEN: Building the timeline
	// THEN: The start lands 6 business days earlier (2025-02-06)

	end := time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)
	unit := production.Pump{ID: "u1", Stage: production.StageQueue, ForecastEnd: &end}

	blocks := production.BuildTimeline(unit, dd6WorkContent(), production.TimelineOptions{})
	want := time.Date(2025, 2, 6, 0, 0, 0, 0, time.UTC)
	if !blocks[0].Start.Equal(want) {
		t.Errorf("expected back-computed start %v, got %v", want, blocks[0].Start)
	}
}

// =============================================================================
// BUSINESS DAY WALK
// =============================================================================

func TestAddBusinessDays_SkipsWeekends(t *testing.T) {
	friday := time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC)

	monday := production.AddBusinessDays(friday, 1)
	if monday.Weekday() != time.Monday || monday.Day() != 6 {
		t.Errorf("expected Monday Jan 6, got %v", monday)
	}
	if monday.Hour() != 12 {
		t.Errorf("time of day must be preserved, got %v", monday)
	}

	back := production.AddBusinessDays(monday, -1)
	if !back.Equal(friday) {
		t.Errorf("expected Friday Jan 3 walking back, got %v", back)
	}
}
