package production_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/pumpline/production"
)

// =============================================================================
// REACTIVE TRIANGLE TESTS
// =============================================================================

func TestStaffing_EmployeeCountDrivesManHours(t *testing.T) {
	// GIVEN: 4 employees at 0.875 efficiency
	// WHEN: Headcount grows to 10
	// THEN: Daily man-hours recompute to 10 x 8 x 0.875 = 70

	s := production.NewStaffing(4, 0.875)
	s = s.SetEmployeeCount(decimal.NewFromInt(10))

	if got := s.DailyManHours.String(); got != "70" {
		t.Errorf("expected 70 daily man-hours, got %s", got)
	}
	if got := s.Efficiency.String(); got != "0.875" {
		t.Errorf("efficiency must be untouched, got %s", got)
	}
}

func TestStaffing_ManHoursDrivesEfficiency(t *testing.T) {
	// GIVEN: 10 employees at 70 daily man-hours
	// WHEN: Man-hours are set directly to 40
	// THEN: Efficiency recomputes to 40 / (10 x 8) = 0.5

	s := production.NewStaffing(10, 0.875)
	s = s.SetDailyManHours(decimal.NewFromInt(40))

	if got := s.Efficiency.String(); got != "0.5" {
		t.Errorf("expected efficiency 0.5, got %s", got)
	}
	if got := s.EmployeeCount.String(); got != "10" {
		t.Errorf("headcount must be untouched, got %s", got)
	}
}

func TestStaffing_ZeroHeadcount_NoDivideByZero(t *testing.T) {
	s := production.NewStaffing(0, 1)
	s = s.SetDailyManHours(decimal.NewFromInt(40))

	if !s.Efficiency.IsZero() {
		t.Errorf("expected efficiency 0 at zero headcount, got %s", s.Efficiency)
	}
	if got := s.DailyManHours.String(); got != "40" {
		t.Errorf("man-hours must still be set, got %s", got)
	}
}

func TestStaffing_EfficiencyDrivesManHours(t *testing.T) {
	s := production.NewStaffing(5, 1)
	s = s.SetEfficiency(decimal.NewFromFloat(0.8))

	if got := s.DailyManHours.String(); got != "32" {
		t.Errorf("expected 32 daily man-hours, got %s", got)
	}
}

// =============================================================================
// WEEKLY CAPACITY TESTS
// =============================================================================

func TestWeeklyCapacity_FloorsToWholeUnits(t *testing.T) {
	// GIVEN: 32 daily man-hours, 4 worker-days of content per unit
	// WHEN: Sizing a week of starts
	// THEN: 32 x 5 / 32 = 5 units

	s := production.NewStaffing(4, 1) // 32 daily man-hours
	got := production.WeeklyCapacity(s, production.DefaultDaysPerUnit)
	if got != 5 {
		t.Errorf("expected 5 units/week, got %d", got)
	}

	// 30 daily man-hours: 150 / 32 = 4.6875, floors to 4
	s = s.SetDailyManHours(decimal.NewFromInt(30))
	got = production.WeeklyCapacity(s, production.DefaultDaysPerUnit)
	if got != 4 {
		t.Errorf("expected floor to 4 units/week, got %d", got)
	}
}

func TestWeeklyCapacity_ZeroDaysPerUnit_Unlimited(t *testing.T) {
	s := production.NewStaffing(4, 1)
	got := production.WeeklyCapacity(s, decimal.Zero)
	if got != production.Unlimited {
		t.Errorf("expected unlimited sentinel, got %d", got)
	}
}

func TestStageCapacity_PowderCoat_SumsVendorLanes(t *testing.T) {
	cfg := production.DefaultCapacityConfig()
	cfg.Vendors = []production.VendorLane{
		{ID: "v1", Name: "Acme Coatings", MaxPumpsPerWeek: 3},
		{ID: "v2", Name: "Summit Finishing", MaxPumpsPerWeek: 5},
	}

	got := cfg.StageCapacity(production.StagePowderCoat, production.DefaultDaysPerUnit)
	if got != 8 {
		t.Errorf("expected vendor sum 8, got %d", got)
	}
}

func TestStageCapacity_BufferStages_Unlimited(t *testing.T) {
	cfg := production.DefaultCapacityConfig()
	for _, stage := range []production.Stage{
		production.StageQueue,
		production.StageStagedForPowder,
		production.StageClosed,
	} {
		if got := cfg.StageCapacity(stage, production.DefaultDaysPerUnit); got != production.Unlimited {
			t.Errorf("expected %s unlimited, got %d", stage, got)
		}
	}
}

// =============================================================================
// WORK WEEK TESTS
// =============================================================================

func TestDefaultWorkWeek_Totals36Hours(t *testing.T) {
	// Mon-Thu 8h, Fri 4h
	week := production.DefaultWorkWeek()
	if got := week.Total().String(); got != "36" {
		t.Errorf("expected 36 scheduled hours, got %s", got)
	}
}

func TestWeeklyHours_ScalesWithHeadcount(t *testing.T) {
	cfg := production.DefaultCapacityConfig()
	cfg.Staffing[production.DeptFabrication] = production.NewStaffing(4, 1)

	if got := cfg.WeeklyHours(production.DeptFabrication).String(); got != "144" {
		t.Errorf("expected 4 x 36 = 144 weekly hours, got %s", got)
	}
}
