/*
capacity.go - Department staffing and vendor capacity model

PURPOSE:
  Models how much work each department can absorb: staffed departments
  (fabrication, assembly, ship) via employee count x efficiency, and the
  outsourced powder-coat stage via vendor lanes with weekly unit limits.

THE REACTIVE TRIANGLE:
  EmployeeCount, Efficiency and DailyManHours form a three-variable
  reactive relationship, not independent fields. Exactly one of them is
  the driver on any single update:
    - SetEmployeeCount / SetEfficiency recompute DailyManHours
    - SetDailyManHours recomputes Efficiency (employee count held fixed)

WORK WEEK:
  The nominal week is Mon-Thu 8h, Fri 4h, weekend 0 (36 hours). Weekly
  start capacity derives from daily man-hours against the 8-hour standard
  worker-day, so a department never commits to more unit starts than its
  staffing can absorb.

SEE ALSO:
  - duration.go: Consumes DailyManHours for capacity-aware durations
  - autoschedule.go: Consumes WeeklyCapacity for daily start limits
*/
package production

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DEPARTMENTS
// =============================================================================

// Department identifies a staffed, work-performing department.
// Powder-coat is vendor-based and has no staffing record.
type Department string

const (
	DeptFabrication Department = "fabrication"
	DeptAssembly    Department = "assembly"
	DeptShip        Department = "ship"
)

// Departments lists the staffed departments in pipeline order.
var Departments = []Department{DeptFabrication, DeptAssembly, DeptShip}

// DepartmentForStage maps a work stage to its department.
func DepartmentForStage(s Stage) (Department, bool) {
	switch s {
	case StageFabrication:
		return DeptFabrication, true
	case StageAssembly:
		return DeptAssembly, true
	case StageShip:
		return DeptShip, true
	default:
		return "", false
	}
}

// =============================================================================
// STAFFING - The reactive triangle
// =============================================================================

var (
	standardDayHours = decimal.NewFromInt(8)
	workdaysPerWeek  = decimal.NewFromInt(5)
)

// Staffing holds a department's staffing level. Employee count may be
// fractional (shared workers). Efficiency is a 0.0-1.0 ratio.
type Staffing struct {
	EmployeeCount decimal.Decimal
	Efficiency    decimal.Decimal
	DailyManHours decimal.Decimal
}

// NewStaffing derives daily man-hours from headcount and efficiency.
func NewStaffing(employees, efficiency float64) Staffing {
	s := Staffing{
		EmployeeCount: decimal.NewFromFloat(employees),
		Efficiency:    decimal.NewFromFloat(efficiency),
	}
	s.DailyManHours = s.EmployeeCount.Mul(standardDayHours).Mul(s.Efficiency)
	return s
}

// SetEmployeeCount drives the triangle from headcount: efficiency is held,
// daily man-hours recompute.
func (s Staffing) SetEmployeeCount(n decimal.Decimal) Staffing {
	s.EmployeeCount = n
	s.DailyManHours = n.Mul(standardDayHours).Mul(s.Efficiency)
	return s
}

// SetEfficiency drives the triangle from efficiency: headcount is held,
// daily man-hours recompute.
func (s Staffing) SetEfficiency(e decimal.Decimal) Staffing {
	s.Efficiency = e
	s.DailyManHours = s.EmployeeCount.Mul(standardDayHours).Mul(e)
	return s
}

// SetDailyManHours drives the triangle from throughput: headcount is held,
// efficiency recomputes. A zero headcount leaves efficiency at zero
// rather than dividing by it.
func (s Staffing) SetDailyManHours(h decimal.Decimal) Staffing {
	s.DailyManHours = h
	denom := s.EmployeeCount.Mul(standardDayHours)
	if denom.IsZero() {
		s.Efficiency = decimal.Zero
		return s
	}
	s.Efficiency = h.Div(denom)
	return s
}

// =============================================================================
// WORK WEEK
// =============================================================================

// WorkWeek holds scheduled hours per weekday.
type WorkWeek map[time.Weekday]decimal.Decimal

// DefaultWorkWeek is the nominal 36-hour week: Mon-Thu 8h, Fri 4h.
func DefaultWorkWeek() WorkWeek {
	return WorkWeek{
		time.Monday:    decimal.NewFromInt(8),
		time.Tuesday:   decimal.NewFromInt(8),
		time.Wednesday: decimal.NewFromInt(8),
		time.Thursday:  decimal.NewFromInt(8),
		time.Friday:    decimal.NewFromInt(4),
	}
}

// Total returns the scheduled hours across the week.
func (w WorkWeek) Total() decimal.Decimal {
	total := decimal.Zero
	for _, h := range w {
		total = total.Add(h)
	}
	return total
}

// =============================================================================
// VENDOR LANES - Outsourced powder-coat capacity
// =============================================================================

// VendorLane is one outsourced powder-coat vendor with a weekly intake cap.
type VendorLane struct {
	ID              string
	Name            string
	MaxPumpsPerWeek int
}

// =============================================================================
// CAPACITY CONFIG
// =============================================================================

// Unlimited is the sentinel capacity for stages that impose no limit.
const Unlimited = int(^uint32(0) >> 1)

// DefaultDaysPerUnit is the standard worker-days of work content assumed
// per unit when sizing weekly start capacity.
var DefaultDaysPerUnit = decimal.NewFromInt(4)

// CapacityConfig is the complete capacity picture the scheduler reads:
// staffing per department, vendor lanes for powder-coat, and the work week.
type CapacityConfig struct {
	Staffing map[Department]Staffing
	Vendors  []VendorLane
	WorkWeek WorkWeek
}

// DefaultCapacityConfig returns a config with empty staffing and the
// nominal work week.
func DefaultCapacityConfig() CapacityConfig {
	return CapacityConfig{
		Staffing: make(map[Department]Staffing),
		WorkWeek: DefaultWorkWeek(),
	}
}

// WeeklyHours returns the department's scheduled labor hours for one week:
// employee count x the configured per-weekday hours.
func (c CapacityConfig) WeeklyHours(dept Department) decimal.Decimal {
	week := c.WorkWeek
	if week == nil {
		week = DefaultWorkWeek()
	}
	return c.Staffing[dept].EmployeeCount.Mul(week.Total())
}

// WeeklyCapacity returns how many units, each consuming daysPerUnit
// worker-days of the 8-hour standard, the staffing level can start per
// week. Returns Unlimited when daysPerUnit resolves to zero
// man-hours-per-unit.
func WeeklyCapacity(s Staffing, daysPerUnit decimal.Decimal) int {
	hoursPerUnit := daysPerUnit.Mul(standardDayHours)
	if hoursPerUnit.IsZero() {
		return Unlimited
	}
	weekly := s.DailyManHours.Mul(workdaysPerWeek)
	return int(weekly.Div(hoursPerUnit).Floor().IntPart())
}

// StageCapacity returns the weekly start capacity for a stage:
// staffed stages use WeeklyCapacity, powder-coat sums vendor lane limits,
// and everything else (queue, staged-for-powder, closed) is unlimited.
func (c CapacityConfig) StageCapacity(stage Stage, daysPerUnit decimal.Decimal) int {
	if dept, ok := DepartmentForStage(stage); ok {
		return WeeklyCapacity(c.Staffing[dept], daysPerUnit)
	}
	if stage == StagePowderCoat {
		total := 0
		for _, v := range c.Vendors {
			total += v.MaxPumpsPerWeek
		}
		return total
	}
	return Unlimited
}
