/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Units:
    UnitDTO, CreateUnitRequest, UpdateUnitRequest, MoveStageRequest,
    ForecastRequest

  Timeline/Calendar:
    StageBlockDTO, WeekSegmentDTO, CalendarWeekResponse

  Capacity:
    CapacityDTO, StaffingDTO, UpdateStaffingRequest, VendorLaneDTO

  Scheduling:
    AutoScheduleResponse, LockDateRequest

  Catalog:
    CatalogEntryDTO

PRECISION:
  Fractional grid positions (start column, span) are serialized as
  decimal strings, never float64, so "0.375" round-trips exactly.

SEE ALSO:
  - handlers.go: Uses these types
  - production/types.go: Domain model these wrap
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/pumpline/production"
)

// =============================================================================
// UNIT TYPES
// =============================================================================

// UnitDTO represents a pump unit in API responses.
type UnitDTO struct {
	ID              string  `json:"id"`
	Serial          string  `json:"serial"`
	Model           string  `json:"model"`
	Customer        string  `json:"customer,omitempty"`
	PONumber        string  `json:"po_number,omitempty"`
	Stage           string  `json:"stage"`
	Priority        int     `json:"priority"`
	PriorityLabel   string  `json:"priority_label"`
	DueDate         string  `json:"due_date,omitempty"`
	ForecastStart   *string `json:"forecast_start,omitempty"`
	ForecastEnd     *string `json:"forecast_end,omitempty"`
	Paused          bool    `json:"paused"`
	PausedAt        *string `json:"paused_at,omitempty"`
	PausedStage     string  `json:"paused_stage,omitempty"`
	PauseReason     string  `json:"pause_reason,omitempty"`
	TotalPausedDays int     `json:"total_paused_days"`
	LastUpdate      string  `json:"last_update"`
}

// CreateUnitRequest is the request to create a unit.
type CreateUnitRequest struct {
	Serial   string `json:"serial"`
	Model    string `json:"model"`
	Customer string `json:"customer"`
	PONumber string `json:"po_number"`
	Priority int    `json:"priority"`
	DueDate  string `json:"due_date"`
}

// UpdateUnitRequest carries partial field edits. Nil fields are untouched.
// A serial is rejected by the engine: serials are immutable.
type UpdateUnitRequest struct {
	Serial   *string `json:"serial,omitempty"`
	Model    *string `json:"model,omitempty"`
	Customer *string `json:"customer,omitempty"`
	PONumber *string `json:"po_number,omitempty"`
	Priority *int    `json:"priority,omitempty"`
	DueDate  *string `json:"due_date,omitempty"`
}

// MoveStageRequest names the destination stage for a move.
type MoveStageRequest struct {
	Stage string `json:"stage"`
}

// ForecastRequest sets a unit's forecast start date.
type ForecastRequest struct {
	Start string `json:"start"` // RFC3339 or YYYY-MM-DD
}

// =============================================================================
// TIMELINE AND CALENDAR TYPES
// =============================================================================

// StageBlockDTO is one projected stage interval.
type StageBlockDTO struct {
	Stage string `json:"stage"`
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

// WeekSegmentDTO is a stage block clipped to one calendar week, with
// CSS-grid placement values precomputed server-side.
type WeekSegmentDTO struct {
	UnitID         string `json:"unit_id"`
	Stage          string `json:"stage"`
	Row            int    `json:"row"`
	StartCol       string `json:"start_col"` // fractional days, decimal string
	Span           string `json:"span"`
	ContinuesLeft  bool   `json:"continues_left"`
	ContinuesRight bool   `json:"continues_right"`
	ColumnStart    int    `json:"column_start"`
	ColumnEnd      string `json:"column_end"`
	MarginLeft     string `json:"margin_left"`
	Width          string `json:"width"`
}

// CalendarWeekResponse wraps one projected week.
type CalendarWeekResponse struct {
	WeekStart string           `json:"week_start"`
	Days      int              `json:"days"`
	Segments  []WeekSegmentDTO `json:"segments"`
}

// =============================================================================
// CAPACITY TYPES
// =============================================================================

// StaffingDTO is one department's staffing triangle.
type StaffingDTO struct {
	Department    string `json:"department"`
	EmployeeCount string `json:"employee_count"`
	Efficiency    string `json:"efficiency"`
	DailyManHours string `json:"daily_man_hours"`
	WeeklyPumps   int    `json:"weekly_pumps"` // -1 when unlimited
}

// UpdateStaffingRequest drives the reactive triangle. Exactly one field
// should be set; the others are recomputed.
type UpdateStaffingRequest struct {
	EmployeeCount *float64 `json:"employee_count,omitempty"`
	Efficiency    *float64 `json:"efficiency,omitempty"`
	DailyManHours *float64 `json:"daily_man_hours,omitempty"`
}

// VendorLaneDTO is one powder-coat vendor lane.
type VendorLaneDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MaxPumpsPerWeek int    `json:"max_pumps_per_week"`
}

// CapacityDTO is the full capacity picture.
type CapacityDTO struct {
	Staffing           []StaffingDTO   `json:"staffing"`
	Vendors            []VendorLaneDTO `json:"vendors"`
	PowderCoatPerWeek  int             `json:"powder_coat_per_week"`
	WorkWeekTotalHours string          `json:"work_week_total_hours"`
}

// =============================================================================
// SCHEDULING TYPES
// =============================================================================

// AutoScheduleResponse reports one completed scheduling pass.
type AutoScheduleResponse struct {
	Scheduled int `json:"scheduled"`
	Skipped   int `json:"skipped"`
}

// LockDateRequest sets or clears the scheduling lock date.
type LockDateRequest struct {
	LockDate *string `json:"lock_date"` // YYYY-MM-DD, null clears
}

// LockDateResponse reports the current lock date.
type LockDateResponse struct {
	LockDate *string `json:"lock_date"`
}

// WIPLimitsDTO maps stage names to active caps. A null value means the
// stage is unlimited, so it survives a set/get round trip unchanged.
type WIPLimitsDTO map[string]*int

// =============================================================================
// CATALOG TYPES
// =============================================================================

// CatalogEntryDTO is one model's work content.
type CatalogEntryDTO struct {
	Model            string  `json:"model"`
	FabricationDays  string  `json:"fabrication_days"`
	PowderCoatDays   string  `json:"powder_coat_days"`
	AssemblyDays     string  `json:"assembly_days"`
	ShipDays         string  `json:"ship_days"`
	FabricationHours *string `json:"fabrication_hours,omitempty"`
	AssemblyHours    *string `json:"assembly_hours,omitempty"`
	ShipHours        *string `json:"ship_hours,omitempty"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toUnitDTO(u production.Pump) UnitDTO {
	return UnitDTO{
		ID:              string(u.ID),
		Serial:          u.Serial,
		Model:           u.Model,
		Customer:        u.Customer,
		PONumber:        u.PONumber,
		Stage:           string(u.Stage),
		Priority:        int(u.Priority),
		PriorityLabel:   u.Priority.String(),
		DueDate:         u.DueDate,
		ForecastStart:   timeStr(u.ForecastStart),
		ForecastEnd:     timeStr(u.ForecastEnd),
		Paused:          u.Paused,
		PausedAt:        timeStr(u.PausedAt),
		PausedStage:     string(u.PausedStage),
		PauseReason:     string(u.PauseReason),
		TotalPausedDays: u.TotalPausedDays,
		LastUpdate:      u.LastUpdate.UTC().Format(time.RFC3339),
	}
}

func toUnitDTOs(units []production.Pump) []UnitDTO {
	dtos := make([]UnitDTO, 0, len(units))
	for _, u := range units {
		dtos = append(dtos, toUnitDTO(u))
	}
	return dtos
}

func toStageBlockDTOs(blocks []production.StageBlock) []StageBlockDTO {
	dtos := make([]StageBlockDTO, 0, len(blocks))
	for _, b := range blocks {
		dtos = append(dtos, StageBlockDTO{
			Stage: string(b.Stage),
			Start: b.Start.UTC().Format(time.RFC3339),
			End:   b.End.UTC().Format(time.RFC3339),
			Days:  b.Days,
		})
	}
	return dtos
}

func toWeekSegmentDTO(s production.WeekSegment) WeekSegmentDTO {
	p := s.Placement(production.WorkWeekDays)
	return WeekSegmentDTO{
		UnitID:         string(s.UnitID),
		Stage:          string(s.Stage),
		Row:            s.Row,
		StartCol:       s.StartCol.String(),
		Span:           s.Span.String(),
		ContinuesLeft:  s.ContinuesLeft,
		ContinuesRight: s.ContinuesRight,
		ColumnStart:    p.ColumnStart,
		ColumnEnd:      p.ColumnEnd,
		MarginLeft:     p.MarginLeft,
		Width:          p.Width,
	}
}

func toStaffingDTO(dept production.Department, s production.Staffing) StaffingDTO {
	weekly := production.WeeklyCapacity(s, production.DefaultDaysPerUnit)
	if weekly == production.Unlimited {
		weekly = -1
	}
	return StaffingDTO{
		Department:    string(dept),
		EmployeeCount: s.EmployeeCount.String(),
		Efficiency:    s.Efficiency.String(),
		DailyManHours: s.DailyManHours.String(),
		WeeklyPumps:   weekly,
	}
}

func timeStr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func decStr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
