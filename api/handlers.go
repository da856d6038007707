/*
handlers.go - HTTP API handlers for the production tracking system

PURPOSE:
  Exposes the production floor engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Units:
    GET    /api/units                   List all units
    POST   /api/units                   Create unit (enters QUEUE)
    GET    /api/units/{id}              Get unit details
    PUT    /api/units/{id}              Edit unit fields
    POST   /api/units/{id}/move         Advance to next stage
    POST   /api/units/{id}/pause        Manual pause
    POST   /api/units/{id}/resume       Resume (WIP-limit checked)
    PUT    /api/units/{id}/forecast     Set forecast start
    DELETE /api/units/{id}/forecast     Clear forecast
    GET    /api/units/{id}/timeline     Projected stage blocks

  Calendar:
    GET    /api/calendar/week           Week projection (?start=YYYY-MM-DD)

  Scheduling:
    POST   /api/schedule/auto           Run one auto-schedule pass
    GET    /api/settings/lock-date      Read lock date
    PUT    /api/settings/lock-date      Set/clear lock date

  Capacity:
    GET    /api/capacity                Full capacity picture
    PUT    /api/capacity/{department}   Reactive staffing update
    PUT    /api/capacity/vendors        Replace vendor lanes
    GET    /api/wip-limits              Read WIP limits
    PUT    /api/wip-limits              Replace WIP limits

  Catalog:
    GET    /api/catalog                 Work-content catalog

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Floor:   The single-writer production state container
  - Catalog: Work-content reference data

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (floor)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, illegal transition
  - 404: Resource not found
  - 409: WIP limit conflict, duplicate serial
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - production/floor.go: The engine these delegate to
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/pumpline/catalog"
	"github.com/warp/pumpline/production"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Floor   *production.Floor
	Catalog *catalog.Static
}

// NewHandler creates a new handler over the given floor and catalog.
func NewHandler(floor *production.Floor, cat *catalog.Static) *Handler {
	return &Handler{Floor: floor, Catalog: cat}
}

// =============================================================================
// UNIT HANDLERS
// =============================================================================

// ListUnits returns all units, serial-sorted. An optional ?stage= filter
// restricts the list to one pipeline stage.
func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	units := h.Floor.Units()

	if raw := r.URL.Query().Get("stage"); raw != "" {
		stage, err := production.ParseStage(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid stage filter", err)
			return
		}
		filtered := units[:0]
		for _, u := range units {
			if u.Stage == stage {
				filtered = append(filtered, u)
			}
		}
		units = filtered
	}

	writeJSON(w, http.StatusOK, toUnitDTOs(units))
}

// CreateUnit creates a unit in QUEUE.
func (h *Handler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var req CreateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Serial == "" {
		writeError(w, http.StatusBadRequest, "serial is required", nil)
		return
	}
	if req.Model == "" {
		writeError(w, http.StatusBadRequest, "model is required", nil)
		return
	}
	if req.DueDate != "" {
		if _, err := time.Parse("2006-01-02", req.DueDate); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid due_date format (use YYYY-MM-DD)", err)
			return
		}
	}

	unit, err := h.Floor.CreateUnit(r.Context(), production.NewUnit{
		Serial:   req.Serial,
		Model:    req.Model,
		Customer: req.Customer,
		PONumber: req.PONumber,
		Priority: production.Priority(req.Priority),
		DueDate:  req.DueDate,
	})
	if err != nil {
		writeDomainError(w, "Failed to create unit", err)
		return
	}

	writeJSON(w, http.StatusCreated, toUnitDTO(unit))
}

// GetUnit returns one unit by ID.
func (h *Handler) GetUnit(w http.ResponseWriter, r *http.Request) {
	id := production.UnitID(chi.URLParam(r, "id"))

	unit, err := h.Floor.Unit(id)
	if err != nil {
		writeDomainError(w, "Failed to get unit", err)
		return
	}
	writeJSON(w, http.StatusOK, toUnitDTO(unit))
}

// UpdateUnit applies partial field edits.
func (h *Handler) UpdateUnit(w http.ResponseWriter, r *http.Request) {
	id := production.UnitID(chi.URLParam(r, "id"))

	var req UpdateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.DueDate != nil && *req.DueDate != "" {
		if _, err := time.Parse("2006-01-02", *req.DueDate); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid due_date format (use YYYY-MM-DD)", err)
			return
		}
	}

	edit := production.UnitEdit{
		Serial:   req.Serial,
		Model:    req.Model,
		Customer: req.Customer,
		PONumber: req.PONumber,
		DueDate:  req.DueDate,
	}
	if req.Priority != nil {
		p := production.Priority(*req.Priority)
		edit.Priority = &p
	}

	unit, err := h.Floor.UpdateUnit(r.Context(), id, edit)
	if err != nil {
		writeDomainError(w, "Failed to update unit", err)
		return
	}
	writeJSON(w, http.StatusOK, toUnitDTO(unit))
}

// MoveStage advances a unit one pipeline step.
func (h *Handler) MoveStage(w http.ResponseWriter, r *http.Request) {
	id := production.UnitID(chi.URLParam(r, "id"))

	var req MoveStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	stage, err := production.ParseStage(req.Stage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid stage", err)
		return
	}

	unit, err := h.Floor.MoveStage(r.Context(), id, stage)
	if err != nil {
		writeDomainError(w, "Failed to move unit", err)
		return
	}
	writeJSON(w, http.StatusOK, toUnitDTO(unit))
}

// PauseUnit pauses a unit in its current work stage.
func (h *Handler) PauseUnit(w http.ResponseWriter, r *http.Request) {
	id := production.UnitID(chi.URLParam(r, "id"))

	unit, err := h.Floor.Pause(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to pause unit", err)
		return
	}
	writeJSON(w, http.StatusOK, toUnitDTO(unit))
}

// ResumeUnit resumes a paused unit, subject to the WIP limit.
func (h *Handler) ResumeUnit(w http.ResponseWriter, r *http.Request) {
	id := production.UnitID(chi.URLParam(r, "id"))

	unit, err := h.Floor.Resume(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to resume unit", err)
		return
	}
	writeJSON(w, http.StatusOK, toUnitDTO(unit))
}

// SetForecast assigns a forecast start date and derives the end.
func (h *Handler) SetForecast(w http.ResponseWriter, r *http.Request) {
	id := production.UnitID(chi.URLParam(r, "id"))

	var req ForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := parseDate(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD or RFC3339)", err)
		return
	}

	unit, err := h.Floor.SetForecast(r.Context(), id, start)
	if err != nil {
		writeDomainError(w, "Failed to set forecast", err)
		return
	}
	writeJSON(w, http.StatusOK, toUnitDTO(unit))
}

// ClearForecast removes the forecast hint, returning the unit to backlog.
func (h *Handler) ClearForecast(w http.ResponseWriter, r *http.Request) {
	id := production.UnitID(chi.URLParam(r, "id"))

	unit, err := h.Floor.ClearForecast(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to clear forecast", err)
		return
	}
	writeJSON(w, http.StatusOK, toUnitDTO(unit))
}

// GetTimeline returns a unit's projected stage blocks.
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	id := production.UnitID(chi.URLParam(r, "id"))

	blocks, err := h.Floor.Timeline(id)
	if err != nil {
		writeDomainError(w, "Failed to build timeline", err)
		return
	}
	writeJSON(w, http.StatusOK, toStageBlockDTOs(blocks))
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// GetCalendarWeek projects all visible units onto one work week.
// GET /api/calendar/week?start=YYYY-MM-DD (defaults to the current week)
func (h *Handler) GetCalendarWeek(w http.ResponseWriter, r *http.Request) {
	weekStart := production.WeekStart(time.Now().UTC())
	if raw := r.URL.Query().Get("start"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", err)
			return
		}
		weekStart = production.WeekStart(t)
	}

	segments := h.Floor.CalendarWeek(weekStart)
	dtos := make([]WeekSegmentDTO, 0, len(segments))
	for _, s := range segments {
		dtos = append(dtos, toWeekSegmentDTO(s))
	}

	writeJSON(w, http.StatusOK, CalendarWeekResponse{
		WeekStart: weekStart.Format("2006-01-02"),
		Days:      production.WorkWeekDays,
		Segments:  dtos,
	})
}

// =============================================================================
// SCHEDULING HANDLERS
// =============================================================================

// RunAutoSchedule triggers one greedy placement pass over the backlog.
func (h *Handler) RunAutoSchedule(w http.ResponseWriter, r *http.Request) {
	result := h.Floor.AutoSchedule(r.Context())
	writeJSON(w, http.StatusOK, AutoScheduleResponse{
		Scheduled: result.Scheduled,
		Skipped:   result.Skipped,
	})
}

// GetLockDate returns the current scheduling lock date.
func (h *Handler) GetLockDate(w http.ResponseWriter, r *http.Request) {
	lock := h.Floor.LockDate()
	var resp LockDateResponse
	if lock != nil {
		s := lock.Format("2006-01-02")
		resp.LockDate = &s
	}
	writeJSON(w, http.StatusOK, resp)
}

// SetLockDate sets or clears the scheduling lock date.
func (h *Handler) SetLockDate(w http.ResponseWriter, r *http.Request) {
	var req LockDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var lock *time.Time
	if req.LockDate != nil && *req.LockDate != "" {
		t, err := time.Parse("2006-01-02", *req.LockDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid lock_date format (use YYYY-MM-DD)", err)
			return
		}
		lock = &t
	}

	h.Floor.SetLockDate(r.Context(), lock)

	var resp LockDateResponse
	if lock != nil {
		s := lock.Format("2006-01-02")
		resp.LockDate = &s
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// CAPACITY HANDLERS
// =============================================================================

// GetCapacity returns the full capacity picture.
func (h *Handler) GetCapacity(w http.ResponseWriter, r *http.Request) {
	cfg := h.Floor.Capacity()

	staffing := make([]StaffingDTO, 0, len(production.Departments))
	for _, dept := range production.Departments {
		staffing = append(staffing, toStaffingDTO(dept, cfg.Staffing[dept]))
	}

	vendors := make([]VendorLaneDTO, 0, len(cfg.Vendors))
	for _, v := range cfg.Vendors {
		vendors = append(vendors, VendorLaneDTO{
			ID:              v.ID,
			Name:            v.Name,
			MaxPumpsPerWeek: v.MaxPumpsPerWeek,
		})
	}

	writeJSON(w, http.StatusOK, CapacityDTO{
		Staffing:           staffing,
		Vendors:            vendors,
		PowderCoatPerWeek:  cfg.StageCapacity(production.StagePowderCoat, production.DefaultDaysPerUnit),
		WorkWeekTotalHours: cfg.WorkWeek.Total().String(),
	})
}

// UpdateStaffing applies a reactive-triangle update to one department.
// PUT /api/capacity/{department}
func (h *Handler) UpdateStaffing(w http.ResponseWriter, r *http.Request) {
	dept := production.Department(chi.URLParam(r, "department"))
	if !validDepartment(dept) {
		writeError(w, http.StatusNotFound, "Unknown department", nil)
		return
	}

	var req UpdateStaffingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	set := 0
	if req.EmployeeCount != nil {
		set++
	}
	if req.Efficiency != nil {
		set++
	}
	if req.DailyManHours != nil {
		set++
	}
	if set != 1 {
		writeError(w, http.StatusBadRequest,
			"Exactly one of employee_count, efficiency, daily_man_hours must be set", nil)
		return
	}

	staffing, err := h.Floor.UpdateStaffing(r.Context(), dept, production.StaffingUpdate{
		EmployeeCount: req.EmployeeCount,
		Efficiency:    req.Efficiency,
		DailyManHours: req.DailyManHours,
	})
	if err != nil {
		writeDomainError(w, "Failed to update staffing", err)
		return
	}
	writeJSON(w, http.StatusOK, toStaffingDTO(dept, staffing))
}

// SetVendors replaces the powder-coat vendor lane set.
func (h *Handler) SetVendors(w http.ResponseWriter, r *http.Request) {
	var req []VendorLaneDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	lanes := make([]production.VendorLane, 0, len(req))
	for _, v := range req {
		if v.Name == "" {
			writeError(w, http.StatusBadRequest, "vendor name is required", nil)
			return
		}
		if v.MaxPumpsPerWeek < 0 {
			writeError(w, http.StatusBadRequest, "max_pumps_per_week must be >= 0", nil)
			return
		}
		lanes = append(lanes, production.VendorLane{
			ID:              v.ID,
			Name:            v.Name,
			MaxPumpsPerWeek: v.MaxPumpsPerWeek,
		})
	}

	h.Floor.SetVendors(r.Context(), lanes)

	cfg := h.Floor.Capacity()
	out := make([]VendorLaneDTO, 0, len(cfg.Vendors))
	for _, v := range cfg.Vendors {
		out = append(out, VendorLaneDTO{ID: v.ID, Name: v.Name, MaxPumpsPerWeek: v.MaxPumpsPerWeek})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetWIPLimits returns the per-stage active caps. Unlimited stages are
// rendered with a null value.
func (h *Handler) GetWIPLimits(w http.ResponseWriter, r *http.Request) {
	limits := h.Floor.WIPLimits()
	dto := make(WIPLimitsDTO, len(production.ProductionStages))
	for _, stage := range production.ProductionStages {
		if max, ok := limits[stage]; ok {
			v := max
			dto[string(stage)] = &v
		} else {
			dto[string(stage)] = nil
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// SetWIPLimits replaces the per-stage active caps. A null value means
// unlimited and drops any cap configured for that stage.
func (h *Handler) SetWIPLimits(w http.ResponseWriter, r *http.Request) {
	var req WIPLimitsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	limits := make(production.WIPLimits, len(req))
	for raw, max := range req {
		stage, err := production.ParseStage(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid stage in limits", err)
			return
		}
		if max == nil {
			continue
		}
		if *max < 0 {
			writeError(w, http.StatusBadRequest, "limit must be >= 0", nil)
			return
		}
		limits[stage] = *max
	}

	h.Floor.SetWIPLimits(r.Context(), limits)
	writeJSON(w, http.StatusOK, req)
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// GetCatalog returns the work-content catalog.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	entries := h.Catalog.Entries()
	dtos := make([]CatalogEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, CatalogEntryDTO{
			Model:            e.Model,
			FabricationDays:  e.Content.FabricationDays.String(),
			PowderCoatDays:   e.Content.PowderCoatDays.String(),
			AssemblyDays:     e.Content.AssemblyDays.String(),
			ShipDays:         e.Content.ShipDays.String(),
			FabricationHours: decStr(e.Content.FabricationHours),
			AssemblyHours:    decStr(e.Content.AssemblyHours),
			ShipHours:        decStr(e.Content.ShipHours),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case production.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, production.ErrWIPLimitReached),
		errors.Is(err, production.ErrDuplicateSerial):
		writeError(w, http.StatusConflict, message, err)
	case production.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

// parseDate accepts YYYY-MM-DD or full RFC3339 timestamps.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func validDepartment(d production.Department) bool {
	for _, known := range production.Departments {
		if d == known {
			return true
		}
	}
	return false
}
