/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Unit lifecycle over HTTP (create, move, pause, resume)
- Error taxonomy (400/404/409)
- Forecast and timeline endpoints
- Capacity and WIP limit endpoints
*/
package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pumpline/api"
	"github.com/warp/pumpline/catalog"
	"github.com/warp/pumpline/production"
	"github.com/warp/pumpline/production/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *production.Floor) {
	t.Helper()
	mem := store.NewMemory()
	cat := catalog.Standard()
	floor := production.NewFloor(cat, mem, mem)
	floor.Clock = func() time.Time {
		return time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
	}

	srv := httptest.NewServer(api.NewRouter(api.NewHandler(floor, cat)))
	t.Cleanup(srv.Close)
	return srv, floor
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createTestUnit(t *testing.T, srv *httptest.Server, serial string) api.UnitDTO {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/units", api.CreateUnitRequest{
		Serial:  serial,
		Model:   "DD-6 SAFE",
		DueDate: "2025-03-01",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[api.UnitDTO](t, resp)
}

// =============================================================================
// UNIT ENDPOINTS
// =============================================================================

func TestAPI_CreateAndListUnits(t *testing.T) {
	srv, _ := newTestServer(t)

	created := createTestUnit(t, srv, "P-1001")
	assert.Equal(t, "QUEUE", created.Stage)
	assert.NotEmpty(t, created.ID)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/units", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	units := decode[[]api.UnitDTO](t, resp)
	require.Len(t, units, 1)
	assert.Equal(t, "P-1001", units[0].Serial)
}

func TestAPI_CreateUnit_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/units", api.CreateUnitRequest{Model: "DD-6 SAFE"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/units", api.CreateUnitRequest{
		Serial: "P-1001", Model: "DD-6 SAFE", DueDate: "03/01/2025",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CreateUnit_DuplicateSerial_Conflict(t *testing.T) {
	srv, _ := newTestServer(t)
	createTestUnit(t, srv, "P-1001")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/units", api.CreateUnitRequest{
		Serial: "P-1001", Model: "DD-8 SAFE",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_GetUnit_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/units/ghost", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_UpdateUnit_SerialImmutable(t *testing.T) {
	srv, _ := newTestServer(t)
	u := createTestUnit(t, srv, "P-1001")

	serial := "P-9999"
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/units/"+u.ID,
		api.UpdateUnitRequest{Serial: &serial})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_MoveStage_AcceptsLegacyAliases(t *testing.T) {
	srv, _ := newTestServer(t)
	u := createTestUnit(t, srv, "P-1001")

	for _, stage := range []string{"FABRICATION", "STAGED FOR POWDER", "POWDER COAT", "ASSEMBLY", "SHIPPING"} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/units/"+u.ID+"/move",
			api.MoveStageRequest{Stage: stage})
		require.Equal(t, http.StatusOK, resp.StatusCode, "move to %s", stage)
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/units/"+u.ID, nil)
	got := decode[api.UnitDTO](t, resp)
	assert.Equal(t, "SHIP", got.Stage)
}

func TestAPI_MoveStage_SkipRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	u := createTestUnit(t, srv, "P-1001")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/units/"+u.ID+"/move",
		api.MoveStageRequest{Stage: "ASSEMBLY"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// PAUSE / RESUME
// =============================================================================

func TestAPI_PauseResume(t *testing.T) {
	srv, _ := newTestServer(t)
	u := createTestUnit(t, srv, "P-1001")

	doJSON(t, http.MethodPost, srv.URL+"/api/units/"+u.ID+"/move",
		api.MoveStageRequest{Stage: "FABRICATION"})

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/units/"+u.ID+"/pause", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	paused := decode[api.UnitDTO](t, resp)
	assert.True(t, paused.Paused)
	assert.Equal(t, "manual", paused.PauseReason)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/units/"+u.ID+"/resume", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resumed := decode[api.UnitDTO](t, resp)
	assert.False(t, resumed.Paused)
}

func TestAPI_Resume_WIPLimit_Conflict(t *testing.T) {
	srv, floor := newTestServer(t)

	limit := 1
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/wip-limits",
		api.WIPLimitsDTO{"FABRICATION": &limit})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	first := createTestUnit(t, srv, "P-1001")
	second := createTestUnit(t, srv, "P-1002")
	doJSON(t, http.MethodPost, srv.URL+"/api/units/"+first.ID+"/move",
		api.MoveStageRequest{Stage: "FABRICATION"})
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/units/"+second.ID+"/move",
		api.MoveStageRequest{Stage: "FABRICATION"})
	moved := decode[api.UnitDTO](t, resp)
	require.True(t, moved.Paused, "second unit auto-pauses at the limit")
	assert.Equal(t, "auto", moved.PauseReason)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/units/"+second.ID+"/resume", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// State unchanged after the rejected resume.
	got, err := floor.Unit(production.UnitID(second.ID))
	require.NoError(t, err)
	assert.True(t, got.Paused)
}

func TestAPI_WIPLimits_NullMeansUnlimited(t *testing.T) {
	srv, _ := newTestServer(t)

	// GIVEN a limits payload that marks fabrication as unlimited
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/wip-limits",
		api.WIPLimitsDTO{"FABRICATION": nil})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// WHEN the only unit in the system enters fabrication
	u := createTestUnit(t, srv, "P-1001")
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/units/"+u.ID+"/move",
		api.MoveStageRequest{Stage: "FABRICATION"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// THEN it stays active: null is no cap, not a cap of zero
	moved := decode[api.UnitDTO](t, resp)
	assert.False(t, moved.Paused)

	// AND the stage reads back as null
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/wip-limits", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	limits := decode[api.WIPLimitsDTO](t, resp)
	limit, ok := limits["FABRICATION"]
	require.True(t, ok)
	assert.Nil(t, limit)
}

// =============================================================================
// FORECAST AND TIMELINE
// =============================================================================

func TestAPI_ForecastLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	u := createTestUnit(t, srv, "P-1001")

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/units/"+u.ID+"/forecast",
		api.ForecastRequest{Start: "2025-01-13"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[api.UnitDTO](t, resp)
	require.NotNil(t, got.ForecastStart)
	require.NotNil(t, got.ForecastEnd)
	assert.Equal(t, "QUEUE", got.Stage, "forecast never touches the stage")

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/units/"+u.ID+"/forecast", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cleared := decode[api.UnitDTO](t, resp)
	assert.Nil(t, cleared.ForecastStart)
}

func TestAPI_Timeline(t *testing.T) {
	srv, _ := newTestServer(t)
	u := createTestUnit(t, srv, "P-1001")

	doJSON(t, http.MethodPut, srv.URL+"/api/units/"+u.ID+"/forecast",
		api.ForecastRequest{Start: "2025-01-13"})

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/units/"+u.ID+"/timeline", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	blocks := decode[[]api.StageBlockDTO](t, resp)
	require.Len(t, blocks, 4)
	assert.Equal(t, "FABRICATION", blocks[0].Stage)
	assert.Equal(t, "SHIP", blocks[3].Stage)
}

func TestAPI_CalendarWeek(t *testing.T) {
	srv, _ := newTestServer(t)
	u := createTestUnit(t, srv, "P-1001")
	doJSON(t, http.MethodPut, srv.URL+"/api/units/"+u.ID+"/forecast",
		api.ForecastRequest{Start: "2025-01-13"})

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/calendar/week?start=2025-01-13", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	week := decode[api.CalendarWeekResponse](t, resp)
	assert.Equal(t, "2025-01-13", week.WeekStart)
	assert.Equal(t, 5, week.Days)
	assert.NotEmpty(t, week.Segments)
	for _, s := range week.Segments {
		assert.Equal(t, u.ID, s.UnitID)
		assert.GreaterOrEqual(t, s.ColumnStart, 1)
	}
}

// =============================================================================
// SCHEDULING
// =============================================================================

func TestAPI_AutoSchedule(t *testing.T) {
	srv, _ := newTestServer(t)

	hours := 32.0
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/capacity/fabrication",
		api.UpdateStaffingRequest{DailyManHours: &hours})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	createTestUnit(t, srv, "P-1001")
	createTestUnit(t, srv, "P-1002")

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/schedule/auto", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[api.AutoScheduleResponse](t, resp)
	assert.Equal(t, 2, result.Scheduled)
	assert.Equal(t, 0, result.Skipped)
}

func TestAPI_LockDate(t *testing.T) {
	srv, _ := newTestServer(t)

	lock := "2025-02-01"
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/settings/lock-date",
		api.LockDateRequest{LockDate: &lock})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/settings/lock-date", nil)
	got := decode[api.LockDateResponse](t, resp)
	require.NotNil(t, got.LockDate)
	assert.Equal(t, "2025-02-01", *got.LockDate)

	// Null clears.
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/settings/lock-date",
		api.LockDateRequest{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cleared := decode[api.LockDateResponse](t, resp)
	assert.Nil(t, cleared.LockDate)
}

// =============================================================================
// CAPACITY
// =============================================================================

func TestAPI_StaffingTriangle(t *testing.T) {
	srv, _ := newTestServer(t)

	count := 4.0
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/capacity/fabrication",
		api.UpdateStaffingRequest{EmployeeCount: &count})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	eff := 0.875
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/capacity/fabrication",
		api.UpdateStaffingRequest{Efficiency: &eff})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[api.StaffingDTO](t, resp)
	assert.Equal(t, "28", got.DailyManHours)

	// Exactly-one-field rule.
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/capacity/fabrication",
		api.UpdateStaffingRequest{EmployeeCount: &count, Efficiency: &eff})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/capacity/painting",
		api.UpdateStaffingRequest{EmployeeCount: &count})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_Vendors(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/capacity/vendors", []api.VendorLaneDTO{
		{ID: "v1", Name: "Acme Coatings", MaxPumpsPerWeek: 3},
		{ID: "v2", Name: "Summit Finishing", MaxPumpsPerWeek: 5},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/capacity", nil)
	capDTO := decode[api.CapacityDTO](t, resp)
	assert.Equal(t, 8, capDTO.PowderCoatPerWeek)
	assert.Len(t, capDTO.Vendors, 2)
	assert.Equal(t, "36", capDTO.WorkWeekTotalHours)
}

func TestAPI_Catalog(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/catalog", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := decode[[]api.CatalogEntryDTO](t, resp)
	require.NotEmpty(t, entries)

	found := false
	for _, e := range entries {
		if e.Model == "DD-6 SAFE" {
			found = true
			assert.Equal(t, "1.5", e.FabricationDays)
			assert.Equal(t, "0.25", e.ShipDays)
		}
	}
	assert.True(t, found, "standard catalog must include DD-6 SAFE")
}

func TestAPI_ListUnits_StageFilter(t *testing.T) {
	srv, _ := newTestServer(t)
	u := createTestUnit(t, srv, "P-1001")
	createTestUnit(t, srv, "P-1002")

	doJSON(t, http.MethodPost, srv.URL+"/api/units/"+u.ID+"/move",
		api.MoveStageRequest{Stage: "FABRICATION"})

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/units?stage=FABRICATION", nil)
	units := decode[[]api.UnitDTO](t, resp)
	require.Len(t, units, 1)
	assert.Equal(t, "P-1001", units[0].Serial)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/units?stage=PAINTING", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
