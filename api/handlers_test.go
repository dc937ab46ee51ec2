/*
handlers_test.go - HTTP-level tests for the API

Tests run full request cycles against an httptest server backed by the
in-memory store, so approval flows exercise the real reconciliation path.
*/
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hr-engine/api"
	"github.com/warp/hr-engine/hr"
	memstore "github.com/warp/hr-engine/hr/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *memstore.Memory) {
	t.Helper()
	mem := memstore.NewMemory()

	leaves := &hr.LeaveService{
		Leaves:          mem,
		Attendance:      mem,
		Employees:       mem,
		Runs:            mem,
		Reconciler:      hr.NewReconciler(mem),
		Clock:           hr.SystemClock{},
		MaxSyncAttempts: 3,
	}
	reports := &hr.ReportAggregator{Employees: mem, Attendance: mem, Leaves: mem}

	cal, err := hr.NewCalendar("UTC")
	require.NoError(t, err)

	h := api.NewHandler(leaves, reports, cal, mem)
	h.Resetter = mem

	srv := httptest.NewServer(api.NewRouter(h, api.RouterOptions{EnableScenarios: true}))
	t.Cleanup(srv.Close)
	return srv, mem
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

func decodeInto(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func seedEmployeeHTTP(t *testing.T, srv *httptest.Server, id string) {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/employees", map[string]string{
		"id": id, "name": "Worker " + id, "hire_date": "2023-06-01",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func seedAttendanceHTTP(t *testing.T, srv *httptest.Server, emp, date string) {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/attendance", map[string]string{
		"employee_id": emp, "date": date, "status": "present",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

// =============================================================================
// LEAVE FLOW
// =============================================================================

func TestLeaveFlow_CreateApproveReport(t *testing.T) {
	// Full happy path: employee -> attendance -> leave -> approve ->
	// attendance report reflects the synced leave days.

	srv, _ := newTestServer(t)

	seedEmployeeHTTP(t, srv, "emp-1")
	seedAttendanceHTTP(t, srv, "emp-1", "2024-01-09")

	// Create leave
	resp := doJSON(t, http.MethodPost, srv.URL+"/leaves", map[string]string{
		"employee_id": "emp-1",
		"start_date":  "2024-01-10",
		"end_date":    "2024-01-12",
		"type":        "annual",
		"reason":      "family trip",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var leave struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeInto(t, resp, &leave)
	assert.Equal(t, "pending", leave.Status)
	require.NotEmpty(t, leave.ID)

	// Approve
	resp = doJSON(t, http.MethodPut, srv.URL+"/leaves/"+leave.ID, map[string]string{
		"status": "approved",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var approved struct {
		Status    string `json:"status"`
		NeedsSync bool   `json:"needs_sync"`
	}
	decodeInto(t, resp, &approved)
	assert.Equal(t, "approved", approved.Status)
	assert.False(t, approved.NeedsSync)

	// Report over January: 1 present + 3 leave
	resp = doJSON(t, http.MethodGet,
		srv.URL+"/attendance/report?startDate=2024-01-01&endDate=2024-01-31", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report struct {
		Employees []struct {
			EmployeeID string `json:"employee_id"`
			Present    int    `json:"present"`
			Leave      int    `json:"leave"`
			Total      int    `json:"total"`
			WorkedDays string `json:"worked_days"`
		} `json:"employees"`
	}
	decodeInto(t, resp, &report)
	require.Len(t, report.Employees, 1)
	assert.Equal(t, 1, report.Employees[0].Present)
	assert.Equal(t, 3, report.Employees[0].Leave)
	assert.Equal(t, 4, report.Employees[0].Total)
	assert.Equal(t, "1", report.Employees[0].WorkedDays)
}

func TestCreateLeave_OverlapReturns409(t *testing.T) {
	srv, _ := newTestServer(t)
	seedEmployeeHTTP(t, srv, "emp-1")
	seedAttendanceHTTP(t, srv, "emp-1", "2024-01-09")

	resp := doJSON(t, http.MethodPost, srv.URL+"/leaves", map[string]string{
		"employee_id": "emp-1", "start_date": "2024-01-10",
		"end_date": "2024-01-12", "type": "sick",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/leaves", map[string]string{
		"employee_id": "emp-1", "start_date": "2024-01-11",
		"end_date": "2024-01-15", "type": "annual",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateLeave_MissingFieldsReturns400(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/leaves", map[string]string{
		"employee_id": "emp-1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateLeave_NoHistoryReturns409(t *testing.T) {
	srv, _ := newTestServer(t)
	seedEmployeeHTTP(t, srv, "emp-1")

	resp := doJSON(t, http.MethodPost, srv.URL+"/leaves", map[string]string{
		"employee_id": "emp-1", "start_date": "2024-01-10",
		"end_date": "2024-01-12", "type": "sick",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestListLeaves_DateRangeFilter(t *testing.T) {
	// Range filtering matches any leave whose span intersects the window,
	// not just leaves fully contained in it.

	srv, _ := newTestServer(t)
	seedEmployeeHTTP(t, srv, "emp-1")
	seedAttendanceHTTP(t, srv, "emp-1", "2024-01-09")

	resp := doJSON(t, http.MethodPost, srv.URL+"/leaves", map[string]string{
		"employee_id": "emp-1", "start_date": "2024-01-10",
		"end_date": "2024-01-12", "type": "sick",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/leaves", map[string]string{
		"employee_id": "emp-1", "start_date": "2024-02-05",
		"end_date": "2024-02-06", "type": "annual",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Window overlaps only the tail of the January leave
	resp = doJSON(t, http.MethodGet,
		srv.URL+"/leaves?start_date=2024-01-11&end_date=2024-01-20", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var leaves []struct {
		StartDate string `json:"start_date"`
	}
	decodeInto(t, resp, &leaves)
	require.Len(t, leaves, 1)
	assert.Equal(t, "2024-01-10", leaves[0].StartDate)

	// Window covering both months returns both
	resp = doJSON(t, http.MethodGet,
		srv.URL+"/leaves?start_date=2024-01-01&end_date=2024-02-28", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &leaves)
	assert.Len(t, leaves, 2)
}

func TestListLeaves_BadDateReturns400(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/leaves?start_date=not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetLeave_UnknownReturns404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/leaves/ghost", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLeaveCalendar_ClippedMonth(t *testing.T) {
	srv, _ := newTestServer(t)
	seedEmployeeHTTP(t, srv, "emp-1")
	seedAttendanceHTTP(t, srv, "emp-1", "2024-01-09")

	resp := doJSON(t, http.MethodPost, srv.URL+"/leaves", map[string]string{
		"employee_id": "emp-1", "start_date": "2024-01-30",
		"end_date": "2024-02-02", "type": "annual",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var leave struct {
		ID string `json:"id"`
	}
	decodeInto(t, resp, &leave)

	resp = doJSON(t, http.MethodPut, srv.URL+"/leaves/"+leave.ID, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/leaves/calendar?month=2&year=2024", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cal struct {
		Entries []struct {
			Date string `json:"date"`
		} `json:"entries"`
	}
	decodeInto(t, resp, &cal)
	require.Len(t, cal.Entries, 2)
	assert.Equal(t, "2024-02-01", cal.Entries[0].Date)
	assert.Equal(t, "2024-02-02", cal.Entries[1].Date)
}

func TestLeaveCalendar_BadMonthReturns400(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/leaves/calendar?month=abc&year=2024", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// ATTENDANCE ENDPOINTS
// =============================================================================

func TestCreateAttendance_DuplicateDayReturns409(t *testing.T) {
	srv, _ := newTestServer(t)
	seedEmployeeHTTP(t, srv, "emp-1")

	seedAttendanceHTTP(t, srv, "emp-1", "2024-01-10")

	resp := doJSON(t, http.MethodPost, srv.URL+"/attendance", map[string]string{
		"employee_id": "emp-1", "date": "2024-01-10", "status": "absent",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateAttendance_UnknownEmployeeReturns404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/attendance", map[string]string{
		"employee_id": "ghost", "date": "2024-01-10", "status": "present",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateAttendance_BadStatusReturns400(t *testing.T) {
	srv, _ := newTestServer(t)
	seedEmployeeHTTP(t, srv, "emp-1")

	resp := doJSON(t, http.MethodPost, srv.URL+"/attendance", map[string]string{
		"employee_id": "emp-1", "date": "2024-01-10", "status": "vacationing",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateAttendance_CorrectsStatus(t *testing.T) {
	srv, _ := newTestServer(t)
	seedEmployeeHTTP(t, srv, "emp-1")

	resp := doJSON(t, http.MethodPost, srv.URL+"/attendance", map[string]string{
		"employee_id": "emp-1", "date": "2024-01-10", "status": "present",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var rec struct {
		ID string `json:"id"`
	}
	decodeInto(t, resp, &rec)

	resp = doJSON(t, http.MethodPut, srv.URL+"/attendance/"+rec.ID, map[string]string{
		"status": "half-day",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated struct {
		Status    string `json:"status"`
		UpdatedBy string `json:"updated_by"`
		UpdatedAt string `json:"updated_at"`
	}
	decodeInto(t, resp, &updated)
	assert.Equal(t, "half-day", updated.Status)
	assert.Equal(t, "system", updated.UpdatedBy)
	assert.NotEmpty(t, updated.UpdatedAt, "correction must carry an update timestamp")
}

func TestDeleteAttendance_UnknownReturns404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodDelete, srv.URL+"/attendance/ghost", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAttendanceReport_InvertedRangeReturns400(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet,
		srv.URL+"/attendance/report?startDate=2024-01-31&endDate=2024-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// CANDIDATE ENDPOINTS
// =============================================================================

func TestCandidates_CRUD(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/candidates", map[string]string{
		"name":     "Dana Reyes",
		"email":    "dana@example.com",
		"position": "Backend Engineer",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeInto(t, resp, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "applied", created.Status)

	resp = doJSON(t, http.MethodGet, srv.URL+"/candidates", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []struct {
		Name string `json:"name"`
	}
	decodeInto(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Dana Reyes", list[0].Name)

	resp = doJSON(t, http.MethodGet, srv.URL+"/candidates/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/candidates/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/candidates/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCandidates_MissingNameReturns400(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/candidates", map[string]string{
		"email": "noname@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// SCENARIOS AND AUTH
// =============================================================================

func TestScenario_SmallTeamLoads(t *testing.T) {
	srv, mem := newTestServer(t)
	ctx := context.Background()

	resp := doJSON(t, http.MethodPost, srv.URL+"/scenarios/load", map[string]string{
		"scenario_id": "small-team",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Three employees, and Bob's approved leave materialized attendance
	employees, err := mem.ListEmployees(ctx, hr.EmployeeActive)
	require.NoError(t, err)
	assert.Len(t, employees, 3)

	count, err := mem.CountAttendance(ctx, "emp-bob", hr.AttendanceLeave)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestScenario_UnknownReturns400(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/scenarios/load", map[string]string{
		"scenario_id": "does-not-exist",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuth_MutationsRejectedWithoutToken(t *testing.T) {
	mem := memstore.NewMemory()
	leaves := &hr.LeaveService{
		Leaves: mem, Attendance: mem, Employees: mem, Runs: mem,
		Reconciler: hr.NewReconciler(mem), Clock: hr.SystemClock{}, MaxSyncAttempts: 1,
	}
	reports := &hr.ReportAggregator{Employees: mem, Attendance: mem, Leaves: mem}
	cal, err := hr.NewCalendar("UTC")
	require.NoError(t, err)

	h := api.NewHandler(leaves, reports, cal, mem)
	srv := httptest.NewServer(api.NewRouter(h, api.RouterOptions{AuthSecret: "test-secret"}))
	t.Cleanup(srv.Close)

	// Reads stay open
	resp := doJSON(t, http.MethodGet, srv.URL+"/leaves", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Writes require a token
	resp = doJSON(t, http.MethodPost, srv.URL+"/employees", map[string]string{
		"name": "Worker", "hire_date": "2023-06-01",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
