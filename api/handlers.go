/*
handlers.go - HTTP API handlers for the HR engine

PURPOSE:
  Exposes leave management, attendance tracking, reconciliation and
  reporting via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to domain logic in the hr package.

ENDPOINTS:
  Leaves:
    GET    /leaves                  List leave requests (filterable)
    POST   /leaves                  Submit a leave request
    GET    /leaves/calendar         Monthly leave calendar
    GET    /leaves/{id}             Get one leave request
    PUT    /leaves/{id}             Status transition / attach document
    DELETE /leaves/{id}             Delete a leave request

  Attendance:
    GET    /attendance              List attendance records (filterable)
    POST   /attendance              Create a manual attendance entry
    PUT    /attendance/{id}         Correct a record's status
    DELETE /attendance/{id}         Delete a record
    GET    /attendance/report       Per-employee tallies for a date range

  Employees:   GET|POST /employees, GET|DELETE /employees/{id}
  Candidates:  GET|POST /candidates, GET|DELETE /candidates/{id}
  Sync runs:   GET /reconciliation/runs
  Scenarios:   GET /scenarios, POST /scenarios/load

REQUEST FLOW:
  1. Decode JSON body
  2. Shape validation (go-playground/validator tags on the DTO)
  3. Call domain logic (LeaveService, ReportAggregator, stores)
  4. Map domain errors to HTTP status via the hr error classifiers
  5. Serialize response

ERROR HANDLING:
  - 400: Validation errors, malformed input, invalid transitions
  - 404: Resource not found
  - 409: Conflict (duplicate day record, overlapping leave, inactive
         employee, no attendance history)
  - 500: Store failures, incomplete sync

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - hr/errors.go: Error taxonomy and classifiers
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/warp/hr-engine/hr"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Leaves     *hr.LeaveService
	Reports    *hr.ReportAggregator
	Attendance hr.AttendanceStore
	Employees  hr.EmployeeStore
	Candidates hr.CandidateStore
	Runs       hr.SyncRunStore
	Calendar   hr.Calendar
	Clock      hr.Clock

	// Resetter clears all data before a demo scenario loads. Optional;
	// scenario endpoints 404 without it.
	Resetter Resetter

	validate *validator.Validate

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a handler wired to the given services and stores.
func NewHandler(leaves *hr.LeaveService, reports *hr.ReportAggregator, cal hr.Calendar, candidates hr.CandidateStore) *Handler {
	return &Handler{
		Leaves:     leaves,
		Reports:    reports,
		Attendance: leaves.Attendance,
		Employees:  leaves.Employees,
		Candidates: candidates,
		Runs:       leaves.Runs,
		Calendar:   cal,
		Clock:      leaves.Clock,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) now() time.Time {
	if h.Clock != nil {
		return h.Clock.Now()
	}
	return time.Now().UTC()
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// ListLeaves returns leave requests, newest first. Supports filtering by
// employee_id, status and type query parameters, plus start_date/end_date
// which match any leave whose span intersects the range.
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	filter := hr.LeaveFilter{
		EmployeeID: hr.EmployeeID(r.URL.Query().Get("employee_id")),
		Status:     hr.LeaveStatus(r.URL.Query().Get("status")),
		Type:       hr.LeaveType(r.URL.Query().Get("type")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid status filter", nil)
		return
	}
	if from := r.URL.Query().Get("start_date"); from != "" {
		day, err := hr.ParseDay(from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_date", err)
			return
		}
		filter.From = &day
	}
	if to := r.URL.Query().Get("end_date"); to != "" {
		day, err := hr.ParseDay(to)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date", err)
			return
		}
		filter.To = &day
	}

	leaves, err := h.Leaves.Query(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "Failed to list leaves", err)
		return
	}

	dtos := make([]LeaveDTO, len(leaves))
	for i, l := range leaves {
		dtos[i] = toLeaveDTO(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLeave submits a new leave request. New requests always start
// pending; approval happens via PUT /leaves/{id}.
func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	var req CreateLeaveRequest
	if !h.decode(w, r, &req) {
		return
	}

	start, err := hr.ParseDay(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}
	end, err := hr.ParseDay(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date", err)
		return
	}

	leave, err := h.Leaves.Create(r.Context(), hr.CreateLeaveInput{
		EmployeeID: hr.EmployeeID(req.EmployeeID),
		StartDay:   start,
		EndDay:     end,
		Type:       hr.LeaveType(req.Type),
		Reason:     req.Reason,
	}, actorFrom(r))
	if err != nil {
		writeDomainError(w, "Failed to create leave", err)
		return
	}

	writeJSON(w, http.StatusCreated, toLeaveDTO(*leave))
}

// GetLeave returns one leave request.
func (h *Handler) GetLeave(w http.ResponseWriter, r *http.Request) {
	id := hr.LeaveID(chi.URLParam(r, "id"))

	leave, err := h.Leaves.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get leave", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(*leave))
}

// UpdateLeave applies a status transition and/or attaches a document.
// Approving triggers attendance reconciliation; re-approving an approved
// leave re-runs the sync, which is safe because the sync is idempotent.
func (h *Handler) UpdateLeave(w http.ResponseWriter, r *http.Request) {
	id := hr.LeaveID(chi.URLParam(r, "id"))

	var req UpdateLeaveRequest
	if !h.decode(w, r, &req) {
		return
	}

	actor := actorFrom(r)
	var leave *hr.LeaveRequest
	var err error

	if req.DocumentKey != "" {
		if leave, err = h.Leaves.SetDocument(r.Context(), id, req.DocumentKey, actor); err != nil {
			writeDomainError(w, "Failed to attach document", err)
			return
		}
	}
	if req.Status != "" {
		if leave, err = h.Leaves.Transition(r.Context(), id, hr.LeaveStatus(req.Status), actor); err != nil {
			writeDomainError(w, "Failed to update leave status", err)
			return
		}
	}
	if leave == nil {
		writeError(w, http.StatusBadRequest, "Nothing to update", nil)
		return
	}

	writeJSON(w, http.StatusOK, toLeaveDTO(*leave))
}

// DeleteLeave removes a leave request. Attendance records already written
// by a prior sync are left in place; corrections go through the
// attendance endpoints.
func (h *Handler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	id := hr.LeaveID(chi.URLParam(r, "id"))

	if err := h.Leaves.Delete(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete leave", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": string(id)})
}

// LeaveCalendar returns the approved-leave calendar for a month, clipped
// to the month's boundaries.
func (h *Handler) LeaveCalendar(w http.ResponseWriter, r *http.Request) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	entries, err := h.Reports.LeaveCalendar(r.Context(), time.Month(month), year)
	if err != nil {
		writeDomainError(w, "Failed to build leave calendar", err)
		return
	}

	dtos := make([]CalendarEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = CalendarEntryDTO{
			Date:         e.Day.String(),
			EmployeeID:   string(e.EmployeeID),
			EmployeeName: e.EmployeeName,
			LeaveType:    string(e.LeaveType),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month":   month,
		"year":    year,
		"entries": dtos,
	})
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// ListAttendance returns attendance records, most recent day first.
// Supports employee_id, status, start_date and end_date filters.
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	filter := hr.AttendanceFilter{
		EmployeeID: hr.EmployeeID(r.URL.Query().Get("employee_id")),
		Status:     hr.AttendanceStatus(r.URL.Query().Get("status")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid status filter", nil)
		return
	}
	if from := r.URL.Query().Get("start_date"); from != "" {
		day, err := hr.ParseDay(from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_date", err)
			return
		}
		filter.From = &day
	}
	if to := r.URL.Query().Get("end_date"); to != "" {
		day, err := hr.ParseDay(to)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date", err)
			return
		}
		filter.To = &day
	}

	records, err := h.Attendance.QueryAttendance(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "Failed to list attendance", err)
		return
	}

	dtos := make([]AttendanceDTO, len(records))
	for i, rec := range records {
		dtos[i] = toAttendanceDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAttendance records a manual attendance entry. Unlike the
// reconciler's upsert, a manual create refuses to overwrite an existing
// record for the same employee-day and returns 409 instead.
func (h *Handler) CreateAttendance(w http.ResponseWriter, r *http.Request) {
	var req CreateAttendanceRequest
	if !h.decode(w, r, &req) {
		return
	}

	day, err := hr.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	emp, err := h.Employees.GetEmployee(r.Context(), hr.EmployeeID(req.EmployeeID))
	if err != nil {
		writeDomainError(w, "Failed to look up employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	if !emp.IsActive() {
		writeError(w, http.StatusConflict, "Employee is inactive", hr.ErrEmployeeInactive)
		return
	}

	rec, err := h.Attendance.CreateAttendance(r.Context(), hr.AttendanceRecord{
		ID:         hr.AttendanceID(uuid.NewString()),
		EmployeeID: emp.ID,
		Day:        day,
		Status:     hr.AttendanceStatus(req.Status),
		CreatedBy:  actorFrom(r),
		CreatedAt:  h.now(),
	})
	if err != nil {
		writeDomainError(w, "Failed to create attendance", err)
		return
	}

	writeJSON(w, http.StatusCreated, toAttendanceDTO(rec))
}

// UpdateAttendance corrects a record's status by ID.
func (h *Handler) UpdateAttendance(w http.ResponseWriter, r *http.Request) {
	id := hr.AttendanceID(chi.URLParam(r, "id"))

	var req UpdateAttendanceRequest
	if !h.decode(w, r, &req) {
		return
	}

	rec, err := h.Attendance.SetAttendanceStatus(r.Context(), id, hr.AttendanceStatus(req.Status), actorFrom(r), h.now())
	if err != nil {
		writeDomainError(w, "Failed to update attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceDTO(*rec))
}

// DeleteAttendance removes a record by ID.
func (h *Handler) DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	id := hr.AttendanceID(chi.URLParam(r, "id"))

	if err := h.Attendance.DeleteAttendance(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": string(id)})
}

// AttendanceReport returns per-employee tallies for a date range, covering
// every active employee even if they have no records in the range.
func (h *Handler) AttendanceReport(w http.ResponseWriter, r *http.Request) {
	start, err := hr.ParseDay(r.URL.Query().Get("startDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid startDate", err)
		return
	}
	end, err := hr.ParseDay(r.URL.Query().Get("endDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid endDate", err)
		return
	}

	tallies, err := h.Reports.AttendanceReport(r.Context(), start, end)
	if err != nil {
		writeDomainError(w, "Failed to build report", err)
		return
	}

	dtos := make([]TallyDTO, len(tallies))
	for i, t := range tallies {
		dtos[i] = TallyDTO{
			EmployeeID:   string(t.Employee.ID),
			EmployeeName: t.Employee.Name,
			Present:      t.Tally.Present,
			Absent:       t.Tally.Absent,
			HalfDay:      t.Tally.HalfDay,
			Leave:        t.Tally.Leave,
			Total:        t.Tally.Total,
			WorkedDays:   t.Tally.WorkedDays.String(),
		}
	}
	writeJSON(w, http.StatusOK, ReportDTO{
		StartDate: start.String(),
		EndDate:   end.String(),
		Employees: dtos,
	})
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns employees, optionally filtered by ?status=.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	status := hr.EmployeeStatus(r.URL.Query().Get("status"))
	employees, err := h.Employees.ListEmployees(r.Context(), status)
	if err != nil {
		writeDomainError(w, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveEmployee creates or updates an employee.
func (h *Handler) SaveEmployee(w http.ResponseWriter, r *http.Request) {
	var req SaveEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	hireDate, err := hr.ParseDay(req.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hire_date", err)
		return
	}

	emp := hr.Employee{
		ID:        hr.EmployeeID(req.ID),
		Name:      req.Name,
		Email:     req.Email,
		Status:    hr.EmployeeStatus(req.Status),
		HireDate:  hireDate,
		CreatedAt: h.now(),
	}
	if emp.ID == "" {
		emp.ID = hr.EmployeeID(uuid.NewString())
	}
	if emp.Status == "" {
		emp.Status = hr.EmployeeActive
	}

	if err := h.Employees.SaveEmployee(r.Context(), emp); err != nil {
		writeDomainError(w, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := hr.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Employees.GetEmployee(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// DeleteEmployee removes an employee.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := hr.EmployeeID(chi.URLParam(r, "id"))

	if err := h.Employees.DeleteEmployee(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete employee", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": string(id)})
}

// =============================================================================
// CANDIDATE HANDLERS
// =============================================================================

// ListCandidates returns all hiring candidates.
func (h *Handler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.Candidates.ListCandidates(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list candidates", err)
		return
	}

	dtos := make([]CandidateDTO, len(candidates))
	for i, c := range candidates {
		dtos[i] = toCandidateDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveCandidate creates or updates a candidate.
func (h *Handler) SaveCandidate(w http.ResponseWriter, r *http.Request) {
	var req SaveCandidateRequest
	if !h.decode(w, r, &req) {
		return
	}

	now := h.now()
	c := hr.Candidate{
		ID:        hr.CandidateID(req.ID),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Position:  req.Position,
		ResumeKey: req.ResumeKey,
		Status:    hr.CandidateStatus(req.Status),
		CreatedAt: now,
	}
	if c.ID == "" {
		c.ID = hr.CandidateID(uuid.NewString())
	} else {
		c.UpdatedAt = &now
	}
	if c.Status == "" {
		c.Status = hr.CandidateApplied
	}

	if err := h.Candidates.SaveCandidate(r.Context(), c); err != nil {
		writeDomainError(w, "Failed to save candidate", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCandidateDTO(c))
}

// GetCandidate returns a single candidate.
func (h *Handler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id := hr.CandidateID(chi.URLParam(r, "id"))

	c, err := h.Candidates.GetCandidate(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get candidate", err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "Candidate not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toCandidateDTO(*c))
}

// DeleteCandidate removes a candidate.
func (h *Handler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id := hr.CandidateID(chi.URLParam(r, "id"))

	if err := h.Candidates.DeleteCandidate(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete candidate", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": string(id)})
}

// =============================================================================
// SYNC RUN HANDLERS
// =============================================================================

// ListSyncRuns returns reconciliation attempt records, newest first.
// Supports ?status=completed|failed.
func (h *Handler) ListSyncRuns(w http.ResponseWriter, r *http.Request) {
	status := hr.SyncRunStatus(r.URL.Query().Get("status"))

	runs, err := h.Runs.ListSyncRuns(r.Context(), status)
	if err != nil {
		writeDomainError(w, "Failed to list sync runs", err)
		return
	}

	dtos := make([]SyncRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toSyncRunDTO(run)
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": dtos})
}

// =============================================================================
// HELPERS
// =============================================================================

// decode parses the JSON body into dst and runs shape validation.
// Writes the error response itself; returns false when the caller
// should bail.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

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

// writeDomainError maps domain errors to HTTP status codes using the
// hr error classifiers.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case hr.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case hr.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case errors.Is(err, hr.ErrValidation) || errors.Is(err, hr.ErrInvalidRange) || errors.Is(err, hr.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
