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

DATE FORMAT:
  All calendar days travel as "YYYY-MM-DD" strings. Timestamps are RFC3339.

VALIDATION:
  Request types carry go-playground/validator struct tags; handlers run
  them through the shared validator before touching domain logic. Domain
  invariants (range ordering, overlap, duplicate days) stay in hr - the
  tags only cover shape: required fields and enum membership.

SEE ALSO:
  - handlers.go: Uses these types
  - hr/types.go: Domain model these map to/from
*/
package api

import (
	"time"

	"github.com/warp/hr-engine/hr"
)

// =============================================================================
// ERROR RESPONSE
// =============================================================================

// ErrorResponse is the JSON error envelope for all non-2xx responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// LEAVE TYPES
// =============================================================================

// LeaveDTO represents a leave request in API responses.
type LeaveDTO struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Reason      string `json:"reason,omitempty"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	DocumentKey string `json:"document_key,omitempty"`
	NeedsSync   bool   `json:"needs_sync"`
	CreatedBy   string `json:"created_by"`
	UpdatedBy   string `json:"updated_by,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// CreateLeaveRequest is the request body for POST /leaves.
type CreateLeaveRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	StartDate  string `json:"start_date" validate:"required"`
	EndDate    string `json:"end_date" validate:"required"`
	Type       string `json:"type" validate:"required,oneof=sick casual annual other"`
	Reason     string `json:"reason"`
}

// UpdateLeaveRequest is the request body for PUT /leaves/{id}. A status
// change drives the approval workflow; document_key attaches supporting
// paperwork.
type UpdateLeaveRequest struct {
	Status      string `json:"status" validate:"omitempty,oneof=pending approved rejected"`
	DocumentKey string `json:"document_key"`
}

// CalendarEntryDTO is one employee-day cell in the monthly leave calendar.
type CalendarEntryDTO struct {
	Date         string `json:"date"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	LeaveType    string `json:"leave_type"`
}

// =============================================================================
// ATTENDANCE TYPES
// =============================================================================

// AttendanceDTO represents an attendance record in API responses.
type AttendanceDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	CreatedBy  string `json:"created_by"`
	UpdatedBy  string `json:"updated_by,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// CreateAttendanceRequest is the request body for POST /attendance.
type CreateAttendanceRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Status     string `json:"status" validate:"required,oneof=present absent half-day leave"`
}

// UpdateAttendanceRequest is the request body for PUT /attendance/{id}.
type UpdateAttendanceRequest struct {
	Status string `json:"status" validate:"required,oneof=present absent half-day leave"`
}

// TallyDTO is one employee's attendance summary in the report.
type TallyDTO struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Present      int    `json:"present"`
	Absent       int    `json:"absent"`
	HalfDay      int    `json:"half_day"`
	Leave        int    `json:"leave"`
	Total        int    `json:"total"`
	WorkedDays   string `json:"worked_days"`
}

// ReportDTO wraps the attendance report for a date range.
type ReportDTO struct {
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	Employees []TallyDTO `json:"employees"`
}

// =============================================================================
// EMPLOYEE / CANDIDATE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Status    string `json:"status"`
	HireDate  string `json:"hire_date"`
	CreatedAt string `json:"created_at,omitempty"`
}

// SaveEmployeeRequest is the request body for POST /employees.
type SaveEmployeeRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Status   string `json:"status" validate:"omitempty,oneof=active inactive"`
	HireDate string `json:"hire_date" validate:"required"`
}

// CandidateDTO represents a hiring candidate in API responses.
type CandidateDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Position  string `json:"position,omitempty"`
	ResumeKey string `json:"resume_key,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// SaveCandidateRequest is the request body for POST /candidates.
type SaveCandidateRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	Position  string `json:"position"`
	ResumeKey string `json:"resume_key"`
	Status    string `json:"status"`
}

// =============================================================================
// SYNC RUN TYPES
// =============================================================================

// SyncRunDTO is one reconciliation attempt in API responses.
type SyncRunDTO struct {
	ID          string `json:"id"`
	LeaveID     string `json:"leave_id"`
	EmployeeID  string `json:"employee_id"`
	Attempt     int    `json:"attempt"`
	DaysWritten int    `json:"days_written"`
	DaysTotal   int    `json:"days_total"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at"`
}

// =============================================================================
// SCENARIO TYPES
// =============================================================================

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects which demo scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// MAPPERS
// =============================================================================

func toLeaveDTO(l hr.LeaveRequest) LeaveDTO {
	dto := LeaveDTO{
		ID:          string(l.ID),
		EmployeeID:  string(l.EmployeeID),
		StartDate:   l.StartDay.String(),
		EndDate:     l.EndDay.String(),
		Reason:      l.Reason,
		Type:        string(l.Type),
		Status:      string(l.Status),
		DocumentKey: l.DocumentKey,
		NeedsSync:   l.NeedsSync,
		CreatedBy:   l.CreatedBy,
		UpdatedBy:   l.UpdatedBy,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
	}
	if l.UpdatedAt != nil {
		dto.UpdatedAt = l.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func toAttendanceDTO(rec hr.AttendanceRecord) AttendanceDTO {
	dto := AttendanceDTO{
		ID:         string(rec.ID),
		EmployeeID: string(rec.EmployeeID),
		Date:       rec.Day.String(),
		Status:     string(rec.Status),
		CreatedBy:  rec.CreatedBy,
		UpdatedBy:  rec.UpdatedBy,
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
	}
	if rec.UpdatedAt != nil {
		dto.UpdatedAt = rec.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func toEmployeeDTO(e hr.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:        string(e.ID),
		Name:      e.Name,
		Email:     e.Email,
		Status:    string(e.Status),
		HireDate:  e.HireDate.String(),
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

func toCandidateDTO(c hr.Candidate) CandidateDTO {
	dto := CandidateDTO{
		ID:        string(c.ID),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Position:  c.Position,
		ResumeKey: c.ResumeKey,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
	if c.UpdatedAt != nil {
		dto.UpdatedAt = c.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func toSyncRunDTO(run hr.SyncRun) SyncRunDTO {
	return SyncRunDTO{
		ID:          run.ID,
		LeaveID:     string(run.LeaveID),
		EmployeeID:  string(run.EmployeeID),
		Attempt:     run.Attempt,
		DaysWritten: run.DaysWritten,
		DaysTotal:   run.DaysTotal,
		Status:      string(run.Status),
		Error:       run.Error,
		StartedAt:   run.StartedAt.Format(time.RFC3339),
		CompletedAt: run.CompletedAt.Format(time.RFC3339),
	}
}
