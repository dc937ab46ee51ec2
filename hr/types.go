/*
Package hr provides the leave–attendance reconciliation engine.

PURPOSE:
  This package contains the domain types and algorithms that keep an
  employee's attendance calendar consistent with their leave schedule:
  validating leave requests against attendance history, materializing
  approved leave spans into attendance records, and aggregating both
  into reports over arbitrary date ranges.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: The entity attendance and leave accrue against
  - AttendanceRecord: One status per employee per calendar day
  - LeaveRequest: An inclusive date span with an approval lifecycle
  - SyncRun: Audit record of one attendance-materialization attempt
  - Clock: Injected time capability, keeps the engine deterministic

DESIGN PRINCIPLES:
  1. One record per employee-day, enforced at the storage layer
  2. No overlapping non-rejected leave spans per employee
  3. Approval side effects are idempotent (upsert semantics)
  4. Time comes from an injected Clock, never the global clock

SEE ALSO:
  - day.go: Calendar-day normalization and interval algebra
  - leave.go: Leave request validation and status transitions
  - reconcile.go: Materializing approved leaves into attendance
  - report.go: Attendance tallies and the leave calendar projection
*/
package hr

import "time"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type AttendanceID string
type LeaveID string
type CandidateID string

// =============================================================================
// EMPLOYEE - Referenced by every attendance and leave record
// =============================================================================

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

// Employee is the entity attendance and leave accrue against.
// Only active employees may create attendance or leave records.
type Employee struct {
	ID        EmployeeID
	Name      string
	Email     string
	Status    EmployeeStatus
	HireDate  Day
	CreatedAt time.Time
}

func (e Employee) IsActive() bool { return e.Status == EmployeeActive }

// =============================================================================
// ATTENDANCE - One status per employee per calendar day
// =============================================================================

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceHalfDay AttendanceStatus = "half-day"
	AttendanceLeave   AttendanceStatus = "leave"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceHalfDay, AttendanceLeave:
		return true
	}
	return false
}

// AttendanceRecord records the status of one employee on one calendar day.
// Invariant: at most one record exists per (EmployeeID, Day) pair.
// Records are overwritten by status, never multiplied per day.
type AttendanceRecord struct {
	ID         AttendanceID
	EmployeeID EmployeeID
	Day        Day
	Status     AttendanceStatus
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedBy  string
	UpdatedAt  *time.Time
}

// =============================================================================
// LEAVE - An inclusive date span with an approval lifecycle
// =============================================================================

type LeaveType string

const (
	LeaveSick   LeaveType = "sick"
	LeaveCasual LeaveType = "casual"
	LeaveAnnual LeaveType = "annual"
	LeaveOther  LeaveType = "other"
)

func (t LeaveType) Valid() bool {
	switch t {
	case LeaveSick, LeaveCasual, LeaveAnnual, LeaveOther:
		return true
	}
	return false
}

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

func (s LeaveStatus) Valid() bool {
	switch s {
	case LeavePending, LeaveApproved, LeaveRejected:
		return true
	}
	return false
}

// Blocking reports whether this status holds the employee's calendar.
// Rejected requests release their span for other requests.
func (s LeaveStatus) Blocking() bool { return s != LeaveRejected }

// LeaveRequest is an inclusive [StartDay, EndDay] span of requested leave.
// Invariant: for a given employee, no two non-rejected requests overlap.
// Once approved, the request owns the attendance span: every day in it is
// forced to AttendanceLeave, overriding prior manual entries.
type LeaveRequest struct {
	ID         LeaveID
	EmployeeID EmployeeID
	StartDay   Day
	EndDay     Day
	Reason     string
	Type       LeaveType

	Status LeaveStatus

	// DocumentKey is an opaque blob-storage reference (e.g. a sick note).
	// The engine never touches file bytes.
	DocumentKey string

	// NeedsSync marks an approved leave whose attendance span has not been
	// fully materialized yet. Observable operational state, cleared when a
	// sync run completes.
	NeedsSync bool

	CreatedBy string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// =============================================================================
// CANDIDATE - Pre-hire record, plain CRUD
// =============================================================================

type CandidateStatus string

const (
	CandidateApplied     CandidateStatus = "applied"
	CandidateInterviewed CandidateStatus = "interviewed"
	CandidateRejected    CandidateStatus = "rejected"
	CandidateHired       CandidateStatus = "hired"
)

// Candidate is a pre-hire applicant record. Conversion to Employee is
// handled by an external collaborator, not this engine.
type Candidate struct {
	ID        CandidateID
	Name      string
	Email     string
	Phone     string
	Position  string
	ResumeKey string // opaque blob-storage reference
	Status    CandidateStatus
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// =============================================================================
// SYNC RUN - Audit record of one attendance-materialization attempt
// =============================================================================

type SyncRunStatus string

const (
	SyncCompleted SyncRunStatus = "completed"
	SyncFailed    SyncRunStatus = "failed"
)

// SyncRun records one attempt to materialize an approved leave's span
// into attendance records. Failed runs leave the leave flagged NeedsSync.
type SyncRun struct {
	ID          string
	LeaveID     LeaveID
	EmployeeID  EmployeeID
	Attempt     int
	DaysWritten int
	DaysTotal   int
	Status      SyncRunStatus
	Error       string
	StartedAt   time.Time
	CompletedAt time.Time
}

// =============================================================================
// CLOCK - Injected time capability
// =============================================================================

// Clock supplies the current time. Production uses SystemClock; tests
// use a fixed clock so approval timestamps are deterministic.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }
