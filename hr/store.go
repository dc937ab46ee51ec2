/*
store.go - Persistence interfaces for the reconciliation engine

PURPOSE:
  Defines the interface between the domain logic and the database.
  Implementations must enforce the two core invariants AT THE STORAGE
  LAYER, not in check-then-write application logic:

  1. At most one attendance record per (employee, day) — a uniqueness
     constraint, so two concurrent writers cannot both insert.
  2. No overlapping non-rejected leave spans per employee — checked
     inside the store's single-writer critical section.

UPSERT CONTRACT:
  AttendanceUpserter.Upsert is a single atomic conditional write
  (insert-or-update keyed by employee-day), never a read-modify-write
  pair. This is what makes the reconciler's multi-day sync idempotent
  and safe against racing manual entries.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite (WAL, unique indexes)
  - hr/store: in-memory, for tests and dev
*/
package hr

import (
	"context"
	"time"
)

// =============================================================================
// ATTENDANCE STORE
// =============================================================================

// AttendanceFilter narrows attendance queries. Nil/zero fields match all.
type AttendanceFilter struct {
	EmployeeID EmployeeID
	Status     AttendanceStatus
	From, To   *Day

	// Ascending flips the default day-descending sort.
	Ascending bool
}

// AttendanceStore owns attendance records and the one-record-per-employee-day
// invariant. Method names carry the noun so one concrete store can satisfy
// every interface in this file.
type AttendanceStore interface {
	// CreateAttendance inserts a manual attendance entry. Returns
	// ErrDuplicateRecord if the employee-day already has one; manual entry
	// never overwrites.
	CreateAttendance(ctx context.Context, rec AttendanceRecord) (AttendanceRecord, error)

	// UpsertAttendance atomically inserts or overwrites the record for the
	// employee-day. Overwrites update status and the actor/time, they do
	// not create a second record.
	UpsertAttendance(ctx context.Context, rec AttendanceRecord) (AttendanceRecord, error)

	// FindAttendance returns the record for an employee-day, or nil.
	FindAttendance(ctx context.Context, employeeID EmployeeID, day Day) (*AttendanceRecord, error)

	// GetAttendance returns a record by ID, or nil.
	GetAttendance(ctx context.Context, id AttendanceID) (*AttendanceRecord, error)

	// SetAttendanceStatus overwrites the status of an existing record by ID,
	// stamping the update with the given actor and time.
	SetAttendanceStatus(ctx context.Context, id AttendanceID, status AttendanceStatus, actor string, at time.Time) (*AttendanceRecord, error)

	// DeleteAttendance removes a record by ID (manual entry correction
	// only; the reconciler never deletes).
	DeleteAttendance(ctx context.Context, id AttendanceID) error

	// QueryAttendance returns records matching the filter, day-descending
	// unless the filter requests ascending.
	QueryAttendance(ctx context.Context, filter AttendanceFilter) ([]AttendanceRecord, error)

	// CountAttendance counts an employee's records with the given status.
	CountAttendance(ctx context.Context, employeeID EmployeeID, status AttendanceStatus) (int, error)
}

// =============================================================================
// LEAVE STORE
// =============================================================================

// LeaveFilter narrows leave queries. Nil/zero fields match all.
// From/To select leaves whose [StartDay, EndDay] overlaps [From, To].
type LeaveFilter struct {
	EmployeeID EmployeeID
	Status     LeaveStatus
	Type       LeaveType
	From, To   *Day
}

// LeaveStore owns leave requests and the no-overlap invariant.
type LeaveStore interface {
	// InsertLeave persists a new request. Returns an *OverlapError when the
	// span intersects an existing non-rejected request for the employee.
	// The overlap check runs inside the store's critical section.
	InsertLeave(ctx context.Context, req LeaveRequest) (LeaveRequest, error)

	// GetLeave returns a request by ID, or nil.
	GetLeave(ctx context.Context, id LeaveID) (*LeaveRequest, error)

	// UpdateLeave persists status/document/audit fields of an existing request.
	UpdateLeave(ctx context.Context, req LeaveRequest) (*LeaveRequest, error)

	// SetNeedsSync flips the needs-sync flag without touching anything else.
	SetNeedsSync(ctx context.Context, id LeaveID, needsSync bool) error

	// DeleteLeave removes a request by ID.
	DeleteLeave(ctx context.Context, id LeaveID) error

	// QueryLeaves returns requests matching the filter, newest first.
	QueryLeaves(ctx context.Context, filter LeaveFilter) ([]LeaveRequest, error)
}

// =============================================================================
// EMPLOYEE AND CANDIDATE STORES
// =============================================================================

type EmployeeStore interface {
	SaveEmployee(ctx context.Context, emp Employee) error
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	ListEmployees(ctx context.Context, status EmployeeStatus) ([]Employee, error)
	DeleteEmployee(ctx context.Context, id EmployeeID) error
}

type CandidateStore interface {
	SaveCandidate(ctx context.Context, c Candidate) error
	GetCandidate(ctx context.Context, id CandidateID) (*Candidate, error)
	ListCandidates(ctx context.Context) ([]Candidate, error)
	DeleteCandidate(ctx context.Context, id CandidateID) error
}

// =============================================================================
// SYNC RUN STORE - Observable record of reconciliation attempts
// =============================================================================

type SyncRunStore interface {
	// SaveSyncRun appends one sync attempt record.
	SaveSyncRun(ctx context.Context, run SyncRun) error

	// ListSyncRuns returns runs, newest first. Empty status matches all.
	ListSyncRuns(ctx context.Context, status SyncRunStatus) ([]SyncRun, error)

	// LeavesNeedingSync returns approved leaves still flagged needs-sync,
	// for the background sweeper.
	LeavesNeedingSync(ctx context.Context) ([]LeaveRequest, error)
}
