/*
errors.go - Centralized error types for the reconciliation engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The HTTP layer maps these to status codes via the classifier helpers.

ERROR CATEGORIES:
  1. Validation errors - malformed input, bad ranges (client, 400)
  2. Not-found errors  - unknown employee/leave/attendance (client, 404)
  3. Conflict errors   - invariant would be violated (client, 409)
  4. Retryable errors  - partial sync, transient storage faults

USAGE:
  if errors.Is(err, hr.ErrOverlappingLeave) { ... }

  var syncErr *hr.SyncError
  if errors.As(err, &syncErr) { ... }
*/
package hr

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned when a date range has start after end.
	ErrInvalidRange = errors.New("invalid range: start after end")

	// ErrValidation is returned for malformed or missing input.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateRecord is returned when a manual attendance entry targets
	// an employee-day that already has a record. Manual entry never
	// silently overwrites; only the reconciler upserts.
	ErrDuplicateRecord = errors.New("attendance record already exists for employee-day")

	// ErrOverlappingLeave is returned when a leave request's span intersects
	// an existing non-rejected request for the same employee.
	ErrOverlappingLeave = errors.New("overlapping leave request")

	// ErrEmployeeInactive is returned when an inactive employee would accrue
	// attendance or leave.
	ErrEmployeeInactive = errors.New("employee is not active")

	// ErrNoAttendanceHistory is returned when an employee with zero present
	// attendance records requests leave.
	ErrNoAttendanceHistory = errors.New("employee has no attendance history")

	// ErrInvalidTransition is returned for a leave status change outside
	// pending→approved, pending→rejected, approved→approved.
	ErrInvalidTransition = errors.New("invalid leave status transition")

	// ErrEmployeeNotFound / ErrLeaveNotFound / ErrAttendanceNotFound /
	// ErrCandidateNotFound identify missing records.
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrLeaveNotFound      = errors.New("leave request not found")
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrCandidateNotFound  = errors.New("candidate not found")

	// ErrSyncIncomplete is returned when materializing an approved leave's
	// attendance span failed partway. Retryable; re-running sync is safe.
	ErrSyncIncomplete = errors.New("attendance sync incomplete")

	// ErrStoreUnavailable is returned for transient storage faults. Retryable.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// OverlapError reports which existing leave blocks a new request.
type OverlapError struct {
	EmployeeID EmployeeID
	ExistingID LeaveID
	Start, End Day
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("leave overlaps existing request %s spanning [%s, %s]",
		e.ExistingID, e.Start, e.End)
}

func (e *OverlapError) Unwrap() error { return ErrOverlappingLeave }

// SyncError reports a partial failure while writing a leave's attendance span.
// Written days stay in place; re-running sync upserts the rest.
type SyncError struct {
	LeaveID   LeaveID
	FailedDay Day
	Written   int
	Total     int
	Cause     error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync of leave %s stopped at %s (%d/%d days written): %v",
		e.LeaveID, e.FailedDay, e.Written, e.Total, e.Cause)
}

func (e *SyncError) Unwrap() error { return ErrSyncIncomplete }

// TransitionError reports a disallowed leave status change.
type TransitionError struct {
	LeaveID LeaveID
	From    LeaveStatus
	To      LeaveStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("leave %s cannot move from %s to %s", e.LeaveID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// =============================================================================
// ERROR CLASSIFIERS
// =============================================================================

// IsConflict reports whether the error is a client-caused invariant conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateRecord) ||
		errors.Is(err, ErrOverlappingLeave) ||
		errors.Is(err, ErrEmployeeInactive) ||
		errors.Is(err, ErrNoAttendanceHistory) ||
		errors.Is(err, ErrInvalidTransition)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrLeaveNotFound) ||
		errors.Is(err, ErrAttendanceNotFound) ||
		errors.Is(err, ErrCandidateNotFound)
}

// IsRetryable reports whether the operation might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSyncIncomplete) ||
		errors.Is(err, ErrStoreUnavailable)
}

// IsClientError reports whether the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidRange) ||
		IsConflict(err)
}
