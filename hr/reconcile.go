/*
reconcile.go - Materializing approved leaves into attendance records

PURPOSE:
  The reconciler walks an approved leave's date span and upserts each
  day's attendance record to status "leave". The approved leave owns its
  span: manual present/absent/half-day entries inside it are overwritten.

IDEMPOTENCY:
  Each day's upsert is an atomic conditional write, so running Sync twice
  over the same leave produces exactly the same end state. A crash partway
  leaves the store recoverable by re-running Sync; nothing needs undoing.

ORDERING:
  Sync must complete (all days written) before an approval is considered
  durable. A partial failure surfaces as a *SyncError (retryable) naming
  the day it stopped at and how many days were written.
*/
package hr

import (
	"context"
	"time"
)

// Reconciler writes an approved leave's span into the attendance calendar.
type Reconciler struct {
	Attendance AttendanceStore
	Clock      Clock

	// OpTimeout bounds each per-day store write. Zero means no bound.
	OpTimeout time.Duration
}

// NewReconciler builds a reconciler with the system clock.
func NewReconciler(attendance AttendanceStore) *Reconciler {
	return &Reconciler{Attendance: attendance, Clock: SystemClock{}}
}

// Sync upserts one attendance record per day of the leave's span, all with
// status "leave". It runs only for approved requests; pending and rejected
// requests must never touch the calendar.
func (r *Reconciler) Sync(ctx context.Context, leave LeaveRequest) error {
	if leave.Status != LeaveApproved {
		return &TransitionError{LeaveID: leave.ID, From: leave.Status, To: LeaveApproved}
	}

	days, err := Expand(leave.StartDay, leave.EndDay)
	if err != nil {
		return err
	}

	actor := leave.UpdatedBy
	if actor == "" {
		actor = leave.CreatedBy
	}

	for i, day := range days {
		rec := AttendanceRecord{
			EmployeeID: leave.EmployeeID,
			Day:        day,
			Status:     AttendanceLeave,
			CreatedBy:  actor,
			CreatedAt:  r.Clock.Now(),
		}
		if err := r.upsertDay(ctx, rec); err != nil {
			return &SyncError{
				LeaveID:   leave.ID,
				FailedDay: day,
				Written:   i,
				Total:     len(days),
				Cause:     err,
			}
		}
	}
	return nil
}

func (r *Reconciler) upsertDay(ctx context.Context, rec AttendanceRecord) error {
	if r.OpTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.OpTimeout)
		defer cancel()
	}
	_, err := r.Attendance.UpsertAttendance(ctx, rec)
	return err
}
