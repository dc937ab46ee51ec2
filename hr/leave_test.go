package hr_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hr-engine/hr"
	memstore "github.com/warp/hr-engine/hr/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newLeaveService(t *testing.T) (*hr.LeaveService, *memstore.Memory) {
	t.Helper()
	mem := memstore.NewMemory()
	svc := &hr.LeaveService{
		Leaves:          mem,
		Attendance:      mem,
		Employees:       mem,
		Runs:            mem,
		Reconciler:      hr.NewReconciler(mem),
		Clock:           hr.FixedClock{At: time.Date(2024, time.January, 5, 12, 0, 0, 0, time.UTC)},
		MaxSyncAttempts: 3,
	}
	return svc, mem
}

// seedWorker creates an active employee with one day of present attendance,
// which leave creation requires.
func seedWorker(t *testing.T, mem *memstore.Memory, id string) hr.Employee {
	t.Helper()
	ctx := context.Background()

	emp := hr.Employee{
		ID:        hr.EmployeeID(id),
		Name:      "Worker " + id,
		Status:    hr.EmployeeActive,
		HireDate:  day(2023, time.June, 1),
		CreatedAt: time.Now(),
	}
	require.NoError(t, mem.SaveEmployee(ctx, emp))

	_, err := mem.CreateAttendance(ctx, hr.AttendanceRecord{
		ID:         hr.AttendanceID(id + "-att-seed"),
		EmployeeID: emp.ID,
		Day:        day(2024, time.January, 2),
		Status:     hr.AttendancePresent,
		CreatedBy:  "seed",
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)
	return emp
}

func createLeave(t *testing.T, svc *hr.LeaveService, emp hr.EmployeeID, start, end hr.Day) *hr.LeaveRequest {
	t.Helper()
	leave, err := svc.Create(context.Background(), hr.CreateLeaveInput{
		EmployeeID: emp,
		StartDay:   start,
		EndDay:     end,
		Type:       hr.LeaveAnnual,
		Reason:     "test",
	}, "manager")
	require.NoError(t, err)
	return leave
}

// =============================================================================
// CREATION
// =============================================================================

func TestCreateLeave_StartsPending(t *testing.T) {
	svc, mem := newLeaveService(t)
	emp := seedWorker(t, mem, "emp-1")

	leave := createLeave(t, svc, emp.ID, day(2024, time.January, 10), day(2024, time.January, 12))

	assert.Equal(t, hr.LeavePending, leave.Status)
	assert.NotEmpty(t, leave.ID)
	assert.False(t, leave.NeedsSync)
}

func TestCreateLeave_InvertedRangeRejected(t *testing.T) {
	svc, mem := newLeaveService(t)
	emp := seedWorker(t, mem, "emp-1")

	_, err := svc.Create(context.Background(), hr.CreateLeaveInput{
		EmployeeID: emp.ID,
		StartDay:   day(2024, time.January, 12),
		EndDay:     day(2024, time.January, 10),
		Type:       hr.LeaveSick,
	}, "manager")

	assert.ErrorIs(t, err, hr.ErrInvalidRange)
}

func TestCreateLeave_UnknownEmployee(t *testing.T) {
	svc, _ := newLeaveService(t)

	_, err := svc.Create(context.Background(), hr.CreateLeaveInput{
		EmployeeID: "ghost",
		StartDay:   day(2024, time.January, 10),
		EndDay:     day(2024, time.January, 12),
		Type:       hr.LeaveSick,
	}, "manager")

	assert.ErrorIs(t, err, hr.ErrEmployeeNotFound)
}

func TestCreateLeave_InactiveEmployeeRejected(t *testing.T) {
	svc, mem := newLeaveService(t)
	ctx := context.Background()

	emp := seedWorker(t, mem, "emp-1")
	emp.Status = hr.EmployeeInactive
	require.NoError(t, mem.SaveEmployee(ctx, emp))

	_, err := svc.Create(ctx, hr.CreateLeaveInput{
		EmployeeID: emp.ID,
		StartDay:   day(2024, time.January, 10),
		EndDay:     day(2024, time.January, 12),
		Type:       hr.LeaveSick,
	}, "manager")

	assert.ErrorIs(t, err, hr.ErrEmployeeInactive)
	assert.True(t, hr.IsConflict(err))
}

func TestCreateLeave_RequiresAttendanceHistory(t *testing.T) {
	// GIVEN: An active employee who has never been marked present
	// WHEN: They request leave
	// THEN: The request is refused

	svc, mem := newLeaveService(t)
	ctx := context.Background()

	emp := hr.Employee{
		ID:       "emp-fresh",
		Name:     "Fresh Hire",
		Status:   hr.EmployeeActive,
		HireDate: day(2024, time.January, 1),
	}
	require.NoError(t, mem.SaveEmployee(ctx, emp))

	_, err := svc.Create(ctx, hr.CreateLeaveInput{
		EmployeeID: emp.ID,
		StartDay:   day(2024, time.January, 10),
		EndDay:     day(2024, time.January, 12),
		Type:       hr.LeaveCasual,
	}, "manager")

	assert.ErrorIs(t, err, hr.ErrNoAttendanceHistory)
}

// =============================================================================
// OVERLAP
// =============================================================================

func TestCreateLeave_OverlapRejected(t *testing.T) {
	// GIVEN: An existing pending leave Jan 10-12
	// WHEN: The same employee requests Jan 11-15
	// THEN: Conflict naming the existing leave

	svc, mem := newLeaveService(t)
	emp := seedWorker(t, mem, "emp-1")

	existing := createLeave(t, svc, emp.ID, day(2024, time.January, 10), day(2024, time.January, 12))

	_, err := svc.Create(context.Background(), hr.CreateLeaveInput{
		EmployeeID: emp.ID,
		StartDay:   day(2024, time.January, 11),
		EndDay:     day(2024, time.January, 15),
		Type:       hr.LeaveSick,
	}, "manager")

	require.Error(t, err)
	assert.ErrorIs(t, err, hr.ErrOverlappingLeave)

	var overlap *hr.OverlapError
	require.ErrorAs(t, err, &overlap)
	assert.Equal(t, existing.ID, overlap.ExistingID)
}

func TestCreateLeave_RejectedLeaveDoesNotBlock(t *testing.T) {
	svc, mem := newLeaveService(t)
	emp := seedWorker(t, mem, "emp-1")
	ctx := context.Background()

	first := createLeave(t, svc, emp.ID, day(2024, time.January, 10), day(2024, time.January, 12))
	_, err := svc.Transition(ctx, first.ID, hr.LeaveRejected, "manager")
	require.NoError(t, err)

	// Same span again: the rejected leave must not count as a conflict
	second := createLeave(t, svc, emp.ID, day(2024, time.January, 10), day(2024, time.January, 12))
	assert.Equal(t, hr.LeavePending, second.Status)
}

func TestCreateLeave_OtherEmployeeUnaffected(t *testing.T) {
	svc, mem := newLeaveService(t)
	a := seedWorker(t, mem, "emp-a")
	b := seedWorker(t, mem, "emp-b")

	createLeave(t, svc, a.ID, day(2024, time.January, 10), day(2024, time.January, 12))
	leave := createLeave(t, svc, b.ID, day(2024, time.January, 10), day(2024, time.January, 12))
	assert.Equal(t, hr.LeavePending, leave.Status)
}

// =============================================================================
// TRANSITIONS
// =============================================================================

func TestTransition_ApproveMaterializesAttendance(t *testing.T) {
	// GIVEN: Pending leave Jan 10-12
	// WHEN: Approved
	// THEN: Exactly three leave attendance records exist, flag cleared

	svc, mem := newLeaveService(t)
	emp := seedWorker(t, mem, "emp-1")
	ctx := context.Background()

	leave := createLeave(t, svc, emp.ID, day(2024, time.January, 10), day(2024, time.January, 12))

	approved, err := svc.Transition(ctx, leave.ID, hr.LeaveApproved, "manager")
	require.NoError(t, err)
	assert.Equal(t, hr.LeaveApproved, approved.Status)
	assert.False(t, approved.NeedsSync)

	from, to := day(2024, time.January, 10), day(2024, time.January, 12)
	records, err := mem.QueryAttendance(ctx, hr.AttendanceFilter{
		EmployeeID: emp.ID,
		Status:     hr.AttendanceLeave,
		From:       &from,
		To:         &to,
	})
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestTransition_RejectWritesNothing(t *testing.T) {
	svc, mem := newLeaveService(t)
	emp := seedWorker(t, mem, "emp-1")
	ctx := context.Background()

	leave := createLeave(t, svc, emp.ID, day(2024, time.January, 10), day(2024, time.January, 12))

	rejected, err := svc.Transition(ctx, leave.ID, hr.LeaveRejected, "manager")
	require.NoError(t, err)
	assert.Equal(t, hr.LeaveRejected, rejected.Status)

	count, err := mem.CountAttendance(ctx, emp.ID, hr.AttendanceLeave)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTransition_RejectedIsTerminal(t *testing.T) {
	svc, mem := newLeaveService(t)
	emp := seedWorker(t, mem, "emp-1")
	ctx := context.Background()

	leave := createLeave(t, svc, emp.ID, day(2024, time.January, 10), day(2024, time.January, 12))
	_, err := svc.Transition(ctx, leave.ID, hr.LeaveRejected, "manager")
	require.NoError(t, err)

	_, err = svc.Transition(ctx, leave.ID, hr.LeaveApproved, "manager")
	require.Error(t, err)

	var transition *hr.TransitionError
	assert.ErrorAs(t, err, &transition)
}

func TestTransition_ReapproveIsIdempotent(t *testing.T) {
	// GIVEN: An approved, fully synced leave
	// WHEN: Approved again
	// THEN: No error and no extra attendance records

	svc, mem := newLeaveService(t)
	emp := seedWorker(t, mem, "emp-1")
	ctx := context.Background()

	leave := createLeave(t, svc, emp.ID, day(2024, time.January, 10), day(2024, time.January, 12))
	_, err := svc.Transition(ctx, leave.ID, hr.LeaveApproved, "manager")
	require.NoError(t, err)

	_, err = svc.Transition(ctx, leave.ID, hr.LeaveApproved, "manager")
	require.NoError(t, err)

	count, err := mem.CountAttendance(ctx, emp.ID, hr.AttendanceLeave)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestTransition_UnknownLeave(t *testing.T) {
	svc, _ := newLeaveService(t)

	_, err := svc.Transition(context.Background(), "ghost", hr.LeaveApproved, "manager")
	assert.ErrorIs(t, err, hr.ErrLeaveNotFound)
	assert.True(t, hr.IsNotFound(err))
}

// =============================================================================
// DELETE / DOCUMENT
// =============================================================================

func TestDeleteLeave_KeepsMaterializedAttendance(t *testing.T) {
	svc, mem := newLeaveService(t)
	emp := seedWorker(t, mem, "emp-1")
	ctx := context.Background()

	leave := createLeave(t, svc, emp.ID, day(2024, time.January, 10), day(2024, time.January, 11))
	_, err := svc.Transition(ctx, leave.ID, hr.LeaveApproved, "manager")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, leave.ID))

	_, err = svc.Get(ctx, leave.ID)
	assert.ErrorIs(t, err, hr.ErrLeaveNotFound)

	// Attendance written by the sync survives the delete
	count, err := mem.CountAttendance(ctx, emp.ID, hr.AttendanceLeave)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSetDocument_AttachesKey(t *testing.T) {
	svc, mem := newLeaveService(t)
	emp := seedWorker(t, mem, "emp-1")
	ctx := context.Background()

	leave := createLeave(t, svc, emp.ID, day(2024, time.January, 10), day(2024, time.January, 10))

	updated, err := svc.SetDocument(ctx, leave.ID, "docs/sick-note-42.pdf", "manager")
	require.NoError(t, err)
	assert.Equal(t, "docs/sick-note-42.pdf", updated.DocumentKey)
	assert.Equal(t, "manager", updated.UpdatedBy)
}
