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

func newReportFixture(t *testing.T) (*hr.ReportAggregator, *memstore.Memory) {
	t.Helper()
	mem := memstore.NewMemory()
	return &hr.ReportAggregator{Employees: mem, Attendance: mem, Leaves: mem}, mem
}

func seedReportEmployee(t *testing.T, mem *memstore.Memory, id, name string, status hr.EmployeeStatus) {
	t.Helper()
	require.NoError(t, mem.SaveEmployee(context.Background(), hr.Employee{
		ID: hr.EmployeeID(id), Name: name, Status: status,
		HireDate: day(2023, time.June, 1),
	}))
}

func mark(t *testing.T, mem *memstore.Memory, emp string, d hr.Day, status hr.AttendanceStatus) {
	t.Helper()
	_, err := mem.CreateAttendance(context.Background(), hr.AttendanceRecord{
		EmployeeID: hr.EmployeeID(emp),
		Day:        d,
		Status:     status,
		CreatedBy:  "seed",
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)
}

// =============================================================================
// ATTENDANCE REPORT
// =============================================================================

func TestAttendanceReport_TalliesByStatus(t *testing.T) {
	// GIVEN: One present day and a three-day approved leave in range
	// WHEN: Reporting over the range
	// THEN: {present:1, leave:3, total:4}

	agg, mem := newReportFixture(t)
	seedReportEmployee(t, mem, "emp-1", "Alice", hr.EmployeeActive)

	mark(t, mem, "emp-1", day(2024, time.January, 9), hr.AttendancePresent)
	for i := 10; i <= 12; i++ {
		mark(t, mem, "emp-1", day(2024, time.January, i), hr.AttendanceLeave)
	}

	tallies, err := agg.AttendanceReport(context.Background(),
		day(2024, time.January, 1), day(2024, time.January, 31))
	require.NoError(t, err)
	require.Len(t, tallies, 1)

	got := tallies[0].Tally
	assert.Equal(t, 1, got.Present)
	assert.Equal(t, 0, got.Absent)
	assert.Equal(t, 0, got.HalfDay)
	assert.Equal(t, 3, got.Leave)
	assert.Equal(t, 4, got.Total)
	assert.Equal(t, "1", got.WorkedDays.String())
}

func TestAttendanceReport_HalfDaysCountHalf(t *testing.T) {
	agg, mem := newReportFixture(t)
	seedReportEmployee(t, mem, "emp-1", "Alice", hr.EmployeeActive)

	mark(t, mem, "emp-1", day(2024, time.January, 8), hr.AttendancePresent)
	mark(t, mem, "emp-1", day(2024, time.January, 9), hr.AttendancePresent)
	mark(t, mem, "emp-1", day(2024, time.January, 10), hr.AttendanceHalfDay)

	tallies, err := agg.AttendanceReport(context.Background(),
		day(2024, time.January, 1), day(2024, time.January, 31))
	require.NoError(t, err)
	require.Len(t, tallies, 1)

	assert.Equal(t, "2.5", tallies[0].Tally.WorkedDays.String())
}

func TestAttendanceReport_IncludesEmployeesWithoutRecords(t *testing.T) {
	// Active employees appear in the report even with an empty range

	agg, mem := newReportFixture(t)
	seedReportEmployee(t, mem, "emp-1", "Alice", hr.EmployeeActive)
	seedReportEmployee(t, mem, "emp-2", "Bob", hr.EmployeeActive)

	mark(t, mem, "emp-1", day(2024, time.January, 9), hr.AttendancePresent)

	tallies, err := agg.AttendanceReport(context.Background(),
		day(2024, time.January, 1), day(2024, time.January, 31))
	require.NoError(t, err)
	require.Len(t, tallies, 2)

	byID := map[hr.EmployeeID]hr.Tally{}
	for _, et := range tallies {
		byID[et.Employee.ID] = et.Tally
	}
	assert.Equal(t, 1, byID["emp-1"].Total)
	assert.Equal(t, 0, byID["emp-2"].Total)
}

func TestAttendanceReport_SkipsInactiveEmployees(t *testing.T) {
	agg, mem := newReportFixture(t)
	seedReportEmployee(t, mem, "emp-1", "Alice", hr.EmployeeActive)
	seedReportEmployee(t, mem, "emp-2", "Bob", hr.EmployeeInactive)

	mark(t, mem, "emp-2", day(2024, time.January, 9), hr.AttendancePresent)

	tallies, err := agg.AttendanceReport(context.Background(),
		day(2024, time.January, 1), day(2024, time.January, 31))
	require.NoError(t, err)
	require.Len(t, tallies, 1)
	assert.Equal(t, hr.EmployeeID("emp-1"), tallies[0].Employee.ID)
}

func TestAttendanceReport_ExcludesRecordsOutsideRange(t *testing.T) {
	agg, mem := newReportFixture(t)
	seedReportEmployee(t, mem, "emp-1", "Alice", hr.EmployeeActive)

	mark(t, mem, "emp-1", day(2024, time.January, 31), hr.AttendancePresent)
	mark(t, mem, "emp-1", day(2024, time.February, 1), hr.AttendancePresent)

	tallies, err := agg.AttendanceReport(context.Background(),
		day(2024, time.January, 1), day(2024, time.January, 31))
	require.NoError(t, err)
	require.Len(t, tallies, 1)
	assert.Equal(t, 1, tallies[0].Tally.Total)
}

func TestAttendanceReport_InvertedRange(t *testing.T) {
	agg, _ := newReportFixture(t)

	_, err := agg.AttendanceReport(context.Background(),
		day(2024, time.January, 31), day(2024, time.January, 1))
	assert.ErrorIs(t, err, hr.ErrInvalidRange)
}

// =============================================================================
// LEAVE CALENDAR
// =============================================================================

func insertApprovedLeave(t *testing.T, mem *memstore.Memory, id, emp string, start, end hr.Day) {
	t.Helper()
	_, err := mem.InsertLeave(context.Background(), hr.LeaveRequest{
		ID:         hr.LeaveID(id),
		EmployeeID: hr.EmployeeID(emp),
		StartDay:   start,
		EndDay:     end,
		Type:       hr.LeaveAnnual,
		Status:     hr.LeaveApproved,
		CreatedBy:  "manager",
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)
}

func TestLeaveCalendar_ClipsToMonth(t *testing.T) {
	// GIVEN: Approved leave Jan 30 - Feb 2
	// WHEN: Requesting February's calendar
	// THEN: Exactly Feb 1 and Feb 2 appear

	agg, mem := newReportFixture(t)
	seedReportEmployee(t, mem, "emp-1", "Alice", hr.EmployeeActive)
	insertApprovedLeave(t, mem, "leave-1", "emp-1",
		day(2024, time.January, 30), day(2024, time.February, 2))

	entries, err := agg.LeaveCalendar(context.Background(), time.February, 2024)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2024-02-01", entries[0].Day.String())
	assert.Equal(t, "2024-02-02", entries[1].Day.String())
	assert.Equal(t, "Alice", entries[0].EmployeeName)
}

func TestLeaveCalendar_IgnoresPendingAndRejected(t *testing.T) {
	agg, mem := newReportFixture(t)
	seedReportEmployee(t, mem, "emp-1", "Alice", hr.EmployeeActive)
	ctx := context.Background()

	_, err := mem.InsertLeave(ctx, hr.LeaveRequest{
		ID: "leave-pending", EmployeeID: "emp-1",
		StartDay: day(2024, time.February, 5), EndDay: day(2024, time.February, 6),
		Type: hr.LeaveSick, Status: hr.LeavePending,
		CreatedBy: "manager", CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	entries, err := agg.LeaveCalendar(ctx, time.February, 2024)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLeaveCalendar_EmptyMonth(t *testing.T) {
	agg, mem := newReportFixture(t)
	seedReportEmployee(t, mem, "emp-1", "Alice", hr.EmployeeActive)
	insertApprovedLeave(t, mem, "leave-1", "emp-1",
		day(2024, time.June, 10), day(2024, time.June, 12))

	entries, err := agg.LeaveCalendar(context.Background(), time.February, 2024)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLeaveCalendar_MultipleEmployees(t *testing.T) {
	agg, mem := newReportFixture(t)
	seedReportEmployee(t, mem, "emp-1", "Alice", hr.EmployeeActive)
	seedReportEmployee(t, mem, "emp-2", "Bob", hr.EmployeeActive)

	insertApprovedLeave(t, mem, "leave-1", "emp-1",
		day(2024, time.March, 4), day(2024, time.March, 5))
	insertApprovedLeave(t, mem, "leave-2", "emp-2",
		day(2024, time.March, 5), day(2024, time.March, 5))

	entries, err := agg.LeaveCalendar(context.Background(), time.March, 2024)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
