/*
report.go - Attendance tallies and the leave calendar projection

PURPOSE:
  Read-only aggregation over the attendance and leave stores. Reports
  never mutate state, so caller cancellation simply stops iteration.

REPORTS:
  AttendanceReport: joins active employees with their attendance records
  in a window and counts by status. Employees with zero records still
  appear, all counts zero.

  LeaveCalendar: projects approved leaves onto the days of one month,
  clipping spans to the month boundary.
*/
package hr

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Tally counts one employee's attendance records by status in a window.
type Tally struct {
	Present int
	Absent  int
	HalfDay int
	Leave   int
	Total   int

	// WorkedDays is the day-equivalent of time at work: present counts 1,
	// half-day counts 0.5. Decimal keeps half days exact.
	WorkedDays decimal.Decimal
}

// EmployeeTally pairs an active employee with their tally.
type EmployeeTally struct {
	Employee Employee
	Tally    Tally
}

// CalendarEntry is one employee-day of approved leave within a month.
type CalendarEntry struct {
	Day          Day
	EmployeeID   EmployeeID
	EmployeeName string
	LeaveType    LeaveType
}

var half = decimal.NewFromFloat(0.5)

// ReportAggregator reads the stores and produces report rows.
type ReportAggregator struct {
	Employees  EmployeeStore
	Attendance AttendanceStore
	Leaves     LeaveStore
}

// AttendanceReport tallies attendance per active employee over [start, end].
// Fails with ErrInvalidRange when start is after end.
func (ra *ReportAggregator) AttendanceReport(ctx context.Context, start, end Day) ([]EmployeeTally, error) {
	if start.After(end) {
		return nil, ErrInvalidRange
	}

	employees, err := ra.Employees.ListEmployees(ctx, EmployeeActive)
	if err != nil {
		return nil, err
	}

	result := make([]EmployeeTally, 0, len(employees))
	for _, emp := range employees {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		records, err := ra.Attendance.QueryAttendance(ctx, AttendanceFilter{
			EmployeeID: emp.ID,
			From:       &start,
			To:         &end,
		})
		if err != nil {
			return nil, err
		}

		var t Tally
		for _, rec := range records {
			switch rec.Status {
			case AttendancePresent:
				t.Present++
			case AttendanceAbsent:
				t.Absent++
			case AttendanceHalfDay:
				t.HalfDay++
			case AttendanceLeave:
				t.Leave++
			}
		}
		t.Total = t.Present + t.Absent + t.HalfDay + t.Leave
		t.WorkedDays = decimal.NewFromInt(int64(t.Present)).
			Add(half.Mul(decimal.NewFromInt(int64(t.HalfDay))))

		result = append(result, EmployeeTally{Employee: emp, Tally: t})
	}
	return result, nil
}

// LeaveCalendar emits one entry per clipped day of every approved leave
// overlapping the given month. The result is flat, ordered by the store's
// leave iteration order and then by day within each leave.
func (ra *ReportAggregator) LeaveCalendar(ctx context.Context, month time.Month, year int) ([]CalendarEntry, error) {
	first, last, err := MonthWindow(month, year)
	if err != nil {
		return nil, err
	}

	leaves, err := ra.Leaves.QueryLeaves(ctx, LeaveFilter{
		Status: LeaveApproved,
		From:   &first,
		To:     &last,
	})
	if err != nil {
		return nil, err
	}

	names := map[EmployeeID]string{}
	entries := []CalendarEntry{}
	for _, leave := range leaves {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !Overlaps(leave.StartDay, leave.EndDay, first, last) {
			continue
		}

		name, ok := names[leave.EmployeeID]
		if !ok {
			emp, err := ra.Employees.GetEmployee(ctx, leave.EmployeeID)
			if err != nil {
				return nil, err
			}
			if emp != nil {
				name = emp.Name
			}
			names[leave.EmployeeID] = name
		}

		start, end := Clip(leave.StartDay, leave.EndDay, first, last)
		days, err := Expand(start, end)
		if err != nil {
			return nil, err
		}
		for _, day := range days {
			entries = append(entries, CalendarEntry{
				Day:          day,
				EmployeeID:   leave.EmployeeID,
				EmployeeName: name,
				LeaveType:    leave.Type,
			})
		}
	}
	return entries, nil
}
