/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for testing and demos. Each scenario creates employees,
	attendance records and leave requests that demonstrate specific
	behavior of the reconciliation engine.

AVAILABLE SCENARIOS:

	small-team:        Three employees, a week of attendance, one approved leave
	pending-approvals: A queue of pending leave requests across types
	month-in-review:   A full month of attendance ready for the report endpoints

HOW SCENARIOS WORK:
 1. Reset store (clear all data)
 2. Create employees
 3. Record attendance
 4. Submit and approve leaves (approval drives real reconciliation,
    so leave-day attendance records come from the actual sync path)

USAGE VIA API:

	POST /scenarios/load
	{"scenario_id": "small-team"}

NOTE:

	Scenarios reset the store. Only mount these endpoints in
	development/demo environments (see RouterOptions.EnableScenarios).

SEE ALSO:
  - handlers.go: Handler the loaders run against
  - server.go: EnableScenarios flag
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/hr-engine/hr"
)

// Resetter clears all stored data. Implemented by both the sqlite and
// memory stores.
type Resetter interface {
	Reset(ctx context.Context) error
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "small-team",
		Name:        "Small Team",
		Description: "Three employees, a week of attendance, one approved leave",
	},
	{
		ID:          "pending-approvals",
		Name:        "Pending Approvals",
		Description: "A queue of pending leave requests across leave types",
	},
	{
		ID:          "month-in-review",
		Name:        "Month In Review",
		Description: "A full month of attendance data for the report endpoints",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"scenarios": scenarios,
		"current":   h.currentScenario,
	})
}

// LoadScenario resets the store and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	if h.Resetter == nil {
		writeError(w, http.StatusNotFound, "Scenarios not available", nil)
		return
	}

	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	if err := h.Resetter.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "small-team":
		err = h.loadSmallTeam(ctx)
	case "pending-approvals":
		err = h.loadPendingApprovals(ctx)
	case "month-in-review":
		err = h.loadMonthInReview(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]any{"loaded": req.ScenarioID})
}

// =============================================================================
// LOADERS
// =============================================================================

func (h *Handler) seedEmployee(ctx context.Context, id, name, email string, hire hr.Day) (hr.Employee, error) {
	emp := hr.Employee{
		ID:        hr.EmployeeID(id),
		Name:      name,
		Email:     email,
		Status:    hr.EmployeeActive,
		HireDate:  hire,
		CreatedAt: h.now(),
	}
	return emp, h.Employees.SaveEmployee(ctx, emp)
}

func (h *Handler) seedAttendance(ctx context.Context, employeeID hr.EmployeeID, day hr.Day, status hr.AttendanceStatus) error {
	_, err := h.Attendance.CreateAttendance(ctx, hr.AttendanceRecord{
		EmployeeID: employeeID,
		Day:        day,
		Status:     status,
		CreatedBy:  "scenario",
		CreatedAt:  h.now(),
	})
	return err
}

func (h *Handler) loadSmallTeam(ctx context.Context) error {
	monday := mondayOf(h.now())

	alice, err := h.seedEmployee(ctx, "emp-alice", "Alice Chen", "alice@example.com", monday.AddDays(-90))
	if err != nil {
		return err
	}
	bob, err := h.seedEmployee(ctx, "emp-bob", "Bob Okafor", "bob@example.com", monday.AddDays(-60))
	if err != nil {
		return err
	}
	carol, err := h.seedEmployee(ctx, "emp-carol", "Carol Diaz", "carol@example.com", monday.AddDays(-30))
	if err != nil {
		return err
	}

	// A working week of attendance
	for i := 0; i < 5; i++ {
		day := monday.AddDays(i)
		if err := h.seedAttendance(ctx, alice.ID, day, hr.AttendancePresent); err != nil {
			return err
		}
		if err := h.seedAttendance(ctx, carol.ID, day, hr.AttendancePresent); err != nil {
			return err
		}
	}
	if err := h.seedAttendance(ctx, bob.ID, monday, hr.AttendancePresent); err != nil {
		return err
	}
	if err := h.seedAttendance(ctx, bob.ID, monday.AddDays(1), hr.AttendanceHalfDay); err != nil {
		return err
	}

	// One approved leave for Bob; approval runs the real sync path so the
	// remaining weekdays materialize as leave attendance records.
	leave, err := h.Leaves.Create(ctx, hr.CreateLeaveInput{
		EmployeeID: bob.ID,
		StartDay:   monday.AddDays(2),
		EndDay:     monday.AddDays(4),
		Type:       hr.LeaveAnnual,
		Reason:     "Family trip",
	}, "scenario")
	if err != nil {
		return err
	}
	_, err = h.Leaves.Transition(ctx, leave.ID, hr.LeaveApproved, "scenario")
	return err
}

func (h *Handler) loadPendingApprovals(ctx context.Context) error {
	monday := mondayOf(h.now())

	requests := []struct {
		id, name, email string
		offset, length  int
		leaveType       hr.LeaveType
		reason          string
	}{
		{"emp-dana", "Dana Park", "dana@example.com", 7, 2, hr.LeaveSick, "Flu"},
		{"emp-eli", "Eli Novak", "eli@example.com", 10, 5, hr.LeaveAnnual, "Vacation"},
		{"emp-fay", "Fay Osei", "fay@example.com", 14, 1, hr.LeaveCasual, "Appointment"},
	}

	for _, r := range requests {
		emp, err := h.seedEmployee(ctx, r.id, r.name, r.email, monday.AddDays(-120))
		if err != nil {
			return err
		}
		// Leave creation requires prior attendance history
		if err := h.seedAttendance(ctx, emp.ID, monday.AddDays(-1), hr.AttendancePresent); err != nil {
			return err
		}
		if _, err := h.Leaves.Create(ctx, hr.CreateLeaveInput{
			EmployeeID: emp.ID,
			StartDay:   monday.AddDays(r.offset),
			EndDay:     monday.AddDays(r.offset + r.length - 1),
			Type:       r.leaveType,
			Reason:     r.reason,
		}, "scenario"); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadMonthInReview(ctx context.Context) error {
	now := h.now()
	first := hr.NewDay(now.Year(), now.Month(), 1)
	daysInMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()

	gina, err := h.seedEmployee(ctx, "emp-gina", "Gina Petrov", "gina@example.com", first.AddDays(-365))
	if err != nil {
		return err
	}
	hugo, err := h.seedEmployee(ctx, "emp-hugo", "Hugo Tanaka", "hugo@example.com", first.AddDays(-200))
	if err != nil {
		return err
	}

	for i := 0; i < daysInMonth; i++ {
		day := first.AddDays(i)
		if day.Time.Weekday() == time.Saturday || day.Time.Weekday() == time.Sunday {
			continue
		}
		ginaStatus := hr.AttendancePresent
		if i%9 == 4 {
			ginaStatus = hr.AttendanceHalfDay
		}
		if err := h.seedAttendance(ctx, gina.ID, day, ginaStatus); err != nil {
			return err
		}
		hugoStatus := hr.AttendancePresent
		if i%11 == 6 {
			hugoStatus = hr.AttendanceAbsent
		}
		if err := h.seedAttendance(ctx, hugo.ID, day, hugoStatus); err != nil {
			return err
		}
	}
	return nil
}

// mondayOf returns the Monday of the week containing t.
func mondayOf(t time.Time) hr.Day {
	day := hr.NewDay(t.Year(), t.Month(), t.Day())
	offset := (int(t.Weekday()) + 6) % 7
	return day.AddDays(-offset)
}
