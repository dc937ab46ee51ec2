// Package store provides an in-memory implementation of the hr store
// interfaces, for tests and development. A single mutex makes the store
// single-writer, so the uniqueness and overlap invariants hold under
// concurrent callers the same way the SQLite store's indexes do.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/hr-engine/hr"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	employees  map[hr.EmployeeID]hr.Employee
	candidates map[hr.CandidateID]hr.Candidate
	attendance map[hr.AttendanceID]hr.AttendanceRecord
	byDay      map[dayKey]hr.AttendanceID
	leaves     map[hr.LeaveID]hr.LeaveRequest
	leaveOrder []hr.LeaveID
	runs       []hr.SyncRun
}

type dayKey struct {
	EmployeeID hr.EmployeeID
	Day        string
}

func NewMemory() *Memory {
	return &Memory{
		employees:  make(map[hr.EmployeeID]hr.Employee),
		candidates: make(map[hr.CandidateID]hr.Candidate),
		attendance: make(map[hr.AttendanceID]hr.AttendanceRecord),
		byDay:      make(map[dayKey]hr.AttendanceID),
		leaves:     make(map[hr.LeaveID]hr.LeaveRequest),
	}
}

// =============================================================================
// ATTENDANCE STORE (hr.AttendanceStore interface)
// =============================================================================

func (m *Memory) CreateAttendance(_ context.Context, rec hr.AttendanceRecord) (hr.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := dayKey{EmployeeID: rec.EmployeeID, Day: rec.Day.String()}
	if _, exists := m.byDay[k]; exists {
		return hr.AttendanceRecord{}, hr.ErrDuplicateRecord
	}
	if rec.ID == "" {
		rec.ID = hr.AttendanceID(uuid.NewString())
	}
	m.attendance[rec.ID] = rec
	m.byDay[k] = rec.ID
	return rec, nil
}

func (m *Memory) UpsertAttendance(_ context.Context, rec hr.AttendanceRecord) (hr.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := dayKey{EmployeeID: rec.EmployeeID, Day: rec.Day.String()}
	if existingID, exists := m.byDay[k]; exists {
		existing := m.attendance[existingID]
		existing.Status = rec.Status
		existing.UpdatedBy = rec.CreatedBy
		at := rec.CreatedAt
		existing.UpdatedAt = &at
		m.attendance[existingID] = existing
		return existing, nil
	}

	if rec.ID == "" {
		rec.ID = hr.AttendanceID(uuid.NewString())
	}
	m.attendance[rec.ID] = rec
	m.byDay[k] = rec.ID
	return rec, nil
}

func (m *Memory) FindAttendance(_ context.Context, employeeID hr.EmployeeID, day hr.Day) (*hr.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, exists := m.byDay[dayKey{EmployeeID: employeeID, Day: day.String()}]
	if !exists {
		return nil, nil
	}
	rec := m.attendance[id]
	return &rec, nil
}

func (m *Memory) GetAttendance(_ context.Context, id hr.AttendanceID) (*hr.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, exists := m.attendance[id]
	if !exists {
		return nil, nil
	}
	return &rec, nil
}

func (m *Memory) SetAttendanceStatus(_ context.Context, id hr.AttendanceID, status hr.AttendanceStatus, actor string, at time.Time) (*hr.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, exists := m.attendance[id]
	if !exists {
		return nil, hr.ErrAttendanceNotFound
	}
	rec.Status = status
	rec.UpdatedBy = actor
	rec.UpdatedAt = &at
	m.attendance[id] = rec
	return &rec, nil
}

func (m *Memory) DeleteAttendance(_ context.Context, id hr.AttendanceID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, exists := m.attendance[id]
	if !exists {
		return hr.ErrAttendanceNotFound
	}
	delete(m.attendance, id)
	delete(m.byDay, dayKey{EmployeeID: rec.EmployeeID, Day: rec.Day.String()})
	return nil
}

func (m *Memory) QueryAttendance(_ context.Context, filter hr.AttendanceFilter) ([]hr.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []hr.AttendanceRecord
	for _, rec := range m.attendance {
		if filter.EmployeeID != "" && rec.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if filter.From != nil && rec.Day.Before(*filter.From) {
			continue
		}
		if filter.To != nil && rec.Day.After(*filter.To) {
			continue
		}
		result = append(result, rec)
	}

	sort.Slice(result, func(i, j int) bool {
		if filter.Ascending {
			return result[i].Day.Before(result[j].Day)
		}
		return result[j].Day.Before(result[i].Day)
	})
	return result, nil
}

func (m *Memory) CountAttendance(_ context.Context, employeeID hr.EmployeeID, status hr.AttendanceStatus) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, rec := range m.attendance {
		if rec.EmployeeID == employeeID && rec.Status == status {
			count++
		}
	}
	return count, nil
}

// =============================================================================
// LEAVE STORE (hr.LeaveStore interface)
// =============================================================================

func (m *Memory) InsertLeave(_ context.Context, req hr.LeaveRequest) (hr.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Overlap check and insert share the critical section.
	for _, id := range m.leaveOrder {
		existing := m.leaves[id]
		if existing.EmployeeID != req.EmployeeID || !existing.Status.Blocking() {
			continue
		}
		if hr.Overlaps(req.StartDay, req.EndDay, existing.StartDay, existing.EndDay) {
			return hr.LeaveRequest{}, &hr.OverlapError{
				EmployeeID: req.EmployeeID,
				ExistingID: existing.ID,
				Start:      existing.StartDay,
				End:        existing.EndDay,
			}
		}
	}

	if req.ID == "" {
		req.ID = hr.LeaveID(uuid.NewString())
	}
	m.leaves[req.ID] = req
	m.leaveOrder = append(m.leaveOrder, req.ID)
	return req, nil
}

func (m *Memory) GetLeave(_ context.Context, id hr.LeaveID) (*hr.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	leave, exists := m.leaves[id]
	if !exists {
		return nil, nil
	}
	return &leave, nil
}

func (m *Memory) UpdateLeave(_ context.Context, req hr.LeaveRequest) (*hr.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.leaves[req.ID]; !exists {
		return nil, hr.ErrLeaveNotFound
	}
	m.leaves[req.ID] = req
	return &req, nil
}

func (m *Memory) SetNeedsSync(_ context.Context, id hr.LeaveID, needsSync bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	leave, exists := m.leaves[id]
	if !exists {
		return hr.ErrLeaveNotFound
	}
	leave.NeedsSync = needsSync
	m.leaves[id] = leave
	return nil
}

func (m *Memory) DeleteLeave(_ context.Context, id hr.LeaveID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.leaves[id]; !exists {
		return hr.ErrLeaveNotFound
	}
	delete(m.leaves, id)
	for i, lid := range m.leaveOrder {
		if lid == id {
			m.leaveOrder = append(m.leaveOrder[:i], m.leaveOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) QueryLeaves(_ context.Context, filter hr.LeaveFilter) ([]hr.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []hr.LeaveRequest
	for _, id := range m.leaveOrder {
		leave := m.leaves[id]
		if filter.EmployeeID != "" && leave.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && leave.Status != filter.Status {
			continue
		}
		if filter.Type != "" && leave.Type != filter.Type {
			continue
		}
		if filter.From != nil && filter.To != nil &&
			!hr.Overlaps(leave.StartDay, leave.EndDay, *filter.From, *filter.To) {
			continue
		}
		result = append(result, leave)
	}

	// Newest first, matching the SQLite store's created_at ordering.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// =============================================================================
// EMPLOYEE STORE (hr.EmployeeStore interface)
// =============================================================================

func (m *Memory) SaveEmployee(_ context.Context, emp hr.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id hr.EmployeeID) (*hr.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, exists := m.employees[id]
	if !exists {
		return nil, nil
	}
	return &emp, nil
}

func (m *Memory) ListEmployees(_ context.Context, status hr.EmployeeStatus) ([]hr.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []hr.Employee
	for _, emp := range m.employees {
		if status != "" && emp.Status != status {
			continue
		}
		result = append(result, emp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *Memory) DeleteEmployee(_ context.Context, id hr.EmployeeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.employees[id]; !exists {
		return hr.ErrEmployeeNotFound
	}
	delete(m.employees, id)
	return nil
}

// =============================================================================
// CANDIDATE STORE (hr.CandidateStore interface)
// =============================================================================

func (m *Memory) SaveCandidate(_ context.Context, c hr.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates[c.ID] = c
	return nil
}

func (m *Memory) GetCandidate(_ context.Context, id hr.CandidateID) (*hr.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, exists := m.candidates[id]
	if !exists {
		return nil, nil
	}
	return &c, nil
}

func (m *Memory) ListCandidates(_ context.Context) ([]hr.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []hr.Candidate
	for _, c := range m.candidates {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *Memory) DeleteCandidate(_ context.Context, id hr.CandidateID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.candidates[id]; !exists {
		return hr.ErrCandidateNotFound
	}
	delete(m.candidates, id)
	return nil
}

// =============================================================================
// SYNC RUN STORE (hr.SyncRunStore interface)
// =============================================================================

func (m *Memory) SaveSyncRun(_ context.Context, run hr.SyncRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *Memory) ListSyncRuns(_ context.Context, status hr.SyncRunStatus) ([]hr.SyncRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []hr.SyncRun
	for i := len(m.runs) - 1; i >= 0; i-- {
		if status != "" && m.runs[i].Status != status {
			continue
		}
		result = append(result, m.runs[i])
	}
	return result, nil
}

func (m *Memory) LeavesNeedingSync(_ context.Context) ([]hr.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []hr.LeaveRequest
	for _, id := range m.leaveOrder {
		leave := m.leaves[id]
		if leave.Status == hr.LeaveApproved && leave.NeedsSync {
			result = append(result, leave)
		}
	}
	return result, nil
}

// Reset clears all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.employees = make(map[hr.EmployeeID]hr.Employee)
	m.candidates = make(map[hr.CandidateID]hr.Candidate)
	m.attendance = make(map[hr.AttendanceID]hr.AttendanceRecord)
	m.byDay = make(map[dayKey]hr.AttendanceID)
	m.leaves = make(map[hr.LeaveID]hr.LeaveRequest)
	m.leaveOrder = nil
	m.runs = nil
	return nil
}
