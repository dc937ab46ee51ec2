/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements every persistence interface in the hr package (AttendanceStore,
  LeaveStore, EmployeeStore, CandidateStore, SyncRunStore) using SQLite. In
  production, the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

INVARIANT ENFORCEMENT (the reason this layer exists):
  idx_attendance_employee_day:
    UNIQUE(employee_id, day) - at most one attendance record per
    employee-day, enforced by the database rather than check-then-write
    code. UpsertAttendance rides this index via ON CONFLICT DO UPDATE,
    making it a single atomic conditional write.

  Leave overlap:
    A range predicate cannot be a UNIQUE index in SQLite, so InsertLeave
    runs its overlap check and insert inside the store's mutex-guarded
    critical section. The store is single-writer (one mutex over one
    connection), which makes check-then-insert race-free.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control (exclusion constraints) handles
  the overlap invariant instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/hr.db")   // ":memory:" for tests
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - hr/store.go: Interface definitions
  - hr/store/memory.go: In-memory implementation with the same semantics
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/hr-engine/hr"
)

// Store implements all hr storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		hire_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_status ON employees(status);

	CREATE TABLE IF NOT EXISTS candidates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		position TEXT,
		resume_key TEXT,
		status TEXT NOT NULL DEFAULT 'applied',
		created_at TEXT NOT NULL,
		updated_at TEXT
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		day TEXT NOT NULL,
		status TEXT NOT NULL,
		created_by TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_by TEXT,
		updated_at TEXT
	);

	-- CRITICAL: one attendance record per employee per calendar day.
	-- UpsertAttendance's ON CONFLICT clause targets this index.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_employee_day
		ON attendance(employee_id, day);

	CREATE INDEX IF NOT EXISTS idx_attendance_day ON attendance(day);
	CREATE INDEX IF NOT EXISTS idx_attendance_employee_status
		ON attendance(employee_id, status);

	CREATE TABLE IF NOT EXISTS leaves (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		start_day TEXT NOT NULL,
		end_day TEXT NOT NULL,
		reason TEXT,
		leave_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		document_key TEXT,
		needs_sync INTEGER NOT NULL DEFAULT 0,
		created_by TEXT NOT NULL,
		updated_by TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT
	);

	-- Overlap checks and range-intersection queries
	CREATE INDEX IF NOT EXISTS idx_leaves_employee_span
		ON leaves(employee_id, start_day, end_day);
	CREATE INDEX IF NOT EXISTS idx_leaves_status ON leaves(status);
	CREATE INDEX IF NOT EXISTS idx_leaves_needs_sync
		ON leaves(needs_sync) WHERE needs_sync = 1;

	CREATE TABLE IF NOT EXISTS sync_runs (
		id TEXT PRIMARY KEY,
		leave_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		attempt INTEGER NOT NULL,
		days_written INTEGER NOT NULL,
		days_total INTEGER NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		started_at TEXT NOT NULL,
		completed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sync_runs_leave ON sync_runs(leave_id);
	CREATE INDEX IF NOT EXISTS idx_sync_runs_status ON sync_runs(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ATTENDANCE STORE (hr.AttendanceStore interface)
// =============================================================================

// CreateAttendance inserts a manual attendance entry. The unique index turns
// a duplicate employee-day into hr.ErrDuplicateRecord.
func (s *Store) CreateAttendance(ctx context.Context, rec hr.AttendanceRecord) (hr.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = hr.AttendanceID(uuid.NewString())
	}

	query := `
		INSERT INTO attendance (id, employee_id, day, status, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.EmployeeID, rec.Day.String(), rec.Status,
		rec.CreatedBy, rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return hr.AttendanceRecord{}, hr.ErrDuplicateRecord
		}
		return hr.AttendanceRecord{}, fmt.Errorf("failed to insert attendance: %w", err)
	}
	return rec, nil
}

// UpsertAttendance is a single atomic conditional write keyed by
// (employee_id, day). A conflicting row keeps its ID and created-by audit
// fields; only the status and updater fields change.
func (s *Store) UpsertAttendance(ctx context.Context, rec hr.AttendanceRecord) (hr.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = hr.AttendanceID(uuid.NewString())
	}
	now := rec.CreatedAt.Format(time.RFC3339)

	query := `
		INSERT INTO attendance (id, employee_id, day, status, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, day) DO UPDATE SET
			status = excluded.status,
			updated_by = excluded.created_by,
			updated_at = excluded.created_at
	`
	if _, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.EmployeeID, rec.Day.String(), rec.Status, rec.CreatedBy, now,
	); err != nil {
		return hr.AttendanceRecord{}, fmt.Errorf("failed to upsert attendance: %w", err)
	}

	stored, err := s.findAttendanceLocked(ctx, rec.EmployeeID, rec.Day)
	if err != nil {
		return hr.AttendanceRecord{}, err
	}
	return *stored, nil
}

// FindAttendance returns the record for an employee-day, or nil.
func (s *Store) FindAttendance(ctx context.Context, employeeID hr.EmployeeID, day hr.Day) (*hr.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findAttendanceLocked(ctx, employeeID, day)
}

func (s *Store) findAttendanceLocked(ctx context.Context, employeeID hr.EmployeeID, day hr.Day) (*hr.AttendanceRecord, error) {
	rows, err := s.scanAttendance(ctx,
		attendanceColumns+` WHERE employee_id = ? AND day = ?`, employeeID, day.String())
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// GetAttendance returns a record by ID, or nil when absent.
func (s *Store) GetAttendance(ctx context.Context, id hr.AttendanceID) (*hr.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.scanAttendance(ctx, attendanceColumns+` WHERE id = ?`, id)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// SetAttendanceStatus overwrites a record's status by ID, stamping the
// update with the caller's clock.
func (s *Store) SetAttendanceStatus(ctx context.Context, id hr.AttendanceID, status hr.AttendanceStatus, actor string, at time.Time) (*hr.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE attendance SET status = ?, updated_by = ?, updated_at = ? WHERE id = ?`,
		status, actor, at.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update attendance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, hr.ErrAttendanceNotFound
	}

	rows, err := s.scanAttendance(ctx, attendanceColumns+` WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// DeleteAttendance removes a record by ID.
func (s *Store) DeleteAttendance(ctx context.Context, id hr.AttendanceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hr.ErrAttendanceNotFound
	}
	return nil
}

// QueryAttendance returns records matching the filter, day-descending unless
// the filter asks for ascending order.
func (s *Store) QueryAttendance(ctx context.Context, filter hr.AttendanceFilter) ([]hr.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := attendanceColumns + ` WHERE 1=1`
	var args []any
	if filter.EmployeeID != "" {
		query += ` AND employee_id = ?`
		args = append(args, filter.EmployeeID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.From != nil {
		query += ` AND day >= ?`
		args = append(args, filter.From.String())
	}
	if filter.To != nil {
		query += ` AND day <= ?`
		args = append(args, filter.To.String())
	}
	if filter.Ascending {
		query += ` ORDER BY day ASC`
	} else {
		query += ` ORDER BY day DESC`
	}

	return s.scanAttendance(ctx, query, args...)
}

// CountAttendance counts an employee's records with the given status.
func (s *Store) CountAttendance(ctx context.Context, employeeID hr.EmployeeID, status hr.AttendanceStatus) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendance WHERE employee_id = ? AND status = ?`,
		employeeID, status,
	).Scan(&count)
	return count, err
}

const attendanceColumns = `
	SELECT id, employee_id, day, status, created_by, created_at, updated_by, updated_at
	FROM attendance`

func (s *Store) scanAttendance(ctx context.Context, query string, args ...any) ([]hr.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var records []hr.AttendanceRecord
	for rows.Next() {
		var (
			rec                  hr.AttendanceRecord
			day, createdAt       string
			updatedBy, updatedAt sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &day, &rec.Status,
			&rec.CreatedBy, &createdAt, &updatedBy, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		rec.Day, _ = hr.ParseDay(day)
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		rec.UpdatedBy = updatedBy.String
		if updatedAt.Valid {
			t, _ := time.Parse(time.RFC3339, updatedAt.String)
			rec.UpdatedAt = &t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// =============================================================================
// LEAVE STORE (hr.LeaveStore interface)
// =============================================================================

// InsertLeave persists a new leave request. The overlap check against
// non-rejected leaves shares the store's critical section with the insert,
// so concurrent requests cannot both pass the check.
func (s *Store) InsertLeave(ctx context.Context, req hr.LeaveRequest) (hr.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Closed-interval intersection: start <= existing.end AND existing.start <= end
	var existingID, existingStart, existingEnd string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, start_day, end_day FROM leaves
		WHERE employee_id = ? AND status != 'rejected'
		  AND start_day <= ? AND ? <= end_day
		LIMIT 1
	`, req.EmployeeID, req.EndDay.String(), req.StartDay.String()).
		Scan(&existingID, &existingStart, &existingEnd)

	switch {
	case err == nil:
		start, _ := hr.ParseDay(existingStart)
		end, _ := hr.ParseDay(existingEnd)
		return hr.LeaveRequest{}, &hr.OverlapError{
			EmployeeID: req.EmployeeID,
			ExistingID: hr.LeaveID(existingID),
			Start:      start,
			End:        end,
		}
	case err != sql.ErrNoRows:
		return hr.LeaveRequest{}, fmt.Errorf("failed to check leave overlap: %w", err)
	}

	if req.ID == "" {
		req.ID = hr.LeaveID(uuid.NewString())
	}

	query := `
		INSERT INTO leaves
		(id, employee_id, start_day, end_day, reason, leave_type, status,
		 document_key, needs_sync, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query,
		req.ID, req.EmployeeID, req.StartDay.String(), req.EndDay.String(),
		req.Reason, req.Type, req.Status, req.DocumentKey, boolToInt(req.NeedsSync),
		req.CreatedBy, req.CreatedAt.Format(time.RFC3339),
	); err != nil {
		return hr.LeaveRequest{}, fmt.Errorf("failed to insert leave: %w", err)
	}
	return req, nil
}

// GetLeave returns a leave request by ID, or nil when absent.
func (s *Store) GetLeave(ctx context.Context, id hr.LeaveID) (*hr.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.scanLeaves(ctx, leaveColumns+` WHERE id = ?`, id)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// UpdateLeave persists status, document, sync flag and audit fields.
// The leave span is immutable after creation.
func (s *Store) UpdateLeave(ctx context.Context, req hr.LeaveRequest) (*hr.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updatedAt any
	if req.UpdatedAt != nil {
		updatedAt = req.UpdatedAt.Format(time.RFC3339)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE leaves SET
			status = ?, document_key = ?, needs_sync = ?, reason = ?,
			updated_by = ?, updated_at = ?
		WHERE id = ?
	`, req.Status, req.DocumentKey, boolToInt(req.NeedsSync), req.Reason,
		req.UpdatedBy, updatedAt, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update leave: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, hr.ErrLeaveNotFound
	}
	return &req, nil
}

// SetNeedsSync flips the needs-sync flag.
func (s *Store) SetNeedsSync(ctx context.Context, id hr.LeaveID, needsSync bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE leaves SET needs_sync = ? WHERE id = ?`, boolToInt(needsSync), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hr.ErrLeaveNotFound
	}
	return nil
}

// DeleteLeave removes a leave request by ID.
func (s *Store) DeleteLeave(ctx context.Context, id hr.LeaveID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM leaves WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hr.ErrLeaveNotFound
	}
	return nil
}

// QueryLeaves returns requests matching the filter, newest first. When both
// From and To are set, a leave matches if its span intersects [From, To].
func (s *Store) QueryLeaves(ctx context.Context, filter hr.LeaveFilter) ([]hr.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := leaveColumns + ` WHERE 1=1`
	var args []any
	if filter.EmployeeID != "" {
		query += ` AND employee_id = ?`
		args = append(args, filter.EmployeeID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Type != "" {
		query += ` AND leave_type = ?`
		args = append(args, filter.Type)
	}
	if filter.From != nil && filter.To != nil {
		query += ` AND start_day <= ? AND ? <= end_day`
		args = append(args, filter.To.String(), filter.From.String())
	}
	query += ` ORDER BY created_at DESC, id`

	return s.scanLeaves(ctx, query, args...)
}

const leaveColumns = `
	SELECT id, employee_id, start_day, end_day, reason, leave_type, status,
	       document_key, needs_sync, created_by, updated_by, created_at, updated_at
	FROM leaves`

func (s *Store) scanLeaves(ctx context.Context, query string, args ...any) ([]hr.LeaveRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaves: %w", err)
	}
	defer rows.Close()

	var leaves []hr.LeaveRequest
	for rows.Next() {
		var (
			leave                        hr.LeaveRequest
			startDay, endDay, createdAt  string
			reason, docKey, updBy, updAt sql.NullString
			needsSync                    int
		)
		if err := rows.Scan(&leave.ID, &leave.EmployeeID, &startDay, &endDay,
			&reason, &leave.Type, &leave.Status, &docKey, &needsSync,
			&leave.CreatedBy, &updBy, &createdAt, &updAt); err != nil {
			return nil, fmt.Errorf("failed to scan leave: %w", err)
		}
		leave.StartDay, _ = hr.ParseDay(startDay)
		leave.EndDay, _ = hr.ParseDay(endDay)
		leave.Reason = reason.String
		leave.DocumentKey = docKey.String
		leave.NeedsSync = needsSync != 0
		leave.UpdatedBy = updBy.String
		leave.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if updAt.Valid {
			t, _ := time.Parse(time.RFC3339, updAt.String)
			leave.UpdatedAt = &t
		}
		leaves = append(leaves, leave)
	}
	return leaves, rows.Err()
}

// =============================================================================
// EMPLOYEE STORE (hr.EmployeeStore interface)
// =============================================================================

// SaveEmployee inserts or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp hr.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, email, status, hire_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			status = excluded.status,
			hire_date = excluded.hire_date
	`
	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Email, emp.Status, emp.HireDate.String(),
		emp.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// GetEmployee returns an employee by ID, or nil when absent.
func (s *Store) GetEmployee(ctx context.Context, id hr.EmployeeID) (*hr.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		emp                 hr.Employee
		hireDate, createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, status, hire_date, created_at FROM employees WHERE id = ?`,
		id,
	).Scan(&emp.ID, &emp.Name, &emp.Email, &emp.Status, &hireDate, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	emp.HireDate, _ = hr.ParseDay(hireDate)
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &emp, nil
}

// ListEmployees returns employees ordered by name. Empty status matches all.
func (s *Store) ListEmployees(ctx context.Context, status hr.EmployeeStatus) ([]hr.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, name, email, status, hire_date, created_at FROM employees`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []hr.Employee
	for rows.Next() {
		var (
			emp                 hr.Employee
			hireDate, createdAt string
		)
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.Email, &emp.Status, &hireDate, &createdAt); err != nil {
			return nil, err
		}
		emp.HireDate, _ = hr.ParseDay(hireDate)
		emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes an employee.
func (s *Store) DeleteEmployee(ctx context.Context, id hr.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hr.ErrEmployeeNotFound
	}
	return nil
}

// =============================================================================
// CANDIDATE STORE (hr.CandidateStore interface)
// =============================================================================

// SaveCandidate inserts or updates a candidate.
func (s *Store) SaveCandidate(ctx context.Context, c hr.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updatedAt any
	if c.UpdatedAt != nil {
		updatedAt = c.UpdatedAt.Format(time.RFC3339)
	}

	query := `
		INSERT INTO candidates (id, name, email, phone, position, resume_key, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			position = excluded.position,
			resume_key = excluded.resume_key,
			status = excluded.status,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Position, c.ResumeKey, c.Status,
		c.CreatedAt.Format(time.RFC3339), updatedAt,
	)
	return err
}

// GetCandidate returns a candidate by ID, or nil when absent.
func (s *Store) GetCandidate(ctx context.Context, id hr.CandidateID) (*hr.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.scanCandidates(ctx, candidateColumns+` WHERE id = ?`, id)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// ListCandidates returns all candidates ordered by name.
func (s *Store) ListCandidates(ctx context.Context) ([]hr.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanCandidates(ctx, candidateColumns+` ORDER BY name`)
}

// DeleteCandidate removes a candidate.
func (s *Store) DeleteCandidate(ctx context.Context, id hr.CandidateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM candidates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hr.ErrCandidateNotFound
	}
	return nil
}

const candidateColumns = `
	SELECT id, name, email, phone, position, resume_key, status, created_at, updated_at
	FROM candidates`

func (s *Store) scanCandidates(ctx context.Context, query string, args ...any) ([]hr.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []hr.Candidate
	for rows.Next() {
		var (
			c                                  hr.Candidate
			createdAt                          string
			email, phone, position, key, updAt sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &email, &phone, &position, &key,
			&c.Status, &createdAt, &updAt); err != nil {
			return nil, err
		}
		c.Email = email.String
		c.Phone = phone.String
		c.Position = position.String
		c.ResumeKey = key.String
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if updAt.Valid {
			t, _ := time.Parse(time.RFC3339, updAt.String)
			c.UpdatedAt = &t
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// =============================================================================
// SYNC RUN STORE (hr.SyncRunStore interface)
// =============================================================================

// SaveSyncRun appends one reconciliation attempt record.
func (s *Store) SaveSyncRun(ctx context.Context, run hr.SyncRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO sync_runs
		(id, leave_id, employee_id, attempt, days_written, days_total, status, error, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.LeaveID, run.EmployeeID, run.Attempt, run.DaysWritten,
		run.DaysTotal, run.Status, run.Error,
		run.StartedAt.Format(time.RFC3339), run.CompletedAt.Format(time.RFC3339),
	)
	return err
}

// ListSyncRuns returns runs newest first. Empty status matches all.
func (s *Store) ListSyncRuns(ctx context.Context, status hr.SyncRunStatus) ([]hr.SyncRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, leave_id, employee_id, attempt, days_written, days_total, status, error, started_at, completed_at
		FROM sync_runs
	`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY started_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []hr.SyncRun
	for rows.Next() {
		var (
			run                    hr.SyncRun
			errMsg                 sql.NullString
			startedAt, completedAt string
		)
		if err := rows.Scan(&run.ID, &run.LeaveID, &run.EmployeeID, &run.Attempt,
			&run.DaysWritten, &run.DaysTotal, &run.Status, &errMsg,
			&startedAt, &completedAt); err != nil {
			return nil, err
		}
		run.Error = errMsg.String
		run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		run.CompletedAt, _ = time.Parse(time.RFC3339, completedAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LeavesNeedingSync returns approved leaves still flagged for reconciliation.
func (s *Store) LeavesNeedingSync(ctx context.Context) ([]hr.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.scanLeaves(ctx,
		leaveColumns+` WHERE status = 'approved' AND needs_sync = 1 ORDER BY created_at`)
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data. Used by tests and demo scenarios.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"attendance", "leaves", "sync_runs", "employees", "candidates"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
