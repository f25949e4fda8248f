package reminder

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed storage for reminders. SQLite serializes
// conflicting writes to the same row, which is the only write coordination
// the scheduler relies on.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at dbPath and
// ensures the reminders table exists.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	// Timer goroutines write concurrently with the interactive commands;
	// wait out a held write lock instead of failing with SQLITE_BUSY.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := createTable(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reminders (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			item        TEXT    NOT NULL,
			target_time TEXT    NOT NULL,
			frequency   TEXT    NOT NULL DEFAULT 'Once',
			status      TEXT    NOT NULL DEFAULT 'Pending',
			created_at  TEXT    NOT NULL,
			updated_at  TEXT    NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new reminder and returns it with the assigned ID.
func (s *Store) Create(r Reminder) (*Reminder, error) {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	if r.Frequency == "" {
		r.Frequency = FrequencyOnce
	}
	if r.Status == "" {
		r.Status = StatusPending
	}

	result, err := s.db.Exec(`
		INSERT INTO reminders (item, target_time, frequency, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.Item, r.TargetTime.UTC().Format(time.RFC3339),
		r.Frequency, r.Status,
		r.CreatedAt.Format(time.RFC3339), r.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to insert reminder: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted ID: %w", err)
	}
	r.ID = id

	return &r, nil
}

// List returns all reminders ordered by target time, optionally filtered
// by status. Pass an empty string to list all.
func (s *Store) List(statusFilter string) ([]Reminder, error) {
	var rows *sql.Rows
	var err error

	if statusFilter != "" {
		rows, err = s.db.Query(`
			SELECT id, item, target_time, frequency, status, created_at, updated_at
			FROM reminders WHERE status = ? ORDER BY target_time ASC
		`, statusFilter)
	} else {
		rows, err = s.db.Query(`
			SELECT id, item, target_time, frequency, status, created_at, updated_at
			FROM reminders ORDER BY target_time ASC
		`)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	return scanReminders(rows)
}

// Active returns all reminders that are still waiting to fire
// (Pending or Snoozed), ordered by target time.
func (s *Store) Active() ([]Reminder, error) {
	rows, err := s.db.Query(`
		SELECT id, item, target_time, frequency, status, created_at, updated_at
		FROM reminders WHERE status IN (?, ?) ORDER BY target_time ASC
	`, StatusPending, StatusSnoozed)
	if err != nil {
		return nil, fmt.Errorf("failed to list active reminders: %w", err)
	}
	defer rows.Close()

	return scanReminders(rows)
}

// Due returns all active reminders whose target time is at or before now.
func (s *Store) Due(now time.Time) ([]Reminder, error) {
	rows, err := s.db.Query(`
		SELECT id, item, target_time, frequency, status, created_at, updated_at
		FROM reminders WHERE status IN (?, ?) AND target_time <= ? ORDER BY target_time ASC
	`, StatusPending, StatusSnoozed, now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to get due reminders: %w", err)
	}
	defer rows.Close()

	return scanReminders(rows)
}

// Get returns a single reminder by ID.
func (s *Store) Get(id int64) (*Reminder, error) {
	row := s.db.QueryRow(`
		SELECT id, item, target_time, frequency, status, created_at, updated_at
		FROM reminders WHERE id = ?
	`, id)

	r, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reminder %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return r, nil
}

// Delete removes a reminder by ID.
func (s *Store) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("reminder %d: %w", id, ErrNotFound)
	}
	return nil
}

// MarkMissedBefore transitions every Pending reminder whose target time is
// before cutoff to Missed and returns how many rows changed. Used by the
// startup reconciler; no notification is involved.
func (s *Store) MarkMissedBefore(cutoff time.Time) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := s.db.Exec(`
		UPDATE reminders SET status = ?, updated_at = ?
		WHERE status = ? AND target_time < ?
	`, StatusMissed, now, StatusPending, cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile missed reminders: %w", err)
	}

	n, _ := result.RowsAffected()
	return n, nil
}

// UpdateFields holds optional fields for a partial update.
type UpdateFields struct {
	Item       *string
	TargetTime *time.Time
	Status     *string
}

// Update applies partial updates to a reminder.
func (s *Store) Update(id int64, fields UpdateFields) (*Reminder, error) {
	// Build SET clause dynamically
	setClauses := []string{}
	args := []interface{}{}

	if fields.Item != nil {
		setClauses = append(setClauses, "item = ?")
		args = append(args, *fields.Item)
	}
	if fields.TargetTime != nil {
		setClauses = append(setClauses, "target_time = ?")
		args = append(args, fields.TargetTime.UTC().Format(time.RFC3339))
	}
	if fields.Status != nil {
		setClauses = append(setClauses, "status = ?")
		args = append(args, *fields.Status)
	}

	if len(setClauses) == 0 {
		return s.Get(id)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, now)

	query := "UPDATE reminders SET "
	for i, clause := range setClauses {
		if i > 0 {
			query += ", "
		}
		query += clause
	}
	query += " WHERE id = ?"
	args = append(args, id)

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return nil, fmt.Errorf("reminder %d: %w", id, ErrNotFound)
	}

	return s.Get(id)
}

// scanReminders reads multiple rows into a slice of Reminder.
func scanReminders(rows *sql.Rows) ([]Reminder, error) {
	var reminders []Reminder
	for rows.Next() {
		var r Reminder
		var targetTime, createdAt, updatedAt string

		if err := rows.Scan(&r.ID, &r.Item, &targetTime,
			&r.Frequency, &r.Status,
			&createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}

		r.TargetTime, _ = time.Parse(time.RFC3339, targetTime)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

// scanReminder reads a single row into a Reminder.
func scanReminder(row *sql.Row) (*Reminder, error) {
	var r Reminder
	var targetTime, createdAt, updatedAt string

	if err := row.Scan(&r.ID, &r.Item, &targetTime,
		&r.Frequency, &r.Status,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	r.TargetTime, _ = time.Parse(time.RFC3339, targetTime)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &r, nil
}
