package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/conorfennell/habittracker/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

var habitColumnList = func() string {
	cols := make([]string, 0, domain.NumHabits)
	for _, h := range domain.Habits {
		cols = append(cols, h.Column())
	}
	return strings.Join(cols, ", ")
}()

// checkArgs flattens checks into query arguments in column order.
func checkArgs(checks domain.Checks) []any {
	args := make([]any, 0, domain.NumHabits)
	for _, s := range checks {
		args = append(args, s)
	}
	return args
}

// UpsertRecord stores the checks for (week, date), updating the existing row for that
// pair if there is one. It reports whether a new row was inserted.
func (db *DB) UpsertRecord(week int, date string, checks domain.Checks) (bool, error) {
	var id int64
	err := db.conn.QueryRow(`
		SELECT id FROM monthly_habit_tracker
		WHERE week = ? AND date_str = ?
	`, week, date).Scan(&id)

	switch {
	case err == sql.ErrNoRows:
		args := append([]any{week, date}, checkArgs(checks)...)
		if _, err := db.conn.Exec(`
			INSERT INTO monthly_habit_tracker (week, date_str, `+habitColumnList+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, args...); err != nil {
			return false, fmt.Errorf("failed to insert habits for week %d date %s: %w", week, date, err)
		}
		slog.Info("Added habits", "week", week, "date", date)
		return true, nil
	case err != nil:
		return false, fmt.Errorf("failed to look up habits for week %d date %s: %w", week, date, err)
	}

	args := append(checkArgs(checks), id)
	if _, err := db.conn.Exec(`
		UPDATE monthly_habit_tracker
		SET healthy_eating = ?, daily_exercise = ?, no_smoke = ?, time_outdoors = ?, blogging = ?
		WHERE id = ?
	`, args...); err != nil {
		return false, fmt.Errorf("failed to update habits for week %d date %s: %w", week, date, err)
	}
	slog.Info("Updated habits", "week", week, "date", date, "id", id)
	return false, nil
}

// GetRecord looks up a record using the week exactly as typed. A week that is not an
// integer is treated the same as a missing record.
func (db *DB) GetRecord(week, date string) (*domain.Record, error) {
	w, err := strconv.Atoi(strings.TrimSpace(week))
	if err != nil {
		return nil, nil
	}
	return db.FindRecord(w, date)
}

// FindRecord retrieves the record for (week, date). It returns nil, nil when absent.
func (db *DB) FindRecord(week int, date string) (*domain.Record, error) {
	row := db.conn.QueryRow(`
		SELECT id, week, date_str, `+habitColumnList+`
		FROM monthly_habit_tracker
		WHERE week = ? AND date_str = ?
	`, week, date)

	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Record not found
		}
		return nil, fmt.Errorf("failed to find habits for week %d date %s: %w", week, date, err)
	}
	return rec, nil
}

// DeleteRecord removes the record for (week, date) and reports whether one existed.
func (db *DB) DeleteRecord(week int, date string) (bool, error) {
	res, err := db.conn.Exec(`
		DELETE FROM monthly_habit_tracker
		WHERE week = ? AND date_str = ?
	`, week, date)
	if err != nil {
		return false, fmt.Errorf("failed to delete habits for week %d date %s: %w", week, date, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to count deleted rows for week %d date %s: %w", week, date, err)
	}
	if n == 0 {
		slog.Info("No habits found to delete", "week", week, "date", date)
		return false, nil
	}
	slog.Info("Deleted habits", "week", week, "date", date)
	return true, nil
}

// LeadingStreak counts the rows, in insertion order starting from the very first one,
// on which every habit is checked off. Counting stops at the first row that is not.
//
// This is a streak from the beginning of history, not one ending at the latest day.
func (db *DB) LeadingStreak() (int, error) {
	rows, err := db.conn.Query(`
		SELECT ` + habitColumnList + `
		FROM monthly_habit_tracker
		ORDER BY id ASC
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to read habits for streak: %w", err)
	}
	defer rows.Close()

	streak := 0
	for rows.Next() {
		var c domain.Checks
		if err := rows.Scan(&c[0], &c[1], &c[2], &c[3], &c[4]); err != nil {
			return 0, fmt.Errorf("failed to scan habits for streak: %w", err)
		}
		if !c.AllCheckedOff() {
			break
		}
		streak++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read habits for streak: %w", err)
	}
	slog.Debug("Computed leading streak", "streak", streak)
	return streak, nil
}

// BestHabit returns the habit checked off on the most rows overall, with that count.
// Rows need not be consecutive. Ties go to the habit listed first in domain.Habits,
// so an empty table yields HealthyEating with a count of zero.
func (db *DB) BestHabit() (domain.Habit, int, error) {
	best, bestCount := domain.Habits[0], -1
	for _, h := range domain.Habits {
		var count int
		// Column names come from the fixed habit list, never from input.
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, tableName, h.Column())
		if err := db.conn.QueryRow(query, domain.CheckedOff).Scan(&count); err != nil {
			return 0, 0, fmt.Errorf("failed to count checked-off %s: %w", h, err)
		}
		if count > bestCount {
			best, bestCount = h, count
		}
	}
	return best, bestCount, nil
}

// ListRecords retrieves every record in insertion order.
func (db *DB) ListRecords() ([]domain.Record, error) {
	rows, err := db.conn.Query(`
		SELECT id, week, date_str, ` + habitColumnList + `
		FROM monthly_habit_tracker
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*domain.Record, error) {
	var r domain.Record
	err := s.Scan(
		&r.ID,
		&r.Week,
		&r.Date,
		&r.Checks[domain.HealthyEating],
		&r.Checks[domain.DailyExercise],
		&r.Checks[domain.NoSmoke],
		&r.Checks[domain.TimeOutdoors],
		&r.Checks[domain.Blogging],
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
