package storage

const tableName = "monthly_habit_tracker"

const schema = `
-- One row per (week, date_str) pair. Uniqueness of the pair is kept by UpsertRecord,
-- not by a constraint, so existing files created without one stay compatible.
CREATE TABLE IF NOT EXISTS monthly_habit_tracker (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    week INTEGER NOT NULL,
    date_str TEXT NOT NULL,
    healthy_eating TEXT NOT NULL,
    daily_exercise TEXT NOT NULL,
    no_smoke TEXT NOT NULL,
    time_outdoors TEXT NOT NULL,
    blogging TEXT NOT NULL
);
`
