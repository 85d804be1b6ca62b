package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteEventLog is the embedded-database alternative to events.json: each
// append is a single INSERT instead of a whole-file rewrite.
type SQLiteEventLog struct {
	db *sql.DB
}

func NewSQLiteEventLog(dataSourceName string) (*SQLiteEventLog, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	// sqlite3 allows a single writer.
	db.SetMaxOpenConns(1)

	l := &SQLiteEventLog{db: db}
	if err = l.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return l, nil
}

func (l *SQLiteEventLog) Close() error {
	return l.db.Close()
}

func (l *SQLiteEventLog) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS events (
        seq INTEGER PRIMARY KEY AUTOINCREMENT,
        id TEXT UNIQUE NOT NULL,
        button TEXT NOT NULL,
        language TEXT NOT NULL,
        text TEXT NOT NULL,
        source TEXT NOT NULL CHECK (source IN ('UI', 'DEVICE')),
        device_id TEXT NOT NULL,
        user_id TEXT NOT NULL,
        timestamp TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_events_user_id ON events (user_id);
    `
	_, err := l.db.Exec(schema)
	return err
}

func (l *SQLiteEventLog) Append(ctx context.Context, evt Event) error {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}

	_, err := l.db.ExecContext(ctx,
		"INSERT INTO events (id, button, language, text, source, device_id, user_id, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		evt.ID, evt.Button, evt.Language, evt.Text, evt.Source, evt.DeviceID, evt.UserID, evt.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func (l *SQLiteEventLog) List(ctx context.Context) ([]Event, error) {
	rows, err := l.db.QueryContext(ctx, "SELECT id, button, language, text, source, device_id, user_id, timestamp FROM events ORDER BY seq ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Button, &e.Language, &e.Text, &e.Source, &e.DeviceID, &e.UserID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
