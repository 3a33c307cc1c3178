// Package journal is an optional flight recorder: every event published by
// the session is appended to a sqlite database for later inspection.
package journal

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"spatial-input/internal/spatial"
)

// Journal records input events in sqlite. It implements spatial.EventSink;
// insert failures are logged and never propagate into the tick.
type Journal struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the journal database at path. ":memory:" gives an
// in-process journal, useful in tests.
func Open(path string, log *slog.Logger) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			event_id INTEGER PRIMARY KEY AUTOINCREMENT,
			time TIMESTAMP NOT NULL,
			type TEXT NOT NULL,
			source INTEGER NOT NULL,
			lifecycle TEXT NOT NULL,
			kind TEXT,
			channel TEXT,
			action TEXT,
			detail TEXT
		);
		CREATE INDEX IF NOT EXISTS events_by_source ON events(source, event_id);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db, log: log}, nil
}

// Publish implements spatial.EventSink.
func (j *Journal) Publish(ev spatial.Event) {
	detail, err := json.Marshal(ev)
	if err != nil {
		j.log.Warn("journal marshal failed", slog.String("error", err.Error()))
		return
	}
	_, err = j.db.Exec(
		"INSERT INTO events (time, type, source, lifecycle, kind, channel, action, detail) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		ev.Time, string(ev.Type), int64(ev.Source), ev.Lifecycle,
		string(ev.Kind), string(ev.Channel), string(ev.Action), string(detail),
	)
	if err != nil {
		j.log.Warn("journal insert failed", slog.String("error", err.Error()))
	}
}

// Record is one journaled event as returned by Recent.
type Record struct {
	ID        int64           `json:"id"`
	Time      time.Time       `json:"time"`
	Type      string          `json:"type"`
	Source    uint32          `json:"source"`
	Lifecycle string          `json:"lifecycle"`
	Kind      string          `json:"kind"`
	Channel   string          `json:"channel,omitempty"`
	Action    string          `json:"action,omitempty"`
	Detail    json.RawMessage `json:"detail"`
}

// Recent returns the most recent limit events, newest first.
func (j *Journal) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := j.db.Query(
		"SELECT event_id, time, type, source, lifecycle, kind, channel, action, detail FROM events ORDER BY event_id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var source int64
		var detail string
		if err := rows.Scan(&rec.ID, &rec.Time, &rec.Type, &source,
			&rec.Lifecycle, &rec.Kind, &rec.Channel, &rec.Action, &detail); err != nil {
			return nil, err
		}
		rec.Source = uint32(source)
		rec.Detail = json.RawMessage(detail)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
