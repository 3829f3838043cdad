package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/talgya/hexforge/internal/diagnostics"
)

type errorContextRow struct {
	ID          string         `db:"id"`
	ErrorType   string         `db:"error_type"`
	Message     string         `db:"message"`
	GameState   string         `db:"game_state"`
	Timestamp   string         `db:"timestamp"`
	Metrics     sql.NullString `db:"metrics_json"`
	Suggestions string         `db:"suggestions_json"`
}

// SaveErrorContext stores a failure report. Saving the same report twice
// replaces it.
func (db *DB) SaveErrorContext(c *diagnostics.ErrorContext) error {
	var metrics sql.NullString
	if c.GenerationMetrics != nil {
		data, err := json.Marshal(c.GenerationMetrics)
		if err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
		metrics = sql.NullString{String: string(data), Valid: true}
	}
	suggestions, err := json.Marshal(c.RecoverySuggestions)
	if err != nil {
		return fmt.Errorf("encode suggestions: %w", err)
	}

	_, err = db.conn.Exec(`INSERT OR REPLACE INTO error_contexts
		(id, error_type, message, game_state, timestamp, metrics_json, suggestions_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, string(c.ErrorType), c.ErrorMessage, c.GameState,
		c.Timestamp.UTC().Format(time.RFC3339Nano), metrics, string(suggestions),
	)
	if err != nil {
		return fmt.Errorf("insert error context %s: %w", c.ID, err)
	}
	return nil
}

// ErrorContext returns the stored report with the given ID.
func (db *DB) ErrorContext(id string) (*diagnostics.ErrorContext, error) {
	var row errorContextRow
	if err := db.conn.Get(&row, "SELECT * FROM error_contexts WHERE id = ?", id); err != nil {
		return nil, err
	}
	return row.decode()
}

// RecentErrorContexts returns up to limit reports, newest first.
func (db *DB) RecentErrorContexts(limit int) ([]*diagnostics.ErrorContext, error) {
	var rows []errorContextRow
	if err := db.conn.Select(&rows, "SELECT * FROM error_contexts ORDER BY timestamp DESC LIMIT ?", limit); err != nil {
		return nil, err
	}
	out := make([]*diagnostics.ErrorContext, 0, len(rows))
	for _, r := range rows {
		c, err := r.decode()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r errorContextRow) decode() (*diagnostics.ErrorContext, error) {
	ts, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("error context %s timestamp: %w", r.ID, err)
	}
	c := &diagnostics.ErrorContext{
		ID:           r.ID,
		ErrorMessage: r.Message,
		ErrorType:    diagnostics.ErrorType(r.ErrorType),
		Timestamp:    ts,
		GameState:    r.GameState,
	}
	if r.Metrics.Valid {
		c.GenerationMetrics = &diagnostics.GenerationMetrics{}
		if err := json.Unmarshal([]byte(r.Metrics.String), c.GenerationMetrics); err != nil {
			return nil, fmt.Errorf("error context %s metrics: %w", r.ID, err)
		}
	}
	if err := json.Unmarshal([]byte(r.Suggestions), &c.RecoverySuggestions); err != nil {
		return nil, fmt.Errorf("error context %s suggestions: %w", r.ID, err)
	}
	return c, nil
}

// ErrorSink adapts a DB to the diagnostics sink interface.
type ErrorSink struct {
	DB *DB
}

// Save stores c.
func (s ErrorSink) Save(c *diagnostics.ErrorContext) error {
	return s.DB.SaveErrorContext(c)
}
