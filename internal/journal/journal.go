// Package journal records mutating eacctl invocations in a SQLite log
// kept next to the store file, so an operator can reconstruct what was
// changed, when, and whether it succeeded.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema
const currentSchemaVersion = 1

// Entry is one recorded invocation. ID is a UUIDv7, so lexicographic
// order on IDs is creation order.
type Entry struct {
	ID          string    `json:"id"`
	RecordedAt  time.Time `json:"recordedAt"`
	Command     string    `json:"command"`
	Package     string    `json:"package"`
	Activity    string    `json:"activity,omitempty"`
	DrawViewKey string    `json:"drawViewKey,omitempty"`
	Outcome     string    `json:"outcome"`
	Detail      string    `json:"detail,omitempty"`
}

// Outcome values for Entry.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Journal is an append-only SQLite log of mutating operations.
type Journal struct {
	db  *sql.DB
	log *zap.Logger
}

// Open creates or opens the journal database at the given path.
// Applies required pragmas and migrations automatically.
func Open(path string, log *zap.Logger) (*Journal, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Journal{db: db, log: log}, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Append records one invocation. The entry's ID and RecordedAt are
// assigned here; callers fill the remaining fields.
func (j *Journal) Append(ctx context.Context, e Entry) error {
	e.ID = uuid.Must(uuid.NewV7()).String()
	e.RecordedAt = time.Now().UTC()

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO operations
		(id, recorded_at, command, package, activity, draw_view_key, outcome, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.RecordedAt.Format(time.RFC3339Nano),
		e.Command,
		e.Package,
		e.Activity,
		e.DrawViewKey,
		e.Outcome,
		e.Detail,
	)
	if err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}

	j.log.Debug("journal entry recorded",
		zap.String("id", e.ID),
		zap.String("command", e.Command),
		zap.String("package", e.Package),
		zap.String("outcome", e.Outcome))

	return nil
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns
// every entry.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, recorded_at, command, package, activity, draw_view_key, outcome, detail
		FROM operations
		ORDER BY id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var recordedAt string
		if err := rows.Scan(&e.ID, &recordedAt, &e.Command, &e.Package, &e.Activity, &e.DrawViewKey, &e.Outcome, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parse journal timestamp %q: %w", recordedAt, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}

	return entries, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and stamps the schema
// version. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}

	return nil
}
