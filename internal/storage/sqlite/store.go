// Package sqlite persists mission results and campaign progression in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"LanderRescue/internal/game"
	"LanderRescue/internal/platform/sqlitemigrate"
	"LanderRescue/internal/storage/sqlite/migrations"
)

var (
	// ErrNotFound is returned when a result or snapshot does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when an attempt id was already saved.
	ErrAlreadyExists = errors.New("record already exists")

	errNotConfigured = errors.New("storage is not configured")
)

// DefaultProfile is the progression profile used when the caller has none.
const DefaultProfile = "default"

// Store persists results in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite result store and applies pending migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite store: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite store: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveResult stores a finished attempt. Each attempt id is written once.
func (s *Store) SaveResult(ctx context.Context, res game.MissionResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return errNotConfigured
	}
	if strings.TrimSpace(res.AttemptID) == "" {
		return fmt.Errorf("attempt id is required")
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO mission_results (attempt_id, mission_id, success_state, failure_reason, elapsed_seconds, finished_at, payload)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.AttemptID,
		res.MissionID,
		string(res.SuccessState),
		res.FailureReason,
		res.Stats.Elapsed,
		toMillis(res.FinishedAt),
		string(payload),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// GetResult loads a single attempt.
func (s *Store) GetResult(ctx context.Context, attemptID string) (game.MissionResult, error) {
	if err := ctx.Err(); err != nil {
		return game.MissionResult{}, err
	}
	if s == nil || s.sqlDB == nil {
		return game.MissionResult{}, errNotConfigured
	}
	var payload string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT payload FROM mission_results WHERE attempt_id = ?`, attemptID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return game.MissionResult{}, ErrNotFound
	}
	if err != nil {
		return game.MissionResult{}, fmt.Errorf("get result: %w", err)
	}
	return decodeResult(payload)
}

// ListResults returns the newest results, optionally filtered by mission id.
func (s *Store) ListResults(ctx context.Context, missionID string, limit int) ([]game.MissionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, errNotConfigured
	}
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT payload FROM mission_results`
	args := []any{}
	if missionID = strings.TrimSpace(missionID); missionID != "" {
		query += ` WHERE mission_id = ?`
		args = append(args, missionID)
	}
	query += ` ORDER BY finished_at DESC, attempt_id ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	results := make([]game.MissionResult, 0, limit)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		res, err := decodeResult(payload)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

// SaveProgression upserts the snapshot for a profile.
func (s *Store) SaveProgression(ctx context.Context, profileID string, snapshot []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return errNotConfigured
	}
	if profileID == "" {
		profileID = DefaultProfile
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO progression_state (profile_id, snapshot, updated_at) VALUES (?, ?, ?)
ON CONFLICT(profile_id) DO UPDATE SET snapshot = excluded.snapshot, updated_at = excluded.updated_at`,
		profileID, string(snapshot), toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save progression: %w", err)
	}
	return nil
}

// LoadProgression returns the stored snapshot or ErrNotFound.
func (s *Store) LoadProgression(ctx context.Context, profileID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, errNotConfigured
	}
	if profileID == "" {
		profileID = DefaultProfile
	}
	var snapshot string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT snapshot FROM progression_state WHERE profile_id = ?`, profileID,
	).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load progression: %w", err)
	}
	return []byte(snapshot), nil
}

func decodeResult(payload string) (game.MissionResult, error) {
	var res game.MissionResult
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return game.MissionResult{}, fmt.Errorf("decode result: %w", err)
	}
	return res, nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
