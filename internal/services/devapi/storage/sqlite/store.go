// Package sqlite stores dev upstream records as JSON documents in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/yardconsole/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/yardconsole/internal/services/devapi/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound reports a missing record.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists reports a natural key already taken in the resource.
	ErrAlreadyExists = errors.New("record already exists")
)

// Record is one stored document.
type Record struct {
	ID       int64
	Resource string
	// Key is the natural key unique within Resource; empty means none.
	Key       string
	Body      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite record store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Insert stores rec and returns its new id, numbered within rec.Resource.
func (s *Store) Insert(ctx context.Context, rec Record) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	resource := strings.TrimSpace(rec.Resource)
	if resource == "" {
		return 0, fmt.Errorf("resource is required")
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	if err := tx.QueryRowContext(
		ctx,
		`INSERT INTO record_sequences (resource, last_id) VALUES (?, 1)
		 ON CONFLICT (resource) DO UPDATE SET last_id = last_id + 1
		 RETURNING last_id`,
		resource,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("next record id: %w", err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO records (resource, id, natural_key, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		resource,
		id,
		naturalKey(rec.Key),
		string(rec.Body),
		toMillis(createdAt),
		toMillis(updatedAt),
	); err != nil {
		if isUniqueViolation(err) {
			return 0, ErrAlreadyExists
		}
		return 0, fmt.Errorf("insert record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return id, nil
}

// Get returns one record of resource by id.
func (s *Store) Get(ctx context.Context, resource string, id int64) (Record, error) {
	if err := s.ready(ctx); err != nil {
		return Record{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, resource, natural_key, body, created_at, updated_at
		   FROM records
		  WHERE resource = ? AND id = ?`,
		resource,
		id,
	)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// List returns every record of resource in id order.
func (s *Store) List(ctx context.Context, resource string) ([]Record, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, resource, natural_key, body, created_at, updated_at
		   FROM records
		  WHERE resource = ?
		  ORDER BY id`,
		resource,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// Update replaces the key and body of an existing record.
func (s *Store) Update(ctx context.Context, rec Record) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE records
		    SET natural_key = ?, body = ?, updated_at = ?
		  WHERE resource = ? AND id = ?`,
		naturalKey(rec.Key),
		string(rec.Body),
		toMillis(updatedAt),
		rec.Resource,
		rec.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("update record: %w", err)
	}
	return requireAffected(result)
}

// Delete removes one record of resource.
func (s *Store) Delete(ctx context.Context, resource string, id int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM records WHERE resource = ? AND id = ?`, resource, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return requireAffected(result)
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var key sql.NullString
	var body string
	var createdAt int64
	var updatedAt int64
	if err := row.Scan(&rec.ID, &rec.Resource, &key, &body, &createdAt, &updatedAt); err != nil {
		return Record{}, err
	}
	rec.Key = key.String
	rec.Body = []byte(body)
	rec.CreatedAt = fromMillis(createdAt)
	rec.UpdatedAt = fromMillis(updatedAt)
	return rec, nil
}

// naturalKey stores blank keys as NULL so the unique index ignores them.
func naturalKey(key string) sql.NullString {
	key = strings.TrimSpace(key)
	return sql.NullString{String: key, Valid: key != ""}
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "records.")
}
