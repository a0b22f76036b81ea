package registration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQLStore implements Store on database/sql for PostgreSQL and SQLite.
// Queries are written with $n placeholders and rebound to ? for SQLite.
type SQLStore struct {
	db     *sql.DB
	rebind func(string) string
	now    func() time.Time
}

// NewSQLStore creates a new SQL-backed registration store.
// driverName is the database/sql driver db was opened with: "postgres" or "sqlite".
func NewSQLStore(db *sql.DB, driverName string) *SQLStore {
	s := &SQLStore{
		db:     db,
		rebind: func(q string) string { return q },
		now:    func() time.Time { return time.Now().UTC() },
	}
	if driverName == "sqlite" {
		s.rebind = questionPlaceholders
	}
	return s
}

var placeholderPattern = regexp.MustCompile(`\$\d+`)

// questionPlaceholders rewrites $n to ?. Every query binds its arguments in order.
func questionPlaceholders(query string) string {
	return placeholderPattern.ReplaceAllString(query, "?")
}

// Ping verifies the database connection
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Add inserts a new registration into the database
func (s *SQLStore) Add(ctx context.Context, reg *Registration) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT EXISTS(SELECT 1 FROM registrations WHERE id = $1)
	`), reg.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check registration existence: %w", err)
	}
	if exists {
		return fmt.Errorf("registration with ID %s already exists", reg.ID)
	}

	now := s.now()
	reg.CreatedAt = now
	reg.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO registrations (id, full_name, organization, phone, email, is_correct, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`), reg.ID, reg.FullName, nullString(reg.Organization), reg.Phone, nullString(reg.Email),
		nullBool(reg.IsCorrect), reg.CreatedAt, reg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert registration: %w", err)
	}

	return nil
}

// Get retrieves a registration by ID
func (s *SQLStore) Get(ctx context.Context, id string) (*Registration, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, full_name, organization, phone, email, is_correct, created_at, updated_at
		FROM registrations
		WHERE id = $1
	`), id)

	reg, err := scanRegistration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("registration %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}

	return reg, nil
}

// RecordResult stores the quiz outcome for a registration
func (s *SQLStore) RecordResult(ctx context.Context, id string, correct bool) error {
	result, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE registrations
		SET is_correct = $1, updated_at = $2
		WHERE id = $3
	`), correct, s.now(), id)
	if err != nil {
		return fmt.Errorf("failed to record result: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("registration %s: %w", id, ErrNotFound)
	}

	return nil
}

// List returns the most recent registrations
func (s *SQLStore) List(ctx context.Context, limit int) ([]*Registration, error) {
	query := `
		SELECT id, full_name, organization, phone, email, is_correct, created_at, updated_at
		FROM registrations
		ORDER BY created_at DESC, id ASC
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	var regs []*Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		regs = append(regs, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registrations: %w", err)
	}

	return regs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*Registration, error) {
	var (
		reg          Registration
		organization sql.NullString
		email        sql.NullString
		isCorrect    sql.NullBool
	)
	if err := row.Scan(&reg.ID, &reg.FullName, &organization, &reg.Phone, &email,
		&isCorrect, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
		return nil, err
	}

	reg.Organization = organization.String
	reg.Email = email.String
	if isCorrect.Valid {
		v := isCorrect.Bool
		reg.IsCorrect = &v
	}
	return &reg, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
