// Package migrations embeds the schema and applies it with golang-migrate.
// The SQL is kept portable between PostgreSQL and SQLite.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var FS embed.FS

// New creates a migrate instance for databaseURL backed by the embedded files.
// Supported schemes: postgres://, postgresql://, sqlite://
func New(databaseURL string) (*migrate.Migrate, error) {
	if !supported(databaseURL) {
		return nil, fmt.Errorf("unsupported database URL scheme: %s", scheme(databaseURL))
	}

	src, err := iofs.New(FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

// Up applies every pending migration. An up-to-date database is not an error.
func Up(databaseURL string) error {
	m, err := New(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SQLiteURL turns a file path into a migrate database URL
func SQLiteURL(path string) string {
	return "sqlite://" + path
}

func supported(databaseURL string) bool {
	switch scheme(databaseURL) {
	case "postgres", "postgresql", "sqlite":
		return true
	}
	return false
}

func scheme(databaseURL string) string {
	i := strings.Index(databaseURL, "://")
	if i < 0 {
		return ""
	}
	return databaseURL[:i]
}
