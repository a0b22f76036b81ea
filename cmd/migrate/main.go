package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/liamcoop/sentest/internal/logger"
	"github.com/liamcoop/sentest/migrations"
)

func main() {
	var databaseURL string
	var command string

	flag.StringVar(&databaseURL, "database", "", "Database URL: postgres://... or sqlite://path (required)")
	flag.StringVar(&command, "command", "up", "Migration command: up, down, version, force")
	flag.Parse()

	// Check for database URL from flag or environment
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}

	if databaseURL == "" {
		logger.Fatal("Database URL is required. Use -database flag or DATABASE_URL environment variable")
	}

	if err := run(databaseURL, command, flag.Args()); err != nil {
		logger.Fatal("Migration failed", "command", command, "error", err)
	}
}

func run(databaseURL, command string, args []string) error {
	m, err := migrations.New(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case "up":
		logger.Info("Running migrations up...")
		err := m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("No migrations to run (database is up to date)")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("Migrations completed successfully")

	case "down":
		logger.Info("Rolling back migrations...")
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to rollback migrations: %w", err)
		}
		logger.Info("Rollback completed successfully")

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("No migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		logger.Info("Current version", "version", version, "dirty", dirty)

	case "force":
		if len(args) < 1 {
			return errors.New("force command requires a version number: -command force <version>")
		}
		var version int
		if _, err := fmt.Sscanf(args[0], "%d", &version); err != nil {
			return fmt.Errorf("invalid version number: %w", err)
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
		logger.Info("Forced version", "version", version)

	default:
		return fmt.Errorf("unknown command: %s (use: up, down, version, force)", command)
	}

	return nil
}
