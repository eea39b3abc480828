package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/allisson/tradejournal/internal/database"
)

// migrationsDir maps a driver to its migration directory, relative to the working directory.
var migrationsDir = map[string]string{
	database.DriverPostgres: "file://migrations/postgresql",
	database.DriverMySQL:    "file://migrations/mysql",
}

// RunMigrations applies every pending migration for driver and logs the resulting
// schema version. Returns nil when nothing is pending.
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	if err := database.CheckDriver(driver); err != nil {
		return err
	}
	logger.Info("running database migrations", slog.String("driver", driver))

	m, err := migrate.New(migrationsDir[driver], connectionString)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		logger.Info("migrations completed successfully")
		return nil
	}
	logger.Info("migrations completed successfully",
		slog.Uint64("schema_version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
	return nil
}
