package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	migrationsDir   = "migrations"
	migrationsTable = "goose_migrations"
)

type gooseLogger struct {
	l zerolog.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.l.Info().Msgf(format, v...)
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.l.Fatal().Msgf(format, v...)
}

func configureGoose(logger zerolog.Logger) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetTableName(migrationsTable)
	goose.SetLogger(gooseLogger{l: logger})
	return goose.SetDialect("postgres")
}

// Migrate applies every pending embedded migration.
func Migrate(ctx context.Context, sqlDB *sql.DB, logger zerolog.Logger) error {
	if err := configureGoose(logger); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}
	current, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		logger.Warn().Err(err).Msg("could not read migration version")
	} else {
		logger.Info().Int64("version", current).Msg("current migration version")
	}
	if err := goose.UpContext(ctx, sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, sqlDB *sql.DB, logger zerolog.Logger) error {
	if err := configureGoose(logger); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}
	return goose.DownContext(ctx, sqlDB, migrationsDir)
}

// MigrationStatus logs applied and pending migrations.
func MigrationStatus(ctx context.Context, sqlDB *sql.DB, logger zerolog.Logger) error {
	if err := configureGoose(logger); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}
	return goose.StatusContext(ctx, sqlDB, migrationsDir)
}
