package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"sakinah/backend/internal/config"
	"sakinah/backend/internal/db"
	"sakinah/backend/internal/logging"
)

func main() {
	var (
		command  string
		database string
	)
	flag.StringVar(&command, "cmd", "up", "up, down or status")
	flag.StringVar(&database, "db", "", "DATABASE_URL override")
	flag.Parse()

	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Pretty: true, ServiceName: "sakinah-migrate"})
	log := logging.Component("migrate")

	dbURL := strings.TrimSpace(database)
	if dbURL == "" {
		dbURL = cfg.DatabaseURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := db.Connect(ctx, dbURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()
	sqlDB := db.SQLDB(pool)
	defer sqlDB.Close()

	switch strings.ToLower(strings.TrimSpace(command)) {
	case "up":
		err = db.Migrate(ctx, sqlDB, log)
	case "down":
		err = db.MigrateDown(ctx, sqlDB, log)
	case "status":
		err = db.MigrationStatus(ctx, sqlDB, log)
	default:
		fmt.Fprintf(os.Stderr, "unknown -cmd %q (want up, down or status)\n", command)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("cmd", command).Msg("migration command failed")
	}
	log.Info().Str("cmd", command).Msg("done")
}
