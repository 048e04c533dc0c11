package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/phrazzld/taskdesk/internal/config"
	"github.com/phrazzld/taskdesk/internal/platform/migrations"
	"github.com/phrazzld/taskdesk/internal/platform/postgres"
	"github.com/phrazzld/taskdesk/internal/platform/sqlite"
	"github.com/phrazzld/taskdesk/internal/redact"
	"github.com/phrazzld/taskdesk/internal/store"
)

// openDatabase connects to the configured database and verifies the
// connection.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*sql.DB, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	switch cfg.Driver {
	case migrations.DriverSQLite:
		db, err := sqlite.Open(pingCtx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %s", redact.Error(err))
		}
		log.Info("database connection established", slog.String("driver", cfg.Driver))
		return db, nil

	case migrations.DriverPostgres:
		db, err := sql.Open("pgx", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database connection: %s", redact.Error(err))
		}
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
			db.SetMaxIdleConns(cfg.MaxOpenConns / 2)
		}
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %s", redact.Error(err))
		}
		log.Info("database connection established", slog.String("driver", cfg.Driver))
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// newStores returns the store implementations for driver.
func newStores(driver string, db *sql.DB, log *slog.Logger) (store.TaskStore, store.JobStore) {
	if driver == migrations.DriverPostgres {
		return postgres.NewPostgresTaskStore(db, log), postgres.NewPostgresJobStore(db, log)
	}
	return sqlite.NewTaskStore(db, log), sqlite.NewJobStore(db, log)
}
