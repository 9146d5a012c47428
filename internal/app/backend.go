package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teamzen/hris-backend-go/internal/config"
	"github.com/teamzen/hris-backend-go/internal/pkg/database"
	"github.com/teamzen/hris-backend-go/internal/repository/gormstore"
	"github.com/teamzen/hris-backend-go/internal/repository/postgresql"
)

// OpenBackend connects the configured backend, brings its schema up to date and returns
// its repositories with a close func.
func OpenBackend(ctx context.Context, cfg *config.Config) (Repositories, func(), error) {
	switch cfg.Leave.Backend {
	case config.BackendPgx:
		return OpenPgx(ctx, cfg.DatabaseURL())
	case config.BackendGorm:
		return OpenGorm(ctx, cfg.GormDSN())
	default:
		return Repositories{}, nil, fmt.Errorf("unsupported backend %q", cfg.Leave.Backend)
	}
}

func OpenPgx(ctx context.Context, dsn string) (Repositories, func(), error) {
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	if err != nil {
		return Repositories{}, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := postgresql.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return Repositories{}, nil, fmt.Errorf("ensure schema: %w", err)
	}

	slog.Info("Using pgx backend")
	return PgxRepositories(db), db.Close, nil
}

// OpenGorm accepts postgres:// and sqlite:// DSNs, or a bare sqlite path.
func OpenGorm(ctx context.Context, dsn string) (Repositories, func(), error) {
	db, driver, closeDB, err := database.OpenGorm(ctx, dsn, database.GormOptions{})
	if err != nil {
		return Repositories{}, nil, err
	}

	store := gormstore.New(db)
	if err := store.AutoMigrate(ctx); err != nil {
		_ = closeDB()
		return Repositories{}, nil, fmt.Errorf("auto migrate: %w", err)
	}

	slog.Info("Using gorm backend", "driver", driver)
	closeFn := func() {
		if err := closeDB(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}
	return GormRepositories(store), closeFn, nil
}
