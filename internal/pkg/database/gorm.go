package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// GormOptions tunes OpenGorm.
type GormOptions struct {
	LogLevel logger.LogLevel
}

// OpenGorm opens a gorm handle for dsn. postgres:// and postgresql:// DSNs use the postgres
// driver; sqlite:// DSNs and bare paths use sqlite. It returns the handle, the resolved driver
// name and a cleanup func closing the pool.
func OpenGorm(ctx context.Context, dsn string, opts GormOptions) (*gorm.DB, string, func() error, error) {
	driver, sqlitePath, err := ResolveDriver(dsn)
	if err != nil {
		return nil, "", nil, err
	}

	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	var db *gorm.DB
	switch driver {
	case DriverPostgres:
		db, err = gorm.Open(postgres.Open(dsn), cfg)
	case DriverSQLite:
		db, err = gorm.Open(sqlite.Open(sqlitePath), cfg)
	default:
		return nil, "", nil, fmt.Errorf("unsupported database scheme %q", driver)
	}
	if err != nil {
		return nil, "", nil, fmt.Errorf("open %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, "", nil, err
	}
	if driver == DriverSQLite {
		// sqlite serializes writers; one connection also keeps :memory: databases alive.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, "", nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return db, driver, sqlDB.Close, nil
}

// ResolveDriver picks the gorm driver for dsn and, for sqlite, the file path.
func ResolveDriver(dsn string) (string, string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DriverPostgres, "", nil
	}
	path := strings.TrimPrefix(dsn, "sqlite://")
	if path == "" {
		path = "teamzen.db"
	}
	sqlitePath, err := normalizeSQLitePath(path)
	return DriverSQLite, sqlitePath, err
}

func normalizeSQLitePath(path string) (string, error) {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(".", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, nil
}
