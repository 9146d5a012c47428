package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestResolveDriver(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name       string
		dsn        string
		wantDriver string
		wantPath   string
	}{
		{"postgres", "postgres://u:p@localhost:5432/db", DriverPostgres, ""},
		{"postgresql", "postgresql://u:p@localhost/db", DriverPostgres, ""},
		{"memory", "sqlite://:memory:", DriverSQLite, ":memory:"},
		{"bare memory", ":memory:", DriverSQLite, ":memory:"},
		{"absolute", "sqlite://" + filepath.Join(dir, "nested", "hris.db"), DriverSQLite, filepath.Join(dir, "nested", "hris.db")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver, path, err := ResolveDriver(tt.dsn)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDriver, driver)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestOpenGorm_SQLiteMemory(t *testing.T) {
	db, driver, cleanup, err := OpenGorm(context.Background(), ":memory:", GormOptions{LogLevel: logger.Silent})
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, DriverSQLite, driver)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}
