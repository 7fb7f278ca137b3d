package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "whatever")
	assert.EqualError(t, err, `unsupported DB_DRIVER "oracle"`)
}

func TestInit_SqliteCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	cfg := &Config{DBDriver: "sqlite", DatabaseURL: filepath.Join(dir, "students.db")}

	db, err := Init(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, AutoMigrateJobs(db))
	require.NoError(t, db.Create(&ApiMetric{Endpoint: "/health", Method: "GET", StatusCode: 200}).Error)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
