package services

import (
	"testing"
	"time"

	"case_flow_app_go/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupServiceTestDB opens an isolated in-memory database with every model migrated
func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:svc_" + uuid.New().String() + "?mode=memory&cache=shared&_busy_timeout=5000"
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, testDB.AutoMigrate(models.All()...))
	return testDB
}

func createTestCase(t *testing.T, db *gorm.DB, mutate ...func(*models.Case)) models.Case {
	t.Helper()

	c := models.Case{
		ClientName:   "Jane Roe",
		CaseType:     "Personal Injury",
		Status:       models.CaseStatusActive,
		LastActivity: time.Now().Add(-24 * time.Hour),
	}
	for _, m := range mutate {
		m(&c)
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func stringPtr(s string) *string {
	return &s
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

// closedTestDB returns a migrated database whose connection is already
// closed, so any query that reaches it fails with a persistence error.
func closedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := setupServiceTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	return db
}
